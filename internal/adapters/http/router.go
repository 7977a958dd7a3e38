package httpadapter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kirillkom/mail-triage/internal/config"
	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
	"github.com/kirillkom/mail-triage/internal/observability/metrics"
)

const (
	defaultMaxUploadMB       = 10
	backpressureWaitTimeout  = 250 * time.Millisecond
	multipartMemoryThreshold = 8 << 20
)

type Router struct {
	cfg        config.Config
	classifier ports.EmailClassifier
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(cfg config.Config, classifier ports.EmailClassifier, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:        cfg,
		classifier: classifier,
		metrics:    httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/healthz", rt.health)
	mux.HandleFunc("/classify", rt.classify)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWaitTimeout)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = corsMiddleware(handler, rt.cfg.CORSAllowedOrigins)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.serviceName(), handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	maxUploadMB := rt.cfg.APIMaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxUploadMB)<<20)

	req, err := readClassifyRequest(r, rt.cfg.DefaultProvider)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.recordRejection("too_large")
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d MB", maxUploadMB))
			return
		}
		rt.recordRejection("invalid_input")
		writeDetail(w, mapErrorToHTTPStatus(err), userMessage(err))
		return
	}

	result, err := rt.classifier.Classify(r.Context(), req)
	if err != nil {
		rt.recordRejection(rejectionReason(err))
		writeDetail(w, mapErrorToHTTPStatus(err), userMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func readClassifyRequest(r *http.Request, defaultProvider string) (domain.ClassifyRequest, error) {
	if err := r.ParseMultipartForm(multipartMemoryThreshold); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ClassifyRequest{}, err
		}
		return domain.ClassifyRequest{}, domain.WrapError(domain.ErrInvalidInput, "parse form", errors.New("request must be multipart/form-data"))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.ClassifyRequest{}, domain.WrapError(domain.ErrInvalidInput, "read form", errors.New("multipart field 'file' is required"))
	}
	defer file.Close()

	if _, ok := domain.FormatFromFilename(header.Filename); !ok {
		return domain.ClassifyRequest{}, domain.WrapError(domain.ErrInvalidInput, "read form",
			fmt.Errorf("unsupported file type %q: only .pdf and .txt files are accepted", header.Filename))
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return domain.ClassifyRequest{}, err
	}

	stemming, err := parseFormBool(r.FormValue("stemming"))
	if err != nil {
		return domain.ClassifyRequest{}, domain.WrapError(domain.ErrInvalidInput, "read form", err)
	}

	provider := strings.TrimSpace(r.FormValue("provider"))
	if provider == "" {
		provider = defaultProvider
	}

	return domain.ClassifyRequest{
		Document: domain.Document{Filename: header.Filename, Content: content},
		Provider: provider,
		Stemming: stemming,
	}, nil
}

func parseFormBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "f", "false", "no", "off":
		return false, nil
	case "1", "t", "true", "yes", "on":
		return true, nil
	default:
		return false, fmt.Errorf("field 'stemming' must be a boolean, got %q", v)
	}
}

func (rt *Router) recordRejection(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejection(rt.serviceName(), reason)
	}
}

func (rt *Router) serviceName() string {
	if rt.cfg.ServiceName == "" {
		return "mail-triage"
	}
	return rt.cfg.ServiceName
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
