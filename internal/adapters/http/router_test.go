package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/mail-triage/internal/config"
	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/observability/metrics"
)

type classifierFake struct {
	result *domain.ClassificationResult
	err    error
	got    []domain.ClassifyRequest
}

func (f *classifierFake) Classify(_ context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testConfig() config.Config {
	return config.Config{
		ServiceName:        "mail-triage",
		DefaultProvider:    "openai",
		APIMaxUploadMB:     1,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}

func newTestHandler(cfg config.Config, classifier *classifierFake) http.Handler {
	return NewRouter(cfg, classifier, metrics.NewHTTPServerMetrics(cfg.ServiceName)).Handler()
}

func multipartRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write(content)
	}
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/classify", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(testConfig(), &classifierFake{})
	for _, path := range []string{"/health", "/healthz"} {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, res.Code)
		}
		if body := decodeBody(t, res); body["status"] != "ok" {
			t.Fatalf("%s unexpected body %v", path, body)
		}
		if res.Header().Get(requestIDHeader) == "" {
			t.Fatalf("expected request id header")
		}
	}
}

func TestClassifyReturnsResult(t *testing.T) {
	classifier := &classifierFake{result: &domain.ClassificationResult{
		Category:       domain.CategoryProductive,
		Confidence:     1,
		SuggestedReply: "Olá!",
		Language:       "pt-BR",
		Preview:        "Erro 503",
		Provider:       domain.ProviderTagRemoteLLM,
	}}
	handler := newTestHandler(testConfig(), classifier)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "Bug.TXT", []byte("Erro 503"), map[string]string{"stemming": "true", "provider": "huggingface"}))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	for _, key := range []string{"category", "confidence", "suggested_reply", "language", "preview", "provider"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing %q in %v", key, body)
		}
	}
	if len(classifier.got) != 1 {
		t.Fatalf("expected one classify call")
	}
	got := classifier.got[0]
	if got.Document.Filename != "Bug.TXT" || string(got.Document.Content) != "Erro 503" || !got.Stemming || got.Provider != "huggingface" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestClassifyDefaultsProviderAndStemming(t *testing.T) {
	classifier := &classifierFake{result: &domain.ClassificationResult{Category: domain.CategoryProductive}}
	handler := newTestHandler(testConfig(), classifier)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "mail.pdf", []byte("%PDF-1.4"), nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := classifier.got[0]; got.Provider != "openai" || got.Stemming {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestClassifyValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
	}{
		{
			name:   "unsupported extension",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "mail.docx", []byte("x"), nil) },
			status: http.StatusBadRequest,
		},
		{
			name:   "missing file",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "", nil, map[string]string{"provider": "openai"}) },
			status: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader("{}"))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "bad stemming flag",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "mail.txt", []byte("x"), map[string]string{"stemming": "sometimes"})
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "too large",
			req:    func(t *testing.T) *http.Request { return multipartRequest(t, "mail.txt", bytes.Repeat([]byte("a"), 2<<20), nil) },
			status: http.StatusRequestEntityTooLarge,
		},
		{
			name:   "wrong method",
			req:    func(t *testing.T) *http.Request { return httptest.NewRequest(http.MethodGet, "/classify", nil) },
			status: http.StatusMethodNotAllowed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classifier := &classifierFake{}
			handler := newTestHandler(testConfig(), classifier)
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, tc.req(t))
			if res.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, res.Code, res.Body.String())
			}
			if body := decodeBody(t, res); body["detail"] == "" || body["detail"] == nil {
				t.Fatalf("expected detail message, got %v", body)
			}
			if len(classifier.got) != 0 {
				t.Fatalf("classifier must not be called")
			}
		})
	}
}

func TestClassifyMapsRejectionsTo422(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			name:   "empty document",
			err:    domain.WrapError(domain.ErrEmptyDocument, "extract text", errors.New("no text")),
			status: http.StatusUnprocessableEntity,
			detail: "no text could be extracted from the file",
		},
		{
			name:   "unsupported format",
			err:    domain.WrapError(domain.ErrUnsupportedFormat, "extract text", errors.New(".doc")),
			status: http.StatusUnprocessableEntity,
			detail: "unsupported file type: only .pdf and .txt files are accepted",
		},
		{
			name:   "unexpected",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			detail: "internal error",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(testConfig(), &classifierFake{err: tc.err})
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, multipartRequest(t, "empty.txt", []byte("   "), nil))
			if res.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, res.Code)
			}
			if body := decodeBody(t, res); body["detail"] != tc.detail {
				t.Fatalf("unexpected detail %v", body["detail"])
			}
		})
	}
}

func TestMetricsEndpointExposesRejections(t *testing.T) {
	handler := newTestHandler(testConfig(), &classifierFake{err: domain.WrapError(domain.ErrEmptyDocument, "extract", errors.New("x"))})
	handler.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, "a.txt", []byte(" "), nil))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `reason="empty_document"`) {
		t.Fatalf("expected rejection counter in metrics output")
	}
}

func TestCORSPreflightForAllowedOrigin(t *testing.T) {
	handler := newTestHandler(testConfig(), &classifierFake{})

	req := httptest.NewRequest(http.MethodOptions, "/classify", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if res.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("missing allow-origin header")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow-origin for unknown origin")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	handler := newTestHandler(testConfig(), &classifierFake{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", res.Header().Get(requestIDHeader))
	}
}
