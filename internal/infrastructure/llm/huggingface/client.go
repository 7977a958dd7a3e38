package huggingface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
	"github.com/kirillkom/mail-triage/internal/infrastructure/resilience"
)

const (
	DefaultInferenceURL = "https://api-inference.huggingface.co/models"
	DefaultModel        = "MoritzLaurer/mDeBERTa-v3-base-mnli-xnli"
)

type Config struct {
	InferenceURL string
	APIToken     string
	Model        string
	Timeout      time.Duration
}

// Pipeline is a zero-shot classification handle bound to one hosted NLI model.
type Pipeline struct {
	endpoint   string
	token      string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
}

func NewPipeline(cfg Config, exec *resilience.Executor) (*Pipeline, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.InferenceURL), "/")
	if base == "" {
		base = DefaultInferenceURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("huggingface pipeline: invalid inference url %q", base)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Pipeline{
		endpoint:   base + "/" + model,
		token:      strings.TrimSpace(cfg.APIToken),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		exec:       exec,
	}, nil
}

func (p *Pipeline) Model() string {
	return p.model
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    map[string]any     `json:"options,omitempty"`
}

type zeroShotParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template,omitempty"`
	MultiLabel         bool     `json:"multi_label"`
}

type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// ClassifyZeroShot returns candidate labels ordered by descending score.
func (p *Pipeline) ClassifyZeroShot(ctx context.Context, text string, labels []string, hypothesisTemplate string) (ports.ZeroShotResult, error) {
	if len(labels) == 0 {
		return ports.ZeroShotResult{}, domain.WrapError(domain.ErrInvalidInput, "zero-shot classify", errors.New("no candidate labels"))
	}
	request := zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParameters{
			CandidateLabels:    labels,
			HypothesisTemplate: hypothesisTemplate,
		},
		Options: map[string]any{"wait_for_model": true},
	}

	var raw []byte
	call := func(callCtx context.Context) error {
		body, err := p.postJSON(callCtx, request)
		if err != nil {
			return err
		}
		raw = body
		return nil
	}
	var err error
	if p.exec == nil {
		err = call(ctx)
	} else {
		err = p.exec.Execute(ctx, "huggingface.zero_shot", call, classifyError)
	}
	if err != nil {
		return ports.ZeroShotResult{}, wrapTemporaryIfNeeded("zero-shot classify", err)
	}

	resp, err := decodeZeroShot(raw)
	if err != nil {
		return ports.ZeroShotResult{}, domain.WrapError(domain.ErrMalformedOutput, "zero-shot classify", err)
	}
	return ports.ZeroShotResult{Labels: resp.Labels, Scores: resp.Scores}, nil
}

func (p *Pipeline) postJSON(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal zero-shot request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create zero-shot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface zero-shot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(msg)}
	}
	out, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read zero-shot response: %w", err)
	}
	return out, nil
}

// decodeZeroShot accepts both the object form and the single-element array
// form returned by different inference backends.
func decodeZeroShot(raw []byte) (zeroShotResponse, error) {
	trimmed := bytes.TrimSpace(raw)
	var resp zeroShotResponse
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []zeroShotResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return zeroShotResponse{}, fmt.Errorf("decode zero-shot response: %w", err)
		}
		if len(list) == 0 {
			return zeroShotResponse{}, errors.New("empty zero-shot response")
		}
		resp = list[0]
	} else if err := json.Unmarshal(trimmed, &resp); err != nil {
		return zeroShotResponse{}, fmt.Errorf("decode zero-shot response: %w", err)
	}

	if len(resp.Labels) == 0 || len(resp.Labels) != len(resp.Scores) {
		return zeroShotResponse{}, fmt.Errorf("zero-shot response has %d labels and %d scores", len(resp.Labels), len(resp.Scores))
	}
	return resp, nil
}
