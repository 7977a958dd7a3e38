package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/mail-triage/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, genModel string, timeout time.Duration, exec *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: timeout},
		exec:       exec,
	}
}

// Generator produces a JSON completion from a locally served model.
type Generator struct {
	client *Client
}

// NewGenerator checks that the configured model is available before handing
// out a generator.
func NewGenerator(ctx context.Context, client *Client) (*Generator, error) {
	if strings.TrimSpace(client.genModel) == "" {
		return nil, fmt.Errorf("ollama generator: model name is empty")
	}
	var show map[string]any
	request := map[string]any{"model": client.genModel}
	if err := client.call(ctx, "show", "/api/show", request, &show); err != nil {
		return nil, fmt.Errorf("ollama generator: load model %q: %w", client.genModel, err)
	}
	return &Generator{client: client}, nil
}

func (g *Generator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]any{
		"model":  g.client.genModel,
		"system": systemPrompt,
		"prompt": userPrompt,
		"stream": false,
		"format": "json",
	}
	var response struct {
		Response string `json:"response"`
	}
	if err := g.client.call(ctx, "generate", "/api/generate", reqBody, &response); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload any, out any) error {
	do := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}
	if c.exec == nil {
		return wrapTemporaryIfNeeded("ollama "+operation, do(ctx))
	}
	err := c.exec.Execute(ctx, "ollama."+operation, do, classifyOllamaError)
	return wrapTemporaryIfNeeded("ollama "+operation, err)
}
