package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/infrastructure/resilience"
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client sends a system instruction plus user content to a hosted chat
// completion endpoint and returns the raw completion text.
type Client struct {
	api         *goopenai.Client
	model       string
	temperature float32
	exec        *resilience.Executor
}

func New(cfg Config, exec *resilience.Executor) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	apiCfg := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		apiCfg.BaseURL = strings.TrimRight(base, "/")
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:         goopenai.NewClientWithConfig(apiCfg),
		model:       model,
		temperature: float32(cfg.Temperature),
		exec:        exec,
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var content string
	call := func(callCtx context.Context) error {
		resp, err := c.api.CreateChatCompletion(callCtx, goopenai.ChatCompletionRequest{
			Model: c.model,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: c.temperature,
			ResponseFormat: &goopenai.ChatCompletionResponseFormat{
				Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return domain.WrapError(domain.ErrMalformedOutput, "openai completion", errors.New("no choices in response"))
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	if c.exec == nil {
		if err := call(ctx); err != nil {
			return "", wrapTemporaryIfNeeded("openai completion", err)
		}
		return content, nil
	}
	if err := c.exec.Execute(ctx, "openai.chat_completion", call, classifyOpenAIError); err != nil {
		return "", wrapTemporaryIfNeeded("openai completion", err)
	}
	return content, nil
}
