package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

type classifierFake struct {
	result *domain.ClassificationResult
	err    error
	got    domain.ClassifyRequest
}

func (f *classifierFake) Classify(_ context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error) {
	f.got = req
	return f.result, f.err
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolClassifyEmail
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestClassifyEmailToolReturnsJSON(t *testing.T) {
	classifier := &classifierFake{result: &domain.ClassificationResult{
		Category: domain.CategoryUnproductive, Confidence: 1, SuggestedReply: "Obrigado!", Language: "pt-BR", Preview: "Obrigado", Provider: "remote-llm",
	}}
	srv := NewServer(classifier, "openai", nil)

	res, err := srv.handleClassifyEmail(context.Background(), callTool(map[string]any{
		"content":  "Obrigado, tudo certo!",
		"stemming": true,
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(textOf(t, res)), &out); err != nil {
		t.Fatalf("decode tool output: %v", err)
	}
	if out["category"] != "Unproductive" || out["provider"] != "remote-llm" {
		t.Fatalf("unexpected output %v", out)
	}
	if classifier.got.Document.Filename != "email.txt" || classifier.got.Provider != "openai" || !classifier.got.Stemming {
		t.Fatalf("unexpected request %+v", classifier.got)
	}
}

func TestClassifyEmailToolDecodesBase64(t *testing.T) {
	classifier := &classifierFake{result: &domain.ClassificationResult{Category: domain.CategoryProductive}}
	srv := NewServer(classifier, "openai", nil)

	_, err := srv.handleClassifyEmail(context.Background(), callTool(map[string]any{
		"content":  base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		"filename": "mail.pdf",
		"provider": "huggingface",
		"base64":   true,
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if string(classifier.got.Document.Content) != "%PDF-1.4" || classifier.got.Provider != "huggingface" {
		t.Fatalf("unexpected request %+v", classifier.got)
	}
}

func TestClassifyEmailToolErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		err  error
	}{
		{name: "missing content", args: map[string]any{}},
		{name: "bad base64", args: map[string]any{"content": "%%%", "base64": true}},
		{name: "rejection", args: map[string]any{"content": "  "}, err: domain.WrapError(domain.ErrEmptyDocument, "extract", errors.New("no text"))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(&classifierFake{err: tc.err}, "openai", nil)
			res, err := srv.handleClassifyEmail(context.Background(), callTool(tc.args))
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if !res.IsError {
				t.Fatalf("expected tool error result")
			}
		})
	}
}

func TestMCPServerBuilds(t *testing.T) {
	if NewServer(&classifierFake{}, "openai", nil).MCPServer("mail-triage", "test") == nil {
		t.Fatalf("expected server")
	}
}
