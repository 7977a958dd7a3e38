package mcpadapter

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
)

const (
	ToolClassifyEmail = "classify_email"
	defaultFilename   = "email.txt"
)

// Server exposes the classification workflow as MCP tools.
type Server struct {
	classifier      ports.EmailClassifier
	defaultProvider string
	logger          *slog.Logger
}

func NewServer(classifier ports.EmailClassifier, defaultProvider string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		classifier:      classifier,
		defaultProvider: defaultProvider,
		logger:          logger,
	}
}

func (s *Server) MCPServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	srv.AddTool(classifyEmailTool(), s.handleClassifyEmail)
	return srv
}

func classifyEmailTool() mcp.Tool {
	return mcp.NewTool(ToolClassifyEmail,
		mcp.WithDescription("Classify an e-mail as Productive or Unproductive and draft a suggested reply."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("E-mail body. Plain text, or base64 of the file bytes when base64 is true."),
		),
		mcp.WithString("filename",
			mcp.Description("Original file name; its extension (.txt or .pdf) selects the extractor. Defaults to email.txt."),
		),
		mcp.WithString("provider",
			mcp.Description("Backend: openai (remote-llm) or huggingface (local-zero-shot)."),
		),
		mcp.WithBoolean("stemming",
			mcp.Description("Apply Portuguese stemming during normalization."),
		),
		mcp.WithBoolean("base64",
			mcp.Description("Set when content is base64-encoded file bytes, required for PDF."),
		),
	)
}

func (s *Server) handleClassifyEmail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := strings.TrimSpace(request.GetString("filename", defaultFilename))
	if filename == "" {
		filename = defaultFilename
	}
	provider := strings.TrimSpace(request.GetString("provider", s.defaultProvider))
	if provider == "" {
		provider = s.defaultProvider
	}

	raw := []byte(content)
	if request.GetBool("base64", false) {
		raw, err = base64.StdEncoding.DecodeString(strings.TrimSpace(content))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("content is not valid base64: %v", err)), nil
		}
	}

	result, err := s.classifier.Classify(ctx, domain.ClassifyRequest{
		Document: domain.Document{Filename: filename, Content: raw},
		Provider: provider,
		Stemming: request.GetBool("stemming", false),
	})
	if err != nil {
		if domain.IsRejection(err) {
			s.logger.WarnContext(ctx, "mcp classify rejected", "filename", filename, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode classification: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
