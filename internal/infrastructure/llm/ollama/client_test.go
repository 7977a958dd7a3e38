package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

func newOllamaServer(t *testing.T, generate http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/show":
			_, _ = w.Write([]byte(`{"modelfile":"FROM gen"}`))
		case "/api/generate":
			generate(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGeneratorSendsSystemAndPromptAsJSON(t *testing.T) {
	var payload map[string]any
	server := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":" {\"category\":\"Productive\",\"reply\":\"ok\"} "}`))
	})
	defer server.Close()

	gen, err := NewGenerator(context.Background(), New(server.URL, "gen", 0, nil))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	out, err := gen.Complete(context.Background(), "rules", "email body")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != `{"category":"Productive","reply":"ok"}` {
		t.Fatalf("unexpected output: %q", out)
	}
	if payload["system"] != "rules" || payload["prompt"] != "email body" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["format"] != "json" || payload["stream"] != false {
		t.Fatalf("expected non-streaming json format, got %v", payload)
	}
}

func TestGenerateIncludesHTTPBodyInError(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	})
	defer server.Close()

	gen, err := NewGenerator(context.Background(), New(server.URL, "gen", 0, nil))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	_, err = gen.Complete(context.Background(), "s", "u")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected 502 to be temporary, got %v", err)
	}
}

func TestNewGeneratorFailsWhenModelMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewGenerator(context.Background(), New(server.URL, "missing", 0, nil)); err == nil {
		t.Fatalf("expected error for missing model")
	}
	if _, err := NewGenerator(context.Background(), New(server.URL, " ", 0, nil)); err == nil {
		t.Fatalf("expected error for empty model name")
	}
}
