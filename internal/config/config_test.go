package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "")
	t.Setenv("DEFAULT_PROVIDER", "")
	t.Setenv("LOCAL_REPLY_SOURCE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default model gpt-4o-mini, got %q", cfg.OpenAIModel)
	}
	if cfg.OpenAITemperature != 0.4 {
		t.Fatalf("expected default temperature 0.4, got %v", cfg.OpenAITemperature)
	}
	if cfg.ProviderTimeoutSeconds != 30 {
		t.Fatalf("expected default timeout 30, got %d", cfg.ProviderTimeoutSeconds)
	}
	if cfg.DefaultProvider != "openai" {
		t.Fatalf("expected default provider openai, got %q", cfg.DefaultProvider)
	}
	if cfg.LocalReplySource != ReplySourceRemote {
		t.Fatalf("expected remote reply source, got %q", cfg.LocalReplySource)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	content := "openai_model: gpt-4.1-mini\napi_max_upload_mb: 5\nbreaker_enabled: false\nhf_model: org/from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("API_MAX_UPLOAD_MB", "")
	t.Setenv("BREAKER_ENABLED", "")
	t.Setenv("HF_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected env override, got %q", cfg.OpenAIModel)
	}
	if cfg.APIMaxUploadMB != 5 {
		t.Fatalf("expected file value 5, got %d", cfg.APIMaxUploadMB)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled from file")
	}
	if cfg.HFModel != "org/from-file" {
		t.Fatalf("expected file hf model, got %q", cfg.HFModel)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "soon")
	t.Setenv("BREAKER_FAILURE_RATIO", "half")
	t.Setenv("BREAKER_ENABLED", "maybe")
	t.Setenv("LOCAL_REPLY_SOURCE", "OLLAMA")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProviderTimeoutSeconds != 30 || cfg.BreakerFailureRatio != 0.5 || !cfg.BreakerEnabled {
		t.Fatalf("invalid values must fall back to defaults: %+v", cfg)
	}
	if cfg.LocalReplySource != ReplySourceOllama {
		t.Fatalf("expected ollama reply source, got %q", cfg.LocalReplySource)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
