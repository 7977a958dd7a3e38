package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	APIPort     string
	LogLevel    string
	ServiceName string

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float64

	HFInferenceURL string
	HFAPIToken     string
	HFModel        string
	HFGenerator    string

	OllamaURL        string
	OllamaGenModel   string
	LocalReplySource string

	ProviderTimeoutSeconds int

	BreakerEnabled            bool
	BreakerMinRequests        int
	BreakerFailureRatio       float64
	BreakerOpenTimeoutSeconds int

	APIRateLimitRPS    float64
	APIRateLimitBurst  int
	APIMaxInFlight     int
	APIMaxUploadMB     int
	CORSAllowedOrigins []string

	DefaultProvider string

	BatchWorkers int
}

const (
	ReplySourceRemote = "remote"
	ReplySourceOllama = "ollama"
)

// Load reads an optional .env file, then the YAML file named by CONFIG_FILE,
// then the process environment. Later layers override earlier ones. Keys are
// the upper-case environment names; the YAML file uses the same names in
// lower case.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	return fromKoanf(k), nil
}

func fromKoanf(k *koanf.Koanf) Config {
	return Config{
		APIPort:     mustString(k, "API_PORT", "8080"),
		LogLevel:    mustString(k, "LOG_LEVEL", "info"),
		ServiceName: mustString(k, "SERVICE_NAME", "mail-triage"),

		OpenAIAPIKey:      mustString(k, "OPENAI_API_KEY", ""),
		OpenAIBaseURL:     mustString(k, "OPENAI_BASE_URL", ""),
		OpenAIModel:       mustString(k, "OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITemperature: mustFloat(k, "OPENAI_TEMPERATURE", 0.4),

		HFInferenceURL: mustString(k, "HF_INFERENCE_URL", "https://api-inference.huggingface.co/models"),
		HFAPIToken:     mustString(k, "HF_API_TOKEN", ""),
		HFModel:        mustString(k, "HF_MODEL", "MoritzLaurer/mDeBERTa-v3-base-mnli-xnli"),
		HFGenerator:    mustString(k, "HF_GENERATOR", "google/flan-t5-large"),

		OllamaURL:        mustString(k, "OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustString(k, "OLLAMA_GEN_MODEL", "llama3.1:8b"),
		LocalReplySource: replySource(mustString(k, "LOCAL_REPLY_SOURCE", ReplySourceRemote)),

		ProviderTimeoutSeconds: mustInt(k, "PROVIDER_TIMEOUT_SECONDS", 30),

		BreakerEnabled:            mustBool(k, "BREAKER_ENABLED", true),
		BreakerMinRequests:        mustInt(k, "BREAKER_MIN_REQUESTS", 10),
		BreakerFailureRatio:       mustFloat(k, "BREAKER_FAILURE_RATIO", 0.5),
		BreakerOpenTimeoutSeconds: mustInt(k, "BREAKER_OPEN_TIMEOUT_SECONDS", 30),

		APIRateLimitRPS:    mustFloat(k, "API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:  mustInt(k, "API_RATE_LIMIT_BURST", 0),
		APIMaxInFlight:     mustInt(k, "API_MAX_IN_FLIGHT", 0),
		APIMaxUploadMB:     mustInt(k, "API_MAX_UPLOAD_MB", 10),
		CORSAllowedOrigins: splitList(mustString(k, "CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		DefaultProvider: mustString(k, "DEFAULT_PROVIDER", "openai"),

		BatchWorkers: mustInt(k, "BATCH_WORKERS", 4),
	}
}

// envKey lower-cases variable names and skips empty values so an unset-looking
// variable does not mask the file.
func envKey(key, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return strings.ToLower(key), value
}

func replySource(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), ReplySourceOllama) {
		return ReplySourceOllama
	}
	return ReplySourceRemote
}

func lookup(k *koanf.Koanf, key string) string {
	return strings.TrimSpace(k.String(strings.ToLower(key)))
}

func mustString(k *koanf.Koanf, key, fallback string) string {
	v := lookup(k, key)
	if v == "" {
		return fallback
	}
	return v
}

func mustInt(k *koanf.Koanf, key string, fallback int) int {
	v := lookup(k, key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustFloat(k *koanf.Koanf, key string, fallback float64) float64 {
	v := lookup(k, key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustBool(k *koanf.Koanf, key string, fallback bool) bool {
	v := lookup(k, key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
