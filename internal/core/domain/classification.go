package domain

import "strings"

type Category string

const (
	CategoryProductive   Category = "Productive"
	CategoryUnproductive Category = "Unproductive"
)

var categoryAliases = []struct {
	prefix   string
	category Category
}{
	{prefix: "unproductive", category: CategoryUnproductive},
	{prefix: "improdutivo", category: CategoryUnproductive},
	{prefix: "productive", category: CategoryProductive},
	{prefix: "produtivo", category: CategoryProductive},
}

// ParseCategory maps a model-produced label onto the two known categories using a
// case-insensitive prefix match. ok is false when the label was not recognized, in
// which case the returned category is Productive.
func ParseCategory(label string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, alias := range categoryAliases {
		if strings.HasPrefix(normalized, alias.prefix) {
			return alias.category, true
		}
	}
	return CategoryProductive, false
}

// ProviderKind selects the backend that serves a request.
type ProviderKind string

const (
	ProviderRemoteLLM     ProviderKind = "remote-llm"
	ProviderLocalZeroShot ProviderKind = "local-zero-shot"
	ProviderUnknown       ProviderKind = ""
)

// ParseProviderKind accepts the canonical tags and the public aliases
// ("openai", "huggingface").
func ParseProviderKind(tag string) ProviderKind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "remote-llm", "openai":
		return ProviderRemoteLLM
	case "local-zero-shot", "huggingface":
		return ProviderLocalZeroShot
	default:
		return ProviderUnknown
	}
}

const (
	ProviderTagRemoteLLM         = "remote-llm"
	ProviderTagLocalZeroShot     = "local-zero-shot"
	ProviderTagRemoteLLMFallback = "remote-llm-fallback"
	ProviderTagLocalFallback     = "local-fallback"
	ProviderTagFallback          = "fallback"
)

const (
	LanguageUnknown = "unknown"

	// ClassificationInputLimit caps the normalized text sent to a provider.
	ClassificationInputLimit = 1200
	PreviewLimit             = 300

	AcknowledgmentReply = "Olá! Obrigado pela mensagem. Registramos sua solicitação."
)

// Verdict is what a provider adapter produces on success.
type Verdict struct {
	Category   Category
	Confidence float64
	Reply      string
}

// FallbackVerdict is substituted whenever a provider cannot produce a usable verdict.
func FallbackVerdict() Verdict {
	return Verdict{
		Category:   CategoryProductive,
		Confidence: 0,
		Reply:      AcknowledgmentReply,
	}
}

// ClassificationResult is the only output of the classification workflow.
type ClassificationResult struct {
	Category       Category `json:"category"`
	Confidence     float64  `json:"confidence"`
	SuggestedReply string   `json:"suggested_reply"`
	Language       string   `json:"language"`
	Preview        string   `json:"preview"`
	Provider       string   `json:"provider"`
}

// ClassifyRequest carries one upload through the workflow.
type ClassifyRequest struct {
	Document Document
	Provider string
	Stemming bool
}
