package ports

import (
	"context"
	"time"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

// TextExtractor turns raw uploaded bytes into a single text string.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.Document) (string, error)
}

// TextPreprocessor produces the human-readable cleaned text and the
// feature-oriented normalized text from one extracted text.
type TextPreprocessor interface {
	Clean(text string) string
	Normalize(text string, stemming bool) string
	Preprocess(text string, stemming bool) (cleaned, normalized string)
}

// LanguageDetector never fails; undetectable input yields domain.LanguageUnknown.
type LanguageDetector interface {
	Detect(text string) string
}

// Provider wraps one classification backend.
type Provider interface {
	Classify(ctx context.Context, text string) (domain.Verdict, error)
}

// ProviderRoute binds a backend adapter to the tags reported on success and on
// fallback.
type ProviderRoute struct {
	Kind        domain.ProviderKind
	Provider    Provider
	Tag         string
	FallbackTag string
}

// ProviderRouter resolves a request's provider selection to a route. ok is false
// for unrecognized selections.
type ProviderRouter interface {
	Resolve(tag string) (route ProviderRoute, ok bool)
}

// ClassificationObserver is notified once per finished classification.
type ClassificationObserver interface {
	ObserveClassification(provider string, category domain.Category, fallback bool, elapsed time.Duration)
}

// ReplyCompleter sends a system instruction plus user content to a completion
// service and returns the raw completion text.
type ReplyCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ZeroShotResult holds labels ranked by descending score.
type ZeroShotResult struct {
	Labels []string
	Scores []float64
}

// ZeroShotClassifier scores text against candidate labels.
type ZeroShotClassifier interface {
	ClassifyZeroShot(ctx context.Context, text string, labels []string, hypothesisTemplate string) (ZeroShotResult, error)
}

// DocumentSource lists and reads documents for offline batch runs.
type DocumentSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}

// ReportWriter persists a batch run summary.
type ReportWriter interface {
	Write(ctx context.Context, rows []domain.BatchRow) error
}
