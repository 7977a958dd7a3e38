package ports

import (
	"context"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

// EmailClassifier is the inbound contract for upload classification.
type EmailClassifier interface {
	Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error)
}
