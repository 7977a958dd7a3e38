package extractor

import (
	"context"
	"fmt"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/mail-triage/internal/infrastructure/extractor/plaintext"
)

// Extractor dispatches on the filename extension. It has no side effects.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, doc domain.Document) (string, error) {
	format, ok := doc.Format()
	if !ok {
		return "", domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract text",
			fmt.Errorf("file %q: upload a .pdf or .txt file", doc.Filename),
		)
	}

	switch format {
	case domain.FormatPDF:
		text, err := pdf.Extract(doc.Content)
		if err != nil {
			return "", domain.WrapError(domain.ErrEmptyDocument, "extract text", err)
		}
		return text, nil
	default:
		return plaintext.Decode(doc.Content), nil
	}
}
