package httpadapter

import (
	"errors"
	"net/http"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnsupportedFormat), domain.IsKind(err, domain.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func rejectionReason(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return "unsupported_format"
	case domain.IsKind(err, domain.ErrEmptyDocument):
		return "empty_document"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

// userMessage keeps the innermost cause, which is the human-readable part of a
// wrapped domain error.
func userMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrEmptyDocument):
		return "no text could be extracted from the file"
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return "unsupported file type: only .pdf and .txt files are accepted"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return innermost(err).Error()
	default:
		return "internal error"
	}
}

func innermost(err error) error {
	for {
		var next error
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			errs := multi.Unwrap()
			if len(errs) == 0 {
				return err
			}
			next = errs[len(errs)-1]
		} else {
			next = errors.Unwrap(err)
		}
		if next == nil {
			return err
		}
		err = next
	}
}
