package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyDocument     = errors.New("empty document")
	ErrInvalidInput      = errors.New("invalid input")

	ErrProviderCall    = errors.New("provider call failed")
	ErrMalformedOutput = errors.New("malformed provider output")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsRejection reports whether err is one of the input rejections that cross the
// core boundary. Every other failure is absorbed into a fallback result.
func IsRejection(err error) bool {
	return IsKind(err, ErrUnsupportedFormat) || IsKind(err, ErrEmptyDocument)
}
