package domain

import (
	"path/filepath"
	"strings"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatText DocumentFormat = "txt"
)

// Document is an uploaded email body. It lives only for the duration of one request.
type Document struct {
	Filename string
	Content  []byte
}

// Format sniffs the document format from the filename extension.
func (d Document) Format() (DocumentFormat, bool) {
	return FormatFromFilename(d.Filename)
}

func FormatFromFilename(filename string) (DocumentFormat, bool) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	switch ext {
	case ".pdf":
		return FormatPDF, true
	case ".txt":
		return FormatText, true
	default:
		return "", false
	}
}

// Truncate returns the first limit code points of text.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for idx := range text {
		if count == limit {
			return text[:idx]
		}
		count++
	}
	return text
}
