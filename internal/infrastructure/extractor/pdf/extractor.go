package pdf

import (
	"bytes"
	"fmt"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
)

// pageSource abstracts the page-level API of the PDF reader.
type pageSource interface {
	NumPage() int
	PageText(index int) (string, error)
}

type readerSource struct {
	reader *ledongthuc.Reader
}

func (s readerSource) NumPage() int {
	return s.reader.NumPage()
}

func (s readerSource) PageText(index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d: %v", index, r)
		}
	}()

	page := s.reader.Page(index)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// Extract returns the text of every page joined by line breaks. A page that
// cannot be read contributes an empty string.
func Extract(raw []byte) (string, error) {
	source, err := open(raw)
	if err != nil {
		return "", err
	}
	return joinPages(source), nil
}

func open(raw []byte) (source pageSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			source = nil
			err = fmt.Errorf("open pdf: %v", r)
		}
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return readerSource{reader: reader}, nil
}

func joinPages(source pageSource) string {
	total := source.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		text, err := source.PageText(i)
		if err != nil {
			text = ""
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n")
}
