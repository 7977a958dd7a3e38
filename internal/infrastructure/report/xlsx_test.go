package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

func TestXLSXWriterWritesOneRowPerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	rows := []domain.BatchRow{
		{Filename: "bug.txt", Result: &domain.ClassificationResult{
			Category: domain.CategoryProductive, Confidence: 0.9123, Language: "pt-BR", Provider: "local-zero-shot", SuggestedReply: "Olá!",
		}},
		{Filename: "empty.txt", Error: "empty document"},
	}
	if err := NewXLSXWriter(path).Write(context.Background(), rows); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(got))
	}
	if got[0][0] != "Filename" || got[1][0] != "bug.txt" || got[1][1] != "Productive" || got[1][4] != "local-zero-shot" {
		t.Fatalf("unexpected first row %v", got[1])
	}
	if got[2][0] != "empty.txt" || got[2][len(got[2])-1] != "empty document" {
		t.Fatalf("unexpected error row %v", got[2])
	}
}
