package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

const sheetName = "Classifications"

var headers = []string{
	"Filename",
	"Category",
	"Confidence",
	"Language",
	"Provider",
	"Suggested Reply",
	"Preview",
	"Error",
}

// XLSXWriter writes batch rows to a spreadsheet file.
type XLSXWriter struct {
	path string
}

func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

func (w *XLSXWriter) Write(_ context.Context, rows []domain.BatchRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, r.Filename)
		if r.Result != nil {
			write(2, string(r.Result.Category))
			write(3, r.Result.Confidence)
			write(4, r.Result.Language)
			write(5, r.Result.Provider)
			write(6, r.Result.SuggestedReply)
			write(7, r.Result.Preview)
		}
		write(8, r.Error)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "E", 16)
	_ = f.SetColWidth(sheetName, "F", "G", 60)
	_ = f.SetColWidth(sheetName, "H", "H", 40)

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
