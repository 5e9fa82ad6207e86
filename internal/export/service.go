package export

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docintel/internal/pipeline"
)

// Row pairs one processed file with its outcome. Err is set for files the
// pipeline rejected; such rows still appear in the workbook.
type Row struct {
	Path   string
	Result *pipeline.Result
	Err    error
}

// Service produces XLSX bytes from a batch of pipeline results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns an XLSX workbook (as bytes) summarizing a batch run.
func (s *Service) ResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"File",
		"Status",
		"Document Type",
		"Type Confidence",
		"Method",
		"Pages",
		"Language",
		"Summary",
		"Key Points",
		"Structured Fields",
		"Warnings",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Path)
		if r.Err != nil {
			write(2, "FAILED")
			write(11, truncate(r.Err.Error(), 180))
			rowIdx++
			continue
		}

		res := r.Result
		write(2, "OK")
		write(3, res.DocumentType)
		write(4, fmt.Sprintf("%.2f", res.DocumentConfidence))
		write(5, res.Method)
		write(6, res.Pages)
		write(7, res.Analysis.Language)
		write(8, truncate(res.Analysis.Summary, 180))
		write(9, truncate(strings.Join(res.Analysis.KeyPoints, " • "), 180))
		write(10, truncate(formatStructured(res.StructuredData), 180))
		write(11, truncate(strings.Join(res.Warnings, "; "), 180))
		rowIdx++
	}

	_ = f.SetColWidth(sheet, "A", "A", 42) // path
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	_ = f.SetColWidth(sheet, "E", "G", 12)
	_ = f.SetColWidth(sheet, "H", "I", 60)
	_ = f.SetColWidth(sheet, "J", "J", 40)
	_ = f.SetColWidth(sheet, "K", "K", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// formatStructured renders extracted fields as stable "key=value" pairs.
func formatStructured(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
