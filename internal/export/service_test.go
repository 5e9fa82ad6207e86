package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docintel/internal/ai"
	"github.com/joseph-ayodele/docintel/internal/pipeline"
)

func TestResultsXLSXRoundTrip(t *testing.T) {
	rows := []Row{
		{
			Path: "/in/facture.pdf",
			Result: &pipeline.Result{
				DocumentType:       "invoice",
				DocumentConfidence: 0.7,
				Method:             "pdf-text",
				Pages:              1,
				Analysis: ai.AnalysisResult{
					Summary:   "Facture de 1500€ émise en mars.",
					KeyPoints: []string{"Total TTC 1500€", "Échéance 30 jours"},
					Language:  "fr",
				},
				StructuredData: map[string]any{"invoice_number": "2024-001", "total": 1500.0},
				Warnings:       []string{"page 2 OCR failed"},
			},
		},
		{
			Path: "/in/broken.pdf",
			Err:  errors.New("file too large"),
		},
	}

	b, err := NewService(nil).ResultsXLSX(rows)
	if err != nil {
		t.Fatalf("ResultsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	get := func(cell string) string {
		t.Helper()
		v, err := f.GetCellValue("Documents", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		return v
	}

	if get("A1") != "File" || get("J1") != "Structured Fields" || get("K1") != "Warnings" {
		t.Errorf("header row wrong: %q %q %q", get("A1"), get("J1"), get("K1"))
	}
	if get("A2") != "/in/facture.pdf" || get("B2") != "OK" || get("C2") != "invoice" {
		t.Errorf("row 2 = %q %q %q", get("A2"), get("B2"), get("C2"))
	}
	if get("G2") != "fr" {
		t.Errorf("language = %q", get("G2"))
	}
	if get("J2") != "invoice_number=2024-001; total=1500" {
		t.Errorf("structured fields = %q", get("J2"))
	}
	if get("B3") != "FAILED" || get("K3") != "file too large" {
		t.Errorf("failed row = %q %q", get("B3"), get("K3"))
	}
}

func TestResultsXLSXEmptyBatch(t *testing.T) {
	b, err := NewService(nil).ResultsXLSX(nil)
	if err != nil {
		t.Fatalf("ResultsXLSX: %v", err)
	}
	if len(b) == 0 {
		t.Error("empty workbook bytes")
	}
}
