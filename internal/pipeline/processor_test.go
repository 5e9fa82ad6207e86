package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docintel/internal/ai"
	"github.com/joseph-ayodele/docintel/internal/cache"
	"github.com/joseph-ayodele/docintel/internal/common"
	"github.com/joseph-ayodele/docintel/internal/ocr"
)

const invoiceText = "Facture n° 2024-001\nDate: 15/03/2024\nTotal TTC: 1500€"

type stubExtractor struct {
	result ocr.ExtractionResult
	err    error
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (ocr.ExtractionResult, error) {
	s.calls++
	return s.result, s.err
}

type stubSummarizer struct {
	result  ai.AnalysisResult
	err     error
	lastReq ai.Request
	lastCtx context.Context
	calls   int
}

func (s *stubSummarizer) Analyze(ctx context.Context, req ai.Request) (ai.AnalysisResult, error) {
	s.calls++
	s.lastReq = req
	s.lastCtx = ctx
	return s.result, s.err
}

func (s *stubSummarizer) DefaultProvider() string { return "stub" }

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestProcessor(ext *stubExtractor, sum *stubSummarizer, store *cache.Store) *Processor {
	return NewProcessor(common.PipelineConfig{MaxFileSizeMB: 25, StructuredThreshold: 0.5},
		ext, nil, sum, store, nil)
}

func TestProcessFileInvoiceEndToEnd(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{Text: invoiceText, Pages: 1, Method: "pdf-text", Confidence: 1.0}}
	sum := &stubSummarizer{result: ai.AnalysisResult{Summary: "Facture de 1500€.", Language: "fr", Provider: "stub"}}
	p := newTestProcessor(ext, sum, nil)

	res, err := p.ProcessFile(context.Background(), writeDoc(t, "facture.pdf", "%PDF-fake"), Options{})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.DocumentType != "invoice" {
		t.Errorf("document_type = %q", res.DocumentType)
	}
	if res.DocumentConfidence <= 0 {
		t.Errorf("document_confidence = %f", res.DocumentConfidence)
	}
	if res.StructuredData["invoice_number"] != "2024-001" {
		t.Errorf("structured_data = %v", res.StructuredData)
	}
	if v, _ := res.StructuredData["total"].(float64); v != 1500.0 {
		t.Errorf("total = %v", res.StructuredData["total"])
	}
	if sum.lastReq.Structured == nil {
		t.Error("structured fields not seeded into the analysis request")
	}
	if res.Analysis.Summary != "Facture de 1500€." {
		t.Errorf("analysis not propagated: %+v", res.Analysis)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestValidationFailureStopsBeforeOCR(t *testing.T) {
	ext := &stubExtractor{}
	p := newTestProcessor(ext, &stubSummarizer{}, nil)

	_, err := p.ProcessFile(context.Background(), writeDoc(t, "script.exe", "MZ"), Options{})
	if !errors.Is(err, common.ErrFileValidation) {
		t.Fatalf("err = %v", err)
	}
	if ext.calls != 0 {
		t.Errorf("OCR invoked despite validation failure")
	}
}

func TestAIFailureSurfacesAsWarningOnly(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{Text: invoiceText, Pages: 1, Method: "pdf-text"}}
	sum := &stubSummarizer{
		result: ai.AnalysisResult{Summary: "résumé local", Metadata: map[string]string{"degraded": "provider_error"}},
		err:    common.NewAIAnalysisError("provider openai failed", nil),
	}
	p := newTestProcessor(ext, sum, nil)

	res, err := p.ProcessFile(context.Background(), writeDoc(t, "facture.pdf", "x"), Options{})
	if err != nil {
		t.Fatalf("AI failure must not fail the run: %v", err)
	}
	if res.Analysis.Summary != "résumé local" {
		t.Errorf("degraded analysis not kept: %+v", res.Analysis)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "ai analysis degraded") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestNoExtractedTextFailsRun(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{Text: "   \n\n  ", Method: "pdf-ocr"}}
	p := newTestProcessor(ext, &stubSummarizer{}, nil)

	_, err := p.ProcessFile(context.Background(), writeDoc(t, "blank.pdf", "x"), Options{})
	if !errors.Is(err, common.ErrOCRProcessing) {
		t.Fatalf("err = %v", err)
	}
}

func TestOCRWarningsPropagate(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{
		Text:     "premiere page\n\ntroisieme page du document analysé",
		Pages:    3,
		Method:   "pdf-ocr",
		Warnings: []string{"page 2 OCR failed: engine crashed"},
	}}
	p := newTestProcessor(ext, &stubSummarizer{}, nil)

	res, err := p.ProcessFile(context.Background(), writeDoc(t, "scan.pdf", "x"), Options{})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "page 2 OCR failed") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestCacheHitSkipsOCR(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	ext := &stubExtractor{result: ocr.ExtractionResult{Text: invoiceText, Pages: 1, Method: "pdf-text"}}
	p := newTestProcessor(ext, &stubSummarizer{}, store)
	path := writeDoc(t, "facture.pdf", "same bytes")

	first, err := p.ProcessFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.FromCache || ext.calls != 1 {
		t.Fatalf("first run should extract: from_cache=%v calls=%d", first.FromCache, ext.calls)
	}

	second, err := p.ProcessFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.FromCache || ext.calls != 1 {
		t.Errorf("second run should hit cache: from_cache=%v calls=%d", second.FromCache, ext.calls)
	}
	if second.ExtractedText != first.ExtractedText {
		t.Errorf("cached text differs")
	}
}

func TestRequestIDStampedOnRunContext(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{Text: invoiceText, Method: "pdf-text"}}
	sum := &stubSummarizer{}
	p := newTestProcessor(ext, sum, nil)

	if _, err := p.ProcessFile(context.Background(), writeDoc(t, "facture.pdf", "x"), Options{}); err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if common.RequestIDFromContext(sum.lastCtx) == "" {
		t.Error("run context carries no request id")
	}

	// a caller-supplied id survives untouched
	ctx := common.WithRequestID(context.Background(), "caller-1")
	if _, err := p.ProcessFile(ctx, writeDoc(t, "facture.pdf", "x"), Options{}); err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if got := common.RequestIDFromContext(sum.lastCtx); got != "caller-1" {
		t.Errorf("request id = %q, want caller-1", got)
	}
}

func TestCredentialOverlayUsesDefaultProviderName(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{Text: invoiceText, Method: "pdf-text"}}
	sum := &stubSummarizer{}
	p := newTestProcessor(ext, sum, nil)

	_, err := p.ProcessFile(context.Background(), writeDoc(t, "facture.pdf", "x"), Options{Credential: "s3cret"})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	store := ai.NewCredentialStore(map[string]string{"stub": "default"})
	got, rErr := store.Resolve(sum.lastCtx, "stub")
	if rErr != nil || got != "s3cret" {
		t.Errorf("resolved %q err=%v, want per-call secret", got, rErr)
	}
}

func TestDisableStructuredSkipsExtraction(t *testing.T) {
	ext := &stubExtractor{result: ocr.ExtractionResult{Text: invoiceText, Method: "pdf-text"}}
	sum := &stubSummarizer{}
	p := newTestProcessor(ext, sum, nil)

	res, err := p.ProcessFile(context.Background(), writeDoc(t, "facture.pdf", "x"), Options{DisableStructured: true})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.StructuredData != nil {
		t.Errorf("structured_data = %v", res.StructuredData)
	}
	if sum.lastReq.Structured != nil {
		t.Error("structured fields leaked into analysis request")
	}
}
