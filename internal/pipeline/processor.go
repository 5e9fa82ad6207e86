package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docintel/constants"
	"github.com/joseph-ayodele/docintel/internal/ai"
	"github.com/joseph-ayodele/docintel/internal/cache"
	"github.com/joseph-ayodele/docintel/internal/classify"
	"github.com/joseph-ayodele/docintel/internal/common"
	"github.com/joseph-ayodele/docintel/internal/normalize"
	"github.com/joseph-ayodele/docintel/internal/ocr"
)

// TextExtractor is the OCR boundary the processor depends on.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// Summarizer is the AI boundary. DefaultProvider lets the processor key a
// per-call credential overlay when the caller named no provider.
type Summarizer interface {
	Analyze(ctx context.Context, req ai.Request) (ai.AnalysisResult, error)
	DefaultProvider() string
}

// Options are the per-document processing knobs supplied by the caller.
type Options struct {
	Detail       constants.DetailLevel
	LanguageHint string

	// DisableStructured skips structured field extraction even when the
	// classifier has an extractor for the detected type.
	DisableStructured bool

	// Provider / Credential select and authenticate an AI backend for this
	// one document. The credential never touches process-wide state.
	Provider   string
	Credential string
}

// Result is the output contract handed to reporting collaborators.
type Result struct {
	ExtractedText      string             `json:"extracted_text"`
	TextLength         int                `json:"text_length"`
	Analysis           ai.AnalysisResult  `json:"ai_analysis"`
	StructuredData     map[string]any     `json:"structured_data,omitempty"`
	DocumentType       string             `json:"document_type,omitempty"`
	DocumentConfidence float64            `json:"document_confidence,omitempty"`
	Warnings           []string           `json:"warnings"`

	Method    string        `json:"method"`
	Pages     int           `json:"pages"`
	FromCache bool          `json:"from_cache"`
	Duration  time.Duration `json:"-"`
}

// Processor chains validation, OCR, normalization, classification and AI
// analysis for one document. AI problems degrade to warnings; the run fails
// only on validation errors or when no text could be extracted at all.
type Processor struct {
	cfg        common.PipelineConfig
	ocr        TextExtractor
	classifier *classify.Classifier
	analyzer   Summarizer
	cache      *cache.Store
	logger     *slog.Logger
}

func NewProcessor(cfg common.PipelineConfig, extractor TextExtractor, classifier *classify.Classifier, analyzer Summarizer, store *cache.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 25
	}
	if cfg.StructuredThreshold <= 0 {
		cfg.StructuredThreshold = 0.5
	}
	if classifier == nil {
		classifier = classify.NewClassifier(logger)
	}
	return &Processor{
		cfg:        cfg,
		ocr:        extractor,
		classifier: classifier,
		analyzer:   analyzer,
		cache:      store,
		logger:     logger,
	}
}

func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	warnings := []string{}

	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = common.WithRequestID(ctx, reqID)
	}

	if err := common.ValidateSourceFile(path, p.cfg.MaxFileSizeMB*1024*1024); err != nil {
		p.logger.Error("pipeline.validate.failed",
			"request_id", reqID, "path", path,
			"status", string(constants.StageFailed), "error", err)
		return nil, err
	}

	text, extraction, fromCache, extractWarnings, err := p.extractText(ctx, path)
	if err != nil {
		p.logger.Error("pipeline.extract.failed",
			"request_id", reqID, "path", path,
			"status", string(constants.StageFailed), "error", err)
		return nil, err
	}
	warnings = append(warnings, extractWarnings...)
	p.logger.Info("pipeline.extract.ok",
		"request_id", reqID, "path", path,
		"status", string(constants.StageOCROK),
		"method", extraction.Method, "from_cache", fromCache)

	text = normalize.Normalize(text)
	if strings.TrimSpace(text) == "" {
		return nil, common.NewOCRProcessingError("no text could be extracted", nil)
	}

	cls := p.classifier.Classify(text)
	res := &Result{
		ExtractedText:      text,
		TextLength:         len([]rune(text)),
		DocumentType:       string(cls.Type),
		DocumentConfidence: cls.Confidence,
		Method:             extraction.Method,
		Pages:              extraction.Pages,
		FromCache:          fromCache,
	}

	if !opts.DisableStructured {
		if extractor, ok := p.classifier.ExtractorFor(cls.Type); ok {
			if structured, found := extractor.Extract(text); found && structured.Confidence >= p.cfg.StructuredThreshold {
				res.StructuredData = structured.Fields
			}
		}
	}

	aiCtx := ctx
	if opts.Credential != "" {
		provider := opts.Provider
		if provider == "" {
			provider = p.analyzer.DefaultProvider()
		}
		aiCtx = ai.WithCredential(ctx, provider, opts.Credential)
	}
	analysis, aiErr := p.analyzer.Analyze(aiCtx, ai.Request{
		Text:         text,
		Detail:       opts.Detail,
		LanguageHint: opts.LanguageHint,
		DocumentType: cls.Type,
		Provider:     opts.Provider,
		Structured:   res.StructuredData,
	})
	if aiErr != nil {
		// analysis is advisory: the degraded result ships, the error is a warning
		warnings = append(warnings, "ai analysis degraded: "+aiErr.Error())
	}
	res.Analysis = analysis
	res.Warnings = warnings
	res.Duration = time.Since(start)

	p.logger.Info("pipeline.process.ok",
		"request_id", reqID,
		"path", path,
		"status", string(constants.StageAnalyzed),
		"method", res.Method,
		"pages", res.Pages,
		"document_type", res.DocumentType,
		"text_len", res.TextLength,
		"from_cache", res.FromCache,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// extractText serves the raw text from the content-hash cache when possible,
// falling back to a full OCR run. Cache trouble never fails the pipeline.
func (p *Processor) extractText(ctx context.Context, path string) (string, ocr.ExtractionResult, bool, []string, error) {
	var warnings []string

	contentHash := ""
	if p.cache != nil {
		h, err := cache.HashFile(path)
		if err != nil {
			warnings = append(warnings, "content hash failed: "+err.Error())
		} else {
			contentHash = h
			if entry, ok := p.cache.Lookup(ctx, contentHash); ok {
				return entry.Text, ocr.ExtractionResult{
					Text:       entry.Text,
					Pages:      entry.Pages,
					Method:     entry.Method,
					Confidence: entry.Confidence,
				}, true, warnings, nil
			}
		}
	}

	extraction, err := p.ocr.Extract(ctx, path)
	if err != nil {
		return "", ocr.ExtractionResult{}, false, warnings, err
	}
	warnings = append(warnings, extraction.Warnings...)

	if contentHash != "" {
		p.cache.Save(ctx, cache.Entry{
			ContentHash: contentHash,
			Text:        extraction.Text,
			Method:      extraction.Method,
			Pages:       extraction.Pages,
			Confidence:  extraction.Confidence,
		})
	}
	return extraction.Text, extraction, false, warnings, nil
}
