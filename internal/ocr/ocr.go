// Package ocr turns source documents (PDF, raster images, plain text) into
// raw text. PDFs get a native text-layer fast path; scanned PDFs and images
// go through image preprocessing and an OCR engine.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/docintel/constants"
	"github.com/joseph-ayodele/docintel/internal/common"
	"github.com/joseph-ayodele/docintel/internal/preprocess"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language       string // tesseract language set, e.g. "fra+eng"
	DPI            int    // rasterization DPI for scanned PDFs, default 300
	MaxPages       int    // PDF page cap, default 50
	MinNativeChars int    // below this, the native text layer is treated as scanned

	TessdataDir         string
	EnableTSVConfidence bool
	EnablePreprocessing bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.FileFormat
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "txt"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg       Config
	runner    Runner
	engine    Engine
	prep      *preprocess.Pipeline
	logger    *slog.Logger
	pageCount func(path string) (int, error)
}

// NewExtractor wires an Extractor. A nil engine selects the exec Tesseract
// engine; a nil prep disables preprocessing regardless of configuration.
func NewExtractor(cfg Config, engine Engine, prep *preprocess.Pipeline, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "fra+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.MinNativeChars <= 0 {
		cfg.MinNativeChars = 100
	}
	runner := Runner(execRunner{})
	if engine == nil {
		engine = NewExecEngine(cfg, runner)
	}
	if prep == nil {
		cfg.EnablePreprocessing = false
	}
	return &Extractor{
		cfg:       cfg,
		runner:    runner,
		engine:    engine,
		prep:      prep,
		logger:    logger,
		pageCount: api.PageCountFile,
	}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext, "engine", e.engine.Name())
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.TXT:
		res, err := e.extractPlainText(path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("ocr.extract.unsupported", "extension", ext)
		return ExtractionResult{}, common.NewOCRProcessingError(
			fmt.Sprintf("unsupported extension: %q", ext), nil)
	}
}

func (e *Extractor) extractPlainText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TXT},
			common.NewOCRProcessingError("read text file", err)
	}
	return ExtractionResult{
		Text:       strings.TrimSpace(string(b)),
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "txt",
		Language:   e.cfg.Language,
		Confidence: 1.0,
	}, nil
}
