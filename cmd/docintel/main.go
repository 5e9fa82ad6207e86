package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joseph-ayodele/docintel/constants"
	"github.com/joseph-ayodele/docintel/internal/ai"
	"github.com/joseph-ayodele/docintel/internal/async"
	"github.com/joseph-ayodele/docintel/internal/cache"
	"github.com/joseph-ayodele/docintel/internal/classify"
	"github.com/joseph-ayodele/docintel/internal/common"
	"github.com/joseph-ayodele/docintel/internal/export"
	"github.com/joseph-ayodele/docintel/internal/ingest"
	"github.com/joseph-ayodele/docintel/internal/ocr"
	"github.com/joseph-ayodele/docintel/internal/pipeline"
	"github.com/joseph-ayodele/docintel/internal/preprocess"
)

func main() {
	var (
		detail       = flag.String("detail", "medium", "analysis detail level: short|medium|detailed")
		language     = flag.String("lang", "", "language hint (ISO 639-1), empty = auto-detect")
		provider     = flag.String("provider", "", "AI provider override for this run")
		credential   = flag.String("credential", "", "per-run AI credential (never stored)")
		noStructured = flag.Bool("no-structured", false, "skip structured field extraction")
		workers      = flag.Int("workers", 4, "concurrent workers in directory mode")
		xlsxOut      = flag.String("xlsx", "", "write a batch report workbook to this path (directory mode)")
		watch        = flag.Bool("watch", false, "keep watching the directory and process files as they arrive")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "docintel [flags] <file-or-directory>")
		os.Exit(2)
	}
	target := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	prep := preprocess.New(preprocess.Config{
		MinWidth:  cfg.Preprocess.MinWidth,
		Sharpness: cfg.Preprocess.Sharpness,
		Contrast:  cfg.Preprocess.Contrast,
	}, logger)

	var engine ocr.Engine
	if cfg.OCR.Engine == "gosseract" {
		engine = ocr.NewGosseractEngine(cfg.OCR.Language)
	}
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:           cfg.OCR.Pdftotext,
		Pdftoppm:            cfg.OCR.Pdftoppm,
		Tesseract:           cfg.OCR.Tesseract,
		Language:            cfg.OCR.Language,
		DPI:                 cfg.OCR.DPI,
		MaxPages:            cfg.OCR.MaxPages,
		MinNativeChars:      cfg.OCR.MinNativeChars,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
		EnablePreprocessing: cfg.OCR.EnablePreprocessing,
	}, engine, prep, logger)

	creds := ai.NewCredentialStore(map[string]string{
		"openai": cfg.AI.APIKey,
		"ollama": "local", // ollama is unauthenticated; a placeholder satisfies resolution
	})
	analyzer := ai.NewAnalyzer(ai.Config{
		DefaultProvider:  cfg.AI.Provider,
		Temperature:      cfg.AI.Temperature,
		MaxChars:         cfg.AI.MaxChars,
		BaselineLanguage: cfg.AI.BaselineLanguage,
	}, creds, logger,
		ai.NewOpenAIClient(ai.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		}, logger),
		ai.NewOllamaClient(ai.OllamaConfig{
			Host:    cfg.AI.OllamaHost,
			Timeout: cfg.AI.Timeout,
		}, logger),
	)

	store, err := cache.Open(cfg.Cache.Path, logger)
	if err != nil {
		logger.Error("open extraction cache", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close extraction cache", "error", cerr)
		}
	}()

	proc := pipeline.NewProcessor(cfg.Pipeline, extractor, classify.NewClassifier(logger), analyzer, store, logger)

	opts := pipeline.Options{
		Detail:            constants.CanonicalizeDetail(*detail),
		LanguageHint:      *language,
		DisableStructured: *noStructured,
		Provider:          *provider,
		Credential:        *credential,
	}

	info, err := os.Stat(target)
	if err != nil {
		logger.Error("stat target", "path", target, "error", err)
		os.Exit(1)
	}

	switch {
	case info.IsDir() && *watch:
		os.Exit(runWatch(proc, logger, target, opts, *workers))
	case info.IsDir():
		os.Exit(runBatch(proc, logger, target, opts, *workers, *xlsxOut))
	default:
		os.Exit(runSingle(proc, logger, target, opts))
	}
}

func runSingle(proc *pipeline.Processor, logger *slog.Logger, path string, opts pipeline.Options) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := proc.ProcessFile(ctx, path, opts)
	if err != nil {
		logger.Error("processing failed", "path", path, "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		return 1
	}
	return 0
}

func runBatch(proc *pipeline.Processor, logger *slog.Logger, dir string, opts pipeline.Options, workers int, xlsxOut string) int {
	files, stats, err := ingest.ScanDirectory(dir, nil, true)
	if err != nil {
		logger.Error("scan directory", "dir", dir, "error", err)
		return 1
	}
	if len(files) == 0 {
		logger.Warn("no processable documents found", "dir", dir, "scanned", stats.Scanned)
		return 0
	}
	logger.Info("batch start", "dir", dir, "files", len(files), "workers", workers)

	var mu sync.Mutex
	rows := make([]export.Row, 0, len(files))
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(workers),
		async.WithQueueSize(len(files)),
		async.WithResultHandler(func(job async.Job, res *pipeline.Result, err error) {
			mu.Lock()
			rows = append(rows, export.Row{Path: job.Path, Result: res, Err: err})
			mu.Unlock()
		}),
	)
	for _, f := range files {
		_ = queue.Enqueue(context.Background(), async.NewJob(f, opts))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	queue.Shutdown(ctx)

	failed := 0
	for _, r := range rows {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("batch done", "files", len(rows), "failed", failed)

	if xlsxOut != "" {
		b, err := export.NewService(logger).ResultsXLSX(rows)
		if err != nil {
			logger.Error("build workbook", "error", err)
			return 1
		}
		if err := os.WriteFile(xlsxOut, b, 0o644); err != nil {
			logger.Error("write workbook", "path", xlsxOut, "error", err)
			return 1
		}
		logger.Info("workbook written", "path", xlsxOut)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// runWatch keeps processing documents as they land in dir until the
// process receives SIGINT or SIGTERM.
func runWatch(proc *pipeline.Processor, logger *slog.Logger, dir string, opts pipeline.Options, workers int) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(workers),
		async.WithResultHandler(func(job async.Job, res *pipeline.Result, err error) {
			if err != nil {
				logger.Error("processing failed", "path", job.Path, "trace_id", job.TraceID, "error", err)
				return
			}
			logger.Info("document processed",
				"path", job.Path,
				"trace_id", job.TraceID,
				"document_type", res.DocumentType,
				"method", res.Method,
				"text_length", res.TextLength,
				"from_cache", res.FromCache)
		}),
	)

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		logger.Error("start watcher", "dir", dir, "error", err)
		return 1
	}
	logger.Info("watching", "dir", dir, "workers", workers)

	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			if err := queue.Enqueue(ctx, async.NewJob(p, opts)); err != nil {
				logger.Warn("enqueue dropped", "path", p, "error", err)
			}
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", werr)
		}
	}

	drain, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	queue.Shutdown(drain)
	logger.Info("watch stopped", "dir", dir)
	return 0
}
