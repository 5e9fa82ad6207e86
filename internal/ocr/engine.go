package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine runs OCR on a single page image file and returns raw text.
// Engine failures are page-scoped: the orchestrator logs, records a warning
// and moves on to the next page.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// ConfidenceScorer is implemented by engines that can report a mean word
// confidence in 0..1 for an image.
type ConfidenceScorer interface {
	Confidence(ctx context.Context, imagePath string) (float32, error)
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// ExecEngine shells out to the tesseract binary through a Runner, which
// keeps the engine stubbable in tests.
type ExecEngine struct {
	cfg    Config
	runner Runner
}

func NewExecEngine(cfg Config, runner Runner) *ExecEngine {
	if runner == nil {
		runner = execRunner{}
	}
	return &ExecEngine{cfg: cfg, runner: runner}
}

func (e *ExecEngine) Name() string { return "tesseract-exec" }

func (e *ExecEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}

	// strip scan ruler noise the engine tends to emit for box edges
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

// Confidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *ExecEngine) Confidence(ctx context.Context, imagePath string) (float32, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w (%s)", err, truncate(string(errb), 512))
	}
	return meanTSVConfidence(string(out)), nil
}

// tsvConfCol is the conf column in tesseract TSV output; the word text
// comes after it, so the last column must not be used.
const tsvConfCol = 10

func meanTSVConfidence(out string) float32 {
	lines := strings.Split(out, "\n")
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) <= tsvConfCol {
			continue
		}
		confStr := cols[tsvConfCol]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}

// GosseractEngine drives libtesseract in-process via gosseract. Avoids a
// fork per page at the cost of a cgo dependency.
type GosseractEngine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

func NewGosseractEngine(language string) *GosseractEngine {
	langs := strings.Split(language, "+")
	return &GosseractEngine{languages: langs, clientFactory: gosseract.NewClient}
}

func (e *GosseractEngine) Name() string { return "tesseract-gosseract" }

func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	c := e.clientFactory()
	defer c.Close()
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
