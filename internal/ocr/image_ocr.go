package ocr

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/joseph-ayodele/docintel/constants"
	"github.com/joseph-ayodele/docintel/internal/common"
)

const ImageConfidenceThreshold = 0.6

func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	txt, warns, err := e.ocrPageFile(ctx, path)
	if err != nil {
		return ExtractionResult{SourceType: constants.IMAGE, Warnings: warns},
			common.NewOCRProcessingError("image ocr", err)
	}
	txt = strings.TrimSpace(txt)

	// compute confidence: engine word confidence when available, blended
	// with a content heuristic
	var engineConf float32
	if e.cfg.EnableTSVConfidence {
		if scorer, ok := e.engine.(ConfidenceScorer); ok {
			if c, confErr := scorer.Confidence(ctx, path); confErr == nil {
				engineConf = c
			} else {
				warns = append(warns, confErr.Error())
			}
		}
	}
	heurConf := heuristicConfidence(txt)

	var conf float32
	if engineConf > 0 {
		conf = 0.7*engineConf + 0.3*heurConf
	} else {
		conf = heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return ExtractionResult{
		Text:       txt,
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.Language,
		Warnings:   warns,
		Confidence: conf,
	}, nil
}

// ocrPageFile preprocesses one page image and runs the OCR engine on it.
// Preprocessing failures degrade to the raw image; temp files are removed
// on every exit path.
func (e *Extractor) ocrPageFile(ctx context.Context, path string) (string, []string, error) {
	var warns []string

	ocrPath := path
	if e.cfg.EnablePreprocessing && e.prep != nil {
		processed, prepErr := e.preprocessFile(path)
		if prepErr != nil {
			e.logger.Warn("ocr.preprocess.failed", "path", path, "error", prepErr)
			warns = append(warns, "preprocessing failed, using raw image: "+prepErr.Error())
		} else {
			defer func() {
				if rmErr := os.RemoveAll(filepath.Dir(processed)); rmErr != nil {
					e.logger.Warn("ocr.preprocess.cleanup_failed", "path", processed, "error", rmErr)
				}
			}()
			ocrPath = processed
		}
	}

	txt, err := e.engine.Recognize(ctx, ocrPath)
	if err != nil {
		return "", warns, err
	}
	return txt, warns, nil
}

// preprocessFile decodes, cleans and re-encodes a page image into a temp
// PNG the engine can consume.
func (e *Extractor) preprocessFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(f)
	closeErr := f.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}

	cleaned, err := e.prep.Run(src)
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "docintel-prep-*")
	if err != nil {
		return "", err
	}
	out := filepath.Join(tmpDir, "page.png")
	dst, err := os.Create(out)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := png.Encode(dst, cleaned); err != nil {
		_ = dst.Close()
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return out, nil
}
