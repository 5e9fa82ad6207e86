package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docintel/constants"
	"github.com/joseph-ayodele/docintel/internal/common"
)

// extractPDF tries the native text layer first and rasterizes only when the
// layer is missing or too thin to be trusted (scanned PDFs usually carry an
// empty or garbage layer).
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Language: e.cfg.Language}

	pages, err := e.pageCount(path)
	if err != nil {
		return res, common.NewOCRProcessingError("pdf page count", err)
	}
	if pages > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("pdf has %d pages, capped at %d", pages, e.cfg.MaxPages))
		pages = e.cfg.MaxPages
	}

	text, warns, err := e.pdfToText(ctx, path, pages)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("ocr.pdf.native_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "native extraction failed: "+err.Error())
	} else if len(strings.TrimSpace(text)) >= e.cfg.MinNativeChars {
		res.Text = strings.TrimSpace(text)
		res.Pages = pages
		res.Method = "pdf-text"
		res.Confidence = 1.0
		return res, nil
	} else {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("native extraction too short (%d chars), fell back to OCR",
				len(strings.TrimSpace(text))))
	}

	ocrText, ocrPages, warns, err := e.pdfToOCR(ctx, path, pages)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return res, err
	}
	res.Text = strings.TrimSpace(ocrText)
	res.Pages = ocrPages
	res.Method = "pdf-ocr"
	res.Confidence = heuristicConfidence(res.Text)
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string, maxPages int) (string, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix -l <n> <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-l", strconv.Itoa(maxPages), path, "-")
	if err != nil {
		return "", []string{truncate(string(errb), 512)}, err
	}
	return string(out), nil, nil
}

// pdfToOCR rasterizes page-by-page and OCRs each raster. A failing page is
// skipped with a warning; the whole call fails only when no page yields text.
func (e *Extractor) pdfToOCR(ctx context.Context, path string, maxPages int) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "docintel-pdf-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr.pdf.tmpdir_cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png -l <n> <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", strconv.Itoa(e.cfg.DPI), "-png", "-l", strconv.Itoa(maxPages), path, prefix)
	if err != nil {
		return "", 0, []string{truncate(string(errb), 512)},
			common.NewOCRProcessingError("pdftoppm rasterize", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPageFiles(matches)
	if len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"},
			common.NewOCRProcessingError("no pages rendered", nil)
	}

	var b strings.Builder
	var warns []string
	succeeded := 0
	for i, img := range matches {
		// cancellation point: abort before the next page's OCR call
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", 0, warns, ctxErr
		}
		txt, pageWarns, pageErr := e.ocrPageFile(ctx, img)
		warns = append(warns, pageWarns...)
		if pageErr != nil {
			e.logger.Warn("ocr.pdf.page_failed", "page", i+1, "error", pageErr)
			warns = append(warns, fmt.Sprintf("page %d OCR failed: %v", i+1, pageErr))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
		succeeded++
	}
	if succeeded == 0 {
		return "", 0, warns, common.NewOCRProcessingError("all pages failed OCR", nil)
	}
	return b.String(), len(matches), warns, nil
}

// sortPageFiles orders pdftoppm output numerically: page-2.png before
// page-10.png, which plain string sorting gets wrong.
func sortPageFiles(paths []string) {
	pageNum := func(p string) int {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		idx := strings.LastIndex(base, "-")
		if idx < 0 {
			return 0
		}
		n, _ := strconv.Atoi(base[idx+1:])
		return n
	}
	sort.Slice(paths, func(i, j int) bool { return pageNum(paths[i]) < pageNum(paths[j]) })
}
