package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-](20)?\d{2}\b|\b20\d{2}-\d{2}-\d{2}\b`)
	reCurr   = regexp.MustCompile(`\b(usd|eur|gbp|cad|chf|ttc|ht|tva)\b|[$£€]`)
	reAmount = regexp.MustCompile(`\b\d{1,3}([ ,.]\d{3})*([.,]\d{2})\b|\b\d+[.,]\d{2}\b`)
	reWords  = regexp.MustCompile(`\b[\p{L}]{3,}\b`)
)

// heuristicConfidence scores OCR output from content shape alone, for
// engines that cannot report word confidence. Documents worth analyzing
// carry dates, amounts and a reasonable density of real words.
func heuristicConfidence(txt string) float32 {
	if txt == "" {
		return 0
	}
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base for any non-empty yield
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	// word density guards against pages of line noise
	if len(reWords.FindAllStringIndex(txtL, 16)) >= 16 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
