package normalize

import (
	"regexp"
	"strings"
)

// Locale correction table for common OCR misreads in French business
// documents. Every rule must be idempotent: its output never re-matches
// its own pattern.
var patternCorrections = []struct {
	re   *regexp.Regexp
	repl string
}{
	// "n ° 2024-001" / "nº" -> "n° 2024-001" (ordinal/numero sign)
	{regexp.MustCompile(`\bn[ \t]*[°º][ \t]*`), "n° "},
	{regexp.MustCompile(`\bN[ \t]*[°º][ \t]*`), "N° "},
	// ordinal abbreviations split by OCR: "1 er", "2 ème", "3 e"
	{regexp.MustCompile(`\b(\d+)[ \t]+(er|ère|ème|e)\b`), "$1$2"},
	// misread ordinal suffix "éme" -> "ème"
	{regexp.MustCompile(`\b(\d+)éme\b`), "${1}ème"},
}

// exactCorrections handles byte-level misreads: mojibake from mis-decoded
// accents and ASCII stand-ins for French quotation marks.
var exactCorrections = strings.NewReplacer(
	"Ã©", "é",
	"Ã¨", "è",
	"Ãª", "ê",
	"Ã´", "ô",
	"Ã§", "ç",
	"Ã€", "À",
	"Ã‰", "É",
	"<<", "«",
	">>", "»",
	"‹‹", "«",
	"››", "»",
)

func applyCorrections(s string) string {
	s = exactCorrections.Replace(s)
	for _, c := range patternCorrections {
		s = c.re.ReplaceAllString(s, c.repl)
	}
	return s
}
