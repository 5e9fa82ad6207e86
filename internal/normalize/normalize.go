// Package normalize cleans OCR and native-text output through a fixed,
// ordered sequence of transforms. Every transform is idempotent and the
// composition is too: downstream stages sometimes re-apply the pipeline, so
// Normalize(Normalize(x)) == Normalize(x) is a contract, not a nicety.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHorizWS    = regexp.MustCompile(`[ \t\x{00A0}]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)

	// a word broken by line-wrap hyphenation: letter, hyphen, newline,
	// lowercase continuation
	reHyphenWrap = regexp.MustCompile(`(\p{L})-\n(\p{Ll})`)

	// lines that are only a page number, optionally wrapped in dashes or a
	// "page" marker ("12", "- 12 -", "Page 3/10", "— 4 —")
	rePageNumber = regexp.MustCompile(`(?mi)^[ \t\-–—]*(?:page[ \t]*)?\d+(?:[ \t]*(?:/|of|sur)[ \t]*\d+)?[ \t\-–—]*$\n?`)
)

// symbolRunMin is the shortest repeated-symbol run treated as an OCR
// artifact; shorter repeats (doubled exclamation marks and the like) are
// likely intentional.
const symbolRunMin = 5

// Normalize runs the full cleaning sequence: whitespace collapse,
// hyphenation merge, page-number removal, OCR artifact cleanup, locale
// corrections.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = collapseWhitespace(s)
	s = mergeHyphenation(s)
	s = removePageNumbers(s)
	s = cleanArtifacts(s)
	s = applyCorrections(s)
	// line removals above can leave fresh blank-line runs behind
	s = collapseWhitespace(s)
	return strings.TrimSpace(s)
}

// collapseWhitespace reduces horizontal whitespace runs to one space and
// blank-line runs to a single paragraph break, trimming line edges.
func collapseWhitespace(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reHorizWS.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	return reMultiBlank.ReplaceAllString(s, "\n\n")
}

// mergeHyphenation rejoins words split across lines by OCR line wrapping.
// Uppercase continuations are left alone: those are usually real compound
// names, not wrap artifacts.
func mergeHyphenation(s string) string {
	return reHyphenWrap.ReplaceAllString(s, "$1$2")
}

func removePageNumbers(s string) string {
	return rePageNumber.ReplaceAllString(s, "")
}

// cleanArtifacts deletes oversized repeated-symbol runs. Deletion can fuse
// two shorter runs of the same symbol into a long one, so it loops to a
// fixpoint.
func cleanArtifacts(s string) string {
	for {
		next := dropSymbolRuns(s)
		if next == s {
			return s
		}
		s = next
	}
}

// dropSymbolRuns removes every run of symbolRunMin or more identical
// characters that are neither letters, digits, nor whitespace. Backreference
// matching is not something regexp can express, so runs are counted by hand.
func dropSymbolRuns(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		r := runes[i]
		j := i + 1
		for j < len(runes) && runes[j] == r {
			j++
		}
		n := j - i
		if n >= symbolRunMin && isSymbolRune(r) {
			i = j
			continue
		}
		for ; i < j; i++ {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSymbolRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
