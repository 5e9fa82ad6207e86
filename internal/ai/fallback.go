package ai

import (
	"regexp"
	"strings"
	"unicode"
)

const languageDetectWindow = 500

var frenchFunctionWords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "des": {}, "une": {}, "est": {},
	"et": {}, "dans": {}, "pour": {}, "que": {}, "qui": {}, "avec": {},
	"sur": {}, "pas": {}, "nous": {}, "vous": {}, "ce": {}, "cette": {},
}

var englishFunctionWords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "to": {}, "in": {}, "is": {},
	"that": {}, "for": {}, "with": {}, "on": {}, "this": {}, "are": {},
	"was": {}, "be": {}, "as": {}, "at": {}, "it": {}, "by": {},
}

const frenchDiacritics = "éèêëàâçùûüîïôœ"

// DetectLanguage guesses between French and English from function-word counts
// over the first few hundred characters. A caller hint wins outright; ties go
// to diacritics, then to the configured baseline.
func DetectLanguage(text, hint, baseline string) string {
	if h := strings.ToLower(strings.TrimSpace(hint)); h != "" {
		return h
	}

	window := text
	if runes := []rune(window); len(runes) > languageDetectWindow {
		window = string(runes[:languageDetectWindow])
	}
	window = strings.ToLower(window)

	var fr, en int
	for _, w := range strings.FieldsFunc(window, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := frenchFunctionWords[w]; ok {
			fr++
		}
		if _, ok := englishFunctionWords[w]; ok {
			en++
		}
	}

	switch {
	case fr > en:
		return "fr"
	case en > fr:
		return "en"
	}
	if strings.ContainsAny(window, frenchDiacritics) {
		return "fr"
	}
	if baseline != "" {
		return baseline
	}
	return "en"
}

// fallbackAnalyze is the deterministic local path used when no provider reply
// is usable. It never fails and never touches the network.
func fallbackAnalyze(text string, p detailParams, hint, baseline string) AnalysisResult {
	sentences := splitSentences(text)

	n := p.SummarySentences
	if n > len(sentences) {
		n = len(sentences)
	}
	summary := strings.Join(sentences[:n], " ")
	const maxSummaryChars = 600
	if runes := []rune(summary); len(runes) > maxSummaryChars {
		summary = string(runes[:maxSummaryChars]) + "…"
	}

	points := make([]string, 0, p.KeyPoints)
	for _, s := range sentences {
		if len(points) == p.KeyPoints {
			break
		}
		// very short fragments make poor bullets
		if len([]rune(s)) < 15 {
			continue
		}
		points = append(points, s)
	}

	return AnalysisResult{
		Summary:   summary,
		KeyPoints: points,
		Entities:  detectEntities(text, maxFallbackEntities),
		Language:  DetectLanguage(text, hint, baseline),
		Provider:  fallbackProviderName,
		Metadata:  map[string]string{"fallback": "local"},
	}
}

const maxFallbackEntities = 8

var (
	reEntityDate   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	reEntityAmount = regexp.MustCompile(`\d+(?:[ \x{00A0}.,]\d+)*\s?(?:€|EUR\b)`)
	reEntityEmail  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// detectEntities pulls the patterns regexes can find reliably offline:
// dates, money amounts, email addresses. Names and organizations need a
// model and stay empty on this path.
func detectEntities(text string, max int) []Entity {
	seen := map[string]struct{}{}
	ents := make([]Entity, 0, max)
	add := func(typ string, vals []string) {
		for _, v := range vals {
			if len(ents) == max {
				return
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := typ + "|" + v
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			ents = append(ents, Entity{Type: typ, Value: v})
		}
	}
	add("date", reEntityDate.FindAllString(text, -1))
	add("amount", reEntityAmount.FindAllString(text, -1))
	add("email", reEntityEmail.FindAllString(text, -1))
	return ents
}

// splitSentences cuts on terminal punctuation followed by whitespace, and on
// line breaks for text that has no punctuation at all (OCR output often
// doesn't).
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case '\n':
			flush()
		case '.', '!', '?':
			b.WriteRune(r)
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}
