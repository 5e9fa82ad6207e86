package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Fixed per-field confidence increments. The aggregate is their sum,
// capped at 1.0; consumers treat the extraction as usable above a
// threshold they own (default 0.5).
const (
	incInvoiceNumber = 0.20
	incDate          = 0.15
	incTotal         = 0.25
	incTax           = 0.15
	incVendor        = 0.10
)

var (
	reInvoiceNumber = regexp.MustCompile(`(?i)\b(?:facture|invoice)\s*(?:n[°º]|no\.?|num(?:éro)?|number|#)?\s*:?\s*([A-Za-z]{0,4}-?[0-9][A-Za-z0-9/-]+)`)
	reInvoiceDate   = regexp.MustCompile(`\b(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
	reInvoiceTotal  = regexp.MustCompile(`(?i)\btotal(?:\s*(?:ttc|t\.t\.c\.|amount|due|à payer))?\s*:?\s*(?:€|\$|£)?\s*([0-9][0-9 .,]*)`)
	reInvoiceTax    = regexp.MustCompile(`(?i)\b(?:tva|tax|vat)\s*(?:\(?\s*\d+(?:[.,]\d+)?\s*%\s*\)?)?\s*:?\s*(?:€|\$|£)?\s*([0-9][0-9 .,]*)`)

	reHasLetters = regexp.MustCompile(`\p{L}{3,}`)
	reMostlyNum  = regexp.MustCompile(`^[\d\s.,/:°-]+$`)
)

// InvoiceExtractor pulls the classic invoice fields. Each field is searched
// independently; unmatched fields are simply absent, never fabricated.
type InvoiceExtractor struct{}

func (x *InvoiceExtractor) Extract(text string) (StructuredExtraction, bool) {
	fields := make(map[string]any)
	conf := 0.0

	if m := reInvoiceNumber.FindStringSubmatch(text); m != nil {
		fields["invoice_number"] = strings.TrimRight(m[1], "/-")
		conf += incInvoiceNumber
	}
	if m := reInvoiceDate.FindStringSubmatch(text); m != nil {
		fields["date"] = m[1]
		conf += incDate
	}
	if m := reInvoiceTotal.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["total"] = v
			conf += incTotal
		}
	}
	if m := reInvoiceTax.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["tax_amount"] = v
			conf += incTax
		}
	}
	// A vendor line alone means nothing; only look for one once at least
	// one anchor field confirmed this really is an invoice body.
	if len(fields) > 0 {
		if vendor, ok := findVendor(text); ok {
			fields["vendor"] = vendor
			conf += incVendor
		}
	}

	if len(fields) == 0 {
		return StructuredExtraction{}, false
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return StructuredExtraction{Fields: fields, Confidence: conf}, true
}

// findVendor returns the first plausible non-numeric line among the first
// few lines: long enough, carries real words, and is not one of the field
// lines matched above.
func findVendor(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > 6 {
		lines = lines[:6]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 3 || !reHasLetters.MatchString(line) || reMostlyNum.MatchString(line) {
			continue
		}
		if reInvoiceNumber.MatchString(line) || reInvoiceTotal.MatchString(line) ||
			reInvoiceTax.MatchString(line) || strings.Contains(strings.ToLower(line), "date") {
			continue
		}
		return line, true
	}
	return "", false
}

// parseAmount handles both French ("1 500,00") and English ("1,500.00")
// digit grouping. The last separator wins as the decimal mark when it is
// followed by exactly two digits.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".,")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	sep := lastComma
	if lastDot > sep {
		sep = lastDot
	}

	if sep >= 0 && len(s)-sep-1 == 2 {
		intPart := s[:sep]
		fracPart := s[sep+1:]
		intPart = strings.NewReplacer(",", "", ".", "").Replace(intPart)
		s = intPart + "." + fracPart
	} else {
		// all separators are grouping marks
		s = strings.NewReplacer(",", "", ".", "").Replace(s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
