package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/docintel/constants"
)

// detailParams maps a verbosity tier to concrete generation budgets.
type detailParams struct {
	SummarySentences int
	KeyPoints        int
	MaxTokens        int
}

func paramsFor(level constants.DetailLevel) detailParams {
	switch level {
	case constants.DetailShort:
		return detailParams{SummarySentences: 2, KeyPoints: 3, MaxTokens: 256}
	case constants.DetailDetailed:
		return detailParams{SummarySentences: 6, KeyPoints: 8, MaxTokens: 1024}
	default:
		return detailParams{SummarySentences: 4, KeyPoints: 5, MaxTokens: 512}
	}
}

// promptTemplates holds the per-document-type analysis focus. Keys match the
// classifier registry's prompt keys; anything unknown uses "generic".
var promptTemplates = map[string]string{
	"invoice": "The document is an invoice. Focus on: issuer, invoice number, dates, " +
		"amounts (totals, tax), payment terms, and anything unusual about the charges.",
	"contract": "The document is a contract. Focus on: the parties, subject matter, " +
		"duration, obligations, termination clauses, and notable liabilities.",
	"cv": "The document is a CV/resume. Focus on: current role, years of experience, " +
		"key skills, education, and languages.",
	"email": "The document is an email. Focus on: sender, recipients, subject, the " +
		"request or decision it carries, and any deadline.",
	"report": "The document is a report. Focus on: purpose, main findings, figures, " +
		"and recommendations.",
	"generic": "Summarize the document faithfully. Focus on who, what, when, and any " +
		"amounts or deadlines.",
}

// BuildSystemPrompt composes the system message: output contract, detail
// budget, type-specific focus, and optional language instruction.
func BuildSystemPrompt(promptKey string, p detailParams, languageHint string) string {
	focus, ok := promptTemplates[promptKey]
	if !ok {
		focus = promptTemplates["generic"]
	}

	parts := []string{
		"You are a document analyst. Return ONLY JSON that matches the provided JSON Schema.",
		focus,
		fmt.Sprintf("Write 'summary' in at most %d sentences.", p.SummarySentences),
		fmt.Sprintf("Provide at most %d entries in 'key_points', each a single short sentence.", p.KeyPoints),
		"List notable named entities in 'entities' as {\"type\", \"value\"} pairs; use types like person, organization, date, amount, location.",
		"Set 'language' to the ISO 639-1 code of the document's language (e.g. fr, en).",
		"Never output null. If something is not present in the document, omit it.",
	}
	if lang := strings.TrimSpace(languageHint); lang != "" {
		parts = append(parts, "The document language is "+lang+"; write the summary and key points in that language.")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the (already truncated) text plus any structured
// fields the classifier extracted, so the model does not re-derive them.
func BuildUserPrompt(text string, structured map[string]any) string {
	var b strings.Builder
	if len(structured) > 0 {
		b.WriteString("Known extracted fields (treat as ground truth):\n")
		if bs, err := json.Marshal(structured); err == nil {
			b.Write(bs)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Document text:\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
