package constants

import "strings"

// DocumentType is the inferred class of a document.
type DocumentType string

const (
	Invoice  DocumentType = "invoice"
	Contract DocumentType = "contract"
	CV       DocumentType = "cv"
	Email    DocumentType = "email"
	Report   DocumentType = "report"
	General  DocumentType = "general"
)

var allDocumentTypes = []DocumentType{
	Invoice,
	Contract,
	CV,
	Email,
	Report,
	General,
}

// DocumentTypes returns the known document types as strings.
func DocumentTypes() []string {
	result := make([]string, len(allDocumentTypes))
	for i, t := range allDocumentTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalizeType maps a free-form label to a known DocumentType.
// Unknown labels map to General with ok=false.
func CanonicalizeType(input string) (DocumentType, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, t := range allDocumentTypes {
		if s == string(t) {
			return t, true
		}
	}
	return General, false
}

// DetailLevel selects the verbosity tier for AI analysis.
type DetailLevel string

const (
	DetailShort    DetailLevel = "short"
	DetailMedium   DetailLevel = "medium"
	DetailDetailed DetailLevel = "detailed"
)

// CanonicalizeDetail maps a label to a DetailLevel, defaulting to medium.
func CanonicalizeDetail(input string) DetailLevel {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case string(DetailShort):
		return DetailShort
	case string(DetailDetailed):
		return DetailDetailed
	default:
		return DetailMedium
	}
}
