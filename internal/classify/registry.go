package classify

import (
	"regexp"

	"github.com/joseph-ayodele/docintel/constants"
)

// Cue is one weighted signal for a document type.
type Cue struct {
	Pattern *regexp.Regexp
	Weight  float64
	Label   string
}

// Registration binds a document type to its cue set, prompt template key
// and optional structured extractor.
type Registration struct {
	Type      constants.DocumentType
	Cues      []Cue
	PromptKey string
	Extractor Extractor
}

func cue(pattern string, weight float64, label string) Cue {
	return Cue{Pattern: regexp.MustCompile(pattern), Weight: weight, Label: label}
}

// defaultRegistrations covers the built-in types. Patterns match against
// lowercased text.
func defaultRegistrations() []Registration {
	return []Registration{
		{
			Type:      constants.Invoice,
			PromptKey: "invoice",
			Extractor: &InvoiceExtractor{},
			Cues: []Cue{
				cue(`\bfactures?\b`, 0.30, "facture"),
				cue(`\binvoice\b`, 0.30, "invoice"),
				cue(`\btotal\s*(ttc|ht)\b`, 0.20, "total_ttc"),
				cue(`\btva\b|\bvat\b`, 0.20, "tva"),
				cue(`\bmontant\b|\bamount due\b`, 0.15, "montant"),
				cue(`\béchéance\b|\bdue date\b`, 0.15, "echeance"),
				cue(`\bsiret\b|\bsiren\b`, 0.15, "siret"),
			},
		},
		{
			Type:      constants.Contract,
			PromptKey: "contract",
			Cues: []Cue{
				cue(`\bcontrats?\b`, 0.30, "contrat"),
				cue(`\bcontract\b`, 0.30, "contract"),
				cue(`entre les soussign`, 0.25, "soussignes"),
				cue(`\barticle\s+\d`, 0.15, "articles"),
				cue(`\bclauses?\b`, 0.15, "clause"),
				cue(`\bagreement\b`, 0.20, "agreement"),
				cue(`\bles parties\b|\bhereinafter\b`, 0.15, "parties"),
			},
		},
		{
			Type:      constants.CV,
			PromptKey: "cv",
			Cues: []Cue{
				cue(`\bcurriculum vitae\b|\bcv\b`, 0.25, "cv"),
				cue(`\bexpériences? professionnelles?\b|\bwork experience\b`, 0.25, "experience"),
				cue(`\bformations?\b|\beducation\b`, 0.15, "formation"),
				cue(`\bcompétences\b|\bskills\b`, 0.20, "competences"),
				cue(`\bdiplôme\b|\bdegree\b`, 0.15, "diplome"),
				cue(`\blangues\b|\blanguages\b`, 0.10, "langues"),
			},
		},
		{
			Type:      constants.Email,
			PromptKey: "email",
			Cues: []Cue{
				cue(`(?m)^(de|from)\s*:`, 0.20, "from"),
				cue(`(?m)^(à|to)\s*:`, 0.20, "to"),
				cue(`(?m)^(objet|subject)\s*:`, 0.25, "subject"),
				cue(`\bcordialement\b|\bbest regards\b|\bsincerely\b`, 0.15, "closing"),
				cue(`(?m)^cc\s*:`, 0.10, "cc"),
				cue(`\benvoyé (le|de)\b|\bsent from\b`, 0.10, "sent"),
			},
		},
		{
			Type:      constants.Report,
			PromptKey: "report",
			Cues: []Cue{
				cue(`\brapports?\b`, 0.30, "rapport"),
				cue(`\breport\b`, 0.25, "report"),
				cue(`\btable des matières\b|\btable of contents\b`, 0.20, "toc"),
				cue(`\bsommaire\b`, 0.15, "sommaire"),
				cue(`\bconclusions?\b`, 0.15, "conclusion"),
				cue(`\bannexes?\b|\bappendix\b`, 0.10, "annexe"),
			},
		},
		{
			// fallback type: no cues, no extractor
			Type:      constants.General,
			PromptKey: "generic",
		},
	}
}
