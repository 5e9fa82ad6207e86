package classify

import (
	"regexp"
	"testing"

	"github.com/joseph-ayodele/docintel/constants"
)

// Every known document type must have a registration so routing never hits
// an unregistered type.
func TestDefaultRegistrationsCoverAllTypes(t *testing.T) {
	c := NewClassifier(nil)
	for _, name := range constants.DocumentTypes() {
		typ, ok := constants.CanonicalizeType(name)
		if !ok {
			t.Fatalf("DocumentTypes returned unknown label %q", name)
		}
		if _, registered := c.regs[typ]; !registered {
			t.Errorf("no registration for document type %q", name)
		}
	}
}

func TestClassifyInvoice(t *testing.T) {
	text := "ACME SARL\nFacture n° 2024-001\nTotal TTC : 1500,00 €\nTVA (20%) : 250,00 €"
	got := NewClassifier(nil).Classify(text)
	if got.Type != constants.Invoice {
		t.Fatalf("type = %s, want invoice", got.Type)
	}
	if got.Confidence < 0.5 {
		t.Errorf("confidence = %f, want >= 0.5", got.Confidence)
	}
	if got.Metadata["keywords"] == "" {
		t.Error("expected matched keywords in metadata")
	}
}

func TestClassifyContract(t *testing.T) {
	text := "CONTRAT DE PRESTATION\nEntre les soussignés :\nArticle 1 - Objet\nArticle 2 - Durée\nles parties conviennent"
	got := NewClassifier(nil).Classify(text)
	if got.Type != constants.Contract {
		t.Errorf("type = %s, want contract", got.Type)
	}
}

func TestClassifyCV(t *testing.T) {
	text := "Jean Dupont\nExpérience professionnelle\n2020-2024 Développeur\nFormations\nCompétences : Go, SQL\nLangues : anglais"
	got := NewClassifier(nil).Classify(text)
	if got.Type != constants.CV {
		t.Errorf("type = %s, want cv", got.Type)
	}
}

func TestClassifyEmail(t *testing.T) {
	text := "De: alice@example.com\nÀ: bob@example.com\nObjet: réunion de lundi\n\nBonjour,\n\nCordialement,\nAlice"
	got := NewClassifier(nil).Classify(text)
	if got.Type != constants.Email {
		t.Errorf("type = %s, want email", got.Type)
	}
}

func TestClassifyGeneralFallback(t *testing.T) {
	text := "Le soleil brillait sur la plage et les vagues étaient calmes."
	got := NewClassifier(nil).Classify(text)
	if got.Type != constants.General {
		t.Errorf("type = %s, want general", got.Type)
	}
	if got.Confidence > 0.3 {
		t.Errorf("confidence = %f, want low for uncued text", got.Confidence)
	}
}

func TestRegisterNewTypeWithoutTouchingOthers(t *testing.T) {
	c := NewClassifier(nil)
	c.Register(Registration{
		Type:      constants.DocumentType("receipt"),
		PromptKey: "receipt",
		Cues: []Cue{
			{Pattern: regexp.MustCompile(`\bticket de caisse\b`), Weight: 0.5, Label: "ticket"},
		},
	})
	got := c.Classify("ticket de caisse du supermarché")
	if got.Type != constants.DocumentType("receipt") {
		t.Errorf("type = %s, want receipt", got.Type)
	}
	// existing types unaffected
	if got := c.Classify("Facture n° 12 Total TTC : 5 € TVA : 1 €"); got.Type != constants.Invoice {
		t.Errorf("invoice classification broken by registration: %s", got.Type)
	}
}

func TestPromptKeyFallsBackToGeneric(t *testing.T) {
	c := NewClassifier(nil)
	if k := c.PromptKeyFor(constants.Invoice); k != "invoice" {
		t.Errorf("invoice prompt key = %q", k)
	}
	if k := c.PromptKeyFor(constants.DocumentType("unknown")); k != "generic" {
		t.Errorf("unknown prompt key = %q, want generic", k)
	}
}

func TestExtractorRegistry(t *testing.T) {
	c := NewClassifier(nil)
	if _, ok := c.ExtractorFor(constants.Invoice); !ok {
		t.Error("invoice extractor missing")
	}
	if _, ok := c.ExtractorFor(constants.General); ok {
		t.Error("general type must have no extractor")
	}
}
