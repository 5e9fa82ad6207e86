// Package classify infers a document's type from normalized text using
// per-type cue sets, and runs the registered structured extractor for
// types that have one. No model involved: cues are weighted keywords and
// patterns, which is cheap, explainable and good enough to route prompts.
package classify

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docintel/constants"
)

// Classification is the routing decision for one document.
type Classification struct {
	Type       constants.DocumentType
	Confidence float64
	Metadata   map[string]string
}

// StructuredExtraction holds typed fields pulled from the text plus an
// aggregate confidence built from fixed per-field increments.
type StructuredExtraction struct {
	Fields     map[string]any
	Confidence float64
}

// Extractor pulls typed fields for one document type. ok is false when no
// field matched at all.
type Extractor interface {
	Extract(text string) (StructuredExtraction, bool)
}

// Classifier routes documents by cue sets. New document types are added by
// registering a cue set and an optional extractor, never by modifying
// existing ones.
type Classifier struct {
	regs   map[constants.DocumentType]Registration
	order  []constants.DocumentType
	logger *slog.Logger
}

// NewClassifier builds a classifier preloaded with the default
// registrations for the built-in document types.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{regs: make(map[constants.DocumentType]Registration), logger: logger}
	for _, reg := range defaultRegistrations() {
		c.Register(reg)
	}
	return c
}

// Register adds or replaces the registration for one document type.
func (c *Classifier) Register(reg Registration) {
	if _, exists := c.regs[reg.Type]; !exists {
		c.order = append(c.order, reg.Type)
	}
	c.regs[reg.Type] = reg
}

// Classify returns the best-matching type with a confidence in [0,1] and
// the matched cue labels as metadata. Text with no distinctive cues lands
// on General with a low confidence.
func (c *Classifier) Classify(text string) Classification {
	lower := strings.ToLower(text)

	best := Classification{
		Type:       constants.General,
		Confidence: generalBaseConfidence,
		Metadata:   map[string]string{},
	}
	for _, t := range c.order {
		reg := c.regs[t]
		if len(reg.Cues) == 0 {
			continue
		}
		score := 0.0
		var matched []string
		for _, cue := range reg.Cues {
			if cue.Pattern.MatchString(lower) {
				score += cue.Weight
				matched = append(matched, cue.Label)
			}
		}
		if score > 1.0 {
			score = 1.0
		}
		if score >= minCueScore && score > best.Confidence {
			sort.Strings(matched)
			best = Classification{
				Type:       t,
				Confidence: score,
				Metadata: map[string]string{
					"keywords": strings.Join(matched, ","),
					"score":    fmt.Sprintf("%.2f", score),
				},
			}
		}
	}
	c.logger.Debug("classify.done", "type", best.Type, "confidence", best.Confidence)
	return best
}

// ExtractorFor returns the structured extractor registered for a type.
func (c *Classifier) ExtractorFor(t constants.DocumentType) (Extractor, bool) {
	reg, ok := c.regs[t]
	if !ok || reg.Extractor == nil {
		return nil, false
	}
	return reg.Extractor, true
}

// PromptKeyFor returns the prompt-template key for a type, falling back to
// the generic key.
func (c *Classifier) PromptKeyFor(t constants.DocumentType) string {
	if reg, ok := c.regs[t]; ok && reg.PromptKey != "" {
		return reg.PromptKey
	}
	return "generic"
}

const (
	// minCueScore is the floor below which a cue match is considered noise.
	minCueScore = 0.25
	// generalBaseConfidence is reported when nothing distinctive matched.
	generalBaseConfidence = 0.2
)
