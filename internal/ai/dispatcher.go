package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/docintel/constants"
	"github.com/joseph-ayodele/docintel/internal/common"
)

const (
	// Below this many characters there is nothing to analyze.
	minAnalyzableChars = 10

	truncationMarker = "\n[texte tronqué / truncated]"

	fallbackProviderName = "fallback"
	noProviderName       = "none"
)

// Entity is one named thing the model (or the local heuristic) spotted in
// the text: a person, organization, date, amount, location.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// AnalysisResult is the normalized shape every path produces, provider-backed
// or not.
type AnalysisResult struct {
	Summary    string            `json:"summary"`
	KeyPoints  []string          `json:"key_points"`
	Entities   []Entity          `json:"entities"`
	Language   string            `json:"language"`
	Confidence float64           `json:"confidence,omitempty"`
	Provider   string            `json:"provider"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Request describes one analysis call.
type Request struct {
	Text         string
	Detail       constants.DetailLevel
	LanguageHint string
	DocumentType constants.DocumentType

	// Provider overrides the configured default for this call only. A
	// per-call credential travels on the context via WithCredential.
	Provider string

	// Structured carries fields already extracted upstream so the model
	// does not contradict them.
	Structured map[string]any
}

// Config for the dispatcher.
type Config struct {
	DefaultProvider  string
	Temperature      float32
	MaxChars         int
	BaselineLanguage string
}

// Analyzer routes analysis requests to a provider and guarantees a usable
// result: provider or credential failures degrade to the local deterministic
// path and surface as a non-nil error the caller may record as a warning.
type Analyzer struct {
	cfg       Config
	providers map[string]Provider
	creds     *CredentialStore
	logger    *slog.Logger
}

func NewAnalyzer(cfg Config, creds *CredentialStore, logger *slog.Logger, providers ...Provider) *Analyzer {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 4000
	}
	if cfg.BaselineLanguage == "" {
		cfg.BaselineLanguage = "fr"
	}
	if creds == nil {
		creds = NewCredentialStore(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	if cfg.DefaultProvider == "" && len(providers) > 0 {
		cfg.DefaultProvider = providers[0].Name()
	}
	return &Analyzer{cfg: cfg, providers: m, creds: creds, logger: logger}
}

// DefaultProvider is the provider used when a request names none. Callers
// overlaying a per-call credential need it to key the overlay.
func (a *Analyzer) DefaultProvider() string {
	return a.cfg.DefaultProvider
}

func (a *Analyzer) Analyze(ctx context.Context, req Request) (AnalysisResult, error) {
	start := time.Now()
	text := strings.TrimSpace(req.Text)

	if utf8.RuneCountInString(text) < minAnalyzableChars {
		a.logger.Info("ai.analyze.too_short", "text_len", len(text))
		return AnalysisResult{
			Summary:   "Texte trop court pour être analysé.",
			KeyPoints: []string{},
			Entities:  []Entity{},
			Language:  a.cfg.BaselineLanguage,
			Provider:  noProviderName,
			Metadata:  map[string]string{"reason": "too_short"},
		}, nil
	}

	p := paramsFor(req.Detail)
	truncated := false
	if runes := []rune(text); len(runes) > a.cfg.MaxChars {
		text = string(runes[:a.cfg.MaxChars]) + truncationMarker
		truncated = true
	}

	name := req.Provider
	if name == "" {
		name = a.cfg.DefaultProvider
	}

	provider, ok := a.providers[name]
	if !ok {
		res := a.degraded(text, p, req, "unknown_provider")
		return res, common.NewAIAnalysisError("unknown provider "+name, nil)
	}

	cred, err := a.creds.Resolve(ctx, name)
	if err != nil {
		res := a.degraded(text, p, req, "missing_credential")
		return res, err
	}

	schema := BuildAnalysisJSONSchema(p)
	raw, err := provider.Complete(ctx, ProviderRequest{
		SystemPrompt: BuildSystemPrompt(promptKeyFor(req.DocumentType), p, req.LanguageHint) +
			"\n\nJSON Schema:\n" + mustJSON(schema),
		UserPrompt:  BuildUserPrompt(text, req.Structured),
		MaxTokens:   p.MaxTokens,
		Temperature: a.cfg.Temperature,
		Credential:  cred,
	})
	if err != nil {
		a.logger.Warn("ai.analyze.provider_failed",
			"provider", name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		res := a.degraded(text, p, req, "provider_error")
		return res, common.NewAIAnalysisError("provider "+name+" failed", err)
	}

	res := a.parseReply(raw, schema, p, text, req)
	res.Provider = name
	if truncated {
		res.Metadata["truncated"] = "true"
	}

	a.logger.Info("ai.analyze.ok",
		"provider", name,
		"detail", string(constants.CanonicalizeDetail(string(req.Detail))),
		"key_points", len(res.KeyPoints),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// parseReply sanitizes and validates a provider reply, degrading to partial
// or fully local results instead of failing.
func (a *Analyzer) parseReply(raw []byte, schema map[string]any, p detailParams, text string, req Request) AnalysisResult {
	cleaned, _, err := SanitizeAnalysisJSON(raw, p.KeyPoints, a.logger)
	if err != nil {
		// Not JSON at all; a plain-text reply still beats the local heuristic
		// for the summary.
		a.logger.Warn("ai.analyze.plain_text_reply", "error", err)
		res := a.degraded(text, p, req, "plain_text_reply")
		if s := strings.TrimSpace(string(raw)); s != "" {
			if runes := []rune(s); len(runes) > 600 {
				s = string(runes[:600]) + "…"
			}
			res.Summary = s
		}
		return res
	}

	var out AnalysisResult
	if uErr := json.Unmarshal(cleaned, &out); uErr != nil {
		res := a.degraded(text, p, req, "unparseable_reply")
		return res
	}
	out.Metadata = map[string]string{}

	if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
		// Keep what came back, fill the holes locally.
		a.logger.Warn("ai.analyze.schema_mismatch", "error", vErr)
		local := fallbackAnalyze(text, p, req.LanguageHint, a.cfg.BaselineLanguage)
		if out.Summary == "" {
			out.Summary = local.Summary
		}
		if len(out.KeyPoints) == 0 {
			out.KeyPoints = local.KeyPoints
		}
		if out.Language == "" {
			out.Language = local.Language
		}
		if len(out.Entities) == 0 {
			out.Entities = local.Entities
		}
		out.Metadata["degraded"] = "schema_mismatch"
	}
	if out.KeyPoints == nil {
		out.KeyPoints = []string{}
	}
	if out.Entities == nil {
		out.Entities = []Entity{}
	}
	return out
}

func (a *Analyzer) degraded(text string, p detailParams, req Request, reason string) AnalysisResult {
	res := fallbackAnalyze(text, p, req.LanguageHint, a.cfg.BaselineLanguage)
	res.Metadata["degraded"] = reason
	return res
}

// promptKeyFor maps a document type onto a template key; free-form labels
// get canonicalized first, and types with no specialized template share the
// generic one.
func promptKeyFor(t constants.DocumentType) string {
	canonical, ok := constants.CanonicalizeType(string(t))
	if !ok {
		return "generic"
	}
	if _, has := promptTemplates[string(canonical)]; has {
		return string(canonical)
	}
	return "generic"
}
