package ai

import (
	"context"
	"maps"

	"github.com/joseph-ayodele/docintel/internal/common"
)

type credKeyType struct{}

var credKey credKeyType

// WithCredential overlays a short-lived credential for one provider onto the
// context. The overlay is a copy: the parent context and any sibling call
// chains never observe it, and it vanishes with the context itself.
func WithCredential(ctx context.Context, provider, secret string) context.Context {
	overlay := make(map[string]string, 2)
	if prev, ok := ctx.Value(credKey).(map[string]string); ok {
		maps.Copy(overlay, prev)
	}
	overlay[provider] = secret
	return context.WithValue(ctx, credKey, overlay)
}

// CredentialStore holds the default per-provider credentials seeded at
// startup. It is immutable after construction; per-call overrides travel on
// the context via WithCredential, never through the store.
type CredentialStore struct {
	defaults map[string]string
}

func NewCredentialStore(defaults map[string]string) *CredentialStore {
	copied := make(map[string]string, len(defaults))
	maps.Copy(copied, defaults)
	return &CredentialStore{defaults: copied}
}

// Resolve returns the credential for a provider, context overlay first, then
// the seeded default. A provider with no credential at all is a configuration
// error.
func (s *CredentialStore) Resolve(ctx context.Context, provider string) (string, error) {
	if overlay, ok := ctx.Value(credKey).(map[string]string); ok {
		if v, ok := overlay[provider]; ok && v != "" {
			return v, nil
		}
	}
	if v := s.defaults[provider]; v != "" {
		return v, nil
	}
	return "", common.NewConfigurationError("no credential available for provider "+provider, nil)
}
