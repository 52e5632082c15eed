// Package settings holds the user's provider selection, per-provider API keys
// and chosen models, and the most recent analysis result.
//
// Settings are persisted as a flat record (provider, <p>_api_key, <p>_model,
// lastCheck) by a [Store]. Saves replace the whole record.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vectora-ai/vectora/pkg/analysis"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// ProviderConfig is the per-provider part of the settings.
type ProviderConfig struct {
	APIKey string // May reference environment variables as ${VAR}.
	Model  string
}

// Key returns the API key with environment references expanded and
// surrounding whitespace removed.
func (c ProviderConfig) Key() string {
	return strings.TrimSpace(os.ExpandEnv(strings.TrimSpace(c.APIKey)))
}

// Settings is the full settings record.
type Settings struct {
	Provider  provider.ID
	Providers map[provider.ID]ProviderConfig
	LastCheck *analysis.Result
}

// Defaults returns empty settings with the default provider active.
func Defaults() Settings {
	return Settings{
		Provider:  provider.Default,
		Providers: make(map[provider.ID]ProviderConfig),
	}
}

// Active returns the active provider, falling back to the default.
func (s Settings) Active() provider.ID {
	if s.Provider == "" {
		return provider.Default
	}
	return s.Provider
}

// Config returns the configuration of provider id; unset providers yield the
// zero value.
func (s Settings) Config(id provider.ID) ProviderConfig {
	return s.Providers[id]
}

// ActiveConfig returns the configuration of the active provider.
func (s Settings) ActiveConfig() ProviderConfig {
	return s.Config(s.Active())
}

// With returns a copy of s with provider id configured as cfg.
func (s Settings) With(id provider.ID, cfg ProviderConfig) Settings {
	out := s.Clone()
	out.Providers[id] = cfg
	return out
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := Settings{
		Provider:  s.Provider,
		Providers: make(map[provider.ID]ProviderConfig, len(s.Providers)),
	}
	for id, cfg := range s.Providers {
		out.Providers[id] = cfg
	}
	if s.LastCheck != nil {
		lc := *s.LastCheck
		out.LastCheck = &lc
	}
	return out
}

// Keys returns the expanded API key of every known provider.
func (s Settings) Keys() map[provider.ID]string {
	keys := make(map[provider.ID]string, len(provider.All()))
	for _, id := range provider.All() {
		keys[id] = s.Config(id).Key()
	}
	return keys
}

// ErrConfigurationIncomplete is matched by every *IncompleteError.
var ErrConfigurationIncomplete = errors.New("settings: configuration incomplete")

// Field names a settings field that failed validation.
type Field string

const (
	FieldAPIKey Field = "api_key"
	FieldModel  Field = "model"
)

// IncompleteError reports the first missing field of the active provider.
type IncompleteError struct {
	Provider provider.ID
	Field    Field
}

func (e *IncompleteError) Error() string {
	switch e.Field {
	case FieldAPIKey:
		return fmt.Sprintf("Please enter an API key for %s", e.Provider)
	case FieldModel:
		return "Please select a model"
	default:
		return fmt.Sprintf("settings: %s: missing %s", e.Provider, e.Field)
	}
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrConfigurationIncomplete
}

// Validate checks that the active provider has both an API key and a model.
// The key is checked first, after expanding environment references, so a key
// naming an unset variable counts as missing.
func (s Settings) Validate() error {
	id := s.Active()
	cfg := s.Config(id)

	if cfg.Key() == "" {
		return &IncompleteError{Provider: id, Field: FieldAPIKey}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return &IncompleteError{Provider: id, Field: FieldModel}
	}
	return nil
}

// Store persists settings.
type Store interface {
	// Load returns the persisted settings, or Defaults() if none exist.
	Load(ctx context.Context) (Settings, error)
	// Save validates s and replaces the whole persisted record.
	Save(ctx context.Context, s Settings) error
	// SaveLastCheck updates only the cached analysis result.
	SaveLastCheck(ctx context.Context, res analysis.Result) error
}
