package settings

import (
	"strings"

	"github.com/vectora-ai/vectora/pkg/analysis"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// KeyProvider is the record key of the active provider.
const KeyProvider = "provider"

// APIKeyKey returns the record key holding the API key of id.
func APIKeyKey(id provider.ID) string { return string(id) + "_api_key" }

// ModelKey returns the record key holding the selected model of id.
func ModelKey(id provider.ID) string { return string(id) + "_model" }

// Record is the flat persisted form of Settings.
type Record struct {
	Values    map[string]string `yaml:",inline"`
	LastCheck *analysis.Result  `yaml:"lastCheck,omitempty"`
}

// ToRecord flattens s. Every known provider gets both keys, empty when unset.
func (s Settings) ToRecord() Record {
	values := map[string]string{KeyProvider: string(s.Active())}
	for _, id := range provider.All() {
		cfg := s.Config(id)
		values[APIKeyKey(id)] = strings.TrimSpace(cfg.APIKey)
		values[ModelKey(id)] = cfg.Model
	}

	rec := Record{Values: values}
	if s.LastCheck != nil {
		lc := *s.LastCheck
		rec.LastCheck = &lc
	}
	return rec
}

// FromRecord rebuilds settings from a record. An unknown or missing provider
// falls back to the default; unknown keys are ignored.
func FromRecord(rec Record) Settings {
	s := Defaults()

	if id, err := provider.Parse(rec.Values[KeyProvider]); err == nil {
		s.Provider = id
	}

	for _, id := range provider.All() {
		cfg := ProviderConfig{
			APIKey: rec.Values[APIKeyKey(id)],
			Model:  rec.Values[ModelKey(id)],
		}
		if cfg != (ProviderConfig{}) {
			s.Providers[id] = cfg
		}
	}

	if rec.LastCheck != nil {
		lc := *rec.LastCheck
		s.LastCheck = &lc
	}

	return s
}
