package settings

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"gopkg.in/yaml.v3"
)

// Diff returns a unified diff between the records of before and after with
// API keys masked. It returns "" when nothing changed.
func Diff(before, after Settings) (string, error) {
	a, err := maskedYAML(before)
	if err != nil {
		return "", err
	}

	b, err := maskedYAML(after)
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "saved",
		ToFile:   "pending",
		Context:  3,
	}

	result, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("settings: diff: %w", err)
	}

	return result, nil
}

func maskedYAML(s Settings) (string, error) {
	rec := s.ToRecord()
	for _, id := range provider.All() {
		k := APIKeyKey(id)
		rec.Values[k] = MaskKey(rec.Values[k])
	}
	// The cached result is not part of what the user edits.
	rec.LastCheck = nil

	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("settings: marshal: %w", err)
	}

	return string(data), nil
}

// MaskKey hides all but the last four characters of an API key. Environment
// references are shown as written.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return ""
	case strings.HasPrefix(key, "$"):
		return key
	case len(key) <= 4:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}
