// Package groq lists models from Groq's OpenAI-compatible API and infers
// each model's capabilities from its identifier.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// DefaultBaseURL is the base URL for the Groq API.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Rule grants Capability to every model whose ID contains Pattern.
// Matching is case-sensitive and substring-based against the raw ID.
type Rule struct {
	Pattern    string
	Capability capability.Capability
}

// DefaultRules is the naming-pattern table used to infer capabilities.
var DefaultRules = []Rule{
	{Pattern: "vision", Capability: capability.Image},
	{Pattern: "llama-guard", Capability: capability.Image},
	{Pattern: "llama-4-maverick", Capability: capability.Image},
	{Pattern: "llama-4-scout", Capability: capability.Image},
	{Pattern: "compound", Capability: capability.WebSearch},
	{Pattern: "gpt-oss", Capability: capability.WebSearch},
}

// Infer returns {text} plus every capability whose rule matches id.
func Infer(rules []Rule, id string) capability.Set {
	caps := capability.NewSet(capability.Text)
	for _, r := range rules {
		if r.Pattern != "" && strings.Contains(id, r.Pattern) {
			caps = caps.Add(r.Capability)
		}
	}
	return caps
}

var (
	_ provider.Lister     = (*GroqAdapter)(nil)
	_ provider.Normalizer = (*GroqAdapter)(nil)
)

// GroqAdapter fetches the Groq model catalog.
type GroqAdapter struct {
	provider.Client
	Rules []Rule // Capability inference table; nil uses DefaultRules.
}

// New creates a GroqAdapter with the given API key and HTTP client.
// A nil client falls back to a default client.
func New(apiKey string, client *http.Client) *GroqAdapter {
	return &GroqAdapter{
		Client: provider.NewClient(DefaultBaseURL, provider.Auth{Key: apiKey}, client),
	}
}

// ListModels fetches GET /models and normalizes the response.
func (g *GroqAdapter) ListModels(ctx context.Context) ([]model.Descriptor, error) {
	raw, err := g.GetRaw(ctx, "/models")
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}

	return g.Normalize(raw)
}

// Normalize parses a {"data":[{"id":...}]} document, preserving order.
func (g *GroqAdapter) Normalize(raw []byte) ([]model.Descriptor, error) {
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("groq: decode models: %w", err)
	}

	if resp.Data == nil {
		return nil, fmt.Errorf("groq: decode models: missing data array")
	}

	rules := g.Rules
	if rules == nil {
		rules = DefaultRules
	}

	out := make([]model.Descriptor, 0, len(*resp.Data))
	for _, m := range *resp.Data {
		if m.ID == "" {
			continue
		}
		out = append(out, model.Descriptor{ID: m.ID, Capabilities: Infer(rules, m.ID)})
	}

	return out, nil
}

// API response types.

type listResponse struct {
	Object string       `json:"object"`
	Data   *[]listEntry `json:"data"`
}

type listEntry struct {
	ID            string `json:"id"`
	OwnedBy       string `json:"owned_by"`
	Active        bool   `json:"active"`
	ContextWindow int    `json:"context_window"`
}
