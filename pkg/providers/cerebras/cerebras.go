// Package cerebras lists models from the Cerebras inference API. Cerebras
// serves text-only models, so every entry is normalized to {text}.
package cerebras

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// DefaultBaseURL is the base URL for the Cerebras API.
const DefaultBaseURL = "https://api.cerebras.ai/v1"

var (
	_ provider.Lister     = (*Lister)(nil)
	_ provider.Normalizer = (*Lister)(nil)
)

// Lister fetches the Cerebras model catalog.
type Lister struct {
	provider.Client
}

// New creates a Lister authenticated with a bearer API key.
// A nil client falls back to a default client.
func New(apiKey string, client *http.Client) *Lister {
	return &Lister{
		Client: provider.NewClient(DefaultBaseURL, provider.Auth{Key: apiKey}, client),
	}
}

// ListModels fetches GET /models and normalizes the response.
func (l *Lister) ListModels(ctx context.Context) ([]model.Descriptor, error) {
	raw, err := l.GetRaw(ctx, "/models")
	if err != nil {
		return nil, fmt.Errorf("cerebras: %w", err)
	}

	return l.Normalize(raw)
}

// Normalize parses a {"data":[{"id":...}]} document.
func (l *Lister) Normalize(raw []byte) ([]model.Descriptor, error) {
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("cerebras: decode models: %w", err)
	}

	if resp.Data == nil {
		return nil, fmt.Errorf("cerebras: decode models: missing data array")
	}

	out := make([]model.Descriptor, 0, len(*resp.Data))
	for _, m := range *resp.Data {
		if m.ID == "" {
			continue
		}
		out = append(out, model.New(m.ID, capability.Text))
	}

	return out, nil
}

type listResponse struct {
	Data *[]listEntry `json:"data"`
}

type listEntry struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}
