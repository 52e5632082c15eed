// Package gemini lists models from the Google Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// DefaultBaseURL is the base URL for the Gemini API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// generateMethod marks models that can produce content.
const generateMethod = "generateContent"

// maxPages bounds pagination through the model list.
const maxPages = 10

var (
	_ provider.Lister     = (*Adapter)(nil)
	_ provider.Normalizer = (*Adapter)(nil)
)

// Adapter fetches the Gemini model catalog. The API key travels as the "key"
// query parameter.
type Adapter struct {
	provider.Client
	Logger *slog.Logger // nil uses slog.Default().
}

// New creates an Adapter configured for the Gemini API.
// A nil client falls back to a default client.
func New(apiKey string, client *http.Client) *Adapter {
	return &Adapter{
		Client: provider.NewClient(DefaultBaseURL, provider.Auth{Key: apiKey, Query: "key"}, client),
	}
}

// ListModels fetches GET /models, following page tokens, and keeps only models
// that support content generation. Contemporary Gemini models are multimodal,
// so every kept entry is {text, image, web_search}.
func (a *Adapter) ListModels(ctx context.Context) ([]model.Descriptor, error) {
	var out []model.Descriptor

	path := "/models"
	var next string
	for range maxPages {
		raw, err := a.GetRaw(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}

		var page []model.Descriptor
		page, next, err = a.normalizePage(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)

		if next == "" {
			break
		}
		path = "/models?pageToken=" + url.QueryEscape(next)
	}

	if next != "" {
		a.logger().WarnContext(ctx, "gemini model list truncated",
			"pages", maxPages,
			"models", len(out),
		)
	}

	if out == nil {
		out = []model.Descriptor{}
	}

	return out, nil
}

func (a *Adapter) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Normalize parses a single {"models":[...]} page.
func (a *Adapter) Normalize(raw []byte) ([]model.Descriptor, error) {
	out, _, err := a.normalizePage(raw)
	return out, err
}

func (a *Adapter) normalizePage(raw []byte) ([]model.Descriptor, string, error) {
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", fmt.Errorf("gemini: decode models: %w", err)
	}

	if resp.Models == nil {
		return nil, "", fmt.Errorf("gemini: decode models: missing models array")
	}

	out := make([]model.Descriptor, 0, len(*resp.Models))
	for _, m := range *resp.Models {
		if !slices.Contains(m.SupportedGenerationMethods, generateMethod) {
			continue
		}

		id := strings.Replace(m.Name, "models/", "", 1)
		if id == "" {
			continue
		}

		out = append(out, model.New(id, capability.Text, capability.Image, capability.WebSearch))
	}

	return out, resp.NextPageToken, nil
}

type listResponse struct {
	Models        *[]apiModel `json:"models"`
	NextPageToken string      `json:"nextPageToken"`
}

type apiModel struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}
