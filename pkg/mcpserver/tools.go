package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vectora-ai/vectora/pkg/catalog"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/session"
)

// Tools returns the tools backed by sess.
func Tools(sess *session.Session) []Tool {
	return []Tool{
		{
			Name:        "ai_check_text",
			Description: "Estimate how likely a piece of text is to be AI-generated. Returns ai_percent (0-100) and a short message.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string","description":"Text to analyze"}},"required":["text"]}`),
			Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
				var in struct {
					Text string `json:"text"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return nil, fmt.Errorf("ai_check_text: invalid input: %w", err)
				}
				return sess.AnalyzeText(ctx, in.Text), nil
			},
		},
		{
			Name:        "ai_check_image",
			Description: "Estimate how likely an image is to be AI-generated. Requires the selected model to support images.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"image_url":{"type":"string","description":"Image URL or data URL"}},"required":["image_url"]}`),
			Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
				var in struct {
					ImageURL string `json:"image_url"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return nil, fmt.Errorf("ai_check_image: invalid input: %w", err)
				}
				return sess.AnalyzeImage(ctx, in.ImageURL), nil
			},
		},
		{
			Name:        "ai_check_screen",
			Description: "Capture a region of a web page with headless Chrome and estimate how likely it is to be AI-generated. Set at most one of selector, clip, full_page; none captures the viewport.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"},"selector":{"type":"string"},"clip":{"type":"object","properties":{"x":{"type":"number"},"y":{"type":"number"},"width":{"type":"number"},"height":{"type":"number"}}},"full_page":{"type":"boolean"}},"required":["url"]}`),
			Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
				var region screen.Region
				if err := json.Unmarshal(input, &region); err != nil {
					return nil, fmt.Errorf("ai_check_screen: invalid input: %w", err)
				}
				return sess.AnalyzeScreen(ctx, region), nil
			},
		},
		{
			Name:        "list_models",
			Description: "List the models of each configured provider with their capabilities (text, image, web_search).",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"provider":{"type":"string","enum":["cerebras","gemini","groq"]},"refresh":{"type":"boolean","description":"Re-fetch catalogs before listing"}}}`),
			Handler: func(ctx context.Context, input json.RawMessage) (any, error) {
				var in struct {
					Provider string `json:"provider"`
					Refresh  bool   `json:"refresh"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return nil, fmt.Errorf("list_models: invalid input: %w", err)
				}

				ids := provider.All()
				if in.Provider != "" {
					id, err := provider.Parse(in.Provider)
					if err != nil {
						return nil, fmt.Errorf("list_models: %w", err)
					}
					ids = []provider.ID{id}
				}

				snap := sess.Catalog()
				if in.Refresh {
					snap = sess.RefreshCatalog(ctx)
				}

				return modelListing{Providers: listing(snap, ids)}, nil
			},
		},
	}
}

type modelListing struct {
	Providers []providerModels `json:"providers"`
}

type providerModels struct {
	Provider provider.ID        `json:"provider"`
	Models   []model.Descriptor `json:"models"`
	Error    string             `json:"error,omitempty"`
}

func listing(snap *catalog.Catalog, ids []provider.ID) []providerModels {
	out := make([]providerModels, 0, len(ids))
	for _, id := range ids {
		entry := providerModels{Provider: id, Models: snap.Models(id)}
		if entry.Models == nil {
			entry.Models = []model.Descriptor{}
		}
		if err := snap.Err(id); err != nil {
			entry.Error = err.Error()
		}
		out = append(out, entry)
	}
	return out
}
