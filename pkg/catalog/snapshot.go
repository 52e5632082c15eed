package catalog

import (
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// Catalog is a point-in-time snapshot of every provider's models. It is not
// safe for concurrent mutation; a refresh builds a new Catalog.
type Catalog struct {
	entries Results
}

// New wraps FetchAll results in a Catalog.
func New(results Results) *Catalog {
	if results == nil {
		results = Results{}
	}
	return &Catalog{entries: results}
}

// Models returns the provider's models, or nil when none were loaded.
func (c *Catalog) Models(id provider.ID) []model.Descriptor {
	if c == nil {
		return nil
	}
	return c.entries[id].Models
}

// Err returns the provider's fetch error, if any.
func (c *Catalog) Err(id provider.ID) error {
	if c == nil {
		return nil
	}
	return c.entries[id].Err
}

// Loaded reports whether the provider has at least one model.
func (c *Catalog) Loaded(id provider.ID) bool {
	return len(c.Models(id)) > 0
}

// Lookup finds a model by ID within a provider's catalog.
func (c *Catalog) Lookup(id provider.ID, modelID string) (model.Descriptor, bool) {
	if modelID == "" {
		return model.Descriptor{}, false
	}
	return model.Find(c.Models(id), modelID)
}

// Capabilities returns the capabilities of a model. known is false when the
// model is absent from the catalog (stale selection or catalog not loaded).
func (c *Catalog) Capabilities(id provider.ID, modelID string) (caps capability.Set, known bool) {
	m, ok := c.Lookup(id, modelID)
	if !ok {
		return 0, false
	}
	return m.Capabilities, true
}

// Select resolves the model to use for a provider: the saved selection when it
// is still in the catalog, otherwise the first available model. ok is false
// when the provider has no models.
func (c *Catalog) Select(id provider.ID, selected string) (model.Descriptor, bool) {
	if m, ok := c.Lookup(id, selected); ok {
		return m, true
	}

	models := c.Models(id)
	if len(models) == 0 {
		return model.Descriptor{}, false
	}

	return models[0], true
}
