// Package model holds the normalized, provider-agnostic description of a
// model returned by a provider's model-listing API.
package model

import "github.com/vectora-ai/vectora/pkg/capability"

// Descriptor identifies a model and the capabilities it was derived to have.
// Descriptors are immutable once fetched; a catalog refresh replaces them
// wholesale.
type Descriptor struct {
	ID           string         `json:"id"`
	Capabilities capability.Set `json:"capabilities"`
}

// New creates a Descriptor with the given capabilities.
func New(id string, caps ...capability.Capability) Descriptor {
	return Descriptor{ID: id, Capabilities: capability.NewSet(caps...)}
}

// Supports reports whether the model can serve a request needing c.
func (d Descriptor) Supports(c capability.Capability) bool {
	return capability.CanHandle(d.Capabilities, c)
}

// Find returns the descriptor with the given id. The second result is false
// when no descriptor matches.
func Find(models []Descriptor, id string) (Descriptor, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Descriptor{}, false
}
