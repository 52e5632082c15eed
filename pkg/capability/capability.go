// Package capability describes the content modalities a model can process and
// gates actions that need a modality the selected model lacks.
package capability

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Capability is a content modality or feature a model supports.
type Capability uint8

const (
	Text Capability = 1 << iota
	Image
	WebSearch
)

// all lists capabilities in canonical order.
var all = []Capability{Text, Image, WebSearch}

// All returns every known capability in canonical order.
func All() []Capability {
	out := make([]Capability, len(all))
	copy(out, all)
	return out
}

func (c Capability) String() string {
	switch c {
	case Text:
		return "text"
	case Image:
		return "image"
	case WebSearch:
		return "web_search"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// Label returns the human-readable name shown next to a model.
func (c Capability) Label() string {
	switch c {
	case Text:
		return "Text"
	case Image:
		return "Image"
	case WebSearch:
		return "Web Search"
	default:
		return c.String()
	}
}

// Parse converts the wire form ("text", "image", "web_search") into a Capability.
func Parse(s string) (Capability, error) {
	for _, c := range all {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("capability: unknown capability %q", s)
}

// Set is a duplicate-free collection of capabilities. The zero value is the
// empty set.
type Set uint8

// NewSet builds a set from the given capabilities.
func NewSet(caps ...Capability) Set {
	var s Set
	for _, c := range caps {
		s = s.Add(c)
	}
	return s
}

// Add returns s with c included.
func (s Set) Add(c Capability) Set { return s | Set(c) }

// Has reports whether c is a member of s.
func (s Set) Has(c Capability) bool { return c != 0 && s&Set(c) == Set(c) }

// Empty reports whether s has no members.
func (s Set) Empty() bool { return s == 0 }

// List returns the members of s in canonical order.
func (s Set) List() []Capability {
	var out []Capability
	for _, c := range all {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, len(all))
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// MarshalJSON encodes the set as an array of capability names.
func (s Set) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(all))
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes an array of capability names.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("capability: decode set: %w", err)
	}

	var out Set
	for _, n := range names {
		c, err := Parse(n)
		if err != nil {
			return err
		}
		out = out.Add(c)
	}

	*s = out
	return nil
}

// CanHandle reports whether a model with the given capabilities can serve a
// request that needs required.
func CanHandle(caps Set, required Capability) bool {
	return caps.Has(required)
}
