package screen

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidRegion is matched by every region validation failure.
var ErrInvalidRegion = errors.New("screen: invalid region")

// Rect is a page-coordinate rectangle in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParseRect parses "x,y,w,h".
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("%w: clip %q: want x,y,width,height", ErrInvalidRegion, s)
	}

	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, fmt.Errorf("%w: clip %q: %v", ErrInvalidRegion, s, err)
		}
		vals[i] = v
	}

	return Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Region selects what to capture from a page: an element, a rectangle, the
// whole scrollable page, or (when none is set) the visible viewport.
type Region struct {
	URL      string `json:"url"`
	Selector string `json:"selector,omitempty"`
	Clip     *Rect  `json:"clip,omitempty"`
	FullPage bool   `json:"full_page,omitempty"`
}

// Validate checks that the region names an http(s) or file URL and at most one
// capture mode.
func (r Region) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRegion)
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRegion, err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: url %q has no host", ErrInvalidRegion, r.URL)
		}
	case "file":
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRegion, u.Scheme)
	}

	modes := 0
	if r.Selector != "" {
		modes++
	}
	if r.Clip != nil {
		modes++
	}
	if r.FullPage {
		modes++
	}
	if modes > 1 {
		return fmt.Errorf("%w: selector, clip and full page are mutually exclusive", ErrInvalidRegion)
	}

	if c := r.Clip; c != nil {
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: clip must have a positive size", ErrInvalidRegion)
		}
		if c.X < 0 || c.Y < 0 {
			return fmt.Errorf("%w: clip origin must not be negative", ErrInvalidRegion)
		}
	}

	return nil
}

// DataURL encodes PNG bytes as a data URL suitable for an image analysis
// request.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
