package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tells which variant a Request holds.
type Kind int

const (
	KindText Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Request is either a text or an image analysis request. Build one with
// TextRequest or ImageRequest; the zero value is invalid.
type Request struct {
	kind    Kind
	payload string
}

// TextRequest asks for analysis of a piece of text.
func TextRequest(text string) Request { return Request{kind: KindText, payload: text} }

// ImageRequest asks for analysis of the image at url. Data URLs are accepted.
func ImageRequest(url string) Request { return Request{kind: KindImage, payload: url} }

// Kind returns the request variant.
func (r Request) Kind() Kind { return r.kind }

// Text returns the text payload of a text request.
func (r Request) Text() string {
	if r.kind != KindText {
		return ""
	}
	return r.payload
}

// ImageURL returns the image URL of an image request.
func (r Request) ImageURL() string {
	if r.kind != KindImage {
		return ""
	}
	return r.payload
}

// ErrInvalidRequest is returned when a request has no variant.
var ErrInvalidRequest = errors.New("analysis: invalid request")

// MarshalJSON encodes {"text": ...} or {"image_url": ...}.
func (r Request) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindText:
		return json.Marshal(struct {
			Text string `json:"text"`
		}{r.payload})
	case KindImage:
		return json.Marshal(struct {
			ImageURL string `json:"image_url"`
		}{r.payload})
	default:
		return nil, ErrInvalidRequest
	}
}

// UnmarshalJSON decodes either wire form. A body carrying both fields is
// treated as a text request.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text     *string `json:"text"`
		ImageURL *string `json:"image_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("analysis: decode request: %w", err)
	}

	switch {
	case raw.Text != nil:
		*r = TextRequest(*raw.Text)
	case raw.ImageURL != nil:
		*r = ImageRequest(*raw.ImageURL)
	default:
		return ErrInvalidRequest
	}
	return nil
}

// Default result values.
const (
	DefaultPercent     = 50
	MessageComplete    = "Analysis complete"
	MessageUnreachable = "Unable to reach analysis server"
)

// Result is the normalized outcome of an analysis.
type Result struct {
	AIPercent float64 `json:"ai_percent" yaml:"ai_percent"`
	Message   string  `json:"message" yaml:"message"`
}

// Complete is substituted when an accepted endpoint returns an empty or
// malformed body.
func Complete() Result { return Result{AIPercent: DefaultPercent, Message: MessageComplete} }

// Unreachable is returned when every endpoint failed.
func Unreachable() Result { return Result{AIPercent: DefaultPercent, Message: MessageUnreachable} }

// Rounded returns the percentage rounded to the nearest integer for display.
func (r Result) Rounded() int { return int(math.Round(r.AIPercent)) }

// decodeResult parses an accepted response body. Absent fields take their
// defaults individually; an empty or malformed body yields Complete(). The
// object is read field by field, so fields that precede a truncated or
// malformed tail are kept.
func decodeResult(body []byte) Result {
	res := Complete()

	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return res
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return res
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return res
		}

		switch name {
		case "ai_percent":
			if p, ok := parsePercent(raw); ok {
				res.AIPercent = p
			}
		case "message":
			var msg *string
			if json.Unmarshal(raw, &msg) == nil && msg != nil && *msg != "" {
				res.Message = *msg
			}
		}
	}

	return res
}

// parsePercent accepts a JSON number or a numeric string and clamps it to [0,100].
func parsePercent(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = v
	}

	if math.IsNaN(f) {
		return 0, false
	}

	return math.Max(0, math.Min(100, f)), true
}
