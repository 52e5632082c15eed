package capability

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompatibleCapability is matched by every *IncompatibleError.
var ErrIncompatibleCapability = errors.New("capability: model incompatible")

// compatibleFamilies names the model families users can switch to for image work.
var compatibleFamilies = []string{
	"Gemini 2.0/1.5 (supports images)",
	"Groq Llama Vision models",
}

// Action is the user-facing operation being gated.
type Action int

const (
	ActionText Action = iota
	ActionImage
	ActionScreen
)

// Required returns the capability the action needs.
func (a Action) Required() Capability {
	switch a {
	case ActionImage, ActionScreen:
		return Image
	default:
		return Text
	}
}

// IncompatibleError is returned when the active model lacks the capability an
// action needs. Its message is meant to be shown to the user verbatim.
type IncompatibleError struct {
	Model    string
	Action   Action
	Required Capability
}

func (e *IncompatibleError) Error() string {
	var b strings.Builder

	model := e.Model
	if model == "" {
		model = "Not configured"
	}

	fmt.Fprintf(&b, "MODEL INCOMPATIBLE:\n\nThe selected model [%s] does not support %s analysis.\n\n",
		model, strings.ToUpper(e.Required.String()))

	if e.Action == ActionScreen {
		b.WriteString("Screen capture requires image analysis capability.\n\n")
	}

	b.WriteString("Please switch to a Multimodal model in Settings:")
	for _, f := range compatibleFamilies {
		b.WriteString("\n• ")
		b.WriteString(f)
	}

	return b.String()
}

// Is makes errors.Is(err, ErrIncompatibleCapability) succeed.
func (e *IncompatibleError) Is(target error) bool {
	return target == ErrIncompatibleCapability
}

// BlockFunc is notified whenever the gate refuses an action.
type BlockFunc func(model string, required Capability)

// Gate refuses actions the selected model cannot serve, before any network call.
type Gate struct {
	OnBlock BlockFunc
}

// Check returns nil when a model with caps may perform action. Text actions are
// always allowed. When known is false (stale selection or catalog not yet
// loaded) the model is treated as having no capabilities.
func (g Gate) Check(model string, caps Set, known bool, action Action) error {
	required := action.Required()
	if required == Text {
		return nil
	}

	if !known {
		caps = 0
	}

	if CanHandle(caps, required) {
		return nil
	}

	if g.OnBlock != nil {
		g.OnBlock(model, required)
	}

	return &IncompatibleError{Model: model, Action: action, Required: required}
}
