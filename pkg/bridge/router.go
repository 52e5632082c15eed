// Package bridge is the message surface other components talk to. A Router
// turns action messages into session calls; Server carries those messages
// over HTTP and WebSocket and exposes health and metrics endpoints.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/session"
)

// Action names a message kind.
type Action string

const (
	ActionAnalyzeText          Action = "analyzeText"
	ActionAnalyzeImage         Action = "analyzeImage"
	ActionAnalyzeScreen        Action = "analyzeScreen"
	ActionGetModelCapabilities Action = "getModelCapabilities"
	ActionSettingsUpdated      Action = "settingsUpdated"
)

// Message is a request sent to the bridge. Which fields matter depends on
// Action. ID is echoed back on WebSocket replies so clients can match them.
type Message struct {
	ID       string         `json:"id,omitempty"`
	Action   Action         `json:"action"`
	Text     string         `json:"text,omitempty"`
	ImageURL string         `json:"image_url,omitempty"`
	Provider string         `json:"provider,omitempty"`
	Model    string         `json:"model,omitempty"`
	Region   *screen.Region `json:"region,omitempty"`
}

// Reply is a Response tagged with the originating message ID.
type Reply struct {
	ID string `json:"id,omitempty"`
	session.Response
}

// Router dispatches messages to a session.
type Router struct {
	Session *session.Session
	Logger  *slog.Logger // nil uses slog.Default().
}

func (r *Router) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Handle processes one message. It never fails: every problem is reported in
// the returned Response.
func (r *Router) Handle(ctx context.Context, msg Message) session.Response {
	r.logger().DebugContext(ctx, "bridge message", "action", msg.Action, "id", msg.ID)

	switch msg.Action {
	case ActionAnalyzeText:
		return r.Session.AnalyzeText(ctx, msg.Text)

	case ActionAnalyzeImage:
		return r.Session.AnalyzeImage(ctx, msg.ImageURL)

	case ActionAnalyzeScreen:
		if msg.Region == nil {
			return session.Response{Message: "region is required"}
		}
		return r.Session.AnalyzeScreen(ctx, *msg.Region)

	case ActionGetModelCapabilities:
		var id provider.ID
		if msg.Provider != "" {
			parsed, err := provider.Parse(msg.Provider)
			if err != nil {
				return session.Response{Message: err.Error()}
			}
			id = parsed
		}
		return r.Session.CapabilitiesResponse(id, msg.Model)

	case ActionSettingsUpdated:
		if err := r.Session.Reload(ctx); err != nil {
			r.logger().WarnContext(ctx, "settings reload failed", "error", err)
			return session.Response{Message: err.Error()}
		}
		return session.Response{Success: true, Message: session.MessageSettingsUpdated}

	default:
		return session.Response{Message: fmt.Sprintf("Unknown action: %q", msg.Action)}
	}
}
