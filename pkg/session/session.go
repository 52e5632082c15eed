// Package session holds the state shared by every user-facing surface: the
// settings read from the store, the current model catalog, and the analysis
// pipeline. A Session replaces ambient global state; each surface gets one
// explicitly and Close abandons everything it has in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vectora-ai/vectora/pkg/analysis"
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/catalog"
	"github.com/vectora-ai/vectora/pkg/metrics"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/settings"
)

// User-facing messages for requests that never reach the backend.
const (
	MessageNoText          = "Please select text to analyze"
	MessageNoImage         = "Could not extract image URL"
	MessageCaptureFailed   = "Screen capture failed"
	MessageNoCapturer      = "Screen capture is not available"
	MessageCancelled       = "Request cancelled"
	MessageSessionClosed   = "Session closed"
	MessageSettingsUpdated = "Settings reloaded"
)

// ErrClosed is returned by Reload after Close.
var ErrClosed = errors.New("session: closed")

// Response is the reply shape shared by every message surface.
type Response struct {
	Success      bool            `json:"success"`
	AIPercent    float64         `json:"ai_percent"`
	Message      string          `json:"message"`
	Provider     provider.ID     `json:"provider,omitempty"`
	Model        string          `json:"model,omitempty"`
	Capabilities *capability.Set `json:"capabilities,omitempty"`
}

func failure(msg string) Response {
	return Response{Message: msg}
}

func fromResult(res analysis.Result) Response {
	return Response{Success: true, AIPercent: res.AIPercent, Message: res.Message}
}

// Options configures a Session.
type Options struct {
	Store       settings.Store     // Required.
	Resolver    *catalog.Resolver  // nil uses a zero Resolver.
	Pipeline    analysis.Submitter // nil uses analysis.New() with the default endpoints.
	Capturer    screen.Capturer    // nil disables screen analysis.
	CapturesDir string             // When set, screen captures are also written here.
	Logger      *slog.Logger       // nil uses slog.Default().
}

// Session is safe for concurrent use.
type Session struct {
	store       settings.Store
	resolver    *catalog.Resolver
	pipeline    analysis.Submitter
	capturer    screen.Capturer
	capturesDir string
	logger      *slog.Logger
	gate        capability.Gate

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	settings settings.Settings
	catalog  *catalog.Catalog
}

// New reads the settings store once and returns a Session. The catalog is
// empty until RefreshCatalog is called.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session: store is required")
	}

	s := &Session{
		store:       opts.Store,
		resolver:    opts.Resolver,
		pipeline:    opts.Pipeline,
		capturer:    opts.Capturer,
		capturesDir: opts.CapturesDir,
		logger:      opts.Logger,
		catalog:     catalog.New(nil),
	}
	if s.resolver == nil {
		s.resolver = &catalog.Resolver{}
	}
	if s.pipeline == nil {
		s.pipeline = analysis.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.gate = capability.Gate{OnBlock: func(model string, required capability.Capability) {
		metrics.GateBlocks.WithLabelValues(required.String()).Inc()
		s.logger.Info("action blocked by capability gate", "model", model, "required", required)
	}}

	loaded, err := opts.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load settings: %w", err)
	}
	s.settings = loaded

	// Detached from ctx: the session lives until Close, not until the
	// constructor's caller returns.
	s.ctx, s.cancel = context.WithCancel(context.Background())

	return s, nil
}

// Close cancels every in-flight request. It is safe to call more than once.
func (s *Session) Close() {
	s.cancel()
}

// bind derives a context that is done when either ctx or the session is.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings.Clone()
}

// Catalog returns the current catalog snapshot.
func (s *Session) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog
}

// ActiveModel returns the active provider, its saved model, and that model's
// capabilities. known is false when the model is absent from the catalog.
func (s *Session) ActiveModel() (id provider.ID, modelID string, caps capability.Set, known bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id = s.settings.Active()
	modelID = s.settings.Config(id).Model
	caps, known = s.catalog.Capabilities(id, modelID)

	return id, modelID, caps, known
}

// ModelCapabilities returns the capabilities of a model from the session
// catalog. An empty id means the active provider; an empty modelID means that
// provider's saved model. Unknown models have no capabilities.
func (s *Session) ModelCapabilities(id provider.ID, modelID string) capability.Set {
	_, _, caps := s.lookup(id, modelID)
	return caps
}

// CapabilitiesResponse describes a model's capabilities in the message shape.
func (s *Session) CapabilitiesResponse(id provider.ID, modelID string) Response {
	id, modelID, caps := s.lookup(id, modelID)

	return Response{
		Success:      true,
		Message:      caps.String(),
		Provider:     id,
		Model:        modelID,
		Capabilities: &caps,
	}
}

func (s *Session) lookup(id provider.ID, modelID string) (provider.ID, string, capability.Set) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		id = s.settings.Active()
	}
	if modelID == "" {
		modelID = s.settings.Config(id).Model
	}

	caps, _ := s.catalog.Capabilities(id, modelID)
	return id, modelID, caps
}

// RefreshCatalog fetches every provider's catalog with the session's keys and
// replaces the current snapshot.
func (s *Session) RefreshCatalog(ctx context.Context) *catalog.Catalog {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	keys := s.Settings().Keys()
	results := s.resolver.FetchAll(ctx, keys)
	snap := catalog.New(results)

	if ctx.Err() != nil {
		s.logger.DebugContext(ctx, "catalog refresh abandoned", "error", ctx.Err())
		return s.Catalog()
	}

	s.mu.Lock()
	s.catalog = snap
	s.mu.Unlock()

	return snap
}

// Reload re-reads the settings store and refreshes the catalog. On a store
// error the previous settings stay in effect.
func (s *Session) Reload(ctx context.Context) error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}

	loaded, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("session: reload settings: %w", err)
	}

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()

	s.RefreshCatalog(ctx)

	return nil
}

// AnalyzeText submits text for analysis. Blank text is rejected without a
// network call.
func (s *Session) AnalyzeText(ctx context.Context, text string) Response {
	if s.ctx.Err() != nil {
		return failure(MessageSessionClosed)
	}
	if strings.TrimSpace(text) == "" {
		return failure(MessageNoText)
	}

	if resp, blocked := s.check(capability.ActionText); blocked {
		return resp
	}

	return s.submit(ctx, analysis.TextRequest(text))
}

// AnalyzeImage submits an image URL for analysis after checking that the
// active model accepts images.
func (s *Session) AnalyzeImage(ctx context.Context, imageURL string) Response {
	if s.ctx.Err() != nil {
		return failure(MessageSessionClosed)
	}

	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return failure(MessageNoImage)
	}

	if resp, blocked := s.check(capability.ActionImage); blocked {
		return resp
	}

	return s.submit(ctx, analysis.ImageRequest(imageURL))
}

// AnalyzeScreen captures a page region and submits it as an image. The gate
// runs before the capture.
func (s *Session) AnalyzeScreen(ctx context.Context, region screen.Region) Response {
	if s.ctx.Err() != nil {
		return failure(MessageSessionClosed)
	}

	if resp, blocked := s.check(capability.ActionScreen); blocked {
		return resp
	}

	if s.capturer == nil {
		return failure(MessageNoCapturer)
	}

	if err := region.Validate(); err != nil {
		return failure(err.Error())
	}

	ctx, cancel := s.bind(ctx)
	defer cancel()

	png, err := s.capturer.Capture(ctx, region)
	if err != nil {
		if ctx.Err() != nil {
			return failure(MessageCancelled)
		}
		s.logger.WarnContext(ctx, "screen capture failed", "url", region.URL, "error", err)
		return failure(MessageCaptureFailed + ": " + err.Error())
	}

	if s.capturesDir != "" {
		path, err := screen.Save(s.capturesDir, png, time.Now())
		if err != nil {
			s.logger.WarnContext(ctx, "saving capture failed", "error", err)
		} else {
			s.logger.DebugContext(ctx, "capture saved", "path", path)
		}
	}

	return s.submit(ctx, analysis.ImageRequest(screen.DataURL(png)))
}

// check runs the gate for action against the active model.
func (s *Session) check(action capability.Action) (Response, bool) {
	id, modelID, caps, known := s.ActiveModel()

	if err := s.gate.Check(modelID, caps, known, action); err != nil {
		resp := failure(err.Error())
		resp.Provider = id
		resp.Model = modelID
		resp.Capabilities = &caps
		return resp, true
	}

	return Response{}, false
}

func (s *Session) submit(ctx context.Context, req analysis.Request) Response {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	res := s.pipeline.Submit(ctx, req)
	if ctx.Err() != nil {
		return failure(MessageCancelled)
	}

	s.remember(ctx, res)

	return fromResult(res)
}

// remember caches res as the last check, in memory and in the store.
func (s *Session) remember(ctx context.Context, res analysis.Result) {
	s.mu.Lock()
	s.settings.LastCheck = &res
	s.mu.Unlock()

	if err := s.store.SaveLastCheck(ctx, res); err != nil {
		s.logger.WarnContext(ctx, "saving last check failed", "error", err)
	}
}
