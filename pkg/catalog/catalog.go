// Package catalog resolves each provider's model-listing API into a normalized
// list of model descriptors. Fetches for different providers run concurrently
// and fail independently: a broken provider yields an empty catalog and a
// CatalogError, never a panic or a blocked sibling.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vectora-ai/vectora/pkg/metrics"
	"github.com/vectora-ai/vectora/pkg/providers/cerebras"
	"github.com/vectora-ai/vectora/pkg/providers/gemini"
	"github.com/vectora-ai/vectora/pkg/providers/groq"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"golang.org/x/sync/errgroup"
)

// EmptyLabel is shown in place of a model list when a provider's catalog could
// not be loaded.
const EmptyLabel = "Enter API key to load models"

// DefaultTimeout bounds a single catalog fetch.
const DefaultTimeout = 20 * time.Second

var (
	// ErrMissingCredential is returned without any network call when a provider has no API key.
	ErrMissingCredential = errors.New("catalog: API key required")
	// ErrUnknownProvider is returned for provider IDs with no registered factory.
	ErrUnknownProvider = errors.New("catalog: unknown provider")
)

// CatalogError reports why a provider's catalog could not be loaded.
type CatalogError struct {
	Provider provider.ID
	Err      error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Provider, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// Factory builds a Lister for a provider from an API key.
type Factory func(apiKey string, client *http.Client, baseURL string) provider.Lister

var (
	factoryMu sync.RWMutex
	factories = map[provider.ID]Factory{}
	defaults  sync.Once
)

func ensureDefaults() {
	defaults.Do(func() {
		factories[provider.Cerebras] = newCerebras
		factories[provider.Gemini] = newGemini
		factories[provider.Groq] = newGroq
	})
}

// Register installs a custom Lister factory for a provider, replacing any
// existing one.
func Register(id provider.ID, f Factory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[id] = f
}

func getFactory(id provider.ID) (Factory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[id]
	return f, ok
}

func newCerebras(apiKey string, client *http.Client, baseURL string) provider.Lister {
	l := cerebras.New(apiKey, client)
	if baseURL != "" {
		l.BaseURL = baseURL
	}
	return l
}

func newGemini(apiKey string, client *http.Client, baseURL string) provider.Lister {
	a := gemini.New(apiKey, client)
	if baseURL != "" {
		a.BaseURL = baseURL
	}
	return a
}

func newGroq(apiKey string, client *http.Client, baseURL string) provider.Lister {
	g := groq.New(apiKey, client)
	if baseURL != "" {
		g.BaseURL = baseURL
	}
	return g
}

// Resolver fetches provider catalogs.
type Resolver struct {
	Client   *http.Client           // Shared HTTP client; nil uses each provider's default.
	BaseURLs map[provider.ID]string // Per-provider base URL overrides.
	Timeout  time.Duration          // Per-fetch timeout; zero uses DefaultTimeout.
	Logger   *slog.Logger           // nil uses slog.Default().
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// FetchCatalog fetches and normalizes one provider's catalog. On failure it
// returns an empty, non-nil slice together with the error; it never panics.
// An empty apiKey fails immediately, before any network call, with an error
// matching ErrMissingCredential.
func (r *Resolver) FetchCatalog(ctx context.Context, id provider.ID, apiKey string) (models []model.Descriptor, err error) {
	factory, ok := getFactory(id)
	if !ok {
		return []model.Descriptor{}, &CatalogError{Provider: id, Err: ErrUnknownProvider}
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		metrics.CatalogFetches.WithLabelValues(string(id), metrics.OutcomeSkipped).Inc()
		return []model.Descriptor{}, &CatalogError{Provider: id, Err: ErrMissingCredential}
	}

	defer func() {
		if rec := recover(); rec != nil {
			models = []model.Descriptor{}
			err = &CatalogError{Provider: id, Err: fmt.Errorf("panic: %v", rec)}
		}

		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
			r.logger().WarnContext(ctx, "catalog fetch failed", "provider", id, "error", err)
		} else {
			metrics.CatalogModels.WithLabelValues(string(id)).Set(float64(len(models)))
		}
		metrics.CatalogFetches.WithLabelValues(string(id), outcome).Inc()
	}()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lister := factory(apiKey, r.Client, r.BaseURLs[id])

	start := time.Now()
	models, err = lister.ListModels(fetchCtx)
	if err != nil {
		return []model.Descriptor{}, &CatalogError{Provider: id, Err: err}
	}

	if models == nil {
		models = []model.Descriptor{}
	}

	r.logger().DebugContext(ctx, "catalog fetched",
		"provider", id,
		"models", len(models),
		"duration", time.Since(start),
	)

	return models, nil
}

// Entry is one provider's outcome from FetchAll.
type Entry struct {
	Models []model.Descriptor
	Err    error
}

// Results maps each provider to its fetch outcome.
type Results map[provider.ID]Entry

// FetchAll fetches every provider in keys concurrently and waits for all of
// them to settle. Providers absent from keys are fetched with an empty key and
// therefore report ErrMissingCredential.
func (r *Resolver) FetchAll(ctx context.Context, keys map[provider.ID]string) Results {
	ids := provider.All()
	entries := make([]Entry, len(ids))

	g := new(errgroup.Group)
	for i, id := range ids {
		g.Go(func() error {
			models, err := r.FetchCatalog(ctx, id, keys[id])
			entries[i] = Entry{Models: models, Err: err}
			return nil
		})
	}
	_ = g.Wait() // errors are captured per entry

	out := make(Results, len(ids))
	for i, id := range ids {
		out[id] = entries[i]
	}

	return out
}
