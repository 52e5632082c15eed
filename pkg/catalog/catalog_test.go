package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

// newUpstream starts a server per provider that always answers with body.
func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func resolverFor(srv *httptest.Server, ids ...provider.ID) *Resolver {
	urls := map[provider.ID]string{}
	for _, id := range ids {
		urls[id] = srv.URL
	}
	return &Resolver{Client: srv.Client(), BaseURLs: urls, Timeout: 5 * time.Second}
}

func TestFetchCatalog_MissingCredential(t *testing.T) {
	srv, hits := newUpstream(t, http.StatusOK, `{"data":[]}`)
	r := resolverFor(srv, provider.All()...)

	for _, id := range provider.All() {
		models, err := r.FetchCatalog(context.Background(), id, "   ")
		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.NotNil(t, models)
		assert.Empty(t, models)
	}

	assert.Zero(t, hits.Load(), "no network call may be made without a key")
}

func TestFetchCatalog_UnknownProvider(t *testing.T) {
	models, err := (&Resolver{}).FetchCatalog(context.Background(), provider.ID("openai"), "k")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Empty(t, models)
}

func TestFetchCatalog_MalformedJSONYieldsEmpty(t *testing.T) {
	for _, body := range []string{`not json`, `{"data":`, `{}`, `[1,2]`, ``} {
		srv, _ := newUpstream(t, http.StatusOK, body)
		r := resolverFor(srv, provider.All()...)

		for _, id := range provider.All() {
			var models []model.Descriptor
			var err error
			require.NotPanics(t, func() {
				models, err = r.FetchCatalog(context.Background(), id, "k")
			})

			var ce *CatalogError
			require.True(t, errors.As(err, &ce), "provider=%s body=%q", id, body)
			assert.Equal(t, id, ce.Provider)
			assert.NotNil(t, models)
			assert.Empty(t, models)
		}
	}
}

func TestFetchCatalog_HTTPStatus(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusUnauthorized, `{"error":"invalid key"}`)
	r := resolverFor(srv, provider.Groq)

	_, err := r.FetchCatalog(context.Background(), provider.Groq, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")

	var se *provider.StatusError
	assert.True(t, errors.As(err, &se))
}

func TestFetchCatalog_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	r := resolverFor(srv, provider.Cerebras)

	models, err := r.FetchCatalog(context.Background(), provider.Cerebras, "k")
	assert.Error(t, err)
	assert.Empty(t, models)
}

func TestFetchCatalog_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	r := resolverFor(srv, provider.Groq)
	r.Timeout = 50 * time.Millisecond

	_, err := r.FetchCatalog(context.Background(), provider.Groq, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchCatalog_Idempotent(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{"data":[{"id":"llama3-8b"},{"id":"llama-4-scout-vision"},{"id":"gpt-oss-compound"}]}`)
	r := resolverFor(srv, provider.Groq)

	first, err := r.FetchCatalog(context.Background(), provider.Groq, "k")
	require.NoError(t, err)
	second, err := r.FetchCatalog(context.Background(), provider.Groq, "k")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("catalog changed between identical fetches (-first +second):\n%s", diff)
	}

	want := []model.Descriptor{
		model.New("llama3-8b", capability.Text),
		model.New("llama-4-scout-vision", capability.Text, capability.Image),
		model.New("gpt-oss-compound", capability.Text, capability.WebSearch),
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("unexpected catalog (-want +got):\n%s", diff)
	}
}

func TestFetchCatalog_RecoversPanickingLister(t *testing.T) {
	const id = provider.ID("panicky")
	Register(id, func(string, *http.Client, string) provider.Lister { return panicLister{} })

	models, err := (&Resolver{}).FetchCatalog(context.Background(), id, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.Empty(t, models)
}

type panicLister struct{}

func (panicLister) ListModels(context.Context) ([]model.Descriptor, error) { panic("boom") }

func TestFetchAll_IsolatesFailures(t *testing.T) {
	geminiSrv, _ := newUpstream(t, http.StatusOK, `{"models":[{"name":"models/gemini-2.0-flash","supportedGenerationMethods":["generateContent"]}]}`)
	groqSrv, _ := newUpstream(t, http.StatusInternalServerError, `oops`)

	r := &Resolver{
		BaseURLs: map[provider.ID]string{
			provider.Gemini: geminiSrv.URL,
			provider.Groq:   groqSrv.URL,
		},
		Timeout: 5 * time.Second,
	}

	results := r.FetchAll(context.Background(), map[provider.ID]string{
		provider.Gemini: "g-key",
		provider.Groq:   "q-key",
	})

	require.Len(t, results, 3)

	assert.ErrorIs(t, results[provider.Cerebras].Err, ErrMissingCredential)
	assert.Empty(t, results[provider.Cerebras].Models)

	require.NoError(t, results[provider.Gemini].Err)
	require.Len(t, results[provider.Gemini].Models, 1)
	assert.Equal(t, "gemini-2.0-flash", results[provider.Gemini].Models[0].ID)

	assert.Error(t, results[provider.Groq].Err)
	assert.Empty(t, results[provider.Groq].Models)
}

func TestFetchAll_RunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if n == 3 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		inFlight.Add(-1)

		if r.URL.Query().Get("key") != "" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(srv.Close)

	r := resolverFor(srv, provider.All()...)
	results := r.FetchAll(context.Background(), map[provider.ID]string{
		provider.Cerebras: "a", provider.Gemini: "b", provider.Groq: "c",
	})

	assert.Equal(t, int32(3), peak.Load())
	for _, id := range provider.All() {
		assert.NoError(t, results[id].Err, id)
	}
}
