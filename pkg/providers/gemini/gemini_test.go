package gemini_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/gemini"
	"github.com/vectora-ai/vectora/pkg/providers/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *gemini.Adapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := gemini.New("test-key", srv.Client())
	a.BaseURL = srv.URL

	return a
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

var allCaps = []capability.Capability{capability.Text, capability.Image, capability.WebSearch}

func TestListModels_FiltersByGenerateContent(t *testing.T) {
	a := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		writeJSON(t, w, map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-2.0-flash", "supportedGenerationMethods": []string{"generateContent", "countTokens"}},
				{"name": "models/text-embedding-004", "supportedGenerationMethods": []string{"embedContent"}},
				{"name": "models/aqa"},
				{"name": "models/gemini-1.5-flash", "supportedGenerationMethods": []string{"generateContent"}},
			},
		})
	})

	models, err := a.ListModels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.Descriptor{
		model.New("gemini-2.0-flash", allCaps...),
		model.New("gemini-1.5-flash", allCaps...),
	}, models)
}

func TestListModels_FollowsPageToken(t *testing.T) {
	calls := 0
	a := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, map[string]any{
				"models":        []map[string]any{{"name": "models/a", "supportedGenerationMethods": []string{"generateContent"}}},
				"nextPageToken": "p2",
			})
			return
		}

		assert.Equal(t, "p2", r.URL.Query().Get("pageToken"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		writeJSON(t, w, map[string]any{
			"models": []map[string]any{{"name": "models/b", "supportedGenerationMethods": []string{"generateContent"}}},
		})
	})

	models, err := a.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, models, 2)
	assert.Equal(t, "a", models[0].ID)
	assert.Equal(t, "b", models[1].ID)
}

func TestListModels_WarnsWhenPagesRunOut(t *testing.T) {
	calls := 0
	a := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writeJSON(t, w, map[string]any{
			"models":        []map[string]any{{"name": fmt.Sprintf("models/m%d", calls), "supportedGenerationMethods": []string{"generateContent"}}},
			"nextPageToken": "more",
		})
	})

	var logs bytes.Buffer
	a.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	models, err := a.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Len(t, models, 10)
	assert.Contains(t, logs.String(), "gemini model list truncated")
}

func TestListModels_NoneSupported(t *testing.T) {
	a := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"models": []map[string]any{}})
	})

	models, err := a.ListModels(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestListModels_BadKey(t *testing.T) {
	a := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})

	_, err := a.ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestNormalize_Malformed(t *testing.T) {
	a := gemini.New("k", nil)

	for _, raw := range []string{``, `{`, `{"data":[]}`, `{"models":"x"}`} {
		_, err := a.Normalize([]byte(raw))
		assert.Error(t, err, raw)
	}
}
