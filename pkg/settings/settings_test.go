package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectora-ai/vectora/pkg/analysis"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
)

func complete() Settings {
	return Defaults().With(provider.Groq, ProviderConfig{APIKey: "gsk-123456", Model: "llama3-8b"})
}

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, provider.Gemini, s.Active())
	assert.Equal(t, ProviderConfig{}, s.ActiveConfig())
	assert.Nil(t, s.LastCheck)
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.Provider = provider.Groq

	err := s.Validate()
	require.ErrorIs(t, err, ErrConfigurationIncomplete)
	assert.EqualError(t, err, "Please enter an API key for groq")

	s = s.With(provider.Groq, ProviderConfig{APIKey: "k"})
	err = s.Validate()
	var ie *IncompleteError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, FieldModel, ie.Field)
	assert.EqualError(t, err, "Please select a model")

	s = s.With(provider.Groq, ProviderConfig{APIKey: "k", Model: "m"})
	assert.NoError(t, s.Validate())
}

func TestValidate_UnsetEnvReference(t *testing.T) {
	t.Setenv("VECTORA_TEST_UNSET", "")

	s := Defaults().With(provider.Gemini, ProviderConfig{APIKey: "${VECTORA_TEST_UNSET}", Model: "m"})

	err := s.Validate()
	var ie *IncompleteError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, FieldAPIKey, ie.Field)

	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))
	require.ErrorIs(t, store.Save(context.Background(), s), ErrConfigurationIncomplete)
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr), "nothing is written for an unusable key")

	t.Setenv("VECTORA_TEST_UNSET", "g-key")
	require.NoError(t, s.Validate())
	require.NoError(t, store.Save(context.Background(), s))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "${VECTORA_TEST_UNSET}", got.Config(provider.Gemini).APIKey, "the reference is stored, not the secret")
}

func TestValidate_OnlyActiveProvider(t *testing.T) {
	s := complete()
	s.Provider = provider.Groq

	// Gemini being empty does not matter while groq is active.
	assert.NoError(t, s.Validate())
}

func TestRecord_RoundTrip(t *testing.T) {
	s := complete()
	s.Provider = provider.Groq
	s.LastCheck = &analysis.Result{AIPercent: 73, Message: "ok"}

	rec := s.ToRecord()
	assert.Equal(t, "groq", rec.Values[KeyProvider])
	assert.Equal(t, "gsk-123456", rec.Values["groq_api_key"])
	assert.Equal(t, "llama3-8b", rec.Values["groq_model"])
	assert.Contains(t, rec.Values, "cerebras_api_key")

	assert.Equal(t, s, FromRecord(rec))
}

func TestFromRecord_UnknownProviderFallsBack(t *testing.T) {
	s := FromRecord(Record{Values: map[string]string{KeyProvider: "openai"}})
	assert.Equal(t, provider.Gemini, s.Provider)
}

func TestProviderConfig_KeyExpandsEnv(t *testing.T) {
	t.Setenv("VECTORA_TEST_KEY", "from-env")

	assert.Equal(t, "from-env", ProviderConfig{APIKey: " ${VECTORA_TEST_KEY} "}.Key())
	assert.Equal(t, "plain", ProviderConfig{APIKey: "plain"}.Key())
}

func TestFileStore_MissingFileYieldsDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))

	s, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)
	ctx := context.Background()

	s := complete()
	s.Provider = provider.Groq
	require.NoError(t, store.Save(ctx, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_NoPartialSave(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, complete().With(provider.Gemini, ProviderConfig{APIKey: "g", Model: "gemini-2.0-flash"})))

	bad := Defaults()
	bad.Provider = provider.Cerebras
	assert.ErrorIs(t, store.Save(ctx, bad), ErrConfigurationIncomplete)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, provider.Gemini, got.Provider)
	assert.Equal(t, "gemini-2.0-flash", got.Config(provider.Gemini).Model)
}

func TestFileStore_SaveLastCheckKeepsKeys(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))
	ctx := context.Background()

	s := complete()
	s.Provider = provider.Groq
	require.NoError(t, store.Save(ctx, s))

	require.NoError(t, store.SaveLastCheck(ctx, analysis.Result{AIPercent: 10, Message: "first"}))
	require.NoError(t, store.SaveLastCheck(ctx, analysis.Result{AIPercent: 90, Message: "second"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.LastCheck)
	assert.Equal(t, analysis.Result{AIPercent: 90, Message: "second"}, *got.LastCheck)
	assert.Equal(t, "gsk-123456", got.Config(provider.Groq).APIKey)
}

func TestFileStore_ParsesHandWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "provider: cerebras\ncerebras_api_key: ${CEREBRAS_KEY}\ncerebras_model: llama3.1-8b\nlastCheck:\n  ai_percent: 42\n  message: hi\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CEREBRAS_KEY", "csk-xyz")

	got, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, provider.Cerebras, got.Active())
	assert.Equal(t, "${CEREBRAS_KEY}", got.ActiveConfig().APIKey)
	assert.Equal(t, "csk-xyz", got.ActiveConfig().Key())
	assert.Equal(t, "csk-xyz", got.Keys()[provider.Cerebras])
	require.NotNil(t, got.LastCheck)
	assert.Equal(t, float64(42), got.LastCheck.AIPercent)
}

func TestFileStore_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorContains(t, err, "settings: parse")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Defaults())

	assert.ErrorIs(t, store.Save(ctx, Defaults()), ErrConfigurationIncomplete)

	s := complete()
	s.Provider = provider.Groq
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.SaveLastCheck(ctx, analysis.Result{AIPercent: 5, Message: "m"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, provider.Groq, got.Provider)
	require.NotNil(t, got.LastCheck)
	assert.Equal(t, "m", got.LastCheck.Message)
}

func TestDiff(t *testing.T) {
	before := complete()
	after := before.With(provider.Groq, ProviderConfig{APIKey: "gsk-abcdef", Model: "llama-4-scout-17b"})

	diff, err := Diff(before, after)
	require.NoError(t, err)

	assert.Contains(t, diff, "-groq_model: llama3-8b")
	assert.Contains(t, diff, "+groq_model: llama-4-scout-17b")
	assert.Contains(t, diff, "+groq_api_key:")
	assert.Contains(t, diff, "****cdef")
	assert.NotContains(t, diff, "gsk-abcdef")
	assert.NotContains(t, diff, "gsk-123456")

	same, err := Diff(before, before.Clone())
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "****", MaskKey("abc"))
	assert.Equal(t, "****5678", MaskKey("sk-12345678"))
	assert.Equal(t, "${GROQ_KEY}", MaskKey("${GROQ_KEY}"))
}
