package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectora-ai/vectora/pkg/capability"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/session"
	"github.com/vectora-ai/vectora/pkg/settings"
)

func TestTruncateModel(t *testing.T) {
	assert.Equal(t, "Not configured", truncateModel(""))
	assert.Equal(t, "llama3-8b", truncateModel("llama3-8b"))

	exact := strings.Repeat("a", 35)
	assert.Equal(t, exact, truncateModel(exact))

	long := strings.Repeat("b", 36)
	got := truncateModel(long)
	assert.Equal(t, strings.Repeat("b", 32)+"...", got)
}

func TestTruncateMessage(t *testing.T) {
	assert.Equal(t, "short", truncateMessage("short"))
	assert.Len(t, truncateMessage(strings.Repeat("x", 150)), 100)
}

func TestRenderCard(t *testing.T) {
	card := renderCard(session.Response{Success: true, AIPercent: 72.6, Message: "Likely AI"})

	assert.Contains(t, card, "AI Involvement")
	assert.Contains(t, card, "73%")
	assert.Contains(t, card, "Likely AI")
	assert.Contains(t, card, "Powered by Vectora")
}

func TestRenderCard_Failure(t *testing.T) {
	card := renderCard(session.Response{Message: "Please select text to analyze"})

	assert.Contains(t, card, "Please select text to analyze")
	assert.NotContains(t, card, "AI Involvement")
}

func TestCapabilityLabels(t *testing.T) {
	assert.Equal(t, "none", capabilityLabels(0))
	assert.Equal(t, "Text, Image", capabilityLabels(capability.NewSet(capability.Image, capability.Text)))
	assert.Equal(t, "📝🌐", capabilityIcons(capability.NewSet(capability.Text, capability.WebSearch)))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
}

func TestTextArg(t *testing.T) {
	got, err := textArg([]string{"hello", "world"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	got, err = textArg([]string{"-"}, strings.NewReader("from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", got)
}

func TestBuildRegion(t *testing.T) {
	r, err := buildRegion("https://example.com", "", "10,20,300,200", false)
	require.NoError(t, err)
	require.NotNil(t, r.Clip)
	assert.Equal(t, screen.Rect{X: 10, Y: 20, Width: 300, Height: 200}, *r.Clip)

	_, err = buildRegion("https://example.com", "#main", "", true)
	assert.ErrorIs(t, err, screen.ErrInvalidRegion)

	_, err = buildRegion("", "", "", false)
	assert.ErrorIs(t, err, screen.ErrInvalidRegion)
}

func TestDefaultModel(t *testing.T) {
	models := []model.Descriptor{
		model.New("llama3-8b", capability.Text),
		model.New("llama-4-scout-vision", capability.Text, capability.Image),
	}

	assert.Equal(t, "llama-4-scout-vision", defaultModel(models, "llama-4-scout-vision"))
	assert.Equal(t, "llama3-8b", defaultModel(models, "retired"))
	assert.Empty(t, defaultModel(nil, "retired"))
}

func TestModelOptions(t *testing.T) {
	opts := modelOptions([]model.Descriptor{model.New("gpt-oss-compound", capability.Text, capability.WebSearch)})

	require.Len(t, opts, 1)
	assert.Equal(t, "gpt-oss-compound", opts[0].Value)
	assert.Contains(t, opts[0].Key, "Web Search")
}

func TestValidateKey(t *testing.T) {
	validate := validateKey(provider.Groq)

	err := validate("  ")
	assert.ErrorIs(t, err, settings.ErrConfigurationIncomplete)
	assert.EqualError(t, err, "Please enter an API key for groq")

	t.Setenv("VECTORA_TEST_GROQ_KEY", "")
	assert.ErrorIs(t, validate("${VECTORA_TEST_GROQ_KEY}"), settings.ErrConfigurationIncomplete)

	t.Setenv("VECTORA_TEST_GROQ_KEY", "gsk-live")
	assert.NoError(t, validate("${VECTORA_TEST_GROQ_KEY}"))
}

func TestDispatch_UnknownCommand(t *testing.T) {
	err := dispatch(context.Background(), "frobnicate", nil)
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)
}

func TestRunCheck_UnknownKind(t *testing.T) {
	assert.ErrorContains(t, runCheck(context.Background(), []string{"video"}), `unknown kind "video"`)
	assert.Error(t, runCheck(context.Background(), nil))
}
