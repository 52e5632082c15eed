package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/vectora-ai/vectora/pkg/catalog"
	"github.com/vectora-ai/vectora/pkg/providers/model"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"github.com/vectora-ai/vectora/pkg/settings"
	"github.com/vectora-ai/vectora/pkg/vectoradir"
)

func runConfig(ctx context.Context, args []string) error {
	fs, g := newFlagSet("config", "config [flags]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(g, os.Stderr)
	if err != nil {
		return err
	}

	saved, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	pending, ok, err := configWizard(ctx, a.resolver(), saved)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println(dimStyle.Render("Cancelled, nothing saved."))
		return nil
	}
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println(dimStyle.Render("Nothing saved."))
		return nil
	}

	if err := vectoradir.EnsureStructure(a.dir); err != nil {
		return err
	}
	if err := a.store.Save(ctx, pending); err != nil {
		fmt.Println(failStyle.Render("✗ " + err.Error()))
		return err
	}

	fmt.Println(successStyle.Render("✓ Settings saved to " + a.store.Path()))
	return nil
}

// configWizard walks through provider, key, and model selection and returns
// the pending settings. ok is false when the user declines to save.
func configWizard(ctx context.Context, resolver *catalog.Resolver, saved settings.Settings) (settings.Settings, bool, error) {
	id := saved.Active()
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[provider.ID]().
			Title("AI provider").
			Options(providerOptions()...).
			Value(&id),
	)).RunWithContext(ctx); err != nil {
		return settings.Settings{}, false, err
	}

	cfg := saved.Config(id)
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(id.Title()+" API key").
			Description("Literal key or ${ENV_VAR} reference").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.APIKey).
			Validate(validateKey(id)),
	)).RunWithContext(ctx); err != nil {
		return settings.Settings{}, false, err
	}

	models, fetchErr := fetchModels(ctx, resolver, id, cfg)
	if fetchErr != nil {
		fmt.Println(failStyle.Render("✗ " + fetchErr.Error()))
	} else {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Loaded %d models from %s", len(models), id.Title())))
	}

	if err := chooseModel(ctx, models, &cfg); err != nil {
		return settings.Settings{}, false, err
	}

	pending := saved.With(id, cfg)
	pending.Provider = id

	if err := pending.Validate(); err != nil {
		return settings.Settings{}, false, err
	}

	diff, err := settings.Diff(saved, pending)
	if err != nil {
		return settings.Settings{}, false, err
	}
	if maps.Equal(saved.ToRecord().Values, pending.ToRecord().Values) {
		fmt.Println(dimStyle.Render("No changes."))
		return pending, false, nil
	}
	if diff == "" {
		diff = "API key replaced (same last four characters)"
	}
	fmt.Println(diff)

	confirm := true
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save these settings?").
			Affirmative("Save").
			Negative("Discard").
			Value(&confirm),
	)).RunWithContext(ctx); err != nil {
		return settings.Settings{}, false, err
	}

	return pending, confirm, nil
}

func providerOptions() []huh.Option[provider.ID] {
	ids := provider.All()
	opts := make([]huh.Option[provider.ID], len(ids))
	for i, id := range ids {
		opts[i] = huh.NewOption(id.Title(), id)
	}
	return opts
}

func validateKey(id provider.ID) func(string) error {
	return func(s string) error {
		if (settings.ProviderConfig{APIKey: s}).Key() == "" {
			return &settings.IncompleteError{Provider: id, Field: settings.FieldAPIKey}
		}
		return nil
	}
}

func fetchModels(ctx context.Context, resolver *catalog.Resolver, id provider.ID, cfg settings.ProviderConfig) ([]model.Descriptor, error) {
	var (
		models []model.Descriptor
		err    error
	)

	spinErr := spinner.New().
		Title("Fetching models from API...").
		Context(ctx).
		Action(func() {
			models, err = resolver.FetchCatalog(ctx, id, cfg.Key())
		}).
		Run()
	if spinErr != nil {
		return nil, spinErr
	}

	return models, err
}

// chooseModel selects from models, or asks for a model ID when the catalog
// could not be loaded.
func chooseModel(ctx context.Context, models []model.Descriptor, cfg *settings.ProviderConfig) error {
	if len(models) == 0 {
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Model ID").
				Description(catalog.EmptyLabel).
				Value(&cfg.Model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return &settings.IncompleteError{Field: settings.FieldModel}
					}
					return nil
				}),
		)).RunWithContext(ctx)
	}

	cfg.Model = defaultModel(models, cfg.Model)

	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Model").
			Options(modelOptions(models)...).
			Height(12).
			Value(&cfg.Model),
	)).RunWithContext(ctx)
}

func modelOptions(models []model.Descriptor) []huh.Option[string] {
	opts := make([]huh.Option[string], len(models))
	for i, m := range models {
		label := fmt.Sprintf("%s  %s %s", truncateModel(m.ID), capabilityIcons(m.Capabilities), capabilityLabels(m.Capabilities))
		opts[i] = huh.NewOption(label, m.ID)
	}
	return opts
}

// defaultModel keeps the saved model when it is still offered, otherwise
// picks the first one.
func defaultModel(models []model.Descriptor, saved string) string {
	if _, ok := model.Find(models, saved); ok {
		return saved
	}
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}
