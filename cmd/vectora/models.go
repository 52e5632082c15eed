package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/vectora-ai/vectora/pkg/catalog"
	"github.com/vectora-ai/vectora/pkg/providers/provider"
	"github.com/vectora-ai/vectora/pkg/settings"
)

const modelsWrap = 100

func runModels(ctx context.Context, args []string) error {
	fs, g := newFlagSet("models", "models [--provider ID] [--plain] [flags]")
	only := fs.String("provider", "", "only list this provider (cerebras, gemini, groq)")
	plain := fs.Bool("plain", false, "print markdown without terminal styling")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := provider.All()
	if *only != "" {
		id, err := provider.Parse(*only)
		if err != nil {
			return err
		}
		ids = []provider.ID{id}
	}

	a, err := newApp(g, os.Stderr)
	if err != nil {
		return err
	}

	sess, err := a.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	md := modelsMarkdown(sess.Catalog(), ids, sess.Settings())
	if *plain {
		fmt.Print(md)
		return nil
	}

	fmt.Println(renderMarkdown(md, modelsWrap))
	return nil
}

// modelsMarkdown lists each provider's models with their capabilities. The
// active provider is marked and the saved model is shown in bold.
func modelsMarkdown(snap *catalog.Catalog, ids []provider.ID, s settings.Settings) string {
	var b strings.Builder

	for i, id := range ids {
		if i > 0 {
			b.WriteString("\n")
		}

		title := id.Title()
		if id == s.Active() {
			title += " (active)"
		}
		fmt.Fprintf(&b, "## %s\n\n", title)

		models := snap.Models(id)
		if len(models) == 0 {
			fmt.Fprintf(&b, "_%s_\n", catalog.EmptyLabel)
			if err := snap.Err(id); err != nil {
				fmt.Fprintf(&b, "\n> %s\n", err)
			}
			continue
		}

		saved := s.Config(id).Model
		b.WriteString("| Model | Capabilities |\n|---|---|\n")
		for _, m := range models {
			name := m.ID
			if name == saved {
				name = "**" + name + "**"
			}
			fmt.Fprintf(&b, "| %s | %s %s |\n", name, capabilityIcons(m.Capabilities), capabilityLabels(m.Capabilities))
		}

		if saved != "" {
			if _, ok := snap.Lookup(id, saved); !ok {
				fmt.Fprintf(&b, "\nSaved model `%s` is no longer offered.\n", saved)
			}
		}
	}

	return b.String()
}

// renderMarkdown styles md for the terminal, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
