package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vectora-ai/vectora/pkg/analysis"
	"github.com/vectora-ai/vectora/pkg/catalog"
	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/session"
	"github.com/vectora-ai/vectora/pkg/settings"
	"github.com/vectora-ai/vectora/pkg/vectoradir"
)

// globalFlags are accepted by every command.
type globalFlags struct {
	dir       string
	envFile   string
	verbose   bool
	endpoints string
}

func newFlagSet(name, synopsis string) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: vectora %s\n\nFlags:\n", synopsis)
		fs.PrintDefaults()
	}

	g := &globalFlags{}
	fs.StringVar(&g.dir, "dir", vectoradir.DefaultName, "path to the .vectora directory")
	fs.StringVar(&g.envFile, "env", ".env", "path to .env file (ignored if missing)")
	fs.BoolVar(&g.verbose, "verbose", false, "enable debug logging")
	fs.StringVar(&g.endpoints, "endpoints", "", "comma-separated analysis endpoints (default: hosted, then local)")

	return fs, g
}

// app holds what every command needs after flag parsing.
type app struct {
	dir    vectoradir.Dir
	store  *settings.FileStore
	logger *slog.Logger
	flags  *globalFlags
}

// newApp loads the .env file, configures logging to logOut, and opens the
// settings store.
func newApp(g *globalFlags, logOut io.Writer) (*app, error) {
	if err := loadDotEnv(g.envFile); err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	dir := vectoradir.New(g.dir)

	return &app{
		dir:    dir,
		store:  settings.NewFileStore(dir.SettingsPath()),
		logger: logger,
		flags:  g,
	}, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (a *app) resolver() *catalog.Resolver {
	return &catalog.Resolver{Logger: a.logger}
}

func (a *app) pipeline() *analysis.Pipeline {
	p := analysis.New(splitList(a.flags.endpoints)...)
	p.Logger = a.logger
	return p
}

// openSession reads the settings once and loads the catalog. capturer may be
// nil when screen analysis is not offered.
func (a *app) openSession(ctx context.Context, capturer screen.Capturer) (*session.Session, error) {
	opts := session.Options{
		Store:    a.store,
		Resolver: a.resolver(),
		Pipeline: a.pipeline(),
		Capturer: capturer,
		Logger:   a.logger,
	}
	if capturer != nil && a.dir.Exists() {
		opts.CapturesDir = a.dir.CapturesDir()
	}

	sess, err := session.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	sess.RefreshCatalog(ctx)

	return sess, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
