package main

import (
	"context"
	"os"

	"github.com/vectora-ai/vectora/pkg/bridge"
	"github.com/vectora-ai/vectora/pkg/screen"
)

func runServe(ctx context.Context, args []string) error {
	fs, g := newFlagSet("serve", "serve [--addr HOST:PORT] [--allow-origin PATTERN,...] [flags]")
	addr := fs.String("addr", bridge.DefaultAddr, "listen address")
	origins := fs.String("allow-origin", "", "comma-separated WebSocket origin patterns (default: same origin only)")
	headed := fs.Bool("headed", false, "show the Chrome window used for screen capture")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(g, os.Stderr)
	if err != nil {
		return err
	}

	opts := []screen.Option{screen.WithLogger(a.logger)}
	if *headed {
		opts = append(opts, screen.WithHeaded())
	}
	browser := screen.New(opts...)
	defer browser.Close()

	sess, err := a.openSession(ctx, browser)
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := bridge.NewServer(
		&bridge.Router{Session: sess, Logger: a.logger},
		bridge.WithOriginPatterns(splitList(*origins)...),
		bridge.WithLogger(a.logger),
	)

	return srv.ListenAndServe(ctx, *addr)
}
