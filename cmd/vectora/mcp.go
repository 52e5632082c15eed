package main

import (
	"context"
	"os"

	"github.com/vectora-ai/vectora/pkg/mcpserver"
	"github.com/vectora-ai/vectora/pkg/screen"
)

func runMCP(ctx context.Context, args []string) error {
	fs, g := newFlagSet("mcp", "mcp [flags]")
	noScreen := fs.Bool("no-screen", false, "do not offer screen capture (no Chrome needed)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr.
	a, err := newApp(g, os.Stderr)
	if err != nil {
		return err
	}

	var capturer screen.Capturer
	if !*noScreen {
		browser := screen.New(screen.WithLogger(a.logger))
		defer browser.Close()
		capturer = browser
	}

	sess, err := a.openSession(ctx, capturer)
	if err != nil {
		return err
	}
	defer sess.Close()

	tools := mcpserver.Tools(sess)

	srv := mcpserver.New("vectora", version)
	srv.Register(tools...)

	a.logger.Info("mcp server ready", "tools", len(tools))

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}
