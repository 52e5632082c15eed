package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage: vectora <command> [flags]

Commands:
  check text <text>|-      Analyze text ("-" reads stdin)
  check image <url>        Analyze an image URL
  check screen --url U     Capture a page region and analyze it
  models                   List each provider's models and capabilities
  config                   Choose a provider, API key and model interactively
  popup                    Interactive analysis popup
  serve                    Run the local message bridge (HTTP + WebSocket)
  mcp                      Serve analysis tools over MCP on stdio
  version                  Print the version

Run "vectora <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := dispatch(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "check":
		return runCheck(ctx, args)
	case "models":
		return runModels(ctx, args)
	case "config":
		return runConfig(ctx, args)
	case "popup":
		return runPopup(ctx, args)
	case "serve":
		return runServe(ctx, args)
	case "mcp":
		return runMCP(ctx, args)
	case "version", "--version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
