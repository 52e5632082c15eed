package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vectora-ai/vectora/pkg/screen"
	"github.com/vectora-ai/vectora/pkg/session"
)

func runCheck(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("check: want one of: text, image, screen")
	}

	kind, rest := args[0], args[1:]
	switch kind {
	case "text":
		return runCheckText(ctx, rest)
	case "image":
		return runCheckImage(ctx, rest)
	case "screen":
		return runCheckScreen(ctx, rest)
	default:
		return fmt.Errorf("check: unknown kind %q (want text, image or screen)", kind)
	}
}

func runCheckText(ctx context.Context, args []string) error {
	fs, g := newFlagSet("check text", "check text [flags] <text>|-")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := textArg(fs.Args(), os.Stdin)
	if err != nil {
		return err
	}

	return check(ctx, g, nil, func(sess *session.Session) session.Response {
		fmt.Fprintln(os.Stderr, dimStyle.Render("Analyzing..."))
		return sess.AnalyzeText(ctx, text)
	})
}

func runCheckImage(ctx context.Context, args []string) error {
	fs, g := newFlagSet("check image", "check image [flags] <url>")
	if err := fs.Parse(args); err != nil {
		return err
	}

	url := strings.Join(fs.Args(), " ")

	return check(ctx, g, nil, func(sess *session.Session) session.Response {
		fmt.Fprintln(os.Stderr, dimStyle.Render("Analyzing image..."))
		return sess.AnalyzeImage(ctx, url)
	})
}

func runCheckScreen(ctx context.Context, args []string) error {
	fs, g := newFlagSet("check screen", "check screen --url <url> [--selector S | --clip x,y,w,h | --full] [flags]")
	url := fs.String("url", "", "page to capture")
	selector := fs.String("selector", "", "CSS selector of the element to capture")
	clip := fs.String("clip", "", "rectangle to capture as x,y,width,height")
	full := fs.Bool("full", false, "capture the full scrollable page")
	headed := fs.Bool("headed", false, "show the Chrome window")
	if err := fs.Parse(args); err != nil {
		return err
	}

	region, err := buildRegion(*url, *selector, *clip, *full)
	if err != nil {
		return err
	}

	var opts []screen.Option
	if *headed {
		opts = append(opts, screen.WithHeaded())
	}
	browser := screen.New(opts...)
	defer browser.Close()

	return check(ctx, g, browser, func(sess *session.Session) session.Response {
		fmt.Fprintln(os.Stderr, dimStyle.Render("Capturing screen..."))
		return sess.AnalyzeScreen(ctx, region)
	})
}

// check opens a session, runs fn, and prints the result card. A rejected
// request is reported as an error after its card is shown.
func check(ctx context.Context, g *globalFlags, capturer screen.Capturer, fn func(*session.Session) session.Response) error {
	a, err := newApp(g, os.Stderr)
	if err != nil {
		return err
	}

	sess, err := a.openSession(ctx, capturer)
	if err != nil {
		return err
	}
	defer sess.Close()

	resp := fn(sess)
	fmt.Println(renderCard(resp))

	if !resp.Success {
		return fmt.Errorf("check failed")
	}
	return nil
}

// textArg joins args into the text to analyze; a lone "-" reads r.
func textArg(args []string, r io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func buildRegion(url, selector, clip string, full bool) (screen.Region, error) {
	region := screen.Region{URL: url, Selector: selector, FullPage: full}

	if clip != "" {
		rect, err := screen.ParseRect(clip)
		if err != nil {
			return screen.Region{}, err
		}
		region.Clip = &rect
	}

	if err := region.Validate(); err != nil {
		return screen.Region{}, err
	}

	return region, nil
}
