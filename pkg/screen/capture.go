// Package screen captures regions of web pages as PNG images with headless
// Chrome. The Chrome process is started lazily on first capture and runs in
// incognito mode so no cookies or profile data are used.
package screen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single capture, navigation included.
const DefaultTimeout = 30 * time.Second

// Capturer renders a region to PNG bytes.
type Capturer interface {
	Capture(ctx context.Context, r Region) ([]byte, error)
}

// Option configures a Browser.
type Option func(*Browser)

// WithHeaded shows the Chrome window instead of running headless.
func WithHeaded() Option {
	return func(b *Browser) { b.headed = true }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) { b.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Browser) { b.logger = l }
}

// Browser is a Capturer backed by a lazily started Chrome process. Captures
// are serialized because they share one tab.
type Browser struct {
	headed  bool
	timeout time.Duration
	logger  *slog.Logger

	// launch starts Chrome; tests replace it.
	launch func() (browserCtx context.Context, browserDone, allocDone context.CancelFunc, err error)

	mu          sync.Mutex
	started     bool
	browserCtx  context.Context
	browserDone context.CancelFunc
	allocDone   context.CancelFunc
}

var _ Capturer = (*Browser)(nil)

// New creates a Browser. Chrome is not started until the first Capture.
func New(opts ...Option) *Browser {
	b := &Browser{timeout: DefaultTimeout}
	b.launch = b.startChrome
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Close shuts down Chrome if it was started.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
}

func (b *Browser) stopLocked() {
	if !b.started {
		return
	}

	b.browserDone()
	b.allocDone()
	b.browserDone = nil
	b.allocDone = nil
	b.browserCtx = nil
	b.started = false
}

// ensureBrowserLocked starts Chrome on first use, and again when the previous
// process has exited or its context was cancelled. b.mu must be held.
func (b *Browser) ensureBrowserLocked() (context.Context, error) {
	if b.started {
		if b.browserCtx.Err() == nil {
			return b.browserCtx, nil
		}
		b.logger.Warn("chrome is gone, restarting", "error", context.Cause(b.browserCtx))
		b.stopLocked()
	}

	browserCtx, browserDone, allocDone, err := b.launch()
	if err != nil {
		return nil, err
	}

	b.browserCtx = browserCtx
	b.browserDone = browserDone
	b.allocDone = allocDone
	b.started = true

	return b.browserCtx, nil
}

func (b *Browser) startChrome() (context.Context, context.CancelFunc, context.CancelFunc, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if b.headed {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	opts = append(opts,
		chromedp.Flag("incognito", true),
		chromedp.Flag("disable-gpu", true),
	)

	// Chrome outlives any single request, so it hangs off a background context.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, nil, nil, fmt.Errorf("screen: start chrome: %w", err)
	}

	return browserCtx, browserCancel, allocCancel, nil
}

// Capture navigates to r.URL and returns a PNG of the requested region.
// Cancelling ctx aborts the capture.
func (b *Browser) Capture(ctx context.Context, r Region) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bCtx, err := b.ensureBrowserLocked()
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(bCtx, b.timeout)
	defer cancel()

	// Tie the operation to the caller's context as well as Chrome's.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()

	var buf []byte
	if err := chromedp.Run(opCtx,
		chromedp.Navigate(r.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		captureAction(r, &buf),
	); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("screen: capture: %w", ctx.Err())
		}
		return nil, fmt.Errorf("screen: capture %s: %w", r.URL, err)
	}

	b.logger.DebugContext(ctx, "screen captured",
		"url", r.URL,
		"bytes", len(buf),
		"duration", time.Since(start),
	)

	return buf, nil
}

func captureAction(r Region, buf *[]byte) chromedp.Action {
	switch {
	case r.Selector != "":
		return chromedp.Screenshot(r.Selector, buf, chromedp.ByQuery)
	case r.Clip != nil:
		clip := &page.Viewport{X: r.Clip.X, Y: r.Clip.Y, Width: r.Clip.Width, Height: r.Clip.Height, Scale: 1}
		return chromedp.ActionFunc(func(ctx context.Context) error {
			data, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(clip).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			if err != nil {
				return err
			}
			*buf = data
			return nil
		})
	case r.FullPage:
		// Quality 100 keeps the output PNG.
		return chromedp.FullScreenshot(buf, 100)
	default:
		return chromedp.CaptureScreenshot(buf)
	}
}

// Save writes png into dir under a timestamped name and returns its path.
func Save(dir string, png []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("screen: create captures dir: %w", err)
	}

	path := filepath.Join(dir, "capture-"+now.UTC().Format("20060102T150405.000Z")+".png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return "", fmt.Errorf("screen: save capture: %w", err)
	}

	return path, nil
}
