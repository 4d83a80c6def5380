// Package preview captures a PNG screenshot of a generated report with a
// headless Chrome.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"housing-dashboard/utils"
)

// ErrNoBrowser is returned when no Chrome or Chromium binary can be found.
var ErrNoBrowser = errors.New("preview: no Chrome/Chromium binary found")

// Options configures a Capturer.
type Options struct {
	ChromeBin  string
	Wait       time.Duration // time for map tiles and plots to settle
	MaxRetries int
	Timeout    time.Duration
}

// Capturer takes full-page screenshots of local HTML files.
type Capturer struct {
	opts   Options
	bin    string
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// NewCapturer locates the browser binary. It fails with ErrNoBrowser when
// none is installed.
func NewCapturer(opts Options, logger *utils.Logger) (*Capturer, error) {
	bin := FindBrowser(opts.ChromeBin)
	if bin == "" {
		return nil, ErrNoBrowser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Capturer{
		opts:   opts,
		bin:    bin,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}, nil
}

// Capture renders the HTML file at htmlPath and writes the screenshot to pngPath.
func (c *Capturer) Capture(ctx context.Context, htmlPath, pngPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("preview: resolve %q: %w", htmlPath, err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	c.logger.Info("[preview] Capturing %s with %s", target, c.bin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1600, 1000),
		chromedp.ExecPath(c.bin),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var shot []byte
	err = c.retry.Do(ctx, "screenshot", func(ctx context.Context) error {
		// chromedp logs are noise here
		tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
		defer cancel()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.opts.Timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(target),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(c.opts.Wait),
			chromedp.FullScreenshot(&shot, 100), // 100 selects PNG
		)
	})
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(pngPath), 0755); err != nil {
		return fmt.Errorf("preview: create output dir: %w", err)
	}
	if err := os.WriteFile(pngPath, shot, 0644); err != nil {
		return fmt.Errorf("preview: write %q: %w", pngPath, err)
	}
	c.logger.Info("[preview] Screenshot saved to %s (%d bytes)", pngPath, len(shot))
	return nil
}

// FindBrowser returns bin when set, otherwise the first Chrome or Chromium
// found on PATH or in the usual install locations. It returns "" when none
// exists.
func FindBrowser(bin string) string {
	if bin != "" {
		return bin
	}
	if env := os.Getenv("CHROME_BIN"); env != "" {
		return env
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
