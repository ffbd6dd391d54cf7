// Package browser owns headless Chrome session setup for adapters that
// scrape JS-rendered sites. One allocator is opened per adapter run and
// must be released on every exit path; adapters run sequentially, so at
// most one browser is alive at a time.
package browser

import (
	"context"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures the browser allocator.
type Options struct {
	ChromeBin string
	Headless  bool
	UserAgent string
}

// NewAllocator builds a chromedp exec allocator. The returned cancel func
// tears the browser process down and must always be called.
func NewAllocator(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(ua),
	)

	bin := opts.ChromeBin
	if bin == "" {
		bin = FindChromeBinary()
	}
	if bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	return chromedp.NewExecAllocator(ctx, allocOpts...)
}

// FindChromeBinary locates a Chrome/Chromium binary, preferring CHROME_BIN.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
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
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
