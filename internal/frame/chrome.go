package frame

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"jmlee87/pricelens/internal/extract"
	"jmlee87/pricelens/logger"
)

// ChromeRunner renders the page in headless Chrome before extraction, for
// result pages that only materialize their grid through script. Subframes
// are still fetched over HTTP from the rendered document's iframe sources.
type ChromeRunner struct {
	timeout   time.Duration
	maxFrames int
	fetchFunc func(url string) (io.Reader, error)
}

// NewChromeRunner creates a headless-Chrome frame runner.
func NewChromeRunner(pageTimeout time.Duration, maxFrames int, fetch func(string) (io.Reader, error)) *ChromeRunner {
	if maxFrames <= 0 {
		maxFrames = 8
	}
	return &ChromeRunner{
		timeout:   pageTimeout,
		maxFrames: maxFrames,
		fetchFunc: fetch,
	}
}

// Name identifies the runner for logging.
func (r *ChromeRunner) Name() string { return "chrome" }

// renderedHTML navigates to the page and returns the rendered markup.
func (r *ChromeRunner) renderedHTML(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, r.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("chrome render of %s failed: %w", pageURL, err)
	}

	return html, nil
}

// Run renders the main document in Chrome, applies fn to it, then applies fn
// to each same-host subframe fetched over HTTP.
func (r *ChromeRunner) Run(ctx context.Context, pageURL string, fn ExtractFunc) ([]extract.Result, error) {
	html, err := r.renderedHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered %s: %w", pageURL, err)
	}

	results := []extract.Result{fn(doc, pageURL)}
	log := logger.ForRunner(r.Name())

	for _, frameURL := range subframeURLs(doc, pageURL, r.maxFrames) {
		frameBody, err := r.fetchFunc(frameURL)
		if err != nil {
			log.Warn().Str("frame", frameURL).Err(err).Msg("Skipping unreachable frame")
			continue
		}
		frameDoc, err := goquery.NewDocumentFromReader(frameBody)
		if err != nil {
			log.Warn().Str("frame", frameURL).Err(err).Msg("Skipping unparsable frame")
			continue
		}
		results = append(results, fn(frameDoc, frameURL))
	}

	return results, nil
}
