// Package frame runs the extraction function across a page and its
// subframes, the way a browser host would execute an injected script in
// every frame of a tab. Exactly one run happens per popup session; there is
// no retry and no cancellation beyond the caller's context.
package frame

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jmlee87/pricelens/internal/extract"
	"jmlee87/pricelens/logger"
	"jmlee87/pricelens/pkg/errors"
	"jmlee87/pricelens/services/cache"
)

// ExtractFunc is the function executed in every frame. It receives the
// frame's parsed document and URL and must not panic (the extractor recovers
// internally and reports failures through the result markup).
type ExtractFunc func(doc *goquery.Document, frameURL string) extract.Result

// Runner executes an ExtractFunc in every frame of the target page and
// returns the per-frame results in frame order.
type Runner interface {
	Run(ctx context.Context, pageURL string, fn ExtractFunc) ([]extract.Result, error)

	// Name identifies the runner for logging.
	Name() string
}

// HTTPRunner fetches frames over plain HTTP with charset normalization and
// a memcache-backed rate-limit block.
type HTTPRunner struct {
	cacheSvc  cache.CacheService
	cacheKey  string
	blockTime time.Duration
	maxFrames int

	// fetchFunc is replaceable in tests.
	fetchFunc func(url string) (io.Reader, error)
}

// NewHTTPRunner creates a plain-HTTP frame runner. cacheSvc may be nil to
// disable the rate-limit block.
func NewHTTPRunner(cacheSvc cache.CacheService, cacheKey string, blockTime time.Duration, maxFrames int, fetch func(string) (io.Reader, error)) *HTTPRunner {
	if maxFrames <= 0 {
		maxFrames = 8
	}
	return &HTTPRunner{
		cacheSvc:  cacheSvc,
		cacheKey:  cacheKey,
		blockTime: blockTime,
		maxFrames: maxFrames,
		fetchFunc: fetch,
	}
}

// Name identifies the runner for logging.
func (r *HTTPRunner) Name() string { return "http" }

// fetchWithBlock fetches a URL honoring the rate-limit block.
func (r *HTTPRunner) fetchWithBlock(pageURL string) (io.Reader, error) {
	if r.cacheSvc != nil && r.cacheKey != "" {
		if _, err := r.cacheSvc.Get(r.cacheKey); err == nil {
			return nil, errors.NewRateLimit(r.cacheKey, r.blockTime)
		}
	}

	body, err := r.fetchFunc(pageURL)
	if err != nil {
		if strings.Contains(err.Error(), "rate limited") {
			if r.cacheSvc != nil && r.cacheKey != "" {
				if cerr := r.cacheSvc.Set(r.cacheKey, []byte(fmt.Sprintf("%d", int(r.blockTime/time.Second))), r.blockTime); cerr != nil {
					logger.ForRunner(r.Name()).Warn().Err(errors.NewCache(r.cacheKey, "failed to store rate-limit block", cerr)).Msg("Rate-limit block not persisted")
				}
			}
			return nil, errors.New(errors.ErrorTypeRateLimit, pageURL, "fetch rate limited", err)
		}
		return nil, errors.NewNetwork(pageURL, "failed to fetch page", err)
	}

	return body, nil
}

// Run fetches the main document, applies fn to it, then applies fn to each
// same-host subframe. A subframe that fails to fetch or parse is skipped;
// only a main-document failure aborts the run.
func (r *HTTPRunner) Run(ctx context.Context, pageURL string, fn ExtractFunc) ([]extract.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.fetchWithBlock(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
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

// subframeURLs collects same-host iframe sources in document order, capped
// at max. Cross-host frames are dropped the way a content script would be
// blocked from them.
func subframeURLs(doc *goquery.Document, pageURL string, max int) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var frames []string
	seen := map[string]bool{}

	doc.Find("iframe[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "about:") || strings.HasPrefix(src, "javascript:") {
			return true
		}

		ref, err := url.Parse(src)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Hostname() != base.Hostname() {
			return true
		}

		u := resolved.String()
		if seen[u] {
			return true
		}
		seen[u] = true
		frames = append(frames, u)

		return len(frames) < max
	})

	return frames
}
