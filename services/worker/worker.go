package worker

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"jmlee87/pricelens/helpers"
	"jmlee87/pricelens/internal/extract"
	"jmlee87/pricelens/pkg/errors"
	"jmlee87/pricelens/services/publisher"

	"github.com/PuerkitoBio/goquery"
)

// Source produces normalized listings for one watched results page.
type Source interface {
	// FetchListings retrieves the current listings from the page
	FetchListings() ([]extract.Listing, error)

	// GetName returns the source's name for logging and stream keys
	GetName() string
}

// SearchSource scrapes a search-results URL with the extractor.
type SearchSource struct {
	name      string
	url       string
	fetchFunc func(string) (io.Reader, error)
	extractor *extract.Extractor
}

// NewSearchSource creates a source over one search-results URL.
func NewSearchSource(name, url string, fetch func(string) (io.Reader, error), extractor *extract.Extractor) *SearchSource {
	return &SearchSource{
		name:      name,
		url:       url,
		fetchFunc: fetch,
		extractor: extractor,
	}
}

// GetName returns the source's name.
func (s *SearchSource) GetName() string { return s.name }

// FetchListings fetches and extracts the page's current listings.
func (s *SearchSource) FetchListings() ([]extract.Listing, error) {
	body, err := s.fetchFunc(s.url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	return s.extractor.Extract(doc), nil
}

// Worker periodically re-extracts every source and publishes the listings.
type Worker struct {
	ctx           context.Context
	sources       []Source
	publisher     publisher.Publisher
	logger        helpers.LoggerInterface
	crawlInterval time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	sources []Source,
	pub publisher.Publisher,
	logger helpers.LoggerInterface,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		sources:       sources,
		publisher:     pub,
		logger:        logger,
		crawlInterval: crawlInterval,
	}
}

// Start starts the worker loop. It returns when the context is cancelled.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.runSources()
		w.logger.LogInfo("extraction sweep took %s", time.Since(start))

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.crawlInterval):
		}
	}
}

// runSources runs all sources in parallel and then trims the streams.
func (w *Worker) runSources() {
	var wg sync.WaitGroup
	for _, s := range w.sources {
		wg.Add(1)
		go func(s Source) {
			defer wg.Done()
			w.extractAndPublish(s)
		}(s)
	}
	wg.Wait()

	if err := w.publisher.TrimStreams(); err != nil {
		w.logger.LogError("StreamTrimming", errors.NewPublisher("streams", "failed to trim streams", err))
	}
}

// extractAndPublish fetches a source's listings and publishes each one.
func (w *Worker) extractAndPublish(s Source) {
	name := s.GetName()

	listings, err := s.FetchListings()
	if err != nil {
		w.logger.LogError(name, err)
		return
	}

	for i, listing := range listings {
		payload, err := json.Marshal(listing)
		if err != nil {
			w.logger.LogError(name, err)
			return
		}

		if err := w.publisher.Publish(name, payload); err != nil {
			w.logger.LogError(name, errors.NewPublisher(name, "failed to publish listing", err))
		}

		// Log only the first listing per source per sweep
		if i == 0 {
			w.logger.LogInfo("%s: %d listings, first: %s (%s)", name, len(listings), listing.Title, helpers.ItemIDFromURL(listing.URL))
		}
	}
}
