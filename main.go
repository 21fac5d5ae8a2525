package main

import (
	"context"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"jmlee87/pricelens/config"
	"jmlee87/pricelens/helpers"
	"jmlee87/pricelens/internal/controller"
	"jmlee87/pricelens/internal/extract"
	"jmlee87/pricelens/internal/filter"
	"jmlee87/pricelens/internal/frame"
	"jmlee87/pricelens/logger"
	"jmlee87/pricelens/services/cache"
	"jmlee87/pricelens/services/publisher"
	"jmlee87/pricelens/services/worker"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("mode", cfg.Mode).
		Str("search_url", cfg.SearchURL).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	extractor := extract.New(extract.DefaultSelectors(), cfg.BaseURL)

	switch cfg.Mode {
	case config.ModeWatch:
		runWatch(ctx, cancel, &cfg, extractor)
	default:
		runPopup(ctx, &cfg, extractor)
	}
}

// newRunner builds the frame runner the configuration asks for.
func newRunner(cfg *config.Config, cacheSvc cache.CacheService) frame.Runner {
	if cfg.UseChrome {
		return frame.NewChromeRunner(cfg.PageTimeout, cfg.MaxFrameDepth, helpers.FetchWithRandomHeaders)
	}
	return frame.NewHTTPRunner(
		cacheSvc,
		"search_rate_limited",
		time.Duration(cfg.BlockTime)*time.Second,
		cfg.MaxFrameDepth,
		helpers.FetchWithRandomHeaders,
	)
}

// filteredDisplay applies a startup filter state to rendered fragments
// before handing them to the underlying display. Plain text messages pass
// through untouched.
type filteredDisplay struct {
	controller.Display
	state filter.State
}

func (d filteredDisplay) SetHTML(html string) {
	filtered, err := filter.Apply(html, d.state)
	if err != nil {
		logger.Default.Warn().Err(err).Msg("Startup filter failed; rendering unfiltered")
		d.Display.SetHTML(html)
		return
	}
	d.Display.SetHTML(filtered)
}

// runPopup performs one popup-session extraction and exits.
func runPopup(ctx context.Context, cfg *config.Config, extractor *extract.Extractor) {
	log := logger.Default

	fileDisplay, closeDisplay, err := controller.NewFileDisplay(cfg.OutputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open display output")
	}
	defer closeDisplay()

	var display controller.Display = fileDisplay
	state := filter.State{Query: cfg.FilterQuery, Today: cfg.FilterToday, Tomorrow: cfg.FilterTomorrow}
	if state != filter.Clear {
		display = filteredDisplay{Display: fileDisplay, state: state}
	}

	cacheSvc := cache.NewMemcacheService(cfg.MemcacheAddr)
	runner := newRunner(cfg, cacheSvc)

	target := regexp.MustCompile(cfg.TargetPattern)
	extractFn := func(doc *goquery.Document, frameURL string) extract.Result {
		return extractor.Run(doc, frameURL)
	}

	ctrl := controller.New(runner, display, target, extractFn)
	if serr := ctrl.Open(ctx, controller.Tab{URL: cfg.SearchURL}); serr != nil {
		log.Warn().Str("type", string(serr.Type)).Str("tab", cfg.SearchURL).Msg(serr.Message)
	}
}

// runWatch re-extracts the search page on an interval and publishes the
// normalized listings to Redis until a shutdown signal arrives.
func runWatch(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, extractor *extract.Extractor) {
	log := logger.Default

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	defer redisPublisher.Close()

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	sources := []worker.Source{
		worker.NewSearchSource("search", cfg.SearchURL, helpers.FetchWithRandomHeaders, extractor),
	}

	w := worker.NewWorker(
		ctx,
		sources,
		redisPublisher,
		helpers.NewLogger(),
		cfg.CrawlInterval,
	)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting listing watch worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}
