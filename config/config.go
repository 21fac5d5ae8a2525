package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"jmlee87/pricelens/pkg/errors"
)

// Mode selects how the application runs.
const (
	// ModePopup runs one popup-session style extraction and exits.
	ModePopup = "popup"
	// ModeWatch re-extracts on an interval and publishes listings.
	ModeWatch = "watch"
)

// Config represents the application configuration
type Config struct {
	// Target site
	SearchURL     string
	BaseURL       string
	TargetPattern string

	// Fetching
	UseChrome     bool
	PageTimeout   time.Duration
	BlockTime     int
	MaxFrameDepth int

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Watch mode
	CrawlInterval time.Duration

	// Startup filter applied to the rendered fragment in popup mode
	FilterQuery    string
	FilterToday    bool
	FilterTomorrow bool

	// Runtime
	Mode        string
	OutputPath  string
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "60"))
	pageTimeout, _ := strconv.Atoi(getEnv("PAGE_TIMEOUT_SECONDS", "20"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "30"))
	maxFrameDepth, _ := strconv.Atoi(getEnv("MAX_FRAMES", "8"))

	return Config{
		SearchURL:     getEnv("SEARCH_URL", "https://www.amazon.com/s?k=deals"),
		BaseURL:       getEnv("BASE_URL", "https://www.amazon.com"),
		TargetPattern: getEnv("TARGET_HOST_PATTERN", `(^|\.)amazon\.com$`),

		UseChrome:     getEnv("USE_CHROME", "false") == "true",
		PageTimeout:   time.Duration(pageTimeout) * time.Second,
		BlockTime:     blockTime,
		MaxFrameDepth: maxFrameDepth,

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,

		MemcacheAddr: getEnv("MEMCACHE_ADDR", "localhost:11211"),

		CrawlInterval: time.Duration(crawlInterval) * time.Second,

		FilterQuery:    getEnv("FILTER_QUERY", ""),
		FilterToday:    getEnv("FILTER_TODAY", "false") == "true",
		FilterTomorrow: getEnv("FILTER_TOMORROW", "false") == "true",

		Mode:        getEnv("PRICELENS_MODE", ModePopup),
		OutputPath:  getEnv("OUTPUT_PATH", ""),
		Environment: getEnv("PRICELENS_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return errors.NewConfiguration("SEARCH_URL must not be empty", nil)
	}
	if c.Mode != ModePopup && c.Mode != ModeWatch {
		return errors.NewConfiguration(fmt.Sprintf("PRICELENS_MODE must be %q or %q, got %q", ModePopup, ModeWatch, c.Mode), nil)
	}
	if _, err := regexp.Compile(c.TargetPattern); err != nil {
		return errors.NewConfiguration("TARGET_HOST_PATTERN is not a valid regexp", err)
	}
	if c.CrawlInterval <= 0 {
		return errors.NewConfiguration("CRAWL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.RedisStreamCount <= 0 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be positive", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
