// Package config loads runtime configuration for the search engine from
// an optional config file layered with environment variables.
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	cfg  *Config
	once sync.Once
)

// Config holds every tunable knob of the crawl/index/query pipeline.
type Config struct {
	// ArchivePath is the ZIP archive to crawl.
	ArchivePath string
	// SeedPath is the entry path within the archive to start crawling from.
	SeedPath string
	// MaxPages bounds the crawl; 0 means unlimited.
	MaxPages int
	// CrawlWorkers is the size of the extraction worker pool. Batch size
	// is CrawlWorkers*4 per the spider's coordinator/worker protocol.
	CrawlWorkers int
	// TopK is read from configuration (default 100). Nothing consumes
	// it: the query processor's result cap is a fixed 100.
	TopK int
	// QueryCacheTTL is read from configuration (default 5m). Nothing
	// consumes it: the search engine's query cache uses its own TTLs.
	QueryCacheTTL time.Duration
	// TelemetryDSN is the sqlite3 DSN for the optional operation log.
	// Empty disables telemetry.
	TelemetryDSN string
}

func defaults() *Config {
	return &Config{
		ArchivePath:   "./corpus.zip",
		SeedPath:      "index.html",
		MaxPages:      0,
		CrawlWorkers:  8,
		TopK:          100,
		QueryCacheTTL: 5 * time.Minute,
		TelemetryDSN:  "",
	}
}

func load() *Config {
	c := defaults()

	v := viper.New()
	v.SetConfigName("websearch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/websearch")

	v.SetEnvPrefix("WEBSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("archive_path", c.ArchivePath)
	v.SetDefault("seed_path", c.SeedPath)
	v.SetDefault("max_pages", c.MaxPages)
	v.SetDefault("crawl_workers", c.CrawlWorkers)
	v.SetDefault("top_k", c.TopK)
	v.SetDefault("query_cache_ttl", c.QueryCacheTTL)
	v.SetDefault("telemetry_dsn", c.TelemetryDSN)

	// Missing config file is fine; env vars and defaults still apply.
	_ = v.ReadInConfig()

	c.ArchivePath = v.GetString("archive_path")
	c.SeedPath = v.GetString("seed_path")
	c.MaxPages = v.GetInt("max_pages")
	c.CrawlWorkers = v.GetInt("crawl_workers")
	c.TopK = v.GetInt("top_k")
	c.QueryCacheTTL = v.GetDuration("query_cache_ttl")
	c.TelemetryDSN = v.GetString("telemetry_dsn")

	if c.CrawlWorkers <= 0 {
		c.CrawlWorkers = 1
	}
	if c.TopK <= 0 {
		c.TopK = 100
	}

	return c
}

// Get returns the process-wide configuration, loading it on first call.
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}
