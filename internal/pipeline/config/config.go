package config

import (
	"os"
	"strings"
	"time"

	"golang-news-signal/pkg/config"

	"github.com/spf13/viper"
)

// Pipeline holds the coordinator settings.
type Pipeline struct {
	Schedule       string        `mapstructure:"schedule"`
	RunTimeout     time.Duration `mapstructure:"run_timeout"`
	RetentionDays  int           `mapstructure:"retention_days"`
	OrphanLimit    int           `mapstructure:"orphan_limit"`
	DefaultSectors []string      `mapstructure:"default_sectors"`
	LockFile       string        `mapstructure:"lock_file"`
}

// Collector holds the feed collection settings.
type Collector struct {
	MaxEntriesPerSource  int           `mapstructure:"max_entries_per_source"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	UserAgent            string        `mapstructure:"user_agent"`
	HTMLFallback         bool          `mapstructure:"html_fallback"`
	SeenCacheTTL         time.Duration `mapstructure:"seen_cache_ttl"`
	MaxConcurrentSources int           `mapstructure:"max_concurrent_sources"`
}

// Analyzer holds the settings shared by every provider call.
type Analyzer struct {
	MaxConcurrentCalls  int           `mapstructure:"max_concurrent_calls"`
	FetchArticleContent bool          `mapstructure:"fetch_article_content"`
	MaxContentChars     int           `mapstructure:"max_content_chars"`
	ArticleTimeout      time.Duration `mapstructure:"article_timeout"`
}

// Provider configures one analysis backend.
type Provider struct {
	Name                string        `mapstructure:"name"`
	Type                string        `mapstructure:"type"`
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	APIKey              string        `mapstructure:"api_key"`
	APIKeyEnv           string        `mapstructure:"api_key_env"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Temperature         float32       `mapstructure:"temperature"`
}

// Credential returns the inline key, or the value of APIKeyEnv when none is set inline.
func (p Provider) Credential() string {
	if strings.TrimSpace(p.APIKey) != "" {
		return strings.TrimSpace(p.APIKey)
	}
	if p.APIKeyEnv != "" {
		return strings.TrimSpace(os.Getenv(p.APIKeyEnv))
	}
	return ""
}

// Trust holds the domain lists used for trust scoring and test-source detection.
type Trust struct {
	OfficialDomains []string `mapstructure:"official_domains"`
	MediaDomains    []string `mapstructure:"media_domains"`
	TestDomains     []string `mapstructure:"test_domains"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App       config.App          `mapstructure:"app"`
	Logger    config.Logger       `mapstructure:"logger"`
	Database  config.Database     `mapstructure:"database"`
	Redis     config.Redis        `mapstructure:"redis"`
	API       config.API          `mapstructure:"api"`
	Pipeline  Pipeline            `mapstructure:"pipeline"`
	Collector Collector           `mapstructure:"collector"`
	Analyzer  Analyzer            `mapstructure:"analyzer"`
	Providers []Provider          `mapstructure:"providers"`
	Feeds     map[string][]string `mapstructure:"feeds"`
	Trust     Trust               `mapstructure:"trust"`
}

// SectorFeeds returns the feed map keyed by upper-case sector.
func (c *Config) SectorFeeds() map[string][]string {
	feeds := make(map[string][]string, len(c.Feeds))
	for sector, urls := range c.Feeds {
		feeds[strings.ToUpper(sector)] = urls
	}
	return feeds
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	config.SetDefaults()
	setDefaults()

	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return &Config{
		App:      config.App{Name: "news-signal-pipeline", Env: "development"},
		Logger:   config.Logger{Level: "info", Encoding: "json"},
		Database: config.Database{Driver: "sqlite", Path: "data/signals.db", BusyTimeout: 5 * time.Second, RetryAttempts: 5, RetryBackoff: 500 * time.Millisecond},
		API:      config.API{Port: 8000},
		Pipeline: Pipeline{
			Schedule:       "@every 60m",
			RunTimeout:     30 * time.Minute,
			RetentionDays:  7,
			OrphanLimit:    100,
			DefaultSectors: DefaultSectors,
		},
		Collector: Collector{
			MaxEntriesPerSource:  10,
			FetchTimeout:         15 * time.Second,
			UserAgent:            defaultUserAgent,
			SeenCacheTTL:         24 * time.Hour,
			MaxConcurrentSources: 4,
		},
		Analyzer: Analyzer{MaxConcurrentCalls: 2, MaxContentChars: 4000, ArticleTimeout: 20 * time.Second},
		Feeds:    DefaultFeeds,
		Trust: Trust{
			OfficialDomains: DefaultOfficialDomains,
			MediaDomains:    DefaultMediaDomains,
			TestDomains:     DefaultTestDomains,
		},
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DefaultSectors deliberately leaves out low-signal sectors such as SPORTS and LUXURY.
var DefaultSectors = []string{"TREASURY", "CRYPTO", "BIOTECH", "SEMIS", "ENERGY", "FINTECH", "COMMODITIES", "EMERGING_MARKETS", "TECHNOLOGY"}

var (
	DefaultOfficialDomains = []string{"sec.gov", "fda.gov", "federalreserve.gov", "treasury.gov", "ecb.europa.eu", "bankofengland.co.uk"}
	DefaultMediaDomains    = []string{"reuters.com", "bloomberg.com", "wsj.com", "ft.com", "cointelegraph.com", "coindesk.com"}
	DefaultTestDomains     = []string{"example.com", "test.com", "localhost", "127.0.0.1"}
)

// DefaultFeeds lists the built-in sources per sector.
var DefaultFeeds = map[string][]string{
	"TREASURY": {
		"https://home.treasury.gov/rss/news",
		"https://www.federalreserve.gov/feeds/press_releases.xml",
		"https://www.federalreserve.gov/feeds/press_all.xml",
		"https://www.sec.gov/news/pressreleases.rss",
		"https://www.ecb.europa.eu/press/pr/rss/index.en.html",
		"https://www.bankofengland.co.uk/rss/news",
	},
	"CRYPTO": {
		"https://cointelegraph.com/rss",
		"https://cryptonews.com/news/feed",
		"https://bitcoinmagazine.com/.rss/full/",
		"https://www.coindesk.com/arc/outboundfeeds/rss/",
		"https://cryptopotato.com/feed/",
	},
	"BIOTECH": {
		"https://www.fda.gov/about-fda/contact-fda/stay-informed/rss-feeds/press-releases/rss.xml",
		"https://www.nih.gov/news-events/news-releases/rss",
		"https://www.who.int/rss-feeds/news-english.xml",
	},
	"SEMIS": {
		"https://www.semiconductors.org/feed/",
		"https://www.nasdaq.com/feed/rssoutbound?category=Press%20Releases",
		"https://www.intel.com/content/www/us/en/newsroom/rss.xml",
	},
	"ENERGY": {
		"https://www.energy.gov/rss/press-releases.xml",
		"https://www.eia.gov/rss/todayinenergy.xml",
		"https://www.iea.org/news/rss",
	},
	"FINTECH": {
		"https://www.fintechfutures.com/feed/",
		"https://www.finextra.com/rss/",
		"https://www.pymnts.com/feed/",
	},
	"COMMODITIES": {
		"https://www.gold.org/rss/news",
		"https://www.kitco.com/rss/",
	},
	"EMERGING_MARKETS": {
		"https://www.worldbank.org/en/news/rss",
		"https://www.imf.org/en/news/rss",
	},
	"TECHNOLOGY": {
		"https://techcrunch.com/feed/",
		"https://www.theverge.com/rss/index.xml",
		"https://arstechnica.com/feed/",
		"https://www.engadget.com/rss.xml",
	},
}

func setDefaults() {
	d := Default()
	viper.SetDefault("pipeline.schedule", d.Pipeline.Schedule)
	viper.SetDefault("pipeline.run_timeout", d.Pipeline.RunTimeout)
	viper.SetDefault("pipeline.retention_days", d.Pipeline.RetentionDays)
	viper.SetDefault("pipeline.orphan_limit", d.Pipeline.OrphanLimit)
	viper.SetDefault("pipeline.default_sectors", d.Pipeline.DefaultSectors)
	viper.SetDefault("collector.max_entries_per_source", d.Collector.MaxEntriesPerSource)
	viper.SetDefault("collector.fetch_timeout", d.Collector.FetchTimeout)
	viper.SetDefault("collector.user_agent", d.Collector.UserAgent)
	viper.SetDefault("collector.seen_cache_ttl", d.Collector.SeenCacheTTL)
	viper.SetDefault("collector.max_concurrent_sources", d.Collector.MaxConcurrentSources)
	viper.SetDefault("analyzer.max_concurrent_calls", d.Analyzer.MaxConcurrentCalls)
	viper.SetDefault("analyzer.max_content_chars", d.Analyzer.MaxContentChars)
	viper.SetDefault("analyzer.article_timeout", d.Analyzer.ArticleTimeout)
	viper.SetDefault("feeds", d.Feeds)
	viper.SetDefault("trust.official_domains", d.Trust.OfficialDomains)
	viper.SetDefault("trust.media_domains", d.Trust.MediaDomains)
	viper.SetDefault("trust.test_domains", d.Trust.TestDomains)
	viper.SetDefault("providers", []map[string]interface{}{
		{
			"name":                   "openai",
			"type":                   "openai",
			"base_url":               "https://api.openai.com/v1/chat/completions",
			"model":                  "gpt-4o",
			"api_key_env":            "OPENAI_API_KEY",
			"max_request_per_minute": 60,
			"timeout":                "60s",
			"temperature":            0.2,
		},
	})
}
