// Package config loads the crawl configuration from a YAML file and applies
// defaults. The resulting struct is passed explicitly into the orchestrator.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/juricite/pkg/crawler"
	"github.com/coolbeans/juricite/pkg/fetch"
)

// Config is the YAML shape of the configuration file.
type Config struct {
	// SitemapIndexURL enumerates the source batches.
	SitemapIndexURL string `yaml:"sitemap_index_url"`

	// Concurrency bounds the parallel fetch phase.
	Concurrency int `yaml:"concurrency"`

	// DataDir is the blob-store root directory.
	DataDir string `yaml:"data_dir"`

	// TimeoutSeconds is the per-request hard timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// RetryCount bounds transport retries per request.
	RetryCount int `yaml:"retry_count"`

	// RetryDelaySeconds is the fixed delay between retries.
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `yaml:"user_agent"`
}

// Default returns the built-in defaults.
func Default() Config {
	fetchDefaults := fetch.DefaultConfig()
	return Config{
		Concurrency:       crawler.DefaultConcurrency,
		DataDir:           crawler.DefaultDataDir,
		TimeoutSeconds:    int(fetchDefaults.Timeout / time.Second),
		RetryCount:        fetchDefaults.RetryCount,
		RetryDelaySeconds: int(fetchDefaults.RetryDelay / time.Second),
		UserAgent:         fetchDefaults.UserAgent,
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	loaded := Default()
	if path == "" {
		return loaded, nil
	}

	configYAML, err := os.ReadFile(path)
	if err != nil {
		return loaded, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(configYAML, &loaded); err != nil {
		return loaded, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return loaded, nil
}

// CrawlerConfig maps the file configuration onto the orchestrator config.
func (c Config) CrawlerConfig() crawler.Config {
	return crawler.Config{
		SitemapIndexURL: c.SitemapIndexURL,
		Concurrency:     c.Concurrency,
		DataDir:         c.DataDir,
		Fetch: fetch.Config{
			Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
			RetryCount: c.RetryCount,
			RetryDelay: time.Duration(c.RetryDelaySeconds) * time.Second,
			UserAgent:  c.UserAgent,
		},
	}
}
