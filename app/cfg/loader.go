package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./feedscope.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Maximum concurrent source fetches during a feed check"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-source fetch timeout in seconds"`

	// Source configuration
	PresetsFile     string `long:"presets-file" env:"PRESETS_FILE" description:"Optional YAML file extending the built-in news feed catalog"`
	HNStoryLimit    int    `long:"hn-story-limit" env:"HN_STORY_LIMIT" default:"20" description:"Number of Hacker News stories fetched per check"`
	ArxivMaxResults int    `long:"arxiv-max-results" env:"ARXIV_MAX_RESULTS" default:"25" description:"Maximum papers fetched per arXiv category check"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Feedscope/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		Port:            raw.Port,
		APIAccessKey:    raw.APIAccessKey,
		WorkerCount:     raw.WorkerCount,
		FetchTimeout:    raw.FetchTimeout,
		PresetsFile:     raw.PresetsFile,
		HNStoryLimit:    raw.HNStoryLimit,
		ArxivMaxResults: raw.ArxivMaxResults,
		UserAgent:       raw.UserAgent,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
