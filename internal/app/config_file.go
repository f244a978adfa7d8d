package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/paperscrape/internal/extract"
	"github.com/hyperifyio/paperscrape/internal/llm"
	"github.com/hyperifyio/paperscrape/internal/sink"
)

// FileConfig represents the single-file configuration schema. Sections map
// to subcommands.
type FileConfig struct {
	Scrape struct {
		Conference string   `yaml:"conference" json:"conference"`
		Layout     string   `yaml:"layout" json:"layout"`
		BaseURL    string   `yaml:"baseURL" json:"baseURL"`
		Outputs    []string `yaml:"outputs" json:"outputs"`
		Arxiv      *bool    `yaml:"arxiv" json:"arxiv"`
		Robots     *bool    `yaml:"robots" json:"robots"`
	} `yaml:"scrape" json:"scrape"`

	Download struct {
		URLs        string        `yaml:"urls" json:"urls"`
		Dir         string        `yaml:"dir" json:"dir"`
		Concurrency int           `yaml:"concurrency" json:"concurrency"`
		Rate        float64       `yaml:"rate" json:"rate"`
		Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"download" json:"download"`

	LLM struct {
		BaseURL   string `yaml:"base" json:"base"`
		Model     string `yaml:"model" json:"model"`
		APIKey    string `yaml:"key" json:"key"`
		Prompt    string `yaml:"prompt" json:"prompt"`
		MaxTokens int    `yaml:"maxTokens" json:"maxTokens"`
	} `yaml:"llm" json:"llm"`

	Draw struct {
		URL      string `yaml:"url" json:"url"`
		Points   int    `yaml:"points" json:"points"`
		Headless *bool  `yaml:"headless" json:"headless"`
	} `yaml:"draw" json:"draw"`

	UserAgent string `yaml:"userAgent" json:"userAgent"`
	Proxy     string `yaml:"proxy" json:"proxy"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	// Layouts adds listing sites next to the built-in ones.
	Layouts []extract.Layout `yaml:"layouts" json:"layouts"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg. It runs on
// top of DefaultConfig and below env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	setString(&cfg.Conference, fc.Scrape.Conference)
	setString(&cfg.Layout, fc.Scrape.Layout)
	setString(&cfg.BaseURL, fc.Scrape.BaseURL)
	if len(fc.Scrape.Outputs) > 0 {
		cfg.Outputs = append([]string(nil), fc.Scrape.Outputs...)
	}
	setBool(&cfg.ExternalLink, fc.Scrape.Arxiv)
	setBool(&cfg.RespectRobots, fc.Scrape.Robots)

	setString(&cfg.URLsFile, fc.Download.URLs)
	setString(&cfg.ImageDir, fc.Download.Dir)
	if fc.Download.Concurrency > 0 {
		cfg.Concurrency = fc.Download.Concurrency
	}
	if fc.Download.Rate > 0 {
		cfg.RatePerSecond = fc.Download.Rate
	}
	if fc.Download.Timeout > 0 {
		cfg.DownloadTimeout = fc.Download.Timeout
	}

	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setString(&cfg.Prompt, fc.LLM.Prompt)
	if fc.LLM.MaxTokens > 0 {
		cfg.MaxTokens = fc.LLM.MaxTokens
	}

	setString(&cfg.DrawURL, fc.Draw.URL)
	if fc.Draw.Points > 0 {
		cfg.DrawPoints = fc.Draw.Points
	}
	setBool(&cfg.Headless, fc.Draw.Headless)

	setString(&cfg.UserAgent, fc.UserAgent)
	setString(&cfg.ProxyURL, fc.Proxy)
	if fc.Verbose {
		cfg.Verbose = true
	}
	setString(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	for _, l := range fc.Layouts {
		if err := extract.Register(l); err != nil {
			return fmt.Errorf("config layout: %w", err)
		}
	}
	return nil
}

// ValidateConfig checks the settings the named subcommand relies on.
func ValidateConfig(cfg Config, command string) error {
	switch command {
	case "scrape":
		if _, ok := extract.Lookup(cfg.Layout); !ok {
			return fmt.Errorf("config: unknown layout %q (known: %s)", cfg.Layout, strings.Join(extract.Names(), ", "))
		}
		if len(cfg.Outputs) == 0 {
			return errors.New("config: at least one output is required")
		}
		for _, out := range cfg.Outputs {
			if _, err := sink.FormatFromPath(out); err != nil {
				return fmt.Errorf("config: %w", err)
			}
		}
	case "download":
		if strings.TrimSpace(cfg.ImageDir) == "" {
			return errors.New("config: download dir is required")
		}
		if cfg.Concurrency <= 0 {
			return errors.New("config: concurrency must be positive")
		}
		if cfg.RatePerSecond < 0 || cfg.DownloadTimeout < 0 {
			return errors.New("config: negative limits are not allowed")
		}
	case "describe", "models":
		if strings.TrimSpace(cfg.LLMAPIKey) == "" {
			return fmt.Errorf("config: %w (env, .env or llm.key)", llm.ErrMissingAPIKey)
		}
		if cfg.MaxTokens < 0 {
			return errors.New("config: maxTokens must not be negative")
		}
	case "draw":
		if cfg.DrawPoints < 0 {
			return errors.New("config: points must not be negative")
		}
	}
	return nil
}
