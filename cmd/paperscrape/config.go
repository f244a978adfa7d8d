package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperifyio/paperscrape/internal/app"
)

// resolveConfig builds the configuration for cmd with precedence
// flags > environment > config file > defaults, and sets the log level.
func resolveConfig(cmd *cobra.Command) (app.Config, error) {
	fs := cmd.Flags()
	envFiles, _ := fs.GetStringSlice("env-file")
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := app.DefaultConfig()
	if path, _ := fs.GetString("config"); path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return app.Config{}, err
		}
	}
	app.ApplyEnvOverrides(&cfg)
	applyFlags(fs, &cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set explicitly. Flags a command
// does not define are simply never Changed.
func applyFlags(fs *pflag.FlagSet, cfg *app.Config) {
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}
	integer := func(name string, dst *int) {
		if fs.Changed(name) {
			*dst, _ = fs.GetInt(name)
		}
	}

	boolean("verbose", &cfg.Verbose)
	str("cache.dir", &cfg.CacheDir)
	if fs.Changed("cache.maxAge") {
		cfg.CacheMaxAge, _ = fs.GetDuration("cache.maxAge")
	}
	boolean("cache.clear", &cfg.CacheClear)
	boolean("cache.strictPerms", &cfg.CacheStrictPerms)
	boolean("no-cache", &cfg.NoCache)
	str("user-agent", &cfg.UserAgent)
	str("proxy", &cfg.ProxyURL)

	str("conference", &cfg.Conference)
	str("layout", &cfg.Layout)
	str("base-url", &cfg.BaseURL)
	if fs.Changed("out") {
		cfg.Outputs, _ = fs.GetStringSlice("out")
	}
	boolean("arxiv", &cfg.ExternalLink)
	boolean("robots", &cfg.RespectRobots)
	str("manifest", &cfg.Manifest)

	str("dir", &cfg.ImageDir)
	integer("concurrency", &cfg.Concurrency)
	if fs.Changed("rate") {
		cfg.RatePerSecond, _ = fs.GetFloat64("rate")
	}
	if fs.Changed("timeout") {
		cfg.DownloadTimeout, _ = fs.GetDuration("timeout")
	}

	str("model", &cfg.LLMModel)
	str("prompt", &cfg.Prompt)
	integer("max-tokens", &cfg.MaxTokens)

	str("url", &cfg.DrawURL)
	integer("points", &cfg.DrawPoints)
	boolean("headless", &cfg.Headless)
}
