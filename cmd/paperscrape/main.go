// Command paperscrape scrapes conference paper listings and bundles the
// small companion utilities: image download, image description, model
// listing and canvas drawing.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/paperscrape/internal/app"
	"github.com/hyperifyio/paperscrape/internal/extract"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to the process exit status: 2 when the input
// document is not HTML at all, 1 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var me *extract.MalformedInputError
	if errors.As(err, &me) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paperscrape",
		Short: "Scrape conference paper listings into CSV, JSON and friends",
		Long: `paperscrape turns a conference listing page (CVF open access by default)
into one record per paper with title, authors and links, and writes them as
csv, json, yaml, markdown, html or pdf.

The download, describe, models and draw subcommands are small companion
utilities that share the same configuration and HTTP stack.`,
		Version:       app.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML or JSON config file")
	pf.StringSlice("env-file", []string{".env"}, "Dotenv files to load; later files override earlier ones")
	pf.BoolP("verbose", "v", false, "Verbose logging")
	pf.String("cache.dir", app.DefaultCacheDir, "Cache directory path")
	pf.Duration("cache.maxAge", 0, "Purge cache entries older than this before running; 0 disables")
	pf.Bool("cache.clear", false, "Clear the cache directory before running")
	pf.Bool("cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	pf.Bool("no-cache", false, "Disable the on-disk HTTP and response caches")
	pf.String("user-agent", app.DefaultUserAgent, "User-Agent for HTTP requests")
	pf.String("proxy", "", "HTTP(S) proxy URL (defaults to HTTPS_PROXY)")

	root.AddCommand(
		newScrapeCmd(),
		newDownloadCmd(),
		newDescribeCmd(),
		newModelsCmd(),
		newDrawCmd(),
	)
	return root
}

// withApp resolves configuration for cmd and runs fn with a ready App.
func withApp(cmd *cobra.Command, mutate func(*app.Config), fn func(context.Context, *app.App) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	if err := app.ValidateConfig(cfg, cmd.Name()); err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}
