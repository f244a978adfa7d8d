package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/paperscrape/internal/download"
	"github.com/hyperifyio/paperscrape/internal/fetch"
	"github.com/hyperifyio/paperscrape/internal/llm"
)

// Download fetches every unique URL listed in cfg.URLsFile into cfg.ImageDir.
func (a *App) Download(ctx context.Context) (download.Summary, error) {
	f, err := os.Open(a.cfg.URLsFile)
	if err != nil {
		return download.Summary{}, fmt.Errorf("open urls: %w", err)
	}
	urls, err := download.UniqueURLs(f)
	_ = f.Close()
	if err != nil {
		return download.Summary{}, err
	}
	log.Info().Int("urls", len(urls)).Str("dir", a.cfg.ImageDir).Msg("found unique URLs")

	d := &download.Downloader{
		// Images bypass the HTTP cache.
		Client:      a.newFetcher(fetch.AnyType, nil),
		Dir:         a.cfg.ImageDir,
		Concurrency: a.cfg.Concurrency,
		Timeout:     a.cfg.DownloadTimeout,
		OnSaved: func(u, file string) {
			log.Debug().Str("url", u).Str("file", file).Msg("downloaded")
		},
	}
	if a.cfg.RatePerSecond > 0 {
		d.Limiter = rate.NewLimiter(rate.Limit(a.cfg.RatePerSecond), 1)
	}
	sum, err := d.Run(ctx, urls)
	for _, fail := range sum.Failures {
		log.Warn().Err(fail.Err).Str("url", fail.URL).Msg("download failed")
	}
	log.Info().Int("succeeded", sum.Succeeded).Int("total", sum.Total).Msg("download complete")
	return sum, err
}

// Describe asks the vision model about the image at path.
func (a *App) Describe(ctx context.Context, path string) (string, error) {
	p, err := llm.NewOpenAIProvider(a.llmConfig())
	if err != nil {
		return "", err
	}
	d := &llm.Describer{
		Client:    p,
		Model:     a.cfg.LLMModel,
		Prompt:    a.cfg.Prompt,
		MaxTokens: a.cfg.MaxTokens,
		Cache:     a.respCache,
	}
	log.Debug().Str("image", path).Str("model", pick(a.cfg.LLMModel, llm.DefaultVisionModel)).Msg("describing image")
	return d.Describe(ctx, path)
}

// Models lists the models the API serves, grouped for display.
func (a *App) Models(ctx context.Context) (llm.ModelGroups, error) {
	p, err := llm.NewOpenAIProvider(a.llmConfig())
	if err != nil {
		return llm.ModelGroups{}, err
	}
	return llm.ListModels(ctx, p)
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
