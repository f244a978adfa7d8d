package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/paperscrape/internal/cache"
	"github.com/hyperifyio/paperscrape/internal/fetch"
	"github.com/hyperifyio/paperscrape/internal/llm"
	"github.com/hyperifyio/paperscrape/internal/robots"
)

// ErrNoSource is returned by Scrape when neither a source nor a conference
// is configured.
var ErrNoSource = errors.New("no source document or conference given")

// App wires configuration to the fetch, extract, sink and client packages.
type App struct {
	cfg       Config
	http      *http.Client
	httpCache *cache.HTTPCache
	respCache *cache.ResponseCache
	robots    *robots.Manager
	fetcher   *fetch.Client
}

// New prepares caches and HTTP plumbing. It performs no network I/O.
func New(ctx context.Context, cfg Config) (*App, error) {
	hc, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, http: hc}

	if cfg.CacheDir != "" && !cfg.NoCache {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		a.respCache = &cache.ResponseCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	if cfg.RespectRobots {
		a.robots = &robots.Manager{
			HTTPClient: hc,
			Cache:      a.httpCache,
			UserAgent:  cfg.UserAgent,
		}
	}
	a.fetcher = a.newFetcher(fetch.IsHTML, a.httpCache)
	return a, nil
}

func (a *App) newFetcher(accept func(string) bool, c *cache.HTTPCache) *fetch.Client {
	f := &fetch.Client{
		HTTPClient:  a.http,
		UserAgent:   a.cfg.UserAgent,
		MaxAttempts: 3,
		Cache:       c,
		Accept:      accept,
	}
	if a.robots != nil {
		f.Robots = a.robots
	}
	return f
}

func (a *App) llmConfig() llm.Config {
	return llm.Config{
		APIKey:   a.cfg.LLMAPIKey,
		BaseURL:  a.cfg.LLMBaseURL,
		ProxyURL: a.cfg.ProxyURL,
	}
}

// Close releases resources held by the app.
func (a *App) Close() {
	a.http.CloseIdleConnections()
}
