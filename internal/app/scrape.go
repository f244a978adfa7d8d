package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/paperscrape/internal/extract"
	"github.com/hyperifyio/paperscrape/internal/fetch"
	"github.com/hyperifyio/paperscrape/internal/sink"
)

// ScrapeReport summarizes a scrape run.
type ScrapeReport struct {
	Source  string
	Layout  string
	Records []extract.Record
	Outputs []string
}

// ConferenceURL is the CVF listing page holding every paper of conf.
func ConferenceURL(conf string) string {
	return "https://openaccess.thecvf.com/" + url.PathEscape(strings.TrimSpace(conf)) + "?day=all"
}

// LoadDocument returns the listing document at source. http(s) sources go
// through the fetch client and are transcoded to UTF-8; anything else is
// read as a local file.
func (a *App) LoadDocument(ctx context.Context, source string) ([]byte, error) {
	if isRemote(source) {
		body, ct, err := a.fetcher.Get(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		return fetch.DecodeHTML(body, ct)
	}
	b, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return b, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Scrape loads the listing, extracts records and writes every output.
func (a *App) Scrape(ctx context.Context) (ScrapeReport, error) {
	source := strings.TrimSpace(a.cfg.Source)
	if source == "" {
		if strings.TrimSpace(a.cfg.Conference) == "" {
			return ScrapeReport{}, ErrNoSource
		}
		source = ConferenceURL(a.cfg.Conference)
	}
	layout, ok := extract.Lookup(a.cfg.Layout)
	if !ok {
		return ScrapeReport{}, fmt.Errorf("unknown layout %q", a.cfg.Layout)
	}
	if a.cfg.BaseURL != "" {
		layout.BaseURL = a.cfg.BaseURL
	}
	x, err := extract.New(layout)
	if err != nil {
		return ScrapeReport{}, err
	}

	log.Info().Str("source", source).Str("layout", layout.Name).Msg("loading listing")
	doc, err := a.LoadDocument(ctx, source)
	if err != nil {
		return ScrapeReport{}, err
	}
	records, err := x.Extract(doc)
	if err != nil {
		return ScrapeReport{}, fmt.Errorf("extract %s: %w", source, err)
	}
	if len(records) == 0 {
		log.Warn().Str("source", source).Msg("no papers found")
	} else {
		log.Info().Int("papers", len(records)).Msg("extracted papers")
	}

	opts := sink.Options{ExternalLink: a.cfg.ExternalLink, Title: a.title(source)}
	for _, out := range a.cfg.Outputs {
		format, err := sink.FormatFromPath(out)
		if err != nil {
			return ScrapeReport{}, err
		}
		if err := sink.WriteFile(out, format, records, opts); err != nil {
			return ScrapeReport{}, fmt.Errorf("write %s: %w", out, err)
		}
		log.Info().Str("out", out).Str("format", string(format)).Int("papers", len(records)).Msg("wrote output")
	}

	report := ScrapeReport{Source: source, Layout: layout.Name, Records: records, Outputs: a.cfg.Outputs}
	if a.cfg.Manifest != "" {
		if err := writeManifest(a.cfg.Manifest, report, doc); err != nil {
			return report, fmt.Errorf("write manifest: %w", err)
		}
		log.Debug().Str("manifest", a.cfg.Manifest).Msg("wrote manifest")
	}
	return report, nil
}

func (a *App) title(source string) string {
	if a.cfg.Source == "" && a.cfg.Conference != "" {
		return a.cfg.Conference + " papers"
	}
	return source
}
