// Package download fetches a list of image URLs into a directory.
package download

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each download.
const DefaultTimeout = 10 * time.Second

// Getter fetches a URL body. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Failure records one URL that could not be saved.
type Failure struct {
	URL string
	Err error
}

// Summary reports the outcome of a batch.
type Summary struct {
	Total     int
	Succeeded int
	// Failures are in input order.
	Failures []Failure
}

// Downloader saves each URL to Dir under FileName(url).
type Downloader struct {
	Client Getter
	Dir    string
	// Concurrency caps parallel downloads. Zero or less means 1.
	Concurrency int
	// Limiter, when set, paces request starts across workers.
	Limiter *rate.Limiter
	// Timeout bounds each URL. Zero means DefaultTimeout.
	Timeout time.Duration
	// OnSaved is called after each file is written. It may be called
	// concurrently.
	OnSaved func(rawURL, file string)
}

// UniqueURLs reads one URL per line. Blank lines and '#' comments are
// skipped; duplicates keep their first position.
func UniqueURLs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	seen := make(map[string]struct{})
	var urls []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return urls, nil
}

// FileName is the first 8 hex digits of md5(rawURL) plus the extension of
// the URL path, or ".jpg" when the path has none.
func FileName(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = path.Ext(path.Base(u.Path))
	}
	if ext == "" || ext == "." {
		ext = ".jpg"
	}
	return hex.EncodeToString(sum[:])[:8] + ext
}

// Run downloads urls. A failed URL is recorded and never stops the batch;
// the returned error is non-nil only when the directory cannot be created
// or ctx is cancelled.
func (d *Downloader) Run(ctx context.Context, urls []string) (Summary, error) {
	if d.Client == nil {
		return Summary{}, errors.New("download: no client configured")
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("mkdir %s: %w", d.Dir, err)
	}
	limit := d.Concurrency
	if limit <= 0 {
		limit = 1
	}
	errs := make([]error, len(urls))
	var mu sync.Mutex
	succeeded := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, u := range urls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := d.one(gctx, u); err != nil {
				errs[i] = err
				return nil
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{Total: len(urls), Succeeded: succeeded}
	for i, err := range errs {
		if err != nil {
			sum.Failures = append(sum.Failures, Failure{URL: urls[i], Err: err})
		}
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

func (d *Downloader) one(ctx context.Context, rawURL string) error {
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, _, err := d.Client.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	name := FileName(rawURL)
	if err := os.WriteFile(filepath.Join(d.Dir, name), body, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if d.OnSaved != nil {
		d.OnSaved(rawURL, name)
	}
	return nil
}
