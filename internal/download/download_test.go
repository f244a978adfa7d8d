package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/paperscrape/internal/fetch"
)

func TestUniqueURLs(t *testing.T) {
	in := strings.NewReader(`
https://example.org/a.png
# comment
  https://example.org/b.jpg

https://example.org/a.png
https://example.org/c
https://example.org/b.jpg
`)
	got, err := UniqueURLs(in)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.org/a.png",
		"https://example.org/b.jpg",
		"https://example.org/c",
	}, got)
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"https://example.org/a/cat.png": "8b6f792c.png",
		"https://example.org/img?id=7":  "bdcae3d5.jpg",
		"https://example.org/photos/":   "200137ba.jpg",
	}
	for in, want := range cases {
		assert.Equal(t, want, FileName(in), in)
	}
}

func newImageServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		case "/slow.png":
			time.Sleep(300 * time.Millisecond)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("slow"))
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("img:" + r.URL.Path))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRun_SavesFilesAndIsolatesFailures(t *testing.T) {
	srv, _ := newImageServer(t)
	dir := filepath.Join(t.TempDir(), "images")
	urls := []string{
		srv.URL + "/one.png",
		srv.URL + "/missing.png",
		srv.URL + "/two",
	}
	var saved int32
	d := &Downloader{
		Client:      &fetch.Client{Accept: fetch.AnyType, MaxAttempts: 1},
		Dir:         dir,
		Concurrency: 2,
		OnSaved:     func(string, string) { atomic.AddInt32(&saved, 1) },
	}
	sum, err := d.Run(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Succeeded)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, urls[1], sum.Failures[0].URL)
	assert.EqualValues(t, 2, atomic.LoadInt32(&saved))

	data, err := os.ReadFile(filepath.Join(dir, FileName(urls[0])))
	require.NoError(t, err)
	assert.Equal(t, "img:/one.png", string(data))
	assert.True(t, strings.HasSuffix(FileName(urls[2]), ".jpg"))
	_, err = os.Stat(filepath.Join(dir, FileName(urls[2])))
	assert.NoError(t, err)
}

func TestRun_TimeoutIsPerURL(t *testing.T) {
	srv, _ := newImageServer(t)
	d := &Downloader{
		Client:      &fetch.Client{Accept: fetch.AnyType, MaxAttempts: 1},
		Dir:         t.TempDir(),
		Concurrency: 2,
		Timeout:     50 * time.Millisecond,
	}
	sum, err := d.Run(context.Background(), []string{srv.URL + "/slow.png", srv.URL + "/fast.png"})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, srv.URL+"/slow.png", sum.Failures[0].URL)
}

func TestRun_RateLimited(t *testing.T) {
	srv, hits := newImageServer(t)
	d := &Downloader{
		Client:      &fetch.Client{Accept: fetch.AnyType, MaxAttempts: 1},
		Dir:         t.TempDir(),
		Concurrency: 4,
		Limiter:     rate.NewLimiter(rate.Every(40*time.Millisecond), 1),
	}
	urls := []string{srv.URL + "/1.png", srv.URL + "/2.png", srv.URL + "/3.png", srv.URL + "/4.png"}
	start := time.Now()
	sum, err := d.Run(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Succeeded)
	assert.EqualValues(t, 4, atomic.LoadInt32(hits))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRun_Cancelled(t *testing.T) {
	srv, _ := newImageServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &Downloader{Client: &fetch.Client{Accept: fetch.AnyType}, Dir: t.TempDir()}
	_, err := d.Run(ctx, []string{srv.URL + "/a.png"})
	assert.ErrorIs(t, err, context.Canceled)
}
