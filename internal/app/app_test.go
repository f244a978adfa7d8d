package app

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperifyio/paperscrape/internal/extract"
)

const listingHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>CVPR 2024</title></head><body><dl>
<dt class="ptitle"><br><a href="/content/x.html">Example Paper</a></dt>
<dd><form class="authsearch"><a href="#">Jane Doe</a>,</form><form class="authsearch"><a href="#">John Smith</a></form></dd>
<dd>[<a href="/p/x.pdf">pdf</a>] [<a href="/p/x-supp.pdf">supp</a>] [<a href="http://arxiv.org/abs/2401.00001">arXiv</a>]</dd>
<dt class="ptitle"><br><a href="/content/y.html">Second Paper</a></dt>
<dd><form class="authsearch"><a href="#">Ana Lopez</a></form></dd>
<dd>[<a href="/p/y.pdf">pdf</a>]</dd>
</dl></body></html>`

func newTestApp(t *testing.T, mutate func(*Config)) *App {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	dir := t.TempDir()
	cfg.Outputs = []string{filepath.Join(dir, "papers.csv"), filepath.Join(dir, "papers.json")}
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestConferenceURL(t *testing.T) {
	if got := ConferenceURL("CVPR2024"); got != "https://openaccess.thecvf.com/CVPR2024?day=all" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := ConferenceURL(" WACV 2024 "); got != "https://openaccess.thecvf.com/WACV%202024?day=all" {
		t.Fatalf("unexpected escaping %q", got)
	}
}

func TestScrape_LocalFileWritesCSVAndJSON(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cvpr_2024.html")
	if err := os.WriteFile(src, []byte(listingHTML), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	var manifestPath string
	a := newTestApp(t, func(c *Config) {
		c.Source = src
		manifestPath = filepath.Join(filepath.Dir(c.Outputs[0]), "run.manifest.json")
		c.Manifest = manifestPath
	})
	report, err := a.Scrape(context.Background())
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}

	f, err := os.Open(a.cfg.Outputs[0])
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "Example Paper" || rows[1][2] != "https://openaccess.thecvf.com/p/x.pdf" {
		t.Fatalf("unexpected csv rows: %v", rows)
	}
	if len(rows[0]) != 4 {
		t.Fatalf("arxiv column must be off by default: %v", rows[0])
	}

	b, err := os.ReadFile(a.cfg.Outputs[1])
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded []map[string]string
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded[1]["authors"] != "Ana Lopez" || decoded[1]["supplementary_link"] != "" {
		t.Fatalf("unexpected json: %v", decoded)
	}

	mb, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m manifest
	if err := json.Unmarshal(mb, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.Papers != 2 || m.Layout != "cvf" || m.SHA256 != computeSHA256Hex([]byte(listingHTML)) {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestScrape_RemoteWithBaseURLAndArxiv(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Query().Get("day") != "all" {
			t.Errorf("missing day=all query: %s", r.URL)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	a := newTestApp(t, func(c *Config) {
		c.Source = srv.URL + "/CVPR2024?day=all"
		c.BaseURL = "https://mirror.example.org"
		c.ExternalLink = true
		c.Outputs = c.Outputs[:1]
	})
	report, err := a.Scrape(context.Background())
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if report.Records[0].PrimaryLink != "https://mirror.example.org/p/x.pdf" {
		t.Fatalf("base url override not applied: %+v", report.Records[0])
	}
	b, _ := os.ReadFile(a.cfg.Outputs[0])
	if !strings.HasPrefix(string(b), "title,authors,paper_link,supplementary_link,arxiv_link\n") {
		t.Fatalf("expected arxiv column, got %q", b)
	}
	if !strings.Contains(string(b), "http://arxiv.org/abs/2401.00001") {
		t.Fatalf("arxiv link missing: %q", b)
	}
}

func TestScrape_NoSource(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.Conference = "" })
	if _, err := a.Scrape(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestScrape_MalformedInput(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.html")
	if err := os.WriteFile(src, []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	a := newTestApp(t, func(c *Config) { c.Source = src })
	_, err := a.Scrape(context.Background())
	var me *extract.MalformedInputError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
	if _, statErr := os.Stat(a.cfg.Outputs[0]); !os.IsNotExist(statErr) {
		t.Fatalf("no output should be written for malformed input")
	}
}

func TestDownload_FromURLsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	urlsFile := filepath.Join(dir, "urls.txt")
	list := srv.URL + "/a.jpg\n" + srv.URL + "/gone.jpg\n" + srv.URL + "/a.jpg\n" + srv.URL + "/b\n"
	if err := os.WriteFile(urlsFile, []byte(list), 0o644); err != nil {
		t.Fatalf("write urls: %v", err)
	}
	a := newTestApp(t, func(c *Config) {
		c.URLsFile = urlsFile
		c.ImageDir = filepath.Join(dir, "images")
		c.RatePerSecond = 100
	})
	sum, err := a.Download(context.Background())
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if sum.Total != 3 || sum.Succeeded != 2 || len(sum.Failures) != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "images"))
	if len(entries) != 2 {
		t.Fatalf("expected 2 files, got %d", len(entries))
	}
}

func TestDescribeAndModels_AgainstStub(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"A red square."},"finish_reason":"stop"}]}`))
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o"},{"id":"tts-1"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	img := filepath.Join(t.TempDir(), "square.png")
	if err := os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nrest"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	a := newTestApp(t, func(c *Config) {
		c.LLMAPIKey = "sk-test"
		c.LLMBaseURL = srv.URL + "/v1"
	})
	text, err := a.Describe(context.Background(), img)
	if err != nil || text != "A red square." {
		t.Fatalf("describe: %q err=%v", text, err)
	}
	groups, err := a.Models(context.Background())
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(groups.GPT4) != 1 || groups.GPT4[0] != "gpt-4o" || len(groups.Other) != 1 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}
