package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperifyio/paperscrape/internal/extract"
)

func TestComputeSHA256Hex(t *testing.T) {
	got := computeSHA256Hex([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestBuildManifest_RecordsSnapshot(t *testing.T) {
	r := ScrapeReport{
		Source:  "https://openaccess.thecvf.com/CVPR2024?day=all",
		Layout:  "cvf",
		Records: []extract.Record{{Title: "A"}, {Title: "B"}},
		Outputs: []string{"a.csv"},
	}
	m := buildManifest(r, []byte("<html></html>"))
	if m.Papers != 2 || m.Bytes != 13 || m.Layout != "cvf" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.SHA256 != computeSHA256Hex([]byte("<html></html>")) {
		t.Fatalf("digest mismatch: %s", m.SHA256)
	}
	r.Outputs[0] = "changed.csv"
	if m.Outputs[0] != "a.csv" {
		t.Fatalf("manifest must not alias report outputs")
	}
	if m.GeneratedAt.IsZero() || m.Version != BuildVersion {
		t.Fatalf("missing build metadata: %+v", m)
	}
}

func TestWriteManifest_IsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.manifest.json")
	if err := writeManifest(path, ScrapeReport{Source: "listing.html", Layout: "cvf"}, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, b)
	}
	for _, k := range []string{"source", "layout", "sha256", "bytes", "papers", "outputs", "generated_at"} {
		if _, ok := got[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
}
