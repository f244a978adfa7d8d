// Package sink serializes paper records into output files.
package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/paperscrape/internal/extract"
)

// Format names an output encoding.
type Format string

const (
	CSV      Format = "csv"
	JSON     Format = "json"
	YAML     Format = "yaml"
	Markdown Format = "markdown"
	HTML     Format = "html"
	PDF      Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{CSV, JSON, YAML, Markdown, HTML, PDF}

// Options tune what is written.
type Options struct {
	// ExternalLink adds the arxiv_link column.
	ExternalLink bool
	// Title is used as the document heading by html and pdf output.
	Title string
}

func (o Options) columns() []string {
	cols := []string{"title", "authors", "paper_link", "supplementary_link"}
	if o.ExternalLink {
		cols = append(cols, "arxiv_link")
	}
	return cols
}

func (o Options) values(r extract.Record) []string {
	vals := []string{r.Title, r.Authors, r.PrimaryLink, r.SupplementaryLink}
	if o.ExternalLink {
		vals = append(vals, r.ExternalLink)
	}
	return vals
}

func (o Options) heading() string {
	if strings.TrimSpace(o.Title) != "" {
		return o.Title
	}
	return "Papers"
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "markdown", "md":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer output format from %q", path)
	}
	return ParseFormat(ext)
}

// Write encodes records to w. Zero records still produce a valid document.
func Write(w io.Writer, format Format, records []extract.Record, opts Options) error {
	switch format {
	case CSV:
		return writeCSV(w, records, opts)
	case JSON:
		return writeJSON(w, records, opts)
	case YAML:
		return writeYAML(w, records, opts)
	case Markdown:
		_, err := io.WriteString(w, markdownTable(records, opts, false))
		return err
	case HTML:
		return writeHTML(w, records, opts)
	case PDF:
		return writePDF(w, records, opts)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteFile writes records to path through a temporary file and a rename,
// so readers never observe a partially written file.
func WriteFile(path string, format Format, records []extract.Record, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := Write(tmp, format, records, opts); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
