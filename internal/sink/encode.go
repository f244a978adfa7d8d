package sink

import (
	"encoding/csv"
	"encoding/json"
	"io"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/paperscrape/internal/extract"
)

// row fixes key order for json and yaml. ArxivLink is nil unless the
// column is enabled, so an enabled but empty link still prints as "".
type row struct {
	Title             string  `json:"title" yaml:"title"`
	Authors           string  `json:"authors" yaml:"authors"`
	PaperLink         string  `json:"paper_link" yaml:"paper_link"`
	SupplementaryLink string  `json:"supplementary_link" yaml:"supplementary_link"`
	ArxivLink         *string `json:"arxiv_link,omitempty" yaml:"arxiv_link,omitempty"`
}

func rows(records []extract.Record, opts Options) []row {
	out := make([]row, 0, len(records))
	for _, r := range records {
		rw := row{
			Title:             r.Title,
			Authors:           r.Authors,
			PaperLink:         r.PrimaryLink,
			SupplementaryLink: r.SupplementaryLink,
		}
		if opts.ExternalLink {
			link := r.ExternalLink
			rw.ArxivLink = &link
		}
		out = append(out, rw)
	}
	return out
}

func writeCSV(w io.Writer, records []extract.Record, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(opts.columns()); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(opts.values(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, records []extract.Record, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows(records, opts))
}

func writeYAML(w io.Writer, records []extract.Record, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows(records, opts)); err != nil {
		return err
	}
	return enc.Close()
}
