package sink

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/paperscrape/internal/extract"
)

// writePDF renders one block per paper: bold title, authors, then the
// links as clickable labels.
func writePDF(w io.Writer, records []extract.Record, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(opts.heading(), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(opts.heading()), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, r := range records {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 5, tr(r.Title), "", "L", false)
		if r.Authors != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 5, tr(r.Authors), "", "L", false)
		}
		pdf.SetFont("Helvetica", "", 10)
		links := []struct{ label, url string }{
			{"pdf", r.PrimaryLink},
			{"supp", r.SupplementaryLink},
		}
		if opts.ExternalLink {
			links = append(links, struct{ label, url string }{"arXiv", r.ExternalLink})
		}
		wrote := false
		for _, l := range links {
			if l.url == "" {
				continue
			}
			if wrote {
				pdf.Write(5, "  ")
			}
			pdf.WriteLinkString(5, "["+l.label+"]", l.url)
			wrote = true
		}
		if wrote {
			pdf.Ln(5)
		}
		pdf.Ln(3)
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
