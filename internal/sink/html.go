package sink

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hyperifyio/paperscrape/internal/extract"
)

var gfm = goldmark.New(goldmark.WithExtensions(extension.GFM))

// markdownTable renders records as a GFM pipe table. forHTML additionally
// escapes '<' so titles are never taken for inline markup.
func markdownTable(records []extract.Record, opts Options, forHTML bool) string {
	var b strings.Builder
	cols := opts.columns()
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, r := range records {
		vals := opts.values(r)
		for i, v := range vals {
			vals[i] = escapeCell(v, forHTML)
		}
		b.WriteString("| " + strings.Join(vals, " | ") + " |\n")
	}
	return b.String()
}

func escapeCell(s string, forHTML bool) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	if forHTML {
		s = strings.ReplaceAll(s, "<", "&lt;")
	}
	return s
}

func writeHTML(w io.Writer, records []extract.Record, opts Options) error {
	var body bytes.Buffer
	if err := gfm.Convert([]byte(markdownTable(records, opts, true)), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	title := html.EscapeString(opts.heading())
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n<h1>%s</h1>\n%s</body>\n</html>\n", title, title, body.String())
	return err
}
