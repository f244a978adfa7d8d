package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extractor turns a listing document into paper records following one
// Layout. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	layout Layout
	base   *url.URL
	labels []LabelRule
}

// New validates l and returns an Extractor for it.
func New(l Layout) (*Extractor, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	base, err := parseBase(l.BaseURL)
	if err != nil {
		return nil, &LayoutError{Layout: l.Name, Field: "baseURL", Reason: err.Error()}
	}
	labels := make([]LabelRule, len(l.Labels))
	for i, r := range l.Labels {
		labels[i] = LabelRule{Label: strings.ToLower(strings.TrimSpace(r.Label)), Field: r.Field}
	}
	return &Extractor{layout: l, base: base, labels: labels}, nil
}

// Extract parses doc with the CVF layout, resolving links against baseURL
// when it is non-empty.
func Extract(doc []byte, baseURL string) ([]Record, error) {
	l := CVF
	if strings.TrimSpace(baseURL) != "" {
		l.BaseURL = baseURL
	}
	x, err := New(l)
	if err != nil {
		return nil, err
	}
	return x.Extract(doc)
}

// Layout returns the layout the extractor was built from.
func (x *Extractor) Layout() Layout { return x.layout }

// Extract returns one record per title marker that has display text, in
// document order. Missing authors or links leave the field empty. Only a
// document that is not markup at all fails, with *MalformedInputError.
func (x *Extractor) Extract(doc []byte) ([]Record, error) {
	if err := checkWellFormed(doc); err != nil {
		return nil, err
	}
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, malformed("parse", err)
	}
	markers := goquery.NewDocumentFromNode(root).Find(x.layout.TitleSelector)
	records := make([]Record, 0, markers.Length())
	markers.Each(func(_ int, marker *goquery.Selection) {
		if rec, ok := x.entry(marker); ok {
			records = append(records, rec)
		}
	})
	return records, nil
}

func (x *Extractor) entry(marker *goquery.Selection) (Record, bool) {
	title := x.title(marker)
	if title == "" {
		return Record{}, false
	}
	rec := Record{Title: title}
	var authors []string
	for i, block := range x.detailBlocks(marker) {
		rule := x.layout.Blocks[i]
		switch rule.Kind {
		case BlockAuthors:
			block.Find(rule.Selector).Each(func(_ int, s *goquery.Selection) {
				if name := cleanText(s.Text()); name != "" {
					authors = append(authors, name)
				}
			})
		case BlockLinks:
			x.classifyLinks(block.Find(rule.Selector), &rec)
		}
	}
	rec.Authors = strings.Join(authors, ", ")
	return rec, true
}

func (x *Extractor) title(marker *goquery.Selection) string {
	if x.layout.DisplaySelector != "" {
		if t := CleanTitle(marker.Find(x.layout.DisplaySelector).First().Text()); t != "" {
			return t
		}
	}
	return CleanTitle(marker.Text())
}

// detailBlocks collects up to len(Blocks) detail siblings after marker. The
// walk ends at the next title marker so entries never share blocks.
func (x *Extractor) detailBlocks(marker *goquery.Selection) []*goquery.Selection {
	want := len(x.layout.Blocks)
	blocks := make([]*goquery.Selection, 0, want)
	for s := marker.Next(); s.Length() > 0 && len(blocks) < want; s = s.Next() {
		if s.Is(x.layout.TitleSelector) {
			break
		}
		if s.Is(x.layout.DetailSelector) {
			blocks = append(blocks, s)
		}
	}
	return blocks
}

// classifyLinks fills link fields from the first label rule each link
// matches. A field keeps the first resolvable link in document order.
func (x *Extractor) classifyLinks(links *goquery.Selection, rec *Record) {
	links.Each(func(_ int, a *goquery.Selection) {
		text := strings.ToLower(cleanText(a.Text()))
		if text == "" {
			return
		}
		for _, rule := range x.labels {
			if !strings.Contains(text, rule.Label) {
				continue
			}
			dst := rec.link(rule.Field)
			if dst != nil && *dst == "" {
				href, _ := a.Attr("href")
				*dst = resolve(x.base, href)
			}
			return
		}
	})
}
