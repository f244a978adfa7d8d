package extract

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
)

// Field names the record field a classified hyperlink is stored in.
type Field int

const (
	FieldPrimary Field = iota + 1
	FieldSupplementary
	FieldExternal
)

func (f Field) String() string {
	switch f {
	case FieldPrimary:
		return "primary"
	case FieldSupplementary:
		return "supplementary"
	case FieldExternal:
		return "external"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// MarshalText lets layouts round-trip through YAML and JSON config files.
func (f Field) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText accepts both the field names and the output column names.
func (f *Field) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "primary", "paper_link", "pdf":
		*f = FieldPrimary
	case "supplementary", "supplementary_link", "supp":
		*f = FieldSupplementary
	case "external", "arxiv_link", "arxiv":
		*f = FieldExternal
	default:
		return fmt.Errorf("unknown link field %q", string(b))
	}
	return nil
}

// BlockKind says how a detail block is read.
type BlockKind string

const (
	BlockAuthors BlockKind = "authors"
	BlockLinks   BlockKind = "links"
	// BlockSkip consumes a detail block without reading it.
	BlockSkip BlockKind = "skip"
)

// BlockRule describes the n-th detail block following a title marker.
type BlockRule struct {
	Kind BlockKind `yaml:"kind" json:"kind"`
	// Selector matches author names (authors) or hyperlinks (links) inside
	// the block.
	Selector string `yaml:"selector" json:"selector"`
}

// LabelRule maps a hyperlink label to a record field. Matching is a
// case-insensitive substring test on the link's visible text.
type LabelRule struct {
	Label string `yaml:"label" json:"label"`
	Field Field  `yaml:"field" json:"field"`
}

// Layout is the declarative description of one listing site. Supporting a
// new site means adding a Layout, not new extraction code.
type Layout struct {
	Name    string `yaml:"name" json:"name"`
	BaseURL string `yaml:"baseURL" json:"baseURL"`
	// TitleSelector matches the title markers, in document order.
	TitleSelector string `yaml:"title" json:"title"`
	// DisplaySelector picks the element inside a marker holding the display
	// text. The marker's own text is used when it is empty or missing.
	DisplaySelector string `yaml:"display" json:"display"`
	// DetailSelector matches the sibling elements counted as detail blocks.
	DetailSelector string      `yaml:"detail" json:"detail"`
	Blocks         []BlockRule `yaml:"blocks" json:"blocks"`
	// Labels are tried in order; the first rule whose label occurs in the
	// link text classifies the link.
	Labels []LabelRule `yaml:"labels" json:"labels"`
}

// CVF describes the CVF open access listing pages
// (https://openaccess.thecvf.com/CVPR2024?day=all and siblings).
var CVF = Layout{
	Name:            "cvf",
	BaseURL:         "https://openaccess.thecvf.com",
	TitleSelector:   "dt.ptitle",
	DisplaySelector: "a",
	DetailSelector:  "dd",
	Blocks: []BlockRule{
		{Kind: BlockAuthors, Selector: "a"},
		{Kind: BlockLinks, Selector: "a"},
	},
	Labels: []LabelRule{
		{Label: "supp", Field: FieldSupplementary},
		{Label: "arxiv", Field: FieldExternal},
		{Label: "pdf", Field: FieldPrimary},
	},
}

// Validate checks that every selector compiles, the base URL is absolute
// http(s) and every rule is well formed.
func (l Layout) Validate() error {
	bad := func(field, reason string) error {
		return &LayoutError{Layout: l.Name, Field: field, Reason: reason}
	}
	if _, err := parseBase(l.BaseURL); err != nil {
		return bad("baseURL", err.Error())
	}
	selectors := []struct{ field, sel string }{
		{"title", l.TitleSelector},
		{"display", l.DisplaySelector},
		{"detail", l.DetailSelector},
	}
	for i, b := range l.Blocks {
		field := fmt.Sprintf("blocks[%d]", i)
		switch b.Kind {
		case BlockAuthors, BlockLinks:
			selectors = append(selectors, struct{ field, sel string }{field + ".selector", b.Selector})
		case BlockSkip:
		default:
			return bad(field+".kind", fmt.Sprintf("unknown block kind %q", b.Kind))
		}
	}
	for _, s := range selectors {
		if strings.TrimSpace(s.sel) == "" {
			if s.field == "display" {
				continue
			}
			return bad(s.field, "selector is required")
		}
		if _, err := cascadia.ParseGroup(s.sel); err != nil {
			return bad(s.field, err.Error())
		}
	}
	for i, r := range l.Labels {
		if strings.TrimSpace(r.Label) == "" {
			return bad(fmt.Sprintf("labels[%d].label", i), "label is required")
		}
		switch r.Field {
		case FieldPrimary, FieldSupplementary, FieldExternal:
		default:
			return bad(fmt.Sprintf("labels[%d].field", i), "unknown field")
		}
	}
	return nil
}

// HasField reports whether any label rule targets f.
func (l Layout) HasField(f Field) bool {
	for _, r := range l.Labels {
		if r.Field == f {
			return true
		}
	}
	return false
}

func parseBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !isHTTPScheme(u) || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute http(s): %q", raw)
	}
	return u, nil
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Layout{CVF.Name: CVF}
)

// Register validates l and adds it to the layout registry, replacing any
// layout with the same name.
func Register(l Layout) error {
	l.Name = strings.ToLower(strings.TrimSpace(l.Name))
	if l.Name == "" {
		return &LayoutError{Field: "name", Reason: "name is required"}
	}
	if err := l.Validate(); err != nil {
		return err
	}
	registryMu.Lock()
	registry[l.Name] = l
	registryMu.Unlock()
	return nil
}

// Lookup returns the registered layout with the given name.
func Lookup(name string) (Layout, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// Names lists registered layouts in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
