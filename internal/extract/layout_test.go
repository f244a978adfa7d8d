package extract

import (
	"errors"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestLayoutValidate(t *testing.T) {
	if err := CVF.Validate(); err != nil {
		t.Fatalf("built-in layout invalid: %v", err)
	}
	cases := map[string]func(l *Layout){
		"relative base":  func(l *Layout) { l.BaseURL = "/content" },
		"ftp base":       func(l *Layout) { l.BaseURL = "ftp://example.org" },
		"missing title":  func(l *Layout) { l.TitleSelector = "" },
		"bad selector":   func(l *Layout) { l.DetailSelector = "dd[" },
		"unknown kind":   func(l *Layout) { l.Blocks = []BlockRule{{Kind: "abstract", Selector: "p"}} },
		"empty label":    func(l *Layout) { l.Labels = []LabelRule{{Label: " ", Field: FieldPrimary}} },
		"unset field":    func(l *Layout) { l.Labels = []LabelRule{{Label: "pdf"}} },
		"authors no sel": func(l *Layout) { l.Blocks = []BlockRule{{Kind: BlockAuthors}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			l := CVF
			l.Blocks = append([]BlockRule(nil), CVF.Blocks...)
			l.Labels = append([]LabelRule(nil), CVF.Labels...)
			mutate(&l)
			err := l.Validate()
			var le *LayoutError
			if !errors.As(err, &le) {
				t.Fatalf("expected LayoutError, got %v", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	if _, ok := Lookup("CVF"); !ok {
		t.Fatalf("expected built-in cvf layout")
	}
	l := CVF
	l.Name = "ECCV-Mirror"
	l.BaseURL = "https://www.ecva.net"
	if err := Register(l); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := Lookup("eccv-mirror")
	if !ok || got.BaseURL != "https://www.ecva.net" {
		t.Fatalf("lookup after register: %+v ok=%v", got, ok)
	}
	found := false
	for _, n := range Names() {
		if n == "eccv-mirror" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected eccv-mirror in %v", Names())
	}
	if err := Register(Layout{Name: "broken"}); err == nil {
		t.Fatalf("expected invalid layout to be rejected")
	}
	if _, ok := Lookup("broken"); ok {
		t.Fatalf("invalid layout must not be registered")
	}
}

func TestLayoutFromYAML(t *testing.T) {
	src := `
name: acl
baseURL: https://aclanthology.org
title: p.title
detail: span.d
blocks:
  - kind: authors
    selector: a
  - kind: links
    selector: a
labels:
  - label: pdf
    field: paper_link
  - label: code
    field: external
`
	var l Layout
	if err := yaml.Unmarshal([]byte(src), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if l.Labels[0].Field != FieldPrimary || l.Labels[1].Field != FieldExternal {
		t.Fatalf("unexpected label fields: %+v", l.Labels)
	}
	if !l.HasField(FieldExternal) || l.HasField(FieldSupplementary) {
		t.Fatalf("HasField mismatch for %+v", l.Labels)
	}
}

func TestResolveLink(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{cvfBase, "/content/CVPR2024/papers/x.pdf", "https://openaccess.thecvf.com/content/CVPR2024/papers/x.pdf"},
		{cvfBase, "content/x.pdf", "https://openaccess.thecvf.com/content/x.pdf"},
		{cvfBase, "https://arxiv.org/abs/1", "https://arxiv.org/abs/1"},
		{cvfBase, "  ", ""},
		{cvfBase, "mailto:someone@example.org", ""},
		{cvfBase, "javascript:void(0)", ""},
		{"", "/relative.pdf", ""},
		{"", "https://example.org/a.pdf", "https://example.org/a.pdf"},
	}
	for _, c := range cases {
		if got := ResolveLink(c.base, c.href); got != c.want {
			t.Errorf("ResolveLink(%q, %q) = %q, want %q", c.base, c.href, got, c.want)
		}
	}
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		"Example Paper [CVPR 2024] [pdf] [supp]": "Example Paper",
		"  Spaced\n\tOut  ":                      "Spaced Out",
		"[Oral] Keeps Leading Brackets":          "[Oral] Keeps Leading Brackets",
		"Inner [x] Bracket Stays":                "Inner [x] Bracket Stays",
		"[pdf]":                                  "",
		"Cafe\u0301 Society":                     "Caf\u00e9 Society",
	}
	for in, want := range cases {
		if got := CleanTitle(in); got != want {
			t.Errorf("CleanTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
