package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// trailingAnnotation matches one bracketed suffix such as " [CVPR 2024]".
var trailingAnnotation = regexp.MustCompile(`\s*\[[^\[\]]*\]\s*$`)

// CleanTitle collapses whitespace, strips every trailing bracketed
// annotation and returns the NFC form. It is applied to all titles
// regardless of where the display text was found.
func CleanTitle(raw string) string {
	s := cleanText(raw)
	for {
		stripped := trailingAnnotation.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return strings.TrimSpace(s)
}

// cleanText trims, collapses whitespace runs to one space and normalizes
// to NFC so equal names compare equal byte for byte.
func cleanText(raw string) string {
	return norm.NFC.String(strings.Join(strings.Fields(raw), " "))
}

// ResolveLink resolves href against baseURL. It returns "" when href is
// empty, cannot be parsed or does not resolve to an absolute http(s) URL.
func ResolveLink(baseURL, href string) string {
	base, err := parseBase(baseURL)
	if err != nil {
		base = nil
	}
	return resolve(base, href)
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}
	if !u.IsAbs() || !isHTTPScheme(u) || u.Host == "" {
		return ""
	}
	return u.String()
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
