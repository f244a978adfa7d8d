package extract

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// checkWellFormed rejects input that is not markup at all: empty text,
// binary data, a document cut off inside a tag, or text without a single
// element.
func checkWellFormed(doc []byte) error {
	b := bytes.TrimSpace(bytes.TrimPrefix(doc, utf8BOM))
	if len(b) == 0 {
		return malformed("empty document", nil)
	}
	if !utf8.Valid(b) {
		return malformed("document is not valid UTF-8", nil)
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return malformed("document contains NUL bytes", nil)
	}
	if endsInsideTag(b) {
		return malformed("document ends inside a tag", nil)
	}
	z := html.NewTokenizer(bytes.NewReader(b))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return malformed("document has no markup elements", nil)
			}
			return malformed("tokenize", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			return nil
		}
	}
}

func endsInsideTag(b []byte) bool {
	lt := bytes.LastIndexByte(b, '<')
	if lt < 0 || bytes.IndexByte(b[lt:], '>') >= 0 {
		return false
	}
	if lt == len(b)-1 {
		return true
	}
	c := b[lt+1]
	return c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
