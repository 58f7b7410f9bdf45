// Package document exposes the small set of markup queries the website
// analyzer needs, independent of the HTML parser behind them.
package document

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// AttrValue is one element's attribute lookup result.
type AttrValue struct {
	Value   string
	Present bool
}

// Document is a parsed page queried by CSS selector.
type Document interface {
	// Count returns the number of elements matching selector.
	Count(selector string) int
	// Attr returns the named attribute of the first element matching selector.
	Attr(selector, name string) (string, bool)
	// AttrAll returns the named attribute for every element matching selector.
	AttrAll(selector, name string) []AttrValue
	// Text returns the combined text content of all elements matching selector.
	Text(selector string) string
}

type goqueryDocument struct {
	doc *goquery.Document
}

// Parse reads HTML from r into a goquery-backed Document.
func Parse(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "document: parse html")
	}
	return &goqueryDocument{doc: doc}, nil
}

// ParseString parses an HTML string.
func ParseString(html string) (Document, error) {
	return Parse(strings.NewReader(html))
}

func (d *goqueryDocument) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

func (d *goqueryDocument) Attr(selector, name string) (string, bool) {
	return d.doc.Find(selector).First().Attr(name)
}

func (d *goqueryDocument) AttrAll(selector, name string) []AttrValue {
	sel := d.doc.Find(selector)
	out := make([]AttrValue, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		v, ok := s.Attr(name)
		out = append(out, AttrValue{Value: v, Present: ok})
	})
	return out
}

func (d *goqueryDocument) Text(selector string) string {
	return d.doc.Find(selector).Text()
}
