// Package sitemap renders the XML sitemap of the published content.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/content"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

const (
	namespace      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.sitemaps.org/schemas/sitemap/0.9 http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd"
)

// Options tunes Generate.
type Options struct {
	// IncludeListings adds each type's listing page URL before its items.
	IncludeListings bool
}

// Generate writes a <urlset> with one <url> per non-draft item, in collection
// order. Every entry of missing becomes a comment naming the unreadable type;
// comments come before the URLs.
func Generate(collections []*content.Collection, missing []string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")

	start := xml.StartElement{
		Name: xml.Name{Local: "urlset"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: namespace},
			{Name: xml.Name{Local: "xmlns:xhtml"}, Value: xhtmlNamespace},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: xsiNamespace},
			{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: schemaLocation},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, wrap(err)
	}
	for _, t := range missing {
		if err := enc.EncodeToken(xml.Comment(" Unable to read directory " + commentSafe(t) + " ")); err != nil {
			return nil, wrap(err)
		}
	}
	for _, c := range collections {
		if opts.IncludeListings {
			if err := writeURL(enc, c.URL()); err != nil {
				return nil, err
			}
		}
		for _, it := range c.Published() {
			if err := writeURL(enc, it.URL()); err != nil {
				return nil, err
			}
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, wrap(err)
	}
	if err := enc.Flush(); err != nil {
		return nil, wrap(err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type urlEntry struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
}

func writeURL(enc *xml.Encoder, loc string) error {
	if err := enc.Encode(urlEntry{Loc: loc}); err != nil {
		return wrap(err)
	}
	return nil
}

func wrap(err error) error {
	return errors.WrapError(err, errors.CategoryRender, "failed to encode sitemap").Build()
}

// commentSafe breaks up "--", which XML forbids inside comments.
func commentSafe(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	return s
}
