package extract

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// Sitemap record columns.
const (
	ColumnLoc             = "loc"
	ColumnLastModified    = "last modified"
	ColumnChangeFrequency = "Url_Change_frequency"
)

// SitemapColumns lists the columns of a sitemap record in order.
var SitemapColumns = []string{ColumnLoc, ColumnLastModified, ColumnChangeFrequency}

// Sitemap extracts one record per <url> entry of a sitemaps.org urlset.
// A sitemap index yields no records; see SitemapIndexLocs.
type Sitemap struct {
	// RawElements stores the serialized <lastmod> and <changefreq>
	// elements instead of their text.
	RawElements bool
}

// Extract implements Extractor.
func (s Sitemap) Extract(payload []byte) (iter.Seq[table.Record], error) {
	doc, root, err := parseSitemap(payload)
	if err != nil {
		return nil, err
	}
	if root.Data == "sitemapindex" {
		return records(nil), nil
	}

	urls := xmlquery.Find(doc, "//*[local-name()='url']")
	return func(yield func(table.Record) bool) {
		for _, u := range urls {
			loc := childElement(u, "loc")
			if loc == nil {
				continue
			}
			rec := table.Record{
				ColumnLoc:             table.String(strings.TrimSpace(loc.InnerText())),
				ColumnLastModified:    s.value(childElement(u, "lastmod")),
				ColumnChangeFrequency: s.value(childElement(u, "changefreq")),
			}
			if !yield(rec) {
				return
			}
		}
	}, nil
}

func (s Sitemap) value(n *xmlquery.Node) table.Value {
	if n == nil {
		return table.Null
	}
	if s.RawElements {
		return table.String(n.OutputXML(true))
	}
	return table.String(strings.TrimSpace(n.InnerText()))
}

// SitemapIndexLocs returns the child sitemap URLs of a <sitemapindex>
// document. A urlset yields nil.
func SitemapIndexLocs(payload []byte) ([]string, error) {
	doc, root, err := parseSitemap(payload)
	if err != nil {
		return nil, err
	}
	if root.Data != "sitemapindex" {
		return nil, nil
	}
	var locs []string
	for _, sm := range xmlquery.Find(doc, "//*[local-name()='sitemap']") {
		if loc := childElement(sm, "loc"); loc != nil {
			if text := strings.TrimSpace(loc.InnerText()); text != "" {
				locs = append(locs, text)
			}
		}
	}
	return locs, nil
}

func parseSitemap(payload []byte) (*xmlquery.Node, *xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, &ParseError{Format: FormatXML, Reason: "invalid document", Err: err}
	}
	root := rootElement(doc)
	if root == nil {
		return nil, nil, &ParseError{Format: FormatXML, Reason: "document has no root element"}
	}
	switch root.Data {
	case "urlset", "sitemapindex":
		return doc, root, nil
	default:
		return nil, nil, &ParseError{
			Format: FormatXML,
			Reason: fmt.Sprintf("unexpected root element <%s>", root.Data),
		}
	}
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

func childElement(parent *xmlquery.Node, name string) *xmlquery.Node {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode && n.Data == name {
			return n
		}
	}
	return nil
}
