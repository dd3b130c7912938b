package extract

import (
	"github.com/temoto/robotstxt"
)

// SitemapURLs returns the Sitemap directives of a robots.txt document in
// document order.
func SitemapURLs(robots []byte) ([]string, error) {
	data, err := robotstxt.FromBytes(robots)
	if err != nil {
		return nil, &ParseError{Format: FormatText, Reason: "invalid robots.txt", Err: err}
	}
	return append([]string(nil), data.Sitemaps...), nil
}
