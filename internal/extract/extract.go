// Package extract converts raw payloads (JSON, HTML and sitemap XML) into
// flat table records.
//
// Every Extractor parses its whole payload up front so malformed input is
// reported before any record is produced. The returned sequence is lazy and
// single-pass; re-reading a source means fetching it again.
package extract

import (
	"iter"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// Payload formats reported in ParseError.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatXML  = "xml"
	FormatText = "text"
)

// Extractor turns one payload into records.
type Extractor interface {
	Extract(payload []byte) (iter.Seq[table.Record], error)
}

func records(rs []table.Record) iter.Seq[table.Record] {
	return func(yield func(table.Record) bool) {
		for _, r := range rs {
			if !yield(r) {
				return
			}
		}
	}
}
