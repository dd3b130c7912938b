package extract

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// NoData is the default value of a field whose element is missing.
const NoData = "NoData"

// Class match modes accepted by NewClassMatcher.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
)

// ClassMatcher decides whether an element's class attribute matches.
type ClassMatcher interface {
	MatchClass(attr string) bool
}

type classFunc func(attr string) bool

func (f classFunc) MatchClass(attr string) bool { return f(attr) }

// ClassExact matches when the whole attribute equals class (ignoring
// whitespace differences) or when class is one of its tokens.
func ClassExact(class string) ClassMatcher {
	want := strings.Join(strings.Fields(class), " ")
	return classFunc(func(attr string) bool {
		tokens := strings.Fields(attr)
		return strings.Join(tokens, " ") == want || slices.Contains(tokens, want)
	})
}

// ClassContains matches when some class token contains sub.
func ClassContains(sub string) ClassMatcher {
	return ClassFunc(func(token string) bool {
		return strings.Contains(token, sub)
	})
}

// ClassFunc matches when fn accepts some class token.
func ClassFunc(fn func(token string) bool) ClassMatcher {
	return classFunc(func(attr string) bool {
		return slices.ContainsFunc(strings.Fields(attr), fn)
	})
}

// NewClassMatcher builds a matcher from its textual form. An empty class
// yields nil, which matches any element.
func NewClassMatcher(mode, class string) (ClassMatcher, error) {
	if strings.TrimSpace(class) == "" {
		return nil, nil
	}
	switch strings.ToLower(mode) {
	case "", MatchExact:
		return ClassExact(class), nil
	case MatchContains:
		return ClassContains(class), nil
	default:
		return nil, fmt.Errorf("unknown class match mode %q", mode)
	}
}

// Rule selects elements by tag name and class attribute.
type Rule struct {
	Tag   string
	Class ClassMatcher
}

func (r Rule) matches(s *goquery.Selection) bool {
	if r.Class == nil {
		return true
	}
	attr, ok := s.Attr("class")
	return ok && r.Class.MatchClass(attr)
}

func (r Rule) all(scope *goquery.Selection) *goquery.Selection {
	tag := r.Tag
	if tag == "" {
		tag = "*"
	}
	return scope.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return r.matches(s)
	})
}

func (r Rule) first(scope *goquery.Selection) *goquery.Selection {
	return r.all(scope).First()
}

// FieldRule locates one record field inside a container.
type FieldRule struct {
	Name string
	Rule Rule
	// Missing replaces an absent element. Zero means NoData.
	Missing table.Value
	// Optional fields become Null when absent, ignoring Missing.
	Optional bool
}

func (f FieldRule) missing() table.Value {
	switch {
	case f.Optional:
		return table.Null
	case f.Missing.IsNull():
		return table.String(NoData)
	default:
		return f.Missing
	}
}

// Markup extracts one record per container element of an HTML document.
type Markup struct {
	Container Rule
	Fields    []FieldRule
	// RequireContainers turns a document without any container into a
	// ParseError instead of an empty result.
	RequireContainers bool
}

// Columns returns the record field names in rule order.
func (m Markup) Columns() []string {
	cols := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// Extract implements Extractor.
func (m Markup) Extract(payload []byte) (iter.Seq[table.Record], error) {
	if m.Container.Tag == "" {
		return nil, fmt.Errorf("markup container rule has no tag")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &ParseError{Format: FormatHTML, Reason: "invalid document", Err: err}
	}
	containers := m.Container.all(doc.Selection)
	if containers.Length() == 0 && m.RequireContainers {
		return nil, &ParseError{
			Format: FormatHTML,
			Reason: fmt.Sprintf("no <%s> container elements found", m.Container.Tag),
		}
	}

	return func(yield func(table.Record) bool) {
		containers.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			return yield(m.record(s))
		})
	}, nil
}

func (m Markup) record(container *goquery.Selection) table.Record {
	rec := make(table.Record, len(m.Fields))
	for _, f := range m.Fields {
		el := f.Rule.first(container)
		if el.Length() == 0 {
			rec[f.Name] = f.missing()
			continue
		}
		rec[f.Name] = table.String(strings.TrimSpace(el.Text()))
	}
	return rec
}
