// Package table holds the record/table data model shared by every pipeline
// together with the shaping operations (projection, frequency counts, cross
// tabulations, column statistics) computed over it.
package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which member of the Value sum is populated.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a nullable scalar cell.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

// Null is the absent value.
var Null = Value{}

// String wraps s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number wraps n.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which member is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBlank reports whether v is null or the empty string. Whitespace-only
// strings are values.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	default:
		return false
	}
}

// Str returns the string member and whether v is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Float returns v as a float. Strings that look numeric convert too.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Key is the textual form used for grouping and display.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

func (v Value) String() string { return v.Key() }

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool { return v == o }

// Compare orders values naturally: nulls first, then numerically when both
// sides are numeric-looking, otherwise lexicographically by Key.
func Compare(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	af, aok := a.Float()
	bf, bok := b.Float()
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return strings.Compare(a.Key(), b.Key())
	}
	if aok != bok {
		// numbers sort ahead of text
		if aok {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Key(), b.Key())
}
