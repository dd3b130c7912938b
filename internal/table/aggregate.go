package table

import (
	"maps"
	"slices"
)

// Sentinel labels substituted for blank values in aggregates.
const (
	NotFilled     = "Not filled"
	OtherCategory = "Other Category"
)

// FrequencyOptions tunes Frequency.
type FrequencyOptions struct {
	// BlankLabel replaces null and empty-string values when set.
	BlankLabel string
}

// Count is one entry of a frequency result.
type Count struct {
	Key   Value
	Count int
}

// Counts maps each distinct value of a field to its number of occurrences.
type Counts struct {
	Field  string
	counts map[Value]int
}

// Frequency counts occurrences of each distinct value of field. Counts always
// sum to the table's row count.
func (t *Table) Frequency(field string, opts FrequencyOptions) (Counts, error) {
	if !t.HasColumn(field) {
		return Counts{}, &SchemaError{Op: "frequency", Field: field}
	}
	c := Counts{Field: field, counts: make(map[Value]int)}
	for _, r := range t.rows {
		v := r.Get(field)
		if opts.BlankLabel != "" && v.IsBlank() {
			v = String(opts.BlankLabel)
		}
		c.counts[v]++
	}
	return c, nil
}

// Get returns the count for key.
func (c Counts) Get(key Value) int { return c.counts[key] }

// Len is the number of distinct keys.
func (c Counts) Len() int { return len(c.counts) }

// Total sums every count.
func (c Counts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Map returns a copy keyed by Value.Key().
func (c Counts) Map() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, n := range c.counts {
		out[k.Key()] += n
	}
	return out
}

// Sorted lists entries by natural key order.
func (c Counts) Sorted() []Count {
	keys := slices.SortedFunc(maps.Keys(c.counts), Compare)
	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i] = Count{Key: k, Count: c.counts[k]}
	}
	return out
}

// CrossTabOptions tunes CrossTab.
type CrossTabOptions struct {
	// BlankRowLabel replaces null and empty-string row values when set.
	BlankRowLabel string
}

// CrossTab is a dense two-dimensional count of records per (row, col) pair.
type CrossTab struct {
	RowField string
	ColField string
	rows     []Value
	cols     []Value
	cells    [][]int
}

// CrossTab counts records per pair of rowField and colField values. Every
// combination of observed row and column values is present, zero-filled.
func (t *Table) CrossTab(rowField, colField string, opts CrossTabOptions) (CrossTab, error) {
	for _, f := range []string{rowField, colField} {
		if !t.HasColumn(f) {
			return CrossTab{}, &SchemaError{Op: "crosstab", Field: f}
		}
	}
	type pair struct{ r, c Value }
	pairs := make(map[pair]int)
	rowSet := make(map[Value]struct{})
	colSet := make(map[Value]struct{})
	for _, rec := range t.rows {
		rv := rec.Get(rowField)
		if opts.BlankRowLabel != "" && rv.IsBlank() {
			rv = String(opts.BlankRowLabel)
		}
		cv := rec.Get(colField)
		rowSet[rv] = struct{}{}
		colSet[cv] = struct{}{}
		pairs[pair{rv, cv}]++
	}
	ct := CrossTab{
		RowField: rowField,
		ColField: colField,
		rows:     slices.SortedFunc(maps.Keys(rowSet), Compare),
		cols:     slices.SortedFunc(maps.Keys(colSet), Compare),
	}
	ct.cells = make([][]int, len(ct.rows))
	for i, rv := range ct.rows {
		ct.cells[i] = make([]int, len(ct.cols))
		for j, cv := range ct.cols {
			ct.cells[i][j] = pairs[pair{rv, cv}]
		}
	}
	return ct, nil
}

// Rows returns the row labels in natural order.
func (ct CrossTab) Rows() []Value { return slices.Clone(ct.rows) }

// Cols returns the column labels in natural order.
func (ct CrossTab) Cols() []Value { return slices.Clone(ct.cols) }

// At returns the count at row index i, column index j.
func (ct CrossTab) At(i, j int) int { return ct.cells[i][j] }

// Cell returns the count for a (row, col) pair, zero when either is unknown.
func (ct CrossTab) Cell(row, col Value) int {
	i := slices.Index(ct.rows, row)
	j := slices.Index(ct.cols, col)
	if i < 0 || j < 0 {
		return 0
	}
	return ct.cells[i][j]
}

// Size is the number of cells, rows times cols.
func (ct CrossTab) Size() int { return len(ct.rows) * len(ct.cols) }

// Total sums every cell.
func (ct CrossTab) Total() int {
	total := 0
	for _, row := range ct.cells {
		for _, n := range row {
			total += n
		}
	}
	return total
}
