package table

import (
	"iter"
	"maps"
	"slices"
)

// Record is one flat row: field name to scalar.
type Record map[string]Value

// Get returns the field value, Null when the field is absent.
func (r Record) Get(field string) Value {
	if v, ok := r[field]; ok {
		return v
	}
	return Null
}

// Clone copies the record.
func (r Record) Clone() Record { return maps.Clone(r) }

// Table is an ordered, immutable sequence of records sharing a superset
// schema. Transformations return new tables.
type Table struct {
	columns []string
	rows    []Record
}

// New assembles a table. The schema is the union of record fields in order of
// first appearance. Records are copied.
func New(records ...Record) *Table {
	return Collect(slices.Values(records))
}

// Collect drains seq into a table.
func Collect(seq iter.Seq[Record]) *Table {
	t := &Table{}
	seen := make(map[string]struct{})
	for rec := range seq {
		for _, f := range sortedFields(rec) {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			t.columns = append(t.columns, f)
		}
		t.rows = append(t.rows, rec.Clone())
	}
	return t
}

// WithColumns assembles a table whose schema starts with columns in the given
// order. Fields not listed are appended after them in first-appearance order.
func WithColumns(columns []string, seq iter.Seq[Record]) *Table {
	t := Collect(seq)
	if len(columns) == 0 {
		return t
	}
	ordered := uniqueColumns(columns)
	seen := make(map[string]struct{}, len(ordered))
	for _, c := range ordered {
		seen[c] = struct{}{}
	}
	for _, c := range t.columns {
		if _, ok := seen[c]; !ok {
			ordered = append(ordered, c)
		}
	}
	t.columns = ordered
	return t
}

// Empty returns a table with the given schema and no rows.
func Empty(columns ...string) *Table {
	return &Table{columns: uniqueColumns(columns)}
}

// uniqueColumns keeps the first occurrence of each name.
func uniqueColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// sortedFields gives a deterministic order for map keys. Extractors that care
// about column order go through WithColumns.
func sortedFields(r Record) []string {
	return slices.Sorted(maps.Keys(r))
}

// Columns returns the schema.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len is the row count.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether field is part of the schema.
func (t *Table) HasColumn(field string) bool { return slices.Contains(t.columns, field) }

// Row returns a copy of row i.
func (t *Table) Row(i int) Record { return t.rows[i].Clone() }

// Rows iterates over copies of the rows in order.
func (t *Table) Rows() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, r := range t.rows {
			if !yield(i, r.Clone()) {
				return
			}
		}
	}
}

// Column returns every value of field in row order.
func (t *Table) Column(field string) ([]Value, error) {
	if !t.HasColumn(field) {
		return nil, &SchemaError{Op: "column", Field: field}
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Get(field)
	}
	return out, nil
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{columns: slices.Clone(t.columns), rows: cloneRows(t.rows[:n])}
}

// Project restricts the table to fields, in the given order. Repeated names
// collapse to their first occurrence.
func (t *Table) Project(fields ...string) (*Table, error) {
	cols := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if !t.HasColumn(f) {
			return nil, &SchemaError{Op: "project", Field: f}
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		cols = append(cols, f)
	}
	rows := make([]Record, len(t.rows))
	for i, r := range t.rows {
		out := make(Record, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				out[c] = v
			}
		}
		rows[i] = out
	}
	return &Table{columns: cols, rows: rows}, nil
}

// DropEmptyColumns removes every field that is null in all records.
func (t *Table) DropEmptyColumns() *Table {
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		for _, r := range t.rows {
			if !r.Get(c).IsNull() {
				keep = append(keep, c)
				break
			}
		}
	}
	out, _ := t.Project(keep...)
	return out
}

// EmptyColumns lists the fields DropEmptyColumns would remove.
func (t *Table) EmptyColumns() []string {
	kept := t.DropEmptyColumns().columns
	var out []string
	for _, c := range t.columns {
		if !slices.Contains(kept, c) {
			out = append(out, c)
		}
	}
	return out
}

// Concat appends the rows of every table in order, renumbering from zero.
// The schema is the first-appearance union of all input schemas.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	seen := make(map[string]struct{})
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out.columns = append(out.columns, c)
		}
		out.rows = append(out.rows, cloneRows(t.rows)...)
	}
	return out
}

func cloneRows(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
