package table

import "math"

// ColumnSummary is the per-column statistics block produced by Describe.
type ColumnSummary struct {
	Name     string
	Count    int // non-null values
	Missing  int
	Distinct int
	// Numeric is set when every non-null value looks like a number.
	Numeric bool
	Min     float64
	Max     float64
	Mean    float64
	// Top is the most frequent non-null value, ties broken by natural order.
	Top     Value
	TopFreq int
}

// Describe summarises every column. It is meant for console/debug output.
func (t *Table) Describe() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.columns))
	for _, c := range t.columns {
		out = append(out, t.describeColumn(c))
	}
	return out
}

func (t *Table) describeColumn(field string) ColumnSummary {
	s := ColumnSummary{Name: field, Min: math.Inf(1), Max: math.Inf(-1)}
	freq := make(map[Value]int)
	numeric := true
	sum := 0.0
	for _, r := range t.rows {
		v := r.Get(field)
		if v.IsNull() {
			s.Missing++
			continue
		}
		s.Count++
		freq[v]++
		f, ok := v.Float()
		if !ok {
			numeric = false
			continue
		}
		sum += f
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
	}
	s.Distinct = len(freq)
	for v, n := range freq {
		if n > s.TopFreq || (n == s.TopFreq && Compare(v, s.Top) < 0) {
			s.Top, s.TopFreq = v, n
		}
	}
	if numeric && s.Count > 0 {
		s.Numeric = true
		s.Mean = sum / float64(s.Count)
	} else {
		s.Min, s.Max = 0, 0
	}
	return s
}
