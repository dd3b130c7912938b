package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyStateFixture(t *testing.T) {
	t.Parallel()

	tbl := New(
		Record{"state": Number(1)},
		Record{"state": Number(1)},
		Record{"state": Number(6)},
	)
	counts, err := tbl.Frequency("state", FrequencyOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 2, "6": 1}, counts.Map())
	assert.Equal(t, 3, counts.Total())
}

func TestFrequencySumsToRowCount(t *testing.T) {
	t.Parallel()

	tbl := incidents()
	for _, field := range tbl.Columns() {
		counts, err := tbl.Frequency(field, FrequencyOptions{})
		require.NoError(t, err)
		assert.Equal(t, tbl.Len(), counts.Total(), field)
	}
}

func TestFrequencyBlankLabel(t *testing.T) {
	t.Parallel()

	counts, err := incidents().Frequency("contact_type", FrequencyOptions{BlankLabel: NotFilled})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"email": 1, NotFilled: 3}, counts.Map())
}

func TestFrequencyBlankLabelKeepsWhitespace(t *testing.T) {
	t.Parallel()

	tbl := New(
		Record{"contact_type": String("")},
		Record{"contact_type": Null},
		Record{"contact_type": String("  ")},
	)
	counts, err := tbl.Frequency("contact_type", FrequencyOptions{BlankLabel: NotFilled})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{NotFilled: 2, "  ": 1}, counts.Map())

	assert.False(t, String(" ").IsBlank())
	assert.True(t, String("").IsBlank())
	assert.True(t, Null.IsBlank())
}

func TestFrequencySortedNaturalOrder(t *testing.T) {
	t.Parallel()

	tbl := New(
		Record{"state": String("10")},
		Record{"state": String("2")},
		Record{"state": String("7")},
		Record{"state": String("2")},
	)
	counts, err := tbl.Frequency("state", FrequencyOptions{})
	require.NoError(t, err)
	sorted := counts.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "2", sorted[0].Key.Key())
	assert.Equal(t, 2, sorted[0].Count)
	assert.Equal(t, "7", sorted[1].Key.Key())
	assert.Equal(t, "10", sorted[2].Key.Key())
}

func TestFrequencyUnknownField(t *testing.T) {
	t.Parallel()

	_, err := incidents().Frequency("missing", FrequencyOptions{})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestCrossTabIsDense(t *testing.T) {
	t.Parallel()

	tbl := incidents()
	ct, err := tbl.CrossTab("category", "priority", CrossTabOptions{BlankRowLabel: OtherCategory})
	require.NoError(t, err)

	rows, cols := ct.Rows(), ct.Cols()
	assert.Equal(t, []Value{String(OtherCategory), String("network"), String("software")}, rows)
	assert.Equal(t, []Value{String("1"), String("2"), String("3")}, cols)
	assert.Equal(t, len(rows)*len(cols), ct.Size())
	assert.Equal(t, tbl.Len(), ct.Total())

	for i := range rows {
		for j := range cols {
			assert.GreaterOrEqual(t, ct.At(i, j), 0)
		}
	}
	assert.Equal(t, 1, ct.Cell(String("network"), String("1")))
	assert.Equal(t, 1, ct.Cell(String("network"), String("3")))
	assert.Equal(t, 0, ct.Cell(String("network"), String("2")))
	assert.Equal(t, 1, ct.Cell(String(OtherCategory), String("3")))
	assert.Equal(t, 0, ct.Cell(String("unknown"), String("3")))
}

func TestCrossTabDistinctProduct(t *testing.T) {
	t.Parallel()

	tbl := New(
		Record{"r": String("a"), "c": Number(1)},
		Record{"r": String("b"), "c": Number(2)},
		Record{"r": String("c"), "c": Number(3)},
		Record{"r": String("a"), "c": Number(3)},
	)
	ct, err := tbl.CrossTab("r", "c", CrossTabOptions{})
	require.NoError(t, err)
	assert.Equal(t, 9, ct.Size())
	assert.Equal(t, 4, ct.Total())
}

func TestCrossTabUnknownField(t *testing.T) {
	t.Parallel()

	_, err := incidents().CrossTab("category", "nope", CrossTabOptions{})
	assert.ErrorIs(t, err, ErrSchema)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tbl := New(
		Record{"price": String("1500"), "name": String("a")},
		Record{"price": String("2500"), "name": String("b")},
		Record{"price": Null, "name": String("a")},
	)
	summary := tbl.Describe()
	require.Len(t, summary, 2)

	price := summary[1]
	assert.Equal(t, "price", price.Name)
	assert.Equal(t, 2, price.Count)
	assert.Equal(t, 1, price.Missing)
	assert.True(t, price.Numeric)
	assert.InDelta(t, 1500, price.Min, 1e-9)
	assert.InDelta(t, 2500, price.Max, 1e-9)
	assert.InDelta(t, 2000, price.Mean, 1e-9)

	name := summary[0]
	assert.False(t, name.Numeric)
	assert.Equal(t, 2, name.Distinct)
	assert.Equal(t, String("a"), name.Top)
	assert.Equal(t, 2, name.TopFreq)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"null first", Null, String("a"), -1},
		{"numeric strings", String("9"), String("10"), -1},
		{"numbers vs strings", Number(5), String("abc"), -1},
		{"text", String("b"), String("a"), 1},
		{"equal", Number(2), Number(2), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}
