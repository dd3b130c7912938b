package present

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/webanalysis/internal/storage/memory"
	"github.com/JakeFAU/webanalysis/internal/table"
)

func stateTable() *table.Table {
	return table.New(
		table.Record{"state": table.String("1"), "category": table.String("network"), "priority": table.String("1 - Critical")},
		table.Record{"state": table.String("1"), "category": table.String(""), "priority": table.String("3 - Moderate")},
		table.Record{"state": table.String("6"), "category": table.String("network"), "priority": table.String("3 - Moderate")},
	)
}

func stateCounts(t *testing.T) table.Counts {
	t.Helper()
	counts, err := stateTable().Frequency("state", table.FrequencyOptions{})
	require.NoError(t, err)
	return counts
}

func priorityCrossTab(t *testing.T) table.CrossTab {
	t.Helper()
	ct, err := stateTable().CrossTab("category", "priority", table.CrossTabOptions{BlankRowLabel: table.OtherCategory})
	require.NoError(t, err)
	return ct
}

func TestLabelMap(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]string{"1": "NEW", "6.0": "Resolved", " 7": "Closed"} {
		got, ok := StatusLabels.Label(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got)
	}
	_, ok := StatusLabels.Label("4")
	assert.False(t, ok)
	_, ok = StatusLabels.Label("closed")
	assert.False(t, ok)
}

func TestStatusLabelsCoverEveryState(t *testing.T) {
	t.Parallel()

	var recs []table.Record
	for _, state := range []string{"7", "1", "3", "6", "2", "1"} {
		recs = append(recs, table.Record{"state": table.String(state)})
	}
	counts, err := table.New(recs...).Frequency("state", table.FrequencyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, counts.Total())

	var labels []string
	for _, e := range counts.Sorted() {
		label, ok := StatusLabels.Label(e.Key.Key())
		require.True(t, ok, "state %s has no label", e.Key)
		labels = append(labels, label)
	}
	assert.Equal(t, []string{"NEW", "In Progress", "ON HOLD", "Resolved", "Closed"}, labels)

	core, logs := observer.New(zap.WarnLevel)
	spec := ChartSpec{Name: "status", Labels: StatusLabels}
	for _, e := range counts.Sorted() {
		displayKey(zap.New(core), spec, e.Key)
	}
	assert.Zero(t, logs.Len())
}

func TestDisplayKeyLogsUnknownLabels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	spec := ChartSpec{Name: "status", Labels: StatusLabels}
	assert.Equal(t, "NEW", displayKey(zap.New(core), spec, table.String("1")))
	assert.Equal(t, "5", displayKey(zap.New(core), spec, table.Number(5)))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "5", logs.All()[0].ContextMap()["key"])

	assert.Equal(t, "null", displayKey(zap.NewNop(), ChartSpec{}, table.Null))
}

func TestConsoleCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf, nil)
	spec := ChartSpec{Name: "status", Title: "Incident Tickets state", XLabel: "state", Labels: StatusLabels}
	require.NoError(t, c.Counts(context.Background(), stateCounts(t), spec))

	out := buf.String()
	assert.Contains(t, out, "Incident Tickets state")
	assert.Contains(t, out, "NEW")
	assert.Contains(t, out, "Resolved")
	assert.Less(t, strings.Index(out, "NEW"), strings.Index(out, "Resolved"))
	assert.Contains(t, out, "╭")
}

func TestConsoleCrossTab(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf, nil).CrossTab(context.Background(), priorityCrossTab(t), ChartSpec{XLabel: "Root Cause"}))
	out := buf.String()
	// go-pretty upper-cases headers and footers.
	assert.Contains(t, out, "ROOT CAUSE")
	assert.Contains(t, out, "1 - CRITICAL")
	assert.Contains(t, out, "Other Category")
	assert.Contains(t, out, "TOTAL")
}

func TestConsoleTableAndDescribe(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf, nil)
	tbl := table.New(
		table.Record{"Flat": table.String("Flat Singel"), "Price": table.String("NoData")},
		table.Record{"Flat": table.String("Flat Overtoom"), "Price": table.Null},
	)
	require.NoError(t, c.Table(context.Background(), "Listings", tbl))
	require.NoError(t, c.Describe(context.Background(), "Summary", tbl.Describe()))

	out := buf.String()
	assert.Contains(t, out, "Flat Singel")
	assert.Contains(t, out, "NoData")
	assert.Contains(t, out, "2 ROWS")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "MISSING")
}

func TestHTMLWritesCharts(t *testing.T) {
	t.Parallel()

	store := memory.NewBlobStore()
	h := NewHTML(store, "run-1", nil)
	ctx := context.Background()

	require.NoError(t, h.Counts(ctx, stateCounts(t), ChartSpec{
		Name: "ticket-status", Title: "Incident Tickets state", Kind: KindBar,
		Labels: StatusLabels, RotateLabels: true,
	}))
	require.NoError(t, h.Counts(ctx, stateCounts(t), ChartSpec{
		Name: "ticket-contact", Title: "Distribution of Incident Contact Types", Kind: KindPie,
	}))
	require.NoError(t, h.CrossTab(ctx, priorityCrossTab(t), ChartSpec{
		Name: "ticket-priority", Title: "Distribution of Incident Priorities for Each Root Cause",
		XLabel: "Root Cause", YLabel: "Count", LegendTitle: "Priority",
	}))

	assert.Equal(t, []string{
		"run-1/ticket-contact.html",
		"run-1/ticket-priority.html",
		"run-1/ticket-status.html",
	}, store.Paths())

	status, ok := store.Get("run-1/ticket-status.html")
	require.True(t, ok)
	assert.Equal(t, htmlContentType, status.ContentType)
	body := string(status.Data)
	assert.Contains(t, body, "Incident Tickets state")
	assert.Contains(t, body, "NEW")
	assert.Contains(t, body, "Resolved")

	priority, _ := store.Get("run-1/ticket-priority.html")
	assert.Contains(t, string(priority.Data), "Other Category")
	assert.Contains(t, string(priority.Data), "Root Cause")
	assert.Contains(t, string(priority.Data), "Priority: 1 - Critical")
	assert.Contains(t, string(priority.Data), "Priority: 3 - Moderate")
}

func TestHTMLRejectsBadSpecs(t *testing.T) {
	t.Parallel()

	store := memory.NewBlobStore()
	h := NewHTML(store, "run", nil)
	err := h.Counts(context.Background(), stateCounts(t), ChartSpec{Kind: KindBar})
	assert.ErrorIs(t, err, ErrNoName)

	err = h.Counts(context.Background(), stateCounts(t), ChartSpec{Name: "x", Kind: "scatter"})
	assert.Error(t, err)
	assert.Empty(t, store.Paths())
}

type recordingPresenter struct {
	calls int
	err   error
}

func (r *recordingPresenter) Counts(context.Context, table.Counts, ChartSpec) error {
	r.calls++
	return r.err
}

func (r *recordingPresenter) CrossTab(context.Context, table.CrossTab, ChartSpec) error {
	r.calls++
	return r.err
}

func TestMultiStopsAtFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	first, failing, last := &recordingPresenter{}, &recordingPresenter{err: boom}, &recordingPresenter{}
	m := Multi{first, failing, last}

	err := m.Counts(context.Background(), stateCounts(t), ChartSpec{})
	assert.ErrorIs(t, err, boom)
	err = m.CrossTab(context.Background(), priorityCrossTab(t), ChartSpec{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, first.calls)
	assert.Equal(t, 2, failing.calls)
	assert.Zero(t, last.calls)

	assert.NoError(t, Multi{first}.Counts(context.Background(), stateCounts(t), ChartSpec{}))
	assert.NoError(t, Discard{}.Table(context.Background(), "", nil))
}
