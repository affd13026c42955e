package table

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(Ints("a", []int64{1, 2}), Strings("b", []string{"x", "y"}))
	require.NoError(t, err)

	_, err = New(Ints("", []int64{1}))
	assert.Error(t, err, "unnamed column")

	_, err = New(Ints("a", []int64{1}), Floats("a", []float64{1}))
	assert.Error(t, err, "duplicate column name")

	_, err = New(Ints("a", []int64{1, 2}), Strings("b", []string{"x"}))
	assert.Error(t, err, "ragged columns")
}

func TestEmptyTable(t *testing.T) {
	e := Empty()
	assert.True(t, e.IsEmpty())
	assert.Equal(t, 0, e.NumRows())
	assert.Equal(t, 0, e.NumCols())
}

func TestNormalizeColumnToOneColumnTable(t *testing.T) {
	col := Floats("score", []float64{0.5, 0.75})

	got, err := Normalize(col)
	require.NoError(t, err)
	require.Equal(t, 1, got.NumCols())
	assert.True(t, got.Col(0).Equal(col))
}

func TestNormalizeTablePassesThrough(t *testing.T) {
	orig, err := New(Ints("a", []int64{1}))
	require.NoError(t, err)

	got, err := Normalize(orig)
	require.NoError(t, err)
	assert.Same(t, orig, got)
}

func TestNormalizeNil(t *testing.T) {
	_, err := Normalize(nil)
	assert.Error(t, err)
}

func TestTableEqual(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 600000000, time.UTC)
	a, err := New(
		Ints("a", []int64{1, 2}),
		Times("t", []time.Time{ts, ts.Add(time.Hour)}),
	)
	require.NoError(t, err)

	b, err := New(
		Ints("a", []int64{1, 2}),
		Times("t", []time.Time{ts, ts.Add(time.Hour)}),
	)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	// Column order matters.
	c, err := New(
		Times("t", []time.Time{ts, ts.Add(time.Hour)}),
		Ints("a", []int64{1, 2}),
	)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	d, err := New(
		Ints("a", []int64{1, 3}),
		Times("t", []time.Time{ts, ts.Add(time.Hour)}),
	)
	require.NoError(t, err)
	assert.False(t, a.Equal(d))
}

func TestLookup(t *testing.T) {
	tbl, err := New(Ints("a", []int64{1}), Strings("b", []string{"x"}))
	require.NoError(t, err)

	col, ok := tbl.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "x", col.StringAt(0))

	_, ok = tbl.Lookup("missing")
	assert.False(t, ok)
}

func TestFromJSON(t *testing.T) {
	in := `{"id": [1, 2, 3], "score": [0.5, 1.5, 2.0], "name": ["a", "b", "c"], "ok": [true, false, true]}`

	tbl, err := FromJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 4, tbl.NumCols())
	assert.Equal(t, 3, tbl.NumRows())

	// Column order follows document order.
	assert.Equal(t, "id", tbl.Col(0).Name)
	assert.Equal(t, Int, tbl.Col(0).Kind())
	assert.Equal(t, int64(2), tbl.Col(0).IntAt(1))

	assert.Equal(t, Float, tbl.Col(1).Kind())
	assert.Equal(t, 1.5, tbl.Col(1).FloatAt(1))

	assert.Equal(t, String, tbl.Col(2).Kind())
	assert.Equal(t, Bool, tbl.Col(3).Kind())
}

func TestFromJSONMixedNumbersBecomeFloats(t *testing.T) {
	tbl, err := FromJSON(strings.NewReader(`{"v": [1, 2.5]}`))
	require.NoError(t, err)
	assert.Equal(t, Float, tbl.Col(0).Kind())
	assert.Equal(t, 1.0, tbl.Col(0).FloatAt(0))
}

func TestFromJSONRejectsMixedKinds(t *testing.T) {
	_, err := FromJSON(strings.NewReader(`{"v": [1, "two"]}`))
	assert.Error(t, err)

	_, err = FromJSON(strings.NewReader(`[1, 2]`))
	assert.Error(t, err)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	orig, err := New(
		Ints("id", []int64{1, 2}),
		Strings("name", []string{"a", "b"}),
		Bools("ok", []bool{true, false}),
	)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, orig.WriteJSON(&b))

	got, err := FromJSON(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.True(t, orig.Equal(got))
}
