package table

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
)

func smallDataset() *source.Dataset {
	return &source.Dataset{
		Name: "people",
		Fields: []source.Field{
			{Name: "id", Kind: source.KindInt},
			{Name: "name", Kind: source.KindString},
		},
		Records: []source.Record{
			{ID: "1", Values: []grid.Value{int64(1), "ann"}},
			{ID: "22", Values: []grid.Value{int64(22), nil}},
		},
	}
}

// numbered is a dataset of n rows with ids "1".."n".
func numbered(n int) *source.Dataset {
	ds := &source.Dataset{
		Name: "numbers",
		Fields: []source.Field{
			{Name: "n", Kind: source.KindInt},
			{Name: "label", Kind: source.KindString},
		},
	}
	for i := 1; i <= n; i++ {
		ds.Records = append(ds.Records, source.Record{
			ID:     fmt.Sprint(i),
			Values: []grid.Value{int64(i), fmt.Sprintf("row %02d", i)},
		})
	}
	return ds
}

func TestPrintJSON(t *testing.T) {
	ds := smallDataset()
	ds.Fields = append(ds.Fields, source.Field{Name: "score", Kind: source.KindFloat})
	ds.Records[0].Values = append(ds.Records[0].Values, 1.5)
	ds.Records[1].Values = append(ds.Records[1].Values, math.NaN())

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, ds.Fields, ds.Records))
	assert.Equal(t, "[\n"+
		`  {"id": 1, "name": "ann", "score": 1.5},`+"\n"+
		`  {"id": 22, "name": null, "score": "NaN"}`+"\n"+
		"]\n", buf.String())
}

func TestPrintJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, smallDataset().Fields, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintRaw(t *testing.T) {
	ds := smallDataset()
	ds.Records[0].Values[1] = "a\tb\nc"

	var buf bytes.Buffer
	require.NoError(t, PrintRaw(&buf, ds.Records))
	assert.Equal(t, "1\ta\\tb\\nc\n22\t\n", buf.String())
}

func TestPrintPlainTable_Modes(t *testing.T) {
	ds := smallDataset()

	tests := []struct {
		mode PresentationMode
		want string
	}{
		{ModeStandard, "id  name\n──  ────\n 1  ann\n22  NULL\n\n(2 rows)\n"},
		{ModeSticky, "id  name\n──  ────\n 1  ann\n22  NULL\n\n(2 rows)\n"},
		{ModeCompact, "id name\n 1 ann\n22 NULL\n"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			PrintPlainTable(&buf, ds.Fields, ds.Records, tt.mode, "(2 rows)")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintPlainTable_WideRunes(t *testing.T) {
	fields := []source.Field{{Name: "city", Kind: source.KindString}, {Name: "n", Kind: source.KindInt}}
	rows := []source.Record{
		{ID: "a", Values: []grid.Value{"東京", int64(1)}},
		{ID: "b", Values: []grid.Value{"Oslo", int64(10)}},
	}

	var buf bytes.Buffer
	PrintPlainTable(&buf, fields, rows, ModeCompact, "")
	assert.Equal(t, "city n\n東京  1\nOslo 10\n", buf.String())
}

func TestPrintPlainTable_NoFields(t *testing.T) {
	var buf bytes.Buffer
	PrintPlainTable(&buf, nil, nil, ModeStandard, "")
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestPrint_UsesVisibleRows(t *testing.T) {
	ds := numbered(5)
	opts := DisplayOptions{
		Mode: ModeCompact,
		Sort: grid.SortState{ColumnKey: "n", Direction: grid.Descending},
		Page: grid.PageState{Size: 2},
	}
	g, err := NewGrid(ds, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	opts.Raw = true
	require.NoError(t, Print(&buf, ds.Fields, g, opts))
	assert.Equal(t, "5\trow 05\n4\trow 04\n", buf.String())
}

func TestFooterFor(t *testing.T) {
	ds := numbered(5)

	g, err := NewGrid(ds, DisplayOptions{})
	require.NoError(t, err)
	assert.Equal(t, "(5 rows)", footerFor(g))

	g, err = NewGrid(ds, DisplayOptions{Page: grid.PageState{Size: 2, Index: 1}})
	require.NoError(t, err)
	assert.Equal(t, "(rows 3-4 of 5, page 2/3)", footerFor(g))

	g.SetPage(2)
	assert.Equal(t, "(rows 5-5 of 5, page 3/3)", footerFor(g))

	g.SetFilter(grid.AnyColumnQuery[source.Record]("nothing"))
	assert.Equal(t, "(0 rows)", footerFor(g))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "NULL", cellText(nil))
	assert.Equal(t, "", cellText(""))
	assert.Equal(t, `a\nb`, cellText("a\nb"))
	assert.Equal(t, "3", cellText(int64(3)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "he...", Truncate("hello!", 5))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "東...", Truncate("東京都庁", 5))
	assert.Equal(t, "ab   ", PadOrTruncate("ab", 5))
}
