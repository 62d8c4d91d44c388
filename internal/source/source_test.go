package source

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/util"
)

func TestInferValue(t *testing.T) {
	tests := []struct {
		in   string
		want grid.Value
	}{
		{"", nil},
		{"   ", nil},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.5", 3.5},
		{"1e3", 1000.0},
		{"true", true},
		{"FALSE", false},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:20:30Z", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"NaN", "NaN"},
		{"inf", "inf"},
		{"hello", "hello"},
		{"2024-13-45", "2024-13-45"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, InferValue(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, util.ErrUnknownFormat)
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{
		"a.csv":        FormatCSV,
		"b.TSV":        FormatTSV,
		"dir/c.json":   FormatJSON,
		"d.yml":        FormatYAML,
		"e.yaml":       FormatYAML,
		"g.jsonl":      FormatJSON,
		"f.unknownext": FormatAuto,
	} {
		got, _ := DetectFormat(path)
		assert.Equal(t, want, got, path)
	}
}

func TestParseCSV(t *testing.T) {
	data := "\ufeffid,name,score,active\n1,Ada,9.5,true\n2,Linus,,false\n\n3,Grace,7\n"
	ds, err := Parse("people.csv", []byte(data), Options{Format: FormatCSV, IDColumn: "id"})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score", "active"}, ds.FieldNames())
	require.Len(t, ds.Records, 3)

	assert.Equal(t, "1", ds.Records[0].ID)
	assert.Equal(t, []grid.Value{int64(1), "Ada", 9.5, true}, ds.Records[0].Values)
	assert.Nil(t, ds.Records[1].Value(2), "empty cell is nil")
	assert.Equal(t, []grid.Value{int64(3), "Grace", int64(7), nil}, ds.Records[2].Values, "short rows are padded")

	assert.Equal(t, KindInt, ds.Fields[0].Kind)
	assert.Equal(t, KindString, ds.Fields[1].Kind)
	assert.Equal(t, KindFloat, ds.Fields[2].Kind, "int and float widen to float")
	assert.Equal(t, KindBool, ds.Fields[3].Kind)
}

func TestParseCSV_CustomDelimiterAndLatin1(t *testing.T) {
	data := []byte("city;n\nM\xfcnchen;1\n")
	ds, err := Parse("cities.csv", data, Options{Format: FormatCSV, Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "München", ds.Records[0].Values[0])
}

func TestParseTSV_GeneratedIDs(t *testing.T) {
	data := []byte("a\tb\n1\t2\n3\t4\n1\t2\n")
	ds, err := Parse("x.tsv", data, Options{Format: FormatTSV})
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)

	ids := []string{ds.Records[0].ID, ds.Records[1].ID, ds.Records[2].ID}
	assert.Len(t, ids[0], contentIDLen)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, ids[0]+"~2", ids[2], "a repeated row gets an occurrence suffix")

	again, err := Parse("x.tsv", data, Options{Format: FormatTSV})
	require.NoError(t, err)
	assert.Equal(t, ids, []string{again.Records[0].ID, again.Records[1].ID, again.Records[2].ID})
}

func TestParseCSV_GeneratedIDsFollowContent(t *testing.T) {
	before, err := Parse("p.csv", []byte("name,age\nada,36\nbob,41\n"), Options{Format: FormatCSV})
	require.NoError(t, err)
	after, err := Parse("p.csv", []byte("name,age\ncy,7\nada,36\nbob,42\n"), Options{Format: FormatCSV})
	require.NoError(t, err)

	assert.Equal(t, before.Records[0].ID, after.Records[1].ID, "unchanged row keeps its id after an insert above it")
	assert.NotEqual(t, before.Records[1].ID, after.Records[2].ID, "an edited row is a new row")
}

func TestParseCSV_Errors(t *testing.T) {
	_, err := Parse("empty.csv", nil, Options{Format: FormatCSV})
	assert.ErrorIs(t, err, util.ErrNoColumns)

	_, err = Parse("x.csv", []byte("a,b\n1,2\n"), Options{Format: FormatCSV, IDColumn: "missing"})
	assert.ErrorIs(t, err, util.ErrUnknownColumn)
}

func TestParseJSON_ArrayKeepsKeyOrder(t *testing.T) {
	data := `[
		{"zeta": 1, "alpha": "x", "nested": {"k": [1, 2]}},
		{"alpha": "y", "beta": 2.25, "zeta": null}
	]`
	ds, err := Parse("rows.json", []byte(data), Options{Format: FormatJSON})
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "nested", "beta"}, ds.FieldNames())
	want := [][]grid.Value{
		{int64(1), "x", `{"k":[1,2]}`, nil},
		{nil, "y", nil, 2.25},
	}
	got := make([][]grid.Value, len(ds.Records))
	for i, r := range ds.Records {
		got[i] = r.Values
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON_Lines(t *testing.T) {
	data := "{\"id\":\"a\",\"n\":1}\n{\"id\":\"b\",\"n\":2}\n"
	ds, err := Parse("rows.jsonl", []byte(data), Options{Format: FormatJSON, IDColumn: "id"})
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "b", ds.Records[1].ID)
}

func TestParseJSON_RejectsScalars(t *testing.T) {
	_, err := Parse("bad.json", []byte(`[1, 2]`), Options{Format: FormatJSON})
	assert.ErrorIs(t, err, errNotObject)

	_, err = Parse("bad.json", []byte(`"text"`), Options{Format: FormatJSON})
	assert.ErrorIs(t, err, errNotObject)
}

func TestParseYAML(t *testing.T) {
	data := `
- name: apple
  price: 1.25
  stock: 10
  organic: true
  picked: 2024-05-01
- name: pear
  stock: ~
  tags: [green, sweet]
`
	ds, err := Parse("fruit.yaml", []byte(data), Options{Format: FormatYAML, IDColumn: "name"})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "price", "stock", "organic", "picked", "tags"}, ds.FieldNames())
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "apple", ds.Records[0].ID)
	assert.Equal(t, 1.25, ds.Records[0].Values[1])
	assert.Equal(t, int64(10), ds.Records[0].Values[2])
	assert.Equal(t, true, ds.Records[0].Values[3])
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ds.Records[0].Values[4])
	assert.Nil(t, ds.Records[1].Values[2])
	assert.Equal(t, `["green","sweet"]`, ds.Records[1].Values[5])
}

func TestParseYAML_RejectsMapping(t *testing.T) {
	_, err := Parse("bad.yaml", []byte("a: 1\n"), Options{Format: FormatYAML})
	assert.ErrorIs(t, err, errNotSequence)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("k,v\na,1\n"), 0644))

	l, err := NewFileLoader(path, Options{IDColumn: "k"})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, l.Options.Format)

	ds, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data.csv", ds.Name)
	require.Len(t, ds.Records, 1)

	require.NoError(t, os.WriteFile(path, []byte("k,v\na,1\nb,2\n"), 0644))
	ds, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Records, 2, "Load re-reads the file")

	_, err = NewFileLoader(filepath.Join(dir, "data.bin"), Options{})
	var ge *util.GridError
	require.True(t, errors.As(err, &ge))
	assert.ErrorIs(t, err, util.ErrUnknownFormat)
}

func TestCleanQuery(t *testing.T) {
	assert.Equal(t, "select 1", cleanQuery("  select 1 ;; \n"))
	assert.Equal(t, "SELECT count(*) FROM (select 1) AS datagrid_count", countQuery("select 1"))
	assert.Equal(t, "SELECT * FROM (q) AS datagrid_page LIMIT $1 OFFSET $2", pageQuery("q", "$1", "$2"))
}

func TestNormalizeSQLValue(t *testing.T) {
	tm := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want grid.Value
	}{
		{"nil", nil, nil},
		{"int32", int32(5), int64(5)},
		{"float32", float32(0.5), 0.5},
		{"small uint64", uint64(7), int64(7)},
		{"large uint64", uint64(math.MaxUint64), uint64(math.MaxUint64)},
		{"time", tm, tm},
		{"text bytes", []byte("hello"), "hello"},
		{"binary bytes", []byte{0x00, 0xff}, `\x00ff`},
		{"uuid", [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 1, 2, 3, 4, 5, 6, 7, 8}, "12345678-9abc-def0-0102-030405060708"},
		{"json", map[string]any{"a": 1}, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeSQLValue(tt.in))
		})
	}
}

func TestOpenSQL_UnsupportedDSN(t *testing.T) {
	_, err := OpenSQL(context.Background(), "mysql://localhost/db", "select 1", Options{})
	assert.ErrorIs(t, err, util.ErrUnsupportedDSN)
}

func TestSQLite_LoadCountPage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	seedItems(t, path)

	src, err := OpenSQL(ctx, "sqlite://"+path, "SELECT id, name, price FROM items ORDER BY id;", Options{IDColumn: "id"})
	require.NoError(t, err)
	defer src.Close()

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "price"}, ds.FieldNames())
	require.Len(t, ds.Records, 5)
	assert.Equal(t, []grid.Value{int64(1), "a", 0.5}, ds.Records[0].Values)
	assert.Equal(t, "1", ds.Records[0].ID)

	n, err := src.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	page, err := src.Page(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "3", page.Records[0].ID)
	assert.Equal(t, "4", page.Records[1].ID)
}

func seedItems(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, price REAL)`)
	require.NoError(t, err)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		_, err = db.Exec(`INSERT INTO items (id, name, price) VALUES (?, ?, ?)`, i+1, name, float64(i)+0.5)
		require.NoError(t, err)
	}
}

func countItems(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestSQLite_RefusesWritesBehindCTE(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	seedItems(t, path)

	src, err := OpenSQL(ctx, "sqlite://"+path, "WITH doomed AS (SELECT 1) DELETE FROM items", Options{})
	require.NoError(t, err)
	_, err = src.Load(ctx)
	assert.Error(t, err)
	require.NoError(t, src.Close())

	assert.Equal(t, 5, countItems(t, path))
}

func TestQueryOnlyDSN(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?_pragma=query_only(1)", queryOnlyDSN("/tmp/a.db"))
	assert.Equal(t, "file:a.db?mode=ro&_pragma=query_only(1)", queryOnlyDSN("file:a.db?mode=ro"))
}

// Runs against a real server when DATAGRID_TEST_POSTGRES_URL is set.
func TestPostgres_RefusesWritesBehindCTE(t *testing.T) {
	url := os.Getenv("DATAGRID_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("DATAGRID_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, url)
	require.NoError(t, err)
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS datagrid_write_check (x int)`)
	require.NoError(t, err)
	defer conn.Exec(ctx, `DROP TABLE datagrid_write_check`)
	_, err = conn.Exec(ctx, `INSERT INTO datagrid_write_check VALUES (1), (2)`)
	require.NoError(t, err)

	src, err := OpenSQL(ctx, url, "WITH gone AS (DELETE FROM datagrid_write_check RETURNING x) SELECT * FROM gone", Options{})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Load(ctx)
	assert.Error(t, err)
	_, err = src.Count(ctx)
	assert.Error(t, err)

	var n int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM datagrid_write_check`).Scan(&n))
	assert.Equal(t, 2, n)
}
