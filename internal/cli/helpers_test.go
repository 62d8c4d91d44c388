package cli

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/datagrid/internal/config"
	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
	"github.com/imgajeed76/datagrid/internal/ui/table"
	"github.com/imgajeed76/datagrid/internal/util"
)

var columns = []string{"id", "name", "team:name"}

func TestParseSortFlag(t *testing.T) {
	tests := []struct {
		in   string
		want grid.SortState
	}{
		{"", grid.SortState{}},
		{"name", grid.SortState{ColumnKey: "name"}},
		{"name:asc", grid.SortState{ColumnKey: "name"}},
		{"name:DESC", grid.SortState{ColumnKey: "name", Direction: grid.Descending}},
		{"team:name", grid.SortState{ColumnKey: "team:name"}},
		{"team:name:desc", grid.SortState{ColumnKey: "team:name", Direction: grid.Descending}},
	}
	for _, tt := range tests {
		got, err := parseSortFlag(tt.in, columns)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSortFlag_Errors(t *testing.T) {
	_, err := parseSortFlag("name:sideways", columns)
	assert.True(t, errors.Is(err, util.ErrInvalidSortFlag))

	_, err = parseSortFlag("age:desc", columns)
	assert.True(t, errors.Is(err, util.ErrUnknownColumn))
	var gridErr *util.GridError
	require.True(t, errors.As(err, &gridErr))
	assert.Contains(t, gridErr.Message, "id, name, team:name")
}

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter("", "", columns)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = buildFilter("ada", "", columns)
	require.NoError(t, err)
	assert.Equal(t, &grid.Filter[source.Record]{Query: "ada"}, f)

	f, err = buildFilter("ada", "name", columns)
	require.NoError(t, err)
	assert.Equal(t, "name", f.ColumnKey)

	_, err = buildFilter("ada", "email", columns)
	assert.True(t, errors.Is(err, util.ErrUnknownColumn))
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"": ',', ",": ',', ";": ';', `\t`: '\t', "tab": '\t', "|": '|'} {
		got, err := parseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{`"`, ";;", "\n"} {
		_, err := parseDelimiter(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsWriteQuery(t *testing.T) {
	assert.True(t, isWriteQuery("delete from users"))
	assert.True(t, isWriteQuery("  INSERT INTO t VALUES (1)"))
	assert.True(t, isWriteQuery("drop table t"))
	assert.False(t, isWriteQuery("select * from updates"))
	assert.False(t, isWriteQuery("with x as (select 1) select * from x"))
	assert.False(t, isWriteQuery("(select 1)"))
	assert.False(t, isWriteQuery(""))
}

func TestDisplayOptions_FlagsOverrideConfig(t *testing.T) {
	ds := &source.Dataset{Name: "t", Fields: []source.Field{{Name: "id"}, {Name: "name"}}}
	cfg := config.DefaultConfig()
	cfg.Display.FoldCase = true

	opts, err := displayOptions(displayFlags{page: 1}, ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, grid.PageState{Size: 50}, opts.Page)
	assert.Equal(t, table.ModeSticky, opts.Mode)
	assert.True(t, opts.FoldCase)

	opts, err = displayOptions(displayFlags{
		page: 3, pageSize: 0, pageSizeSet: true,
		mode: "compact", modeSet: true,
		sort: "name:desc", filter: "x", filterColumn: "id",
	}, ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, grid.PageState{Index: 2}, opts.Page)
	assert.Equal(t, table.ModeCompact, opts.Mode)
	assert.Equal(t, grid.SortState{ColumnKey: "name", Direction: grid.Descending}, opts.Sort)
	assert.Equal(t, "id", opts.Filter.ColumnKey)

	opts, err = displayOptions(displayFlags{page: 1, json: true}, ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, grid.PageState{}, opts.Page, "json ignores the configured page size")

	opts, err = displayOptions(displayFlags{page: 2, pageSet: true, raw: true}, ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, grid.PageState{Index: 1, Size: 50}, opts.Page)

	_, err = displayOptions(displayFlags{mode: "fancy", modeSet: true}, ds, cfg)
	assert.True(t, errors.Is(err, util.ErrInvalidModeString))
}

// ─────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────

// runCLI executes a fresh root command with an isolated config file and
// returns what it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if os.Getenv("DATAGRID_CONFIG") == "" {
		t.Setenv("DATAGRID_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	}

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w

	var cmdOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&cmdOut)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	runErr := cmd.Execute()

	os.Stdout = stdout
	require.NoError(t, w.Close())
	printed, err := io.ReadAll(r)
	require.NoError(t, err)
	return cmdOut.String() + string(printed), runErr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestViewCmd_Raw(t *testing.T) {
	path := writeFile(t, "people.csv", "id,name\n1,ada\n2,bob\n3,cy\n")

	out, err := runCLI(t, "view", path, "--raw", "--id", "id", "--sort", "id:desc", "--page-size", "2")
	require.NoError(t, err)
	assert.Equal(t, "3\tcy\n2\tbob\n", out)
}

func TestViewCmd_JSONFiltered(t *testing.T) {
	path := writeFile(t, "people.json", `[{"id": 1, "name": "Ada"}, {"id": 2, "name": "Bob"}]`)

	out, err := runCLI(t, "view", path, "--json", "--filter", "ADA")
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\"id\": 1, \"name\": \"Ada\"}\n]\n", out)
}

func TestViewCmd_PlainFooter(t *testing.T) {
	path := writeFile(t, "n.tsv", "n\n1\n2\n3\n4\n5\n")

	out, err := runCLI(t, "view", path, "--no-pager", "--page-size", "2", "--page", "2", "--mode", "standard")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "(rows 3-4 of 5, page 2/3)\n"), out)
}

func TestViewCmd_RawIgnoresConfiguredPageSize(t *testing.T) {
	t.Setenv("DATAGRID_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	_, err := runCLI(t, "config", "display.page_size", "2")
	require.NoError(t, err)
	path := writeFile(t, "people.csv", "id,name\n1,ada\n2,bob\n3,cy\n")

	out, err := runCLI(t, "view", path, "--raw")
	require.NoError(t, err)
	assert.Equal(t, "1\tada\n2\tbob\n3\tcy\n", out)

	out, err = runCLI(t, "view", path, "--raw", "--page", "2")
	require.NoError(t, err)
	assert.Equal(t, "3\tcy\n", out)
}

func TestViewCmd_UnknownSortColumn(t *testing.T) {
	path := writeFile(t, "people.csv", "id,name\n1,ada\n")

	_, err := runCLI(t, "view", path, "--raw", "--sort", "age")
	assert.True(t, errors.Is(err, util.ErrUnknownColumn))
}

func TestViewCmd_MissingIDs(t *testing.T) {
	path := writeFile(t, "dup.csv", "id,name\n1,ada\n,bob\n")

	_, err := runCLI(t, "view", path, "--raw", "--id", "id")
	require.Error(t, err)
	var gridErr *util.GridError
	require.True(t, errors.As(err, &gridErr))
	assert.True(t, errors.Is(err, grid.ErrMissingRowID))
}

func TestSQLCmd_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")
	seedSQLite(t, dbPath)

	out, err := runCLI(t, "sql", "sqlite://"+dbPath, "select id, name from users order by id", "--raw", "--id", "id")
	require.NoError(t, err)
	assert.Equal(t, "1\tada\n2\tbob\n3\tcy\n", out)

	out, err = runCLI(t, "sql", dbPath, "select id, name from users order by id", "--raw", "--id", "id", "--server-page", "--page-size", "2", "--page", "2")
	require.NoError(t, err)
	assert.Equal(t, "3\tcy\n", out)
}

func seedSQLite(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
		INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'bob'), (3, 'cy');`)
	require.NoError(t, err)
}

func TestSQLCmd_RejectsWrites(t *testing.T) {
	_, err := runCLI(t, "sql", "sqlite://x.db", "delete from users")
	var gridErr *util.GridError
	require.True(t, errors.As(err, &gridErr))
	assert.Equal(t, "Write operations are not supported", gridErr.Title)
}

func TestConfigCmd_SetGetList(t *testing.T) {
	t.Setenv("DATAGRID_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	_, err := runCLI(t, "config", "display.page_size", "100")
	require.NoError(t, err)

	out, err := runCLI(t, "config", "display.page_size")
	require.NoError(t, err)
	assert.Equal(t, "100\n", out)

	out, err = runCLI(t, "config", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "display.page_size=100\n")
	assert.Contains(t, out, "display.mode=sticky\n")

	_, err = runCLI(t, "config", "display.mode", "fancy")
	assert.Error(t, err)

	_, err = runCLI(t, "config", "nope.key")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "datagrid version dev")
}
