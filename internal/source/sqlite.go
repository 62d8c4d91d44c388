package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/util"
)

// sqliteSource runs a query against a sqlite file through database/sql.
type sqliteSource struct {
	db    *sql.DB
	query string
	opts  Options
}

// queryOnlyDSN adds the query_only pragma so every connection refuses writes.
func queryOnlyDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=query_only(1)"
}

func openSQLite(ctx context.Context, path, query string, opts Options) (*sqliteSource, error) {
	db, err := sql.Open("sqlite", queryOnlyDSN(path))
	if err != nil {
		return nil, util.DatabaseConnectionError(path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, util.DatabaseConnectionError(path, err)
	}
	return &sqliteSource{db: db, query: query, opts: opts}, nil
}

func (s *sqliteSource) Load(ctx context.Context) (*Dataset, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, err
	}
	return collectSQLRows("query", rows, s.opts)
}

func (s *sqliteSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countQuery(s.query)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *sqliteSource) Page(ctx context.Context, offset, limit int) (*Dataset, error) {
	rows, err := s.db.QueryContext(ctx, pageQuery(s.query, "?", "?"), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectSQLRows(fmt.Sprintf("rows %d-%d", offset+1, offset+limit), rows, s.opts)
}

func (s *sqliteSource) Close() error {
	return s.db.Close()
}

func collectSQLRows(name string, rows *sql.Rows, opts Options) (*Dataset, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var all [][]grid.Value
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		vals := make([]grid.Value, len(raw))
		for i, v := range raw {
			vals[i] = normalizeSQLValue(v)
		}
		all = append(all, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildDataset(name, columns, all, opts)
}
