package source

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/util"
)

// postgresSource runs a query over a small pgx pool. Paging fetches reuse
// pooled connections while the UI stays open.
type postgresSource struct {
	pool  *pgxpool.Pool
	query string
	opts  Options
}

func openPostgres(ctx context.Context, url, query string, opts Options) (*postgresSource, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, util.DatabaseConnectionError(url, fmt.Errorf("invalid connection URL: %w", err))
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, util.DatabaseConnectionError(url, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, util.DatabaseConnectionError(url, err)
	}

	return &postgresSource{pool: pool, query: query, opts: opts}, nil
}

// readOnlyTx makes the server reject any statement that writes, whatever
// keyword it starts with.
var readOnlyTx = pgx.TxOptions{AccessMode: pgx.ReadOnly}

func (s *postgresSource) readOnly(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, readOnlyTx, fn)
}

func (s *postgresSource) Load(ctx context.Context) (*Dataset, error) {
	var ds *Dataset
	err := s.readOnly(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, s.query)
		if err != nil {
			return err
		}
		ds, err = collectPgRows("query", rows, s.opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *postgresSource) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.readOnly(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, countQuery(s.query)).Scan(&n)
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *postgresSource) Page(ctx context.Context, offset, limit int) (*Dataset, error) {
	var ds *Dataset
	err := s.readOnly(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, pageQuery(s.query, "$1", "$2"), limit, offset)
		if err != nil {
			return err
		}
		ds, err = collectPgRows(fmt.Sprintf("rows %d-%d", offset+1, offset+limit), rows, s.opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *postgresSource) Close() error {
	s.pool.Close()
	return nil
}

func collectPgRows(name string, rows pgx.Rows, opts Options) (*Dataset, error) {
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	var all [][]grid.Value
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		vals := make([]grid.Value, len(values))
		for i, v := range values {
			vals[i] = pgValue(v)
		}
		all = append(all, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildDataset(name, columns, all, opts)
}

// pgValue unwraps the pgtype values pgx hands back for types without a
// native Go equivalent.
func pgValue(v any) grid.Value {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if x.NaN {
			return "NaN"
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Interval:
		if !x.Valid {
			return nil
		}
		return formatInterval(x)
	case netip.Prefix:
		return x.String()
	case netip.Addr:
		return x.String()
	}
	return normalizeSQLValue(v)
}

func formatInterval(iv pgtype.Interval) string {
	d := time.Duration(iv.Microseconds) * time.Microsecond
	switch {
	case iv.Months != 0:
		return fmt.Sprintf("%d mons %d days %s", iv.Months, iv.Days, d)
	case iv.Days != 0:
		return fmt.Sprintf("%d days %s", iv.Days, d)
	}
	return d.String()
}
