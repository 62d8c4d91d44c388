package source

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/util"
)

// SQLSource is a query against a database. Load runs the whole query; the
// Pager methods wrap it for server-driven pagination.
type SQLSource interface {
	Loader
	Pager
	io.Closer
}

// OpenSQL connects to the database named by dsn and prepares query.
// postgres:// and postgresql:// URLs use pgx; sqlite:// URLs, file: URIs and
// paths ending in .db, .sqlite or .sqlite3 use the pure Go sqlite driver.
func OpenSQL(ctx context.Context, dsn, query string, opts Options) (SQLSource, error) {
	query = cleanQuery(query)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		src, err := openPostgres(ctx, dsn, query, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	case isSQLiteDSN(dsn):
		src, err := openSQLite(ctx, sqlitePath(dsn), query, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, util.UnsupportedDSNError(dsn)
}

func isSQLiteDSN(dsn string) bool {
	if strings.HasPrefix(dsn, "sqlite://") || strings.HasPrefix(dsn, "sqlite3://") || strings.HasPrefix(dsn, "file:") {
		return true
	}
	lower := strings.ToLower(dsn)
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func sqlitePath(dsn string) string {
	for _, prefix := range []string{"sqlite://", "sqlite3://"} {
		if strings.HasPrefix(dsn, prefix) {
			return strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// cleanQuery drops surrounding whitespace and trailing semicolons so the
// query can be nested as a subquery.
func cleanQuery(q string) string {
	q = strings.TrimSpace(q)
	for strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	}
	return q
}

func countQuery(q string) string {
	return "SELECT count(*) FROM (" + q + ") AS datagrid_count"
}

// pageQuery uses placeholder syntax supplied by the driver.
func pageQuery(q, limitArg, offsetArg string) string {
	return "SELECT * FROM (" + q + ") AS datagrid_page LIMIT " + limitArg + " OFFSET " + offsetArg
}

// normalizeSQLValue maps driver values onto grid values. Numbers widen to
// int64/float64 (uint64 above the int64 range stays uint64), times stay times, and everything else becomes display text.
func normalizeSQLValue(v any) grid.Value {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return x
		}
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		if utf8.Valid(x) && isPrintable(string(x)) {
			return string(x)
		}
		return "\\x" + hex.EncodeToString(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
	}
	return true
}
