// Package sqlsource loads a dataset from the result of a SQL query
package sqlsource

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/dataset"
	"gocleanse/internal"
	internalerrors "gocleanse/internal/errors"
)

// DriverFor picks a registered driver from a connection URL: postgres for
// postgres:// URLs, sqlite3 for sqlite:// URLs, file: DSNs and bare paths
func DriverFor(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(url, "sqlite://")
	case strings.HasPrefix(url, "sqlite3://"):
		return "sqlite3", strings.TrimPrefix(url, "sqlite3://")
	case strings.Contains(url, "host=") || strings.Contains(url, "dbname="):
		return "postgres", url
	}
	return "sqlite3", url
}

// Connect opens and pings a database for the given URL
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, internalerrors.ConfigInvalid("database URL is required")
	}
	driver, dsn := DriverFor(url)
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, internalerrors.SourceError(driver, err)
	}
	return db, nil
}

// QuerySource runs one query and turns its result set into a dataset
type QuerySource struct {
	db      *sqlx.DB
	query   string
	args    []interface{}
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewQuerySource creates a source for query with its positional args
func NewQuerySource(db *sqlx.DB, logger *internal.Logger, query string, args ...interface{}) *QuerySource {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &QuerySource{
		db:      db,
		query:   query,
		args:    args,
		coercer: coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		logger:  logger,
	}
}

// Load runs the query. Column order follows the result set; every cell goes
// through the type coercer, with NULL as missing.
func (s *QuerySource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if strings.TrimSpace(s.query) == "" {
		return nil, internalerrors.InvalidInput("query is empty")
	}

	rows, err := s.db.QueryxContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, internalerrors.SourceError("sql query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, internalerrors.SourceError("sql columns", err)
	}
	ds := dataset.New(columns...)
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	for rows.Next() {
		record := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(record); err != nil {
			return nil, internalerrors.SourceError("sql scan", err)
		}
		values := make([]dataset.Value, len(columns))
		for j, c := range columns {
			values[j] = s.coerce(record[c])
		}
		ds.Rows = append(ds.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, internalerrors.SourceError("sql rows", err)
	}

	s.logger.Info("[QuerySource] loaded %d rows x %d columns", ds.RowCount(), ds.ColumnCount())
	return ds, nil
}

func (s *QuerySource) coerce(raw interface{}) dataset.Value {
	switch v := raw.(type) {
	case bool:
		return dataset.NewStringValue(strconv.FormatBool(v))
	case []byte:
		return s.coercer.CoerceValue(string(v))
	}
	return s.coercer.CoerceValue(raw)
}
