package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const timestampColumn = `"timestamp"`

type DuckDBDataSource struct {
	db          *sql.DB
	logger      *logger.Logger
	sq          squirrel.StatementBuilderType
	initialized bool
}

// NewDataSource creates a new DuckDB data source instance with the specified database path.
// The path parameter specifies the DuckDB database file location, ":memory:" keeps it in memory.
// This is distinct from Initialize() which points the database at a bar file.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	ds, err := NewDuckDBDataSource(path, logger)
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// NewDuckDBDataSource is NewDataSource returning the concrete type, for
// callers that also run ad hoc queries with ExecuteSQL.
func NewDuckDBDataSource(path string, logger *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	_, err = db.Exec(`SET threads=4;`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to set DuckDB optimizations", err)
	}

	return &DuckDBDataSource{
		db:          db,
		logger:      logger,
		sq:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		initialized: false,
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	if !strings.ContainsAny(path, "*?[") {
		if _, err := os.Stat(path); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestDataPathError, err, "data file %s is not readable", path)
		}
	}

	// First drop the view if it exists
	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// Squirrel doesn't support CREATE VIEW
	_, err = d.db.Exec(fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM %s;
	`, readFunction(path)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load %s", path)
	}

	d.initialized = true

	return nil
}

// readFunction returns the DuckDB table function that scans path.
func readFunction(path string) string {
	escaped := strings.ReplaceAll(path, "'", "''")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fmt.Sprintf("read_csv_auto('%s', header=true)", escaped)
	default:
		return fmt.Sprintf("read_parquet('%s')", escaped)
	}
}

// window adds the optional bounds to a query.
func window(builder squirrel.SelectBuilder, start optional.Option[int64], end optional.Option[int64]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{timestampColumn: start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{timestampColumn: end.Unwrap()})
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[int64], end optional.Option[int64]) (int, error) {
	if !d.initialized {
		return 0, errors.New(errors.ErrCodeDataSourceUnavailable, "data source not initialized")
	}

	query, args, err := window(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[int64], end optional.Option[int64]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		if !d.initialized {
			yield(types.Bar{}, errors.New(errors.ErrCodeDataSourceUnavailable, "data source not initialized"))

			return
		}

		d.logger.Debug("Reading all bars from DuckDB")

		query, args, err := window(
			d.sq.Select(timestampColumn, "open", "high", "low", "close", "volume").From("market_data"),
			start, end,
		).OrderBy(timestampColumn + " ASC").ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.Bar

			err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
			if err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// ExecuteSQL executes a raw SQL query against the loaded bars and returns the
// rows as column maps.
// The view market_data holds the bars of the file passed to Initialize.
func (d *DuckDBDataSource) ExecuteSQL(query string, params ...any) ([]SQLResult, error) {
	d.logger.Debug("Executing SQL query", zap.String("query", query))

	if !d.initialized {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "data source not initialized")
	}

	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get columns", err)
	}

	var result []SQLResult

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}

		result = append(result, SQLResult{Values: rowMap})
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return result, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}
