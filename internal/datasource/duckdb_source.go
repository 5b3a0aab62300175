package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

const viewName = "price_data"

// timeColumns are the accepted names of the timestamp column, in preference order.
var timeColumns = []string{"time", "timestamp", "date", "datetime"}

// DuckDBSource reads CSV and Parquet files through an in-memory DuckDB database.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBSource opens an in-memory DuckDB database.
func NewDuckDBSource(log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBSource{
		db:     db,
		logger: logger.OrNop(log),
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Load implements Source. Columns are matched by name, case-insensitively:
// one of time, timestamp, date or datetime, then close and the optional
// open, high, low and volume.
func (d *DuckDBSource) Load(ctx context.Context, path string, r Range) (types.PriceSeries, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "cannot read %s", path)
	}

	if err := d.createView(ctx, path); err != nil {
		return nil, err
	}

	columns, err := d.columns(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := d.buildQuery(columns, r)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("loading price series", zap.String("path", path), zap.String("query", query))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	var series types.PriceSeries

	for rows.Next() {
		var md types.MarketData
		if err := rows.Scan(&md.Time, &md.Open, &md.High, &md.Low, &md.Close, &md.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan observation", err)
		}

		md.Time = md.Time.UTC()
		series = append(series, md)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read observations", err)
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no observations in %s for the requested range", path)
	}

	// lookback queries read newest first
	if r.Lookback.IsSome() {
		slices.Reverse(series)
	}

	d.logger.Info("loaded price series",
		zap.String("path", path),
		zap.Int("observations", len(series)),
		zap.Time("first", series[0].Time),
		zap.Time("last", series[len(series)-1].Time),
	)

	return series, nil
}

// createView points the view at the file. DDL is written as raw SQL since
// squirrel does not build CREATE VIEW statements.
func (d *DuckDBSource) createView(ctx context.Context, path string) error {
	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		reader = "read_csv_auto"
	case ".parquet":
		reader = "read_parquet"
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported file type %q, expected .csv or .parquet", filepath.Ext(path))
	}

	if _, err := d.db.ExecContext(ctx, fmt.Sprintf("DROP VIEW IF EXISTS %s", viewName)); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	query := fmt.Sprintf("CREATE VIEW %s AS SELECT * FROM %s('%s')", viewName, reader, strings.ReplaceAll(path, "'", "''"))
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", path)
	}

	return nil
}

// columns maps lower-cased column names to their names in the file.
func (d *DuckDBSource) columns(ctx context.Context) (map[string]string, error) {
	query, args, err := d.sq.Select("column_name").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": viewName}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build column query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe columns", err)
	}
	defer rows.Close()

	out := make(map[string]string)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		out[strings.ToLower(name)] = name
	}

	return out, rows.Err()
}

func (d *DuckDBSource) buildQuery(columns map[string]string, r Range) (string, []any, error) {
	timeCol := ""

	for _, name := range timeColumns {
		if col, ok := columns[name]; ok {
			timeCol = col

			break
		}
	}

	if timeCol == "" {
		return "", nil, errors.Newf(errors.ErrCodeInvalidSeries, "no time column, expected one of %s", strings.Join(timeColumns, ", "))
	}

	if _, ok := columns["close"]; !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidSeries, "no close column")
	}

	numeric := func(name string) string {
		col, ok := columns[name]
		if !ok {
			return fmt.Sprintf("CAST(0 AS DOUBLE) AS %s", name)
		}

		return fmt.Sprintf("COALESCE(CAST(%s AS DOUBLE), CAST(0 AS DOUBLE)) AS %s", quote(col), name)
	}

	timeExpr := fmt.Sprintf("CAST(%s AS TIMESTAMP)", quote(timeCol))

	builder := d.sq.Select(
		timeExpr+" AS time",
		numeric("open"),
		numeric("high"),
		numeric("low"),
		fmt.Sprintf("CAST(%s AS DOUBLE) AS close", quote(columns["close"])),
		numeric("volume"),
	).From(viewName)

	if r.Start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{timeExpr: r.Start.Unwrap().UTC()})
	}

	if r.End.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{timeExpr: r.End.Unwrap().UTC()})
	}

	if r.Lookback.IsSome() {
		n := r.Lookback.Unwrap()
		if n < 1 {
			return "", nil, errors.Newf(errors.ErrCodeInvalidParameter, "lookback must be at least 1, got %d", n)
		}

		builder = builder.OrderBy("time DESC").Limit(uint64(n))
	} else {
		builder = builder.OrderBy("time ASC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	return query, args, nil
}

// Close implements Source.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// ParseTime parses the time bounds accepted on the command line.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid time %q, expected RFC3339 or YYYY-MM-DD", s)
}
