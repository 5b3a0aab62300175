package writer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

// Format is the file format of an export.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// FormatFromPath derives the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported output type %q, expected .csv or .parquet", filepath.Ext(path))
	}
}

func (f Format) copyOptions() string {
	if f == FormatCSV {
		return "FORMAT CSV, HEADER"
	}

	return "FORMAT PARQUET"
}

// DuckDBWriter stages rows in an in-memory DuckDB table and copies the table
// to a Parquet or CSV file.
type DuckDBWriter struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBWriter opens the staging database.
func NewDuckDBWriter(log *logger.Logger) (*DuckDBWriter, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	return &DuckDBWriter{
		db:     db,
		logger: logger.OrNop(log),
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// column is one column of a staged table.
type column struct {
	name    string
	sqlType string
}

// WriteSeries exports raw observations.
func (w *DuckDBWriter) WriteSeries(ctx context.Context, series types.PriceSeries, path string) error {
	columns := []column{
		{"id", "TEXT"}, {"time", "TIMESTAMP"},
		{"open", "DOUBLE"}, {"high", "DOUBLE"}, {"low", "DOUBLE"}, {"close", "DOUBLE"}, {"volume", "DOUBLE"},
	}

	rows := make([][]any, len(series))
	for i, md := range series {
		rows[i] = []any{uuid.NewString(), md.Time, md.Open, md.High, md.Low, md.Close, md.Volume}
	}

	return w.export(ctx, "market_data", columns, rows, path)
}

// WriteFeatures exports a feature frame with one column per feature.
func (w *DuckDBWriter) WriteFeatures(ctx context.Context, frame *types.FeatureFrame, path string) error {
	columns := []column{{"id", "TEXT"}, {"time", "TIMESTAMP"}}
	for _, name := range frame.Names {
		columns = append(columns, column{string(name), "DOUBLE"})
	}

	rows := make([][]any, frame.Len())

	for i, row := range frame.Rows {
		values := make([]any, 0, len(columns))
		values = append(values, uuid.NewString(), frame.Times[i])

		for _, v := range row {
			values = append(values, v)
		}

		rows[i] = values
	}

	return w.export(ctx, "features", columns, rows, path)
}

// WriteForecast exports the steps of a forecast run.
func (w *DuckDBWriter) WriteForecast(ctx context.Context, forecast types.Forecast, path string) error {
	columns := []column{
		{"id", "TEXT"}, {"run_id", "TEXT"}, {"step", "INTEGER"},
		{"time", "TIMESTAMP"}, {"normalized", "DOUBLE"}, {"close", "DOUBLE"},
	}

	rows := make([][]any, len(forecast.Steps))
	for i, step := range forecast.Steps {
		rows[i] = []any{uuid.NewString(), forecast.RunID, step.Step, step.Time, step.Normalized, step.Close}
	}

	return w.export(ctx, "forecast", columns, rows, path)
}

func (w *DuckDBWriter) export(ctx context.Context, table string, columns []column, rows [][]any, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer is closed")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create output directory", err)
	}

	defs := make([]string, len(columns))
	names := make([]string, len(columns))

	for i, c := range columns {
		defs[i] = fmt.Sprintf("%q %s", c.name, c.sqlType)
		names[i] = fmt.Sprintf("%q", c.name)
	}

	// DDL and COPY are raw SQL; squirrel only builds the insert
	if _, err := w.db.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create table %s", table)
	}

	if err := w.insert(ctx, table, names, rows); err != nil {
		return err
	}

	copyQuery := fmt.Sprintf("COPY %s TO '%s' (%s)", table, strings.ReplaceAll(path, "'", "''"), format.copyOptions())
	if _, err := w.db.ExecContext(ctx, copyQuery); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export %s", path)
	}

	w.logger.Info("exported table",
		zap.String("table", table),
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
	)

	return nil
}

// insert adds rows inside one transaction through a prepared statement.
func (w *DuckDBWriter) insert(ctx context.Context, table string, names []string, rows [][]any) error {
	placeholders := make([]any, len(names))

	query, _, err := w.sq.Insert(table).Columns(names...).Values(placeholders...).ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to build insert", err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()

			return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to insert into %s", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to commit transaction", err)
	}

	return nil
}

// Close releases the staging database.
func (w *DuckDBWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil

	return err
}
