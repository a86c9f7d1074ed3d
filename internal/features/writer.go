package features

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-compare/internal/logger"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// FeatureWriter persists a feature table row by row.
type FeatureWriter interface {
	// Initialize prepares the output for the given feature columns.
	Initialize(columns []string) error
	// Write appends one bar and its feature values in column order.
	Write(bar types.PriceBar, features []float64) error
	// Finalize flushes the rows to the output file and returns its path.
	Finalize() (string, error)
	// Close releases resources. Safe to call after Finalize.
	Close() error
}

// DuckDBWriter stages rows in an in-memory DuckDB table and exports them with COPY.
// The output format follows the file extension: .csv or .parquet.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	columns    []string
	outputPath string
	log        *logger.Logger
}

// NewDuckDBWriter creates a new DuckDBWriter writing to outputPath.
func NewDuckDBWriter(outputPath string, log *logger.Logger) FeatureWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
		log:        log,
	}
}

func copyFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "FORMAT CSV, HEADER", nil
	case ".parquet":
		return "FORMAT PARQUET", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidType, "unsupported feature file format: %s", path)
	}
}

func quote(column string) string {
	return `"` + strings.ReplaceAll(column, `"`, `""`) + `"`
}

// Initialize sets up the in-memory table, begins a transaction and prepares the insert statement.
func (w *DuckDBWriter) Initialize(columns []string) (err error) {
	if _, err := copyFormat(w.outputPath); err != nil {
		return err
	}

	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataWriteFailed, "failed to open DuckDB connection", err)
	}

	w.columns = columns

	definitions := append([]string{
		`"Date" DATE`, `"Open" DOUBLE`, `"High" DOUBLE`, `"Low" DOUBLE`, `"Close" DOUBLE`, `"Volume" BIGINT`,
	}, lo.Map(columns, func(c string, _ int) string { return quote(c) + " DOUBLE" })...)

	_, err = w.db.Exec(fmt.Sprintf(`CREATE TABLE features (%s)`, strings.Join(definitions, ", ")))
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeDataWriteFailed, "failed to begin transaction", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 6+len(columns)), ", ")

	w.stmt, err = w.tx.Prepare(fmt.Sprintf(`INSERT INTO features VALUES (%s)`, placeholders))
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts one row. NaN feature values are stored as NULL.
func (w *DuckDBWriter) Write(bar types.PriceBar, features []float64) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeDataWriteFailed, "writer not initialized or statement is nil")
	}

	if len(features) != len(w.columns) {
		return errors.NewLengthError(len(w.columns), len(features),
			"row for %s has %d features, expected %d", bar.Date.Format("2006-01-02"), len(features), len(w.columns))
	}

	args := []any{bar.Date, nullable(bar.Open), nullable(bar.High), nullable(bar.Low), nullable(bar.Close), bar.Volume}
	for _, value := range features {
		args = append(args, nullable(value))
	}

	if _, err := w.stmt.Exec(args...); err != nil {
		return errors.Wrap(errors.ErrCodeDataWriteFailed, "failed to insert row", err)
	}

	return nil
}

func nullable(value float64) sql.NullFloat64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: value, Valid: true}
}

// Finalize commits the transaction and exports the table to the output file.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeDataWriteFailed, "writer not initialized or transaction is nil")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil
	w.stmt = nil

	format, err := copyFormat(w.outputPath)
	if err != nil {
		return "", err
	}

	_, err = w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM features ORDER BY "Date") TO '%s' (%s)`,
		strings.ReplaceAll(w.outputPath, "'", "''"), format))
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeDataWriteFailed, err, "failed to export to %s", w.outputPath)
	}

	w.log.Info("Exported features", zap.String("path", w.outputPath))

	return w.outputPath, nil
}

// Close cleans up the statement, any open transaction and the database connection.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.log.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		errMsg := "errors occurred during close:"
		for _, e := range closeErrors {
			errMsg += fmt.Sprintf("\n- %v", e)
		}

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// WriteTable writes every row of table through w and finalizes it.
func WriteTable(w FeatureWriter, table Table) (string, error) {
	if err := w.Initialize(table.Columns); err != nil {
		return "", err
	}
	defer w.Close()

	for i, bar := range table.Bars {
		if err := w.Write(bar, table.Row(i)); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}
