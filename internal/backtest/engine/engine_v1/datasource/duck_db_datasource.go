package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-compare/internal/logger"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

const priceView = "price_data"

// barColumns is the projection used for every bar query. Prices are cast so that
// integer-typed CSV columns and missing cells scan uniformly.
var barColumns = []string{
	`CAST("Date" AS TIMESTAMP) AS "Date"`,
	`TRY_CAST("Open" AS DOUBLE) AS "Open"`,
	`TRY_CAST("High" AS DOUBLE) AS "High"`,
	`TRY_CAST("Low" AS DOUBLE) AS "Low"`,
	`TRY_CAST("Close" AS DOUBLE) AS "Close"`,
	`TRY_CAST("Volume" AS DOUBLE) AS "Volume"`,
}

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source instance with the specified database path.
// An empty path opens an in-memory database, which is all a single comparison run needs.
// This is distinct from Initialize() which attaches the price file.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	_, err = db.Exec(`SET threads=4;`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to set DuckDB options", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader, err := readerFor(path)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s;`, priceView))
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s('%s');`,
		priceView, reader, strings.ReplaceAll(path, "'", "''"))

	_, err = d.db.Exec(query)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to load price file %s", path)
	}

	columns, err := d.Columns()
	if err != nil {
		return err
	}

	for _, required := range []string{ColumnDate, ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume} {
		if !slices.Contains(columns, required) {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "price file %s has no %s column", path, required)
		}
	}

	return nil
}

func readerFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "read_csv_auto", nil
	case ".parquet":
		return "read_parquet", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidType, "unsupported price file format: %s", path)
	}
}

// Columns implements DataSource.
func (d *DuckDBDataSource) Columns() ([]string, error) {
	rows, err := d.db.Query(fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, priceView))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read columns", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read columns", err)
	}

	return columns, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.sq.
		Select("COUNT(*)").
		From(priceView).
		Where(dateRange(start, end)).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int

	err = d.db.QueryRow(query, args...).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource with batch processing.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.PriceBar, error) bool) {
	const batchSize = 1000

	return func(yield func(types.PriceBar, error) bool) {
		d.logger.Debug("Reading all bars from DuckDB with batch processing")

		query, args, err := d.sq.
			Select(barColumns...).
			From(priceView).
			Where(dateRange(start, end)).
			OrderBy(`"Date" ASC`).
			ToSql()
		if err != nil {
			yield(types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		stmt, err := d.db.Prepare(query)
		if err != nil {
			yield(types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare query", err))

			return
		}
		defer stmt.Close()

		rows, err := stmt.Query(args...)
		if err != nil {
			yield(types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		batch := make([]types.PriceBar, 0, batchSize)

		for rows.Next() {
			bar, err := scanBar(rows)
			if err != nil {
				yield(types.PriceBar{}, err)

				return
			}

			batch = append(batch, bar)

			if len(batch) >= batchSize {
				for _, b := range batch {
					if !yield(b, nil) {
						return
					}
				}

				batch = batch[:0]
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))

			return
		}

		for _, b := range batch {
			if !yield(b, nil) {
				return
			}
		}
	}
}

// ReadColumn implements DataSource. Cells that are missing or not numeric come back as NaN.
func (d *DuckDBDataSource) ReadColumn(name string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Series, error) {
	columns, err := d.Columns()
	if err != nil {
		return nil, err
	}

	// the name is spliced into the projection, so it must be a real column
	if !slices.Contains(columns, name) {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "column %s not found", name)
	}

	query, args, err := d.sq.
		Select(fmt.Sprintf(`TRY_CAST("%s" AS DOUBLE)`, name)).
		From(priceView).
		Where(dateRange(start, end)).
		OrderBy(`"Date" ASC`).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read column %s", name)
	}
	defer rows.Close()

	var series types.Series

	for rows.Next() {
		var value sql.NullFloat64
		if err := rows.Scan(&value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		series = append(series, nullToNaN(value))
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return series, nil
}

// ExecuteSQL implements DataSource.
func (d *DuckDBDataSource) ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error) {
	d.logger.Debug("Executing SQL query", zap.String("query", query))

	stmt, err := d.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare query", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(params...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get columns", err)
	}

	result := make([]SQLResult, 0, 64)

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		rowMap := make(map[string]interface{}, len(columns))
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

// ReadLastData implements DataSource.
func (d *DuckDBDataSource) ReadLastData() (types.PriceBar, error) {
	query, args, err := d.sq.
		Select(barColumns...).
		From(priceView).
		OrderBy(`"Date" DESC`).
		Limit(1).
		ToSql()
	if err != nil {
		return types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query last bar", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
		}

		return types.PriceBar{}, errors.New(errors.ErrCodeNoDataFound, "no bars found")
	}

	return scanBar(rows)
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func dateRange(start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.And {
	conditions := squirrel.And{}

	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{`"Date"`: start.Unwrap()})
	}

	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{`"Date"`: end.Unwrap()})
	}

	return conditions
}

func scanBar(rows *sql.Rows) (types.PriceBar, error) {
	var (
		date                          time.Time
		open, high, low, close, volume sql.NullFloat64
	)

	if err := rows.Scan(&date, &open, &high, &low, &close, &volume); err != nil {
		return types.PriceBar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
	}

	bar := types.PriceBar{
		Date:   date.UTC(),
		Open:   nullToNaN(open),
		High:   nullToNaN(high),
		Low:    nullToNaN(low),
		Close:  nullToNaN(close),
		Volume: 0,
	}

	if volume.Valid {
		bar.Volume = int64(volume.Float64)
	}

	return bar, nil
}

func nullToNaN(value sql.NullFloat64) float64 {
	if !value.Valid {
		return math.NaN()
	}

	return value.Float64
}
