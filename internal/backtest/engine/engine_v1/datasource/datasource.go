package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/samber/lo"

	"github.com/rxtech-lab/argo-compare/internal/types"
)

// SQLResult represents a row of data from a SQL query
type SQLResult struct {
	Values map[string]interface{}
}

// Well-known column names of the tabular price file.
const (
	ColumnDate    = "Date"
	ColumnOpen    = "Open"
	ColumnHigh    = "High"
	ColumnLow     = "Low"
	ColumnClose   = "Close"
	ColumnVolume  = "Volume"
	ColumnReturns = "returns"
)

type DataSource interface {
	// Initialize initializes the data source with the given price file, CSV or Parquet
	Initialize(path string) error
	// ReadAll reads all bars in date order and yields them to the caller
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.PriceBar, error) bool)
	// ReadLastData reads the most recent bar
	ReadLastData() (types.PriceBar, error)
	// ReadColumn reads an optional numeric column, such as precomputed returns, aligned with ReadAll
	ReadColumn(name string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Series, error)
	// Columns lists the columns of the price file
	Columns() ([]string, error)
	// ExecuteSQL executes a raw SQL query and returns the results as SQLResult
	ExecuteSQL(query string, params ...interface{}) ([]SQLResult, error)
	// Count returns the number of bars in the data source
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}

// ReadBars collects ReadAll into a slice.
func ReadBars(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Bars, error) {
	var bars types.Bars

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// ReadReturns reads the precomputed returns column, or None when the source has no such column.
func ReadReturns(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) (optional.Option[types.Series], error) {
	columns, err := ds.Columns()
	if err != nil {
		return optional.None[types.Series](), err
	}

	if !lo.Contains(columns, ColumnReturns) {
		return optional.None[types.Series](), nil
	}

	series, err := ds.ReadColumn(ColumnReturns, start, end)
	if err != nil {
		return optional.None[types.Series](), err
	}

	return optional.Some(series), nil
}
