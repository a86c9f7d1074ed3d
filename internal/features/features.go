// Package features builds the indicator feature table that sits next to the raw price
// history, and writes it back out as CSV or Parquet.
package features

import (
	"sync"

	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// Feature column names.
const (
	ColumnReturns    = "returns"
	ColumnCloseMA5   = "close_ma5"
	ColumnCloseMA20  = "close_ma20"
	ColumnRSI14      = "rsi14"
	ColumnVol30d     = "vol30d"
	ColumnMACD       = "macd"
	ColumnMACDSignal = "macd_signal"
	ColumnAO         = "ao"
	ColumnBBMid      = "bb_mid"
	ColumnBBUpper    = "bb_upper"
	ColumnBBLower    = "bb_lower"
)

// featureSource computes the indicator once and fans its output lines into columns.
type featureSource struct {
	indicator types.IndicatorType
	params    []any
	columns   map[string]string // output key -> column
}

var defaultSources = []featureSource{
	{types.IndicatorTypeSMA, []any{5}, map[string]string{indicator.OutputValue: ColumnCloseMA5}},
	{types.IndicatorTypeSMA, []any{20}, map[string]string{indicator.OutputValue: ColumnCloseMA20}},
	{types.IndicatorTypeRSI, []any{14}, map[string]string{indicator.OutputValue: ColumnRSI14}},
	{types.IndicatorTypeVolatility, []any{30}, map[string]string{indicator.OutputValue: ColumnVol30d}},
	{types.IndicatorTypeMACD, []any{12, 26, 9}, map[string]string{
		indicator.OutputMACD:   ColumnMACD,
		indicator.OutputSignal: ColumnMACDSignal,
	}},
	{types.IndicatorTypeAO, []any{5, 34}, map[string]string{indicator.OutputValue: ColumnAO}},
	{types.IndicatorTypeBollingerBands, []any{20, 2.0}, map[string]string{
		indicator.OutputMid:   ColumnBBMid,
		indicator.OutputUpper: ColumnBBUpper,
		indicator.OutputLower: ColumnBBLower,
	}},
}

// Columns lists the feature columns in output order.
func Columns() []string {
	return []string{
		ColumnReturns, ColumnCloseMA5, ColumnCloseMA20, ColumnRSI14, ColumnVol30d,
		ColumnMACD, ColumnMACDSignal, ColumnAO, ColumnBBMid, ColumnBBUpper, ColumnBBLower,
	}
}

// Table is the price history with its feature columns, all aligned with Bars.
type Table struct {
	Bars    types.Bars
	Columns []string
	Values  map[string]types.Series
}

// Row returns the feature values of bar i in column order.
func (t Table) Row(i int) []float64 {
	row := make([]float64, len(t.Columns))
	for j, column := range t.Columns {
		row[j] = t.Values[column][i]
	}

	return row
}

// Engineer computes features through an indicator registry.
// Registry indicators are reconfigured for each source, so builds on one Engineer run one at a time
// and the registry must not be shared with other users.
type Engineer struct {
	mu       sync.Mutex
	registry indicator.IndicatorRegistry
}

// NewEngineer creates an engineer over the built-in indicators.
func NewEngineer() *Engineer {
	return &Engineer{registry: indicator.NewDefaultIndicatorRegistry()}
}

// NewEngineerWithRegistry creates an engineer over a custom registry.
func NewEngineerWithRegistry(registry indicator.IndicatorRegistry) *Engineer {
	return &Engineer{registry: registry}
}

// Indicators lists the indicators the engineer can draw on.
func (e *Engineer) Indicators() []types.IndicatorType {
	return e.registry.ListIndicators()
}

// Build validates bars and computes every feature column. Warm-up values are NaN.
func (e *Engineer) Build(bars types.Bars) (Table, error) {
	return e.BuildWithReturns(bars, bars.Returns())
}

// BuildWithReturns is Build with a supplied returns column, kept as given.
func (e *Engineer) BuildWithReturns(bars types.Bars, returns types.Series) (Table, error) {
	if err := bars.Validate(); err != nil {
		return Table{}, err
	}

	if err := types.CheckAligned(len(bars), returns); err != nil {
		return Table{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	table := Table{
		Bars:    bars,
		Columns: Columns(),
		Values:  map[string]types.Series{ColumnReturns: returns},
	}

	for _, s := range defaultSources {
		ind, err := e.registry.GetIndicator(s.indicator)
		if err != nil {
			return Table{}, err
		}

		if err := ind.Config(s.params...); err != nil {
			return Table{}, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to configure %s", s.indicator)
		}

		out, err := ind.Compute(bars)
		if err != nil {
			return Table{}, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s", s.indicator)
		}

		for key, column := range s.columns {
			series, ok := out[key]
			if !ok {
				return Table{}, errors.Newf(errors.ErrCodeIndicatorCalculation, "%s produced no %s line", s.indicator, key)
			}

			table.Values[column] = series
		}
	}

	return table, nil
}
