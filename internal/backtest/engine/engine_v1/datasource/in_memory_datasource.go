package datasource

import (
	"slices"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/samber/lo"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// InMemoryDataSource serves bars that already live in memory, e.g. synthetic bars in tests
// or a cleaned slice handed over by an upstream step. Extra columns are aligned with bars.
type InMemoryDataSource struct {
	bars    types.Bars
	columns map[string]types.Series
}

// NewInMemoryDataSource creates a data source over bars, which must be strictly increasing by date.
func NewInMemoryDataSource(bars types.Bars, columns map[string]types.Series) (*InMemoryDataSource, error) {
	if err := bars.Validate(); err != nil {
		return nil, err
	}

	for name, series := range columns {
		if len(series) != len(bars) {
			return nil, errors.NewLengthError(len(bars), len(series),
				"column %s has %d values but there are %d bars", name, len(series), len(bars))
		}
	}

	if columns == nil {
		columns = map[string]types.Series{}
	}

	return &InMemoryDataSource{bars: bars, columns: columns}, nil
}

// Initialize is a no-op: the bars were supplied at construction.
func (m *InMemoryDataSource) Initialize(_ string) error {
	return nil
}

// bounds returns the half-open index range [lo, hi) of bars dated within the range.
func (m *InMemoryDataSource) bounds(start optional.Option[time.Time], end optional.Option[time.Time]) (int, int) {
	low, high := 0, len(m.bars)

	if start.IsSome() {
		s := start.Unwrap()
		low = sort.Search(len(m.bars), func(i int) bool { return !m.bars[i].Date.Before(s) })
	}

	if end.IsSome() {
		e := end.Unwrap()
		high = sort.Search(len(m.bars), func(i int) bool { return m.bars[i].Date.After(e) })
	}

	if high < low {
		high = low
	}

	return low, high
}

// ReadAll implements DataSource.
func (m *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.PriceBar, error) bool) {
	return func(yield func(types.PriceBar, error) bool) {
		low, high := m.bounds(start, end)
		for _, bar := range m.bars[low:high] {
			if !yield(bar, nil) {
				return
			}
		}
	}
}

// ReadLastData implements DataSource.
func (m *InMemoryDataSource) ReadLastData() (types.PriceBar, error) {
	if len(m.bars) == 0 {
		return types.PriceBar{}, errors.New(errors.ErrCodeNoDataFound, "no bars found")
	}

	return m.bars[len(m.bars)-1], nil
}

// ReadColumn implements DataSource. The OHLC columns are always available.
func (m *InMemoryDataSource) ReadColumn(name string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Series, error) {
	low, high := m.bounds(start, end)

	var full types.Series

	switch name {
	case ColumnOpen:
		full = lo.Map(m.bars, func(b types.PriceBar, _ int) float64 { return b.Open })
	case ColumnHigh:
		full = m.bars.Highs()
	case ColumnLow:
		full = m.bars.Lows()
	case ColumnClose:
		full = m.bars.Closes()
	case ColumnVolume:
		full = lo.Map(m.bars, func(b types.PriceBar, _ int) float64 { return float64(b.Volume) })
	default:
		series, ok := m.columns[name]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeDataNotFound, "column %s not found", name)
		}

		full = series
	}

	return slices.Clone(full[low:high]), nil
}

// Columns implements DataSource.
func (m *InMemoryDataSource) Columns() ([]string, error) {
	extra := lo.Keys(m.columns)
	slices.Sort(extra)

	return append([]string{ColumnDate, ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}, extra...), nil
}

// ExecuteSQL is not available without a database behind the bars.
func (m *InMemoryDataSource) ExecuteSQL(_ string, _ ...interface{}) ([]SQLResult, error) {
	return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "in-memory data source does not support SQL")
}

// Count implements DataSource.
func (m *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	low, high := m.bounds(start, end)

	return high - low, nil
}

// Close implements DataSource.
func (m *InMemoryDataSource) Close() error {
	return nil
}

var _ DataSource = (*InMemoryDataSource)(nil)
