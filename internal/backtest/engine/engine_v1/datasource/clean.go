package datasource

import (
	"math"
	"slices"

	"github.com/rxtech-lab/argo-compare/internal/types"
)

// Clean prepares raw bars for the pipeline: sort by date, keep the first bar of any
// duplicated date, and forward-fill price fields that are zero or NaN from the previous bar.
// Leading bars with no earlier value to fill from are left untouched.
func Clean(bars types.Bars) types.Bars {
	sorted := slices.Clone(bars)
	slices.SortStableFunc(sorted, func(a, b types.PriceBar) int { return a.Date.Compare(b.Date) })

	cleaned := make(types.Bars, 0, len(sorted))

	for _, bar := range sorted {
		if n := len(cleaned); n > 0 {
			prev := cleaned[n-1]
			if bar.Date.Equal(prev.Date) {
				continue
			}

			bar.Open = fill(bar.Open, prev.Open)
			bar.High = fill(bar.High, prev.High)
			bar.Low = fill(bar.Low, prev.Low)
			bar.Close = fill(bar.Close, prev.Close)
		}

		cleaned = append(cleaned, bar)
	}

	return cleaned
}

func fill(value, previous float64) float64 {
	if value == 0 || math.IsNaN(value) {
		return previous
	}

	return value
}
