package backtest

import (
	"cmp"
	"math"
	"slices"

	"github.com/rxtech-lab/argo-compare/internal/types"
)

// CumulativeReturn compounds the defined values of returns: prod(1 + r) - 1.
// Undefined values count as a zero return.
func CumulativeReturn(returns types.Series) float64 {
	growth := 1.0
	for _, r := range returns {
		if math.IsNaN(r) {
			continue
		}

		growth *= 1 + r
	}

	return growth - 1
}

// Curve returns the running cumulative return at every bar.
func Curve(returns types.Series) types.Series {
	curve := make(types.Series, len(returns))
	growth := 1.0

	for i, r := range returns {
		if !math.IsNaN(r) {
			growth *= 1 + r
		}

		curve[i] = growth - 1
	}

	return curve
}

// Aggregate reduces a strategy's return series to its result.
func Aggregate(name string, strategyReturns types.Series) types.StrategyResult {
	return types.StrategyResult{
		Name:             name,
		CumulativeReturn: CumulativeReturn(strategyReturns),
	}
}

// Rank returns a copy of results sorted by cumulative return, best first.
// Ties keep their input order.
func Rank(results []types.StrategyResult) []types.StrategyResult {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b types.StrategyResult) int {
		return cmp.Compare(b.CumulativeReturn, a.CumulativeReturn)
	})

	return ranked
}
