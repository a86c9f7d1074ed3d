package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rxtech-lab/argo-compare/internal/indicator"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

// MaxDrawdown returns the largest peak-to-trough decline of the equity 1+curve,
// as a positive fraction of the peak.
func MaxDrawdown(curve types.Series) float64 {
	peak := math.Inf(-1)
	maxDrawdown := 0.0

	for _, c := range curve {
		if math.IsNaN(c) {
			continue
		}

		equity := 1 + c
		if equity > peak {
			peak = equity
		}

		if peak > 0 {
			maxDrawdown = math.Max(maxDrawdown, (peak-equity)/peak)
		}
	}

	return maxDrawdown
}

// SharpeRatio annualizes the mean over sample stddev of the defined daily returns.
// It is 0 when fewer than two returns are defined or they do not vary.
func SharpeRatio(returns types.Series) float64 {
	defined := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) {
			defined = append(defined, r)
		}
	}

	if len(defined) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(defined, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	return mean / std * math.Sqrt(indicator.TradingDaysPerYear)
}

// Stats summarizes one evaluated strategy.
func Stats(name string, strategyType types.StrategyType, positions types.PositionSeries, strategyReturns types.Series) types.StrategyStats {
	curve := Curve(strategyReturns)

	return types.StrategyStats{
		Name:             name,
		Type:             strategyType,
		CumulativeReturn: CumulativeReturn(strategyReturns),
		NumberOfTrades:   positions.Entries(),
		Exposure:         positions.Exposure(),
		MaxDrawdown:      MaxDrawdown(curve),
		SharpeRatio:      SharpeRatio(strategyReturns),
		Curve:            curve,
	}
}
