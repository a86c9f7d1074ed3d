package backtest

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const (
	F = types.PositionFlat
	L = types.PositionLong
)

type BacktestTestSuite struct {
	suite.Suite
}

func TestBacktestSuite(t *testing.T) {
	suite.Run(t, new(BacktestTestSuite))
}

func (suite *BacktestTestSuite) TestAttributeLagsPosition() {
	returns := types.Series{math.NaN(), 0.10, -0.10}
	out, err := Attribute(types.PositionSeries{F, L, L}, returns)
	suite.Require().NoError(err)

	suite.True(math.IsNaN(out[0]))
	// LONG decided on bar 1 does not earn bar 1
	suite.Equal(0.0, out[1])
	suite.InDelta(-0.10, out[2], 1e-12)
}

func (suite *BacktestTestSuite) TestCompoundingLiteral() {
	out, err := Attribute(types.PositionSeries{F, L, L}, types.Series{0, 0.10, -0.10})
	suite.Require().NoError(err)
	suite.InDelta(-0.10, CumulativeReturn(out), 1e-12)
}

func (suite *BacktestTestSuite) TestCompoundingIsMultiplicative() {
	// +10% then -10% is a loss, not zero
	suite.InDelta(-0.01, CumulativeReturn(types.Series{math.NaN(), 0.10, -0.10}), 1e-12)
}

func (suite *BacktestTestSuite) TestAttributeUndefinedReturnContributesZero() {
	out, err := Attribute(types.PositionSeries{L, L, L}, types.Series{math.NaN(), math.NaN(), 0.05})
	suite.Require().NoError(err)
	suite.Equal(0.0, out[1])
	suite.InDelta(0.05, CumulativeReturn(out), 1e-12)
}

func (suite *BacktestTestSuite) TestAttributeErrors() {
	_, err := Attribute(types.PositionSeries{F}, types.Series{math.NaN()})
	suite.True(errors.IsInsufficientDataError(err))

	_, err = Attribute(types.PositionSeries{F, L}, types.Series{math.NaN(), 0.1, 0.2})
	suite.True(errors.IsInvalidSeriesError(err))
}

func (suite *BacktestTestSuite) TestAlwaysFlatIsZero() {
	out, err := Attribute(types.PositionSeries{F, F, F, F}, types.Series{math.NaN(), 0.3, -0.2, 0.1})
	suite.Require().NoError(err)
	suite.Equal(0.0, CumulativeReturn(out))
}

func (suite *BacktestTestSuite) TestNoLookAhead() {
	positions := types.PositionSeries{F, L, F, L, L}
	returns := types.Series{math.NaN(), 0.01, 0.02, -0.03, 0.04}

	full, err := Attribute(positions, returns)
	suite.Require().NoError(err)

	// flipping the final position cannot change any attributed return
	altered := append(types.PositionSeries{}, positions...)
	altered[4] = F
	out, err := Attribute(altered, returns)
	suite.Require().NoError(err)
	suite.Equal(full[1:], out[1:])
}

func (suite *BacktestTestSuite) TestCurve() {
	curve := Curve(types.Series{math.NaN(), 0.10, -0.10})
	suite.Equal(0.0, curve[0])
	suite.InDelta(0.10, curve[1], 1e-12)
	suite.InDelta(-0.01, curve[2], 1e-12)
	suite.InDelta(CumulativeReturn(types.Series{math.NaN(), 0.10, -0.10}), curve.Last(), 1e-12)
}

func (suite *BacktestTestSuite) TestAggregate() {
	result := Aggregate("MACD", types.Series{math.NaN(), 0.5})
	suite.Equal("MACD", result.Name)
	suite.InDelta(0.5, result.CumulativeReturn, 1e-12)
}

func (suite *BacktestTestSuite) TestRankStable() {
	results := []types.StrategyResult{
		{Name: "A", CumulativeReturn: 0.1},
		{Name: "B", CumulativeReturn: 0.3},
		{Name: "C", CumulativeReturn: 0.1},
		{Name: "D", CumulativeReturn: -0.2},
	}

	ranked := Rank(results)
	suite.Equal([]string{"B", "A", "C", "D"}, names(ranked))
	// input untouched
	suite.Equal([]string{"A", "B", "C", "D"}, names(results))
}

func (suite *BacktestTestSuite) TestRankEmpty() {
	suite.Empty(Rank(nil))
}

func (suite *BacktestTestSuite) TestMaxDrawdown() {
	// equity 1.0, 1.2, 0.9, 1.1
	suite.InDelta(0.25, MaxDrawdown(types.Series{0, 0.2, -0.1, 0.1}), 1e-12)
	suite.Equal(0.0, MaxDrawdown(types.Series{0, 0.1, 0.2}))
	suite.Equal(0.0, MaxDrawdown(nil))
}

func (suite *BacktestTestSuite) TestSharpeRatio() {
	suite.Equal(0.0, SharpeRatio(types.Series{math.NaN(), 0.01}))
	suite.Equal(0.0, SharpeRatio(types.Series{0.01, 0.01, 0.01}))

	sharpe := SharpeRatio(types.Series{math.NaN(), 0.01, 0.03})
	// mean 0.02, sample stddev sqrt(0.0002)
	suite.InDelta(0.02/math.Sqrt(0.0002)*math.Sqrt(252), sharpe, 1e-9)
}

func (suite *BacktestTestSuite) TestStats() {
	positions := types.PositionSeries{F, L, L, F, L}
	returns := types.Series{math.NaN(), 0.1, 0.1, -0.5, 0.2}
	strategyReturns, err := Attribute(positions, returns)
	suite.Require().NoError(err)

	stats := Stats("X", types.StrategyTypeMACD, positions, strategyReturns)
	suite.Equal("X", stats.Name)
	suite.Equal(types.StrategyTypeMACD, stats.Type)
	suite.Equal(2, stats.NumberOfTrades)
	suite.InDelta(0.6, stats.Exposure, 1e-12)
	// earns bar 2 (+10%) and bar 3 (-50%)
	suite.InDelta(1.1*0.5-1, stats.CumulativeReturn, 1e-12)
	suite.InDelta(0.5, stats.MaxDrawdown, 1e-12)
	suite.Len(stats.Curve, 5)
}

func names(results []types.StrategyResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}

	return out
}
