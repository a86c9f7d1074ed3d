package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-compare/internal/types"
)

func sampleReport() types.Report {
	return types.Report{
		RunID:        "run-1",
		Symbol:       "AAPL",
		NumberOfBars: 3,
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Results: []types.StrategyResult{
			{Name: "MACD", CumulativeReturn: 0.1234},
			{Name: "AO", CumulativeReturn: -0.1},
		},
		Stats: []types.StrategyStats{
			{Name: "AO", Type: types.StrategyTypeAO, NumberOfTrades: 2, Exposure: 0.5, MaxDrawdown: 0.2, SharpeRatio: -1.25},
			{Name: "MACD", Type: types.StrategyTypeMACD, NumberOfTrades: 1, Exposure: 0.25, SharpeRatio: 1.5},
		},
		BuyAndHold: 0.05,
		Failures:   []types.Failure{{Strategy: "RSI", Stage: "signal", Error: "need at least 2 bars"}},
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.34%", FormatPercent(0.1234))
	assert.Equal(t, "-10.00%", FormatPercent(-0.1))
	assert.Equal(t, "0.00%", FormatPercent(0))
	assert.Equal(t, "12.35%", FormatPercent(0.123456))
	assert.Equal(t, "n/a", FormatPercent(math.NaN()))
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{
		"MACD cumulative return: 12.34%",
		"AO cumulative return: -10.00%",
	}, Lines(sampleReport()))
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewPrinter(&out).Print(sampleReport()))

	text := out.String()
	assert.Contains(t, text, "Run run-1: AAPL, 3 bars from 2024-01-01 to 2024-01-03")
	assert.Contains(t, text, "MACD cumulative return: 12.34%")
	assert.Contains(t, text, "buy and hold cumulative return: 5.00%")
	assert.Contains(t, text, "STRATEGY")
	assert.Contains(t, text, "-1.25")
	assert.Contains(t, text, "Failed strategies:")
	assert.Contains(t, text, "need at least 2 bars")
}

func TestPrintEmptyReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewPrinter(&out).Print(types.Report{RunID: "empty"}))

	assert.Contains(t, out.String(), "Run empty: unnamed, 0 bars")
	assert.NotContains(t, out.String(), "STRATEGY")
}
