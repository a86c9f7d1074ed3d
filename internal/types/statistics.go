package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyResult is the terminal output of one strategy run.
type StrategyResult struct {
	// Name of the strategy as configured.
	Name string `yaml:"name" json:"name"`
	// CumulativeReturn is the compounded return, e.g. 0.1234 for +12.34%.
	CumulativeReturn float64 `yaml:"cumulative_return" json:"cumulative_return"`
}

type StrategyStats struct {
	// Name of the strategy as configured.
	Name string `yaml:"name" json:"name"`
	// Type is the built-in strategy kind.
	Type StrategyType `yaml:"type" json:"type"`
	// CumulativeReturn is the compounded return of the strategy.
	CumulativeReturn float64 `yaml:"cumulative_return" json:"cumulative_return"`
	// NumberOfTrades counts FLAT to LONG entries.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Exposure is the fraction of bars held LONG.
	Exposure float64 `yaml:"exposure" json:"exposure"`
	// MaxDrawdown is the largest peak-to-trough decline of the equity curve, as a positive fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// SharpeRatio is the annualized mean over stddev of daily strategy returns.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// Curve is the running cumulative return per bar.
	Curve []float64 `yaml:"curve,omitempty" json:"curve,omitempty"`
}

// Failure records a strategy that could not be evaluated.
type Failure struct {
	Strategy string `yaml:"strategy" json:"strategy"`
	Stage    string `yaml:"stage" json:"stage"`
	Error    string `yaml:"error" json:"error"`
}

type Report struct {
	// RunID is the unique identifier for this comparison run.
	RunID string `yaml:"run_id" json:"run_id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the instrument.
	Symbol string `yaml:"symbol" json:"symbol"`
	// DataPath is the path to the price file used for this run.
	DataPath string `yaml:"data_path,omitempty" json:"data_path,omitempty"`
	// NumberOfBars is the length of the evaluated history.
	NumberOfBars int `yaml:"number_of_bars" json:"number_of_bars"`
	// Start and End bound the evaluated history.
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end" json:"end"`
	// Results in configuration order, or ranked when requested.
	Results []StrategyResult `yaml:"results" json:"results"`
	// Stats carries the detailed statistics of each successful strategy.
	Stats []StrategyStats `yaml:"stats" json:"stats"`
	// BuyAndHold is the compounded raw return over the same history.
	BuyAndHold float64 `yaml:"buy_and_hold" json:"buy_and_hold"`
	// Failures lists the strategies that failed and at which stage.
	Failures []Failure `yaml:"failures,omitempty" json:"failures,omitempty"`
}

// Result looks up a strategy result by name.
func (r Report) Result(name string) (StrategyResult, bool) {
	for _, result := range r.Results {
		if result.Name == name {
			return result, true
		}
	}

	return StrategyResult{}, false
}

func WriteReport(path string, report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report to file: %w", err)
	}

	return nil
}
