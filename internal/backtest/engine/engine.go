package engine

import (
	"context"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-compare/internal/strategy"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

// Lifecycle callback types for comparison phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the comparison begins.
type OnBacktestStartCallback func(totalStrategies int, totalBars int) error

// OnBacktestEndCallback is called when the comparison completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called once the bars are loaded and validated.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, symbol string, totalBars int) error

// OnStrategyStartCallback is called when a strategy is scheduled.
// Strategies may run in parallel, so calls can interleave.
type OnStrategyStartCallback func(strategyIndex int, strategyName string, totalStrategies int) error

// OnStrategyEndCallback is called when a strategy finishes; err is its stage failure, if any.
type OnStrategyEndCallback func(strategyIndex int, strategyName string, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the comparison engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnStrategyStart *OnStrategyStartCallback
	OnStrategyEnd   *OnStrategyEndCallback
}

// Stage names reported in StageError and the report failures.
const (
	StageIndicator   = "indicator"
	StageSignal      = "signal"
	StageAttribution = "attribution"
)

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration content.
	Initialize(config string) error
	// SetDataPath sets the path to the price file (CSV or Parquet), overriding the configured one.
	SetDataPath(path string) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// LoadStrategy adds a strategy to the comparison. Could be called multiple times to load multiple strategies.
	// Loaded strategies run after the configured ones.
	LoadStrategy(strategy strategy.Strategy) error
	// Run loads the bars from the data source and compares every strategy over them.
	// The context can be used to stop scheduling further strategies.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (types.Report, error)
	// RunBars compares every strategy over bars already in memory. When returns is None
	// the simple close-to-close returns of bars are used.
	RunBars(ctx context.Context, bars types.Bars, returns optional.Option[types.Series], callbacks LifecycleCallbacks) (types.Report, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
