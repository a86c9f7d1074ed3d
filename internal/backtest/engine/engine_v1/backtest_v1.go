package engine

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/argo-compare/internal/backtest"
	"github.com/rxtech-lab/argo-compare/internal/backtest/engine"
	"github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-compare/internal/logger"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/strategy"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

type ComparisonEngineV1 struct {
	config     ComparisonEngineV1Config
	strategies []strategy.Strategy
	loaded     []strategy.Strategy
	dataPath   string
	log        *logger.Logger
	datasource datasource.DataSource
	// ownsDatasource is set when Run created the datasource and must close it.
	ownsDatasource bool
}

// strategyOutcome is the output slot one strategy writes during a run.
type strategyOutcome struct {
	result types.StrategyResult
	stats  types.StrategyStats
	err    *errors.StageError
}

func NewComparisonEngineV1() engine.Engine {
	return &ComparisonEngineV1{
		config:     EmptyConfig(),
		strategies: nil,
		loaded:     nil,
		dataPath:   "",
		log:        logger.NewNopLogger(),
		datasource: nil,
	}
}

// NewComparisonEngineV1WithLogger creates an engine that logs through log until Initialize replaces it.
func NewComparisonEngineV1WithLogger(log *logger.Logger) engine.Engine {
	e := NewComparisonEngineV1().(*ComparisonEngineV1)
	e.log = log

	return e
}

// NewComparisonEngineV1FromConfig creates an engine from an already parsed configuration.
func NewComparisonEngineV1FromConfig(config ComparisonEngineV1Config) (engine.Engine, error) {
	e := &ComparisonEngineV1{
		config: EmptyConfig(),
		log:    logger.NewNopLogger(),
	}

	if err := e.Configure(config); err != nil {
		return nil, err
	}

	return e, nil
}

// Initialize implements engine.Engine.
func (b *ComparisonEngineV1) Initialize(config string) error {
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	return b.Configure(parsed)
}

// Configure validates config and builds the configured strategies.
func (b *ComparisonEngineV1) Configure(config ComparisonEngineV1Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	log, err := config.Logger()
	if err != nil {
		return err
	}

	strategies := make([]strategy.Strategy, 0, len(config.Strategies))

	for _, cfg := range config.Strategies {
		s, err := strategy.New(cfg)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "failed to create strategy %s", cfg.DisplayName())
		}

		strategies = append(strategies, s)
	}

	b.config = config
	b.log = log
	b.strategies = strategies

	if config.DataPath != "" && b.dataPath == "" {
		b.dataPath = config.DataPath
	}

	b.log.Debug("Comparison engine initialized",
		zap.String("symbol", config.Symbol),
		zap.Int("strategies", len(strategies)),
		zap.Int("parallelism", config.Parallelism),
	)

	return nil
}

// Config returns the active configuration.
func (b *ComparisonEngineV1) Config() ComparisonEngineV1Config {
	return b.config
}

// SetDataPath implements engine.Engine.
func (b *ComparisonEngineV1) SetDataPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		b.log.Error("Failed to get absolute path",
			zap.String("path", path),
			zap.Error(err),
		)

		return err
	}

	b.dataPath = absPath
	b.log.Debug("Data path set", zap.String("path", absPath))

	return nil
}

// SetDataSource implements engine.Engine.
func (b *ComparisonEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	b.datasource = dataSource

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *ComparisonEngineV1) LoadStrategy(s strategy.Strategy) error {
	if s == nil {
		return errors.New(errors.ErrCodeStrategyNotFound, "strategy is nil")
	}

	for _, existing := range b.allStrategies() {
		if existing.Name() == s.Name() {
			return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "strategy %s already loaded", s.Name())
		}
	}

	b.loaded = append(b.loaded, s)
	b.log.Debug("Strategy loaded",
		zap.String("strategy", s.Name()),
		zap.Int("total_strategies", len(b.allStrategies())),
	)

	return nil
}

func (b *ComparisonEngineV1) allStrategies() []strategy.Strategy {
	all := make([]strategy.Strategy, 0, len(b.strategies)+len(b.loaded))
	all = append(all, b.strategies...)

	return append(all, b.loaded...)
}

// Run implements engine.Engine.
func (b *ComparisonEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (types.Report, error) {
	if err := b.preRunCheck(); err != nil {
		return types.Report{}, err
	}

	if b.ownsDatasource {
		defer b.releaseDatasource()
	}

	if b.dataPath != "" {
		if err := b.datasource.Initialize(b.dataPath); err != nil {
			return types.Report{}, fmt.Errorf("failed to initialize data source: %w", err)
		}
	}

	count, err := b.datasource.Count(b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to count bars: %w", err)
	}

	if count < 2 {
		b.log.Error("Not enough bars to compare", zap.Int("bars", count))

		return types.Report{}, errors.NewInsufficientDataErrorf(2, count, "",
			"need at least 2 bars in the selected range, found %d", count)
	}

	bars, err := datasource.ReadBars(b.datasource, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to read bars: %w", err)
	}

	returns, err := datasource.ReadReturns(b.datasource, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to read returns: %w", err)
	}

	if returns.IsSome() {
		b.log.Debug("Using precomputed returns column")
	}

	report, err := b.RunBars(ctx, bars, returns, callbacks)
	report.DataPath = b.dataPath

	return report, err
}

// releaseDatasource closes a datasource Run created so the next Run starts fresh.
func (b *ComparisonEngineV1) releaseDatasource() {
	if err := b.datasource.Close(); err != nil {
		b.log.Warn("Failed to close data source", zap.Error(err))
	}

	b.datasource = nil
	b.ownsDatasource = false
}

// RunBars implements engine.Engine.
func (b *ComparisonEngineV1) RunBars(ctx context.Context, bars types.Bars, returns optional.Option[types.Series], callbacks engine.LifecycleCallbacks) (report types.Report, err error) {
	strategies := b.allStrategies()

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(strategies), len(bars)); err != nil {
			return types.Report{}, err
		}
	}

	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if len(strategies) == 0 {
		return types.Report{}, errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if err := bars.Validate(); err != nil {
		b.log.Error("Invalid price history", zap.Error(err))

		return types.Report{}, err
	}

	dailyReturns := bars.Returns()
	if returns.IsSome() {
		dailyReturns = returns.Unwrap()
	}

	if err := types.CheckAligned(len(bars), dailyReturns); err != nil {
		b.log.Error("Returns are not aligned with bars", zap.Error(err))

		return types.Report{}, err
	}

	// the first bar's return was earned before the window starts
	dailyReturns = slices.Clone(dailyReturns)
	if len(dailyReturns) > 0 {
		dailyReturns[0] = math.NaN()
	}

	runID := uuid.New().String()

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, b.config.Symbol, len(bars)); err != nil {
			return types.Report{}, err
		}
	}

	b.log.Info("Comparison started",
		zap.String("run_id", runID),
		zap.String("symbol", b.config.Symbol),
		zap.Int("bars", len(bars)),
		zap.Int("strategies", len(strategies)),
	)

	outcomes := make([]*strategyOutcome, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit())

	for i, s := range strategies {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if callbacks.OnStrategyStart != nil {
				if err := (*callbacks.OnStrategyStart)(i, s.Name(), len(strategies)); err != nil {
					return err
				}
			}

			outcome := b.evaluate(s, bars, dailyReturns)
			outcomes[i] = outcome

			if callbacks.OnStrategyEnd != nil {
				var stageErr error
				if outcome.err != nil {
					stageErr = outcome.err
				}

				(*callbacks.OnStrategyEnd)(i, s.Name(), stageErr)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.Report{}, err
	}

	if err := ctx.Err(); err != nil {
		b.log.Warn("Comparison cancelled", zap.String("run_id", runID), zap.Error(err))

		return types.Report{}, err
	}

	report = b.buildReport(runID, bars, dailyReturns, outcomes)

	b.log.Info("Comparison finished",
		zap.String("run_id", runID),
		zap.Int("succeeded", len(report.Results)),
		zap.Int("failed", len(report.Failures)),
	)

	return report, nil
}

// evaluate runs one strategy through the indicator, signal and attribution stages.
// A stage failure is recorded in the outcome so sibling strategies continue.
func (b *ComparisonEngineV1) evaluate(s strategy.Strategy, bars types.Bars, returns types.Series) *strategyOutcome {
	fail := func(stage string, err error) *strategyOutcome {
		b.log.Warn("Strategy failed",
			zap.String("strategy", s.Name()),
			zap.String("stage", stage),
			zap.Error(err),
		)

		return &strategyOutcome{err: errors.NewStageError(s.Name(), stage, err)}
	}

	b.log.Debug("Running strategy", zap.String("strategy", s.Name()))

	rule, err := s.Rule(bars)
	if err != nil {
		return fail(engine.StageIndicator, err)
	}

	positions, err := signal.Derive(rule)
	if err != nil {
		return fail(engine.StageSignal, err)
	}

	strategyReturns, err := backtest.Attribute(positions, returns)
	if err != nil {
		return fail(engine.StageAttribution, err)
	}

	result := backtest.Aggregate(s.Name(), strategyReturns)

	b.log.Debug("Strategy finished",
		zap.String("strategy", s.Name()),
		zap.Float64("cumulative_return", result.CumulativeReturn),
	)

	return &strategyOutcome{
		result: result,
		stats:  backtest.Stats(s.Name(), s.Type(), positions, strategyReturns),
	}
}

func (b *ComparisonEngineV1) buildReport(runID string, bars types.Bars, returns types.Series, outcomes []*strategyOutcome) types.Report {
	report := types.Report{
		RunID:        runID,
		Timestamp:    time.Now(),
		Symbol:       b.config.Symbol,
		DataPath:     "",
		NumberOfBars: len(bars),
		Start:        time.Time{},
		End:          time.Time{},
		Results:      []types.StrategyResult{},
		Stats:        []types.StrategyStats{},
		BuyAndHold:   backtest.CumulativeReturn(returns),
		Failures:     nil,
	}

	if len(bars) > 0 {
		report.Start = bars[0].Date
		report.End = bars[len(bars)-1].Date
	}

	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}

		if outcome.err != nil {
			report.Failures = append(report.Failures, types.Failure{
				Strategy: outcome.err.Strategy,
				Stage:    outcome.err.Stage,
				Error:    outcome.err.Err.Error(),
			})

			continue
		}

		report.Results = append(report.Results, outcome.result)
		report.Stats = append(report.Stats, outcome.stats)
	}

	if b.config.Rank {
		report.Results = backtest.Rank(report.Results)
	}

	return report
}

func (b *ComparisonEngineV1) limit() int {
	if b.config.Parallelism <= 0 {
		return -1
	}

	return b.config.Parallelism
}

// GetConfigSchema implements engine.Engine.
func (b *ComparisonEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *ComparisonEngineV1) preRunCheck() error {
	if len(b.allStrategies()) == 0 {
		b.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if b.datasource == nil {
		if b.dataPath == "" {
			b.log.Error("No datasource set")

			return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set and no data path configured")
		}

		ds, err := datasource.NewDataSource("", b.log)
		if err != nil {
			return err
		}

		b.datasource = ds
		b.ownsDatasource = true
	}

	return nil
}
