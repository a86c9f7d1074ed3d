package engine

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-compare/internal/backtest/engine"
	"github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/internal/version"
	"github.com/rxtech-lab/argo-compare/mocks"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// scriptedStrategy returns a fixed rule, or fails, regardless of the bars.
type scriptedStrategy struct {
	name string
	rule signal.Rule
	err  error
}

func (s *scriptedStrategy) Name() string { return s.name }

func (s *scriptedStrategy) Type() types.StrategyType { return types.StrategyTypeMACross }

func (s *scriptedStrategy) Rule(_ types.Bars) (signal.Rule, error) {
	return s.rule, s.err
}

func crossing(name string, line ...float64) *scriptedStrategy {
	return &scriptedStrategy{name: name, rule: signal.CrossoverRule(line, types.Constant(1, len(line)))}
}

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type ComparisonEngineTestSuite struct {
	suite.Suite
	engine *ComparisonEngineV1
	bars   types.Bars
}

func TestComparisonEngineSuite(t *testing.T) {
	suite.Run(t, new(ComparisonEngineTestSuite))
}

func (suite *ComparisonEngineTestSuite) SetupTest() {
	e, ok := NewComparisonEngineV1().(*ComparisonEngineV1)
	suite.Require().True(ok)

	suite.engine = e
	suite.bars = mocks.BarsFromCloses(start, 100, 110, 99)
}

func (suite *ComparisonEngineTestSuite) load(strategies ...*scriptedStrategy) {
	for _, s := range strategies {
		suite.Require().NoError(suite.engine.LoadStrategy(s))
	}
}

func (suite *ComparisonEngineTestSuite) TestRunBarsCompoundsLaggedPositions() {
	// long from bar 1 earns only the -10% of bar 2
	suite.load(crossing("long", 0, 2, 2), crossing("flat", 0, 0, 0))

	report, err := suite.engine.RunBars(context.Background(), suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{})
	suite.Require().NoError(err)

	suite.Require().Len(report.Results, 2)
	suite.Equal("long", report.Results[0].Name)
	suite.InDelta(-0.10, report.Results[0].CumulativeReturn, 1e-12)
	suite.Equal("flat", report.Results[1].Name)
	suite.InDelta(0.0, report.Results[1].CumulativeReturn, 1e-12)

	suite.InDelta(-0.01, report.BuyAndHold, 1e-12)
	suite.Equal(3, report.NumberOfBars)
	suite.Equal(start, report.Start)
	suite.Equal(start.AddDate(0, 0, 2), report.End)
	suite.NotEmpty(report.RunID)
	suite.Empty(report.Failures)

	suite.Require().Len(report.Stats, 2)
	suite.Equal(1, report.Stats[0].NumberOfTrades)
	suite.InDelta(2.0/3.0, report.Stats[0].Exposure, 1e-12)
}

func (suite *ComparisonEngineTestSuite) TestRunBarsRanks() {
	suite.engine.config.Rank = true
	suite.load(crossing("long", 0, 2, 2), crossing("flat", 0, 0, 0), crossing("also-flat", 0, 0, 0))

	report, err := suite.engine.RunBars(context.Background(), suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{})
	suite.Require().NoError(err)

	names := make([]string, len(report.Results))
	for i, r := range report.Results {
		names[i] = r.Name
	}

	suite.Equal([]string{"flat", "also-flat", "long"}, names)
}

func (suite *ComparisonEngineTestSuite) TestRunBarsIsolatesStageFailures() {
	suite.load(
		crossing("good", 0, 2, 2),
		&scriptedStrategy{name: "broken-indicator", err: errors.New(errors.ErrCodeIndicatorCalculation, "boom")},
		crossing("misaligned", 0, 2, 2, 2),
	)

	var (
		mu    sync.Mutex
		ended = map[string]error{}
	)

	onEnd := engine.OnStrategyEndCallback(func(_ int, name string, err error) {
		mu.Lock()
		defer mu.Unlock()

		ended[name] = err
	})

	report, err := suite.engine.RunBars(context.Background(), suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{OnStrategyEnd: &onEnd})
	suite.Require().NoError(err)

	suite.Require().Len(report.Results, 1)
	suite.Equal("good", report.Results[0].Name)

	suite.Require().Len(report.Failures, 2)
	suite.Equal("broken-indicator", report.Failures[0].Strategy)
	suite.Equal(engine.StageIndicator, report.Failures[0].Stage)
	suite.Equal("misaligned", report.Failures[1].Strategy)
	suite.Equal(engine.StageAttribution, report.Failures[1].Stage)

	suite.NoError(ended["good"])

	var stageErr *errors.StageError
	suite.Require().True(errors.As(ended["misaligned"], &stageErr))
	suite.Equal(engine.StageAttribution, stageErr.Stage)
	suite.True(errors.IsInvalidSeriesError(stageErr))
}

func (suite *ComparisonEngineTestSuite) TestRunBarsSingleBarFailsAtSignalStage() {
	suite.load(crossing("one", 2))

	report, err := suite.engine.RunBars(context.Background(), suite.bars[:1], optional.None[types.Series](), engine.LifecycleCallbacks{})
	suite.Require().NoError(err)

	suite.Empty(report.Results)
	suite.Require().Len(report.Failures, 1)
	suite.Equal(engine.StageSignal, report.Failures[0].Stage)
}

func (suite *ComparisonEngineTestSuite) TestRunBarsRejectsUnorderedBars() {
	suite.load(crossing("long", 0, 2, 2))

	bars := mocks.BarsFromCloses(start, 100, 110, 99)
	bars[2].Date = bars[1].Date

	var endErr error

	onEnd := engine.OnBacktestEndCallback(func(err error) { endErr = err })

	_, err := suite.engine.RunBars(context.Background(), bars, optional.None[types.Series](), engine.LifecycleCallbacks{OnBacktestEnd: &onEnd})
	suite.Require().Error(err)
	suite.True(errors.IsInvalidSeriesError(err))
	suite.Equal(err, endErr)
}

func (suite *ComparisonEngineTestSuite) TestRunBarsRejectsMisalignedReturns() {
	suite.load(crossing("long", 0, 2, 2))

	_, err := suite.engine.RunBars(context.Background(), suite.bars, optional.Some(types.Series{0, 0.1}), engine.LifecycleCallbacks{})
	suite.True(errors.IsInvalidSeriesError(err))
}

func (suite *ComparisonEngineTestSuite) TestRunBarsUsesSuppliedReturns() {
	suite.load(crossing("long", 0, 2, 2))

	report, err := suite.engine.RunBars(context.Background(), suite.bars, optional.Some(types.Series{0, 0.5, 0.2}), engine.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.InDelta(0.2, report.Results[0].CumulativeReturn, 1e-12)
	suite.InDelta(0.8, report.BuyAndHold, 1e-12)
}

func (suite *ComparisonEngineTestSuite) TestRunBarsNoStrategies() {
	_, err := suite.engine.RunBars(context.Background(), suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoStrategies))
}

func (suite *ComparisonEngineTestSuite) TestRunBarsCancelled() {
	suite.load(crossing("long", 0, 2, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.engine.RunBars(ctx, suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{})
	suite.ErrorIs(err, context.Canceled)
}

func (suite *ComparisonEngineTestSuite) TestRunBarsCallbackAborts() {
	suite.load(crossing("long", 0, 2, 2))

	abort := engine.OnStrategyStartCallback(func(int, string, int) error {
		return fmt.Errorf("stop")
	})

	_, err := suite.engine.RunBars(context.Background(), suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{OnStrategyStart: &abort})
	suite.EqualError(err, "stop")
}

func (suite *ComparisonEngineTestSuite) TestRunBarsCallbackOrder() {
	suite.load(crossing("long", 0, 2, 2))

	var calls []string

	onStart := engine.OnBacktestStartCallback(func(strategies, bars int) error {
		calls = append(calls, fmt.Sprintf("start %d %d", strategies, bars))

		return nil
	})
	onRun := engine.OnRunStartCallback(func(runID, symbol string, bars int) error {
		calls = append(calls, fmt.Sprintf("run %d", bars))

		return nil
	})
	onEnd := engine.OnBacktestEndCallback(func(err error) {
		calls = append(calls, fmt.Sprintf("end %v", err))
	})

	_, err := suite.engine.RunBars(context.Background(), suite.bars, optional.None[types.Series](), engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnRunStart:      &onRun,
		OnBacktestEnd:   &onEnd,
	})
	suite.Require().NoError(err)
	suite.Equal([]string{"start 1 3", "run 3", "end <nil>"}, calls)
}

func (suite *ComparisonEngineTestSuite) TestParallelismDoesNotChangeResults() {
	bars := mocks.NewDataGenerator(7).GenerateBars(mocks.DefaultConfig(), 300)

	run := func(parallelism int) types.Report {
		e, _ := NewComparisonEngineV1().(*ComparisonEngineV1)
		suite.Require().NoError(e.Initialize("parallelism: " + fmt.Sprint(parallelism) + "\nstrategies:\n  - type: macd\n  - type: ao\n  - type: bollinger\n  - type: ma_cross\n  - type: rsi\n"))

		report, err := e.RunBars(context.Background(), bars, optional.None[types.Series](), engine.LifecycleCallbacks{})
		suite.Require().NoError(err)

		return report
	}

	sequential := run(1)
	parallel := run(0)

	suite.Require().Len(sequential.Results, 5)
	suite.Equal(sequential.Results, parallel.Results)
	suite.Equal([]string{"macd", "ao", "bollinger", "ma_cross", "rsi"}, []string{
		sequential.Results[0].Name, sequential.Results[1].Name, sequential.Results[2].Name,
		sequential.Results[3].Name, sequential.Results[4].Name,
	})
}

func (suite *ComparisonEngineTestSuite) TestLoadStrategyRejectsDuplicates() {
	suite.load(crossing("long", 0, 2, 2))

	err := suite.engine.LoadStrategy(crossing("long", 0, 0, 0))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyAlreadyExists))

	err = suite.engine.LoadStrategy(nil)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

func (suite *ComparisonEngineTestSuite) TestInitializeRejectsBadConfig() {
	err := suite.engine.Initialize("strategies:\n  - type: ichimoku\n")
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))

	err = suite.engine.Initialize("strategies:\n  - type: macd\n    params:\n      fast: 40\n")
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestConfigError))
}

func (suite *ComparisonEngineTestSuite) TestGetConfigSchema() {
	schema, err := suite.engine.GetConfigSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, "comparison-engine-v1-config")
}

func TestComparisonEngineV1_RunWithMockDataSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bars := mocks.BarsFromCloses(start, 100, 110, 99)
	mockDatasource := mocks.NewMockDataSource(ctrl)

	readAll := func(yield func(types.PriceBar, error) bool) {
		for _, bar := range bars {
			if !yield(bar, nil) {
				return
			}
		}
	}

	mockDatasource.EXPECT().Initialize("/data/prices.csv").Return(nil)
	mockDatasource.EXPECT().Count(gomock.Any(), gomock.Any()).Return(len(bars), nil)
	mockDatasource.EXPECT().ReadAll(gomock.Any(), gomock.Any()).Return(readAll)
	mockDatasource.EXPECT().Columns().Return([]string{"Date", "Open", "High", "Low", "Close", "Volume", datasource.ColumnReturns}, nil)
	mockDatasource.EXPECT().ReadColumn(datasource.ColumnReturns, gomock.Any(), gomock.Any()).Return(types.Series{0, 0.5, 0.2}, nil)

	e, ok := NewComparisonEngineV1().(*ComparisonEngineV1)
	require.True(t, ok)
	require.NoError(t, e.SetDataSource(mockDatasource))
	require.NoError(t, e.SetDataPath("/data/prices.csv"))
	require.NoError(t, e.LoadStrategy(crossing("long", 0, 2, 2)))

	report, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	require.NoError(t, err)

	assert.Equal(t, "/data/prices.csv", report.DataPath)
	require.Len(t, report.Results, 1)
	assert.InDelta(t, 0.2, report.Results[0].CumulativeReturn, 1e-12)
}

func TestComparisonEngineV1_RunReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDatasource := mocks.NewMockDataSource(ctrl)
	mockDatasource.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	mockDatasource.EXPECT().ReadAll(gomock.Any(), gomock.Any()).Return(func(yield func(types.PriceBar, error) bool) {
		yield(types.PriceBar{}, errors.New(errors.ErrCodeQueryFailed, "disk on fire"))
	})

	e := NewComparisonEngineV1()
	require.NoError(t, e.SetDataSource(mockDatasource))
	require.NoError(t, e.LoadStrategy(crossing("long", 0, 2, 2)))

	_, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeQueryFailed))
}

func TestComparisonEngineV1_RunFailsFastOnShortRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDatasource := mocks.NewMockDataSource(ctrl)
	mockDatasource.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)

	e := NewComparisonEngineV1()
	require.NoError(t, e.SetDataSource(mockDatasource))
	require.NoError(t, e.LoadStrategy(crossing("long", 0, 2, 2)))

	_, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	require.Error(t, err)
	assert.True(t, errors.IsInsufficientDataError(err))
}

func TestComparisonEngineV1_RunDropsReturnBeforeWindow(t *testing.T) {
	bars := mocks.BarsFromCloses(start, 100, 150, 150, 150)
	ds, err := datasource.NewInMemoryDataSource(bars, map[string]types.Series{
		datasource.ColumnReturns: {math.NaN(), 0.5, 0, 0},
	})
	require.NoError(t, err)

	config := TestConfig(start.AddDate(0, 0, 1), start.AddDate(0, 0, 3))
	e, err := NewComparisonEngineV1FromConfig(config)
	require.NoError(t, err)
	require.NoError(t, e.SetDataSource(ds))

	report, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.NumberOfBars)
	assert.InDelta(t, 0.0, report.BuyAndHold, 1e-12)

	for _, result := range report.Results {
		assert.InDelta(t, 0.0, result.CumulativeReturn, 1e-12, result.Name)
	}
}

func TestComparisonEngineV1_RunWithoutDataSource(t *testing.T) {
	e := NewComparisonEngineV1()
	require.NoError(t, e.LoadStrategy(crossing("long", 0, 2, 2)))

	_, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestNoDatasource))
}

func TestComparisonEngineV1_RunFromCSV(t *testing.T) {
	bars := mocks.NewDataGenerator(42).GenerateBars(mocks.DefaultConfig(), 200)

	var sb strings.Builder

	sb.WriteString("Date,Open,High,Low,Close,Volume\n")

	for _, bar := range bars {
		fmt.Fprintf(&sb, "%s,%g,%g,%g,%g,%d\n", bar.Date.Format(time.DateOnly), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	e := NewComparisonEngineV1()
	require.NoError(t, e.Initialize(fmt.Sprintf("version: %s\nsymbol: GEN\ndata_path: %s\nlog_level: error\n", version.GetVersion(), path)))

	report, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	require.NoError(t, err)

	assert.Equal(t, "GEN", report.Symbol)
	assert.Equal(t, 200, report.NumberOfBars)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "MACD", report.Results[0].Name)
	assert.Equal(t, "AO", report.Results[1].Name)
	assert.Equal(t, "Bollinger", report.Results[2].Name)
	assert.Empty(t, report.Failures)

	v1, ok := e.(*ComparisonEngineV1)
	require.True(t, ok)
	assert.Nil(t, v1.datasource, "the datasource the engine opened is closed after the run")
	assert.False(t, v1.ownsDatasource)

	again, err := e.Run(context.Background(), engine.LifecycleCallbacks{})
	require.NoError(t, err)
	assert.Equal(t, report.Results, again.Results)
}
