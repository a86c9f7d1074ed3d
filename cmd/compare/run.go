package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-compare/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-compare/internal/report"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

// loadConfig reads the config file when one is given and applies the flag overrides on top.
func loadConfig(cmd *cli.Command) (engine_v1.ComparisonEngineV1Config, error) {
	config := engine_v1.EmptyConfig()

	if path := cmd.String("config"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err = engine_v1.ParseConfig(string(content))
		if err != nil {
			return config, err
		}
	}

	if cmd.IsSet("data") {
		config.DataPath = cmd.String("data")
	}

	if cmd.IsSet("symbol") {
		config.Symbol = cmd.String("symbol")
	}

	if cmd.IsSet("start") {
		config.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		config.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	if cmd.IsSet("rank") {
		config.Rank = cmd.Bool("rank")
	}

	if cmd.IsSet("parallelism") {
		config.Parallelism = int(cmd.Int("parallelism"))
	}

	if cmd.IsSet("output") {
		config.Output = cmd.String("output")
	}

	if cmd.IsSet("log-level") {
		config.LogLevel = cmd.String("log-level")
	}

	return config, nil
}

func progressCallbacks(enabled bool) engine.LifecycleCallbacks {
	if !enabled {
		return engine.LifecycleCallbacks{}
	}

	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(totalStrategies int, _ int) error {
		bar = progressbar.Default(int64(totalStrategies), "comparing")

		return nil
	})

	onStrategyEnd := engine.OnStrategyEndCallback(func(_ int, _ string, _ error) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})

	onEnd := engine.OnBacktestEndCallback(func(_ error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnStrategyEnd:   &onStrategyEnd,
	}
}

// cleanBars loads the configured history and repairs it before the comparison.
func cleanBars(config engine_v1.ComparisonEngineV1Config) (types.Bars, error) {
	if config.DataPath == "" {
		return nil, fmt.Errorf("--clean needs a data file, set --data or data_path")
	}

	log, err := config.Logger()
	if err != nil {
		return nil, err
	}

	ds, err := datasource.NewDataSource("", log)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	if err := ds.Initialize(config.DataPath); err != nil {
		return nil, err
	}

	bars, err := datasource.ReadBars(ds, config.StartTime, config.EndTime)
	if err != nil {
		return nil, err
	}

	return datasource.Clean(bars), nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine_v1.NewComparisonEngineV1FromConfig(config)
	if err != nil {
		return fmt.Errorf("failed to create comparison engine: %w", err)
	}

	callbacks := progressCallbacks(!cmd.Bool("no-progress"))

	var result types.Report

	if cmd.Bool("clean") {
		bars, err := cleanBars(config)
		if err != nil {
			return err
		}

		result, err = e.RunBars(ctx, bars, optional.None[types.Series](), callbacks)
		if err != nil {
			return err
		}

		result.DataPath = config.DataPath
	} else {
		result, err = e.Run(ctx, callbacks)
		if err != nil {
			return err
		}
	}

	if err := report.NewPrinter(os.Stdout).Print(result); err != nil {
		return err
	}

	if config.Output != "" {
		if err := types.WriteReport(config.Output, result); err != nil {
			return err
		}
	}

	return nil
}
