package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-compare/internal/features"
	"github.com/rxtech-lab/argo-compare/internal/logger"
	"github.com/rxtech-lab/argo-compare/internal/types"
)

func dateFlag(cmd *cli.Command, name string) optional.Option[time.Time] {
	if !cmd.IsSet(name) {
		return optional.None[time.Time]()
	}

	return optional.Some(cmd.Timestamp(name))
}

func listFeatures(w io.Writer, engineer *features.Engineer) {
	names := lo.Map(engineer.Indicators(), func(t types.IndicatorType, _ int) string { return string(t) })

	fmt.Fprintf(w, "Indicators: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Columns: %s\n", strings.Join(features.Columns(), ", "))
}

// buildTable keeps a supplied returns column, which only lines up with the bars as read.
func buildTable(engineer *features.Engineer, bars types.Bars, returns optional.Option[types.Series]) (features.Table, error) {
	if returns.IsSome() {
		return engineer.BuildWithReturns(bars, returns.Unwrap())
	}

	return engineer.Build(datasource.Clean(bars))
}

func featuresAction(_ context.Context, cmd *cli.Command) error {
	engineer := features.NewEngineer()

	if cmd.Bool("list") {
		listFeatures(cmd.Root().Writer, engineer)

		return nil
	}

	dataPath := cmd.String("data")
	outputPath := cmd.String("output")

	if dataPath == "" || outputPath == "" {
		return fmt.Errorf("--data and --output are required")
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ds, err := datasource.NewDataSource("", log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := ds.Initialize(dataPath); err != nil {
		return err
	}

	start, end := dateFlag(cmd, "start"), dateFlag(cmd, "end")

	bars, err := datasource.ReadBars(ds, start, end)
	if err != nil {
		return err
	}

	returns, err := datasource.ReadReturns(ds, start, end)
	if err != nil {
		return err
	}

	table, err := buildTable(engineer, bars, returns)
	if err != nil {
		return err
	}

	path, err := features.WriteTable(features.NewDuckDBWriter(outputPath, log), table)
	if err != nil {
		return err
	}

	log.Info("Feature table written",
		zap.String("path", path),
		zap.Int("rows", len(table.Bars)),
		zap.Int("columns", len(table.Columns)),
	)

	return nil
}
