package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	engine_v1 "github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-compare/internal/strategy"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/utils"
)

const (
	schemaTargetConfig = "config"
	schemaTargetReport = "report"
	schemaTargetParams = "params"
)

func schemaFor(target string, strategyType string) (string, error) {
	switch target {
	case schemaTargetConfig:
		return engine_v1.NewComparisonEngineV1().GetConfigSchema()
	case schemaTargetReport:
		return utils.GetSchemaFromConfig(types.Report{})
	case schemaTargetParams:
		if strategyType == "" {
			return "", fmt.Errorf("--strategy is required for the params schema, one of %s", supportedStrategies())
		}

		return strategy.ParamsSchema(types.StrategyType(strategyType))
	default:
		return "", fmt.Errorf("unknown schema target %q", target)
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := schemaFor(cmd.String("target"), cmd.String("strategy"))
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}
