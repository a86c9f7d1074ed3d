package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-compare/internal/strategy"
)

var dateFlagConfig = cli.TimestampConfig{
	Layouts: []string{"2006-01-02"},
}

func supportedStrategies() string {
	names := make([]string, 0, len(strategy.SupportedTypes()))
	for _, t := range strategy.SupportedTypes() {
		names = append(names, string(t))
	}

	return strings.Join(names, ", ")
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Compare technical-indicator strategies over the same price history",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Evaluate every configured strategy and print the cumulative returns",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML comparison config. Defaults to MACD, AO and Bollinger bands",
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to a CSV or Parquet price file, overrides data_path",
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Ticker shown in the report",
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "First date in `YYYY-MM-DD` format",
						Config:  dateFlagConfig,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "Last date in `YYYY-MM-DD` format",
						Config:  dateFlagConfig,
					},
					&cli.BoolFlag{
						Name:  "rank",
						Usage: "Sort the results by cumulative return, best first",
					},
					&cli.IntFlag{
						Name:    "parallelism",
						Aliases: []string{"p"},
						Usage:   "Maximum number of strategies evaluated at once, 0 means unlimited",
					},
					&cli.BoolFlag{
						Name:  "clean",
						Usage: "Sort, deduplicate and forward-fill the bars before evaluating",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the YAML report to this path",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "One of debug, info, warn, error",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Disable the progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:  "features",
				Usage: "Compute the indicator feature table of a price file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to a CSV or Parquet price file",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the feature file, .csv or .parquet",
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "First date in `YYYY-MM-DD` format",
						Config:  dateFlagConfig,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "Last date in `YYYY-MM-DD` format",
						Config:  dateFlagConfig,
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "Print the available indicators and feature columns, then exit",
					},
				},
				Action: featuresAction,
			},
			{
				Name:  "inspect",
				Usage: "Print the columns, bar count and last bar of a price file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to a CSV or Parquet price file",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "First date in `YYYY-MM-DD` format",
						Config:  dateFlagConfig,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "Last date in `YYYY-MM-DD` format",
						Config:  dateFlagConfig,
					},
					&cli.StringFlag{
						Name:  "sql",
						Usage: "Query to run against the price_data view",
					},
				},
				Action: inspectAction,
			},
			{
				Name:  "init",
				Usage: "Write the config schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory receiving the files",
						Value: "config",
					},
				},
				Action: initAction,
			},
			{
				Name:  "schema",
				Usage: "Print a JSON schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "One of config, report, params",
						Value: schemaTargetConfig,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: fmt.Sprintf("Strategy type for the params schema (%s)", supportedStrategies()),
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
