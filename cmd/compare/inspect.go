package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-compare/internal/logger"
)

// inspect prints the layout of a price file and, when query is set, the rows it returns.
func inspect(w io.Writer, ds datasource.DataSource, start, end optional.Option[time.Time], query string) error {
	columns, err := ds.Columns()
	if err != nil {
		return err
	}

	count, err := ds.Count(start, end)
	if err != nil {
		return err
	}

	last, err := ds.ReadLastData()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Columns: %s\n", strings.Join(columns, ", "))
	fmt.Fprintf(w, "Bars in range: %d\n", count)
	fmt.Fprintf(w, "Last bar: %s close %s\n", last.Date.Format(time.DateOnly), strconv.FormatFloat(last.Close, 'f', -1, 64))

	if query == "" {
		return nil
	}

	rows, err := ds.ExecuteSQL(query)
	if err != nil {
		return err
	}

	fmt.Fprint(w, sqlTable(rows))

	return nil
}

func sqlTable(rows []datasource.SQLResult) string {
	if len(rows) == 0 {
		return "(no rows)\n"
	}

	header := lo.Keys(rows[0].Values)
	slices.Sort(header)

	buffer := &strings.Builder{}
	table := tablewriter.NewWriter(buffer)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	for _, row := range rows {
		table.Append(lo.Map(header, func(column string, _ int) string { return fmt.Sprint(row.Values[column]) }))
	}

	table.Render()

	return buffer.String()
}

func inspectAction(_ context.Context, cmd *cli.Command) error {
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

	if err := ds.Initialize(cmd.String("data")); err != nil {
		return err
	}

	return inspect(cmd.Root().Writer, ds, dateFlag(cmd, "start"), dateFlag(cmd, "end"), cmd.String("sql"))
}
