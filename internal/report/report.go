// Package report renders a comparison report for humans.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-compare/internal/types"
)

// FormatPercent renders a ratio as a percentage with two decimals, e.g. 0.1234 -> "12.34%".
func FormatPercent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "n/a"
	}

	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2) + "%"
}

func formatRatio(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "n/a"
	}

	return decimal.NewFromFloat(value).StringFixed(2)
}

// Lines renders one "<name> cumulative return: 12.34%" line per result, in report order.
func Lines(report types.Report) []string {
	return lo.Map(report.Results, func(r types.StrategyResult, _ int) string {
		return fmt.Sprintf("%s cumulative return: %s", r.Name, FormatPercent(r.CumulativeReturn))
	})
}

// Printer writes reports as text.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Print writes the header, the result lines, the statistics table and any failures.
func (p *Printer) Print(report types.Report) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Run %s: %s, %d bars", report.RunID, lo.Ternary(report.Symbol == "", "unnamed", report.Symbol), report.NumberOfBars)

	if report.NumberOfBars > 0 {
		fmt.Fprintf(&sb, " from %s to %s", report.Start.Format(time.DateOnly), report.End.Format(time.DateOnly))
	}

	sb.WriteString("\n\n")

	for _, line := range Lines(report) {
		sb.WriteString(line + "\n")
	}

	fmt.Fprintf(&sb, "buy and hold cumulative return: %s\n\n", FormatPercent(report.BuyAndHold))

	if len(report.Results) > 0 {
		sb.WriteString(StatsTable(report))
	}

	if len(report.Failures) > 0 {
		sb.WriteString("\nFailed strategies:\n")
		sb.WriteString(FailureTable(report.Failures))
	}

	_, err := io.WriteString(p.out, sb.String())

	return err
}

// StatsTable renders the per-strategy statistics in result order.
func StatsTable(report types.Report) string {
	buffer := &strings.Builder{}
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Strategy", "Type", "Return", "Trades", "Exposure", "Max DD", "Sharpe"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	for _, result := range report.Results {
		stats, ok := lo.Find(report.Stats, func(s types.StrategyStats) bool { return s.Name == result.Name })
		if !ok {
			table.Append([]string{result.Name, "", FormatPercent(result.CumulativeReturn), "", "", "", ""})

			continue
		}

		table.Append([]string{
			result.Name,
			string(stats.Type),
			FormatPercent(result.CumulativeReturn),
			strconv.Itoa(stats.NumberOfTrades),
			FormatPercent(stats.Exposure),
			FormatPercent(stats.MaxDrawdown),
			formatRatio(stats.SharpeRatio),
		})
	}

	table.SetFooter([]string{"BUY & HOLD", "", FormatPercent(report.BuyAndHold), "", "", "", ""})
	table.Render()

	return buffer.String()
}

// FailureTable renders which stage of which strategy failed.
func FailureTable(failures []types.Failure) string {
	buffer := &strings.Builder{}
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Strategy", "Stage", "Error"})
	table.SetAutoWrapText(false)

	for _, f := range failures {
		table.Append([]string{f.Strategy, f.Stage, f.Error})
	}

	table.Render()

	return buffer.String()
}
