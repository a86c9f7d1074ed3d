// Package signal turns indicator lines into FLAT/LONG position series.
//
// A position is set by a crossover event and persists (forward fill) until
// the opposite event. Bar 0 has no prior bar, so it is always FLAT, and any
// undefined operand at a bar or its predecessor suppresses the event there.
package signal

import (
	"math"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// MinBars is the shortest history on which a crossover can be evaluated.
const MinBars = 2

// CrossUp reports a[i] > b[i] while a[i-1] <= b[i-1].
func CrossUp(a, b types.Series, i int) bool {
	if i < 1 || !defined(a, b, i) {
		return false
	}

	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// CrossDown reports a[i] < b[i] while a[i-1] >= b[i-1].
func CrossDown(a, b types.Series, i int) bool {
	if i < 1 || !defined(a, b, i) {
		return false
	}

	return a[i] < b[i] && a[i-1] >= b[i-1]
}

func defined(a, b types.Series, i int) bool {
	return !math.IsNaN(a[i]) && !math.IsNaN(b[i]) && !math.IsNaN(a[i-1]) && !math.IsNaN(b[i-1])
}

// Pair is a line compared against a reference line.
type Pair struct {
	Line      types.Series
	Reference types.Series
}

// Rule enters when Entry.Line crosses up through Entry.Reference and exits
// when Exit.Line crosses down through Exit.Reference.
type Rule struct {
	Entry Pair
	Exit  Pair
}

// CrossoverRule uses the same pair for entry and exit.
func CrossoverRule(line, reference types.Series) Rule {
	pair := Pair{Line: line, Reference: reference}

	return Rule{Entry: pair, Exit: pair}
}

// LevelRule compares a line against a constant level.
func LevelRule(line types.Series, level float64) Rule {
	return CrossoverRule(line, types.Constant(level, len(line)))
}

// ThresholdRule enters when line crosses up through enterLevel and exits when it crosses down through exitLevel.
func ThresholdRule(line types.Series, enterLevel, exitLevel float64) Rule {
	return Rule{
		Entry: Pair{Line: line, Reference: types.Constant(enterLevel, len(line))},
		Exit:  Pair{Line: line, Reference: types.Constant(exitLevel, len(line))},
	}
}

func (r Rule) validate() (int, error) {
	n := len(r.Entry.Line)
	if err := types.CheckAligned(n, r.Entry.Reference, r.Exit.Line, r.Exit.Reference); err != nil {
		return 0, err
	}

	if n < MinBars {
		return 0, errors.NewInsufficientDataErrorf(MinBars, n, "",
			"crossover detection needs at least %d bars, got %d", MinBars, n)
	}

	return n, nil
}

// Derive evaluates the rule over every bar and returns the position series.
func Derive(rule Rule) (types.PositionSeries, error) {
	n, err := rule.validate()
	if err != nil {
		return nil, err
	}

	deriver := NewDeriver()
	positions := make(types.PositionSeries, n)
	positions[0] = deriver.Current()

	for i := 1; i < n; i++ {
		enter := CrossUp(rule.Entry.Line, rule.Entry.Reference, i)
		exit := CrossDown(rule.Exit.Line, rule.Exit.Reference, i)
		positions[i] = deriver.Step(enter, exit)
	}

	return positions, nil
}

// DeriveCrossover is Derive over a single line and reference pair.
func DeriveCrossover(line, reference types.Series) (types.PositionSeries, error) {
	return Derive(CrossoverRule(line, reference))
}

// DeriveAgainstLevel is Derive of a line against a constant level.
func DeriveAgainstLevel(line types.Series, level float64) (types.PositionSeries, error) {
	return Derive(LevelRule(line, level))
}
