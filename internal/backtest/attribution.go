// Package backtest turns position series into strategy returns and compounds them.
package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-compare/internal/signal"
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// Attribute computes strategy_return[i] = returns[i] * position[i-1].
// The position decided at the close of bar i-1 earns the return of bar i.
// strategy_return[0] is NaN; an undefined return contributes 0 on its bar.
func Attribute(positions types.PositionSeries, returns types.Series) (types.Series, error) {
	if len(positions) != len(returns) {
		return nil, errors.NewLengthError(len(returns), len(positions),
			"position series length %d does not match returns length %d", len(positions), len(returns))
	}

	n := len(returns)
	if n < signal.MinBars {
		return nil, errors.NewInsufficientDataErrorf(signal.MinBars, n, "",
			"return attribution needs at least %d bars, got %d", signal.MinBars, n)
	}

	out := make(types.Series, n)
	out[0] = math.NaN()

	for i := 1; i < n; i++ {
		if math.IsNaN(returns[i]) {
			continue
		}

		out[i] = returns[i] * positions[i-1].Float()
	}

	return out, nil
}
