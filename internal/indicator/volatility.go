package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// Volatility is the annualized rolling standard deviation of daily returns.
type Volatility struct {
	period int
}

// NewVolatility creates a 30 day volatility indicator.
func NewVolatility() Indicator {
	return &Volatility{
		period: 30,
	}
}

// Name returns the name of the indicator.
func (v *Volatility) Name() types.IndicatorType {
	return types.IndicatorTypeVolatility
}

// Expected parameters: period (int).
func (v *Volatility) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	v.period = period

	return nil
}

func (v *Volatility) Compute(bars types.Bars) (Output, error) {
	value, err := CalculateVolatility(bars.Returns(), v.period)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate volatility: %w", err)
	}

	return Output{OutputValue: value}, nil
}
