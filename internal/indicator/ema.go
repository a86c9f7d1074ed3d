package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation over close prices.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

func (e *EMA) Compute(bars types.Bars) (Output, error) {
	value, err := CalculateEMA(bars.Closes(), e.period)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate EMA: %w", err)
	}

	return Output{OutputValue: value}, nil
}
