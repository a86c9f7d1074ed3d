package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation over close prices.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// Compute returns the moving average under OutputValue.
func (m *MA) Compute(bars types.Bars) (Output, error) {
	value, err := CalculateSMA(bars.Closes(), m.period)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate MA: %w", err)
	}

	return Output{OutputValue: value}, nil
}
