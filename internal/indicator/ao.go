package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// AO implements the Awesome Oscillator over the bar median price.
type AO struct {
	fastPeriod int
	slowPeriod int
}

// NewAO creates a new Awesome Oscillator with the standard 5/34 configuration.
func NewAO() Indicator {
	return &AO{
		fastPeriod: 5,
		slowPeriod: 34,
	}
}

// Name returns the name of the indicator.
func (a *AO) Name() types.IndicatorType {
	return types.IndicatorTypeAO
}

// Config configures the oscillator. Expected parameters: fastPeriod (int), slowPeriod (int).
func (a *AO) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: fastPeriod (int), slowPeriod (int)")
	}

	fast, err := periodParam("fastPeriod", params[0])
	if err != nil {
		return err
	}

	slow, err := periodParam("slowPeriod", params[1])
	if err != nil {
		return err
	}

	a.fastPeriod = fast
	a.slowPeriod = slow

	return nil
}

func (a *AO) Compute(bars types.Bars) (Output, error) {
	value, err := CalculateAO(bars.Highs(), bars.Lows(), a.fastPeriod, a.slowPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate AO: %w", err)
	}

	return Output{OutputValue: value}, nil
}
