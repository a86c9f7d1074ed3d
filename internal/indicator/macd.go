package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// MACD implements the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the standard 12/26/9 configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fast, err := periodParam("fastPeriod", params[0])
	if err != nil {
		return err
	}

	slow, err := periodParam("slowPeriod", params[1])
	if err != nil {
		return err
	}

	signal, err := periodParam("signalPeriod", params[2])
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod must be less than slowPeriod, got %d and %d", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

// Compute returns the MACD line under OutputMACD and its signal line under OutputSignal.
func (m *MACD) Compute(bars types.Bars) (Output, error) {
	line, signal, err := CalculateMACD(bars.Closes(), m.fastPeriod, m.slowPeriod, m.signalPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate MACD: %w", err)
	}

	return Output{OutputMACD: line, OutputSignal: signal}, nil
}
