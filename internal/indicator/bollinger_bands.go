package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := periodParam("period", params[0])
	if err != nil {
		return err
	}

	stdDev, err := floatParam("stdDev", params[1])
	if err != nil {
		return err
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Compute returns the mid, upper and lower bands.
func (bb *BollingerBands) Compute(bars types.Bars) (Output, error) {
	bands, err := CalculateBollinger(bars.Closes(), bb.period, bb.stdDev)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate Bollinger Bands: %w", err)
	}

	return Output{
		OutputMid:   bands.Mid,
		OutputUpper: bands.Upper,
		OutputLower: bands.Lower,
	}, nil
}
