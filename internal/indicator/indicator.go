package indicator

import (
	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// Output keys shared by indicators producing several lines.
const (
	OutputValue  = "value"
	OutputMACD   = "macd"
	OutputSignal = "signal"
	OutputMid    = "mid"
	OutputUpper  = "upper"
	OutputLower  = "lower"
)

// Output maps a line name to a series aligned with the input bars.
type Output map[string]types.Series

// Value returns the primary line of a single-line indicator.
func (o Output) Value() types.Series {
	return o[OutputValue]
}

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters, in the order documented by each indicator
	Config(params ...any) error
	// Compute calculates every line of the indicator over the bars
	Compute(bars types.Bars) (Output, error)
}

// intParam reads an int parameter. YAML and JSON decoding may deliver whole numbers as float64.
func intParam(name string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid value for %s parameter, expected a whole number, got %v", name, v)
		}

		return int(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}
}

func periodParam(name string, value any) (int, error) {
	period, err := intParam(name, value)
	if err != nil {
		return 0, err
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}

func floatParam(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}
