package indicator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rxtech-lab/argo-compare/internal/types"
	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

func checkWindow(name string, window int) error {
	if window <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, window)
	}

	return nil
}

// CalculateSMA computes the trailing arithmetic mean over window values.
// The first window-1 values are NaN, as is any window containing a NaN.
func CalculateSMA(values types.Series, window int) (types.Series, error) {
	if err := checkWindow("window", window); err != nil {
		return nil, err
	}

	out := types.NewSeries(len(values))
	sum := 0.0
	undefined := 0

	for i, v := range values {
		if math.IsNaN(v) {
			undefined++
		} else {
			sum += v
		}

		if i >= window {
			old := values[i-window]
			if math.IsNaN(old) {
				undefined--
			} else {
				sum -= old
			}
		}

		if i >= window-1 && undefined == 0 {
			out[i] = sum / float64(window)
		}
	}

	return out, nil
}

// CalculateEMA computes the exponential moving average with alpha = 2/(span+1).
// It is seeded by the first defined value and is NaN before it.
// An undefined input after the seed carries the previous average forward.
func CalculateEMA(values types.Series, span int) (types.Series, error) {
	if err := checkWindow("span", span); err != nil {
		return nil, err
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out := types.NewSeries(len(values))
	prev := math.NaN()

	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = prev
		case math.IsNaN(prev):
			prev = v
			out[i] = v
		default:
			prev = alpha*v + (1-alpha)*prev
			out[i] = prev
		}
	}

	return out, nil
}

// CalculateRollingStd computes the trailing sample standard deviation (n-1 denominator).
// A window of 1 has no sample deviation and yields NaN everywhere.
func CalculateRollingStd(values types.Series, window int) (types.Series, error) {
	if err := checkWindow("window", window); err != nil {
		return nil, err
	}

	out := types.NewSeries(len(values))
	if window < 2 {
		return out, nil
	}

	undefined := 0
	for i, v := range values {
		if math.IsNaN(v) {
			undefined++
		}

		if i >= window && math.IsNaN(values[i-window]) {
			undefined--
		}

		if i >= window-1 && undefined == 0 {
			out[i] = stat.StdDev(values[i-window+1:i+1], nil)
		}
	}

	return out, nil
}

// CalculateMACD returns the MACD line EMA(fast) - EMA(slow) and its EMA(signal) signal line.
func CalculateMACD(close types.Series, fast, slow, signal int) (line, signalLine types.Series, err error) {
	fastEMA, err := CalculateEMA(close, fast)
	if err != nil {
		return nil, nil, err
	}

	slowEMA, err := CalculateEMA(close, slow)
	if err != nil {
		return nil, nil, err
	}

	line, err = fastEMA.Sub(slowEMA)
	if err != nil {
		return nil, nil, err
	}

	signalLine, err = CalculateEMA(line, signal)
	if err != nil {
		return nil, nil, err
	}

	return line, signalLine, nil
}

// CalculateMedianPrice returns (high+low)/2 per bar.
func CalculateMedianPrice(high, low types.Series) (types.Series, error) {
	if err := types.CheckAligned(len(high), low); err != nil {
		return nil, err
	}

	out := make(types.Series, len(high))
	for i := range high {
		out[i] = (high[i] + low[i]) / 2
	}

	return out, nil
}

// CalculateAO returns the Awesome Oscillator, SMA(fast) - SMA(slow) of the median price.
func CalculateAO(high, low types.Series, fast, slow int) (types.Series, error) {
	median, err := CalculateMedianPrice(high, low)
	if err != nil {
		return nil, err
	}

	fastSMA, err := CalculateSMA(median, fast)
	if err != nil {
		return nil, err
	}

	slowSMA, err := CalculateSMA(median, slow)
	if err != nil {
		return nil, err
	}

	return fastSMA.Sub(slowSMA)
}

// Bands holds the three Bollinger lines.
type Bands struct {
	Mid   types.Series
	Upper types.Series
	Lower types.Series
}

// CalculateBollinger returns mid = SMA(window) and mid +/- k * rolling sample stddev.
func CalculateBollinger(close types.Series, window int, k float64) (Bands, error) {
	mid, err := CalculateSMA(close, window)
	if err != nil {
		return Bands{}, err
	}

	std, err := CalculateRollingStd(close, window)
	if err != nil {
		return Bands{}, err
	}

	upper := make(types.Series, len(close))
	lower := make(types.Series, len(close))

	for i := range close {
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
	}

	return Bands{Mid: mid, Upper: upper, Lower: lower}, nil
}

// CalculateRSI computes the relative strength index from simple rolling means of gains and losses.
// It is exactly 100 when the average loss over the window is zero.
func CalculateRSI(close types.Series, window int) (types.Series, error) {
	if err := checkWindow("window", window); err != nil {
		return nil, err
	}

	gains := types.NewSeries(len(close))
	losses := types.NewSeries(len(close))

	for i := 1; i < len(close); i++ {
		delta := close[i] - close[i-1]
		if math.IsNaN(delta) {
			continue
		}

		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	avgGain, err := CalculateSMA(gains, window)
	if err != nil {
		return nil, err
	}

	avgLoss, err := CalculateSMA(losses, window)
	if err != nil {
		return nil, err
	}

	out := types.NewSeries(len(close))
	for i := range close {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}

		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}

		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}

	return out, nil
}

// CalculateVolatility returns the rolling sample stddev of returns annualized by sqrt(252).
func CalculateVolatility(returns types.Series, window int) (types.Series, error) {
	std, err := CalculateRollingStd(returns, window)
	if err != nil {
		return nil, err
	}

	annualize := math.Sqrt(TradingDaysPerYear)
	for i := range std {
		std[i] *= annualize
	}

	return std, nil
}
