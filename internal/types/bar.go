package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// PriceBar is one daily observation of a traded instrument.
type PriceBar struct {
	Date   time.Time `yaml:"date" json:"date"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume int64     `yaml:"volume" json:"volume"`
}

// Bars is an ordered sequence of price bars, oldest first.
type Bars []PriceBar

// Validate checks that dates are strictly increasing.
func (b Bars) Validate() error {
	for i := 1; i < len(b); i++ {
		if !b[i].Date.After(b[i-1].Date) {
			return errors.NewOrderError(i,
				"bar %d dated %s is not after bar %d dated %s",
				i, b[i].Date.Format(time.DateOnly), i-1, b[i-1].Date.Format(time.DateOnly))
		}
	}

	return nil
}

// Dates returns the bar dates.
func (b Bars) Dates() []time.Time {
	dates := make([]time.Time, len(b))
	for i, bar := range b {
		dates[i] = bar.Date
	}

	return dates
}

// Closes returns the close prices as a series.
func (b Bars) Closes() Series {
	return b.field(func(bar PriceBar) float64 { return bar.Close })
}

// Highs returns the high prices as a series.
func (b Bars) Highs() Series {
	return b.field(func(bar PriceBar) float64 { return bar.High })
}

// Lows returns the low prices as a series.
func (b Bars) Lows() Series {
	return b.field(func(bar PriceBar) float64 { return bar.Low })
}

// Returns computes the simple daily return series close[i]/close[i-1] - 1.
// The first value is always NaN.
func (b Bars) Returns() Series {
	returns := NewSeries(len(b))
	for i := 1; i < len(b); i++ {
		prev := b[i-1].Close
		if math.IsNaN(prev) || math.IsNaN(b[i].Close) {
			continue
		}

		returns[i] = b[i].Close/prev - 1
	}

	return returns
}

func (b Bars) field(get func(PriceBar) float64) Series {
	out := make(Series, len(b))
	for i, bar := range b {
		out[i] = get(bar)
	}

	return out
}
