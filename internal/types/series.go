package types

import (
	"math"

	"github.com/rxtech-lab/argo-compare/pkg/errors"
)

// Series is a sequence of float64 values aligned with a Bars slice.
// NaN marks an undefined value, e.g. the warm-up prefix of a rolling indicator.
type Series []float64

// NewSeries returns a series of length n with every value undefined.
func NewSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}

	return s
}

// Constant returns a series of length n holding level at every index.
func Constant(level float64, n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = level
	}

	return s
}

// Defined reports whether the value at index i is not NaN.
func (s Series) Defined(i int) bool {
	return !math.IsNaN(s[i])
}

// FirstDefined returns the index of the first non-NaN value, or -1.
func (s Series) FirstDefined() int {
	for i, v := range s {
		if !math.IsNaN(v) {
			return i
		}
	}

	return -1
}

// Last returns the final value of the series, or NaN when empty.
func (s Series) Last() float64 {
	if len(s) == 0 {
		return math.NaN()
	}

	return s[len(s)-1]
}

// Sub returns s - other element-wise. NaN on either side yields NaN.
func (s Series) Sub(other Series) (Series, error) {
	if err := CheckAligned(len(s), other); err != nil {
		return nil, err
	}

	out := make(Series, len(s))
	for i := range s {
		out[i] = s[i] - other[i]
	}

	return out, nil
}

// CheckAligned returns an InvalidSeriesError when any series does not have length n.
func CheckAligned(n int, series ...Series) error {
	for _, s := range series {
		if len(s) != n {
			return errors.NewLengthError(n, len(s), "series length %d does not match expected length %d", len(s), n)
		}
	}

	return nil
}
