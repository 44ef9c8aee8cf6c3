package indicator

import (
	"github.com/dnldd/screener/shared"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// reducer computes a statistic over a fully defined window.
type reducer func(window []float64) float64

// rolling applies the provided reducer over trailing windows of the provided size. The first
// size-1 entries are undefined, as is any window containing an undefined value.
func rolling(vals []shared.Float, size int, reduce reducer) []shared.Float {
	out := make([]shared.Float, len(vals))
	if size <= 0 {
		return out
	}

	window := make([]float64, size)
	for idx := range vals {
		if idx < size-1 {
			continue
		}

		complete := true
		for j := 0; j < size; j++ {
			v := vals[idx-size+1+j]
			if !v.Valid {
				complete = false
				break
			}
			window[j] = v.Float64
		}

		if complete {
			out[idx] = shared.NewFloat(reduce(window))
		}
	}

	return out
}

// RollingMean returns the trailing simple mean over windows of the provided size.
func RollingMean(vals []shared.Float, size int) []shared.Float {
	return rolling(vals, size, func(w []float64) float64 {
		return stat.Mean(w, nil)
	})
}

// RollingStdDev returns the trailing sample standard deviation over windows of the provided
// size.
func RollingStdDev(vals []shared.Float, size int) []shared.Float {
	return rolling(vals, size, func(w []float64) float64 {
		return stat.StdDev(w, nil)
	})
}

// RollingMin returns the trailing minimum over windows of the provided size.
func RollingMin(vals []shared.Float, size int) []shared.Float {
	return rolling(vals, size, floats.Min)
}

// RollingMax returns the trailing maximum over windows of the provided size.
func RollingMax(vals []shared.Float, size int) []shared.Float {
	return rolling(vals, size, floats.Max)
}

// EWM represents the state of a bias corrected exponentially weighted mean. Each observation
// x_t updates num = x_t + (1-alpha)*num and den = 1 + (1-alpha)*den, the mean is num/den. The
// first observation seeds the mean with weight 1.
type EWM struct {
	decay float64
	num   float64
	den   float64
	seen  bool
}

// NewEWM initializes an exponentially weighted mean with alpha = 2/(span+1).
func NewEWM(span int) *EWM {
	alpha := 2 / (float64(span) + 1)
	return &EWM{decay: 1 - alpha}
}

// Update advances the mean with the provided observation and returns the current mean. An
// undefined observation decays the accumulated weights without adding to them.
func (e *EWM) Update(x shared.Float) shared.Float {
	e.num *= e.decay
	e.den *= e.decay

	if x.Valid {
		e.num += x.Float64
		e.den++
		e.seen = true
	}

	return e.Current()
}

// Current returns the current mean, undefined until an observation has been seen.
func (e *EWM) Current() shared.Float {
	if !e.seen {
		return shared.Undefined
	}

	return shared.NewFloat(e.num / e.den)
}

// ExponentialMean returns the exponentially weighted mean of the provided series.
func ExponentialMean(vals []shared.Float, span int) []shared.Float {
	ewm := NewEWM(span)
	out := make([]shared.Float, len(vals))
	for idx := range vals {
		out[idx] = ewm.Update(vals[idx])
	}

	return out
}
