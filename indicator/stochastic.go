package indicator

import (
	"github.com/dnldd/screener/shared"
)

const (
	// DefaultStochasticPeriod is the default stochastic oscillator lookback.
	DefaultStochasticPeriod = 14
	// stochasticSmoothing is the %d smoothing window.
	stochasticSmoothing = 3
)

// Stochastic represents the stochastic oscillator columns of a price series.
type Stochastic struct {
	Low  []shared.Float
	High []shared.Float
	K    []shared.Float
	D    []shared.Float
}

// ComputeStochastic computes the position of each close within the trailing low/high range,
// and its 3 period smoothing. %k is undefined for flat ranges.
func ComputeStochastic(highs, lows, closes []shared.Float, period int) *Stochastic {
	low := RollingMin(lows, period)
	high := RollingMax(highs, period)

	k := make([]shared.Float, len(closes))
	for idx := range closes {
		k[idx] = closes[idx].Sub(low[idx]).Div(high[idx].Sub(low[idx])).Scale(100)
	}

	return &Stochastic{
		Low:  low,
		High: high,
		K:    k,
		D:    RollingMean(k, stochasticSmoothing),
	}
}
