package indicator

import (
	"github.com/dnldd/screener/shared"
)

const (
	// DefaultMACDLong is the default slow ema span.
	DefaultMACDLong = 26
	// DefaultMACDShort is the default fast ema span.
	DefaultMACDShort = 12
	// DefaultMACDSignal is the default signal line span.
	DefaultMACDSignal = 9
)

// MACD represents the moving average convergence divergence columns of a price series.
type MACD struct {
	EMAShort []shared.Float
	EMALong  []shared.Float
	MACD     []shared.Float
	Signal   []shared.Float
}

// ComputeMACD computes the macd line as the difference of the short and long exponential
// means of the provided closes, and its signal line as the exponential mean of the macd line.
func ComputeMACD(closes []shared.Float, long int, short int, signal int) *MACD {
	emaLong := ExponentialMean(closes, long)
	emaShort := ExponentialMean(closes, short)

	macd := make([]shared.Float, len(closes))
	for idx := range closes {
		macd[idx] = emaShort[idx].Sub(emaLong[idx])
	}

	return &MACD{
		EMAShort: emaShort,
		EMALong:  emaLong,
		MACD:     macd,
		Signal:   ExponentialMean(macd, signal),
	}
}
