package strategy

import (
	"github.com/dnldd/screener/shared"
)

// ComputeReturns attributes each period's change to the position held from the previous
// period. The first row has no prior position and is undefined.
func ComputeReturns(positions []Position, change []shared.Float) []shared.Float {
	out := make([]shared.Float, len(change))
	for idx := 1; idx < len(change); idx++ {
		out[idx] = change[idx].Scale(float64(positions[idx-1]))
	}

	return out
}

// Summary represents the aggregate signal activity of a price series.
type Summary struct {
	Buys   int
	Sells  int
	Return shared.Float
}

// Summarize counts the signals of a series and sums its defined strategy returns. The return
// is undefined when no row has one.
func Summarize(sigs *Signals, returns []shared.Float) Summary {
	var sum Summary
	for idx := range sigs.Buy {
		sum.Buys += sigs.Buy[idx]
		sum.Sells += sigs.Sell[idx]
	}

	total := shared.Undefined
	for idx := range returns {
		if !returns[idx].Valid {
			continue
		}
		if !total.Valid {
			total = shared.NewFloat(0)
		}
		total = total.Add(returns[idx])
	}
	sum.Return = total

	return sum
}
