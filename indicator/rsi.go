package indicator

import (
	"github.com/dnldd/screener/shared"
)

const (
	// DefaultRSIPeriod is the default rsi averaging window.
	DefaultRSIPeriod = 7
)

// ChangeSign represents the sign convention of the period over period price change.
type ChangeSign int

const (
	// CurrentMinusPrevious computes change as Close[t] - Close[t-1], so gains are rises.
	CurrentMinusPrevious ChangeSign = iota
	// PreviousMinusCurrent computes change as Close[t-1] - Close[t], the legacy convention
	// where gains are falls.
	PreviousMinusCurrent
)

// String stringifies the change sign.
func (c ChangeSign) String() string {
	switch c {
	case CurrentMinusPrevious:
		return "current-minus-previous"
	case PreviousMinusCurrent:
		return "previous-minus-current"
	default:
		return "unknown"
	}
}

// RSI represents the relative strength index columns of a price series.
type RSI struct {
	Change  []shared.Float
	Gain    []shared.Float
	Loss    []shared.Float
	AvgGain []shared.Float
	AvgLoss []shared.Float
	RS      []shared.Float
	RSI     []shared.Float
}

// Changes returns the period over period change of the provided closes. The first entry is
// undefined.
func Changes(closes []shared.Float, sign ChangeSign) []shared.Float {
	out := make([]shared.Float, len(closes))
	for idx := 1; idx < len(closes); idx++ {
		switch sign {
		case PreviousMinusCurrent:
			out[idx] = closes[idx-1].Sub(closes[idx])
		default:
			out[idx] = closes[idx].Sub(closes[idx-1])
		}
	}

	return out
}

// ComputeRSI computes the relative strength index of the provided closes using simple means
// of gains and losses over the provided period.
func ComputeRSI(closes []shared.Float, period int, sign ChangeSign) *RSI {
	change := Changes(closes, sign)
	gain := make([]shared.Float, len(change))
	loss := make([]shared.Float, len(change))

	zero := shared.NewFloat(0)
	for idx := range change {
		// An undefined change is neither a gain nor a loss.
		gain[idx] = zero
		loss[idx] = zero

		switch {
		case change[idx].GreaterThan(0):
			gain[idx] = change[idx]
		case change[idx].LessThan(0):
			loss[idx] = change[idx].Neg()
		}
	}

	avgGain := RollingMean(gain, period)
	avgLoss := RollingMean(loss, period)

	rs := make([]shared.Float, len(change))
	rsi := make([]shared.Float, len(change))
	hundred := shared.NewFloat(100)
	one := shared.NewFloat(1)
	for idx := range change {
		rs[idx] = avgGain[idx].Div(avgLoss[idx])
		rsi[idx] = hundred.Sub(hundred.Div(one.Add(rs[idx])))
	}

	return &RSI{
		Change:  change,
		Gain:    gain,
		Loss:    loss,
		AvgGain: avgGain,
		AvgLoss: avgLoss,
		RS:      rs,
		RSI:     rsi,
	}
}
