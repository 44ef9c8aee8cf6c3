package indicator

import (
	"github.com/dnldd/screener/shared"
)

const (
	// DefaultBollingerPeriod is the default bollinger band window.
	DefaultBollingerPeriod = 20
	// DefaultBollingerWidth is the default number of standard deviations of the bands.
	DefaultBollingerWidth = 2
)

// Bollinger represents the bollinger band columns of a price series.
type Bollinger struct {
	MA     []shared.Float
	StdDev []shared.Float
	Upper  []shared.Float
	Lower  []shared.Float
}

// ComputeBollinger computes the trailing mean of the provided closes and the bands width
// sample standard deviations above and below it.
func ComputeBollinger(closes []shared.Float, period int, width float64) *Bollinger {
	ma := RollingMean(closes, period)
	sd := RollingStdDev(closes, period)

	upper := make([]shared.Float, len(closes))
	lower := make([]shared.Float, len(closes))
	for idx := range closes {
		band := sd[idx].Scale(width)
		upper[idx] = ma[idx].Add(band)
		lower[idx] = ma[idx].Sub(band)
	}

	return &Bollinger{
		MA:     ma,
		StdDev: sd,
		Upper:  upper,
		Lower:  lower,
	}
}
