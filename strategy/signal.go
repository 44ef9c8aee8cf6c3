package strategy

import (
	"github.com/dnldd/screener/shared"
)

const (
	// DefaultOversold is the default rsi and %k level below which a series is oversold.
	DefaultOversold = 30
	// DefaultOverbought is the default rsi and %k level above which a series is overbought.
	DefaultOverbought = 70
)

// Thresholds represents the oscillator levels used by the signal rules.
type Thresholds struct {
	// Oversold is the level rsi and %k must both be below to buy.
	Oversold float64
	// Overbought is the level rsi and %k must both be above to sell.
	Overbought float64
}

// DefaultThresholds returns the default signal thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Oversold: DefaultOversold, Overbought: DefaultOverbought}
}

// Position represents a signed trade direction.
type Position int

const (
	// Short is the position after a sell signal.
	Short Position = -1
	// Flat is the position without a signal.
	Flat Position = 0
	// Long is the position after a buy signal.
	Long Position = 1
)

// Signals represents the buy, sell and position columns of a price series.
type Signals struct {
	Buy       []int
	Sell      []int
	Positions []Position
}

// IsBuy reports whether the provided indicator values trigger a buy: an oversold rsi and %k
// with the macd line above its signal line.
func IsBuy(rsi, k, macd, signal shared.Float, th Thresholds) bool {
	return rsi.LessThan(th.Oversold) && k.LessThan(th.Oversold) && macd.Greater(signal)
}

// IsSell reports whether the provided indicator values trigger a sell: an overbought rsi and
// %k with the macd line below its signal line.
func IsSell(rsi, k, macd, signal shared.Float, th Thresholds) bool {
	return rsi.GreaterThan(th.Overbought) && k.GreaterThan(th.Overbought) && macd.Less(signal)
}

// boolToInt converts a flag to 0 or 1.
func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// ComputeSignals evaluates the signal rules row by row. Rows with undefined inputs never
// signal.
func ComputeSignals(rsi, k, macd, signal []shared.Float, th Thresholds) *Signals {
	n := len(rsi)
	sigs := &Signals{
		Buy:       make([]int, n),
		Sell:      make([]int, n),
		Positions: make([]Position, n),
	}

	for idx := 0; idx < n; idx++ {
		sigs.Buy[idx] = boolToInt(IsBuy(rsi[idx], k[idx], macd[idx], signal[idx], th))
		sigs.Sell[idx] = boolToInt(IsSell(rsi[idx], k[idx], macd[idx], signal[idx], th))
		sigs.Positions[idx] = Position(sigs.Buy[idx] - sigs.Sell[idx])
	}

	return sigs
}
