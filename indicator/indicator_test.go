package indicator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/dnldd/screener/shared"
	"github.com/peterldowns/testy/assert"
)

// randomSeries generates a deterministic random walk of high, low and close prices where
// every close lies within its bar's range.
func randomSeries(n int) (highs, lows, closes []shared.Float) {
	rng := rand.New(rand.NewSource(7))
	price := 100.0
	for range n {
		price += rng.NormFloat64()
		spread := rng.Float64() * 2
		highs = append(highs, f(price+spread))
		lows = append(lows, f(price-spread))
		closes = append(closes, f(price))
	}

	return highs, lows, closes
}

func TestComputeRSI(t *testing.T) {
	closes := shared.Floats(1, 2, 3, 2, 3)

	// Ensure the conventional sign treats rises as gains.
	rsi := ComputeRSI(closes, 2, CurrentMinusPrevious)
	approxEqual(t, rsi.Change, []shared.Float{u, f(1), f(1), f(-1), f(1)})
	approxEqual(t, rsi.Gain, []shared.Float{f(0), f(1), f(1), f(0), f(1)})
	approxEqual(t, rsi.Loss, []shared.Float{f(0), f(0), f(0), f(1), f(0)})
	approxEqual(t, rsi.AvgGain, []shared.Float{u, f(0.5), f(1), f(0.5), f(0.5)})
	approxEqual(t, rsi.AvgLoss, []shared.Float{u, f(0), f(0), f(0.5), f(0.5)})
	approxEqual(t, rsi.RS, []shared.Float{u, u, u, f(1), f(1)})
	approxEqual(t, rsi.RSI, []shared.Float{u, u, u, f(50), f(50)})

	// Ensure the legacy sign treats falls as gains.
	rsi = ComputeRSI(closes, 2, PreviousMinusCurrent)
	approxEqual(t, rsi.Change, []shared.Float{u, f(-1), f(-1), f(1), f(-1)})
	approxEqual(t, rsi.AvgGain, []shared.Float{u, f(0), f(0), f(0.5), f(0.5)})
	approxEqual(t, rsi.AvgLoss, []shared.Float{u, f(0.5), f(1), f(0.5), f(0.5)})
	approxEqual(t, rsi.RSI, []shared.Float{u, f(0), f(0), f(50), f(50)})

	// Ensure the default period leaves the first 6 rows undefined.
	_, _, walk := randomSeries(30)
	rsi = ComputeRSI(walk, DefaultRSIPeriod, CurrentMinusPrevious)
	for idx := 0; idx < DefaultRSIPeriod-1; idx++ {
		assert.False(t, rsi.AvgGain[idx].Valid)
	}
	assert.True(t, rsi.AvgGain[DefaultRSIPeriod-1].Valid)
}

func TestRSIBounds(t *testing.T) {
	_, _, closes := randomSeries(250)
	rsi := ComputeRSI(closes, DefaultRSIPeriod, CurrentMinusPrevious)

	for idx := range closes {
		avgLoss := rsi.AvgLoss[idx]
		switch {
		case avgLoss.GreaterThan(0):
			assert.True(t, rsi.RSI[idx].Valid)
			assert.GreaterThan(t, rsi.RSI[idx].Float64, -1e-12)
			assert.LessThanOrEqual(t, rsi.RSI[idx].Float64, 100)
		default:
			assert.False(t, rsi.RSI[idx].Valid)
		}
	}
}

func TestComputeMACD(t *testing.T) {
	_, _, closes := randomSeries(120)
	macd := ComputeMACD(closes, DefaultMACDLong, DefaultMACDShort, DefaultMACDSignal)

	// Ensure macd is exactly the difference of the short and long means.
	for idx := range closes {
		assert.True(t, macd.MACD[idx].Valid)
		assert.Equal(t, macd.MACD[idx].Float64, macd.EMAShort[idx].Float64-macd.EMALong[idx].Float64)
	}

	// Ensure the first row is seeded by the first observation.
	assert.Equal(t, macd.EMAShort[0], closes[0])
	assert.Equal(t, macd.EMALong[0], closes[0])
	assert.Equal(t, macd.MACD[0], f(0))
	assert.Equal(t, macd.Signal[0], f(0))

	// Ensure the signal line is the exponential mean of the macd line.
	approxEqual(t, macd.Signal, ExponentialMean(macd.MACD, DefaultMACDSignal))
}

func TestComputeBollinger(t *testing.T) {
	_, _, closes := randomSeries(80)
	bb := ComputeBollinger(closes, DefaultBollingerPeriod, DefaultBollingerWidth)

	for idx := range closes {
		if idx < DefaultBollingerPeriod-1 {
			assert.False(t, bb.MA[idx].Valid)
			assert.False(t, bb.Upper[idx].Valid)
			assert.False(t, bb.Lower[idx].Valid)
			continue
		}

		// Ensure the band width is twice the scaled deviation.
		width := bb.Upper[idx].Float64 - bb.Lower[idx].Float64
		want := 2 * DefaultBollingerWidth * bb.StdDev[idx].Float64
		if math.Abs(width-want) > 1e-9 {
			t.Fatalf("index %d: expected band width %v, got %v", idx, want, width)
		}
		assert.True(t, bb.Upper[idx].Greater(bb.MA[idx]))
		assert.True(t, bb.Lower[idx].Less(bb.MA[idx]))
	}

	// Ensure a flat series collapses the bands onto the mean.
	flat := shared.Floats(100, 100, 100, 100)
	bb = ComputeBollinger(flat, 3, 2)
	assert.Equal(t, bb.MA[3], f(100))
	assert.Equal(t, bb.Upper[3], f(100))
	assert.Equal(t, bb.Lower[3], f(100))
}

func TestComputeStochastic(t *testing.T) {
	highs := shared.Floats(10, 12, 14, 13)
	lows := shared.Floats(8, 9, 11, 10)
	closes := shared.Floats(9, 11, 13, 10)

	st := ComputeStochastic(highs, lows, closes, 2)
	approxEqual(t, st.Low, []shared.Float{u, f(8), f(9), f(10)})
	approxEqual(t, st.High, []shared.Float{u, f(12), f(14), f(14)})
	approxEqual(t, st.K, []shared.Float{u, f(75), f(80), f(0)})
	approxEqual(t, st.D, []shared.Float{u, u, u, f(155.0 / 3)})

	// Ensure a flat range leaves %k undefined.
	flat := shared.Floats(5, 5, 5)
	st = ComputeStochastic(flat, flat, flat, 2)
	approxEqual(t, st.K, []shared.Float{u, u, u})
	approxEqual(t, st.D, []shared.Float{u, u, u})

	// Ensure %k stays within its range whenever the range is not flat.
	highs, lows, closes = randomSeries(200)
	st = ComputeStochastic(highs, lows, closes, DefaultStochasticPeriod)
	for idx := range closes {
		if !st.K[idx].Valid {
			assert.False(t, st.High[idx].Greater(st.Low[idx]))
			continue
		}
		assert.GreaterThan(t, st.K[idx].Float64, -1e-9)
		assert.LessThanOrEqual(t, st.K[idx].Float64, 100+1e-9)
	}
}
