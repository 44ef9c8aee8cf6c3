package pipeline

import (
	"errors"
	"fmt"

	"github.com/dnldd/screener/indicator"
	"github.com/dnldd/screener/shared"
	"github.com/dnldd/screener/strategy"
)

// Params represents the indicator and signal parameters of a pipeline run.
type Params struct {
	// RSIPeriod is the rsi averaging window.
	RSIPeriod int
	// ChangeSign is the sign convention of the close-to-close change.
	ChangeSign indicator.ChangeSign
	// MACDLong is the slow ema span.
	MACDLong int
	// MACDShort is the fast ema span.
	MACDShort int
	// MACDSignal is the signal line ema span.
	MACDSignal int
	// BollingerPeriod is the bollinger band window.
	BollingerPeriod int
	// BollingerWidth is the band width in standard deviations.
	BollingerWidth float64
	// StochasticPeriod is the stochastic oscillator lookback window.
	StochasticPeriod int
	// Thresholds are the oversold and overbought levels.
	Thresholds strategy.Thresholds
}

// DefaultParams returns the standard pipeline parameters.
func DefaultParams() Params {
	return Params{
		RSIPeriod:        indicator.DefaultRSIPeriod,
		ChangeSign:       indicator.CurrentMinusPrevious,
		MACDLong:         indicator.DefaultMACDLong,
		MACDShort:        indicator.DefaultMACDShort,
		MACDSignal:       indicator.DefaultMACDSignal,
		BollingerPeriod:  indicator.DefaultBollingerPeriod,
		BollingerWidth:   indicator.DefaultBollingerWidth,
		StochasticPeriod: indicator.DefaultStochasticPeriod,
		Thresholds:       strategy.DefaultThresholds(),
	}
}

// Validate asserts the params are sane.
func (p *Params) Validate() error {
	var errs error

	if p.RSIPeriod < 1 {
		errs = errors.Join(errs, fmt.Errorf("rsi period must be positive, got %d", p.RSIPeriod))
	}
	if p.MACDLong < 1 || p.MACDShort < 1 || p.MACDSignal < 1 {
		errs = errors.Join(errs, fmt.Errorf("macd spans must be positive, got %d/%d/%d",
			p.MACDLong, p.MACDShort, p.MACDSignal))
	}
	if p.BollingerPeriod < 2 {
		errs = errors.Join(errs, fmt.Errorf("bollinger period must be at least 2, got %d", p.BollingerPeriod))
	}
	if p.BollingerWidth <= 0 {
		errs = errors.Join(errs, fmt.Errorf("bollinger width must be positive, got %v", p.BollingerWidth))
	}
	if p.StochasticPeriod < 1 {
		errs = errors.Join(errs, fmt.Errorf("stochastic period must be positive, got %d", p.StochasticPeriod))
	}
	if p.Thresholds.Oversold >= p.Thresholds.Overbought {
		errs = errors.Join(errs, fmt.Errorf("oversold threshold (%v) must be below overbought threshold (%v)",
			p.Thresholds.Oversold, p.Thresholds.Overbought))
	}

	return errs
}

// stage derives new columns from a table.
type stage func(t *Table) *Table

// Driver represents the per-symbol indicator pipeline.
type Driver struct {
	params Params
	stages []stage
}

// NewDriver initializes a pipeline driver.
func NewDriver(params Params) (*Driver, error) {
	err := params.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating pipeline params: %w", err)
	}

	d := &Driver{params: params}
	d.stages = []stage{
		d.rsi,
		d.macd,
		d.bollinger,
		d.stochastic,
		d.signals,
		d.returns,
	}

	return d, nil
}

// Params returns the driver's parameters.
func (d *Driver) Params() Params {
	return d.params
}

// Run computes the indicator, signal and return columns for the provided records and tags the
// resulting table with the symbol. The input records are not modified.
func (d *Driver) Run(symbol string, records []shared.Record) *Table {
	table := NewTable(records)
	for _, st := range d.stages {
		table = st(table)
	}

	return table.WithSymbol(symbol)
}

func (d *Driver) rsi(t *Table) *Table {
	return t.WithRSI(indicator.ComputeRSI(t.Closes(), d.params.RSIPeriod, d.params.ChangeSign))
}

func (d *Driver) macd(t *Table) *Table {
	return t.WithMACD(indicator.ComputeMACD(t.Closes(), d.params.MACDLong,
		d.params.MACDShort, d.params.MACDSignal))
}

func (d *Driver) bollinger(t *Table) *Table {
	return t.WithBollinger(indicator.ComputeBollinger(t.Closes(), d.params.BollingerPeriod,
		d.params.BollingerWidth))
}

func (d *Driver) stochastic(t *Table) *Table {
	return t.WithStochastic(indicator.ComputeStochastic(shared.Highs(t.Records),
		shared.Lows(t.Records), t.Closes(), d.params.StochasticPeriod))
}

// signals requires the rsi, macd and stochastic columns.
func (d *Driver) signals(t *Table) *Table {
	return t.WithSignals(strategy.ComputeSignals(t.RSI.RSI, t.Stochastic.K, t.MACD.MACD,
		t.MACD.Signal, d.params.Thresholds))
}

// returns requires the signal and change columns.
func (d *Driver) returns(t *Table) *Table {
	return t.WithReturns(strategy.ComputeReturns(t.Signals.Positions, t.RSI.Change))
}
