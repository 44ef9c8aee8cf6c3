package pipeline

import (
	"github.com/dnldd/screener/indicator"
	"github.com/dnldd/screener/shared"
	"github.com/dnldd/screener/strategy"
)

// Table represents a symbol's price series and the columns derived from it. Tables are
// immutable, every stage returns a new table sharing the unchanged columns of its input.
type Table struct {
	Symbol     string
	Records    []shared.Record
	RSI        *indicator.RSI
	MACD       *indicator.MACD
	Bollinger  *indicator.Bollinger
	Stochastic *indicator.Stochastic
	Signals    *strategy.Signals
	Returns    []shared.Float
}

// NewTable initializes a table from the provided records.
func NewTable(records []shared.Record) *Table {
	recs := make([]shared.Record, len(records))
	copy(recs, records)

	return &Table{Records: recs}
}

// Len returns the number of rows of the table.
func (t *Table) Len() int {
	return len(t.Records)
}

// Closes returns the close column.
func (t *Table) Closes() []shared.Float {
	return shared.Closes(t.Records)
}

// WithSymbol returns a copy of the table tagged with the provided symbol.
func (t *Table) WithSymbol(symbol string) *Table {
	c := *t
	c.Symbol = symbol
	return &c
}

// WithRSI returns a copy of the table with the provided rsi columns.
func (t *Table) WithRSI(rsi *indicator.RSI) *Table {
	c := *t
	c.RSI = rsi
	return &c
}

// WithMACD returns a copy of the table with the provided macd columns.
func (t *Table) WithMACD(macd *indicator.MACD) *Table {
	c := *t
	c.MACD = macd
	return &c
}

// WithBollinger returns a copy of the table with the provided bollinger band columns.
func (t *Table) WithBollinger(bb *indicator.Bollinger) *Table {
	c := *t
	c.Bollinger = bb
	return &c
}

// WithStochastic returns a copy of the table with the provided stochastic oscillator columns.
func (t *Table) WithStochastic(st *indicator.Stochastic) *Table {
	c := *t
	c.Stochastic = st
	return &c
}

// WithSignals returns a copy of the table with the provided signal columns.
func (t *Table) WithSignals(sigs *strategy.Signals) *Table {
	c := *t
	c.Signals = sigs
	return &c
}

// WithReturns returns a copy of the table with the provided strategy return column.
func (t *Table) WithReturns(returns []shared.Float) *Table {
	c := *t
	c.Returns = returns
	return &c
}

// Summary returns the signal activity of the table.
func (t *Table) Summary() strategy.Summary {
	if t.Signals == nil {
		return strategy.Summary{}
	}

	return strategy.Summarize(t.Signals, t.Returns)
}
