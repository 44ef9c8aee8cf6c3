package pipeline

import (
	"github.com/dnldd/screener/shared"
)

// Row represents a flattened table row. Field order is the output column order.
type Row struct {
	Date      string       `csv:"Date"`
	Open      shared.Float `csv:"Open"`
	High      shared.Float `csv:"High"`
	Low       shared.Float `csv:"Low"`
	Close     shared.Float `csv:"Close"`
	AdjClose  shared.Float `csv:"Adj Close"`
	Volume    shared.Float `csv:"Volume"`
	Year      shared.Float `csv:"year"`
	Month     shared.Float `csv:"month"`
	Day       shared.Float `csv:"day"`
	DayOfWeek shared.Float `csv:"day_of_week"`
	Quarter   shared.Float `csv:"quarter"`
	Change    shared.Float `csv:"change"`
	Gain      shared.Float `csv:"gain"`
	Loss      shared.Float `csv:"loss"`
	AvgGain   shared.Float `csv:"avg_gain"`
	AvgLoss   shared.Float `csv:"avg_loss"`
	RS        shared.Float `csv:"rs"`
	RSI       shared.Float `csv:"rsi"`
	EMAShort  shared.Float `csv:"ema_short"`
	EMALong   shared.Float `csv:"ema_long"`
	MACD      shared.Float `csv:"macd"`
	Signal    shared.Float `csv:"signal"`
	MA        shared.Float `csv:"ma"`
	BBUpper   shared.Float `csv:"bb_upper"`
	BBLower   shared.Float `csv:"bb_lower"`
	L14       shared.Float `csv:"l14"`
	H14       shared.Float `csv:"h14"`
	K         shared.Float `csv:"%k"`
	D         shared.Float `csv:"%d"`
	Buy       int          `csv:"buy"`
	Sell      int          `csv:"sell"`
	Positions int          `csv:"positions"`
	Strategy  shared.Float `csv:"strategy"`
	Stock     string       `csv:"Stock"`
}

// Header is the output column order.
var Header = []string{
	"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume",
	"year", "month", "day", "day_of_week", "quarter",
	"change", "gain", "loss", "avg_gain", "avg_loss", "rs", "rsi",
	"ema_short", "ema_long", "macd", "signal",
	"ma", "bb_upper", "bb_lower",
	"l14", "h14", "%k", "%d",
	"buy", "sell", "positions", "strategy", "Stock",
}

// at returns the entry at the provided index of an optional column.
func at(col []shared.Float, idx int) shared.Float {
	if idx >= len(col) {
		return shared.Undefined
	}

	return col[idx]
}

// Rows flattens the table into rows. Columns of stages that have not run are undefined.
func (t *Table) Rows() []Row {
	rows := make([]Row, t.Len())
	for idx := range t.Records {
		rec := &t.Records[idx]
		row := Row{
			Date:     rec.RawDate,
			Open:     rec.Open,
			High:     rec.High,
			Low:      rec.Low,
			Close:    rec.Close,
			AdjClose: rec.AdjClose,
			Volume:   rec.Volume,
			Stock:    t.Symbol,
		}

		if rec.Valid() {
			cal := shared.NewCalendar(rec.Date)
			row.Year = shared.NewFloat(float64(cal.Year))
			row.Month = shared.NewFloat(float64(cal.Month))
			row.Day = shared.NewFloat(float64(cal.Day))
			row.DayOfWeek = shared.NewFloat(float64(cal.DayOfWeek))
			row.Quarter = shared.NewFloat(float64(cal.Quarter))
		}

		if t.RSI != nil {
			row.Change = at(t.RSI.Change, idx)
			row.Gain = at(t.RSI.Gain, idx)
			row.Loss = at(t.RSI.Loss, idx)
			row.AvgGain = at(t.RSI.AvgGain, idx)
			row.AvgLoss = at(t.RSI.AvgLoss, idx)
			row.RS = at(t.RSI.RS, idx)
			row.RSI = at(t.RSI.RSI, idx)
		}

		if t.MACD != nil {
			row.EMAShort = at(t.MACD.EMAShort, idx)
			row.EMALong = at(t.MACD.EMALong, idx)
			row.MACD = at(t.MACD.MACD, idx)
			row.Signal = at(t.MACD.Signal, idx)
		}

		if t.Bollinger != nil {
			row.MA = at(t.Bollinger.MA, idx)
			row.BBUpper = at(t.Bollinger.Upper, idx)
			row.BBLower = at(t.Bollinger.Lower, idx)
		}

		if t.Stochastic != nil {
			row.L14 = at(t.Stochastic.Low, idx)
			row.H14 = at(t.Stochastic.High, idx)
			row.K = at(t.Stochastic.K, idx)
			row.D = at(t.Stochastic.D, idx)
		}

		if t.Signals != nil && idx < len(t.Signals.Positions) {
			row.Buy = t.Signals.Buy[idx]
			row.Sell = t.Signals.Sell[idx]
			row.Positions = int(t.Signals.Positions[idx])
		}

		row.Strategy = at(t.Returns, idx)
		rows[idx] = row
	}

	return rows
}
