package database

import (
	"context"

	"github.com/dnldd/screener/pipeline"
)

const (
	// SQL statements.
	createIndicatorRowsSQL = `CREATE TABLE IF NOT EXISTS indicator_rows (
		run_id      TEXT NOT NULL,
		stock       TEXT NOT NULL,
		row_idx     INTEGER NOT NULL,
		date        TEXT,
		open        REAL,
		high        REAL,
		low         REAL,
		close       REAL,
		adj_close   REAL,
		volume      REAL,
		year        INTEGER,
		month       INTEGER,
		day         INTEGER,
		day_of_week INTEGER,
		quarter     INTEGER,
		change      REAL,
		gain        REAL,
		loss        REAL,
		avg_gain    REAL,
		avg_loss    REAL,
		rs          REAL,
		rsi         REAL,
		ema_short   REAL,
		ema_long    REAL,
		macd        REAL,
		signal      REAL,
		ma          REAL,
		bb_upper    REAL,
		bb_lower    REAL,
		l14         REAL,
		h14         REAL,
		pct_k       REAL,
		pct_d       REAL,
		buy         INTEGER,
		sell        INTEGER,
		positions   INTEGER,
		strategy    REAL,
		created_on  INTEGER,
		PRIMARY KEY (run_id, stock, row_idx)
	)`
	createIndicatorRowsIndexSQL = "CREATE INDEX IF NOT EXISTS idx_indicator_rows_stock ON indicator_rows(stock, date)"
	persistIndicatorRowSQL      = "INSERT OR REPLACE INTO indicator_rows(run_id, stock, row_idx, date, open, high, low, close, adj_close, volume, year, month, day, day_of_week, quarter, change, gain, loss, avg_gain, avg_loss, rs, rsi, ema_short, ema_long, macd, signal, ma, bb_upper, bb_lower, l14, h14, pct_k, pct_d, buy, sell, positions, strategy, created_on) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"
	countIndicatorRowsSQL       = "SELECT COUNT(*) FROM indicator_rows WHERE run_id = ? AND stock = ?"
)

// IndicatorStorer defines the requirements for storing pipeline rows.
type IndicatorStorer interface {
	// Persist stores the rows of a symbol for the provided run.
	Persist(ctx context.Context, runID string, symbol string, rows []pipeline.Row) error
}

// rowParams returns the positional insert parameters of a row. Undefined values are null.
func rowParams(runID string, symbol string, idx int, row *pipeline.Row, createdOn int64) []any {
	return []any{
		runID, symbol, idx, row.Date,
		row.Open.Nullable(), row.High.Nullable(), row.Low.Nullable(), row.Close.Nullable(),
		row.AdjClose.Nullable(), row.Volume.Nullable(),
		row.Year.Nullable(), row.Month.Nullable(), row.Day.Nullable(), row.DayOfWeek.Nullable(),
		row.Quarter.Nullable(),
		row.Change.Nullable(), row.Gain.Nullable(), row.Loss.Nullable(), row.AvgGain.Nullable(),
		row.AvgLoss.Nullable(), row.RS.Nullable(), row.RSI.Nullable(),
		row.EMAShort.Nullable(), row.EMALong.Nullable(), row.MACD.Nullable(), row.Signal.Nullable(),
		row.MA.Nullable(), row.BBUpper.Nullable(), row.BBLower.Nullable(),
		row.L14.Nullable(), row.H14.Nullable(), row.K.Nullable(), row.D.Nullable(),
		row.Buy, row.Sell, row.Positions, row.Strategy.Nullable(),
		createdOn,
	}
}
