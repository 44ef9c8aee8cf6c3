package shared

import (
	"slices"
	"time"
)

// Record represents a unit daily price series record for a symbol.
type Record struct {
	Date     time.Time
	RawDate  string
	Open     Float
	High     Float
	Low      Float
	Close    Float
	AdjClose Float
	Volume   Float
}

// NewRecord initializes a record from raw text fields. A record with an unparseable date keeps
// its position but all of its prices are undefined.
func NewRecord(date string, open, high, low, cls, adjClose, volume Float) Record {
	rec := Record{
		RawDate:  date,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    cls,
		AdjClose: adjClose,
		Volume:   volume,
	}

	dt, err := ParseDate(date)
	if err != nil {
		rec.invalidate()
		return rec
	}

	rec.Date = dt
	rec.RawDate = dt.Format(DateLayout)

	return rec
}

// invalidate marks all prices of the record undefined.
func (r *Record) invalidate() {
	r.Open = Undefined
	r.High = Undefined
	r.Low = Undefined
	r.Close = Undefined
	r.AdjClose = Undefined
	r.Volume = Undefined
}

// Valid reports whether the record date is known.
func (r *Record) Valid() bool {
	return !r.Date.IsZero()
}

// Closes extracts the close series of the provided records.
func Closes(records []Record) []Float {
	out := make([]Float, len(records))
	for idx := range records {
		out[idx] = records[idx].Close
	}

	return out
}

// Highs extracts the high series of the provided records.
func Highs(records []Record) []Float {
	out := make([]Float, len(records))
	for idx := range records {
		out[idx] = records[idx].High
	}

	return out
}

// Lows extracts the low series of the provided records.
func Lows(records []Record) []Float {
	out := make([]Float, len(records))
	for idx := range records {
		out[idx] = records[idx].Low
	}

	return out
}

// SortRecords orders records ascending by date. Records are left in source order when any of
// them has an unknown date since there is nothing to position it by.
func SortRecords(records []Record) {
	for idx := range records {
		if !records[idx].Valid() {
			return
		}
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})
}
