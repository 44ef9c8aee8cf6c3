package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnldd/screener/shared"
	"github.com/peterldowns/testy/assert"
)

func TestCSVSource(t *testing.T) {
	// Ensure a missing data directory errors.
	_, err := NewCSVSource(&CSVSourceConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	src, err := NewCSVSource(&CSVSourceConfig{Dir: "../testdata"})
	assert.NoError(t, err)

	// Ensure records are read in date order with unparseable prices undefined.
	records, err := src.FetchDaily(context.Background(), "AAA.NS", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, len(records), 4)
	assert.Equal(t, records[0].RawDate, "2024-01-01")
	assert.Equal(t, records[3].RawDate, "2024-01-04")
	assert.Equal(t, records[0].AdjClose, shared.NewFloat(100.9))
	assert.False(t, records[1].Close.Valid)
	assert.Equal(t, records[1].High, shared.NewFloat(103))

	// Ensure the retrieval window is applied inclusively.
	start := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	records, err = src.FetchDaily(context.Background(), "AAA.NS", start, end)
	assert.NoError(t, err)
	assert.Equal(t, len(records), 2)
	assert.Equal(t, records[0].RawDate, "2024-01-02")
	assert.Equal(t, records[1].RawDate, "2024-01-03")

	// Ensure a missing symbol file errors.
	_, err = src.FetchDaily(context.Background(), "ZZZ.NS", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestCSVSourceMalformedRows(t *testing.T) {
	dir := t.TempDir()
	data := "Date,Open,High,Low,Close,Adj Close,Volume\n" +
		"2024-01-02,1,2,0.5,1.5,1.5,100\n" +
		"garbage,1,2,0.5,1.5,1.5,100\n" +
		"2024-01-01,1,2,0.5,abc,1.5,100\n"
	err := os.WriteFile(filepath.Join(dir, "BAD.NS.csv"), []byte(data), 0o644)
	assert.NoError(t, err)

	src, err := NewCSVSource(&CSVSourceConfig{Dir: dir})
	assert.NoError(t, err)

	// Ensure malformed rows keep their place when the order cannot be established.
	records, err := src.FetchDaily(context.Background(), "BAD.NS", time.Time{}, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, len(records), 3)
	assert.Equal(t, records[0].RawDate, "2024-01-02")
	assert.False(t, records[1].Valid())
	assert.False(t, records[1].Close.Valid)
	assert.False(t, records[2].Close.Valid)
	assert.Equal(t, records[2].Open, shared.NewFloat(1))
}

func TestInWindow(t *testing.T) {
	rec := shared.NewRecord("2024-01-05", shared.Undefined, shared.Undefined, shared.Undefined,
		shared.Undefined, shared.Undefined, shared.Undefined)
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }

	assert.True(t, InWindow(&rec, time.Time{}, time.Time{}))
	assert.True(t, InWindow(&rec, day(5), day(5)))
	assert.False(t, InWindow(&rec, day(6), time.Time{}))
	assert.False(t, InWindow(&rec, time.Time{}, day(4)))

	// Ensure records with unknown dates are kept.
	bad := shared.NewRecord("??", shared.Undefined, shared.Undefined, shared.Undefined,
		shared.Undefined, shared.Undefined, shared.Undefined)
	assert.True(t, InWindow(&bad, day(6), day(7)))
}
