package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dnldd/screener/pipeline"
	"github.com/dnldd/screener/shared"
	"github.com/gocarina/gocsv"
)

// csvRecord represents a row of a historical price download.
type csvRecord struct {
	Date     string       `csv:"Date"`
	Open     shared.Float `csv:"Open"`
	High     shared.Float `csv:"High"`
	Low      shared.Float `csv:"Low"`
	Close    shared.Float `csv:"Close"`
	AdjClose shared.Float `csv:"Adj Close"`
	Volume   shared.Float `csv:"Volume"`
}

// CSVSourceConfig represents the configuration for the csv price source.
type CSVSourceConfig struct {
	// Dir is the directory holding one <symbol>.csv file per symbol.
	Dir string
}

// CSVSource represents a price source backed by historical download csv files.
type CSVSource struct {
	cfg *CSVSourceConfig
}

// Ensure the csv source implements the PriceFetcher interface.
var _ pipeline.PriceFetcher = (*CSVSource)(nil)

// NewCSVSource initializes a new csv price source.
func NewCSVSource(cfg *CSVSourceConfig) (*CSVSource, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("checking data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.Dir)
	}

	return &CSVSource{cfg: cfg}, nil
}

// FetchDaily reads the daily price records of the provided symbol. Records with known dates
// outside the provided window are dropped.
func (s *CSVSource) FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time) ([]shared.Record, error) {
	path := filepath.Join(s.cfg.Dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening price file for %s: %w", symbol, err)
	}
	defer f.Close()

	var rows []*csvRecord
	err = gocsv.Unmarshal(f, &rows)
	if err != nil {
		return nil, fmt.Errorf("parsing price file %s: %w", path, err)
	}

	records := make([]shared.Record, 0, len(rows))
	for _, row := range rows {
		rec := shared.NewRecord(row.Date, row.Open, row.High, row.Low, row.Close,
			row.AdjClose, row.Volume)
		if !InWindow(&rec, start, end) {
			continue
		}

		records = append(records, rec)
	}

	shared.SortRecords(records)

	return records, nil
}

// InWindow reports whether the provided record falls within the start and end dates, both
// inclusive. Zero bounds are open and records with unknown dates are always kept.
func InWindow(rec *shared.Record, start time.Time, end time.Time) bool {
	if !rec.Valid() {
		return true
	}
	if !start.IsZero() && rec.Date.Before(shared.TradingDay(start, start.Location())) {
		return false
	}
	if !end.IsZero() && rec.Date.After(shared.TradingDay(end, end.Location())) {
		return false
	}

	return true
}
