package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/screener/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

var (
	// ErrNoSymbolsResolved is returned when no symbol of a batch could be processed.
	ErrNoSymbolsResolved = errors.New("no symbols resolved")
)

// PriceFetcher describes the requirements for fetching daily price records.
type PriceFetcher interface {
	// FetchDaily fetches the daily price records of the provided symbol between start and end.
	// Zero times leave the respective bound open.
	FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time) ([]shared.Record, error)
}

// BatchConfig represents the configuration for the batch runner.
type BatchConfig struct {
	// Fetcher retrieves the price records of symbols.
	Fetcher PriceFetcher
	// Driver computes the pipeline columns of each symbol.
	Driver *Driver
	// Start is the beginning of the retrieval window.
	Start time.Time
	// End is the end of the retrieval window.
	End time.Time
	// Workers bounds the number of symbols processed concurrently.
	Workers int
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *BatchConfig) Validate() error {
	var errs error

	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("price fetcher cannot be nil"))
	}
	if cfg.Driver == nil {
		errs = errors.Join(errs, fmt.Errorf("pipeline driver cannot be nil"))
	}
	if cfg.Workers < 1 {
		errs = errors.Join(errs, fmt.Errorf("workers must be positive, got %d", cfg.Workers))
	}
	if !cfg.Start.IsZero() && !cfg.End.IsZero() && cfg.End.Before(cfg.Start) {
		errs = errors.Join(errs, fmt.Errorf("retrieval window end (%s) precedes start (%s)",
			cfg.End.Format(shared.DateLayout), cfg.Start.Format(shared.DateLayout)))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Failure represents a symbol the batch could not process.
type Failure struct {
	Symbol string
	Err    error
}

// BatchResult represents the outcome of a batch run.
type BatchResult struct {
	// Tables are the processed symbols in input order.
	Tables []*Table
	// Failures are the symbols that could not be processed, in input order.
	Failures []Failure
}

// Rows returns the rows of all processed symbols grouped by symbol in input order.
func (r *BatchResult) Rows() []Row {
	var size int
	for idx := range r.Tables {
		size += r.Tables[idx].Len()
	}

	rows := make([]Row, 0, size)
	for idx := range r.Tables {
		rows = append(rows, r.Tables[idx].Rows()...)
	}

	return rows
}

// Batch represents the multi-symbol pipeline runner.
type Batch struct {
	cfg       *BatchConfig
	processed atomic.Uint32
	failed    atomic.Uint32
	malformed atomic.Uint32
}

// NewBatch initializes a batch runner.
func NewBatch(cfg *BatchConfig) (*Batch, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating batch config: %w", err)
	}

	return &Batch{cfg: cfg}, nil
}

// outcome is the result of processing a single symbol.
type outcome struct {
	table *Table
	err   error
}

// process fetches and runs the pipeline for the provided symbol.
func (b *Batch) process(ctx context.Context, symbol string) outcome {
	records, err := b.cfg.Fetcher.FetchDaily(ctx, symbol, b.cfg.Start, b.cfg.End)
	if err != nil {
		return outcome{err: fmt.Errorf("fetching %s: %w", symbol, err)}
	}
	if len(records) == 0 {
		return outcome{err: fmt.Errorf("fetching %s: no price records", symbol)}
	}

	for idx := range records {
		if !records[idx].Valid() {
			b.malformed.Inc()
			b.cfg.Logger.Debug().Msgf("%s: malformed record at row %d: %s", symbol, idx,
				spew.Sdump(records[idx]))
		}
	}

	return outcome{table: b.cfg.Driver.Run(symbol, records)}
}

// Run processes the provided symbols. Symbols that fail are logged and recorded while the
// rest of the batch continues, the batch only fails when no symbol could be processed.
func (b *Batch) Run(ctx context.Context, symbols []string) (*BatchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols provided", ErrNoSymbolsResolved)
	}

	b.processed.Store(0)
	b.failed.Store(0)
	b.malformed.Store(0)

	outcomes := make([]outcome, len(symbols))
	workers := make(chan struct{}, b.cfg.Workers)
	var wg sync.WaitGroup

	for idx := range symbols {
		if ctx.Err() != nil {
			b.failed.Inc()
			outcomes[idx] = outcome{err: fmt.Errorf("processing %s: %w", symbols[idx], ctx.Err())}
			continue
		}

		select {
		case <-ctx.Done():
			b.failed.Inc()
			outcomes[idx] = outcome{err: fmt.Errorf("processing %s: %w", symbols[idx], ctx.Err())}
			continue
		case workers <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer func() {
				<-workers
				wg.Done()
			}()

			out := b.process(ctx, symbols[idx])
			if out.err != nil {
				b.failed.Inc()
				b.cfg.Logger.Error().Msgf("skipping symbol: %v", out.err)
			} else {
				b.processed.Inc()
				sum := out.table.Summary()
				b.cfg.Logger.Info().Msgf("processed %s: %d rows, %d buys, %d sells, strategy return %s",
					symbols[idx], out.table.Len(), sum.Buys, sum.Sells, sum.Return)
			}
			outcomes[idx] = out
		}(idx)
	}

	wg.Wait()

	res := &BatchResult{
		Tables: make([]*Table, 0, len(symbols)),
	}
	for idx := range outcomes {
		if outcomes[idx].err != nil {
			res.Failures = append(res.Failures, Failure{Symbol: symbols[idx], Err: outcomes[idx].err})
			continue
		}
		res.Tables = append(res.Tables, outcomes[idx].table)
	}

	b.cfg.Logger.Info().Msgf("batch done: %d processed, %d failed, %d malformed records",
		b.processed.Load(), len(res.Failures), b.malformed.Load())

	if len(res.Tables) == 0 {
		return res, fmt.Errorf("%w: %d symbols failed", ErrNoSymbolsResolved, len(res.Failures))
	}

	return res, nil
}

// Stats returns the processed, failed and malformed record counts of the latest run.
func (b *Batch) Stats() (processed uint32, failed uint32, malformed uint32) {
	return b.processed.Load(), b.failed.Load(), b.malformed.Load()
}
