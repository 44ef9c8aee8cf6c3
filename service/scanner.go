package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/screener/database"
	"github.com/dnldd/screener/export"
	"github.com/dnldd/screener/fetch"
	"github.com/dnldd/screener/pipeline"
	"github.com/dnldd/screener/shared"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/atomic"
)

const (
	// SourceYahoo fetches prices from the yahoo finance chart api.
	SourceYahoo = "yahoo"
	// SourceCSV reads prices from historical download csv files.
	SourceCSV = "csv"
	// SourceKite fetches prices from kite connect.
	SourceKite = "kite"
)

// SymbolLister describes the requirements for resolving the symbols of a run.
type SymbolLister interface {
	// ListSymbols returns the symbols to process in order.
	ListSymbols(ctx context.Context) ([]string, error)
}

// Sink describes the requirements for persisting the rows of a symbol.
type Sink interface {
	// Persist stores the rows of a symbol for the provided run.
	Persist(ctx context.Context, runID string, symbol string, rows []pipeline.Row) error
}

// Ensure the symbol sources implement the SymbolLister interface.
var _ SymbolLister = fetch.StaticSymbols(nil)
var _ SymbolLister = (*fetch.IndexSymbols)(nil)
var _ SymbolLister = (*fetch.UniverseFile)(nil)

// Ensure the output sinks implement the Sink interface.
var _ Sink = (*export.CSVWriter)(nil)
var _ Sink = (*database.SQLiteStore)(nil)
var _ Sink = (*database.RqliteStore)(nil)

// ScannerConfig represents the configuration struct for the scanner service.
type ScannerConfig struct {
	// Symbols are the configured symbols.
	Symbols []string
	// SymbolsURL is the url or path of an NSE index constituent list.
	SymbolsURL string
	// SymbolSuffix is appended to index constituent symbols.
	SymbolSuffix string
	// UniverseFile is the path of a yaml symbol universe.
	UniverseFile string
	// Source is the price data source, one of yahoo, csv or kite.
	Source string
	// DataDir is the directory of the csv price source.
	DataDir string
	// YahooURL overrides the yahoo finance api base url.
	YahooURL string
	// KiteAPIKey is the kite connect api key.
	KiteAPIKey string
	// KiteAccessToken is the kite connect access token.
	KiteAccessToken string
	// Start is the beginning of the retrieval window.
	Start time.Time
	// End is the end of the retrieval window.
	End time.Time
	// OutputDir is the csv output directory.
	OutputDir string
	// CombinedFile is the file name of the all-symbols csv output.
	CombinedFile string
	// Workers bounds the number of symbols processed concurrently.
	Workers int
	// Schedule is the cron expression of scheduled runs, a single run happens when empty.
	Schedule string
	// Timezone is the time zone of the schedule, Asia/Kolkata when empty.
	Timezone string
	// SQLitePath is the optional sqlite output database path.
	SQLitePath string
	// RqliteEndpoint is the optional rqlite output endpoint.
	RqliteEndpoint string
	// RqliteUser is the rqlite user.
	RqliteUser string
	// RqlitePass is the rqlite user pass.
	RqlitePass string
	// Params are the indicator and signal parameters.
	Params pipeline.Params
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *ScannerConfig) Validate() error {
	var errs error

	if len(cfg.Symbols) == 0 && cfg.SymbolsURL == "" && cfg.UniverseFile == "" {
		errs = errors.Join(errs, fmt.Errorf("no symbols, symbols url or universe file provided"))
	}
	switch cfg.Source {
	case SourceYahoo:
	case SourceCSV:
		if cfg.DataDir == "" {
			errs = errors.Join(errs, fmt.Errorf("data directory cannot be an empty string for the csv source"))
		}
	case SourceKite:
		if cfg.KiteAPIKey == "" {
			errs = errors.Join(errs, fmt.Errorf("kite api key cannot be an empty string"))
		}
		if cfg.KiteAccessToken == "" {
			errs = errors.Join(errs, fmt.Errorf("kite access token cannot be an empty string"))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown price source: %q", cfg.Source))
	}
	if cfg.Workers < 1 {
		errs = errors.Join(errs, fmt.Errorf("workers must be positive, got %d", cfg.Workers))
	}
	if !cfg.Start.IsZero() && !cfg.End.IsZero() && cfg.End.Before(cfg.Start) {
		errs = errors.Join(errs, fmt.Errorf("end date precedes start date"))
	}
	if cfg.Schedule != "" {
		_, err := cron.ParseStandard(cfg.Schedule)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err))
		}
	}
	if cfg.Timezone != "" {
		_, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err))
		}
	}
	err := cfg.Params.Validate()
	if err != nil {
		errs = errors.Join(errs, err)
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// RunSummary represents the outcome of a scanner run.
type RunSummary struct {
	RunID        string
	Symbols      int
	Processed    int
	Failures     []pipeline.Failure
	Rows         int
	SinkFailures int
}

// Scanner represents the indicator screening service.
type Scanner struct {
	cfg       *ScannerConfig
	lister    SymbolLister
	batch     *pipeline.Batch
	writer    *export.CSVWriter
	sinks     []Sink
	sqlite    *database.SQLiteStore
	scheduler *gocron.Scheduler
	logger    *zerolog.Logger
	runs      atomic.Uint32
	mtx       sync.Mutex
}

// newLister creates the symbol source of the configuration. A universe file takes precedence
// over an index list which takes precedence over configured symbols.
func newLister(cfg *ScannerConfig) SymbolLister {
	switch {
	case cfg.UniverseFile != "":
		return fetch.NewUniverseFile(cfg.UniverseFile)
	case cfg.SymbolsURL != "":
		return fetch.NewIndexSymbols(&fetch.IndexConfig{
			Source: cfg.SymbolsURL,
			Suffix: cfg.SymbolSuffix,
		})
	default:
		return fetch.StaticSymbols(cfg.Symbols)
	}
}

// newFetcher creates the price source of the configuration.
func newFetcher(cfg *ScannerConfig) (pipeline.PriceFetcher, error) {
	switch cfg.Source {
	case SourceCSV:
		return fetch.NewCSVSource(&fetch.CSVSourceConfig{Dir: cfg.DataDir})
	case SourceKite:
		return fetch.NewKiteSource(&fetch.KiteConfig{
			APIKey:      cfg.KiteAPIKey,
			AccessToken: cfg.KiteAccessToken,
			Suffix:      cfg.SymbolSuffix,
		})
	default:
		return fetch.NewYahooClient(&fetch.YahooConfig{BaseURL: cfg.YahooURL}), nil
	}
}

// NewScanner initializes a new scanner service.
func NewScanner(ctx context.Context, cfg *ScannerConfig) (*Scanner, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating scanner config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "screener").Logger()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s price source: %w", cfg.Source, err)
	}

	driver, err := pipeline.NewDriver(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline driver: %w", err)
	}

	batchLogger := logger.With().Str("component", "batch").Logger()
	batch, err := pipeline.NewBatch(&pipeline.BatchConfig{
		Fetcher: fetcher,
		Driver:  driver,
		Start:   cfg.Start,
		End:     cfg.End,
		Workers: cfg.Workers,
		Logger:  &batchLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating batch runner: %w", err)
	}

	writer, err := export.NewCSVWriter(&export.CSVWriterConfig{
		Dir:          cfg.OutputDir,
		CombinedFile: cfg.CombinedFile,
	})
	if err != nil {
		return nil, fmt.Errorf("creating csv writer: %w", err)
	}

	s := &Scanner{
		cfg:    cfg,
		lister: newLister(cfg),
		batch:  batch,
		writer: writer,
		sinks:  []Sink{writer},
		logger: &logger,
	}

	if cfg.SQLitePath != "" {
		sqliteLogger := logger.With().Str("component", "sqlite").Logger()
		s.sqlite, err = database.NewSQLiteStore(ctx, &database.SQLiteConfig{
			Path:   cfg.SQLitePath,
			Logger: &sqliteLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating sqlite store: %w", err)
		}
		s.sinks = append(s.sinks, s.sqlite)
	}

	if cfg.RqliteEndpoint != "" {
		rqliteLogger := logger.With().Str("component", "rqlite").Logger()
		rqlite, err := database.NewRqliteStore(ctx, &database.RqliteConfig{
			Endpoint: cfg.RqliteEndpoint,
			User:     cfg.RqliteUser,
			Pass:     cfg.RqlitePass,
			Logger:   &rqliteLogger,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating rqlite store: %w", err)
		}
		s.sinks = append(s.sinks, rqlite)
	}

	if cfg.Schedule != "" {
		tz := cfg.Timezone
		if tz == "" {
			tz = shared.IndiaLocation
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("loading schedule timezone: %w", err)
		}

		s.scheduler = gocron.NewScheduler(loc)
		s.scheduler.SingletonModeAll()
	}

	return s, nil
}

// RunOnce resolves the symbols, runs the pipeline for each and persists the results.
func (s *Scanner) RunOnce(ctx context.Context) (*RunSummary, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	runID := uuid.New().String()
	s.runs.Inc()

	symbols, err := s.lister.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing symbols: %w", err)
	}

	s.logger.Info().Msgf("run %s: screening %d symbols", runID, len(symbols))

	res, err := s.batch.Run(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("running batch %s: %w", runID, err)
	}

	sum := &RunSummary{
		RunID:     runID,
		Symbols:   len(symbols),
		Processed: len(res.Tables),
		Failures:  res.Failures,
	}

	for _, table := range res.Tables {
		rows := table.Rows()
		sum.Rows += len(rows)
		for _, sink := range s.sinks {
			err := sink.Persist(ctx, runID, table.Symbol, rows)
			if err != nil {
				sum.SinkFailures++
				s.logger.Error().Msgf("run %s: persisting %s: %v", runID, table.Symbol, err)
			}
		}
	}

	err = s.writer.WriteCombined(ctx, res.Rows())
	if err != nil {
		return sum, fmt.Errorf("run %s: %w", runID, err)
	}

	s.logger.Info().Msgf("run %s done: %d/%d symbols processed, %d rows written to %s",
		runID, sum.Processed, sum.Symbols, sum.Rows, s.writer.CombinedPath())

	return sum, nil
}

// Runs returns the number of runs started.
func (s *Scanner) Runs() uint32 {
	return s.runs.Load()
}

// Run handles the lifecycle processes of the scanner service. Without a schedule it runs once
// and cancels the service context, otherwise runs happen on schedule until the context is done.
func (s *Scanner) Run(ctx context.Context) error {
	defer s.Close()

	if s.scheduler == nil {
		defer s.cfg.Cancel()

		_, err := s.RunOnce(ctx)
		return err
	}

	_, err := s.scheduler.Cron(s.cfg.Schedule).Do(func() {
		_, err := s.RunOnce(ctx)
		if err != nil {
			s.logger.Error().Msgf("scheduled run: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling runs: %w", err)
	}

	s.logger.Info().Msgf("scheduled runs on %q (%s)", s.cfg.Schedule, s.scheduler.Location())
	s.scheduler.StartAsync()

	<-ctx.Done()
	s.scheduler.Stop()

	return nil
}

// Close releases the resources held by the service once any in-flight run completes.
func (s *Scanner) Close() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.sqlite != nil {
		err := s.sqlite.Close()
		if err != nil {
			s.logger.Error().Msgf("closing sqlite store: %v", err)
		}
		s.sqlite = nil
	}
}

// ParseDate parses an optional configured date, empty dates are zero.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	return shared.ParseDate(s)
}
