package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/screener/pipeline"
	"github.com/dnldd/screener/shared"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

const (
	// kiteExchange is the exchange instruments are resolved on.
	kiteExchange = "NSE"
	// kiteDayInterval is the daily candle interval.
	kiteDayInterval = "day"
	// kiteMaxDayRange is the widest daily candle range, in days, of a single request.
	kiteMaxDayRange = 2000
	// DefaultSymbolSuffix is the yahoo style suffix of NSE listed symbols.
	DefaultSymbolSuffix = ".NS"
)

// kiteHistorian describes the kite connect api calls used by the kite source.
type kiteHistorian interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, oi bool) ([]kiteconnect.HistoricalData, error)
}

// KiteConfig represents the configuration for the kite connect price source.
type KiteConfig struct {
	// APIKey is the kite connect api key.
	APIKey string
	// AccessToken is the session access token.
	AccessToken string
	// Suffix is trimmed from symbols before instrument lookup.
	Suffix string
}

// Validate asserts the config sane inputs.
func (cfg *KiteConfig) Validate() error {
	var errs error

	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("kite api key cannot be an empty string"))
	}
	if cfg.AccessToken == "" {
		errs = errors.Join(errs, fmt.Errorf("kite access token cannot be an empty string"))
	}

	return errs
}

// KiteSource represents a price source backed by kite connect historical candles.
type KiteSource struct {
	cfg    *KiteConfig
	client kiteHistorian
	tokens map[string]int
	once   sync.Once
	err    error
}

// Ensure the kite source implements the PriceFetcher interface.
var _ pipeline.PriceFetcher = (*KiteSource)(nil)

// NewKiteSource initializes a new kite connect price source.
func NewKiteSource(cfg *KiteConfig) (*KiteSource, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating kite config: %w", err)
	}

	kc := kiteconnect.New(cfg.APIKey)
	kc.SetAccessToken(cfg.AccessToken)

	return newKiteSource(cfg, kc), nil
}

// newKiteSource initializes a kite source with the provided api client.
func newKiteSource(cfg *KiteConfig, client kiteHistorian) *KiteSource {
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSymbolSuffix
	}

	return &KiteSource{
		cfg:    cfg,
		client: client,
	}
}

// loadInstruments resolves instrument tokens of the exchange once.
func (s *KiteSource) loadInstruments() error {
	s.once.Do(func() {
		instruments, err := s.client.GetInstrumentsByExchange(kiteExchange)
		if err != nil {
			s.err = fmt.Errorf("fetching %s instruments: %w", kiteExchange, err)
			return
		}

		s.tokens = make(map[string]int, len(instruments))
		for idx := range instruments {
			s.tokens[instruments[idx].Tradingsymbol] = instruments[idx].InstrumentToken
		}
	})

	return s.err
}

// FetchDaily fetches the daily candles of the provided symbol.
func (s *KiteSource) FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time) ([]shared.Record, error) {
	err := s.loadInstruments()
	if err != nil {
		return nil, err
	}

	tradingSymbol := strings.TrimSuffix(symbol, s.cfg.Suffix)
	token, ok := s.tokens[tradingSymbol]
	if !ok {
		return nil, fmt.Errorf("no %s instrument found for %s", kiteExchange, tradingSymbol)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -kiteMaxDayRange)
	}

	candles, err := s.client.GetHistoricalData(token, kiteDayInterval, start, end, false, false)
	if err != nil {
		return nil, fmt.Errorf("fetching historical candles for %s: %w", tradingSymbol, err)
	}

	records := make([]shared.Record, 0, len(candles))
	for idx := range candles {
		candle := &candles[idx]
		cls := shared.NewFloat(candle.Close)

		// Kite candles are unadjusted, the close doubles as the adjusted close.
		records = append(records, shared.NewRecord(candle.Date.Time.Format(shared.DateLayout),
			shared.NewFloat(candle.Open), shared.NewFloat(candle.High), shared.NewFloat(candle.Low),
			cls, cls, shared.NewFloat(float64(candle.Volume))))
	}

	shared.SortRecords(records)

	return records, nil
}
