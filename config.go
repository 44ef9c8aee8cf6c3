package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/dnldd/screener/export"
	"github.com/dnldd/screener/fetch"
	"github.com/dnldd/screener/indicator"
	"github.com/dnldd/screener/pipeline"
	"github.com/dnldd/screener/service"
	"github.com/dnldd/screener/shared"
	"github.com/dnldd/screener/strategy"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbols are the screened symbols.
	Symbols []string
	// SymbolsURL is the url or path of an NSE index constituent list.
	SymbolsURL string
	// SymbolSuffix is appended to index constituent symbols.
	SymbolSuffix string
	// UniverseFile is the path of a yaml symbol universe.
	UniverseFile string
	// Source is the price data source.
	Source string
	// DataDir is the directory of the csv price source.
	DataDir string
	// YahooURL overrides the yahoo finance api base url.
	YahooURL string
	// KiteAPIKey is the kite connect api key.
	KiteAPIKey string
	// KiteAccessToken is the kite connect access token.
	KiteAccessToken string
	// Start is the first date of the retrieval window.
	Start string
	// End is the last date of the retrieval window.
	End string
	// OutputDir is the csv output directory.
	OutputDir string
	// CombinedFile is the file name of the all-symbols csv output.
	CombinedFile string
	// Workers bounds the number of symbols processed concurrently.
	Workers int
	// Schedule is the cron expression of scheduled runs.
	Schedule string
	// Timezone is the time zone of the schedule.
	Timezone string
	// SQLitePath is the sqlite output database path.
	SQLitePath string
	// RqliteEndpoint is the rqlite output endpoint.
	RqliteEndpoint string
	// RqliteUser is the rqlite user.
	RqliteUser string
	// RqlitePass is the rqlite user pass.
	RqlitePass string
	// LegacyChangeSign computes change as previous minus current close.
	LegacyChangeSign bool
	// RSIPeriod is the rsi averaging window.
	RSIPeriod int
	// MACDLong is the slow macd ema span.
	MACDLong int
	// MACDShort is the fast macd ema span.
	MACDShort int
	// MACDSignal is the macd signal line span.
	MACDSignal int
	// BBPeriod is the bollinger band window.
	BBPeriod int
	// BBWidth is the bollinger band width in standard deviations.
	BBWidth float64
	// StochPeriod is the stochastic oscillator lookback.
	StochPeriod int

	registeredFlags map[string]bool
}

// Params returns the pipeline parameters of the config.
func (cfg *Config) Params() pipeline.Params {
	params := pipeline.Params{
		RSIPeriod:        cfg.RSIPeriod,
		ChangeSign:       indicator.CurrentMinusPrevious,
		MACDLong:         cfg.MACDLong,
		MACDShort:        cfg.MACDShort,
		MACDSignal:       cfg.MACDSignal,
		BollingerPeriod:  cfg.BBPeriod,
		BollingerWidth:   cfg.BBWidth,
		StochasticPeriod: cfg.StochPeriod,
		Thresholds:       strategy.DefaultThresholds(),
	}
	if cfg.LegacyChangeSign {
		params.ChangeSign = indicator.PreviousMinusCurrent
	}

	return params
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if len(cfg.Symbols) == 0 && cfg.SymbolsURL == "" && cfg.UniverseFile == "" {
		errs = errors.Join(errs, fmt.Errorf("no symbols, symbols url or universe file provided"))
	}
	switch cfg.Source {
	case service.SourceYahoo:
	case service.SourceCSV:
		if cfg.DataDir == "" {
			errs = errors.Join(errs, fmt.Errorf("data directory cannot be an empty string for the csv source"))
		}
	case service.SourceKite:
		if cfg.KiteAPIKey == "" {
			errs = errors.Join(errs, fmt.Errorf("kite api key cannot be an empty string"))
		}
		if cfg.KiteAccessToken == "" {
			errs = errors.Join(errs, fmt.Errorf("kite access token cannot be an empty string"))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown price source: %q", cfg.Source))
	}
	_, err := service.ParseDate(cfg.Start)
	if err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid start date: %w", err))
	}
	_, err = service.ParseDate(cfg.End)
	if err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid end date: %w", err))
	}
	if cfg.Workers < 1 {
		errs = errors.Join(errs, fmt.Errorf("workers must be positive, got %d", cfg.Workers))
	}
	if cfg.Schedule != "" {
		_, err := cron.ParseStandard(cfg.Schedule)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err))
		}
	}
	params := cfg.Params()
	err = params.Validate()
	if err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, fallback string, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	if defValue == "" {
		defValue = fallback
	}

	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// flagOption describes a configuration key.
type flagOption struct {
	name     string
	value    interface{}
	fallback string
	usage    string
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	options := []flagOption{
		{"symbols", &cfg.Symbols, "", "the screened symbols"},
		{"symbolsurl", &cfg.SymbolsURL, "", "the url or path of an NSE index constituent list"},
		{"symbolsuffix", &cfg.SymbolSuffix, fetch.DefaultSymbolSuffix, "the suffix appended to index constituents"},
		{"universefile", &cfg.UniverseFile, "", "the path of a yaml symbol universe"},
		{"source", &cfg.Source, service.SourceYahoo, "the price source (yahoo, csv or kite)"},
		{"datadir", &cfg.DataDir, "", "the directory of the csv price source"},
		{"yahoourl", &cfg.YahooURL, fetch.YahooBaseURL, "the yahoo finance api base url"},
		{"kiteapikey", &cfg.KiteAPIKey, "", "the kite connect api key"},
		{"kiteaccesstoken", &cfg.KiteAccessToken, "", "the kite connect access token"},
		{"start", &cfg.Start, "", "the first date of the retrieval window (YYYY-MM-DD)"},
		{"end", &cfg.End, "", "the last date of the retrieval window (YYYY-MM-DD)"},
		{"outputdir", &cfg.OutputDir, ".", "the csv output directory"},
		{"combinedfile", &cfg.CombinedFile, export.DefaultCombinedFile, "the all-symbols csv file name"},
		{"workers", &cfg.Workers, "1", "the number of symbols processed concurrently"},
		{"schedule", &cfg.Schedule, "", "the cron expression of scheduled runs"},
		{"timezone", &cfg.Timezone, shared.IndiaLocation, "the time zone of the schedule"},
		{"sqlitepath", &cfg.SQLitePath, "", "the sqlite output database path"},
		{"rqliteendpoint", &cfg.RqliteEndpoint, "", "the rqlite output endpoint"},
		{"rqliteuser", &cfg.RqliteUser, "", "the rqlite user"},
		{"rqlitepass", &cfg.RqlitePass, "", "the rqlite user pass"},
		{"legacychangesign", &cfg.LegacyChangeSign, "false", "compute change as previous minus current close"},
		{"rsiperiod", &cfg.RSIPeriod, strconv.Itoa(indicator.DefaultRSIPeriod), "the rsi averaging window"},
		{"macdlong", &cfg.MACDLong, strconv.Itoa(indicator.DefaultMACDLong), "the slow macd ema span"},
		{"macdshort", &cfg.MACDShort, strconv.Itoa(indicator.DefaultMACDShort), "the fast macd ema span"},
		{"macdsignal", &cfg.MACDSignal, strconv.Itoa(indicator.DefaultMACDSignal), "the macd signal line span"},
		{"bbperiod", &cfg.BBPeriod, strconv.Itoa(indicator.DefaultBollingerPeriod), "the bollinger band window"},
		{"bbwidth", &cfg.BBWidth, strconv.Itoa(indicator.DefaultBollingerWidth), "the bollinger band width in standard deviations"},
		{"stochperiod", &cfg.StochPeriod, strconv.Itoa(indicator.DefaultStochasticPeriod), "the stochastic oscillator lookback"},
	}

	// Register command line arguments using loaded environment variables as defaults.
	for _, opt := range options {
		err = cfg.registerFlag(opt.name, opt.value, opt.fallback, opt.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
