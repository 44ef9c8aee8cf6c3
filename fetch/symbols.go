package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

const (
	// NiftyMicrocap250URL is the constituent list of the nifty microcap 250 index.
	NiftyMicrocap250URL = "https://archives.nseindia.com/content/indices/ind_niftymicrocap250_list.csv"
	// defaultIndexTimeout is the default index list request timeout.
	defaultIndexTimeout = time.Second * 30
)

// normalizeSymbols trims symbols, drops empty ones and appends the provided suffix where it
// is missing. Order and duplicates are kept.
func normalizeSymbols(symbols []string, suffix string) []string {
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		if suffix != "" && !strings.HasSuffix(sym, suffix) {
			sym += suffix
		}

		out = append(out, sym)
	}

	return out
}

// StaticSymbols represents a configured symbol list.
type StaticSymbols []string

// ListSymbols returns the configured symbols.
func (s StaticSymbols) ListSymbols(ctx context.Context) ([]string, error) {
	out := normalizeSymbols(s, "")
	if len(out) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}

	return out, nil
}

// indexConstituent represents a row of an NSE index constituent list.
type indexConstituent struct {
	Company  string `csv:"Company Name"`
	Industry string `csv:"Industry"`
	Symbol   string `csv:"Symbol"`
	Series   string `csv:"Series"`
	ISIN     string `csv:"ISIN Code"`
}

// IndexConfig represents the configuration for an index constituent symbol list.
type IndexConfig struct {
	// Source is the url or file path of the constituent csv.
	Source string
	// Suffix is appended to every constituent symbol.
	Suffix string
	// Timeout is the request timeout for url sources.
	Timeout time.Duration
}

// IndexSymbols represents the symbols of an NSE index constituent list.
type IndexSymbols struct {
	cfg   *IndexConfig
	httpc *http.Client
}

// NewIndexSymbols initializes a new index constituent symbol list.
func NewIndexSymbols(cfg *IndexConfig) *IndexSymbols {
	if cfg.Source == "" {
		cfg.Source = NiftyMicrocap250URL
	}
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSymbolSuffix
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultIndexTimeout
	}

	return &IndexSymbols{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

// open returns a reader over the constituent csv.
func (s *IndexSymbols) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(s.cfg.Source, "http://") && !strings.HasPrefix(s.cfg.Source, "https://") {
		f, err := os.Open(s.cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("opening constituent list: %w", err)
		}

		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating constituent list request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching constituent list: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status fetching constituent list: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// ListSymbols returns the suffixed constituent symbols in list order.
func (s *IndexSymbols) ListSymbols(ctx context.Context) ([]string, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rows []*indexConstituent
	err = gocsv.Unmarshal(rc, &rows)
	if err != nil {
		return nil, fmt.Errorf("parsing constituent list: %w", err)
	}

	symbols := make([]string, 0, len(rows))
	for _, row := range rows {
		symbols = append(symbols, row.Symbol)
	}

	out := normalizeSymbols(symbols, s.cfg.Suffix)
	if len(out) == 0 {
		return nil, fmt.Errorf("constituent list %s has no symbols", s.cfg.Source)
	}

	return out, nil
}

// universe represents a symbol universe file.
type universe struct {
	Suffix  string   `yaml:"suffix"`
	Symbols []string `yaml:"symbols"`
}

// UniverseFile represents a yaml file listing symbols.
type UniverseFile struct {
	path string
}

// NewUniverseFile initializes a symbol list backed by the yaml file at the provided path.
func NewUniverseFile(path string) *UniverseFile {
	return &UniverseFile{path: path}
}

// ListSymbols returns the symbols of the universe file with its suffix applied.
func (u *UniverseFile) ListSymbols(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(u.path)
	if err != nil {
		return nil, fmt.Errorf("reading universe file: %w", err)
	}

	var uni universe
	err = yaml.Unmarshal(data, &uni)
	if err != nil {
		return nil, fmt.Errorf("parsing universe file %s: %w", u.path, err)
	}

	out := normalizeSymbols(uni.Symbols, uni.Suffix)
	if len(out) == 0 {
		return nil, fmt.Errorf("universe file %s has no symbols", u.path)
	}

	return out, nil
}
