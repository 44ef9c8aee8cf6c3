package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dnldd/screener/pipeline"
	"github.com/dnldd/screener/shared"
	"github.com/tidwall/gjson"
)

const (
	// YahooBaseURL is the yahoo finance api base url.
	YahooBaseURL = "https://query1.finance.yahoo.com"
	// yahooChartPath is the chart endpoint path, the symbol is appended.
	yahooChartPath = "/v8/finance/chart/"
	// defaultYahooTimeout is the default request timeout.
	defaultYahooTimeout = time.Second * 30
)

// YahooConfig represents the configuration for the yahoo finance client.
type YahooConfig struct {
	// BaseURL is the api base url.
	BaseURL string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// YahooClient represents the yahoo finance chart api client.
type YahooClient struct {
	cfg   *YahooConfig
	httpc *http.Client
	buf   *bytes.Buffer
	mtx   sync.Mutex
}

// Ensure the yahoo client implements the PriceFetcher interface.
var _ pipeline.PriceFetcher = (*YahooClient)(nil)

// NewYahooClient initializes a new yahoo finance client.
func NewYahooClient(cfg *YahooConfig) *YahooClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = YahooBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultYahooTimeout
	}

	return &YahooClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		buf:   bytes.NewBuffer(make([]byte, 0, 256)),
	}
}

// formURL creates the chart url for the provided symbol and parameters.
func (c *YahooClient) formURL(symbol string, params string) string {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(yahooChartPath)
	c.buf.WriteString(url.PathEscape(symbol))
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	formed := c.buf.String()
	c.buf.Reset()

	return formed
}

// chartParams returns the query parameters of a daily chart request. The end date is inclusive.
func chartParams(start time.Time, end time.Time) url.Values {
	if end.IsZero() {
		end = time.Now()
	}

	params := url.Values{}
	params.Add("period1", strconv.FormatInt(start.Unix(), 10))
	if start.IsZero() {
		params.Set("period1", "0")
	}
	params.Add("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Add("interval", "1d")
	params.Add("events", "history")
	params.Add("includeAdjustedClose", "true")

	return params
}

// FetchDaily fetches the daily price records of the provided symbol.
func (c *YahooClient) FetchDaily(ctx context.Context, symbol string, start time.Time, end time.Time) ([]shared.Record, error) {
	formedURL := c.formURL(symbol, chartParams(start, end).Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating chart request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching daily chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// The chart api reports errors in the body for non-200 responses as well.
	desc := gjson.GetBytes(body, "chart.error.description")
	if desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, desc.String())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching %s: %d", symbol, resp.StatusCode)
	}

	return ParseChart(body)
}

// floatAt returns the numeric entry at the provided index, nulls and missing entries are
// undefined.
func floatAt(vals []gjson.Result, idx int) shared.Float {
	if idx >= len(vals) || vals[idx].Type != gjson.Number {
		return shared.Undefined
	}

	return shared.NewFloat(vals[idx].Float())
}

// ParseChart parses daily records from a yahoo chart api response. Dates are taken in the
// exchange's time zone, null quotes are kept as undefined fields.
func ParseChart(body []byte) ([]shared.Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid chart json")
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("no chart result")
	}

	loc := time.UTC
	if tz := result.Get("meta.exchangeTimezoneName").String(); tz != "" {
		exchangeLoc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("loading exchange time zone %s: %w", tz, err)
		}
		loc = exchangeLoc
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	open := quote.Get("open").Array()
	high := quote.Get("high").Array()
	low := quote.Get("low").Array()
	cls := quote.Get("close").Array()
	volume := quote.Get("volume").Array()
	adjClose := result.Get("indicators.adjclose.0.adjclose").Array()

	records := make([]shared.Record, 0, len(timestamps))
	for idx := range timestamps {
		date := time.Unix(timestamps[idx].Int(), 0).In(loc).Format(shared.DateLayout)
		records = append(records, shared.NewRecord(date, floatAt(open, idx), floatAt(high, idx),
			floatAt(low, idx), floatAt(cls, idx), floatAt(adjClose, idx), floatAt(volume, idx)))
	}

	shared.SortRecords(records)

	return records, nil
}
