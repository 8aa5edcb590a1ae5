package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockbrief/internal/logger"
	"stockbrief/internal/market"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; stockbrief/1.0)"
)

// Config configures the Yahoo Finance chart source.
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	ProxyURL    string
	UserAgent   string
	// SymbolMap translates user-facing tickers to Yahoo tickers,
	// e.g. SPX -> ^GSPC. Keys are matched case-insensitively.
	SymbolMap map[string]string
}

func (c Config) withDefaults() Config {
	out := c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = defaultBaseURL
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = defaultTimeout
	}
	if strings.TrimSpace(out.UserAgent) == "" {
		out.UserAgent = defaultUserAgent
	}
	symbols := map[string]string{
		"SPX":    "^GSPC",
		"SP500":  "^GSPC",
		"SPX500": "^GSPC",
		"NDX":    "^NDX",
		"DJI":    "^DJI",
	}
	for k, v := range c.SymbolMap {
		symbols[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	out.SymbolMap = symbols
	return out
}

// Source implements market.Source over the public chart endpoint.
type Source struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	client := &http.Client{Timeout: final.HTTPTimeout}
	if proxy := strings.TrimSpace(final.ProxyURL); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		client.Transport = transport
	}
	return &Source{cfg: final, client: client}, nil
}

func (s *Source) Name() string { return "yahoo" }

func (s *Source) ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if mapped, ok := s.cfg.SymbolMap[symbol]; ok && mapped != "" {
		return mapped
	}
	return symbol
}

func (s *Source) FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]market.Candle, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", market.ErrDataUnavailable)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("yahoo: invalid window %s..%s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.cfg.BaseURL, url.PathEscape(s.ticker(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	logger.Debugf("[yahoo] GET %s", endpoint)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	return parseChart(symbol, resp.StatusCode, body)
}

func parseChart(symbol string, status int, body []byte) ([]market.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo: status %d, non-JSON body for %s", status, symbol)
	}
	doc := gjson.ParseBytes(body)
	if apiErr := doc.Get("chart.error"); apiErr.Exists() && apiErr.Type != gjson.Null {
		code := apiErr.Get("code").String()
		desc := apiErr.Get("description").String()
		if status == http.StatusNotFound || strings.EqualFold(code, "Not Found") {
			return nil, fmt.Errorf("%w: %s: %s", market.ErrDataUnavailable, symbol, desc)
		}
		return nil, fmt.Errorf("yahoo api error %s: %s", code, desc)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d for %s", status, symbol)
	}

	result := doc.Get("chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("%w: no bars returned for %s", market.ErrDataUnavailable, symbol)
	}
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	out := make([]market.Candle, 0, len(timestamps))
	for i, ts := range timestamps {
		// holidays and the in-progress session come back as null bars
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		ms := ts.Int() * 1000
		out = append(out, market.Candle{
			OpenTime:  ms,
			CloseTime: ms,
			Open:      at(opens, i),
			High:      at(highs, i),
			Low:       at(lows, i),
			Close:     closes[i].Float(),
			Volume:    at(volumes, i),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: only empty bars returned for %s", market.ErrDataUnavailable, symbol)
	}
	return market.Candles(out).Sorted(), nil
}

func at(values []gjson.Result, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return values[i].Float()
}
