// Package gate reads daily spot candles from the Gate REST API.
package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockbrief/internal/logger"
	"stockbrief/internal/market"
	symbolpkg "stockbrief/internal/pkg/symbol"

	"github.com/antihax/optional"
	gateapi "github.com/gateio/gateapi-go/v7"
)

const (
	defaultRESTBaseURL = "https://api.gateio.ws/api/v4"
	defaultHTTPTimeout = 30 * time.Second
	dayMillis          = int64(24 * time.Hour / time.Millisecond)
)

// Gate labels for pairs it does not list.
var unknownPairLabels = map[string]bool{
	"INVALID_CURRENCY_PAIR": true,
	"INVALID_CURRENCY":      true,
}

type Config struct {
	RESTBaseURL  string
	RESTProxyURL string
	HTTPTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	out.RESTBaseURL = strings.TrimRight(strings.TrimSpace(out.RESTBaseURL), "/")
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = defaultRESTBaseURL
	}
	out.RESTProxyURL = strings.TrimSpace(out.RESTProxyURL)
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = defaultHTTPTimeout
	}
	return out
}

// Source implements market.Source for spot pairs such as BTC/USDT.
type Source struct {
	cfg  Config
	rest *gateapi.APIClient
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	conf := gateapi.NewConfiguration()
	conf.BasePath = final.RESTBaseURL

	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.RESTProxyURL != "" {
		proxyURL, err := url.Parse(final.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid gate REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	conf.HTTPClient = httpClient
	return &Source{cfg: final, rest: gateapi.NewAPIClient(conf)}, nil
}

func (s *Source) Name() string { return "gate" }

// FetchHistory returns 1d candles in [from, to]. Gate rows are
// [time, quote volume, close, high, low, open, base volume, closed].
func (s *Source) FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]market.Candle, error) {
	if !symbolpkg.IsValid(symbol) {
		return nil, fmt.Errorf("%w: %q is not a trading pair", market.ErrDataUnavailable, symbol)
	}
	pair := symbolpkg.Gate.ToExchange(symbolpkg.Normalize(symbol))
	logger.Debugf("[gate] candlesticks %s 1d %s..%s", pair, from.Format(time.DateOnly), to.Format(time.DateOnly))

	rows, _, err := s.rest.SpotApi.ListCandlesticks(ctx, pair, &gateapi.ListCandlesticksOpts{
		From:     optional.NewInt64(from.Unix()),
		To:       optional.NewInt64(to.Unix()),
		Interval: optional.NewString("1d"),
	})
	if err != nil {
		var apiErr gateapi.GateAPIError
		if errors.As(err, &apiErr) && unknownPairLabels[apiErr.Label] {
			return nil, fmt.Errorf("%w: %s: %s", market.ErrDataUnavailable, pair, apiErr.Message)
		}
		return nil, fmt.Errorf("gate candlesticks %s: %w", pair, err)
	}

	out := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		c, ok := parseRow(row)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no candles for %s", market.ErrDataUnavailable, pair)
	}
	return out, nil
}

func parseRow(row []string) (market.Candle, bool) {
	if len(row) < 6 {
		return market.Candle{}, false
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return market.Candle{}, false
	}
	volume := parseFloat(row[1])
	if len(row) > 6 {
		volume = parseFloat(row[6])
	}
	open := sec * 1000
	return market.Candle{
		OpenTime:  open,
		CloseTime: open + dayMillis - 1,
		Open:      parseFloat(row[5]),
		High:      parseFloat(row[3]),
		Low:       parseFloat(row[4]),
		Close:     parseFloat(row[2]),
		Volume:    volume,
	}, true
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
