package binance

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

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// binance answers unknown pairs with -1121 "Invalid symbol."
const codeInvalidSymbol = -1121

// Source implements market.Source with spot daily klines, for crypto pairs
// such as BTC/USDT.
type Source struct {
	cfg    Config
	client *gobinance.Client
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	client := gobinance.NewClient("", "")
	client.BaseURL = final.RESTBaseURL
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.RESTProxyURL != "" {
		proxyURL, err := url.Parse(final.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	client.HTTPClient = httpClient
	return &Source{cfg: final, client: client}, nil
}

func (s *Source) Name() string { return "binance" }

func (s *Source) FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]market.Candle, error) {
	if !symbolpkg.IsValid(symbol) {
		return nil, fmt.Errorf("%w: %q is not a trading pair", market.ErrDataUnavailable, symbol)
	}
	pair := symbolpkg.Binance.ToExchange(symbolpkg.Normalize(symbol))
	days := int(to.Sub(from).Hours()/24) + 1
	if days > maxHistoryLimit {
		days = maxHistoryLimit
	}
	logger.Debugf("[binance] klines %s 1d %s..%s", pair, from.Format(time.DateOnly), to.Format(time.DateOnly))
	kls, err := s.client.NewKlinesService().
		Symbol(pair).
		Interval("1d").
		StartTime(from.UnixMilli()).
		EndTime(to.UnixMilli()).
		Limit(days).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol {
			return nil, fmt.Errorf("%w: %s: %s", market.ErrDataUnavailable, pair, apiErr.Message)
		}
		return nil, fmt.Errorf("binance klines %s: %w", pair, err)
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
			Trades:    kl.TradeNum,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no klines for %s", market.ErrDataUnavailable, pair)
	}
	return out, nil
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
