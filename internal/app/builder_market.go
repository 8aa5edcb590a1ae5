package app

import (
	"fmt"
	"strings"

	"stockbrief/internal/config"
	"stockbrief/internal/gateway/binance"
	"stockbrief/internal/gateway/gate"
	"stockbrief/internal/gateway/yahoo"
	"stockbrief/internal/logger"
	"stockbrief/internal/market"
)

// buildMarketSource constructs the source named by market.active_source.
func buildMarketSource(cfg config.MarketConfig) (market.Source, error) {
	src := cfg.ResolveActiveSource()
	proxy := ""
	if src.Proxy.Enabled {
		proxy = strings.TrimSpace(src.Proxy.RESTURL)
	}
	var (
		out market.Source
		err error
	)
	switch strings.ToLower(strings.TrimSpace(src.Name)) {
	case "", "yahoo":
		out, err = yahoo.New(yahoo.Config{
			BaseURL:     src.RESTBaseURL,
			HTTPTimeout: cfg.Timeout(),
			ProxyURL:    proxy,
			SymbolMap:   src.SymbolMap,
		})
	case "binance":
		out, err = binance.New(binance.Config{
			RESTBaseURL:  src.RESTBaseURL,
			RESTProxyURL: proxy,
			HTTPTimeout:  cfg.Timeout(),
		})
	case "gate":
		out, err = gate.New(gate.Config{
			RESTBaseURL:  src.RESTBaseURL,
			RESTProxyURL: proxy,
			HTTPTimeout:  cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("unsupported market source %q", src.Name)
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("market source: %s (lookback=%dd)", out.Name(), cfg.LookbackDays)
	return out, nil
}
