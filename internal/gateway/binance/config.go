package binance

import (
	"strings"
	"time"
)

const (
	defaultRESTBaseURL = "https://api.binance.com"
	defaultHTTPTimeout = 30 * time.Second
	maxHistoryLimit    = 1000
)

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
