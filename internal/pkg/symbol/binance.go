package symbol

import "strings"

// BinanceConverter maps internal BTC/USDT pairs to the BTCUSDT form used by
// the Binance REST API.
type BinanceConverter struct{}

func (BinanceConverter) ToExchange(internal string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(internal)), "/", "")
}

func (BinanceConverter) FromExchange(raw string) string {
	return Parse(raw).Internal()
}

var Binance = BinanceConverter{}
