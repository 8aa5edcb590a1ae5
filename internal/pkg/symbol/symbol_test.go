package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Symbol{
		"BTC/USDT":      {Base: "BTC", Quote: "USDT"},
		"ethusdt":       {Base: "ETH", Quote: "USDT"},
		"SOL/USDT:USDT": {Base: "SOL", Quote: "USDT"},
		"AAPL":          {},
		"":              {},
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in), in)
	}
}

func TestBinanceConverter(t *testing.T) {
	assert.Equal(t, "BTCUSDT", Binance.ToExchange("btc/usdt"))
	assert.Equal(t, "BTC/USDT", Binance.FromExchange("BTCUSDT"))
	assert.True(t, IsValid("BTCUSDT"))
	assert.False(t, IsValid("MSFT"))
}

func TestGateConverter(t *testing.T) {
	assert.Equal(t, "ETH_USDT", Gate.ToExchange(Normalize("ethusdt")))
	assert.Equal(t, "ETH/USDT", Gate.FromExchange("eth_usdt"))
}
