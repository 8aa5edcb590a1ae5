package symbol

import "strings"

// GateConverter maps BTC/USDT to the BTC_USDT currency pair used by Gate.
type GateConverter struct{}

func (GateConverter) ToExchange(internal string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(internal)), "/", "_")
}

func (GateConverter) FromExchange(raw string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "_", "/")
}

var Gate = GateConverter{}
