package market

import (
	"fmt"
	"strings"

	talib "github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

const (
	KeyCurrentPrice = "current_price"
	KeyHigh         = "30d_high"
	KeyLow          = "30d_low"
	KeyVolume       = "volume"
)

// Snapshot holds the four statistics derived from a price window.
type Snapshot struct {
	CurrentPrice float64 `json:"current_price"`
	High         float64 `json:"30d_high"`
	Low          float64 `json:"30d_low"`
	Volume       float64 `json:"volume"`
}

func (s Snapshot) IsZero() bool {
	return s == Snapshot{}
}

func (s Snapshot) Map() map[string]float64 {
	return map[string]float64{
		KeyCurrentPrice: s.CurrentPrice,
		KeyHigh:         s.High,
		KeyLow:          s.Low,
		KeyVolume:       s.Volume,
	}
}

// String renders the snapshot with a fixed key order and precision, so equal
// snapshots always produce identical prompt text.
func (s Snapshot) String() string {
	fields := []struct {
		key string
		val float64
	}{
		{KeyCurrentPrice, s.CurrentPrice},
		{KeyHigh, s.High},
		{KeyLow, s.Low},
		{KeyVolume, s.Volume},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.key, decimal.NewFromFloat(f.val).StringFixed(2)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Summarize reduces a window to latest close, max close, min close and mean
// volume. Bars are ordered by time before the latest close is taken.
func Summarize(candles []Candle) (Snapshot, error) {
	if len(candles) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty price series", ErrDataUnavailable)
	}
	bars := Candles(candles).Sorted()
	closes := bars.Closes()
	n := len(closes)
	snap := Snapshot{
		CurrentPrice: closes[n-1],
		High:         closes[0],
		Low:          closes[0],
	}
	if n > 1 {
		snap.High = talib.Max(closes, n)[n-1]
		snap.Low = talib.Min(closes, n)[n-1]
	}
	sum := decimal.Zero
	for _, v := range bars.Volumes() {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	snap.Volume = sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
	return snap, nil
}
