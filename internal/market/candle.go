package market

import (
	"sort"
	"time"
)

// Candle is one daily observation. Times are Unix milliseconds.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Trades    int64   `json:"trades,omitempty"`
}

// Time returns the bar's open time, falling back to its close time.
func (c Candle) Time() time.Time {
	ts := c.OpenTime
	if ts == 0 {
		ts = c.CloseTime
	}
	return time.UnixMilli(ts).UTC()
}

type Candles []Candle

// Sorted returns a copy ordered by time, oldest first.
func (cs Candles) Sorted() Candles {
	out := make(Candles, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time().Before(out[j].Time())
	})
	return out
}

func (cs Candles) Closes() []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

func (cs Candles) Volumes() []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Volume
	}
	return out
}
