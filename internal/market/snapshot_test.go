package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyBars(start time.Time, closes, volumes []float64) []Candle {
	out := make([]Candle, len(closes))
	for i, c := range closes {
		day := start.AddDate(0, 0, i)
		out[i] = Candle{
			OpenTime:  day.UnixMilli(),
			CloseTime: day.Add(6*time.Hour + 30*time.Minute).UnixMilli(),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    volumes[i],
		}
	}
	return out
}

func TestSummarize_TradingMonth(t *testing.T) {
	closes := []float64{150, 151, 152, 153, 154, 155, 156, 157, 158, 159, 160,
		161, 162, 163, 164, 165, 166, 167, 168, 169, 172}
	volumes := make([]float64, len(closes))
	for i := range volumes {
		volumes[i] = float64(50_000_000 + i*1_000_000)
	}
	bars := dailyBars(time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC), closes, volumes)

	snap, err := Summarize(bars)
	require.NoError(t, err)

	assert.Equal(t, 172.0, snap.CurrentPrice)
	assert.Equal(t, 172.0, snap.High)
	assert.Equal(t, 150.0, snap.Low)
	assert.InDelta(t, 60_000_000.0, snap.Volume, 1e-6)
	for _, c := range closes {
		assert.GreaterOrEqual(t, snap.High, c)
		assert.LessOrEqual(t, snap.Low, c)
	}
}

func TestSummarize_OrdersByTime(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(start, []float64{10, 30, 20}, []float64{1, 2, 3})
	shuffled := []Candle{bars[2], bars[0], bars[1]}

	snap, err := Summarize(shuffled)
	require.NoError(t, err)
	assert.Equal(t, 20.0, snap.CurrentPrice)
	assert.Equal(t, 30.0, snap.High)
	assert.Equal(t, 10.0, snap.Low)
	assert.InDelta(t, 2.0, snap.Volume, 1e-9)
}

func TestSummarize_SingleBar(t *testing.T) {
	bars := dailyBars(time.Now(), []float64{42.5}, []float64{1000})

	snap, err := Summarize(bars)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{CurrentPrice: 42.5, High: 42.5, Low: 42.5, Volume: 1000}, snap)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestSnapshot_StringIsStable(t *testing.T) {
	snap := Snapshot{CurrentPrice: 172, High: 172, Low: 150, Volume: 60000000.456}

	want := "{current_price: 172.00, 30d_high: 172.00, 30d_low: 150.00, volume: 60000000.46}"
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, snap.String())
	}
	assert.Equal(t, map[string]float64{
		"current_price": 172,
		"30d_high":      172,
		"30d_low":       150,
		"volume":        60000000.456,
	}, snap.Map())
}
