package visual

import (
	"bytes"
	"testing"
	"time"

	"stockbrief/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int) []market.Candle {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		c := 150 + float64(i)
		out[i] = market.Candle{
			OpenTime: start.AddDate(0, 0, i).UnixMilli(),
			Open:     c - 0.5,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1000 + float64(i),
		}
	}
	return out
}

func TestRenderWritesPage(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, RunChart{Symbol: "aapl", Subtitle: "run 1", Candles: series(10)})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "AAPL 1d")
	assert.Contains(t, html, "2024-02-01")
	assert.Contains(t, html, "SMA5")
	assert.Contains(t, html, market.KeyHigh)
}

func TestRenderShortWindowSkipsSMA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, RunChart{Symbol: "MSFT", Candles: series(3)}))
	assert.NotContains(t, buf.String(), "SMA5")
}

func TestRenderRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, RunChart{Symbol: "AAPL"})
	assert.ErrorIs(t, err, market.ErrDataUnavailable)

	err = Render(&buf, RunChart{Candles: series(3)})
	assert.Error(t, err)
}

func TestToLineDataBlanksWarmup(t *testing.T) {
	out := toLineData([]float64{0, 0, 3, 4}, 2)
	assert.Nil(t, out[0].Value)
	assert.Nil(t, out[1].Value)
	assert.Equal(t, 3.0, out[2].Value)
}
