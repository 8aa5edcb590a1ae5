package gate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockbrief/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src, err := New(Config{RESTBaseURL: srv.URL, HTTPTimeout: 5 * time.Second})
	require.NoError(t, err)
	return src
}

func TestFetchHistory_DailyCandles(t *testing.T) {
	to := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -30)
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spot/candlesticks", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "ETH_USDT", q.Get("currency_pair"))
		assert.Equal(t, "1d", q.Get("interval"))
		assert.Equal(t, "1714694400", q.Get("from"))
		assert.Empty(t, q.Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
["1717200000","4560000","3800.5","3850","3700","3760","1200.5","true"],
["bad"],
["1717286400","5100000","3900","3950","3790","3800.5","1310","false"]]`))
	})

	bars, err := src.FetchHistory(context.Background(), "ethusdt", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(1717286400000), bars[1].OpenTime)
	assert.Equal(t, 3800.5, bars[1].Open)
	assert.Equal(t, 3950.0, bars[1].High)
	assert.Equal(t, 3790.0, bars[1].Low)
	assert.Equal(t, 3900.0, bars[1].Close)
	assert.Equal(t, 1310.0, bars[1].Volume)
}

func TestFetchHistory_UnknownPair(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"label":"INVALID_CURRENCY_PAIR","message":"Invalid currency pair ZZZ_USDT"}`))
	})

	_, err := src.FetchHistory(context.Background(), "ZZZ/USDT", time.Now().AddDate(0, 0, -30), time.Now())
	assert.ErrorIs(t, err, market.ErrDataUnavailable)
}

func TestFetchHistory_StockTickerRejected(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a non-pair symbol")
	})

	_, err := src.FetchHistory(context.Background(), "AAPL", time.Now().AddDate(0, 0, -30), time.Now())
	assert.ErrorIs(t, err, market.ErrDataUnavailable)
}

func TestFetchHistory_Empty(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := src.FetchHistory(context.Background(), "BTC_USDT", time.Now().AddDate(0, 0, -30), time.Now())
	assert.ErrorIs(t, err, market.ErrDataUnavailable)
}
