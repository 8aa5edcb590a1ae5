package market

import (
	"context"
	"errors"
	"time"
)

// ErrDataUnavailable reports an unknown symbol or an empty price series.
var ErrDataUnavailable = errors.New("market data unavailable")

// Source retrieves daily price/volume history for a symbol.
type Source interface {
	Name() string

	// FetchHistory returns the daily bars between from and to, oldest
	// first. An unknown symbol or an empty window yields ErrDataUnavailable.
	FetchHistory(ctx context.Context, symbol string, from, to time.Time) ([]Candle, error)
}
