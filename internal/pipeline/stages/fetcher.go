package stages

import (
	"context"
	"fmt"
	"time"

	"stockbrief/internal/logger"
	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"
)

const defaultLookback = 30 * 24 * time.Hour

// DataFetcherConfig controls history retrieval.
type DataFetcherConfig struct {
	Name     string
	Lookback time.Duration
	Timeout  time.Duration
	// Now is the reference time of the window. Defaults to time.Now.
	Now func() time.Time
}

// DataFetcher pulls the lookback window from a market source and reduces it
// to a snapshot.
type DataFetcher struct {
	meta     pipeline.StageMeta
	source   market.Source
	lookback time.Duration
	now      func() time.Time
}

func NewDataFetcher(cfg DataFetcherConfig, source market.Source) *DataFetcher {
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaultLookback
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DataFetcher{
		meta: pipeline.StageMeta{
			Name:     nameOrDefault(cfg.Name, "data_fetcher"),
			Requires: pipeline.PhaseStart,
			Produces: pipeline.PhaseDataFetched,
			Timeout:  cfg.Timeout,
		},
		source:   source,
		lookback: cfg.Lookback,
		now:      cfg.Now,
	}
}

func (d *DataFetcher) Meta() pipeline.StageMeta { return d.meta }

func (d *DataFetcher) Handle(ctx context.Context, run pipeline.AnalysisRun) (pipeline.Update, error) {
	if d.source == nil {
		return pipeline.Update{}, fmt.Errorf("market source unavailable")
	}
	symbol := pipeline.NormalizeSymbol(run.Symbol)
	if symbol == "" {
		return pipeline.Update{}, fmt.Errorf("%w: empty symbol", market.ErrDataUnavailable)
	}
	logger.Infof("Fetching data for: %s", symbol)
	to := d.now()
	from := to.Add(-d.lookback)
	candles, err := d.source.FetchHistory(ctx, symbol, from, to)
	if err != nil {
		return pipeline.Update{}, fmt.Errorf("fetch %s from %s: %w", symbol, d.source.Name(), err)
	}
	if len(candles) == 0 {
		return pipeline.Update{}, fmt.Errorf("%w: no history for %s", market.ErrDataUnavailable, symbol)
	}
	snap, err := market.Summarize(candles)
	if err != nil {
		return pipeline.Update{}, err
	}
	logger.Debugf("[fetch] %s %d bars from %s: %s", symbol, len(candles), d.source.Name(), snap)
	return pipeline.Update{
		Data:   &snap,
		Series: market.Candles(candles).Sorted(),
	}, nil
}
