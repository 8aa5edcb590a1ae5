package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (s *stubAnalyzer) Analyze(_ context.Context, symbol string) (pipeline.AnalysisRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, symbol)
	if err := s.fail[symbol]; err != nil {
		return pipeline.AnalysisRun{ID: "id-" + symbol, Symbol: symbol, Phase: pipeline.PhaseStart}, err
	}
	return pipeline.AnalysisRun{ID: "id-" + symbol, Symbol: symbol, Phase: pipeline.PhaseDone}, nil
}

func TestNewWatchlistValidates(t *testing.T) {
	an := &stubAnalyzer{}
	_, err := NewWatchlist("not a cron", []string{"AAPL"}, an)
	assert.Error(t, err)

	_, err = NewWatchlist("30 16 * * 1-5", []string{" ", ""}, an)
	assert.Error(t, err)

	_, err = NewWatchlist("30 16 * * 1-5", []string{"AAPL"}, nil)
	assert.Error(t, err)

	w, err := NewWatchlist("30 16 * * 1-5", []string{"aapl", "MSFT", "AAPL"}, an)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, w.Symbols())
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	an := &stubAnalyzer{fail: map[string]error{"ZZZZ": market.ErrDataUnavailable}}
	w, err := NewWatchlist("@daily", []string{"AAPL", "ZZZZ", "MSFT"}, an)
	require.NoError(t, err)

	results := w.RunOnce(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, []string{"AAPL", "ZZZZ", "MSFT"}, an.calls)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, market.ErrDataUnavailable)
	assert.Equal(t, pipeline.PhaseStart, results[1].Phase)
	assert.Equal(t, "id-MSFT", results[2].RunID)
}

func TestRunOnceStopsOnCancel(t *testing.T) {
	an := &stubAnalyzer{}
	w, err := NewWatchlist("@daily", []string{"AAPL", "MSFT"}, an)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := w.RunOnce(ctx)
	require.Len(t, results, 2)
	assert.True(t, errors.Is(results[0].Err, context.Canceled))
	assert.Empty(t, an.calls)
}

func TestTickReportsResults(t *testing.T) {
	an := &stubAnalyzer{}
	w, err := NewWatchlist("@daily", []string{"AAPL"}, an)
	require.NoError(t, err)

	var got []Result
	w.OnTick(func(r []Result) { got = r })
	w.tick()
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Symbol)
}

func TestRunReturnsOnCancel(t *testing.T) {
	w, err := NewWatchlist("@daily", []string{"AAPL"}, &stubAnalyzer{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
