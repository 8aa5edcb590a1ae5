package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleRun(id, symbol string, started time.Time) pipeline.AnalysisRun {
	return pipeline.AnalysisRun{
		ID:     id,
		Symbol: symbol,
		Phase:  pipeline.PhaseDone,
		Data:   market.Snapshot{CurrentPrice: 172, High: 172, Low: 150, Volume: 1e6},
		Series: []market.Candle{
			{OpenTime: started.Add(-48 * time.Hour).UnixMilli(), Close: 170, Volume: 1e6},
			{OpenTime: started.Add(-24 * time.Hour).UnixMilli(), Close: 172, Volume: 1e6},
		},
		Analysis:   "analysis",
		Report:     "report",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := st.SaveRun(ctx, sampleRun("run-1", "AAPL", started), RunMeta{Source: "yahoo", Model: "groq:m"}, nil)
	require.NoError(t, err)

	rec, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, StatusDone, rec.Status)
	assert.Equal(t, "done", rec.Phase)
	assert.Equal(t, "yahoo", rec.Source)
	assert.Equal(t, "report", rec.Report)

	snap, err := rec.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 150.0, snap.Low)

	candles, err := rec.Candles()
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 172.0, candles[1].Close)
}

func TestSaveFailedRunAndOverwrite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	run := pipeline.AnalysisRun{ID: "run-x", Symbol: "ZZZZ", Phase: pipeline.PhaseStart, StartedAt: time.Now()}

	_, err := st.SaveRun(ctx, run, RunMeta{}, errors.New("market data unavailable"))
	require.NoError(t, err)
	rec, err := st.GetRun(ctx, "run-x")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "start", rec.Phase)
	assert.Equal(t, "market data unavailable", rec.Error)
	assert.Empty(t, rec.Data)

	run.Phase = pipeline.PhaseDone
	_, err = st.SaveRun(ctx, run, RunMeta{}, nil)
	require.NoError(t, err)
	rec, err = st.GetRun(ctx, "run-x")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, rec.Status)
}

func TestGetRunNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRunRequiresID(t *testing.T) {
	st := openTestStore(t)
	_, err := st.SaveRun(context.Background(), pipeline.AnalysisRun{Symbol: "AAPL"}, RunMeta{}, nil)
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, sym := range []string{"AAPL", "MSFT", "AAPL"} {
		_, err := st.SaveRun(ctx, sampleRun(sym+string(rune('a'+i)), sym, base.Add(time.Duration(i)*time.Hour)), RunMeta{}, nil)
		require.NoError(t, err)
	}

	all, err := st.ListRuns(ctx, RunQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AAPLc", all[0].ID)
	assert.Empty(t, all[0].Series)

	aapl, err := st.ListRuns(ctx, RunQuery{Symbol: "aapl", Limit: 1})
	require.NoError(t, err)
	require.Len(t, aapl, 1)
	assert.Equal(t, "AAPLc", aapl[0].ID)
}
