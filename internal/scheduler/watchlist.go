// Package scheduler runs the analysis pipeline for a fixed watchlist on a
// cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"stockbrief/internal/logger"
	"stockbrief/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// Analyzer runs one pipeline pass. Persisting the result is its concern.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (pipeline.AnalysisRun, error)
}

// Result is the outcome of one symbol in a tick.
type Result struct {
	Symbol string
	RunID  string
	Phase  pipeline.Phase
	Report string
	Err    error
}

// Watchlist analyzes each symbol in turn on every cron tick. A tick that is
// still running when the next one fires is skipped.
type Watchlist struct {
	spec     string
	symbols  []string
	analyzer Analyzer
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	onTick func([]Result)
}

// NewWatchlist validates the standard five-field cron spec.
func NewWatchlist(spec string, symbols []string, analyzer Analyzer) (*Watchlist, error) {
	if analyzer == nil {
		return nil, errors.New("watchlist requires an analyzer")
	}
	spec = strings.TrimSpace(spec)
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid watchlist schedule %q: %w", spec, err)
	}
	list := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		sym := pipeline.NormalizeSymbol(s)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		list = append(list, sym)
	}
	if len(list) == 0 {
		return nil, errors.New("watchlist has no symbols")
	}
	cl := cronLogger{}
	return &Watchlist{
		spec:     spec,
		symbols:  list,
		analyzer: analyzer,
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
	}, nil
}

func (w *Watchlist) Symbols() []string {
	return append([]string(nil), w.symbols...)
}

// OnTick registers a callback that receives each tick's results.
func (w *Watchlist) OnTick(fn func([]Result)) {
	w.mu.Lock()
	w.onTick = fn
	w.mu.Unlock()
}

// RunOnce analyzes every symbol sequentially. A failing symbol does not stop
// the others.
func (w *Watchlist) RunOnce(ctx context.Context) []Result {
	out := make([]Result, 0, len(w.symbols))
	for _, sym := range w.symbols {
		if ctx.Err() != nil {
			out = append(out, Result{Symbol: sym, Err: ctx.Err()})
			continue
		}
		run, err := w.analyzer.Analyze(ctx, sym)
		res := Result{Symbol: sym, RunID: run.ID, Phase: run.Phase, Report: run.Report, Err: err}
		if err != nil {
			logger.Warnf("[watchlist] %s failed at %s: %v", sym, run.Phase, err)
		} else {
			logger.Infof("[watchlist] %s analyzed run=%s", sym, run.ID)
		}
		out = append(out, res)
	}
	return out
}

// Run starts the cron loop and blocks until ctx is cancelled. In-flight ticks
// are cancelled through ctx and awaited before Run returns.
func (w *Watchlist) Run(ctx context.Context) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()
	if _, err := w.cron.AddFunc(w.spec, w.tick); err != nil {
		return fmt.Errorf("register watchlist: %w", err)
	}
	w.cron.Start()
	logger.Infof("[watchlist] started schedule=%q symbols=%s", w.spec, strings.Join(w.symbols, ","))
	<-ctx.Done()
	<-w.cron.Stop().Done()
	logger.Infof("[watchlist] stopped")
	return nil
}

func (w *Watchlist) tick() {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	w.Tick(ctx)
}

// Tick runs one pass and hands the results to the OnTick callback.
func (w *Watchlist) Tick(ctx context.Context) []Result {
	results := w.RunOnce(ctx)
	w.mu.Lock()
	fn := w.onTick
	w.mu.Unlock()
	if fn != nil {
		fn(results)
	}
	return results
}

// cronLogger routes cron's own messages into the package logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debugf("[cron] %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Errorf("[cron] %s: %v %v", msg, err, keysAndValues)
}
