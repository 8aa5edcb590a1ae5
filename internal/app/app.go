package app

import (
	"context"
	"errors"
	"fmt"

	"stockbrief/internal/config"
	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/logger"
	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"
	"stockbrief/internal/prompt"
	"stockbrief/internal/scheduler"
	"stockbrief/internal/store"
	apihttp "stockbrief/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App wires config, collaborators and the pipeline for the CLI and server.
type App struct {
	cfg       *config.Config
	source    market.Source
	model     provider.ChatModel
	prompts   *prompt.Registry
	pipeline  *pipeline.Pipeline
	runs      *store.Store
	watchlist *scheduler.Watchlist
	Summary   *StartupSummary
}

// NewApp builds the application without starting anything.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return NewAppBuilder(cfg, opts...).Build(ctx)
}

// Analyze runs the pipeline for one symbol and records the outcome when the
// run store is enabled. A store failure is logged and does not mask the run
// result.
func (a *App) Analyze(ctx context.Context, symbol string) (pipeline.AnalysisRun, error) {
	if a == nil || a.pipeline == nil {
		return pipeline.AnalysisRun{}, errors.New("app not initialized")
	}
	run, err := a.pipeline.Run(ctx, symbol)
	if a.runs != nil && run.ID != "" {
		meta := store.RunMeta{Source: a.source.Name(), Model: a.model.ID()}
		if _, saveErr := a.runs.SaveRun(context.WithoutCancel(ctx), run, meta, err); saveErr != nil {
			logger.Errorf("persist run %s failed: %v", run.ID, saveErr)
		}
	}
	return run, err
}

// Serve runs the HTTP API and, when configured, the watchlist scheduler and
// prompt watcher until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	cfg := apihttp.ServerConfig{Addr: a.cfg.HTTP.Addr, Analyzer: a}
	if a.runs != nil {
		cfg.Runs = a.runs
	}
	srv, err := apihttp.NewServer(cfg)
	if err != nil {
		return err
	}
	if a.cfg.Prompt.Watch && a.prompts != nil {
		if err := a.prompts.Watch(); err != nil {
			logger.Warnf("prompt hot reload disabled: %v", err)
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	if a.watchlist != nil {
		group.Go(func() error {
			return a.watchlist.Run(ctx)
		})
	}
	return group.Wait()
}

// Close releases the run store.
func (a *App) Close() error {
	if a == nil || a.runs == nil {
		return nil
	}
	return a.runs.Close()
}

func (a *App) Config() *config.Config {
	if a == nil {
		return nil
	}
	return a.cfg
}
