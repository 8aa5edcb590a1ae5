package app

import (
	"context"
	"fmt"

	"stockbrief/internal/config"
	"stockbrief/internal/gateway/notifier"
	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/logger"
	"stockbrief/internal/market"
	"stockbrief/internal/pipeline/stages"
	"stockbrief/internal/prompt"
	"stockbrief/internal/scheduler"
	"stockbrief/internal/store"
)

const pipelineName = "stockbrief"

type AppBuilder struct {
	cfg *config.Config

	marketSourceFn func(config.MarketConfig) (market.Source, error)
	chatModelFn    func(config.AIConfig) (provider.ChatModel, error)
	runStoreFn     func(config.StoreConfig) (*store.Store, error)
	notifierFn     func(config.TelegramConfig) notifier.TextNotifier
}

type AppBuilderOption func(*AppBuilder)

// WithMarketSource replaces the configured market-data source.
func WithMarketSource(src market.Source) AppBuilderOption {
	return func(b *AppBuilder) {
		b.marketSourceFn = func(config.MarketConfig) (market.Source, error) { return src, nil }
	}
}

// WithChatModel replaces the configured inference client.
func WithChatModel(m provider.ChatModel) AppBuilderOption {
	return func(b *AppBuilder) {
		b.chatModelFn = func(config.AIConfig) (provider.ChatModel, error) { return m, nil }
	}
}

// WithNotifier replaces the Telegram client used for watchlist digests.
func WithNotifier(n notifier.TextNotifier) AppBuilderOption {
	return func(b *AppBuilder) {
		b.notifierFn = func(config.TelegramConfig) notifier.TextNotifier { return n }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:            cfg,
		marketSourceFn: buildMarketSource,
		chatModelFn:    buildChatModel,
		runStoreFn:     buildRunStore,
		notifierFn:     buildNotifier,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	source, err := b.marketSourceFn(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("build market source: %w", err)
	}
	model, err := b.chatModelFn(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("build chat model: %w", err)
	}
	prompts, err := prompt.NewRegistry(cfg.Prompt.Path)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	pl, err := stages.NewPipeline(pipelineName, stages.Options{
		Source:  source,
		Model:   model,
		Prompts: prompts,
		Fetch: stages.DataFetcherConfig{
			Lookback: cfg.Market.Lookback(),
			Timeout:  cfg.Market.Timeout(),
		},
		Analysis: stages.InferenceConfig{
			Model:          cfg.AI.Model,
			Temperature:    cfg.AI.AnalysisTemperature,
			StripReasoning: cfg.AI.StripReasoning,
			Timeout:        cfg.AI.Timeout(),
		},
		Report: stages.InferenceConfig{
			Model:          cfg.AI.Model,
			Temperature:    cfg.AI.ReportTemperature,
			StripReasoning: cfg.AI.StripReasoning,
			Timeout:        cfg.AI.Timeout(),
		},
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		source:   source,
		model:    model,
		prompts:  prompts,
		pipeline: pl,
	}
	if cfg.Store.Enabled {
		runs, err := b.runStoreFn(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("open run store: %w", err)
		}
		a.runs = runs
		logger.Infof("run store at %s", cfg.Store.Path)
	}
	if cfg.Schedule.Enabled {
		wl, err := scheduler.NewWatchlist(cfg.Schedule.Cron, cfg.Schedule.Symbols, a)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.watchlist = wl
		if cfg.Notify.Telegram.Enabled {
			wl.OnTick(notifyTick(b.notifierFn(cfg.Notify.Telegram)))
			logger.Infof("watchlist digests go to telegram chat %s", cfg.Notify.Telegram.ChatID)
		}
	}
	a.Summary = newStartupSummary(cfg, source, model, prompts.Current())
	return a, nil
}

func buildRunStore(cfg config.StoreConfig) (*store.Store, error) {
	return store.Open(cfg.Path)
}
