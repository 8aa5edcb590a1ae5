package app

import (
	"stockbrief/internal/config"
	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/logger"
	"stockbrief/internal/pkg/circuit"
)

// buildChatModel returns the configured client, behind a circuit breaker when
// ai.breaker_threshold is positive.
func buildChatModel(cfg config.AIConfig) (provider.ChatModel, error) {
	model, err := provider.BuildChatModel(provider.ModelCfg{
		Provider:   cfg.Provider,
		APIURL:     cfg.APIURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Headers:    cfg.Headers,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil || cfg.BreakerThreshold <= 0 {
		return model, err
	}
	logger.Infof("inference breaker on: threshold=%d cooldown=%s", cfg.BreakerThreshold, cfg.BreakerCooldown())
	return provider.NewBreakerModel(model, circuit.New(model.ID(), cfg.BreakerThreshold, cfg.BreakerCooldown())), nil
}
