package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

func validate(c *Config) error {
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if err := c.Schedule.validate(c.Store); err != nil {
		return err
	}
	if err := c.Notify.Telegram.validate(c.Schedule); err != nil {
		return err
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if m.LookbackDays <= 0 || m.LookbackDays > 365 {
		return fmt.Errorf("market.lookback_days must be in [1,365]")
	}
	if m.TimeoutSeconds < 0 {
		return fmt.Errorf("market.timeout_seconds must be >= 0")
	}
	if len(m.Sources) == 0 {
		return nil
	}
	enabled := 0
	activeFound := false
	for _, src := range m.Sources {
		if !src.Enabled {
			continue
		}
		enabled++
		switch src.Name {
		case "yahoo", "binance", "gate":
		default:
			return fmt.Errorf("market source %q is not supported (yahoo, binance, gate)", src.Name)
		}
		if strings.TrimSpace(src.RESTBaseURL) == "" {
			return fmt.Errorf("market source %s missing rest_base_url", src.Name)
		}
		if src.Proxy.Enabled && src.Proxy.RESTURL == "" {
			return fmt.Errorf("market source %s has proxy enabled but no rest_url", src.Name)
		}
		if src.Name == m.ActiveSource {
			activeFound = true
		}
	}
	if enabled == 0 {
		return fmt.Errorf("market.sources requires at least one enabled source")
	}
	if !activeFound {
		return fmt.Errorf("enabled market.active_source=%s not found", m.ActiveSource)
	}
	return nil
}

func (a *AIConfig) validate() error {
	if strings.TrimSpace(a.APIURL) == "" {
		return fmt.Errorf("ai.api_url cannot be empty")
	}
	if strings.TrimSpace(a.Model) == "" {
		return fmt.Errorf("ai.model cannot be empty")
	}
	if a.APIKey == "" {
		if a.APIKeyEnv != "" {
			return fmt.Errorf("ai.api_key is empty and %s is not set", a.APIKeyEnv)
		}
		return fmt.Errorf("ai.api_key cannot be empty")
	}
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must be >= 0")
	}
	if a.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must be >= 0")
	}
	if a.BreakerThreshold < 0 {
		return fmt.Errorf("ai.breaker_threshold must be >= 0")
	}
	for name, t := range map[string]float64{
		"ai.analysis_temperature": a.AnalysisTemperature,
		"ai.report_temperature":   a.ReportTemperature,
	} {
		if t < 0 || t > 2 {
			return fmt.Errorf("%s must be in [0,2]", name)
		}
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if s.Enabled && strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("store.path cannot be empty when store is enabled")
	}
	return nil
}

func (s *ScheduleConfig) validate(store StoreConfig) error {
	if !s.Enabled {
		return nil
	}
	if len(s.Symbols) == 0 {
		return fmt.Errorf("schedule.symbols requires at least one symbol")
	}
	if _, err := cron.ParseStandard(s.Cron); err != nil {
		return fmt.Errorf("schedule.cron invalid: %w", err)
	}
	if !store.Enabled {
		return fmt.Errorf("schedule requires store.enabled, results would be discarded")
	}
	return nil
}

func (t *TelegramConfig) validate(schedule ScheduleConfig) error {
	if !t.Enabled {
		return nil
	}
	if !schedule.Enabled {
		return fmt.Errorf("notify.telegram only reports watchlist ticks, enable schedule")
	}
	if t.BotToken == "" {
		return fmt.Errorf("notify.telegram.bot_token is empty and %s is not set", t.BotTokenEnv)
	}
	if t.ChatID == "" {
		return fmt.Errorf("notify.telegram.chat_id cannot be empty")
	}
	return nil
}
