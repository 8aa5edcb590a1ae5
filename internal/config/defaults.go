package config

import (
	"strings"
)

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultMarketName      = "yahoo"
	defaultMarketREST      = "https://query1.finance.yahoo.com"
	defaultBinanceREST     = "https://api.binance.com"
	defaultGateREST        = "https://api.gateio.ws/api/v4"
	defaultLookbackDays    = 30
	defaultMarketTimeout   = 30
	defaultAIProvider      = "groq"
	defaultAIURL           = "https://api.groq.com/openai/v1"
	defaultAIKeyEnv        = "GROQ_API_KEY"
	defaultAIModel         = "deepseek-r1-distill-llama-70b"
	defaultAITimeout       = 120
	defaultAnalysisTemp    = 0.7
	defaultReportTemp      = 0.5
	defaultStorePath       = "data/stockbrief.db"
	defaultScheduleCron    = "30 16 * * 1-5"
	defaultHTTPAddr        = ":9992"
	defaultBreakerCooldown = 60
	defaultTelegramURL     = "https://api.telegram.org"
	defaultTelegramEnv     = "TELEGRAM_BOT_TOKEN"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Market.applyDefaults(keys)
	c.AI.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Schedule.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
	c.Notify.Telegram.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
}

func (m *MarketConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		intFieldDefault("market.lookback_days", &m.LookbackDays, defaultLookbackDays),
		intFieldDefault("market.timeout_seconds", &m.TimeoutSeconds, defaultMarketTimeout),
	)
	for i := range m.Sources {
		src := &m.Sources[i]
		src.Name = strings.ToLower(strings.TrimSpace(src.Name))
		src.Proxy.RESTURL = strings.TrimSpace(src.Proxy.RESTURL)
		if strings.TrimSpace(src.RESTBaseURL) != "" {
			continue
		}
		switch src.Name {
		case "yahoo":
			src.RESTBaseURL = defaultMarketREST
		case "binance":
			src.RESTBaseURL = defaultBinanceREST
		case "gate":
			src.RESTBaseURL = defaultGateREST
		}
	}
	if strings.TrimSpace(m.ActiveSource) == "" {
		m.ActiveSource = firstEnabledMarket(m.Sources)
	}
	m.ActiveSource = strings.ToLower(strings.TrimSpace(m.ActiveSource))
}

func (a *AIConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("ai.provider", &a.Provider, defaultAIProvider),
		stringFieldDefault("ai.api_url", &a.APIURL, defaultAIURL),
		stringFieldDefault("ai.api_key_env", &a.APIKeyEnv, defaultAIKeyEnv),
		stringFieldDefault("ai.model", &a.Model, defaultAIModel),
		intFieldDefault("ai.timeout_seconds", &a.TimeoutSeconds, defaultAITimeout),
		floatFieldDefault("ai.analysis_temperature", &a.AnalysisTemperature, defaultAnalysisTemp),
		floatFieldDefault("ai.report_temperature", &a.ReportTemperature, defaultReportTemp),
		boolFieldDefault("ai.strip_reasoning", &a.StripReasoning, true),
		intFieldDefault("ai.breaker_cooldown_seconds", &a.BreakerCooldownSecs, defaultBreakerCooldown),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func (s *ScheduleConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("schedule.cron", &s.Cron, defaultScheduleCron),
	)
	s.Symbols = normalizeSymbolList(s.Symbols)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr),
	)
}

func (t *TelegramConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("notify.telegram.api_url", &t.APIURL, defaultTelegramURL),
		stringFieldDefault("notify.telegram.bot_token_env", &t.BotTokenEnv, defaultTelegramEnv),
	)
	t.ChatID = strings.TrimSpace(t.ChatID)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return strings.TrimSpace(*target) == "" },
		apply: func() { *target = def },
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return *target <= 0 },
		apply: func() { *target = def },
	}
}

// floatFieldDefault only looks at whether the key was set: 0 is a valid
// temperature.
func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:   key,
		apply: func() { *target = def },
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:   key,
		apply: func() { *target = def },
	}
}

func firstEnabledMarket(sources []MarketSource) string {
	for _, src := range sources {
		name := strings.TrimSpace(src.Name)
		if src.Enabled && name != "" {
			return name
		}
	}
	if len(sources) > 0 {
		if name := strings.TrimSpace(sources[0].Name); name != "" {
			return name
		}
	}
	return defaultMarketName
}

func normalizeSymbolList(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
