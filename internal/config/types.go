package config

import (
	"strings"
	"time"
)

// Config is the root configuration of stockbrief.
type Config struct {
	App      AppConfig      `toml:"app"`
	Market   MarketConfig   `toml:"market"`
	AI       AIConfig       `toml:"ai"`
	Prompt   PromptConfig   `toml:"prompt"`
	Store    StoreConfig    `toml:"store"`
	Schedule ScheduleConfig `toml:"schedule"`
	HTTP     HTTPConfig     `toml:"http"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
	LLMLog    string `toml:"llm_log_path"`
	LLMDump   bool   `toml:"llm_dump_payload"`
}

// MarketConfig selects the market-data source and the lookback window.
type MarketConfig struct {
	ActiveSource   string         `toml:"active_source"`
	LookbackDays   int            `toml:"lookback_days"`
	TimeoutSeconds int            `toml:"timeout_seconds"`
	Sources        []MarketSource `toml:"sources"`
}

type MarketSource struct {
	Name        string            `toml:"name"`
	Enabled     bool              `toml:"enabled"`
	RESTBaseURL string            `toml:"rest_base_url"`
	Proxy       ProxyConfig       `toml:"proxy"`
	SymbolMap   map[string]string `toml:"symbol_map"`
}

type ProxyConfig struct {
	Enabled bool   `toml:"enabled"`
	RESTURL string `toml:"rest_url"`
}

func (m MarketConfig) Lookback() time.Duration {
	return time.Duration(m.LookbackDays) * 24 * time.Hour
}

func (m MarketConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// ResolveActiveSource returns the enabled source named by active_source, the
// first enabled source when active_source is empty, or the built-in Yahoo
// source when none is configured.
func (m MarketConfig) ResolveActiveSource() MarketSource {
	if len(m.Sources) == 0 {
		return MarketSource{
			Name:        defaultMarketName,
			Enabled:     true,
			RESTBaseURL: defaultMarketREST,
		}
	}
	active := strings.ToLower(strings.TrimSpace(m.ActiveSource))
	var fallback MarketSource
	for _, src := range m.Sources {
		if fallback.Name == "" {
			fallback = src
		}
		if !src.Enabled {
			continue
		}
		if active == "" || strings.ToLower(src.Name) == active {
			return src
		}
	}
	return fallback
}

// AIConfig describes the OpenAI-compatible chat endpoint used by both
// inference stages.
type AIConfig struct {
	Provider            string            `toml:"provider"`
	APIURL              string            `toml:"api_url"`
	APIKey              string            `toml:"api_key"`
	APIKeyEnv           string            `toml:"api_key_env"`
	Model               string            `toml:"model"`
	Headers             map[string]string `toml:"headers"`
	TimeoutSeconds      int               `toml:"timeout_seconds"`
	MaxRetries          int               `toml:"max_retries"`
	AnalysisTemperature float64           `toml:"analysis_temperature"`
	ReportTemperature   float64           `toml:"report_temperature"`
	StripReasoning      bool              `toml:"strip_reasoning"`
	BreakerThreshold    int               `toml:"breaker_threshold"`
	BreakerCooldownSecs int               `toml:"breaker_cooldown_seconds"`
}

func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// BreakerCooldown is how long an open breaker rejects calls before probing.
func (a AIConfig) BreakerCooldown() time.Duration {
	return time.Duration(a.BreakerCooldownSecs) * time.Second
}

// PromptConfig points at an optional prompt-set file overriding the embedded
// defaults. Watch enables hot reload (server only).
type PromptConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ScheduleConfig drives the server's watchlist job.
type ScheduleConfig struct {
	Enabled bool     `toml:"enabled"`
	Cron    string   `toml:"cron"`
	Symbols []string `toml:"symbols"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// NotifyConfig sends a digest of each watchlist tick to Telegram.
type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled     bool   `toml:"enabled"`
	BotToken    string `toml:"bot_token"`
	BotTokenEnv string `toml:"bot_token_env"`
	ChatID      string `toml:"chat_id"`
	APIURL      string `toml:"api_url"`
}

// keySet tracks the config paths explicitly present in the loaded files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
