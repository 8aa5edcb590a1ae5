package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"stockbrief/internal/config"
	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/market"
	"stockbrief/internal/prompt"
)

// StartupSummary is printed once when the server starts.
type StartupSummary struct {
	Source         string
	LookbackDays   int
	Model          string
	Temperatures   [2]float64
	StripReasoning bool
	PromptSource   string
	PromptVersion  int
	Prompts        map[string]string
	StorePath      string
	Schedule       string
	Watchlist      []string
	Breaker        string
	Digest         string
	HTTPAddr       string
}

func newStartupSummary(cfg *config.Config, src market.Source, model provider.ChatModel, set prompt.Set) *StartupSummary {
	s := &StartupSummary{
		Source:         src.Name(),
		LookbackDays:   cfg.Market.LookbackDays,
		Model:          model.ID(),
		Temperatures:   [2]float64{cfg.AI.AnalysisTemperature, cfg.AI.ReportTemperature},
		StripReasoning: cfg.AI.StripReasoning,
		PromptSource:   set.Source,
		PromptVersion:  set.Version,
		Prompts:        make(map[string]string, len(set.Templates)),
		HTTPAddr:       cfg.HTTP.Addr,
	}
	for kind, tpl := range set.Templates {
		s.Prompts[string(kind)] = tpl.Text
	}
	if cfg.Store.Enabled {
		s.StorePath = cfg.Store.Path
	}
	if cfg.Schedule.Enabled {
		s.Schedule = cfg.Schedule.Cron
		s.Watchlist = append([]string(nil), cfg.Schedule.Symbols...)
		if cfg.Notify.Telegram.Enabled {
			s.Digest = "telegram " + cfg.Notify.Telegram.ChatID
		}
	}
	if cfg.AI.BreakerThreshold > 0 {
		s.Breaker = fmt.Sprintf("%d failures, %s cooldown", cfg.AI.BreakerThreshold, cfg.AI.BreakerCooldown())
	}
	return s
}

func (s *StartupSummary) Print() {
	s.Fprint(os.Stderr)
}

func (s *StartupSummary) Fprint(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "STARTUP SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[MARKET]")
	fmt.Fprintf(w, "  source:   %s\n", s.Source)
	fmt.Fprintf(w, "  lookback: %dd\n", s.LookbackDays)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[MODEL]")
	fmt.Fprintf(w, "  id:              %s\n", s.Model)
	fmt.Fprintf(w, "  temperatures:    analysis=%.2f report=%.2f\n", s.Temperatures[0], s.Temperatures[1])
	fmt.Fprintf(w, "  strip reasoning: %v\n", s.StripReasoning)
	fmt.Fprintf(w, "  breaker:         %s\n", orDash(s.Breaker))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "[PROMPTS] %s v%d\n", s.PromptSource, s.PromptVersion)
	names := make([]string, 0, len(s.Prompts))
	for name := range s.Prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		preview := s.Prompts[name]
		lines := strings.Split(preview, "\n")
		if len(lines) > 3 {
			preview = strings.Join(lines[:3], "\n") + "\n... (truncated)"
		}
		preview = strings.ReplaceAll(preview, "\n", "\n    ")
		fmt.Fprintf(w, "  > %s:\n    %s\n", name, preview)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[SERVICE]")
	fmt.Fprintf(w, "  http:      %s\n", orDash(s.HTTPAddr))
	fmt.Fprintf(w, "  store:     %s\n", orDash(s.StorePath))
	fmt.Fprintf(w, "  schedule:  %s\n", orDash(s.Schedule))
	fmt.Fprintf(w, "  watchlist: %s\n", formatList(s.Watchlist))
	fmt.Fprintf(w, "  digest:    %s\n", orDash(s.Digest))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
