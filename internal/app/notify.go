package app

import (
	"context"
	"fmt"
	"time"

	"stockbrief/internal/config"
	"stockbrief/internal/gateway/notifier"
	"stockbrief/internal/logger"
	"stockbrief/internal/pkg/text"
	"stockbrief/internal/scheduler"
)

const (
	notifyTimeout      = 30 * time.Second
	digestReportLength = 280
)

func buildNotifier(cfg config.TelegramConfig) notifier.TextNotifier {
	return notifier.NewTelegram(cfg.APIURL, cfg.BotToken, cfg.ChatID)
}

// watchlistDigest summarizes one tick: a section per symbol with its final
// phase and either the head of the report or the error.
func watchlistDigest(results []scheduler.Result, at time.Time) notifier.StructuredMessage {
	failed := 0
	sections := make([]notifier.MessageSection, 0, len(results))
	for _, res := range results {
		sec := notifier.MessageSection{Title: res.Symbol}
		if res.Err != nil {
			failed++
			sec.Lines = append(sec.Lines,
				fmt.Sprintf("failed at %s", res.Phase),
				text.Truncate(text.OneLine(res.Err.Error()), digestReportLength),
			)
		} else {
			sec.Lines = append(sec.Lines, text.Truncate(text.OneLine(res.Report), digestReportLength))
		}
		if res.RunID != "" {
			sec.Lines = append(sec.Lines, "run "+res.RunID)
		}
		sections = append(sections, sec)
	}
	return notifier.StructuredMessage{
		Title:     "Watchlist analysis",
		Sections:  sections,
		Footer:    fmt.Sprintf("%d analyzed, %d failed", len(results)-failed, failed),
		Timestamp: at,
	}
}

// notifyTick returns a watchlist callback that pushes the digest. Delivery
// failures are logged only.
func notifyTick(n notifier.TextNotifier) func([]scheduler.Result) {
	return func(results []scheduler.Result) {
		if len(results) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		msg := watchlistDigest(results, time.Now())
		if err := n.SendText(ctx, msg.RenderMarkdown()); err != nil {
			logger.Warnf("watchlist digest not delivered: %v", err)
		}
	}
}
