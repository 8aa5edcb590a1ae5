package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultTelegramURL = "https://api.telegram.org"
	telegramAttempts   = 3
)

// Telegram posts to the Bot API sendMessage endpoint.
type Telegram struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Client   *http.Client
	// Backoff is the wait before attempt n+1 is n*Backoff.
	Backoff time.Duration
}

func NewTelegram(baseURL, botToken, chatID string) *Telegram {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultTelegramURL
	}
	return &Telegram{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		BotToken: botToken,
		ChatID:   chatID,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Backoff:  time.Second,
	}
}

// SendText tries up to three times. Client errors other than 429 are not
// retried.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("telegram: bot token and chat id are required")
	}
	body, err := json.Marshal(map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)

	var lastErr error
	for attempt := 1; attempt <= telegramAttempts; attempt++ {
		retry, err := t.post(ctx, url, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == telegramAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * t.Backoff):
		}
	}
	return lastErr
}

func (t *Telegram) post(ctx context.Context, url string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode/100 == 2 && gjson.GetBytes(raw, "ok").Bool() {
		return false, nil
	}
	desc := gjson.GetBytes(raw, "description").String()
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return retry, fmt.Errorf("telegram: status=%d %s", resp.StatusCode, desc)
}
