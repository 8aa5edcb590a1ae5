package provider

import (
	"fmt"
	"strings"
	"time"

	"stockbrief/internal/logger"
)

// ModelCfg mirrors the ai section of the config without importing it.
type ModelCfg struct {
	Provider, APIURL, APIKey, Model string
	Headers                         map[string]string
	Timeout                         time.Duration
	MaxRetries                      int
}

// BuildChatModel returns the chat model both inference stages share.
func BuildChatModel(m ModelCfg) (ChatModel, error) {
	base := strings.TrimSpace(m.Provider)
	if base == "" {
		base = "provider"
	}
	id := fmt.Sprintf("%s:%s", base, strings.TrimSpace(m.Model))
	client, err := NewOpenAIChatClient(ClientConfig{
		ID:         id,
		BaseURL:    m.APIURL,
		APIKey:     m.APIKey,
		Model:      m.Model,
		Headers:    m.Headers,
		Timeout:    m.Timeout,
		MaxRetries: m.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("chat model ready: %s (%s)", id, m.APIURL)
	return client, nil
}
