package provider

import (
	"context"
	"errors"
)

// ErrInference reports an unreachable inference service, an API error or a
// completion without choices.
var ErrInference = errors.New("inference error")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ChatRequest is one completion call. Purpose only labels logs.
type ChatRequest struct {
	Purpose     string
	Model       string
	Messages    []Message
	Temperature float64
}

// ChatModel is a hosted text-generation service.
type ChatModel interface {
	ID() string
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
