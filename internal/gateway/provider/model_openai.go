package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stockbrief/internal/logger"
	"stockbrief/internal/pkg/jsonutil"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ClientConfig configures an OpenAI-compatible chat endpoint (OpenAI, Groq,
// DeepSeek, a local gateway...).
type ClientConfig struct {
	ID         string
	BaseURL    string
	APIKey     string
	Model      string
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// OpenAIChatClient implements ChatModel over /chat/completions.
type OpenAIChatClient struct {
	id     string
	model  string
	client openai.Client
}

func NewOpenAIChatClient(cfg ClientConfig) (*OpenAIChatClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("chat client %s: api key is required", cfg.ID)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("chat client %s: model is required", cfg.ID)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	// tolerate a full endpoint in config, the SDK appends the path itself
	base = strings.TrimSuffix(base, "/chat/completions")
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if base != "" {
		opts = append(opts, option.WithBaseURL(base+"/"))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		id = cfg.Model
	}
	return &OpenAIChatClient{
		id:     id,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}, nil
}

func (c *OpenAIChatClient) ID() string { return c.id }

func (c *OpenAIChatClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("%w: %s: no messages", ErrInference, c.id)
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toParams(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	c.logRequest(req, params)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInference, c.id, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", ErrInference, c.id)
	}
	out := resp.Choices[0].Message.Content
	logger.LogLLMResponse(c.id, req.Purpose, out)
	logger.Debugf("[ai] %s %s done model=%s tokens=%d", c.id, req.Purpose, resp.Model, resp.Usage.TotalTokens)
	return out, nil
}

func (c *OpenAIChatClient) logRequest(req ChatRequest, params openai.ChatCompletionNewParams) {
	transcript := make([]logger.LLMMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		transcript = append(transcript, logger.LLMMessage{Role: m.Role, Content: m.Content})
	}
	logger.LogLLMRequest(c.id, req.Purpose, transcript, jsonutil.PrettyValue(params))
}

func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
