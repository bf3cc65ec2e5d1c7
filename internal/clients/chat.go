package clients

import (
	"context"
	"fmt"

	"med-overflow/internal/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// systemPrompt frames every chat request; the user never controls it.
const systemPrompt = "You are a medical assistant that provides medical advice to patients."

// ChatClient forwards free-text questions to the chat-completion provider.
type ChatClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string // empty means the provider default
	Model   string
	Logger  *zap.Logger
}

// NewChatClient creates a chat-completion client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Ask sends the fixed system prompt plus the question and returns the first
// completion's text.
func (c *ChatClient) Ask(ctx context.Context, question string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Tell me " + question},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("chat completion request failed", zap.Error(err))
		return "", utils.NewUpstreamError("chat", err)
	}

	if len(resp.Choices) == 0 {
		return "", utils.NewUpstreamError("chat", fmt.Errorf("empty completion response"))
	}

	return resp.Choices[0].Message.Content, nil
}
