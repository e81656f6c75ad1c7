// Package assistant backs the /ask chat command with an OpenAI chat
// completion.
package assistant

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are SolMate, a helpful assistant inside a Telegram bot that manages Solana devnet wallets.
Answer questions about Solana, wallets, transfers, and the bot's commands.
Be direct and concise. If you don't know something, say so honestly.
Never ask the user for private keys or seed phrases.`

const defaultMaxTokens = 500

// completionAPI is the slice of the OpenAI client the assistant uses.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client answers free-form questions. A nil *Client means the assistant is
// not configured; callers should degrade rather than fail.
type Client struct {
	api   completionAPI
	model string
}

// New returns a configured assistant, or nil when no API key is set.
func New(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{api: openai.NewClient(apiKey), model: openai.GPT4oMini}
}

// Ask sends one question and returns the model's answer.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
