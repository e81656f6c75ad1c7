package assistant

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeCompletionAPI struct {
	resp openai.ChatCompletionResponse
	err  error
	last openai.ChatCompletionRequest
}

func (f *fakeCompletionAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.last = req
	return f.resp, f.err
}

func TestNewWithoutKey(t *testing.T) {
	if c := New(""); c != nil {
		t.Error("New(\"\") should return nil so callers can degrade")
	}
}

func TestAsk(t *testing.T) {
	api := &fakeCompletionAPI{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "A lamport is one billionth of a SOL."}},
			},
		},
	}
	c := &Client{api: api, model: openai.GPT4oMini}

	answer, err := c.Ask(context.Background(), "what is a lamport?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != "A lamport is one billionth of a SOL." {
		t.Errorf("Ask() = %q", answer)
	}

	if len(api.last.Messages) != 2 {
		t.Fatalf("sent %d messages, want system + user", len(api.last.Messages))
	}
	if api.last.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role = %q, want system", api.last.Messages[0].Role)
	}
	if api.last.Messages[1].Content != "what is a lamport?" {
		t.Errorf("user message = %q", api.last.Messages[1].Content)
	}
}

func TestAskUpstreamError(t *testing.T) {
	c := &Client{api: &fakeCompletionAPI{err: errors.New("rate limited")}, model: openai.GPT4oMini}

	if _, err := c.Ask(context.Background(), "hi"); err == nil {
		t.Error("Ask() should propagate upstream failures")
	}
}

func TestAskEmptyChoices(t *testing.T) {
	c := &Client{api: &fakeCompletionAPI{}, model: openai.GPT4oMini}

	if _, err := c.Ask(context.Background(), "hi"); err == nil {
		t.Error("Ask() should fail when the response carries no choices")
	}
}
