// Package llm defines the chat model client abstraction for hrdesk.
package llm

import (
	"context"
)

// Role represents a message sender role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a single chat call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the sum of all token fields.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ChatRequest contains parameters for a chat call. Messages is the complete
// ordered prompt; a leading system-role message carries the agent
// instructions and is mapped to whatever the provider expects.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// ChatResponse contains the model's response to a chat request.
type ChatResponse struct {
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// Stream event types.
const (
	EventText  = "text"
	EventDone  = "done"
	EventError = "error"
)

// StreamEvent represents an incremental event during streaming. A stream is
// a sequence of text events terminated by either a done event (carrying the
// accumulated response) or an error event.
type StreamEvent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	Response *ChatResponse `json:"response,omitempty"`
	Error    error         `json:"-"`
}

// Client is the interface for chat model interactions.
type Client interface {
	// Chat sends a request and returns the complete response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ChatStream sends a request and returns a channel of streaming events.
	// The channel is closed after the terminal event. Implementations must
	// stop producing when ctx is cancelled.
	ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error)
}
