package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse configures a single response from the mock client.
type MockResponse struct {
	Content string
	Usage   TokenUsage
	Error   error

	// Chunks, when set, overrides Content for streaming calls: each entry is
	// emitted as one text event. Content is still used for non-streaming
	// calls and should match the concatenation when both are relevant.
	Chunks []string
}

// MockClient is a configurable scripted client for testing.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	callIndex int
	calls     []ChatRequest
}

// NewMockClient creates a mock client with a sequence of responses.
// Responses are returned in order; if exhausted, the last response repeats.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

// Chat returns the next configured response.
func (m *MockClient) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{Content: resp.Content, Usage: resp.Usage}, nil
}

// ChatStream returns streaming events for the next configured response.
func (m *MockClient) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}

	chunks := resp.Chunks
	if chunks == nil && resp.Content != "" {
		chunks = []string{resp.Content}
	}

	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)

		var full string
		for _, chunk := range chunks {
			full += chunk
			select {
			case ch <- StreamEvent{Type: EventText, Text: chunk}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case ch <- StreamEvent{Type: EventDone, Response: &ChatResponse{Content: full, Usage: resp.Usage}}:
		case <-ctx.Done():
		}
	}()

	return ch, nil
}

func (m *MockClient) next(req ChatRequest) (MockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.responses) == 0 {
		return MockResponse{}, fmt.Errorf("mock: no responses configured")
	}

	idx := m.callIndex
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	} else {
		m.callIndex++
	}

	resp := m.responses[idx]
	if resp.Error != nil {
		return MockResponse{}, resp.Error
	}
	return resp, nil
}

// Calls returns all requests made to the mock client.
func (m *MockClient) Calls() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatRequest(nil), m.calls...)
}

// Reset clears call history and resets the response index.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callIndex = 0
	m.calls = nil
}
