package server

import (
	"fmt"
	"net/http"
)

// doneSentinel terminates every successful stream so clients can tell a
// complete response from a dropped connection.
const doneSentinel = "[DONE]"

// sseWriter wraps an http.ResponseWriter for Server-Sent Events streaming.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEWriter prepares the response for SSE, setting the stream headers.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &sseWriter{w: w, flusher: flusher}, nil
}

// WriteChunk sends one piece of response text as a data event.
func (s *sseWriter) WriteChunk(text string) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteDone sends the terminating sentinel event.
func (s *sseWriter) WriteDone() error {
	return s.WriteChunk(doneSentinel)
}
