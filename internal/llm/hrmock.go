package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HRMockClient is a deterministic offline client for development and tests.
// Responses depend only on domain keywords found in the system instructions
// and the last user message, so the full chat stack can run without a live
// model. Streaming emits one word per chunk.
type HRMockClient struct {
	// ChunkDelay adds an artificial pause between streamed chunks so the UI
	// shows incremental rendering during local development. Zero in tests.
	ChunkDelay time.Duration
}

// NewHRMockClient creates a mock client with no streaming delay.
func NewHRMockClient() *HRMockClient {
	return &HRMockClient{}
}

// Chat returns a canned response selected by keyword.
func (c *HRMockClient) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: c.respond(req)}, nil
}

// ChatStream returns the canned response split into word-sized chunks.
func (c *HRMockClient) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	text := c.respond(req)

	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)

		words := strings.Split(text, " ")
		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}
			select {
			case ch <- StreamEvent{Type: EventText, Text: chunk}:
			case <-ctx.Done():
				return
			}
			if c.ChunkDelay > 0 {
				select {
				case <-time.After(c.ChunkDelay):
				case <-ctx.Done():
					return
				}
			}
		}

		select {
		case ch <- StreamEvent{Type: EventDone, Response: &ChatResponse{Content: text}}:
		case <-ctx.Done():
		}
	}()

	return ch, nil
}

func (c *HRMockClient) respond(req ChatRequest) string {
	var system, lastUser string
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = m.Content
		case RoleUser:
			lastUser = m.Content
		}
	}

	system = strings.ToLower(system)
	message := strings.ToLower(lastUser)

	switch {
	case strings.Contains(system, "vacation"):
		return vacationMockResponse(message)
	case strings.Contains(system, "procedure"):
		return procedureMockResponse(message)
	case strings.Contains(system, "timesheet"):
		return timesheetMockResponse(message)
	}

	return fmt.Sprintf("I received your message: '%s'. This is a mock response for development purposes.", lastUser)
}

func vacationMockResponse(message string) string {
	switch {
	case strings.Contains(message, "request") || strings.Contains(message, "time off"):
		return "I can help you submit a vacation request. Could you please provide the start date, end date, and reason for your time off?"
	case strings.Contains(message, "status"):
		return "To check your vacation request status, I'll need your employee ID. Your pending requests will show their current approval status."
	case strings.Contains(message, "policy"):
		return "Our vacation policy allows employees to accrue PTO based on years of service. Full-time employees receive 15 days per year to start."
	}
	return "I'm your vacation assistant. I can help you submit vacation requests, check request status, or answer questions about our vacation policies."
}

func procedureMockResponse(message string) string {
	switch {
	case strings.Contains(message, "onboard") || strings.Contains(message, "new hire"):
		return "The onboarding process involves: 1) Complete I-9 verification, 2) Review and sign employee handbook, 3) Set up benefits enrollment, 4) Complete required training modules, 5) Meet with your manager for orientation."
	case strings.Contains(message, "benefit") || strings.Contains(message, "insurance"):
		return "To enroll in benefits, log into the HR portal within 30 days of your start date. You can select health, dental, vision insurance, and 401(k) options. Need help with a specific benefit?"
	case strings.Contains(message, "expense") || strings.Contains(message, "reimburse"):
		return "To submit an expense report: 1) Log into the expense system, 2) Upload receipts, 3) Categorize expenses, 4) Submit for manager approval. Reimbursement typically processes within 5-7 business days."
	}
	return "I'm your HR procedures assistant. I can guide you through onboarding, benefits enrollment, expense reimbursement, and other HR processes."
}

func timesheetMockResponse(message string) string {
	switch {
	case strings.Contains(message, "submit") || strings.Contains(message, "enter"):
		return "To submit your timesheet, please enter your hours worked for each day of the current pay period. Make sure to include your project code and any notes about the work performed."
	case strings.Contains(message, "correct") || strings.Contains(message, "fix") || strings.Contains(message, "change"):
		return "To correct a submitted timesheet, you'll need to contact your manager for approval first. Once approved, I can help you make the corrections. What needs to be changed?"
	case strings.Contains(message, "period"):
		return "The current pay period runs bi-weekly from Monday to Sunday. Timesheets are due by 5 PM on the Monday following the end of the pay period."
	}
	return "I'm your timesheet assistant. I can help you submit timesheets, make corrections, and answer questions about pay periods and time tracking."
}
