package agent

import (
	"github.com/hrdesk/hrdesk/internal/llm"
	"github.com/hrdesk/hrdesk/internal/session"
)

// Display names for the three HR agents, recorded on every assistant turn
// they produce.
const (
	VacationAgentName  = "VacationAgent"
	ProcedureAgentName = "ProcedureAgent"
	TimesheetAgentName = "TimesheetAgent"
)

// VacationInstructions is the persona for the vacation agent.
const VacationInstructions = `You are a helpful HR vacation assistant.
Your responsibilities include:
- Helping employees submit vacation requests
- Checking the status of vacation requests
- Providing information about vacation policies
- Assisting with vacation request approvals (for managers)

Be professional, friendly, and efficient. Always ask for missing information politely.
When handling vacation requests, ensure you collect: start date, end date, and reason.`

// ProcedureInstructions is the persona for the HR procedures agent.
const ProcedureInstructions = `You are a knowledgeable HR procedures assistant.
Your responsibilities include:
- Helping employees understand HR procedures and policies
- Providing step-by-step guidance through HR processes
- Answering questions about HR policies
- Recommending appropriate procedures based on employee needs

Be clear, concise, and helpful. Break down complex procedures into simple steps.`

// TimesheetInstructions is the persona for the timesheet agent.
const TimesheetInstructions = `You are a helpful timesheet assistant.
Your responsibilities include:
- Assisting employees with timesheet submissions
- Helping with timesheet corrections
- Validating timesheet entries for the current pay period
- Providing timesheet summaries and reports

Be accurate, detail-oriented, and supportive. Ensure all timesheet entries are valid before submission.`

// NewHRRouter builds the three standard HR agents over a shared chat client
// and session store and returns a router dispatching to them. The agents are
// identical in behavior; only their names and instruction texts differ.
func NewHRRouter(client llm.Client, sessions *session.Store, opts ...Option) *Router {
	return NewRouter(
		New(VacationAgentName, VacationInstructions, client, sessions, opts...),
		New(ProcedureAgentName, ProcedureInstructions, client, sessions, opts...),
		New(TimesheetAgentName, TimesheetInstructions, client, sessions, opts...),
	)
}
