package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Type identifies one of the HR agent domains. The set is closed: any other
// value is rejected at the router before any session or model interaction.
type Type string

const (
	TypeVacation  Type = "vacation"
	TypeProcedure Type = "procedure"
	TypeTimesheet Type = "timesheet"
)

// ErrUnknownType is returned when an agent-type token is not in the closed
// enumeration.
var ErrUnknownType = errors.New("unrecognized agent type")

// Types returns the closed enumeration of agent types, in routing order.
func Types() []Type {
	return []Type{TypeVacation, TypeProcedure, TypeTimesheet}
}

// ParseType matches a token against the enumeration, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case string(TypeVacation):
		return TypeVacation, nil
	case string(TypeProcedure):
		return TypeProcedure, nil
	case string(TypeTimesheet):
		return TypeTimesheet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Router is a stateless dispatch table from agent type to agent instance. It
// is the sole entry point from the transport layer into the chat core.
type Router struct {
	agents map[Type]*Agent
}

// NewRouter creates a router over the three domain agents.
func NewRouter(vacation, procedure, timesheet *Agent) *Router {
	return &Router{agents: map[Type]*Agent{
		TypeVacation:  vacation,
		TypeProcedure: procedure,
		TypeTimesheet: timesheet,
	}}
}

// Route forwards a message to the agent for agentType and returns its
// response. An unrecognized type fails before any store or model interaction.
func (r *Router) Route(ctx context.Context, agentType, message, sessionID string) (string, error) {
	a, err := r.resolve(agentType)
	if err != nil {
		return "", err
	}
	return a.ProcessMessage(ctx, message, sessionID)
}

// Stream forwards a message to the agent for agentType in streaming mode.
func (r *Router) Stream(ctx context.Context, agentType, message, sessionID string) (<-chan Chunk, error) {
	a, err := r.resolve(agentType)
	if err != nil {
		return nil, err
	}
	return a.ProcessMessageStream(ctx, message, sessionID)
}

// Lookup returns the agent registered for t, or nil.
func (r *Router) Lookup(t Type) *Agent {
	return r.agents[t]
}

func (r *Router) resolve(agentType string) (*Agent, error) {
	t, err := ParseType(agentType)
	if err != nil {
		return nil, err
	}
	return r.agents[t], nil
}
