// Package session holds per-conversation chat state keyed by an opaque,
// caller-supplied session ID.
package session

import (
	"time"
)

// Role constrains who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session's history. Turns are immutable once
// appended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// AgentName identifies which agent produced an assistant turn. Empty for
	// user turns.
	AgentName string `json:"agentName,omitempty"`
}

// Session is a conversation context: an ordered turn history plus ownership
// and activity metadata. Values handed out by the Store are snapshots;
// mutating them does not affect stored state.
type Session struct {
	ID             string            `json:"sessionId"`
	UserID         string            `json:"userId"`
	Turns          []Turn            `json:"turns"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastActivityAt time.Time         `json:"lastActivityAt"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
