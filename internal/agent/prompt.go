package agent

import (
	"github.com/hrdesk/hrdesk/internal/llm"
	"github.com/hrdesk/hrdesk/internal/session"
)

// BuildPrompt assembles the ordered message sequence for one chat call:
// system instructions, then one message per stored turn in insertion order,
// then the new user message. Stored "user" turns map to the user role;
// anything else maps to assistant. The function is pure; it is rebuilt fresh
// on every call so conversation growth is always reflected. Pass sess == nil
// when no session history exists yet.
func BuildPrompt(instructions string, sess *session.Session, message string) []llm.Message {
	capacity := 2
	if sess != nil {
		capacity += len(sess.Turns)
	}

	messages := make([]llm.Message, 0, capacity)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: instructions})

	if sess != nil {
		for _, turn := range sess.Turns {
			role := llm.RoleAssistant
			if turn.Role == session.RoleUser {
				role = llm.RoleUser
			}
			messages = append(messages, llm.Message{Role: role, Content: turn.Content})
		}
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	return messages
}
