package session

import (
	"sync"
	"time"
)

// Store is a concurrency-safe in-memory session store. Sessions for
// different IDs never block each other; operations on the same ID are
// serialized per individual append, not across a whole request.
type Store struct {
	sessions sync.Map // session ID → *entry
}

type entry struct {
	mu sync.Mutex
	s  Session
}

// snapshot returns a copy safe to hand to callers.
func (e *entry) snapshot() Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.s
	s.Turns = append([]Turn(nil), e.s.Turns...)
	if e.s.Metadata != nil {
		s.Metadata = make(map[string]string, len(e.s.Metadata))
		for k, v := range e.s.Metadata {
			s.Metadata[k] = v
		}
	}
	return s
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// GetOrCreate returns the session for sessionID, materializing a new empty
// session owned by userID on first reference. Under concurrent calls with the
// same ID exactly one session is created; losers observe the winner's
// session, so a second caller's userID never overwrites the owner.
func (st *Store) GetOrCreate(sessionID, userID string) Session {
	now := time.Now()
	candidate := &entry{s: Session{
		ID:             sessionID,
		UserID:         userID,
		CreatedAt:      now,
		LastActivityAt: now,
	}}
	actual, _ := st.sessions.LoadOrStore(sessionID, candidate)
	return actual.(*entry).snapshot()
}

// Get is a pure lookup; it never creates.
func (st *Store) Get(sessionID string) (Session, bool) {
	v, ok := st.sessions.Load(sessionID)
	if !ok {
		return Session{}, false
	}
	return v.(*entry).snapshot(), true
}

// AppendTurn appends an immutable turn to an existing session and bumps its
// last-activity timestamp. Appending to an absent session is a silent no-op:
// it does not fail and does not create. Callers that need the session to
// exist call GetOrCreate first.
func (st *Store) AppendTurn(sessionID string, role Role, content, agentName string) {
	v, ok := st.sessions.Load(sessionID)
	if !ok {
		return
	}

	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	e.s.Turns = append(e.s.Turns, Turn{
		Role:      role,
		Content:   content,
		Timestamp: now,
		AgentName: agentName,
	})
	e.s.LastActivityAt = now
}

// SetMeta records an auxiliary key/value on an existing session. Like
// AppendTurn, it is a no-op for absent sessions.
func (st *Store) SetMeta(sessionID, key, value string) {
	v, ok := st.sessions.Load(sessionID)
	if !ok {
		return
	}

	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.s.Metadata == nil {
		e.s.Metadata = make(map[string]string)
	}
	e.s.Metadata[key] = value
}

// Remove deletes a session by ID and reports whether anything was deleted.
func (st *Store) Remove(sessionID string) bool {
	_, ok := st.sessions.LoadAndDelete(sessionID)
	return ok
}

// SweepExpired deletes every session idle longer than maxIdle and returns the
// number removed. The sweep is best-effort against concurrent traffic: a
// session touched during the scan may or may not be removed this pass, but a
// session is never deleted while an append holds its lock.
func (st *Store) SweepExpired(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	removed := 0

	st.sessions.Range(func(key, value any) bool {
		e := value.(*entry)
		e.mu.Lock()
		expired := e.s.LastActivityAt.Before(cutoff)
		if expired {
			st.sessions.Delete(key)
			removed++
		}
		e.mu.Unlock()
		return true
	})

	return removed
}

// Len reports the number of stored sessions.
func (st *Store) Len() int {
	n := 0
	st.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
