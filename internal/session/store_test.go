package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStoreGetOrCreate(t *testing.T) {
	store := NewStore()

	sess := store.GetOrCreate("s1", "user-1")
	if sess.ID != "s1" {
		t.Errorf("ID = %q, want %q", sess.ID, "s1")
	}
	if sess.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", sess.UserID, "user-1")
	}
	if sess.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
	if sess.LastActivityAt.IsZero() {
		t.Error("LastActivityAt is zero")
	}
	if len(sess.Turns) != 0 {
		t.Errorf("new session has %d turns, want 0", len(sess.Turns))
	}
}

func TestStoreGetOrCreateKeepsOwnerAndHistory(t *testing.T) {
	store := NewStore()

	store.GetOrCreate("s1", "alice")
	store.AppendTurn("s1", RoleUser, "hello", "")

	// Second call with a different user ID returns the same session: it does
	// not overwrite the owner or clear history.
	sess := store.GetOrCreate("s1", "bob")
	if sess.UserID != "alice" {
		t.Errorf("UserID = %q, want original owner %q", sess.UserID, "alice")
	}
	if len(sess.Turns) != 1 {
		t.Errorf("session has %d turns, want 1", len(sess.Turns))
	}
}

func TestStoreGetNeverCreates(t *testing.T) {
	store := NewStore()

	if _, ok := store.Get("missing"); ok {
		t.Error("Get returned a session for an unknown ID")
	}
	if n := store.Len(); n != 0 {
		t.Errorf("Len = %d after Get on unknown ID, want 0", n)
	}
}

func TestStoreAppendTurnOrder(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1", "u1")

	store.AppendTurn("s1", RoleUser, "first", "")
	store.AppendTurn("s1", RoleAssistant, "second", "VacationAgent")
	store.AppendTurn("s1", RoleUser, "third", "")

	sess, ok := store.Get("s1")
	if !ok {
		t.Fatal("session not found")
	}
	if len(sess.Turns) != 3 {
		t.Fatalf("session has %d turns, want 3", len(sess.Turns))
	}

	wantContent := []string{"first", "second", "third"}
	for i, want := range wantContent {
		if sess.Turns[i].Content != want {
			t.Errorf("turn[%d].Content = %q, want %q", i, sess.Turns[i].Content, want)
		}
	}
	if sess.Turns[1].Role != RoleAssistant {
		t.Errorf("turn[1].Role = %q, want %q", sess.Turns[1].Role, RoleAssistant)
	}
	if sess.Turns[1].AgentName != "VacationAgent" {
		t.Errorf("turn[1].AgentName = %q, want %q", sess.Turns[1].AgentName, "VacationAgent")
	}
	if sess.Turns[0].AgentName != "" {
		t.Errorf("user turn carries agent name %q", sess.Turns[0].AgentName)
	}
}

func TestStoreAppendTurnMissingSessionIsNoOp(t *testing.T) {
	store := NewStore()

	store.AppendTurn("ghost", RoleUser, "anyone there?", "")

	if _, ok := store.Get("ghost"); ok {
		t.Error("AppendTurn on an absent session must not create it")
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1", "u1")
	store.AppendTurn("s1", RoleUser, "original", "")

	sess, _ := store.Get("s1")
	sess.Turns[0].Content = "tampered"
	sess.Turns = append(sess.Turns, Turn{Role: RoleUser, Content: "extra"})

	fresh, _ := store.Get("s1")
	if len(fresh.Turns) != 1 || fresh.Turns[0].Content != "original" {
		t.Errorf("stored state changed through a snapshot: %+v", fresh.Turns)
	}
}

func TestStoreRemove(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1", "u1")

	if !store.Remove("s1") {
		t.Error("Remove returned false for an existing session")
	}
	if store.Remove("s1") {
		t.Error("Remove returned true for an already-removed session")
	}
	if _, ok := store.Get("s1"); ok {
		t.Error("session still present after Remove")
	}
}

func TestStoreSetMeta(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1", "u1")

	store.SetMeta("s1", "agentType", "vacation")
	store.SetMeta("ghost", "agentType", "vacation") // no-op

	sess, _ := store.Get("s1")
	if sess.Metadata["agentType"] != "vacation" {
		t.Errorf("Metadata = %v, want agentType=vacation", sess.Metadata)
	}
	if _, ok := store.Get("ghost"); ok {
		t.Error("SetMeta on an absent session must not create it")
	}
}

func TestStoreSweepExpired(t *testing.T) {
	store := NewStore()

	// Three sessions last active 10m, 2h, and 25h ago.
	ages := map[string]time.Duration{
		"fresh": 10 * time.Minute,
		"stale": 2 * time.Hour,
		"old":   25 * time.Hour,
	}
	for id, age := range ages {
		store.GetOrCreate(id, "u1")
		backdateLastActivity(store, id, age)
	}

	removed := store.SweepExpired(time.Hour)
	if removed != 2 {
		t.Errorf("SweepExpired removed %d sessions, want 2", removed)
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Error("fresh session was swept")
	}
	for _, id := range []string{"stale", "old"} {
		if _, ok := store.Get(id); ok {
			t.Errorf("session %q survived the sweep", id)
		}
	}
}

// backdateLastActivity rewinds a session's activity timestamp for expiry tests.
func backdateLastActivity(store *Store, sessionID string, age time.Duration) {
	v, ok := store.sessions.Load(sessionID)
	if !ok {
		panic("backdateLastActivity: unknown session " + sessionID)
	}
	e := v.(*entry)
	e.mu.Lock()
	e.s.LastActivityAt = time.Now().Add(-age)
	e.mu.Unlock()
}

func TestStoreConcurrentAppends(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("s1", "u1")

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.AppendTurn("s1", RoleUser, fmt.Sprintf("w%d-%d", w, i), "")
			}
		}(w)
	}
	wg.Wait()

	sess, _ := store.Get("s1")
	if len(sess.Turns) != writers*perWriter {
		t.Errorf("session has %d turns, want %d", len(sess.Turns), writers*perWriter)
	}
}

func TestStoreConcurrentGetOrCreateSingleWinner(t *testing.T) {
	store := NewStore()

	const callers = 16
	owners := make([]string, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := store.GetOrCreate("shared", fmt.Sprintf("user-%d", i))
			owners[i] = sess.UserID
		}(i)
	}
	wg.Wait()

	if n := store.Len(); n != 1 {
		t.Fatalf("Len = %d, want exactly 1 session", n)
	}
	for i := 1; i < callers; i++ {
		if owners[i] != owners[0] {
			t.Fatalf("callers observed different owners: %q vs %q", owners[0], owners[i])
		}
	}
}

func TestStoreSweepConcurrentWithTraffic(t *testing.T) {
	store := NewStore()
	for i := 0; i < 32; i++ {
		id := fmt.Sprintf("s%d", i)
		store.GetOrCreate(id, "u1")
		backdateLastActivity(store, id, 2*time.Hour)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 32; i++ {
			store.AppendTurn(fmt.Sprintf("s%d", i), RoleUser, "ping", "")
		}
	}()
	go func() {
		defer wg.Done()
		store.SweepExpired(time.Hour)
	}()
	wg.Wait()

	// Best-effort semantics: each session is either gone or intact with its
	// append applied; no partial state is observable.
	for i := 0; i < 32; i++ {
		sess, ok := store.Get(fmt.Sprintf("s%d", i))
		if ok && len(sess.Turns) > 1 {
			t.Errorf("session s%d has %d turns, want at most 1", i, len(sess.Turns))
		}
	}
}
