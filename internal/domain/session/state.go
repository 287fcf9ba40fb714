// internal/domain/session/state.go
package session

import "sync"

// Auth event types
const (
	EventSignedIn      = "signed_in"
	EventSignedOut     = "signed_out"
	EventTokenRefresh  = "token_refreshed"
	EventSessionExpiry = "session_expired"
)

// AuthEvent is one observed change to an account's authentication state.
// Events carry a per-user monotonic sequence number so that late deliveries
// can be detected and dropped.
type AuthEvent struct {
	Seq    uint64 `json:"seq"`
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// SessionState is the merged view of a user's authentication state
type SessionState struct {
	Seq           uint64 `json:"seq"`
	Authenticated bool   `json:"authenticated"`
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
}

// StateTracker merges auth events into one session state per account and
// fans the result out to subscribers. Events for a user may arrive out of
// order from multiple sources; merge is last-write-wins on that user's
// sequence number, so a stale signed-out arriving after a newer signed-in
// cannot clobber the session. Sequences are compared per user only; one
// account's counter never gates another's events.
type StateTracker struct {
	mu     sync.RWMutex
	states map[uint]SessionState
	subs   map[int]chan SessionState
	next   int
}

// NewStateTracker returns a tracker with every account anonymous
func NewStateTracker() *StateTracker {
	return &StateTracker{
		states: make(map[uint]SessionState),
		subs:   make(map[int]chan SessionState),
	}
}

// Apply merges an event into the owning user's state. Events whose sequence
// number is not strictly greater than that user's current one are ignored.
// Returns true when the event was applied.
func (t *StateTracker) Apply(event AuthEvent) bool {
	t.mu.Lock()

	if event.Seq <= t.states[event.UserID].Seq {
		t.mu.Unlock()
		return false
	}

	state := SessionState{
		Seq:    event.Seq,
		UserID: event.UserID,
		Email:  event.Email,
	}
	switch event.Type {
	case EventSignedIn, EventTokenRefresh:
		state.Authenticated = true
	case EventSignedOut, EventSessionExpiry:
		state.Authenticated = false
		state.UserID = 0
		state.Email = ""
	}
	t.states[event.UserID] = state

	// Deliver under the lock so a concurrent cancel cannot close a channel
	// mid-send; sends never block, slow subscribers just miss snapshots
	for _, ch := range t.subs {
		select {
		case ch <- state:
		default:
		}
	}
	t.mu.Unlock()

	return true
}

// Current returns the merged state for one account
func (t *StateTracker) Current(userID uint) SessionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[userID]
}

// Subscribe registers a listener for state changes. The returned function
// cancels the subscription and closes the channel.
func (t *StateTracker) Subscribe() (<-chan SessionState, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	ch := make(chan SessionState, 8)
	t.subs[id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if sub, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}
