// internal/domain/session/state_test.go
package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMergesBySequence(t *testing.T) {
	tracker := NewStateTracker()

	assert.True(t, tracker.Apply(AuthEvent{Seq: 1, Type: EventSignedIn, UserID: 7, Email: "ana@example.com"}))

	state := tracker.Current(7)
	assert.True(t, state.Authenticated)
	assert.Equal(t, uint(7), state.UserID)

	assert.True(t, tracker.Apply(AuthEvent{Seq: 2, Type: EventSignedOut, UserID: 7}))
	state = tracker.Current(7)
	assert.False(t, state.Authenticated)
	assert.Zero(t, state.UserID)
}

func TestApplyDropsStaleEvents(t *testing.T) {
	tracker := NewStateTracker()

	require.True(t, tracker.Apply(AuthEvent{Seq: 5, Type: EventSignedIn, UserID: 7, Email: "ana@example.com"}))

	// A sign-out from before the sign-in arrives late and is ignored
	assert.False(t, tracker.Apply(AuthEvent{Seq: 3, Type: EventSignedOut, UserID: 7}))
	assert.False(t, tracker.Apply(AuthEvent{Seq: 5, Type: EventSignedOut, UserID: 7}))

	state := tracker.Current(7)
	assert.True(t, state.Authenticated)
	assert.Equal(t, uint64(5), state.Seq)
}

func TestApplyTracksUsersIndependently(t *testing.T) {
	tracker := NewStateTracker()

	require.True(t, tracker.Apply(AuthEvent{Seq: 5, Type: EventSignedIn, UserID: 1, Email: "ana@example.com"}))

	// Sequences are per account; a low sequence from another user is not stale
	assert.True(t, tracker.Apply(AuthEvent{Seq: 1, Type: EventSignedIn, UserID: 2, Email: "bruno@example.com"}))

	assert.True(t, tracker.Current(1).Authenticated)
	assert.True(t, tracker.Current(2).Authenticated)
	assert.Equal(t, "bruno@example.com", tracker.Current(2).Email)

	// Signing one account out leaves the other untouched
	require.True(t, tracker.Apply(AuthEvent{Seq: 2, Type: EventSignedOut, UserID: 2}))
	assert.False(t, tracker.Current(2).Authenticated)
	assert.True(t, tracker.Current(1).Authenticated)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	tracker := NewStateTracker()

	ch, cancel := tracker.Subscribe()
	defer cancel()

	tracker.Apply(AuthEvent{Seq: 1, Type: EventSignedIn, UserID: 7, Email: "ana@example.com"})

	select {
	case state := <-ch:
		assert.True(t, state.Authenticated)
		assert.Equal(t, uint(7), state.UserID)
	case <-time.After(time.Second):
		t.Fatal("expected a state snapshot")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	tracker := NewStateTracker()

	ch, cancel := tracker.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Applying after cancel must not panic
	tracker.Apply(AuthEvent{Seq: 1, Type: EventSignedIn, UserID: 7})
}

func TestRedirectForRole(t *testing.T) {
	assert.Equal(t, RedirectAdminHome, RedirectFor(RoleAdmin))
	assert.Equal(t, RedirectStorefrontHome, RedirectFor(RoleCustomer))
	assert.Equal(t, RedirectStorefrontHome, RedirectFor(""))
}
