package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftnight/draft-backend/internal/engine"
	"github.com/draftnight/draft-backend/internal/store"
)

// fakeStore records calls so tests can assert on the persistence side
// effects without a real backend.
type fakeStore struct {
	mu      sync.Mutex
	saves   []store.Snapshot
	entries []store.Entry
	saveErr error
}

func (f *fakeStore) Save(snap store.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, snap)
	return nil
}

func (f *fakeStore) Load() (store.Snapshot, error) { return store.Snapshot{}, store.ErrNotFound }

func (f *fakeStore) AppendEvent(e store.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func makeRoster(n int) []engine.Player {
	players := make([]engine.Player, n)
	for i := range players {
		players[i] = engine.Player{
			ID:   fmt.Sprintf("p%03d", i),
			Name: fmt.Sprintf("Player %d", i),
		}
	}
	return players
}

func newTestRoom(t *testing.T, rosterSize int, st store.Store) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, engine.NewState(engine.DefaultConfig(), makeRoster(rosterSize)), st)
}

// helper: receive one broadcast with a timeout so tests never hang
func recvBroadcast(t *testing.T, ch <-chan Broadcast, within time.Duration) Broadcast {
	t.Helper()
	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return b
	case <-time.After(within):
		t.Fatalf("timed out waiting for broadcast")
		return Broadcast{} // unreachable
	}
}

func recvNoBroadcast(t *testing.T, ch <-chan Broadcast, within time.Duration) {
	t.Helper()
	select {
	case b, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no broadcast within %v, but got: %+v", within, b)
	case <-time.After(within):
		// good: nothing arrived
	}
}

func getStatus(t *testing.T, r *Room) Status {
	t.Helper()
	reply := make(chan Status, 1)
	r.Inbox() <- GetState{Reply: reply}
	select {
	case s := <-reply:
		return s
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for status")
		return Status{} // unreachable
	}
}

func startDraft(t *testing.T, r *Room) View {
	t.Helper()
	reply := make(chan OpResult, 1)
	r.Inbox() <- Start{Reply: reply}
	res := <-reply
	require.NoError(t, res.Err, "starting draft")
	return res.View
}

func pick(t *testing.T, r *Room, playerID string) PickResult {
	t.Helper()
	reply := make(chan PickResult, 1)
	r.Inbox() <- Pick{PlayerID: playerID, Reply: reply}
	return <-reply
}

func TestJoinReceivesCurrentSnapshot(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	out := make(chan Broadcast, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvBroadcast(t, out, time.Second)
	assert.Equal(t, 0, first.Version)
	assert.False(t, first.View.Started)
	assert.Equal(t, "Draft has not started yet.", first.View.Message)
	assert.Nil(t, first.View.ActiveTeam)
}

func TestStartBroadcastsDraftStarted(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	out := make(chan Broadcast, 4)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvBroadcast(t, out, time.Second) // join snapshot

	view := startDraft(t, r)
	require.NotNil(t, view.ActiveTeam)
	assert.Equal(t, 0, *view.ActiveTeam)

	b := recvBroadcast(t, out, time.Second)
	assert.Equal(t, "draftStarted", b.Event)
	assert.Equal(t, 1, b.Version)
	assert.True(t, b.View.Started)
	assert.Len(t, b.View.Available, 4)
}

func TestPickBroadcastsAndAdvancesTurn(t *testing.T) {
	r := newTestRoom(t, 8, nil)
	startDraft(t, r)

	out := make(chan Broadcast, 4)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvBroadcast(t, out, time.Second)

	res := pick(t, r, "p002")
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.Team)
	assert.Equal(t, "p002", res.Player.ID)

	b := recvBroadcast(t, out, time.Second)
	assert.Equal(t, "draftUpdated", b.Event)
	assert.Equal(t, 2, b.Version)
	require.NotNil(t, b.View.ActiveTeam)
	assert.Equal(t, 1, *b.View.ActiveTeam)
	assert.Len(t, b.View.Available, 7)
	assert.Len(t, b.View.CurrentDraft, 1)
}

func TestFailedPickHasNoSideEffects(t *testing.T) {
	st := &fakeStore{}
	r := newTestRoom(t, 4, st)
	startDraft(t, r)

	require.Eventually(t, func() bool { return st.saveCount() == 1 }, time.Second, 10*time.Millisecond)

	out := make(chan Broadcast, 4)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvBroadcast(t, out, time.Second)

	res := pick(t, r, "nonexistent-id")
	require.ErrorIs(t, res.Err, engine.ErrPlayerNotFound)

	recvNoBroadcast(t, out, 200*time.Millisecond)
	assert.Equal(t, 1, st.saveCount())
	assert.Equal(t, 1, getStatus(t, r).Version)
}

func TestPickBeforeStartRejected(t *testing.T) {
	r := newTestRoom(t, 4, nil)
	res := pick(t, r, "p000")
	require.ErrorIs(t, res.Err, ErrDraftNotStarted)
}

func TestStartWhileActiveRejected(t *testing.T) {
	r := newTestRoom(t, 4, nil)
	startDraft(t, r)

	reply := make(chan OpResult, 1)
	r.Inbox() <- Start{Reply: reply}
	res := <-reply
	require.ErrorIs(t, res.Err, ErrDraftInProgress)
	assert.Equal(t, 1, getStatus(t, r).Version)
}

func TestUndoRoundTrip(t *testing.T) {
	r := newTestRoom(t, 6, nil)
	startDraft(t, r)
	require.NoError(t, pick(t, r, "p000").Err)
	require.NoError(t, pick(t, r, "p001").Err)

	reply := make(chan UndoResult, 1)
	r.Inbox() <- Undo{Count: 5, Reply: reply}
	res := <-reply
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Undone)
	assert.Len(t, res.View.Available, 6)
	require.NotNil(t, res.View.ActiveTeam)
	assert.Equal(t, 0, *res.View.ActiveTeam)
}

func TestUndoNothingProducesNoBroadcast(t *testing.T) {
	r := newTestRoom(t, 4, nil)
	startDraft(t, r)

	out := make(chan Broadcast, 4)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvBroadcast(t, out, time.Second)

	reply := make(chan UndoResult, 1)
	r.Inbox() <- Undo{Count: 3, Reply: reply}
	res := <-reply
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.Undone)

	recvNoBroadcast(t, out, 200*time.Millisecond)
	assert.Equal(t, 1, getStatus(t, r).Version)
}

func TestResetReturnsToPreStartShape(t *testing.T) {
	r := newTestRoom(t, 4, nil)
	startDraft(t, r)
	require.NoError(t, pick(t, r, "p000").Err)

	reply := make(chan OpResult, 1)
	r.Inbox() <- Reset{Reply: reply}
	res := <-reply
	require.NoError(t, res.Err)
	assert.False(t, res.View.Started)
	assert.Nil(t, res.View.ActiveTeam)

	st := getStatus(t, r)
	assert.Equal(t, engine.PhaseNotStarted, st.State.Phase)
	assert.Len(t, st.State.Available, 4)
	assert.Empty(t, st.State.History)
}

func TestLoadRosterAssignsMissingIDs(t *testing.T) {
	r := newTestRoom(t, 0, nil)

	reply := make(chan RosterResult, 1)
	r.Inbox() <- LoadRoster{
		Players: []engine.Player{{Name: "Ada"}, {ID: "x9", Name: "Grace"}},
		Reply:   reply,
	}
	res := <-reply
	require.NoError(t, res.Err)
	require.Len(t, res.Players, 2)
	assert.NotEmpty(t, res.Players[0].ID)
	assert.Equal(t, "x9", res.Players[1].ID)
}

func TestLoadRosterRefusedMidDraft(t *testing.T) {
	r := newTestRoom(t, 4, nil)
	startDraft(t, r)

	reply := make(chan RosterResult, 1)
	r.Inbox() <- LoadRoster{Players: makeRoster(2), Reply: reply}
	res := <-reply
	require.ErrorIs(t, res.Err, ErrDraftInProgress)
}

func TestUpdateConfigMergesFields(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	teams := 6
	dt := engine.DraftSerpentine
	reply := make(chan ConfigResult, 1)
	r.Inbox() <- UpdateConfig{
		Patch: ConfigPatch{NumberOfTeams: &teams, DraftType: &dt},
		Reply: reply,
	}
	res := <-reply
	require.NoError(t, res.Err)
	assert.Equal(t, 6, res.Config.NumberOfTeams)
	assert.Equal(t, engine.DraftSerpentine, res.Config.DraftType)
	// untouched fields keep their values
	assert.Equal(t, 5, res.Config.PicksPerTeam)
	assert.Equal(t, []string{"Team 1", "Team 2", "Team 3", "Team 4"}, res.Config.TeamNames)
}

func TestUpdateConfigRejectsZeroTeams(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	teams := 0
	reply := make(chan ConfigResult, 1)
	r.Inbox() <- UpdateConfig{Patch: ConfigPatch{NumberOfTeams: &teams}, Reply: reply}
	res := <-reply
	require.ErrorIs(t, res.Err, ErrInvalidTeamCount)

	// The rejected patch must leave the board usable: a draft with the
	// previous config still starts and takes picks.
	assert.Equal(t, 4, getStatus(t, r).State.Config.NumberOfTeams)
	startDraft(t, r)
	res2 := pick(t, r, "p000")
	require.NoError(t, res2.Err)
	assert.Equal(t, 0, res2.Team)
}

func TestUpdateConfigRejectsNegativeTeams(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	teams := -3
	reply := make(chan ConfigResult, 1)
	r.Inbox() <- UpdateConfig{Patch: ConfigPatch{NumberOfTeams: &teams}, Reply: reply}
	res := <-reply
	require.ErrorIs(t, res.Err, ErrInvalidTeamCount)
}

func TestUpdateConfigRejectsUnknownDraftType(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	for _, bad := range []engine.DraftType{"snake", "serpentine ", ""} {
		dt := bad
		reply := make(chan ConfigResult, 1)
		r.Inbox() <- UpdateConfig{Patch: ConfigPatch{DraftType: &dt}, Reply: reply}
		res := <-reply
		require.ErrorIsf(t, res.Err, ErrInvalidDraftType, "draft type %q", bad)
	}
	assert.Equal(t, engine.DraftTraditional, getStatus(t, r).State.Config.DraftType)
}

func TestUpdateConfigRefusedMidDraft(t *testing.T) {
	r := newTestRoom(t, 4, nil)
	startDraft(t, r)

	teams := 2
	reply := make(chan ConfigResult, 1)
	r.Inbox() <- UpdateConfig{Patch: ConfigPatch{NumberOfTeams: &teams}, Reply: reply}
	res := <-reply
	require.ErrorIs(t, res.Err, ErrDraftInProgress)
}

func TestMutationsSnapshotToStore(t *testing.T) {
	st := &fakeStore{}
	r := newTestRoom(t, 4, st)

	startDraft(t, r)
	require.NoError(t, pick(t, r, "p000").Err)

	// Each mutation saves a snapshot and logs an entry; the writes are
	// fire-and-forget, so wait for both to land.
	require.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return len(st.saves) == 2 && len(st.entries) == 2
	}, time.Second, 10*time.Millisecond)

	st.mu.Lock()
	defer st.mu.Unlock()
	var withHistory, started bool
	for _, snap := range st.saves {
		assert.Len(t, snap.Players, 4)
		assert.Equal(t, engine.PhaseActive, snap.Session.Phase)
		if len(snap.Session.History) == 1 {
			withHistory = true
		}
	}
	for _, e := range st.entries {
		if e.Type == "draftStarted" {
			started = true
		}
	}
	assert.True(t, withHistory, "expected a snapshot containing the pick")
	assert.True(t, started, "expected a draftStarted log entry")
}

func TestSaveFailureDoesNotFailOperation(t *testing.T) {
	st := &fakeStore{saveErr: fmt.Errorf("disk full")}
	r := newTestRoom(t, 4, st)

	startDraft(t, r)
	res := pick(t, r, "p000")
	require.NoError(t, res.Err)
	assert.Len(t, getStatus(t, r).State.History, 1)
}

func TestSlowClientDropped(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	// Capacity 1 holds the join snapshot; the next broadcast cannot be
	// delivered and the client gets dropped.
	out := make(chan Broadcast, 1)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	startDraft(t, r)

	require.Eventually(t, func() bool {
		return getStatus(t, r).NumClients == 0
	}, time.Second, 10*time.Millisecond)
}

func TestShutdownClosesClientOutboxes(t *testing.T) {
	r := newTestRoom(t, 4, nil)

	out := make(chan Broadcast, 2)
	r.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvBroadcast(t, out, time.Second)

	r.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		assert.False(t, ok, "outbox should be closed")
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for outbox close")
	}
}
