package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftnight/draft-backend/internal/engine"
	"github.com/draftnight/draft-backend/internal/logging"
	"github.com/draftnight/draft-backend/internal/store"
)

var ErrDraftInProgress = errors.New("draft already in progress")
var ErrDraftNotStarted = errors.New("draft has not started yet")
var ErrInvalidTeamCount = errors.New("number of teams must be at least 1")
var ErrInvalidDraftType = errors.New("unknown draft type")

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan Broadcast // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan Status
}

func (GetState) isRoomMsg() {}

// LoadRoster replaces the player pool. Refused while a draft is active; the
// session returns to its pre-start shape otherwise.
type LoadRoster struct {
	Players []engine.Player
	Reply   chan RosterResult
}

func (LoadRoster) isRoomMsg() {}

type UpdateConfig struct {
	Patch ConfigPatch
	Reply chan ConfigResult
}

func (UpdateConfig) isRoomMsg() {}

type Start struct{ Reply chan OpResult }

func (Start) isRoomMsg() {}

type Pick struct {
	PlayerID string
	Reply    chan PickResult
}

func (Pick) isRoomMsg() {}

type Undo struct {
	Count int
	Reply chan UndoResult
}

func (Undo) isRoomMsg() {}

type Reset struct{ Reply chan OpResult }

func (Reset) isRoomMsg() {}

// ConfigPatch merges set fields only; nil pointers leave the current value.
type ConfigPatch struct {
	NumberOfTeams *int
	TeamNames     []string
	PicksPerTeam  *int
	DraftType     *engine.DraftType
}

type Broadcast struct {
	Event   string // "draftStarted" | "draftUpdated"
	Version int
	View    View
}

type Status struct {
	Version    int
	NumClients int
	View       View
	State      engine.State
}

type RosterResult struct {
	Players []engine.Player
	Err     error
}

type ConfigResult struct {
	Config engine.Config
	Err    error
}

type OpResult struct {
	View View
	Err  error
}

type PickResult struct {
	Team   int
	Player engine.Player
	Err    error
}

type UndoResult struct {
	Undone int
	View   View
	Err    error
}

// Room is the single owner of the draft session. Every mutation flows
// through its inbox, one at a time, so the ledger invariants never see
// concurrent writers. Persistence and broadcast happen after the in-memory
// transition commits and never decide control flow.
type Room struct {
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Broadcast
	store   store.Store
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, initial engine.State, st store.Store) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: 0,
		clients: make(map[string]chan Broadcast),
		store:   st,
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately.
				r.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Broadcast{Event: "draftUpdated", Version: r.version, View: r.view()}

			case Leave:
				delete(r.clients, msg.ClientID)

			case GetState:
				msg.Reply <- Status{
					Version:    r.version,
					NumClients: len(r.clients),
					View:       r.view(),
					State:      r.state,
				}

			case LoadRoster:
				msg.Reply <- r.handleLoadRoster(msg)

			case UpdateConfig:
				msg.Reply <- r.handleUpdateConfig(msg)

			case Start:
				msg.Reply <- r.handleStart()

			case Pick:
				msg.Reply <- r.handlePick(msg)

			case Undo:
				msg.Reply <- r.handleUndo(msg)

			case Reset:
				msg.Reply <- r.handleReset()

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleLoadRoster(msg LoadRoster) RosterResult {
	if r.state.Phase == engine.PhaseActive {
		return RosterResult{Err: ErrDraftInProgress}
	}

	now := time.Now().UnixMilli()
	players := make([]engine.Player, len(msg.Players))
	for i, p := range msg.Players {
		if p.ID == "" {
			p.ID = fmt.Sprintf("%d-%d", now, i)
		}
		players[i] = p
	}

	r.state = engine.NewState(r.state.Config, players)
	r.commit("draftUpdated", fmt.Sprintf("roster loaded: %d players", len(players)))
	return RosterResult{Players: players}
}

func (r *Room) handleUpdateConfig(msg UpdateConfig) ConfigResult {
	if r.state.Phase == engine.PhaseActive {
		return ConfigResult{Err: ErrDraftInProgress}
	}

	// A team count below one would leave StartDraft with no rosters to
	// index; picks would walk off the end of the board.
	if msg.Patch.NumberOfTeams != nil && *msg.Patch.NumberOfTeams < 1 {
		return ConfigResult{Err: ErrInvalidTeamCount}
	}
	if msg.Patch.DraftType != nil {
		switch *msg.Patch.DraftType {
		case engine.DraftTraditional, engine.DraftSerpentine:
		default:
			return ConfigResult{Err: ErrInvalidDraftType}
		}
	}

	cfg := r.state.Config
	if msg.Patch.NumberOfTeams != nil {
		cfg.NumberOfTeams = *msg.Patch.NumberOfTeams
	}
	if msg.Patch.TeamNames != nil {
		cfg.TeamNames = append([]string{}, msg.Patch.TeamNames...)
	}
	if msg.Patch.PicksPerTeam != nil {
		cfg.PicksPerTeam = *msg.Patch.PicksPerTeam
	}
	if msg.Patch.DraftType != nil {
		cfg.DraftType = *msg.Patch.DraftType
	}
	r.state.Config = cfg

	// Config changes survive a restart but are not broadcast; viewers only
	// care once the draft starts.
	r.persist("configUpdated", "")
	return ConfigResult{Config: cfg}
}

func (r *Room) handleStart() OpResult {
	// Restart guard lives here, not in the engine: a second start while
	// active would silently throw away the ledger.
	if r.state.Phase == engine.PhaseActive {
		return OpResult{View: r.view(), Err: ErrDraftInProgress}
	}

	_, newState, err := engine.Apply(r.state, engine.Command{Type: engine.CmdStartDraft})
	if err != nil {
		return OpResult{Err: err}
	}

	r.state = newState
	r.commit("draftStarted", "")
	return OpResult{View: r.view()}
}

func (r *Room) handlePick(msg Pick) PickResult {
	if r.state.Phase == engine.PhaseNotStarted {
		return PickResult{Err: ErrDraftNotStarted}
	}

	events, newState, err := engine.Apply(r.state, engine.Command{
		Type:     engine.CmdPickPlayer,
		PlayerID: msg.PlayerID,
	})
	if err != nil {
		return PickResult{Err: err}
	}

	r.state = newState
	picked := events[0]
	r.commit("draftUpdated", fmt.Sprintf("pick: team %d took %s", picked.Team, picked.Player.ID))
	return PickResult{Team: picked.Team, Player: picked.Player}
}

func (r *Room) handleUndo(msg Undo) UndoResult {
	if r.state.Phase == engine.PhaseNotStarted {
		return UndoResult{Err: ErrDraftNotStarted}
	}

	events, newState, err := engine.Apply(r.state, engine.Command{
		Type:  engine.CmdUndoPicks,
		Count: msg.Count,
	})
	if err != nil {
		return UndoResult{Err: err}
	}

	undone := events[0].Count
	if undone == 0 {
		// Nothing moved: no version bump, no snapshot, no broadcast.
		return UndoResult{Undone: 0, View: r.view()}
	}

	r.state = newState
	r.commit("draftUpdated", fmt.Sprintf("undo: %d picks", undone))
	return UndoResult{Undone: undone, View: r.view()}
}

func (r *Room) handleReset() OpResult {
	_, newState, err := engine.Apply(r.state, engine.Command{Type: engine.CmdResetDraft})
	if err != nil {
		return OpResult{Err: err}
	}

	r.state = newState
	r.commit("draftUpdated", "reset")
	return OpResult{View: r.view()}
}

// commit runs the post-mutation side effects: version bump, broadcast to
// every subscriber, then best-effort persistence off the actor goroutine.
// Apply never mutates slices in place, so handing r.state to a goroutine is
// safe.
func (r *Room) commit(event, detail string) {
	r.version++
	r.broadcast(Broadcast{Event: event, Version: r.version, View: r.view()})
	r.persist(event, detail)
}

func (r *Room) persist(event, detail string) {
	if r.store == nil {
		return
	}

	snap := store.Snapshot{
		Players: r.state.Roster,
		Config:  r.state.Config,
		Session: r.state,
		SavedAt: time.Now().UTC(),
	}

	go func() {
		logger := logging.FromContext(r.ctx)
		if err := r.store.Save(snap); err != nil {
			// The in-memory mutation already committed; persistence is a
			// mirror, not the source of truth.
			logger.Errorf("saving snapshot: %v", err)
		}
		if err := r.store.AppendEvent(store.Entry{At: snap.SavedAt, Type: event, Context: detail}); err != nil {
			logger.Errorf("appending log entry: %v", err)
		}
	}()
}

func (r *Room) broadcast(b Broadcast) {
	for id, ch := range r.clients {
		select {
		case ch <- b:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
}
