package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyRoster = errors.New("no players loaded")
var ErrNoPlayersAvailable = errors.New("no available players to draft")
var ErrPlayerNotFound = errors.New("player not found or already taken")
var ErrUnsupportedCommand = errors.New("unsupported command")

type DraftType string

const (
	DraftTraditional DraftType = "traditional"
	DraftSerpentine  DraftType = "serpentine"
)

type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseComplete   Phase = "complete"
)

// Player is created once at roster load and never mutated afterwards; it only
// moves between the available pool and a team roster.
type Player struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

type Config struct {
	NumberOfTeams int       `json:"numberOfTeams"`
	TeamNames     []string  `json:"teamNames"`
	PicksPerTeam  int       `json:"picksPerTeam"`
	DraftType     DraftType `json:"draftType"`
}

// TeamName tolerates a TeamNames list shorter than NumberOfTeams; the
// fallback label is a display concern, not an invariant violation.
func (c Config) TeamName(i int) string {
	if i >= 0 && i < len(c.TeamNames) && c.TeamNames[i] != "" {
		return c.TeamNames[i]
	}
	return fmt.Sprintf("Team %d", i+1)
}

type PickRecord struct {
	Team   int    `json:"team"`
	Player Player `json:"player"`
}

// TurnSnapshot captures the turn fields as they were before a pick was
// applied. Undo pops one of these per undone pick, so len(Undo) always
// equals len(History).
type TurnSnapshot struct {
	ActiveTeam int  `json:"activeTeam"`
	Direction  int  `json:"direction"`
	ExtraPick  bool `json:"extraPick"`
	Round      int  `json:"round"`
}

type State struct {
	Phase      Phase          `json:"phase"`
	Config     Config         `json:"config"`
	Roster     []Player       `json:"roster"`
	Available  []Player       `json:"available"`
	Rosters    [][]Player     `json:"rosters"`
	History    []PickRecord   `json:"history"`
	ActiveTeam int            `json:"activeTeam"`
	Direction  int            `json:"direction"`
	Round      int            `json:"round"`
	ExtraPick  bool           `json:"extraPick"`
	Undo       []TurnSnapshot `json:"undo"`
}

type CommandType string

const (
	CmdStartDraft CommandType = "StartDraft"
	CmdPickPlayer CommandType = "PickPlayer"
	CmdUndoPicks  CommandType = "UndoPicks"
	CmdResetDraft CommandType = "ResetDraft"
)

/*
	CmdStartDraft -> EvtDraftStarted
	CmdPickPlayer -> EvtPlayerPicked -> EvtTurnAdvanced or EvtDraftCompleted
	CmdUndoPicks  -> EvtPicksUndone (Count carries how many actually unwound)
	CmdResetDraft -> EvtDraftReset
*/

type Command struct {
	Type     CommandType
	PlayerID string
	Count    int
}

type EventType string

const (
	EvtDraftStarted   EventType = "DraftStarted"
	EvtPlayerPicked   EventType = "PlayerPicked"
	EvtTurnAdvanced   EventType = "TurnAdvanced"
	EvtDraftCompleted EventType = "DraftCompleted"
	EvtPicksUndone    EventType = "PicksUndone"
	EvtDraftReset     EventType = "DraftReset"
)

type Event struct {
	Type   EventType
	Team   int
	Player Player
	Count  int
}

// Apply is pure: on error the input state comes back untouched, and on
// success the returned state shares no mutable backing arrays with the
// input.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdStartDraft:
		if len(s.Roster) == 0 {
			return nil, s, ErrEmptyRoster
		}

		ns := s.clone()
		ns.Phase = PhaseActive
		ns.Available = append([]Player{}, ns.Roster...)
		ns.Rosters = make([][]Player, ns.Config.NumberOfTeams)
		for i := range ns.Rosters {
			ns.Rosters[i] = []Player{}
		}
		ns.History = []PickRecord{}
		ns.Undo = []TurnSnapshot{}
		ns.ActiveTeam = 0
		if ns.Config.DraftType == DraftSerpentine {
			ns.Direction = 1
			ns.Round = 1
			ns.ExtraPick = false
		}
		return []Event{{Type: EvtDraftStarted}}, ns, nil

	case CmdPickPlayer:
		if len(s.Available) == 0 {
			return nil, s, ErrNoPlayersAvailable
		}

		idx := findAvailable(s, cmd.PlayerID)
		if idx < 0 {
			return nil, s, ErrPlayerNotFound
		}

		ns := s.clone()
		team := ns.ActiveTeam

		// Turn fields go on the undo stack before anything moves.
		ns.Undo = append(ns.Undo, TurnSnapshot{
			ActiveTeam: ns.ActiveTeam,
			Direction:  ns.Direction,
			ExtraPick:  ns.ExtraPick,
			Round:      ns.Round,
		})

		player := ns.Available[idx]
		ns.Available = append(ns.Available[:idx], ns.Available[idx+1:]...)
		ns.Rosters[team] = append(ns.Rosters[team], player)
		ns.History = append(ns.History, PickRecord{Team: team, Player: player})

		events := []Event{{Type: EvtPlayerPicked, Team: team, Player: player}}
		if len(ns.Available) == 0 {
			// Turn fields are left as-is; ActiveTeam means nothing in this phase.
			ns.Phase = PhaseComplete
			events = append(events, Event{Type: EvtDraftCompleted})
		} else {
			ns = advanceTurn(ns)
			events = append(events, Event{Type: EvtTurnAdvanced, Team: ns.ActiveTeam})
		}
		return events, ns, nil

	case CmdUndoPicks:
		count := cmd.Count
		if count < 1 {
			count = 1
		}

		ns := s.clone()
		undone := 0
		for undone < count && len(ns.History) > 0 {
			last := ns.History[len(ns.History)-1]
			ns.History = ns.History[:len(ns.History)-1]

			snap := ns.Undo[len(ns.Undo)-1]
			ns.Undo = ns.Undo[:len(ns.Undo)-1]

			roster := ns.Rosters[last.Team]
			ns.Rosters[last.Team] = roster[:len(roster)-1]

			// Front of the pool, not the original index.
			ns.Available = append([]Player{last.Player}, ns.Available...)

			ns.ActiveTeam = snap.ActiveTeam
			ns.Direction = snap.Direction
			ns.ExtraPick = snap.ExtraPick
			ns.Round = snap.Round
			undone++
		}
		if undone > 0 && ns.Phase == PhaseComplete {
			ns.Phase = PhaseActive
		}
		// Undoing past the bottom of history is a no-op, never an error.
		return []Event{{Type: EvtPicksUndone, Count: undone}}, ns, nil

	case CmdResetDraft:
		ns := s.clone()
		ns.Phase = PhaseNotStarted
		ns.Available = append([]Player{}, ns.Roster...)
		ns.Rosters = nil
		ns.History = nil
		ns.Undo = nil
		ns.ActiveTeam = 0
		ns.Direction = 0
		ns.Round = 0
		ns.ExtraPick = false
		return []Event{{Type: EvtDraftReset}}, ns, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Ids entered the system as strings but may arrive typed or pasted with
// stray whitespace; comparison happens on the trimmed form.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

func findAvailable(s State, playerID string) int {
	want := normalizeID(playerID)
	for i, p := range s.Available {
		if normalizeID(p.ID) == want {
			return i
		}
	}
	return -1
}
