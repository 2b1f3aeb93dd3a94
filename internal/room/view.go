package room

import "github.com/draftnight/draft-backend/internal/engine"

// View is the session as viewers see it. Field names match the wire format
// the dashboards already speak; activeTeam is null both before the draft
// starts and once it completes.
type View struct {
	Started      bool                `json:"draftStarted"`
	Message      string              `json:"message,omitempty"`
	Config       engine.Config       `json:"draftConfig"`
	Available    []engine.Player     `json:"availablePlayers"`
	TeamRosters  [][]engine.Player   `json:"teamRosters"`
	CurrentDraft []engine.PickRecord `json:"currentDraft"`
	ActiveTeam   *int                `json:"activeTeam"`
	Direction    int                 `json:"orderDirection,omitempty"`
	Round        int                 `json:"currentRound,omitempty"`
}

func (r *Room) view() View { return ViewOf(r.state) }

// ViewOf projects the internal phase enum back onto the nullable activeTeam
// shape. The slices share backing arrays with the state, which is safe
// because applied states are never mutated in place.
func ViewOf(s engine.State) View {
	v := View{
		Started:      s.Phase != engine.PhaseNotStarted,
		Config:       s.Config,
		Available:    s.Available,
		TeamRosters:  s.Rosters,
		CurrentDraft: s.History,
	}
	if v.Available == nil {
		v.Available = []engine.Player{}
	}
	if v.TeamRosters == nil {
		v.TeamRosters = [][]engine.Player{}
	}
	if v.CurrentDraft == nil {
		v.CurrentDraft = []engine.PickRecord{}
	}

	if !v.Started {
		v.Message = "Draft has not started yet."
		return v
	}

	if s.Phase == engine.PhaseActive {
		team := s.ActiveTeam
		v.ActiveTeam = &team
	}
	if s.Config.DraftType == engine.DraftSerpentine {
		v.Direction = s.Direction
		v.Round = s.Round
	}
	return v
}
