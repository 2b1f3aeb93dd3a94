package engine

// DefaultConfig mirrors the config the app boots with before a manager
// changes anything.
func DefaultConfig() Config {
	return Config{
		NumberOfTeams: 4,
		TeamNames:     []string{"Team 1", "Team 2", "Team 3", "Team 4"},
		PicksPerTeam:  5,
		DraftType:     DraftTraditional,
	}
}

// NewState returns the fresh pre-start shape: roster loaded, nothing drafted.
func NewState(cfg Config, roster []Player) State {
	return State{
		Phase:  PhaseNotStarted,
		Config: cfg,
		Roster: append([]Player{}, roster...),
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// clone deep-copies every slice the state owns so Apply can mutate freely.
func (s State) clone() State {
	ns := s
	ns.Config.TeamNames = append([]string(nil), s.Config.TeamNames...)
	ns.Roster = append([]Player(nil), s.Roster...)
	ns.Available = append([]Player(nil), s.Available...)
	if s.Rosters != nil {
		ns.Rosters = make([][]Player, len(s.Rosters))
		for i, r := range s.Rosters {
			ns.Rosters[i] = append([]Player(nil), r...)
		}
	}
	ns.History = append([]PickRecord(nil), s.History...)
	ns.Undo = append([]TurnSnapshot(nil), s.Undo...)
	return ns
}
