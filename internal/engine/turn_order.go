package engine

// advanceTurn computes the next active team. Only called while at least one
// player remains available.
//
// The serpentine order deliberately grants the boundary team two consecutive
// picks before the direction flips. For four teams the active-team sequence
// is 0,1,2,3,3,2,1,0,0,1,2,3,3,... and Round increments on each reversal.
func advanceTurn(s State) State {
	if s.Config.DraftType != DraftSerpentine {
		s.ActiveTeam = (s.ActiveTeam + 1) % s.Config.NumberOfTeams
		return s
	}

	n := s.Config.NumberOfTeams
	if n <= 1 {
		return s
	}

	if s.Direction == 1 {
		switch {
		case s.ActiveTeam < n-1:
			s.ActiveTeam++
		case !s.ExtraPick:
			// At the top: same team picks again.
			s.ExtraPick = true
		default:
			s.Direction = -1
			s.ExtraPick = false
			s.ActiveTeam--
			s.Round++
		}
	} else {
		switch {
		case s.ActiveTeam > 0:
			s.ActiveTeam--
		case !s.ExtraPick:
			// At the bottom: same team picks again.
			s.ExtraPick = true
		default:
			s.Direction = 1
			s.ExtraPick = false
			s.ActiveTeam++
			s.Round++
		}
	}
	return s
}
