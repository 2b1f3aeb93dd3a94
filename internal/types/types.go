package types

import (
	"encoding/json"
	"strings"

	"github.com/draftnight/draft-backend/internal/engine"
	"github.com/draftnight/draft-backend/internal/room"
)

// ServerMessage is what the websocket feed carries.
type ServerMessage struct {
	Type    string     `json:"type"` // "draftStarted" | "draftUpdated" | "error"
	Version int        `json:"version,omitempty"`
	State   *room.View `json:"state,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type LoadPlayersRequest struct {
	Players []engine.Player `json:"players"`
}

type PickRequest struct {
	PlayerID string `json:"playerId"`
}

type UndoRequest struct {
	Count int `json:"count"`
}

// TeamNameList accepts either a JSON array or a single comma-separated
// string, which is how the manager form has always submitted names.
type TeamNameList []string

func (l *TeamNameList) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*l = names
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*l = nil
	for _, name := range strings.Split(joined, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*l = append(*l, name)
		}
	}
	return nil
}

type ConfigRequest struct {
	NumberOfTeams *int              `json:"numberOfTeams"`
	TeamNames     *TeamNameList     `json:"teamNames"`
	PicksPerTeam  *int              `json:"picksPerTeam"`
	DraftType     *engine.DraftType `json:"draftType"`
}
