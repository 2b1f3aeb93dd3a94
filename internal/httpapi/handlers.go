package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/draftnight/draft-backend/internal/engine"
	"github.com/draftnight/draft-backend/internal/room"
	"github.com/draftnight/draft-backend/internal/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNoPlayersAvailable),
		errors.Is(err, engine.ErrEmptyRoster),
		errors.Is(err, room.ErrInvalidTeamCount),
		errors.Is(err, room.ErrInvalidDraftType):
		status = http.StatusBadRequest
	case errors.Is(err, room.ErrDraftInProgress),
		errors.Is(err, room.ErrDraftNotStarted):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorBody{Message: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid json body"})
		return false
	}
	return true
}

func DraftState(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan room.Status, 1)
		rm.Inbox() <- room.GetState{Reply: reply}
		status := <-reply

		if !status.View.Started {
			writeJSON(w, http.StatusOK, struct {
				DraftStarted bool   `json:"draftStarted"`
				Message      string `json:"message"`
			}{false, status.View.Message})
			return
		}
		writeJSON(w, http.StatusOK, status.View)
	}
}

func LoadPlayers(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadPlayersRequest
		if !decode(w, r, &req) {
			return
		}

		reply := make(chan room.RosterResult, 1)
		rm.Inbox() <- room.LoadRoster{Players: req.Players, Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string          `json:"message"`
			Players []engine.Player `json:"players"`
		}{"Roster loaded", res.Players})
	}
}

func UpdateConfig(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ConfigRequest
		if !decode(w, r, &req) {
			return
		}

		patch := room.ConfigPatch{
			NumberOfTeams: req.NumberOfTeams,
			PicksPerTeam:  req.PicksPerTeam,
			DraftType:     req.DraftType,
		}
		if req.TeamNames != nil {
			patch.TeamNames = *req.TeamNames
		}

		reply := make(chan room.ConfigResult, 1)
		rm.Inbox() <- room.UpdateConfig{Patch: patch, Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string        `json:"message"`
			Config  engine.Config `json:"draftConfig"`
		}{"Draft configuration updated", res.Config})
	}
}

func StartDraft(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan room.OpResult, 1)
		rm.Inbox() <- room.Start{Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string    `json:"message"`
			State   room.View `json:"state"`
		}{"Draft started", res.View})
	}
}

func DraftPick(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PickRequest
		if !decode(w, r, &req) {
			return
		}

		reply := make(chan room.PickResult, 1)
		rm.Inbox() <- room.Pick{PlayerID: req.PlayerID, Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string        `json:"message"`
			Team    int           `json:"team"`
			Player  engine.Player `json:"player"`
		}{"Draft pick recorded", res.Team, res.Player})
	}
}

func UndoPick(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := types.UndoRequest{Count: 1}
		if r.ContentLength != 0 && !decode(w, r, &req) {
			return
		}

		reply := make(chan room.UndoResult, 1)
		rm.Inbox() <- room.Undo{Count: req.Count, Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string    `json:"message"`
			Undone  int       `json:"undoneCount"`
			State   room.View `json:"state"`
		}{"Picks undone", res.Undone, res.View})
	}
}

func ResetDraft(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan room.OpResult, 1)
		rm.Inbox() <- room.Reset{Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string    `json:"message"`
			State   room.View `json:"state"`
		}{"Draft reset", res.View})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
