package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/draftnight/draft-backend/internal/room"
	"github.com/draftnight/draft-backend/internal/ws"
)

func SetupRoutes(rm *room.Room) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/api/draft-state", DraftState(rm))
	r.Post("/api/players", LoadPlayers(rm))
	r.Post("/api/draft-config", UpdateConfig(rm))
	r.Post("/api/start-draft", StartDraft(rm))
	r.Post("/api/draft-pick", DraftPick(rm))
	r.Post("/api/undo-pick", UndoPick(rm))
	r.Post("/api/reset-draft", ResetDraft(rm))
	r.Get("/ws", ws.Handler(rm))
	return r
}
