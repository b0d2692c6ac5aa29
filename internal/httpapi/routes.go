package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/draftleague/league-draft-backend/internal/coordinator"
	"github.com/draftleague/league-draft-backend/internal/ws"
)

func SetupRoutes(c *coordinator.Coordinator) http.Handler {
	r := chi.NewRouter()

	r.Post("/drafts", CreateDraft(c))
	r.Get("/drafts/{sessionID}", Snapshot(c))
	r.Post("/drafts/{sessionID}/pick", Pick(c))
	r.Post("/drafts/{sessionID}/pass", Pass(c))
	r.Get("/ws", ws.Handler(c))
	r.Get("/healthz", Healthz)
	return r
}
