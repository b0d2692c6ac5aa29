package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/draftleague/league-draft-backend/internal/coordinator"
	"github.com/draftleague/league-draft-backend/internal/draft"
	"github.com/draftleague/league-draft-backend/internal/session"
)

type createDraftRequest struct {
	LobbyID      string             `json:"lobby_id"`
	Mode         string             `json:"mode,omitempty"`
	Participants []participantInput `json:"participants"`
}

type participantInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

type pickRequest struct {
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id"`
}

type passRequest struct {
	ActorID string `json:"actor_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func CreateDraft(c *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDraftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.LobbyID == "" {
			writeError(w, http.StatusBadRequest, "missing lobby_id")
			return
		}

		// The engine's partition invariant needs unique ids, so reject
		// duplicates here rather than let them corrupt a session.
		seen := make(map[string]bool, len(req.Participants))
		participants := make([]draft.Participant, 0, len(req.Participants))
		for _, p := range req.Participants {
			if p.ID == "" || seen[p.ID] {
				writeError(w, http.StatusBadRequest, "participant ids must be present and unique")
				return
			}
			seen[p.ID] = true
			participants = append(participants, draft.Participant{ID: p.ID, Name: p.Name, Rating: p.Rating})
		}

		reply := make(chan coordinator.CreateReply, 1)
		c.Inbox() <- coordinator.CreateDraft{
			LobbyID:      req.LobbyID,
			Mode:         req.Mode,
			Participants: participants,
			Reply:        reply,
		}
		res := <-reply
		if res.Err != nil {
			writeError(w, statusFor(res.Err), res.Err.Error())
			return
		}

		snap := getSnapshot(res.Session)
		writeJSON(w, http.StatusCreated, snap)
	}
}

func Pick(c *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pickRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		s := lookup(c, chi.URLParam(r, "sessionID"))
		if s == nil {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}

		reply := make(chan session.Result, 1)
		s.Inbox() <- session.Pick{ActorID: req.ActorID, TargetID: req.TargetID, Reply: reply}
		respond(w, <-reply)
	}
}

func Pass(c *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		s := lookup(c, chi.URLParam(r, "sessionID"))
		if s == nil {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}

		reply := make(chan session.Result, 1)
		s.Inbox() <- session.Pass{ActorID: req.ActorID, Reply: reply}
		respond(w, <-reply)
	}
}

func Snapshot(c *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := lookup(c, chi.URLParam(r, "sessionID"))
		if s == nil {
			writeError(w, http.StatusNotFound, "draft not found")
			return
		}
		writeJSON(w, http.StatusOK, getSnapshot(s))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func lookup(c *coordinator.Coordinator, id string) *session.Session {
	reply := make(chan *session.Session, 1)
	c.Inbox() <- coordinator.GetSession{ID: id, Reply: reply}
	return <-reply
}

func getSnapshot(s *session.Session) session.Snapshot {
	reply := make(chan session.Snapshot, 1)
	s.Inbox() <- session.GetSnapshot{Reply: reply}
	return <-reply
}

func respond(w http.ResponseWriter, res session.Result) {
	if res.Err != nil {
		writeError(w, statusFor(res.Err), res.Err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res.Snapshot)
}

// statusFor maps the engine's error taxonomy onto HTTP. NotYourTurn and
// PlayerUnavailable are "stale view, refresh" conflicts, a closed session
// is gone for good.
func statusFor(err error) int {
	switch {
	case errors.Is(err, draft.ErrNotYourTurn), errors.Is(err, draft.ErrPlayerUnavailable):
		return http.StatusConflict
	case errors.Is(err, draft.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, draft.ErrInsufficientParticipants):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
