package types

import "github.com/draftleague/league-draft-backend/internal/session"

// ClientMessage is what a captain's websocket sends.
type ClientMessage struct {
	Type     string `json:"type"` // "Pick" | "Pass"
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id,omitempty"`
}

// ServerMessage is pushed to every websocket subscriber.
type ServerMessage struct {
	Type     string            `json:"type"` // "StateSnapshot" | "Error"
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}
