// Package notify fans committed draft events out to whatever is watching:
// the websocket feed reads snapshots directly from the session actor, and
// anything else (other service instances, bots, audit consumers) subscribes
// through here. Delivery is at-least-once; subscribers de-dup by pick number.
package notify

import (
	"context"
	"time"
)

type Event struct {
	SessionID     string    `json:"session_id"`
	Type          string    `json:"type"` // PickMade | PassMade | DraftCompleted
	Team          string    `json:"team,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	ParticipantID string    `json:"participant_id,omitempty"`
	PickNumber    int       `json:"pick_number"`
	NextTurn      string    `json:"next_turn,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
