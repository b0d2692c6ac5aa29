// Package match receives the one-time handoff of final rosters when a
// draft completes. The engine guarantees at most one invocation per
// session; retries beyond that are this collaborator's problem.
package match

import (
	"context"
	"time"

	"github.com/draftleague/league-draft-backend/internal/draft"
)

type Creator interface {
	CreateMatch(ctx context.Context, sessionID string, rosterA, rosterB []draft.Participant) error
}

type Nop struct{}

func (Nop) CreateMatch(context.Context, string, []draft.Participant, []draft.Participant) error {
	return nil
}

type MatchRecord struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"uniqueIndex;size:36"`
	RosterA   string // participant ids, comma-joined
	RosterB   string
	CreatedAt time.Time
}
