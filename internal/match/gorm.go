package match

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/draftleague/league-draft-backend/internal/draft"
)

type GormCreator struct {
	db *gorm.DB
}

func NewGormCreator(db *gorm.DB) (*GormCreator, error) {
	if err := db.AutoMigrate(&MatchRecord{}); err != nil {
		return nil, err
	}
	return &GormCreator{db: db}, nil
}

// CreateMatch inserts the match row. The unique index on session_id plus
// DoNothing makes a duplicate handoff harmless even across process
// restarts, on top of the engine's own once-only guard.
func (c *GormCreator) CreateMatch(ctx context.Context, sessionID string, rosterA, rosterB []draft.Participant) error {
	rec := MatchRecord{
		SessionID: sessionID,
		RosterA:   joinIDs(rosterA),
		RosterB:   joinIDs(rosterB),
	}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

func joinIDs(roster []draft.Participant) string {
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.ID
	}
	return strings.Join(ids, ",")
}
