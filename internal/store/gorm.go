package store

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the draft tables.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&DraftRecord{}, &TurnRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) CreateDraft(ctx context.Context, rec DraftRecord) error {
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *GormStore) RecordTurn(ctx context.Context, rec TurnRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		// Commits land here from separate goroutines; the guard keeps a
		// late-arriving earlier turn from regressing the counter.
		return tx.Model(&DraftRecord{}).
			Where("session_id = ? AND pick_number < ?", rec.SessionID, rec.PickNumber+1).
			Update("pick_number", rec.PickNumber+1).Error
	})
}

func (s *GormStore) CompleteDraft(ctx context.Context, sessionID string, completedAt time.Time) error {
	return s.db.WithContext(ctx).Model(&DraftRecord{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{"phase": "complete", "updated_at": completedAt}).Error
}
