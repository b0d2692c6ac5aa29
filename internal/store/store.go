// Package store is the persistence collaborator. The session actor is the
// source of truth while a draft runs; rows written here exist for recovery,
// audit and the CRUD screens, and writes are fire-and-forget from the
// actor's point of view.
package store

import (
	"context"
	"time"
)

type Store interface {
	CreateDraft(ctx context.Context, rec DraftRecord) error
	RecordTurn(ctx context.Context, rec TurnRecord) error
	CompleteDraft(ctx context.Context, sessionID string, completedAt time.Time) error
}

type DraftRecord struct {
	SessionID  string `gorm:"primaryKey;size:36"`
	LobbyID    string `gorm:"index;size:36"`
	Mode       string `gorm:"size:16"`
	CaptainA   string `gorm:"size:36"`
	CaptainB   string `gorm:"size:36"`
	Phase      string `gorm:"size:16"`
	PickNumber int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TurnRecord struct {
	ID            uint   `gorm:"primaryKey"`
	SessionID     string `gorm:"index;size:36"`
	PickNumber    int
	Kind          string `gorm:"size:8"` // "pick" or "pass"
	Team          string `gorm:"size:4"`
	ActorID       string `gorm:"size:36"`
	ParticipantID string `gorm:"size:36"` // empty on a pass
	CreatedAt     time.Time
}

// Nop satisfies Store without a database, for tests and local runs.
type Nop struct{}

func (Nop) CreateDraft(context.Context, DraftRecord) error { return nil }

func (Nop) RecordTurn(context.Context, TurnRecord) error { return nil }

func (Nop) CompleteDraft(context.Context, string, time.Time) error { return nil }
