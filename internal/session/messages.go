package session

import (
	"time"

	"github.com/draftleague/league-draft-backend/internal/draft"
)

type Msg interface{ isSessionMsg() }

// Pick asks the current captain's pick to be applied. The reply carries
// either the post-transition snapshot or the precondition failure.
type Pick struct {
	ActorID  string
	TargetID string
	Reply    chan Result
}

func (Pick) isSessionMsg() {}

type Pass struct {
	ActorID string
	Reply   chan Result
}

func (Pass) isSessionMsg() {}

// Join registers a client outbox; the current snapshot is sent immediately
// and one more follows every committed transition.
type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type GetSnapshot struct {
	Reply chan Snapshot
}

func (GetSnapshot) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// timerFired is posted by the turn timer. Gen guards against a stale
// fire racing a turn that already advanced.
type timerFired struct{ gen int }

func (timerFired) isSessionMsg() {}

type Result struct {
	Snapshot Snapshot
	Err      error
}

// Snapshot is a read-only view of one session, safe to hand out because
// the engine copies rosters and pool on every write.
type Snapshot struct {
	SessionID      string                             `json:"session_id"`
	LobbyID        string                             `json:"lobby_id"`
	Mode           string                             `json:"mode"`
	Version        int                                `json:"version"`
	Phase          draft.Phase                        `json:"phase"`
	PickNumber     int                                `json:"pick_number"`
	Round          int                                `json:"round"`
	CurrentTurn    draft.Team                         `json:"current_turn,omitempty"`
	CurrentCaptain string                             `json:"current_captain,omitempty"`
	Deadline       time.Time                          `json:"deadline,omitzero"`
	Captains       map[draft.Team]draft.Participant   `json:"captains"`
	Rosters        map[draft.Team][]draft.Participant `json:"rosters"`
	Pool           []draft.Participant                `json:"pool"`
}
