// Package coordinator owns the sessionID -> session actor mapping. Like
// the sessions it manages, it is itself an actor: registry mutations all
// go through one inbox, so two CreateDraft calls for the same lobby can
// never race a map write.
package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draftleague/league-draft-backend/internal/draft"
	"github.com/draftleague/league-draft-backend/internal/session"
	"github.com/draftleague/league-draft-backend/internal/store"
)

// Draft modes and their configured turn clocks. Tournament drafts get a
// long deliberation window, casual lobby drafts a short one.
const (
	ModeTournament = "tournament"
	ModeCasual     = "casual"
)

type Config struct {
	TournamentTurnTimeout time.Duration
	CasualTurnTimeout     time.Duration
}

type Msg interface{ isCoordinatorMsg() }

type CreateDraft struct {
	LobbyID      string
	Mode         string
	Participants []draft.Participant
	Reply        chan CreateReply
}

func (CreateDraft) isCoordinatorMsg() {}

type CreateReply struct {
	Session *session.Session
	Err     error
}

type GetSession struct {
	ID    string
	Reply chan *session.Session
}

func (GetSession) isCoordinatorMsg() {}

type RemoveSession struct{ ID string }

func (RemoveSession) isCoordinatorMsg() {}

type ShutdownAll struct{}

func (ShutdownAll) isCoordinatorMsg() {}

type Coordinator struct {
	inbox    chan Msg
	sessions map[string]*session.Session
	cfg      Config
	deps     session.Deps
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, cfg Config, deps session.Deps) *Coordinator {
	ctx, cancel := context.WithCancel(parent)
	if deps.Store == nil {
		deps.Store = store.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	c := &Coordinator{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]*session.Session),
		cfg:      cfg,
		deps:     deps,
		log:      deps.Log.Named("coordinator"),
		ctx:      ctx,
		cancel:   cancel,
	}
	go c.loop()
	return c
}

func (c *Coordinator) Inbox() chan<- Msg { return c.inbox }

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case CreateDraft:
				msg.Reply <- c.create(msg)

			case GetSession:
				msg.Reply <- c.sessions[msg.ID] // may be nil

			case RemoveSession:
				if s := c.sessions[msg.ID]; s != nil {
					s.Inbox() <- session.Shutdown{}
					delete(c.sessions, msg.ID)
				}

			case ShutdownAll:
				for id, s := range c.sessions {
					s.Inbox() <- session.Shutdown{}
					delete(c.sessions, id)
				}
				c.cancel()
			}
		}
	}
}

func (c *Coordinator) create(msg CreateDraft) CreateReply {
	state, err := draft.NewState(msg.Participants)
	if err != nil {
		return CreateReply{Err: err}
	}

	mode := msg.Mode
	if mode != ModeTournament {
		mode = ModeCasual
	}
	timeout := c.cfg.CasualTurnTimeout
	if mode == ModeTournament {
		timeout = c.cfg.TournamentTurnTimeout
	}

	id := uuid.NewString()
	s := session.New(c.ctx, id, msg.LobbyID, mode, state, timeout, c.deps)
	c.sessions[id] = s

	c.log.Info("draft created",
		zap.String("session_id", id),
		zap.String("lobby_id", msg.LobbyID),
		zap.String("mode", mode),
		zap.Int("participants", len(msg.Participants)))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := c.deps.Store.CreateDraft(ctx, store.DraftRecord{
			SessionID:  id,
			LobbyID:    msg.LobbyID,
			Mode:       mode,
			CaptainA:   state.Captains[draft.TeamA].ID,
			CaptainB:   state.Captains[draft.TeamB].ID,
			Phase:      string(state.Phase),
			PickNumber: state.PickNumber,
		})
		if err != nil {
			c.log.Warn("record draft creation failed", zap.Error(err), zap.String("session_id", id))
		}
	}()

	return CreateReply{Session: s}
}
