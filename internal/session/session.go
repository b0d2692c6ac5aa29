// Package session runs one actor goroutine per draft. Every Pick, Pass and
// timer fire for a session funnels through its inbox, so transitions are
// serialized without locks and no partial state is ever observable. The
// actor never does I/O while resolving a command: persistence, pub/sub and
// the completion handoff all run out-of-band after the in-memory commit.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/draftleague/league-draft-backend/internal/draft"
	"github.com/draftleague/league-draft-backend/internal/match"
	"github.com/draftleague/league-draft-backend/internal/notify"
	"github.com/draftleague/league-draft-backend/internal/store"
)

const sideEffectTimeout = 5 * time.Second

// Deps are the external collaborators. All of them have no-op
// implementations, so tests can inject only what they assert on.
type Deps struct {
	Store   store.Store
	Pub     notify.Publisher
	Matches match.Creator
	Log     *zap.Logger
}

type Session struct {
	id      string
	lobbyID string
	mode    string

	inbox    chan Msg
	state    draft.State
	version  int
	deadline time.Time
	timer    *time.Timer
	timerGen int
	clients  map[string]chan Snapshot

	handoffDone bool
	halted      bool

	turnTimeout time.Duration
	deps        Deps
	log         *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id, lobbyID, mode string, initial draft.State, turnTimeout time.Duration, deps Deps) *Session {
	ctx, cancel := context.WithCancel(parent)
	if deps.Store == nil {
		deps.Store = store.Nop{}
	}
	if deps.Pub == nil {
		deps.Pub = notify.Nop{}
	}
	if deps.Matches == nil {
		deps.Matches = match.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	s := &Session{
		id:          id,
		lobbyID:     lobbyID,
		mode:        mode,
		inbox:       make(chan Msg, 64),
		state:       initial,
		clients:     make(map[string]chan Snapshot),
		turnTimeout: turnTimeout,
		deps:        deps,
		log:         deps.Log.With(zap.String("session_id", id)),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.armTimer()
	go s.loop()
	return s
}

func (s *Session) ID() string      { return s.id }
func (s *Session) LobbyID() string { return s.lobbyID }

// Inbox is how the coordinator, ws layer and tests talk to the actor.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Pick:
				msg.Reply <- s.resolve(draft.Command{Type: draft.CmdPick, ActorID: msg.ActorID, TargetID: msg.TargetID})

			case Pass:
				msg.Reply <- s.resolve(draft.Command{Type: draft.CmdPass, ActorID: msg.ActorID})

			case timerFired:
				s.autoPass(msg.gen)

			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- s.snapshot()

			case Leave:
				// Close the outbox so the client's writer loop ends;
				// otherwise every disconnect leaks a goroutine for the
				// session's lifetime.
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case GetSnapshot:
				msg.Reply <- s.snapshot()

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) resolve(cmd draft.Command) Result {
	if s.halted {
		return Result{Err: draft.ErrSessionClosed}
	}

	events, newState, err := draft.Apply(s.state, cmd)
	if err != nil {
		if errors.Is(err, draft.ErrInternalInconsistency) {
			// A broken partition means the serialization itself failed.
			// Halt instead of guessing a recovery.
			s.halted = true
			s.stopTimer()
			s.log.Error("invariant violation, halting session",
				zap.Int("pick_number", s.state.PickNumber))
		}
		return Result{Err: err}
	}

	s.commit(events, newState)
	return Result{Snapshot: s.snapshot()}
}

// autoPass is the timer path. It reuses the regular pass transition on
// behalf of the current captain; any failure (e.g. a manual pick landed
// just before the fire) is logged and dropped, the manual path wins.
func (s *Session) autoPass(gen int) {
	if gen != s.timerGen || s.halted || s.state.Phase != draft.PhaseActive {
		return
	}

	captain := s.state.CurrentCaptain()
	res := s.resolve(draft.Command{Type: draft.CmdTimeoutPass, ActorID: captain.ID})
	if res.Err != nil {
		s.log.Warn("timeout auto-pass discarded", zap.Error(res.Err))
		return
	}
	s.log.Info("turn timed out, auto-passed",
		zap.String("captain_id", captain.ID),
		zap.Int("pick_number", res.Snapshot.PickNumber))
}

func (s *Session) commit(events []draft.Event, newState draft.State) {
	s.state = newState
	s.version++

	if newState.Phase == draft.PhaseActive {
		s.armTimer()
	} else {
		s.stopTimer()
		s.deadline = time.Time{}
	}

	s.record(events)
	s.broadcast(s.snapshot())

	if newState.Phase == draft.PhaseComplete {
		s.handoff()
	}
}

// record writes the turn to the store and publishes events, detached from
// the actor so a slow sink can never stall the draft.
func (s *Session) record(events []draft.Event) {
	now := time.Now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		for _, evt := range events {
			switch evt.Type {
			case draft.EvtPickMade, draft.EvtPassMade:
				kind := "pass"
				if evt.Type == draft.EvtPickMade {
					kind = "pick"
				}
				err := s.deps.Store.RecordTurn(ctx, store.TurnRecord{
					SessionID:     s.id,
					PickNumber:    evt.PickNumber,
					Kind:          kind,
					Team:          string(evt.Team),
					ActorID:       evt.ActorID,
					ParticipantID: evt.Picked,
				})
				if err != nil {
					s.log.Warn("record turn failed", zap.Error(err), zap.Int("pick_number", evt.PickNumber))
				}
			case draft.EvtDraftCompleted:
				if err := s.deps.Store.CompleteDraft(ctx, s.id, now); err != nil {
					s.log.Warn("record completion failed", zap.Error(err))
				}
			}

			err := s.deps.Pub.Publish(ctx, notify.Event{
				SessionID:     s.id,
				Type:          string(evt.Type),
				Team:          string(evt.Team),
				ActorID:       evt.ActorID,
				ParticipantID: evt.Picked,
				PickNumber:    evt.PickNumber,
				NextTurn:      string(evt.NextTurn),
				OccurredAt:    now,
			})
			if err != nil {
				s.log.Warn("publish event failed", zap.Error(err), zap.String("event", string(evt.Type)))
			}
		}
	}()
}

// handoff invokes match creation at most once per session; the flag is
// checked and set inside the actor, so a duplicate completion signal is
// a no-op.
func (s *Session) handoff() {
	if s.handoffDone {
		return
	}
	s.handoffDone = true

	rosterA := s.state.Rosters[draft.TeamA]
	rosterB := s.state.Rosters[draft.TeamB]
	s.log.Info("draft complete, handing off to match creation",
		zap.Int("roster_a", len(rosterA)), zap.Int("roster_b", len(rosterB)))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.deps.Matches.CreateMatch(ctx, s.id, rosterA, rosterB); err != nil {
			s.log.Error("match creation failed", zap.Error(err))
		}
	}()
}

func (s *Session) armTimer() {
	s.stopTimer()
	s.timerGen++
	gen := s.timerGen
	s.deadline = time.Now().Add(s.turnTimeout)
	s.timer = time.AfterFunc(s.turnTimeout, func() {
		select {
		case s.inbox <- timerFired{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:  s.id,
		LobbyID:    s.lobbyID,
		Mode:       s.mode,
		Version:    s.version,
		Phase:      s.state.Phase,
		PickNumber: s.state.PickNumber,
		Round:      s.state.Round(),
		Captains:   s.state.Captains,
		Rosters:    s.state.Rosters,
		Pool:       s.state.Pool,
	}
	if s.state.Phase == draft.PhaseActive {
		snap.CurrentTurn = s.state.CurrentTurn()
		snap.CurrentCaptain = s.state.CurrentCaptain().ID
		snap.Deadline = s.deadline
	}
	return snap
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
		default:
			// Slow or gone; drop them, ws layer rejoins if it cares.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Session) shutdown() {
	s.stopTimer()
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}
