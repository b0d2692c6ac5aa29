package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/draftleague/league-draft-backend/internal/draft"
	"github.com/draftleague/league-draft-backend/internal/notify"
	"github.com/draftleague/league-draft-backend/internal/store"
)

func sixPlayers() []draft.Participant {
	return []draft.Participant{
		{ID: "p1", Name: "ava", Rating: 1800},
		{ID: "p2", Name: "ben", Rating: 1700},
		{ID: "p3", Name: "cam", Rating: 1600},
		{ID: "p4", Name: "dee", Rating: 1500},
		{ID: "p5", Name: "eli", Rating: 1400},
		{ID: "p6", Name: "fay", Rating: 1300},
	}
}

func newSession(t *testing.T, timeout time.Duration, deps Deps) *Session {
	t.Helper()
	state, err := draft.NewState(sixPlayers())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return New(ctx, "s-test", "lobby-1", "casual", state, timeout, deps)
}

func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "outbox closed unexpectedly")
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func sendPick(s *Session, actor, target string) Result {
	reply := make(chan Result, 1)
	s.Inbox() <- Pick{ActorID: actor, TargetID: target, Reply: reply}
	return <-reply
}

func sendPass(s *Session, actor string) Result {
	reply := make(chan Result, 1)
	s.Inbox() <- Pass{ActorID: actor, Reply: reply}
	return <-reply
}

func TestSession_PickBroadcastsVersionedSnapshot(t *testing.T) {
	s := newSession(t, time.Minute, Deps{})

	out := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvSnapshot(t, out, time.Second)
	require.Equal(t, 0, first.Version)
	require.Equal(t, 1, first.PickNumber)
	require.Equal(t, draft.TeamA, first.CurrentTurn)
	require.Equal(t, "p1", first.CurrentCaptain)
	require.False(t, first.Deadline.IsZero())

	res := sendPick(s, "p1", "p3")
	require.NoError(t, res.Err)
	require.Equal(t, 1, res.Snapshot.Version)
	require.Equal(t, 2, res.Snapshot.PickNumber)

	next := recvSnapshot(t, out, time.Second)
	require.Equal(t, 1, next.Version)
	require.Equal(t, draft.TeamB, next.CurrentTurn)
	require.Len(t, next.Rosters[draft.TeamA], 2)
	require.Len(t, next.Pool, 3)
}

func TestSession_LeaveClosesOutbox(t *testing.T) {
	s := newSession(t, time.Minute, Deps{})

	out := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	recvSnapshot(t, out, time.Second)

	s.Inbox() <- Leave{ClientID: "c1"}

	// The feed must end, not fall silent: a ranging consumer relies on
	// the close to terminate.
	select {
	case _, ok := <-out:
		require.False(t, ok, "expected closed outbox, got a snapshot")
	case <-time.After(time.Second):
		t.Fatal("outbox never closed after leave")
	}

	// A transition after the leave must not reach the departed client
	// (send on the closed channel would panic the actor).
	require.NoError(t, sendPick(s, "p1", "p3").Err)

	reply := make(chan Snapshot, 1)
	s.Inbox() <- GetSnapshot{Reply: reply}
	require.Equal(t, 1, (<-reply).Version)
}

func TestSession_RejectedOpDoesNotAdvance(t *testing.T) {
	s := newSession(t, time.Minute, Deps{})

	res := sendPick(s, "p2", "p3")
	require.ErrorIs(t, res.Err, draft.ErrNotYourTurn)

	reply := make(chan Snapshot, 1)
	s.Inbox() <- GetSnapshot{Reply: reply}
	snap := <-reply
	require.Equal(t, 0, snap.Version)
	require.Equal(t, 1, snap.PickNumber)
	require.Len(t, snap.Pool, 4)
}

// Two requests claim the same turn at the same moment. Exactly one is
// accepted; the loser fails deterministically because the winner already
// advanced the turn pointer.
func TestSession_ConcurrentPicksResolveToExactlyOne(t *testing.T) {
	s := newSession(t, time.Minute, Deps{})

	var wg sync.WaitGroup
	results := make([]Result, 2)
	targets := []string{"p3", "p4"}
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sendPick(s, "p1", targets[i])
		}(i)
	}
	wg.Wait()

	var accepted, rejected int
	for _, res := range results {
		if res.Err == nil {
			accepted++
		} else {
			require.ErrorIs(t, res.Err, draft.ErrNotYourTurn)
			rejected++
		}
	}
	require.Equal(t, 1, accepted, "exactly one pick must win")
	require.Equal(t, 1, rejected)

	reply := make(chan Snapshot, 1)
	s.Inbox() <- GetSnapshot{Reply: reply}
	snap := <-reply
	require.Equal(t, 2, snap.PickNumber, "no double pick, no lost pick")
	require.Len(t, snap.Pool, 3)
	require.Len(t, snap.Rosters[draft.TeamA], 2)
}

func TestSession_TimeoutAutoPassesExactlyOnce(t *testing.T) {
	s := newSession(t, 80*time.Millisecond, Deps{})

	out := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	first := recvSnapshot(t, out, time.Second)
	require.Equal(t, 1, first.PickNumber)

	// Let the deadline lapse; the timer issues one pass for captain A.
	expired := recvSnapshot(t, out, time.Second)
	require.Equal(t, 1, expired.Version)
	require.Equal(t, 2, expired.PickNumber, "deadline must burn exactly one turn")
	require.Equal(t, draft.TeamB, expired.CurrentTurn)
	require.Len(t, expired.Pool, 4, "auto-pass must not touch the pool")

	// A pick from the timed-out captain lands after the auto-pass and
	// must be rejected, not double-counted.
	res := sendPick(s, "p1", "p3")
	require.ErrorIs(t, res.Err, draft.ErrNotYourTurn)
}

func TestSession_ManualActionResetsTimer(t *testing.T) {
	s := newSession(t, 150*time.Millisecond, Deps{})

	out := make(chan Snapshot, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	first := recvSnapshot(t, out, time.Second)

	// Act well before the deadline; the stale timer for turn 1 must not
	// fire on top of the new turn.
	res := sendPick(s, "p1", "p3")
	require.NoError(t, res.Err)
	require.True(t, res.Snapshot.Deadline.After(first.Deadline))

	next := recvSnapshot(t, out, time.Second)
	require.Equal(t, 1, next.Version)

	// The next snapshot can only be turn 2's own expiry, never a stale
	// fire from turn 1.
	expired := recvSnapshot(t, out, time.Second)
	require.Equal(t, 2, expired.Version)
	require.Equal(t, 3, expired.PickNumber)
	require.Equal(t, draft.TeamA, expired.CurrentTurn)
}

type countingCreator struct {
	calls atomic.Int32
	done  chan struct{}
}

func (c *countingCreator) CreateMatch(_ context.Context, _ string, _, _ []draft.Participant) error {
	c.calls.Add(1)
	select {
	case c.done <- struct{}{}:
	default:
	}
	return nil
}

func TestSession_CompletionHandsOffExactlyOnce(t *testing.T) {
	creator := &countingCreator{done: make(chan struct{}, 1)}
	s := newSession(t, time.Minute, Deps{Matches: creator})

	require.NoError(t, sendPick(s, "p1", "p3").Err)
	require.NoError(t, sendPick(s, "p2", "p4").Err)
	require.NoError(t, sendPick(s, "p1", "p5").Err)

	final := sendPick(s, "p2", "p6")
	require.NoError(t, final.Err)
	require.Equal(t, draft.PhaseComplete, final.Snapshot.Phase)
	require.Empty(t, final.Snapshot.Pool)
	require.True(t, final.Snapshot.Deadline.IsZero())

	select {
	case <-creator.done:
	case <-time.After(time.Second):
		t.Fatal("match creation never invoked")
	}

	// Any further operation is rejected and must not re-trigger handoff.
	require.ErrorIs(t, sendPick(s, "p1", "p3").Err, draft.ErrSessionClosed)
	require.ErrorIs(t, sendPass(s, "p2").Err, draft.ErrSessionClosed)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), creator.calls.Load())
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *capturingPublisher) Publish(_ context.Context, evt notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *capturingPublisher) snapshot() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Event(nil), p.events...)
}

type countingStore struct {
	store.Nop
	turns atomic.Int32
}

func (s *countingStore) RecordTurn(context.Context, store.TurnRecord) error {
	s.turns.Add(1)
	return nil
}

func TestSession_CommittedTransitionsReachCollaborators(t *testing.T) {
	pub := &capturingPublisher{}
	st := &countingStore{}
	s := newSession(t, time.Minute, Deps{Pub: pub, Store: st})

	require.NoError(t, sendPick(s, "p1", "p3").Err)
	require.NoError(t, sendPass(s, "p2").Err)

	require.Eventually(t, func() bool {
		evts := pub.snapshot()
		return len(evts) == 2 && st.turns.Load() == 2
	}, time.Second, 10*time.Millisecond)

	// Each commit publishes from its own goroutine, so don't assume
	// arrival order between the two.
	byType := map[string]notify.Event{}
	for _, evt := range pub.snapshot() {
		byType[evt.Type] = evt
	}
	pick := byType[string(draft.EvtPickMade)]
	require.Equal(t, "p3", pick.ParticipantID)
	require.Equal(t, 1, pick.PickNumber)
	pass := byType[string(draft.EvtPassMade)]
	require.Equal(t, 2, pass.PickNumber)
	require.Equal(t, "s-test", pick.SessionID)
}
