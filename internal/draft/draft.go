package draft

import (
	"errors"
	"slices"
)

var ErrInsufficientParticipants = errors.New("insufficient participants")
var ErrSessionClosed = errors.New("session closed")
var ErrNotYourTurn = errors.New("not your turn")
var ErrPlayerUnavailable = errors.New("player unavailable")
var ErrInternalInconsistency = errors.New("internal inconsistency")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Team string

const (
	TeamA Team = "a"
	TeamB Team = "b"
)

// Teams in pick-order for round one. Index 0 drafts first.
var Teams = []Team{TeamA, TeamB}

type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseComplete Phase = "complete"
)

// Participant is a snapshot of a lobby member at draft start. Ratings may
// change externally mid-draft; the draft only ever sees this copy.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

type State struct {
	Captains map[Team]Participant
	Rosters  map[Team][]Participant
	// Pool holds undrafted participants, descending rating, join order on
	// ties. Removal keeps the order, so it doubles as the display order.
	Pool       []Participant
	PickNumber int
	Phase      Phase
}

type CommandType string

const (
	CmdPick        CommandType = "Pick"
	CmdPass        CommandType = "Pass"
	CmdTimeoutPass CommandType = "TimeoutPass"
)

type Command struct {
	Type     CommandType
	ActorID  string
	TargetID string
}

type EventType string

const (
	EvtPickMade       EventType = "PickMade"
	EvtPassMade       EventType = "PassMade"
	EvtDraftCompleted EventType = "DraftCompleted"
)

type Event struct {
	Type       EventType
	Team       Team
	ActorID    string
	Picked     string // participant id, empty on a pass
	PickNumber int    // pick number the event resolved
	NextTurn   Team   // meaningless once completed
}

// NewState selects captains from the participant list and seeds the pool
// with everyone else. Input order is the lobby join order and is the
// tie-break everywhere ratings are equal.
func NewState(participants []Participant) (State, error) {
	capA, capB, err := SelectCaptains(participants)
	if err != nil {
		return State{}, err
	}

	pool := make([]Participant, 0, len(participants)-2)
	for _, p := range participants {
		if p.ID == capA.ID || p.ID == capB.ID {
			continue
		}
		pool = append(pool, p)
	}
	slices.SortStableFunc(pool, func(x, y Participant) int {
		return y.Rating - x.Rating
	})

	return State{
		Captains:   map[Team]Participant{TeamA: capA, TeamB: capB},
		Rosters:    map[Team][]Participant{TeamA: {capA}, TeamB: {capB}},
		Pool:       pool,
		PickNumber: 1,
		Phase:      PhaseActive,
	}, nil
}

// Round is derived from PickNumber, never stored.
func (s State) Round() int {
	return RoundOf(s.PickNumber, len(Teams))
}

func (s State) CurrentTurn() Team {
	return Teams[TurnOwner(s.PickNumber, len(Teams))]
}

func (s State) CurrentCaptain() Participant {
	return s.Captains[s.CurrentTurn()]
}

func (s State) TotalParticipants() int {
	return len(s.Rosters[TeamA]) + len(s.Rosters[TeamB]) + len(s.Pool)
}

// Apply resolves one command against the state and returns the events it
// produced plus the successor state. The input state is never mutated; on
// error it is returned unchanged. Preconditions are checked in a fixed
// order so callers get a deterministic failure for racing requests.
func Apply(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseActive {
		return nil, s, ErrSessionClosed
	}

	team := s.CurrentTurn()
	if cmd.ActorID != s.Captains[team].ID {
		return nil, s, ErrNotYourTurn
	}

	switch cmd.Type {
	case CmdPick:
		i := slices.IndexFunc(s.Pool, func(p Participant) bool { return p.ID == cmd.TargetID })
		if i < 0 {
			return nil, s, ErrPlayerUnavailable
		}

		picked := s.Pool[i]
		newState := s
		newState.Rosters = cloneRosters(s.Rosters)
		newState.Rosters[team] = append(newState.Rosters[team], picked)
		newState.Pool = slices.Delete(slices.Clone(s.Pool), i, i+1)
		newState.PickNumber = s.PickNumber + 1

		evt := Event{
			Type:       EvtPickMade,
			Team:       team,
			ActorID:    cmd.ActorID,
			Picked:     picked.ID,
			PickNumber: s.PickNumber,
		}
		events := []Event{evt}
		if len(newState.Pool) == 0 {
			newState.Phase = PhaseComplete
			events = append(events, Event{Type: EvtDraftCompleted, PickNumber: s.PickNumber})
		} else {
			events[0].NextTurn = newState.CurrentTurn()
		}

		if err := checkPartition(s, newState); err != nil {
			return nil, s, err
		}
		return events, newState, nil

	case CmdPass, CmdTimeoutPass:
		// A pass burns the turn slot permanently; the pool is untouched
		// and the turn is not owed back later.
		newState := s
		newState.PickNumber = s.PickNumber + 1

		evt := Event{
			Type:       EvtPassMade,
			Team:       team,
			ActorID:    cmd.ActorID,
			PickNumber: s.PickNumber,
			NextTurn:   newState.CurrentTurn(),
		}

		if err := checkPartition(s, newState); err != nil {
			return nil, s, err
		}
		return []Event{evt}, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func cloneRosters(rosters map[Team][]Participant) map[Team][]Participant {
	out := make(map[Team][]Participant, len(rosters))
	for t, r := range rosters {
		out[t] = slices.Clone(r)
	}
	return out
}

// checkPartition verifies rosterA + rosterB + pool still form a partition
// of the original participant set. A violation means the transition logic
// itself is broken, so the caller must halt the session rather than guess.
func checkPartition(before, after State) error {
	if after.TotalParticipants() != before.TotalParticipants() {
		return ErrInternalInconsistency
	}
	seen := make(map[string]bool, after.TotalParticipants())
	for _, t := range Teams {
		for _, p := range after.Rosters[t] {
			if seen[p.ID] {
				return ErrInternalInconsistency
			}
			seen[p.ID] = true
		}
	}
	for _, p := range after.Pool {
		if seen[p.ID] {
			return ErrInternalInconsistency
		}
		seen[p.ID] = true
	}
	return nil
}
