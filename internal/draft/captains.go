package draft

import "slices"

// MinParticipants is the floor for a meaningful draft: two captains plus
// at least two draftable players.
const MinParticipants = 4

// SelectCaptains returns the two highest-rated participants. The sort is
// stable over the input, so equal ratings fall back to lobby join order
// and the outcome is reproducible for identical input.
func SelectCaptains(participants []Participant) (Participant, Participant, error) {
	if len(participants) < MinParticipants {
		return Participant{}, Participant{}, ErrInsufficientParticipants
	}

	ranked := slices.Clone(participants)
	slices.SortStableFunc(ranked, func(x, y Participant) int {
		return y.Rating - x.Rating
	})
	return ranked[0], ranked[1], nil
}
