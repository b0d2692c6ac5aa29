package draft

import "testing"

func TestTurnOwner_TwoTeamsAlternates(t *testing.T) {
	// With two teams snake order degenerates to strict alternation.
	// Verified, not assumed.
	want := []int{0, 1, 0, 1, 0, 1}
	for pick := 1; pick <= len(want); pick++ {
		if got := TurnOwner(pick, 2); got != want[pick-1] {
			t.Fatalf("pick %d: got team %d, want %d", pick, got, want[pick-1])
		}
	}
}

func TestTurnOwner_ThreeTeamsReversesEachRound(t *testing.T) {
	// Round 1: 0,1,2; round 2 reversed: 2,1,0; round 3: 0,1,2 again.
	want := []int{0, 1, 2, 2, 1, 0, 0, 1, 2}
	for pick := 1; pick <= len(want); pick++ {
		if got := TurnOwner(pick, 3); got != want[pick-1] {
			t.Fatalf("pick %d: got team %d, want %d", pick, got, want[pick-1])
		}
	}
}

func TestTurnOwner_TwoTeamsNeverRepeatsAcrossRounds(t *testing.T) {
	// Round boundaries are where a reversal would hand the same captain
	// two picks in a row.
	for pick := 2; pick <= 12; pick++ {
		prev := TurnOwner(pick-1, 2)
		cur := TurnOwner(pick, 2)
		if prev == cur {
			t.Fatalf("picks %d and %d both owned by team %d", pick-1, pick, cur)
		}
	}
}

func TestRoundOf(t *testing.T) {
	cases := []struct {
		pick, numTeams, want int
	}{
		{1, 2, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 2, 3},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{7, 3, 3},
	}
	for _, tc := range cases {
		if got := RoundOf(tc.pick, tc.numTeams); got != tc.want {
			t.Fatalf("RoundOf(%d, %d): got %d, want %d", tc.pick, tc.numTeams, got, tc.want)
		}
	}
}
