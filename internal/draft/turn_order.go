package draft

// Snake order: odd rounds run left-to-right over the team indexes, even
// rounds run reversed, so whoever picks last in a round picks first in
// the next. Written for N teams even though the engine currently runs
// with two, since multi-captain drafts are a planned league mode.

// RoundOf returns the 1-based round a pick number falls in.
func RoundOf(pickNumber, numTeams int) int {
	return (pickNumber-1)/numTeams + 1
}

// TurnOwner returns the index of the team that owns a pick number.
// With two teams the reversal would hand one captain back-to-back picks
// at every round boundary, so that case alternates strictly.
func TurnOwner(pickNumber, numTeams int) int {
	i := (pickNumber - 1) % numTeams
	if numTeams > 2 && RoundOf(pickNumber, numTeams)%2 == 0 {
		return numTeams - 1 - i
	}
	return i
}
