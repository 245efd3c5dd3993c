package ensemble

// MajorityVote returns the most frequent label. On a tie the label that first
// reached the winning count wins, so roster order is the tie-break.
func MajorityVote(votes []int) int {
	counts := make(map[int]int, len(votes))
	winner, winnerCount := 0, 0
	for _, v := range votes {
		counts[v]++
		if counts[v] > winnerCount {
			winner, winnerCount = v, counts[v]
		}
	}
	return winner
}

// Predict runs every classifier on x and majority-votes the labels.
func Predict(roster []Classifier, x []float64) int {
	votes := make([]int, len(roster))
	for i, c := range roster {
		votes[i] = c.Predict(x)
	}
	return MajorityVote(votes)
}
