package engine

import "math/rand/v2"

// MinPlayers is the smallest table where a strict red minority exists.
const MinPlayers = 3

// MaxMinority is the largest red count that is still a strict minority of n.
func MaxMinority(n int) int {
	if n%2 == 0 {
		return n/2 - 1
	}
	return n / 2
}

// NominatedMinority turns the caller's hint into the red count for a table
// of n players. A hint of zero asks for as many reds as allowed.
func NominatedMinority(n, hint int) int {
	if hint == 0 {
		hint = n
	}
	return max(1, min(hint, MaxMinority(n)))
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
