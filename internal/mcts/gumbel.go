package mcts

import (
	"math"
	"math/rand/v2"
)

// unvisitedGumbelBonus pushes unvisited actions ahead of any realistic
// Q + noise score, so every candidate is sampled at least once.
const unvisitedGumbelBonus = 10.0

// selectGumbel scores each candidate with Q + Gumbel(0,1)/temperature and a
// visit bonus for unvisited actions, and returns the argmax. The temperature
// follows the configured turn schedule, so the selection anneals from
// exploration to exploitation as the game progresses.
func (s *Searcher) selectGumbel(children []*child, turn int) *child {
	temperature := s.hyper.Temperature(turn)

	var best *child
	bestScore := math.Inf(-1)
	for _, c := range children {
		score := c.q() + sampleGumbel(s.rng)/temperature
		if c.n == 0 {
			score += unvisitedGumbelBonus
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// sampleGumbel draws from the standard Gumbel(0,1) distribution:
// -ln(-ln(U)) with U uniform on (0, 1).
func sampleGumbel(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u < 1e-12 {
		u = 1e-12
	}
	return -math.Log(-math.Log(u))
}
