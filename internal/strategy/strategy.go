// Package strategy holds the domain heuristics the search engine blends with
// network predictions: a positional evaluation of a candidate placement and a
// contextual boost tracking line-completion proximity across all three stripe
// directions.
package strategy

import (
	"math"

	"github.com/specialjcg/take-it-easy/internal/game"
)

// cellBonus ranks cells by their observed average final score over recorded
// games.
var cellBonus = [game.NumCells]float64{
	0: 1.0, 1: 1.0, 2: 4.0, 3: 0.5, 4: 1.0, 5: 3.0, 6: 1.0,
	7: 0.0, 8: 5.0, 9: 1.0, 10: 2.0, 11: 3.0, 12: 0.5, 13: 2.0,
	14: 4.0, 15: 0.5, 16: 0.5, 17: 0.0, 18: 0.0,
}

// PositionEvaluation scores placing the tile at the cell from the cell's
// strategic rank, the tile's point weight (its first two stripe values), one
// point per length-5 line through the cell, and a tenth of the cell's
// alignment score on the current board. Returned on an unnormalized scale
// roughly in [0, 10].
func PositionEvaluation(b *game.Board, cell int, t game.Tile) float64 {
	bonus := cellBonus[cell]

	// Heavier tiles have more points at stake.
	bonus += float64(t.A+t.B) * 0.1

	// Cells on the longest line of each direction compound their value.
	for _, line := range game.LinesThrough(cell) {
		if line.Length() == 5 {
			bonus += 1.0
		}
	}
	return bonus + game.AlignmentScore(b, cell)*0.1
}

// ContextualBoost analyzes the line-completion potential of placing the tile
// at the cell, over all three stripe directions. The result is normalized to
// [-1, 1] with tanh, scaled by the game phase and by the entropyFactor in
// [0, 1] (low policy entropy means the networks are confident and the boost
// matters less).
func ContextualBoost(b *game.Board, cell int, t game.Tile, turn int, entropyFactor float64) float64 {
	score := 0.0
	for _, line := range game.LinesThrough(cell) {
		target := t.Component(line.Dir)
		if target == 0 {
			continue
		}

		matches, conflicts, filled := 0, 0, 0
		for _, c := range line.Cells {
			if c == cell {
				continue
			}
			placed := b.At(c)
			if placed.IsEmpty() {
				continue
			}
			filled++
			if placed.Component(line.Dir) == target {
				matches++
			} else {
				conflicts++
			}
		}

		length := float64(line.Length())
		completionRatio := (float64(matches) + 1.0) / length
		occupancyRatio := float64(filled) / length
		conflictPenalty := float64(conflicts) / length

		score += completionRatio*(1.0+occupancyRatio) - conflictPenalty
	}

	score += positionalBoost(cell)

	switch {
	case turn < 6:
		score *= 1.15
	case turn > 14:
		score *= 0.85
	}

	normalized := math.Tanh(score / 4.0)
	entropyScaled := 0.3 + 0.7*clamp01(entropyFactor)
	return normalized * entropyScaled
}

// positionalBoost favors the center band of the board.
func positionalBoost(cell int) float64 {
	switch cell {
	case 8:
		return 1.5
	case 9, 10:
		return 1.2
	case 3, 4, 5, 6, 12, 13, 14, 15:
		return 0.9
	case 2, 7, 11, 16:
		return 0.5
	default:
		return 0.2
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// PolicyEntropy returns the Shannon entropy of the distribution normalized by
// the maximum entropy (uniform over its support), in [0, 1].
func PolicyEntropy(probs []float32) float64 {
	entropy := 0.0
	support := 0
	for _, p := range probs {
		if p > 1e-10 {
			entropy -= float64(p) * math.Log(float64(p))
			support++
		}
	}
	maxEntropy := math.Log(float64(support))
	if maxEntropy <= 0 {
		return 0
	}
	return clamp01(entropy / maxEntropy)
}
