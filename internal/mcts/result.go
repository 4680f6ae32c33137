package mcts

import (
	"github.com/specialjcg/take-it-easy/internal/game"
)

// Result of one search call.
type Result struct {
	// BestPosition is the chosen cell. When no legal move exists, the result
	// is the sentinel: position 0 with an all-zero policy.
	BestPosition int

	// Policy is the visit-count distribution N^(1/temperature) re-normalized
	// over legal cells and zero elsewhere. It sums to 1 over legal cells
	// (within 1e-5) whenever a legal move exists.
	Policy [game.NumCells]float32

	// QValues holds the mean backed-up value per cell, zero for unvisited or
	// illegal cells.
	QValues [game.NumCells]float32

	// Subscore is the final score of a completion playout from the chosen
	// move; a cheap indicator of what the position is on track for.
	Subscore float64
}

// SentinelResult is returned when the board has no legal moves.
func SentinelResult() Result {
	return Result{}
}
