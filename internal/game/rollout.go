package game

import (
	"math/rand/v2"
)

// greedyRatio is the fraction of rollout placements decided by the
// line-potential heuristic; the remainder are uniform among legal cells.
const greedyRatio = 0.8

// SimulateGame plays the game to completion with uniformly random tiles and
// placements, and returns the final score. The inputs are not modified.
func SimulateGame(b *Board, d *Deck, rng *rand.Rand) int {
	board := b.Clone()
	tiles := d.Tiles()
	moves := board.LegalMoves()

	for !board.IsFull() {
		if len(moves) == 0 || len(tiles) == 0 {
			break
		}
		mi := rng.IntN(len(moves))
		cell := moves[mi]
		moves[mi] = moves[len(moves)-1]
		moves = moves[:len(moves)-1]

		ti := rng.IntN(len(tiles))
		tile := tiles[ti]
		tiles[ti] = tiles[len(tiles)-1]
		tiles = tiles[:len(tiles)-1]

		board.setTile(cell, tile)
	}
	return Score(board)
}

// SimulateGameSmart plays the game to completion drawing tiles uniformly but
// choosing placements greedily by line potential 80% of the time (uniformly
// otherwise), and returns the final score. The inputs are not modified.
func SimulateGameSmart(b *Board, d *Deck, rng *rand.Rand) int {
	score, _ := SimulateGameSmartTrace(b, d, rng)
	return score
}

// SimulateGameSmartTrace is SimulateGameSmart returning additionally the
// sequence of cells played, in order. The trace feeds RAVE statistics.
func SimulateGameSmartTrace(b *Board, d *Deck, rng *rand.Rand) (int, []int) {
	board := b.Clone()
	tiles := d.Tiles()
	var trace []int

	for !board.IsFull() {
		moves := board.LegalMoves()
		if len(moves) == 0 || len(tiles) == 0 {
			break
		}

		ti := rng.IntN(len(tiles))
		tile := tiles[ti]
		tiles[ti] = tiles[len(tiles)-1]
		tiles = tiles[:len(tiles)-1]

		var cell int
		if rng.Float64() < greedyRatio {
			cell = bestPlacement(board, tile, moves)
		} else {
			cell = moves[rng.IntN(len(moves))]
		}

		board.setTile(cell, tile)
		trace = append(trace, cell)
	}
	return Score(board), trace
}

// bestPlacement returns the legal cell maximizing the placement potential of
// the tile.
func bestPlacement(b *Board, t Tile, moves []int) int {
	best := moves[0]
	bestScore := -1.0
	for _, cell := range moves {
		if s := PlacementPotential(b, t, cell); s > bestScore {
			bestScore = s
			best = cell
		}
	}
	return best
}

// centerCells get a small positional bonus during rollouts.
var centerCells = map[int]bool{4: true, 8: true, 9: true, 12: true}

// PlacementPotential estimates how promising it is to place the tile at the
// cell, by weighing each unbroken line through the cell with the value of
// completing it and how close it already is to completion.
func PlacementPotential(b *Board, t Tile, cell int) float64 {
	score := 0.0
	for _, line := range Lines {
		if !line.Contains(cell) {
			continue
		}
		value := t.Component(line.Dir)
		if value == 0 {
			continue
		}

		matching := 0
		broken := false
		for _, c := range line.Cells {
			if c == cell {
				continue
			}
			placed := b.At(c)
			if placed.IsEmpty() {
				continue
			}
			if placed.Component(line.Dir) == value {
				matching++
			} else {
				broken = true
				break
			}
		}
		if broken {
			continue
		}

		potential := float64(value) * float64(line.Length())
		completion := float64(matching+1) / float64(line.Length())
		score += potential * completion * completion

		// Completing the line right now is worth much more than progress.
		if matching+1 == line.Length() {
			score += potential * 2.0
		}
	}
	if centerCells[cell] {
		score += 2.0
	}
	return score
}
