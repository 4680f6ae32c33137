// Package features transforms a placement context -- board, tile in hand,
// remaining deck and turn -- into the fixed-shape input tensors of each
// supported network architecture.
//
// Encoders are deterministic and never allocate randomness. Callers state the
// architecture explicitly; there is no fallback encoding.
package features

import (
	"github.com/specialjcg/take-it-easy/internal/game"
)

// Architecture selects the encoding (and so the network family) to use.
type Architecture int

const (
	// ArchSpatial is the dense 5x5 grid encoding for convolutional networks.
	ArchSpatial Architecture = iota
	// ArchOneHot is the 5x5 grid encoding with one-hot stripe channels.
	ArchOneHot
	// ArchGraph is the 19-node encoding for message-passing networks.
	ArchGraph
	// ArchGraphEnriched extends ArchGraph with line-completion signals.
	ArchGraphEnriched
)

//go:generate go tool enumer -type=Architecture -trimprefix=Arch -values -text -json features.go

const (
	// GridSize is the side of the square grid the hexagonal board embeds into.
	GridSize = 5

	// NumNodes is the number of graph nodes, one per board cell.
	NumNodes = game.NumCells

	// SpatialChannels of the ArchSpatial encoding:
	//
	//	 0-2   placed tile components, normalized by /10
	//	 3     occupancy mask
	//	 4-6   tile-in-hand components, normalized, broadcast to every cell
	//	 7     turn progress in [0, 1]
	//	 8     per-cell potential score (distributed over empty line cells)
	//	 9     per-cell best line potential for the tile in hand
	//	10-12  remaining copies of the in-hand component per direction, /9
	SpatialChannels = 13

	// OneHotChannels of the ArchOneHot encoding; the layout is enumerated in
	// encodeOneHot.
	OneHotChannels = 37

	// GraphChannels per node of the ArchGraph encoding; the layout is
	// enumerated in encodeGraph.
	GraphChannels = 43

	// GraphEnrichedChannels adds per-node line-completion signals.
	GraphEnrichedChannels = 47
)

// gridPos is a (row, column) position on the 5x5 grid.
type gridPos struct{ Row, Col int }

// HexToGrid embeds the 19 hexagonal cells into the 5x5 grid, column-major:
// columns of heights 3-4-5-4-3 centered vertically.
var HexToGrid = [NumNodes]gridPos{
	{1, 0}, {2, 0}, {3, 0},
	{1, 1}, {2, 1}, {3, 1}, {4, 1},
	{0, 2}, {1, 2}, {2, 2}, {3, 2}, {4, 2},
	{1, 3}, {2, 3}, {3, 3}, {4, 3},
	{1, 4}, {2, 4}, {3, 4},
}

// GridIndex returns the flat 5x5 grid index of a hexagonal cell.
func GridIndex(cell int) int {
	p := HexToGrid[cell]
	return p.Row*GridSize + p.Col
}

// Context is one placement decision point to encode.
type Context struct {
	Board *game.Board
	Tile  game.Tile
	Deck  *game.Deck
	// Turn counts decisions taken so far, 0-based; TotalTurns is 19 for the
	// standard game.
	Turn       int
	TotalTurns int
}

func (c Context) turnProgress() float32 {
	if c.TotalTurns <= 0 {
		return 0
	}
	p := float32(c.Turn) / float32(c.TotalTurns)
	if p > 1 {
		p = 1
	}
	return p
}

// Shape returns the tensor dimensions of an architecture's encoding, without
// the batch axis.
func Shape(arch Architecture) []int {
	switch arch {
	case ArchSpatial:
		return []int{SpatialChannels, GridSize, GridSize}
	case ArchOneHot:
		return []int{OneHotChannels, GridSize, GridSize}
	case ArchGraph:
		return []int{NumNodes, GraphChannels}
	default:
		return []int{NumNodes, GraphEnrichedChannels}
	}
}

// Encode returns the flat tensor data for the context under the given
// architecture, laid out to match Shape(arch) in row-major order.
func Encode(arch Architecture, ctx Context) []float32 {
	switch arch {
	case ArchSpatial:
		return encodeSpatial(ctx)
	case ArchOneHot:
		return encodeOneHot(ctx)
	case ArchGraph:
		return encodeGraph(ctx, false)
	default:
		return encodeGraph(ctx, true)
	}
}

const componentScale = 1.0 / 10.0

func encodeSpatial(ctx Context) []float32 {
	data := make([]float32, SpatialChannels*GridSize*GridSize)
	set := func(channel, cell int, v float32) {
		data[channel*GridSize*GridSize+GridIndex(cell)] = v
	}

	potentials := PotentialScores(ctx.Board)
	linePotentials := lineFeatureByCell(ctx.Board, ctx.Tile)
	counts := ctx.Deck.ComponentCounts()
	progress := ctx.turnProgress()

	for cell := 0; cell < game.NumCells; cell++ {
		placed := ctx.Board.At(cell)
		if !placed.IsEmpty() {
			set(0, cell, float32(placed.A)*componentScale)
			set(1, cell, float32(placed.B)*componentScale)
			set(2, cell, float32(placed.C)*componentScale)
			set(3, cell, 1)
		}
		set(4, cell, float32(ctx.Tile.A)*componentScale)
		set(5, cell, float32(ctx.Tile.B)*componentScale)
		set(6, cell, float32(ctx.Tile.C)*componentScale)
		set(7, cell, progress)
		set(8, cell, potentials[cell])
		set(9, cell, linePotentials[cell])
		for dir := game.Horizontal; dir < game.NumDirections; dir++ {
			remaining := float32(0)
			if idx := game.ValueIndex(dir, ctx.Tile.Component(dir)); idx >= 0 {
				remaining = float32(counts[dir][idx]) / 9.0
			}
			set(10+int(dir), cell, remaining)
		}
	}
	return data
}

// encodeOneHot lays out the 37 channels:
//
//	 0-2   placed horizontal value one-hot over {1,5,9}
//	 3-5   placed diagonal-NE value one-hot over {2,6,7}
//	 6-8   placed diagonal-NW value one-hot over {3,4,8}
//	 9     occupancy mask
//	10-12  in-hand horizontal one-hot (broadcast)
//	13-15  in-hand diagonal-NE one-hot (broadcast)
//	16-18  in-hand diagonal-NW one-hot (broadcast)
//	19     turn progress
//	20-22  bag counts of horizontal values, /9 (broadcast)
//	23-25  bag counts of diagonal-NE values, /9 (broadcast)
//	26-28  bag counts of diagonal-NW values, /9 (broadcast)
//	29-36  line potentials, 15 lines folded into 8 channels by max
func encodeOneHot(ctx Context) []float32 {
	data := make([]float32, OneHotChannels*GridSize*GridSize)
	set := func(channel, cell int, v float32) {
		data[channel*GridSize*GridSize+GridIndex(cell)] = v
	}
	maxSet := func(channel, cell int, v float32) {
		idx := channel*GridSize*GridSize + GridIndex(cell)
		if v > data[idx] {
			data[idx] = v
		}
	}

	progress := float32(ctx.Board.NumPlaced()) / float32(game.NumCells)
	counts := ctx.Deck.ComponentCounts()

	for cell := 0; cell < game.NumCells; cell++ {
		placed := ctx.Board.At(cell)
		if !placed.IsEmpty() {
			if idx := game.ValueIndex(game.Horizontal, placed.A); idx >= 0 {
				set(idx, cell, 1)
			}
			if idx := game.ValueIndex(game.DiagNE, placed.B); idx >= 0 {
				set(3+idx, cell, 1)
			}
			if idx := game.ValueIndex(game.DiagNW, placed.C); idx >= 0 {
				set(6+idx, cell, 1)
			}
			set(9, cell, 1)
		}

		if idx := game.ValueIndex(game.Horizontal, ctx.Tile.A); idx >= 0 {
			set(10+idx, cell, 1)
		}
		if idx := game.ValueIndex(game.DiagNE, ctx.Tile.B); idx >= 0 {
			set(13+idx, cell, 1)
		}
		if idx := game.ValueIndex(game.DiagNW, ctx.Tile.C); idx >= 0 {
			set(16+idx, cell, 1)
		}
		set(19, cell, progress)

		for dir := game.Horizontal; dir < game.NumDirections; dir++ {
			base := 20 + 3*int(dir)
			for i := 0; i < 3; i++ {
				set(base+i, cell, float32(counts[dir][i])/9.0)
			}
		}
	}

	lineFeats := LineFeatures(ctx.Board, ctx.Tile)
	for lineIdx, value := range lineFeats {
		channel := 29 + lineIdx%8
		for _, cell := range game.Lines[lineIdx].Cells {
			maxSet(channel, cell, value)
		}
	}
	return data
}

// encodeGraph lays out the per-node channels:
//
//	 0-2   placed components, /10
//	 3     occupancy
//	 4-12  placed one-hot over the 3 directions x 3 values
//	13-15  in-hand components, /10
//	16     turn progress
//	17-25  bag counts, 3 directions x 3 values, /9
//	26-40  line membership one-hot over the 15 lines
//	41     potential score, /45
//	42     alignment score, /27
//
// The enriched encoding appends:
//
//	43-45  per-direction completion ratio of the node's line
//	46     line potential of placing the in-hand tile here
func encodeGraph(ctx Context, enriched bool) []float32 {
	channels := GraphChannels
	if enriched {
		channels = GraphEnrichedChannels
	}
	data := make([]float32, NumNodes*channels)

	potentials := PotentialScores(ctx.Board)
	counts := ctx.Deck.ComponentCounts()
	progress := ctx.turnProgress()

	for cell := 0; cell < game.NumCells; cell++ {
		node := data[cell*channels : (cell+1)*channels]
		placed := ctx.Board.At(cell)
		if !placed.IsEmpty() {
			node[0] = float32(placed.A) * componentScale
			node[1] = float32(placed.B) * componentScale
			node[2] = float32(placed.C) * componentScale
			node[3] = 1
			for dir := game.Horizontal; dir < game.NumDirections; dir++ {
				if idx := game.ValueIndex(dir, placed.Component(dir)); idx >= 0 {
					node[4+3*int(dir)+idx] = 1
				}
			}
		}
		node[13] = float32(ctx.Tile.A) * componentScale
		node[14] = float32(ctx.Tile.B) * componentScale
		node[15] = float32(ctx.Tile.C) * componentScale
		node[16] = progress
		for dir := game.Horizontal; dir < game.NumDirections; dir++ {
			for i := 0; i < 3; i++ {
				node[17+3*int(dir)+i] = float32(counts[dir][i]) / 9.0
			}
		}
		for lineIdx, line := range game.Lines {
			if line.Contains(cell) {
				node[26+lineIdx] = 1
			}
		}
		node[41] = potentials[cell] / 45.0
		node[42] = float32(game.AlignmentScore(ctx.Board, cell)) / 27.0

		if enriched {
			for dir := game.Horizontal; dir < game.NumDirections; dir++ {
				node[43+int(dir)] = lineCompletionRatio(ctx.Board, cell, dir)
			}
			node[46] = float32(game.PlacementPotential(ctx.Board, ctx.Tile, cell)) / 135.0
		}
	}
	return data
}

// lineCompletionRatio returns the filled fraction of the cell's line in the
// given direction, or zero when the line holds conflicting values.
func lineCompletionRatio(b *game.Board, cell int, dir game.Direction) float32 {
	for _, line := range game.LinesThrough(cell) {
		if line.Dir != dir {
			continue
		}
		var value int8
		filled := 0
		for _, c := range line.Cells {
			placed := b.At(c)
			if placed.IsEmpty() {
				continue
			}
			v := placed.Component(dir)
			if value == 0 {
				value = v
			} else if v != value {
				return 0
			}
			filled++
		}
		return float32(filled) / float32(line.Length())
	}
	return 0
}

// PotentialScores distributes, for each line with at least one placed tile,
// the line's average placed value times its length over the line's empty
// cells.
func PotentialScores(b *game.Board) [game.NumCells]float32 {
	var scores [game.NumCells]float32
	for _, line := range game.Lines {
		var filled []float32
		var empty []int
		for _, cell := range line.Cells {
			placed := b.At(cell)
			if placed.IsEmpty() {
				empty = append(empty, cell)
			} else {
				filled = append(filled, float32(placed.Component(line.Dir)))
			}
		}
		if len(filled) == 0 || len(empty) == 0 {
			continue
		}
		sum := float32(0)
		for _, v := range filled {
			sum += v
		}
		avg := sum / float32(len(filled))
		potential := avg * float32(line.Length())
		for _, cell := range empty {
			scores[cell] += potential / float32(len(empty))
		}
	}
	return scores
}

// LineFeatures returns, per line, a potential in [0, 1]: zero for blocked
// lines, 0.5 for empty ones, and otherwise a blend of fill ratio, line value
// and whether the in-hand tile matches the line.
func LineFeatures(b *game.Board, t game.Tile) [len(game.Lines)]float32 {
	var results [len(game.Lines)]float32
	for lineIdx, line := range game.Lines {
		tileValue := t.Component(line.Dir)

		var lineValue int8
		filled, blocked := 0, false
		for _, cell := range line.Cells {
			placed := b.At(cell)
			if placed.IsEmpty() {
				continue
			}
			v := placed.Component(line.Dir)
			if lineValue == 0 {
				lineValue = v
			} else if v != lineValue {
				blocked = true
				break
			}
			filled++
		}

		switch {
		case blocked:
			results[lineIdx] = 0
		case filled == 0:
			results[lineIdx] = 0.5
		default:
			fillRatio := float32(filled) / float32(line.Length())
			valueWeight := float32(lineValue) / 9.0
			matchBonus := float32(0)
			if tileValue == lineValue {
				matchBonus = 0.3
			}
			potential := 0.3 + 0.4*fillRatio*valueWeight + matchBonus
			if potential > 1 {
				potential = 1
			}
			results[lineIdx] = potential
		}
	}
	return results
}

// lineFeatureByCell folds LineFeatures onto cells: each cell takes the max
// potential over its lines.
func lineFeatureByCell(b *game.Board, t game.Tile) [game.NumCells]float32 {
	var byCell [game.NumCells]float32
	feats := LineFeatures(b, t)
	for lineIdx, line := range game.Lines {
		for _, cell := range line.Cells {
			if feats[lineIdx] > byCell[cell] {
				byCell[cell] = feats[lineIdx]
			}
		}
	}
	return byCell
}
