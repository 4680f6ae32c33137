package game

import (
	"strings"

	"github.com/pkg/errors"
)

// NumCells is the number of cells of the hexagonal board, laid out in five
// columns of lengths 3-4-5-4-3.
const NumCells = 19

// Board is the playing field. Cells hold the sentinel tile while empty.
type Board struct {
	cells [NumCells]Tile
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// At returns the tile at the given cell.
func (b *Board) At(cell int) Tile {
	return b.cells[cell]
}

// IsEmptyCell reports whether the given cell holds no tile.
func (b *Board) IsEmptyCell(cell int) bool {
	return b.cells[cell].IsEmpty()
}

// LegalMoves returns the indices of all empty cells, in ascending order.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, NumCells)
	for i, t := range b.cells {
		if t.IsEmpty() {
			moves = append(moves, i)
		}
	}
	return moves
}

// NumPlaced returns the number of occupied cells.
func (b *Board) NumPlaced() int {
	n := 0
	for _, t := range b.cells {
		if !t.IsEmpty() {
			n++
		}
	}
	return n
}

// IsFull reports whether every cell is occupied.
func (b *Board) IsFull() bool {
	for _, t := range b.cells {
		if t.IsEmpty() {
			return false
		}
	}
	return true
}

// Place returns a new board with the tile placed at the given cell.
// It fails if the cell is out of range, already occupied, or the tile is the
// sentinel.
func (b *Board) Place(cell int, t Tile) (*Board, error) {
	if cell < 0 || cell >= NumCells {
		return nil, errors.Errorf("cell %d out of range [0, %d)", cell, NumCells)
	}
	if !b.cells[cell].IsEmpty() {
		return nil, errors.Errorf("cell %d already holds tile %s", cell, b.cells[cell])
	}
	if t.IsEmpty() {
		return nil, errors.New("cannot place the empty tile")
	}
	newBoard := *b
	newBoard.cells[cell] = t
	return &newBoard, nil
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	newBoard := *b
	return &newBoard
}

// setTile mutates the board in place. Reserved for playout code that owns its
// copy; public callers go through Place.
func (b *Board) setTile(cell int, t Tile) {
	b.cells[cell] = t
}

// Tiles returns a copy of all cells in order.
func (b *Board) Tiles() []Tile {
	tiles := make([]Tile, NumCells)
	copy(tiles, b.cells[:])
	return tiles
}

// Encode returns the board as a string of 19 tile codes separated by dashes,
// e.g. "123-000-...". Used by the recorder and the RPC state blob.
func (b *Board) Encode() string {
	codes := make([]string, NumCells)
	for i, t := range b.cells {
		codes[i] = t.Code()
	}
	return strings.Join(codes, "-")
}

// DecodeBoard parses the representation produced by Encode.
func DecodeBoard(encoded string) (*Board, error) {
	codes := strings.Split(encoded, "-")
	if len(codes) != NumCells {
		return nil, errors.Errorf("board encoding has %d cells, want %d", len(codes), NumCells)
	}
	b := NewBoard()
	for i, code := range codes {
		t, err := ParseTile(code)
		if err != nil {
			return nil, errors.WithMessagef(err, "cell %d", i)
		}
		b.cells[i] = t
	}
	return b, nil
}
