// Package game models the Take It Easy board: tiles, the 19-cell hexagonal
// plateau, the 27-tile deck, the 15 scoring lines and game playouts.
//
// All operations on Board and Deck are pure: mutating operations return a new
// value and leave the receiver untouched. The SharedBoard/SharedDeck wrappers
// add copy-on-write views over these values; the search packages work on
// plain Board and Deck values.
package game

import (
	"fmt"

	"github.com/pkg/errors"
)

// Direction identifies one of the three stripe orientations of a tile, each
// tied to one component of the tile triple.
type Direction uint8

const (
	// Horizontal lines score the first component (values 1, 5, 9).
	Horizontal Direction = iota
	// DiagNE lines score the second component (values 2, 6, 7).
	DiagNE
	// DiagNW lines score the third component (values 3, 4, 8).
	DiagNW

	NumDirections
)

//go:generate go tool enumer -type=Direction -values -text -json tile.go

// directionStripeValues lists, per direction, the three stripe values a tile may
// carry in that direction. Fixed by the game rules.
var directionStripeValues = [NumDirections][3]int8{
	Horizontal: {1, 5, 9},
	DiagNE:     {2, 6, 7},
	DiagNW:     {3, 4, 8},
}

// Tile is a playing piece with one stripe value per direction.
// The zero value is the empty sentinel: it marks an empty board cell and a
// drawn (consumed) deck slot.
type Tile struct {
	A, B, C int8
}

// EmptyTile is the (0,0,0) sentinel.
var EmptyTile = Tile{}

// IsEmpty reports whether t is the sentinel tile.
func (t Tile) IsEmpty() bool {
	return t == EmptyTile
}

// Component returns the stripe value of t in the given direction.
func (t Tile) Component(d Direction) int8 {
	switch d {
	case Horizontal:
		return t.A
	case DiagNE:
		return t.B
	default:
		return t.C
	}
}

// Code returns the three-digit text encoding of t, e.g. "963" for (9,6,3).
// The sentinel encodes as "000".
func (t Tile) Code() string {
	return fmt.Sprintf("%d%d%d", t.A, t.B, t.C)
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	return t.Code()
}

// ValueIndex returns the index (0..2) of value within the direction's legal
// values, or -1 if the value does not belong to the direction.
func ValueIndex(d Direction, value int8) int {
	for i, v := range directionStripeValues[d] {
		if v == value {
			return i
		}
	}
	return -1
}

// ParseTile decodes a three-digit tile code. "000" yields the sentinel.
func ParseTile(code string) (Tile, error) {
	if len(code) != 3 {
		return EmptyTile, errors.Errorf("tile code %q must have exactly 3 digits", code)
	}
	digits := [3]int8{}
	for i := 0; i < 3; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return EmptyTile, errors.Errorf("tile code %q contains a non-digit", code)
		}
		digits[i] = int8(c - '0')
	}
	t := Tile{A: digits[0], B: digits[1], C: digits[2]}
	if t.IsEmpty() {
		return t, nil
	}
	if ValueIndex(Horizontal, t.A) < 0 || ValueIndex(DiagNE, t.B) < 0 || ValueIndex(DiagNW, t.C) < 0 {
		return EmptyTile, errors.Errorf("tile code %q is not a legal tile", code)
	}
	return t, nil
}
