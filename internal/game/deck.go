package game

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// DeckSize is the number of tiles of the full deck: one per combination of
// the three direction values (3 x 3 x 3).
const DeckSize = 27

// fullDeck enumerates the canonical 27 tiles in their fixed order.
var fullDeck = [DeckSize]Tile{
	{1, 2, 3}, {1, 6, 8}, {1, 7, 3}, {1, 6, 3}, {1, 2, 8}, {1, 2, 4}, {1, 7, 4}, {1, 6, 4}, {1, 7, 8},
	{5, 2, 3}, {5, 6, 8}, {5, 7, 3}, {5, 6, 3}, {5, 2, 8}, {5, 2, 4}, {5, 7, 4}, {5, 6, 4}, {5, 7, 8},
	{9, 2, 3}, {9, 6, 8}, {9, 7, 3}, {9, 6, 3}, {9, 2, 8}, {9, 2, 4}, {9, 7, 4}, {9, 6, 4}, {9, 7, 8},
}

// FullDeckTiles returns the canonical 27 tiles.
func FullDeckTiles() []Tile {
	tiles := make([]Tile, DeckSize)
	copy(tiles, fullDeck[:])
	return tiles
}

// Deck is the multiset of undrawn tiles, as a fixed-length sequence where
// drawn tiles are replaced by the sentinel. A tile appears at most once.
type Deck struct {
	slots [DeckSize]Tile
}

// NewDeck returns the full 27-tile deck.
func NewDeck() *Deck {
	d := &Deck{}
	d.slots = fullDeck
	return d
}

// Remaining returns the number of undrawn tiles.
func (d *Deck) Remaining() int {
	n := 0
	for _, t := range d.slots {
		if !t.IsEmpty() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether every tile has been drawn.
func (d *Deck) IsEmpty() bool {
	return d.Remaining() == 0
}

// Contains reports whether the deck still holds the given tile.
func (d *Deck) Contains(t Tile) bool {
	if t.IsEmpty() {
		return false
	}
	for _, s := range d.slots {
		if s == t {
			return true
		}
	}
	return false
}

// Tiles returns the undrawn tiles, in deck order.
func (d *Deck) Tiles() []Tile {
	tiles := make([]Tile, 0, DeckSize)
	for _, t := range d.slots {
		if !t.IsEmpty() {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// Remove returns a new deck where the given tile's slot has been replaced by
// the sentinel. Removing a tile not present is a no-op.
func (d *Deck) Remove(t Tile) *Deck {
	newDeck := *d
	if t.IsEmpty() {
		return &newDeck
	}
	for i, s := range newDeck.slots {
		if s == t {
			newDeck.slots[i] = EmptyTile
			break
		}
	}
	return &newDeck
}

// DrawRandom draws a tile uniformly among the undrawn tiles and returns it
// together with the deck without it. Fails when the deck is exhausted.
func (d *Deck) DrawRandom(rng *rand.Rand) (Tile, *Deck, error) {
	remaining := d.Tiles()
	if len(remaining) == 0 {
		return EmptyTile, nil, errors.New("deck is exhausted")
	}
	t := remaining[rng.IntN(len(remaining))]
	return t, d.Remove(t), nil
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() *Deck {
	newDeck := *d
	return &newDeck
}

// removeInPlace mutates the deck. Reserved for playout code that owns its copy.
func (d *Deck) removeInPlace(t Tile) {
	for i, s := range d.slots {
		if s == t {
			d.slots[i] = EmptyTile
			return
		}
	}
}

// ComponentCounts returns, per direction, how many undrawn tiles carry each of
// the direction's three values. Used by the bag-awareness feature channels.
func (d *Deck) ComponentCounts() [NumDirections][3]int {
	var counts [NumDirections][3]int
	for _, t := range d.slots {
		if t.IsEmpty() {
			continue
		}
		for dir := Horizontal; dir < NumDirections; dir++ {
			if idx := ValueIndex(dir, t.Component(dir)); idx >= 0 {
				counts[dir][idx]++
			}
		}
	}
	return counts
}
