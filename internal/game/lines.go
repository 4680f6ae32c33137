package game

// Line is one of the 15 scoring paths of the board. A line is completed when
// every one of its cells holds a tile and all of them agree on the component
// selected by Dir; it then scores that value times the line length.
type Line struct {
	Cells []int
	Dir   Direction
}

// Length of the line in cells.
func (l Line) Length() int { return len(l.Cells) }

// Contains reports whether the line passes through the given cell.
func (l Line) Contains(cell int) bool {
	for _, c := range l.Cells {
		if c == cell {
			return true
		}
	}
	return false
}

// Lines enumerates the 15 scoring lines: five per direction, lengths 3-4-5-4-3.
// The cell numbering follows the column-major layout of the board:
//
//	     0  1  2
//	   3  4  5  6
//	  7  8  9 10 11
//	   12 13 14 15
//	     16 17 18
var Lines = [15]Line{
	{Cells: []int{0, 1, 2}, Dir: Horizontal},
	{Cells: []int{3, 4, 5, 6}, Dir: Horizontal},
	{Cells: []int{7, 8, 9, 10, 11}, Dir: Horizontal},
	{Cells: []int{12, 13, 14, 15}, Dir: Horizontal},
	{Cells: []int{16, 17, 18}, Dir: Horizontal},

	{Cells: []int{0, 3, 7}, Dir: DiagNE},
	{Cells: []int{1, 4, 8, 12}, Dir: DiagNE},
	{Cells: []int{2, 5, 9, 13, 16}, Dir: DiagNE},
	{Cells: []int{6, 10, 14, 17}, Dir: DiagNE},
	{Cells: []int{11, 15, 18}, Dir: DiagNE},

	{Cells: []int{7, 12, 16}, Dir: DiagNW},
	{Cells: []int{3, 8, 13, 17}, Dir: DiagNW},
	{Cells: []int{0, 4, 9, 14, 18}, Dir: DiagNW},
	{Cells: []int{1, 5, 10, 15}, Dir: DiagNW},
	{Cells: []int{2, 6, 11}, Dir: DiagNW},
}

// LinesThrough returns the (at most three) lines passing through a cell.
func LinesThrough(cell int) []Line {
	lines := make([]Line, 0, 3)
	for _, l := range Lines {
		if l.Contains(cell) {
			lines = append(lines, l)
		}
	}
	return lines
}

// Neighbors maps each cell to the cells it is linked to in the board graph.
// The table covers only part of the six-way hex contact: the center cell 9
// lists four neighbors.
var Neighbors = [NumCells][]int{
	0:  {1, 3},
	1:  {0, 2, 4},
	2:  {1, 5, 6},
	3:  {0, 4, 7},
	4:  {1, 3, 5, 8},
	5:  {2, 4, 6, 9},
	6:  {2, 5, 10, 11},
	7:  {3, 8, 12},
	8:  {4, 7, 9, 13},
	9:  {5, 8, 10, 14},
	10: {6, 9, 11, 15},
	11: {6, 10},
	12: {7, 13, 16},
	13: {8, 12, 14, 17},
	14: {9, 13, 15, 18},
	15: {10, 14},
	16: {12, 17},
	17: {13, 16, 18},
	18: {14, 17},
}
