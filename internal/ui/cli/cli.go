// Package cli renders Take It Easy boards on the terminal and reads human
// moves.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/game"
)

// valueColors maps stripe values to ANSI colors, loosely following the
// physical tiles.
var valueColors = map[int8]lipgloss.Color{
	1: lipgloss.Color("8"),  // grey
	2: lipgloss.Color("13"), // pink
	3: lipgloss.Color("14"), // cyan
	4: lipgloss.Color("12"), // light blue
	5: lipgloss.Color("10"), // light green
	6: lipgloss.Color("1"),  // red
	7: lipgloss.Color("2"),  // green
	8: lipgloss.Color("3"),  // orange
	9: lipgloss.Color("11"), // yellow
}

var (
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cellStyle  = lipgloss.NewStyle().Bold(true)
)

// UI renders boards and prompts for input.
type UI struct {
	in  *bufio.Reader
	out io.Writer

	color bool
}

// New returns a UI reading from in and writing to out.
func New(in io.Reader, out io.Writer, color bool) *UI {
	return &UI{in: bufio.NewReader(in), out: out, color: color}
}

// renderValue shows one stripe value with its color.
func (ui *UI) renderValue(v int8) string {
	s := strconv.Itoa(int(v))
	if !ui.color {
		return s
	}
	return cellStyle.Foreground(valueColors[v]).Render(s)
}

// renderCell shows one cell as its three stripe values (" 963") or its index
// when empty.
func (ui *UI) renderCell(b *game.Board, cell int) string {
	t := b.At(cell)
	if t.IsEmpty() {
		s := fmt.Sprintf("(%2d)", cell)
		if ui.color {
			s = emptyStyle.Render(s)
		}
		return s
	}
	return fmt.Sprintf(" %s%s%s", ui.renderValue(t.A), ui.renderValue(t.B), ui.renderValue(t.C))
}

// columns of the hexagonal board, left to right.
var columns = [5][]int{
	{0, 1, 2},
	{3, 4, 5, 6},
	{7, 8, 9, 10, 11},
	{12, 13, 14, 15},
	{16, 17, 18},
}

// PrintBoard draws the board with the five columns laid out as a hexagon.
func (ui *UI) PrintBoard(b *game.Board) {
	// Each column is offset vertically by half its height difference from
	// the center column.
	const rows = 9 // 5 cells, double-spaced
	grid := make([][5]string, rows)
	for colIdx, column := range columns {
		offset := 5 - len(column) // 2, 1, 0, 1, 2
		for i, cell := range column {
			grid[offset+2*i][colIdx] = ui.renderCell(b, cell)
		}
	}
	for _, row := range grid {
		line := ""
		for _, cellText := range row {
			if cellText == "" {
				cellText = strings.Repeat(" ", 4)
			}
			line += cellText + "  "
		}
		if strings.TrimSpace(stripAnsi(line)) == "" {
			continue
		}
		fmt.Fprintln(ui.out, " "+line)
	}
}

// stripAnsi removes color escapes for blank-line detection.
func stripAnsi(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// PrintTile shows the announced tile.
func (ui *UI) PrintTile(t game.Tile) {
	fmt.Fprintf(ui.out, "Tile drawn: %s%s%s\n",
		ui.renderValue(t.A), ui.renderValue(t.B), ui.renderValue(t.C))
}

// PromptMove reads a cell index until the player enters a legal one.
func (ui *UI) PromptMove(b *game.Board) (int, error) {
	legal := b.LegalMoves()
	for {
		fmt.Fprintf(ui.out, "Your move %v: ", legal)
		line, err := ui.in.ReadString('\n')
		if err != nil {
			return 0, errors.Wrap(err, "failed to read move")
		}
		cell, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(ui.out, "Enter a cell number.")
			continue
		}
		for _, l := range legal {
			if l == cell {
				return cell, nil
			}
		}
		fmt.Fprintf(ui.out, "Cell %d is not available.\n", cell)
	}
}

// PrintScores shows the final standing.
func (ui *UI) PrintScores(scores map[string]int) {
	fmt.Fprintln(ui.out)
	for name, score := range scores {
		fmt.Fprintf(ui.out, "%12s: %d points\n", name, score)
	}
}
