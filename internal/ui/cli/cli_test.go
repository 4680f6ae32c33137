package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/ui/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBoardShowsAllCells(t *testing.T) {
	var out bytes.Buffer
	ui := cli.New(strings.NewReader(""), &out, false)

	b := game.NewBoard()
	b, err := b.Place(9, game.Tile{A: 9, B: 6, C: 3})
	require.NoError(t, err)

	ui.PrintBoard(b)
	rendered := out.String()

	assert.Contains(t, rendered, "963", "the placed tile is shown")
	assert.Contains(t, rendered, "( 0)", "empty cells show their index")
	assert.Contains(t, rendered, "(18)")
	assert.NotContains(t, rendered, "( 9)", "occupied cells lose their index")
}

func TestPromptMoveRejectsIllegalInput(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("zzz\n99\n4\n")
	ui := cli.New(in, &out, false)

	cell, err := ui.PromptMove(game.NewBoard())
	require.NoError(t, err)
	assert.Equal(t, 4, cell)
	assert.Contains(t, out.String(), "not available")
}

func TestPromptMoveEOF(t *testing.T) {
	ui := cli.New(strings.NewReader(""), &bytes.Buffer{}, false)
	_, err := ui.PromptMove(game.NewBoard())
	assert.Error(t, err)
}
