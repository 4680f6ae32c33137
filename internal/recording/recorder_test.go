package recording_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/recording"
	"github.com/specialjcg/take-it-easy/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGameWritesRows(t *testing.T) {
	dir := t.TempDir()
	r, err := recording.New(dir)
	require.NoError(t, err)

	moves := []session.MoveRecord{
		{
			Turn:       1,
			PlayerID:   "alice",
			PlayerType: session.Human,
			Board:      game.NewBoard().Encode(),
			Tile:       game.Tile{A: 9, B: 6, C: 3},
			Position:   8,
		},
		{
			Turn:       1,
			PlayerID:   session.AIPlayerID,
			PlayerType: session.MCTS,
			Board:      game.NewBoard().Encode(),
			Tile:       game.Tile{A: 9, B: 6, C: 3},
			Position:   9,
		},
	}
	scores := map[string]int{"alice": 120, session.AIPlayerID: 131}
	require.NoError(t, r.RecordGame("sess-1", "solo", moves, scores, false))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3, "header plus one row per move")
	assert.Equal(t, "session_id", rows[0][0])
	assert.Equal(t, []string{"sess-1", "1", "Human", "alice",
		game.NewBoard().Encode(), "963", "8", "120", "false"}, rows[1])
	assert.Equal(t, "MCTS", rows[2][2])
}

func TestRecordGameAppends(t *testing.T) {
	dir := t.TempDir()
	r, err := recording.New(dir)
	require.NoError(t, err)

	mv := []session.MoveRecord{{Turn: 1, PlayerID: "a", Board: game.NewBoard().Encode()}}
	require.NoError(t, r.RecordGame("s1", "multi", mv, map[string]int{"a": 1}, true))
	require.NoError(t, r.RecordGame("s2", "multi", mv, map[string]int{"a": 2}, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
