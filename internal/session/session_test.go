package session_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()
	m := session.NewManager(session.Config{
		NumSimulations: 5, // keep AI turns fast in tests
		Seed:           2025,
	})
	t.Cleanup(m.Close)
	return m
}

func moveData(position int) string {
	return fmt.Sprintf(`{"position": %d}`, position)
}

func TestCreateSession(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, playerID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Len(t, joinCode, 6)
	assert.NotEmpty(t, playerID)

	snap, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	assert.Equal(t, session.Waiting, snap.State)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Alice", snap.Players[0].Name)
	assert.True(t, snap.Players[0].IsReady, "the creator is ready by default")
}

func TestCreateSessionValidation(t *testing.T) {
	m := newTestManager(t)
	_, _, _, err := m.CreateSession("", 2, "multiplayer")
	assert.Error(t, err)
	_, _, _, err = m.CreateSession("Alice", 0, "multiplayer")
	assert.Error(t, err)
}

func TestSoloModeCreatesAIOpponent(t *testing.T) {
	m := newTestManager(t)
	sessionID, _, _, err := m.CreateSession("Alice", 2, "solo")
	require.NoError(t, err)

	snap, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	require.Len(t, snap.Players, 2)

	foundAI := false
	for _, p := range snap.Players {
		if p.ID == session.AIPlayerID {
			foundAI = true
			assert.Equal(t, session.MCTS, p.Type)
			assert.True(t, p.IsReady)
		}
	}
	assert.True(t, foundAI)
}

func TestJoinSession(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, _, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)

	joinedID, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	assert.Equal(t, sessionID, joinedID)
	assert.NotEmpty(t, bobID)

	snap, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Players, 2)
}

func TestJoinSessionErrors(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.JoinSession("NOSUCH", "Bob")
	assert.Equal(t, "SESSION_NOT_FOUND", session.ErrorCode(err))

	_, joinCode, _, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, _, err = m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, _, err = m.JoinSession(joinCode, "Charlie")
	assert.Equal(t, "SESSION_FULL", session.ErrorCode(err))
}

func TestSetReadyStartsGame(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, _, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)

	started, err := m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)
	assert.True(t, started, "the last ready call starts the game")

	snap, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	assert.Equal(t, session.InProgress, snap.State)
	assert.Equal(t, 1, snap.TurnNumber)
	assert.True(t, snap.TileDrawn, "the first tile is drawn on start")
	assert.Len(t, snap.Boards, 2)
	assert.Len(t, snap.Waiting, 2)
}

func TestMakeMoveBeforeStartFails(t *testing.T) {
	m := newTestManager(t)
	sessionID, _, playerID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)

	_, _, _, err = m.MakeMove(sessionID, playerID, moveData(0), 0)
	assert.Equal(t, "GAME_NOT_STARTED", session.ErrorCode(err))
}

func TestStartTurnIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, _, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	tile1, turn1, _, _, err := m.StartTurn(sessionID, "")
	require.NoError(t, err)
	tile2, turn2, _, _, err := m.StartTurn(sessionID, "")
	require.NoError(t, err)
	assert.Equal(t, tile1, tile2, "a drawn tile does not change within a turn")
	assert.Equal(t, turn1, turn2)
}

func TestStartTurnForcedTile(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	// Turn 1 is auto-drawn; play it out, then force turn 2's tile.
	firstTile, _, _, _, err := m.StartTurn(sessionID, "")
	require.NoError(t, err)
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(0), 0)
	require.NoError(t, err)
	_, _, _, err = m.MakeMove(sessionID, bobID, moveData(0), 0)
	require.NoError(t, err)

	forced := "963"
	if firstTile.Code() == forced {
		forced = "123"
	}
	tile, turnNumber, _, _, err := m.StartTurn(sessionID, forced)
	require.NoError(t, err)
	assert.Equal(t, 2, turnNumber)
	assert.Equal(t, forced, tile.Code())

	// Forcing a tile already out of the deck fails cleanly.
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(1), 0)
	require.NoError(t, err)
	_, _, _, err = m.MakeMove(sessionID, bobID, moveData(1), 0)
	require.NoError(t, err)
	_, _, _, _, err = m.StartTurn(sessionID, forced)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))
}

func TestMakeMoveValidations(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	// Unknown player.
	_, _, _, err = m.MakeMove(sessionID, "ghost", moveData(0), 0)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))

	// Malformed payload.
	_, _, _, err = m.MakeMove(sessionID, aliceID, "not json", 0)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))

	// Out-of-range position.
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(99), 0)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))

	// Double play within a turn.
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(3), 0)
	require.NoError(t, err)
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(4), 0)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))

	// No tile drawn yet on the next turn.
	_, _, _, err = m.MakeMove(sessionID, bobID, moveData(3), 0)
	require.NoError(t, err)
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(4), 0)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))

	// Occupied cell, next turn.
	_, _, _, _, err = m.StartTurn(sessionID, "")
	require.NoError(t, err)
	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(3), 0)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))
}

func TestIllegalMoveDoesNotMutateState(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	before, err := m.GetSessionState(sessionID)
	require.NoError(t, err)

	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(99), 0)
	require.Error(t, err)

	after, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	assert.Equal(t, before.Waiting, after.Waiting)
	assert.Equal(t, before.TurnNumber, after.TurnNumber)
	assert.Equal(t, before.Scores, after.Scores)
}

// TestFullTwoPlayerGame drives the complete 19-turn scenario: scores match
// the boards, turn counting is exact, and the session finishes.
func TestFullTwoPlayerGame(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)

	started, err := m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)
	require.True(t, started)

	var gameOver bool
	for turn := 1; turn <= session.TotalTurns; turn++ {
		_, turnNumber, waiting, _, err := m.StartTurn(sessionID, "")
		require.NoError(t, err)
		assert.Equal(t, turn, turnNumber)
		assert.Len(t, waiting, 2, "both players owe a move at turn start")

		aliceMoves, err := m.GetAvailableMoves(sessionID, aliceID)
		require.NoError(t, err)
		require.NotEmpty(t, aliceMoves)
		_, over, _, err := m.MakeMove(sessionID, aliceID, moveData(aliceMoves[0]), 0)
		require.NoError(t, err)
		assert.False(t, over, "the turn is not over until every player moved")

		bobMoves, err := m.GetAvailableMoves(sessionID, bobID)
		require.NoError(t, err)
		require.NotEmpty(t, bobMoves)
		_, gameOver, _, err = m.MakeMove(sessionID, bobID, moveData(bobMoves[len(bobMoves)-1]), 0)
		require.NoError(t, err)
	}
	assert.True(t, gameOver, "19 completed turns finish the game")

	snap, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	assert.Equal(t, session.Finished, snap.State)

	// Each player's reported score equals the score of their board, and
	// every board holds exactly 19 tiles.
	for _, p := range snap.Players {
		board := snap.Boards[p.ID]
		require.NotNil(t, board)
		assert.Equal(t, game.Score(board), p.Score, "player %s", p.Name)
		assert.Equal(t, session.TotalTurns, board.NumPlaced())
	}
}

func TestSinglePlayerGameWithAI(t *testing.T) {
	m := newTestManager(t)
	sessionID, _, aliceID, err := m.CreateSession("Alice", 2, "solo")
	require.NoError(t, err)

	started, err := m.SetReady(sessionID, aliceID, true)
	require.NoError(t, err)
	require.True(t, started)

	for turn := 1; turn <= session.TotalTurns; turn++ {
		_, turnNumber, _, _, err := m.StartTurn(sessionID, "")
		require.NoError(t, err)
		require.Equal(t, turn, turnNumber)

		moves, err := m.GetAvailableMoves(sessionID, aliceID)
		require.NoError(t, err)
		require.NotEmpty(t, moves)
		_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(moves[0]), 0)
		require.NoError(t, err)

		// The AI move lands on a background task; the turn only advances
		// (or the game finishes) once it committed.
		require.Eventually(t, func() bool {
			snap, err := m.GetSessionState(sessionID)
			if err != nil {
				return false
			}
			return snap.State == session.Finished || snap.TurnNumber == turn+1
		}, 10*time.Second, 5*time.Millisecond, "AI never completed turn %d", turn)
	}

	require.Eventually(t, func() bool {
		snap, err := m.GetSessionState(sessionID)
		return err == nil && snap.State == session.Finished
	}, 10*time.Second, 5*time.Millisecond)

	snap, err := m.GetSessionState(sessionID)
	require.NoError(t, err)
	aiBoard := snap.Boards[session.AIPlayerID]
	require.NotNil(t, aiBoard)
	assert.Equal(t, session.TotalTurns, aiBoard.NumPlaced(), "the AI placed every turn")
	assert.Equal(t, game.Score(aiBoard), snap.Scores[session.AIPlayerID])
}

func TestWaitingSetInvariant(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	// waiting_for_players is empty iff all players placed the current tile.
	snap, _ := m.GetSessionState(sessionID)
	assert.Len(t, snap.Waiting, 2)

	_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(0), 0)
	require.NoError(t, err)
	snap, _ = m.GetSessionState(sessionID)
	assert.Equal(t, []string{bobID}, snap.Waiting)

	_, _, _, err = m.MakeMove(sessionID, bobID, moveData(0), 0)
	require.NoError(t, err)
	snap, _ = m.GetSessionState(sessionID)
	// All players placed the tile: the turn advanced and the waiting set is
	// empty until the next tile is drawn.
	assert.Equal(t, 2, snap.TurnNumber)
	assert.Empty(t, snap.Waiting)
	assert.False(t, snap.TileDrawn)

	_, _, waiting, _, err := m.StartTurn(sessionID, "")
	require.NoError(t, err)
	assert.Len(t, waiting, 2)
}

func TestStateBlobRoundTrip(t *testing.T) {
	m := newTestManager(t)
	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	_, _, _, blob, err := m.StartTurn(sessionID, "")
	require.NoError(t, err)

	parsed, err := session.ParseStateBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.CurrentTurn)
	assert.Len(t, parsed.PlayerPlateaus, 2)
	assert.Len(t, parsed.WaitingForPlayers, 2)
	require.Contains(t, parsed.PlayerPlateaus, aliceID)
	assert.Len(t, parsed.PlayerPlateaus[aliceID].Tiles, game.NumCells)
	assert.Len(t, parsed.PlayerPlateaus[aliceID].AvailablePositions, game.NumCells)
	assert.NotEqual(t, "000", parsed.CurrentTile)

	// The blob is a plain JSON document.
	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &generic))
	assert.Contains(t, generic, "player_plateaus")
	assert.Contains(t, generic, "waiting_for_players")
}

func TestGetAiMove(t *testing.T) {
	m := newTestManager(t)

	boardState := make([]string, game.NumCells)
	for i := range boardState {
		boardState[i] = "000"
	}
	boardState[0] = "123"

	available := []int{1, 2, 3, 4}
	pos, err := m.GetAiMove("963", boardState, available, 1)
	require.NoError(t, err)
	assert.Contains(t, available, pos)

	_, err = m.GetAiMove("000", boardState, available, 1)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))

	_, err = m.GetAiMove("963", boardState[:5], available, 1)
	assert.Equal(t, "INVALID_MOVE", session.ErrorCode(err))
}

func TestCloseSession(t *testing.T) {
	m := newTestManager(t)
	sessionID, _, _, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)

	require.NoError(t, m.CloseSession(sessionID))
	_, err = m.GetSessionState(sessionID)
	assert.Equal(t, "SESSION_NOT_FOUND", session.ErrorCode(err))
}

type captureRecorder struct {
	done chan struct{}

	sessionID string
	moves     []session.MoveRecord
	scores    map[string]int
}

func (r *captureRecorder) RecordGame(sessionID, gameMode string, moves []session.MoveRecord, finalScores map[string]int, humanWon bool) error {
	r.sessionID = sessionID
	r.moves = moves
	r.scores = finalScores
	close(r.done)
	return nil
}

func TestRecorderReceivesFinishedGame(t *testing.T) {
	recorder := &captureRecorder{done: make(chan struct{})}
	m := session.NewManager(session.Config{
		NumSimulations: 5,
		Seed:           7,
		Recorder:       recorder,
	})
	t.Cleanup(m.Close)

	sessionID, joinCode, aliceID, err := m.CreateSession("Alice", 2, "multiplayer")
	require.NoError(t, err)
	_, bobID, err := m.JoinSession(joinCode, "Bob")
	require.NoError(t, err)
	_, err = m.SetReady(sessionID, bobID, true)
	require.NoError(t, err)

	for turn := 1; turn <= session.TotalTurns; turn++ {
		_, _, _, _, err := m.StartTurn(sessionID, "")
		require.NoError(t, err)
		aliceMoves, err := m.GetAvailableMoves(sessionID, aliceID)
		require.NoError(t, err)
		_, _, _, err = m.MakeMove(sessionID, aliceID, moveData(aliceMoves[0]), 0)
		require.NoError(t, err)
		bobMoves, err := m.GetAvailableMoves(sessionID, bobID)
		require.NoError(t, err)
		_, _, _, err = m.MakeMove(sessionID, bobID, moveData(bobMoves[0]), 0)
		require.NoError(t, err)
	}

	select {
	case <-recorder.done:
	case <-time.After(5 * time.Second):
		t.Fatal("recorder never received the finished game")
	}
	assert.Equal(t, sessionID, recorder.sessionID)
	assert.Len(t, recorder.moves, 2*session.TotalTurns)
	assert.Len(t, recorder.scores, 2)
}
