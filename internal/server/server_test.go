package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialjcg/take-it-easy/internal/server"
	"github.com/specialjcg/take-it-easy/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := session.NewManager(session.Config{NumSimulations: 5, Seed: 11})
	t.Cleanup(m.Close)
	ts := httptest.NewServer(server.New(m).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, req, resp any) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	httpResp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(resp))
}

func TestCreateJoinAndPlayOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	var created struct {
		SessionID   string `json:"session_id"`
		PlayerID    string `json:"player_id"`
		SessionCode string `json:"session_code"`
	}
	post(t, ts, "/v1/create_session", map[string]any{
		"player_name": "Alice", "max_players": 2, "game_mode": "multiplayer",
	}, &created)
	require.NotEmpty(t, created.SessionID)
	require.NotEmpty(t, created.SessionCode)

	var joined struct {
		SessionID string `json:"session_id"`
		PlayerID  string `json:"player_id"`
	}
	post(t, ts, "/v1/join_session", map[string]any{
		"session_code": created.SessionCode, "player_name": "Bob",
	}, &joined)
	require.Equal(t, created.SessionID, joined.SessionID)

	var ready struct {
		Success     bool `json:"success"`
		GameStarted bool `json:"game_started"`
	}
	post(t, ts, "/v1/set_ready", map[string]any{
		"session_id": created.SessionID, "player_id": joined.PlayerID, "ready": true,
	}, &ready)
	assert.True(t, ready.Success)
	assert.True(t, ready.GameStarted)

	var turn struct {
		Success           bool     `json:"success"`
		TurnNumber        int      `json:"turn_number"`
		AnnouncedTile     string   `json:"announced_tile"`
		WaitingForPlayers []string `json:"waiting_for_players"`
		GameState         string   `json:"game_state"`
	}
	post(t, ts, "/v1/start_turn", map[string]any{
		"session_id": created.SessionID, "forced_tile": "",
	}, &turn)
	assert.True(t, turn.Success)
	assert.Equal(t, 1, turn.TurnNumber)
	assert.Len(t, turn.AnnouncedTile, 3)
	assert.Len(t, turn.WaitingForPlayers, 2)
	assert.NotEmpty(t, turn.GameState)

	var moved struct {
		PointsEarned int       `json:"points_earned"`
		IsGameOver   bool      `json:"is_game_over"`
		NewGameState string    `json:"new_game_state"`
		Error        *struct{} `json:"error"`
	}
	post(t, ts, "/v1/make_move", map[string]any{
		"session_id": created.SessionID,
		"player_id":  created.PlayerID,
		"move_data":  `{"position": 8}`,
		"timestamp":  0,
	}, &moved)
	assert.Nil(t, moved.Error)
	assert.False(t, moved.IsGameOver)

	var moves struct {
		AvailableMoves []int `json:"available_moves"`
	}
	post(t, ts, "/v1/available_moves", map[string]any{
		"session_id": created.SessionID, "player_id": created.PlayerID,
	}, &moves)
	assert.Len(t, moves.AvailableMoves, 18)
	assert.NotContains(t, moves.AvailableMoves, 8)
}

func TestErrorCodesOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	var resp struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	post(t, ts, "/v1/join_session", map[string]any{
		"session_code": "NOSUCH", "player_name": "Bob",
	}, &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SESSION_NOT_FOUND", resp.Error.Code)

	var stateResp struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	var created struct {
		SessionID string `json:"session_id"`
	}
	post(t, ts, "/v1/create_session", map[string]any{
		"player_name": "Alice", "max_players": 2, "game_mode": "multiplayer",
	}, &created)
	post(t, ts, "/v1/game_state", map[string]any{"session_id": created.SessionID}, &stateResp)
	require.NotNil(t, stateResp.Error)
	assert.Equal(t, "GAME_NOT_STARTED", stateResp.Error.Code)
}

func TestAiMoveOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	board := make([]string, 19)
	for i := range board {
		board[i] = "000"
	}
	var resp struct {
		Success             bool `json:"success"`
		RecommendedPosition int  `json:"recommended_position"`
	}
	post(t, ts, "/v1/ai_move", map[string]any{
		"tile_code":           "963",
		"board_state":         board,
		"available_positions": []int{0, 1, 2, 3},
		"turn_number":         1,
	}, &resp)
	assert.True(t, resp.Success)
	assert.Contains(t, []int{0, 1, 2, 3}, resp.RecommendedPosition)
}
