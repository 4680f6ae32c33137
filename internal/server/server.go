// Package server exposes the session engine operations over HTTP/JSON, plus
// a websocket endpoint streaming state snapshots to watching clients. The
// message schema follows the game RPC contract; the wire transport itself is
// an implementation detail.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/generics"
	"github.com/specialjcg/take-it-easy/internal/session"
	"k8s.io/klog/v2"
)

// Server serves the game RPC surface for one session manager.
type Server struct {
	manager  *session.Manager
	upgrader websocket.Upgrader
}

// New returns a server over the given manager.
func New(manager *session.Manager) *Server {
	return &Server{
		manager: manager,
		upgrader: websocket.Upgrader{
			// The web UI is served from another origin during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/create_session", s.handleCreateSession)
	mux.HandleFunc("POST /v1/join_session", s.handleJoinSession)
	mux.HandleFunc("POST /v1/session_state", s.handleSessionState)
	mux.HandleFunc("POST /v1/set_ready", s.handleSetReady)
	mux.HandleFunc("POST /v1/start_turn", s.handleStartTurn)
	mux.HandleFunc("POST /v1/make_move", s.handleMakeMove)
	mux.HandleFunc("POST /v1/available_moves", s.handleAvailableMoves)
	mux.HandleFunc("POST /v1/ai_move", s.handleAiMove)
	mux.HandleFunc("POST /v1/game_state", s.handleGameState)
	mux.HandleFunc("GET /v1/watch", s.handleWatch)
	return mux
}

// ListenAndServe blocks serving the RPC surface until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	klog.Infof("Game RPC server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// rpcError is the error leg of every response envelope.
type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newRPCError(err error) *rpcError {
	code := session.ErrorCode(err)
	msg := err.Error()
	if code == "INTERNAL" {
		// Opaque message for unexpected failures.
		msg = "internal error"
	}
	return &rpcError{Code: code, Message: msg}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		klog.Errorf("Failed to encode response: %v", err)
	}
}

// decode reads the JSON request body into req, answering false (and the
// error response) on malformed input.
func decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, map[string]any{
			"error": &rpcError{Code: "INVALID_STATE", Message: "malformed request: " + err.Error()},
		})
		return false
	}
	return true
}

type createSessionRequest struct {
	PlayerName string `json:"player_name"`
	MaxPlayers int    `json:"max_players"`
	GameMode   string `json:"game_mode"`
}

type createSessionResponse struct {
	SessionID   string    `json:"session_id,omitempty"`
	PlayerID    string    `json:"player_id,omitempty"`
	SessionCode string    `json:"session_code,omitempty"`
	Error       *rpcError `json:"error,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}
	sessionID, code, playerID, err := s.manager.CreateSession(req.PlayerName, req.MaxPlayers, req.GameMode)
	if err != nil {
		writeJSON(w, createSessionResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, createSessionResponse{
		SessionID:   sessionID,
		PlayerID:    playerID,
		SessionCode: code,
	})
}

type joinSessionRequest struct {
	SessionCode string `json:"session_code"`
	PlayerName  string `json:"player_name"`
}

type joinSessionResponse struct {
	SessionID string    `json:"session_id,omitempty"`
	PlayerID  string    `json:"player_id,omitempty"`
	Error     *rpcError `json:"error,omitempty"`
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if !decode(w, r, &req) {
		return
	}
	sessionID, playerID, err := s.manager.JoinSession(req.SessionCode, req.PlayerName)
	if err != nil {
		writeJSON(w, joinSessionResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, joinSessionResponse{SessionID: sessionID, PlayerID: playerID})
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type playerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	IsReady     bool   `json:"is_ready"`
	IsConnected bool   `json:"is_connected"`
	PlayerType  string `json:"player_type"`
}

type sessionStateResponse struct {
	GameState *sessionGameState `json:"game_state,omitempty"`
	Error     *rpcError         `json:"error,omitempty"`
}

type sessionGameState struct {
	State      string       `json:"state"`
	Players    []playerInfo `json:"players"`
	TurnNumber int          `json:"turn_number"`
	GameMode   string       `json:"game_mode"`
}

func playerInfos(snap session.Snapshot) []playerInfo {
	return generics.SliceMap(snap.Players, func(p session.Player) playerInfo {
		return playerInfo{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			IsReady:     p.IsReady,
			IsConnected: p.IsConnected,
			PlayerType:  p.Type.String(),
		}
	})
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.manager.GetSessionState(req.SessionID)
	if err != nil {
		writeJSON(w, sessionStateResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, sessionStateResponse{GameState: &sessionGameState{
		State:      snap.State.String(),
		Players:    playerInfos(snap),
		TurnNumber: snap.TurnNumber,
		GameMode:   snap.GameMode,
	}})
}

type setReadyRequest struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Ready     bool   `json:"ready"`
}

type setReadyResponse struct {
	Success     bool      `json:"success"`
	GameStarted bool      `json:"game_started"`
	Error       *rpcError `json:"error,omitempty"`
}

func (s *Server) handleSetReady(w http.ResponseWriter, r *http.Request) {
	var req setReadyRequest
	if !decode(w, r, &req) {
		return
	}
	started, err := s.manager.SetReady(req.SessionID, req.PlayerID, req.Ready)
	if err != nil {
		writeJSON(w, setReadyResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, setReadyResponse{Success: true, GameStarted: started})
}

type startTurnRequest struct {
	SessionID  string `json:"session_id"`
	ForcedTile string `json:"forced_tile"`
}

type startTurnResponse struct {
	Success           bool      `json:"success"`
	TurnNumber        int       `json:"turn_number,omitempty"`
	AnnouncedTile     string    `json:"announced_tile,omitempty"`
	WaitingForPlayers []string  `json:"waiting_for_players,omitempty"`
	GameState         string    `json:"game_state,omitempty"`
	Error             *rpcError `json:"error,omitempty"`
}

func (s *Server) handleStartTurn(w http.ResponseWriter, r *http.Request) {
	var req startTurnRequest
	if !decode(w, r, &req) {
		return
	}
	tile, turnNumber, waiting, blob, err := s.manager.StartTurn(req.SessionID, req.ForcedTile)
	if err != nil {
		writeJSON(w, startTurnResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, startTurnResponse{
		Success:           true,
		TurnNumber:        turnNumber,
		AnnouncedTile:     tile.Code(),
		WaitingForPlayers: waiting,
		GameState:         blob,
	})
}

type makeMoveRequest struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	MoveData  string `json:"move_data"`
	Timestamp int64  `json:"timestamp"`
}

type makeMoveResponse struct {
	PointsEarned int       `json:"points_earned"`
	IsGameOver   bool      `json:"is_game_over"`
	NewGameState string    `json:"new_game_state,omitempty"`
	Error        *rpcError `json:"error,omitempty"`
}

func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req makeMoveRequest
	if !decode(w, r, &req) {
		return
	}
	points, gameOver, blob, err := s.manager.MakeMove(req.SessionID, req.PlayerID, req.MoveData, req.Timestamp)
	if err != nil {
		writeJSON(w, makeMoveResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, makeMoveResponse{
		PointsEarned: points,
		IsGameOver:   gameOver,
		NewGameState: blob,
	})
}

type availableMovesRequest struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

type availableMovesResponse struct {
	AvailableMoves []int     `json:"available_moves"`
	Error          *rpcError `json:"error,omitempty"`
}

func (s *Server) handleAvailableMoves(w http.ResponseWriter, r *http.Request) {
	var req availableMovesRequest
	if !decode(w, r, &req) {
		return
	}
	moves, err := s.manager.GetAvailableMoves(req.SessionID, req.PlayerID)
	if err != nil {
		writeJSON(w, availableMovesResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, availableMovesResponse{AvailableMoves: moves})
}

type aiMoveRequest struct {
	TileCode           string   `json:"tile_code"`
	BoardState         []string `json:"board_state"`
	AvailablePositions []int    `json:"available_positions"`
	TurnNumber         int      `json:"turn_number"`
}

type aiMoveResponse struct {
	Success             bool      `json:"success"`
	RecommendedPosition int       `json:"recommended_position"`
	Error               *rpcError `json:"error,omitempty"`
}

func (s *Server) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req aiMoveRequest
	if !decode(w, r, &req) {
		return
	}
	pos, err := s.manager.GetAiMove(req.TileCode, req.BoardState, req.AvailablePositions, req.TurnNumber)
	if err != nil {
		writeJSON(w, aiMoveResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, aiMoveResponse{Success: true, RecommendedPosition: pos})
}

type gameStateResponse struct {
	Success        bool      `json:"success"`
	CurrentTurn    int       `json:"current_turn,omitempty"`
	CurrentTile    string    `json:"current_tile,omitempty"`
	IsGameFinished bool      `json:"is_game_finished"`
	FinalScores    string    `json:"final_scores,omitempty"`
	GameState      string    `json:"game_state,omitempty"`
	Error          *rpcError `json:"error,omitempty"`
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.manager.GetSessionState(req.SessionID)
	if err != nil {
		writeJSON(w, gameStateResponse{Error: newRPCError(err)})
		return
	}
	if snap.State == session.Waiting {
		writeJSON(w, gameStateResponse{Error: newRPCError(session.ErrGameNotStarted)})
		return
	}

	blob, err := session.BuildStateBlob(snap)
	if err != nil {
		writeJSON(w, gameStateResponse{Error: newRPCError(err)})
		return
	}
	tile := game.EmptyTile.Code()
	if snap.TileDrawn {
		tile = snap.CurrentTile.Code()
	}
	scores, err := json.Marshal(snap.Scores)
	if err != nil {
		writeJSON(w, gameStateResponse{Error: newRPCError(err)})
		return
	}
	writeJSON(w, gameStateResponse{
		Success:        true,
		CurrentTurn:    snap.TurnNumber,
		CurrentTile:    tile,
		IsGameFinished: snap.State == session.Finished,
		FinalScores:    string(scores),
		GameState:      blob,
	})
}

// watchInterval is how often the watch endpoint polls a session for changes.
const watchInterval = 250 * time.Millisecond

// handleWatch upgrades to a websocket and pushes the session's state blob
// whenever it changes, so watching clients need not poll over HTTP.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		klog.Warningf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var lastBlob string
	for range ticker.C {
		snap, err := s.manager.GetSessionState(sessionID)
		if err != nil {
			_ = conn.WriteJSON(map[string]any{"error": newRPCError(err)})
			return
		}
		blob, err := session.BuildStateBlob(snap)
		if err != nil {
			klog.Errorf("Failed to build state blob for %s: %v", sessionID, err)
			return
		}
		if blob == lastBlob {
			continue
		}
		lastBlob = blob
		if err := conn.WriteMessage(websocket.TextMessage, []byte(blob)); err != nil {
			return
		}
		if snap.State == session.Finished || snap.State == session.Cancelled {
			return
		}
	}
}
