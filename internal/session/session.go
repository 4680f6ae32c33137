// Package session implements the multi-player turn engine: a table of game
// sessions, the lockstep turn protocol, asynchronous AI move dispatch and the
// operations exposed over RPC.
package session

import (
	"sync"
	"time"

	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/generics"
)

// PlayerType distinguishes how a player's moves are produced.
type PlayerType int

const (
	// Human players move via MakeMove calls.
	Human PlayerType = iota
	// MCTS players are driven by the search engine.
	MCTS
	// Hybrid players are MCTS players with Q-net action pruning.
	Hybrid
)

//go:generate go tool enumer -type=PlayerType -values -text -json session.go

// SessionState is the lifecycle phase of a session.
type SessionState int

const (
	// Waiting for players to join and mark themselves ready.
	Waiting SessionState = iota
	// InProgress: boards exist, tiles are drawn, moves are accepted.
	InProgress
	// Finished: all 19 turns are played.
	Finished
	// Cancelled by explicit finalization or idle expiry.
	Cancelled
)

//go:generate go tool enumer -type=SessionState -values -text -json session.go

// TotalTurns of a standard game: one per board cell.
const TotalTurns = game.NumCells

// AIPlayerID is the fixed id of the built-in AI opponent.
const AIPlayerID = "mcts_ai"

// Player is one participant of a session.
type Player struct {
	ID          string
	Name        string
	Score       int
	IsReady     bool
	IsConnected bool
	Type        PlayerType
}

// IsAI reports whether the player's moves come from the search engine.
func (p *Player) IsAI() bool {
	return p.Type == MCTS || p.Type == Hybrid
}

// Session is one game container. All fields behind mu; the manager exposes
// operations that take the lock, and reads work on snapshots.
type Session struct {
	mu sync.Mutex

	id       string
	joinCode string

	maxPlayers int
	gameMode   string

	players map[string]*Player
	state   SessionState

	// Game state, valid once InProgress.
	deck        *game.Deck
	boards      map[string]*game.Board
	currentTile game.Tile
	tileDrawn   bool
	turnNumber  int // 1-based once the game starts
	waiting     generics.Set[string]

	// moves records the full history for the external recorder.
	moves []MoveRecord

	// aiDispatched is the last turn for which AI moves were scheduled,
	// so each turn dispatches exactly once.
	aiDispatched int

	createdAt  time.Time
	lastActive time.Time

	// seed of the session's RNG; background AI tasks derive their own RNGs
	// from it so searches stay reproducible per session.
	seed uint64
}

// MoveRecord is one placement, kept for the recorder.
type MoveRecord struct {
	Turn       int
	PlayerID   string
	PlayerType PlayerType
	Board      string // board encoding before the placement
	Tile       game.Tile
	Position   int
}

// Snapshot is a read-only copy of the session visible state.
type Snapshot struct {
	ID         string
	JoinCode   string
	MaxPlayers int
	GameMode   string
	State      SessionState
	TurnNumber int

	Players []Player

	CurrentTile game.Tile
	TileDrawn   bool
	Waiting     []string

	Boards map[string]*game.Board
	Scores map[string]int
}

// snapshotLocked copies the visible state; callers hold s.mu.
func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		JoinCode:    s.joinCode,
		MaxPlayers:  s.maxPlayers,
		GameMode:    s.gameMode,
		State:       s.state,
		TurnNumber:  s.turnNumber,
		CurrentTile: s.currentTile,
		TileDrawn:   s.tileDrawn,
		Waiting:     generics.SortedKeysSlice(s.waiting),
		Boards:      make(map[string]*game.Board, len(s.boards)),
		Scores:      make(map[string]int, len(s.players)),
	}
	for _, id := range generics.SortedKeysSlice(s.players) {
		p := s.players[id]
		snap.Players = append(snap.Players, *p)
		snap.Scores[id] = p.Score
	}
	for id, b := range s.boards {
		snap.Boards[id] = b // boards are immutable values, safe to share
	}
	return snap
}

// touchLocked refreshes the idle-expiry clock; callers hold s.mu.
func (s *Session) touchLocked() {
	s.lastActive = time.Now()
}

// allPresentReadyLocked reports whether the game can start: at least one
// player, and every present player ready (AI players are always ready).
func (s *Session) allPresentReadyLocked() bool {
	if len(s.players) == 0 {
		return false
	}
	for _, p := range s.players {
		if p.IsAI() {
			continue
		}
		if !p.IsReady {
			return false
		}
	}
	return true
}

// resetWaitingLocked rebuilds the waiting set to every player for the
// current turn.
func (s *Session) resetWaitingLocked() {
	s.waiting = generics.MakeSet[string](len(s.players))
	for id := range s.players {
		s.waiting.Insert(id)
	}
}
