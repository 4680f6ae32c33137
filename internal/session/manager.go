package session

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/ai"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/mcts"
	"k8s.io/klog/v2"
)

// Recorder receives finished games; failures are logged and never affect
// game correctness.
type Recorder interface {
	RecordGame(sessionID, gameMode string, moves []MoveRecord, finalScores map[string]int, humanWon bool) error
}

// Config wires the manager to the process-wide networks and tunables.
type Config struct {
	// Networks, shared read-only across sessions. Nil scorers fall back to
	// the uniform/neutral implementations.
	Policy ai.PolicyScorer
	Value  ai.ValueScorer
	QNet   ai.QScorer

	// Arch selects the value-normalization convention of the search.
	Arch features.Architecture

	// Hyper configures the search; nil means defaults.
	Hyper *mcts.Hyperparameters

	// NumSimulations is the base search budget per AI move.
	NumSimulations int

	// SinglePlayer auto-creates an AI opponent in every new session.
	SinglePlayer bool

	// Seed makes tile draws and AI searches reproducible. Zero picks a
	// time-based seed.
	Seed uint64

	// IdleExpiry reaps sessions with no activity; zero means 30 minutes.
	IdleExpiry time.Duration

	// Recorder, optional, receives finished games.
	Recorder Recorder
}

// Manager owns the session table. The table lock only guards the maps;
// per-session locks allow independent progress.
type Manager struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*Session
	byCode   map[string]*Session
	rng      *rand.Rand // join codes and session seeds; guarded by mu

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager returns a manager ready to serve sessions and starts the idle
// janitor.
func NewManager(cfg Config) *Manager {
	if cfg.Policy == nil {
		cfg.Policy = ai.UniformPolicy{}
	}
	if cfg.Value == nil {
		cfg.Value = ai.NeutralValue{}
	}
	if cfg.Hyper == nil {
		cfg.Hyper = mcts.DefaultHyperparameters()
	}
	if cfg.NumSimulations <= 0 {
		cfg.NumSimulations = 150
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	if cfg.IdleExpiry <= 0 {
		cfg.IdleExpiry = 30 * time.Minute
	}
	m := &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		byCode:   make(map[string]*Session),
		rng:      rand.New(rand.NewPCG(cfg.Seed, 0x7e1e)),
		done:     make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Close stops the janitor. In-flight background AI tasks are not cancelled;
// they finish on their own.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// joinCodeAlphabet avoids ambiguous characters.
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const joinCodeLength = 6

// CreateSession registers a new session in the Waiting state with its
// creator joined and ready. Single-player mode (or game mode "solo" or
// "hybrid") adds the AI opponent immediately.
func (m *Manager) CreateSession(playerName string, maxPlayers int, gameMode string) (sessionID, joinCode, playerID string, err error) {
	if playerName == "" {
		return "", "", "", errors.Wrap(ErrInvalidState, "player name must not be empty")
	}
	if maxPlayers < 1 || maxPlayers > 8 {
		return "", "", "", errors.Wrapf(ErrInvalidState, "max_players %d out of range [1, 8]", maxPlayers)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.newJoinCodeLocked()
	s := &Session{
		id:         uuid.NewString(),
		joinCode:   code,
		maxPlayers: maxPlayers,
		gameMode:   gameMode,
		players:    make(map[string]*Player),
		state:      Waiting,
		createdAt:  time.Now(),
		lastActive: time.Now(),
		seed:       m.rng.Uint64(),
	}

	// The creator is ready by default.
	creator := &Player{
		ID:          uuid.NewString(),
		Name:        playerName,
		IsReady:     true,
		IsConnected: true,
		Type:        Human,
	}
	s.players[creator.ID] = creator

	if m.cfg.SinglePlayer || gameMode == "solo" || gameMode == "hybrid" {
		aiType := MCTS
		if gameMode == "hybrid" && m.cfg.QNet != nil {
			aiType = Hybrid
		}
		s.players[AIPlayerID] = &Player{
			ID:          AIPlayerID,
			Name:        "MCTS",
			IsReady:     true,
			IsConnected: true,
			Type:        aiType,
		}
	}

	m.sessions[s.id] = s
	m.byCode[code] = s
	klog.V(1).Infof("Created session %s (code %s, mode %q, max %d players)",
		s.id, code, gameMode, maxPlayers)
	return s.id, code, creator.ID, nil
}

// newJoinCodeLocked generates a short unique human-typable code.
func (m *Manager) newJoinCodeLocked() string {
	for {
		var sb strings.Builder
		for i := 0; i < joinCodeLength; i++ {
			sb.WriteByte(joinCodeAlphabet[m.rng.IntN(len(joinCodeAlphabet))])
		}
		code := sb.String()
		if _, taken := m.byCode[code]; !taken {
			return code
		}
	}
}

// lookup returns the session by id, or by join code as a fallback: clients
// hold whichever they got first.
func (m *Manager) lookup(key string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	if s, ok := m.byCode[key]; ok {
		return s, nil
	}
	return nil, errors.Wrapf(ErrSessionNotFound, "no session %q", key)
}

// JoinSession adds a player to a waiting session.
func (m *Manager) JoinSession(joinCode, playerName string) (sessionID, playerID string, err error) {
	s, err := m.lookup(joinCode)
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Waiting {
		return "", "", errors.Wrapf(ErrInvalidState, "session %s is %s", s.id, s.state)
	}
	if len(s.players) >= s.maxPlayers {
		return "", "", errors.Wrapf(ErrSessionFull, "session %s has %d players", s.id, len(s.players))
	}

	p := &Player{
		ID:          uuid.NewString(),
		Name:        playerName,
		IsConnected: true,
		Type:        Human,
	}
	s.players[p.ID] = p
	s.touchLocked()
	klog.V(1).Infof("Player %q joined session %s", playerName, s.id)
	return s.id, p.ID, nil
}

// GetSessionState returns a read-only snapshot of the session.
func (m *Manager) GetSessionState(sessionID string) (Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// SetReady flips a player's ready flag. When every present player is ready
// the game starts atomically: per-player boards, a fresh deck, the first
// tile drawn; the call then reports gameStarted.
func (m *Manager) SetReady(sessionID, playerID string, ready bool) (gameStarted bool, err error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return false, errors.Wrapf(ErrSessionNotFound, "no player %q in session %s", playerID, s.id)
	}
	switch s.state {
	case Waiting:
		// The interesting case, handled below.
	case InProgress:
		// Repeated SetReady after the game started is a safe no-op.
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidState, "session %s is %s", s.id, s.state)
	}

	p.IsReady = ready
	s.touchLocked()
	if !ready || !s.allPresentReadyLocked() {
		return false, nil
	}

	if err := s.startGameLocked(); err != nil {
		return false, err
	}
	klog.V(1).Infof("Session %s started with %d players", s.id, len(s.players))
	if s.waitingOnAILocked() {
		m.dispatchAIMoves(s, s.turnNumber)
	}
	return true, nil
}

// startGameLocked transitions Waiting -> InProgress and draws the first
// tile.
func (s *Session) startGameLocked() error {
	s.deck = game.NewDeck()
	s.boards = make(map[string]*game.Board, len(s.players))
	for id := range s.players {
		s.boards[id] = game.NewBoard()
	}
	s.state = InProgress
	s.turnNumber = 1
	return s.drawTileLocked(game.EmptyTile)
}

// drawTileLocked draws the turn's tile (or applies forced, when non-empty)
// and resets the waiting set.
func (s *Session) drawTileLocked(forced game.Tile) error {
	if !forced.IsEmpty() {
		if !s.deck.Contains(forced) {
			return errors.Wrapf(ErrInvalidMove, "forced tile %s not in deck", forced)
		}
		s.currentTile = forced
		s.deck = s.deck.Remove(forced)
	} else {
		rng := rand.New(rand.NewPCG(s.seed, uint64(s.turnNumber)))
		tile, deck, err := s.deck.DrawRandom(rng)
		if err != nil {
			return errors.Wrap(err, "failed to draw a tile")
		}
		s.currentTile = tile
		s.deck = deck
	}
	s.tileDrawn = true
	s.resetWaitingLocked()
	return nil
}

// StartTurn announces the current turn's tile. Idempotent: when a tile is
// already drawn for the turn it returns that tile. forcedTile (may be empty)
// forces a specific draw for reproducibility.
func (m *Manager) StartTurn(sessionID, forcedTile string) (tile game.Tile, turnNumber int, waiting []string, blob string, err error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return game.EmptyTile, 0, nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case InProgress:
	case Waiting:
		return game.EmptyTile, 0, nil, "", errors.Wrapf(ErrGameNotStarted, "session %s", s.id)
	default:
		return game.EmptyTile, 0, nil, "", errors.Wrapf(ErrInvalidState, "session %s is %s", s.id, s.state)
	}

	if !s.tileDrawn {
		forced := game.EmptyTile
		if forcedTile != "" {
			forced, err = game.ParseTile(forcedTile)
			if err != nil {
				return game.EmptyTile, 0, nil, "", errors.Wrapf(ErrInvalidMove, "forced tile %q: %v", forcedTile, err)
			}
		}
		if err := s.drawTileLocked(forced); err != nil {
			return game.EmptyTile, 0, nil, "", err
		}
		if s.waitingOnAILocked() {
			m.dispatchAIMoves(s, s.turnNumber)
		}
	}
	s.touchLocked()

	snap := s.snapshotLocked()
	blob, err = BuildStateBlob(snap)
	if err != nil {
		return game.EmptyTile, 0, nil, "", err
	}
	return s.currentTile, s.turnNumber, snap.Waiting, blob, nil
}

// MakeMove validates and applies one player's placement of the announced
// tile, returning a provisional acknowledgement. AI players still waiting
// are then served on a detached background task; the turn advances when the
// waiting set empties.
func (m *Manager) MakeMove(sessionID, playerID, moveData string, timestamp int64) (pointsEarned int, isGameOver bool, blob string, err error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return 0, false, "", err
	}

	move, err := ParseMoveData(moveData)
	if err != nil {
		return 0, false, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case InProgress:
	case Waiting:
		return 0, false, "", errors.Wrapf(ErrGameNotStarted, "session %s", s.id)
	default:
		return 0, false, "", errors.Wrapf(ErrInvalidState, "session %s is %s", s.id, s.state)
	}

	pointsEarned, err = s.applyMoveLocked(playerID, move.Position)
	if err != nil {
		return 0, false, "", err
	}
	s.touchLocked()

	if s.waitingOnAILocked() {
		// Serve AI players off the request path; MakeMove returns now.
		m.dispatchAIMoves(s, s.turnNumber)
	} else if len(s.waiting) == 0 {
		if err := m.advanceTurnLocked(s); err != nil {
			return 0, false, "", err
		}
	}

	snap := s.snapshotLocked()
	blob, err = BuildStateBlob(snap)
	if err != nil {
		return 0, false, "", err
	}
	return pointsEarned, s.state == Finished, blob, nil
}

// applyMoveLocked validates every precondition of a placement and commits
// it: the board, the player's score and the waiting set. Illegal moves
// leave the session untouched.
func (s *Session) applyMoveLocked(playerID string, position int) (pointsEarned int, err error) {
	p, ok := s.players[playerID]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidMove, "no player %q in session %s", playerID, s.id)
	}
	if !s.tileDrawn {
		return 0, errors.Wrap(ErrInvalidMove, "no tile drawn for the current turn")
	}
	if !s.waiting.Has(playerID) {
		return 0, errors.Wrapf(ErrInvalidMove, "player %q already played turn %d", playerID, s.turnNumber)
	}

	board := s.boards[playerID]
	newBoard, err := board.Place(position, s.currentTile)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidMove, "cannot place at %d: %v", position, err)
	}

	s.moves = append(s.moves, MoveRecord{
		Turn:       s.turnNumber,
		PlayerID:   playerID,
		PlayerType: p.Type,
		Board:      board.Encode(),
		Tile:       s.currentTile,
		Position:   position,
	})

	oldScore := p.Score
	s.boards[playerID] = newBoard
	p.Score = game.Score(newBoard)
	s.waiting.Delete(playerID)
	return p.Score - oldScore, nil
}

// waitingOnAILocked reports whether any AI player still owes a move this
// turn.
func (s *Session) waitingOnAILocked() bool {
	for id := range s.waiting {
		if p, ok := s.players[id]; ok && p.IsAI() {
			return true
		}
	}
	return false
}

// advanceTurnLocked runs exactly once per turn completion: it either moves
// to the next turn or finishes the game after the last one. The next turn's
// tile is drawn by StartTurn, so clients (and tests) can force a draw.
func (m *Manager) advanceTurnLocked(s *Session) error {
	if s.turnNumber >= TotalTurns || s.allBoardsFullLocked() {
		m.finishLocked(s)
		return nil
	}
	s.turnNumber++
	s.tileDrawn = false
	s.currentTile = game.EmptyTile
	s.waiting = nil
	return nil
}

func (s *Session) allBoardsFullLocked() bool {
	for _, b := range s.boards {
		if !b.IsFull() {
			return false
		}
	}
	return len(s.boards) > 0
}

// finishLocked transitions to Finished and hands the history to the
// recorder out of band.
func (m *Manager) finishLocked(s *Session) {
	s.state = Finished
	s.tileDrawn = false
	klog.V(1).Infof("Session %s finished after %d turns", s.id, s.turnNumber)

	if m.cfg.Recorder == nil {
		return
	}
	moves := make([]MoveRecord, len(s.moves))
	copy(moves, s.moves)
	scores := make(map[string]int, len(s.players))
	humanBest, aiBest := -1, -1
	for id, p := range s.players {
		scores[id] = p.Score
		if p.IsAI() {
			if p.Score > aiBest {
				aiBest = p.Score
			}
		} else if p.Score > humanBest {
			humanBest = p.Score
		}
	}
	sessionID, gameMode := s.id, s.gameMode
	humanWon := humanBest >= aiBest

	go func() {
		if err := m.cfg.Recorder.RecordGame(sessionID, gameMode, moves, scores, humanWon); err != nil {
			klog.Warningf("Recorder failed for session %s: %v", sessionID, err)
		}
	}()
}

// GetAvailableMoves lists the legal positions of the player's board.
func (m *Manager) GetAvailableMoves(sessionID, playerID string) ([]int, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Waiting {
		return nil, errors.Wrapf(ErrGameNotStarted, "session %s", s.id)
	}
	board, ok := s.boards[playerID]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "no player %q in session %s", playerID, s.id)
	}
	return board.LegalMoves(), nil
}

// CloseSession finalizes a session explicitly, discarding any in-flight
// background results.
func (m *Manager) CloseSession(sessionID string) error {
	s, err := m.lookup(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.state != Finished {
		s.state = Cancelled
	}
	code := s.joinCode
	s.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, s.id)
	delete(m.byCode, code)
	m.mu.Unlock()
	return nil
}

// janitor reaps idle sessions.
func (m *Manager) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.reapIdle()
		}
	}
}

func (m *Manager) reapIdle() {
	cutoff := time.Now().Add(-m.cfg.IdleExpiry)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff)
		if idle && s.state != Finished {
			s.state = Cancelled
		}
		code := s.joinCode
		s.mu.Unlock()
		if idle {
			klog.V(1).Infof("Expiring idle session %s", id)
			delete(m.sessions, id)
			delete(m.byCode, code)
		}
	}
}
