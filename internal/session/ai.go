package session

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/generics"
	"github.com/specialjcg/take-it-easy/internal/mcts"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// aiTask is the data a background search needs, snapshotted under the
// session lock so the search itself runs without it.
type aiTask struct {
	playerID string
	hybrid   bool
	board    *game.Board
	seed     uint64
}

// dispatchAIMoves schedules one background task computing the moves of every
// AI player still waiting on the given turn. Callers hold s.mu. The task
// re-acquires the lock to commit and drops its result if the session has
// progressed or finalized in the interim.
func (m *Manager) dispatchAIMoves(s *Session, turn int) {
	if s.aiDispatched == turn {
		return
	}
	s.aiDispatched = turn

	var tasks []aiTask
	// Deterministic order so per-task seeds are stable.
	for idx, id := range generics.SortedKeysSlice(s.waiting) {
		p, ok := s.players[id]
		if !ok || !p.IsAI() {
			continue
		}
		tasks = append(tasks, aiTask{
			playerID: id,
			hybrid:   p.Type == Hybrid,
			board:    s.boards[id],
			seed:     s.seed ^ (uint64(turn)<<16 | uint64(idx)),
		})
	}
	if len(tasks) == 0 {
		return
	}

	deck := s.deck
	tile := s.currentTile
	// Deck/boards are immutable values; the goroutine only reads them.
	go m.runAIMoves(s, turn, tile, deck, tasks)
}

// runAIMoves computes and commits the AI placements for one turn. Searches
// run concurrently, each with its own RNG; commits are serialized under the
// session lock and verified against the session's current turn.
func (m *Manager) runAIMoves(s *Session, turn int, tile game.Tile, deck *game.Deck, tasks []aiTask) {
	type aiMove struct {
		playerID string
		position int
	}
	moves := make([]aiMove, len(tasks))

	var group errgroup.Group
	for i, task := range tasks {
		group.Go(func() error {
			result := m.searchMove(task, tile, deck, turn)
			moves[i] = aiMove{playerID: task.playerID, position: result.BestPosition}
			return nil
		})
	}
	// Search tasks never return errors; degradations happen inside the
	// engine.
	_ = group.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress || s.turnNumber != turn || !s.tileDrawn {
		klog.V(1).Infof("Dropping stale AI moves for session %s turn %d", s.id, turn)
		return
	}
	for _, mv := range moves {
		if !s.waiting.Has(mv.playerID) {
			continue
		}
		if _, err := s.applyMoveLocked(mv.playerID, mv.position); err != nil {
			// The affected player forfeits the turn; the game moves on.
			klog.Errorf("AI move failed for %s in session %s: %v", mv.playerID, s.id, err)
			s.waiting.Delete(mv.playerID)
		}
	}
	if len(s.waiting) == 0 {
		if err := m.advanceTurnLocked(s); err != nil {
			klog.Errorf("Failed to advance session %s past turn %d: %v", s.id, turn, err)
		}
	}
}

// searchMove runs one search for one AI player.
func (m *Manager) searchMove(task aiTask, tile game.Tile, deck *game.Deck, turn int) mcts.Result {
	rng := rand.New(rand.NewPCG(task.seed, uint64(turn)))
	searcher := mcts.New(m.cfg.Policy, m.cfg.Value, m.cfg.Arch, m.cfg.Hyper, rng)
	if task.hybrid && m.cfg.QNet != nil {
		searcher = searcher.WithQNet(m.cfg.QNet)
	}
	return searcher.Search(mcts.Request{
		Board:          task.board,
		Deck:           deck,
		Tile:           tile,
		Turn:           turn - 1, // turns are 1-based in sessions, 0-based in search
		TotalTurns:     TotalTurns,
		NumSimulations: m.cfg.NumSimulations,
	})
}

// GetAiMove is the stateless single-shot assistance call: given a tile code,
// a board encoding (19 tile codes) and the legal positions, it recommends a
// placement with the session-independent search configuration.
func (m *Manager) GetAiMove(tileCode string, boardState []string, availablePositions []int, turnNumber int) (int, error) {
	tile, err := game.ParseTile(tileCode)
	if err != nil || tile.IsEmpty() {
		return 0, errors.Wrapf(ErrInvalidMove, "bad tile code %q", tileCode)
	}
	if len(boardState) != game.NumCells {
		return 0, errors.Wrapf(ErrInvalidMove, "board state has %d cells, want %d", len(boardState), game.NumCells)
	}

	board := game.NewBoard()
	deck := game.NewDeck()
	for cell, code := range boardState {
		placed, err := game.ParseTile(code)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidMove, "cell %d: %v", cell, err)
		}
		if placed.IsEmpty() {
			continue
		}
		board, err = board.Place(cell, placed)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidMove, "cell %d: %v", cell, err)
		}
		deck = deck.Remove(placed)
	}
	deck = deck.Remove(tile)

	rng := rand.New(rand.NewPCG(m.cfg.Seed, uint64(turnNumber)))
	searcher := mcts.New(m.cfg.Policy, m.cfg.Value, m.cfg.Arch, m.cfg.Hyper, rng)
	if m.cfg.QNet != nil {
		searcher = searcher.WithQNet(m.cfg.QNet)
	}
	result := searcher.Search(mcts.Request{
		Board:          board,
		Deck:           deck,
		Tile:           tile,
		Turn:           turnNumber,
		TotalTurns:     TotalTurns,
		NumSimulations: m.cfg.NumSimulations,
	})

	if len(availablePositions) > 0 {
		for _, pos := range availablePositions {
			if pos == result.BestPosition {
				return result.BestPosition, nil
			}
		}
		// The caller's legality view wins; fall back to its best-ranked
		// position by the search policy.
		best := availablePositions[0]
		for _, pos := range availablePositions[1:] {
			if pos >= 0 && pos < game.NumCells && result.Policy[pos] > result.Policy[best] {
				best = pos
			}
		}
		return best, nil
	}
	return result.BestPosition, nil
}
