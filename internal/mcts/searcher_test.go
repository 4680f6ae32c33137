package mcts_test

import (
	"math/rand/v2"
	"testing"

	"github.com/specialjcg/take-it-easy/internal/ai"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/mcts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearcher(seed uint64) *mcts.Searcher {
	rng := rand.New(rand.NewPCG(seed, seed))
	return mcts.New(ai.UniformPolicy{}, ai.NeutralValue{}, features.ArchGraphEnriched,
		mcts.DefaultHyperparameters(), rng)
}

func rootRequest(sims int) mcts.Request {
	deck := game.NewDeck()
	tile := game.Tile{A: 9, B: 6, C: 3}
	return mcts.Request{
		Board:          game.NewBoard(),
		Deck:           deck,
		Tile:           tile,
		Turn:           0,
		TotalTurns:     19,
		NumSimulations: sims,
	}
}

func TestSearchReturnsLegalMove(t *testing.T) {
	s := newSearcher(1)
	result := s.Search(rootRequest(30))
	assert.GreaterOrEqual(t, result.BestPosition, 0)
	assert.Less(t, result.BestPosition, game.NumCells)
}

func TestSearchZeroSimulations(t *testing.T) {
	s := newSearcher(2)
	result := s.Search(rootRequest(0))
	// With no simulations the engine must still return a legal move.
	assert.GreaterOrEqual(t, result.BestPosition, 0)
	assert.Less(t, result.BestPosition, game.NumCells)

	var sum float32
	for _, p := range result.Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestSearchSentinelOnFullBoard(t *testing.T) {
	b := game.NewBoard()
	d := game.NewDeck()
	rng := rand.New(rand.NewPCG(3, 3))
	for cell := 0; cell < game.NumCells; cell++ {
		tile, next, err := d.DrawRandom(rng)
		require.NoError(t, err)
		d = next
		b, err = b.Place(cell, tile)
		require.NoError(t, err)
	}

	s := newSearcher(3)
	result := s.Search(mcts.Request{
		Board: b, Deck: d, Tile: game.Tile{A: 1, B: 2, C: 3},
		NumSimulations: 10,
	})
	assert.Equal(t, 0, result.BestPosition)
	for _, p := range result.Policy {
		assert.Zero(t, p)
	}
	assert.Zero(t, result.Subscore)
}

func TestSearchPolicyDistribution(t *testing.T) {
	s := newSearcher(4)

	// Occupy a few cells so some positions are illegal.
	b := game.NewBoard()
	var err error
	b, err = b.Place(0, game.Tile{A: 1, B: 2, C: 3})
	require.NoError(t, err)
	b, err = b.Place(7, game.Tile{A: 5, B: 6, C: 4})
	require.NoError(t, err)
	deck := game.NewDeck().
		Remove(game.Tile{A: 1, B: 2, C: 3}).
		Remove(game.Tile{A: 5, B: 6, C: 4})

	result := s.Search(mcts.Request{
		Board:          b,
		Deck:           deck,
		Tile:           game.Tile{A: 9, B: 7, C: 8},
		Turn:           2,
		TotalTurns:     19,
		NumSimulations: 40,
	})

	assert.Zero(t, result.Policy[0], "occupied cell must have zero probability")
	assert.Zero(t, result.Policy[7])
	var sum float32
	for _, p := range result.Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.NotEqual(t, 0, result.BestPosition)
	assert.NotEqual(t, 7, result.BestPosition)
}

func TestSearchIsDeterministicWithFixedSeed(t *testing.T) {
	r1 := newSearcher(99).Search(rootRequest(50))
	r2 := newSearcher(99).Search(rootRequest(50))
	assert.Equal(t, r1.BestPosition, r2.BestPosition)
	assert.Equal(t, r1.Policy, r2.Policy)
	assert.Equal(t, r1.Subscore, r2.Subscore)
}

func TestSearchFinalMoveMatchesDistributions(t *testing.T) {
	// The final move follows the reported distributions: the most-visited
	// child by default, the visited child with the highest Q under MaxQ.
	s := newSearcher(5)
	result := s.Search(rootRequest(400))

	sq := newSearcher(5).WithFinalMove(mcts.MaxQ)
	resultQ := sq.Search(rootRequest(400))

	var bestVisit, bestQ int
	var bestVisitP, bestQV float32 = -1, -2
	for cell := 0; cell < game.NumCells; cell++ {
		if result.Policy[cell] > bestVisitP {
			bestVisitP = result.Policy[cell]
			bestVisit = cell
		}
		if resultQ.QValues[cell] > bestQV && resultQ.Policy[cell] > 0 {
			bestQV = resultQ.QValues[cell]
			bestQ = cell
		}
	}
	assert.Equal(t, bestVisit, result.BestPosition)
	assert.Equal(t, bestQ, resultQ.BestPosition)
}

func TestSearchGumbelSelection(t *testing.T) {
	s := newSearcher(6).WithRootSelection(mcts.SelectGumbel)
	result := s.Search(rootRequest(40))
	assert.GreaterOrEqual(t, result.BestPosition, 0)
	assert.Less(t, result.BestPosition, game.NumCells)

	var sum float32
	for _, p := range result.Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestSearchSampledFinalMoveIsLegal(t *testing.T) {
	s := newSearcher(7).WithFinalMove(mcts.SampleTemperature)
	req := rootRequest(30)
	result := s.Search(req)
	assert.Contains(t, req.Board.LegalMoves(), result.BestPosition)
}

func TestSearchWithExplorationPrior(t *testing.T) {
	req := rootRequest(30)
	rng := rand.New(rand.NewPCG(8, 8))
	req.ExplorationPrior = mcts.DirichletNoise(0.15, req.Board.LegalMoves(), rng)

	s := newSearcher(8)
	result := s.Search(req)
	assert.Contains(t, req.Board.LegalMoves(), result.BestPosition)
}

func TestDirichletNoiseSumsToOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	cells := []int{1, 4, 9, 13, 18}
	noise := mcts.DirichletNoise(0.15, cells, rng)

	var sum float32
	for cell, p := range noise {
		inCells := false
		for _, c := range cells {
			if c == cell {
				inCells = true
			}
		}
		if !inCells {
			assert.Zero(t, p, "cell %d outside support", cell)
		}
		assert.GreaterOrEqual(t, p, float32(0))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestSearchDoesNotMutateInputs(t *testing.T) {
	req := rootRequest(20)
	s := newSearcher(10)
	s.Search(req)
	assert.Equal(t, 0, req.Board.NumPlaced())
	assert.Equal(t, 27, req.Deck.Remaining())
}

func TestExpectimaxSearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	s := mcts.NewExpectimax(ai.NeutralValue{}, mcts.DefaultHyperparameters(), 4, rng)

	req := rootRequest(30)
	result := s.Search(req)
	assert.Contains(t, req.Board.LegalMoves(), result.BestPosition)

	var sum float32
	for _, p := range result.Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestExpectimaxSentinelOnFullBoard(t *testing.T) {
	b := game.NewBoard()
	d := game.NewDeck()
	rng := rand.New(rand.NewPCG(12, 12))
	for cell := 0; cell < game.NumCells; cell++ {
		tile, next, err := d.DrawRandom(rng)
		require.NoError(t, err)
		d = next
		b, err = b.Place(cell, tile)
		require.NoError(t, err)
	}
	s := mcts.NewExpectimax(ai.NeutralValue{}, mcts.DefaultHyperparameters(), 0, rng)
	result := s.Search(mcts.Request{Board: b, Deck: d, Tile: game.Tile{A: 1, B: 2, C: 3}})
	assert.Equal(t, 0, result.BestPosition)
}
