package strategy_test

import (
	"testing"

	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(t *testing.T, b *game.Board, cell int, tile game.Tile) *game.Board {
	t.Helper()
	next, err := b.Place(cell, tile)
	require.NoError(t, err)
	return next
}

func TestContextualBoostEmptyBoard(t *testing.T) {
	b := game.NewBoard()
	boost := strategy.ContextualBoost(b, 8, game.Tile{A: 9, B: 7, C: 8}, 5, 1.0)
	assert.Greater(t, boost, 0.0, "an empty board still carries the starting boost")
	assert.LessOrEqual(t, boost, 1.0)
}

func TestContextualBoostNearCompleteLine(t *testing.T) {
	b := game.NewBoard()
	b = place(t, b, 7, game.Tile{A: 9, B: 2, C: 3})
	b = place(t, b, 8, game.Tile{A: 9, B: 6, C: 4})
	b = place(t, b, 9, game.Tile{A: 9, B: 7, C: 8})
	b = place(t, b, 10, game.Tile{A: 9, B: 2, C: 4})

	boost := strategy.ContextualBoost(b, 11, game.Tile{A: 9, B: 6, C: 8}, 5, 1.0)
	assert.Greater(t, boost, 0.6, "completing a 9-line should get a strong boost")
	assert.LessOrEqual(t, boost, 1.0)
}

func TestContextualBoostConflictingLine(t *testing.T) {
	b := game.NewBoard()
	b = place(t, b, 0, game.Tile{A: 9, B: 2, C: 3})
	aligned := place(t, b, 1, game.Tile{A: 9, B: 6, C: 4})
	b = place(t, b, 1, game.Tile{A: 5, B: 6, C: 4})

	boost := strategy.ContextualBoost(b, 2, game.Tile{A: 9, B: 7, C: 8}, 5, 1.0)
	alignedBoost := strategy.ContextualBoost(aligned, 2, game.Tile{A: 9, B: 7, C: 8}, 5, 1.0)
	assert.Less(t, boost, alignedBoost, "a conflicted line earns less than an aligned one")
}

func TestContextualBoostEntropyScaling(t *testing.T) {
	b := game.NewBoard()
	tile := game.Tile{A: 9, B: 7, C: 8}
	confident := strategy.ContextualBoost(b, 8, tile, 5, 0.0)
	uncertain := strategy.ContextualBoost(b, 8, tile, 5, 1.0)
	assert.Less(t, confident, uncertain, "a confident policy shrinks the boost")
}

func TestPositionEvaluationFavorsCenter(t *testing.T) {
	b := game.NewBoard()
	tile := game.Tile{A: 9, B: 7, C: 8}
	assert.Greater(t,
		strategy.PositionEvaluation(b, 8, tile),
		strategy.PositionEvaluation(b, 17, tile))
}

func TestPolicyEntropy(t *testing.T) {
	uniform := make([]float32, 19)
	for i := range uniform {
		uniform[i] = 1.0 / 19.0
	}
	assert.InDelta(t, 1.0, strategy.PolicyEntropy(uniform), 1e-6)

	peaked := make([]float32, 19)
	peaked[4] = 1.0
	assert.InDelta(t, 0.0, strategy.PolicyEntropy(peaked), 1e-6)
}
