package features_test

import (
	"math"
	"testing"

	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, placements map[int]game.Tile) features.Context {
	t.Helper()
	b := game.NewBoard()
	d := game.NewDeck()
	for cell, tile := range placements {
		var err error
		b, err = b.Place(cell, tile)
		require.NoError(t, err)
		d = d.Remove(tile)
	}
	inHand := game.Tile{A: 9, B: 6, C: 3}
	d = d.Remove(inHand)
	return features.Context{
		Board:      b,
		Tile:       inHand,
		Deck:       d,
		Turn:       len(placements),
		TotalTurns: 19,
	}
}

func TestShapes(t *testing.T) {
	ctx := testContext(t, nil)
	for _, arch := range features.ArchitectureValues() {
		shape := features.Shape(arch)
		size := 1
		for _, d := range shape {
			size *= d
		}
		assert.Len(t, features.Encode(arch, ctx), size, "architecture %s", arch)
	}
}

// occupancyOf extracts the per-cell occupancy bit from an encoding.
func occupancyOf(arch features.Architecture, data []float32, cell int) float32 {
	switch arch {
	case features.ArchSpatial:
		return data[3*features.GridSize*features.GridSize+features.GridIndex(cell)]
	case features.ArchOneHot:
		return data[9*features.GridSize*features.GridSize+features.GridIndex(cell)]
	case features.ArchGraph:
		return data[cell*features.GraphChannels+3]
	default:
		return data[cell*features.GraphEnrichedChannels+3]
	}
}

func TestOccupancyRoundTrip(t *testing.T) {
	placements := map[int]game.Tile{
		0:  {A: 1, B: 2, C: 3},
		4:  {A: 5, B: 6, C: 4},
		9:  {A: 9, B: 7, C: 8},
		18: {A: 5, B: 7, C: 3},
	}
	ctx := testContext(t, placements)

	for _, arch := range features.ArchitectureValues() {
		data := features.Encode(arch, ctx)
		for cell := 0; cell < game.NumCells; cell++ {
			_, placed := placements[cell]
			want := float32(0)
			if placed {
				want = 1
			}
			assert.Equal(t, want, occupancyOf(arch, data, cell),
				"architecture %s cell %d", arch, cell)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	ctx := testContext(t, map[int]game.Tile{8: {A: 9, B: 2, C: 4}})
	for _, arch := range features.ArchitectureValues() {
		assert.Equal(t, features.Encode(arch, ctx), features.Encode(arch, ctx),
			"architecture %s", arch)
	}
}

func TestHexToGridIsInjective(t *testing.T) {
	seen := make(map[int]bool)
	for cell := 0; cell < features.NumNodes; cell++ {
		idx := features.GridIndex(cell)
		assert.False(t, seen[idx], "grid index %d reused", idx)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, features.GridSize*features.GridSize)
		seen[idx] = true
	}
	assert.Len(t, seen, 19, "19 of the 25 grid cells are used")
}

func TestOneHotTileChannels(t *testing.T) {
	ctx := testContext(t, nil)
	data := features.Encode(features.ArchOneHot, ctx)
	grid := features.GridSize * features.GridSize

	// The in-hand tile (9,6,3) one-hot: 9 is index 2 of {1,5,9}, 6 is index 1
	// of {2,6,7}, 3 is index 0 of {3,4,8}.
	for cell := 0; cell < game.NumCells; cell++ {
		idx := features.GridIndex(cell)
		assert.Equal(t, float32(1), data[(10+2)*grid+idx], "cell %d dir1", cell)
		assert.Equal(t, float32(0), data[(10+0)*grid+idx])
		assert.Equal(t, float32(1), data[(13+1)*grid+idx], "cell %d dir2", cell)
		assert.Equal(t, float32(1), data[(16+0)*grid+idx], "cell %d dir3", cell)
	}
}

func TestOneHotBagCounts(t *testing.T) {
	ctx := testContext(t, nil) // only the in-hand tile (9,6,3) is drawn
	data := features.Encode(features.ArchOneHot, ctx)
	grid := features.GridSize * features.GridSize
	idx := features.GridIndex(0)

	// 8 of 9 nines remain; all 9 ones remain.
	assert.InDelta(t, 8.0/9.0, data[22*grid+idx], 1e-6)
	assert.InDelta(t, 1.0, data[20*grid+idx], 1e-6)
}

func TestGraphLineMembership(t *testing.T) {
	ctx := testContext(t, nil)
	data := features.Encode(features.ArchGraph, ctx)

	for cell := 0; cell < game.NumCells; cell++ {
		membership := 0
		for lineIdx := 0; lineIdx < 15; lineIdx++ {
			if data[cell*features.GraphChannels+26+lineIdx] == 1 {
				membership++
				assert.True(t, game.Lines[lineIdx].Contains(cell))
			}
		}
		assert.Equal(t, 3, membership, "cell %d must lie on 3 lines", cell)
	}
}

func TestAdjacencySymmetricWithSelfLoops(t *testing.T) {
	adj := features.Adjacency()
	n := features.NumNodes
	for i := 0; i < n; i++ {
		assert.Equal(t, float32(1), adj[i*n+i], "self-loop %d", i)
		for j := 0; j < n; j++ {
			assert.Equal(t, adj[i*n+j], adj[j*n+i], "symmetry (%d,%d)", i, j)
		}
	}

	// Cell 9 is the board center with 4 neighbors.
	degree := 0
	for j := 0; j < n; j++ {
		if adj[9*n+j] == 1 && j != 9 {
			degree++
		}
	}
	assert.Equal(t, 4, degree)
}

func TestNormalizedAdjacencyPreservesSqrtDegree(t *testing.T) {
	// D^-1/2 (A+I) D^-1/2 maps the vector of sqrt(degree) to itself: each
	// row weighted by sqrt(degree) sums to the row's own sqrt(degree).
	adj := features.Adjacency()
	norm := features.NormalizedAdjacency()
	n := features.NumNodes
	degree := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			degree[i] += float64(adj[i*n+j])
		}
	}
	for i := 0; i < n; i++ {
		weighted := 0.0
		for j := 0; j < n; j++ {
			assert.GreaterOrEqual(t, norm[i*n+j], float32(0))
			weighted += float64(norm[i*n+j]) * math.Sqrt(degree[j])
		}
		assert.InDelta(t, math.Sqrt(degree[i]), weighted, 1e-4, "row %d", i)
	}
}

func TestPotentialScoresSpreadOverEmptyCells(t *testing.T) {
	b := game.NewBoard()
	b, err := b.Place(7, game.Tile{A: 9, B: 2, C: 3})
	require.NoError(t, err)

	scores := features.PotentialScores(b)
	assert.Zero(t, scores[7], "occupied cells take no potential")
	assert.Greater(t, scores[8], float32(0), "line mates receive potential")
	assert.Zero(t, scores[15], "unrelated cells stay zero")
}

func TestLineFeatures(t *testing.T) {
	b := game.NewBoard()
	inHand := game.Tile{A: 9, B: 6, C: 3}

	feats := features.LineFeatures(b, inHand)
	for i, f := range feats {
		assert.Equal(t, float32(0.5), f, "empty line %d has moderate potential", i)
	}

	// Block line 0 (cells 0,1,2 on the horizontal direction).
	b, err := b.Place(0, game.Tile{A: 9, B: 2, C: 3})
	require.NoError(t, err)
	b, err = b.Place(1, game.Tile{A: 5, B: 6, C: 4})
	require.NoError(t, err)
	feats = features.LineFeatures(b, inHand)
	assert.Zero(t, feats[0], "blocked line has no potential")
}
