package features

import (
	"math"

	"github.com/specialjcg/take-it-easy/internal/game"
)

// Adjacency returns the 19x19 symmetric adjacency matrix of the hexagonal
// board, with self-loops, flattened row-major.
func Adjacency() []float32 {
	adj := make([]float32, NumNodes*NumNodes)
	for cell := 0; cell < NumNodes; cell++ {
		adj[cell*NumNodes+cell] = 1
		for _, n := range game.Neighbors[cell] {
			adj[cell*NumNodes+n] = 1
			adj[n*NumNodes+cell] = 1
		}
	}
	return adj
}

// NormalizedAdjacency returns D^-1/2 (A+I) D^-1/2, the symmetric-normalized
// adjacency used for spectral (Laplacian-style) aggregation in the
// message-passing networks.
func NormalizedAdjacency() []float32 {
	adj := Adjacency()
	degree := make([]float32, NumNodes)
	for i := 0; i < NumNodes; i++ {
		for j := 0; j < NumNodes; j++ {
			degree[i] += adj[i*NumNodes+j]
		}
	}
	normalized := make([]float32, NumNodes*NumNodes)
	for i := 0; i < NumNodes; i++ {
		for j := 0; j < NumNodes; j++ {
			if adj[i*NumNodes+j] == 0 {
				continue
			}
			normalized[i*NumNodes+j] = adj[i*NumNodes+j] /
				float32(math.Sqrt(float64(degree[i])*float64(degree[j])))
		}
	}
	return normalized
}

// AdjacencyMask returns the adjacency as a 0/1 attention mask: 1 where node j
// may attend to node i (neighbors and self), 0 elsewhere.
func AdjacencyMask() []float32 {
	return Adjacency()
}
