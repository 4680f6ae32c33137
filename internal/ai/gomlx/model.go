// Package gomlx implements the neural network side of the engine on GoMLX:
// one model per supported architecture (residual CNN, message-passing graph
// network, graph attention, graph transformer and a Q ranking net), a scorer
// that wraps a model behind the ai interfaces, and a manager that wires
// models to checkpoints on disk.
package gomlx

import (
	"sync"

	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/xla"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/specialjcg/take-it-easy/internal/features"
)

var (
	// backend is a singleton shared by every model and session.
	backend = sync.OnceValue(func() backends.Backend { return backends.New() })

	// muNewExec serializes executor construction; graph compilation is not
	// reentrant.
	muNewExec sync.Mutex
)

// Model is a policy+value network over one of the feature encodings.
type Model interface {
	// Name identifies the model in logs and checkpoint directories.
	Name() string

	// Architecture states which encoding the model consumes.
	Architecture() features.Architecture

	// Context holds the model's weights and hyperparameters.
	Context() *context.Context

	// ForwardGraph builds the forward pass. It receives the batched input
	// tensor (shaped [batch, ...] per the architecture) and returns policy
	// logits shaped [batch, 19] and tanh-bounded values shaped [batch].
	ForwardGraph(ctx *context.Context, input *graph.Node) (policy, value *graph.Node)
}

// QModel is a ranking network: logits only, no value head.
type QModel interface {
	Name() string
	Architecture() features.Architecture
	Context() *context.Context

	// ForwardGraph returns ranking logits shaped [batch, 19].
	ForwardGraph(ctx *context.Context, input *graph.Node) *graph.Node
}

// createInput builds the single-example input tensor of an architecture.
// Grid architectures are laid out channels-last ([1, 5, 5, C]); graph
// architectures as [1, 19, C].
func createInput(arch features.Architecture, fctx features.Context) *tensors.Tensor {
	data := features.Encode(arch, fctx)
	switch arch {
	case features.ArchSpatial, features.ArchOneHot:
		channels := len(data) / (features.GridSize * features.GridSize)
		t := tensors.FromShape(shapes.Make(dtypes.Float32, 1, features.GridSize, features.GridSize, channels))
		tensors.MutableFlatData(t, func(flat []float32) {
			// Encoders emit channel-major [C, 5, 5]; transpose to [5, 5, C].
			for c := 0; c < channels; c++ {
				for cell := 0; cell < features.GridSize*features.GridSize; cell++ {
					flat[cell*channels+c] = data[c*features.GridSize*features.GridSize+cell]
				}
			}
		})
		return t
	default:
		channels := len(data) / features.NumNodes
		t := tensors.FromShape(shapes.Make(dtypes.Float32, 1, features.NumNodes, channels))
		tensors.MutableFlatData(t, func(flat []float32) {
			copy(flat, data)
		})
		return t
	}
}

// adjacencyBias returns the attention bias matrix of the board graph: zero on
// edges (and self-loops), a large negative constant elsewhere. Adding it to
// attention scores before the softmax masks non-neighbors.
func adjacencyBias() [][]float32 {
	adj := features.Adjacency()
	bias := make([][]float32, features.NumNodes)
	for i := range bias {
		bias[i] = make([]float32, features.NumNodes)
		for j := range bias[i] {
			if adj[i*features.NumNodes+j] == 0 {
				bias[i][j] = -1e9
			}
		}
	}
	return bias
}

// normalizedAdjacencyRows returns D^-1/2 (A+I) D^-1/2 as nested rows for
// graph constants.
func normalizedAdjacencyRows() [][]float32 {
	norm := features.NormalizedAdjacency()
	rows := make([][]float32, features.NumNodes)
	for i := range rows {
		rows[i] = make([]float32, features.NumNodes)
		copy(rows[i], norm[i*features.NumNodes:(i+1)*features.NumNodes])
	}
	return rows
}
