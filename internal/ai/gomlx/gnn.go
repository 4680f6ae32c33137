package gomlx

import (
	"fmt"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
)

// GNN is a message-passing network over the 19-node board graph, aggregating
// neighbor messages through the symmetric-normalized adjacency.
type GNN struct {
	ctx  *context.Context
	arch features.Architecture
}

var _ Model = (*GNN)(nil)

// NewGNN creates a message-passing model with fresh weights over the plain
// graph encoding.
func NewGNN() *GNN {
	m := &GNN{ctx: context.New(), arch: features.ArchGraph}
	m.ctx.RngStateReset()
	m.ctx.SetParams(map[string]any{
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.001,
		layers.ParamDropoutRate:      0.1,
		regularizers.ParamL2:         1e-5,

		"hidden_dim": 64,
		"num_layers": 3,
	})
	m.ctx = m.ctx.Checked(false)
	return m
}

// Name implements Model.
func (m *GNN) Name() string { return "gnn" }

// Architecture implements Model.
func (m *GNN) Architecture() features.Architecture { return m.arch }

// Context implements Model.
func (m *GNN) Context() *context.Context { return m.ctx }

// ForwardGraph implements Model. Input is [batch, 19, channels].
func (m *GNN) ForwardGraph(ctx *context.Context, input *Node) (policy, value *Node) {
	g := input.Graph()
	batchSize := input.Shape().Dim(0)
	hiddenDim := context.GetParamOr(ctx, "hidden_dim", 64)
	numLayers := context.GetParamOr(ctx, "num_layers", 3)

	adj := Const(g, normalizedAdjacencyRows())

	h := input
	for l := 0; l < numLayers; l++ {
		layerCtx := ctx.In(fmt.Sprintf("layer_%d", l))
		// Spectral aggregation: each node receives the degree-normalized sum
		// of its neighborhood, then a shared dense transform.
		msg := Einsum("ij,bjf->bif", adj, h)
		h = layers.Dense(layerCtx.In("dense"), msg, true, hiddenDim)
		h = activations.Relu(h)
	}

	// Per-node policy logits.
	logits := layers.Dense(ctx.In("policy_head"), h, true, 1)
	policy = Reshape(logits, batchSize, game.NumCells)

	// Global mean-pool for the value head.
	pooled := ReduceMean(h, 1)
	value = Tanh(layers.Dense(ctx.In("value_head"), pooled, true, 1))
	value = Reshape(value, batchSize)
	return
}
