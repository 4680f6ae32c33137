package gomlx

import (
	"fmt"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
)

// QNet ranks board cells for pruning: a small graph attention tower ending in
// one logit per node. It has no value head; callers take the top-K after
// masking illegal cells.
type QNet struct {
	ctx  *context.Context
	arch features.Architecture
}

var _ QModel = (*QNet)(nil)

// NewQNet creates a ranking model with fresh weights.
func NewQNet() *QNet {
	m := &QNet{ctx: context.New(), arch: features.ArchGraphEnriched}
	m.ctx.RngStateReset()
	m.ctx.SetParams(map[string]any{
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.001,
		regularizers.ParamL2:         1e-5,

		"hidden_dim": 32,
		"num_layers": 2,
		"num_heads":  2,
	})
	m.ctx = m.ctx.Checked(false)
	return m
}

// Name implements QModel.
func (m *QNet) Name() string { return "qnet" }

// Architecture implements QModel.
func (m *QNet) Architecture() features.Architecture { return m.arch }

// Context implements QModel.
func (m *QNet) Context() *context.Context { return m.ctx }

// ForwardGraph implements QModel. Input is [batch, 19, channels].
func (m *QNet) ForwardGraph(ctx *context.Context, input *Node) *Node {
	g := input.Graph()
	batchSize := input.Shape().Dim(0)
	hiddenDim := context.GetParamOr(ctx, "hidden_dim", 32)
	numLayers := context.GetParamOr(ctx, "num_layers", 2)
	numHeads := context.GetParamOr(ctx, "num_heads", 2)

	maskBias := Const(g, adjacencyBias())

	h := input
	for l := 0; l < numLayers; l++ {
		layerCtx := ctx.In(fmt.Sprintf("layer_%d", l))
		h = gatLayer(layerCtx, h, maskBias, numHeads, hiddenDim)
	}

	logits := layers.Dense(ctx.In("q_head"), h, true, 1)
	return Reshape(logits, batchSize, game.NumCells)
}
