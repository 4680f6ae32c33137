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

// GAT is a multi-head graph attention network over the 19-node board graph,
// with residual connections and layer normalization per layer. It consumes
// the enriched graph encoding.
type GAT struct {
	ctx  *context.Context
	arch features.Architecture
}

var _ Model = (*GAT)(nil)

// NewGAT creates a graph attention model with fresh weights.
func NewGAT() *GAT {
	m := &GAT{ctx: context.New(), arch: features.ArchGraphEnriched}
	m.ctx.RngStateReset()
	m.ctx.SetParams(map[string]any{
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.001,
		layers.ParamDropoutRate:      0.1,
		regularizers.ParamL2:         1e-5,

		"hidden_dim": 64,
		"num_layers": 2,
		"num_heads":  4,
	})
	m.ctx = m.ctx.Checked(false)
	return m
}

// Name implements Model.
func (m *GAT) Name() string { return "gat" }

// Architecture implements Model.
func (m *GAT) Architecture() features.Architecture { return m.arch }

// Context implements Model.
func (m *GAT) Context() *context.Context { return m.ctx }

// ForwardGraph implements Model. Input is [batch, 19, channels].
func (m *GAT) ForwardGraph(ctx *context.Context, input *Node) (policy, value *Node) {
	g := input.Graph()
	batchSize := input.Shape().Dim(0)
	hiddenDim := context.GetParamOr(ctx, "hidden_dim", 64)
	numLayers := context.GetParamOr(ctx, "num_layers", 2)
	numHeads := context.GetParamOr(ctx, "num_heads", 4)

	maskBias := Const(g, adjacencyBias())

	h := input
	for l := 0; l < numLayers; l++ {
		layerCtx := ctx.In(fmt.Sprintf("layer_%d", l))
		h = gatLayer(layerCtx, h, maskBias, numHeads, hiddenDim)
	}

	logits := layers.Dense(ctx.In("policy_head"), h, true, 1)
	policy = Reshape(logits, batchSize, game.NumCells)

	pooled := ReduceMean(h, 1)
	value = Tanh(layers.Dense(ctx.In("value_head"), pooled, true, 1))
	value = Reshape(value, batchSize)
	return
}

// gatLayer runs one multi-head attention layer over node features x
// ([batch, nodes, in]) restricted to the board adjacency, concatenates the
// heads, and applies residual + layer normalization. Shared with the Q net.
func gatLayer(ctx *context.Context, x, maskBias *Node, numHeads, outDim int) *Node {
	headDim := outDim / numHeads
	if headDim == 0 {
		headDim = outDim
		numHeads = 1
	}

	heads := make([]*Node, 0, numHeads)
	for hIdx := 0; hIdx < numHeads; hIdx++ {
		headCtx := ctx.In(fmt.Sprintf("head_%d", hIdx))
		wh := layers.Dense(headCtx.In("w"), x, false, headDim)

		attnSrc := layers.Dense(headCtx.In("attn_src"), wh, false, 1)
		attnDst := layers.Dense(headCtx.In("attn_dst"), wh, false, 1)
		// [batch, nodes, 1] + [batch, 1, nodes] broadcasts to the full
		// pairwise score matrix.
		scores := Add(attnSrc, Transpose(attnDst, 1, 2))
		scores = leakyRelu(scores)
		scores = Add(scores, maskBias)

		alpha := Softmax(scores, -1)
		heads = append(heads, Einsum("bij,bjf->bif", alpha, wh))
	}

	var out *Node
	if len(heads) == 1 {
		out = heads[0]
	} else {
		out = Concatenate(heads, -1)
	}
	if out.Shape().Dim(-1) != outDim {
		out = layers.Dense(ctx.In("out_proj"), out, false, outDim)
	}

	residual := x
	if residual.Shape().Dim(-1) != outDim {
		residual = layers.Dense(ctx.In("residual_proj"), residual, false, outDim)
	}
	out = Add(out, residual)
	out = layers.LayerNormalization(ctx.In("ln"), out, -1).Done()
	return activations.Relu(out)
}

// leakyRelu with the conventional 0.2 negative slope.
func leakyRelu(x *Node) *Node {
	return Max(x, MulScalar(x, 0.2))
}
