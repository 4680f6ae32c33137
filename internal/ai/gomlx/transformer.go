package gomlx

import (
	"fmt"
	"math"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
)

// Transformer is the graph-transformer variant: scaled-dot-product attention
// between the 19 nodes, with the board adjacency injected as an attention
// bias that masks out non-neighbors, plus the usual position-wise
// feed-forward sublayer.
type Transformer struct {
	ctx  *context.Context
	arch features.Architecture
}

var _ Model = (*Transformer)(nil)

// NewTransformer creates a graph-transformer model with fresh weights.
func NewTransformer() *Transformer {
	m := &Transformer{ctx: context.New(), arch: features.ArchGraphEnriched}
	m.ctx.RngStateReset()
	m.ctx.SetParams(map[string]any{
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.0005,
		layers.ParamDropoutRate:      0.1,
		regularizers.ParamL2:         1e-5,

		"embed_dim":  64,
		"num_layers": 2,
		"num_heads":  4,
		"ffn_dim":    128,
	})
	m.ctx = m.ctx.Checked(false)
	return m
}

// Name implements Model.
func (m *Transformer) Name() string { return "transformer" }

// Architecture implements Model.
func (m *Transformer) Architecture() features.Architecture { return m.arch }

// Context implements Model.
func (m *Transformer) Context() *context.Context { return m.ctx }

// ForwardGraph implements Model. Input is [batch, 19, channels].
func (m *Transformer) ForwardGraph(ctx *context.Context, input *Node) (policy, value *Node) {
	g := input.Graph()
	batchSize := input.Shape().Dim(0)
	embedDim := context.GetParamOr(ctx, "embed_dim", 64)
	numLayers := context.GetParamOr(ctx, "num_layers", 2)
	numHeads := context.GetParamOr(ctx, "num_heads", 4)
	ffnDim := context.GetParamOr(ctx, "ffn_dim", 128)

	maskBias := Const(g, adjacencyBias())

	h := layers.Dense(ctx.In("embed"), input, true, embedDim)
	for l := 0; l < numLayers; l++ {
		layerCtx := ctx.In(fmt.Sprintf("layer_%d", l))
		h = transformerBlock(layerCtx, h, maskBias, numHeads, embedDim, ffnDim)
	}

	logits := layers.Dense(ctx.In("policy_head"), h, true, 1)
	policy = Reshape(logits, batchSize, game.NumCells)

	pooled := ReduceMean(h, 1)
	value = Tanh(layers.Dense(ctx.In("value_head"), pooled, true, 1))
	value = Reshape(value, batchSize)
	return
}

func transformerBlock(ctx *context.Context, x, maskBias *Node, numHeads, embedDim, ffnDim int) *Node {
	headDim := embedDim / numHeads
	scale := 1.0 / math.Sqrt(float64(headDim))

	heads := make([]*Node, 0, numHeads)
	for hIdx := 0; hIdx < numHeads; hIdx++ {
		headCtx := ctx.In(fmt.Sprintf("head_%d", hIdx))
		q := layers.Dense(headCtx.In("q"), x, false, headDim)
		k := layers.Dense(headCtx.In("k"), x, false, headDim)
		v := layers.Dense(headCtx.In("v"), x, false, headDim)

		scores := MulScalar(Einsum("bqf,bkf->bqk", q, k), scale)
		scores = Add(scores, maskBias)
		alpha := Softmax(scores, -1)
		heads = append(heads, Einsum("bqk,bkf->bqf", alpha, v))
	}

	attn := Concatenate(heads, -1)
	attn = layers.Dense(ctx.In("attn_proj"), attn, true, embedDim)
	h := Add(x, attn)
	h = layers.LayerNormalization(ctx.In("ln_attn"), h, -1).Done()

	ffn := layers.Dense(ctx.In("ffn_0"), h, true, ffnDim)
	ffn = activations.Relu(ffn)
	ffn = layers.Dense(ctx.In("ffn_1"), ffn, true, embedDim)
	h = Add(h, ffn)
	return layers.LayerNormalization(ctx.In("ln_ffn"), h, -1).Done()
}
