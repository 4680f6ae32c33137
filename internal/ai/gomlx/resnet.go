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

// ResNet is a residual convolutional network over the 5x5 grid embedding of
// the board. It consumes either the dense spatial encoding or the one-hot
// variant, selected at construction.
type ResNet struct {
	ctx  *context.Context
	arch features.Architecture
}

var _ Model = (*ResNet)(nil)

// NewResNet creates a residual CNN with fresh weights. arch must be
// ArchSpatial or ArchOneHot.
func NewResNet(arch features.Architecture) *ResNet {
	m := &ResNet{ctx: context.New(), arch: arch}
	m.ctx.RngStateReset()
	m.ctx.SetParams(map[string]any{
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.001,
		layers.ParamDropoutRate:      0.0,
		regularizers.ParamL2:         1e-5,

		"num_blocks": 3,
		"filters":    64,
	})
	m.ctx = m.ctx.Checked(false)
	return m
}

// Name implements Model.
func (m *ResNet) Name() string {
	if m.arch == features.ArchOneHot {
		return "resnet_onehot"
	}
	return "resnet"
}

// Architecture implements Model.
func (m *ResNet) Architecture() features.Architecture { return m.arch }

// Context implements Model.
func (m *ResNet) Context() *context.Context { return m.ctx }

// ForwardGraph implements Model. Input is [batch, 5, 5, channels].
func (m *ResNet) ForwardGraph(ctx *context.Context, input *Node) (policy, value *Node) {
	batchSize := input.Shape().Dim(0)
	filters := context.GetParamOr(ctx, "filters", 64)
	numBlocks := context.GetParamOr(ctx, "num_blocks", 3)

	x := layers.Convolution(ctx.In("stem"), input).Filters(filters).KernelSize(3).PadSame().Done()
	x = activations.Relu(x)

	for b := 0; b < numBlocks; b++ {
		blockCtx := ctx.In(fmt.Sprintf("block_%d", b))
		residual := x
		x = layers.Convolution(blockCtx.In("conv_0"), x).Filters(filters).KernelSize(3).PadSame().Done()
		x = activations.Relu(x)
		x = layers.Convolution(blockCtx.In("conv_1"), x).Filters(filters).KernelSize(3).PadSame().Done()
		x = activations.Relu(Add(x, residual))
	}

	flat := Reshape(x, batchSize, features.GridSize*features.GridSize*filters)

	policyHidden := layers.Dense(ctx.In("policy_hidden"), flat, true, 128)
	policyHidden = activations.Relu(policyHidden)
	policy = layers.Dense(ctx.In("policy_head"), policyHidden, true, game.NumCells)

	valueHidden := layers.Dense(ctx.In("value_hidden"), flat, true, 64)
	valueHidden = activations.Relu(valueHidden)
	value = Tanh(layers.Dense(ctx.In("value_head"), valueHidden, true, 1))
	value = Reshape(value, batchSize)
	return
}
