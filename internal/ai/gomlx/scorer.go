package gomlx

import (
	"fmt"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/ai"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
	"k8s.io/klog/v2"
)

// Scorer wraps a Model behind the ai.PolicyScorer and ai.ValueScorer
// interfaces. Forward passes may run concurrently from multiple sessions; a
// read lock only excludes them from checkpoint saves.
//
// Any panic escaping the GoMLX stack (malformed weights, backend failures) is
// caught and degraded to a neutral prediction; it is never surfaced to the
// search.
type Scorer struct {
	model      Model
	exec       *context.Exec
	checkpoint *checkpoints.Handler

	mu sync.RWMutex
}

var (
	_ ai.PolicyScorer = (*Scorer)(nil)
	_ ai.ValueScorer  = (*Scorer)(nil)
)

// NewScorer builds the executor for a model and optionally attaches a
// checkpoint directory. With checkpointDir empty the model keeps its fresh
// random weights: legal but weak play.
func NewScorer(model Model, checkpointDir string) (*Scorer, error) {
	s := &Scorer{model: model}

	if checkpointDir != "" {
		var err error
		s.checkpoint, err = checkpoints.
			Build(model.Context()).
			Dir(checkpointDir).
			Immediate().
			Keep(10).
			Done()
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to build checkpoint for model %s in %s",
				model.Name(), checkpointDir)
		}
	}

	_ = backend()
	muNewExec.Lock()
	defer muNewExec.Unlock()
	ctx := model.Context().Checked(false)
	s.exec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, input *graph.Node) []*graph.Node {
			policy, value := s.model.ForwardGraph(ctx, input)
			return []*graph.Node{policy, value}
		})

	// Force variable creation before any concurrent use.
	s.warmUp()
	return s, nil
}

// warmUp runs a forward pass on an empty starting position.
func (s *Scorer) warmUp() {
	fctx := features.Context{
		Board:      game.NewBoard(),
		Tile:       game.FullDeckTiles()[0],
		Deck:       game.NewDeck(),
		Turn:       0,
		TotalTurns: game.NumCells,
	}
	_, _ = s.forward(fctx)
}

// String implements fmt.Stringer.
func (s *Scorer) String() string {
	if s == nil {
		return "<nil>[GoMLX]"
	}
	if s.checkpoint == nil {
		return fmt.Sprintf("%s[GoMLX]", s.model.Name())
	}
	return fmt.Sprintf("%s[GoMLX]@%s", s.model.Name(), s.checkpoint.Dir())
}

// forward runs the model on one context, returning 19 policy logits and the
// value estimate.
func (s *Scorer) forward(fctx features.Context) ([]float32, float32) {
	input := createInput(s.model.Architecture(), fctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var policy []float32
	var value float32
	err := exceptions.TryCatch[error](func() {
		results := s.exec.Call(graph.DonateTensorBuffer(input, backend()))
		policy = tensors.CopyFlatData[float32](results[0])
		value = tensors.CopyFlatData[float32](results[1])[0]
	})
	if err != nil {
		klog.Warningf("%s forward pass failed, degrading to neutral prediction: %v", s, err)
		return make([]float32, game.NumCells), 0
	}
	if len(policy) != game.NumCells {
		klog.Warningf("%s returned %d policy logits, want %d; degrading", s, len(policy), game.NumCells)
		return make([]float32, game.NumCells), 0
	}
	return policy, value
}

// PolicyLogits implements ai.PolicyScorer.
func (s *Scorer) PolicyLogits(fctx features.Context) []float32 {
	policy, _ := s.forward(fctx)
	return policy
}

// BoardValue implements ai.ValueScorer.
func (s *Scorer) BoardValue(fctx features.Context) float32 {
	_, value := s.forward(fctx)
	return value
}

// Save writes the current weights to the checkpoint directory, if any.
func (s *Scorer) Save() error {
	if s.checkpoint == nil {
		klog.Warningf("model %s has no checkpoint directory, not saving", s.model.Name())
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoint.Save()
}

// QScorer wraps a QModel behind ai.QScorer, with the same degradation
// policy as Scorer.
type QScorer struct {
	model      QModel
	exec       *context.Exec
	checkpoint *checkpoints.Handler

	mu sync.RWMutex
}

var _ ai.QScorer = (*QScorer)(nil)

// NewQScorer builds the executor for a ranking model.
func NewQScorer(model QModel, checkpointDir string) (*QScorer, error) {
	s := &QScorer{model: model}

	if checkpointDir != "" {
		var err error
		s.checkpoint, err = checkpoints.
			Build(model.Context()).
			Dir(checkpointDir).
			Immediate().
			Keep(10).
			Done()
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to build checkpoint for model %s in %s",
				model.Name(), checkpointDir)
		}
	}

	_ = backend()
	muNewExec.Lock()
	defer muNewExec.Unlock()
	ctx := model.Context().Checked(false)
	s.exec = context.NewExec(backend(), ctx,
		func(ctx *context.Context, input *graph.Node) *graph.Node {
			return s.model.ForwardGraph(ctx, input)
		})
	return s, nil
}

// String implements fmt.Stringer.
func (s *QScorer) String() string {
	if s.checkpoint == nil {
		return fmt.Sprintf("%s[GoMLX]", s.model.Name())
	}
	return fmt.Sprintf("%s[GoMLX]@%s", s.model.Name(), s.checkpoint.Dir())
}

// QLogits implements ai.QScorer.
func (s *QScorer) QLogits(fctx features.Context) []float32 {
	input := createInput(s.model.Architecture(), fctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var logits []float32
	err := exceptions.TryCatch[error](func() {
		results := s.exec.Call(graph.DonateTensorBuffer(input, backend()))
		logits = tensors.CopyFlatData[float32](results[0])
	})
	if err != nil || len(logits) != game.NumCells {
		klog.Warningf("%s ranking pass failed, degrading to neutral ranking: %v", s, err)
		return make([]float32, game.NumCells)
	}
	return logits
}
