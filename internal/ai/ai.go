// Package ai defines the interfaces the search engine uses to query neural
// networks, together with the score-normalization conventions and the
// fallback scorers used when no trained model is available.
package ai

import (
	"github.com/chewxy/math32"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
)

// PolicyScorer estimates, for a placement context, one logit per board cell.
// Callers apply softmax and legality masking externally (see MaskedSoftmax).
type PolicyScorer interface {
	// PolicyLogits returns game.NumCells raw logits.
	PolicyLogits(ctx features.Context) []float32
	String() string
}

// ValueScorer estimates the normalized expected final score of a context, in
// [-1, 1] (tanh-bounded).
type ValueScorer interface {
	BoardValue(ctx features.Context) float32
	String() string
}

// QScorer ranks cells for a context with one logit per cell; used only to
// prune the action set to a top-K before search.
type QScorer interface {
	QLogits(ctx features.Context) []float32
	String() string
}

// Score normalization conventions, one per network family. The value heads
// are tanh-bounded, so labels must land in [-1, 1]; each family keeps the
// convention its published weights were trained with.
const (
	// CNNScoreCenter/CNNScoreScale: spatial models use (score-80)/80.
	CNNScoreCenter = 80.0
	CNNScoreScale  = 80.0
	// GraphScoreCenter/GraphScoreScale: graph models use (score-50)/150.
	GraphScoreCenter = 50.0
	GraphScoreScale  = 150.0
	// QScoreScale: the Q ranking net regresses on score/200.
	QScoreScale = 200.0
)

// NormalizeScore maps a final game score into [-1, 1] using the convention of
// the given architecture.
func NormalizeScore(arch features.Architecture, score int) float32 {
	var v float32
	switch arch {
	case features.ArchSpatial, features.ArchOneHot:
		v = (float32(score) - CNNScoreCenter) / CNNScoreScale
	default:
		v = (float32(score) - GraphScoreCenter) / GraphScoreScale
	}
	return clampUnit(v)
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// IsFinite reports whether every value is finite.
func IsFinite(values ...float32) bool {
	for _, v := range values {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaskedSoftmax turns raw logits into a probability distribution restricted
// to the legal cells: illegal cells get probability zero, and the legal
// probabilities sum to one. Non-finite logits degrade to a uniform
// distribution over the legal cells.
func MaskedSoftmax(logits []float32, legal []int) []float32 {
	probs := make([]float32, game.NumCells)
	if len(legal) == 0 {
		return probs
	}

	finite := true
	maxLogit := math32.Inf(-1)
	for _, cell := range legal {
		if !IsFinite(logits[cell]) {
			finite = false
			break
		}
		if logits[cell] > maxLogit {
			maxLogit = logits[cell]
		}
	}
	if !finite {
		uniform := 1.0 / float32(len(legal))
		for _, cell := range legal {
			probs[cell] = uniform
		}
		return probs
	}

	var sum float32
	for _, cell := range legal {
		probs[cell] = math32.Exp(logits[cell] - maxLogit)
		sum += probs[cell]
	}
	for _, cell := range legal {
		probs[cell] /= sum
	}
	return probs
}

// TopKCells returns the k legal cells with the highest logits, in descending
// logit order. Returns all legal cells when k <= 0 or k >= len(legal).
func TopKCells(logits []float32, legal []int, k int) []int {
	if k <= 0 || k >= len(legal) {
		out := make([]int, len(legal))
		copy(out, legal)
		return out
	}
	ranked := make([]int, len(legal))
	copy(ranked, legal)
	// Partial selection by repeated max over the copy; the legal set is at
	// most 19 cells.
	for i := 0; i < k; i++ {
		best := i
		for j := i + 1; j < len(ranked); j++ {
			if logits[ranked[j]] > logits[ranked[best]] {
				best = j
			}
		}
		ranked[i], ranked[best] = ranked[best], ranked[i]
	}
	return ranked[:k]
}

// UniformPolicy is the fallback PolicyScorer: equal logits everywhere, which
// masks into a uniform prior over the legal cells.
type UniformPolicy struct{}

// PolicyLogits implements PolicyScorer.
func (UniformPolicy) PolicyLogits(features.Context) []float32 {
	return make([]float32, game.NumCells)
}

func (UniformPolicy) String() string { return "uniform-policy" }

// NeutralValue is the fallback ValueScorer: always zero.
type NeutralValue struct{}

// BoardValue implements ValueScorer.
func (NeutralValue) BoardValue(features.Context) float32 { return 0 }

func (NeutralValue) String() string { return "neutral-value" }

var (
	_ PolicyScorer = UniformPolicy{}
	_ ValueScorer  = NeutralValue{}
)
