// Package mcts implements the neural-guided Monte Carlo Tree Search that
// picks tile placements.
//
// The production path is a decision-only tree: the root is the current
// decision point with a tile already drawn, each child is a legal cell, and
// leaf evaluation blends the value network, heuristic rollouts, a positional
// heuristic and a contextual line-completion boost. An experimental
// Expectimax variant with alternating decision/chance nodes sits behind an
// explicit mode flag (see ExpectimaxSearcher).
//
// References for the selection formula and the visit-count policy:
//
//   - https://suragnair.github.io/posts/alphazero.html by Surag Nair
//   - Mastering Chess and Shogi by Self-Play with a General Reinforcement
//     Learning Algorithm, https://arxiv.org/abs/1712.01815
//   - Policy improvement by planning with Gumbel (Danihelka et al., 2022)
//     for the Gumbel-Top-k root selection.
package mcts

import (
	"math"

	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/strategy"
)

// Hyperparameters gathers every tunable of the search in one structure.
// The zero value is unusable; start from DefaultHyperparameters.
type Hyperparameters struct {
	// Exploration constant of PUCT by turn phase (0-4, 5-15, 16+).
	CPuctEarly, CPuctMid, CPuctLate float64

	// Multipliers on CPuct when the candidate value estimates are unusually
	// spread (high variance: uncertain position) or unusually tight.
	VarianceMultHigh, VarianceMultLow float64

	// Value-threshold pruning ratio by turn phase: candidates whose value
	// estimate falls below min + ratio*(max-min) are dropped.
	PruneEarly, PruneMid1, PruneMid2, PruneLate float64

	// Adaptive rollout counts by leaf value estimate.
	RolloutStrong, RolloutMedium, RolloutDefault, RolloutWeak int

	// Evaluation blend over the four signals; must sum to 1.0.
	WeightCNN, WeightRollout, WeightHeuristic, WeightContextual float64

	// Multipliers applied to the base simulation count by turn phase.
	SimMultEarly, SimMultMid, SimMultLate float64

	// Temperature schedule: linear decay from TempInitial to TempFinal
	// between TempDecayStart and TempDecayEnd.
	TempInitial, TempFinal       float64
	TempDecayStart, TempDecayEnd int

	// RAVE blending constant: beta = sqrt(k / (3N + k)).
	RaveK float64

	// Root exploration noise: P' = (1-eps)*P + eps*noise.
	DirichletAlpha, DirichletEpsilon float64

	// Q-net action pruning at the root, by turn phase (larger early).
	TopKEarly, TopKLate int
}

// DefaultHyperparameters returns the tuned defaults.
func DefaultHyperparameters() *Hyperparameters {
	return &Hyperparameters{
		CPuctEarly: 4.2,
		CPuctMid:   3.8,
		CPuctLate:  3.0,

		VarianceMultHigh: 1.3,
		VarianceMultLow:  0.85,

		PruneEarly: 0.05,
		PruneMid1:  0.10,
		PruneMid2:  0.15,
		PruneLate:  0.20,

		RolloutStrong:  3,
		RolloutMedium:  5,
		RolloutDefault: 7,
		RolloutWeak:    9,

		WeightCNN:        0.60,
		WeightRollout:    0.20,
		WeightHeuristic:  0.10,
		WeightContextual: 0.10,

		SimMultEarly: 0.67,
		SimMultMid:   1.0,
		SimMultLate:  1.67,

		TempInitial:    1.8,
		TempFinal:      0.5,
		TempDecayStart: 7,
		TempDecayEnd:   13,

		RaveK: 10.0,

		DirichletAlpha:   0.15,
		DirichletEpsilon: 0.5,

		TopKEarly: 8,
		TopKLate:  6,
	}
}

// Validate checks the evaluation weights sum to 1.0 within tolerance.
func (h *Hyperparameters) Validate() error {
	sum := h.WeightCNN + h.WeightRollout + h.WeightHeuristic + h.WeightContextual
	if math.Abs(sum-1.0) > 0.01 {
		return errors.Errorf("evaluation weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// CPuct returns the exploration constant for a turn.
func (h *Hyperparameters) CPuct(turn int) float64 {
	switch {
	case turn < 5:
		return h.CPuctEarly
	case turn > 15:
		return h.CPuctLate
	default:
		return h.CPuctMid
	}
}

// VarianceMultiplier scales CPuct by how spread the candidate value
// estimates are.
func (h *Hyperparameters) VarianceMultiplier(variance float64) float64 {
	switch {
	case variance > 0.5:
		return h.VarianceMultHigh
	case variance > 0.2:
		return 1.1
	case variance > 0.05:
		return 1.0
	default:
		return h.VarianceMultLow
	}
}

// PruneRatio returns the value-threshold pruning ratio for a turn.
func (h *Hyperparameters) PruneRatio(turn int) float64 {
	switch {
	case turn < 5:
		return h.PruneEarly
	case turn < 10:
		return h.PruneMid1
	case turn < 15:
		return h.PruneMid2
	default:
		return h.PruneLate
	}
}

// RolloutCount returns how many rollouts to spend on a leaf given its
// normalized value estimate: confident values justify fewer rollouts.
func (h *Hyperparameters) RolloutCount(valueEstimate float64) int {
	switch {
	case valueEstimate > 0.7:
		return h.RolloutStrong
	case valueEstimate > 0.2:
		return h.RolloutMedium
	case valueEstimate < -0.4:
		return h.RolloutWeak
	default:
		return h.RolloutDefault
	}
}

// AdaptiveSimulations scales the base simulation count by turn phase: late
// decisions are more critical and get more simulations.
func (h *Hyperparameters) AdaptiveSimulations(turn, baseSimulations int) int {
	mult := h.SimMultMid
	switch {
	case turn < 5:
		mult = h.SimMultEarly
	case turn > 15:
		mult = h.SimMultLate
	}
	return int(math.Round(float64(baseSimulations) * mult))
}

// Temperature returns the exploration temperature for a turn, decaying
// linearly between TempDecayStart and TempDecayEnd.
func (h *Hyperparameters) Temperature(turn int) float64 {
	switch {
	case turn < h.TempDecayStart:
		return h.TempInitial
	case turn >= h.TempDecayEnd:
		return h.TempFinal
	default:
		progress := float64(turn-h.TempDecayStart) / float64(h.TempDecayEnd-h.TempDecayStart)
		return h.TempInitial + progress*(h.TempFinal-h.TempInitial)
	}
}

// TopK returns the Q-net pruning width for a turn.
func (h *Hyperparameters) TopK(turn int) int {
	if turn < 10 {
		return h.TopKEarly
	}
	return h.TopKLate
}

// RaveBeta returns the RAVE blending factor for a child visited n times.
func (h *Hyperparameters) RaveBeta(n int) float64 {
	return math.Sqrt(h.RaveK / (3.0*float64(n) + h.RaveK))
}

// WeightSchedule names a policy for adapting the network/rollout weights of
// the evaluation blend. Heuristic and contextual weights stay fixed; the
// schedules trade mass between the network value and the rollout average.
type WeightSchedule int

const (
	// ScheduleStatic keeps the configured weights as-is.
	ScheduleStatic WeightSchedule = iota
	// ScheduleTurn trusts rollouts early and the network late.
	ScheduleTurn
	// ScheduleEntropy gates the network weight by policy confidence.
	ScheduleEntropy
	// ScheduleHybrid applies ScheduleTurn then fine-tunes by entropy. This is
	// the default.
	ScheduleHybrid
)

// EvaluationWeights returns (network, rollout, heuristic, contextual)
// weights for a decision, according to the schedule.
func (h *Hyperparameters) EvaluationWeights(schedule WeightSchedule, turn int, priors []float32) (wNet, wRollout, wHeur, wCtx float64) {
	wHeur, wCtx = h.WeightHeuristic, h.WeightContextual
	other := wHeur + wCtx

	switch schedule {
	case ScheduleStatic:
		return h.WeightCNN, h.WeightRollout, wHeur, wCtx

	case ScheduleTurn:
		wNet, wRollout = h.turnWeights(turn, other)
		return

	case ScheduleEntropy:
		entropy := strategy.PolicyEntropy(priors)
		// Confident policy (low entropy): up to 0.65 network weight;
		// uncertain policy: down to 0.25.
		wNet = 0.65 - entropy*(0.65-0.25)
		wRollout = 1.0 - wNet - other
		return

	default: // ScheduleHybrid
		wNet, _ = h.turnWeights(turn, other)
		entropy := strategy.PolicyEntropy(priors)
		wNet *= 1.0 - entropy*0.3
		wRollout = math.Max(0, 1.0-wNet-other)
		return
	}
}

// turnWeights is the coarse turn-phase split, rescaled so the four weights
// sum to one.
func (h *Hyperparameters) turnWeights(turn int, other float64) (wNet, wRollout float64) {
	switch {
	case turn <= 5:
		wNet, wRollout = 0.10, 0.80
	case turn <= 11:
		wNet, wRollout = 0.20, 0.70
	default:
		wNet, wRollout = 0.35, 0.55
	}
	scale := (1.0 - other) / (wNet + wRollout)
	return wNet * scale, wRollout * scale
}
