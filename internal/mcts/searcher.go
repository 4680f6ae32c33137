package mcts

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/specialjcg/take-it-easy/internal/ai"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/strategy"
	"k8s.io/klog/v2"
)

// RootSelection picks the bandit policy used at the root.
type RootSelection int

const (
	// SelectPUCT is the default prior-weighted upper-confidence selection.
	SelectPUCT RootSelection = iota
	// SelectGumbel scores actions with Q + Gumbel(0,1)/temperature.
	SelectGumbel
)

// FinalMove picks how the returned move is chosen after the simulations.
type FinalMove int

const (
	// MostVisited returns the child with the highest visit count (default).
	MostVisited FinalMove = iota
	// MaxQ returns the child with the highest mean value; used for
	// deterministic late-game play.
	MaxQ
	// SampleTemperature samples from N^(1/temperature); used when generating
	// self-play data.
	SampleTemperature
)

// Request is one decision point: the board, the deck and a tile already
// drawn. ExplorationPrior, when non-nil, is a distribution over cells blended
// into the root priors with the configured epsilon (callers typically pass
// DirichletNoise).
type Request struct {
	Board *game.Board
	Deck  *game.Deck
	Tile  game.Tile

	Turn       int
	TotalTurns int

	// NumSimulations is the base simulation budget, scaled by the turn-phase
	// multiplier. Zero is valid: the engine still returns a legal move from
	// the priors alone.
	NumSimulations int

	ExplorationPrior []float32
}

// Searcher runs decision-only searches. It is parameterized by the shared
// networks and owns no state across calls except its RNG; a Searcher must
// not be used from more than one goroutine.
type Searcher struct {
	policy ai.PolicyScorer
	value  ai.ValueScorer
	qnet   ai.QScorer

	arch     features.Architecture
	hyper    *Hyperparameters
	schedule WeightSchedule

	rootSelection RootSelection
	finalMove     FinalMove

	// maxTime, when positive, caps the wall-clock budget of a search on top
	// of the simulation count.
	maxTime time.Duration

	rng *rand.Rand
}

// New returns a Searcher over the given networks. arch picks the score
// normalization convention of the value network.
func New(policy ai.PolicyScorer, value ai.ValueScorer, arch features.Architecture,
	hyper *Hyperparameters, rng *rand.Rand) *Searcher {
	return &Searcher{
		policy:   policy,
		value:    value,
		arch:     arch,
		hyper:    hyper,
		schedule: ScheduleHybrid,
		rng:      rng,
	}
}

// WithQNet attaches a ranking network used to prune the root action set.
func (s *Searcher) WithQNet(q ai.QScorer) *Searcher {
	s.qnet = q
	return s
}

// WithSchedule selects the evaluation-weight adaptation policy.
func (s *Searcher) WithSchedule(schedule WeightSchedule) *Searcher {
	s.schedule = schedule
	return s
}

// WithRootSelection selects the root bandit policy.
func (s *Searcher) WithRootSelection(sel RootSelection) *Searcher {
	s.rootSelection = sel
	return s
}

// WithFinalMove selects how the returned move is chosen.
func (s *Searcher) WithFinalMove(mode FinalMove) *Searcher {
	s.finalMove = mode
	return s
}

// WithMaxTime caps the wall-clock time spent simulating; zero removes the
// cap. The simulation count still applies.
func (s *Searcher) WithMaxTime(d time.Duration) *Searcher {
	s.maxTime = d
	return s
}

// child bookkeeping of one root action.
type child struct {
	cell  int
	board *game.Board

	prior         float64
	valueEstimate float64
	netValid      bool

	n int
	w float64

	raveN int
	raveW float64
}

func (c *child) q() float64 {
	if c.n == 0 {
		return 0
	}
	return c.w / float64(c.n)
}

// Search runs the configured number of simulations and returns the decision.
// It always returns a legal move when one exists and never panics on
// malformed network output.
func (s *Searcher) Search(req Request) Result {
	if req.TotalTurns == 0 {
		req.TotalTurns = game.NumCells
	}
	legal := req.Board.LegalMoves()
	if len(legal) == 0 {
		return SentinelResult()
	}

	startTime := time.Now()
	rootCtx := features.Context{
		Board:      req.Board,
		Tile:       req.Tile,
		Deck:       req.Deck,
		Turn:       req.Turn,
		TotalTurns: req.TotalTurns,
	}

	priors := ai.MaskedSoftmax(s.policy.PolicyLogits(rootCtx), legal)
	priors = s.blendExplorationPrior(priors, req.ExplorationPrior, legal)

	candidates := legal
	if s.qnet != nil {
		candidates = ai.TopKCells(s.qnet.QLogits(rootCtx), legal, s.hyper.TopK(req.Turn))
	}

	children, childDeck := s.expand(req, rootCtx, candidates, priors)
	children = s.pruneByValue(children, req.Turn)

	cPuct := s.hyper.CPuct(req.Turn) * s.hyper.VarianceMultiplier(valueVariance(children))
	byCell := make(map[int]*child, len(children))
	for _, c := range children {
		byCell[c.cell] = c
	}

	numSims := s.hyper.AdaptiveSimulations(req.Turn, req.NumSimulations)
	for i := 0; i < numSims; i++ {
		if s.maxTime > 0 && time.Since(startTime) > s.maxTime {
			klog.V(1).Infof("Turn %d: search time budget %s exhausted after %d simulations",
				req.Turn, s.maxTime, i)
			break
		}
		c := s.selectChild(children, cPuct, req.Turn)
		v := s.evaluate(c, childDeck, req, priors, byCell)
		c.n++
		c.w += v
	}

	if klog.V(1).Enabled() {
		klog.Infof("Turn %d: MCTS ran %d simulations over %d candidates in %s",
			req.Turn, numSims, len(children), time.Since(startTime))
	}

	best := s.pickFinal(children, priors, req.Turn)
	result := Result{BestPosition: best.cell}
	s.fillDistributions(&result, children, priors, legal, req.Turn)
	result.Subscore = float64(game.SimulateGameSmart(best.board, childDeck, s.rng))
	return result
}

// blendExplorationPrior mixes the optional caller-supplied noise into the
// priors and re-normalizes over the legal cells.
func (s *Searcher) blendExplorationPrior(priors, noise []float32, legal []int) []float32 {
	eps := float32(s.hyper.DirichletEpsilon)
	if noise == nil || eps <= 0 {
		return priors
	}
	blended := make([]float32, game.NumCells)
	var sum float32
	for _, cell := range legal {
		blended[cell] = (1-eps)*priors[cell] + eps*noise[cell]
		sum += blended[cell]
	}
	if sum <= 0 {
		return priors
	}
	for _, cell := range legal {
		blended[cell] /= sum
	}
	return blended
}

// expand materializes the root children: one board per candidate cell, plus
// the network value estimate of each resulting position. The deck after the
// placement is the same for every child.
func (s *Searcher) expand(req Request, rootCtx features.Context, candidates []int, priors []float32) ([]*child, *game.Deck) {
	childDeck := req.Deck.Remove(req.Tile)
	children := make([]*child, 0, len(candidates))
	for _, cell := range candidates {
		board, err := req.Board.Place(cell, req.Tile)
		if err != nil {
			// Candidates come from LegalMoves; a failure here is a bug
			// upstream, skip the cell rather than abort the decision.
			klog.Errorf("Skipping illegal candidate %d: %v", cell, err)
			continue
		}
		c := &child{
			cell:  cell,
			board: board,
			prior: float64(priors[cell]),
		}
		v := float64(s.value.BoardValue(features.Context{
			Board:      board,
			Tile:       req.Tile,
			Deck:       childDeck,
			Turn:       req.Turn + 1,
			TotalTurns: req.TotalTurns,
		}))
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			c.valueEstimate = clamp(v, -1, 1)
			c.netValid = true
		}
		children = append(children, c)
	}
	return children, childDeck
}

// pruneByValue drops the candidates whose value estimate falls in the bottom
// band of the observed range. The best candidate always survives.
func (s *Searcher) pruneByValue(children []*child, turn int) []*child {
	if len(children) <= 1 {
		return children
	}
	minV, maxV := math.Inf(1), math.Inf(-1)
	anyValid := false
	for _, c := range children {
		if !c.netValid {
			continue
		}
		anyValid = true
		minV = math.Min(minV, c.valueEstimate)
		maxV = math.Max(maxV, c.valueEstimate)
	}
	if !anyValid || maxV-minV < 1e-9 {
		return children
	}

	threshold := minV + (maxV-minV)*s.hyper.PruneRatio(turn)
	kept := make([]*child, 0, len(children))
	for _, c := range children {
		if !c.netValid || c.valueEstimate >= threshold {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return children
	}
	return kept
}

// valueVariance of the children's network estimates.
func valueVariance(children []*child) float64 {
	n := 0
	mean := 0.0
	for _, c := range children {
		if c.netValid {
			mean += c.valueEstimate
			n++
		}
	}
	if n < 2 {
		return 0
	}
	mean /= float64(n)
	variance := 0.0
	for _, c := range children {
		if c.netValid {
			d := c.valueEstimate - mean
			variance += d * d
		}
	}
	return variance / float64(n)
}

// selectChild picks the next action to simulate.
func (s *Searcher) selectChild(children []*child, cPuct float64, turn int) *child {
	if s.rootSelection == SelectGumbel {
		return s.selectGumbel(children, turn)
	}

	sumN := 0
	sumW := 0.0
	for _, c := range children {
		sumN += c.n
		sumW += c.w
	}
	// Optimistic default for unvisited actions: the parent's running mean,
	// or 0.5 before any visit.
	defaultQ := 0.5
	if sumN > 0 {
		defaultQ = sumW / float64(sumN)
	}
	sqrtSumN := math.Sqrt(float64(sumN))

	var best *child
	bestScore := math.Inf(-1)
	for _, c := range children {
		q := defaultQ
		if c.n > 0 {
			q = c.q()
		}
		if c.raveN > 0 && s.hyper.RaveK > 0 {
			beta := s.hyper.RaveBeta(c.n)
			q = beta*(c.raveW/float64(c.raveN)) + (1-beta)*q
		}
		score := q + cPuct*c.prior*sqrtSumN/float64(1+c.n)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// evaluate runs the four-signal evaluation of a child and feeds the RAVE
// accumulators from the rollout traces.
func (s *Searcher) evaluate(c *child, childDeck *game.Deck, req Request, priors []float32, byCell map[int]*child) float64 {
	legalPriors := priors // entropy helpers tolerate the zero-padded form
	wNet, wRollout, wHeur, wCtx := s.hyper.EvaluationWeights(s.schedule, req.Turn, legalPriors)

	// Rollout average, normalized to the network's value range.
	rolloutCount := s.hyper.RolloutCount(c.valueEstimate)
	rolloutSum := 0.0
	for r := 0; r < rolloutCount; r++ {
		score, trace := game.SimulateGameSmartTrace(c.board, childDeck, s.rng)
		norm := float64(ai.NormalizeScore(s.arch, score))
		rolloutSum += norm
		for _, cell := range trace {
			if rc, ok := byCell[cell]; ok {
				rc.raveN++
				rc.raveW += norm
			}
		}
	}
	rolloutAvg := math.NaN() // a zero rollout budget drops the signal
	if rolloutCount > 0 {
		rolloutAvg = rolloutSum / float64(rolloutCount)
	}

	entropyFactor := strategy.PolicyEntropy(legalPriors)
	heuristic := math.Tanh(strategy.PositionEvaluation(req.Board, c.cell, req.Tile) / 10.0)
	contextual := strategy.ContextualBoost(req.Board, c.cell, req.Tile, req.Turn, entropyFactor)

	// Blend, redistributing the weight of any non-finite signal over the
	// remaining ones.
	type signal struct {
		value  float64
		weight float64
	}
	signals := []signal{
		{c.valueEstimate, wNet},
		{rolloutAvg, wRollout},
		{heuristic, wHeur},
		{contextual, wCtx},
	}
	if !c.netValid {
		signals[0].weight = 0
	}
	total, weighted := 0.0, 0.0
	for _, sig := range signals {
		if math.IsNaN(sig.value) || math.IsInf(sig.value, 0) {
			continue
		}
		total += sig.weight
		weighted += sig.weight * sig.value
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}

// pickFinal applies the configured final-move policy. With zero simulations
// it falls back to the highest prior.
func (s *Searcher) pickFinal(children []*child, priors []float32, turn int) *child {
	sumN := 0
	for _, c := range children {
		sumN += c.n
	}
	if sumN == 0 {
		return maxPriorChild(children, priors)
	}

	switch s.finalMove {
	case MaxQ:
		var best *child
		bestQ := math.Inf(-1)
		for _, c := range children {
			if c.n > 0 && c.q() > bestQ {
				bestQ = c.q()
				best = c
			}
		}
		if best != nil {
			return best
		}
		return maxPriorChild(children, priors)

	case SampleTemperature:
		temp := s.hyper.Temperature(turn)
		weights := make([]float64, len(children))
		total := 0.0
		for i, c := range children {
			weights[i] = math.Pow(float64(c.n), 1.0/temp)
			total += weights[i]
		}
		r := s.rng.Float64() * total
		for i, c := range children {
			r -= weights[i]
			if r <= 0 {
				return c
			}
		}
		return children[len(children)-1]

	default: // MostVisited
		best := children[0]
		for _, c := range children[1:] {
			if c.n > best.n {
				best = c
			}
		}
		return best
	}
}

func maxPriorChild(children []*child, priors []float32) *child {
	best := children[0]
	for _, c := range children[1:] {
		if priors[c.cell] > priors[best.cell] {
			best = c
		}
	}
	return best
}

// fillDistributions writes the visit-count policy and per-cell Q values into
// the result.
func (s *Searcher) fillDistributions(result *Result, children []*child, priors []float32, legal []int, turn int) {
	sumN := 0
	for _, c := range children {
		sumN += c.n
	}
	if sumN == 0 {
		// No simulations ran: expose the masked priors directly.
		for _, cell := range legal {
			result.Policy[cell] = priors[cell]
		}
		return
	}

	temp := s.hyper.Temperature(turn)
	total := 0.0
	weights := make([]float64, len(children))
	for i, c := range children {
		weights[i] = math.Pow(float64(c.n), 1.0/temp)
		total += weights[i]
	}
	for i, c := range children {
		result.Policy[c.cell] = float32(weights[i] / total)
		result.QValues[c.cell] = float32(c.q())
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DirichletNoise samples a symmetric Dirichlet(alpha) distribution over the
// given cells, returned zero-padded to the full board. Callers pass it as
// Request.ExplorationPrior to inject root exploration noise.
func DirichletNoise(alpha float64, cells []int, rng *rand.Rand) []float32 {
	noise := make([]float32, game.NumCells)
	if len(cells) == 0 {
		return noise
	}
	samples := make([]float64, len(cells))
	total := 0.0
	for i := range cells {
		samples[i] = gammaSample(alpha, rng)
		total += samples[i]
	}
	if total <= 0 {
		uniform := 1.0 / float32(len(cells))
		for _, cell := range cells {
			noise[cell] = uniform
		}
		return noise
	}
	for i, cell := range cells {
		noise[cell] = float32(samples[i] / total)
	}
	return noise
}

// gammaSample draws from Gamma(alpha, 1) with the Marsaglia-Tsang method,
// using the alpha-boost transform for alpha < 1.
func gammaSample(alpha float64, rng *rand.Rand) float64 {
	if alpha < 1 {
		u := rng.Float64()
		if u == 0 {
			u = 1e-12
		}
		return gammaSample(alpha+1, rng) * math.Pow(u, 1.0/alpha)
	}
	d := alpha - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d-d*v+d*math.Log(v) {
			return d * v
		}
	}
}
