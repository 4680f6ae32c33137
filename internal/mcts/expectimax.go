package mcts

import (
	"math"
	"math/rand/v2"

	"github.com/specialjcg/take-it-easy/internal/ai"
	"github.com/specialjcg/take-it-easy/internal/game"
)

// ExpectimaxSearcher is the experimental decision/chance alternating tree:
// decision nodes pick a cell for a known tile, chance nodes model the uniform
// draw of the next tile and aggregate child values by probability-weighted
// expectation instead of maximization.
//
// It shares the hyperparameter surface and termination rules of the
// decision-only searcher but is not a production path: its payoff depends on
// high-quality chance-probability estimates. Select it explicitly.
type ExpectimaxSearcher struct {
	value ai.ValueScorer

	hyper    *Hyperparameters
	maxDepth int
	rng      *rand.Rand
}

// NewExpectimax returns an expectimax searcher. maxDepth bounds the plies
// explored per simulation; zero means no bound.
func NewExpectimax(value ai.ValueScorer, hyper *Hyperparameters, maxDepth int, rng *rand.Rand) *ExpectimaxSearcher {
	return &ExpectimaxSearcher{
		value:    value,
		hyper:    hyper,
		maxDepth: maxDepth,
		rng:      rng,
	}
}

// nodeKind tags expectimax tree nodes.
type nodeKind int

const (
	decisionNode nodeKind = iota
	chanceNode
)

// xnode is one node of the alternating tree. Decision nodes hold the drawn
// tile and one child per legal cell; chance nodes hold one child per
// remaining tile, with uniform probabilities.
type xnode struct {
	kind nodeKind

	board *game.Board
	deck  *game.Deck
	tile  game.Tile // decision nodes only
	turn  int

	children []*xnode
	cells    []int       // decision: cell per child
	tiles    []game.Tile // chance: tile per child
	probs    []float64   // chance: probability per child

	n int
	w float64
}

func (x *xnode) avg() float64 {
	if x.n == 0 {
		return 0
	}
	return x.w / float64(x.n)
}

func (x *xnode) isTerminal(totalTurns int) bool {
	return x.turn >= totalTurns || x.board.IsFull() || x.deck.IsEmpty()
}

// Search runs the expectimax variant on a decision root and returns the same
// result shape as the decision-only engine.
func (s *ExpectimaxSearcher) Search(req Request) Result {
	if req.TotalTurns == 0 {
		req.TotalTurns = game.NumCells
	}
	legal := req.Board.LegalMoves()
	if len(legal) == 0 {
		return SentinelResult()
	}

	root := &xnode{
		kind:  decisionNode,
		board: req.Board,
		deck:  req.Deck,
		tile:  req.Tile,
		turn:  req.Turn,
	}
	s.expandDecision(root)

	numSims := s.hyper.AdaptiveSimulations(req.Turn, req.NumSimulations)
	for i := 0; i < numSims; i++ {
		s.simulate(root, req.TotalTurns, 0)
	}

	// Pick the most visited cell; ties fall to the first, and with zero
	// simulations the first legal cell.
	bestIdx := 0
	for i, c := range root.children {
		if c.n > root.children[bestIdx].n {
			bestIdx = i
		}
	}

	result := Result{BestPosition: root.cells[bestIdx]}
	sumN := 0
	for _, c := range root.children {
		sumN += c.n
	}
	if sumN > 0 {
		temp := s.hyper.Temperature(req.Turn)
		total := 0.0
		weights := make([]float64, len(root.children))
		for i, c := range root.children {
			weights[i] = math.Pow(float64(c.n), 1.0/temp)
			total += weights[i]
		}
		for i, c := range root.children {
			result.Policy[root.cells[i]] = float32(weights[i] / total)
			result.QValues[root.cells[i]] = float32(c.avg())
		}
	} else {
		uniform := 1.0 / float32(len(legal))
		for _, cell := range legal {
			result.Policy[cell] = uniform
		}
	}
	result.Subscore = float64(game.SimulateGameSmart(
		root.children[bestIdx].board, root.children[bestIdx].deck, s.rng))
	return result
}

// simulate runs one traversal from the node and returns the sampled value.
// Backups differ per node kind: decision nodes accumulate the sampled value,
// chance nodes overwrite their total with the expectation over children.
func (s *ExpectimaxSearcher) simulate(x *xnode, totalTurns, depth int) float64 {
	if x.isTerminal(totalTurns) || (s.maxDepth > 0 && depth >= s.maxDepth) {
		v := s.leafValue(x, totalTurns)
		x.n++
		x.w += v
		return v
	}

	if len(x.children) == 0 {
		switch x.kind {
		case decisionNode:
			s.expandDecision(x)
		default:
			s.expandChance(x)
		}
		if len(x.children) == 0 {
			v := s.leafValue(x, totalTurns)
			x.n++
			x.w += v
			return v
		}
	}

	var v float64
	switch x.kind {
	case decisionNode:
		childIdx := s.selectDecisionChild(x)
		v = s.simulate(x.children[childIdx], totalTurns, depth+1)
		x.n++
		x.w += v
	default:
		// Sample a child by its draw probability during simulation...
		childIdx := s.sampleChanceChild(x)
		v = s.simulate(x.children[childIdx], totalTurns, depth+1)
		// ...but back up the expectation over all children.
		x.n++
		expectation := 0.0
		for i, c := range x.children {
			expectation += x.probs[i] * c.avg()
		}
		x.w = expectation * float64(x.n)
	}
	return v
}

// expandDecision creates one chance child per legal cell.
func (s *ExpectimaxSearcher) expandDecision(x *xnode) {
	legal := x.board.LegalMoves()
	deck := x.deck.Remove(x.tile)
	for _, cell := range legal {
		board, err := x.board.Place(cell, x.tile)
		if err != nil {
			continue
		}
		x.cells = append(x.cells, cell)
		x.children = append(x.children, &xnode{
			kind:  chanceNode,
			board: board,
			deck:  deck,
			turn:  x.turn + 1,
		})
	}
}

// expandChance creates one decision child per remaining tile, uniformly
// likely.
func (s *ExpectimaxSearcher) expandChance(x *xnode) {
	tiles := x.deck.Tiles()
	if len(tiles) == 0 {
		return
	}
	p := 1.0 / float64(len(tiles))
	for _, t := range tiles {
		x.tiles = append(x.tiles, t)
		x.probs = append(x.probs, p)
		x.children = append(x.children, &xnode{
			kind:  decisionNode,
			board: x.board,
			deck:  x.deck,
			tile:  t,
			turn:  x.turn,
		})
	}
}

// selectDecisionChild uses UCB1 over the children; unvisited children win
// immediately.
func (s *ExpectimaxSearcher) selectDecisionChild(x *xnode) int {
	cPuct := s.hyper.CPuct(x.turn)
	bestIdx := 0
	bestScore := math.Inf(-1)
	for i, c := range x.children {
		var score float64
		if c.n == 0 {
			score = cPuct * 1000.0
		} else {
			score = c.avg() + cPuct*math.Sqrt(math.Log(float64(x.n)+1)/float64(c.n))
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

// sampleChanceChild draws a child according to the tile probabilities.
func (s *ExpectimaxSearcher) sampleChanceChild(x *xnode) int {
	r := s.rng.Float64()
	acc := 0.0
	for i, p := range x.probs {
		acc += p
		if r <= acc {
			return i
		}
	}
	return len(x.children) - 1
}

// leafValue scores a terminal or depth-bounded node, normalized to the value
// range: the board's final score when the game is over, otherwise the outcome
// of a smart playout.
func (s *ExpectimaxSearcher) leafValue(x *xnode, totalTurns int) float64 {
	if x.board.IsFull() || x.deck.IsEmpty() || x.turn >= totalTurns {
		return normalizedFinalScore(game.Score(x.board))
	}
	return normalizedFinalScore(game.SimulateGameSmart(x.board, x.deck, s.rng))
}

// normalizedFinalScore maps an absolute score to the [-1, 1] value range
// with the graph-network convention.
func normalizedFinalScore(score int) float64 {
	return clamp((float64(score)-ai.GraphScoreCenter)/ai.GraphScoreScale, -1, 1)
}
