// The play command runs a terminal match: a human against the MCTS player,
// both placing the same drawn tiles on their own boards.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/janpfeifer/must"
	"github.com/specialjcg/take-it-easy/internal/ai/gomlx"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/mcts"
	"github.com/specialjcg/take-it-easy/internal/parameters"
	"github.com/specialjcg/take-it-easy/internal/ui/cli"
	"github.com/specialjcg/take-it-easy/internal/ui/spinning"
	"k8s.io/klog/v2"
)

var (
	flagConfig      = flag.String("config", "model=gat", "AI configuration, comma-separated key=value pairs.")
	flagSimulations = flag.Int("simulations", 150, "Base MCTS simulation count per AI move.")
	flagSeed        = flag.Uint64("seed", 0, "Seed for tile draws and the search; 0 picks one from the clock.")
	flagNoColor     = flag.Bool("no_color", false, "Disable colored board rendering.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	seed := *flagSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	params := parameters.NewFromConfigString(*flagConfig)
	networks := must.M1(gomlx.New(params))
	must.M(params.CheckExhausted())

	hyper := mcts.DefaultHyperparameters()
	must.M(hyper.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	spinning.SafeInterrupt(cancel, 3*time.Second)

	rng := rand.New(rand.NewPCG(seed, 0xcafe))
	searcher := mcts.New(networks.Policy(), networks.Value(), networks.Architecture(), hyper, rng)
	if q := networks.Q(); q != nil {
		searcher = searcher.WithQNet(q)
	}

	ui := cli.New(os.Stdin, os.Stdout, !*flagNoColor)
	humanBoard := game.NewBoard()
	aiBoard := game.NewBoard()
	deck := game.NewDeck()

	for turn := 0; turn < game.NumCells; turn++ {
		tile, nextDeck, err := deck.DrawRandom(rng)
		must.M(err)
		deck = nextDeck

		fmt.Printf("\n--- Turn %d/%d ---\n", turn+1, game.NumCells)
		ui.PrintTile(tile)
		ui.PrintBoard(humanBoard)

		cell := must.M1(ui.PromptMove(humanBoard))
		humanBoard = must.M1(humanBoard.Place(cell, tile))

		spinner := spinning.New(ctx)
		result := searcher.Search(mcts.Request{
			Board:          aiBoard,
			Deck:           deck,
			Tile:           tile,
			Turn:           turn,
			TotalTurns:     game.NumCells,
			NumSimulations: *flagSimulations,
		})
		spinner.Done()

		aiBoard = must.M1(aiBoard.Place(result.BestPosition, tile))
		fmt.Printf("MCTS plays cell %d (on track for ~%.0f points)\n",
			result.BestPosition, result.Subscore)
	}

	fmt.Println("\nYour board:")
	ui.PrintBoard(humanBoard)
	fmt.Println("\nMCTS board:")
	ui.PrintBoard(aiBoard)
	ui.PrintScores(map[string]int{
		"You":  game.Score(humanBoard),
		"MCTS": game.Score(aiBoard),
	})
}
