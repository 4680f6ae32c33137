// The takeiteasy server exposes the multi-player session engine over the
// game RPC surface.
//
// Pre-trained network weights are looked up under $TAKEITEASY_MODELS; without
// them the engine plays with randomly initialized networks (legal but weak).
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/janpfeifer/must"
	"github.com/specialjcg/take-it-easy/internal/ai/gomlx"
	"github.com/specialjcg/take-it-easy/internal/mcts"
	"github.com/specialjcg/take-it-easy/internal/parameters"
	"github.com/specialjcg/take-it-easy/internal/recording"
	"github.com/specialjcg/take-it-easy/internal/server"
	"github.com/specialjcg/take-it-easy/internal/session"
	"github.com/specialjcg/take-it-easy/internal/ui/spinning"
	"k8s.io/klog/v2"
)

var (
	flagPort = flag.Int("port", 50051, "Port to serve the game RPC on.")
	flagConfig = flag.String("config", "model=gat",
		"AI configuration, as comma-separated key=value pairs. Keys: model "+
			"(resnet, resnet_onehot, gnn, gat, transformer), qnet.")
	flagSimulations  = flag.Int("simulations", 150, "Base MCTS simulation count per AI move.")
	flagSinglePlayer = flag.Bool("single_player", false, "Auto-create an AI opponent in every session.")
	flagRecordDir    = flag.String("record_dir", "", "Directory for finished-game CSV records. Empty disables recording.")
	flagSeed         = flag.Uint64("seed", 0, "Seed for tile draws and searches; 0 picks one from the clock.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	params := parameters.NewFromConfigString(*flagConfig)
	networks := must.M1(gomlx.New(params))
	must.M(params.CheckExhausted())

	hyper := mcts.DefaultHyperparameters()
	must.M(hyper.Validate())

	cfg := session.Config{
		Policy:         networks.Policy(),
		Value:          networks.Value(),
		QNet:           networks.Q(),
		Arch:           networks.Architecture(),
		Hyper:          hyper,
		NumSimulations: *flagSimulations,
		SinglePlayer:   *flagSinglePlayer,
		Seed:           *flagSeed,
	}
	if *flagRecordDir != "" {
		cfg.Recorder = must.M1(recording.New(*flagRecordDir))
	}

	manager := session.NewManager(cfg)
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	spinning.SafeInterrupt(cancel, 3*time.Second)

	if *flagSinglePlayer {
		klog.Infof("Single-player mode: every session gets an MCTS opponent (%d simulations)", *flagSimulations)
	} else {
		klog.Infof("Multiplayer mode: sessions host humans plus optional MCTS players (%d simulations)", *flagSimulations)
	}

	srv := server.New(manager)
	must.M(srv.ListenAndServe(ctx, fmt.Sprintf(":%d", *flagPort)))
}
