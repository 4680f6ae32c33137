// Package recording persists finished games as CSV rows for later training
// runs. It is an out-of-band collaborator of the session engine: recording
// failures are reported to the caller, logged there, and never affect game
// correctness.
package recording

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/session"
	"k8s.io/klog/v2"
)

// csvHeader of the game files.
var csvHeader = []string{
	"session_id", "turn", "player_type", "player_id",
	"board_encoded", "tile", "position", "final_score", "human_won",
}

// Recorder appends finished games to a CSV file in the output directory.
// Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	path string
}

var _ session.Recorder = (*Recorder)(nil)

// New creates a recorder writing to <outputDir>/games_<date>.csv, creating
// the directory and the header as needed.
func New(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create recording directory %s", outputDir)
	}
	path := filepath.Join(outputDir, "games_"+time.Now().Format("2006-01-02")+".csv")
	r := &Recorder{path: path}
	if err := r.ensureHeader(); err != nil {
		return nil, err
	}
	klog.V(1).Infof("Recording finished games to %s", path)
	return r, nil
}

func (r *Recorder) ensureHeader() error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", r.path)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush CSV header")
}

// RecordGame implements session.Recorder: one row per move of the finished
// game.
func (r *Recorder) RecordGame(sessionID, gameMode string, moves []session.MoveRecord,
	finalScores map[string]int, humanWon bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", r.path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, mv := range moves {
		row := []string{
			sessionID,
			strconv.Itoa(mv.Turn),
			mv.PlayerType.String(),
			mv.PlayerID,
			mv.Board,
			mv.Tile.Code(),
			strconv.Itoa(mv.Position),
			strconv.Itoa(finalScores[mv.PlayerID]),
			strconv.FormatBool(humanWon),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "failed to record session %s", sessionID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "failed to flush session %s", sessionID)
	}
	klog.V(1).Infof("Recorded %d moves of session %s (mode %s)", len(moves), sessionID, gameMode)
	return nil
}
