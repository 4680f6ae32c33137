package session

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/game"
	"github.com/specialjcg/take-it-easy/internal/generics"
)

// PlayerPlateau is one player's board in the game-state blob.
type PlayerPlateau struct {
	Tiles              []string `json:"tiles"`
	AvailablePositions []int    `json:"available_positions"`
}

// StateBlob is the JSON document embedded in RPC responses: every player's
// board, the announced tile and the turn bookkeeping.
type StateBlob struct {
	PlayerPlateaus    map[string]PlayerPlateau `json:"player_plateaus"`
	CurrentTile       string                   `json:"current_tile"`
	CurrentTurn       int                      `json:"current_turn"`
	Scores            map[string]int           `json:"scores"`
	WaitingForPlayers []string                 `json:"waiting_for_players"`
}

// BuildStateBlob serializes a snapshot into the wire blob.
func BuildStateBlob(snap Snapshot) (string, error) {
	blob := StateBlob{
		PlayerPlateaus:    make(map[string]PlayerPlateau, len(snap.Boards)),
		CurrentTile:       snap.CurrentTile.Code(),
		CurrentTurn:       snap.TurnNumber,
		Scores:            snap.Scores,
		WaitingForPlayers: snap.Waiting,
	}
	if !snap.TileDrawn {
		blob.CurrentTile = game.EmptyTile.Code()
	}
	for playerID, board := range snap.Boards {
		blob.PlayerPlateaus[playerID] = PlayerPlateau{
			Tiles: generics.SliceMap(board.Tiles(), func(t game.Tile) string {
				return t.Code()
			}),
			AvailablePositions: board.LegalMoves(),
		}
	}
	encoded, err := json.Marshal(blob)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal game state blob")
	}
	return string(encoded), nil
}

// ParseStateBlob decodes the wire blob.
func ParseStateBlob(encoded string) (StateBlob, error) {
	var blob StateBlob
	if err := json.Unmarshal([]byte(encoded), &blob); err != nil {
		return blob, errors.Wrap(err, "failed to parse game state blob")
	}
	return blob, nil
}

// MoveData is the payload of MakeMove's move_data JSON string.
type MoveData struct {
	Position int `json:"position"`
}

// ParseMoveData decodes a move_data payload.
func ParseMoveData(encoded string) (MoveData, error) {
	var move MoveData
	if err := json.Unmarshal([]byte(encoded), &move); err != nil {
		return move, errors.Wrapf(ErrInvalidMove, "malformed move data %q: %v", encoded, err)
	}
	return move, nil
}
