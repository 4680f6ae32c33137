package session

import (
	"github.com/pkg/errors"
)

// Sentinel errors of the session engine. RPC handlers map them to error
// codes with ErrorCode; everything else surfaces as INTERNAL with an opaque
// message and unchanged state.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session is full")
	ErrInvalidState    = errors.New("operation not valid in the session's state")
	ErrInvalidMove     = errors.New("invalid move")
	ErrGameNotStarted  = errors.New("game not started")
)

// ErrorCode returns the wire error code for an error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "SESSION_NOT_FOUND"
	case errors.Is(err, ErrSessionFull):
		return "SESSION_FULL"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrInvalidMove):
		return "INVALID_MOVE"
	case errors.Is(err, ErrGameNotStarted):
		return "GAME_NOT_STARTED"
	default:
		return "INTERNAL"
	}
}
