package core

import "errors"

// Error codes for rejections crossing into the presentation layer.
const (
	ErrCodeRejected     = "rejected"
	ErrCodeRoomNotFound = "room_not_found"
	ErrCodeRoomFull     = "room_full"
	ErrCodeBadRequest   = "bad_request"
)

var (
	// ErrNoSession is returned when an action is attempted without a
	// joined room identity. A local precondition failure, never a crash.
	ErrNoSession = errors.New("no active session")
	// ErrNotPlayer is returned when a spectator attempts a move.
	ErrNotPlayer = errors.New("spectators cannot move")
)

// Rejection is an action the room authority refused. It is the only
// transport-borne failure surfaced to the user; local state stays
// untouched until an authoritative snapshot arrives.
type Rejection struct {
	Code    string
	Message string
}

func (e *Rejection) Error() string {
	return e.Message
}

// IsRejection reports whether err is an authority rejection and returns it.
func IsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
