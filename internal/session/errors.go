package session

import (
	"errors"
	"fmt"
)

// ErrSessionConflict is returned when starting a session while one is already
// active for a different workout. The caller must finish or discard first.
var ErrSessionConflict = errors.New("another workout session is already active")

// ErrNoActiveSession is returned by transitions that require a live session.
var ErrNoActiveSession = errors.New("no active session")

// ValidationError rejects invalid user input to a transition. The session is
// left untouched.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}
