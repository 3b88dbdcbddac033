package stream

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected       = errors.New("stream not connected")
	ErrAlreadyStarted     = errors.New("stream manager already started")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
	ErrConnectionClosed   = errors.New("connection closed by peer")
)

// ConnectivityError reports a transport that could not be reached or was dropped. It is
// delivered through the "error" signal, never returned from Connect.
type ConnectivityError struct {
	Op      string
	Attempt int
	Err     error
}

func (e *ConnectivityError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("stream %s (attempt %d): %v", e.Op, e.Attempt, e.Err)
	}
	return fmt.Sprintf("stream %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
