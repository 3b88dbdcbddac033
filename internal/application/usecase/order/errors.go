package order

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCommand  = errors.New("invalid command")
	ErrCommandTimeout  = errors.New("command timed out")
	ErrInvalidResponse = errors.New("invalid response from order management")
)

// CommandFailure is returned for every rejected, invalid or timed-out command. Local
// state is never touched when a command fails.
type CommandFailure struct {
	Op      string
	OrderID string
	Reason  string
	Err     error
}

func (f *CommandFailure) Error() string {
	if f.OrderID != "" {
		return fmt.Sprintf("%s %s failed: %s", f.Op, f.OrderID, f.Reason)
	}
	return fmt.Sprintf("%s failed: %s", f.Op, f.Reason)
}

func (f *CommandFailure) Unwrap() error { return f.Err }
