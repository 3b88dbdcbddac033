package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrReconciliationGap = errors.New("reconciliation gap")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrUnknownEvent      = errors.New("unknown event kind")
)

// GapError reports an event that referenced an order the state does not hold.
// The next snapshot repairs it.
type GapError struct {
	Kind    Kind
	OrderID string
}

func (e *GapError) Error() string {
	return fmt.Sprintf("%s: %s references unknown order %q", ErrReconciliationGap, e.Kind, e.OrderID)
}

func (e *GapError) Unwrap() error { return ErrReconciliationGap }

func malformed(kind Kind, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformedEvent, kind, err)
}
