package entity

import "strings"

// Status is the backend lifecycle code. It is the authoritative order state; display
// labels are derived from it by MapStatus.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var lifecycle = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusPickedUp,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

func Statuses() []Status {
	out := make([]Status, len(lifecycle))
	copy(out, lifecycle)
	return out
}

// ParseStatus normalizes case, surrounding whitespace and hyphenated spellings.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	for _, known := range lifecycle {
		if s == known {
			return s, true
		}
	}
	return s, false
}

// IsActive reports whether the order still belongs in the active set served by snapshots.
func (s Status) IsActive() bool {
	return s != StatusDelivered && s != StatusCancelled
}

func (s Status) String() string { return string(s) }
