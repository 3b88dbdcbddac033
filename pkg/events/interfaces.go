package events

import (
	"context"
	"time"
)

// Event is anything flowing through a Dispatcher: a wire event read off the tracking
// stream or a lifecycle signal raised by the connection itself.
type Event interface {
	GetName() string
	GetDateTime() time.Time
	GetPayload() any
}

// EventHandler implementations must be comparable; Register and Remove match by identity.
type EventHandler interface {
	Handle(ctx context.Context, event Event)
}
