package stream

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrMalformedFrame is returned by Conn.ReadFrame for a frame that could not be decoded.
// The connection stays usable.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one message on the tracking stream, in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	// Trace carries propagation headers from transports that have them out of band.
	Trace map[string]string `json:"-"`
}

type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// Conn is one live transport session. WriteFrame may be called concurrently with
// ReadFrame; Close unblocks a pending ReadFrame.
type Conn interface {
	ReadFrame(ctx context.Context) (Frame, error)
	WriteFrame(ctx context.Context, f Frame) error
	Close() error
}
