package outbound

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/domain/tracking"
	"github.com/DioGolang/GoTrack/pkg/events"
)

// Lifecycle signals dispatched by the stream alongside wire events.
const (
	SignalConnect    = "connect"
	SignalDisconnect = "disconnect"
	SignalError      = "error"
	SignalHandshake  = "connected"
	SignalState      = "state"
)

// Commands understood by the tracking server.
const (
	CommandGetActiveOrders  = "get_active_orders"
	CommandTrackOrder       = "track_order"
	CommandStopTracking     = "stop_tracking"
	CommandSimulateDelivery = "simulate_delivery"
	CommandConfirmDelivery  = "confirm_delivery"
)

// OrderCommand is the payload of every per-order stream command.
type OrderCommand struct {
	OrderID string `json:"order_id"`
}

type TrackingStream interface {
	Connect(ctx context.Context) error
	Disconnect()
	OnEvent(kind string, handler events.EventHandler)
	OffEvent(kind string, handler events.EventHandler)
	Emit(ctx context.Context, command string, payload any) error
	Status() tracking.ConnectionStatus
}

// EventDecoder turns a raw stream event into something the reducer can apply.
type EventDecoder interface {
	Decode(event events.Event) (tracking.Event, error)
	Kinds() []string
}
