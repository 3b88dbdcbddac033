package tracking

import (
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type Kind string

const (
	KindOrdersSnapshot     Kind = "orders_snapshot"
	KindOrderCreated       Kind = "order_created"
	KindOrderStatusChanged Kind = "order_status_changed"
	KindOrderReplaced      Kind = "order_replaced"
	KindDriverAssigned     Kind = "driver_assigned"
	KindDriverLocation     Kind = "driver_location"
	KindConnectionChanged  Kind = "connection_changed"
	KindStreamFailed       Kind = "stream_error"
)

// Event is anything the reducer knows how to apply.
type Event interface {
	Kind() Kind
}

type OrdersSnapshot struct {
	Orders []entity.Order
}

type OrderCreated struct {
	Order entity.Order
}

type OrderStatusChanged struct {
	OrderID   string
	NewStatus entity.Status
	At        time.Time
	// set by payment_confirmed and delivery_confirmed
	PaymentStatus   string
	PaymentReleased bool
}

type OrderReplaced struct {
	Order entity.Order
}

type DriverAssigned struct {
	OrderID     string
	DriverID    string
	DriverName  string
	DriverPhone string
	Location    *entity.DriverLocation
}

type DriverLocationUpdated struct {
	Location entity.DriverLocation
}

type ConnectionChanged struct {
	Status ConnectionStatus
	Err    string
}

// StreamFailed carries a connectivity error or an error reported by the tracking server.
type StreamFailed struct {
	Message string
}

func (OrdersSnapshot) Kind() Kind        { return KindOrdersSnapshot }
func (OrderCreated) Kind() Kind          { return KindOrderCreated }
func (OrderStatusChanged) Kind() Kind    { return KindOrderStatusChanged }
func (OrderReplaced) Kind() Kind         { return KindOrderReplaced }
func (DriverAssigned) Kind() Kind        { return KindDriverAssigned }
func (DriverLocationUpdated) Kind() Kind { return KindDriverLocation }
func (ConnectionChanged) Kind() Kind     { return KindConnectionChanged }
func (StreamFailed) Kind() Kind          { return KindStreamFailed }
