package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/domain/tracking"
	"github.com/DioGolang/GoTrack/internal/infra/wire"
	"github.com/DioGolang/GoTrack/pkg/events"
)

// Wire event names published by the tracking server.
const (
	WireActiveOrders         = "active_orders"
	WireNewOrder             = "new_order"
	WireOrderStatusUpdate    = "order_status_update"
	WireStatusChanged        = "status_changed"
	WireOrderData            = "order_data"
	WireDriverAssigned       = "driver_assigned"
	WireDriverLocationUpdate = "driver_location_update"
	WireDriverLocation       = "driver_location"
	WirePaymentConfirmed     = "payment_confirmed"
	WireDeliveryConfirmed    = "delivery_confirmed"
	WireDeliverySuccess      = "delivery_success"
	WireError                = "error"
)

var errMissingField = errors.New("missing field")

// Decoder maps raw stream events to reducer events.
type Decoder struct{}

var _ outbound.EventDecoder = Decoder{}

func NewDecoder() Decoder { return Decoder{} }

func (Decoder) Kinds() []string {
	return []string{
		WireActiveOrders, WireNewOrder, WireOrderStatusUpdate, WireStatusChanged, WireOrderData,
		WireDriverAssigned, WireDriverLocationUpdate, WireDriverLocation, WirePaymentConfirmed,
		WireDeliveryConfirmed, WireDeliverySuccess, WireError,
	}
}

func (d Decoder) Decode(ev events.Event) (tracking.Event, error) {
	name := ev.GetName()
	raw, err := rawPayload(ev.GetPayload())
	if err != nil {
		return nil, malformed(name, err)
	}

	switch name {
	case WireActiveOrders:
		orders, err := decodeOrders(raw)
		if err != nil {
			return nil, malformed(name, err)
		}
		return tracking.OrdersSnapshot{Orders: orders}, nil

	case WireNewOrder:
		o, err := wire.DecodeOrder(raw)
		if err != nil {
			return nil, malformed(name, err)
		}
		return tracking.OrderCreated{Order: o}, nil

	case WireStatusChanged, WireOrderData:
		o, err := wire.DecodeOrder(raw)
		if err != nil {
			return nil, malformed(name, err)
		}
		return tracking.OrderReplaced{Order: o}, nil

	case WireDeliverySuccess:
		var p struct {
			Order json.RawMessage `json:"order"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformed(name, err)
		}
		if len(p.Order) == 0 {
			return nil, malformed(name, fmt.Errorf("%w: order", errMissingField))
		}
		o, err := wire.DecodeOrder(p.Order)
		if err != nil {
			return nil, malformed(name, err)
		}
		return tracking.OrderReplaced{Order: o}, nil

	case WireOrderStatusUpdate, WirePaymentConfirmed, WireDeliveryConfirmed:
		var p wireStatusUpdate
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformed(name, err)
		}
		status := wire.FirstNonEmpty(p.NewStatus, p.Status)
		if status == "" && name == WirePaymentConfirmed {
			status = string(entity.StatusConfirmed)
		}
		if status == "" && name == WireDeliveryConfirmed {
			status = string(entity.StatusDelivered)
		}
		return tracking.OrderStatusChanged{
			OrderID:         p.OrderID,
			NewStatus:       wire.Status(status),
			At:              p.Timestamp.Time,
			PaymentStatus:   wire.PaymentStatus(p.PaymentStatus),
			PaymentReleased: p.PaymentReleased,
		}, nil

	case WireDriverAssigned:
		var p wireDriverAssigned
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformed(name, err)
		}
		out := tracking.DriverAssigned{
			OrderID:     p.OrderID,
			DriverID:    p.DriverID,
			DriverName:  wire.FirstNonEmpty(p.DriverName, p.RiderName),
			DriverPhone: wire.FirstNonEmpty(p.DriverPhone, p.RiderPhone),
		}
		if p.Location != nil {
			loc, err := p.Location.toEntity(p.DriverID)
			if err != nil {
				return nil, malformed(name, err)
			}
			out.Location = &loc
		}
		return out, nil

	case WireDriverLocationUpdate, WireDriverLocation:
		var p wireLocation
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformed(name, err)
		}
		loc, err := p.toEntity("")
		if err != nil {
			return nil, malformed(name, err)
		}
		return tracking.DriverLocationUpdated{Location: loc}, nil

	case WireError:
		var p struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &p)
		}
		msg := wire.FirstNonEmpty(p.Message, p.Error)
		if msg == "" {
			msg = "server reported an error"
		}
		return tracking.StreamFailed{Message: msg}, nil
	}

	return nil, fmt.Errorf("%w: %s", tracking.ErrUnknownEvent, name)
}

func malformed(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", tracking.ErrMalformedEvent, name, err)
}

func rawPayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	case string:
		return json.RawMessage(p), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}

// decodeOrders accepts a bare array or an object wrapping it under "orders".
func decodeOrders(raw json.RawMessage) ([]entity.Order, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: orders", errMissingField)
	}
	var list []wire.Order
	if trimmed[0] == '{' {
		var wrapped struct {
			Orders []wire.Order `json:"orders"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		list = wrapped.Orders
	} else if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}

	orders := make([]entity.Order, 0, len(list))
	for _, w := range list {
		orders = append(orders, w.Entity())
	}
	return orders, nil
}

type wireStatusUpdate struct {
	OrderID         string    `json:"order_id"`
	NewStatus       string    `json:"new_status"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentReleased bool      `json:"payment_released"`
	Timestamp       wire.Time `json:"timestamp"`
}

type wireDriverAssigned struct {
	OrderID     string        `json:"order_id"`
	DriverID    string        `json:"driver_id"`
	DriverName  string        `json:"driver_name"`
	RiderName   string        `json:"riderName"`
	DriverPhone string        `json:"driver_phone"`
	RiderPhone  string        `json:"riderPhone"`
	Location    *wireLocation `json:"driver_location"`
}

type wireLocation struct {
	DriverID  string    `json:"driver_id"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	Heading   float64   `json:"heading"`
	Speed     float64   `json:"speed"`
	Timestamp wire.Time `json:"timestamp"`
}

func (w wireLocation) toEntity(fallbackDriver string) (entity.DriverLocation, error) {
	if w.Lat == nil || w.Lng == nil {
		return entity.DriverLocation{}, fmt.Errorf("%w: lat/lng", errMissingField)
	}
	if w.Timestamp.IsZero() {
		return entity.DriverLocation{}, fmt.Errorf("%w: timestamp", errMissingField)
	}
	return entity.DriverLocation{
		DriverID:  wire.FirstNonEmpty(w.DriverID, fallbackDriver),
		Latitude:  *w.Lat,
		Longitude: *w.Lng,
		Heading:   w.Heading,
		Speed:     w.Speed,
		Timestamp: w.Timestamp.Time,
	}, nil
}
