package tracking

import (
	"errors"
	"fmt"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

var (
	errOrderIDRequired = errors.New("order id is required")
	errNilEvent        = errors.New("nil event")
	errEmptyMessage    = errors.New("error message is empty")
)

// Reduce applies ev to s and returns the resulting state. It never mutates s: maps are
// copied before they are written. A non-nil error never invalidates the returned state;
// it classifies why the event was not (fully) applied:
//
//   - ErrMalformedEvent: the event was dropped and s is returned as is.
//   - ErrReconciliationGap (*GapError): the referenced order is unknown; the id is recorded
//     in Gaps and nothing else changes.
//
// Out-of-order driver fixes are dropped silently.
func Reduce(s State, ev Event) (State, error) {
	if s.Orders == nil || s.DriverLocations == nil {
		s = normalize(s)
	}

	switch e := ev.(type) {
	case OrdersSnapshot:
		return replaceOrders(s, e)
	case OrderCreated:
		return upsertOrder(s, e.Kind(), e.Order)
	case OrderReplaced:
		return upsertOrder(s, e.Kind(), e.Order)
	case OrderStatusChanged:
		return changeStatus(s, e)
	case DriverAssigned:
		return assignDriver(s, e)
	case DriverLocationUpdated:
		if err := e.Location.Validate(); err != nil {
			return s, malformed(e.Kind(), err)
		}
		return upsertLocation(s, e.Location), nil
	case ConnectionChanged:
		s.Connection = e.Status
		if e.Status.State == Connected {
			s.LastError = ""
		}
		if e.Err != "" {
			s.LastError = e.Err
		}
		return s, nil
	case StreamFailed:
		if e.Message == "" {
			return s, malformed(e.Kind(), errEmptyMessage)
		}
		s.LastError = e.Message
		return s, nil
	case nil:
		return s, malformed("", errNilEvent)
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func normalize(s State) State {
	if s.Orders == nil {
		s.Orders = map[string]entity.Order{}
	}
	if s.DriverLocations == nil {
		s.DriverLocations = map[string]entity.DriverLocation{}
	}
	return s
}

func replaceOrders(s State, e OrdersSnapshot) (State, error) {
	orders := make(map[string]entity.Order, len(e.Orders))
	for _, o := range e.Orders {
		if err := o.Validate(); err != nil {
			return s, malformed(e.Kind(), fmt.Errorf("order %q: %w", o.ID, err))
		}
		orders[o.ID] = o.Clone()
	}
	s.Orders = orders
	s.Gaps = nil
	return s, nil
}

func upsertOrder(s State, kind Kind, o entity.Order) (State, error) {
	if err := o.Validate(); err != nil {
		return s, malformed(kind, err)
	}
	s.Orders = withOrder(s.Orders, o.Clone())
	return s, nil
}

func changeStatus(s State, e OrderStatusChanged) (State, error) {
	if e.OrderID == "" {
		return s, malformed(e.Kind(), errOrderIDRequired)
	}
	if e.NewStatus == "" {
		return s, malformed(e.Kind(), entity.ErrStatusIsRequired)
	}
	current, ok := s.Orders[e.OrderID]
	if !ok {
		return recordGap(s, e.Kind(), e.OrderID)
	}
	next := current.WithStatus(e.NewStatus, e.At).WithPayment(e.PaymentStatus, e.PaymentReleased)
	s.Orders = withOrder(s.Orders, next)
	return s, nil
}

func assignDriver(s State, e DriverAssigned) (State, error) {
	if e.OrderID == "" {
		return s, malformed(e.Kind(), errOrderIDRequired)
	}
	if e.DriverID == "" {
		return s, malformed(e.Kind(), entity.ErrDriverIsRequired)
	}
	if e.Location != nil {
		loc := *e.Location
		if loc.DriverID == "" {
			loc.DriverID = e.DriverID
		}
		if err := loc.Validate(); err != nil {
			return s, malformed(e.Kind(), err)
		}
		s = upsertLocation(s, loc)
	}

	current, ok := s.Orders[e.OrderID]
	if !ok {
		return recordGap(s, e.Kind(), e.OrderID)
	}
	s.Orders = withOrder(s.Orders, current.WithDriver(e.DriverID, e.DriverName, e.DriverPhone))
	return s, nil
}

func upsertLocation(s State, loc entity.DriverLocation) State {
	if prev, ok := s.DriverLocations[loc.DriverID]; ok && !loc.Supersedes(prev) {
		return s
	}
	next := make(map[string]entity.DriverLocation, len(s.DriverLocations)+1)
	for id, l := range s.DriverLocations {
		next[id] = l
	}
	next[loc.DriverID] = loc
	s.DriverLocations = next
	return s
}

func recordGap(s State, kind Kind, orderID string) (State, error) {
	gapErr := &GapError{Kind: kind, OrderID: orderID}
	for _, id := range s.Gaps {
		if id == orderID {
			return s, gapErr
		}
	}
	gaps := make([]string, 0, len(s.Gaps)+1)
	gaps = append(gaps, s.Gaps...)
	s.Gaps = append(gaps, orderID)
	return s, gapErr
}

func withOrder(orders map[string]entity.Order, o entity.Order) map[string]entity.Order {
	next := make(map[string]entity.Order, len(orders)+1)
	for id, existing := range orders {
		next[id] = existing
	}
	next[o.ID] = o
	return next
}
