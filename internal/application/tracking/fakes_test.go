package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/usecase/order"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	domain "github.com/DioGolang/GoTrack/internal/domain/tracking"
	"github.com/DioGolang/GoTrack/pkg/events"
)

const (
	kindDomain    = "domain"
	kindMalformed = "garbled"
)

type emission struct {
	command string
	orderID string
}

type fakeStream struct {
	mu        sync.Mutex
	handlers  map[string][]events.EventHandler
	emitted   []emission
	connected bool
	status    domain.ConnectionStatus
}

func newFakeStream() *fakeStream {
	return &fakeStream{handlers: map[string][]events.EventHandler{}}
}

func (f *fakeStream) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	f.status = domain.ConnectionStatus{State: domain.Connected}
	return nil
}

func (f *fakeStream) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.status = domain.ConnectionStatus{State: domain.Disconnected}
}

func (f *fakeStream) OnEvent(kind string, h events.EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[kind] = append(f.handlers[kind], h)
}

func (f *fakeStream) OffEvent(kind string, h events.EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hs := f.handlers[kind]
	for i, registered := range hs {
		if registered == h {
			f.handlers[kind] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

func (f *fakeStream) handlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, hs := range f.handlers {
		n += len(hs)
	}
	return n
}

func (f *fakeStream) Emit(_ context.Context, command string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := emission{command: command}
	if p, ok := payload.(outbound.OrderCommand); ok {
		e.orderID = p.OrderID
	}
	f.emitted = append(f.emitted, e)
	return nil
}

func (f *fakeStream) Status() domain.ConnectionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeStream) isConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeStream) count(command, orderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.emitted {
		if e.command == command && e.orderID == orderID {
			n++
		}
	}
	return n
}

// push dispatches synchronously, the way the stream manager does.
func (f *fakeStream) push(name string, payload any) {
	f.mu.Lock()
	hs := append([]events.EventHandler(nil), f.handlers[name]...)
	f.mu.Unlock()
	for _, h := range hs {
		h.Handle(context.Background(), events.NewEvent(name, payload))
	}
}

func (f *fakeStream) pushEvent(ev domain.Event) {
	f.push(kindDomain, ev)
}

// fakeDecoder passes domain events through untouched.
type fakeDecoder struct{}

func (fakeDecoder) Kinds() []string { return []string{kindDomain, kindMalformed} }

func (fakeDecoder) Decode(ev events.Event) (domain.Event, error) {
	if ev.GetName() == kindMalformed {
		return nil, fmt.Errorf("%w: missing id", domain.ErrMalformedEvent)
	}
	if d, ok := ev.GetPayload().(domain.Event); ok {
		return d, nil
	}
	return nil, domain.ErrUnknownEvent
}

type fakeGateway struct {
	created order.CreateOutput
	updated entity.Order
	err     error
}

func (g *fakeGateway) CreateOrder(context.Context, order.CreateInput) (order.CreateOutput, error) {
	if g.err != nil {
		return order.CreateOutput{}, g.err
	}
	return g.created, nil
}

func (g *fakeGateway) SetStatus(_ context.Context, in order.SetStatusInput) (entity.Order, error) {
	return g.reply(in.OrderID)
}

func (g *fakeGateway) AssignDriver(_ context.Context, in order.AssignDriverInput) (entity.Order, error) {
	return g.reply(in.OrderID)
}

func (g *fakeGateway) ConfirmDelivery(_ context.Context, in order.ConfirmDeliveryInput) (entity.Order, error) {
	return g.reply(in.OrderID)
}

func (g *fakeGateway) reply(orderID string) (entity.Order, error) {
	if g.err != nil {
		return entity.Order{}, g.err
	}
	return g.updated, nil
}

func rejected(op, orderID string) error {
	return &order.CommandFailure{Op: op, OrderID: orderID, Reason: "Invalid status", Err: errors.New("order api returned 400")}
}

type fakeLocations struct {
	mu      sync.Mutex
	written []entity.DriverLocation
	err     error
}

func (f *fakeLocations) UpdateLocation(_ context.Context, loc entity.DriverLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, loc)
	return nil
}

func (f *fakeLocations) GetNearestDrivers(context.Context, float64, float64, float64) ([]outbound.NearbyDriver, error) {
	return nil, nil
}

func (f *fakeLocations) writes() []entity.DriverLocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.DriverLocation(nil), f.written...)
}
