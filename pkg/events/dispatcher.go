package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Wildcard handlers receive every dispatched event.
const Wildcard = "*"

var ErrHandlerAlreadyRegistered = errors.New("handler already registered")

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]EventHandler)}
}

func (d *Dispatcher) Register(eventName string, handler EventHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.handlers[eventName] {
		if h == handler {
			return ErrHandlerAlreadyRegistered
		}
	}
	d.handlers[eventName] = append(d.handlers[eventName], handler)
	return nil
}

// Dispatch runs handlers synchronously, in registration order, so delivery order matches
// the order events were dispatched in.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	d.mu.RLock()
	named := d.handlers[event.GetName()]
	wild := d.handlers[Wildcard]
	targets := make([]EventHandler, 0, len(named)+len(wild))
	targets = append(targets, named...)
	targets = append(targets, wild...)
	d.mu.RUnlock()

	for _, h := range targets {
		h.Handle(ctx, event)
	}
	return nil
}

func (d *Dispatcher) Remove(eventName string, handler EventHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	hs := d.handlers[eventName]
	for i, h := range hs {
		if h == handler {
			d.handlers[eventName] = append(hs[:i:i], hs[i+1:]...)
			return nil
		}
	}
	return nil
}

type funcHandler struct {
	fn func(ctx context.Context, event Event)
}

func (f *funcHandler) Handle(ctx context.Context, event Event) { f.fn(ctx, event) }

// HandlerFunc adapts fn to EventHandler. Every call returns a distinct handler.
func HandlerFunc(fn func(ctx context.Context, event Event)) EventHandler {
	return &funcHandler{fn: fn}
}

// Generic is a plain named event carrying an arbitrary payload.
type Generic struct {
	Name     string
	Payload  any
	DateTime time.Time
}

func NewEvent(name string, payload any) *Generic {
	return &Generic{Name: name, Payload: payload, DateTime: time.Now()}
}

func (e *Generic) GetName() string        { return e.Name }
func (e *Generic) GetDateTime() time.Time { return e.DateTime }
func (e *Generic) GetPayload() any        { return e.Payload }
