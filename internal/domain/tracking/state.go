package tracking

import (
	"sort"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type ConnectionState string

const (
	Disconnected ConnectionState = "disconnected"
	Connecting   ConnectionState = "connecting"
	Connected    ConnectionState = "connected"
)

type ConnectionStatus struct {
	State   ConnectionState `json:"state"`
	Attempt int             `json:"attempt"`
}

// State is the canonical tracking view. Reduce never mutates a State it was given; values
// handed to observers are deep copies. Gaps lists order ids referenced by events that could
// not be applied since the last snapshot.
type State struct {
	Orders          map[string]entity.Order          `json:"orders"`
	DriverLocations map[string]entity.DriverLocation `json:"driver_locations"`
	Connection      ConnectionStatus                 `json:"connection"`
	LastError       string                           `json:"last_error,omitempty"`
	Gaps            []string                         `json:"gaps,omitempty"`
}

func NewState() State {
	return State{
		Orders:          map[string]entity.Order{},
		DriverLocations: map[string]entity.DriverLocation{},
		Connection:      ConnectionStatus{State: Disconnected},
	}
}

func (s State) Clone() State {
	out := s
	out.Orders = make(map[string]entity.Order, len(s.Orders))
	for id, o := range s.Orders {
		out.Orders[id] = o.Clone()
	}
	out.DriverLocations = make(map[string]entity.DriverLocation, len(s.DriverLocations))
	for id, l := range s.DriverLocations {
		out.DriverLocations[id] = l
	}
	if s.Gaps != nil {
		out.Gaps = append([]string(nil), s.Gaps...)
	}
	return out
}

func (s State) Order(id string) (entity.Order, bool) {
	o, ok := s.Orders[id]
	return o, ok
}

// OrderList returns orders by creation time, then id.
func (s State) OrderList() []entity.Order {
	out := make([]entity.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
