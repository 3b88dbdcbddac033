package tracking

import (
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	domain "github.com/DioGolang/GoTrack/internal/domain/tracking"
)

// OrderView pairs an order with its presentation mapping. The mapping is computed when a
// view is built and is never stored.
type OrderView struct {
	Order   entity.Order      `json:"order"`
	Display entity.StatusView `json:"display"`
	Active  bool              `json:"active"`
}

// View is an immutable snapshot handed to observers.
type View struct {
	State  domain.State `json:"state"`
	Orders []OrderView  `json:"orders"`
}

// buildView projects s onto scope. A nil scope selects every order; otherwise only the
// scoped orders and the locations of their drivers are kept, so an empty scope selects nothing.
func buildView(s domain.State, scope map[string]struct{}) View {
	scoped := s.Clone()
	if scope != nil {
		scoped.Orders = make(map[string]entity.Order, len(scope))
		scoped.DriverLocations = make(map[string]entity.DriverLocation)
		for id := range scope {
			o, ok := s.Orders[id]
			if !ok {
				continue
			}
			scoped.Orders[id] = o.Clone()
			if !o.HasDriver() {
				continue
			}
			if loc, ok := s.DriverLocations[o.DriverID]; ok {
				scoped.DriverLocations[o.DriverID] = loc
			}
		}
	}

	list := scoped.OrderList()
	orders := make([]OrderView, 0, len(list))
	for _, o := range list {
		orders = append(orders, OrderView{
			Order:   o.Clone(),
			Display: entity.MapStatus(string(o.Status)),
			Active:  o.Status.IsActive(),
		})
	}
	return View{State: scoped, Orders: orders}
}
