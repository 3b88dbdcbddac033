package entity

// StatusView is the client-facing projection of a lifecycle code. It is never stored.
type StatusView struct {
	Status             Status `json:"status"`
	DisplayStatus      string `json:"display_status"`
	DisplayLabel       string `json:"display_label"`
	DeliveryPhaseLabel string `json:"delivery_phase_label"`
}

var statusViews = map[Status]StatusView{
	StatusPending:   {StatusPending, "pending", "Pending", "Processing"},
	StatusConfirmed: {StatusConfirmed, "escrow", "In Escrow", "Pending"},
	StatusPreparing: {StatusPreparing, "escrow", "In Escrow", "Preparing"},
	StatusReady:     {StatusReady, "not-arrived", "Not Yet Arrived", "Awaiting Pickup"},
	StatusPickedUp:  {StatusPickedUp, "not-arrived", "Not Yet Arrived", "In Transit"},
	StatusInTransit: {StatusInTransit, "delivery", "Out for Delivery", "Arriving Today"},
	StatusDelivered: {StatusDelivered, "delivered", "Delivered", "Delivered"},
	StatusCancelled: {StatusCancelled, "cancelled", "Cancelled", "Cancelled"},
}

// MapStatus translates a backend lifecycle code into its display projection. Unrecognized
// codes map exactly like pending.
func MapStatus(raw string) StatusView {
	s, ok := ParseStatus(raw)
	if !ok {
		s = StatusPending
	}
	return statusViews[s]
}
