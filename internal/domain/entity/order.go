package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "BTC"

type PaymentMethod string

const (
	PaymentBitcoin   PaymentMethod = "bitcoin"
	PaymentLightning PaymentMethod = "lightning"
)

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Order is the tracked view of an order owned by the order-management collaborator.
// Values are copied freely; Clone is required only because DeliveryLocation is a pointer.
type Order struct {
	ID               string          `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Description      string          `json:"description"`
	DeliveryAddress  string          `json:"delivery_address"`
	RecipientName    string          `json:"recipient_name"`
	RecipientPhone   string          `json:"recipient_phone"`
	PaymentMethod    PaymentMethod   `json:"payment_method,omitempty"`
	PaymentStatus    string          `json:"payment_status,omitempty"`
	PaymentReleased  bool            `json:"payment_released,omitempty"`
	DriverID         string          `json:"driver_id,omitempty"`
	DriverName       string          `json:"driver_name,omitempty"`
	DriverPhone      string          `json:"driver_phone,omitempty"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at,omitempty"`
	DeliveryLocation *Coordinates    `json:"delivery_location,omitempty"`
}

func (o Order) Validate() error {
	if o.ID == "" {
		return ErrIDIsRequired
	}
	if o.Status == "" {
		return ErrStatusIsRequired
	}
	if o.DeliveryLocation != nil && !o.DeliveryLocation.Valid() {
		return ErrInvalidCoordinates
	}
	return nil
}

func (o Order) Clone() Order {
	if o.DeliveryLocation != nil {
		loc := *o.DeliveryLocation
		o.DeliveryLocation = &loc
	}
	return o
}

func (o Order) HasDriver() bool {
	return o.DriverID != ""
}

// WithStatus returns a copy with only the lifecycle fields changed.
func (o Order) WithStatus(status Status, at time.Time) Order {
	o = o.Clone()
	o.Status = status
	if !at.IsZero() {
		o.UpdatedAt = at
	}
	return o
}

// WithPayment returns a copy with the escrow fields updated. An empty status keeps the
// previous one and a released payment stays released.
func (o Order) WithPayment(status string, released bool) Order {
	o = o.Clone()
	if status != "" {
		o.PaymentStatus = status
	}
	o.PaymentReleased = o.PaymentReleased || released
	return o
}

// WithDriver returns a copy with the driver fields set. Empty name/phone keep the previous values.
func (o Order) WithDriver(driverID, name, phone string) Order {
	o = o.Clone()
	o.DriverID = driverID
	if name != "" {
		o.DriverName = name
	}
	if phone != "" {
		o.DriverPhone = phone
	}
	return o
}
