package order

import (
	"github.com/shopspring/decimal"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// Input

type CreateInput struct {
	// IdempotencyKey is forwarded to order management; one is generated when empty.
	IdempotencyKey  string          `json:"-"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Description     string          `json:"order_description" validate:"required,max=500"`
	DeliveryAddress string          `json:"delivery_address" validate:"required,max=500"`
	RecipientName   string          `json:"recipient_name" validate:"required,max=100"`
	RecipientPhone  string          `json:"recipient_phone" validate:"required,min=7,max=20"`
	PaymentMethod   string          `json:"payment_method" validate:"omitempty,oneof=bitcoin lightning"`
	RiderName       string          `json:"rider_name" validate:"omitempty,max=100"`
	RiderPhone      string          `json:"rider_phone" validate:"omitempty,min=7,max=20"`
	BuyerEmail      string          `json:"buyer_email" validate:"omitempty,email"`
}

type SetStatusInput struct {
	OrderID string `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type AssignDriverInput struct {
	OrderID     string `json:"order_id" validate:"required"`
	DriverID    string `json:"driver_id" validate:"required"`
	DriverName  string `json:"driver_name" validate:"omitempty,max=100"`
	DriverPhone string `json:"driver_phone" validate:"omitempty,min=7,max=20"`
}

type ConfirmDeliveryInput struct {
	OrderID string `json:"order_id" validate:"required"`
}

// Output

type CreateOutput struct {
	Order   entity.Order             `json:"order"`
	Invoice *outbound.PaymentInvoice `json:"payment_invoice,omitempty"`
}
