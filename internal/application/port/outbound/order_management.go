package outbound

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

type CreateOrderRequest struct {
	IdempotencyKey  string               `json:"-"`
	Amount          decimal.Decimal      `json:"amount"`
	Currency        string               `json:"currency"`
	Description     string               `json:"order_description"`
	DeliveryAddress string               `json:"delivery_address"`
	RecipientName   string               `json:"recipient_name"`
	RecipientPhone  string               `json:"recipient_phone"`
	PaymentMethod   entity.PaymentMethod `json:"payment_method"`
	RiderName       string               `json:"rider_name,omitempty"`
	RiderPhone      string               `json:"rider_phone,omitempty"`
	BuyerEmail      string               `json:"buyer_email,omitempty"`
}

// PaymentInvoice describes how the buyer pays into escrow. Settlement is the payment
// collaborator's concern.
type PaymentInvoice struct {
	ID               string `json:"invoice_id,omitempty"`
	PaymentURL       string `json:"payment_url,omitempty"`
	LightningInvoice string `json:"lightning_invoice,omitempty"`
}

type CreatedOrder struct {
	Order   entity.Order
	Invoice *PaymentInvoice
}

type AssignDriverRequest struct {
	OrderID     string `json:"-"`
	DriverID    string `json:"driver_id"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
}

// OrderManagement is the request/response collaborator that owns orders.
type OrderManagement interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreatedOrder, error)
	SetStatus(ctx context.Context, orderID string, status entity.Status) (entity.Order, error)
	AssignDriver(ctx context.Context, req AssignDriverRequest) (entity.Order, error)
	ConfirmDelivery(ctx context.Context, orderID string) (entity.Order, error)
}

// Errors an OrderManagement implementation wraps so callers can classify failures.
var (
	ErrOrderRejected = errors.New("order management rejected the command")
	ErrOrderNotFound = errors.New("order not found")
	ErrUnavailable   = errors.New("order management unavailable")
)
