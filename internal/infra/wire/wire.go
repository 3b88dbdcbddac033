package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

var ErrEmptyOrder = errors.New("empty order payload")

// Order is the order payload shared by the stream and the order API. It tolerates both
// the snake_case and camelCase spellings the backend has used.
type Order struct {
	ID                    string              `json:"id"`
	OrderID               string              `json:"order_id"`
	Amount                decimal.NullDecimal `json:"amount"`
	AmountBTC             decimal.NullDecimal `json:"amount_btc"`
	Currency              string              `json:"currency"`
	Description           string              `json:"description"`
	OrderDescription      string              `json:"order_description"`
	OrderDescriptionCamel string              `json:"orderDescription"`
	DeliveryAddress       string              `json:"delivery_address"`
	DeliveryAddressCamel  string              `json:"deliveryAddress"`
	RecipientName         string              `json:"recipient_name"`
	RecipientNameCamel    string              `json:"recipientName"`
	RecipientPhone        string              `json:"recipient_phone"`
	RecipientPhoneCamel   string              `json:"recipientPhone"`
	PaymentMethod         string              `json:"payment_method"`
	PaymentStatus         string              `json:"payment_status"`
	PaymentReleased       bool                `json:"payment_released"`
	DriverID              string              `json:"driver_id"`
	DriverName            string              `json:"driver_name"`
	RiderName             string              `json:"riderName"`
	DriverPhone           string              `json:"driver_phone"`
	RiderPhone            string              `json:"riderPhone"`
	Status                string              `json:"status"`
	CreatedAt             Time                `json:"created_at"`
	UpdatedAt             Time                `json:"updated_at"`
	DeliveryLocation      *entity.Coordinates `json:"delivery_location"`
}

func (w Order) Entity() entity.Order {
	amount := w.Amount
	if !amount.Valid {
		amount = w.AmountBTC
	}
	o := entity.Order{
		ID:              FirstNonEmpty(w.ID, w.OrderID),
		Currency:        w.Currency,
		Description:     FirstNonEmpty(w.Description, w.OrderDescription, w.OrderDescriptionCamel),
		DeliveryAddress: FirstNonEmpty(w.DeliveryAddress, w.DeliveryAddressCamel),
		RecipientName:   FirstNonEmpty(w.RecipientName, w.RecipientNameCamel),
		RecipientPhone:  FirstNonEmpty(w.RecipientPhone, w.RecipientPhoneCamel),
		PaymentMethod:   entity.PaymentMethod(strings.ToLower(strings.TrimSpace(w.PaymentMethod))),
		PaymentStatus:   PaymentStatus(w.PaymentStatus),
		PaymentReleased: w.PaymentReleased,
		DriverID:        w.DriverID,
		DriverName:      FirstNonEmpty(w.DriverName, w.RiderName),
		DriverPhone:     FirstNonEmpty(w.DriverPhone, w.RiderPhone),
		Status:          Status(w.Status),
		CreatedAt:       w.CreatedAt.Time,
		UpdatedAt:       w.UpdatedAt.Time,
	}
	if amount.Valid {
		o.Amount = amount.Decimal
	}
	if o.Currency == "" {
		o.Currency = entity.DefaultCurrency
	}
	if w.DeliveryLocation != nil {
		c := *w.DeliveryLocation
		o.DeliveryLocation = &c
	}
	return o
}

func DecodeOrder(raw json.RawMessage) (entity.Order, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return entity.Order{}, ErrEmptyOrder
	}
	var w Order
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.Order{}, err
	}
	return w.Entity(), nil
}

// Time reads RFC3339, naive ISO-8601 (taken as UTC) or numeric Unix milliseconds.
type Time struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		ms, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", b, err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// PaymentStatus lowercases an escrow state such as "pending" or "paid".
func PaymentStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Status normalizes a lifecycle code. Unknown codes are kept lowercased.
func Status(raw string) entity.Status {
	s, _ := entity.ParseStatus(raw)
	return s
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
