package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

func TestTime_UnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2024-05-01T12:30:00Z"`, want},
		{"offset", `"2024-05-01T09:30:00-03:00"`, want},
		{"naive iso", `"2024-05-01T12:30:00"`, want},
		{"naive with micros", `"2024-05-01T12:30:00.000000"`, want},
		{"space separated", `"2024-05-01 12:30:00"`, want},
		{"unix millis", "1714566600000", want},
		{"null", "null", time.Time{}},
		{"empty string", `""`, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			//Arrange
			var got Time

			//Act
			err := json.Unmarshal([]byte(tc.raw), &got)

			//Assert
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got.Time), "got %s", got.Time)
		})
	}
}

func TestTime_RejectsGarbage(t *testing.T) {
	var got Time
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`true`), &got))
}

func TestDecodeOrder_Aliases(t *testing.T) {
	//Arrange
	raw := json.RawMessage(`{
		"order_id": "#A1",
		"amount_btc": "0.0021",
		"orderDescription": "Pizza",
		"deliveryAddress": "Rua A, 1",
		"recipientName": "Ana",
		"recipientPhone": "+5511999990000",
		"riderName": "Bob",
		"payment_method": " Lightning ",
		"payment_status": "Pending",
		"status": "In-Transit",
		"created_at": "2024-05-01T12:30:00"
	}`)

	//Act
	o, err := DecodeOrder(raw)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "#A1", o.ID)
	assert.Equal(t, "0.0021", o.Amount.String())
	assert.Equal(t, entity.DefaultCurrency, o.Currency)
	assert.Equal(t, "Pizza", o.Description)
	assert.Equal(t, "Rua A, 1", o.DeliveryAddress)
	assert.Equal(t, "Ana", o.RecipientName)
	assert.Equal(t, "Bob", o.DriverName)
	assert.Equal(t, entity.PaymentMethod("lightning"), o.PaymentMethod)
	assert.Equal(t, "pending", o.PaymentStatus)
	assert.False(t, o.PaymentReleased)
	assert.Equal(t, entity.StatusInTransit, o.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), o.CreatedAt)
}

func TestDecodeOrder_Empty(t *testing.T) {
	_, err := DecodeOrder(nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestStatus_KeepsUnknownCodes(t *testing.T) {
	assert.Equal(t, entity.StatusPickedUp, Status("Picked-Up"))
	assert.Equal(t, entity.Status("on_hold"), Status(" ON_HOLD "))
}
