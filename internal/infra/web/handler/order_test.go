package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/tracking"
	"github.com/DioGolang/GoTrack/internal/application/usecase/order"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/stream"
	"github.com/DioGolang/GoTrack/internal/infra/web/middleware"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

type fakeCommands struct {
	created   order.CreateInput
	status    order.SetStatusInput
	assigned  order.AssignDriverInput
	confirmed order.ConfirmDeliveryInput
	simulated string
	err       error
}

func (f *fakeCommands) CreateOrder(_ context.Context, in order.CreateInput) (order.CreateOutput, error) {
	f.created = in
	if f.err != nil {
		return order.CreateOutput{}, f.err
	}
	return order.CreateOutput{Order: entity.Order{ID: "#A1", Status: entity.StatusPending}}, nil
}

func (f *fakeCommands) SetStatus(_ context.Context, in order.SetStatusInput) (entity.Order, error) {
	f.status = in
	return entity.Order{ID: in.OrderID, Status: entity.Status(in.Status)}, f.err
}

func (f *fakeCommands) AssignDriver(_ context.Context, in order.AssignDriverInput) (entity.Order, error) {
	f.assigned = in
	return entity.Order{ID: in.OrderID, DriverID: in.DriverID}, f.err
}

func (f *fakeCommands) ConfirmDelivery(_ context.Context, in order.ConfirmDeliveryInput) (entity.Order, error) {
	f.confirmed = in
	return entity.Order{ID: in.OrderID, Status: entity.StatusDelivered}, f.err
}

func (f *fakeCommands) SimulateDelivery(_ context.Context, orderID string) error {
	f.simulated = orderID
	if f.err != nil {
		return f.err
	}
	if orderID == "" {
		return tracking.ErrOrderIDEmpty
	}
	return nil
}

func orderRouter(h *Order) http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.Create)
	r.Put("/orders/{id}/status", h.SetStatus)
	r.Post("/orders/{id}/driver", h.AssignDriver)
	r.Post("/orders/{id}/confirm-delivery", h.ConfirmDelivery)
	r.Post("/orders/{id}/simulate", h.Simulate)
	return r
}

func serve(t *testing.T, h http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOrder_Create(t *testing.T) {
	//Arrange
	cmds := &fakeCommands{}
	h := orderRouter(NewOrderHandler(cmds, logger.NewNop()))
	body := `{"amount":"0.0015","order_description":"Pizza","delivery_address":"Rua A, 1","recipient_name":"Ana","recipient_phone":"+5511999990000"}`

	//Act
	rec := serve(t, h, http.MethodPost, "/orders", body, http.Header{middleware.IdempotencyHeader: {"key-1"}})

	//Assert
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "key-1", cmds.created.IdempotencyKey)
	assert.Equal(t, "Pizza", cmds.created.Description)
	assert.Equal(t, "0.0015", cmds.created.Amount.String())

	var out order.CreateOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "#A1", out.Order.ID)
}

func TestOrder_CreateRejectsBadJSON(t *testing.T) {
	//Arrange
	h := orderRouter(NewOrderHandler(&fakeCommands{}, logger.NewNop()))

	//Act
	rec := serve(t, h, http.MethodPost, "/orders", `{"amount":`, nil)

	//Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrder_CommandsUnescapeOrderID(t *testing.T) {
	//Arrange
	cmds := &fakeCommands{}
	h := orderRouter(NewOrderHandler(cmds, logger.NewNop()))

	//Act
	status := serve(t, h, http.MethodPut, "/orders/%23A1/status", `{"status":"in_transit"}`, nil)
	driver := serve(t, h, http.MethodPost, "/orders/%23A1/driver", `{"driver_id":"d1","driver_name":"Bob"}`, nil)
	confirm := serve(t, h, http.MethodPost, "/orders/%23A1/confirm-delivery", "", nil)
	simulate := serve(t, h, http.MethodPost, "/orders/%23A1/simulate", "", nil)

	//Assert
	assert.Equal(t, http.StatusOK, status.Code)
	assert.Equal(t, order.SetStatusInput{OrderID: "#A1", Status: "in_transit"}, cmds.status)

	assert.Equal(t, http.StatusOK, driver.Code)
	assert.Equal(t, "#A1", cmds.assigned.OrderID)
	assert.Equal(t, "d1", cmds.assigned.DriverID)
	assert.Equal(t, "Bob", cmds.assigned.DriverName)

	assert.Equal(t, http.StatusOK, confirm.Code)
	assert.Equal(t, "#A1", cmds.confirmed.OrderID)

	assert.Equal(t, http.StatusAccepted, simulate.Code)
	assert.Equal(t, "#A1", cmds.simulated)
}

func TestOrder_ErrorStatusMapping(t *testing.T) {
	failure := func(err error) error {
		return &order.CommandFailure{Op: "set status", OrderID: "#A1", Reason: "Invalid status", Err: err}
	}
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid command", failure(order.ErrInvalidCommand), http.StatusBadRequest},
		{"not found", failure(outbound.ErrOrderNotFound), http.StatusNotFound},
		{"rejected", failure(outbound.ErrOrderRejected), http.StatusUnprocessableEntity},
		{"timeout", failure(order.ErrCommandTimeout), http.StatusGatewayTimeout},
		{"unavailable", failure(outbound.ErrUnavailable), http.StatusBadGateway},
		{"bad response", failure(order.ErrInvalidResponse), http.StatusBadGateway},
		{"stream down", stream.ErrNotConnected, http.StatusServiceUnavailable},
		{"store stopped", tracking.ErrNotRunning, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			//Arrange
			h := orderRouter(NewOrderHandler(&fakeCommands{err: tc.err}, logger.NewNop()))

			//Act
			rec := serve(t, h, http.MethodPut, "/orders/%23A1/status", `{"status":"bogus"}`, nil)

			//Assert
			assert.Equal(t, tc.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestOrder_RejectionCarriesReason(t *testing.T) {
	//Arrange
	err := &order.CommandFailure{Op: "set status", OrderID: "#A1", Reason: "Invalid status", Err: outbound.ErrOrderRejected}
	h := orderRouter(NewOrderHandler(&fakeCommands{err: err}, logger.NewNop()))

	//Act
	rec := serve(t, h, http.MethodPut, "/orders/%23A1/status", `{"status":"bogus"}`, nil)

	//Assert
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Invalid status", resp.Reason)
}
