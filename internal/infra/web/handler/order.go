package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DioGolang/GoTrack/internal/application/usecase/order"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/internal/infra/web/middleware"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

type OrderCommands interface {
	CreateOrder(ctx context.Context, in order.CreateInput) (order.CreateOutput, error)
	SetStatus(ctx context.Context, in order.SetStatusInput) (entity.Order, error)
	AssignDriver(ctx context.Context, in order.AssignDriverInput) (entity.Order, error)
	ConfirmDelivery(ctx context.Context, in order.ConfirmDeliveryInput) (entity.Order, error)
	SimulateDelivery(ctx context.Context, orderID string) error
}

type Order struct {
	Commands OrderCommands
	Logger   logger.Logger
}

func NewOrderHandler(commands OrderCommands, log logger.Logger) *Order {
	return &Order{Commands: commands, Logger: log}
}

func (h *Order) Create(w http.ResponseWriter, r *http.Request) {
	var in order.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	in.IdempotencyKey = r.Header.Get(middleware.IdempotencyHeader)

	out, err := h.Commands.CreateOrder(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Order) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	o, err := h.Commands.SetStatus(r.Context(), order.SetStatusInput{OrderID: orderID(r), Status: body.Status})
	if err != nil {
		h.fail(w, r, "set status", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Order) AssignDriver(w http.ResponseWriter, r *http.Request) {
	var in order.AssignDriverInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	in.OrderID = orderID(r)

	o, err := h.Commands.AssignDriver(r.Context(), in)
	if err != nil {
		h.fail(w, r, "assign driver", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Order) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	o, err := h.Commands.ConfirmDelivery(r.Context(), order.ConfirmDeliveryInput{OrderID: orderID(r)})
	if err != nil {
		h.fail(w, r, "confirm delivery", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Order) Simulate(w http.ResponseWriter, r *http.Request) {
	if err := h.Commands.SimulateDelivery(r.Context(), orderID(r)); err != nil {
		h.fail(w, r, "simulate delivery", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Order) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Logger.Warn(r.Context(), "order command failed",
		logger.String("op", op),
		logger.WithError(err),
	)
	writeError(w, err)
}
