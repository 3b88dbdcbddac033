package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/tracking"
	"github.com/DioGolang/GoTrack/internal/application/usecase/order"
	"github.com/DioGolang/GoTrack/internal/infra/stream"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var failure *order.CommandFailure
	if errors.As(err, &failure) {
		resp.Reason = failure.Reason
	}
	writeJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrInvalidCommand), errors.Is(err, tracking.ErrOrderIDEmpty):
		return http.StatusBadRequest
	case errors.Is(err, outbound.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, outbound.ErrOrderRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrCommandTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, outbound.ErrUnavailable), errors.Is(err, order.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, stream.ErrNotConnected), errors.Is(err, tracking.ErrNotRunning):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// orderID reads the {id} route parameter. Order ids start with '#', so clients send it escaped.
func orderID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
