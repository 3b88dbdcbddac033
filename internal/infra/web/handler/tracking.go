package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/tracking"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

const (
	defaultRadiusKm = 5.0
	maxRadiusKm     = 100.0
	keepAlive       = 15 * time.Second
)

type TrackingSource interface {
	View(orderIDs ...string) tracking.View
	Subscribe(buffer int) *tracking.Subscription
	Refresh(ctx context.Context) error
}

type Tracking struct {
	Source    TrackingSource
	Locations outbound.LocationRepository
	Logger    logger.Logger
}

func NewTrackingHandler(source TrackingSource, locations outbound.LocationRepository, log logger.Logger) *Tracking {
	return &Tracking{Source: source, Locations: locations, Logger: log}
}

// Snapshot serves the current view, scoped by repeated ?order_id= parameters.
func (h *Tracking) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Source.View(r.URL.Query()["order_id"]...))
}

// Stream pushes a view as a server-sent event after every change. Closing the request
// stops tracking the requested orders.
func (h *Tracking) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	sub := h.Source.Subscribe(1)
	defer sub.Close()
	for _, id := range r.URL.Query()["order_id"] {
		if err := sub.Track(ctx, id); err != nil {
			writeError(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.SetWriteDeadline(time.Time{})
	if err := rc.Flush(); err != nil {
		h.Logger.Error(ctx, "streaming unsupported", logger.WithError(err))
		return
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case v, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				h.Logger.Error(ctx, "failed to encode view", logger.WithError(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: view\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *Tracking) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Source.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Nearby lists mirrored drivers around ?lat=&lng= within ?radius= kilometres.
func (h *Tracking) Nearby(w http.ResponseWriter, r *http.Request) {
	if h.Locations == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "location mirror disabled"})
		return
	}
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lng must be valid coordinates"})
		return
	}
	radius := defaultRadiusKm
	if raw := q.Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > maxRadiusKm {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "radius must be between 0 and 100 km"})
			return
		}
		radius = v
	}

	drivers, err := h.Locations.GetNearestDrivers(r.Context(), lat, lng, radius)
	if err != nil {
		h.Logger.Error(r.Context(), "nearby drivers query failed", logger.WithError(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "location lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers})
}
