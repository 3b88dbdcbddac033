package entity

import "time"

type DriverLocation struct {
	DriverID  string    `json:"driver_id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Heading   float64   `json:"heading,omitempty"`
	Speed     float64   `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (l DriverLocation) Validate() error {
	if l.DriverID == "" {
		return ErrDriverIsRequired
	}
	if !l.Coordinates().Valid() {
		return ErrInvalidCoordinates
	}
	if l.Timestamp.IsZero() {
		return ErrTimestampRequired
	}
	return nil
}

func (l DriverLocation) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Supersedes reports whether l may replace prev. Fixes are monotonic per driver: an older
// timestamp never wins, an equal one does (last arrival).
func (l DriverLocation) Supersedes(prev DriverLocation) bool {
	return !l.Timestamp.Before(prev.Timestamp)
}
