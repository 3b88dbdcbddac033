package orderapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
)

// RejectedError is a non-2xx answer, or a 2xx answer flagged unsuccessful, from the order API.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order api returned %d: %s", e.StatusCode, e.Reason)
}

// Unwrap maps the status code onto the outbound error taxonomy.
func (e *RejectedError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return outbound.ErrOrderNotFound
	case e.StatusCode >= 500:
		return outbound.ErrUnavailable
	default:
		return outbound.ErrOrderRejected
	}
}

// clientFault reports failures that say nothing about the health of the order API.
func clientFault(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected) && rejected.StatusCode < 500
}
