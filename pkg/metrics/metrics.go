package metrics

import "time"

type Metrics interface {
	// Tracking
	RecordEventApplied(kind, outcome string)
	RecordReconnectAttempt(result string)
	SetConnectionState(state string)
	SetSubscribers(n int)
	IncLocationMirrored(status string)

	// Commands
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)

	// Infrastructure (HTTP)
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
}

// Noop satisfies Metrics without recording anything.
type Noop struct{}

func (Noop) RecordEventApplied(string, string)                          {}
func (Noop) RecordReconnectAttempt(string)                              {}
func (Noop) SetConnectionState(string)                                  {}
func (Noop) SetSubscribers(int)                                         {}
func (Noop) IncLocationMirrored(string)                                 {}
func (Noop) RecordUseCaseExecution(string, bool, time.Duration)         {}
func (Noop) ObserveHTTPRequestDuration(string, string, string, float64) {}
