package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var connectionStates = []string{"disconnected", "connecting", "connected"}

type Prometheus struct {
	eventsApplied     *prometheus.CounterVec
	reconnects        *prometheus.CounterVec
	connectionState   *prometheus.GaugeVec
	subscribers       prometheus.Gauge
	locationsMirrored *prometheus.CounterVec
	useCaseTotal      *prometheus.CounterVec
	useCaseDuration   *prometheus.HistogramVec
	httpDuration      *prometheus.HistogramVec
}

func NewPrometheusMetrics(reg prometheus.Registerer, serviceName string) *Prometheus {
	m := &Prometheus{
		eventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gotrack_events_applied_total",
			Help:        "Tracking events run through the reducer, by kind and outcome.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"kind", "outcome"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gotrack_stream_connect_attempts_total",
			Help:        "Stream connection attempts, by result.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"result"}),
		connectionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gotrack_stream_connection_state",
			Help:        "1 for the current stream connection state, 0 otherwise.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"state"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gotrack_store_subscribers",
			Help:        "Observers currently subscribed to the tracking store.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}),
		locationsMirrored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gotrack_locations_mirrored_total",
			Help:        "Driver fixes written to the location mirror.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"status"}),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "app_usecase_total",
			Help:        "Total number of Use Case executions.",
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_usecase_duration_seconds",
			Help:        "Use Case execution latency.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"use_case", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "app_http_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"method", "path", "status_code"}),
	}

	reg.MustRegister(
		m.eventsApplied,
		m.reconnects,
		m.connectionState,
		m.subscribers,
		m.locationsMirrored,
		m.useCaseTotal,
		m.useCaseDuration,
		m.httpDuration,
	)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func (p *Prometheus) RecordEventApplied(kind, outcome string) {
	p.eventsApplied.WithLabelValues(kind, outcome).Inc()
}

func (p *Prometheus) RecordReconnectAttempt(result string) {
	p.reconnects.WithLabelValues(result).Inc()
}

func (p *Prometheus) SetConnectionState(state string) {
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.connectionState.WithLabelValues(s).Set(v)
	}
}

func (p *Prometheus) SetSubscribers(n int) {
	p.subscribers.Set(float64(n))
}

func (p *Prometheus) IncLocationMirrored(status string) {
	p.locationsMirrored.WithLabelValues(status).Inc()
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.useCaseTotal.WithLabelValues(useCase, status).Inc()
	p.useCaseDuration.WithLabelValues(useCase, status).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}
