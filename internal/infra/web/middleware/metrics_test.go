package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/DioGolang/GoTrack/pkg/metrics"
)

type observation struct {
	method, path, code string
}

type recordingMetrics struct {
	metrics.Noop
	seen []observation
}

func (r *recordingMetrics) ObserveHTTPRequestDuration(method, path, code string, _ float64) {
	r.seen = append(r.seen, observation{method, path, code})
}

func TestMetricsWrapper_UsesRoutePattern(t *testing.T) {
	//Arrange
	m := &recordingMetrics{}
	r := chi.NewRouter()
	r.Use(MetricsWrapper(m, "/stream"))
	r.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/stream", func(w http.ResponseWriter, _ *http.Request) {})
	r.Get("/plain", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	//Act
	for _, target := range []string{"/orders/%23A1", "/stream", "/plain"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	//Assert
	assert.Equal(t, []observation{
		{http.MethodGet, "/orders/{id}", "404"},
		{http.MethodGet, "/plain", "200"},
	}, m.seen)
}
