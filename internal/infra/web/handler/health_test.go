package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DioGolang/GoTrack/internal/domain/tracking"
)

func TestHealth_StreamStatus(t *testing.T) {
	cases := []struct {
		name   string
		status tracking.ConnectionStatus
		want   string
	}{
		{"connected", tracking.ConnectionStatus{State: tracking.Connected}, "OK"},
		{"reconnecting degrades", tracking.ConnectionStatus{State: tracking.Connecting, Attempt: 3}, "Partially Available"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			//Arrange
			h, err := NewHealthHandler("gotrack", "test", WithStream(func() tracking.ConnectionStatus { return tc.status }))
			require.NoError(t, err)

			//Act
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			//Assert
			assert.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.want, body.Status)
		})
	}
}

func TestHealth_OptionsIgnoreMissingDependencies(t *testing.T) {
	//Act
	h, err := NewHealthHandler("gotrack", "test", WithStream(nil), WithRedis(nil), WithRabbitMQ(""))

	//Assert
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
