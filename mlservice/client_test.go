package mlservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharmARohitt/Gati-sub001/models"
)

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	assert.True(t, c.Healthy(context.Background()))

	down := NewClient("http://127.0.0.1:1", time.Second)
	assert.False(t, down.Healthy(context.Background()))
}

func TestHealthyRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	assert.False(t, c.Healthy(context.Background()))
}

func TestForecastDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/forecast/predict", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "enrolments", req["metric"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model_used": "prophet",
			"forecasts": []map[string]interface{}{
				{"date": "2025-06-11", "predicted_value": 1500.0, "lower_bound": 1400.0, "upper_bound": 1600.0, "confidence": 94.0},
			},
			"metrics": map[string]float64{"rmse": 12.5, "mape": 4.0},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, err := c.Forecast(context.Background(), "Kerala", "enrolments", 1)
	require.NoError(t, err)

	assert.Equal(t, "prophet", result.ModelName)
	require.Len(t, result.Forecast, 1)
	assert.InDelta(t, 1500, result.Forecast[0].PredictedValue, 0.001)
	assert.InDelta(t, 96, result.Accuracy, 0.001)
	assert.InDelta(t, 12.5, result.RMSE, 0.001)
}

func TestUnreachableServiceWrapsError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)

	var upstream *models.UpstreamUnavailableError
	_, err := c.DetectAnomalies(context.Background(), []string{"Kerala"}, "enrolments")
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "ml service", upstream.Upstream)

	_, err = c.AssessRisk(context.Background(), []string{"Kerala"})
	assert.ErrorAs(t, err, &upstream)
}

func TestNon200WrapsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	var upstream *models.UpstreamUnavailableError
	_, err := c.AssessRisk(context.Background(), []string{"Kerala"})
	require.ErrorAs(t, err, &upstream)
}
