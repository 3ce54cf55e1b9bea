package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/store"
)

func fixtureRecords() []models.RawUpdateRecord {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var records []models.RawUpdateRecord
	for i, state := range []string{"Kerala", "Bihar"} {
		pincode := "695001"
		if i == 1 {
			pincode = "800001"
		}
		for day := 0; day < 10; day++ {
			records = append(records, models.RawUpdateRecord{
				Pincode:            pincode,
				DistrictName:       state + " Central",
				StateName:          state,
				Date:               base.AddDate(0, 0, day),
				Enrolments:         int64(1000 + day*50 + i*200),
				BiometricUpdates:   int64(300 + day*10),
				DemographicUpdates: int64(150 + day*5),
			})
		}
	}
	return records
}

// newTestRouter wires the handler onto the same route table main uses.
func newTestRouter(t *testing.T, loaded bool) *mux.Router {
	t.Helper()

	policy := config.LoadAnalyticsPolicy()
	s := store.New(policy, &store.StaticLoader{Records: fixtureRecords()}, config.NewCaches(policy))
	if loaded {
		require.NoError(t, s.LoadAllData(context.Background()))
	}

	h := NewAnalyticsHandler(s, nil)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/status", h.GetLoadingStatus).Methods("GET")
	api.HandleFunc("/data/counts", h.GetDataCounts).Methods("GET")
	api.HandleFunc("/data/quality", h.GetQualityReport).Methods("GET")
	api.HandleFunc("/data/reload", h.ReloadData).Methods("POST")
	api.HandleFunc("/overview", h.GetNationalOverview).Methods("GET")
	api.HandleFunc("/states", h.GetStateAggregations).Methods("GET")
	api.HandleFunc("/states/{code}", h.GetStateByCode).Methods("GET")
	api.HandleFunc("/states/{code}/districts", h.GetDistrictsByState).Methods("GET")
	api.HandleFunc("/states/{code}/trends", h.GetStateTrends).Methods("GET")
	api.HandleFunc("/states/{code}/growth", h.GetGrowthRates).Methods("GET")
	api.HandleFunc("/trends", h.GetNationalTrends).Methods("GET")
	api.HandleFunc("/pincode/{pincode}", h.SearchByPincode).Methods("GET")
	api.HandleFunc("/anomalies", h.DetectAllAnomalies).Methods("GET")
	api.HandleFunc("/risk/compare", h.CompareRiskScores).Methods("GET")
	api.HandleFunc("/risk/{code}", h.GetRiskScore).Methods("GET")
	api.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	api.HandleFunc("/seasonality", h.GetSeasonality).Methods("GET")
	api.HandleFunc("/patterns/{code}", h.DetectPatterns).Methods("GET")
	api.HandleFunc("/correlations/{code}", h.FindCorrelations).Methods("GET")
	return r
}

func doGet(t *testing.T, r *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOverviewEndpoint(t *testing.T) {
	r := newTestRouter(t, true)

	w := doGet(t, r, "/api/v1/overview")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var overview models.NationalOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 2, overview.StatesCount)
	assert.Positive(t, overview.TotalEnrolments)
}

func TestQueriesBeforeLoadReturn503(t *testing.T) {
	r := newTestRouter(t, false)

	for _, path := range []string{"/api/v1/overview", "/api/v1/states", "/api/v1/data/counts"} {
		w := doGet(t, r, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp["error"], "not loaded")
	}

	// Health stays green regardless of load state.
	w := doGet(t, r, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorTaxonomyMapping(t *testing.T) {
	r := newTestRouter(t, true)

	cases := []struct {
		path string
		code int
	}{
		{"/api/v1/states/Atlantis", http.StatusNotFound},
		{"/api/v1/pincode/000000", http.StatusNotFound},
		{"/api/v1/pincode/12ab56", http.StatusBadRequest},
		{"/api/v1/forecast?metric=visits", http.StatusBadRequest},
		{"/api/v1/forecast?periods=9999", http.StatusBadRequest},
		{"/api/v1/forecast?history=5", http.StatusUnprocessableEntity},
		{"/api/v1/states/KL/trends?days=abc", http.StatusBadRequest},
		{"/api/v1/risk/Atlantis", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := doGet(t, r, tc.path)
		assert.Equal(t, tc.code, w.Code, tc.path)
	}
}

func TestStateEndpoints(t *testing.T) {
	r := newTestRouter(t, true)

	w := doGet(t, r, "/api/v1/states/kl")
	require.Equal(t, http.StatusOK, w.Code)
	var state models.StateAggregation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "Kerala", state.StateName)

	w = doGet(t, r, "/api/v1/states/KL/trends?days=14")
	require.Equal(t, http.StatusOK, w.Code)
	var trends []models.TrendPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trends))
	assert.Len(t, trends, 14)

	w = doGet(t, r, "/api/v1/states/KL/districts")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, r, "/api/v1/pincode/695001")
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.PincodeSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "Kerala", summary.StateName)
	assert.Equal(t, 10, summary.RecordsCount)
}

func TestForecastEndpoint(t *testing.T) {
	r := newTestRouter(t, true)

	w := doGet(t, r, "/api/v1/forecast?metric=enrolments&periods=7&history=10")
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ForecastResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Forecast, 7)
	assert.Equal(t, models.MetricEnrolments, result.Metric)

	// State-scoped variant.
	w = doGet(t, r, "/api/v1/forecast?state=KL&periods=7&history=10")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestInsightEndpoints(t *testing.T) {
	r := newTestRouter(t, true)

	w := doGet(t, r, "/api/v1/anomalies")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, r, "/api/v1/risk/compare")
	require.Equal(t, http.StatusOK, w.Code)
	var scores []models.RiskScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scores))
	assert.Len(t, scores, 2)

	w = doGet(t, r, "/api/v1/patterns/KL")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, r, "/api/v1/correlations/KL")
	require.Equal(t, http.StatusOK, w.Code)
	var correlations []models.Correlation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &correlations))
	assert.Len(t, correlations, 3)
}

func TestReloadEndpoint(t *testing.T) {
	r := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/data/reload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.LoadingStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.LoadLoaded, status.State)
}
