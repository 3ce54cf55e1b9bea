package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SharmARohitt/Gati-sub001/models"
)

// DetectAllAnomalies serves the full anomaly scan. When the ML service
// is configured and healthy its detections are preferred; otherwise the
// local statistical detector serves the complete result. The branch is
// an upfront health check, never error-driven fallback.
func (h *AnalyticsHandler) DetectAllAnomalies(w http.ResponseWriter, r *http.Request) {
	if h.ML != nil && h.ML.Healthy(r.Context()) {
		states, err := h.Store.GetStateAggregations()
		if err != nil {
			writeError(w, err)
			return
		}
		names := make([]string, len(states))
		for i, st := range states {
			names[i] = st.StateName
		}

		var all []models.AnomalyDetection
		ok := true
		for _, metric := range models.TrackedMetrics {
			anomalies, err := h.ML.DetectAnomalies(r.Context(), names, metric)
			if err != nil {
				log.Printf("ML anomaly detection failed mid-request: %v", err)
				ok = false
				break
			}
			all = append(all, anomalies...)
		}
		if ok {
			writeJSON(w, all)
			return
		}
		// The health check passed but the call failed; the local result
		// is still a complete answer.
	}

	anomalies, err := h.Store.DetectAllAnomalies()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, anomalies)
}

// GetRiskScore serves one state's composite risk score.
func (h *AnalyticsHandler) GetRiskScore(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if h.ML != nil && h.ML.Healthy(r.Context()) {
		state, err := h.Store.GetStateByCode(code)
		if err != nil {
			writeError(w, err)
			return
		}
		scores, err := h.ML.AssessRisk(r.Context(), []string{state.StateName})
		if err == nil && len(scores) == 1 {
			writeJSON(w, scores[0])
			return
		}
		log.Printf("ML risk assessment unavailable, serving local score: %v", err)
	}

	score, err := h.Store.RiskScoreForState(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, score)
}

// CompareRiskScores ranks every state by composite risk, descending.
func (h *AnalyticsHandler) CompareRiskScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.Store.CompareAllRiskScores()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, scores)
}

func (h *AnalyticsHandler) DetectPatterns(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	patterns, err := h.Store.DetectPatterns(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, patterns)
}

func (h *AnalyticsHandler) FindCorrelations(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	correlations, err := h.Store.FindCorrelations(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, correlations)
}

// GetForecast builds a trend window (state-scoped or national) and runs
// the ensemble forecaster over it.
func (h *AnalyticsHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = models.MetricEnrolments
	}
	periods, err := queryInt(r, "periods", 30)
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := queryInt(r, "history", 90)
	if err != nil {
		writeError(w, err)
		return
	}

	stateQuery := r.URL.Query().Get("state")

	if h.ML != nil && h.ML.Healthy(r.Context()) {
		result, mlErr := h.ML.Forecast(r.Context(), stateQuery, metric, periods)
		if mlErr == nil {
			writeJSON(w, result)
			return
		}
		log.Printf("ML forecast unavailable, serving local ensemble: %v", mlErr)
	}

	var trends []models.TrendPoint
	if stateQuery != "" {
		state, err := h.Store.GetStateByCode(stateQuery)
		if err != nil {
			writeError(w, err)
			return
		}
		trends, err = h.Store.GetStateTrends(state.StateName, history)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		trends, err = h.Store.GetNationalTrends(history)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := h.Store.Forecaster().EnsembleForecast(trends, metric, periods)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

// GetSeasonality reports the strongest recurring cycle for a metric.
func (h *AnalyticsHandler) GetSeasonality(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = models.MetricEnrolments
	}
	history, err := queryInt(r, "history", 90)
	if err != nil {
		writeError(w, err)
		return
	}

	var trends []models.TrendPoint
	if stateQuery := r.URL.Query().Get("state"); stateQuery != "" {
		state, err := h.Store.GetStateByCode(stateQuery)
		if err != nil {
			writeError(w, err)
			return
		}
		trends, err = h.Store.GetStateTrends(state.StateName, history)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		trends, err = h.Store.GetNationalTrends(history)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := h.Store.Forecaster().DetectSeasonality(trends, metric)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}
