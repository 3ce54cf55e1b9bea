package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SharmARohitt/Gati-sub001/analytics"
)

// GetNationalOverview returns the cached national aggregate: totals,
// risk distribution, recent trends and the high-risk state ranking.
func (h *AnalyticsHandler) GetNationalOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Store.GetNationalOverview()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, overview)
}

func (h *AnalyticsHandler) GetStateAggregations(w http.ResponseWriter, r *http.Request) {
	states, err := h.Store.GetStateAggregations()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, states)
}

func (h *AnalyticsHandler) GetStateByCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	state, err := h.Store.GetStateByCode(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, state)
}

func (h *AnalyticsHandler) GetDistrictsByState(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	// Accept either a census code or a state name in the path.
	state, err := h.Store.GetStateByCode(code)
	if err != nil {
		writeError(w, err)
		return
	}

	districts, err := h.Store.GetDistrictsByState(state.StateName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, districts)
}

func (h *AnalyticsHandler) GetStateTrends(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeError(w, err)
		return
	}

	state, err := h.Store.GetStateByCode(code)
	if err != nil {
		writeError(w, err)
		return
	}

	trends, err := h.Store.GetStateTrends(state.StateName, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, trends)
}

func (h *AnalyticsHandler) GetNationalTrends(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeError(w, err)
		return
	}
	trends, err := h.Store.GetNationalTrends(days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, trends)
}

// GetGrowthRates computes period-over-period growth from a state's
// trend window.
func (h *AnalyticsHandler) GetGrowthRates(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeError(w, err)
		return
	}

	state, err := h.Store.GetStateByCode(code)
	if err != nil {
		writeError(w, err)
		return
	}

	trends, err := h.Store.GetStateTrends(state.StateName, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, analytics.CalculateGrowthRates(trends))
}

func (h *AnalyticsHandler) SearchByPincode(w http.ResponseWriter, r *http.Request) {
	pincode := mux.Vars(r)["pincode"]
	log.Printf("Pincode lookup: %s", pincode)

	summary, err := h.Store.SearchByPincode(pincode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, summary)
}
