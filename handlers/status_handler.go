package handlers

import (
	"log"
	"net/http"
	"time"
)

// HealthCheck reports process liveness plus the data load state.
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.Store.GetLoadingStatus()
	writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"data":      status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *AnalyticsHandler) GetLoadingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Store.GetLoadingStatus())
}

func (h *AnalyticsHandler) GetDataCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Store.GetDataCounts()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, counts)
}

func (h *AnalyticsHandler) GetQualityReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Store.GetQualityReport()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

// ReloadData discards the current snapshot and loads fresh from the
// configured source. Concurrent reload requests share one load.
func (h *AnalyticsHandler) ReloadData(w http.ResponseWriter, r *http.Request) {
	log.Printf("Reload requested by %s", r.RemoteAddr)
	if err := h.Store.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, h.Store.GetLoadingStatus())
}
