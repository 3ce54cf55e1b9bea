package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/SharmARohitt/Gati-sub001/mlservice"
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/store"
)

// AnalyticsHandler serves the whole query surface. The store and the
// optional ML client are injected at construction; handlers never reach
// for globals.
type AnalyticsHandler struct {
	Store *store.Store
	ML    *mlservice.Client // nil when no ML service is configured
}

func NewAnalyticsHandler(s *store.Store, ml *mlservice.Client) *AnalyticsHandler {
	return &AnalyticsHandler{Store: s, ML: ml}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeError maps the engine's error taxonomy onto HTTP statuses. Every
// failure is a structured result; nothing here panics or crashes the
// process.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var notLoaded *models.DataNotLoadedError
	var notFound *models.EntityNotFoundError
	var badParam *models.InvalidParameterError
	var shortHistory *models.InsufficientHistoryError
	var upstream *models.UpstreamUnavailableError

	switch {
	case errors.As(err, &notLoaded):
		status = http.StatusServiceUnavailable
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &badParam):
		status = http.StatusBadRequest
	case errors.As(err, &shortHistory):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		log.Printf("Unexpected handler error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Code: status})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.InvalidParameterError{Param: name, Reason: "must be an integer"}
	}
	return v, nil
}
