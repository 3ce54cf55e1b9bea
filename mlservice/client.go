package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SharmARohitt/Gati-sub001/models"
)

// Client talks to the optional ML microservice. Routes that prefer its
// outputs check Healthy first and branch explicitly; the local engine is
// the complete fallback, never an exception handler.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Healthy probes /api/health with a short deadline. Any failure means
// the collaborator is treated as unreachable for this request.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("ML service health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type anomalyRequest struct {
	EntityIDs []string `json:"entity_ids"`
	Metric    string   `json:"metric"`
}

type anomalyResponse struct {
	Anomalies []struct {
		EntityID    string  `json:"entity_id"`
		Severity    string  `json:"severity"`
		Score       float64 `json:"score"`
		Expected    float64 `json:"expected_value"`
		Actual      float64 `json:"actual_value"`
		Explanation string  `json:"explanation"`
		Date        string  `json:"date"`
	} `json:"anomalies"`
}

// DetectAnomalies asks the ML service for anomaly flags for a metric.
func (c *Client) DetectAnomalies(ctx context.Context, entityIDs []string, metric string) ([]models.AnomalyDetection, error) {
	var out anomalyResponse
	if err := c.post(ctx, "/api/anomaly/detect", anomalyRequest{EntityIDs: entityIDs, Metric: metric}, &out); err != nil {
		return nil, err
	}

	anomalies := make([]models.AnomalyDetection, 0, len(out.Anomalies))
	for _, a := range out.Anomalies {
		ts, _ := time.Parse("2006-01-02", a.Date)
		anomalies = append(anomalies, models.AnomalyDetection{
			EntityID:      a.EntityID,
			Metric:        metric,
			Severity:      models.AnomalySeverity(a.Severity),
			ExpectedValue: a.Expected,
			ActualValue:   a.Actual,
			Deviation:     a.Score,
			Confidence:    90,
			Explanation:   a.Explanation,
			Timestamp:     ts,
		})
	}
	return anomalies, nil
}

type riskRequest struct {
	EntityIDs []string `json:"entity_ids"`
}

type riskResponse struct {
	Assessments []struct {
		EntityID        string   `json:"entity_id"`
		RiskScore       float64  `json:"risk_score"`
		RiskLevel       string   `json:"risk_level"`
		Recommendations []string `json:"recommendations"`
	} `json:"assessments"`
}

// AssessRisk fetches model-based risk scores for a set of states.
func (c *Client) AssessRisk(ctx context.Context, entityIDs []string) ([]models.RiskScore, error) {
	var out riskResponse
	if err := c.post(ctx, "/api/risk/assess", riskRequest{EntityIDs: entityIDs}, &out); err != nil {
		return nil, err
	}

	scores := make([]models.RiskScore, 0, len(out.Assessments))
	for _, a := range out.Assessments {
		scores = append(scores, models.RiskScore{
			EntityID:        a.EntityID,
			Overall:         a.RiskScore,
			Level:           models.RiskLevel(a.RiskLevel),
			Recommendations: a.Recommendations,
		})
	}
	return scores, nil
}

type forecastRequest struct {
	Metric  string `json:"metric"`
	Periods int    `json:"periods"`
	State   string `json:"state,omitempty"`
}

type forecastResponse struct {
	ModelUsed string `json:"model_used"`
	Forecasts []struct {
		Date       string  `json:"date"`
		Predicted  float64 `json:"predicted_value"`
		LowerBound float64 `json:"lower_bound"`
		UpperBound float64 `json:"upper_bound"`
		Confidence float64 `json:"confidence"`
	} `json:"forecasts"`
	Metrics struct {
		RMSE float64 `json:"rmse"`
		MAPE float64 `json:"mape"`
	} `json:"metrics"`
}

// Forecast fetches a model-based forecast for a metric.
func (c *Client) Forecast(ctx context.Context, state, metric string, periods int) (models.ForecastResult, error) {
	var out forecastResponse
	if err := c.post(ctx, "/api/forecast/predict", forecastRequest{Metric: metric, Periods: periods, State: state}, &out); err != nil {
		return models.ForecastResult{}, err
	}

	result := models.ForecastResult{
		Metric:    metric,
		ModelName: out.ModelUsed,
		RMSE:      out.Metrics.RMSE,
		MAPE:      out.Metrics.MAPE,
		Accuracy:  100 - out.Metrics.MAPE,
	}
	if result.Accuracy < 0 {
		result.Accuracy = 0
	}
	for _, p := range out.Forecasts {
		date, _ := time.Parse("2006-01-02", p.Date)
		result.Forecast = append(result.Forecast, models.ForecastPoint{
			Date:           date,
			PredictedValue: p.Predicted,
			LowerBound:     p.LowerBound,
			UpperBound:     p.UpperBound,
			Confidence:     p.Confidence,
		})
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &models.UpstreamUnavailableError{Upstream: "ml service", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.UpstreamUnavailableError{
			Upstream: "ml service",
			Cause:    fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path),
		}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
