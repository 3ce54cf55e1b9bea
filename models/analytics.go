package models

import "time"

// Metric names tracked across trends, forecasts, anomalies and correlations.
const (
	MetricEnrolments         = "enrolments"
	MetricBiometricUpdates   = "biometric_updates"
	MetricDemographicUpdates = "demographic_updates"
)

// TrackedMetrics lists every metric in a fixed order so pairwise
// computations are deterministic.
var TrackedMetrics = []string{
	MetricEnrolments,
	MetricBiometricUpdates,
	MetricDemographicUpdates,
}

// IsTrackedMetric reports whether name is one of the tracked metrics.
func IsTrackedMetric(name string) bool {
	for _, m := range TrackedMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// AnomalySeverity classifies |z| deviations: [1,2) low, [2,3) medium,
// [3,4) high, >=4 critical. Deviations under 1 sigma are not reported.
type AnomalySeverity string

const (
	SeverityLow      AnomalySeverity = "low"
	SeverityMedium   AnomalySeverity = "medium"
	SeverityHigh     AnomalySeverity = "high"
	SeverityCritical AnomalySeverity = "critical"
)

func (s AnomalySeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

type AnomalyDetection struct {
	EntityID      string          `json:"entity_id"`
	Metric        string          `json:"metric"`
	Severity      AnomalySeverity `json:"severity"`
	ExpectedValue float64         `json:"expected_value"`
	ActualValue   float64         `json:"actual_value"`
	Deviation     float64         `json:"deviation"`
	Confidence    float64         `json:"confidence"`
	Explanation   string          `json:"explanation"`
	Timestamp     time.Time       `json:"timestamp"`
}

// RiskFactor is one normalized sub-score and its weighted contribution
// to the overall composite.
type RiskFactor struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
}

type RiskScore struct {
	EntityID        string       `json:"entity_id"`
	Overall         float64      `json:"overall"`
	Level           RiskLevel    `json:"level"`
	TopFactors      []RiskFactor `json:"top_factors"`
	Recommendations []string     `json:"recommendations"`
}

type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedValue float64   `json:"predicted_value"`
	LowerBound     float64   `json:"lower_bound"`
	UpperBound     float64   `json:"upper_bound"`
	Confidence     float64   `json:"confidence"`
}

type ForecastResult struct {
	Metric         string          `json:"metric"`
	Forecast       []ForecastPoint `json:"forecast"`
	ModelName      string          `json:"model_name"`
	Accuracy       float64         `json:"accuracy"`
	RMSE           float64         `json:"rmse"`
	MAPE           float64         `json:"mape"`
	TrendDirection string          `json:"trend_direction"`
	TrendStrength  float64         `json:"trend_strength"`
}

type SeasonalityResult struct {
	Metric   string  `json:"metric"`
	Detected bool    `json:"detected"`
	Period   int     `json:"period,omitempty"`
	Strength float64 `json:"strength"`
}

type PatternType string

const (
	PatternMonotonicRise PatternType = "sustained_increase"
	PatternMonotonicFall PatternType = "sustained_decrease"
	PatternSpike         PatternType = "spike"
	PatternCycle         PatternType = "recurring_cycle"
)

type Pattern struct {
	Type        PatternType `json:"type"`
	Metric      string      `json:"metric"`
	Strength    float64     `json:"strength"`
	Description string      `json:"description"`
}

type CorrelationStrength string

const (
	CorrelationWeak     CorrelationStrength = "weak"
	CorrelationModerate CorrelationStrength = "moderate"
	CorrelationStrong   CorrelationStrength = "strong"
)

type Correlation struct {
	MetricA     string              `json:"metric_a"`
	MetricB     string              `json:"metric_b"`
	Coefficient float64             `json:"coefficient"`
	Strength    CorrelationStrength `json:"strength"`
}

// GrowthRates holds period-over-period percentage growth per metric.
type GrowthRates struct {
	Enrolments         float64 `json:"enrolments"`
	BiometricUpdates   float64 `json:"biometric_updates"`
	DemographicUpdates float64 `json:"demographic_updates"`
}

// DataQualityReport summarizes a loaded snapshot, mirroring the audit
// report the ingestion pipeline produces on every load.
type DataQualityReport struct {
	TotalRecords    int       `json:"total_records"`
	DateRangeStart  time.Time `json:"date_range_start"`
	DateRangeEnd    time.Time `json:"date_range_end"`
	UniqueStates    int       `json:"unique_states"`
	UniqueDistricts int       `json:"unique_districts"`
	UniquePincodes  int       `json:"unique_pincodes"`
	NegativeValues  int       `json:"negative_values"`
	MissingDays     int       `json:"missing_days"`
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
}
