package config

import (
	"os"
	"strconv"
	"time"
)

// AnalyticsPolicy collects every tunable constant the analytics engine
// uses. The defaults are operating policy, not derived values; each one
// can be overridden through environment variables without a rebuild.
type AnalyticsPolicy struct {
	// Risk score factor weights. Should sum to 1.
	RiskWeightCoverage  float64
	RiskWeightFreshness float64
	RiskWeightVolume    float64
	RiskWeightAnomalies float64

	// Anomaly severity thresholds on |z|.
	AnomalyLowZ      float64
	AnomalyMediumZ   float64
	AnomalyHighZ     float64
	AnomalyCriticalZ float64

	// Freshness recency window and the biometric/demographic split.
	// Biometric updates expire fastest, so they carry more weight.
	FreshnessWindowDays     int
	FreshnessBiometricShare float64

	// Forecasting limits and interval width.
	ForecastMinHistory  int
	ForecastMaxPeriods  int
	ForecastIntervalK   float64
	SeasonalityMinScore float64

	// Pattern mining thresholds.
	PatternMinRunLength int
	PatternSpikePercent float64

	// How many trailing days feed the national overview trend block.
	OverviewTrendDays int

	// Timeout for the raw data load and for ML collaborator calls.
	LoadTimeout time.Duration

	// Cache TTLs.
	OverviewCacheTTL    time.Duration
	AggregationCacheTTL time.Duration
	TrendsCacheTTL      time.Duration
}

// LoadAnalyticsPolicy builds the policy from the environment with the
// documented defaults.
func LoadAnalyticsPolicy() AnalyticsPolicy {
	return AnalyticsPolicy{
		RiskWeightCoverage:  getEnvAsFloat("RISK_WEIGHT_COVERAGE", 0.30),
		RiskWeightFreshness: getEnvAsFloat("RISK_WEIGHT_FRESHNESS", 0.30),
		RiskWeightVolume:    getEnvAsFloat("RISK_WEIGHT_VOLUME", 0.20),
		RiskWeightAnomalies: getEnvAsFloat("RISK_WEIGHT_ANOMALIES", 0.20),

		AnomalyLowZ:      getEnvAsFloat("ANOMALY_LOW_Z", 1.0),
		AnomalyMediumZ:   getEnvAsFloat("ANOMALY_MEDIUM_Z", 2.0),
		AnomalyHighZ:     getEnvAsFloat("ANOMALY_HIGH_Z", 3.0),
		AnomalyCriticalZ: getEnvAsFloat("ANOMALY_CRITICAL_Z", 4.0),

		FreshnessWindowDays:     getEnvAsInt("FRESHNESS_WINDOW_DAYS", 90),
		FreshnessBiometricShare: getEnvAsFloat("FRESHNESS_BIOMETRIC_SHARE", 0.6),

		ForecastMinHistory:  getEnvAsInt("FORECAST_MIN_HISTORY", 7),
		ForecastMaxPeriods:  getEnvAsInt("FORECAST_MAX_PERIODS", 180),
		ForecastIntervalK:   getEnvAsFloat("FORECAST_INTERVAL_K", 1.96),
		SeasonalityMinScore: getEnvAsFloat("SEASONALITY_MIN_SCORE", 0.3),

		PatternMinRunLength: getEnvAsInt("PATTERN_MIN_RUN_LENGTH", 5),
		PatternSpikePercent: getEnvAsFloat("PATTERN_SPIKE_PERCENT", 50),

		OverviewTrendDays: getEnvAsInt("OVERVIEW_TREND_DAYS", 30),

		LoadTimeout: time.Duration(getEnvAsInt("LOAD_TIMEOUT_SECONDS", 30)) * time.Second,

		OverviewCacheTTL:    time.Duration(getEnvAsInt("OVERVIEW_CACHE_TTL_SECONDS", 300)) * time.Second,
		AggregationCacheTTL: time.Duration(getEnvAsInt("AGGREGATION_CACHE_TTL_SECONDS", 300)) * time.Second,
		TrendsCacheTTL:      time.Duration(getEnvAsInt("TRENDS_CACHE_TTL_SECONDS", 120)) * time.Second,
	}
}

// MLServiceURL returns the base URL of the optional ML microservice.
// Empty means the collaborator is not configured and the local engine
// serves everything.
func MLServiceURL() string {
	return os.Getenv("ML_SERVICE_URL")
}

// DataSource selects the raw record loader: "postgres" (default) or "csv".
func DataSource() string {
	return getEnvWithDefault("DATA_SOURCE", "postgres")
}

// CSVDataPath is the base directory holding the enrolment, biometric and
// demographic CSV folders when DATA_SOURCE=csv.
func CSVDataPath() string {
	return getEnvWithDefault("CSV_DATA_PATH", "./data")
}

// Helper functions
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
