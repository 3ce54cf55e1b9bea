package models

import "time"

// AgeBuckets splits counts into the enrolment age bands used across
// all Aadhaar datasets: 0-5, 5-17 and 18+.
type AgeBuckets struct {
	Age0To5   int64 `json:"age_0_5"`
	Age5To17  int64 `json:"age_5_17"`
	Age18Plus int64 `json:"age_18_plus"`
}

// RawUpdateRecord is a single day's identity-update counts for one pincode.
// Records are immutable once loaded into a snapshot.
type RawUpdateRecord struct {
	Pincode            string     `json:"pincode"`
	DistrictName       string     `json:"district_name"`
	StateName          string     `json:"state_name"`
	Date               time.Time  `json:"date"`
	Enrolments         int64      `json:"enrolments"`
	BiometricUpdates   int64      `json:"biometric_updates"`
	DemographicUpdates int64      `json:"demographic_updates"`
	AgeBuckets         AgeBuckets `json:"age_buckets"`
}

// TrendPoint is one day of a state or national time series.
type TrendPoint struct {
	Date               time.Time `json:"date"`
	Enrolments         int64     `json:"enrolments"`
	BiometricUpdates   int64     `json:"biometric_updates"`
	DemographicUpdates int64     `json:"demographic_updates"`
}

type DistrictAggregation struct {
	DistrictName       string `json:"district_name"`
	StateName          string `json:"state_name"`
	PincodesCount      int    `json:"pincodes_count"`
	TotalEnrolments    int64  `json:"total_enrolments"`
	TotalBiometric     int64  `json:"total_biometric_updates"`
	TotalDemographic   int64  `json:"total_demographic_updates"`
}

type StateAggregation struct {
	StateCode          string     `json:"state_code"`
	StateName          string     `json:"state_name"`
	TotalEnrolments    int64      `json:"total_enrolments"`
	TotalBiometric     int64      `json:"total_biometric_updates"`
	TotalDemographic   int64      `json:"total_demographic_updates"`
	DistrictsCount     int        `json:"districts_count"`
	PincodesCount      int        `json:"pincodes_count"`
	Coverage           float64    `json:"coverage"`
	Freshness          float64    `json:"freshness"`
	RiskLevel          RiskLevel  `json:"risk_level"`
	AgeDistribution    AgeBuckets `json:"age_distribution"`
}

// RiskDistribution counts states per risk bucket.
type RiskDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

type NationalOverview struct {
	TotalEnrolments   int64              `json:"total_enrolments"`
	TotalBiometric    int64              `json:"total_biometric_updates"`
	TotalDemographic  int64              `json:"total_demographic_updates"`
	StatesCount       int                `json:"states_count"`
	DistrictsCount    int                `json:"districts_count"`
	PincodesCount     int                `json:"pincodes_count"`
	NationalCoverage  float64            `json:"national_coverage"`
	FreshnessIndex    float64            `json:"freshness_index"`
	RiskDistribution  RiskDistribution   `json:"risk_distribution"`
	RecentTrends      []TrendPoint       `json:"recent_trends"`
	HighRiskStates    []StateAggregation `json:"high_risk_states"`
}

// RiskLevel buckets a composite 0-100 score with fixed thresholds:
// <25 low, 25-50 medium, 50-75 high, >75 critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelForScore is the single bucketing function used everywhere a
// composite score becomes a level. Never assign levels ad hoc.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score > 75:
		return RiskCritical
	case score > 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Rank orders severity/risk levels for sorting: low < medium < high < critical.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// PincodeSummary aggregates every record for one exact pincode.
type PincodeSummary struct {
	Pincode          string    `json:"pincode"`
	DistrictName     string    `json:"district_name"`
	StateName        string    `json:"state_name"`
	TotalEnrolments  int64     `json:"total_enrolments"`
	TotalBiometric   int64     `json:"total_biometric_updates"`
	TotalDemographic int64     `json:"total_demographic_updates"`
	FirstDate        time.Time `json:"first_date"`
	LastDate         time.Time `json:"last_date"`
	RecordsCount     int       `json:"records_count"`
}

// DataCounts is load introspection for the status endpoints.
type DataCounts struct {
	Records   int `json:"records"`
	States    int `json:"states"`
	Districts int `json:"districts"`
	Pincodes  int `json:"pincodes"`
}

// LoadState is the DataStore lifecycle: unloaded -> loading -> loaded,
// with error retryable back through loading.
type LoadState string

const (
	LoadUnloaded LoadState = "unloaded"
	LoadLoading  LoadState = "loading"
	LoadLoaded   LoadState = "loaded"
	LoadError    LoadState = "error"
)

type LoadingStatus struct {
	State     LoadState `json:"state"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}
