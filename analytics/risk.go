package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/utils"
)

// RiskScorer combines normalized deviation sub-scores into a 0-100
// composite relative to national baselines. Factor weights come from
// policy, never from the data.
type RiskScorer struct {
	Policy config.AnalyticsPolicy
}

const (
	factorCoverage  = "coverage_gap"
	factorFreshness = "freshness_gap"
	factorVolume    = "volume_deviation"
	factorAnomalies = "anomaly_count"
)

// CalculateAdvancedRiskScore scores one state against the national
// average enrolment volume and its active anomaly count. Every sub-score
// is 0-100 with worse = higher, so worsening any input can only raise
// the composite.
func (s *RiskScorer) CalculateAdvancedRiskScore(state models.StateAggregation, nationalAverage float64, anomalyCount int) models.RiskScore {
	coverageGap := utils.Clamp(100-state.Coverage, 0, 100)
	freshnessGap := utils.Clamp(100-state.Freshness, 0, 100)

	var volumeDeviation float64
	if nationalAverage > 0 {
		volumeDeviation = utils.Clamp(math.Abs(float64(state.TotalEnrolments)-nationalAverage)/nationalAverage*100, 0, 100)
	}

	anomalyScore := utils.Clamp(float64(anomalyCount)*20, 0, 100)

	factors := []models.RiskFactor{
		{Name: factorCoverage, Contribution: s.Policy.RiskWeightCoverage * coverageGap},
		{Name: factorFreshness, Contribution: s.Policy.RiskWeightFreshness * freshnessGap},
		{Name: factorVolume, Contribution: s.Policy.RiskWeightVolume * volumeDeviation},
		{Name: factorAnomalies, Contribution: s.Policy.RiskWeightAnomalies * anomalyScore},
	}

	var overall float64
	for _, f := range factors {
		overall += f.Contribution
	}
	overall = utils.Clamp(overall, 0, 100)

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})

	level := models.RiskLevelForScore(overall)

	return models.RiskScore{
		EntityID:        state.StateName,
		Overall:         overall,
		Level:           level,
		TopFactors:      factors,
		Recommendations: s.recommendations(level, factors),
	}
}

// CompareRiskScores scores a list of states and ranks them by overall
// composite, descending.
func (s *RiskScorer) CompareRiskScores(states []models.StateAggregation, nationalAverage float64, anomalyCounts map[string]int) []models.RiskScore {
	scores := make([]models.RiskScore, 0, len(states))
	for _, st := range states {
		scores = append(scores, s.CalculateAdvancedRiskScore(st, nationalAverage, anomalyCounts[st.StateName]))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Overall > scores[j].Overall
	})
	return scores
}

func (s *RiskScorer) recommendations(level models.RiskLevel, factors []models.RiskFactor) []string {
	var recs []string

	switch level {
	case models.RiskCritical:
		recs = append(recs,
			"IMMEDIATE: Initiate field verification within 48 hours",
			"ALERT: Notify regional coordinator for direct oversight")
	case models.RiskHigh:
		recs = append(recs,
			"PRIORITY: Schedule audit within 1 week",
			"MONITOR: Enable daily tracking for this region")
	case models.RiskMedium:
		recs = append(recs,
			"REVIEW: Include in monthly review cycle",
			"TRACK: Monitor key metrics weekly")
	default:
		recs = append(recs, "MAINTAIN: Continue standard monitoring")
	}

	// Factor-specific guidance from the dominant contributors.
	for _, f := range factors[:2] {
		if f.Contribution <= 0 {
			continue
		}
		switch f.Name {
		case factorCoverage:
			recs = append(recs, "EXPAND: Run enrolment camps to close the coverage gap")
		case factorFreshness:
			recs = append(recs, "REFRESH: Drive biometric update campaigns; records are going stale")
		case factorVolume:
			recs = append(recs, fmt.Sprintf("INVESTIGATE: Enrolment volume deviates sharply from the national average (contribution %.1f)", f.Contribution))
		case factorAnomalies:
			recs = append(recs, "AUDIT: Review flagged anomalies before the next reporting cycle")
		}
	}

	return recs
}
