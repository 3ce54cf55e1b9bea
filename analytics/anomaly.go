package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/utils"
)

// minAnomalyHistory is the number of historical points a series needs
// before its latest value can be judged against it.
const minAnomalyHistory = 7

// AnomalyDetector flags metric observations that deviate from the
// entity's own history. Deviation is a z-score against the historical
// mean; when variance is near zero the percentile rank decides instead.
type AnomalyDetector struct {
	Policy config.AnalyticsPolicy
}

// DetectForSeries examines the most recent point of a trend series for
// one (entity, metric) pair. Returns nil when the series is too short or
// the deviation stays under the low threshold.
func (d *AnomalyDetector) DetectForSeries(entityID, metric string, trends []models.TrendPoint) *models.AnomalyDetection {
	if len(trends) < minAnomalyHistory+1 {
		return nil
	}

	values := MetricValues(trends, metric)
	history := values[:len(values)-1]
	actual := values[len(values)-1]

	mean := utils.Mean(history)
	std := utils.StdDev(history)

	var z float64
	if std < 1e-9 {
		// Flat history: any departure is maximally surprising, equality
		// is not surprising at all.
		if actual == mean {
			return nil
		}
		// Rank the value against history: a point past every historical
		// observation gets the critical deviation, anything milder the
		// high one.
		rank := utils.PercentileRank(history, actual)
		z = d.Policy.AnomalyHighZ
		if rank == 0 || rank == 1 {
			z = d.Policy.AnomalyCriticalZ
		}
		if actual < mean {
			z = -z
		}
	} else {
		z = (actual - mean) / std
	}

	severity, reported := d.severityFor(math.Abs(z))
	if !reported {
		return nil
	}

	direction := "above"
	if z < 0 {
		direction = "below"
	}

	return &models.AnomalyDetection{
		EntityID:      entityID,
		Metric:        metric,
		Severity:      severity,
		ExpectedValue: mean,
		ActualValue:   actual,
		Deviation:     z,
		Confidence:    utils.Clamp(50+math.Abs(z)*12.5, 50, 99),
		Explanation: fmt.Sprintf(
			"%s for %s: actual %.0f vs expected %.0f (%.1fσ %s normal, %s severity)",
			metric, entityID, actual, mean, math.Abs(z), direction, severity),
		Timestamp: trends[len(trends)-1].Date,
	}
}

func (d *AnomalyDetector) severityFor(absZ float64) (models.AnomalySeverity, bool) {
	switch {
	case absZ >= d.Policy.AnomalyCriticalZ:
		return models.SeverityCritical, true
	case absZ >= d.Policy.AnomalyHighZ:
		return models.SeverityHigh, true
	case absZ >= d.Policy.AnomalyMediumZ:
		return models.SeverityMedium, true
	case absZ >= d.Policy.AnomalyLowZ:
		return models.SeverityLow, true
	default:
		return "", false
	}
}

// SortAnomalies orders a result list by severity descending, ties broken
// by absolute deviation descending.
func SortAnomalies(anomalies []models.AnomalyDetection) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].Severity.Rank() != anomalies[j].Severity.Rank() {
			return anomalies[i].Severity.Rank() > anomalies[j].Severity.Rank()
		}
		return math.Abs(anomalies[i].Deviation) > math.Abs(anomalies[j].Deviation)
	})
}
