package analytics

import (
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/utils"
)

// MetricValues extracts one metric from a trend series as floats.
func MetricValues(trends []models.TrendPoint, metric string) []float64 {
	values := make([]float64, len(trends))
	for i, tp := range trends {
		switch metric {
		case models.MetricBiometricUpdates:
			values[i] = float64(tp.BiometricUpdates)
		case models.MetricDemographicUpdates:
			values[i] = float64(tp.DemographicUpdates)
		default:
			values[i] = float64(tp.Enrolments)
		}
	}
	return values
}

// CalculateGrowthRates computes percentage growth per metric by comparing
// the mean of the most-recent third of the window against the mean of the
// earliest third. Comparing window means rather than endpoints keeps the
// rate robust to single-day noise. Series shorter than 2 points yield
// zero growth.
func CalculateGrowthRates(trends []models.TrendPoint) models.GrowthRates {
	return models.GrowthRates{
		Enrolments:         growthRate(MetricValues(trends, models.MetricEnrolments)),
		BiometricUpdates:   growthRate(MetricValues(trends, models.MetricBiometricUpdates)),
		DemographicUpdates: growthRate(MetricValues(trends, models.MetricDemographicUpdates)),
	}
}

func growthRate(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	third := n / 3
	if third < 1 {
		third = 1
	}

	early := utils.Mean(values[:third])
	recent := utils.Mean(values[n-third:])

	if early == 0 {
		return 0
	}
	return (recent - early) / early * 100
}
