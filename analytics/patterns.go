package analytics

import (
	"fmt"
	"math"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/utils"
)

// PatternAnalyzer mines a trend window for sustained monotonic runs,
// single-period spikes and recurring cycles, and computes pairwise
// metric correlations.
type PatternAnalyzer struct {
	Policy     config.AnalyticsPolicy
	Forecaster *Forecaster
}

// DetectPatterns scans every tracked metric of a state's trend history.
// Each pattern is scored 0-100 from consistency (run length relative to
// the window) and magnitude (size relative to historical variance).
func (p *PatternAnalyzer) DetectPatterns(stateName string, trends []models.TrendPoint) []models.Pattern {
	patterns := make([]models.Pattern, 0)
	if len(trends) < 2 {
		return patterns
	}

	for _, metric := range models.TrackedMetrics {
		values := MetricValues(trends, metric)

		patterns = append(patterns, p.monotonicRuns(stateName, metric, values)...)
		patterns = append(patterns, p.spikes(stateName, metric, values)...)

		if cycle := p.cycle(metric, trends); cycle != nil {
			patterns = append(patterns, *cycle)
		}
	}
	return patterns
}

// monotonicRuns finds the longest strictly monotonic stretch per
// direction that clears the minimum consecutive-period length.
func (p *PatternAnalyzer) monotonicRuns(stateName, metric string, values []float64) []models.Pattern {
	var out []models.Pattern
	n := len(values)
	std := utils.StdDev(values)

	bestRun := func(rising bool) (start, length int) {
		runStart, runLen, bestStart, bestLen := 0, 1, 0, 1
		for i := 1; i < n; i++ {
			step := values[i] - values[i-1]
			if (rising && step > 0) || (!rising && step < 0) {
				runLen++
			} else {
				runStart, runLen = i, 1
			}
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
		}
		return bestStart, bestLen
	}

	for _, rising := range []bool{true, false} {
		start, length := bestRun(rising)
		if length < p.Policy.PatternMinRunLength {
			continue
		}

		consistency := float64(length) / float64(n)
		change := math.Abs(values[start+length-1] - values[start])
		magnitude := 1.0
		if std > 0 {
			magnitude = math.Min(1, change/(2*std))
		}
		strength := utils.Clamp((0.6*consistency+0.4*magnitude)*100, 0, 100)

		ptype := models.PatternMonotonicRise
		verb := "rose"
		if !rising {
			ptype = models.PatternMonotonicFall
			verb = "fell"
		}
		out = append(out, models.Pattern{
			Type:     ptype,
			Metric:   metric,
			Strength: strength,
			Description: fmt.Sprintf("%s %s for %d consecutive days in %s",
				metric, verb, length, stateName),
		})
	}
	return out
}

// spikes flags single-period jumps above the configured percentage
// threshold, scored by how far they sit outside historical variance.
func (p *PatternAnalyzer) spikes(stateName, metric string, values []float64) []models.Pattern {
	var out []models.Pattern
	std := utils.StdDev(values)

	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		pct := (values[i] - prev) / prev * 100
		if math.Abs(pct) < p.Policy.PatternSpikePercent {
			continue
		}

		magnitude := 1.0
		if std > 0 {
			magnitude = math.Min(1, math.Abs(values[i]-prev)/(3*std))
		}
		// A lone spike has no run length; its score is magnitude-driven
		// with a floor so threshold-clearing spikes always register.
		strength := utils.Clamp(40+magnitude*60, 0, 100)

		direction := "up"
		if pct < 0 {
			direction = "down"
		}
		out = append(out, models.Pattern{
			Type:     models.PatternSpike,
			Metric:   metric,
			Strength: strength,
			Description: fmt.Sprintf("%s spiked %s %.0f%% on day %d in %s",
				metric, direction, math.Abs(pct), i+1, stateName),
		})
	}
	return out
}

// cycle reuses seasonality detection for recurring weekly/monthly cycles.
func (p *PatternAnalyzer) cycle(metric string, trends []models.TrendPoint) *models.Pattern {
	season, err := p.Forecaster.DetectSeasonality(trends, metric)
	if err != nil || !season.Detected {
		return nil
	}

	label := "weekly"
	if season.Period == 30 {
		label = "monthly"
	}
	return &models.Pattern{
		Type:     models.PatternCycle,
		Metric:   metric,
		Strength: utils.Clamp(season.Strength*100, 0, 100),
		Description: fmt.Sprintf("%s repeats on a %s cycle (autocorrelation %.2f)",
			metric, label, season.Strength),
	}
}

// FindCorrelations computes Pearson coefficients between every pair of
// tracked metrics over the trend window. Correlation is symmetric, so
// each unordered pair appears once. Zero-variance series resolve to a
// zero coefficient rather than an error.
func FindCorrelations(trends []models.TrendPoint) []models.Correlation {
	out := make([]models.Correlation, 0)
	for i := 0; i < len(models.TrackedMetrics); i++ {
		for j := i + 1; j < len(models.TrackedMetrics); j++ {
			a := models.TrackedMetrics[i]
			b := models.TrackedMetrics[j]
			r := MetricCorrelation(trends, a, b)
			out = append(out, models.Correlation{
				MetricA:     a,
				MetricB:     b,
				Coefficient: r,
				Strength:    correlationStrength(r),
			})
		}
	}
	return out
}

// MetricCorrelation returns the Pearson coefficient for one metric pair.
func MetricCorrelation(trends []models.TrendPoint, metricA, metricB string) float64 {
	return utils.Pearson(MetricValues(trends, metricA), MetricValues(trends, metricB))
}

func correlationStrength(r float64) models.CorrelationStrength {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return models.CorrelationStrong
	case abs >= 0.3:
		return models.CorrelationModerate
	default:
		return models.CorrelationWeak
	}
}
