package analytics

import (
	"fmt"
	"math"

	"github.com/SharmARohitt/Gati-sub001/config"
	"github.com/SharmARohitt/Gati-sub001/models"
	"github.com/SharmARohitt/Gati-sub001/utils"
)

// Forecaster produces ensemble forecasts over daily trend series. Three
// candidate methods with different bias/variance tradeoffs are fitted
// independently, backtested on a trailing holdout, and combined with
// inverse-error weights.
type Forecaster struct {
	Policy config.AnalyticsPolicy
}

// candidate is one forecasting method: fit on history, then predict a
// number of future steps.
type candidate struct {
	name    string
	predict func(history []float64, steps int) []float64
}

func candidates() []candidate {
	return []candidate{
		{name: "moving_average", predict: movingAverageForecast},
		{name: "linear_trend", predict: linearTrendForecast},
		{name: "exp_smoothing", predict: expSmoothingForecast},
	}
}

// movingAverageForecast extends the trailing 7-day mean flat into the
// future. Low variance, high bias.
func movingAverageForecast(history []float64, steps int) []float64 {
	window := 7
	if len(history) < window {
		window = len(history)
	}
	level := utils.Mean(history[len(history)-window:])

	out := make([]float64, steps)
	for i := range out {
		out[i] = level
	}
	return out
}

// linearTrendForecast extrapolates a least-squares line. Captures trend,
// sensitive to noise.
func linearTrendForecast(history []float64, steps int) []float64 {
	slope, intercept := utils.LinearFit(history)
	n := float64(len(history))

	out := make([]float64, steps)
	for i := range out {
		out[i] = intercept + slope*(n+float64(i))
	}
	return out
}

// expSmoothingForecast is simple exponential smoothing with a fixed
// alpha, projected flat from the final level.
func expSmoothingForecast(history []float64, steps int) []float64 {
	const alpha = 0.3
	level := history[0]
	for _, v := range history[1:] {
		level = alpha*v + (1-alpha)*level
	}

	out := make([]float64, steps)
	for i := range out {
		out[i] = level
	}
	return out
}

// EnsembleForecast validates inputs, backtests every candidate on the
// trailing ~20% of history, weights candidates by inverse RMSE and
// produces the combined forecast with prediction bounds.
func (f *Forecaster) EnsembleForecast(trends []models.TrendPoint, metric string, periods int) (models.ForecastResult, error) {
	if !models.IsTrackedMetric(metric) {
		return models.ForecastResult{}, &models.InvalidParameterError{
			Param:  "metric",
			Reason: fmt.Sprintf("unknown metric %q", metric),
		}
	}
	if periods < 1 {
		return models.ForecastResult{}, &models.InvalidParameterError{
			Param:  "periods",
			Reason: "must be at least 1",
		}
	}
	if periods > f.Policy.ForecastMaxPeriods {
		return models.ForecastResult{}, &models.InvalidParameterError{
			Param:  "periods",
			Reason: fmt.Sprintf("horizon %d exceeds maximum %d", periods, f.Policy.ForecastMaxPeriods),
		}
	}
	if len(trends) < f.Policy.ForecastMinHistory {
		return models.ForecastResult{}, &models.InsufficientHistoryError{
			Required: f.Policy.ForecastMinHistory,
			Got:      len(trends),
		}
	}

	values := MetricValues(trends, metric)
	n := len(values)

	// Trailing ~20% holdout, at least one point, never the whole series.
	holdout := n / 5
	if holdout < 1 {
		holdout = 1
	}
	train := values[:n-holdout]
	actual := values[n-holdout:]

	cands := candidates()
	backtests := make([][]float64, len(cands))
	errors := make([]float64, len(cands))
	for i, c := range cands {
		backtests[i] = c.predict(train, holdout)
		errors[i] = rmse(actual, backtests[i])
	}

	// Inverse-error weighting, normalized to sum to 1. The epsilon keeps
	// a perfect backtest from collapsing the weights to a single method.
	weights := make([]float64, len(cands))
	var weightSum float64
	for i, e := range errors {
		weights[i] = 1 / (e + 1e-9)
		weightSum += weights[i]
	}
	for i := range weights {
		weights[i] /= weightSum
	}

	// Ensemble error on the holdout determines the reported metrics and
	// the residual spread for the prediction bounds.
	ensembleBacktest := make([]float64, holdout)
	for j := 0; j < holdout; j++ {
		for i := range cands {
			ensembleBacktest[j] += weights[i] * backtests[i][j]
		}
	}
	residuals := make([]float64, holdout)
	for j := range residuals {
		residuals[j] = actual[j] - ensembleBacktest[j]
	}
	residualStd := utils.StdDev(residuals)
	ensembleRMSE := rmse(actual, ensembleBacktest)
	ensembleMAPE := mape(actual, ensembleBacktest)

	// Refit every candidate on the full history for the real forecast.
	finals := make([][]float64, len(cands))
	for i, c := range cands {
		finals[i] = c.predict(values, periods)
	}

	lastDate := trends[len(trends)-1].Date
	forecast := make([]models.ForecastPoint, periods)
	predicted := make([]float64, periods)
	for p := 0; p < periods; p++ {
		var value float64
		for i := range cands {
			value += weights[i] * finals[i][p]
		}
		// Counts cannot go negative.
		if value < 0 {
			value = 0
		}
		predicted[p] = value

		lower := value - f.Policy.ForecastIntervalK*residualStd
		if lower < 0 {
			lower = 0
		}
		upper := value + f.Policy.ForecastIntervalK*residualStd

		daysOut := p + 1
		confidence := 95 - float64(daysOut)
		if confidence < 50 {
			confidence = 50
		}

		forecast[p] = models.ForecastPoint{
			Date:           lastDate.AddDate(0, 0, daysOut),
			PredictedValue: value,
			LowerBound:     lower,
			UpperBound:     upper,
			Confidence:     confidence,
		}
	}

	direction, strength := analyzeTrend(predicted)

	return models.ForecastResult{
		Metric:         metric,
		Forecast:       forecast,
		ModelName:      "ensemble(moving_average,linear_trend,exp_smoothing)",
		Accuracy:       utils.Clamp(100*(1-ensembleMAPE/100), 0, 100),
		RMSE:           ensembleRMSE,
		MAPE:           ensembleMAPE,
		TrendDirection: direction,
		TrendStrength:  strength,
	}, nil
}

// DetectSeasonality tests the candidate periods (weekly, monthly) via
// autocorrelation and returns the strongest one, or a non-detection when
// nothing clears the minimum strength threshold.
func (f *Forecaster) DetectSeasonality(trends []models.TrendPoint, metric string) (models.SeasonalityResult, error) {
	if !models.IsTrackedMetric(metric) {
		return models.SeasonalityResult{}, &models.InvalidParameterError{
			Param:  "metric",
			Reason: fmt.Sprintf("unknown metric %q", metric),
		}
	}

	values := MetricValues(trends, metric)
	result := models.SeasonalityResult{Metric: metric}

	for _, period := range []int{7, 30} {
		// Need at least two full cycles for the lag to mean anything.
		if len(values) < period*2 {
			continue
		}
		score := utils.Autocorrelation(values, period)
		if score > result.Strength {
			result.Strength = score
			result.Period = period
		}
	}

	if result.Strength >= f.Policy.SeasonalityMinScore {
		result.Detected = true
	} else {
		result.Period = 0
	}
	return result, nil
}

// analyzeTrend classifies the forecast path by its normalized slope.
func analyzeTrend(values []float64) (string, float64) {
	if len(values) < 2 {
		return "stable", 0
	}
	slope, _ := utils.LinearFit(values)
	mean := utils.Mean(values)
	if mean == 0 {
		return "stable", 0
	}

	normalized := slope / mean
	strength := math.Min(1, math.Abs(normalized)*10)
	switch {
	case normalized > 0.01:
		return "increasing", strength
	case normalized < -0.01:
		return "decreasing", strength
	default:
		return "stable", strength
	}
}

func rmse(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// mape returns the mean absolute percentage error, skipping zero actuals
// so sparse days do not blow the metric up.
func mape(actual, predicted []float64) float64 {
	var sum float64
	count := 0
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}
