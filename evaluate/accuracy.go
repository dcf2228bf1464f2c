package evaluate

import (
	"math"

	"forecast-viewer/models"
)

// MAE returns the mean absolute error over the pairs where both values are numbers.
// It returns NaN when there is no such pair.
func MAE(actual, predicted []float64) float64 {
	sum, n := 0.0, 0
	forEachPair(actual, predicted, func(a, p float64) {
		sum += math.Abs(a - p)
		n++
	})
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// RMSE returns the root mean squared error over the pairs where both values are numbers.
// It returns NaN when there is no such pair.
func RMSE(actual, predicted []float64) float64 {
	sum, n := 0.0, 0
	forEachPair(actual, predicted, func(a, p float64) {
		d := a - p
		sum += d * d
		n++
	})
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n))
}

// Summarize computes the accuracy summary of a forecast series.
func Summarize(s models.ForecastSeries) models.Accuracy {
	n := 0
	forEachPair(s.Actual, s.Predicted, func(_, _ float64) { n++ })
	return models.Accuracy{
		Points: n,
		MAE:    MAE(s.Actual, s.Predicted),
		RMSE:   RMSE(s.Actual, s.Predicted),
	}
}

func forEachPair(actual, predicted []float64, fn func(a, p float64)) {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		fn(actual[i], predicted[i])
	}
}
