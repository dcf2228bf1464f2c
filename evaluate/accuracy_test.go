package evaluate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"forecast-viewer/models"
)

func TestMAEAndRMSE(t *testing.T) {
	actual := []float64{10, 12, 14}
	predicted := []float64{11, 13, 12}

	assert.InDelta(t, (1.0+1.0+2.0)/3, MAE(actual, predicted), 1e-9)
	assert.InDelta(t, math.Sqrt((1.0+1.0+4.0)/3), RMSE(actual, predicted), 1e-9)
}

func TestSkipsNaNPairs(t *testing.T) {
	actual := []float64{10, math.NaN(), 14}
	predicted := []float64{11, 13, math.NaN()}

	assert.InDelta(t, 1.0, MAE(actual, predicted), 1e-9)
	assert.InDelta(t, 1.0, RMSE(actual, predicted), 1e-9)
}

func TestNoPairs(t *testing.T) {
	assert.True(t, math.IsNaN(MAE(nil, nil)))
	assert.True(t, math.IsNaN(RMSE([]float64{math.NaN()}, []float64{1})))
}

func TestSummarize(t *testing.T) {
	s := models.ForecastSeries{
		Timestamps: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Actual:     models.Values{10, 12, math.NaN()},
		Predicted:  models.Values{11, 13, 15},
	}
	acc := Summarize(s)
	assert.Equal(t, 2, acc.Points)
	assert.InDelta(t, 1.0, acc.MAE, 1e-9)
	assert.InDelta(t, 1.0, acc.RMSE, 1e-9)
}
