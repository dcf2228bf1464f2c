package view

import "forecast-viewer/models"

// Dataset labels and colors of the forecast chart
const (
	ForecastLabel = "Forecast"
	ActualLabel   = "Actual"
	ForecastColor = "blue"
	ActualColor   = "green"
)

// BuildChartConfig maps a forecast series onto the chart configuration:
// the timestamps become the x-axis labels, followed by the predicted and the actual line.
func BuildChartConfig(s models.ForecastSeries) models.ChartConfig {
	return models.ChartConfig{
		Labels: s.Timestamps,
		Datasets: []models.Dataset{
			{
				Label: ForecastLabel,
				Data:  s.Predicted,
				Color: ForecastColor,
				Fill:  false,
			},
			{
				Label: ActualLabel,
				Data:  s.Actual,
				Color: ActualColor,
				Fill:  false,
			},
		},
	}
}
