package models

// Dataset is one line of the chart
type Dataset struct {
	Label string `json:"label"`
	Data  Values `json:"data"`
	Color string `json:"color"` // a CSS color name or #rrggbb
	Fill  bool   `json:"fill"`
}

// ChartConfig is everything the charting library needs to draw the forecast
type ChartConfig struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}
