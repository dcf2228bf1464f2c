package render

import (
	"fmt"
	"html/template"
	"io"
	"math"

	"forecast-viewer/view"
)

// PageData is what the forecast page shows
type PageData struct {
	Title    string
	Frame    view.Frame
	ImageURL string // chart image location, used for chart frames
}

var funcs = template.FuncMap{
	"metric": func(v float64) string {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "n/a"
		}
		return fmt.Sprintf("%.3f", v)
	},
}

var pageTemplate = template.Must(template.New("page").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{- if eq .Frame.Kind "loading"}}
<meta http-equiv="refresh" content="1">
{{- end}}
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.chart img { max-width: 100%; }
.error { color: #b00020; }
.warnings { font-size: 0.9em; color: #555; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="chart">
{{- if eq .Frame.Kind "chart"}}
<img src="{{.ImageURL}}" alt="{{.Title}}">
<p>MAE: {{metric .Frame.Accuracy.MAE}} &middot; RMSE: {{metric .Frame.Accuracy.RMSE}} &middot; points: {{.Frame.Accuracy.Points}}</p>
{{- else if eq .Frame.Kind "error"}}
<p class="error">Could not load forecast: {{.Frame.Message}}</p>
{{- else}}
<p>{{.Frame.Message}}</p>
{{- end}}
</div>
{{- with .Frame.Warnings}}
<details class="warnings">
<summary>{{len .}} row warning(s)</summary>
<ul>
{{- range .}}
<li>line {{.Line}}, {{.Field}}: {{.Reason}} ({{printf "%q" .Value}})</li>
{{- end}}
</ul>
</details>
{{- end}}
</body>
</html>
`))

// WritePage writes the HTML page for a view frame
func WritePage(w io.Writer, data PageData) error {
	if data.ImageURL == "" {
		data.ImageURL = "/chart.svg"
	}
	return pageTemplate.Execute(w, data)
}
