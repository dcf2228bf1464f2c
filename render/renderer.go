package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"forecast-viewer/models"
)

// ErrNoData is returned when no dataset holds a single number to draw
var ErrNoData = errors.New("no data to chart")

// Format is an image output format
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat parses "png" or "svg"
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unknown chart format %q (want png or svg)", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Options sizes the chart image
type Options struct {
	Width    int
	Height   int
	MaxTicks int // maximum number of labelled x-axis ticks
	Title    string
}

// Renderer draws chart configurations as line charts
type Renderer struct {
	opts   Options
	format Format
}

// NewRenderer creates a PNG renderer
func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	if opts.MaxTicks < 2 {
		opts.MaxTicks = 10
	}
	return &Renderer{opts: opts, format: FormatPNG}
}

// WithFormat returns a copy of the renderer that writes the given format
func (r *Renderer) WithFormat(f Format) *Renderer {
	cp := *r
	cp.format = f
	return &cp
}

// Format returns the renderer's output format
func (r *Renderer) Format() Format {
	return r.format
}

// Draw renders cfg in the renderer's format
func (r *Renderer) Draw(w io.Writer, cfg models.ChartConfig) error {
	return r.Render(w, cfg, r.format)
}

// Render writes cfg to w as a line chart in the given format
func (r *Renderer) Render(w io.Writer, cfg models.ChartConfig, format Format) error {
	ch, err := r.Chart(cfg)
	if err != nil {
		return err
	}
	if err := ch.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// Chart builds the go-chart definition for cfg.
// NaN values leave gaps: each dataset is drawn as one series per run of numbers,
// only the first run carrying the legend label.
func (r *Renderer) Chart(cfg models.ChartConfig) (chart.Chart, error) {
	var series []chart.Series
	for i, ds := range cfg.Datasets {
		style := datasetStyle(ds, i)
		named := false
		for _, seg := range segments(ds.Data) {
			xs := make([]float64, 0, seg.end-seg.start)
			ys := make([]float64, 0, seg.end-seg.start)
			for j := seg.start; j < seg.end; j++ {
				xs = append(xs, float64(j))
				ys = append(ys, ds.Data[j])
			}
			st := style
			if len(xs) == 1 {
				// a lone point has no line to stroke
				st.DotWidth = 3
				st.DotColor = style.StrokeColor
			}
			cs := chart.ContinuousSeries{XValues: xs, YValues: ys, Style: st}
			if !named {
				cs.Name = ds.Label
				named = true
			}
			series = append(series, cs)
		}
	}
	if len(series) == 0 {
		return chart.Chart{}, ErrNoData
	}

	ch := chart.Chart{
		Title:      r.opts.Title,
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: xTicks(cfg.Labels, r.opts.MaxTicks),
		},
		YAxis: chart.YAxis{
			Range: yRange(cfg.Datasets),
		},
		Series: series,
	}
	legend := chart.Chart{Series: namedSeries(series)}
	ch.Elements = []chart.Renderable{chart.Legend(&legend)}
	return ch, nil
}

// namedSeries keeps the series that carry a legend label, one per dataset
func namedSeries(series []chart.Series) []chart.Series {
	var out []chart.Series
	for _, s := range series {
		if s.GetName() != "" {
			out = append(out, s)
		}
	}
	return out
}

func datasetStyle(ds models.Dataset, index int) chart.Style {
	color := drawing.ParseColor(ds.Color)
	if color.IsZero() {
		color = chart.GetDefaultColor(index)
	}
	st := chart.Style{
		StrokeColor: color,
		StrokeWidth: 2,
	}
	if ds.Fill {
		st.FillColor = color.WithAlpha(64)
	}
	return st
}

type segment struct {
	start, end int
}

// segments returns the runs of consecutive numeric values
func segments(values []float64) []segment {
	var out []segment
	start := -1
	for i, v := range values {
		ok := !math.IsNaN(v) && !math.IsInf(v, 0)
		switch {
		case ok && start < 0:
			start = i
		case !ok && start >= 0:
			out = append(out, segment{start, i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, segment{start, len(values)})
	}
	return out
}

// xTicks labels at most max evenly spaced positions, always including the first and the last.
// A single label gets a blank companion tick so the axis never has a zero range.
func xTicks(labels []string, max int) []chart.Tick {
	n := len(labels)
	switch n {
	case 0:
		return []chart.Tick{{Value: 0}, {Value: 1}}
	case 1:
		return []chart.Tick{{Value: 0, Label: labels[0]}, {Value: 1}}
	}
	if max < 2 {
		max = 2
	}

	step := int(math.Ceil(float64(n-1) / float64(max-1)))
	if step < 1 {
		step = 1
	}
	var ticks []chart.Tick
	for i := 0; i < n-1; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	// drop the previous tick when it would crowd the last label
	if last := ticks[len(ticks)-1]; len(ticks) > 1 && float64(n-1)-last.Value < float64(step)/2 {
		ticks = ticks[:len(ticks)-1]
	}
	ticks = append(ticks, chart.Tick{Value: float64(n - 1), Label: labels[n-1]})
	return ticks
}

// yRange pads flat data so the y-axis always spans a non-zero range; nil lets go-chart decide.
func yRange(datasets []models.Dataset) chart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ds := range datasets {
		for _, v := range ds.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) || lo != hi {
		return nil
	}
	pad := math.Abs(lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
