// Package charts builds Chart.js configurations for the dashboard and home pages.
//
// A chart is data plus display options; the browser renders it. Builders take
// functional options so callers only name what differs from the defaults.
package charts

import (
	"encoding/json"
	"html/template"
)

// Point is one labelled value.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Kind is the Chart.js chart type.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
	KindPie  Kind = "pie"
)

// Defaults shared by every chart.
const (
	DefaultColor  = "#8884d8"
	DefaultHeight = 200
)

// DefaultPieColors is the palette cycled through pie segments.
var DefaultPieColors = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042"}

// Chart is a renderable chart description.
type Chart struct {
	Kind     Kind
	Data     []Point
	Color    string
	Colors   []string
	Height   int
	ShowAxis bool
	Title    string
}

// Option customises a chart.
type Option func(*Chart)

// WithColor sets the series color of line and bar charts.
func WithColor(color string) Option {
	return func(c *Chart) { c.Color = color }
}

// WithColors sets the pie palette.
func WithColors(colors ...string) Option {
	return func(c *Chart) { c.Colors = colors }
}

// WithHeight sets the rendered height in pixels.
func WithHeight(h int) Option {
	return func(c *Chart) { c.Height = h }
}

// WithAxis toggles axes on line and bar charts.
func WithAxis(show bool) Option {
	return func(c *Chart) { c.ShowAxis = show }
}

// WithTitle sets a chart title.
func WithTitle(title string) Option {
	return func(c *Chart) { c.Title = title }
}

func build(kind Kind, data []Point, opts []Option) *Chart {
	c := &Chart{
		Kind:     kind,
		Data:     data,
		Color:    DefaultColor,
		Colors:   DefaultPieColors,
		Height:   DefaultHeight,
		ShowAxis: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Line builds a line chart.
func Line(data []Point, opts ...Option) *Chart { return build(KindLine, data, opts) }

// Bar builds a bar chart.
func Bar(data []Point, opts ...Option) *Chart { return build(KindBar, data, opts) }

// Pie builds a pie chart. Segment colors cycle through the palette.
func Pie(data []Point, opts ...Option) *Chart { return build(KindPie, data, opts) }

// SegmentColors returns one color per data point, cycling the palette.
func (c *Chart) SegmentColors() []string {
	palette := c.Colors
	if len(palette) == 0 {
		palette = DefaultPieColors
	}
	out := make([]string, len(c.Data))
	for i := range c.Data {
		out[i] = palette[i%len(palette)]
	}
	return out
}

type dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	Fill            bool      `json:"fill"`
	Tension         float64   `json:"tension,omitempty"`
}

type chartConfig struct {
	Type Kind `json:"type"`
	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []dataset `json:"datasets"`
	} `json:"data"`
	Options map[string]any `json:"options"`
}

// Config returns the Chart.js configuration object.
func (c *Chart) Config() any {
	var cfg chartConfig
	cfg.Type = c.Kind

	labels := make([]string, len(c.Data))
	values := make([]float64, len(c.Data))
	for i, p := range c.Data {
		labels[i] = p.Name
		values[i] = p.Value
	}
	cfg.Data.Labels = labels

	ds := dataset{Label: c.Title, Data: values}
	switch c.Kind {
	case KindPie:
		ds.BackgroundColor = c.SegmentColors()
	case KindBar:
		ds.BackgroundColor = c.Color
	default:
		ds.BorderColor = c.Color
		ds.Tension = 0.3
	}
	cfg.Data.Datasets = []dataset{ds}

	cfg.Options = map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"plugins": map[string]any{
			"legend": map[string]any{"display": c.Kind == KindPie},
		},
	}
	if c.Kind != KindPie {
		cfg.Options["scales"] = map[string]any{
			"x": map[string]any{"display": c.ShowAxis},
			"y": map[string]any{"display": c.ShowAxis},
		}
	}
	return cfg
}

// JSON returns the configuration as a script-safe template value.
func (c *Chart) JSON() (template.JS, error) {
	b, err := json.Marshal(c.Config())
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
