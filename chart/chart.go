// Package chart renders engine chart configurations as SVG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Khayman1/titanic-streamlit/engine"
)

// ErrUnsupportedChart is returned for chart types the renderer cannot draw.
var ErrUnsupportedChart = errors.New("unsupported chart type")

// Size is the canvas size of a rendered chart.
type Size struct {
	Width, Height vg.Length
}

// DefaultSize matches a dashboard column.
var DefaultSize = Size{Width: 6 * vg.Inch, Height: 4 * vg.Inch}

// SVG renders cfg. Bar and grouped bar charts get nominal X axes; pie
// slices are labelled with their share and count ("61.6% (549명)").
func SVG(cfg *engine.ChartConfig, size Size) ([]byte, error) {
	if cfg == nil || len(cfg.Series) == 0 {
		return nil, errors.New("chart: no series")
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	p := plot.New()
	p.Title.Text = cfg.Title

	var err error
	switch cfg.ChartType {
	case "bar":
		err = bars(p, cfg)
	case "grouped_bar":
		err = groupedBars(p, cfg)
	case "pie":
		err = pie(p, cfg)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedChart, cfg.ChartType)
	}
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(size.Width, size.Height, "svg")
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// ============================================================================
// BARS
// ============================================================================

func bars(p *plot.Plot, cfg *engine.ChartConfig) error {
	series := cfg.Series[0]
	values, highlighted := make(plotter.Values, len(series.Data)), make(plotter.Values, len(series.Data))
	var anyHighlight bool
	for i, pt := range series.Data {
		values[i] = pt.Value
		if pt.Highlight {
			highlighted[i] = pt.Value
			anyHighlight = true
		}
	}

	width := barWidth(len(values), 1)
	base, err := plotter.NewBarChart(values, width)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	base.Color = seriesColor(cfg, 0)
	base.LineStyle.Width = 0
	p.Add(base)

	if anyHighlight {
		over, err := plotter.NewBarChart(highlighted, width)
		if err != nil {
			return fmt.Errorf("chart: %w", err)
		}
		over.Color = parseColor(engine.HighlightColor)
		over.LineStyle.Width = 0
		p.Add(over)
	}

	axes(p, cfg, labels(series))
	return nil
}

func groupedBars(p *plot.Plot, cfg *engine.ChartConfig) error {
	n := len(cfg.Series)
	width := barWidth(len(cfg.Series[0].Data), n)
	for i, series := range cfg.Series {
		values := make(plotter.Values, len(series.Data))
		for j, pt := range series.Data {
			values[j] = pt.Value
		}
		bar, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("chart: %w", err)
		}
		bar.Color = seriesColor(cfg, i)
		bar.LineStyle.Width = 0
		bar.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bar)
		p.Legend.Add(series.Name, bar)
	}
	p.Legend.Top = true
	axes(p, cfg, labels(cfg.Series[0]))
	return nil
}

func axes(p *plot.Plot, cfg *engine.ChartConfig, names []string) {
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	p.Y.Min = 0
	p.NominalX(names...)
	if cfg.ShowGrid {
		grid := plotter.NewGrid()
		grid.Vertical.Color = nil
		p.Add(grid)
	}
}

// barWidth splits a category slot of the default canvas between n bars.
func barWidth(categories, n int) vg.Length {
	slot := (DefaultSize.Width - 2*vg.Inch) / vg.Length(max(categories, 1))
	w := slot * 0.8 / vg.Length(max(n, 1))
	return min(w, vg.Points(40))
}

func labels(s engine.ChartSeries) []string {
	out := make([]string, len(s.Data))
	for i, pt := range s.Data {
		out[i] = pt.Label
	}
	return out
}

// ============================================================================
// PIE
// ============================================================================

func pie(p *plot.Plot, cfg *engine.ChartConfig) error {
	series := cfg.Series[0]
	total := series.Total()
	if total <= 0 {
		return errors.New("chart: pie with zero total")
	}

	slices := make([]slice, len(series.Data))
	for i, pt := range series.Data {
		c := seriesColor(cfg, i)
		if pt.Highlight {
			c = parseColor(engine.HighlightColor)
		}
		slices[i] = slice{
			fraction: pt.Value / total,
			color:    c,
			label:    SliceLabel(pt.Value, total, pt.Count),
		}
		p.Legend.Add(pt.Label, slices[i])
	}
	p.Add(pieChart{slices: slices})
	p.HideAxes()
	p.Legend.Top = true
	return nil
}

// SliceLabel formats a pie slice as share and head count.
func SliceLabel(value, total float64, count int) string {
	return fmt.Sprintf("%.1f%% (%s명)", value/total*100, engine.FormatInt(count))
}

type slice struct {
	fraction float64
	color    color.Color
	label    string
}

// Thumbnail draws the legend swatch.
func (s slice) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// pieChart draws slices clockwise from twelve o'clock, like matplotlib
// with startangle=90 and counterclock=False.
type pieChart struct {
	slices []slice
}

// Plot implements plot.Plotter.
func (pc pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2 * 0.9

	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(10)),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}

	start := math.Pi / 2
	for _, s := range pc.slices {
		if s.fraction <= 0 {
			continue
		}
		sweep := -2 * math.Pi * s.fraction

		var path vg.Path
		path.Move(center)
		path.Line(vg.Point{
			X: center.X + radius*vg.Length(math.Cos(start)),
			Y: center.Y + radius*vg.Length(math.Sin(start)),
		})
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(s.color)
		c.Fill(path)

		mid := start + sweep/2
		c.FillText(sty, vg.Point{
			X: center.X + radius*0.6*vg.Length(math.Cos(mid)),
			Y: center.Y + radius*0.6*vg.Length(math.Sin(mid)),
		}, s.label)
		start += sweep
	}
}

// DataRange implements plot.DataRanger so the pie fills a unit square.
func (pieChart) DataRange() (xmin, xmax, ymin, ymax float64) { return -1, 1, -1, 1 }

// ============================================================================
// COLORS
// ============================================================================

func seriesColor(cfg *engine.ChartConfig, i int) color.Color {
	if len(cfg.Colors) > 0 {
		return parseColor(cfg.Colors[i%len(cfg.Colors)])
	}
	if i < len(cfg.Series) && cfg.Series[i].Color != "" {
		return parseColor(cfg.Series[i].Color)
	}
	return color.Gray{Y: 128}
}

func parseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.Gray{Y: 128}
	}
	return c
}
