package plot

import (
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// pixelsPerInch converts the canvas size to CSS pixels.
const pixelsPerInch = 96

// tooltipFormat shows the series, the point id and its coordinates.
const tooltipFormat = "{a}<br/>id: {b}<br/>x, y: {c}"

// Interactive is an interactive chart. It is never written to disk by Render;
// callers embed it with Render(w).
type Interactive struct {
	// Width and Height are CSS sizes.
	Width  string
	Height string

	chart *Chart
	root  interface{ Render(w io.Writer) error }
}

// Chart returns the chart description the interactive chart was built from.
func (i *Interactive) Chart() *Chart { return i.chart }

// Render writes the chart as a standalone HTML page.
func (i *Interactive) Render(w io.Writer) error { return i.root.Render(w) }

func newInteractive(c *Chart, size []float64) *Interactive {
	it := &Interactive{
		Width:  strconv.Itoa(int(math.Round(size[0]*pixelsPerInch))) + "px",
		Height: strconv.Itoa(int(math.Round(size[1]*pixelsPerInch))) + "px",
		chart:  c,
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     it.Width,
			Height:    it.Height,
			Theme:     c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: tooltipFormat}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(c.Legend), Right: "10%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel, Type: "value", Min: "dataMin", Max: "dataMax"}),
	}

	if bars, ok := c.Layer(GeomBar); ok {
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(global,
			charts.WithXAxisOpts(opts.XAxis{Name: c.XLabel, Type: "category"}),
			charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel, Type: "value"}),
		)...)
		ids := make([]string, len(bars.Points))
		data := make([]opts.BarData, len(bars.Points))
		for i, p := range bars.Points {
			ids[i] = p.ID
			data[i] = opts.BarData{Name: p.ID, Value: p.Y}
		}
		bar.SetXAxis(ids).AddSeries(bars.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(bars.Color)}))
		it.root = bar
		return it
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(global,
		charts.WithXAxisOpts(opts.XAxis{Name: c.XLabel, Type: "value", Min: "dataMin", Max: "dataMax"}),
	)...)
	lo, hi := xRange(c)
	symbol := max(1, int(math.Round(c.PointSize*2.8)))

	for _, l := range c.Layers {
		switch l.Geom {
		case GeomTile:
			tile := max(1, int(math.Ceil(0.8*size[0]*pixelsPerInch/float64(len(l.Grid.Xs)))))
			series := make([][]opts.ScatterData, len(l.Grid.Labels))
			for r, y := range l.Grid.Ys {
				for col, x := range l.Grid.Xs {
					k := l.Grid.Class[r*len(l.Grid.Xs)+col]
					series[k] = append(series[k], opts.ScatterData{
						Name:       "class " + strconv.Itoa(l.Grid.Labels[k]),
						Value:      []float64{x, y},
						Symbol:     "rect",
						SymbolSize: tile,
					})
				}
			}
			for k, data := range series {
				scatter.AddSeries("surface "+strconv.Itoa(l.Grid.Labels[k]), data,
					charts.WithItemStyleOpts(opts.ItemStyle{Color: rgbaColor(l.Grid.Colors[k], 0.35)}))
			}

		case GeomPoint:
			scatter.AddSeries(l.Name, scatterData(l.Points, symbol),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(l.Color)}))

		case GeomText:
			scatter.AddSeries(l.Name, scatterData(l.Points, 1),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(l.Color)}),
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right", Formatter: "{b}"}))

		case GeomSegments:
			data := make([]opts.ScatterData, len(l.Segments))
			for i, s := range l.Segments {
				data[i] = opts.ScatterData{
					Name:       l.Name,
					Value:      []float64{(s.X1 + s.X2) / 2, (s.Y1 + s.Y2) / 2},
					SymbolSize: 2,
				}
			}
			scatter.AddSeries(l.Name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(l.Color)}))

		case GeomLine:
			scatter.Overlap(lineSeries(l, l.Points))

		case GeomRefLine:
			if lo <= hi {
				scatter.Overlap(lineSeries(l, []Point{
					{X: lo, Y: l.Intercept + l.Slope*lo},
					{X: hi, Y: l.Intercept + l.Slope*hi},
				}))
			}
		}
	}
	it.root = scatter
	return it
}

func scatterData(pts []Point, size int) []opts.ScatterData {
	data := make([]opts.ScatterData, len(pts))
	for i, p := range pts {
		data[i] = opts.ScatterData{Name: p.ID, Value: []float64{p.X, p.Y}, SymbolSize: size}
	}
	return data
}

func lineSeries(l Layer, pts []Point) *charts.Line {
	data := make([]opts.LineData, len(pts))
	for i, p := range pts {
		data[i] = opts.LineData{Name: p.ID, Value: []float64{p.X, p.Y}}
	}
	style := opts.LineStyle{Color: hexColor(l.Color)}
	if l.Dashed {
		style.Type = "dashed"
	}
	line := charts.NewLine()
	line.AddSeries(l.Name, data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(style),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(l.Color)}),
	)
	return line
}

// xRange returns the horizontal extent of every drawn point.
func xRange(c *Chart) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range c.Layers {
		for _, p := range l.Points {
			lo = math.Min(lo, p.X)
			hi = math.Max(hi, p.X)
		}
	}
	return lo, hi
}
