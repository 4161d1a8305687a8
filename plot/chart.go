package plot

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/diagnostics"
	"github.com/YuminosukeSato/diagplot/inspection"
	"github.com/YuminosukeSato/diagplot/metrics"
)

// Geom is the geometry of a chart layer.
type Geom int

// Layer geometries.
const (
	GeomPoint Geom = iota
	GeomLine
	GeomBar
	GeomTile
	GeomSegments
	GeomRefLine
	GeomText
)

// Point is one observation or vertex; ID is shown on labels and tooltips.
type Point struct {
	X, Y float64
	ID   string
}

// Segment is a straight line between two points.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Layer is one geometry drawn over the chart axes.
type Layer struct {
	Geom   Geom
	Name   string
	Color  color.Color
	Dashed bool

	Points   []Point
	Segments []Segment
	Grid     *Grid

	// Reference lines are y = Intercept + Slope*x.
	Slope     float64
	Intercept float64
}

func (l Layer) empty() bool {
	switch l.Geom {
	case GeomRefLine:
		return false
	case GeomTile:
		return l.Grid == nil
	case GeomSegments:
		return len(l.Segments) == 0
	}
	return len(l.Points) == 0
}

// Chart is the declarative description of one diagnostic chart. Both the
// static and the interactive renderer draw from it.
type Chart struct {
	Kind      Kind
	Panel     int
	Title     string
	XLabel    string
	YLabel    string
	Theme     string
	PointSize float64
	Legend    bool
	Layers    []Layer
}

func (c *Chart) add(layers ...Layer) {
	for _, l := range layers {
		if !l.empty() {
			c.Layers = append(c.Layers, l)
		}
	}
}

// Layer returns the first layer with geometry g.
func (c *Chart) Layer(g Geom) (Layer, bool) {
	for _, l := range c.Layers {
		if l.Geom == g {
			return l, true
		}
	}
	return Layer{}, false
}

var (
	referenceColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	smootherColor  = color.RGBA{R: 0xdf, G: 0x53, B: 0x6b, A: 0xff}
	contourColor   = color.RGBA{A: 0xff}
	labelColor     = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// smootherSpan is the running-median window as a fraction of the observations.
const smootherSpan = 0.25

// builder carries one validated request through statistics and chart building.
type builder struct {
	ctx    context.Context
	handle any
	model  diagnostics.Model
	spec   kindSpec
	req    *Request
	custom customization
	render renderOptions
	color  color.Color
	format string
	frame  *diagnostics.Frame
}

func (b *builder) build() (*Chart, error) {
	frame, err := diagnostics.Compute(b.model, b.spec.needs, diagnostics.Inputs{
		X:      b.req.Features,
		Y:      b.req.Response,
		Labels: b.req.Labels,
	})
	if err != nil {
		return nil, err
	}
	b.frame = frame
	return b.spec.build(b)
}

func (b *builder) newChart(title, xLabel, yLabel string) *Chart {
	c := &Chart{
		Kind:      b.req.Kind,
		Panel:     b.spec.panel,
		Title:     title,
		XLabel:    xLabel,
		YLabel:    yLabel,
		Theme:     b.custom.theme,
		PointSize: b.render.pointSize,
	}
	if b.custom.title != "" {
		c.Title = b.custom.title
	}
	if b.custom.xLabel != "" {
		c.XLabel = b.custom.xLabel
	}
	if b.custom.yLabel != "" {
		c.YLabel = b.custom.yLabel
	}
	return c
}

func (b *builder) values(s diagnostics.Statistic) ([]float64, error) {
	return b.frame.Values(s)
}

// points pairs xs and ys with the frame ids, dropping non-finite pairs.
func (b *builder) points(xs, ys []float64) []Point {
	pts := make([]Point, 0, len(xs))
	for i := range xs {
		if finite(xs[i], ys[i]) {
			pts = append(pts, Point{X: xs[i], Y: ys[i], ID: b.frame.IDs[i]})
		}
	}
	return pts
}

func (b *builder) pointLayer(xs, ys []float64) Layer {
	return Layer{Geom: GeomPoint, Name: "observations", Color: b.color, Points: b.points(xs, ys)}
}

// labels marks the observations with the largest |score|.
func (b *builder) labels(xs, ys, score []float64) Layer {
	l := Layer{Geom: GeomText, Name: "labels", Color: labelColor}
	for _, i := range diagnostics.Extremes(score, b.render.idN) {
		if finite(xs[i], ys[i]) {
			l.Points = append(l.Points, Point{X: xs[i], Y: ys[i], ID: b.frame.IDs[i]})
		}
	}
	return l
}

func smoother(xs, ys []float64) Layer {
	sx, sy := diagnostics.Smooth(xs, ys, smootherSpan)
	l := Layer{Geom: GeomLine, Name: "smoother", Color: smootherColor}
	for i := range sx {
		if finite(sx[i], sy[i]) {
			l.Points = append(l.Points, Point{X: sx[i], Y: sy[i]})
		}
	}
	return l
}

func zeroLine() Layer {
	return Layer{Geom: GeomRefLine, Name: "zero", Color: referenceColor, Dashed: true}
}

func (b *builder) residualPanel() (*Chart, error) {
	fitted, err := b.values(diagnostics.Fitted)
	if err != nil {
		return nil, err
	}
	resid, err := b.values(diagnostics.Residuals)
	if err != nil {
		return nil, err
	}
	c := b.newChart("Residuals vs Fitted", "Fitted values", "Residuals")
	c.add(
		b.pointLayer(fitted, resid),
		zeroLine(),
		smoother(fitted, resid),
		b.labels(fitted, resid, resid),
	)
	return c, nil
}

func (b *builder) qqPanel() (*Chart, error) {
	std, err := b.values(diagnostics.StandardizedResiduals)
	if err != nil {
		return nil, err
	}
	q, err := diagnostics.NormalQQ(std)
	if err != nil {
		return nil, err
	}
	c := b.newChart("Normal Q-Q", "Theoretical Quantiles", "Standardized residuals")

	pts := Layer{Geom: GeomPoint, Name: "observations", Color: b.color}
	for i, j := range q.Index {
		pts.Points = append(pts.Points, Point{X: q.Theoretical[i], Y: q.Sample[i], ID: b.frame.IDs[j]})
	}
	labels := Layer{Geom: GeomText, Name: "labels", Color: labelColor}
	for _, i := range diagnostics.Extremes(q.Sample, b.render.idN) {
		labels.Points = append(labels.Points, pts.Points[i])
	}
	c.add(
		pts,
		Layer{Geom: GeomRefLine, Name: "reference", Color: referenceColor, Dashed: true, Slope: q.Slope, Intercept: q.Intercept},
		labels,
	)
	return c, nil
}

func (b *builder) scaleLocationPanel() (*Chart, error) {
	fitted, err := b.values(diagnostics.Fitted)
	if err != nil {
		return nil, err
	}
	std, err := b.values(diagnostics.StandardizedResiduals)
	if err != nil {
		return nil, err
	}
	root := make([]float64, len(std))
	for i, v := range std {
		root[i] = math.Sqrt(math.Abs(v))
	}
	c := b.newChart("Scale-Location", "Fitted values", "√|Standardized residuals|")
	c.add(
		b.pointLayer(fitted, root),
		smoother(fitted, root),
		b.labels(fitted, root, std),
	)
	return c, nil
}

func (b *builder) cooksPanel() (*Chart, error) {
	cooks, err := b.values(diagnostics.CooksDistance)
	if err != nil {
		return nil, err
	}
	index := make([]float64, len(cooks))
	bars := Layer{Geom: GeomBar, Name: "Cook's distance", Color: b.color}
	for i, d := range cooks {
		index[i] = float64(i + 1)
		if !finite(d) {
			d = 0
		}
		bars.Points = append(bars.Points, Point{X: index[i], Y: d, ID: b.frame.IDs[i]})
	}
	c := b.newChart("Cook's distance", "Obs. number", "Cook's distance")
	c.add(bars, b.labels(index, cooks, cooks))
	return c, nil
}

// cooksLevels are the Cook's distance contours drawn on the leverage panel.
var cooksLevels = []float64{0.5, 1}

func (b *builder) residualLeveragePanel() (*Chart, error) {
	lev, err := b.values(diagnostics.Leverage)
	if err != nil {
		return nil, err
	}
	std, err := b.values(diagnostics.StandardizedResiduals)
	if err != nil {
		return nil, err
	}
	cooks, err := b.values(diagnostics.CooksDistance)
	if err != nil {
		return nil, err
	}
	c := b.newChart("Residuals vs Leverage", "Leverage", "Standardized residuals")
	c.add(
		b.pointLayer(lev, std),
		zeroLine(),
		smoother(lev, std),
	)
	c.add(cooksContours(lev, b.frame.Params())...)
	c.add(b.labels(lev, std, cooks))
	return c, nil
}

// cooksContours traces |standardized residual| = sqrt(level*p*(1-h)/h) for
// each level, above and below zero.
func cooksContours(lev []float64, p int) []Layer {
	hMax := 0.0
	for _, h := range lev {
		if finite(h) && h < 1 && h > hMax {
			hMax = h
		}
	}
	if p <= 0 || hMax <= 0 {
		return nil
	}
	const steps = 101
	var layers []Layer
	for _, level := range cooksLevels {
		upper := Layer{Geom: GeomLine, Name: fmt.Sprintf("Cook's distance %g", level), Color: smootherColor, Dashed: true}
		lower := upper
		lower.Name += " (lower)"
		for k := 0; k < steps; k++ {
			h := hMax/100 + (hMax-hMax/100)*float64(k)/float64(steps-1)
			r := metrics.CooksContour(level, p, h)
			if !finite(r) {
				continue
			}
			upper.Points = append(upper.Points, Point{X: h, Y: r})
			lower.Points = append(lower.Points, Point{X: h, Y: -r})
		}
		layers = append(layers, upper, lower)
	}
	return layers
}

func (b *builder) cooksLeveragePanel() (*Chart, error) {
	lev, err := b.values(diagnostics.Leverage)
	if err != nil {
		return nil, err
	}
	cooks, err := b.values(diagnostics.CooksDistance)
	if err != nil {
		return nil, err
	}
	ratio := make([]float64, len(lev))
	for i, h := range lev {
		ratio[i] = math.NaN()
		if h < 1 {
			ratio[i] = h / (1 - h)
		}
	}
	c := b.newChart("Cook's dist vs Leverage h/(1-h)", "Leverage h/(1-h)", "Cook's distance")
	c.add(
		b.pointLayer(ratio, cooks),
		b.labels(ratio, cooks, cooks),
	)
	return c, nil
}

func (b *builder) partialDependence() (*Chart, error) {
	p := b.handle.(model.Predictor)
	res := b.render.resolution
	if res == 0 {
		res = 100
	}
	pd, err := inspection.Compute(b.ctx, p, b.req.Features, b.render.feature, inspection.WithGridResolution(res))
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("feature %d", pd.Feature)
	c := b.newChart("Partial Dependence on "+name, name, "Partial dependence")
	line := Layer{Geom: GeomLine, Name: "partial dependence", Color: b.color}
	for i, g := range pd.Grid {
		line.Points = append(line.Points, Point{X: g, Y: pd.Average[i], ID: fmt.Sprintf("%d", i+1)})
	}
	c.add(line)
	return c, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
