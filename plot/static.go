package plot

import (
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
	"github.com/YuminosukeSato/diagplot/plot/device"
)

// panelLayout is the panel grid installed for static charts.
var panelLayout = device.Layout{Rows: 2, Cols: 2}

// cellPadding is the space between layout cells, in points.
const cellPadding = 8

// Figure is a rendered static chart.
type Figure struct {
	// Width and Height are the canvas size.
	Width  vg.Length
	Height vg.Length
	Format string
	Layout device.Layout
	// Row and Col locate the cell the panel was drawn into.
	Row, Col int

	chart  *Chart
	plot   *plot.Plot
	canvas vg.CanvasWriterTo
	path   string
}

// Chart returns the chart description the figure was drawn from.
func (f *Figure) Chart() *Chart { return f.chart }

// Plot returns the gonum plot of the panel.
func (f *Figure) Plot() *plot.Plot { return f.plot }

// Path returns the file the figure was saved to, or "" when it was not saved.
func (f *Figure) Path() string { return f.path }

// WriteTo writes the rendered vector document to w.
func (f *Figure) WriteTo(w io.Writer) (int64, error) { return f.canvas.WriteTo(w) }

// Save writes the rendered document to path. The parent directory must exist.
func (f *Figure) Save(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing output file")
		}
	}()
	if _, err := f.WriteTo(file); err != nil {
		return errors.Wrap(err, "writing output file")
	}
	f.path = path
	return nil
}

func newCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch format {
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	case "eps":
		return vgeps.New(w, h), nil
	}
	return nil, errors.NewInvalidArgumentError("format", "must be one of svg, pdf, eps", format)
}

// drawFigure draws c into the next free cell of dev on a canvas of the given
// size in inches.
func drawFigure(dev *device.Context, c *Chart, size []float64, format string) (*Figure, error) {
	p, err := staticPlot(c)
	if err != nil {
		return nil, err
	}
	w := vg.Length(size[0]) * vg.Inch
	h := vg.Length(size[1]) * vg.Inch
	canvas, err := newCanvas(format, w, h)
	if err != nil {
		return nil, err
	}
	row, col, err := dev.NextCell()
	if err != nil {
		return nil, err
	}
	dc := draw.New(canvas)
	p.Draw(dev.Tiles(cellPadding).At(dc, col, row))

	return &Figure{
		Width:  w,
		Height: h,
		Format: format,
		Layout: dev.Layout(),
		Row:    row,
		Col:    col,
		chart:  c,
		plot:   p,
		canvas: canvas,
	}, nil
}

// staticPlot converts the chart description into a gonum plot.
func staticPlot(c *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	for _, l := range c.Layers {
		switch l.Geom {
		case GeomTile:
			k := len(l.Grid.Labels)
			hm := plotter.NewHeatMap(l.Grid, tilePalette(l.Grid.Colors))
			hm.Min = 0
			hm.Max = float64(max(1, k-1))
			p.Add(hm)

		case GeomPoint:
			s, err := plotter.NewScatter(xys(l.Points))
			if err != nil {
				return nil, err
			}
			s.GlyphStyle.Color = l.Color
			s.GlyphStyle.Shape = draw.RingGlyph{}
			s.GlyphStyle.Radius = vg.Points(c.PointSize)
			p.Add(s)
			if c.Legend {
				p.Legend.Add(l.Name, s)
			}

		case GeomLine:
			line, err := plotter.NewLine(xys(l.Points))
			if err != nil {
				return nil, err
			}
			line.LineStyle = lineStyle(l)
			p.Add(line)

		case GeomBar:
			values := make(plotter.Values, len(l.Points))
			for i, pt := range l.Points {
				values[i] = pt.Y
			}
			bars, err := plotter.NewBarChart(values, vg.Points(max(1, 240/float64(len(values)))))
			if err != nil {
				return nil, err
			}
			bars.XMin = l.Points[0].X
			bars.Color = l.Color
			bars.LineStyle.Width = 0
			p.Add(bars)

		case GeomRefLine:
			f := plotter.NewFunction(func(x float64) float64 { return l.Intercept + l.Slope*x })
			f.LineStyle = lineStyle(l)
			p.Add(f)

		case GeomSegments:
			for _, s := range l.Segments {
				line, err := plotter.NewLine(plotter.XYs{{X: s.X1, Y: s.Y1}, {X: s.X2, Y: s.Y2}})
				if err != nil {
					return nil, err
				}
				line.LineStyle = lineStyle(l)
				p.Add(line)
			}

		case GeomText:
			ids := make([]string, len(l.Points))
			for i, pt := range l.Points {
				ids[i] = pt.ID
			}
			labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys(l.Points), Labels: ids})
			if err != nil {
				return nil, err
			}
			for i := range labels.TextStyle {
				labels.TextStyle[i].Color = l.Color
			}
			p.Add(labels)
		}
	}
	return p, nil
}

func lineStyle(l Layer) draw.LineStyle {
	s := draw.LineStyle{Color: l.Color, Width: vg.Points(1)}
	if l.Dashed {
		s.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	return s
}

func xys(pts []Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X = p.X
		out[i].Y = p.Y
	}
	return out
}

// tilePalette lightens the class colors so observations stay visible over
// the decision surface. The heat map needs at least two colors.
type tilePalette []color.Color

func (t tilePalette) Colors() []color.Color {
	out := make([]color.Color, 0, max(2, len(t)))
	for _, c := range t {
		r, g, b, _ := c.RGBA()
		out = append(out, color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0x59})
	}
	for len(out) < 2 {
		if len(out) == 0 {
			out = append(out, color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0x59})
			continue
		}
		out = append(out, out[len(out)-1])
	}
	return out
}
