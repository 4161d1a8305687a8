package plot

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotutil"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/metrics"
	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// defaultBoundaryResolution is the number of grid points per axis.
const defaultBoundaryResolution = 200

var defaultBoundaryColors = []color.Color{
	color.RGBA{R: 0xf8, G: 0x76, B: 0x6d, A: 0xff},
	color.RGBA{R: 0x00, G: 0xbf, B: 0xc4, A: 0xff},
}

// Grid is a decision surface over the first two features. It implements
// plotter.GridXYZ with the class index as Z.
type Grid struct {
	Xs, Ys []float64
	// Class holds class indexes row-major by y: Class[r*len(Xs)+c].
	Class []int
	// Labels maps class indexes to the labels predicted by the model.
	Labels []int
	Colors []color.Color
}

// Dims implements plotter.GridXYZ.
func (g *Grid) Dims() (c, r int) { return len(g.Xs), len(g.Ys) }

// Z implements plotter.GridXYZ.
func (g *Grid) Z(c, r int) float64 { return float64(g.Class[r*len(g.Xs)+c]) }

// X implements plotter.GridXYZ.
func (g *Grid) X(c int) float64 { return g.Xs[c] }

// Y implements plotter.GridXYZ.
func (g *Grid) Y(r int) float64 { return g.Ys[r] }

// Boundary returns the cell edges separating different predicted classes.
func (g *Grid) Boundary() []Segment {
	nx, ny := len(g.Xs), len(g.Ys)
	dx := (g.Xs[nx-1] - g.Xs[0]) / float64(nx-1)
	dy := (g.Ys[ny-1] - g.Ys[0]) / float64(ny-1)
	var segs []Segment
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			k := g.Class[r*nx+c]
			if c+1 < nx && g.Class[r*nx+c+1] != k {
				x := (g.Xs[c] + g.Xs[c+1]) / 2
				segs = append(segs, Segment{X1: x, Y1: g.Ys[r] - dy/2, X2: x, Y2: g.Ys[r] + dy/2})
			}
			if r+1 < ny && g.Class[(r+1)*nx+c] != k {
				y := (g.Ys[r] + g.Ys[r+1]) / 2
				segs = append(segs, Segment{X1: g.Xs[c] - dx/2, Y1: y, X2: g.Xs[c] + dx/2, Y2: y})
			}
		}
	}
	return segs
}

// decisionGrid predicts the class of every cell of a res×res grid spanning
// the observed range of the first two features, padded by 5%. Remaining
// features are held at their mean.
func decisionGrid(p model.Predictor, X mat.Matrix, y []float64, res int) (*Grid, error) {
	n, cols := X.Dims()
	if cols < 2 {
		return nil, errors.NewDimensionError("decisionGrid", 2, cols, 1)
	}
	axis := func(j int) []float64 {
		col := metrics.Column(X, j)
		lo, hi := floats.Min(col), floats.Max(col)
		pad := 0.05 * (hi - lo)
		if pad == 0 {
			pad = 0.5
		}
		return floats.Span(make([]float64, res), lo-pad, hi+pad)
	}
	g := &Grid{Xs: axis(0), Ys: axis(1)}

	means := make([]float64, cols)
	for j := 2; j < cols; j++ {
		means[j] = stat.Mean(metrics.Column(X, j), nil)
	}
	cells := mat.NewDense(res*res, cols, nil)
	for r, yv := range g.Ys {
		for c, xv := range g.Xs {
			i := r*res + c
			cells.SetRow(i, means)
			cells.Set(i, 0, xv)
			cells.Set(i, 1, yv)
		}
	}
	pred, err := p.Predict(cells)
	if err != nil {
		return nil, err
	}
	predicted := metrics.Column(pred, 0)

	labels := make([]int, 0, len(predicted)+n)
	for _, v := range predicted {
		labels = append(labels, int(math.Round(v)))
	}
	for _, v := range y {
		labels = append(labels, int(math.Round(v)))
	}
	slices.Sort(labels)
	g.Labels = slices.Compact(labels)

	g.Class = make([]int, len(predicted))
	for i, v := range predicted {
		g.Class[i], _ = slices.BinarySearch(g.Labels, int(math.Round(v)))
	}
	return g, nil
}

// classColors returns one color per class: the boundary pair first, then the
// plotutil default palette.
func classColors(pair []color.Color, k int) []color.Color {
	base := defaultBoundaryColors
	if len(pair) == 2 {
		base = pair
	}
	out := make([]color.Color, k)
	for i := range out {
		if i < len(base) {
			out[i] = base[i]
		} else {
			out[i] = plotutil.Color(i)
		}
	}
	return out
}

func (b *builder) decisionBoundary() (*Chart, error) {
	res := b.render.resolution
	if res == 0 {
		res = defaultBoundaryResolution
	}
	X, y := b.req.Features, b.req.Response
	g, err := decisionGrid(b.handle.(model.Predictor), X, y, res)
	if err != nil {
		return nil, err
	}
	g.Colors = classColors(b.custom.boundaryColors, len(g.Labels))

	c := b.newChart("Decision Boundary", "feature 0", "feature 1")
	c.Legend = true
	c.add(Layer{Geom: GeomTile, Name: "decision surface", Grid: g})

	n, _ := X.Dims()
	ids := b.req.Labels
	if ids == nil {
		ids = make([]string, n)
		for i := range ids {
			ids[i] = strconv.Itoa(i + 1)
		}
	}
	for k, label := range g.Labels {
		l := Layer{Geom: GeomPoint, Name: fmt.Sprintf("class %d", label), Color: g.Colors[k]}
		for i := 0; i < n; i++ {
			if int(math.Round(y[i])) == label {
				l.Points = append(l.Points, Point{X: X.At(i, 0), Y: X.At(i, 1), ID: ids[i]})
			}
		}
		c.add(l)
	}
	if b.custom.contour {
		c.add(Layer{Geom: GeomSegments, Name: "boundary", Color: contourColor, Segments: g.Boundary()})
	}
	return c, nil
}
