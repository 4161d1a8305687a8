package plot

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// customization is the parsed form of Request.Customization. Empty strings
// fall back to the per-kind defaults.
type customization struct {
	title          string
	xLabel         string
	yLabel         string
	theme          string
	boundaryColors []color.Color
	contour        bool
}

func parseCustomization(m map[string]any) (customization, error) {
	c := customization{theme: "white"}
	for key, v := range m {
		switch key {
		case "title", "x_label", "y_label", "theme":
			s, ok := v.(string)
			if !ok {
				return c, errors.NewInvalidArgumentError("customization."+key, "must be a string", v)
			}
			switch key {
			case "title":
				c.title = s
			case "x_label":
				c.xLabel = s
			case "y_label":
				c.yLabel = s
			default:
				if s != "" {
					c.theme = s
				}
			}
		case "boundary_colors":
			names, ok := stringPair(v)
			if !ok {
				return c, errors.NewInvalidArgumentError("customization.boundary_colors", "must be a pair of colors", v)
			}
			for _, name := range names {
				col, err := parseColor(name)
				if err != nil {
					return c, errors.NewInvalidArgumentError("customization.boundary_colors", err.Error(), v)
				}
				c.boundaryColors = append(c.boundaryColors, col)
			}
		case "contour":
			on, ok := v.(bool)
			if !ok {
				return c, errors.NewInvalidArgumentError("customization.contour", "must be a boolean", v)
			}
			c.contour = on
		}
	}
	return c, nil
}

func stringPair(v any) ([]string, bool) {
	switch p := v.(type) {
	case []string:
		return p, len(p) == 2
	case [2]string:
		return p[:], true
	case []any:
		if len(p) != 2 {
			return nil, false
		}
		out := make([]string, 2)
		for i, e := range p {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// renderOptions is the parsed form of Request.RenderOptions.
type renderOptions struct {
	pointSize  float64
	resolution int
	feature    int
	format     string
	idN        int
}

func parseRenderOptions(m map[string]any) (renderOptions, error) {
	o := renderOptions{pointSize: 2.5, idN: 3}
	for key, v := range m {
		switch key {
		case "point_size":
			f, ok := number(v)
			if !ok || f <= 0 {
				return o, errors.NewInvalidArgumentError("render_options.point_size", "must be a positive number", v)
			}
			o.pointSize = f
		case "grid_resolution":
			f, ok := number(v)
			if !ok || f < 2 || f != math.Trunc(f) {
				return o, errors.NewInvalidArgumentError("render_options.grid_resolution", "must be an integer >= 2", v)
			}
			o.resolution = int(f)
		case "feature":
			f, ok := number(v)
			if !ok || f < 0 || f != math.Trunc(f) {
				return o, errors.NewInvalidArgumentError("render_options.feature", "must be a non-negative integer", v)
			}
			o.feature = int(f)
		case "id_n":
			f, ok := number(v)
			if !ok || f < 0 || f != math.Trunc(f) {
				return o, errors.NewInvalidArgumentError("render_options.id_n", "must be a non-negative integer", v)
			}
			o.idN = int(f)
		case "format":
			s, ok := v.(string)
			if !ok || !validFormat(s) {
				return o, errors.NewInvalidArgumentError("render_options.format", "must be one of svg, pdf, eps", v)
			}
			o.format = s
		}
	}
	return o, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, errors.Finite(n)
	}
	return 0, false
}

func validFormat(f string) bool {
	switch f {
	case "svg", "pdf", "eps":
		return true
	}
	return false
}

// outputFormat picks the vector format from the explicit option or the file
// extension.
func outputFormat(path, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if path == "" {
		return "svg", nil
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !validFormat(ext) {
		return "", errors.NewInvalidArgumentError("output", "extension must be .svg, .pdf or .eps", path)
	}
	return ext, nil
}

func validateSize(size []float64) error {
	if len(size) != 2 {
		return errors.NewInvalidArgumentError("size", "must be exactly two numbers (width, height)", size)
	}
	for _, v := range size {
		if !errors.Finite(v) || v <= 0 {
			return errors.NewInvalidArgumentError("size", "width and height must be positive finite numbers", size)
		}
	}
	return nil
}

func validateColor(c string) error {
	if c == "" || strings.ContainsAny(c, " \t\n,;") {
		return errors.NewInvalidArgumentError("color", "must be a single color token", c)
	}
	if _, err := parseColor(c); err != nil {
		return errors.NewInvalidArgumentError("color", err.Error(), c)
	}
	return nil
}

// parseColor accepts CSS color names and #rgb / #rrggbb.
func parseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return nil, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid hex color %q", s)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

// ParseSize parses a canvas size such as "10x6", "10,6" or "10 6".
func ParseSize(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == 'x' || r == 'X' || r == ',' || r == ' '
	})
	size := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("size", "must be numeric", s)
		}
		size = append(size, v)
	}
	if err := validateSize(size); err != nil {
		return nil, err
	}
	return size, nil
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func rgbaColor(c color.Color, alpha float64) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", r>>8, g>>8, b>>8, alpha)
}
