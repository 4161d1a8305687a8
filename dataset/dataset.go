// Package dataset loads numeric tables from CSV and XLSX files into the
// matrices the estimators and the plot dispatcher consume.
//
// The first row is the header. One column is the response (the last column
// unless WithResponse names another), an optional id column supplies
// observation labels and every other column must be numeric.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// Dataset is a loaded table split into features and response.
type Dataset struct {
	Features []string
	Response string
	X        *mat.Dense
	Y        []float64
	// Labels holds the id column, or nil when none was requested.
	Labels []string
}

// Rows returns the number of observations.
func (d *Dataset) Rows() int { return len(d.Y) }

type config struct {
	response string
	id       string
	sheet    string
}

// Option configures how a table is split.
type Option func(*config)

// WithResponse names the response column.
func WithResponse(name string) Option { return func(c *config) { c.response = name } }

// WithIDColumn names a column holding observation labels.
func WithIDColumn(name string) Option { return func(c *config) { c.id = name } }

// WithSheet selects the XLSX sheet. The first sheet is used by default.
func WithSheet(name string) Option { return func(c *config) { c.sheet = name } }

// Load reads path, choosing the format from its extension (.csv or .xlsx).
func Load(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dataset %s", path)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(f, opts...)
	case ".xlsx":
		return ReadXLSX(f, opts...)
	default:
		return nil, errors.NewInvalidArgumentError("dataset", "extension must be .csv or .xlsx", ext)
	}
}

// ReadCSV parses a comma separated table.
func ReadCSV(r io.Reader, opts ...Option) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	return FromRows(rows, opts...)
}

// ReadXLSX parses a sheet of an Excel workbook.
func ReadXLSX(r io.Reader, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheet := cfg.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewValueError("dataset.ReadXLSX", "workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	return FromRows(rows, opts...)
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FromRows splits a header row and data rows into a Dataset. Blank rows are
// skipped; short rows are an error.
func FromRows(rows [][]string, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)
	if len(rows) < 2 {
		return nil, errors.NewValueError("dataset", "a header row and at least one data row are required")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	respCol := len(header) - 1
	if cfg.response != "" {
		respCol = slices.Index(header, cfg.response)
		if respCol < 0 {
			return nil, errors.NewInvalidArgumentError("response", "no such column", cfg.response)
		}
	}
	idCol := -1
	if cfg.id != "" {
		idCol = slices.Index(header, cfg.id)
		if idCol < 0 {
			return nil, errors.NewInvalidArgumentError("id_column", "no such column", cfg.id)
		}
		if idCol == respCol {
			return nil, errors.NewInvalidArgumentError("id_column", "cannot be the response column", cfg.id)
		}
	}

	var featCols []int
	ds := &Dataset{Response: header[respCol]}
	for j, h := range header {
		if j != respCol && j != idCol {
			featCols = append(featCols, j)
			ds.Features = append(ds.Features, h)
		}
	}
	if len(featCols) == 0 {
		return nil, errors.NewValueError("dataset", "no feature columns")
	}

	var data []float64
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := i + 2
		if len(row) < len(header) {
			return nil, errors.Newf("line %d: expected %d fields, got %d", line, len(header), len(row))
		}
		for _, j := range featCols {
			v, err := parse(row[j])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %q", line, header[j])
			}
			data = append(data, v)
		}
		y, err := parse(row[respCol])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d, column %q", line, header[respCol])
		}
		ds.Y = append(ds.Y, y)
		if idCol >= 0 {
			ds.Labels = append(ds.Labels, strings.TrimSpace(row[idCol]))
		}
	}
	if len(ds.Y) == 0 {
		return nil, errors.NewValueError("dataset", "no data rows")
	}
	ds.X = mat.NewDense(len(ds.Y), len(featCols), data)
	return ds, nil
}

func parse(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Newf("%q is not a number", s)
	}
	return v, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
