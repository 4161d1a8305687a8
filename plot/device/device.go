// Package device holds the process-wide rendering state shared by static
// charts: the panel layout and the active output device.
//
// Callers never mutate the state directly. Acquire installs a layout for the
// duration of one rendering and returns a restore function that puts the
// previous state back; restore must run on every exit path:
//
//	ctx, restore := device.Acquire(device.Layout{Rows: 2, Cols: 2}, "svg")
//	defer restore()
package device

import (
	"fmt"
	"sync"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Layout is a grid of panel cells.
type Layout struct {
	Rows int
	Cols int
}

// Cells returns the number of cells in the layout.
func (l Layout) Cells() int { return l.Rows * l.Cols }

// State is a snapshot of the rendering state.
type State struct {
	Layout Layout
	// Next is the zero-based index of the next free cell, in row-major order.
	Next   int
	Device string
}

// Default is the state before any rendering: one cell and no device.
var Default = State{Layout: Layout{Rows: 1, Cols: 1}, Device: "null"}

var (
	mu      sync.Mutex
	current = Default
)

// Current returns a snapshot of the rendering state.
func Current() State {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Context is the scoped handle returned by Acquire.
type Context struct {
	layout Layout
}

// Acquire saves the current state, installs layout on device dev and returns
// the scoped context together with the function restoring the saved state.
// Calling restore more than once is harmless.
func Acquire(layout Layout, dev string) (*Context, func()) {
	if layout.Rows < 1 {
		layout.Rows = 1
	}
	if layout.Cols < 1 {
		layout.Cols = 1
	}

	mu.Lock()
	saved := current
	current = State{Layout: layout, Device: dev}
	mu.Unlock()

	var once sync.Once
	restore := func() {
		once.Do(func() {
			mu.Lock()
			current = saved
			mu.Unlock()
		})
	}
	return &Context{layout: layout}, restore
}

// Layout returns the installed layout.
func (c *Context) Layout() Layout { return c.layout }

// Tiles returns the gonum/plot tiling matching the installed layout, with
// pad points between cells.
func (c *Context) Tiles(pad float64) draw.Tiles {
	return draw.Tiles{
		Rows: c.layout.Rows,
		Cols: c.layout.Cols,
		PadX: vg.Points(pad),
		PadY: vg.Points(pad),
	}
}

// NextCell claims the next free cell and returns its row and column.
func (c *Context) NextCell() (row, col int, err error) {
	mu.Lock()
	defer mu.Unlock()
	if current.Next >= c.layout.Cells() {
		return 0, 0, fmt.Errorf("device: all %d cells of the %dx%d layout are in use",
			c.layout.Cells(), c.layout.Rows, c.layout.Cols)
	}
	i := current.Next
	current.Next++
	return i / c.layout.Cols, i % c.layout.Cols, nil
}
