package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRestore(t *testing.T) {
	before := Current()

	ctx, restore := Acquire(Layout{Rows: 2, Cols: 2}, "svg")
	assert.Equal(t, Layout{Rows: 2, Cols: 2}, Current().Layout)
	assert.Equal(t, "svg", Current().Device)
	assert.Equal(t, 4, ctx.Layout().Cells())

	restore()
	assert.Equal(t, before, Current())

	// a second restore is a no-op
	_, restore2 := Acquire(Layout{Rows: 3, Cols: 1}, "pdf")
	restore()
	assert.Equal(t, "pdf", Current().Device)
	restore2()
	assert.Equal(t, before, Current())
}

func TestNestedAcquire(t *testing.T) {
	before := Current()
	_, outer := Acquire(Layout{Rows: 2, Cols: 2}, "svg")
	inner, restoreInner := Acquire(Layout{Rows: 1, Cols: 3}, "png")
	_, _, err := inner.NextCell()
	require.NoError(t, err)
	restoreInner()

	assert.Equal(t, Layout{Rows: 2, Cols: 2}, Current().Layout)
	assert.Equal(t, 0, Current().Next)
	outer()
	assert.Equal(t, before, Current())
}

func TestRestoreOnPanic(t *testing.T) {
	before := Current()
	func() {
		defer func() { _ = recover() }()
		_, restore := Acquire(Layout{Rows: 2, Cols: 2}, "svg")
		defer restore()
		panic("draw failed")
	}()
	assert.Equal(t, before, Current())
}

func TestNextCell(t *testing.T) {
	ctx, restore := Acquire(Layout{Rows: 2, Cols: 2}, "svg")
	defer restore()

	want := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for _, w := range want {
		r, c, err := ctx.NextCell()
		require.NoError(t, err)
		assert.Equal(t, w, [2]int{r, c})
	}
	_, _, err := ctx.NextCell()
	assert.Error(t, err)
}

func TestAcquireClampsLayout(t *testing.T) {
	ctx, restore := Acquire(Layout{}, "svg")
	defer restore()
	assert.Equal(t, Layout{Rows: 1, Cols: 1}, ctx.Layout())

	tiles := ctx.Tiles(4)
	assert.Equal(t, 1, tiles.Rows)
	assert.Equal(t, 1, tiles.Cols)
}
