package sprite

import (
	"fmt"
	"image"
	"math"

	"github.com/backmassage/thumbvtt/internal/planner"
)

// Region is a pixel rectangle inside the sheet, in the x,y,w,h form used
// by WebVTT media fragments.
type Region struct {
	X, Y, W, H int
}

// Fragment returns the "xywh=x,y,w,h" media fragment for the region.
func (r Region) Fragment() string {
	return fmt.Sprintf("xywh=%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Grid is the sheet layout: Columns x Rows cells of CellWidth x CellHeight.
// Cells are filled in row-major order.
type Grid struct {
	Count      int
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
}

// NewGrid lays out count cells of the given size. With columns <= 0 the
// sheet is kept close to square: cols = ceil(sqrt(count)). A positive
// columns value fixes the column count (never more than count). In both
// cases rows = ceil(count / cols).
func NewGrid(count int, size planner.ThumbnailSize, columns int) Grid {
	if count <= 0 {
		return Grid{CellWidth: size.Width, CellHeight: size.Height}
	}
	cols := columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(count))))
	}
	if cols > count {
		cols = count
	}
	rows := (count + cols - 1) / cols
	return Grid{
		Count:      count,
		Columns:    cols,
		Rows:       rows,
		CellWidth:  size.Width,
		CellHeight: size.Height,
	}
}

// Width is the sheet width in pixels.
func (g Grid) Width() int { return g.Columns * g.CellWidth }

// Height is the sheet height in pixels.
func (g Grid) Height() int { return g.Rows * g.CellHeight }

// Cell returns the region of cell i: column i mod cols, row i div cols.
func (g Grid) Cell(i int) Region {
	col := i % g.Columns
	row := i / g.Columns
	return Region{
		X: col * g.CellWidth,
		Y: row * g.CellHeight,
		W: g.CellWidth,
		H: g.CellHeight,
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d grid of %dx%d (%dx%d px)", g.Columns, g.Rows, g.CellWidth, g.CellHeight, g.Width(), g.Height())
}
