package matrixview

import (
	"fmt"
	"math"
)

// Layout is the square-cell framing of a rows x cols grid inside a
// container.
type Layout struct {
	Rows, Cols int
	// CellSize is the side length of one cell in container units.
	CellSize float64
	// GridWidth and GridHeight are the grid's extent: Cols*CellSize and
	// Rows*CellSize. At least one of them equals the container's size.
	GridWidth, GridHeight float64
}

// ComputeLayout fits a rows x cols grid of square cells into a container of
// the given size. The grid fills the container on one axis and is
// letterboxed on the other.
func ComputeLayout(rows, cols int, containerWidth, containerHeight float64) (Layout, error) {
	if rows <= 0 || cols <= 0 {
		return Layout{}, fmt.Errorf("layout %dx%d: %w", rows, cols, ErrEmptyGrid)
	}
	if !isFinite(containerWidth) || !isFinite(containerHeight) || containerWidth <= 0 || containerHeight <= 0 {
		return Layout{}, fmt.Errorf("layout in %vx%v: %w", containerWidth, containerHeight, ErrInvalidContainer)
	}
	cell := math.Min(containerWidth/float64(cols), containerHeight/float64(rows))
	return Layout{
		Rows:       rows,
		Cols:       cols,
		CellSize:   cell,
		GridWidth:  float64(cols) * cell,
		GridHeight: float64(rows) * cell,
	}, nil
}

// ViewBox returns the grid's coordinate system, [0, 0, GridWidth, GridHeight].
func (l Layout) ViewBox() Rect {
	return Rect{Width: l.GridWidth, Height: l.GridHeight}
}

// CellRect returns the grid-space rectangle of the cell at (row, col).
func (l Layout) CellRect(row, col int) Rect {
	return Rect{
		X:      float64(col) * l.CellSize,
		Y:      float64(row) * l.CellSize,
		Width:  l.CellSize,
		Height: l.CellSize,
	}
}

// CellAt returns the cell under the grid-space point (gx, gy).
func (l Layout) CellAt(gx, gy float64) (row, col int, ok bool) {
	if l.CellSize <= 0 || !isFinite(gx) || !isFinite(gy) || gx < 0 || gy < 0 {
		return 0, 0, false
	}
	col = int(gx / l.CellSize)
	row = int(gy / l.CellSize)
	if row >= l.Rows || col >= l.Cols {
		return 0, 0, false
	}
	return row, col, true
}

// FitViewBox returns the affine matrix that maps viewBox onto container with
// uniform scaling, centering the unused remainder on both axes
// (preserveAspectRatio "xMidYMid meet").
func FitViewBox(viewBox, container Rect) [6]float64 {
	if viewBox.Width <= 0 || viewBox.Height <= 0 {
		return [6]float64{1, 0, 0, 1, container.X, container.Y}
	}
	s := math.Min(container.Width/viewBox.Width, container.Height/viewBox.Height)
	tx := container.X + (container.Width-viewBox.Width*s)/2 - viewBox.X*s
	ty := container.Y + (container.Height-viewBox.Height*s)/2 - viewBox.Y*s
	return [6]float64{s, 0, 0, s, tx, ty}
}
