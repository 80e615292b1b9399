package matrixview

import (
	"errors"
	"image/color"
)

var (
	// ErrEmptyMatrix is returned when a color scale is requested for a matrix
	// with no cells.
	ErrEmptyMatrix = errors.New("matrixview: empty matrix")
	// ErrEmptyGrid is returned by ComputeLayout for zero rows or columns.
	ErrEmptyGrid = errors.New("matrixview: grid has no rows or columns")
	// ErrInvalidContainer is returned when the container is not a positive,
	// finite size.
	ErrInvalidContainer = errors.New("matrixview: invalid container size")
	// ErrRaggedMatrix is returned when the rows of a matrix differ in length.
	ErrRaggedMatrix = errors.New("matrixview: rows have different lengths")
	// ErrNonFiniteCell is returned when a matrix holds NaN or Inf.
	ErrNonFiniteCell = errors.New("matrixview: non-finite cell value")
	// ErrMalformedSnapshot is returned for payloads that are not a
	// {label, matrix} object.
	ErrMalformedSnapshot = errors.New("matrixview: malformed snapshot")
	// ErrTransport wraps stream connection failures.
	ErrTransport = errors.New("matrixview: stream transport error")
	// ErrInvalidConfig is wrapped by every Config.Validate failure.
	ErrInvalidConfig = errors.New("matrixview: invalid config")
	// ErrEmptyScript is returned when an input script has no steps.
	ErrEmptyScript = errors.New("matrixview: script has no steps")
)

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// Primary reports whether b is the primary button. The primary button is
// reserved for list selection and never pans the grid.
func (b MouseButton) Primary() bool {
	return b == MouseButtonLeft
}

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// GestureState is the state of the viewport gesture machine.
type GestureState uint8

const (
	GestureIdle    GestureState = iota // no gesture in progress
	GestureZoom                        // wheel/pinch scaling, possibly easing
	GesturePanDrag                     // non-primary button drag
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureZoom:
		return "zoom"
	case GesturePanDrag:
		return "pan"
	default:
		return "unknown"
	}
}

var (
	colorBackground = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	colorPanel      = color.RGBA{0x26, 0x26, 0x2b, 0xff}
	colorHighlight  = color.RGBA{0x3d, 0x5a, 0x80, 0xff}
	colorText       = color.RGBA{0xe6, 0xe6, 0xe6, 0xff}
	colorStroke     = color.RGBA{0x00, 0x00, 0x00, 0xff}
)
