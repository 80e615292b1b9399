package matrixview

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Transform is the zoom/pan state of a viewport: a point p in grid space is
// shown at K*p + (X, Y) in viewBox space.
type Transform struct {
	K, X, Y float64
}

// IdentityTransform is the unzoomed, unpanned framing.
var IdentityTransform = Transform{K: 1}

// Apply maps a grid-space point to viewBox space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.K*x + t.X, t.K*y + t.Y
}

// Invert maps a viewBox-space point back to grid space.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// Matrix returns t as an affine matrix [a, b, c, d, tx, ty].
func (t Transform) Matrix() [6]float64 {
	return [6]float64{t.K, 0, 0, t.K, t.X, t.Y}
}

// finite reports whether every component is a finite number and K > 0.
func (t Transform) finite() bool {
	return isFinite(t.K) && isFinite(t.X) && isFinite(t.Y) && t.K > 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect maps an axis-aligned rect through a scale+translate matrix.
// Rotation and skew are never used by the viewer, so the result stays
// axis-aligned.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}
