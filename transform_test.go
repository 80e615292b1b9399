package matrixview

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{K: 2.5, X: -40, Y: 12}
	x, y := tr.Apply(10, 20)
	assertNear(t, "x", x, -15)
	assertNear(t, "y", y, 62)
	gx, gy := tr.Invert(x, y)
	assertNear(t, "gx", gx, 10)
	assertNear(t, "gy", gy, 20)
}

func TestTransformMatrix(t *testing.T) {
	tr := Transform{K: 3, X: 5, Y: 7}
	assertMatrix(t, "matrix", tr.Matrix(), [6]float64{3, 0, 0, 3, 5, 7})
}

func TestTransformFinite(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		want bool
	}{
		{"identity", IdentityTransform, true},
		{"nan scale", Transform{K: math.NaN()}, false},
		{"inf x", Transform{K: 1, X: math.Inf(1)}, false},
		{"zero scale", Transform{K: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.finite(); got != tt.want {
				t.Errorf("finite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMultiplyAffine(t *testing.T) {
	parent := [6]float64{2, 0, 0, 2, 10, 20}
	child := [6]float64{1, 0, 0, 1, 5, 5}
	assertMatrix(t, "product", multiplyAffine(parent, child), [6]float64{2, 0, 0, 2, 20, 30})
}

func TestInvertAffineRoundtrip(t *testing.T) {
	m := [6]float64{4, 0, 0, 4, -12, 30}
	inv := invertAffine(m)
	assertMatrix(t, "m*inv", multiplyAffine(m, inv), identityTransform)
}

func TestInvertAffineSingular(t *testing.T) {
	assertMatrix(t, "singular", invertAffine([6]float64{0, 0, 0, 0, 3, 4}), identityTransform)
}

func TestTransformRect(t *testing.T) {
	r := transformRect([6]float64{2, 0, 0, 2, 1, 1}, Rect{X: 1, Y: 2, Width: 3, Height: 4})
	assertNear(t, "x", r.X, 3)
	assertNear(t, "y", r.Y, 5)
	assertNear(t, "w", r.Width, 6)
	assertNear(t, "h", r.Height, 8)
}
