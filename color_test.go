package matrixview

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

var (
	violet = color.RGBA{238, 130, 238, 255}
	blue   = color.RGBA{0, 0, 255, 255}
	yellow = color.RGBA{255, 255, 0, 255}
	red    = color.RGBA{255, 0, 0, 255}
)

func TestComputeScale_Empty(t *testing.T) {
	for _, m := range [][][]float64{nil, {}, {{}, {}}} {
		if _, err := ComputeScale(m); !errors.Is(err, ErrEmptyMatrix) {
			t.Errorf("ComputeScale(%v) err = %v, want ErrEmptyMatrix", m, err)
		}
	}
}

func TestComputeScale_MinMax(t *testing.T) {
	s, err := ComputeScale([][]float64{{3, -2}, {7, 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "min", s.Min(), -2)
	assertNear(t, "max", s.Max(), 7)
}

func TestColorScale_Endpoints(t *testing.T) {
	s, err := ComputeScale([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.At(1); got != violet {
		t.Errorf("At(min) = %v, want violet", got)
	}
	if got := s.At(4); got != red {
		t.Errorf("At(max) = %v, want red", got)
	}
	// 2 and 3 land exactly on the 3rd and 5th stops.
	if got := s.At(2); got != blue {
		t.Errorf("At(2) = %v, want blue", got)
	}
	if got := s.At(3); got != yellow {
		t.Errorf("At(3) = %v, want yellow", got)
	}
}

func TestColorScale_Ordered(t *testing.T) {
	s, _ := ComputeScale([][]float64{{1, 2}, {3, 4}})
	prev := -1.0
	for _, v := range []float64{1, 2, 3, 4} {
		p := s.Position(v)
		if p <= prev {
			t.Errorf("Position(%v) = %v, not greater than %v", v, p, prev)
		}
		prev = p
	}
}

func TestColorScale_Clamp(t *testing.T) {
	s, _ := ComputeScale([][]float64{{0, 10}})
	if got := s.At(-100); got != violet {
		t.Errorf("At(below) = %v, want violet", got)
	}
	if got := s.At(1e9); got != red {
		t.Errorf("At(above) = %v, want red", got)
	}
}

func TestColorScale_Uniform(t *testing.T) {
	s, err := ComputeScale([][]float64{{5, 5}, {5, 5}})
	if err != nil {
		t.Fatalf("uniform matrix should not fail: %v", err)
	}
	for _, v := range []float64{5, 0, 100, math.NaN()} {
		if got := s.At(v); got != violet {
			t.Errorf("At(%v) = %v, want violet", v, got)
		}
	}
}

func TestColorScale_Midpoint(t *testing.T) {
	s, _ := ComputeScale([][]float64{{0, 12}})
	// 1 is halfway between violet (0) and indigo (2).
	got := s.At(1)
	want := color.RGBA{157, 65, 184, 255}
	for _, d := range []int{
		int(got.R) - int(want.R), int(got.G) - int(want.G), int(got.B) - int(want.B),
	} {
		if d < -1 || d > 1 {
			t.Errorf("At(1) = %v, want ~%v", got, want)
			break
		}
	}
}

func TestColorScale_Legend(t *testing.T) {
	s, _ := ComputeScale([][]float64{{0, 1}})
	l := s.Legend(7)
	if len(l) != 7 {
		t.Fatalf("len = %d, want 7", len(l))
	}
	if l[0] != violet || l[6] != red {
		t.Errorf("legend ends = %v, %v", l[0], l[6])
	}
	if s.Legend(0) != nil {
		t.Error("Legend(0) should be nil")
	}
}
