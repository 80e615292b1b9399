package matrixview

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// rgb255 builds a colorful.Color from 8-bit components.
func rgb255(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// HueStops is the fixed color ramp, lowest value first. The values match the
// CSS named colors of the same name.
var HueStops = []colorful.Color{
	rgb255(238, 130, 238), // violet
	rgb255(75, 0, 130),    // indigo
	rgb255(0, 0, 255),     // blue
	rgb255(0, 128, 0),     // green
	rgb255(255, 255, 0),   // yellow
	rgb255(255, 165, 0),   // orange
	rgb255(255, 0, 0),     // red
}

// ColorScale maps values in [Min, Max] of one matrix onto HueStops.
// A ColorScale is computed per matrix and is never shared across matrices.
type ColorScale struct {
	min, max float64
	stops    []colorful.Color
}

// ComputeScale derives the color scale for m from its own minimum and
// maximum. It returns ErrEmptyMatrix if m has no cells.
func ComputeScale(m [][]float64) (ColorScale, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	cells := 0
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			cells++
		}
	}
	if cells == 0 {
		return ColorScale{}, ErrEmptyMatrix
	}
	return ColorScale{min: lo, max: hi, stops: HueStops}, nil
}

// Min returns the lower end of the domain.
func (s ColorScale) Min() float64 { return s.min }

// Max returns the upper end of the domain.
func (s ColorScale) Max() float64 { return s.max }

// Position returns where v falls on the ramp, in [0, 1]. Values outside the
// domain clamp to its ends. A zero-width domain and NaN map to 0, the first
// stop.
func (s ColorScale) Position(v float64) float64 {
	span := s.max - s.min
	if span <= 0 || math.IsNaN(v) || !isFinite(span) {
		return 0
	}
	t := (v - s.min) / span
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return t
}

// At returns the color for v, interpolated linearly in RGB between the two
// neighbouring stops.
func (s ColorScale) At(v float64) color.RGBA {
	return toRGBA(s.blend(s.Position(v)))
}

func (s ColorScale) blend(t float64) colorful.Color {
	stops := s.stops
	if len(stops) == 0 {
		stops = HueStops
	}
	if len(stops) == 1 {
		return stops[0]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	return stops[i].BlendRgb(stops[i+1], pos-float64(i))
}

// Legend samples n evenly spaced colors from the low to the high end of the
// scale.
func (s ColorScale) Legend(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}
	out := make([]color.RGBA, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = toRGBA(s.blend(t))
	}
	return out
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
