package matrixview

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
)

// Font wraps an Ebitengine text/v2 face at a fixed size.
type Font struct {
	face *text.GoTextFace
	lh   float64 // cached line height
}

var (
	monoOnce   sync.Once
	monoSource *text.GoTextFaceSource
	monoErr    error
)

// loadMonoSource parses the bundled Go Mono font once.
func loadMonoSource() (*text.GoTextFaceSource, error) {
	monoOnce.Do(func() {
		monoSource, monoErr = text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
		if monoErr != nil {
			monoErr = fmt.Errorf("matrixview: failed to parse mono font: %w", monoErr)
		}
	})
	return monoSource, monoErr
}

// NewMonoFont returns the bundled monospace font at size.
func NewMonoFont(size float64) (*Font, error) {
	src, err := loadMonoSource()
	if err != nil {
		return nil, err
	}
	return newFont(src, size), nil
}

func newFont(src *text.GoTextFaceSource, size float64) *Font {
	face := &text.GoTextFace{Source: src, Size: size}
	m := face.Metrics()
	return &Font{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}
}

// WithSize returns the same font at another size.
func (f *Font) WithSize(size float64) *Font {
	return newFont(f.face.Source, size)
}

// Size returns the font size in pixels.
func (f *Font) Size() float64 { return f.face.Size }

// LineHeight returns the vertical distance between baselines.
func (f *Font) LineHeight() float64 { return f.lh }

// MeasureString returns the width and height of the rendered text.
func (f *Font) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// DrawAt draws s with its top-left corner at (x, y).
func (f *Font) DrawAt(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.LineSpacing = f.lh
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, f.face, op)
}

// DrawCentered draws s centered on (cx, cy).
func (f *Font) DrawCentered(dst *ebiten.Image, s string, cx, cy float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(cx, cy)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, f.face, op)
}
