package matrixview

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultFrameCache   = 8
	minStrokedCellPx    = 4.0  // cells smaller than this on screen get no border
	minLabeledCellPx    = 18.0 // cells smaller than this on screen get no value text
	maxValueFontPx      = 16.0
	valueFontCellFactor = 0.28
)

// RendererOptions configures a MatrixRenderer.
type RendererOptions struct {
	// ShowValues draws each cell's numeric value on top of it.
	ShowValues bool
	// StrokeColor is the cell border color (default black).
	StrokeColor color.Color
	// ValueFormat is the fmt verb used for cell values (default "%g").
	ValueFormat string
	// CacheSize is how many built frames are memoized (default 8).
	CacheSize int
}

// CellCommand is a single cell draw instruction in grid space.
type CellCommand struct {
	Row, Col int
	Rect     Rect
	Fill     color.RGBA
	Value    float64
}

// Frame is everything needed to draw one matrix in one container, before
// the viewport transform is applied.
type Frame struct {
	Label     string
	Layout    Layout
	Scale     ColorScale
	Container Rect
	Cells     []CellCommand
}

// CellAt returns the command for the cell under the grid point (gx, gy).
func (f *Frame) CellAt(gx, gy float64) (CellCommand, bool) {
	row, col, ok := f.Layout.CellAt(gx, gy)
	if !ok {
		return CellCommand{}, false
	}
	return f.Cells[row*f.Layout.Cols+col], true
}

// frameKey identifies a frame: the same immutable matrix in the same
// container.
type frameKey struct {
	data       *[]float64
	label      string
	rows, cols int
	container  Rect
}

// MatrixRenderer turns the selected snapshot into colored cells and draws
// them through a ViewportController's transform.
type MatrixRenderer struct {
	opts   RendererOptions
	frames *lru.Cache
	font   *Font
}

// NewMatrixRenderer creates a renderer. The value font is loaded lazily on
// first use.
func NewMatrixRenderer(opts RendererOptions) (*MatrixRenderer, error) {
	if opts.StrokeColor == nil {
		opts.StrokeColor = colorStroke
	}
	if opts.ValueFormat == "" {
		opts.ValueFormat = "%g"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultFrameCache
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("matrixview: frame cache: %w", err)
	}
	return &MatrixRenderer{opts: opts, frames: cache}, nil
}

// SetShowValues toggles the per-cell value overlay.
func (r *MatrixRenderer) SetShowValues(show bool) { r.opts.ShowValues = show }

// ShowValues reports whether the value overlay is on.
func (r *MatrixRenderer) ShowValues() bool { return r.opts.ShowValues }

// Build computes the frame for snap inside container. A nil snapshot or a
// matrix without rows yields a nil frame and no error: nothing is drawn.
func (r *MatrixRenderer) Build(snap *Snapshot, container Rect) (*Frame, error) {
	if snap == nil || snap.Rows() == 0 || snap.Cols() == 0 {
		return nil, nil
	}
	key := frameKey{
		data:      &snap.Matrix[0],
		label:     snap.Label,
		rows:      snap.Rows(),
		cols:      snap.Cols(),
		container: container,
	}
	if v, ok := r.frames.Get(key); ok {
		return v.(*Frame), nil
	}
	f, err := buildFrame(snap, container)
	if err != nil {
		return nil, err
	}
	r.frames.Add(key, f)
	return f, nil
}

func buildFrame(snap *Snapshot, container Rect) (*Frame, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	layout, err := ComputeLayout(snap.Rows(), snap.Cols(), container.Width, container.Height)
	if err != nil {
		return nil, err
	}
	scale, err := ComputeScale(snap.Matrix)
	if err != nil {
		return nil, err
	}
	cells := make([]CellCommand, 0, layout.Rows*layout.Cols)
	for i, row := range snap.Matrix {
		for j, v := range row {
			cells = append(cells, CellCommand{
				Row:   i,
				Col:   j,
				Rect:  layout.CellRect(i, j),
				Fill:  scale.At(v),
				Value: v,
			})
		}
	}
	return &Frame{
		Label:     snap.Label,
		Layout:    layout,
		Scale:     scale,
		Container: container,
		Cells:     cells,
	}, nil
}

// screenCells maps the frame's cells to screen space through vc and drops
// the ones that fall outside the container. The returned stroke width is
// in screen pixels.
func screenCells(f *Frame, vc *ViewportController, buf []CellCommand) ([]CellCommand, float64) {
	m := vc.ViewMatrix()
	stroke := vc.StrokeWidth() * m[0]
	buf = buf[:0]
	for _, c := range f.Cells {
		sr := transformRect(m, c.Rect)
		if !sr.Intersects(f.Container) {
			continue
		}
		c.Rect = sr
		buf = append(buf, c)
	}
	return buf, stroke
}

// Draw paints the frame onto dst, clipped to the frame's container.
func (r *MatrixRenderer) Draw(dst *ebiten.Image, f *Frame, vc *ViewportController, buf []CellCommand) []CellCommand {
	if f == nil {
		return buf
	}
	c := f.Container
	surface := dst.SubImage(image.Rect(
		int(c.X), int(c.Y),
		int(math.Ceil(c.X+c.Width)), int(math.Ceil(c.Y+c.Height)),
	)).(*ebiten.Image)

	cells, stroke := screenCells(f, vc, buf)
	for _, cell := range cells {
		sr := cell.Rect
		vector.DrawFilledRect(surface, float32(sr.X), float32(sr.Y), float32(sr.Width), float32(sr.Height), cell.Fill, false)
	}
	if len(cells) > 0 && cells[0].Rect.Width >= minStrokedCellPx {
		for _, cell := range cells {
			sr := cell.Rect
			vector.StrokeRect(surface, float32(sr.X), float32(sr.Y), float32(sr.Width), float32(sr.Height),
				float32(stroke), r.opts.StrokeColor, false)
		}
	}
	if r.opts.ShowValues && len(cells) > 0 && cells[0].Rect.Width >= minLabeledCellPx {
		r.drawValues(surface, cells)
	}
	return cells
}

func (r *MatrixRenderer) drawValues(dst *ebiten.Image, cells []CellCommand) {
	if r.font == nil {
		f, err := NewMonoFont(maxValueFontPx)
		if err != nil {
			return
		}
		r.font = f
	}
	size := math.Min(maxValueFontPx, cells[0].Rect.Width*valueFontCellFactor)
	font := r.font
	if size != font.Size() {
		font = font.WithSize(size)
	}
	for _, cell := range cells {
		s := fmt.Sprintf(r.opts.ValueFormat, cell.Value)
		cx := cell.Rect.X + cell.Rect.Width/2
		cy := cell.Rect.Y + cell.Rect.Height/2
		font.DrawCentered(dst, s, cx, cy, contrastText(cell.Fill))
	}
}

// contrastText picks black or white text for legibility on fill.
func contrastText(fill color.RGBA) color.RGBA {
	lum := 0.2126*float64(fill.R) + 0.7152*float64(fill.G) + 0.0722*float64(fill.B)
	if lum > 140 {
		return color.RGBA{0, 0, 0, 0xff}
	}
	return color.RGBA{0xff, 0xff, 0xff, 0xff}
}

// DrawLegend paints the color ramp of scale into rect, low values on the
// left, with the domain ends printed underneath when font is non-nil.
func DrawLegend(dst *ebiten.Image, scale ColorScale, rect Rect, font *Font) {
	steps := int(rect.Width)
	if steps <= 0 || rect.Height <= 0 {
		return
	}
	colors := scale.Legend(steps)
	for i, c := range colors {
		vector.DrawFilledRect(dst, float32(rect.X)+float32(i), float32(rect.Y), 1, float32(rect.Height), c, false)
	}
	vector.StrokeRect(dst, float32(rect.X), float32(rect.Y), float32(rect.Width), float32(rect.Height), 1, colorText, false)
	if font == nil {
		return
	}
	lo := fmt.Sprintf("%g", scale.Min())
	hi := fmt.Sprintf("%g", scale.Max())
	font.DrawAt(dst, lo, rect.X, rect.Y+rect.Height+2, colorText)
	w, _ := font.MeasureString(hi)
	font.DrawAt(dst, hi, rect.X+rect.Width-w, rect.Y+rect.Height+2, colorText)
}
