package matrixview

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultMaxZoom      = 50.0
	defaultZoomStep     = 0.25 // log2 scale change per wheel notch
	defaultZoomDuration = 0.15 // seconds
	defaultBaseStroke   = 1.0
)

// ViewportConfig tunes a ViewportController. Zero fields take defaults.
type ViewportConfig struct {
	// MaxZoom is the hard cap on the scale factor (default 50).
	MaxZoom float64
	// ZoomStep is the base-2 exponent applied per wheel notch (default 0.25).
	ZoomStep float64
	// ZoomDuration is how long, in seconds, a wheel or double-click zoom
	// eases toward its target. Negative disables easing.
	ZoomDuration float32
	// ZoomEase is the easing curve of the zoom animation (default OutCubic).
	ZoomEase ease.TweenFunc
	// PanScale multiplies the pan speed factor (default 1).
	PanScale float64
	// BaseStroke is the cell border width at scale 1 (default 1).
	BaseStroke float64
	// ZoomToCell raises the zoom-in limit from the fitted-grid ratio
	// max(W/gridWidth, H/gridHeight) to the ratio at which a single cell
	// fills the container. MaxZoom still applies.
	ZoomToCell bool
}

func (c ViewportConfig) withDefaults() ViewportConfig {
	if c.MaxZoom <= 0 || !isFinite(c.MaxZoom) {
		c.MaxZoom = defaultMaxZoom
	}
	if c.ZoomStep <= 0 || !isFinite(c.ZoomStep) {
		c.ZoomStep = defaultZoomStep
	}
	if c.ZoomDuration == 0 {
		c.ZoomDuration = defaultZoomDuration
	}
	if c.ZoomEase == nil {
		c.ZoomEase = ease.OutCubic
	}
	if c.PanScale <= 0 || !isFinite(c.PanScale) {
		c.PanScale = 1
	}
	if c.BaseStroke <= 0 || !isFinite(c.BaseStroke) {
		c.BaseStroke = defaultBaseStroke
	}
	return c
}

// zoomAnim eases the scale factor toward a target while keeping one grid
// point pinned under the same viewBox point.
type zoomAnim struct {
	tween   *gween.Tween
	target  float64
	anchorX float64 // viewBox space
	anchorY float64
	gridX   float64 // grid point under the anchor when the zoom began
	gridY   float64
}

// ViewportController owns the zoom/pan transform of one rendered matrix and
// arbitrates between wheel/pinch zooming and non-primary-button panning.
//
// Exactly one gesture rule applies per input: zoom input is ignored while a
// pan drag is active, and pan input is ignored outside of one.
type ViewportController struct {
	cfg ViewportConfig

	layout    Layout
	container Rect
	armed     bool

	fit      [6]float64 // viewBox -> screen
	fitScale float64
	upper    float64

	t     Transform
	state GestureState
	zoom  *zoomAnim
}

// NewViewportController creates an idle controller with no matrix attached.
func NewViewportController(cfg ViewportConfig) *ViewportController {
	return &ViewportController{
		cfg:      cfg.withDefaults(),
		t:        IdentityTransform,
		fit:      identityTransform,
		fitScale: 1,
		upper:    1,
	}
}

// Reset attaches the controller to a new layout shown in container and
// returns it to Idle with the identity transform. Any running zoom
// animation is dropped.
func (v *ViewportController) Reset(layout Layout, container Rect) {
	v.layout = layout
	v.container = container
	v.armed = layout.GridWidth > 0 && layout.GridHeight > 0
	v.t = IdentityTransform
	v.state = GestureIdle
	v.zoom = nil

	v.fit = FitViewBox(layout.ViewBox(), container)
	v.fitScale = v.fit[0]
	if v.fitScale <= 0 || !isFinite(v.fitScale) {
		v.fitScale = 1
	}

	v.upper = 1
	if v.armed {
		ratio := math.Max(container.Width/layout.GridWidth, container.Height/layout.GridHeight)
		if v.cfg.ZoomToCell && layout.CellSize > 0 {
			ratio = math.Min(container.Width, container.Height) / (layout.CellSize * v.fitScale)
		}
		upper := math.Min(v.cfg.MaxZoom, ratio)
		if isFinite(upper) && upper >= 1 {
			v.upper = upper
		}
	}
}

// Detach drops the attached layout. The controller ignores input until the
// next Reset.
func (v *ViewportController) Detach() {
	v.Reset(Layout{}, Rect{})
}

// Armed reports whether a matrix layout is attached.
func (v *ViewportController) Armed() bool { return v.armed }

// State returns the current gesture state.
func (v *ViewportController) State() GestureState { return v.state }

// Transform returns the current zoom/pan transform.
func (v *ViewportController) Transform() Transform { return v.t }

// Layout returns the attached layout.
func (v *ViewportController) Layout() Layout { return v.layout }

// Bounds returns the allowed scale range [1, upper].
func (v *ViewportController) Bounds() (lo, hi float64) { return 1, v.upper }

// StrokeWidth returns the cell border width in grid units that renders at a
// constant on-screen width regardless of zoom.
func (v *ViewportController) StrokeWidth() float64 {
	return v.cfg.BaseStroke / v.t.K
}

// PanSpeed returns the factor applied to pointer movement while panning:
// max(rows, cols) / K.
func (v *ViewportController) PanSpeed() float64 {
	n := max(v.layout.Rows, v.layout.Cols)
	return float64(n) / v.t.K * v.cfg.PanScale
}

// ViewMatrix returns the grid -> screen affine matrix.
func (v *ViewportController) ViewMatrix() [6]float64 {
	return multiplyAffine(v.fit, v.t.Matrix())
}

// ScreenToGrid converts a screen point to grid coordinates.
func (v *ViewportController) ScreenToGrid(sx, sy float64) (gx, gy float64) {
	return transformPoint(invertAffine(v.ViewMatrix()), sx, sy)
}

// GridToScreen converts a grid point to screen coordinates.
func (v *ViewportController) GridToScreen(gx, gy float64) (sx, sy float64) {
	return transformPoint(v.ViewMatrix(), gx, gy)
}

// screenToViewBox converts a screen point into the space the transform's
// translation lives in.
func (v *ViewportController) screenToViewBox(sx, sy float64) (float64, float64) {
	return transformPoint(invertAffine(v.fit), sx, sy)
}

// Wheel zooms by notches wheel steps around the screen point (sx, sy).
// Positive notches zoom in. Returns false if the input was ignored.
func (v *ViewportController) Wheel(sx, sy, notches float64) bool {
	if !isFinite(notches) || notches == 0 {
		return false
	}
	return v.zoomBy(sx, sy, math.Exp2(notches*v.cfg.ZoomStep), true)
}

// Pinch applies a two-finger scale change around (cx, cy). scaleDelta is the
// relative distance change since the previous frame (0 = unchanged).
func (v *ViewportController) Pinch(cx, cy, scaleDelta float64) bool {
	if !isFinite(scaleDelta) || scaleDelta <= -1 {
		return false
	}
	return v.zoomBy(cx, cy, 1+scaleDelta, false)
}

// DoubleClick zooms in by a factor of two around (sx, sy).
func (v *ViewportController) DoubleClick(sx, sy float64) bool {
	return v.zoomBy(sx, sy, 2, true)
}

func (v *ViewportController) zoomBy(sx, sy, factor float64, animate bool) bool {
	if !v.armed || v.state == GesturePanDrag {
		return false
	}
	if !isFinite(sx) || !isFinite(sy) || !isFinite(factor) || factor <= 0 {
		return false
	}
	ax, ay := v.screenToViewBox(sx, sy)

	base := v.t.K
	if v.zoom != nil {
		base = v.zoom.target
	}
	target := v.clampScale(base * factor)

	gx, gy := v.t.Invert(ax, ay)
	v.state = GestureZoom

	if !animate || v.cfg.ZoomDuration < 0 {
		v.zoom = nil
		v.applyAnchored(target, ax, ay, gx, gy)
		return true
	}
	v.zoom = &zoomAnim{
		tween:   gween.New(float32(v.t.K), float32(target), v.cfg.ZoomDuration, v.cfg.ZoomEase),
		target:  target,
		anchorX: ax,
		anchorY: ay,
		gridX:   gx,
		gridY:   gy,
	}
	return true
}

// applyAnchored sets the scale to k and solves the translation so the grid
// point (gx, gy) stays under the viewBox point (ax, ay).
func (v *ViewportController) applyAnchored(k, ax, ay, gx, gy float64) {
	k = v.clampScale(k)
	next := Transform{K: k, X: ax - gx*k, Y: ay - gy*k}
	v.commit(next)
}

// BeginPan arms a pan drag for button. The primary button never pans.
// Entering the pan drag interrupts any running zoom animation at its
// current value. The browser backend of ebiten already cancels the native
// context menu on its canvas, so the secondary button is free to pan.
func (v *ViewportController) BeginPan(button MouseButton) bool {
	if !v.armed || button.Primary() {
		return false
	}
	v.zoom = nil
	v.state = GesturePanDrag
	return true
}

// Pan moves the grid by the pointer movement (dx, dy), in screen pixels,
// scaled by PanSpeed. Ignored outside a pan drag.
func (v *ViewportController) Pan(dx, dy float64) bool {
	if v.state != GesturePanDrag {
		return false
	}
	if !isFinite(dx) || !isFinite(dy) {
		return false
	}
	speed := v.PanSpeed()
	next := v.t
	next.X += dx / v.fitScale * speed
	next.Y += dy / v.fitScale * speed
	return v.commit(next)
}

// EndPan finishes a pan drag.
func (v *ViewportController) EndPan() {
	if v.state == GesturePanDrag {
		v.state = GestureIdle
	}
}

// Update advances the zoom animation by dt seconds. A zoom gesture with no
// animation left ends here.
func (v *ViewportController) Update(dt float32) {
	if v.state != GestureZoom {
		return
	}
	if v.zoom == nil {
		v.state = GestureIdle
		return
	}
	z := v.zoom
	val, done := z.tween.Update(dt)
	k := float64(val)
	if done {
		k = z.target
	}
	v.applyAnchored(k, z.anchorX, z.anchorY, z.gridX, z.gridY)
	if done {
		v.zoom = nil
		v.state = GestureIdle
	}
}

// ResetView returns to the identity transform without detaching.
func (v *ViewportController) ResetView() {
	v.zoom = nil
	v.t = IdentityTransform
	v.state = GestureIdle
}

func (v *ViewportController) clampScale(k float64) float64 {
	if math.IsNaN(k) {
		return v.t.K
	}
	return math.Max(1, math.Min(k, v.upper))
}

// commit stores next after clamping it into the allowed range. Non-finite
// transforms are rejected and leave the current one untouched.
func (v *ViewportController) commit(next Transform) bool {
	if !next.finite() {
		return false
	}
	next.K = v.clampScale(next.K)
	next.X, next.Y = v.clampTranslate(next)
	v.t = next
	return true
}

// clampTranslate keeps at least one cell of the grid inside the viewBox.
func (v *ViewportController) clampTranslate(t Transform) (x, y float64) {
	gw, gh := v.layout.GridWidth, v.layout.GridHeight
	keep := v.layout.CellSize * t.K
	kx := math.Min(keep, gw)
	ky := math.Min(keep, gh)
	x = math.Max(kx-gw*t.K, math.Min(t.X, gw-kx))
	y = math.Max(ky-gh*t.K, math.Min(t.Y, gh-ky))
	return x, y
}
