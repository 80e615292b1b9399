package matrixview

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxPointers           = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone   = 4.0 // pixels
	defaultDoubleClickGap = 18  // frames between clicks of a double click
	doubleClickSlop       = 6.0 // pixels
)

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool
	panning  bool
	button   MouseButton // button captured at press time
}

// --- Pinch state ---

type pinchState struct {
	active   bool
	prevDist float64
}

// ClickFunc receives a press and release that did not turn into a drag.
type ClickFunc func(x, y float64, button MouseButton)

// InputRouter turns raw pointer, wheel and touch input into viewport
// gestures and clicks. Screen coordinates are used throughout.
//
// Drags started with a non-primary button inside Surface pan the viewport.
// Primary-button presses never pan; they are reported through OnClick.
type InputRouter struct {
	Viewport *ViewportController
	// Surface is the screen area showing the grid.
	Surface Rect
	// OnClick, when set, is called for every click.
	OnClick ClickFunc

	dragDeadZone float64
	pointers     [maxPointers]pointerState
	pinch        pinchState

	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID

	frame       uint64
	lastClick   uint64
	lastClickX  float64
	lastClickY  float64
	haveClicked bool

	injectQueue []syntheticEvent
}

// NewInputRouter creates a router driving vc.
func NewInputRouter(vc *ViewportController) *InputRouter {
	return &InputRouter{
		Viewport:     vc,
		dragDeadZone: defaultDragDeadZone,
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (r *InputRouter) SetDragDeadZone(pixels float64) {
	r.dragDeadZone = pixels
}

// Panning reports whether the mouse pointer is in a pan drag.
func (r *InputRouter) Panning() bool {
	return r.pointers[0].panning
}

// Update consumes one frame of input. A queued synthetic event replaces
// real mouse input for that frame.
func (r *InputRouter) Update() {
	r.frame++
	if r.processInjectedInput() {
		return
	}
	r.processMousePointer()
	r.processWheel()
	r.processTouchPointers()
	r.detectPinch()
}

// processMousePointer handles mouse input (pointer 0).
func (r *InputRouter) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	// If the pointer is already down, the stored button is used so it cannot
	// change mid-interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	r.processPointer(0, float64(mx), float64(my), pressed, button)
}

func (r *InputRouter) processWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	r.processWheelAt(float64(mx), float64(my), dy)
}

func (r *InputRouter) processWheelAt(x, y, notches float64) {
	if r.Viewport == nil || !r.Surface.Contains(x, y) {
		return
	}
	r.Viewport.Wheel(x, y, notches)
}

// processTouchPointers handles touch input (pointers 1-9).
func (r *InputRouter) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(r.prevTouchIDs[:0])
	r.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := r.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		r.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}

	for i := 1; i < maxPointers; i++ {
		if r.touchUsed[i] && !activeSlots[i] {
			ps := &r.pointers[i]
			if ps.down {
				r.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft)
			}
			r.touchUsed[i] = false
			r.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (r *InputRouter) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if r.touchUsed[i] && r.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !r.touchUsed[i] {
			r.touchUsed[i] = true
			r.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (r *InputRouter) processPointer(pointerID int, x, y float64, pressed bool, button MouseButton) {
	ps := &r.pointers[pointerID]

	switch {
	case pressed && !ps.down:
		// Just pressed: capture the button for the whole interaction.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.dragging = false
		ps.panning = false

	case !pressed && ps.down:
		if ps.panning {
			r.Viewport.EndPan()
		} else if !ps.dragging {
			r.click(x, y, ps.button)
		}
		ps.down = false
		ps.dragging = false
		ps.panning = false
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x == ps.lastX && y == ps.lastY {
			return
		}
		if !ps.dragging {
			dx := x - ps.startX
			dy := y - ps.startY
			if math.Sqrt(dx*dx+dy*dy) > r.dragDeadZone {
				ps.dragging = true
				if r.Viewport != nil && r.Surface.Contains(ps.startX, ps.startY) {
					ps.panning = r.Viewport.BeginPan(ps.button)
				}
				if ps.panning {
					r.Viewport.Pan(dx, dy)
				}
			}
		} else if ps.panning {
			r.Viewport.Pan(x-ps.lastX, y-ps.lastY)
		}
		ps.lastX, ps.lastY = x, y

	default:
		ps.lastX, ps.lastY = x, y
	}
}

// click reports a click and turns two quick primary clicks on the grid into
// a double-click zoom.
func (r *InputRouter) click(x, y float64, button MouseButton) {
	if r.OnClick != nil {
		r.OnClick(x, y, button)
	}
	if !button.Primary() || r.Viewport == nil || !r.Surface.Contains(x, y) {
		return
	}
	if r.haveClicked && r.frame-r.lastClick <= defaultDoubleClickGap &&
		math.Abs(x-r.lastClickX) <= doubleClickSlop && math.Abs(y-r.lastClickY) <= doubleClickSlop {
		r.haveClicked = false
		r.Viewport.DoubleClick(x, y)
		return
	}
	r.haveClicked = true
	r.lastClick = r.frame
	r.lastClickX, r.lastClickY = x, y
}

// --- Pinch detection ---

func (r *InputRouter) detectPinch() {
	var ids [2]int
	count := 0
	for i := 1; i < maxPointers && count < 3; i++ {
		if r.pointers[i].down {
			if count < 2 {
				ids[count] = i
			}
			count++
		}
	}
	if count != 2 {
		r.pinch.active = false
		return
	}

	ps0 := &r.pointers[ids[0]]
	ps1 := &r.pointers[ids[1]]
	cx := (ps0.lastX + ps1.lastX) / 2
	cy := (ps0.lastY + ps1.lastY) / 2
	dist := math.Hypot(ps1.lastX-ps0.lastX, ps1.lastY-ps0.lastY)

	if r.pinch.active && r.pinch.prevDist > 0 && r.Viewport != nil {
		r.Viewport.Pinch(cx, cy, dist/r.pinch.prevDist-1)
	}
	r.pinch.active = true
	r.pinch.prevDist = dist

	// Pinch pointers never drag.
	ps0.dragging = true
	ps1.dragging = true
}
