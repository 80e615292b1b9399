package matrixview

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticWheel
)

// syntheticEvent is a single injected input event in screen coordinates.
type syntheticEvent struct {
	kind    syntheticKind
	screenX float64
	screenY float64
	pressed bool
	button  MouseButton
	notches float64
}

// InjectPress queues a press of button at the given screen coordinates.
// The event is consumed on the next Update.
func (r *InputRouter) InjectPress(x, y float64, button MouseButton) {
	r.injectQueue = append(r.injectQueue, syntheticEvent{
		kind:    syntheticPointer,
		screenX: x, screenY: y,
		pressed: true,
		button:  button,
	})
}

// InjectMove queues a move with button held down. Use this between
// InjectPress and InjectRelease to simulate a drag.
func (r *InputRouter) InjectMove(x, y float64, button MouseButton) {
	r.injectQueue = append(r.injectQueue, syntheticEvent{
		kind:    syntheticPointer,
		screenX: x, screenY: y,
		pressed: true,
		button:  button,
	})
}

// InjectRelease queues a release of button at the given screen coordinates.
func (r *InputRouter) InjectRelease(x, y float64, button MouseButton) {
	r.injectQueue = append(r.injectQueue, syntheticEvent{
		kind:    syntheticPointer,
		screenX: x, screenY: y,
		pressed: false,
		button:  button,
	})
}

// InjectClick queues a left press followed by a release at the same
// coordinates. Consumes two frames.
func (r *InputRouter) InjectClick(x, y float64) {
	r.InjectPress(x, y, MouseButtonLeft)
	r.InjectRelease(x, y, MouseButtonLeft)
}

// InjectWheel queues a wheel event of the given notches at (x, y).
// Positive notches zoom in.
func (r *InputRouter) InjectWheel(x, y, notches float64) {
	r.injectQueue = append(r.injectQueue, syntheticEvent{
		kind:    syntheticWheel,
		screenX: x, screenY: y,
		notches: notches,
	})
}

// InjectDrag queues a full drag with button: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (r *InputRouter) InjectDrag(fromX, fromY, toX, toY float64, frames int, button MouseButton) {
	if frames < 2 {
		frames = 2
	}
	r.InjectPress(fromX, fromY, button)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		r.InjectMove(x, y, button)
	}
	r.InjectRelease(toX, toY, button)
}

// Pending returns the number of queued synthetic events.
func (r *InputRouter) Pending() int {
	return len(r.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the same paths as real input. Returns true if an event was
// consumed, in which case real input is skipped for the frame.
func (r *InputRouter) processInjectedInput() bool {
	if len(r.injectQueue) == 0 {
		return false
	}
	evt := r.injectQueue[0]
	copy(r.injectQueue, r.injectQueue[1:])
	r.injectQueue = r.injectQueue[:len(r.injectQueue)-1]

	switch evt.kind {
	case syntheticWheel:
		r.processWheelAt(evt.screenX, evt.screenY, evt.notches)
	default:
		r.processPointer(0, evt.screenX, evt.screenY, evt.pressed, evt.button)
	}
	return true
}
