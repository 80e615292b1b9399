package matrixview

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	Button  string  `json:"button,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Notches float64 `json:"notches,omitempty"`
	FromX   float64 `json:"fromX,omitempty"`
	FromY   float64 `json:"fromY,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// scriptHost is what a Script drives each frame.
type scriptHost interface {
	inputRouter() *InputRouter
	selectLabel(label string)
	screenshot(label string)
}

// Script sequences injected input, selections and screenshots across frames
// for automated runs of the viewer.
//
// Supported actions: "wheel", "drag", "click", "select", "wait",
// "screenshot".
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// ParseScript parses a JSON script of the form {"steps": [...]}.
func ParseScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrEmptyScript)
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "wheel", "drag", "click", "select", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if _, err := parseButton(st.Button); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run.
func (s *Script) Done() bool {
	return s.done
}

func parseButton(name string) (MouseButton, error) {
	switch name {
	case "", "right":
		return MouseButtonRight, nil
	case "left":
		return MouseButtonLeft, nil
	case "middle":
		return MouseButtonMiddle, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// step advances the script by one frame.
func (s *Script) step(h scriptHost) {
	if s.done {
		return
	}
	r := h.inputRouter()
	// Wait for pending injections to drain before advancing.
	if r.Pending() > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "wheel":
		n := st.Notches
		if n == 0 {
			n = 1
		}
		r.InjectWheel(st.X, st.Y, n)
	case "drag":
		button, _ := parseButton(st.Button)
		r.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames, button)
	case "click":
		r.InjectClick(st.X, st.Y)
	case "select":
		h.selectLabel(st.Label)
	case "screenshot":
		h.screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && r.Pending() == 0 {
		s.done = true
	}
}
