// Package matrixview is a live viewer for streams of labeled numeric
// matrices, built on [Ebitengine].
//
// Snapshots arrive as server-sent events carrying JSON of the form
//
//	{"label": "attention", "matrix": [[0.1, 0.4], [0.9, 0.2]]}
//
// and are appended, in arrival order, to a [Collection]. The label list
// shows every snapshot as "<label> <rows> X <cols>". Selecting an entry
// draws that matrix as a grid of square cells colored on a seven-stop hue
// ramp between the matrix's own minimum and maximum.
//
// # Quick start
//
// The simplest way to run the viewer is [Run]:
//
//	cfg := matrixview.DefaultConfig()
//	cfg.URL = "http://localhost:8081/api/events"
//	if err := matrixview.Run(cfg); err != nil {
//		log.Fatal(err)
//	}
//
// The pieces are usable on their own. An [Ingestor] fills a [Collection]
// from a stream, [ComputeLayout] and [ComputeScale] describe the grid, and
// a [ViewportController] owns zoom and pan:
//
//	coll := matrixview.NewCollection()
//	in := matrixview.NewIngestor(url, coll)
//	in.Start(ctx)
//	defer in.Close()
//
// # Gestures
//
// The wheel and two-finger pinch zoom around the pointer, between 1 and the
// ratio at which the grid fills the container (capped at 50). Dragging with
// the right or middle button pans; the primary button never pans. Ebiten
// already keeps the browser context menu off its canvas. Cell borders keep a
// constant on-screen width at every zoom level.
//
// # Scripted input
//
// [InputRouter] accepts synthetic events ([InputRouter.InjectDrag],
// [InputRouter.InjectWheel], ...) consumed one per frame. A JSON [Script]
// sequences them together with selections and screenshots:
//
//	{"steps": [
//	  {"action": "select", "label": "attention"},
//	  {"action": "wheel", "x": 600, "y": 400, "notches": 2},
//	  {"action": "drag", "fromX": 600, "fromY": 400, "toX": 500, "toY": 400, "frames": 10},
//	  {"action": "screenshot", "label": "zoomed"}
//	]}
//
// [Ebitengine]: https://ebitengine.org
package matrixview
