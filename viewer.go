package matrixview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	log "github.com/sirupsen/logrus"
)

const (
	panelPadding   = 8.0
	listRowHeight  = 20.0
	listFontPx     = 13.0
	statusHeight   = 24.0
	legendHeight   = 12.0
	legendGap      = 22.0 // legend bar plus its tick labels
	legendMaxWidth = 320.0
)

// attachment identifies what the viewport is currently attached to.
type attachment struct {
	generation uint64
	index      int
	container  Rect
}

// Viewer is the ebiten.Game that ties the collection, label list,
// selection, viewport and renderer together.
type Viewer struct {
	cfg    Config
	logger *log.Entry

	coll     *Collection
	labels   *LabelIndex
	sel      SelectionStore
	vc       *ViewportController
	router   *InputRouter
	renderer *MatrixRenderer
	ingest   *Ingestor

	font   *Font
	script *Script
	shots  *screenshotQueue
	debug  debugStats

	entries    []LabelEntry
	cursor     int
	listScroll int

	width, height int
	listRect      Rect
	gridRect      Rect
	statusRect    Rect

	frame     *Frame
	attached  attachment
	buildErr  error
	buildTime time.Duration
	cells     []CellCommand
	hover     CellCommand
	hovering  bool

	streamEnded  bool
	scriptLogged bool
}

// NewViewer wires a viewer for cfg. The stream is not opened until Run.
func NewViewer(cfg Config) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	renderer, err := NewMatrixRenderer(cfg.RendererOptions())
	if err != nil {
		return nil, err
	}

	coll := NewCollection()
	coll.MaxSnapshots = cfg.MaxSnapshots

	logger := log.WithField("component", "viewer")
	v := &Viewer{
		cfg:      cfg,
		logger:   logger,
		coll:     coll,
		labels:   NewLabelIndex(coll),
		vc:       NewViewportController(cfg.ViewportConfig()),
		renderer: renderer,
		ingest: NewIngestor(cfg.URL, coll,
			WithHeaders(cfg.Headers),
			WithMaxMessageBytes(cfg.MaxMessageBytes),
			WithLogger(log.WithField("component", "ingest"))),
		shots:    newScreenshotQueue(cfg.ScreenshotDir),
		attached: attachment{index: -1},
	}
	v.router = NewInputRouter(v.vc)
	v.router.OnClick = v.onClick

	if cfg.Script != "" {
		data, err := os.ReadFile(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		if v.script, err = ParseScript(data); err != nil {
			return nil, err
		}
	}
	v.Layout(cfg.Width, cfg.Height)
	return v, nil
}

// Collection returns the snapshots received so far.
func (v *Viewer) Collection() *Collection { return v.coll }

// Selection returns the selection store.
func (v *Viewer) Selection() *SelectionStore { return &v.sel }

// Viewport returns the viewport controller.
func (v *Viewer) Viewport() *ViewportController { return v.vc }

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	dt := float32(1.0 / float64(tps))

	v.checkStream()
	if v.script != nil {
		v.script.step(v)
		if v.script.Done() && !v.scriptLogged {
			v.scriptLogged = true
			v.logger.Info("script finished")
		}
	}
	v.refreshEntries()
	v.handleKeys()
	v.attach()

	v.router.Surface = v.gridRect
	v.router.Update()
	v.vc.Update(dt)

	mx, my := ebiten.CursorPosition()
	v.updateHover(float64(mx), float64(my))
	return nil
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	font := v.listFont()

	v.drawList(screen, font)

	start := time.Now()
	v.cells = v.renderer.Draw(screen, v.frame, v.vc, v.cells)
	drawTime := time.Since(start)

	if v.frame != nil {
		DrawLegend(screen, v.frame.Scale, v.legendRect(), font)
	}
	v.drawStatus(screen, font)
	v.shots.flush(screen)

	if v.cfg.Debug && v.frame != nil {
		v.debug.record(v.buildTime, drawTime, len(v.frame.Cells), len(v.cells))
		v.debug.flush(v.logger, v.ingest.Stats())
	}
}

// Layout implements ebiten.Game. The window is split into the label list
// on the left, the grid with its legend on the right and a status line
// along the bottom.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth == v.width && outsideHeight == v.height {
		return outsideWidth, outsideHeight
	}
	v.width, v.height = outsideWidth, outsideHeight
	w, h := float64(outsideWidth), float64(outsideHeight)

	listW := min(float64(v.cfg.ListWidth), w)
	v.listRect = Rect{X: 0, Y: 0, Width: listW, Height: max(h-statusHeight, 0)}
	v.statusRect = Rect{X: 0, Y: max(h-statusHeight, 0), Width: w, Height: statusHeight}
	v.gridRect = Rect{
		X:      listW + panelPadding,
		Y:      panelPadding,
		Width:  max(w-listW-2*panelPadding, 0),
		Height: max(h-statusHeight-legendGap-2*panelPadding, 0),
	}
	return outsideWidth, outsideHeight
}

func (v *Viewer) legendRect() Rect {
	w := min(legendMaxWidth, v.gridRect.Width)
	return Rect{
		X:      v.gridRect.X + (v.gridRect.Width-w)/2,
		Y:      v.gridRect.Y + v.gridRect.Height + 4,
		Width:  w,
		Height: legendHeight,
	}
}

// --- scriptHost ---

func (v *Viewer) inputRouter() *InputRouter { return v.router }

func (v *Viewer) selectLabel(label string) {
	v.sel.Select(label)
	for i, e := range v.entries {
		if e.Label == label {
			v.cursor = i
			break
		}
	}
}

func (v *Viewer) screenshot(label string) { v.shots.add(label) }

// --- stream ---

func (v *Viewer) checkStream() {
	if v.streamEnded {
		return
	}
	done := v.ingest.Done()
	if done == nil {
		return
	}
	select {
	case <-done:
		v.streamEnded = true
		if err := v.ingest.Err(); err != nil {
			v.logger.Warnf("stream ended, error: %s", err)
		} else {
			v.logger.Info("stream ended")
		}
	default:
	}
}

// --- label list ---

func (v *Viewer) refreshEntries() {
	entries, changed := v.labels.Entries()
	if !changed {
		return
	}
	v.entries = entries
	if v.cursor >= len(entries) {
		v.cursor = max(len(entries)-1, 0)
	}
	v.scrollToCursor()
}

func (v *Viewer) visibleRows() int {
	return max(int(v.listRect.Height/listRowHeight), 1)
}

func (v *Viewer) scrollToCursor() {
	rows := v.visibleRows()
	if v.cursor < v.listScroll {
		v.listScroll = v.cursor
	} else if v.cursor >= v.listScroll+rows {
		v.listScroll = v.cursor - rows + 1
	}
	v.listScroll = max(0, min(v.listScroll, len(v.entries)-rows))
}

// moveCursor moves the keyboard highlight by delta rows.
func (v *Viewer) moveCursor(delta int) {
	if len(v.entries) == 0 {
		return
	}
	v.cursor = max(0, min(v.cursor+delta, len(v.entries)-1))
	v.scrollToCursor()
}

// selectCursor selects the highlighted entry.
func (v *Viewer) selectCursor() {
	if v.cursor < 0 || v.cursor >= len(v.entries) {
		return
	}
	v.sel.SelectEntry(v.entries[v.cursor])
}

// entryAt returns the list row under the screen point.
func (v *Viewer) entryAt(x, y float64) (int, bool) {
	if !v.listRect.Contains(x, y) {
		return 0, false
	}
	i := v.listScroll + int((y-v.listRect.Y)/listRowHeight)
	if i < 0 || i >= len(v.entries) {
		return 0, false
	}
	return i, true
}

func (v *Viewer) onClick(x, y float64, button MouseButton) {
	if !button.Primary() {
		return
	}
	if i, ok := v.entryAt(x, y); ok {
		v.cursor = i
		v.selectCursor()
	}
}

func (v *Viewer) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		v.moveCursor(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		v.moveCursor(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		v.selectCursor()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.sel.Clear()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.vc.ResetView()
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		v.renderer.SetShowValues(!v.renderer.ShowValues())
	}
}

// --- selection -> viewport ---

// attach resolves the selection and rebuilds the frame. The viewport is
// reset whenever the selection, the resolved snapshot or the grid area
// changes, and left alone otherwise.
func (v *Viewer) attach() {
	snap, idx, ok := v.sel.Resolve(v.coll)
	next := attachment{generation: v.sel.Generation(), index: idx, container: v.gridRect}
	if !ok {
		next.index = -1
	}
	if next == v.attached {
		return
	}
	v.attached = next
	v.frame = nil
	v.buildErr = nil
	v.hovering = false

	if !ok {
		v.vc.Detach()
		return
	}
	start := time.Now()
	frame, err := v.renderer.Build(&snap, v.gridRect)
	v.buildTime = time.Since(start)
	if err != nil {
		v.buildErr = err
		v.vc.Detach()
		if !errors.Is(err, ErrInvalidContainer) {
			v.logger.Warnf("cannot draw %q, error: %s", snap.Label, err)
		}
		return
	}
	if frame == nil {
		v.vc.Detach()
		return
	}
	v.frame = frame
	v.vc.Reset(frame.Layout, v.gridRect)
	v.logger.Debugf("showing %q (%dx%d)", snap.Label, frame.Layout.Rows, frame.Layout.Cols)
}

func (v *Viewer) updateHover(sx, sy float64) {
	v.hovering = false
	if v.frame == nil || !v.gridRect.Contains(sx, sy) {
		return
	}
	gx, gy := v.vc.ScreenToGrid(sx, sy)
	v.hover, v.hovering = v.frame.CellAt(gx, gy)
}

// --- drawing ---

func (v *Viewer) listFont() *Font {
	if v.font == nil {
		f, err := NewMonoFont(listFontPx)
		if err != nil {
			v.logger.Warnf("load font, error: %s", err)
			return nil
		}
		v.font = f
	}
	return v.font
}

func (v *Viewer) drawList(dst *ebiten.Image, font *Font) {
	r := v.listRect
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), colorPanel, false)
	if font == nil {
		return
	}
	cur := v.sel.Current()
	rows := v.visibleRows()
	for row := 0; row < rows; row++ {
		i := v.listScroll + row
		if i >= len(v.entries) {
			break
		}
		e := v.entries[i]
		y := r.Y + float64(row)*listRowHeight
		if cur.Set && e.Index == v.attached.index {
			vector.DrawFilledRect(dst, float32(r.X), float32(y), float32(r.Width), listRowHeight, colorHighlight, false)
		}
		if i == v.cursor {
			vector.StrokeRect(dst, float32(r.X)+1, float32(y)+1, float32(r.Width)-2, listRowHeight-2, 1, colorText, false)
		}
		font.DrawAt(dst, e.String(), r.X+panelPadding, y+(listRowHeight-font.LineHeight())/2, colorText)
	}
}

func (v *Viewer) drawStatus(dst *ebiten.Image, font *Font) {
	r := v.statusRect
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), colorPanel, false)
	if font == nil {
		return
	}
	font.DrawAt(dst, v.statusText(), r.X+panelPadding, r.Y+(r.Height-font.LineHeight())/2, colorText)
}

// statusText describes the current selection, zoom, hovered cell and
// stream counters.
func (v *Viewer) statusText() string {
	st := v.ingest.Stats()
	stream := fmt.Sprintf("recv %d  drop %d", st.Received, st.Dropped)
	switch {
	case v.streamEnded:
		stream += "  (closed)"
	case !st.Connected:
		stream += "  (connecting)"
	}

	sel := v.sel.Current()
	var view string
	switch {
	case !sel.Set:
		view = "no selection"
	case v.buildErr != nil:
		view = fmt.Sprintf("%s: %s", sel.Label, v.buildErr)
	case v.frame == nil:
		view = fmt.Sprintf("%s: waiting", sel.Label)
	default:
		l := v.frame.Layout
		view = fmt.Sprintf("%s %d X %d  zoom %.2fx", v.frame.Label, l.Rows, l.Cols, v.vc.Transform().K)
		if v.hovering {
			view += fmt.Sprintf("  [%d,%d] = %g", v.hover.Row, v.hover.Col, v.hover.Value)
		}
	}
	return fmt.Sprintf("%s  |  %s  |  %.0f fps", view, stream, ebiten.ActualFPS())
}

// Run opens the stream and shows the viewer window until it is closed.
func Run(cfg Config) error {
	v, err := NewViewer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v.ingest.Start(ctx)
	defer func() {
		if err := v.ingest.Close(); err != nil {
			v.logger.Warnf("close stream, error: %s", err)
		}
	}()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	log.Infof("matrixview: subscribing to %s", cfg.URL)

	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
