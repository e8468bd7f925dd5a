package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/mirage-choice/surface"
)

// Surface pixels per terminal cell
const (
	CellWidth  = 8
	CellHeight = 16
)

const (
	controlGap    = 1
	controlRows   = 3
	statusHint    = "a-h toggle  enter draw  ←/→ effect  tab history  r reset  q quit"
	carouselLeft  = "◀ "
	carouselRight = " ▶"
)

// Viewport is the surface size that maps onto a cols x rows terminal
func Viewport(cols, rows int) surface.Size {
	return surface.Size{W: float64(cols * CellWidth), H: float64(rows * CellHeight)}
}

// Renderer composites surface frames into a cell buffer and flushes them to tcell
// Not safe for concurrent use; the frame loop owns it
type Renderer struct {
	buf    *Buffer
	mode   ColorMode
	raster *rasterCache
}

// NewRenderer creates a renderer; ColorModeAuto is resolved once here
func NewRenderer(mode ColorMode) *Renderer {
	return &Renderer{
		buf:    NewBuffer(0, 0),
		mode:   mode.resolve(),
		raster: newRasterCache(),
	}
}

// Mode is the resolved color mode
func (r *Renderer) Mode() ColorMode { return r.mode }

// Buffer exposes the last composited frame
func (r *Renderer) Buffer() *Buffer { return r.buf }

// Render draws f at the screen's current size and shows it
func (r *Renderer) Render(screen tcell.Screen, f surface.Frame) {
	cols, rows := screen.Size()
	r.Draw(f, cols, rows)
	r.buf.Flush(screen, r.mode)
	screen.Show()
}

// pageLayout splits the terminal into carousel, stage, option row and status line
type pageLayout struct {
	tabs     int
	stage    Rect
	controls Rect
	status   int
}

func computeLayout(cols, rows int) pageLayout {
	l := pageLayout{tabs: 0, status: rows - 1}
	controlsTop := max(rows-1-controlRows, 1)
	l.controls = Rect{X: 0, Y: controlsTop, W: cols, H: min(controlRows, rows-1-controlsTop)}
	l.stage = Rect{X: 0, Y: 1, W: cols, H: max(controlsTop-1, 0)}
	return l
}

// Draw composites f into the buffer for a cols x rows terminal
func (r *Renderer) Draw(f surface.Frame, cols, rows int) {
	if w, h := r.buf.Size(); w != cols || h != rows {
		r.buf.Resize(cols, rows)
	} else {
		r.buf.Clear()
	}
	if cols <= 0 || rows <= 0 {
		return
	}

	l := computeLayout(cols, rows)
	r.drawCarousel(f, l.tabs, cols)
	r.drawStage(f, l.stage)
	if f.HistoryMode {
		r.drawRow(f.History, l.controls)
	} else {
		r.drawRow(f.Controls, l.controls)
	}
	r.drawStatus(f.Status, l.status, cols)

	full := r.buf.Bounds()
	for _, ov := range f.Overlays {
		if ov.Hidden {
			continue
		}
		r.drawBackdrop(full)
		r.drawNode(ov, drawCtx{clip: full, alpha: 1})
	}
}

// drawCarousel lists effect titles with the front one highlighted
func (r *Renderer) drawCarousel(f surface.Frame, row, cols int) {
	if len(f.Sections) == 0 {
		return
	}
	width := TextWidth(carouselLeft) + TextWidth(carouselRight)
	for _, sec := range f.Sections {
		width += TextWidth(sec.Title) + 2
	}
	x := max((cols-width)/2, 0)

	x = r.buf.Text(x, row, carouselLeft, RgbTextDim, RgbBackground)
	for i, sec := range f.Sections {
		fg, bg := RgbTextDim, RgbBackground
		if i == f.Active {
			fg, bg = RgbTabActiveFg, RgbTabActiveBg
		}
		x = r.buf.Text(x, row, " "+sec.Title+" ", fg, bg)
	}
	r.buf.Text(x, row, carouselRight, RgbTextDim, RgbBackground)
}

// drawStage centers the active section's mount in the stage
func (r *Renderer) drawStage(f surface.Frame, stage Rect) {
	if stage.Empty() || f.Active < 0 || f.Active >= len(f.Sections) {
		return
	}
	mount := f.Sections[f.Active].Mount
	targetX := float64(stage.X*CellWidth) + (float64(stage.W*CellWidth)-mount.Box.W)/2
	targetY := float64(stage.Y*CellHeight) + max((float64(stage.H*CellHeight)-mount.Box.H)/2, 0)

	r.drawNode(mount, drawCtx{
		dx:    math.Round(targetX/CellWidth)*CellWidth - mount.Box.X,
		dy:    math.Round(targetY/CellHeight)*CellHeight - mount.Box.Y,
		clip:  stage,
		alpha: 1,
	})
}

// drawRow lays out option controls or history slots left to right, centered
func (r *Renderer) drawRow(items []surface.NodeView, area Rect) {
	if len(items) == 0 || area.Empty() {
		return
	}
	itemW := 0
	for _, it := range items {
		itemW = max(itemW, cellSpan(it.Box.W, CellWidth))
	}
	total := len(items)*itemW + (len(items)-1)*controlGap
	x := area.X + max((area.W-total)/2, 0)

	for _, it := range items {
		rect := Rect{X: x, Y: area.Y, W: itemW, H: area.H}
		r.drawCard(it, rect, drawCtx{clip: area, alpha: 1})
		x += itemW + controlGap
	}
}

func (r *Renderer) drawStatus(status string, row, cols int) {
	if row < 0 {
		return
	}
	line := Rect{X: 0, Y: row, W: cols, H: 1}
	r.buf.Fill(line, line, RgbStatusBg)
	end := r.buf.Text(1, row, status, RgbText, RgbStatusBg)

	hintX := cols - TextWidth(statusHint) - 1
	if hintX > end+2 {
		r.buf.Text(hintX, row, statusHint, RgbTextDim, RgbStatusBg)
	}
}

// drawBackdrop dims whatever lies beneath an overlay
func (r *Renderer) drawBackdrop(full Rect) {
	for y := full.Y; y < full.Y+full.H; y++ {
		for x := full.X; x < full.X+full.W; x++ {
			r.buf.BlendBg(x, y, RgbBackdrop, backdropAlpha)
		}
	}
}

// cellSpan converts a pixel length to a cell count, at least one
func cellSpan(px float64, unit int) int {
	return max(int(math.Round(px/float64(unit))), 1)
}
