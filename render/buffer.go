package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/mirage-choice/core"
)

// wideTail marks the second column of a double-width rune
const wideTail rune = -1

// Cell is one composited terminal cell
type Cell struct {
	Rune rune
	Fg   core.RGB
	Bg   core.RGB
	Bold bool
}

// Rect is a cell rectangle
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersect returns the overlap of r and o; empty when they do not touch
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Empty reports a zero-area rect
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Buffer is a compositor backed by a flat cell array with touched tracking
// Untouched cells get the page background at flush
type Buffer struct {
	cells   []Cell
	touched []bool
	width   int
	height  int
}

// NewBuffer creates a buffer with the specified dimensions
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts dimensions, reallocating only if capacity is insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
		b.touched = make([]bool, size)
	} else {
		b.cells = b.cells[:size]
		b.touched = b.touched[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Size returns the buffer dimensions in cells
func (b *Buffer) Size() (int, int) { return b.width, b.height }

// Bounds is the whole buffer as a rect
func (b *Buffer) Bounds() Rect { return Rect{W: b.width, H: b.height} }

// Clear resets all cells to empty using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Fg: RgbText, Bg: RgbBackground}
	b.touched[0] = false
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
	for filled := 1; filled < len(b.touched); filled *= 2 {
		copy(b.touched[filled:], b.touched[:filled])
	}
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at (x, y); out of bounds is the zero cell
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// SetWithBg writes a cell with explicit fg and bg colors (opaque replace)
func (b *Buffer) SetWithBg(x, y int, r rune, fg, bg core.RGB) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	b.cells[idx] = Cell{Rune: r, Fg: fg, Bg: bg}
	b.touched[idx] = true
}

// SetFgOnly writes rune and foreground while preserving the background
func (b *Buffer) SetFgOnly(x, y int, r rune, fg core.RGB, bold bool) {
	if !b.inBounds(x, y) {
		return
	}
	dst := &b.cells[y*b.width+x]
	dst.Rune = r
	dst.Fg = fg
	dst.Bold = bold
}

// BlendBg mixes bg over the existing background with alpha
func (b *Buffer) BlendBg(x, y int, bg core.RGB, alpha float64) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	dst := &b.cells[idx]
	base := dst.Bg
	if !b.touched[idx] {
		base = RgbBackground
	}
	dst.Bg = base.Blend(bg, alpha)
	dst.Fg = dst.Fg.Blend(bg, alpha)
	b.touched[idx] = true
}

// Fill paints rect r inside clip with a blank background
func (b *Buffer) Fill(r, clip Rect, bg core.RGB) {
	r = r.Intersect(clip)
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			b.SetWithBg(x, y, ' ', bg, bg)
		}
	}
}

// Text writes s starting at (x, y) without wrapping and returns the next column
// Double-width runes take two columns
func (b *Buffer) Text(x, y int, s string, fg, bg core.RGB) int {
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		b.SetWithBg(x, y, ch, fg, bg)
		if w == 2 {
			b.SetWithBg(x+1, y, wideTail, fg, bg)
		}
		x += w
	}
	return x
}

// TextWidth is the column width of s as Text would lay it out
func TextWidth(s string) int {
	return runewidth.StringWidth(s)
}

// finalize sets the page background on untouched cells
func (b *Buffer) finalize() {
	for i := range b.cells {
		if !b.touched[i] {
			b.cells[i].Bg = RgbBackground
		}
	}
}

// Flush writes every cell to the screen; mode must already be resolved
func (b *Buffer) Flush(screen tcell.Screen, mode ColorMode) {
	b.finalize()
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.cells[y*b.width+x]
			r := c.Rune
			if r == wideTail {
				continue
			}
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.
				Foreground(tcellColor(c.Fg, mode)).
				Background(tcellColor(c.Bg, mode))
			if c.Bold {
				style = style.Bold(true)
			}
			screen.SetContent(x, y, r, nil, style)
		}
	}
}
