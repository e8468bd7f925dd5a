package render

import (
	"math"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/surface"
)

// drawCtx carries the pixel offset, clip and inherited opacity down the tree
type drawCtx struct {
	dx, dy float64
	clip   Rect
	alpha  float64
	lit    bool // inside a constellation being activated
}

// Box-drawing runes for card borders
const (
	borderTL = '╭'
	borderTR = '╮'
	borderBL = '╰'
	borderBR = '╯'
	borderH  = '─'
	borderV  = '│'
)

// toRect maps a pixel box to cells; partial cells round toward the box origin
func toRect(b surface.Box, dx, dy float64) Rect {
	x := int(math.Floor((b.X + dx) / CellWidth))
	y := int(math.Floor((b.Y + dy) / CellHeight))
	return Rect{X: x, Y: y, W: cellSpan(b.W, CellWidth), H: cellSpan(b.H, CellHeight)}
}

// fade blends c toward the page background for partial opacity
func fade(c core.RGB, alpha float64) core.RGB {
	return RgbBackground.Blend(c, alpha)
}

func (r *Renderer) drawNode(v surface.NodeView, ctx drawCtx) {
	if v.Hidden || ctx.clip.Empty() {
		return
	}
	ctx.alpha *= v.Opacity
	if v.Has(surface.FlagFading) {
		ctx.alpha *= 0.4
	}
	if ctx.alpha <= 0 {
		return
	}
	rect := toRect(v.Box, ctx.dx, ctx.dy)

	switch v.Class {
	case surface.ClassMount:
		if len(v.Children) == 0 {
			r.drawCard(v, rect, ctx)
			return
		}
	case surface.ClassResultCard, surface.ClassSlotItem, surface.ClassSlideItem,
		surface.ClassFlipCard, surface.ClassLionCard, surface.ClassControl, surface.ClassHistorySlot:
		r.drawCard(v, rect, ctx)
	case surface.ClassSlotMachine:
		r.drawFrame(rect.grow(1), ctx.clip, fade(RgbSlotFrame, ctx.alpha))
		ctx.clip = ctx.clip.Intersect(rect)
	case surface.ClassConstellation:
		ctx.lit = v.Has(surface.FlagActivating) || v.Has(surface.FlagCompleting)
	case surface.ClassStar:
		r.drawStar(v, rect, ctx)
	case surface.ClassStarLine:
		r.drawStarLine(v, ctx)
	case surface.ClassShootingStar:
		r.put(rect.X, rect.Y, '✧', fade(RgbShooting, ctx.alpha), ctx.clip, false)
	case surface.ClassLion:
		r.drawLion(v, rect, ctx)
	}

	for _, c := range v.Children {
		r.drawNode(c, ctx)
	}
}

// put writes a foreground rune over the existing background when inside clip
func (r *Renderer) put(x, y int, ch rune, fg core.RGB, clip Rect, bold bool) {
	if !clip.Contains(x, y) {
		return
	}
	r.buf.SetFgOnly(x, y, ch, fg, bold)
}

// drawCard draws a bordered card with its art, glyph or placeholder face
func (r *Renderer) drawCard(v surface.NodeView, rect Rect, ctx drawCtx) {
	rect = applyTransform(rect, v.Transform)
	if rect.Empty() {
		return
	}

	showArt := v.Content.Image != nil && !v.Has(surface.FlagFlipped)
	face := RgbCardFace
	if !showArt && v.Content.Glyph == surface.PlaceholderGlyph {
		face = RgbCardBack
	}
	border := RgbCardBorder
	switch {
	case v.Has(surface.FlagBeingEaten):
		border = RgbBeingEaten
		face = face.Blend(RgbBeingEaten, 0.5)
	case v.Has(surface.FlagSelected):
		border = RgbSelected
	}
	face = fade(face, ctx.alpha)
	border = fade(border, ctx.alpha)

	r.buf.Fill(rect, ctx.clip, face)

	inner := rect
	if rect.W >= 3 && rect.H >= 3 {
		r.drawFrame(rect, ctx.clip, border)
		inner = rect.grow(-1)
	}

	if showArt {
		if cells := r.raster.get(v.Content.Image, inner.W, inner.H); cells != nil {
			for i, c := range cells {
				x, y := inner.X+i%inner.W, inner.Y+i/inner.W
				if ctx.clip.Contains(x, y) {
					r.buf.SetWithBg(x, y, c.Rune, fade(c.Fg, ctx.alpha), fade(c.Bg, ctx.alpha))
				}
			}
			return
		}
	}

	glyph := v.Content.Glyph
	if glyph == "" {
		return
	}
	gw := TextWidth(glyph)
	gx := inner.X + max((inner.W-gw)/2, 0)
	gy := inner.Y + inner.H/2
	if !ctx.clip.Contains(gx, gy) || !ctx.clip.Contains(gx+gw-1, gy) {
		return
	}
	r.buf.Text(gx, gy, glyph, fade(RgbCardGlyph, ctx.alpha), face)
	for x := gx; x < gx+gw; x++ {
		c := r.buf.Get(x, gy)
		r.buf.SetFgOnly(x, gy, c.Rune, c.Fg, true)
	}
}

// drawFrame draws a rounded border on the edge of rect
func (r *Renderer) drawFrame(rect, clip Rect, fg core.RGB) {
	if rect.W < 2 || rect.H < 2 {
		return
	}
	x0, y0 := rect.X, rect.Y
	x1, y1 := rect.X+rect.W-1, rect.Y+rect.H-1
	for x := x0 + 1; x < x1; x++ {
		r.put(x, y0, borderH, fg, clip, false)
		r.put(x, y1, borderH, fg, clip, false)
	}
	for y := y0 + 1; y < y1; y++ {
		r.put(x0, y, borderV, fg, clip, false)
		r.put(x1, y, borderV, fg, clip, false)
	}
	r.put(x0, y0, borderTL, fg, clip, false)
	r.put(x1, y0, borderTR, fg, clip, false)
	r.put(x0, y1, borderBL, fg, clip, false)
	r.put(x1, y1, borderBR, fg, clip, false)
}

// applyTransform scales rect about its center and narrows it by the y rotation
func applyTransform(rect Rect, t surface.Transform) Rect {
	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}
	w := float64(rect.W) * scale
	h := float64(rect.H) * scale
	if t.RotateY != 0 {
		w *= math.Abs(math.Cos(t.RotateY * math.Pi / 180))
	}
	nw := max(int(math.Round(w)), 1)
	nh := max(int(math.Round(h)), 1)
	return Rect{
		X: rect.X + (rect.W-nw)/2,
		Y: rect.Y + (rect.H-nh)/2,
		W: nw,
		H: nh,
	}
}

func (r *Renderer) drawStar(v surface.NodeView, rect Rect, ctx drawCtx) {
	ch, fg, bold := '·', RgbStar, false
	switch {
	case v.Has(surface.FlagCompleting):
		ch, fg, bold = '★', RgbStarBright, true
	case v.Has(surface.FlagActivating), ctx.lit:
		ch, fg = '✦', RgbStarBright
	}
	r.put(rect.X, rect.Y, ch, fade(fg, ctx.alpha), ctx.clip, bold)
}

// drawStarLine walks from the node origin along its size vector
// Lines carry a signed delta in their size, so the box is not a rect here
func (r *Renderer) drawStarLine(v surface.NodeView, ctx drawCtx) {
	x0 := int(math.Floor((v.Box.X + ctx.dx) / CellWidth))
	y0 := int(math.Floor((v.Box.Y + ctx.dy) / CellHeight))
	x1 := int(math.Floor((v.Box.X + v.Box.W + ctx.dx) / CellWidth))
	y1 := int(math.Floor((v.Box.Y + v.Box.H + ctx.dy) / CellHeight))

	fg := RgbStarLine
	if ctx.lit || v.Has(surface.FlagActivating) || v.Has(surface.FlagCompleting) {
		fg = RgbStar
	}
	fg = fade(fg, ctx.alpha)

	// Bresenham; endpoints are left to the stars
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	x, y := x0, y0
	for {
		if (x != x0 || y != y0) && (x != x1 || y != y1) {
			r.put(x, y, '·', fg, ctx.clip, false)
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (r *Renderer) drawLion(v surface.NodeView, rect Rect, ctx drawCtx) {
	face := "(=^.^=)"
	if v.Has(surface.FlagEating) {
		face = "(=ÒwÓ=)"
	}
	x := rect.X + (rect.W-TextWidth(face))/2
	fg := fade(RgbLion, ctx.alpha)
	for i, ch := range []rune(face) {
		r.put(x+i, rect.Y, ch, fg, ctx.clip, true)
	}
}

// grow expands r by n cells on every side; negative n shrinks
func (r Rect) grow(n int) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, W: max(r.W+2*n, 0), H: max(r.H+2*n, 0)}
}
