package asset

import (
	"image"
	"image/color"

	"github.com/lixenwraith/mirage-choice/core"
)

// QuadrantChars maps 4-bit patterns to Unicode quadrant characters
// Bit order: 0=UL, 1=UR, 2=LL, 3=LR (1 = foreground)
var QuadrantChars = [16]rune{
	' ', '▘', '▝', '▀', '▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜', '▄', '▙', '▟', '█',
}

// Cell is one rasterized terminal cell
type Cell struct {
	Rune rune
	Fg   core.RGB
	Bg   core.RGB
}

// Rasterize scales img into cols x rows quadrant cells (2x2 samples per cell)
// Aspect ratio is the caller's concern; the image is stretched to the box
func Rasterize(img image.Image, cols, rows int) []Cell {
	if img == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}

	cells := make([]Cell, cols*rows)
	gridW := cols * 2
	gridH := rows * 2
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var pixels [4]core.RGB
			for i, off := range offsets {
				sx := bounds.Min.X + ((x*2+off[0])*srcW+srcW/2)/gridW
				sy := bounds.Min.Y + ((y*2+off[1])*srcH+srcH/2)/gridH
				if sx >= bounds.Max.X {
					sx = bounds.Max.X - 1
				}
				if sy >= bounds.Max.Y {
					sy = bounds.Max.Y - 1
				}
				pixels[i] = toRGB(img.At(sx, sy))
			}

			ch, fg, bg := bestQuadrant(pixels)
			cells[y*cols+x] = Cell{Rune: ch, Fg: fg, Bg: bg}
		}
	}
	return cells
}

// bestQuadrant searches all 16 patterns for the lowest color error
func bestQuadrant(pixels [4]core.RGB) (rune, core.RGB, core.RGB) {
	bestErr := int(^uint(0) >> 1)
	bestPattern := 0
	var bestFg, bestBg core.RGB

	for pattern := 0; pattern < 16; pattern++ {
		fg, bg, e := patternColors(pixels, pattern)
		if e < bestErr {
			bestErr = e
			bestPattern = pattern
			bestFg = fg
			bestBg = bg
		}
	}
	return QuadrantChars[bestPattern], bestFg, bestBg
}

func patternColors(pixels [4]core.RGB, pattern int) (fg, bg core.RGB, total int) {
	var fgSum, bgSum [3]int
	var fgN, bgN int

	for i := 0; i < 4; i++ {
		p := pixels[i]
		if pattern&(1<<i) != 0 {
			fgSum[0] += int(p.R)
			fgSum[1] += int(p.G)
			fgSum[2] += int(p.B)
			fgN++
		} else {
			bgSum[0] += int(p.R)
			bgSum[1] += int(p.G)
			bgSum[2] += int(p.B)
			bgN++
		}
	}
	if fgN > 0 {
		fg = core.RGB{R: uint8(fgSum[0] / fgN), G: uint8(fgSum[1] / fgN), B: uint8(fgSum[2] / fgN)}
	}
	if bgN > 0 {
		bg = core.RGB{R: uint8(bgSum[0] / bgN), G: uint8(bgSum[1] / bgN), B: uint8(bgSum[2] / bgN)}
	}

	for i := 0; i < 4; i++ {
		if pattern&(1<<i) != 0 {
			total += pixels[i].DistanceSq(fg)
		} else {
			total += pixels[i].DistanceSq(bg)
		}
	}
	return fg, bg, total
}

// toRGB flattens alpha onto black
func toRGB(c color.Color) core.RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return core.RGBBlack
	}
	// RGBA() is already alpha-premultiplied in 16-bit
	return core.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}
