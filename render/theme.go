package render

import "github.com/lixenwraith/mirage-choice/core"

// Palette (Tokyo Night base)
var (
	RgbBackground = core.RGB{R: 26, G: 27, B: 38}
	RgbBackdrop   = core.RGB{R: 8, G: 8, B: 14}
	RgbText       = core.RGB{R: 192, G: 202, B: 245}
	RgbTextDim    = core.RGB{R: 86, G: 95, B: 137}

	RgbCardFace   = core.RGB{R: 36, G: 40, B: 59}
	RgbCardBack   = core.RGB{R: 61, G: 89, B: 161}
	RgbCardBorder = core.RGB{R: 122, G: 162, B: 247}
	RgbCardGlyph  = core.RGB{R: 255, G: 255, B: 255}

	RgbSelected   = core.RGB{R: 224, G: 175, B: 104}
	RgbBeingEaten = core.RGB{R: 247, G: 118, B: 142}
	RgbLion       = core.RGB{R: 255, G: 158, B: 100}

	RgbStar       = core.RGB{R: 169, G: 177, B: 214}
	RgbStarBright = core.RGB{R: 255, G: 240, B: 170}
	RgbStarLine   = core.RGB{R: 65, G: 72, B: 104}
	RgbShooting   = core.RGB{R: 125, G: 207, B: 255}

	RgbSlotFrame = core.RGB{R: 187, G: 154, B: 247}

	RgbTabActiveBg = core.RGB{R: 122, G: 162, B: 247}
	RgbTabActiveFg = core.RGB{R: 26, G: 27, B: 38}
	RgbStatusBg    = core.RGB{R: 41, G: 46, B: 66}
)

// backdropAlpha darkens the page under an open overlay
const backdropAlpha = 0.8
