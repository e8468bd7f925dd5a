package surface

// SlotItemHeight is the fixed reel row height
const SlotItemHeight = 40

// SlideItemWidth is a slide item plus its margin
const SlideItemWidth = 140

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// DefaultMetrics sizes node classes relative to the viewport
// Card aspect is 1:1.4 in surface pixels
func DefaultMetrics(class string, vp Size) Size {
	switch class {
	case ClassOverlay:
		return vp
	case ClassResultCard:
		w := clamp(vp.W*0.3, 96, 320)
		return Size{W: w, H: min(vp.H*0.7, w*1.4)}
	case ClassLionCard:
		w := clamp(vp.W*0.12, 48, 160)
		return Size{W: w, H: w * 1.4}
	case ClassFlipCard:
		w := clamp(vp.W*0.16, 48, 128)
		return Size{W: w, H: w * 1.4}
	case ClassSlideItem:
		return Size{W: SlideItemWidth - 20, H: (SlideItemWidth - 20) * 1.4}
	case ClassMount:
		return Size{W: 160, H: 224}
	case ClassSlotMachine:
		return Size{W: 160, H: SlotItemHeight}
	case ClassSlotItem:
		return Size{W: 160, H: SlotItemHeight}
	case ClassControl, ClassHistorySlot:
		return Size{W: 40, H: 48}
	case ClassStar, ClassShootingStar:
		return Size{W: 8, H: 16}
	case ClassLion:
		return Size{W: 32, H: 32}
	case ClassLionTrack, ClassSlideTrack, ClassFlipGrid, ClassStarField, ClassConstellation, ClassSlotReel:
		return vp
	}
	return Size{}
}
