package effect

import (
	"context"
	"time"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/surface"
)

const (
	slideRepeats  = 3
	slideDuration = 3 * time.Second
)

// Slide scrolls three runs of face-down cards across the screen with a quadratic ease-in
type Slide struct {
	Base
}

func NewSlide(env Env) *Slide {
	return &Slide{Base: NewBase(IDSlide, env)}
}

// slideBounds is the track travel: enter from the right edge, stop one item short of a full sweep
func slideBounds(viewportW float64) (start, end float64) {
	return viewportW, -viewportW + surface.SlideItemWidth
}

func (e *Slide) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)
	err := e.withOverlay(func(ov *surface.Node) error {
		vp := e.Surface.Viewport()
		track := e.Surface.NewNode(surface.ClassSlideTrack)
		ov.Append(track)
		for i := range slideRepeats * len(e.Options) {
			item := e.Surface.NewNode(surface.ClassSlideItem)
			item.SetContent(surface.Placeholder())
			item.SetPos(float64(i*surface.SlideItemWidth), 0)
			track.Append(item)
		}
		itemH := e.measureClass(track, surface.ClassSlideItem).H
		start, end := slideBounds(vp.W)
		track.SetPos(start, (vp.H-itemH)/2)

		e.Cues.Play(CueSpin)
		e.emit(PhaseChoreography, opt, 0)
		err := engine.Animate(ctx, e.Clock, engine.FrameCount(slideDuration), func(frame, total int) {
			track.SetX(EaseInQuad(start, end, FrameProgress(frame, total)))
		})
		if err != nil {
			return err
		}
		track.SetX(end)
		return e.flipReveal(ctx, ov, opt, slideReveal)
	})
	if err != nil {
		return err
	}
	e.displayCard(ctx, opt)
	return nil
}
