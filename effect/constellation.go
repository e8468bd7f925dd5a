package effect

import (
	"context"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/surface"
)

const (
	starLead         = 800
	starActivations  = 5
	starActiveHold   = 800
	starActivePause  = 200
	starCompleteHold = 1000
	starFadeHold     = 1500

	shootingStars      = 15
	shootingStarStep   = 100
	shootingStarLife   = 1500
	shootingStarMinPct = 5.0
	shootingStarSpread = 30.0
)

// starPoint is a star position in percent of the star field
type starPoint struct {
	X, Y float64
}

// constellationPatterns holds one fixed figure per option, in option order
var constellationPatterns = [...][]starPoint{
	{{15, 25}, {25, 20}, {35, 25}, {30, 35}, {20, 40}},
	{{45, 15}, {50, 25}, {55, 35}, {60, 20}, {65, 30}},
	{{70, 20}, {75, 30}, {80, 25}, {85, 35}, {90, 30}},
	{{10, 50}, {20, 45}, {30, 50}, {35, 60}, {25, 65}, {15, 60}},
	{{50, 45}, {55, 55}, {60, 65}, {45, 60}, {65, 55}},
	{{75, 50}, {80, 60}, {85, 70}, {90, 65}, {85, 55}},
	{{15, 75}, {25, 80}, {35, 85}, {30, 75}},
	{{55, 75}, {65, 80}, {75, 85}, {70, 75}, {80, 80}},
}

// patternFor returns the figure of the i-th option; out of range options reuse the first
func patternFor(i int) []starPoint {
	if i < 0 || i >= len(constellationPatterns) {
		return constellationPatterns[0]
	}
	return constellationPatterns[i]
}

// Constellation lights star figures at random, then completes the target's figure
type Constellation struct {
	Base
}

func NewConstellation(env Env) *Constellation {
	return &Constellation{Base: NewBase(IDConstellation, env)}
}

func (e *Constellation) layout(ov *surface.Node) (field *surface.Node, figures []*surface.Node) {
	vp := e.Surface.Viewport()
	field = e.Surface.NewNode(surface.ClassStarField)
	ov.Append(field)
	star := e.measureClass(field, surface.ClassStar)

	px := func(p starPoint) (float64, float64) {
		return p.X / 100 * vp.W, p.Y / 100 * vp.H
	}

	figures = make([]*surface.Node, len(e.Options))
	for i, o := range e.Options {
		fig := e.Surface.NewNode(surface.ClassConstellation)
		fig.SetOption(o)
		pattern := patternFor(i)
		for j, p := range pattern {
			x, y := px(p)
			s := e.Surface.NewNode(surface.ClassStar)
			s.SetPos(x-star.W/2, y-star.H/2)
			fig.Append(s)
			if j == len(pattern)-1 {
				continue
			}
			x2, y2 := px(pattern[j+1])
			line := e.Surface.NewNode(surface.ClassStarLine)
			line.SetPos(x, y)
			line.SetSize(x2-x, y2-y)
			fig.Append(line)
		}
		field.Append(fig)
		figures[i] = fig
	}
	return field, figures
}

// burst spawns staggered shooting stars that each detach after their lifetime
func (e *Constellation) burst(field *surface.Node, timers *timerGroup) {
	vp := e.Surface.Viewport()
	for i := range shootingStars {
		timers.after(msec(i*shootingStarStep), func() {
			s := e.Surface.NewNode(surface.ClassShootingStar)
			x := shootingStarMinPct + e.Rand.Float64()*shootingStarSpread
			y := shootingStarMinPct + e.Rand.Float64()*shootingStarSpread
			s.SetPos(x/100*vp.W, y/100*vp.H)
			field.Append(s)
			timers.after(msec(shootingStarLife), s.Remove)
		})
	}
}

func (e *Constellation) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)
	err := e.withOverlay(func(ov *surface.Node) error {
		timers := newTimerGroup(e.Clock)
		defer timers.stopAll()

		field, figures := e.layout(ov)
		if err := e.dwell(ctx, starLead); err != nil {
			return err
		}

		e.emit(PhaseChoreography, opt, 0)
		for range starActivations {
			fig := figures[e.Rand.IntN(len(figures))]
			fig.SetFlag(surface.FlagActivating, true)
			e.Cues.Play(CueSparkle)
			if err := e.dwell(ctx, starActiveHold); err != nil {
				return err
			}
			fig.SetFlag(surface.FlagActivating, false)
			if err := e.dwell(ctx, starActivePause); err != nil {
				return err
			}
		}

		target := max(0, core.IndexOf(e.Options, opt))
		figures[target].SetFlag(surface.FlagCompleting, true)
		e.burst(field, timers)
		if err := e.dwell(ctx, starCompleteHold); err != nil {
			return err
		}
		for i, fig := range figures {
			if i != target {
				fig.SetFlag(surface.FlagFading, true)
			}
		}
		if err := e.dwell(ctx, starFadeHold); err != nil {
			return err
		}
		return e.flipReveal(ctx, ov, opt, standardReveal)
	})
	if err != nil {
		return err
	}
	e.displayCard(ctx, opt)
	return nil
}
