package effect

import (
	"context"
	"slices"
	"time"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/surface"
)

const (
	lionSetup      = 500
	lionIntroMove  = 2 * time.Second
	lionIntroHold  = 200
	lionHideAfter  = 400 * time.Millisecond
	lionBite       = 800
	lionExit       = 500
	lionShiftMove  = 800 * time.Millisecond
	lionFinalLead  = 100
	lionFinalHold  = 1000
	lionStageCards = 3
)

// Lion runs the elimination show: a looping card track, three bites, then a two-speed
// run that stops on the target
// The target is never eaten
type Lion struct {
	Base
}

func NewLion(env Env) *Lion {
	return &Lion{Base: NewBase(IDLion, env)}
}

// lionRun is the per-invocation state; layout is measured fresh every run
type lionRun struct {
	*Lion
	target core.Option
	timers *timerGroup

	track *surface.Node
	lion  *surface.Node
	cards []*surface.Node

	vw      float64
	cardW   float64
	spacing float64
	eaten   []core.Option
}

func (e *Lion) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)
	err := e.withOverlay(func(ov *surface.Node) error {
		r := &lionRun{Lion: e, target: opt, timers: newTimerGroup(e.Clock)}
		defer r.timers.stopAll()

		r.stage(ov)
		if err := e.dwell(ctx, lionSetup); err != nil {
			return err
		}
		if err := r.introduction(ctx); err != nil {
			return err
		}
		if err := r.elimination(ctx); err != nil {
			return err
		}
		if err := r.finalSelection(ctx); err != nil {
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

// stage builds the track with a few face-down cards and the hidden lion
func (r *lionRun) stage(ov *surface.Node) {
	vp := r.Surface.Viewport()
	r.vw = vp.W

	r.track = r.Surface.NewNode(surface.ClassLionTrack)
	ov.Append(r.track)
	card := r.measureClass(r.track, surface.ClassLionCard)
	r.track.SetPos(0, (vp.H-card.H)/2)

	for i := range lionStageCards {
		c := r.Surface.NewNode(surface.ClassLionCard)
		c.SetContent(surface.Placeholder())
		c.SetPos(vp.W/2-card.W/2+float64(i-1)*card.W*1.2, 0)
		r.track.Append(c)
	}

	r.lion = r.Surface.NewNode(surface.ClassLion)
	r.lion.SetHidden(true)
	ov.Append(r.lion)
	box := r.Surface.Measure(r.lion)
	r.lion.SetPos((vp.W-box.W)/2, (vp.H-card.H)/2-box.H)
}

func (r *lionRun) newCard(ctx context.Context, o core.Option, x float64) *surface.Node {
	c := r.Surface.NewNode(surface.ClassLionCard)
	c.SetOption(o)
	c.SetContent(surface.Glyph(string(o)))
	c.SetPos(x, 0)
	r.track.Append(c)
	r.loadInto(ctx, c, o)
	return c
}

func (r *lionRun) introduction(ctx context.Context) error {
	options := r.Options
	n := len(options)

	r.cardW = r.measureClass(r.track, surface.ClassLionCard).W
	r.spacing = r.cardW + r.vw*lionGapRatio
	loop := float64(n) * r.spacing

	stop := chooseStop(r.Rand, options, r.target)
	stopCard := lionStopLoop*n + core.IndexOf(options, stop)
	final := r.vw/2 - r.cardW/2 - float64(stopCard)*r.spacing
	initial := final + loop

	r.track.Clear()
	r.cards = r.cards[:0]
	for i := range lionIntroLoops * n {
		r.cards = append(r.cards, r.newCard(ctx, options[i%n], initial+float64(i)*r.spacing))
	}

	r.emit(PhaseIntroduction, stop, 0)
	r.Cues.Play(CueSpin)
	if err := r.shift(ctx, loop, lionIntroMove); err != nil {
		return err
	}
	return r.dwell(ctx, lionIntroHold)
}

// shift moves every card left by dist, linear and frame-stepped, landing exactly
func (r *lionRun) shift(ctx context.Context, dist float64, d time.Duration) error {
	cards := slices.Clone(r.cards)
	starts := make([]float64, len(cards))
	for i, c := range cards {
		starts[i] = c.X()
	}
	return engine.Animate(ctx, r.Clock, engine.FrameCount(d), func(frame, total int) {
		moved := Lerp(0, dist, FrameProgress(frame, total))
		for i, c := range cards {
			c.SetX(starts[i] - moved)
		}
	})
}

func (r *lionRun) centers(cards []*surface.Node) ([]float64, []core.Option) {
	centers := make([]float64, len(cards))
	options := make([]core.Option, len(cards))
	for i, c := range cards {
		centers[i] = r.Surface.Measure(c).CenterX()
		options[i] = c.Option()
	}
	return centers, options
}

func (r *lionRun) elimination(ctx context.Context) error {
	r.emit(PhaseElimination, r.target, 0)
	for round := 1; round <= lionRounds; round++ {
		if round > 1 {
			if err := r.shift(ctx, lionShiftCards*r.spacing, lionShiftMove); err != nil {
				return err
			}
		}

		centers, options := r.centers(r.cards)
		i := pickVictim(centers, options, r.vw/2, r.target)

		r.lion.SetHidden(false)
		r.lion.SetFlag(surface.FlagAppearing, true)
		r.lion.SetFlag(surface.FlagEating, true)

		var victim *surface.Node
		if i >= 0 {
			victim = r.cards[i]
			r.cards = slices.Delete(r.cards, i, i+1)
			r.eaten = append(r.eaten, victim.Option())
			victim.SetFlag(surface.FlagBeingEaten, true)
			r.Cues.Play(CueChomp)
			r.timers.after(lionHideAfter, func() { victim.SetHidden(true) })
			r.emit(PhaseEliminated, victim.Option(), round)
		}

		if err := r.dwell(ctx, lionBite); err != nil {
			return err
		}
		if victim != nil {
			victim.Remove()
		}

		r.lion.SetFlag(surface.FlagAppearing, false)
		r.lion.SetFlag(surface.FlagEating, false)
		r.lion.SetHidden(true)
		if err := r.dwell(ctx, lionExit); err != nil {
			return err
		}
	}
	return nil
}

func (r *lionRun) finalSelection(ctx context.Context) error {
	kept := r.cards[:0]
	rightmost, haveKept := 0.0, false
	for _, c := range r.cards {
		x := c.X()
		if x > r.vw {
			c.Remove()
			continue
		}
		kept = append(kept, c)
		if !haveKept || x > rightmost {
			rightmost, haveKept = x, true
		}
	}
	r.cards = kept

	remaining := core.Without(r.Options, r.eaten...)
	plan := planFinal(remaining, r.target, r.spacing, r.cardW, r.vw, rightmost, haveKept)

	fresh := make([]*surface.Node, 0, plan.Loops*len(remaining))
	for i := range plan.Loops * len(remaining) {
		fresh = append(fresh, r.newCard(ctx, remaining[i%len(remaining)], plan.Start+float64(i)*r.spacing))
	}
	r.cards = append(r.cards, fresh...)

	r.emit(PhaseFinalSelection, r.target, 0)
	if err := r.dwell(ctx, lionFinalLead); err != nil {
		return err
	}

	cards := slices.Clone(r.cards)
	starts := make([]float64, len(cards))
	for i, c := range cards {
		starts[i] = c.X()
	}
	r.Cues.Play(CueSpin)
	err := engine.Animate(ctx, r.Clock, plan.TotalFrames, func(frame, total int) {
		moved := TwoSpeedDistance(frame, plan.FastFrames, total, plan.Fast, plan.Distance)
		for i, c := range cards {
			c.SetX(starts[i] - moved)
		}
	})
	if err != nil {
		return err
	}

	centers, _ := r.centers(fresh)
	if i := nearestWhere(centers, r.vw/2, func(int) bool { return true }); i >= 0 {
		fresh[i].SetFlag(surface.FlagSelected, true)
		r.emit(PhaseCentered, fresh[i].Option(), 0)
	}
	return r.dwell(ctx, lionFinalHold)
}
