package effect

import (
	"context"
	"time"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/surface"
)

const (
	slotRepeats  = 3
	slotSpinHold = 1000
	slotDecel    = time.Second
)

// Slot spins a reel of three option runs inside the mount and decelerates onto the target
// It draws no overlay
type Slot struct {
	Base
}

func NewSlot(env Env) *Slot {
	return &Slot{Base: NewBase(IDSlot, env)}
}

// slotStops returns the reel offsets for the spin illusion and the rest row of the target
func slotStops(n, target int) (spin, rest float64) {
	spin = -float64(n*slotRepeats*surface.SlotItemHeight) * 2
	rest = -float64((target + 2*n) * surface.SlotItemHeight)
	return spin, rest
}

func (e *Slot) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)

	machine := e.Surface.NewNode(surface.ClassSlotMachine)
	reel := e.Surface.NewNode(surface.ClassSlotReel)
	machine.Append(reel)
	for i := range slotRepeats * len(e.Options) {
		o := e.Options[i%len(e.Options)]
		item := e.Surface.NewNode(surface.ClassSlotItem)
		item.SetOption(o)
		item.SetContent(surface.Glyph(string(o)))
		item.SetPos(0, float64(i*surface.SlotItemHeight))
		reel.Append(item)
	}
	e.Mount.Clear()
	e.Mount.SetContent(surface.Content{})
	e.Mount.SetFlag(surface.FlagFlipped, false)
	e.Mount.Append(machine)
	if err := e.spin(ctx, reel, opt); err != nil {
		e.Mount.Clear()
		e.Mount.SetContent(surface.Placeholder())
		return err
	}
	e.displayCard(ctx, opt)
	return nil
}

func (e *Slot) spin(ctx context.Context, reel *surface.Node, opt core.Option) error {
	spin, rest := slotStops(len(e.Options), max(0, core.IndexOf(e.Options, opt)))
	reel.SetPos(0, spin)
	e.Cues.Play(CueSpin)
	e.emit(PhaseChoreography, opt, 0)
	if err := e.dwell(ctx, slotSpinHold); err != nil {
		return err
	}

	reel.SetTransition(slotDecel)
	err := engine.Animate(ctx, e.Clock, engine.FrameCount(slotDecel), func(frame, total int) {
		reel.SetPos(0, EaseOutCubic(spin, rest, FrameProgress(frame, total)))
	})
	if err != nil {
		return err
	}
	e.Cues.Play(CueTick)
	return nil
}
