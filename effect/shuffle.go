package effect

import (
	"context"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/surface"
)

const (
	shuffleCount = 8
	shuffleDelay = 150
)

// Shuffle flashes random labels on a face-up card before the reveal
// Labels come from the full option set, so the target may flash by too
type Shuffle struct {
	Base
}

func NewShuffle(env Env) *Shuffle {
	return &Shuffle{Base: NewBase(IDShuffle, env)}
}

func (e *Shuffle) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)
	err := e.withOverlay(func(ov *surface.Node) error {
		card := e.Surface.NewNode(surface.ClassResultCard)
		card.SetContent(surface.Placeholder())
		ov.Append(card)
		e.center(card)

		e.emit(PhaseChoreography, opt, 0)
		for range shuffleCount {
			label := e.pick(e.Options)
			card.SetFlag(surface.FlagFlipped, true)
			card.SetContent(surface.Glyph(string(label)))
			e.Cues.Play(CueTick)
			if err := e.dwell(ctx, shuffleDelay); err != nil {
				return err
			}
		}
		return e.flipReveal(ctx, ov, opt, standardReveal)
	})
	if err != nil {
		return err
	}
	e.displayCard(ctx, opt)
	return nil
}
