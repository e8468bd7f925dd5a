package effect

import (
	"context"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/surface"
)

const (
	flipIterations = 12
	flipLead       = 500
	flipGap        = 40
	flipSettle     = 300
	flipColumns    = 4
)

// CardFlip flips random cards of a face-down grid, faster each time, before the reveal
type CardFlip struct {
	Base
}

func NewCardFlip(env Env) *CardFlip {
	return &CardFlip{Base: NewBase(IDCardFlip, env)}
}

// nextFlip picks a card index uniformly, never repeating last
func nextFlip(r RandomSource, n, last int) int {
	if n <= 1 {
		return 0
	}
	for {
		i := r.IntN(n)
		if i != last {
			return i
		}
	}
}

func (e *CardFlip) layout(ov *surface.Node) []*surface.Node {
	vp := e.Surface.Viewport()
	grid := e.Surface.NewNode(surface.ClassFlipGrid)
	ov.Append(grid)

	size := e.measureClass(grid, surface.ClassFlipCard)
	gap := size.W / 8
	rows := (len(e.Options) + flipColumns - 1) / flipColumns
	gridW := float64(flipColumns)*size.W + float64(flipColumns-1)*gap
	gridH := float64(rows)*size.H + float64(rows-1)*gap
	grid.SetPos((vp.W-gridW)/2, (vp.H-gridH)/2)

	cards := make([]*surface.Node, len(e.Options))
	for i, o := range e.Options {
		c := e.Surface.NewNode(surface.ClassFlipCard)
		c.SetOption(o)
		c.SetContent(surface.Placeholder())
		c.SetPos(float64(i%flipColumns)*(size.W+gap), float64(i/flipColumns)*(size.H+gap))
		grid.Append(c)
		cards[i] = c
	}
	return cards
}

func (e *CardFlip) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)
	err := e.withOverlay(func(ov *surface.Node) error {
		cards := e.layout(ov)
		if err := e.dwell(ctx, flipLead); err != nil {
			return err
		}

		e.emit(PhaseChoreography, opt, 0)
		last := -1
		for i := range flipIterations {
			p := IterationProgress(i, flipIterations)
			anim := FlipTransitionTime(p)
			show := FlipShowTime(p)

			for _, c := range cards {
				c.SetFlag(surface.FlagFlipped, false)
			}
			last = nextFlip(e.Rand, len(cards), last)
			card := cards[last]
			card.SetTransition(anim)
			card.SetContent(surface.Glyph(string(card.Option())))
			card.SetFlag(surface.FlagFlipped, true)
			e.Cues.Play(CueTick)
			if err := e.Clock.Dwell(ctx, anim+show); err != nil {
				return err
			}
			card.SetFlag(surface.FlagFlipped, false)
			card.SetContent(surface.Placeholder())
			if err := e.dwell(ctx, flipGap); err != nil {
				return err
			}
		}
		if err := e.dwell(ctx, flipSettle); err != nil {
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
