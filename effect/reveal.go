package effect

import (
	"context"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/surface"
)

// revealTiming paces the full-screen flip reveal in milliseconds
type revealTiming struct {
	Lead  int // placeholder shown before the flip starts
	Hold  int // flip-open transform held before content swaps in
	Dwell int // resolved card held before teardown
}

var (
	standardReveal = revealTiming{Lead: 100, Hold: 250, Dwell: 1000}
	slideReveal    = revealTiming{Lead: 50, Hold: 350, Dwell: 1000}
)

var flipOpen = surface.Transform{Scale: 1.1, RotateY: 10}

// flipReveal replaces the overlay contents with one large card and flips it onto opt
// Content arrives through LoadAsync and is not awaited; Dwell covers the load in practice
func (b *Base) flipReveal(ctx context.Context, ov *surface.Node, opt core.Option, t revealTiming) error {
	ov.Clear()
	card := b.Surface.NewNode(surface.ClassResultCard)
	card.SetContent(surface.Placeholder())
	card.SetTransform(surface.Identity)
	ov.Append(card)
	b.center(card)

	b.emit(PhaseReveal, opt, 0)
	if err := b.dwell(ctx, t.Lead); err != nil {
		return err
	}
	card.SetTransform(flipOpen)
	if err := b.dwell(ctx, t.Hold); err != nil {
		return err
	}
	b.loadInto(ctx, card, opt)
	card.SetTransform(surface.Identity)
	b.Cues.Play(CueReveal)
	return b.dwell(ctx, t.Dwell)
}

// center places a node in the middle of the viewport
func (b *Base) center(n *surface.Node) {
	vp := b.Surface.Viewport()
	box := b.Surface.Measure(n)
	n.SetPos((vp.W-box.W)/2, (vp.H-box.H)/2)
}

// loadInto fills a card face asynchronously: art clears the flipped flag, a glyph sets it
func (b *Base) loadInto(ctx context.Context, card *surface.Node, opt core.Option) {
	b.Assets.LoadAsync(ctx, opt,
		func(img *asset.Image) {
			card.SetContent(surface.Content{Glyph: string(opt), Image: img})
			card.SetFlag(surface.FlagFlipped, false)
		},
		func(o core.Option) {
			card.SetContent(surface.Glyph(string(o)))
			card.SetFlag(surface.FlagFlipped, true)
		})
}

// displayCard writes the resolved option into the mount, replacing whatever the effect left there
// This is the one step that awaits resolution, so Execute returns with the final face in place
func (b *Base) displayCard(ctx context.Context, opt core.Option) {
	res := b.Assets.Resolve(ctx, opt)
	b.Mount.Clear()
	b.Mount.SetOption(opt)
	b.Mount.SetContent(surface.FromResult(res))
	b.Mount.SetFlag(surface.FlagFlipped, !res.Resolved())
	b.emit(PhaseDisplay, opt, 0)
}


// measureClass sizes a class as rendered under parent using a throwaway node
func (b *Base) measureClass(parent *surface.Node, class string) surface.Box {
	probe := b.Surface.NewNode(class)
	probe.SetHidden(true)
	parent.Append(probe)
	defer probe.Remove()
	return b.Surface.Measure(probe)
}
