package effect

import (
	"context"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/surface"
)

// Classic is the plain flip reveal
type Classic struct {
	Base
}

func NewClassic(env Env) *Classic {
	return &Classic{Base: NewBase(IDClassic, env)}
}

func (e *Classic) Execute(ctx context.Context, opt core.Option) error {
	e.emit(PhaseStart, opt, 0)
	err := e.withOverlay(func(ov *surface.Node) error {
		return e.flipReveal(ctx, ov, opt, standardReveal)
	})
	if err != nil {
		return err
	}
	e.displayCard(ctx, opt)
	return nil
}
