// Package effect runs draw animations as linear scripts of timed phases
// against a surface. Each effect reveals one option and writes it into its
// persistent mount before Execute returns.
package effect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/surface"
)

// ErrNotImplemented is returned when the abstract base is executed directly
var ErrNotImplemented = errors.New("execute not implemented")

// Effect reveals an option through its own phase script
// Execute returns after the option is permanently shown in the mount; the only
// error a concrete effect returns is the context's, on shutdown
type Effect interface {
	Execute(ctx context.Context, opt core.Option) error
}

// Loader is the image-or-fallback contract effects resolve card art through
type Loader interface {
	Resolve(ctx context.Context, opt core.Option) asset.Result
	LoadAsync(ctx context.Context, opt core.Option, onLoaded func(*asset.Image), onFallback func(core.Option))
}

// RandomSource is a uniform picker; *rand.Rand from math/rand/v2 satisfies it
type RandomSource interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from the goroutine-safe global source
func DefaultRand() RandomSource { return globalRand{} }

// Cue is an audio accent an effect may trigger
type Cue int

const (
	CueTick Cue = iota
	CueSpin
	CueSparkle
	CueChomp
	CueReveal
)

// CuePlayer plays cues without blocking
type CuePlayer interface {
	Play(c Cue)
}

type nopCues struct{}

func (nopCues) Play(Cue) {}

// Phase names reported to observers
const (
	PhaseStart          = "start"
	PhaseChoreography   = "choreography"
	PhaseReveal         = "reveal"
	PhaseDisplay        = "display"
	PhaseIntroduction   = "introduction"
	PhaseElimination    = "elimination"
	PhaseEliminated     = "eliminated"
	PhaseFinalSelection = "final-selection"
	PhaseCentered       = "centered"
)

// PhaseEvent describes one phase transition of a running effect
type PhaseEvent struct {
	Effect string
	Phase  string
	Option core.Option
	Round  int
}

// Observer receives phase events synchronously on the script goroutine
type Observer func(PhaseEvent)

// Env is everything an effect needs from its host
type Env struct {
	Surface  *surface.Surface
	Mount    *surface.Node
	Assets   Loader
	Clock    engine.Scheduler
	Rand     RandomSource
	Options  []core.Option
	Cues     CuePlayer
	Observer Observer
	Log      *slog.Logger
}

// Base is the abstract effect: shared helpers and a failing Execute
// Concrete effects embed it and provide their own Execute
type Base struct {
	Env
	id string
}

// NewBase fills unset collaborators with quiet defaults
func NewBase(id string, env Env) Base {
	if env.Clock == nil {
		env.Clock = engine.NewRealScheduler()
	}
	if env.Rand == nil {
		env.Rand = DefaultRand()
	}
	if env.Cues == nil {
		env.Cues = nopCues{}
	}
	if env.Log == nil {
		env.Log = slog.New(slog.DiscardHandler)
	}
	if len(env.Options) == 0 {
		env.Options = core.AllOptions()
	}
	return Base{Env: env, id: id}
}

// ID returns the registry id of the effect
func (b *Base) ID() string { return b.id }

// Execute on the abstract base is a wiring error
func (b *Base) Execute(ctx context.Context, opt core.Option) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, b.id)
}

func (b *Base) dwell(ctx context.Context, ms int) error {
	return b.Clock.Dwell(ctx, msec(ms))
}

func (b *Base) emit(phase string, opt core.Option, round int) {
	b.Log.Debug("effect phase", "effect", b.id, "phase", phase, "option", opt, "round", round)
	if b.Observer != nil {
		b.Observer(PhaseEvent{Effect: b.id, Phase: phase, Option: opt, Round: round})
	}
}

// pick returns a uniform random element
func (b *Base) pick(opts []core.Option) core.Option {
	return opts[b.Rand.IntN(len(opts))]
}

// withOverlay opens a full-screen overlay for fn and always closes it
func (b *Base) withOverlay(fn func(ov *surface.Node) error) error {
	ov := b.Surface.OpenOverlay()
	defer b.Surface.CloseOverlay(ov)
	return fn(ov)
}
