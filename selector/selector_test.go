package selector

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/effect"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/status"
	"github.com/lixenwraith/mirage-choice/surface"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// scriptedRand answers the first IntN calls from a script, then falls back to PCG
type scriptedRand struct {
	*rand.Rand
	script []int
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.script) > 0 {
		v := r.script[0]
		r.script = r.script[1:]
		return v
	}
	return r.Rand.IntN(n)
}

// gateScheduler parks the first dwell until released
type gateScheduler struct {
	*engine.VirtualScheduler
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gateScheduler) Dwell(ctx context.Context, d time.Duration) error {
	g.once.Do(func() {
		close(g.started)
		<-g.release
	})
	return g.VirtualScheduler.Dwell(ctx, d)
}

type fixture struct {
	sel   *Selector
	surf  *surface.Surface
	clock *engine.VirtualScheduler
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		surf:  surface.New(surface.Size{W: 1280, H: 720}, nil),
		clock: engine.NewVirtualScheduler(epoch),
	}
	fsys := fstest.MapFS{"images/cards/C.png": &fstest.MapFile{Data: pngBytes(t)}}
	cfg := Config{
		Surface: f.surf,
		Assets:  asset.NewResolver(fsys, "", nil, nil),
		Clock:   f.clock,
		Rand:    rand.New(rand.NewPCG(1, 2)),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	sel, err := New(cfg)
	require.NoError(t, err)
	f.sel = sel
	return f
}

func opts(s string) []core.Option {
	var out []core.Option
	for _, r := range s {
		out = append(out, core.Option(string(r)))
	}
	return out
}

func TestNew_BuildsPage(t *testing.T) {
	f := newFixture(t, nil)
	frame := f.surf.Snapshot()
	require.Len(t, frame.Sections, 7)
	assert.Equal(t, effect.IDClassic, frame.Sections[0].ID)
	assert.Equal(t, "通常", frame.Sections[0].Title)
	assert.Len(t, frame.Controls, core.OptionCount)
	assert.Len(t, frame.History, HistoryCap)
	assert.Equal(t, effect.IDClassic, f.sel.ActiveEffect().ID)
	assert.Equal(t, core.AllOptions(), f.sel.Available())
	assert.Contains(t, frame.Status, "0/8")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{
		Surface: surface.New(surface.Size{W: 100, H: 100}, nil),
		Assets:  asset.NewResolver(fstest.MapFS{}, "", nil, nil),
		Effects: []string{effect.IDClassic, "fireworks"},
	})
	require.ErrorIs(t, err, core.ErrUnknownEffect)
}

func TestNew_EffectOrderFromConfig(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Effects = []string{effect.IDLion, effect.IDSlot} })
	defs := f.sel.Effects()
	require.Len(t, defs, 2)
	assert.Equal(t, effect.IDLion, defs[0].ID)
	assert.Equal(t, effect.IDSlot, defs[1].ID)
	assert.Equal(t, effect.IDLion, f.sel.ActiveEffect().ID)
}

func TestScenario_DrawSingle(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.sel.Draw(core.OptionC))

	assert.Equal(t, opts("C"), f.sel.Drawn())
	assert.Equal(t, opts("C"), f.sel.History())

	c := f.surf.Control(core.OptionC)
	assert.True(t, c.HasFlag(surface.FlagSelected))
	assert.NotNil(t, c.Content().Image, "C has art")
	assert.False(t, c.HasFlag(surface.FlagFlipped))

	for _, o := range core.Without(core.AllOptions(), core.OptionC) {
		ctrl := f.surf.Control(o)
		assert.False(t, ctrl.HasFlag(surface.FlagSelected), "control %s", o)
		assert.Equal(t, string(o), ctrl.Content().Glyph)
	}

	// direct draws leave every mount face down
	for _, m := range f.surf.Mounts() {
		assert.Equal(t, surface.PlaceholderGlyph, m.Content().Glyph)
	}
	slots := f.surf.HistorySlots()
	assert.Equal(t, core.OptionC, slots[0].Option())
	assert.Equal(t, surface.PlaceholderGlyph, slots[1].Content().Glyph)
}

func TestDraw_FallbackMini(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.sel.Draw(core.OptionD))
	c := f.surf.Control(core.OptionD)
	assert.Equal(t, "D", c.Content().Glyph)
	assert.Nil(t, c.Content().Image)
	assert.True(t, c.HasFlag(surface.FlagFlipped))
	assert.True(t, c.HasFlag(surface.FlagSelected))
}

func TestScenario_DrawAllThenExhausted(t *testing.T) {
	f := newFixture(t, nil)
	for _, o := range core.AllOptions() {
		require.NoError(t, f.sel.Draw(o))
	}
	assert.Equal(t, core.AllOptions(), f.sel.History())
	assert.Empty(t, f.sel.Available())

	opt, err := f.sel.DrawWithEffect(context.Background())
	require.ErrorIs(t, err, core.ErrExhausted)
	assert.Empty(t, opt)
	assert.Equal(t, core.AllOptions(), f.sel.History())
	assert.False(t, f.sel.Busy())
	assert.Equal(t, time.Duration(0), f.clock.Now().Sub(epoch), "no effect ran")
}

func TestScenario_UndoMiddle(t *testing.T) {
	f := newFixture(t, nil)
	for _, o := range opts("FBD") {
		require.NoError(t, f.sel.Draw(o))
	}
	require.NoError(t, f.sel.UndoDraw(core.OptionD))

	assert.Equal(t, opts("BF"), f.sel.Drawn())
	assert.Equal(t, opts("FB"), f.sel.History(), "relative order kept")

	slots := f.surf.HistorySlots()
	assert.Equal(t, core.OptionF, slots[0].Option())
	assert.Equal(t, core.OptionB, slots[1].Option())
	assert.Equal(t, surface.PlaceholderGlyph, slots[2].Content().Glyph)
	assert.False(t, slots[2].HasFlag(surface.FlagSelected))

	d := f.surf.Control(core.OptionD)
	assert.False(t, d.HasFlag(surface.FlagSelected))
	assert.Equal(t, "D", d.Content().Glyph)
}

func TestScenario_UndoPreservesOrder(t *testing.T) {
	f := newFixture(t, nil)
	for _, o := range opts("BDF") {
		require.NoError(t, f.sel.Draw(o))
	}
	require.NoError(t, f.sel.UndoDraw(core.OptionD))
	assert.Equal(t, opts("BF"), f.sel.History())
}

func TestDraw_Errors(t *testing.T) {
	f := newFixture(t, nil)
	require.ErrorIs(t, f.sel.Draw("Z"), core.ErrInvalidOption)
	require.ErrorIs(t, f.sel.UndoDraw(""), core.ErrInvalidOption)

	require.NoError(t, f.sel.Draw(core.OptionA))
	require.ErrorIs(t, f.sel.Draw(core.OptionA), core.ErrAlreadyDrawn)
	require.ErrorIs(t, f.sel.UndoDraw(core.OptionB), core.ErrNotDrawn)

	// rejected calls leave state untouched
	assert.Equal(t, opts("A"), f.sel.History())
	assert.Equal(t, opts("A"), f.sel.Drawn())
}

func TestInvariants_RandomOps(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		f := newFixture(t, nil)
		r := rand.New(rand.NewPCG(seed, 0))
		var order []core.Option // insertion log of still-drawn options

		for range 200 {
			o := core.AllOptions()[r.IntN(core.OptionCount)]
			if r.IntN(2) == 0 {
				if err := f.sel.Draw(o); err == nil {
					order = append(order, o)
				} else {
					require.ErrorIs(t, err, core.ErrAlreadyDrawn)
				}
			} else {
				if err := f.sel.UndoDraw(o); err == nil {
					order = core.Without(order, o)
				} else {
					require.ErrorIs(t, err, core.ErrNotDrawn)
				}
			}

			drawn := f.sel.Drawn()
			history := f.sel.History()
			require.LessOrEqual(t, len(drawn), core.OptionCount)
			require.ElementsMatch(t, drawn, history, "seed %d", seed)
			require.Len(t, history, len(order), "seed %d", seed)
			for i := range order {
				require.Equal(t, order[i], history[i], "seed %d position %d", seed, i)
			}
			seen := map[core.Option]bool{}
			for _, d := range drawn {
				require.False(t, seen[d], "duplicate %s", d)
				seen[d] = true
			}
		}
	}
}

func TestReset_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	for _, o := range opts("ACEG") {
		require.NoError(t, f.sel.Draw(o))
	}
	_, err := f.sel.DrawWithEffect(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.sel.Reset())
	once := f.surf.Snapshot()
	require.NoError(t, f.sel.Reset())
	twice := f.surf.Snapshot()

	assert.Empty(t, f.sel.Drawn())
	assert.Empty(t, f.sel.History())
	assert.Equal(t, core.AllOptions(), f.sel.Available())
	for _, sec := range twice.Sections {
		assert.Equal(t, surface.PlaceholderGlyph, sec.Mount.Content.Glyph)
		assert.False(t, sec.Mount.Has(surface.FlagFlipped))
	}
	for _, c := range twice.Controls {
		assert.Equal(t, string(c.Option), c.Content.Glyph)
		assert.False(t, c.Has(surface.FlagSelected))
	}
	once.Version, twice.Version = 0, 0
	assert.Equal(t, once, twice)
}

func TestRoundTrip_DrawUndo(t *testing.T) {
	f := newFixture(t, nil)
	for _, o := range opts("HAC") {
		require.NoError(t, f.sel.Draw(o))
	}
	drawn, history := f.sel.Drawn(), f.sel.History()

	require.NoError(t, f.sel.Draw(core.OptionE))
	require.NoError(t, f.sel.UndoDraw(core.OptionE))

	assert.Equal(t, drawn, f.sel.Drawn())
	assert.Equal(t, history, f.sel.History())
}

func TestToggle(t *testing.T) {
	f := newFixture(t, nil)
	on, err := f.sel.Toggle(core.OptionB)
	require.NoError(t, err)
	assert.True(t, on)
	on, err = f.sel.Toggle(core.OptionB)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, f.sel.Drawn())
}

func TestDrawWithEffect_Classic(t *testing.T) {
	f := newFixture(t, nil)
	opt, err := f.sel.DrawWithEffect(context.Background())
	require.NoError(t, err)
	require.True(t, opt.Valid())

	assert.Equal(t, []core.Option{opt}, f.sel.Drawn())
	assert.Equal(t, []core.Option{opt}, f.sel.History())
	assert.False(t, f.sel.Busy())
	assert.Equal(t, 1350*time.Millisecond, f.clock.Now().Sub(epoch))

	mount := f.surf.Mount(effect.IDClassic)
	assert.Equal(t, opt, mount.Option())
	ctrl := f.surf.Control(opt)
	assert.True(t, ctrl.HasFlag(surface.FlagSelected))
	assert.False(t, ctrl.HasFlag(surface.FlagDimmed))
	assert.Equal(t, 1.0, ctrl.Opacity())
	assert.Equal(t, 0, f.surf.Overlays())

	// undo puts the mount back face down
	require.NoError(t, f.sel.UndoDraw(opt))
	assert.Equal(t, surface.PlaceholderGlyph, mount.Content().Glyph)
	assert.Empty(t, mount.Option())
}

func TestDrawWithEffect_NeverRepeats(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Effects = []string{effect.IDClassic} })
	var got []core.Option
	for range core.OptionCount {
		opt, err := f.sel.DrawWithEffect(context.Background())
		require.NoError(t, err)
		got = append(got, opt)
	}
	assert.ElementsMatch(t, core.AllOptions(), got)
	assert.Equal(t, got, f.sel.History())

	_, err := f.sel.DrawWithEffect(context.Background())
	require.ErrorIs(t, err, core.ErrExhausted)
}

func TestScenario_LionRevealsG(t *testing.T) {
	var (
		mu       sync.Mutex
		eaten    []core.Option
		centered core.Option
	)
	f := newFixture(t, func(c *Config) {
		c.Rand = &scriptedRand{Rand: rand.New(rand.NewPCG(5, 6)), script: []int{6}}
		c.Observer = func(ev effect.PhaseEvent) {
			mu.Lock()
			defer mu.Unlock()
			switch ev.Phase {
			case effect.PhaseEliminated:
				eaten = append(eaten, ev.Option)
			case effect.PhaseCentered:
				centered = ev.Option
			}
		}
	})
	require.NoError(t, f.sel.SetActiveEffect(effect.IDLion))

	opt, err := f.sel.DrawWithEffect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.OptionG, opt)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, core.OptionG, centered)
	assert.Len(t, eaten, 3)
	assert.NotContains(t, eaten, core.OptionG)
	assert.Equal(t, core.OptionG, f.surf.Mount(effect.IDLion).Option())
	assert.Equal(t, opts("G"), f.sel.History())
}

func TestScenario_ConcurrentDrawRejected(t *testing.T) {
	gate := &gateScheduler{
		VirtualScheduler: engine.NewVirtualScheduler(epoch),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	f := newFixture(t, func(c *Config) { c.Clock = gate })

	type result struct {
		opt core.Option
		err error
	}
	done := make(chan result, 1)
	go func() {
		opt, err := f.sel.DrawWithEffect(context.Background())
		done <- result{opt, err}
	}()
	<-gate.started

	assert.True(t, f.sel.Busy())
	_, err := f.sel.DrawWithEffect(context.Background())
	require.ErrorIs(t, err, core.ErrBusy)
	require.ErrorIs(t, f.sel.Draw(core.OptionA), core.ErrBusy)
	require.ErrorIs(t, f.sel.Reset(), core.ErrBusy)

	// the target is reserved and its control dimmed until the reveal
	reserved := f.sel.Drawn()
	require.Len(t, reserved, 1)
	ctrl := f.surf.Control(reserved[0])
	assert.True(t, ctrl.HasFlag(surface.FlagDimmed))
	assert.Equal(t, 0.3, ctrl.Opacity())
	assert.Empty(t, f.sel.History())

	// switching the carousel stays allowed
	assert.Equal(t, effect.IDShuffle, f.sel.CycleEffect(1))

	close(gate.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, reserved[0], res.opt)
	assert.Equal(t, []core.Option{res.opt}, f.sel.History())
	assert.Equal(t, []core.Option{res.opt}, f.sel.Drawn())
	assert.False(t, f.sel.Busy())
	assert.False(t, ctrl.HasFlag(surface.FlagDimmed))
}

func TestDrawWithEffect_CancelledRecordsNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt, err := f.sel.DrawWithEffect(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, opt)
	assert.Empty(t, f.sel.Drawn())
	assert.Empty(t, f.sel.History())
	assert.False(t, f.sel.Busy())
	assert.Equal(t, 0, f.surf.Overlays())
	for _, c := range f.surf.Controls() {
		assert.False(t, c.HasFlag(surface.FlagDimmed))
		assert.Equal(t, 1.0, c.Opacity())
	}
}

func TestCarousel(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, effect.IDLion, f.sel.CycleEffect(-1))
	assert.Equal(t, effect.IDClassic, f.sel.CycleEffect(1))
	assert.Equal(t, effect.IDSlot, f.sel.CycleEffect(9))

	require.NoError(t, f.sel.SetActiveEffect(effect.IDConstellation))
	assert.Equal(t, effect.IDConstellation, f.sel.ActiveEffect().ID)
	assert.Equal(t, 5, f.surf.Snapshot().Active)
	assert.Contains(t, f.surf.Snapshot().Status, "星座")

	require.ErrorIs(t, f.sel.SetActiveEffect("nope"), core.ErrUnknownEffect)
	assert.Equal(t, effect.IDConstellation, f.sel.ActiveEffect().ID)
}

func TestHistoryMode(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.sel.HistoryMode())
	f.sel.SetHistoryMode(true)
	assert.True(t, f.sel.HistoryMode())
	assert.True(t, f.surf.Snapshot().HistoryMode)
	f.sel.SetHistoryMode(false)
	assert.False(t, f.surf.Snapshot().HistoryMode)
}

func TestStats_CountsOperations(t *testing.T) {
	stats := status.NewRegistry()
	f := newFixture(t, func(c *Config) {
		c.Effects = []string{effect.IDClassic}
		c.Stats = stats
	})

	require.NoError(t, f.sel.Draw(core.OptionA))
	require.NoError(t, f.sel.UndoDraw(core.OptionA))
	_, err := f.sel.DrawWithEffect(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.sel.DrawWithEffect(ctx)
	require.Error(t, err)
	require.NoError(t, f.sel.Reset())

	assert.Equal(t, int64(2), stats.Value(status.KeyDraws))
	assert.Equal(t, int64(1), stats.Value(status.KeyUndos))
	assert.Equal(t, int64(1), stats.Value(status.KeySessionsFinished))
	assert.Equal(t, int64(1), stats.Value(status.KeySessionsAborted))
	assert.Equal(t, int64(1), stats.Value(status.EffectPlays(effect.IDClassic)))
	assert.Equal(t, int64(1), stats.Value(status.KeyResets))
}
