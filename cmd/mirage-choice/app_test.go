package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/effect"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/render"
	"github.com/lixenwraith/mirage-choice/selector"
	"github.com/lixenwraith/mirage-choice/surface"
)

type fakeMuter struct{ muted bool }

func (m *fakeMuter) ToggleMute() bool {
	m.muted = !m.muted
	return m.muted
}

func newTestApp(t *testing.T) (*app, *fakeMuter) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	surf := surface.New(render.Viewport(80, 24), nil)
	sel, err := selector.New(selector.Config{
		Effects: []string{effect.IDClassic, effect.IDShuffle},
		Surface: surf,
		Assets:  asset.NewResolver(fstest.MapFS{}, "", nil, nil),
		Clock:   engine.NewVirtualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Rand:    rand.New(rand.NewPCG(7, 7)),
	})
	require.NoError(t, err)

	m := &fakeMuter{}
	a := newApp(context.Background(), screen, surf, sel, render.NewRenderer(render.ColorModeTrueColor), m,
		slog.New(slog.DiscardHandler))
	t.Cleanup(a.shutdown)
	return a, m
}

func TestDispatch_ToggleOption(t *testing.T) {
	a, _ := newTestApp(t)

	assert.True(t, a.dispatch(tcell.KeyRune, 'c'))
	assert.Equal(t, []core.Option{core.OptionC}, a.sel.Drawn())

	assert.True(t, a.dispatch(tcell.KeyRune, 'C'))
	assert.Empty(t, a.sel.Drawn())

	// Letters outside the option set are ignored
	assert.True(t, a.dispatch(tcell.KeyRune, 'z'))
	assert.Empty(t, a.sel.Drawn())
}

func TestDispatch_Quit(t *testing.T) {
	a, _ := newTestApp(t)
	assert.False(t, a.dispatch(tcell.KeyRune, 'q'))
	assert.False(t, a.dispatch(tcell.KeyEscape, 0))
	assert.False(t, a.dispatch(tcell.KeyCtrlC, 0))
}

func TestDispatch_CarouselAndHistory(t *testing.T) {
	a, _ := newTestApp(t)
	require.Equal(t, effect.IDClassic, a.sel.ActiveEffect().ID)

	a.dispatch(tcell.KeyRight, 0)
	assert.Equal(t, effect.IDShuffle, a.sel.ActiveEffect().ID)
	a.dispatch(tcell.KeyRune, '.')
	assert.Equal(t, effect.IDClassic, a.sel.ActiveEffect().ID)
	a.dispatch(tcell.KeyRune, ',')
	assert.Equal(t, effect.IDShuffle, a.sel.ActiveEffect().ID)

	a.dispatch(tcell.KeyTab, 0)
	assert.True(t, a.sel.HistoryMode())
	a.dispatch(tcell.KeyTab, 0)
	assert.False(t, a.sel.HistoryMode())
}

func TestDispatch_ResetAndMute(t *testing.T) {
	a, m := newTestApp(t)
	a.dispatch(tcell.KeyRune, 'a')
	a.dispatch(tcell.KeyRune, 'b')
	require.Len(t, a.sel.Drawn(), 2)

	a.dispatch(tcell.KeyRune, 'r')
	assert.Empty(t, a.sel.Drawn())

	a.dispatch(tcell.KeyRune, 'm')
	assert.True(t, m.muted)
	a.dispatch(tcell.KeyRune, 'M')
	assert.False(t, m.muted)
}

func TestOpenDoor_DrawsInBackground(t *testing.T) {
	a, _ := newTestApp(t)

	assert.True(t, a.dispatch(tcell.KeyEnter, 0))
	a.draws.Wait()
	require.Len(t, a.sel.Drawn(), 1)
	assert.False(t, a.sel.Busy())

	a.dispatch(tcell.KeyRune, ' ')
	a.draws.Wait()
	assert.Len(t, a.sel.Drawn(), 2)
}

func TestFrame_RendersOnChange(t *testing.T) {
	a, _ := newTestApp(t)

	a.frame()
	first := a.lastVersion
	assert.False(t, a.forceRedraw)
	primary, _, _, _ := a.screen.GetContent(0, 23)
	assert.NotEqual(t, rune(0), primary)

	a.frame()
	assert.Equal(t, first, a.lastVersion)

	a.dispatch(tcell.KeyRune, 'd')
	a.frame()
	assert.Greater(t, a.lastVersion, first)
}

func TestHandleEvent_Resize(t *testing.T) {
	a, _ := newTestApp(t)
	a.frame()

	assert.True(t, a.handleEvent(tcell.NewEventResize(100, 30)))
	assert.True(t, a.forceRedraw)
	assert.Equal(t, render.Viewport(100, 30), a.surf.Viewport())
}
