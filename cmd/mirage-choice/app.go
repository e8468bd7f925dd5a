package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/render"
	"github.com/lixenwraith/mirage-choice/selector"
	"github.com/lixenwraith/mirage-choice/surface"
)

// muter is the slice of the sound manager the key handler needs
type muter interface {
	ToggleMute() bool
}

// app owns the terminal loop: input polling, key dispatch and frame pacing
type app struct {
	screen   tcell.Screen
	surf     *surface.Surface
	sel      *selector.Selector
	renderer *render.Renderer
	sound    muter
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	draws  sync.WaitGroup

	lastVersion uint64
	forceRedraw bool
}

func newApp(ctx context.Context, screen tcell.Screen, surf *surface.Surface, sel *selector.Selector,
	renderer *render.Renderer, sound muter, log *slog.Logger) *app {
	ctx, cancel := context.WithCancel(ctx)
	return &app{
		screen:      screen,
		surf:        surf,
		sel:         sel,
		renderer:    renderer,
		sound:       sound,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		forceRedraw: true,
	}
}

// run polls input on its own goroutine and renders on a 60Hz ticker until quit
func (a *app) run() {
	defer a.shutdown()

	events := make(chan tcell.Event, 256)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			// nil after Fini
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.ctx.Done():
				return
			}
		}
	})

	ticker := time.NewTicker(engine.FrameInterval)
	defer ticker.Stop()

	a.frame()
	for {
		select {
		case <-a.ctx.Done():
			return
		case ev := <-events:
			if !a.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			a.frame()
		}
	}
}

// frame renders only when the surface changed since the last frame
func (a *app) frame() {
	v := a.surf.Version()
	if v == a.lastVersion && !a.forceRedraw {
		return
	}
	a.lastVersion = v
	a.forceRedraw = false
	a.renderer.Render(a.screen, a.surf.Snapshot())
}

// shutdown cancels any in-flight effect and waits for it to unwind
func (a *app) shutdown() {
	a.cancel()
	a.draws.Wait()
}

// handleEvent returns false when the user asked to quit
func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		a.surf.SetViewport(render.Viewport(cols, rows))
		a.screen.Sync()
		a.forceRedraw = true
	case *tcell.EventKey:
		return a.dispatch(ev.Key(), ev.Rune())
	}
	return true
}

// dispatch maps one key press onto a selector operation
func (a *app) dispatch(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		a.openDoor()
	case tcell.KeyLeft:
		a.cycle(-1)
	case tcell.KeyRight:
		a.cycle(1)
	case tcell.KeyTab:
		a.sel.SetHistoryMode(!a.sel.HistoryMode())
	case tcell.KeyRune:
		return a.dispatchRune(unicode.ToLower(r))
	}
	return true
}

func (a *app) dispatchRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		a.openDoor()
	case ',':
		a.cycle(-1)
	case '.':
		a.cycle(1)
	case 'r':
		if err := a.sel.Reset(); err != nil {
			a.log.Debug("reset rejected", "err", err)
		}
	case 'm':
		muted := a.sound.ToggleMute()
		a.log.Info("audio toggled", "muted", muted)
	default:
		opt, err := core.ParseOption(string(r))
		if err != nil {
			return true
		}
		drawn, err := a.sel.Toggle(opt)
		if err != nil {
			a.log.Debug("toggle rejected", "option", opt, "err", err)
			return true
		}
		a.log.Debug("toggled", "option", opt, "drawn", drawn)
	}
	return true
}

func (a *app) cycle(delta int) {
	if a.sel.Busy() {
		return
	}
	id := a.sel.CycleEffect(delta)
	a.log.Debug("effect selected", "effect", id)
}

// openDoor plays the active effect in the background; presses while busy are dropped
func (a *app) openDoor() {
	if a.sel.Busy() {
		return
	}
	id := a.sel.ActiveEffect().ID
	a.draws.Add(1)
	core.Go(func() {
		defer a.draws.Done()
		opt, err := a.sel.DrawWithEffect(a.ctx)
		switch {
		case err == nil:
			a.log.Info("drawn", "option", opt, "effect", id)
		case errors.Is(err, context.Canceled), errors.Is(err, core.ErrBusy):
			a.log.Debug("draw abandoned", "err", err)
		default:
			a.log.Warn("draw failed", "err", err)
		}
	})
}
