package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/audio"
	"github.com/lixenwraith/mirage-choice/config"
	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/effect"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/render"
	"github.com/lixenwraith/mirage-choice/selector"
	"github.com/lixenwraith/mirage-choice/status"
	"github.com/lixenwraith/mirage-choice/surface"
)

var (
	configPath = flag.String("config", config.DefaultPath, "Path to the YAML settings file")
	colorFlag  = flag.String("color", "", "Color mode: auto, truecolor, 256 (overrides config)")
	muteFlag   = flag.Bool("mute", false, "Start with audio muted")
	debugFlag  = flag.Bool("debug", false, "Write logs to the configured log file")
)

func main() {
	// Panic Recovery: the terminal is restored before the stack is printed
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mirage-choice: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *colorFlag != "" {
		cfg.Display.Color = *colorFlag
	}
	registry := effect.Builtin()
	if err := cfg.Validate(registry.IDs()); err != nil {
		return fmt.Errorf("config %s: %w", *configPath, err)
	}
	colorMode, err := render.ParseColorMode(cfg.Display.Color)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	logFile, log := setupLogging(*debugFlag, cfg.Log.File, level)
	if logFile != nil {
		defer logFile.Close()
	}

	assets := asset.NewResolver(os.DirFS(cfg.Assets.Root), cfg.Assets.Dir, cfg.Assets.Extensions,
		log.With("component", "asset"))

	audioCfg := audio.DefaultConfig()
	audioCfg.Enabled = cfg.AudioEnabled()
	audioCfg.MasterVolume = cfg.Volume()
	sound := audio.NewSoundManager(audioCfg, log.With("component", "audio"))
	if err := sound.Initialize(); err != nil {
		// Non-fatal, draws work without sound
		log.Warn("audio unavailable, continuing without sound", "err", err)
	}
	defer sound.Cleanup()
	if *muteFlag {
		sound.SetMuted(true)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	core.SetCrashReset(screen.Fini)
	defer func() {
		core.SetCrashReset(nil)
		screen.Fini()
	}()

	stats := status.NewRegistry()
	cols, rows := screen.Size()
	surf := surface.New(render.Viewport(cols, rows), nil)
	sel, err := selector.New(selector.Config{
		Registry: registry,
		Effects:  cfg.Effects,
		Surface:  surf,
		Assets:   assets,
		Clock:    engine.NewRealScheduler(),
		Cues:     sound,
		Observer: func(ev effect.PhaseEvent) {
			log.Debug("phase", "effect", ev.Effect, "phase", ev.Phase, "option", ev.Option, "round", ev.Round)
		},
		Stats: stats,
		Log:   log.With("component", "selector"),
	})
	if err != nil {
		return err
	}
	sel.SetHistoryMode(cfg.Display.HistoryMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := render.NewRenderer(colorMode)
	log.Info("started", "effects", cfg.Effects, "color", renderer.Mode().String(), "assets", cfg.Assets.Root)
	newApp(ctx, screen, surf, sel, renderer, sound, log).run()
	log.Info("stopped", "drawn", sel.Drawn(), "audio_dropped", sound.Dropped(), "counters", stats)
	return nil
}
