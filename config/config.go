// Package config loads the YAML settings file and fills in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/effect"
)

// DefaultPath is looked up when no -config flag is given
const DefaultPath = "mirage-choice.yaml"

// Config is the merged application configuration
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Effects []string      `yaml:"effects"`
	Audio   AudioConfig   `yaml:"audio"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// AssetsConfig locates card art: <root>/<dir>/<option>.<ext>
type AssetsConfig struct {
	Root       string   `yaml:"root"`
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

// AudioConfig uses pointers so an explicit false or 0 survives the merge
type AudioConfig struct {
	Enabled *bool    `yaml:"enabled"`
	Volume  *float64 `yaml:"volume"`
}

type DisplayConfig struct {
	Color       string `yaml:"color"` // auto | 256 | truecolor
	HistoryMode bool   `yaml:"history_mode"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
	File  string `yaml:"file"`
}

const (
	defaultVolume  = 0.5
	defaultLogFile = "logs/mirage-choice.log"
)

// Default returns the built-in configuration
func Default() Config {
	enabled := true
	volume := defaultVolume
	return Config{
		Assets: AssetsConfig{
			Root:       ".",
			Dir:        asset.DefaultDir,
			Extensions: slices.Clone(asset.DefaultExtensions),
		},
		Effects: effect.Builtin().IDs(),
		Audio:   AudioConfig{Enabled: &enabled, Volume: &volume},
		Display: DisplayConfig{Color: "auto"},
		Log:     LogConfig{Level: "info", File: defaultLogFile},
	}
}

// Load reads path and merges it over the defaults; a missing file yields the defaults
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML and merges it over the defaults
func Parse(b []byte) (Config, error) {
	var raw Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return merge(Default(), raw), nil
}

// merge overlays b onto a where b is set; lists replace rather than append
func merge(a, b Config) Config {
	out := a

	if b.Assets.Root != "" {
		out.Assets.Root = b.Assets.Root
	}
	if b.Assets.Dir != "" {
		out.Assets.Dir = b.Assets.Dir
	}
	if len(b.Assets.Extensions) > 0 {
		out.Assets.Extensions = normalizeExtensions(b.Assets.Extensions)
	}
	if b.Effects != nil {
		out.Effects = slices.Clone(b.Effects)
	}

	if b.Audio.Enabled != nil {
		v := *b.Audio.Enabled
		out.Audio.Enabled = &v
	}
	if b.Audio.Volume != nil {
		v := *b.Audio.Volume
		out.Audio.Volume = &v
	}

	if b.Display.Color != "" {
		out.Display.Color = b.Display.Color
	}
	if b.Display.HistoryMode {
		out.Display.HistoryMode = true
	}

	if b.Log.Level != "" {
		out.Log.Level = b.Log.Level
	}
	if b.Log.File != "" {
		out.Log.File = b.Log.File
	}
	return out
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

var colorModes = []string{"auto", "256", "truecolor", "24bit"}

// Validate checks the effect list against known ids and range-checks the rest
func (c Config) Validate(known []string) error {
	var errs []error

	if len(c.Effects) == 0 {
		errs = append(errs, errors.New("effects: list is empty"))
	}
	seen := make(map[string]bool, len(c.Effects))
	for _, id := range c.Effects {
		if !slices.Contains(known, id) {
			errs = append(errs, fmt.Errorf("effects: %w: %q", core.ErrUnknownEffect, id))
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("effects: duplicate %q", id))
		}
		seen[id] = true
	}

	if len(c.Assets.Extensions) == 0 {
		errs = append(errs, errors.New("assets: no extensions"))
	}
	if v := c.Volume(); v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("audio: volume %.2f outside [0, 1]", v))
	}
	if !slices.Contains(colorModes, strings.ToLower(c.Display.Color)) {
		errs = append(errs, fmt.Errorf("display: unknown color mode %q", c.Display.Color))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// AudioEnabled reports the merged audio switch
func (c Config) AudioEnabled() bool {
	return c.Audio.Enabled == nil || *c.Audio.Enabled
}

// Volume is the merged master volume
func (c Config) Volume() float64 {
	if c.Audio.Volume == nil {
		return defaultVolume
	}
	return *c.Audio.Volume
}

// SlogLevel parses the log level name
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: %w", err)
	}
	return lvl, nil
}
