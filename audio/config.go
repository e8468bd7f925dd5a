package audio

import "github.com/lixenwraith/mirage-choice/effect"

const (
	defaultSampleRate   = 44100
	defaultMasterVolume = 0.5
)

// Config controls the mixer and per-cue gain
type Config struct {
	Enabled      bool
	MasterVolume float64
	SampleRate   int
	CueVolumes   map[effect.Cue]float64
}

// DefaultConfig returns audio enabled at half volume
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: defaultMasterVolume,
		SampleRate:   defaultSampleRate,
		CueVolumes: map[effect.Cue]float64{
			effect.CueTick:    0.4,
			effect.CueSpin:    0.6,
			effect.CueSparkle: 0.8,
			effect.CueChomp:   0.9,
			effect.CueReveal:  0.7,
		},
	}
}

// gain is the effective linear volume of a cue, clamped to [0, 1]
func (c *Config) gain(cue effect.Cue) float64 {
	v, ok := c.CueVolumes[cue]
	if !ok {
		v = 1
	}
	g := v * c.MasterVolume
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}

func (c *Config) rate() int {
	if c.SampleRate <= 0 {
		return defaultSampleRate
	}
	return c.SampleRate
}
