package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/mirage-choice/effect"
)

// Cue envelope timings
const (
	tickDuration = 30 * time.Millisecond
	tickAttack   = 2 * time.Millisecond
	tickRelease  = 20 * time.Millisecond

	spinDuration = 250 * time.Millisecond
	spinAttack   = 60 * time.Millisecond
	spinRelease  = 150 * time.Millisecond

	sparkleDuration      = 300 * time.Millisecond
	sparkleAttack        = 5 * time.Millisecond
	sparkleFundRelease   = 250 * time.Millisecond
	sparkleOvertoneDecay = 120 * time.Millisecond

	chompDuration = 350 * time.Millisecond

	revealAttack       = 5 * time.Millisecond
	revealNote1        = 90 * time.Millisecond
	revealNote1Release = 40 * time.Millisecond
	revealNote2        = 220 * time.Millisecond
	revealNote2Release = 160 * time.Millisecond
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	length   int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    lcg
}

// NewOscillator creates an oscillator that stops after duration
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:   freq,
		length: rate.N(duration),
		wave:   wave,
		rate:   rate,
		noise:  lcg(freq*1000) + 1,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.next()
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// lcg is a tiny deterministic noise source, output in [-1, 1]
type lcg int64

func (g *lcg) next() float64 {
	*g = (*g*1103515245 + 12345) & 0x7fffffff
	return float64(*g)/float64(0x7fffffff)*2 - 1
}

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope shapes s with attack and release ramps over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.total - e.release
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= releaseStart {
			vol = math.Min(vol, float64(e.total-e.position)/float64(e.release))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a base-2 volume; zero or less is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// ChompGenerator is a decaying crunch of noise over a low rumble
type ChompGenerator struct {
	sr     beep.SampleRate
	pos    int
	length int
	noise  lcg
}

// NewChompGenerator creates a chomp that lasts duration
func NewChompGenerator(sr beep.SampleRate, duration time.Duration) *ChompGenerator {
	return &ChompGenerator{sr: sr, length: sr.N(duration), noise: 7}
}

func (g *ChompGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.length {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)

		// Two bites: amplitude gates at 0 and 45% of the length
		env := math.Exp(-t * 14)
		if second := float64(g.length) * 0.45; float64(g.pos) >= second {
			env = 0.8 * math.Exp(-(t-second/float64(g.sr))*14)
		}

		rumble := 0.4 * math.Sin(2*math.Pi*70*t)
		sample := env * (0.35*g.noise.next() + rumble)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChompGenerator) Err() error { return nil }

// CreateTickSound is a short click for each shuffle or flip step
func CreateTickSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.rate())

	osc := NewOscillator(1200, tickDuration, WaveSquare, rate)
	shaped := NewEnvelope(osc, tickDuration, tickAttack, tickRelease, rate)
	return newVolume(shaped, cfg.gain(effect.CueTick))
}

// CreateSpinSound is a noise whoosh for reels and slides
func CreateSpinSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.rate())

	noise := NewOscillator(0, spinDuration, WaveNoise, rate)
	shaped := NewEnvelope(noise, spinDuration, spinAttack, spinRelease, rate)
	return newVolume(shaped, cfg.gain(effect.CueSpin))
}

// CreateSparkleSound is a bell with an octave overtone for stars
func CreateSparkleSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.rate())

	fund := NewOscillator(1318.51, sparkleDuration, WaveSine, rate)
	fundShaped := NewEnvelope(fund, sparkleDuration, sparkleAttack, sparkleFundRelease, rate)

	over := NewOscillator(2637.02, sparkleDuration, WaveSine, rate)
	overShaped := NewEnvelope(over, sparkleDuration, sparkleAttack, sparkleOvertoneDecay, rate)

	mixed := beep.Mix(
		newVolume(fundShaped, 0.7),
		newVolume(overShaped, 0.3),
	)
	return newVolume(mixed, cfg.gain(effect.CueSparkle))
}

// CreateChompSound is the lion's bite
func CreateChompSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.rate())
	return newVolume(NewChompGenerator(rate, chompDuration), cfg.gain(effect.CueChomp))
}

// CreateRevealSound is a rising two-note chime when the card turns
func CreateRevealSound(cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.rate())

	// B5 then E6
	n1 := NewOscillator(987.77, revealNote1, WaveSquare, rate)
	n1Shaped := NewEnvelope(n1, revealNote1, revealAttack, revealNote1Release, rate)

	n2 := NewOscillator(1318.51, revealNote2, WaveSquare, rate)
	n2Shaped := NewEnvelope(n2, revealNote2, revealAttack, revealNote2Release, rate)

	return newVolume(beep.Seq(n1Shaped, n2Shaped), cfg.gain(effect.CueReveal))
}

// CueSound returns the streamer for a cue, nil when the cue is unknown
func CueSound(cue effect.Cue, cfg *Config) beep.Streamer {
	switch cue {
	case effect.CueTick:
		return CreateTickSound(cfg)
	case effect.CueSpin:
		return CreateSpinSound(cfg)
	case effect.CueSparkle:
		return CreateSparkleSound(cfg)
	case effect.CueChomp:
		return CreateChompSound(cfg)
	case effect.CueReveal:
		return CreateRevealSound(cfg)
	default:
		return nil
	}
}
