package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/mirage-choice/effect"
)

const speakerBuffer = 100 * time.Millisecond

// maxVoices bounds concurrent cues in the mixer; extra cues are dropped
const maxVoices = 8

// SoundManager plays effect cues through a single speaker mixer
// It satisfies effect.CuePlayer and degrades to silence when no device is available
type SoundManager struct {
	mu          sync.Mutex
	cfg         *Config
	mixer       *beep.Mixer
	log         *slog.Logger
	initialized bool
	muted       bool
	dropped     int
}

// NewSoundManager creates a sound manager; a nil cfg uses DefaultConfig
func NewSoundManager(cfg *Config, log *slog.Logger) *SoundManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SoundManager{
		cfg:   cfg,
		mixer: &beep.Mixer{},
		log:   log,
		muted: !cfg.Enabled,
	}
}

// Initialize opens the speaker; disabled config skips the device entirely
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.rate())
	if err := speaker.Init(rate, rate.N(speakerBuffer)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	sm.log.Debug("audio initialized", "rate", int(rate))
	return nil
}

// Cleanup drops queued cues and detaches from the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()

	// beep has no speaker close; an empty mixer leaves nothing audible
	sm.initialized = false
}

// Play queues cue on the mixer and returns immediately
func (sm *SoundManager) Play(cue effect.Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return
	}

	s := CueSound(cue, sm.cfg)
	if s == nil {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	if sm.mixer.Len() >= maxVoices {
		sm.dropped++
		return
	}
	sm.mixer.Add(s)
}

// SetMuted silences future cues without closing the device
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	sm.muted = muted
	sm.mu.Unlock()
}

// ToggleMute flips the mute flag and returns the new state
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = !sm.muted
	return sm.muted
}

// Muted reports whether cues are silenced
func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Dropped counts cues rejected because the mixer was full
func (sm *SoundManager) Dropped() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.dropped
}

var _ effect.CuePlayer = (*SoundManager)(nil)
