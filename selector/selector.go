// Package selector coordinates draws: which options are taken, the bounded draw
// history, the active effect, and the rule that only one effect plays at a time.
package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/effect"
	"github.com/lixenwraith/mirage-choice/engine"
	"github.com/lixenwraith/mirage-choice/status"
	"github.com/lixenwraith/mirage-choice/surface"
)

// HistoryCap bounds the draw history
const HistoryCap = core.OptionCount

// dimmedOpacity is the control opacity while its option is being revealed
const dimmedOpacity = 0.3

// Config wires a Selector to its collaborators
// Effects lists effect ids in carousel order; empty means every registered effect
type Config struct {
	Registry *effect.Registry
	Effects  []string
	Surface  *surface.Surface
	Assets   effect.Loader
	Clock    engine.Scheduler
	Rand     effect.RandomSource
	Cues     effect.CuePlayer
	Observer effect.Observer
	Stats    *status.Registry
	Log      *slog.Logger
}

type section struct {
	def    effect.Definition
	mount  *surface.Node
	effect effect.Effect
}

// session is the one in-flight effect execution
type session struct {
	id       uuid.UUID
	effectID string
	target   core.Option
}

// Selector owns draw state and serializes effect playback
type Selector struct {
	surf   *surface.Surface
	assets effect.Loader
	rand   effect.RandomSource
	stats  *status.Registry
	log    *slog.Logger

	sections []section

	mu          sync.Mutex
	drawn       map[core.Option]bool
	history     []core.Option
	active      int
	historyMode bool
	session     *session
}

// New builds the page chrome on the surface and one effect per carousel section
func New(cfg Config) (*Selector, error) {
	if cfg.Surface == nil {
		return nil, errors.New("selector: surface is required")
	}
	if cfg.Assets == nil {
		return nil, errors.New("selector: asset loader is required")
	}
	if cfg.Registry == nil {
		cfg.Registry = effect.Builtin()
	}
	if cfg.Rand == nil {
		cfg.Rand = effect.DefaultRand()
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	ids := cfg.Effects
	if len(ids) == 0 {
		ids = cfg.Registry.IDs()
	}
	if len(ids) == 0 {
		return nil, errors.New("selector: no effects registered")
	}

	s := &Selector{
		surf:   cfg.Surface,
		assets: cfg.Assets,
		rand:   cfg.Rand,
		stats:  cfg.Stats,
		log:    cfg.Log,
		drawn:  make(map[core.Option]bool, core.OptionCount),
	}

	for _, id := range ids {
		def, ok := cfg.Registry.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownEffect, id)
		}
		mount := cfg.Surface.AddSection(def.ID, def.Title)
		eff := def.New(effect.Env{
			Surface:  cfg.Surface,
			Mount:    mount,
			Assets:   cfg.Assets,
			Clock:    cfg.Clock,
			Rand:     cfg.Rand,
			Options:  core.AllOptions(),
			Cues:     cfg.Cues,
			Observer: cfg.Observer,
			Log:      cfg.Log.With("effect", def.ID),
		})
		s.sections = append(s.sections, section{def: def, mount: mount, effect: eff})
	}

	for _, o := range core.AllOptions() {
		cfg.Surface.AddControl(o)
	}
	for range HistoryCap {
		cfg.Surface.AddHistorySlot()
	}
	cfg.Surface.SetActiveSection(0)
	s.mu.Lock()
	s.statusLocked()
	s.mu.Unlock()
	return s, nil
}

// Draw takes an option directly, without an effect
// The mounts keep their faces; only the control and the history change
func (s *Selector) Draw(opt core.Option) error {
	if !opt.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidOption, opt)
	}
	res := s.assets.Resolve(context.Background(), opt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.stats.Inc(status.KeyBusyRejected)
		return core.ErrBusy
	}
	if s.drawn[opt] {
		return fmt.Errorf("%w: %s", core.ErrAlreadyDrawn, opt)
	}
	s.stats.Inc(status.KeyDraws)
	s.drawn[opt] = true
	s.pushHistoryLocked(opt)
	s.showMini(s.surf.Control(opt), surface.FromResult(res), res.Resolved())
	s.statusLocked()
	s.log.Info("option drawn", "option", opt, "history", len(s.history))
	return nil
}

// DrawWithEffect picks a random available option and reveals it with the active effect
// Returns ErrBusy while another session runs and ErrExhausted when nothing is left
// A cancelled session records nothing
func (s *Selector) DrawWithEffect(ctx context.Context) (core.Option, error) {
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		s.stats.Inc(status.KeyBusyRejected)
		return "", core.ErrBusy
	}
	avail := s.availableLocked()
	if len(avail) == 0 {
		s.mu.Unlock()
		return "", core.ErrExhausted
	}
	opt := avail[s.rand.IntN(len(avail))]
	sec := s.sections[s.active]
	sess := &session{id: uuid.New(), effectID: sec.def.ID, target: opt}
	s.session = sess
	s.drawn[opt] = true

	ctrl := s.surf.Control(opt)
	ctrl.SetContent(surface.Glyph(string(opt)))
	ctrl.SetFlag(surface.FlagSelected, false)
	ctrl.SetFlag(surface.FlagDimmed, true)
	ctrl.SetOpacity(dimmedOpacity)
	s.statusLocked()
	s.mu.Unlock()

	log := s.log.With("session", sess.id.String(), "effect", sess.effectID)
	log.Info("draw session started", "option", opt)

	err := sec.effect.Execute(ctx, opt)
	res := s.assets.Resolve(context.Background(), opt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err != nil {
		delete(s.drawn, opt)
		s.resetControl(ctrl)
		s.statusLocked()
		s.stats.Inc(status.KeySessionsAborted)
		log.Warn("draw session aborted", "option", opt, "error", err)
		return "", fmt.Errorf("%s session: %w", sess.effectID, err)
	}

	s.pushHistoryLocked(opt)
	s.showMini(ctrl, surface.FromResult(res), res.Resolved())
	s.statusLocked()
	s.stats.Inc(status.KeyDraws)
	s.stats.Inc(status.KeySessionsFinished)
	s.stats.Inc(status.EffectPlays(sess.effectID))
	log.Info("draw session finished", "option", opt, "history", len(s.history))
	return opt, nil
}

// Toggle draws an available option or undoes a drawn one, like clicking its control
// It reports whether the option is drawn afterwards
func (s *Selector) Toggle(opt core.Option) (bool, error) {
	s.mu.Lock()
	drawn := s.drawn[opt]
	s.mu.Unlock()

	if drawn {
		return false, s.UndoDraw(opt)
	}
	if err := s.Draw(opt); err != nil {
		return false, err
	}
	return true, nil
}

// UndoDraw returns a drawn option to the available set
// Later history entries shift down; mounts showing the option go face down
func (s *Selector) UndoDraw(opt core.Option) error {
	if !opt.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidOption, opt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.stats.Inc(status.KeyBusyRejected)
		return core.ErrBusy
	}
	if !s.drawn[opt] {
		return fmt.Errorf("%w: %s", core.ErrNotDrawn, opt)
	}
	delete(s.drawn, opt)
	s.stats.Inc(status.KeyUndos)
	if i := slices.Index(s.history, opt); i >= 0 {
		s.history = slices.Delete(s.history, i, i+1)
	}
	s.renderHistoryLocked()
	s.resetControl(s.surf.Control(opt))
	for _, sec := range s.sections {
		if sec.mount.Option() == opt {
			resetMount(sec.mount)
		}
	}
	s.statusLocked()
	s.log.Info("draw undone", "option", opt, "history", len(s.history))
	return nil
}

// Reset clears every draw and restores all mounts, controls and history slots
// It is refused while a session runs; otherwise it always succeeds
func (s *Selector) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.stats.Inc(status.KeyBusyRejected)
		return core.ErrBusy
	}
	clear(s.drawn)
	s.stats.Inc(status.KeyResets)
	s.history = s.history[:0]
	for _, sec := range s.sections {
		resetMount(sec.mount)
	}
	for _, c := range s.surf.Controls() {
		s.resetControl(c)
	}
	s.renderHistoryLocked()
	s.statusLocked()
	s.log.Info("selection reset")
	return nil
}

// SetActiveEffect selects the effect the next DrawWithEffect plays
func (s *Selector) SetActiveEffect(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sec := range s.sections {
		if sec.def.ID == id {
			s.setActiveLocked(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", core.ErrUnknownEffect, id)
}

// CycleEffect moves the carousel by delta with wrap-around and returns the new active id
func (s *Selector) CycleEffect(delta int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.sections)
	s.setActiveLocked(((s.active+delta)%n + n) % n)
	return s.sections[s.active].def.ID
}

func (s *Selector) setActiveLocked(i int) {
	s.active = i
	s.surf.SetActiveSection(i)
	s.statusLocked()
}

// ActiveEffect returns the definition behind the front carousel section
func (s *Selector) ActiveEffect() effect.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sections[s.active].def
}

// Effects returns the carousel definitions in order
func (s *Selector) Effects() []effect.Definition {
	defs := make([]effect.Definition, len(s.sections))
	for i, sec := range s.sections {
		defs[i] = sec.def
	}
	return defs
}

// SetHistoryMode switches the control row between the option list and the history
func (s *Selector) SetHistoryMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyMode = on
	s.surf.SetHistoryMode(on)
}

func (s *Selector) HistoryMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyMode
}

// Drawn returns the drawn options in option order, including an in-flight target
func (s *Selector) Drawn() []core.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Option
	for _, o := range core.AllOptions() {
		if s.drawn[o] {
			out = append(out, o)
		}
	}
	return out
}

// History returns completed draws oldest first
func (s *Selector) History() []core.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Available returns the options a draw may still pick
func (s *Selector) Available() []core.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked()
}

// Busy reports whether an effect session is in flight
func (s *Selector) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

func (s *Selector) availableLocked() []core.Option {
	var out []core.Option
	for _, o := range core.AllOptions() {
		if !s.drawn[o] {
			out = append(out, o)
		}
	}
	return out
}

func (s *Selector) pushHistoryLocked(opt core.Option) {
	if len(s.history) >= HistoryCap {
		return
	}
	s.history = append(s.history, opt)
	s.renderHistoryLocked()
}

// renderHistoryLocked repaints the history slots from the history, placeholders after it
func (s *Selector) renderHistoryLocked() {
	for i, slot := range s.surf.HistorySlots() {
		if i >= len(s.history) {
			slot.SetOption("")
			slot.SetContent(surface.Placeholder())
			slot.SetFlag(surface.FlagSelected, false)
			slot.SetFlag(surface.FlagFlipped, false)
			continue
		}
		o := s.history[i]
		res := s.assets.Resolve(context.Background(), o)
		slot.SetOption(o)
		s.showMini(slot, surface.FromResult(res), res.Resolved())
	}
}

func (s *Selector) statusLocked() {
	sec := s.sections[s.active]
	s.surf.SetStatus(fmt.Sprintf("%s  %d/%d", sec.def.Title, len(s.drawn), core.OptionCount))
}

// showMini puts the mini representation of a drawn option on a control or history slot
func (s *Selector) showMini(n *surface.Node, face surface.Content, resolved bool) {
	if n == nil {
		return
	}
	n.SetContent(face)
	n.SetFlag(surface.FlagFlipped, !resolved)
	n.SetFlag(surface.FlagSelected, true)
	n.SetFlag(surface.FlagDimmed, false)
	n.SetOpacity(1)
}

func (s *Selector) resetControl(n *surface.Node) {
	if n == nil {
		return
	}
	n.SetContent(surface.Glyph(string(n.Option())))
	n.SetFlag(surface.FlagSelected, false)
	n.SetFlag(surface.FlagFlipped, false)
	n.SetFlag(surface.FlagDimmed, false)
	n.SetOpacity(1)
}

func resetMount(m *surface.Node) {
	m.Clear()
	m.SetOption("")
	m.SetContent(surface.Placeholder())
	m.SetFlag(surface.FlagFlipped, false)
}
