package effect

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/mirage-choice/core"
)

// Effect ids, also the config and carousel keys
const (
	IDClassic       = "classic"
	IDShuffle       = "shuffle"
	IDSlot          = "slot"
	IDSlide         = "slide"
	IDCardFlip      = "cardflip"
	IDConstellation = "constellation"
	IDLion          = "lion"
)

// Factory builds an effect bound to its environment
type Factory func(env Env) Effect

// Definition is one registry entry
type Definition struct {
	ID    string
	Title string
	New   Factory
}

// Registry maps effect ids to constructors and keeps registration order
type Registry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]Definition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition; re-registering an id replaces it in place
func (r *Registry) Register(d Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[d.ID]; !ok {
		r.order = append(r.order, d.ID)
	}
	r.defs[d.ID] = d
}

// Lookup retrieves a definition by id
func (r *Registry) Lookup(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns registered ids in registration order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Definitions returns all entries in registration order
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.defs[id])
	}
	return defs
}

// Build constructs the effect registered under id
func (r *Registry) Build(id string, env Env) (Effect, error) {
	d, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownEffect, id)
	}
	return d.New(env), nil
}

// Builtin returns a registry of the seven effects in carousel order
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(Definition{ID: IDClassic, Title: "通常", New: func(env Env) Effect { return NewClassic(env) }})
	r.Register(Definition{ID: IDShuffle, Title: "シャッフル", New: func(env Env) Effect { return NewShuffle(env) }})
	r.Register(Definition{ID: IDSlot, Title: "スロット", New: func(env Env) Effect { return NewSlot(env) }})
	r.Register(Definition{ID: IDSlide, Title: "スライド", New: func(env Env) Effect { return NewSlide(env) }})
	r.Register(Definition{ID: IDCardFlip, Title: "カードフリップ", New: func(env Env) Effect { return NewCardFlip(env) }})
	r.Register(Definition{ID: IDConstellation, Title: "星座", New: func(env Env) Effect { return NewConstellation(env) }})
	r.Register(Definition{ID: IDLion, Title: "ライオン", New: func(env Env) Effect { return NewLion(env) }})
	return r
}
