// Package status keeps process-wide counters for draws and effect sessions
package status

import (
	"log/slog"
	"sync/atomic"
)

// Counter keys written by the selector
const (
	KeyDraws             = "draws"
	KeyUndos             = "undos"
	KeyResets            = "resets"
	KeySessionsFinished  = "sessions.finished"
	KeySessionsAborted   = "sessions.aborted"
	KeyBusyRejected      = "busy.rejected"
	effectPlaysKeyPrefix = "effect."
)

// EffectPlays is the per-effect finished-session counter key
func EffectPlays(id string) string {
	return effectPlaysKeyPrefix + id + ".plays"
}

// Registry holds the counters; a nil *Registry ignores every update
type Registry struct {
	Ints *MetricMap[atomic.Int64]
}

func NewRegistry() *Registry {
	return &Registry{Ints: NewMetricMap[atomic.Int64]()}
}

// Inc bumps the counter at key
func (r *Registry) Inc(key string) {
	if r == nil {
		return
	}
	r.Ints.Get(key).Add(1)
}

// Value reads the counter at key; unknown keys read zero
func (r *Registry) Value(key string) int64 {
	if r == nil {
		return 0
	}
	return r.Ints.Get(key).Load()
}

// Snapshot copies every counter
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if r == nil {
		return out
	}
	r.Ints.Range(func(k string, v *atomic.Int64) {
		out[k] = v.Load()
	})
	return out
}

// LogValue renders the counters as a slog group in key order
func (r *Registry) LogValue() slog.Value {
	if r == nil {
		return slog.GroupValue()
	}
	attrs := make([]slog.Attr, 0, r.Ints.Count())
	r.Ints.Range(func(k string, v *atomic.Int64) {
		attrs = append(attrs, slog.Int64(k, v.Load()))
	})
	return slog.GroupValue(attrs...)
}

var _ slog.LogValuer = (*Registry)(nil)
