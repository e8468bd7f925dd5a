package effect

import (
	"sync"
	"time"

	"github.com/lixenwraith/mirage-choice/engine"
)

// timerGroup tracks fire-and-forget callbacks layered inside one phase
// Callbacks may schedule further callbacks; stopAll cancels everything still pending
type timerGroup struct {
	clock engine.Scheduler

	mu      sync.Mutex
	stops   []func() bool
	stopped bool
}

func newTimerGroup(clock engine.Scheduler) *timerGroup {
	return &timerGroup{clock: clock}
}

func (g *timerGroup) after(d time.Duration, f func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.stops = append(g.stops, g.clock.AfterFunc(d, f))
}

func (g *timerGroup) stopAll() {
	g.mu.Lock()
	stops := g.stops
	g.stops = nil
	g.stopped = true
	g.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}
