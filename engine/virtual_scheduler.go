package engine

import (
	"context"
	"sort"
	"sync"
	"time"
)

// VirtualScheduler is a deterministic Scheduler for tests
// Time only moves when a script dwells or waits for a frame; pending timers whose
// deadline is crossed run synchronously on the advancing goroutine, in deadline order
type VirtualScheduler struct {
	clock *manualClock

	mu     sync.Mutex
	seq    uint64
	timers []*virtualTimer
	frames uint64
}

type virtualTimer struct {
	deadline time.Time
	seq      uint64
	f        func()
	stopped  bool
}

// NewVirtualScheduler starts virtual time at start
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{clock: &manualClock{now: start}}
}

// Now returns virtual time
func (v *VirtualScheduler) Now() time.Time {
	return v.clock.Now()
}

// Dwell advances virtual time by d
func (v *VirtualScheduler) Dwell(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.Advance(d)
	return nil
}

// NextFrame advances virtual time by one frame interval
func (v *VirtualScheduler) NextFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	v.frames++
	v.mu.Unlock()
	v.Advance(FrameInterval)
	return nil
}

// AfterFunc queues f to run once virtual time reaches now+d
func (v *VirtualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	t := &virtualTimer{
		deadline: v.clock.Now().Add(d),
		seq:      v.seq,
		f:        f,
	}
	v.timers = append(v.timers, t)

	return func() bool {
		v.mu.Lock()
		defer v.mu.Unlock()
		if t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// Advance moves virtual time forward by d, firing crossed timers
func (v *VirtualScheduler) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := v.clock.Now().Add(d)

	for {
		v.mu.Lock()
		t := v.popDueLocked(target)
		if t == nil {
			v.mu.Unlock()
			break
		}
		v.clock.SetTime(t.deadline)
		v.mu.Unlock()

		t.f()
	}

	v.clock.SetTime(target)
}

// popDueLocked removes and returns the earliest live timer due at or before target
func (v *VirtualScheduler) popDueLocked(target time.Time) *virtualTimer {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	v.timers = live
	if len(v.timers) == 0 {
		return nil
	}

	sort.Slice(v.timers, func(i, j int) bool {
		if v.timers[i].deadline.Equal(v.timers[j].deadline) {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].deadline.Before(v.timers[j].deadline)
	})

	t := v.timers[0]
	if t.deadline.After(target) {
		return nil
	}
	t.stopped = true
	v.timers = v.timers[1:]
	return t
}

// Pending returns the number of timers not yet fired or stopped
func (v *VirtualScheduler) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, t := range v.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Frames returns how many frames have been handed out
func (v *VirtualScheduler) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

// manualClock is a TimeProvider that only moves when set
type manualClock struct {
	mu  sync.RWMutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *manualClock) SetTime(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

var _ TimeProvider = (*manualClock)(nil)
