package engine

import (
	"context"
	"sync"
	"time"
)

const (
	// FrameRate is the display refresh rate frame-stepped animations assume
	FrameRate = 60
	// FrameInterval is the time between two display refreshes
	FrameInterval = time.Second / FrameRate
)

// Scheduler is the cooperative host loop effect scripts suspend on
// Dwell and NextFrame are the only suspension points of a phase script
// AfterFunc schedules fire-and-forget work that never blocks the caller
type Scheduler interface {
	Now() time.Time
	Dwell(ctx context.Context, d time.Duration) error
	NextFrame(ctx context.Context) error
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// TimeProvider supplies the current time
type TimeProvider interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// RealScheduler suspends on wall-clock timers and a 60Hz frame grid
type RealScheduler struct {
	time  TimeProvider
	epoch time.Time

	mu        sync.Mutex
	lastFrame int64
}

// NewRealScheduler creates a scheduler driven by the monotonic clock
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{
		time:  wallClock{},
		epoch: time.Now(),
	}
}

// Now returns wall-clock time
func (s *RealScheduler) Now() time.Time {
	return s.time.Now()
}

// Dwell blocks for d or until ctx is done
// Non-positive durations yield without sleeping
func (s *RealScheduler) Dwell(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NextFrame blocks until the next frame boundary after the last one handed out
// Boundaries sit on a fixed grid from the scheduler epoch, like a vsync signal
func (s *RealScheduler) NextFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	elapsed := s.time.Now().Sub(s.epoch)
	frame := int64(elapsed/FrameInterval) + 1
	if frame <= s.lastFrame {
		frame = s.lastFrame + 1
	}
	s.lastFrame = frame
	deadline := s.epoch.Add(time.Duration(frame) * FrameInterval)
	s.mu.Unlock()

	return s.Dwell(ctx, deadline.Sub(s.time.Now()))
}

// AfterFunc runs f on its own goroutine after d
func (s *RealScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}
