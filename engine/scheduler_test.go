package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestVirtualScheduler_DwellAdvancesTime(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	require.NoError(t, v.Dwell(context.Background(), 250*time.Millisecond))
	require.NoError(t, v.Dwell(context.Background(), 0))
	assert.Equal(t, epoch.Add(250*time.Millisecond), v.Now())
}

func TestVirtualScheduler_TimersFireInDeadlineOrder(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	var order []int

	v.AfterFunc(300*time.Millisecond, func() { order = append(order, 3) })
	v.AfterFunc(100*time.Millisecond, func() { order = append(order, 1) })
	v.AfterFunc(100*time.Millisecond, func() { order = append(order, 2) })
	stop := v.AfterFunc(200*time.Millisecond, func() { order = append(order, 99) })
	assert.True(t, stop())
	assert.False(t, stop())

	require.NoError(t, v.Dwell(context.Background(), 150*time.Millisecond))
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, v.Pending())

	require.NoError(t, v.Dwell(context.Background(), time.Second))
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Zero(t, v.Pending())
}

func TestVirtualScheduler_TimerSeesItsDeadline(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	var seen time.Time
	v.AfterFunc(400*time.Millisecond, func() { seen = v.Now() })
	v.Advance(time.Second)
	assert.Equal(t, epoch.Add(400*time.Millisecond), seen)
	assert.Equal(t, epoch.Add(time.Second), v.Now())
}

func TestVirtualScheduler_NestedTimers(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	fired := 0
	v.AfterFunc(100*time.Millisecond, func() {
		fired++
		v.AfterFunc(100*time.Millisecond, func() { fired++ })
	})
	v.Advance(250 * time.Millisecond)
	assert.Equal(t, 2, fired)
}

func TestVirtualScheduler_CancelledContext(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(v.Dwell(ctx, time.Second), context.Canceled))
	assert.True(t, errors.Is(v.NextFrame(ctx), context.Canceled))
	assert.Equal(t, epoch, v.Now())
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{3000 * time.Millisecond, 180},
		{2000 * time.Millisecond, 120},
		{800 * time.Millisecond, 48},
		{1500 * time.Millisecond, 90},
		{0, 1},
		{time.Millisecond, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrameCount(tt.d), "FrameCount(%v)", tt.d)
	}
}

func TestAnimate_StepsEveryFrame(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	var frames []int
	err := Animate(context.Background(), v, 5, func(frame, total int) {
		assert.Equal(t, 5, total)
		frames = append(frames, frame)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, frames)
	assert.Equal(t, uint64(5), v.Frames())
	assert.Equal(t, epoch.Add(5*FrameInterval), v.Now())
}

func TestAnimate_StopsOnCancel(t *testing.T) {
	v := NewVirtualScheduler(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	err := Animate(ctx, v, 10, func(frame, total int) {
		steps++
		if frame == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, steps)
}

func TestRealScheduler_DwellAndFrames(t *testing.T) {
	s := NewRealScheduler()
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, s.Dwell(ctx, 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	start = time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.NextFrame(ctx))
	}
	// Three distinct frame boundaries need at least two full intervals
	assert.GreaterOrEqual(t, time.Since(start), 2*FrameInterval)
}

func TestRealScheduler_AfterFuncStop(t *testing.T) {
	s := NewRealScheduler()
	var fired atomic.Bool
	stop := s.AfterFunc(50*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, stop())
	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestRealScheduler_DwellCancel(t *testing.T) {
	s := NewRealScheduler()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Dwell(ctx, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
