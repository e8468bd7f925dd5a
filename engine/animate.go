package engine

import (
	"context"
	"math"
	"time"
)

// FrameCount converts a duration to the number of 60Hz frames covering it
// Always at least one frame so the final state is applied
func FrameCount(d time.Duration) int {
	n := int(math.Ceil(d.Seconds()*FrameRate - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// Animate calls step once per display frame, for frames 1..total
// step receives the frame number and the total; the caller owns the math
func Animate(ctx context.Context, s Scheduler, total int, step func(frame, total int)) error {
	if total < 1 {
		total = 1
	}
	for frame := 1; frame <= total; frame++ {
		if err := s.NextFrame(ctx); err != nil {
			return err
		}
		step(frame, total)
	}
	return nil
}
