package effect

import (
	"math"
	"time"
)

// Progress -> value functions shared by the frame-stepped effects
// All take t in [0,1] and are exact at both endpoints

func msec(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

func clamp01(t float64) float64 {
	return max(0, min(1, t))
}

// Lerp interpolates linearly from a to b
func Lerp(a, b, t float64) float64 {
	t = clamp01(t)
	if t == 1 {
		return b
	}
	return a + (b-a)*t
}

// EaseInQuad is the slide track curve: start + (end-start)*t^2
func EaseInQuad(a, b, t float64) float64 {
	t = clamp01(t)
	if t == 1 {
		return b
	}
	return a + (b-a)*t*t
}

// EaseOutCubic decelerates into b, used for the slot reel stop
func EaseOutCubic(a, b, t float64) float64 {
	t = clamp01(t)
	if t == 1 {
		return b
	}
	u := 1 - t
	return a + (b-a)*(1-u*u*u)
}

// FrameProgress maps frame n of total (1-based) to t
func FrameProgress(frame, total int) float64 {
	if total <= 0 || frame >= total {
		return 1
	}
	return float64(frame) / float64(total)
}

// Card flip pacing
const (
	flipShowStart  = 200.0
	flipShowEnd    = 60.0
	flipAnimStart  = 180.0
	flipAnimEnd    = 30.0
	flipAnimRampTo = 0.4
)

// FlipShowTime is how long a flipped card stays open at progress p (quadratic 200 -> 60)
func FlipShowTime(p float64) time.Duration {
	p = clamp01(p)
	ms := flipShowStart - (flipShowStart-flipShowEnd)*p*p
	return time.Duration(math.Round(ms)) * time.Millisecond
}

// FlipTransitionTime is the per-flip transform duration at progress p
// Linear 180 -> 30 over the first 40% of progress, then held at 30
func FlipTransitionTime(p float64) time.Duration {
	p = clamp01(p)
	ms := flipAnimEnd
	if p < flipAnimRampTo {
		ms = flipAnimStart - (flipAnimStart-flipAnimEnd)*(p/flipAnimRampTo)
	}
	return time.Duration(math.Round(ms)) * time.Millisecond
}

// IterationProgress spreads n iterations over [0,1], first at 0 and last at 1
func IterationProgress(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(i) / float64(n-1)
}

// TwoSpeedDistance is the distance covered at frame of a motion that runs
// fastFrames at full speed covering fast, then the rest at the remaining rate
// The last frame lands on total exactly
func TwoSpeedDistance(frame, fastFrames, totalFrames int, fast, total float64) float64 {
	if frame >= totalFrames {
		return total
	}
	if frame <= fastFrames {
		return fast * FrameProgress(frame, fastFrames)
	}
	slowFrames := totalFrames - fastFrames
	return fast + (total-fast)*FrameProgress(frame-fastFrames, slowFrames)
}
