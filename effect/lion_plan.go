package effect

import (
	"math"
	"slices"
	"time"

	"github.com/lixenwraith/mirage-choice/core"
	"github.com/lixenwraith/mirage-choice/engine"
)

const (
	lionRounds     = 3
	lionShiftCards = 2    // track shift before every round after the first
	lionIntroLoops = 5    // option runs laid out for the introduction
	lionStopLoop   = 3    // the stop card sits in this run
	lionGapRatio   = 0.02 // card gap as a share of viewport width
	lionMinLoops   = 5
	lionTargetLoop = 2 // the final target instance sits in this run of the new cards

	lionFastPhase = 1500 * time.Millisecond
)

// eliminationOffsets are the bite positions relative to the stop card
// The track shifts lionShiftCards before each later round and eaten cards leave gaps, so
// bites land on stop, stop+2 and stop+4
func eliminationOffsets() []int {
	offsets := make([]int, lionRounds)
	for r := range offsets {
		offsets[r] = r * lionShiftCards
	}
	return offsets
}

// safeStops lists non-target options that keep the target off every bite position
func safeStops(options []core.Option, target core.Option) []core.Option {
	n := len(options)
	t := core.IndexOf(options, target)
	var danger []int
	for _, off := range eliminationOffsets() {
		danger = append(danger, off%max(1, n))
	}
	var safe []core.Option
	for i, o := range options {
		if o == target {
			continue
		}
		// bites wrap into the next run when the option list is short
		rel := ((t-i)%n + n) % n
		if t >= 0 && slices.Contains(danger, rel) {
			continue
		}
		safe = append(safe, o)
	}
	return safe
}

// chooseStop picks uniformly among safe stops, falling back to the first non-target option
func chooseStop(r RandomSource, options []core.Option, target core.Option) core.Option {
	if safe := safeStops(options, target); len(safe) > 0 {
		return safe[r.IntN(len(safe))]
	}
	if rest := core.Without(options, target); len(rest) > 0 {
		return rest[0]
	}
	return target
}

// nearestWhere returns the index whose center is closest to mid among accepted cards, or -1
func nearestWhere(centers []float64, mid float64, accept func(i int) bool) int {
	best, bestDist := -1, math.Inf(1)
	for i, c := range centers {
		if !accept(i) {
			continue
		}
		if d := math.Abs(c - mid); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// pickVictim returns the centered card, or the nearest non-target card when the target is centered
// It never returns a target card; -1 means nothing can be eaten
func pickVictim(centers []float64, options []core.Option, mid float64, target core.Option) int {
	best := nearestWhere(centers, mid, func(int) bool { return true })
	if best >= 0 && options[best] != target {
		return best
	}
	return nearestWhere(centers, mid, func(i int) bool { return options[i] != target })
}

// finalPlan is the geometry and pacing of the last run
type finalPlan struct {
	Loops       int
	Start       float64 // left edge of the first new card
	TargetIndex int     // target instance within the new run
	Distance    float64 // total leftward travel
	Fast        float64 // travel covered at full speed
	FastFrames  int
	TotalFrames int
}

// planFinal lays the new run after the rightmost kept card and sizes a two-speed motion
// that leaves the target instance exactly centered
func planFinal(remaining []core.Option, target core.Option, spacing, cardW, vw, rightmost float64, kept bool) finalPlan {
	n := max(1, len(remaining))
	loop := float64(n) * spacing
	p := finalPlan{
		Loops:       max(lionMinLoops, int(math.Ceil(vw/loop))+2),
		Start:       vw * 1.5,
		TargetIndex: lionTargetLoop*n + max(0, core.IndexOf(remaining, target)),
	}
	if kept {
		p.Start = rightmost + spacing
	}

	targetStart := p.Start + float64(p.TargetIndex)*spacing
	p.Distance = targetStart - (vw/2 - cardW/2)

	p.Fast = loop
	slow := p.Distance - p.Fast
	if slow < 0 {
		p.Fast, slow = p.Distance, 0
	}

	p.FastFrames = engine.FrameCount(lionFastPhase)
	p.TotalFrames = p.FastFrames
	if slow > 0 && p.Fast > 0 {
		// slow phase runs at half the fast speed
		slowMs := 2 * slow * float64(lionFastPhase.Milliseconds()) / p.Fast
		p.TotalFrames = p.FastFrames + engine.FrameCount(time.Duration(slowMs*float64(time.Millisecond)))
	}
	return p
}
