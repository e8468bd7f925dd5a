package surface

import (
	"time"

	"github.com/lixenwraith/mirage-choice/asset"
	"github.com/lixenwraith/mirage-choice/core"
)

// Node classes used by the effects and the page chrome
const (
	ClassOverlay       = "overlay"
	ClassMount         = "mount"
	ClassControl       = "control"
	ClassHistorySlot   = "history-slot"
	ClassResultCard    = "result-card"
	ClassSlotMachine   = "slot-machine"
	ClassSlotReel      = "slot-reel"
	ClassSlotItem      = "slot-item"
	ClassSlideTrack    = "slide-track"
	ClassSlideItem     = "slide-item"
	ClassFlipGrid      = "flip-grid"
	ClassFlipCard      = "flip-card"
	ClassStarField     = "star-field"
	ClassConstellation = "constellation"
	ClassStar          = "star"
	ClassStarLine      = "star-line"
	ClassShootingStar  = "shooting-star"
	ClassLionTrack     = "lion-track"
	ClassLionCard      = "lion-card"
	ClassLion          = "lion"
)

// Flag is a boolean visual state toggled by effects
type Flag string

const (
	FlagFlipped    Flag = "flipped"
	FlagSelected   Flag = "selected"
	FlagDimmed     Flag = "dimmed"
	FlagActivating Flag = "activating"
	FlagCompleting Flag = "completing"
	FlagFading     Flag = "fading"
	FlagBeingEaten Flag = "being-eaten"
	FlagAppearing  Flag = "appearing"
	FlagEating     Flag = "eating"
)

// PlaceholderGlyph is shown before a card is revealed
const PlaceholderGlyph = "?"

// Content is what a card face shows: resolved art or a text glyph
type Content struct {
	Glyph string
	Image *asset.Image
}

// Placeholder is the unrevealed card face
func Placeholder() Content { return Content{Glyph: PlaceholderGlyph} }

// Glyph is a text-only face
func Glyph(s string) Content { return Content{Glyph: s} }

// FromResult maps a resolver outcome to a card face
func FromResult(r asset.Result) Content {
	if r.Resolved() {
		return Content{Glyph: r.Glyph(), Image: r.Image}
	}
	return Content{Glyph: r.Glyph()}
}

// Transform is the flip-card transform: uniform scale and a rotation about the vertical axis
type Transform struct {
	Scale   float64
	RotateY float64 // degrees
}

// Identity is the resting transform
var Identity = Transform{Scale: 1}

// Node is one element of the surface tree
// All accessors lock the owning surface, so nodes are safe to touch from timers and loaders
type Node struct {
	s  *Surface
	id uint64

	class      string
	option     core.Option
	x, y       float64
	w, h       float64
	content    Content
	transform  Transform
	opacity    float64
	hidden     bool
	transition time.Duration
	flags      map[Flag]struct{}

	parent   *Node
	children []*Node
}

// ID is unique per surface
func (n *Node) ID() uint64 { return n.id }

// Class is fixed at creation
func (n *Node) Class() string { return n.class }

// Append attaches children in order, detaching them from any previous parent
func (n *Node) Append(children ...*Node) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for _, c := range children {
		c.detachLocked()
		c.parent = n
		n.children = append(n.children, c)
	}
	n.s.touchLocked()
}

// Remove detaches the node from its parent; removing a detached node is a no-op
func (n *Node) Remove() {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.detachLocked()
	n.s.touchLocked()
}

func (n *Node) detachLocked() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Clear detaches every child
func (n *Node) Clear() {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.s.touchLocked()
}

// Attached reports whether the node has a parent
func (n *Node) Attached() bool {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.parent != nil
}

// Children returns a copy of the child list
func (n *Node) Children() []*Node {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// SetOption tags the node with the option it represents
func (n *Node) SetOption(o core.Option) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.option = o
	n.s.touchLocked()
}

// Option returns the tagged option, empty if none
func (n *Node) Option() core.Option {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.option
}

// SetPos sets the position relative to the parent, in surface pixels
func (n *Node) SetPos(x, y float64) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.x, n.y = x, y
	n.s.touchLocked()
}

// Pos returns the position relative to the parent
func (n *Node) Pos() (x, y float64) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.x, n.y
}

// SetX moves the node horizontally only
func (n *Node) SetX(x float64) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.x = x
	n.s.touchLocked()
}

// X returns the horizontal position relative to the parent
func (n *Node) X() float64 {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.x
}

// SetSize pins an explicit size; zero dimensions defer to the surface metrics
func (n *Node) SetSize(w, h float64) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.w, n.h = w, h
	n.s.touchLocked()
}

// SetContent replaces the face content
func (n *Node) SetContent(c Content) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.content = c
	n.s.touchLocked()
}

// Content returns the face content
func (n *Node) Content() Content {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.content
}

// SetTransform applies a flip transform
func (n *Node) SetTransform(t Transform) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.transform = t
	n.s.touchLocked()
}

// Transform returns the current transform
func (n *Node) Transform() Transform {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.transform
}

// SetOpacity clamps to [0,1]
func (n *Node) SetOpacity(o float64) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.opacity = max(0, min(1, o))
	n.s.touchLocked()
}

// Opacity returns the node opacity
func (n *Node) Opacity() float64 {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.opacity
}

// SetHidden hides the node without detaching it
func (n *Node) SetHidden(h bool) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.hidden = h
	n.s.touchLocked()
}

// Hidden reports whether the node is hidden
func (n *Node) Hidden() bool {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.hidden
}

// SetTransition records the animation time the renderer may use for this node's state change
func (n *Node) SetTransition(d time.Duration) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.transition = d
	n.s.touchLocked()
}

// Transition returns the recorded state-change duration
func (n *Node) Transition() time.Duration {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.transition
}

// SetFlag turns a visual flag on or off
func (n *Node) SetFlag(f Flag, on bool) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if on {
		n.flags[f] = struct{}{}
	} else {
		delete(n.flags, f)
	}
	n.s.touchLocked()
}

// HasFlag reports whether a flag is on
func (n *Node) HasFlag(f Flag) bool {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	_, ok := n.flags[f]
	return ok
}
