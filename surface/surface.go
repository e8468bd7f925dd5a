package surface

import (
	"sync"

	"github.com/lixenwraith/mirage-choice/core"
)

// Size is a width/height pair in surface pixels
type Size struct {
	W, H float64
}

// Box is an absolute rectangle in surface pixels
type Box struct {
	X, Y, W, H float64
}

// CenterX is the horizontal midpoint
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY is the vertical midpoint
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

// Metrics reports the natural rendered size of a node class for a viewport
// Nodes without an explicit size are measured through it
type Metrics func(class string, viewport Size) Size

// Section is one carousel slot: an effect title and its persistent mount
type Section struct {
	ID    string
	Title string
	Mount *Node
}

// Surface is the retained presentation tree effects mutate and the renderer draws
// Page chrome (sections, controls, history slots) lives beside the transient overlays
type Surface struct {
	mu       sync.RWMutex
	seq      uint64
	version  uint64
	viewport Size
	metrics  Metrics

	sections    []Section
	active      int
	controls    []*Node
	history     []*Node
	historyMode bool
	status      string

	overlays []*Node
}

// New creates an empty surface; nil metrics selects DefaultMetrics
func New(viewport Size, metrics Metrics) *Surface {
	if metrics == nil {
		metrics = DefaultMetrics
	}
	return &Surface{
		viewport: viewport,
		metrics:  metrics,
	}
}

// touchLocked bumps the change counter; caller holds mu for writing
func (s *Surface) touchLocked() {
	s.version++
}

// Version changes whenever anything on the surface changes
func (s *Surface) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// NewNode creates a detached node owned by this surface
func (s *Surface) NewNode(class string) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return &Node{
		s:         s,
		id:        s.seq,
		class:     class,
		opacity:   1,
		transform: Identity,
		flags:     make(map[Flag]struct{}),
	}
}

// Viewport returns the current viewport size
func (s *Surface) Viewport() Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetViewport updates the viewport after a resize
func (s *Surface) SetViewport(v Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
	for _, ov := range s.overlays {
		ov.w, ov.h = v.W, v.H
	}
	s.touchLocked()
}

// Measure returns the node's absolute box as rendered
// Width and height come from the node when pinned, otherwise from the metrics
func (s *Surface) Measure(n *Node) Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.measureLocked(n)
}

func (s *Surface) measureLocked(n *Node) Box {
	var b Box
	for p := n; p != nil; p = p.parent {
		b.X += p.x
		b.Y += p.y
	}
	b.W, b.H = n.w, n.h
	if b.W == 0 || b.H == 0 {
		natural := s.metrics(n.class, s.viewport)
		if b.W == 0 {
			b.W = natural.W
		}
		if b.H == 0 {
			b.H = natural.H
		}
	}
	return b
}

// OpenOverlay appends a full-screen overlay above the page
func (s *Surface) OpenOverlay() *Node {
	n := s.NewNode(ClassOverlay)
	s.mu.Lock()
	defer s.mu.Unlock()
	n.w, n.h = s.viewport.W, s.viewport.H
	s.overlays = append(s.overlays, n)
	s.touchLocked()
	return n
}

// CloseOverlay removes an overlay; closing twice is a no-op
func (s *Surface) CloseOverlay(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ov := range s.overlays {
		if ov == n {
			s.overlays = append(s.overlays[:i:i], s.overlays[i+1:]...)
			break
		}
	}
	s.touchLocked()
}

// Overlays returns how many overlays are open
func (s *Surface) Overlays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overlays)
}

// AddSection appends a carousel section and returns its mount
func (s *Surface) AddSection(id, title string) *Node {
	mount := s.NewNode(ClassMount)
	mount.content = Placeholder()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = append(s.sections, Section{ID: id, Title: title, Mount: mount})
	s.touchLocked()
	return mount
}

// Mount returns the mount of the section with the given id
func (s *Surface) Mount(id string) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sec := range s.sections {
		if sec.ID == id {
			return sec.Mount
		}
	}
	return nil
}

// Mounts returns every section mount in carousel order
func (s *Surface) Mounts() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, len(s.sections))
	for i, sec := range s.sections {
		out[i] = sec.Mount
	}
	return out
}

// SetActiveSection marks the front carousel section
func (s *Surface) SetActiveSection(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = i
	s.touchLocked()
}

// AddControl appends the option button for o
func (s *Surface) AddControl(o core.Option) *Node {
	n := s.NewNode(ClassControl)
	n.option = o
	n.content = Glyph(string(o))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls = append(s.controls, n)
	s.touchLocked()
	return n
}

// Control returns the option button for o
func (s *Surface) Control(o core.Option) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.controls {
		if c.option == o {
			return c
		}
	}
	return nil
}

// Controls returns every option button in display order
func (s *Surface) Controls() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, len(s.controls))
	copy(out, s.controls)
	return out
}

// AddHistorySlot appends an empty history slot
func (s *Surface) AddHistorySlot() *Node {
	n := s.NewNode(ClassHistorySlot)
	n.content = Placeholder()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, n)
	s.touchLocked()
	return n
}

// HistorySlots returns the history slots in draw order
func (s *Surface) HistorySlots() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, len(s.history))
	copy(out, s.history)
	return out
}

// SetHistoryMode switches the control row between option list and history
func (s *Surface) SetHistoryMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyMode = on
	s.touchLocked()
}

// SetStatus sets the one-line status text
func (s *Surface) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
	s.touchLocked()
}
