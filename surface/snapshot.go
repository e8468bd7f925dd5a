package surface

import (
	"time"

	"github.com/lixenwraith/mirage-choice/core"
)

// NodeView is an immutable copy of a node with its absolute box resolved
type NodeView struct {
	ID         uint64
	Class      string
	Option     core.Option
	Box        Box
	Content    Content
	Transform  Transform
	Opacity    float64
	Hidden     bool
	Transition time.Duration
	Flags      map[Flag]bool
	Children   []NodeView
}

// Has reports whether the view carries a flag
func (v NodeView) Has(f Flag) bool { return v.Flags[f] }

// SectionView is a carousel section copy
type SectionView struct {
	ID    string
	Title string
	Mount NodeView
}

// Frame is everything the renderer needs for one frame
type Frame struct {
	Version     uint64
	Viewport    Size
	Sections    []SectionView
	Active      int
	Controls    []NodeView
	History     []NodeView
	HistoryMode bool
	Status      string
	Overlays    []NodeView
}

// Snapshot copies the whole surface under one read lock
func (s *Surface) Snapshot() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := Frame{
		Version:     s.version,
		Viewport:    s.viewport,
		Active:      s.active,
		HistoryMode: s.historyMode,
		Status:      s.status,
	}
	for _, sec := range s.sections {
		f.Sections = append(f.Sections, SectionView{ID: sec.ID, Title: sec.Title, Mount: s.viewLocked(sec.Mount)})
	}
	for _, c := range s.controls {
		f.Controls = append(f.Controls, s.viewLocked(c))
	}
	for _, h := range s.history {
		f.History = append(f.History, s.viewLocked(h))
	}
	for _, ov := range s.overlays {
		f.Overlays = append(f.Overlays, s.viewLocked(ov))
	}
	return f
}

func (s *Surface) viewLocked(n *Node) NodeView {
	v := NodeView{
		ID:         n.id,
		Class:      n.class,
		Option:     n.option,
		Box:        s.measureLocked(n),
		Content:    n.content,
		Transform:  n.transform,
		Opacity:    n.opacity,
		Hidden:     n.hidden,
		Transition: n.transition,
	}
	if len(n.flags) > 0 {
		v.Flags = make(map[Flag]bool, len(n.flags))
		for f := range n.flags {
			v.Flags[f] = true
		}
	}
	for _, c := range n.children {
		v.Children = append(v.Children, s.viewLocked(c))
	}
	return v
}

// Find returns the first view in the subtree matching pred, depth first
func (v NodeView) Find(pred func(NodeView) bool) (NodeView, bool) {
	if pred(v) {
		return v, true
	}
	for _, c := range v.Children {
		if found, ok := c.Find(pred); ok {
			return found, true
		}
	}
	return NodeView{}, false
}
