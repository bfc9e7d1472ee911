package scene

import (
	"sync/atomic"

	"github.com/phanxgames/gesture"
)

// HitShape is used for custom hit testing regions.
type HitShape interface {
	Contains(x, y float64) bool
}

// GestureContext carries a gesture event to a node callback.
type GestureContext struct {
	Node     *Node
	UserData any
	Event    gesture.GestureEvent
}

var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is a rectangular region of the scene tree. A node with a content size
// larger than its viewport scrolls; a node with detectors joins the gesture
// arena as a member.
type Node struct {
	// ID is unique per node and doubles as the arena member id.
	ID   uint32
	Name string

	Parent   *Node
	children []*Node

	// X and Y position the node inside its parent's content.
	X, Y float64
	// Width and Height are the viewport size.
	Width, Height float64
	// ContentWidth and ContentHeight are the scrollable extent. Zero means
	// the content matches the viewport on that axis.
	ContentWidth, ContentHeight float64

	scrollX, scrollY float64

	Visible      bool
	Interactable bool
	ZIndex       int

	// HitShape overrides the viewport rectangle for hit testing, in local
	// coordinates.
	HitShape HitShape
	UserData any

	detectors      map[int]*gesture.Detector
	detectorsDirty bool

	// OnGesture fires for every gesture event the arena delivers to this node.
	OnGesture func(GestureContext)

	syncGen  uint64
	disposed bool
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Visible = true
	n.Interactable = true
}

// NewContainer creates an unsized grouping node.
func NewContainer(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// NewBox creates a fixed-size node that does not scroll.
func NewBox(name string, width, height float64) *Node {
	n := &Node{Name: name, Width: width, Height: height}
	nodeDefaults(n)
	return n
}

// NewScrollView creates a node with a width x height viewport over a
// contentWidth x contentHeight content area.
func NewScrollView(name string, width, height, contentWidth, contentHeight float64) *Node {
	n := &Node{
		Name:          name,
		Width:         width,
		Height:        height,
		ContentWidth:  contentWidth,
		ContentHeight: contentHeight,
	}
	nodeDefaults(n)
	return n
}

// --- Detectors ---

// AddDetector declares a gesture on the node. The scene picks the change up
// on its next tick.
func (n *Node) AddDetector(d *gesture.Detector) *Node {
	if d == nil {
		return n
	}
	if n.detectors == nil {
		n.detectors = make(map[int]*gesture.Detector)
	}
	n.detectors[d.ID] = d
	n.detectorsDirty = true
	return n
}

// RemoveDetector drops the detector with the given gesture id.
func (n *Node) RemoveDetector(gestureID int) {
	if _, ok := n.detectors[gestureID]; !ok {
		return
	}
	delete(n.detectors, gestureID)
	n.detectorsDirty = true
}

// HasDetectors reports whether the node declares any gesture.
func (n *Node) HasDetectors() bool {
	return len(n.detectors) > 0
}

// --- gesture.Member ---

// GestureArenaMemberID implements gesture.Member.
func (n *Node) GestureArenaMemberID() int { return int(n.ID) }

// GestureDetectors implements gesture.Member.
func (n *Node) GestureDetectors() map[int]*gesture.Detector { return n.detectors }

// ScrollX returns the horizontal scroll offset.
func (n *Node) ScrollX() float64 { return n.scrollX }

// ScrollY returns the vertical scroll offset.
func (n *Node) ScrollY() float64 { return n.scrollY }

// MaxScroll returns the largest scroll offset on each axis.
func (n *Node) MaxScroll() (float64, float64) {
	return max(n.ContentWidth-n.Width, 0), max(n.ContentHeight-n.Height, 0)
}

// SetScroll moves the content to (x, y), clamped to the scrollable range.
func (n *Node) SetScroll(x, y float64) {
	mx, my := n.MaxScroll()
	n.scrollX = min(max(x, 0), mx)
	n.scrollY = min(max(y, 0), my)
}

// ScrollBy implements gesture.Member.
func (n *Node) ScrollBy(dx, dy float64) {
	n.SetScroll(n.scrollX+dx, n.scrollY+dy)
}

// CanConsumeGesture implements gesture.Member. A node can absorb a delta when
// its content still has room to move in that direction on either axis.
func (n *Node) CanConsumeGesture(dx, dy float64) bool {
	mx, my := n.MaxScroll()
	switch {
	case dx > 0 && n.scrollX < mx, dx < 0 && n.scrollX > 0:
		return true
	case dy > 0 && n.scrollY < my, dy < 0 && n.scrollY > 0:
		return true
	}
	return false
}

// IsAtBorder implements gesture.Member.
func (n *Node) IsAtBorder(isStart bool) bool {
	if isStart {
		return n.scrollX <= 0 && n.scrollY <= 0
	}
	mx, my := n.MaxScroll()
	return n.scrollX >= mx && n.scrollY >= my
}

// ParentGestureMember implements gesture.ParentMember: the nearest ancestor
// that declares detectors.
func (n *Node) ParentGestureMember() gesture.Member {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.HasDetectors() {
			return p
		}
	}
	return nil
}

// OnGestureEvent implements gesture.GestureEventReceiver.
func (n *Node) OnGestureEvent(ev gesture.GestureEvent) {
	if n.OnGesture != nil {
		n.OnGesture(GestureContext{Node: n, UserData: n.UserData, Event: ev})
	}
}

// --- Coordinates ---

// WorldPosition returns the top-left corner of the node in scene space.
func (n *Node) WorldPosition() (float64, float64) {
	x, y := n.X, n.Y
	for p := n.Parent; p != nil; p = p.Parent {
		x += p.X - p.scrollX
		y += p.Y - p.scrollY
	}
	return x, y
}

// WorldToLocal converts scene coordinates into the node's local space.
func (n *Node) WorldToLocal(wx, wy float64) (float64, float64) {
	x, y := n.WorldPosition()
	return wx - x, wy - y
}

// clips reports whether the node hides content outside its viewport.
func (n *Node) clips() bool {
	return n.ContentWidth > n.Width || n.ContentHeight > n.Height
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// AddChildAt inserts child at the given index.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("scene: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("scene: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindChild returns the first descendant named name, depth first.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
		if found := c.FindChild(name); found != nil {
			return found
		}
	}
	return nil
}

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. The scene unregisters disposed
// members on its next tick.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.HitShape = nil
	n.UserData = nil
	n.OnGesture = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
