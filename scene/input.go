package scene

import (
	"cmp"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/gesture"
)

const (
	maxPointers   = 10          // pointer 0 = mouse, 1-9 = touch
	injectPointer = maxPointers // synthetic input gets its own slot
)

// Vec2 is a 2D point.
type Vec2 struct {
	X, Y float64
}

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	var positive, negative bool
	for i := 0; i < n; i++ {
		x1, y1 := p.Points[i].X, p.Points[i].Y
		j := (i + 1) % n
		x2, y2 := p.Points[j].X, p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// --- Per-pointer state ---

type pointerState struct {
	down         bool
	lastX, lastY float64
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise the viewport rectangle. Unsized containers
// are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	if n.Width == 0 && n.Height == 0 {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// collectInteractable walks the tree in painter order (DFS, ZIndex-sorted),
// appending interactable nodes to buf. Skips Visible=false or
// Interactable=false subtrees.
func (s *Scene) collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable || n.disposed {
		return buf
	}
	if n.HitShape != nil || n.Width > 0 || n.Height > 0 {
		buf = append(buf, n)
	}
	if len(n.children) == 0 {
		return buf
	}

	children := n.children
	if !slices.IsSortedFunc(children, byZIndex) {
		children = slices.Clone(children)
		slices.SortStableFunc(children, byZIndex)
	}
	for _, child := range children {
		buf = s.collectInteractable(child, buf)
	}
	return buf
}

func byZIndex(a, b *Node) int {
	return cmp.Compare(a.ZIndex, b.ZIndex)
}

// clipped reports whether a scrolling ancestor hides (wx, wy) from n.
func clipped(n *Node, wx, wy float64) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if !p.clips() {
			continue
		}
		lx, ly := p.WorldToLocal(wx, wy)
		if !nodeContainsLocal(p, lx, ly) {
			return true
		}
	}
	return false
}

// hitTest finds the topmost interactable node at (worldX, worldY).
// Returns nil if nothing is hit.
func (s *Scene) hitTest(worldX, worldY float64) *Node {
	s.hitBuf = s.collectInteractable(s.root, s.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost visual node first.
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		lx, ly := n.WorldToLocal(worldX, worldY)
		if nodeContainsLocal(n, lx, ly) && !clipped(n, worldX, worldY) {
			return n
		}
	}
	return nil
}

// HitTest implements gesture.HitTester: the topmost node under (x, y)
// followed by its ancestors, keeping only nodes that declare detectors.
func (s *Scene) HitTest(x, y float64) []gesture.Member {
	var chain []gesture.Member
	for n := s.hitTest(x, y); n != nil; n = n.Parent {
		if n.HasDetectors() {
			chain = append(chain, n)
		}
	}
	return chain
}

// --- Input processing ---

// processInput feeds one injected event, or when the queue is empty and
// devices are enabled, the current mouse and touch state.
func (s *Scene) processInput(devices bool) {
	if s.processInjectedInput() || !devices {
		return
	}
	mx, my := ebiten.CursorPosition()
	s.processPointer(0, float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	s.processTouchPointers()
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer. Only
// the primary pointer, the first one pressed, drives the arena; the others
// ride along in TouchEvent.Pointers.
func (s *Scene) processPointer(pointerID int, x, y float64, pressed bool) {
	ps := &s.pointers[pointerID]
	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.lastX, ps.lastY = x, y
		if s.primary < 0 {
			s.primary = pointerID
			s.dispatch(gesture.TouchDown, x, y)
		}

	case pressed && ps.down:
		if x == ps.lastX && y == ps.lastY {
			return
		}
		ps.lastX, ps.lastY = x, y
		if s.primary == pointerID {
			s.dispatch(gesture.TouchMove, x, y)
		}

	case !pressed && ps.down:
		ps.down = false
		ps.lastX, ps.lastY = x, y
		if s.primary == pointerID {
			s.dispatch(gesture.TouchUp, x, y)
			s.primary = -1
		}
	}
}

// cancelPointer aborts the pointer's sequence without a release.
func (s *Scene) cancelPointer(pointerID int) {
	ps := &s.pointers[pointerID]
	if !ps.down {
		return
	}
	ps.down = false
	if s.primary == pointerID {
		s.dispatch(gesture.TouchCancel, ps.lastX, ps.lastY)
		s.primary = -1
	}
}

// dispatch forwards one phase of the primary pointer to the arena.
func (s *Scene) dispatch(phase gesture.TouchPhase, x, y float64) {
	ev := &gesture.TouchEvent{
		Phase:     phase,
		X:         x,
		Y:         y,
		Pointers:  s.activePointers(),
		Timestamp: s.now,
	}
	snap := &gesture.TouchSnapshot{
		Timestamp: s.now,
		X:         x,
		Y:         y,
		PageX:     x,
		PageY:     y,
	}
	if phase == gesture.TouchDown {
		if n := s.hitTest(x, y); n != nil {
			snap.X, snap.Y = n.WorldToLocal(x, y)
			snap.Data = n.Name
		}
	}
	s.log.Trace().Stringer("phase", phase).Float64("x", x).Float64("y", y).Msg("touch")
	s.arena.DispatchTouchEventToArena(ev, snap)
}

func (s *Scene) activePointers() []gesture.Pointer {
	var out []gesture.Pointer
	for i := range s.pointers {
		if s.pointers[i].down {
			out = append(out, gesture.Pointer{ID: i, X: s.pointers[i].lastX, Y: s.pointers[i].lastY})
		}
	}
	return out
}
