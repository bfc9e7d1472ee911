package gesture

// Member is a node of the interactive tree that can own gesture detectors.
// The arena never owns a member; it holds only its id and resolves it on
// every use, treating an unregistered id as absent.
type Member interface {
	// GestureArenaMemberID returns the stable id of the member.
	GestureArenaMemberID() int
	// GestureDetectors returns the member's declared detectors keyed by
	// gesture id.
	GestureDetectors() map[int]*Detector
	// ScrollBy scrolls the member's content by (dx, dy).
	ScrollBy(dx, dy float64)
	// CanConsumeGesture reports whether the member can absorb (dx, dy).
	CanConsumeGesture(dx, dy float64) bool
	// IsAtBorder reports whether the content sits at its start (isStart) or
	// end edge.
	IsAtBorder(isStart bool) bool
	ScrollX() float64
	ScrollY() float64
}

// ParentMember is implemented by members that know their enclosing member.
// SetActiveUIToArenaAtDownEvent walks it to build the response chain when no
// HitTester is installed.
type ParentMember interface {
	Member
	ParentGestureMember() Member
}

// GestureEventReceiver is implemented by members that want their own gesture
// events delivered directly.
type GestureEventReceiver interface {
	OnGestureEvent(GestureEvent)
}

// HitTester produces the response chain for a touch coordinate, innermost
// member first.
type HitTester interface {
	HitTest(x, y float64) []Member
}

// HitTesterFunc adapts a function to HitTester.
type HitTesterFunc func(x, y float64) []Member

// HitTest calls f(x, y).
func (f HitTesterFunc) HitTest(x, y float64) []Member {
	return f(x, y)
}

// memberLookup resolves member ids to live members.
type memberLookup interface {
	lookupMember(id int) Member
}
