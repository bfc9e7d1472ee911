package gesture

import (
	"math"
	"time"
)

// StopDelta is the reserved "no-motion" marker. A handler receiving a nil
// event with StopDelta on both axes must terminate instead of updating.
const StopDelta = math.MaxFloat64

// isStop reports whether (dx, dy) is the stop sentinel.
func isStop(dx, dy float64) bool {
	return dx == StopDelta && dy == StopDelta
}

// GestureKind selects the recognition rules of a Handler.
type GestureKind uint8

const (
	KindPan       GestureKind = iota // continuous drag past a minimum distance
	KindFling                        // synthetic deceleration after lift-off
	KindDefault                      // continuous drag consumed by the member itself
	KindTap                          // short press and release in place
	KindLongPress                    // press held past a minimum duration
	KindNative                       // pan whose outcome is decided by the host
)

// String returns the lower-case kind name.
func (k GestureKind) String() string {
	switch k {
	case KindPan:
		return "pan"
	case KindFling:
		return "fling"
	case KindDefault:
		return "default"
	case KindTap:
		return "tap"
	case KindLongPress:
		return "longpress"
	case KindNative:
		return "native"
	default:
		return "unknown"
	}
}

// ParseGestureKind maps a kind name back to its GestureKind.
func ParseGestureKind(name string) (GestureKind, bool) {
	for k := KindPan; k <= KindNative; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// State is the phase of a Handler.
type State uint8

const (
	StateInit         State = iota // reset, no input seen yet
	StateBegin                     // input accepted, not yet recognized
	StateActive                    // recognized and claiming the arena
	StateFail                      // terminal: recognition failed
	StateEnd                       // terminal: recognized gesture finished
	StateUndetermined              // ignored for the current input channel
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateBegin:
		return "begin"
	case StateActive:
		return "active"
	case StateFail:
		return "fail"
	case StateEnd:
		return "end"
	case StateUndetermined:
		return "undetermined"
	default:
		return "unknown"
	}
}

// ParseState maps a state name back to its State.
func ParseState(name string) (State, bool) {
	for s := StateInit; s <= StateUndetermined; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// IsTerminal reports whether s is Fail or End.
func (s State) IsTerminal() bool {
	return s == StateFail || s == StateEnd
}

// canWin reports whether a member in aggregate state s keeps (or takes) the
// winner slot: any live phase up to and including Active.
func (s State) canWin() bool {
	return s == StateInit || s == StateBegin || s == StateActive
}

// TouchPhase identifies the phase of a raw touch event.
type TouchPhase uint8

const (
	TouchDown   TouchPhase = iota // first pointer pressed
	TouchMove                     // pointer moved while pressed
	TouchUp                       // pointer released
	TouchCancel                   // sequence aborted by the host
)

// String returns the lower-case phase name.
func (p TouchPhase) String() string {
	switch p {
	case TouchDown:
		return "down"
	case TouchMove:
		return "move"
	case TouchUp:
		return "up"
	case TouchCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Pointer is a single contact point of a TouchEvent.
type Pointer struct {
	ID   int
	X, Y float64
}

// TouchEvent is a raw touch phase delivered by the routing layer. X and Y are
// the primary pointer's coordinates; Pointers may carry every contact.
type TouchEvent struct {
	Phase     TouchPhase
	X, Y      float64
	Pointers  []Pointer
	Timestamp time.Duration // monotonic
}

// TouchSnapshot is the opaque touch payload forwarded unmodified into gesture
// event parameters.
type TouchSnapshot struct {
	Timestamp    time.Duration
	X, Y         float64
	PageX, PageY float64
	Data         any
}

// distance returns the Euclidean distance between two points.
func distance(x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	return math.Sqrt(dx*dx + dy*dy)
}
