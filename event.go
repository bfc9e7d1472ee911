package gesture

import (
	"slices"
	"time"
)

// EventName identifies the callback a GestureEvent was fired for.
type EventName string

const (
	EventBegin         EventName = "onBegin"
	EventUpdate        EventName = "onUpdate"
	EventStart         EventName = "onStart"
	EventEnd           EventName = "onEnd"
	EventTouchesDown   EventName = "onTouchesDown"
	EventTouchesMove   EventName = "onTouchesMove"
	EventTouchesUp     EventName = "onTouchesUp"
	EventTouchesCancel EventName = "onTouchesCancel"
)

// flag returns the callback flag that enables the event.
func (n EventName) flag() CallbackFlags {
	switch n {
	case EventBegin:
		return CallbackBegin
	case EventUpdate:
		return CallbackUpdate
	case EventStart:
		return CallbackStart
	case EventEnd:
		return CallbackEnd
	case EventTouchesDown:
		return CallbackTouchesDown
	case EventTouchesMove:
		return CallbackTouchesMove
	case EventTouchesUp:
		return CallbackTouchesUp
	case EventTouchesCancel:
		return CallbackTouchesCancel
	default:
		return 0
	}
}

// GestureParams is the parameter bag carried by a GestureEvent.
type GestureParams struct {
	ScrollX   float64
	ScrollY   float64
	IsAtStart bool
	IsAtEnd   bool
	DeltaX    float64
	DeltaY    float64
	// Forwarded touch snapshot fields.
	Timestamp    time.Duration
	X, Y         float64
	PageX, PageY float64
	Data         any
}

// GestureEvent is fired for every recognizer phase callback.
type GestureEvent struct {
	MemberID  int
	GestureID int
	Kind      GestureKind
	Name      EventName
	Params    GestureParams
}

// EventSink receives every gesture event fired by an arena.
type EventSink interface {
	EmitGestureEvent(event GestureEvent)
}

// --- Listener registry ---

type gestureListener struct {
	id uint32
	fn func(GestureEvent)
}

type listenerRegistry struct {
	listeners []gestureListener
	nextID    uint32
}

// CallbackHandle allows removing a registered arena-level callback.
type CallbackHandle struct {
	id  uint32
	reg *listenerRegistry
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	s := h.reg.listeners
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = gestureListener{}
			h.reg.listeners = s[:len(s)-1]
			return
		}
	}
}

// fire calls every listener registered when the event started. A listener
// removed by an earlier one during the same event is skipped.
func (r *listenerRegistry) fire(ev GestureEvent) {
	for _, l := range slices.Clone(r.listeners) {
		if r.has(l.id) {
			l.fn(ev)
		}
	}
}

func (r *listenerRegistry) has(id uint32) bool {
	return slices.ContainsFunc(r.listeners, func(l gestureListener) bool { return l.id == id })
}

func (r *listenerRegistry) add(fn func(GestureEvent)) CallbackHandle {
	r.nextID++
	r.listeners = append(r.listeners, gestureListener{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r}
}
