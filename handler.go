package gesture

import "time"

// Handler is the recognition state machine of one detector on one member.
// A single flat struct serves every GestureKind; the kind-specific rules
// live in the handle* methods and are selected with a switch, so the set of
// kinds stays closed.
type Handler struct {
	kind     GestureKind
	detector *Detector
	memberID int
	arena    *Arena
	cfg      DetectorConfig // thresholds merged with arena defaults

	state State

	// Lifecycle callback guards, cleared by reset and begin.
	beginFired bool
	startFired bool
	endFired   bool

	// Raw touch history. Fed by bubble dispatch for every member in the
	// response chain, so recognizers that never won still know how far the
	// pointer travelled.
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	downTime time.Duration
	snapshot TouchSnapshot

	task *Task
}

func newHandler(a *Arena, memberID int, d *Detector) *Handler {
	return &Handler{
		kind:     d.Kind,
		detector: d,
		memberID: memberID,
		arena:    a,
		cfg:      a.cfg.thresholds(d.Kind, d.Config),
	}
}

// State returns the current phase.
func (h *Handler) State() State { return h.state }

// Kind returns the gesture kind.
func (h *Handler) Kind() GestureKind { return h.kind }

// GestureID returns the detector's gesture id.
func (h *Handler) GestureID() int { return h.detector.ID }

// MemberID returns the owning member's id.
func (h *Handler) MemberID() int { return h.memberID }

// handle is the single entry point for a touch phase or a fling tick.
// ev == nil means a fling tick, or a stop request when (dx, dy) is the
// StopDelta sentinel. Terminal handlers ignore everything until reset.
func (h *Handler) handle(ev *TouchEvent, snap *TouchSnapshot, dx, dy float64) {
	if snap != nil {
		h.snapshot = *snap
	}
	if ev != nil {
		h.observe(ev)
	}
	if h.state.IsTerminal() {
		return
	}
	switch h.kind {
	case KindPan:
		h.handlePan(ev, dx, dy, false)
	case KindNative:
		h.handlePan(ev, dx, dy, true)
	case KindTap:
		h.handleTap(ev, dx, dy)
	case KindLongPress:
		h.handleLongPress(ev, dx, dy)
	case KindFling:
		h.handleFling(ev, dx, dy)
	case KindDefault:
		h.handleDefault(ev, dx, dy)
	}
}

// observe records raw pointer history. Safe to call twice with the same
// event (bubble dispatch and arbitration both feed it).
func (h *Handler) observe(ev *TouchEvent) {
	switch ev.Phase {
	case TouchDown:
		h.down = true
		h.startX, h.startY = ev.X, ev.Y
		h.lastX, h.lastY = ev.X, ev.Y
		h.downTime = ev.Timestamp
	case TouchMove:
		if !h.down {
			// Move without down: treat the first move as the start point.
			h.down = true
			h.startX, h.startY = ev.X, ev.Y
			h.downTime = ev.Timestamp
		}
		h.lastX, h.lastY = ev.X, ev.Y
	case TouchUp, TouchCancel:
		h.lastX, h.lastY = ev.X, ev.Y
		h.down = false
	}
}

// travelled returns the distance from the down point to the last point.
func (h *Handler) travelled() float64 {
	return distance(h.startX, h.startY, h.lastX, h.lastY)
}

// ShouldFail reports whether the recognizer's failure condition holds for
// the touch history seen so far.
func (h *Handler) ShouldFail() bool {
	switch h.kind {
	case KindTap:
		return h.travelled() > h.cfg.MaxDistance
	case KindLongPress:
		return h.state != StateActive && h.travelled() > h.cfg.MaxDistance
	default:
		return h.state == StateFail
	}
}

// --- Transitions ---

// begin moves Init/Undetermined to Begin and fires onBegin.
func (h *Handler) begin() {
	if h.state != StateInit && h.state != StateUndetermined {
		return
	}
	h.state = StateBegin
	h.endFired = false
	h.onBegin()
}

// activate moves a live handler to Active, passing through Begin when
// needed, and fires onStart.
func (h *Handler) activate() {
	if h.state.IsTerminal() || h.state == StateActive {
		return
	}
	h.begin()
	h.state = StateActive
	h.onStart()
}

// fail terminates the handler and flushes onEnd.
func (h *Handler) fail() {
	if h.state.IsTerminal() {
		return
	}
	h.cancelTask()
	h.state = StateFail
	h.onEnd()
}

// end finishes the handler and flushes onEnd.
func (h *Handler) end() {
	if h.state.IsTerminal() {
		return
	}
	h.cancelTask()
	h.state = StateEnd
	h.onEnd()
}

// finish ends an active handler and fails any other live one.
func (h *Handler) finish() {
	if h.state == StateActive {
		h.end()
		return
	}
	h.fail()
}

// ignore marks a handler that has not claimed the arena as not taking part
// in the current input channel. Active handlers keep their claim.
func (h *Handler) ignore() {
	if h.state == StateInit || h.state == StateBegin {
		h.state = StateUndetermined
	}
}

// reset returns to Init and clears the lifecycle guards. Touch history is
// kept: bubble dispatch may already have recorded the current down.
func (h *Handler) reset() {
	h.cancelTask()
	h.state = StateInit
	h.beginFired = false
	h.startFired = false
	h.endFired = false
}

// revive gives an ignored handler another chance in a new channel without
// undoing a failure.
func (h *Handler) revive() {
	if h.state == StateUndetermined {
		h.state = StateInit
	}
}

// force applies a host-decided state.
func (h *Handler) force(s State) bool {
	switch s {
	case StateBegin:
		h.begin()
	case StateActive:
		h.activate()
	case StateFail:
		h.fail()
	case StateEnd:
		if h.state == StateFail {
			return true
		}
		h.end()
	default:
		return false
	}
	return true
}

func (h *Handler) schedule(d time.Duration, fn func()) {
	h.cancelTask()
	h.task = h.arena.clock.After(d, fn)
}

func (h *Handler) cancelTask() {
	h.task.Cancel()
	h.task = nil
}

// --- Callbacks ---

func (h *Handler) onBegin() {
	if h.beginFired {
		return
	}
	h.beginFired = true
	h.emit(EventBegin, 0, 0)
}

func (h *Handler) onStart() {
	if h.startFired {
		return
	}
	h.startFired = true
	h.emit(EventStart, 0, 0)
}

func (h *Handler) onUpdate(dx, dy float64) {
	h.emit(EventUpdate, dx, dy)
}

func (h *Handler) onEnd() {
	if h.endFired {
		return
	}
	h.endFired = true
	h.emit(EventEnd, 0, 0)
}

// onTouches fires the raw touch callback for phase.
func (h *Handler) onTouches(phase TouchPhase) {
	switch phase {
	case TouchDown:
		h.emit(EventTouchesDown, 0, 0)
	case TouchMove:
		h.emit(EventTouchesMove, 0, 0)
	case TouchUp:
		h.emit(EventTouchesUp, 0, 0)
	case TouchCancel:
		h.emit(EventTouchesCancel, 0, 0)
	}
}

// emit fires name if the detector enabled it and the member is still alive.
func (h *Handler) emit(name EventName, dx, dy float64) {
	if !h.detector.Callbacks.Has(name.flag()) {
		return
	}
	m := h.arena.lookupMember(h.memberID)
	if m == nil {
		return
	}
	h.arena.fire(m, GestureEvent{
		MemberID:  h.memberID,
		GestureID: h.detector.ID,
		Kind:      h.kind,
		Name:      name,
		Params: GestureParams{
			ScrollX:   m.ScrollX(),
			ScrollY:   m.ScrollY(),
			IsAtStart: m.IsAtBorder(true),
			IsAtEnd:   m.IsAtBorder(false),
			DeltaX:    dx,
			DeltaY:    dy,
			Timestamp: h.snapshot.Timestamp,
			X:         h.snapshot.X,
			Y:         h.snapshot.Y,
			PageX:     h.snapshot.PageX,
			PageY:     h.snapshot.PageY,
			Data:      h.snapshot.Data,
		},
	})
}
