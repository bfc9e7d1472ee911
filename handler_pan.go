package gesture

// handlePan recognizes a drag: Begin on down, Active once the pointer has
// travelled past MinDistance, onUpdate for every move while Active. A pan
// that never activated fails on lift-off; an active one stays Active through
// up so a fling continuation can follow, and ends on the stop sentinel.
//
// Native pans share the rules except that lift-off never fails them: the
// host decides their outcome through SetGestureDetectorState.
func (h *Handler) handlePan(ev *TouchEvent, dx, dy float64, native bool) {
	if ev == nil {
		if isStop(dx, dy) {
			h.finish()
			return
		}
		// Fling ticks belong to fling recognizers.
		h.ignore()
		return
	}

	switch ev.Phase {
	case TouchDown:
		h.begin()
	case TouchMove:
		h.begin()
		if h.state == StateBegin && h.travelled() > h.cfg.MinDistance {
			h.activate()
		}
		if h.state == StateActive && (dx != 0 || dy != 0) {
			h.onUpdate(dx, dy)
		}
	case TouchUp:
		if !native && h.state != StateActive {
			h.fail()
		}
	case TouchCancel:
		h.fail()
	}
}
