package gesture

// handleTap recognizes a short press: Begin on down, a MaxDuration task
// fails it if the pointer is held too long, movement past MaxDistance fails
// it, and a qualifying up fires onStart and onEnd in one go.
func (h *Handler) handleTap(ev *TouchEvent, dx, dy float64) {
	if ev == nil {
		if isStop(dx, dy) {
			h.fail()
			return
		}
		h.ignore()
		return
	}

	switch ev.Phase {
	case TouchDown:
		h.beginTap()
	case TouchMove:
		h.beginTap()
		if h.ShouldFail() {
			h.fail()
		}
	case TouchUp:
		h.beginTap()
		if h.ShouldFail() || h.tapExpired(ev) {
			h.fail()
			return
		}
		h.activate()
		h.end()
	case TouchCancel:
		h.fail()
	}
}

func (h *Handler) beginTap() {
	if h.state != StateInit && h.state != StateUndetermined {
		return
	}
	h.begin()
	h.schedule(h.cfg.MaxDuration, h.fail)
}

// tapExpired checks the press duration against event timestamps, for hosts
// that stamp events but advance the arena clock coarsely.
func (h *Handler) tapExpired(ev *TouchEvent) bool {
	if ev.Timestamp <= 0 || h.downTime <= 0 {
		return false
	}
	return ev.Timestamp-h.downTime > h.cfg.MaxDuration
}
