package gesture

// handleLongPress recognizes a held press: Begin on down arms a MinDuration
// task that activates the handler. Moving past MaxDistance or lifting before
// the task fires fails it; lifting after activation ends it.
func (h *Handler) handleLongPress(ev *TouchEvent, dx, dy float64) {
	if ev == nil {
		if isStop(dx, dy) {
			h.finish()
			return
		}
		h.ignore()
		return
	}

	switch ev.Phase {
	case TouchDown:
		h.beginLongPress()
	case TouchMove:
		h.beginLongPress()
		if h.ShouldFail() {
			h.fail()
		}
	case TouchUp:
		h.finish()
	case TouchCancel:
		h.fail()
	}
}

func (h *Handler) beginLongPress() {
	if h.state != StateInit && h.state != StateUndetermined {
		return
	}
	h.begin()
	h.schedule(h.cfg.MinDuration, func() {
		if h.state == StateBegin {
			h.activate()
		}
	})
}
