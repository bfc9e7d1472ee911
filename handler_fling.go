package gesture

// handleFling follows the synthetic deceleration after lift-off. While a
// finger is down it stays out of the way; up arms it, the first tick
// activates it, every tick fires onUpdate, and the stop sentinel ends it.
func (h *Handler) handleFling(ev *TouchEvent, dx, dy float64) {
	if ev == nil {
		if isStop(dx, dy) {
			h.finish()
			return
		}
		h.activate()
		if h.state == StateActive {
			h.onUpdate(dx, dy)
		}
		return
	}

	switch ev.Phase {
	case TouchDown, TouchMove:
		h.ignore()
	case TouchUp:
		h.begin()
	case TouchCancel:
		h.fail()
	}
}
