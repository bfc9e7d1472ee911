package gesture

// handleDefault drives a member that scrolls itself. Every non-zero move is
// offered to the member; when it cannot consume the delta the handler fails
// at once, which lets an outer member take over. Consumed deltas are applied
// with ScrollBy and reported through onUpdate.
func (h *Handler) handleDefault(ev *TouchEvent, dx, dy float64) {
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
		h.begin()
	case TouchMove:
		h.begin()
		if dx == 0 && dy == 0 {
			return
		}
		m := h.arena.lookupMember(h.memberID)
		if m == nil || !m.CanConsumeGesture(dx, dy) {
			h.fail()
			return
		}
		h.activate()
		m.ScrollBy(dx, dy)
		h.onUpdate(dx, dy)
	case TouchUp:
		if h.state != StateActive {
			h.fail()
		}
	case TouchCancel:
		h.fail()
	}
}
