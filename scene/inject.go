package scene

// syntheticTouch represents a single injected touch event. Coordinates are
// in scene space, identical to real pointer input.
type syntheticTouch struct {
	x, y    float64
	pressed bool
	cancel  bool
}

// InjectDown queues a touch press at (x, y). The event is consumed on the
// next tick.
func (s *Scene) InjectDown(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticTouch{x: x, y: y, pressed: true})
}

// InjectMove queues a move with the touch held down. Use it between
// InjectDown and InjectUp to simulate a drag.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticTouch{x: x, y: y, pressed: true})
}

// InjectUp queues a release at (x, y).
func (s *Scene) InjectUp(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticTouch{x: x, y: y})
}

// InjectCancel queues a cancellation of the injected touch.
func (s *Scene) InjectCancel() {
	s.injectQueue = append(s.injectQueue, syntheticTouch{cancel: true})
}

// InjectTap queues a press followed by a release at the same point.
// Consumes two ticks.
func (s *Scene) InjectTap(x, y float64) {
	s.InjectDown(x, y)
	s.InjectUp(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate ticks, and
// release at (toX, toY). The total sequence consumes `frames` ticks.
// Minimum frames is 2 (press + release).
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectDown(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectUp(toX, toY)
}

// PendingInjected returns the number of queued synthetic events.
func (s *Scene) PendingInjected() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer. Returns true if an event was consumed (device input
// is skipped for that tick).
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if evt.cancel {
		s.cancelPointer(injectPointer)
		return true
	}
	s.processPointer(injectPointer, evt.x, evt.y, evt.pressed)
	return true
}
