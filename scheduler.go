package gesture

import "time"

// Task is a cancellable handle to a function scheduled on a Scheduler.
type Task struct {
	at        time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// Cancel prevents the task from running. Safe on nil and on fired tasks.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
	t.fn = nil
}

// Pending reports whether the task will still run.
func (t *Task) Pending() bool {
	return t != nil && !t.cancelled && !t.fired
}

// Scheduler runs deferred functions on the arena's frame clock. Time only
// moves when Advance is called, so every task runs on the caller's goroutine
// between input events.
type Scheduler struct {
	now   time.Duration
	tasks []*Task
}

// Now returns the current clock value.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once d has elapsed on the clock.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	t := &Task{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by dt and runs every due task in deadline
// order. Tasks scheduled by a running task wait for the next Advance.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}
	if len(s.tasks) == 0 {
		return
	}

	var due []*Task
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		switch {
		case t.cancelled:
		case t.at <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept

	// Stable insertion sort: due lists are short.
	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && due[j].at < due[j-1].at; j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	for _, t := range due {
		if t.cancelled {
			continue
		}
		t.fired = true
		fn := t.fn
		t.fn = nil
		if fn != nil {
			fn()
		}
	}
}
