package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsDueTasksInDeadlineOrder(t *testing.T) {
	var s Scheduler
	var order []string
	s.After(30*time.Millisecond, func() { order = append(order, "c") })
	s.After(10*time.Millisecond, func() { order = append(order, "a") })
	s.After(20*time.Millisecond, func() { order = append(order, "b") })
	s.After(time.Second, func() { order = append(order, "late") })

	s.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 35*time.Millisecond, s.Now())
}

func TestScheduler_Cancel(t *testing.T) {
	var s Scheduler
	ran := false
	task := s.After(10*time.Millisecond, func() { ran = true })
	assert.True(t, task.Pending())

	task.Cancel()
	assert.False(t, task.Pending())
	s.Advance(time.Second)
	assert.False(t, ran)

	var nilTask *Task
	assert.NotPanics(t, nilTask.Cancel)
	assert.False(t, nilTask.Pending())
}

func TestScheduler_TaskScheduledByTaskWaits(t *testing.T) {
	var s Scheduler
	count := 0
	s.After(0, func() {
		count++
		s.After(0, func() { count++ })
	})

	s.Advance(0)
	assert.Equal(t, 1, count)
	s.Advance(0)
	assert.Equal(t, 2, count)
}

func TestScheduler_FiredTaskNotPending(t *testing.T) {
	var s Scheduler
	task := s.After(-time.Second, func() {})
	s.Advance(0)
	assert.False(t, task.Pending())
}
