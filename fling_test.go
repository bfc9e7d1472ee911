package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flingCall struct {
	state  FlingState
	dx, dy float64
}

func TestFlingScroller_DeceleratesToIdle(t *testing.T) {
	f := NewFlingScroller(100 * time.Millisecond)
	var calls []flingCall
	f.Start(400, -200, func(s FlingState, dx, dy float64) {
		calls = append(calls, flingCall{s, dx, dy})
	})
	require.False(t, f.IsIdle())

	for i := 0; i < 20 && !f.IsIdle(); i++ {
		f.Update(30 * time.Millisecond)
	}
	require.True(t, f.IsIdle())
	require.Greater(t, len(calls), 2)

	last := calls[len(calls)-1]
	assert.Equal(t, flingCall{FlingIdle, 0, 0}, last)

	ticks := calls[:len(calls)-1]
	for i, c := range ticks {
		assert.Equal(t, FlingActive, c.state)
		assert.Less(t, c.dx, 0.0, "x delta is sign-inverted")
		assert.Greater(t, c.dy, 0.0, "y delta is sign-inverted")
		if i > 0 {
			assert.LessOrEqual(t, -c.dx, -ticks[i-1].dx)
		}
	}
	// First tick: 400 px/s over 30ms, scaled by the remaining curve.
	assert.InDelta(t, -4.0, ticks[0].dx, 1.0)
}

func TestFlingScroller_StopSendsOneIdle(t *testing.T) {
	f := NewFlingScroller(time.Second)
	idle := 0
	f.Start(1000, 0, func(s FlingState, dx, dy float64) {
		if s == FlingIdle {
			idle++
		}
	})
	f.Update(16 * time.Millisecond)
	f.Stop()
	f.Stop()
	f.Update(16 * time.Millisecond)

	assert.Equal(t, 1, idle)
	assert.True(t, f.IsIdle())
}

func TestFlingScroller_ReentrantStop(t *testing.T) {
	f := NewFlingScroller(time.Second)
	var states []FlingState
	f.Start(1000, 0, func(s FlingState, dx, dy float64) {
		states = append(states, s)
		f.Stop()
	})
	f.Update(16 * time.Millisecond)

	assert.Equal(t, []FlingState{FlingActive, FlingIdle}, states)
}

func TestFlingScroller_RestartStopsPrevious(t *testing.T) {
	f := NewFlingScroller(time.Second)
	var first, second []FlingState
	f.Start(1000, 0, func(s FlingState, dx, dy float64) { first = append(first, s) })
	f.Start(500, 0, func(s FlingState, dx, dy float64) { second = append(second, s) })
	f.Update(16 * time.Millisecond)

	assert.Equal(t, []FlingState{FlingIdle}, first)
	assert.Equal(t, []FlingState{FlingActive}, second)
}

func TestFlingScroller_IdleUpdateIsNoop(t *testing.T) {
	f := NewFlingScroller(0)
	assert.True(t, f.IsIdle())
	assert.NotPanics(t, func() {
		f.Update(time.Second)
		f.Stop()
	})
}
