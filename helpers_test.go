package gesture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeMember is a scrollable node with a parent link that records the
// gesture events delivered to it.
type fakeMember struct {
	id        int
	parent    *fakeMember
	detectors map[int]*Detector

	scrollX, scrollY float64
	maxScroll        float64
	events           []GestureEvent
}

func newFakeMember(id int, detectors ...*Detector) *fakeMember {
	m := &fakeMember{id: id, detectors: make(map[int]*Detector), maxScroll: 1000}
	for _, d := range detectors {
		m.detectors[d.ID] = d
	}
	return m
}

func (m *fakeMember) GestureArenaMemberID() int           { return m.id }
func (m *fakeMember) GestureDetectors() map[int]*Detector { return m.detectors }
func (m *fakeMember) ScrollX() float64                    { return m.scrollX }
func (m *fakeMember) ScrollY() float64                    { return m.scrollY }

func (m *fakeMember) ScrollBy(dx, dy float64) {
	m.scrollX = min(max(m.scrollX+dx, 0), m.maxScroll)
	m.scrollY = min(max(m.scrollY+dy, 0), m.maxScroll)
}

func (m *fakeMember) CanConsumeGesture(dx, dy float64) bool {
	if dy > 0 || dx > 0 {
		return m.scrollY < m.maxScroll || m.scrollX < m.maxScroll
	}
	return m.scrollY > 0 || m.scrollX > 0
}

func (m *fakeMember) IsAtBorder(isStart bool) bool {
	if isStart {
		return m.scrollX == 0 && m.scrollY == 0
	}
	return m.scrollX == m.maxScroll || m.scrollY == m.maxScroll
}

func (m *fakeMember) ParentGestureMember() Member {
	if m.parent == nil {
		return nil
	}
	return m.parent
}

func (m *fakeMember) OnGestureEvent(ev GestureEvent) {
	m.events = append(m.events, ev)
}

// count returns how many times name fired for gestureID.
func (m *fakeMember) count(gestureID int, name EventName) int {
	n := 0
	for _, ev := range m.events {
		if ev.GestureID == gestureID && ev.Name == name {
			n++
		}
	}
	return n
}

// names returns the lifecycle event names fired for gestureID, in order,
// leaving out raw touch callbacks.
func (m *fakeMember) names(gestureID int) []EventName {
	var out []EventName
	for _, ev := range m.events {
		if ev.GestureID != gestureID {
			continue
		}
		switch ev.Name {
		case EventBegin, EventStart, EventUpdate, EventEnd:
			out = append(out, ev.Name)
		}
	}
	return out
}

func (m *fakeMember) updates(gestureID int) []GestureParams {
	var out []GestureParams
	for _, ev := range m.events {
		if ev.GestureID == gestureID && ev.Name == EventUpdate {
			out = append(out, ev.Params)
		}
	}
	return out
}

// chainOf links members innermost first and returns the innermost.
func chainOf(members ...*fakeMember) *fakeMember {
	for i := 0; i+1 < len(members); i++ {
		members[i].parent = members[i+1]
	}
	return members[0]
}

func newTestArena(t *testing.T, members ...*fakeMember) *Arena {
	t.Helper()
	a := New(context.Background(), DefaultConfig())
	for _, m := range members {
		require.NoError(t, a.AddMember(m))
	}
	return a
}

// touchDriver feeds a touch sequence into an arena with explicit timestamps.
type touchDriver struct {
	a   *Arena
	now time.Duration
}

func (d *touchDriver) send(phase TouchPhase, x, y float64) {
	d.a.DispatchTouchEventToArena(&TouchEvent{
		Phase:     phase,
		X:         x,
		Y:         y,
		Pointers:  []Pointer{{ID: 0, X: x, Y: y}},
		Timestamp: d.now,
	}, nil)
}

func (d *touchDriver) down(target Member, x, y float64) {
	if target != nil {
		d.a.SetActiveUIToArenaAtDownEvent(target)
	}
	d.send(TouchDown, x, y)
}

func (d *touchDriver) move(x, y float64)   { d.send(TouchMove, x, y) }
func (d *touchDriver) up(x, y float64)     { d.send(TouchUp, x, y) }
func (d *touchDriver) cancel(x, y float64) { d.send(TouchCancel, x, y) }

// wait advances both the event timestamps and the arena clock.
func (d *touchDriver) wait(dt time.Duration) {
	d.now += dt
	d.a.Update(dt)
}

// pause advances event timestamps only.
func (d *touchDriver) pause(dt time.Duration) {
	d.now += dt
}
