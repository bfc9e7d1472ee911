package gesture

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_MemberRegistry(t *testing.T) {
	m := newFakeMember(7, NewDetector(70, KindPan))
	a := newTestArena(t, m)

	assert.True(t, a.IsMemberExist(7))
	assert.Same(t, m, a.GetMemberByID(7))
	assert.Equal(t, []int{7}, a.Detectors().MembersForGesture(70))

	require.NoError(t, a.RemoveMemberByID(7))
	assert.False(t, a.IsMemberExist(7))
	assert.Nil(t, a.GetMemberByID(7))
	assert.Empty(t, a.Detectors().MembersForGesture(70))

	assert.ErrorIs(t, a.RemoveMemberByID(7), ErrMemberNotFound)
	assert.ErrorIs(t, a.UpdateMember(m), ErrMemberNotFound)
	assert.ErrorIs(t, a.AddMember(nil), ErrNilMember)
}

func TestArena_UpdateMemberRebuildsHandlers(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindPan))
	a := newTestArena(t, m)
	old := a.Handler(1, 10)
	require.NotNil(t, old)

	m.detectors = map[int]*Detector{11: NewDetector(11, KindTap)}
	require.NoError(t, a.UpdateMember(m))

	assert.Nil(t, a.Handler(1, 10))
	require.NotNil(t, a.Handler(1, 11))
	assert.Equal(t, KindTap, a.Handler(1, 11).Kind())
	assert.Empty(t, a.Detectors().MembersForGesture(10))
	assert.Equal(t, []int{1}, a.Detectors().MembersForGesture(11))
}

func TestArena_AddMemberTwiceReplaces(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindPan))
	a := newTestArena(t, m, m)
	assert.Equal(t, []int{1}, a.Detectors().MembersForGesture(10))
}

func TestArena_SetGestureDetectorState(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindPan))
	a := newTestArena(t, m)

	assert.ErrorIs(t, a.SetGestureDetectorState(2, 10, StateFail), ErrMemberNotFound)
	assert.ErrorIs(t, a.SetGestureDetectorState(1, 99, StateFail), ErrDetectorNotFound)
	assert.ErrorIs(t, a.SetGestureDetectorState(1, 10, StateInit), ErrInvalidState)
	assert.ErrorIs(t, a.SetGestureDetectorState(1, 10, StateUndetermined), ErrInvalidState)

	require.NoError(t, a.SetGestureDetectorState(1, 10, StateFail))
	assert.Equal(t, StateFail, a.Handler(1, 10).State())
	assert.Equal(t, 1, m.count(10, EventEnd))

	// End after Fail stays Fail.
	require.NoError(t, a.SetGestureDetectorState(1, 10, StateEnd))
	assert.Equal(t, StateFail, a.Handler(1, 10).State())
}

func TestArena_ForcedFailHandsOver(t *testing.T) {
	child := newFakeMember(1, NewDetector(10, KindNative))
	parent := newFakeMember(2, NewDetector(20, KindPan))
	chainOf(child, parent)
	d := &touchDriver{a: newTestArena(t, child, parent)}

	d.down(child, 0, 0)
	require.NoError(t, d.a.SetGestureDetectorState(1, 10, StateFail))
	d.move(0, 30)

	w, ok := d.a.Winner()
	require.True(t, ok)
	assert.Equal(t, 2, w)
	assert.Equal(t, StateActive, d.a.Handler(2, 20).State())
}

func TestArena_HitTesterBuildsResponseChain(t *testing.T) {
	inner := newFakeMember(1, NewDetector(10, KindTap))
	outer := newFakeMember(2, NewDetector(20, KindPan))
	stranger := newFakeMember(3)
	a := newTestArena(t, inner, outer)

	var asked [2]float64
	a.SetHitTester(HitTesterFunc(func(x, y float64) []Member {
		asked = [2]float64{x, y}
		return []Member{inner, nil, stranger, outer, inner}
	}))
	d := &touchDriver{a: a}
	d.down(nil, 12, 34)

	assert.Equal(t, [2]float64{12, 34}, asked)
	assert.Equal(t, []int{1, 2}, a.BubbleChain())
	assert.Equal(t, []int{1, 2}, a.CompeteChain())
}

func TestArena_PresetChainWinsOverHitTester(t *testing.T) {
	inner := newFakeMember(1, NewDetector(10, KindTap))
	outer := newFakeMember(2, NewDetector(20, KindPan))
	chainOf(inner, outer)
	a := newTestArena(t, inner, outer)
	a.SetHitTester(HitTesterFunc(func(x, y float64) []Member { return nil }))

	d := &touchDriver{a: a}
	d.down(outer, 0, 0)
	assert.Equal(t, []int{2}, a.BubbleChain())

	// The preset applies to one down only.
	d.up(0, 0)
	d.down(nil, 0, 0)
	assert.Empty(t, a.BubbleChain())
}

func TestArena_BubbleReachesMembersOutsideCompeteChain(t *testing.T) {
	ma := newFakeMember(1, NewDetector(10, KindPan).ContinueWith(20))
	mb := newFakeMember(2, NewDetector(20, KindPan))
	mc := newFakeMember(3, NewDetector(30, KindTap))
	chainOf(ma, mb, mc)
	d := &touchDriver{a: newTestArena(t, ma, mb, mc)}

	d.down(ma, 0, 0)
	assert.Equal(t, []int{1, 2}, d.a.CompeteChain())
	assert.Equal(t, []int{1, 2, 3}, d.a.BubbleChain())

	d.move(1, 0)
	d.up(1, 0)
	assert.Equal(t, 1, mc.count(30, EventTouchesDown))
	assert.Equal(t, 1, mc.count(30, EventTouchesMove))
	assert.Equal(t, 1, mc.count(30, EventTouchesUp))
	assert.Empty(t, mc.names(30))
}

func TestArena_ListenersAndSink(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindTap))
	a := newTestArena(t, m)

	var heard []EventName
	handle := a.OnGestureEvent(func(ev GestureEvent) { heard = append(heard, ev.Name) })
	sink := &recordingSink{}
	a.SetEventSink(sink)

	d := &touchDriver{a: a}
	d.down(m, 0, 0)
	d.up(0, 0)
	want := []EventName{EventTouchesDown, EventBegin, EventTouchesUp, EventStart, EventEnd}
	assert.Equal(t, want, heard)
	assert.Len(t, sink.events, len(want))

	handle.Remove()
	handle.Remove()
	a.SetEventSink(nil)
	d.down(m, 0, 0)
	assert.Len(t, heard, len(want))
	assert.Len(t, sink.events, len(want))
}

type recordingSink struct {
	events []GestureEvent
}

func (s *recordingSink) EmitGestureEvent(ev GestureEvent) {
	s.events = append(s.events, ev)
}

func TestArena_Snapshot(t *testing.T) {
	child := newFakeMember(1, NewDetector(10, KindPan).SimultaneousWith(20))
	parent := newFakeMember(2, NewDetector(20, KindPan))
	chainOf(child, parent)
	d := &touchDriver{a: newTestArena(t, child, parent)}

	d.down(child, 0, 0)
	d.move(0, 30)

	s := d.a.Snapshot()
	assert.True(t, s.HasWinner)
	assert.Equal(t, 1, s.Winner)
	assert.True(t, s.HasLastWinner)
	assert.Equal(t, []int{2}, s.Simultaneous)
	assert.Equal(t, []int{1, 2}, s.CompeteChain)
	assert.False(t, s.Flinging)
	assert.Equal(t, []HandlerSnapshot{
		{MemberID: 1, GestureID: 10, Kind: KindPan, State: StateActive},
		{MemberID: 2, GestureID: 20, Kind: KindPan, State: StateActive},
	}, s.Handlers)
}

func TestArena_LogsFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := log.WithContext(context.Background())

	a := New(ctx, Config{FlingVelocityThreshold: -1})
	assert.Equal(t, DefaultConfig().FlingVelocityThreshold, a.Config().FlingVelocityThreshold)
	assert.Contains(t, buf.String(), `"component":"gesture-arena"`)
	assert.Contains(t, buf.String(), "fling_velocity_threshold")
}

func TestArena_MoveWithoutDownIsTolerated(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindPan))
	a := newTestArena(t, m)
	d := &touchDriver{a: a}

	assert.NotPanics(t, func() {
		d.move(10, 10)
		d.up(10, 10)
		a.DispatchTouchEventToArena(nil, nil)
		a.DispatchBubbleTouchEvent(nil, nil)
	})
	_, ok := a.Winner()
	assert.False(t, ok)
}

func TestArena_ListenerRemovingItselfKeepsOthers(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindTap))
	a := newTestArena(t, m)

	var first, second int
	var handle CallbackHandle
	handle = a.OnGestureEvent(func(GestureEvent) {
		first++
		handle.Remove()
	})
	a.OnGestureEvent(func(GestureEvent) { second++ })

	d := &touchDriver{a: a}
	d.down(m, 0, 0)

	assert.Equal(t, 1, first)
	assert.Equal(t, len(m.events), second)
}

func TestArena_ListenerRemovedByEarlierListenerSkipped(t *testing.T) {
	m := newFakeMember(1, NewDetector(10, KindTap))
	a := newTestArena(t, m)

	var later CallbackHandle
	var calls int
	a.OnGestureEvent(func(GestureEvent) { later.Remove() })
	later = a.OnGestureEvent(func(GestureEvent) { calls++ })

	d := &touchDriver{a: a}
	d.down(m, 0, 0)
	assert.Zero(t, calls)
}
