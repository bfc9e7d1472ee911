package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGestureKind_RoundTrip(t *testing.T) {
	for k := KindPan; k <= KindNative; k++ {
		got, ok := ParseGestureKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseGestureKind("swipe")
	assert.False(t, ok)
}

func TestState_Properties(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
		canWin   bool
	}{
		{StateInit, false, true},
		{StateBegin, false, true},
		{StateActive, false, true},
		{StateFail, true, false},
		{StateEnd, true, false},
		{StateUndetermined, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.IsTerminal())
			assert.Equal(t, tt.canWin, tt.state.canWin())
			parsed, ok := ParseState(tt.state.String())
			assert.True(t, ok)
			assert.Equal(t, tt.state, parsed)
		})
	}
}

func TestCallbackFlags_Has(t *testing.T) {
	f := CallbackBegin | CallbackTouchesUp
	assert.True(t, f.Has(CallbackBegin))
	assert.True(t, f.Has(CallbackTouchesUp))
	assert.False(t, f.Has(CallbackEnd))
	assert.False(t, f.Has(CallbackBegin|CallbackEnd))
	assert.True(t, CallbackAll.Has(CallbackGesture|CallbackTouches))

	for _, name := range []EventName{EventBegin, EventUpdate, EventStart, EventEnd,
		EventTouchesDown, EventTouchesMove, EventTouchesUp, EventTouchesCancel} {
		assert.NotZero(t, name.flag(), name)
		assert.True(t, CallbackAll.Has(name.flag()))
	}
}

func TestIsStop(t *testing.T) {
	assert.True(t, isStop(StopDelta, StopDelta))
	assert.False(t, isStop(StopDelta, 0))
	assert.False(t, isStop(0, 0))
}
