package gesture

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FlingState is reported with every FlingScroller callback.
type FlingState uint8

const (
	FlingIdle   FlingState = iota // final callback, deltas are zero
	FlingActive                   // deceleration tick
)

// FlingFunc receives fling ticks. dx and dy are sign-inverted content deltas.
type FlingFunc func(state FlingState, dx, dy float64)

// FlingScroller synthesizes decelerating deltas after the pointer is lifted.
// Progress follows an ease-out curve over a fixed duration; each tick yields
// velocity * (1 - progress) * elapsed seconds per axis.
//
// There is no animation manager: the owner calls Update every frame.
type FlingScroller struct {
	duration time.Duration
	curve    ease.TweenFunc

	tween   *gween.Tween
	vx, vy  float64
	fn      FlingFunc
	running bool
}

// NewFlingScroller creates an idle scroller with the given duration and an
// ease-out cubic curve.
func NewFlingScroller(duration time.Duration) *FlingScroller {
	if duration <= 0 {
		duration = defaultFlingDuration
	}
	return &FlingScroller{duration: duration, curve: ease.OutCubic}
}

// Start begins a fling with velocity (vx, vy) in pixels per second. A fling
// already in flight is stopped first and receives its idle callback.
func (f *FlingScroller) Start(vx, vy float64, fn FlingFunc) {
	if f.running {
		f.Stop()
	}
	f.vx = vx
	f.vy = vy
	f.fn = fn
	f.tween = gween.New(0, 1, float32(f.duration.Seconds()), f.curve)
	f.running = true
}

// Stop cancels the fling. The callback receives one FlingIdle call. Calling
// Stop on an idle scroller, including from inside that callback, is a no-op.
func (f *FlingScroller) Stop() {
	if !f.running {
		return
	}
	f.finish()
}

// IsIdle reports whether no fling is in flight.
func (f *FlingScroller) IsIdle() bool {
	return !f.running
}

// Update advances the fling by dt and emits one tick, or the idle callback
// once the curve completes.
func (f *FlingScroller) Update(dt time.Duration) {
	if !f.running || dt <= 0 {
		return
	}
	secs := dt.Seconds()
	progress, done := f.tween.Update(float32(secs))
	if done {
		f.finish()
		return
	}
	remain := 1 - float64(progress)
	dx := -f.vx * remain * secs
	dy := -f.vy * remain * secs
	if f.fn != nil {
		f.fn(FlingActive, dx, dy)
	}
}

func (f *FlingScroller) finish() {
	f.running = false
	f.tween = nil
	fn := f.fn
	f.fn = nil
	if fn != nil {
		fn(FlingIdle, 0, 0)
	}
}
