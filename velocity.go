package gesture

import "time"

type velocitySample struct {
	x, y float64
	at   time.Duration
}

// velocityTracker estimates release velocity from the most recent pointer
// samples. It is only consulted when the host did not call SetVelocity for
// the current touch sequence.
type velocityTracker struct {
	window  time.Duration
	samples []velocitySample
}

func (v *velocityTracker) reset() {
	v.samples = v.samples[:0]
}

func (v *velocityTracker) add(x, y float64, at time.Duration) {
	v.samples = append(v.samples, velocitySample{x: x, y: y, at: at})
	// Drop samples older than the window, keeping at least two.
	cut := 0
	for cut < len(v.samples)-2 && at-v.samples[cut].at > v.window {
		cut++
	}
	if cut > 0 {
		v.samples = append(v.samples[:0], v.samples[cut:]...)
	}
}

// velocity returns pixels per second between the oldest and newest sample
// inside the window, in finger direction.
func (v *velocityTracker) velocity() (float64, float64) {
	if len(v.samples) < 2 {
		return 0, 0
	}
	first := v.samples[0]
	last := v.samples[len(v.samples)-1]
	dt := (last.at - first.at).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return (last.x - first.x) / dt, (last.y - first.y) / dt
}
