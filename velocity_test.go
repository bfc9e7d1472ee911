package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVelocityTracker(t *testing.T) {
	tests := []struct {
		name    string
		samples []velocitySample
		vx, vy  float64
	}{
		{"empty", nil, 0, 0},
		{"single sample", []velocitySample{{x: 5, y: 5}}, 0, 0},
		{"same instant", []velocitySample{{0, 0, 0}, {10, 0, 0}}, 0, 0},
		{"steady", []velocitySample{
			{0, 0, 0},
			{10, -5, 10 * time.Millisecond},
			{20, -10, 20 * time.Millisecond},
		}, 1000, -500},
		{"old samples dropped", []velocitySample{
			{0, 0, 0},
			{500, 0, 10 * time.Millisecond},
			{500, 0, 300 * time.Millisecond},
			{510, 0, 310 * time.Millisecond},
		}, 1000, 0},
		{"keeps two samples across a pause", []velocitySample{
			{0, 0, 0},
			{40, 0, time.Second},
		}, 40, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := velocityTracker{window: 100 * time.Millisecond}
			for _, s := range tt.samples {
				v.add(s.x, s.y, s.at)
			}
			vx, vy := v.velocity()
			assert.InDelta(t, tt.vx, vx, 1e-9)
			assert.InDelta(t, tt.vy, vy, 1e-9)
		})
	}
}

func TestVelocityTracker_Reset(t *testing.T) {
	v := velocityTracker{window: time.Second}
	v.add(0, 0, 0)
	v.add(100, 0, 100*time.Millisecond)
	v.reset()
	vx, vy := v.velocity()
	assert.Zero(t, vx)
	assert.Zero(t, vy)
}
