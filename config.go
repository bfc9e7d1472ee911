package gesture

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultFlingVelocityThreshold = 300.0 // px/s
	defaultFlingDuration          = 600 * time.Millisecond
	defaultPanMinDistance         = 5.0
	defaultTapMaxDistance         = 10.0
	defaultTapMaxDuration         = 500 * time.Millisecond
	defaultLongPressMinDuration   = 500 * time.Millisecond
	defaultLongPressMaxDistance   = 10.0
	defaultVelocityWindow         = 100 * time.Millisecond
)

// ErrInvalidConfig is wrapped by Config.Validate for every rejected field.
var ErrInvalidConfig = errors.New("gesture: invalid config")

// Config holds arena-wide thresholds. Detector configs override the
// per-gesture values field by field.
type Config struct {
	// FlingVelocityThreshold is the release speed, in either axis, above
	// which a fling continuation starts.
	FlingVelocityThreshold float64       `mapstructure:"fling_velocity_threshold" yaml:"fling_velocity_threshold"`
	FlingDuration          time.Duration `mapstructure:"fling_duration" yaml:"fling_duration"`

	PanMinDistance       float64       `mapstructure:"pan_min_distance" yaml:"pan_min_distance"`
	TapMaxDistance       float64       `mapstructure:"tap_max_distance" yaml:"tap_max_distance"`
	TapMaxDuration       time.Duration `mapstructure:"tap_max_duration" yaml:"tap_max_duration"`
	LongPressMinDuration time.Duration `mapstructure:"long_press_min_duration" yaml:"long_press_min_duration"`
	LongPressMaxDistance float64       `mapstructure:"long_press_max_distance" yaml:"long_press_max_distance"`

	// VelocityWindow is how much move history feeds the release velocity
	// estimate when the host does not call SetVelocity.
	VelocityWindow time.Duration `mapstructure:"velocity_window" yaml:"velocity_window"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		FlingVelocityThreshold: defaultFlingVelocityThreshold,
		FlingDuration:          defaultFlingDuration,
		PanMinDistance:         defaultPanMinDistance,
		TapMaxDistance:         defaultTapMaxDistance,
		TapMaxDuration:         defaultTapMaxDuration,
		LongPressMinDuration:   defaultLongPressMinDuration,
		LongPressMaxDistance:   defaultLongPressMaxDistance,
		VelocityWindow:         defaultVelocityWindow,
	}
}

// Validate replaces non-positive fields with their defaults and returns an
// error listing every field it had to fix. The returned Config is always
// usable.
func (c Config) Validate() (Config, error) {
	d := DefaultConfig()
	var errs []error
	fixFloat := func(name string, v *float64, def float64) {
		if *v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, *v))
			*v = def
		}
	}
	fixDuration := func(name string, v *time.Duration, def time.Duration) {
		if *v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, *v))
			*v = def
		}
	}
	fixFloat("fling_velocity_threshold", &c.FlingVelocityThreshold, d.FlingVelocityThreshold)
	fixDuration("fling_duration", &c.FlingDuration, d.FlingDuration)
	fixFloat("pan_min_distance", &c.PanMinDistance, d.PanMinDistance)
	fixFloat("tap_max_distance", &c.TapMaxDistance, d.TapMaxDistance)
	fixDuration("tap_max_duration", &c.TapMaxDuration, d.TapMaxDuration)
	fixDuration("long_press_min_duration", &c.LongPressMinDuration, d.LongPressMinDuration)
	fixFloat("long_press_max_distance", &c.LongPressMaxDistance, d.LongPressMaxDistance)
	fixDuration("velocity_window", &c.VelocityWindow, d.VelocityWindow)
	return c, errors.Join(errs...)
}

// thresholds merges a detector config over the arena defaults for kind.
func (c Config) thresholds(kind GestureKind, dc DetectorConfig) DetectorConfig {
	out := dc
	switch kind {
	case KindPan, KindNative, KindDefault:
		if out.MinDistance <= 0 {
			out.MinDistance = c.PanMinDistance
		}
	case KindTap:
		if out.MaxDistance <= 0 {
			out.MaxDistance = c.TapMaxDistance
		}
		if out.MaxDuration <= 0 {
			out.MaxDuration = c.TapMaxDuration
		}
	case KindLongPress:
		if out.MaxDistance <= 0 {
			out.MaxDistance = c.LongPressMaxDistance
		}
		if out.MinDuration <= 0 {
			out.MinDuration = c.LongPressMinDuration
		}
	}
	return out
}
