package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultIsValid(t *testing.T) {
	cfg, err := DefaultConfig().Validate()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_ValidateFixesFields(t *testing.T) {
	in := DefaultConfig()
	in.TapMaxDistance = 0
	in.FlingDuration = -time.Second

	cfg, err := in.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "tap_max_distance")
	assert.Contains(t, err.Error(), "fling_duration")
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Thresholds(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		kind GestureKind
		in   DetectorConfig
		want DetectorConfig
	}{
		{"pan default", KindPan, DetectorConfig{}, DetectorConfig{MinDistance: cfg.PanMinDistance}},
		{"pan override", KindPan, DetectorConfig{MinDistance: 12}, DetectorConfig{MinDistance: 12}},
		{"tap default", KindTap, DetectorConfig{},
			DetectorConfig{MaxDistance: cfg.TapMaxDistance, MaxDuration: cfg.TapMaxDuration}},
		{"long press default", KindLongPress, DetectorConfig{MinDuration: time.Second},
			DetectorConfig{MaxDistance: cfg.LongPressMaxDistance, MinDuration: time.Second}},
		{"fling untouched", KindFling, DetectorConfig{}, DetectorConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.thresholds(tt.kind, tt.in))
		})
	}
}
