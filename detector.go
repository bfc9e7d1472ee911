package gesture

import (
	"cmp"
	"slices"
	"time"
)

// CallbackFlags is a bitmask of the gesture callbacks a Detector enables.
// Values can be combined with bitwise OR (e.g. CallbackBegin | CallbackEnd).
type CallbackFlags uint16

const (
	CallbackBegin CallbackFlags = 1 << iota
	CallbackUpdate
	CallbackStart
	CallbackEnd
	CallbackTouchesDown
	CallbackTouchesMove
	CallbackTouchesUp
	CallbackTouchesCancel

	// CallbackGesture enables the four lifecycle callbacks.
	CallbackGesture = CallbackBegin | CallbackUpdate | CallbackStart | CallbackEnd
	// CallbackTouches enables the four raw touch callbacks.
	CallbackTouches = CallbackTouchesDown | CallbackTouchesMove | CallbackTouchesUp | CallbackTouchesCancel
	// CallbackAll enables every callback.
	CallbackAll = CallbackGesture | CallbackTouches
)

// Has reports whether every bit of f is set.
func (c CallbackFlags) Has(f CallbackFlags) bool {
	return c&f == f
}

// Relations declares precedence and co-activation rules against other
// gesture ids in the arena.
type Relations struct {
	WaitFor      []int `json:"waitFor,omitempty" mapstructure:"wait_for"`
	ContinueWith []int `json:"continueWith,omitempty" mapstructure:"continue_with"`
	Simultaneous []int `json:"simultaneous,omitempty" mapstructure:"simultaneous"`
}

// affectsChain reports whether the relations reshape a compete chain.
func (r Relations) affectsChain() bool {
	return len(r.WaitFor) > 0 || len(r.ContinueWith) > 0
}

// DetectorConfig holds the recognition thresholds of a Detector. Zero values
// fall back to the arena Config defaults.
type DetectorConfig struct {
	MinDistance float64       `json:"minDistance,omitempty"`
	MaxDistance float64       `json:"maxDistance,omitempty"`
	MinDuration time.Duration `json:"minDuration,omitempty"`
	MaxDuration time.Duration `json:"maxDuration,omitempty"`
}

// Detector is the immutable declaration of one gesture on a member. ID must
// be unique across the whole arena, not only within the member.
type Detector struct {
	ID        int
	Kind      GestureKind
	Config    DetectorConfig
	Callbacks CallbackFlags
	Relations Relations
}

// NewDetector creates a detector with every callback enabled.
func NewDetector(id int, kind GestureKind) *Detector {
	return &Detector{ID: id, Kind: kind, Callbacks: CallbackAll}
}

// WaitFor appends gesture ids this detector defers to and returns d.
func (d *Detector) WaitFor(ids ...int) *Detector {
	d.Relations.WaitFor = append(d.Relations.WaitFor, ids...)
	return d
}

// ContinueWith appends gesture ids that continue this detector and returns d.
func (d *Detector) ContinueWith(ids ...int) *Detector {
	d.Relations.ContinueWith = append(d.Relations.ContinueWith, ids...)
	return d
}

// SimultaneousWith appends gesture ids allowed to run concurrently and returns d.
func (d *Detector) SimultaneousWith(ids ...int) *Detector {
	d.Relations.Simultaneous = append(d.Relations.Simultaneous, ids...)
	return d
}

// sortedDetectors returns the detectors of m in ascending gesture id order.
// Nil entries are dropped.
func sortedDetectors(detectors map[int]*Detector) []*Detector {
	out := make([]*Detector, 0, len(detectors))
	for _, d := range detectors {
		if d != nil {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b *Detector) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
