package scene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/phanxgames/gesture"
)

const (
	defaultTick  = 16 * time.Millisecond
	maxPlayTicks = 100_000
)

// DetectorSpec declares one detector of a scripted node.
type DetectorSpec struct {
	ID            int     `json:"id"`
	Kind          string  `json:"kind"`
	WaitFor       []int   `json:"waitFor,omitempty"`
	ContinueWith  []int   `json:"continueWith,omitempty"`
	Simultaneous  []int   `json:"simultaneous,omitempty"`
	MinDistance   float64 `json:"minDistance,omitempty"`
	MaxDistance   float64 `json:"maxDistance,omitempty"`
	MinDurationMS int     `json:"minDurationMs,omitempty"`
	MaxDurationMS int     `json:"maxDurationMs,omitempty"`
}

// NodeSpec declares one node of a scripted scene. Parent names an earlier
// node; empty means the root.
type NodeSpec struct {
	Name          string         `json:"name"`
	Parent        string         `json:"parent,omitempty"`
	X             float64        `json:"x,omitempty"`
	Y             float64        `json:"y,omitempty"`
	Width         float64        `json:"width"`
	Height        float64        `json:"height"`
	ContentWidth  float64        `json:"contentWidth,omitempty"`
	ContentHeight float64        `json:"contentHeight,omitempty"`
	ZIndex        int            `json:"zIndex,omitempty"`
	Detectors     []DetectorSpec `json:"detectors,omitempty"`
}

// Step represents a single action in a script.
type Step struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	MS     int     `json:"ms,omitempty"`

	// velocity
	VX float64 `json:"vx,omitempty"`
	VY float64 `json:"vy,omitempty"`

	// fail, state and expect
	Node    string `json:"node,omitempty"`
	Gesture int    `json:"gesture,omitempty"`
	State   string `json:"state,omitempty"`

	// expect
	Winner   string   `json:"winner,omitempty"`
	NoWinner bool     `json:"noWinner,omitempty"`
	Flinging *bool    `json:"flinging,omitempty"`
	ScrollX  *float64 `json:"scrollX,omitempty"`
	ScrollY  *float64 `json:"scrollY,omitempty"`
}

// Script is the top-level JSON structure of a replay script: a node tree
// and the touch input to play against it.
type Script struct {
	Name   string     `json:"name,omitempty"`
	TickMS int        `json:"tickMs,omitempty"`
	Nodes  []NodeSpec `json:"nodes"`
	Steps  []Step     `json:"steps"`
}

// LoadScript parses a JSON script.
func LoadScript(data []byte) (*Script, error) {
	var sc Script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	return &sc, nil
}

// Tick returns the duration of one script frame.
func (sc *Script) Tick() time.Duration {
	if sc.TickMS <= 0 {
		return defaultTick
	}
	return time.Duration(sc.TickMS) * time.Millisecond
}

// Validate checks node names, parents, gesture kinds and step actions
// without building anything.
func (sc *Script) Validate() error {
	var errs []error
	names := make(map[string]bool, len(sc.Nodes))
	gestures := make(map[int]string)
	for i, ns := range sc.Nodes {
		switch {
		case ns.Name == "":
			errs = append(errs, fmt.Errorf("node %d: missing name", i))
		case names[ns.Name]:
			errs = append(errs, fmt.Errorf("node %q: duplicate name", ns.Name))
		}
		if ns.Parent != "" && !names[ns.Parent] {
			errs = append(errs, fmt.Errorf("node %q: unknown parent %q", ns.Name, ns.Parent))
		}
		names[ns.Name] = true
		for _, ds := range ns.Detectors {
			if _, ok := gesture.ParseGestureKind(ds.Kind); !ok {
				errs = append(errs, fmt.Errorf("node %q: unknown gesture kind %q", ns.Name, ds.Kind))
			}
			if owner, dup := gestures[ds.ID]; dup {
				errs = append(errs, fmt.Errorf("node %q: gesture id %d already declared by %q", ns.Name, ds.ID, owner))
			}
			gestures[ds.ID] = ns.Name
		}
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "down", "move", "up", "cancel", "tap", "drag", "wait", "velocity":
		case "fail", "state":
			if !names[st.Node] {
				errs = append(errs, fmt.Errorf("step %d: unknown node %q", i, st.Node))
			}
			if st.Action == "state" {
				if _, ok := gesture.ParseState(st.State); !ok {
					errs = append(errs, fmt.Errorf("step %d: unknown state %q", i, st.State))
				}
			}
		case "expect":
			if st.Winner != "" && !names[st.Winner] {
				errs = append(errs, fmt.Errorf("step %d: unknown winner %q", i, st.Winner))
			}
			if st.Node != "" && !names[st.Node] {
				errs = append(errs, fmt.Errorf("step %d: unknown node %q", i, st.Node))
			}
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown action %q", i, st.Action))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("validate script: %w", err)
	}
	return nil
}

// Build creates a scene holding the script's node tree with a runner
// attached.
func (sc *Script) Build(ctx context.Context, cfg gesture.Config) (*Scene, *Runner, error) {
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	s := NewScene(ctx, cfg)
	nodes := make(map[string]*Node, len(sc.Nodes))
	for _, ns := range sc.Nodes {
		n := NewScrollView(ns.Name, ns.Width, ns.Height, ns.ContentWidth, ns.ContentHeight)
		n.X, n.Y = ns.X, ns.Y
		n.ZIndex = ns.ZIndex
		for _, ds := range ns.Detectors {
			n.AddDetector(ds.detector())
		}
		parent := s.Root()
		if ns.Parent != "" {
			parent = nodes[ns.Parent]
		}
		parent.AddChild(n)
		nodes[ns.Name] = n
	}
	r := &Runner{steps: sc.Steps, tick: sc.Tick(), nodes: nodes}
	s.SetRunner(r)
	return s, r, nil
}

func (ds DetectorSpec) detector() *gesture.Detector {
	kind, _ := gesture.ParseGestureKind(ds.Kind)
	d := gesture.NewDetector(ds.ID, kind)
	d.Relations = gesture.Relations{
		WaitFor:      ds.WaitFor,
		ContinueWith: ds.ContinueWith,
		Simultaneous: ds.Simultaneous,
	}
	d.Config = gesture.DetectorConfig{
		MinDistance: ds.MinDistance,
		MaxDistance: ds.MaxDistance,
		MinDuration: time.Duration(ds.MinDurationMS) * time.Millisecond,
		MaxDuration: time.Duration(ds.MaxDurationMS) * time.Millisecond,
	}
	return d
}

// Result is the outcome of one expect step.
type Result struct {
	Step   int
	Label  string
	Passed bool
	Detail string
}

// Runner sequences injected touch input, host overrides and expectations
// across scene ticks. Attach it to a Scene via SetRunner.
type Runner struct {
	steps     []Step
	tick      time.Duration
	nodes     map[string]*Node
	cursor    int
	waitCount int
	done      bool
	results   []Result
}

// Done reports whether all steps of the script have been executed.
func (r *Runner) Done() bool {
	return r.done
}

// Results returns the outcome of every expect step run so far.
func (r *Runner) Results() []Result {
	return r.results
}

// Failed reports whether any expectation failed.
func (r *Runner) Failed() bool {
	for _, res := range r.results {
		if !res.Passed {
			return true
		}
	}
	return false
}

// Node returns the scripted node with the given name.
func (r *Runner) Node(name string) *Node {
	return r.nodes[name]
}

// step advances the runner by one tick. Called from Scene.Step and
// Scene.Update before input is processed.
func (r *Runner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	i := r.cursor
	st := r.steps[i]
	r.cursor++

	switch st.Action {
	case "down":
		s.InjectDown(st.X, st.Y)
	case "move":
		s.InjectMove(st.X, st.Y)
	case "up":
		s.InjectUp(st.X, st.Y)
	case "cancel":
		s.InjectCancel()
	case "tap":
		s.InjectTap(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wait":
		frames := st.Frames
		if st.MS > 0 {
			frames = int(math.Ceil(float64(time.Duration(st.MS)*time.Millisecond) / float64(r.tick)))
		}
		if frames > 0 {
			r.waitCount = frames - 1 // this tick counts as one
		}
	case "velocity":
		s.arena.SetVelocity(st.VX, st.VY)
	case "fail":
		r.setState(s, i, st, gesture.StateFail)
	case "state":
		state, _ := gesture.ParseState(st.State)
		r.setState(s, i, st, state)
	case "expect":
		r.expect(s, i, st)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}

func (r *Runner) setState(s *Scene, i int, st Step, state gesture.State) {
	n := r.nodes[st.Node]
	if n == nil {
		return
	}
	if err := s.arena.SetGestureDetectorState(n.GestureArenaMemberID(), st.Gesture, state); err != nil {
		s.log.Warn().Err(err).Int("step", i).Str("node", st.Node).Msg("script state override")
	}
}

// expect checks every assertion the step carries and records one Result.
func (r *Runner) expect(s *Scene, i int, st Step) {
	var failures []string
	winner, hasWinner := s.arena.Winner()
	winnerName := "-"
	if n := s.members[winner]; hasWinner && n != nil {
		winnerName = n.Name
	}

	if st.Winner != "" && winnerName != st.Winner {
		failures = append(failures, fmt.Sprintf("winner %s, want %s", winnerName, st.Winner))
	}
	if st.NoWinner && hasWinner {
		failures = append(failures, fmt.Sprintf("winner %s, want none", winnerName))
	}
	if st.Flinging != nil && s.arena.IsFlinging() != *st.Flinging {
		failures = append(failures, fmt.Sprintf("flinging %t, want %t", s.arena.IsFlinging(), *st.Flinging))
	}

	if n := r.nodes[st.Node]; n != nil {
		if st.State != "" {
			want, _ := gesture.ParseState(st.State)
			h := s.arena.Handler(n.GestureArenaMemberID(), st.Gesture)
			switch {
			case h == nil:
				failures = append(failures, fmt.Sprintf("%s has no handler for gesture %d", st.Node, st.Gesture))
			case h.State() != want:
				failures = append(failures, fmt.Sprintf("%s gesture %d is %s, want %s", st.Node, st.Gesture, h.State(), want))
			}
		}
		if st.ScrollX != nil && math.Abs(n.ScrollX()-*st.ScrollX) > 0.5 {
			failures = append(failures, fmt.Sprintf("%s scrollX %.1f, want %.1f", st.Node, n.ScrollX(), *st.ScrollX))
		}
		if st.ScrollY != nil && math.Abs(n.ScrollY()-*st.ScrollY) > 0.5 {
			failures = append(failures, fmt.Sprintf("%s scrollY %.1f, want %.1f", st.Node, n.ScrollY(), *st.ScrollY))
		}
	}

	res := Result{Step: i, Label: st.Label, Passed: len(failures) == 0}
	if !res.Passed {
		res.Detail = fmt.Sprint(failures)
		s.log.Debug().Int("step", i).Str("label", st.Label).Strs("failures", failures).Msg("expectation failed")
	}
	r.results = append(r.results, res)
}

// Play attaches r and steps the scene by tick until the script is done.
func (s *Scene) Play(r *Runner) error {
	s.SetRunner(r)
	for i := 0; !r.Done(); i++ {
		if i >= maxPlayTicks {
			return fmt.Errorf("play script: not done after %d ticks", maxPlayTicks)
		}
		s.Step(r.tick)
	}
	return nil
}
