package gesture

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Arena owns the members of one interactive tree, their recognizers and the
// arbitration state. All methods must be called from a single goroutine,
// typically the host's frame loop.
type Arena struct {
	log zerolog.Logger
	cfg Config

	members  map[int]Member
	declared map[int]map[int]*Detector // detectors as registered, by member
	handlers map[int][]*Handler        // lazily built, ordered by gesture id

	detectors *DetectorManager
	trigger   *trigger
	clock     *Scheduler

	hitTester HitTester
	response  []int // response chain for the next down, innermost first
	preset    bool  // response set by SetActiveUIToArenaAtDownEvent
	bubble    []int

	velocity     velocityTracker
	hostVelocity bool
	vx, vy       float64

	tracking     bool
	lastX, lastY float64

	listeners listenerRegistry
	sink      EventSink
}

// New creates an empty arena. The logger is taken from ctx; a context
// without one yields a silent arena. Invalid config fields are replaced by
// their defaults and logged.
func New(ctx context.Context, cfg Config) *Arena {
	log := zerolog.Ctx(ctx).With().Str("component", "gesture-arena").Logger()
	cfg, err := cfg.Validate()
	if err != nil {
		log.Warn().Err(err).Msg("config fields replaced with defaults")
	}
	a := &Arena{
		log:      log,
		cfg:      cfg,
		members:  make(map[int]Member),
		declared: make(map[int]map[int]*Detector),
		handlers: make(map[int][]*Handler),
		clock:    &Scheduler{},
		velocity: velocityTracker{window: cfg.VelocityWindow},
	}
	a.detectors = newDetectorManager(log, a)
	a.trigger = newTrigger(a, log)
	return a
}

// Config returns the validated configuration.
func (a *Arena) Config() Config { return a.cfg }

// Detectors returns the relation resolver.
func (a *Arena) Detectors() *DetectorManager { return a.detectors }

// Clock returns the arena's frame clock.
func (a *Arena) Clock() *Scheduler { return a.clock }

// --- Members ---

// AddMember registers m and its declared detectors. Adding an id that is
// already registered replaces the previous member as UpdateMember does.
func (a *Arena) AddMember(m Member) error {
	if m == nil {
		return ErrNilMember
	}
	id := m.GestureArenaMemberID()
	if _, ok := a.members[id]; ok {
		a.unregister(id)
	}
	a.members[id] = m
	a.register(id, m)
	a.log.Debug().Int("member_id", id).Int("detectors", len(a.declared[id])).Msg("member added")
	return nil
}

// UpdateMember re-reads the detectors of a registered member. Its handlers
// are destroyed and rebuilt on next use.
func (a *Arena) UpdateMember(m Member) error {
	if m == nil {
		return ErrNilMember
	}
	id := m.GestureArenaMemberID()
	if _, ok := a.members[id]; !ok {
		return fmt.Errorf("update member %d: %w", id, ErrMemberNotFound)
	}
	a.unregister(id)
	a.members[id] = m
	a.register(id, m)
	return nil
}

// RemoveMember unregisters m. Safe to call during arbitration; every chain
// slot that still names it resolves to absent.
func (a *Arena) RemoveMember(m Member) {
	if m == nil {
		return
	}
	_ = a.RemoveMemberByID(m.GestureArenaMemberID())
}

// RemoveMemberByID unregisters the member with the given id.
func (a *Arena) RemoveMemberByID(id int) error {
	if _, ok := a.members[id]; !ok {
		return fmt.Errorf("remove member %d: %w", id, ErrMemberNotFound)
	}
	a.unregister(id)
	delete(a.members, id)
	a.log.Debug().Int("member_id", id).Msg("member removed")
	return nil
}

// IsMemberExist reports whether id is registered.
func (a *Arena) IsMemberExist(id int) bool {
	_, ok := a.members[id]
	return ok
}

// GetMemberByID returns the registered member or nil.
func (a *Arena) GetMemberByID(id int) Member {
	return a.members[id]
}

func (a *Arena) lookupMember(id int) Member {
	return a.members[id]
}

func (a *Arena) register(id int, m Member) {
	declared := make(map[int]*Detector)
	for _, d := range sortedDetectors(m.GestureDetectors()) {
		declared[d.ID] = d
		a.detectors.RegisterDetector(id, d)
	}
	a.declared[id] = declared
}

func (a *Arena) unregister(id int) {
	for _, d := range sortedDetectors(a.declared[id]) {
		a.detectors.UnregisterDetector(id, d)
	}
	delete(a.declared, id)
	for _, h := range a.handlers[id] {
		h.cancelTask()
	}
	delete(a.handlers, id)
}

// handlersFor returns the member's handlers ordered by gesture id, building
// them on first use. Absent members have none.
func (a *Arena) handlersFor(id int) []*Handler {
	if a.lookupMember(id) == nil {
		return nil
	}
	if hs, ok := a.handlers[id]; ok {
		return hs
	}
	detectors := sortedDetectors(a.declared[id])
	hs := make([]*Handler, 0, len(detectors))
	for _, d := range detectors {
		hs = append(hs, newHandler(a, id, d))
	}
	a.handlers[id] = hs
	return hs
}

// Handler returns the handler of (memberID, gestureID), or nil.
func (a *Arena) Handler(memberID, gestureID int) *Handler {
	for _, h := range a.handlersFor(memberID) {
		if h.GestureID() == gestureID {
			return h
		}
	}
	return nil
}

// --- Input ---

// SetHitTester installs the hit tester used to build the response chain at
// every down that was not preceded by SetActiveUIToArenaAtDownEvent.
func (a *Arena) SetHitTester(ht HitTester) {
	a.hitTester = ht
}

// SetActiveUIToArenaAtDownEvent sets the response chain for the next down to
// target followed by its registered ancestors, found through ParentMember.
func (a *Arena) SetActiveUIToArenaAtDownEvent(target Member) {
	a.response = a.response[:0]
	a.preset = true
	for m := target; m != nil; {
		id := m.GestureArenaMemberID()
		if a.IsMemberExist(id) && !slices.Contains(a.response, id) {
			a.response = append(a.response, id)
		}
		p, ok := m.(ParentMember)
		if !ok {
			break
		}
		m = p.ParentGestureMember()
	}
}

// SetVelocity overrides the release velocity, in pixels per second in finger
// direction, for the current touch sequence.
func (a *Arena) SetVelocity(vx, vy float64) {
	a.hostVelocity = true
	a.vx, a.vy = vx, vy
}

// DispatchTouchEventToArena feeds one touch phase into the arena: bubble
// dispatch to every member in the response chain, then arbitration.
func (a *Arena) DispatchTouchEventToArena(ev *TouchEvent, snap *TouchSnapshot) {
	if ev == nil {
		return
	}
	if snap == nil {
		snap = &TouchSnapshot{Timestamp: ev.Timestamp, X: ev.X, Y: ev.Y, PageX: ev.X, PageY: ev.Y}
	}

	switch ev.Phase {
	case TouchDown:
		a.beginSequence(ev)
		compete := a.detectors.ConvertResponseChainToCompeteChain(a.bubble)
		a.log.Debug().Ints("response", a.bubble).Ints("compete", compete).Msg("touch down")
		a.DispatchBubbleTouchEvent(ev, snap)
		a.trigger.down(ev, snap, compete, a.bubble)

	case TouchMove:
		if !a.tracking {
			a.tracking = true
			a.lastX, a.lastY = ev.X, ev.Y
		}
		dx, dy := a.lastX-ev.X, a.lastY-ev.Y
		a.lastX, a.lastY = ev.X, ev.Y
		a.velocity.add(ev.X, ev.Y, ev.Timestamp)
		a.DispatchBubbleTouchEvent(ev, snap)
		a.trigger.move(ev, snap, dx, dy)

	case TouchUp, TouchCancel:
		a.velocity.add(ev.X, ev.Y, ev.Timestamp)
		vx, vy := a.vx, a.vy
		if !a.hostVelocity {
			vx, vy = a.velocity.velocity()
		}
		a.tracking = false
		a.DispatchBubbleTouchEvent(ev, snap)
		a.trigger.up(ev, snap, vx, vy)
	}
}

func (a *Arena) beginSequence(ev *TouchEvent) {
	if !a.preset {
		a.response = a.response[:0]
		if a.hitTester != nil {
			for _, m := range a.hitTester.HitTest(ev.X, ev.Y) {
				if m == nil {
					continue
				}
				id := m.GestureArenaMemberID()
				if a.IsMemberExist(id) && !slices.Contains(a.response, id) {
					a.response = append(a.response, id)
				}
			}
		}
	}
	a.preset = false
	a.bubble = slices.Clone(a.response)

	a.tracking = true
	a.lastX, a.lastY = ev.X, ev.Y
	a.hostVelocity = false
	a.vx, a.vy = 0, 0
	a.velocity.reset()
	a.velocity.add(ev.X, ev.Y, ev.Timestamp)
}

// DispatchBubbleTouchEvent delivers the raw phase to every handler of every
// member in the bubble chain, winner or not, so all recognizers keep their
// touch history and onTouches* callbacks fire.
func (a *Arena) DispatchBubbleTouchEvent(ev *TouchEvent, snap *TouchSnapshot) {
	if ev == nil {
		return
	}
	for _, id := range a.bubble {
		for _, h := range a.handlersFor(id) {
			if snap != nil {
				h.snapshot = *snap
			}
			h.observe(ev)
			h.onTouches(ev.Phase)
		}
	}
}

// SetGestureDetectorState forces the state of one handler, letting the host
// settle native recognizers. Begin, Active, Fail and End are accepted.
func (a *Arena) SetGestureDetectorState(memberID, gestureID int, s State) error {
	if a.lookupMember(memberID) == nil {
		return fmt.Errorf("set state of member %d: %w", memberID, ErrMemberNotFound)
	}
	h := a.Handler(memberID, gestureID)
	if h == nil {
		return fmt.Errorf("set state of gesture %d on member %d: %w", gestureID, memberID, ErrDetectorNotFound)
	}
	if !h.force(s) {
		return fmt.Errorf("set state %s: %w", s, ErrInvalidState)
	}
	a.log.Debug().Int("member_id", memberID).Int("gesture_id", gestureID).
		Stringer("state", h.State()).Msg("detector state forced")
	return nil
}

// Update advances the arena clock by dt: due handler timers run, then the
// fling scroller ticks.
func (a *Arena) Update(dt time.Duration) {
	a.clock.Advance(dt)
	a.trigger.fling.Update(dt)
}

// IsFlinging reports whether a fling continuation is in flight.
func (a *Arena) IsFlinging() bool {
	return !a.trigger.fling.IsIdle()
}

// --- Events ---

// OnGestureEvent registers fn for every gesture event of the arena.
func (a *Arena) OnGestureEvent(fn func(GestureEvent)) CallbackHandle {
	return a.listeners.add(fn)
}

// SetEventSink installs a sink receiving every gesture event. nil removes it.
func (a *Arena) SetEventSink(sink EventSink) {
	a.sink = sink
}

func (a *Arena) fire(m Member, ev GestureEvent) {
	if r, ok := m.(GestureEventReceiver); ok {
		r.OnGestureEvent(ev)
	}
	a.listeners.fire(ev)
	if a.sink != nil {
		a.sink.EmitGestureEvent(ev)
	}
}

// --- Introspection ---

// Winner returns the current winner, if any.
func (a *Arena) Winner() (int, bool) {
	w := a.trigger.winner
	if !a.trigger.alive(w) {
		return 0, false
	}
	return w, true
}

// CompeteChain returns a copy of the compete chain of the current sequence.
func (a *Arena) CompeteChain() []int {
	return slices.Clone(a.trigger.chain)
}

// BubbleChain returns a copy of the response chain of the current sequence.
func (a *Arena) BubbleChain() []int {
	return slices.Clone(a.bubble)
}

// HandlerSnapshot is the state of one handler at snapshot time.
type HandlerSnapshot struct {
	MemberID  int
	GestureID int
	Kind      GestureKind
	State     State
}

// Snapshot is a debugging view of the arbitration state.
type Snapshot struct {
	Winner        int
	HasWinner     bool
	LastWinner    int
	HasLastWinner bool
	Simultaneous  []int
	CompeteChain  []int
	BubbleChain   []int
	Flinging      bool
	Handlers      []HandlerSnapshot
}

// Snapshot captures the arbitration state. Handlers are listed for every
// member of the bubble and compete chains that has been built.
func (a *Arena) Snapshot() Snapshot {
	t := a.trigger
	s := Snapshot{
		Simultaneous: slices.Clone(t.simultaneous),
		CompeteChain: slices.Clone(t.chain),
		BubbleChain:  slices.Clone(a.bubble),
		Flinging:     !t.fling.IsIdle(),
	}
	s.Winner, s.HasWinner = a.Winner()
	if t.alive(t.lastWinner) {
		s.LastWinner, s.HasLastWinner = t.lastWinner, true
	}

	ids := slices.Clone(a.bubble)
	for _, id := range t.chain {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		for _, h := range a.handlers[id] {
			s.Handlers = append(s.Handlers, HandlerSnapshot{
				MemberID:  id,
				GestureID: h.GestureID(),
				Kind:      h.Kind(),
				State:     h.State(),
			})
		}
	}
	return s
}
