package scene

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/phanxgames/gesture"
)

// Scene is the top-level object that owns the node tree, routes pointer
// input into a gesture arena and keeps the arena's member registry in step
// with the tree.
type Scene struct {
	log   zerolog.Logger
	root  *Node
	arena *gesture.Arena

	// members maps arena member ids to registered nodes.
	members map[int]*Node
	syncGen uint64

	pointers     [maxPointers + 1]pointerState
	primary      int
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	hitBuf       []*Node
	injectQueue  []syntheticTouch

	runner *Runner
	now    time.Duration

	// ClearColor is the background color used by Draw.
	ClearColor color.RGBA
	// ShowDebug draws node outlines and the arbitration state.
	ShowDebug bool
}

// NewScene creates a new scene with a pre-created root container and an
// arena built from cfg. The logger is taken from ctx.
func NewScene(ctx context.Context, cfg gesture.Config) *Scene {
	s := &Scene{
		log:        zerolog.Ctx(ctx).With().Str("component", "gesture-scene").Logger(),
		root:       NewContainer("root"),
		arena:      gesture.New(ctx, cfg),
		members:    make(map[int]*Node),
		primary:    -1,
		ClearColor: color.RGBA{R: 24, G: 26, B: 32, A: 255},
	}
	s.arena.SetHitTester(s)
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Arena returns the gesture arena driven by the scene.
func (s *Scene) Arena() *gesture.Arena {
	return s.arena
}

// Now returns the scene clock, advanced by every tick.
func (s *Scene) Now() time.Duration {
	return s.now
}

// OnGesture registers a scene-level callback for every gesture event.
func (s *Scene) OnGesture(fn func(GestureContext)) gesture.CallbackHandle {
	return s.arena.OnGestureEvent(func(ev gesture.GestureEvent) {
		n := s.members[ev.MemberID]
		ctx := GestureContext{Node: n, Event: ev}
		if n != nil {
			ctx.UserData = n.UserData
		}
		fn(ctx)
	})
}

// SetEventSink forwards every gesture event to sink.
func (s *Scene) SetEventSink(sink gesture.EventSink) {
	s.arena.SetEventSink(sink)
}

// NodeByMemberID returns the registered node for an arena member id.
func (s *Scene) NodeByMemberID(id int) *Node {
	return s.members[id]
}

// SetRunner attaches a script runner. It drives the scene from the next tick.
func (s *Scene) SetRunner(r *Runner) {
	s.runner = r
}

// Update advances the scene by one ebiten tick, reading the mouse and touch
// devices whenever no injected event is queued.
func (s *Scene) Update() {
	s.tick(time.Second/time.Duration(ebiten.TPS()), true)
}

// Step advances the scene by dt using injected input only. Tests and the
// replay tool drive scenes this way.
func (s *Scene) Step(dt time.Duration) {
	s.tick(dt, false)
}

func (s *Scene) tick(dt time.Duration, devices bool) {
	s.syncMembers()
	if s.runner != nil {
		s.runner.step(s)
	}
	s.processInput(devices)
	s.now += dt
	s.arena.Update(dt)
}

// syncMembers registers new detector-bearing nodes, rebuilds nodes whose
// detectors changed and unregisters nodes that left the tree.
func (s *Scene) syncMembers() {
	s.syncGen++
	s.walkMembers(s.root)
	for id, n := range s.members {
		if n.syncGen == s.syncGen {
			continue
		}
		if err := s.arena.RemoveMemberByID(id); err != nil {
			s.log.Warn().Err(err).Int("member_id", id).Msg("remove member")
		}
		delete(s.members, id)
		s.log.Debug().Int("member_id", id).Str("name", n.Name).Msg("member removed")
	}
}

func (s *Scene) walkMembers(n *Node) {
	if n.disposed {
		return
	}
	if n.HasDetectors() {
		n.syncGen = s.syncGen
		id := n.GestureArenaMemberID()
		switch _, ok := s.members[id]; {
		case !ok:
			if err := s.arena.AddMember(n); err != nil {
				s.log.Warn().Err(err).Str("name", n.Name).Msg("add member")
			} else {
				s.members[id] = n
				s.log.Debug().Int("member_id", id).Str("name", n.Name).Msg("member added")
			}
		case n.detectorsDirty:
			if err := s.arena.UpdateMember(n); err != nil {
				s.log.Warn().Err(err).Str("name", n.Name).Msg("update member")
			}
		}
		n.detectorsDirty = false
	}
	for _, c := range n.children {
		s.walkMembers(c)
	}
}

// --- Debug drawing ---

var (
	outlineColor = color.RGBA{R: 120, G: 130, B: 150, A: 255}
	winnerColor  = color.RGBA{R: 80, G: 200, B: 120, A: 90}
	simulColor   = color.RGBA{R: 80, G: 140, B: 220, A: 70}
)

// Draw renders node outlines, highlights the winner and its simultaneous
// partners, and prints the arbitration state.
func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(s.ClearColor)
	snap := s.arena.Snapshot()
	s.drawNode(screen, s.root, snap)
	if s.ShowDebug {
		ebitenutil.DebugPrintAt(screen, describe(snap, s.members), 4, 4)
	}
}

func (s *Scene) drawNode(screen *ebiten.Image, n *Node, snap gesture.Snapshot) {
	if !n.Visible || n.disposed {
		return
	}
	if n.Width > 0 && n.Height > 0 {
		x, y := n.WorldPosition()
		fx, fy, fw, fh := float32(x), float32(y), float32(n.Width), float32(n.Height)
		id := n.GestureArenaMemberID()
		switch {
		case snap.HasWinner && snap.Winner == id:
			vector.DrawFilledRect(screen, fx, fy, fw, fh, winnerColor, false)
		case slices.Contains(snap.Simultaneous, id):
			vector.DrawFilledRect(screen, fx, fy, fw, fh, simulColor, false)
		}
		vector.StrokeRect(screen, fx, fy, fw, fh, 1, outlineColor, false)
		if s.ShowDebug && n.Name != "" {
			ebitenutil.DebugPrintAt(screen, n.Name, int(x)+3, int(y)+2)
		}
	}
	for _, c := range n.children {
		s.drawNode(screen, c, snap)
	}
}

func describe(snap gesture.Snapshot, members map[int]*Node) string {
	name := func(id int) string {
		if n := members[id]; n != nil {
			return n.Name
		}
		return fmt.Sprint(id)
	}
	var b strings.Builder
	if snap.HasWinner {
		fmt.Fprintf(&b, "winner: %s\n", name(snap.Winner))
	} else {
		b.WriteString("winner: -\n")
	}
	if snap.Flinging {
		b.WriteString("flinging\n")
	}
	for _, h := range snap.Handlers {
		fmt.Fprintf(&b, "%s #%d %s: %s\n", name(h.MemberID), h.GestureID, h.Kind, h.State)
	}
	return b.String()
}

