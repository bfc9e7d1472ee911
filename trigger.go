package gesture

import (
	"math"
	"slices"

	"github.com/rs/zerolog"
)

// noMember marks an empty member slot (winner, last winner, fling target).
const noMember = math.MinInt

// arbitration is the bookkeeping of a single ReCompeteByGestures pass.
type arbitration struct {
	chain          []int
	current        int
	position       int
	lastWinnerPass bool
}

// trigger runs the arbitration protocol for one arena: it keeps the winner,
// resolves it again whenever it fails, fans motion out to simultaneous
// winners and hands released gestures to the fling scroller.
type trigger struct {
	arena *Arena
	log   zerolog.Logger
	fling *FlingScroller

	chain  []int // compete chain of the current touch sequence
	bubble []int

	winner          int
	lastWinner      int
	simultaneous    []int
	simultaneousIDs map[int]struct{}

	// duplicated is the member that appeared more than once in the chain
	// during a pass; the next pass that meets it skips it once.
	duplicated int

	flingTarget   int
	flingChain    []int
	flingResidual []int
}

func newTrigger(a *Arena, log zerolog.Logger) *trigger {
	return &trigger{
		arena:       a,
		log:         log,
		fling:       NewFlingScroller(a.cfg.FlingDuration),
		winner:      noMember,
		lastWinner:  noMember,
		duplicated:  noMember,
		flingTarget: noMember,
	}
}

func (t *trigger) alive(id int) bool {
	return id != noMember && t.arena.lookupMember(id) != nil
}

// --- Touch phases ---

// down starts a new touch sequence on the given chains.
func (t *trigger) down(ev *TouchEvent, snap *TouchSnapshot, compete, bubble []int) {
	if !t.fling.IsIdle() {
		if t.flingTarget == noMember || slices.Contains(bubble, t.flingTarget) {
			if t.alive(t.winner) {
				t.dispatchWithSimultaneous(t.winner, nil, nil, 0, 0)
			}
		}
		// The idle callback sends the stop sentinel to the old winner.
		t.fling.Stop()
	}

	t.chain = compete
	t.bubble = bubble
	for _, id := range bubble {
		t.resetMember(id)
	}
	for _, id := range compete {
		if !slices.Contains(bubble, id) {
			t.resetMember(id)
		}
	}
	t.resetSimultaneous()
	t.lastWinner = noMember
	t.duplicated = noMember
	t.flingTarget = noMember
	t.winner = noMember
	if len(compete) > 0 {
		t.winner = compete[0]
	}
	t.warnDuplicates()

	t.findNextWinnerInBegin(ev, snap, 0, 0)
}

// move re-arbitrates and forwards motion.
func (t *trigger) move(ev *TouchEvent, snap *TouchSnapshot, dx, dy float64) {
	t.step(t.chain, ev, snap, dx, dy)
}

// up flushes the release with a zero delta, then either hands the winner to
// the fling scroller or stops every residual active handler.
func (t *trigger) up(ev *TouchEvent, snap *TouchSnapshot, vx, vy float64) {
	// An ending winner clears the simultaneous set during the step below;
	// its partners still need the stop sentinel.
	residual := t.participants()
	t.step(t.chain, ev, snap, 0, 0)

	threshold := t.arena.cfg.FlingVelocityThreshold
	if ev.Phase == TouchUp && (math.Abs(vx) > threshold || math.Abs(vy) > threshold) {
		t.flingTarget = t.winner
		if t.flingTarget == noMember {
			t.flingTarget = t.lastWinner
		}
		t.flingChain = slices.Clone(t.chain)
		t.flingResidual = residual
		t.log.Debug().Float64("vx", vx).Float64("vy", vy).Int("target", t.flingTarget).
			Msg("fling started")
		t.fling.Start(vx, vy, t.onFlingTick)
		return
	}
	t.dispatchStop(t.chain)
	t.stopResidual(residual)
}

// onFlingTick continues the winner with synthetic deltas.
func (t *trigger) onFlingTick(state FlingState, dx, dy float64) {
	if state == FlingIdle {
		residual := append(t.flingResidual, t.participants()...)
		t.dispatchStop(t.flingChain)
		t.stopResidual(residual)
		t.flingTarget = noMember
		t.flingResidual = nil
		return
	}
	t.step(t.flingChain, nil, nil, dx, dy)
	if t.winner == noMember {
		t.fling.Stop()
	}
}

// step re-competes the current winner, forwards the motion when the winner
// is unchanged, and lets any newly resolved winner initialize itself.
func (t *trigger) step(chain []int, ev *TouchEvent, snap *TouchSnapshot, dx, dy float64) {
	t.winner = t.reCompete(chain, t.winner)
	if t.winner != noMember && t.winner == t.lastWinner {
		t.dispatchWithSimultaneous(t.winner, ev, snap, dx, dy)
	}
	t.findNextWinnerInBegin(ev, snap, dx, dy)
}

// dispatchStop sends the stop sentinel to the resolved winner.
func (t *trigger) dispatchStop(chain []int) {
	t.winner = t.reCompete(chain, t.winner)
	if t.winner == noMember {
		return
	}
	t.dispatchWithSimultaneous(t.winner, nil, nil, StopDelta, StopDelta)
	t.winner = t.reCompete(chain, t.winner)
}

// participants returns the winner, the last winner and the simultaneous
// members of the current sequence.
func (t *trigger) participants() []int {
	ids := make([]int, 0, len(t.simultaneous)+2)
	for _, id := range append([]int{t.winner, t.lastWinner}, t.simultaneous...) {
		if id != noMember && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// stopResidual sends the stop sentinel to every still-registered member in
// ids. Terminal handlers ignore it, so members already stopped through the
// winner are unaffected.
func (t *trigger) stopResidual(ids []int) {
	for _, id := range ids {
		if t.alive(id) {
			t.dispatchToMember(id, nil, nil, StopDelta, StopDelta)
		}
	}
}

// findNextWinnerInBegin follows a fail-and-advance chain: every time the
// resolved winner differs from the last winner it becomes the last winner,
// gets its simultaneous set and receives the current motion. Bounded by the
// chain length.
func (t *trigger) findNextWinnerInBegin(ev *TouchEvent, snap *TouchSnapshot, dx, dy float64) {
	for i := 0; i <= len(t.chain); i++ {
		next := t.reCompete(t.chain, t.winner)
		t.winner = next
		if next == noMember || next == t.lastWinner {
			return
		}
		t.log.Debug().Int("winner", next).Int("previous", t.lastWinner).Msg("winner changed")
		t.lastWinner = next
		t.updateSimultaneous(next)
		t.dispatchWithSimultaneous(next, ev, snap, dx, dy)
	}
}

// --- Winner selection ---

// reCompete returns the member that should hold the arena after current,
// or noMember.
func (t *trigger) reCompete(chain []int, current int) int {
	if !t.alive(t.lastWinner) {
		t.lastWinner = noMember
	}
	if len(chain) == 0 {
		return noMember
	}
	if current != noMember && !t.alive(current) {
		// Removed mid-arbitration: its chain position is still known.
		return t.scan(&arbitration{chain: chain, current: current})
	}
	if current == noMember && t.lastWinner == noMember {
		return noMember
	}

	pass := arbitration{chain: chain, current: current}
	if current == noMember {
		pass.current = t.lastWinner
		pass.lastWinnerPass = true
		t.reviveMember(pass.current)
	}

	switch st := t.memberState(pass.current); {
	case st.canWin():
		return pass.current
	case st == StateEnd:
		return noMember
	}
	if pass.lastWinnerPass {
		// A lapsed last winner gets exactly one attempt.
		return noMember
	}
	return t.scan(&pass)
}

// scan looks for the next eligible member after the current one, wrapping
// around the chain.
func (t *trigger) scan(pass *arbitration) int {
	var positions []int
	for i, id := range pass.chain {
		if id == pass.current {
			positions = append(positions, i)
		}
	}
	switch len(positions) {
	case 0:
		pass.position = 0
	case 1:
		pass.position = positions[0]
	default:
		if t.duplicated != noMember && t.duplicated != pass.current {
			t.log.Warn().Int("tracked", t.duplicated).Int("member_id", pass.current).
				Msg("second duplicated member in compete chain, not tracked")
		} else {
			t.duplicated = pass.current
		}
		pass.position = max(positions[len(positions)-1]-1, 0)
	}

	n := len(pass.chain)
	for k := 0; k < n; k++ {
		id := pass.chain[(pass.position+k)%n]
		if id == pass.current || !t.alive(id) {
			continue
		}
		if id == t.duplicated {
			t.duplicated = noMember
			continue
		}
		t.reviveMember(id)
		switch st := t.memberState(id); {
		case st.canWin():
			return id
		case st == StateEnd:
			return noMember
		}
	}
	return noMember
}

// memberState aggregates the states of a member's handlers. Any End ends the
// whole member; any Active claims the race and fails its competitors.
func (t *trigger) memberState(id int) State {
	handlers := t.arena.handlersFor(id)
	if len(handlers) == 0 {
		return StateFail
	}
	for _, h := range handlers {
		if h.state == StateEnd {
			t.resetSimultaneous()
			t.lastWinner = noMember
			return StateEnd
		}
	}
	for _, h := range handlers {
		if h.state == StateActive {
			t.failOthersMembersInRaceRelation(id)
			return StateActive
		}
	}
	best := StateFail
	for _, h := range handlers {
		switch h.state {
		case StateInit:
			return StateInit
		case StateBegin:
			best = StateBegin
		case StateUndetermined:
			if best == StateFail {
				best = StateUndetermined
			}
		}
	}
	return best
}

// failOthersMembersInRaceRelation fails every handler of the other compete
// chain members, sparing simultaneous winners and simultaneous gesture ids.
func (t *trigger) failOthersMembersInRaceRelation(winner int) {
	for _, id := range t.chain {
		if id == winner || slices.Contains(t.simultaneous, id) {
			continue
		}
		for _, h := range t.arena.handlersFor(id) {
			if _, ok := t.simultaneousIDs[h.GestureID()]; ok {
				continue
			}
			h.fail()
		}
	}
}

// --- Dispatch helpers ---

func (t *trigger) dispatchWithSimultaneous(id int, ev *TouchEvent, snap *TouchSnapshot, dx, dy float64) {
	t.dispatchToMember(id, ev, snap, dx, dy)
	for _, sid := range slices.Clone(t.simultaneous) {
		if sid != id {
			t.dispatchToMember(sid, ev, snap, dx, dy)
		}
	}
}

func (t *trigger) dispatchToMember(id int, ev *TouchEvent, snap *TouchSnapshot, dx, dy float64) {
	for _, h := range t.arena.handlersFor(id) {
		h.handle(ev, snap, dx, dy)
	}
}

func (t *trigger) updateSimultaneous(id int) {
	t.simultaneous, t.simultaneousIDs = t.arena.detectors.HandleSimultaneousWinner(id)
}

func (t *trigger) resetSimultaneous() {
	t.simultaneous = nil
	t.simultaneousIDs = nil
}

// resetMember returns every handler of the member and of its simultaneous
// partners to Init for a new touch sequence.
func (t *trigger) resetMember(id int) {
	for _, h := range t.arena.handlersFor(id) {
		h.reset()
	}
	partners, _ := t.arena.detectors.HandleSimultaneousWinner(id)
	for _, pid := range partners {
		for _, h := range t.arena.handlersFor(pid) {
			h.reset()
		}
	}
}

// reviveMember lets the member and its simultaneous partners compete again
// in the current channel without undoing failures.
func (t *trigger) reviveMember(id int) {
	for _, h := range t.arena.handlersFor(id) {
		h.revive()
	}
	partners, _ := t.arena.detectors.HandleSimultaneousWinner(id)
	for _, pid := range partners {
		for _, h := range t.arena.handlersFor(pid) {
			h.revive()
		}
	}
}

// warnDuplicates flags chains where more than one member appears twice.
// Only one duplicated member is tracked by scan.
func (t *trigger) warnDuplicates() {
	seen := make(map[int]int, len(t.chain))
	dups := 0
	for _, id := range t.chain {
		seen[id]++
		if seen[id] == 2 {
			dups++
		}
	}
	if dups > 1 {
		t.log.Warn().Ints("chain", t.chain).Int("duplicated", dups).
			Msg("compete chain has several duplicated members; only one is skipped")
	}
}
