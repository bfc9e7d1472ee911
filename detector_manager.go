package gesture

import (
	"slices"

	"github.com/rs/zerolog"
)

// DetectorManager maps gesture ids to the members that declared them and
// turns hit-test response chains into compete chains by applying the
// declared relations.
type DetectorManager struct {
	log     zerolog.Logger
	members memberLookup

	// gesture id -> member ids, in registration order; duplicates allowed.
	gestureMembers map[int][]int
}

func newDetectorManager(log zerolog.Logger, members memberLookup) *DetectorManager {
	return &DetectorManager{
		log:            log,
		members:        members,
		gestureMembers: make(map[int][]int),
	}
}

// RegisterDetector records that memberID declared d.
func (m *DetectorManager) RegisterDetector(memberID int, d *Detector) {
	if d == nil {
		return
	}
	m.gestureMembers[d.ID] = append(m.gestureMembers[d.ID], memberID)
}

// UnregisterDetector removes one registration of d for memberID.
func (m *DetectorManager) UnregisterDetector(memberID int, d *Detector) {
	if d == nil {
		return
	}
	ids := m.gestureMembers[d.ID]
	if i := slices.Index(ids, memberID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(m.gestureMembers, d.ID)
		return
	}
	m.gestureMembers[d.ID] = ids
}

// MembersForGesture returns a copy of the member ids registered for gestureID.
func (m *DetectorManager) MembersForGesture(gestureID int) []int {
	return slices.Clone(m.gestureMembers[gestureID])
}

// resolve maps gesture ids to live member ids other than exclude, keeping
// first-seen order and dropping repeats. Unknown ids are logged and skipped.
func (m *DetectorManager) resolve(gestureIDs []int, exclude int) []int {
	var out []int
	for _, gid := range gestureIDs {
		ids, ok := m.gestureMembers[gid]
		if !ok {
			m.log.Debug().Int("gesture_id", gid).Int("member_id", exclude).
				Msg("relation references unknown gesture, ignored")
			continue
		}
		for _, id := range ids {
			if id == exclude || slices.Contains(out, id) {
				continue
			}
			if m.members.lookupMember(id) == nil {
				continue
			}
			out = append(out, id)
		}
	}
	return out
}

// chainRelations returns the lowest-id detector of member whose relations
// reshape the compete chain, or nil.
func chainRelations(member Member) *Detector {
	for _, d := range sortedDetectors(member.GestureDetectors()) {
		if d.Relations.affectsChain() {
			return d
		}
	}
	return nil
}

// ConvertResponseChainToCompeteChain derives the compete chain from a
// response chain ordered innermost to outermost.
//
// The first member carrying WaitFor or ContinueWith relations decides the
// shape of the result and ends the walk:
//   - WaitFor: members it waits for that sit further out in the response
//     chain are placed right before it.
//   - ContinueWith: the member is followed by its continuation members.
//
// Members without such relations pass through unchanged. A WaitFor that
// resolves to nothing is treated as no relation at all.
func (m *DetectorManager) ConvertResponseChainToCompeteChain(chain []int) []int {
	out := make([]int, 0, len(chain))
	for i, id := range chain {
		member := m.members.lookupMember(id)
		if member == nil {
			continue
		}
		d := chainRelations(member)
		if d == nil {
			out = append(out, id)
			continue
		}

		if len(d.Relations.WaitFor) > 0 {
			targets := m.resolve(d.Relations.WaitFor, id)
			var spliced []int
			for _, later := range chain[i+1:] {
				if slices.Contains(targets, later) && !slices.Contains(spliced, later) {
					spliced = append(spliced, later)
				}
			}
			if len(spliced) == 0 {
				m.log.Debug().Int("member_id", id).Ints("wait_for", d.Relations.WaitFor).
					Msg("wait-for relation resolved to no outer member, passing through")
				out = append(out, id)
				continue
			}
			out = append(out, spliced...)
			return append(out, id)
		}

		out = append(out, id)
		return append(out, m.resolve(d.Relations.ContinueWith, id)...)
	}
	return out
}

// HandleSimultaneousWinner collects the live members, other than memberID,
// that own a gesture listed in any of memberID's Simultaneous relations. The
// members are ordered by id; the returned set holds every gesture id that
// resolved to at least one such member.
func (m *DetectorManager) HandleSimultaneousWinner(memberID int) ([]int, map[int]struct{}) {
	member := m.members.lookupMember(memberID)
	if member == nil {
		return nil, nil
	}
	var others []int
	ids := make(map[int]struct{})
	for _, d := range sortedDetectors(member.GestureDetectors()) {
		for _, gid := range d.Relations.Simultaneous {
			resolved := m.resolve([]int{gid}, memberID)
			if len(resolved) == 0 {
				continue
			}
			ids[gid] = struct{}{}
			for _, id := range resolved {
				if !slices.Contains(others, id) {
					others = append(others, id)
				}
			}
		}
	}
	slices.Sort(others)
	return others, ids
}
