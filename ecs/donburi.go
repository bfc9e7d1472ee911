package ecs

import (
	"github.com/phanxgames/gesture"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// GestureEventType is the Donburi event type for gesture events.
// Subscribe to this in your ECS systems to receive recognizer callbacks.
var GestureEventType = events.NewEventType[gesture.GestureEvent]()

// Member ties an entity to an arena member id.
type Member struct {
	ID int
}

// MemberComponent marks entities that mirror an arena member.
var MemberComponent = donburi.NewComponentType[Member]()

// LastGesture holds the most recent lifecycle event of a member.
type LastGesture struct {
	Event gesture.GestureEvent
	Count int
}

// LastGestureComponent is written by Track.
var LastGestureComponent = donburi.NewComponentType[LastGesture]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Gesture events are published to GestureEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) gesture.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitGestureEvent(event gesture.GestureEvent) {
	GestureEventType.Publish(s.world, event)
}

// CreateMember creates an entity mirroring the arena member id.
func CreateMember(world donburi.World, memberID int) donburi.Entity {
	e := world.Create(MemberComponent, LastGestureComponent)
	MemberComponent.SetValue(world.Entry(e), Member{ID: memberID})
	return e
}

// EntryForMember returns the entry mirroring memberID, if any.
func EntryForMember(world donburi.World, memberID int) (*donburi.Entry, bool) {
	var found *donburi.Entry
	donburi.NewQuery(filter.Contains(MemberComponent)).Each(world, func(entry *donburi.Entry) {
		if found == nil && MemberComponent.Get(entry).ID == memberID {
			found = entry
		}
	})
	return found, found != nil
}

// Track subscribes a handler that stores every lifecycle event (begin,
// start, update, end) on the matching member entity. Raw touch callbacks are
// skipped.
func Track(world donburi.World) {
	GestureEventType.Subscribe(world, func(w donburi.World, ev gesture.GestureEvent) {
		switch ev.Name {
		case gesture.EventBegin, gesture.EventStart, gesture.EventUpdate, gesture.EventEnd:
		default:
			return
		}
		entry, ok := EntryForMember(w, ev.MemberID)
		if !ok || !entry.HasComponent(LastGestureComponent) {
			return
		}
		last := LastGestureComponent.Get(entry)
		last.Event = ev
		last.Count++
	})
}
