// Package ecs bridges gesture arena events into a [Donburi] world.
//
// [NewDonburiSink] publishes every gesture event to [GestureEventType].
// Entities tagged with [MemberComponent] can be matched to arena members, and
// [Track] keeps a [LastGesture] component current on them.
//
// Usage:
//
//	arena.SetEventSink(ecs.NewDonburiSink(world))
//	ecs.Track(world)
//	// each frame:
//	ecs.GestureEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
