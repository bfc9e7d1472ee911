// Package gesture is a gesture arena: it decides which of several competing
// recognizers attached to a tree of interactive nodes wins a touch
// interaction, and drives the winner through its begin/update/end lifecycle.
//
// # Quick start
//
// Register every node that owns detectors as a [Member], install a
// [HitTester] that returns the members under a point (innermost first), and
// feed touch phases in:
//
//	arena := gesture.New(ctx, gesture.DefaultConfig())
//	arena.AddMember(list)
//	arena.AddMember(button)
//	arena.SetHitTester(scene)
//	arena.OnGestureEvent(func(ev gesture.GestureEvent) { ... })
//
//	// every frame
//	arena.DispatchTouchEventToArena(&gesture.TouchEvent{Phase: gesture.TouchMove, X: x, Y: y}, nil)
//	arena.Update(dt)
//
// The scene sub-package does all of this for an [Ebitengine] node tree.
//
// # Detectors and relations
//
// A member declares [Detector] values keyed by a gesture id that is unique
// across the arena. Relations between gesture ids shape the competition:
//
//   - WaitFor: the member only gets a chance after the outer members owning
//     those gestures have failed.
//   - ContinueWith: the compete chain stops at the member and continues with
//     the members owning those gestures.
//   - Simultaneous: the members owning those gestures run alongside the
//     member when it wins instead of being failed.
//
// [DetectorManager] turns the hit-test response chain into a compete chain.
//
// # Arbitration
//
// On every phase the arena re-checks the winner. A winner whose handlers
// all failed hands over to the next eligible member of the compete chain,
// scanning forward and wrapping around. An Active winner fails every other
// member in the race. After an up with enough velocity a [FlingScroller]
// keeps feeding synthetic deltas to the winner until it decelerates to idle.
//
// Timers (tap expiry, long-press activation) and fling ticks only advance in
// [Arena.Update]; the arena is single-goroutine and never blocks.
//
// [Ebitengine]: https://ebitengine.org
package gesture
