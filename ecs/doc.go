// Package ecs drives marionette skeletons from a [Donburi] world.
//
// Attach a skeleton and its animation state to an entity with [NewPuppet],
// advance every puppet once per frame with [UpdatePuppets], and subscribe to
// [AnimationEventType] to receive start, end, complete and keyed events as
// typed Donburi events:
//
//	e := ecs.NewPuppet(world, skeleton, state)
//	ecs.AnimationEventType.Subscribe(world, func(w donburi.World, ev ecs.AnimationEvent) {
//		if ev.Kind == ecs.AnimationEventKeyed && ev.Event.Name() == "footstep" {
//			playStep(ev.Entity)
//		}
//	})
//
//	// every frame
//	ecs.UpdatePuppets(world, dt)
//	ecs.AnimationEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
