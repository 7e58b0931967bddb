// Package marionette evaluates 2D skeletal animation: it poses a bone
// hierarchy from keyframed timelines, solves IK, transform, path and physics
// constraints, and clips mesh geometry against clipping attachments.
//
// Marionette has no loader. Build a [SkeletonData] in code (or with your own
// importer), create one [Skeleton] per character, and drive it each frame:
//
//	sk, err := marionette.NewSkeleton(data)
//	if err != nil {
//		return err
//	}
//	state, _ := marionette.NewAnimationState(mixData)
//	state.SetAnimation(walk, true)
//
//	// every frame
//	state.Update(dt)
//	state.Apply(sk)
//	sk.Update(dt)
//	sk.UpdateWorldTransform(marionette.PhysicsUpdate)
//
// After UpdateWorldTransform every [Bone] holds its world matrix, every
// [Slot] its color and attachment, and [Skeleton.DrawOrder] the slots back to
// front. The render subpackage draws that pose with [Ebitengine]; the ecs
// module forwards [AnimationState] notifications into a [Donburi] world.
//
// # Timelines and mixing
//
// A [Timeline] keys one property. [Timeline.Apply] blends the keyed value
// into the skeleton with an alpha, measured from the base chosen by
// [MixPose]: the setup pose ([PoseSetup]) or the current pose
// ([PoseCurrent], [PoseCurrentLayered]). [MixDirection] tells attachment and
// draw order timelines whether their animation is fading in or out.
//
// # Update order
//
// [Skeleton.UpdateCache] sorts bones and constraints so every constraint
// runs after the bones it reads and before the bones that depend on what it
// writes. The cache is rebuilt by [NewSkeleton] and [Skeleton.SetSkin]; call
// it yourself after changing constraint data.
//
// # Concurrency
//
// [SkeletonData] and its animations are read-only after construction and may
// be shared between goroutines. A [Skeleton], its constraints, an
// [AnimationState] and a [SkeletonClipping] reuse internal buffers and must
// be used from one goroutine at a time.
//
// # Logging
//
// Marionette logs through [log/slog] and is silent by default. Use
// [SetLogger] to route its output and [SetDebug] to enable extra consistency
// warnings.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package marionette
