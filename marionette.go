package marionette

import "errors"

// ErrInvalidArgument is wrapped by construction errors caused by missing or
// inconsistent input (nil data, unresolvable references, malformed frames).
var ErrInvalidArgument = errors.New("marionette: invalid argument")

// ErrNotFound is wrapped by lookups the caller explicitly demanded, such as
// setting an animation or skin by name.
var ErrNotFound = errors.New("marionette: not found")

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Set assigns all four components.
func (c *Color) Set(r, g, b, a float32) {
	c.R, c.G, c.B, c.A = r, g, b, a
}

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Clamp returns c with every component clamped to [0, 1].
func (c Color) Clamp() Color {
	return Color{Clamp(c.R, 0, 1), Clamp(c.G, 0, 1), Clamp(c.B, 0, 1), Clamp(c.A, 0, 1)}
}

// BlendMode selects how a slot's attachment is composited by a renderer.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over
	BlendAdditive                  // lighter
	BlendMultiply                  // source * destination
	BlendScreen                    // 1 - (1-src)*(1-dst)
)

// String returns the blend mode name as it appears in skeleton files.
func (b BlendMode) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	default:
		return "normal"
	}
}

// TransformMode controls which parts of the parent transform a bone inherits.
type TransformMode uint8

const (
	TransformNormal                 TransformMode = iota // inherit everything
	TransformOnlyTranslation                             // inherit parent translation only
	TransformNoRotationOrReflection                      // ignore parent rotation and reflection
	TransformNoScale                                     // ignore parent scale
	TransformNoScaleOrReflection                         // ignore parent scale and reflection
)

// MixPose selects the base value a timeline blends from.
type MixPose uint8

const (
	PoseSetup          MixPose = iota // blend from the bind pose
	PoseCurrent                       // blend from the current pose; before the first key, fade toward bind
	PoseCurrentLayered                // blend from the current pose; before the first key, do nothing
)

// MixDirection tells instantaneous timelines whether their animation is being
// mixed in or out.
type MixDirection uint8

const (
	MixIn  MixDirection = iota // mixing toward full influence
	MixOut                     // mixing away from full influence
)

// Physics controls how physics constraints behave during
// Skeleton.UpdateWorldTransform.
type Physics uint8

const (
	PhysicsNone   Physics = iota // physics is not updated or applied
	PhysicsReset                 // physics is reset to the current pose
	PhysicsUpdate                // physics is stepped by the skeleton's time delta
	PhysicsPose                  // physics is not stepped but the last offsets are applied
)

// PositionMode controls how a path constraint interprets its position.
type PositionMode uint8

const (
	PositionFixed   PositionMode = iota // position is a distance along the path
	PositionPercent                     // position is a fraction of the path length
)

// SpacingMode controls how a path constraint spaces its bones.
type SpacingMode uint8

const (
	SpacingLength  SpacingMode = iota // spacing is added to each bone's length
	SpacingFixed                      // spacing is an absolute distance
	SpacingPercent                    // spacing is a fraction of the path length
)

// RotateMode controls how a path constraint rotates its bones.
type RotateMode uint8

const (
	RotateTangent    RotateMode = iota // rotate to the path tangent
	RotateChain                        // rotate so each bone points at the next
	RotateChainScale                   // as RotateChain, also scale bones to fit the path
)
