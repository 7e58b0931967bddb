package marionette

import "github.com/chewxy/math32"

// PhysicsConstraintData simulates a damped spring pulling a bone back to its
// animated pose. X, Y, Rotate, ScaleX and ShearX select which parts of the
// bone the simulation moves and by how much.
type PhysicsConstraintData struct {
	ConstraintBase

	Bone *BoneData

	X, Y, Rotate, ScaleX, ShearX float32

	// Limit caps how far the bone's own motion can push the simulation per
	// second. Step is the fixed simulation time step in seconds.
	Limit float32
	Step  float32

	Inertia, Strength, Damping, MassInverse, Wind, Gravity, Mix float32

	// *Global properties are keyed by physics timelines with index -1.
	InertiaGlobal, StrengthGlobal, DampingGlobal, MassGlobal bool
	WindGlobal, GravityGlobal, MixGlobal                     bool
}

// NewPhysicsConstraintData returns physics data simulating at 60 steps per
// second with unit mass and full mix.
func NewPhysicsConstraintData(name string) *PhysicsConstraintData {
	return &PhysicsConstraintData{
		ConstraintBase: ConstraintBase{Name: name},
		Limit:          5000,
		Step:           1.0 / 60,
		Inertia:        1,
		Strength:       100,
		Damping:        1,
		MassInverse:    1,
		Mix:            1,
	}
}

// PhysicsConstraint is the per-skeleton simulation state of a
// PhysicsConstraintData.
type PhysicsConstraint struct {
	Data *PhysicsConstraintData
	Bone *Bone

	Inertia, Strength, Damping, MassInverse, Wind, Gravity, Mix float32

	skeleton *Skeleton
	active   bool

	reset                   bool
	ux, uy, cx, cy, tx, ty  float32
	xOffset, xVelocity      float32
	yOffset, yVelocity      float32
	rotateOffset, rotateVel float32
	scaleOffset, scaleVel   float32
	remaining, lastTime     float32
}

func newPhysicsConstraint(data *PhysicsConstraintData, s *Skeleton) *PhysicsConstraint {
	c := &PhysicsConstraint{Data: data, Bone: s.Bones[data.Bone.Index], skeleton: s, reset: true}
	c.SetToSetupPose()
	return c
}

// SetToSetupPose restores the data's simulation parameters.
func (c *PhysicsConstraint) SetToSetupPose() {
	d := c.Data
	c.Inertia, c.Strength, c.Damping = d.Inertia, d.Strength, d.Damping
	c.MassInverse, c.Wind, c.Gravity, c.Mix = d.MassInverse, d.Wind, d.Gravity, d.Mix
}

// Active reports whether the constraint is applied.
func (c *PhysicsConstraint) Active() bool { return c.active }

// Reset discards all simulated motion. The next update starts from the
// bone's current pose.
func (c *PhysicsConstraint) Reset() {
	c.remaining = 0
	c.lastTime = c.skeleton.Time
	c.reset = true
	c.xOffset, c.xVelocity = 0, 0
	c.yOffset, c.yVelocity = 0, 0
	c.rotateOffset, c.rotateVel = 0, 0
	c.scaleOffset, c.scaleVel = 0, 0
}

// Translate moves the simulation's reference points so a teleport of x, y
// does not excite the spring. x, y is the skeleton's displacement in world
// units and the references move by the same signed amount, so a skeleton
// moved right by 100 calls Translate(100, 0). Passing the negated move
// doubles the jolt instead of absorbing it.
func (c *PhysicsConstraint) Translate(x, y float32) {
	c.ux += x
	c.uy += y
	c.cx += x
	c.cy += y
}

// Rotate rotates the simulation's reference point around x, y by degrees.
func (c *PhysicsConstraint) Rotate(x, y, degrees float32) {
	r := degrees * DegRad
	cos, sin := math32.Cos(r), math32.Sin(r)
	dx, dy := c.cx-x, c.cy-y
	c.Translate(dx*cos-dy*sin-dx, dx*sin+dy*cos-dy)
}

func clampAbs(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// Update steps the simulation according to physics and applies the offsets to
// the bone's world transform.
func (c *PhysicsConstraint) Update(physics Physics) {
	mix := c.Mix
	if mix == 0 {
		return
	}
	d := c.Data
	x, y := d.X > 0, d.Y > 0
	rotateOrShearX := d.Rotate > 0 || d.ShearX > 0
	scaleX := d.ScaleX > 0
	bone := c.Bone
	l := bone.Data.Length
	s := c.skeleton

	switch physics {
	case PhysicsNone:
		return
	case PhysicsReset, PhysicsUpdate:
		if physics == PhysicsReset {
			c.Reset()
		}
		delta := math32.Max(s.Time-c.lastTime, 0)
		c.remaining += delta
		c.lastTime = s.Time

		bx, by := bone.WorldX, bone.WorldY
		if c.reset {
			c.reset = false
			c.ux, c.uy = bx, by
		} else {
			a := c.remaining
			i := c.Inertia
			t := d.Step
			f := s.Data.ReferenceScale
			damp := float32(-1)
			qx := d.Limit * delta
			qy := qx * math32.Abs(s.scaleY())
			qx *= math32.Abs(s.scaleX())
			if x || y {
				if x {
					c.xOffset += clampAbs((c.ux-bx)*i, qx)
					c.ux = bx
				}
				if y {
					c.yOffset += clampAbs((c.uy-by)*i, qy)
					c.uy = by
				}
				if a >= t {
					damp = math32.Pow(c.Damping, 60*t)
					m := c.MassInverse * t
					e := c.Strength
					w := c.Wind * f * s.scaleX()
					g := c.Gravity * f * s.scaleY()
					for {
						if x {
							c.xVelocity += (w - c.xOffset*e) * m
							c.xOffset += c.xVelocity * t
							c.xVelocity *= damp
						}
						if y {
							c.yVelocity -= (g + c.yOffset*e) * m
							c.yOffset += c.yVelocity * t
							c.yVelocity *= damp
						}
						a -= t
						if a < t {
							break
						}
					}
				}
				if x {
					bone.WorldX += c.xOffset * mix * d.X
				}
				if y {
					bone.WorldY += c.yOffset * mix * d.Y
				}
			}

			if rotateOrShearX || scaleX {
				ca := math32.Atan2(bone.C, bone.A)
				var cos, sin, mr float32
				dx := clampAbs(c.cx-bone.WorldX, qx)
				dy := clampAbs(c.cy-bone.WorldY, qy)
				if rotateOrShearX {
					mr = (d.Rotate + d.ShearX) * mix
					r := math32.Atan2(dy+c.ty, dx+c.tx) - ca - c.rotateOffset*mr
					c.rotateOffset += (r - math32.Ceil(r/Pi2-0.5)*Pi2) * i
					r = c.rotateOffset*mr + ca
					cos, sin = math32.Cos(r), math32.Sin(r)
					if scaleX {
						if r = l * bone.WorldScaleX(); r > 0 {
							c.scaleOffset += (dx*cos + dy*sin) * i / r
						}
					}
				} else {
					cos, sin = math32.Cos(ca), math32.Sin(ca)
					if r := l * bone.WorldScaleX(); r > 0 {
						c.scaleOffset += (dx*cos + dy*sin) * i / r
					}
				}

				a = c.remaining
				if a >= t {
					if damp == -1 {
						damp = math32.Pow(c.Damping, 60*t)
					}
					m := c.MassInverse * t
					e := c.Strength
					w := c.Wind
					g := c.Gravity * signum(s.scaleY())
					h := l / f
					for {
						a -= t
						if scaleX {
							c.scaleVel += (w*cos - g*sin - c.scaleOffset*e) * m
							c.scaleOffset += c.scaleVel * t
							c.scaleVel *= damp
						}
						if rotateOrShearX {
							c.rotateVel -= ((w*sin+g*cos)*h + c.rotateOffset*e) * m
							c.rotateOffset += c.rotateVel * t
							c.rotateVel *= damp
							if a < t {
								break
							}
							r := c.rotateOffset*mr + ca
							cos, sin = math32.Cos(r), math32.Sin(r)
						} else if a < t {
							break
						}
					}
				}
			}
			c.remaining = a
		}
		c.cx, c.cy = bone.WorldX, bone.WorldY

	case PhysicsPose:
		if x {
			bone.WorldX += c.xOffset * mix * d.X
		}
		if y {
			bone.WorldY += c.yOffset * mix * d.Y
		}
	}

	if rotateOrShearX {
		o := c.rotateOffset * mix
		if d.ShearX > 0 {
			var r float32
			if d.Rotate > 0 {
				r = o * d.Rotate
				sin, cos := math32.Sin(r), math32.Cos(r)
				b := bone.B
				bone.B = cos*b - sin*bone.D
				bone.D = sin*b + cos*bone.D
			}
			r += o * d.ShearX
			sin, cos := math32.Sin(r), math32.Cos(r)
			a := bone.A
			bone.A = cos*a - sin*bone.C
			bone.C = sin*a + cos*bone.C
		} else {
			o *= d.Rotate
			sin, cos := math32.Sin(o), math32.Cos(o)
			a := bone.A
			bone.A = cos*a - sin*bone.C
			bone.C = sin*a + cos*bone.C
			a = bone.B
			bone.B = cos*a - sin*bone.D
			bone.D = sin*a + cos*bone.D
		}
	}
	if scaleX {
		f := 1 + c.scaleOffset*mix*d.ScaleX
		bone.A *= f
		bone.C *= f
	}
	if physics != PhysicsPose {
		c.tx = l * bone.A
		c.ty = l * bone.C
	}
	bone.UpdateAppliedTransform()
}

func (p PhysicsProperty) get(c *PhysicsConstraint) float32 {
	switch p {
	case PhysicsInertia:
		return c.Inertia
	case PhysicsStrength:
		return c.Strength
	case PhysicsDamping:
		return c.Damping
	case PhysicsMass:
		return c.MassInverse
	case PhysicsWind:
		return c.Wind
	case PhysicsGravity:
		return c.Gravity
	}
	return c.Mix
}

func (p PhysicsProperty) set(c *PhysicsConstraint, v float32) {
	switch p {
	case PhysicsInertia:
		c.Inertia = v
	case PhysicsStrength:
		c.Strength = v
	case PhysicsDamping:
		c.Damping = v
	case PhysicsMass:
		c.MassInverse = v
	case PhysicsWind:
		c.Wind = v
	case PhysicsGravity:
		c.Gravity = v
	default:
		c.Mix = v
	}
}

func (p PhysicsProperty) setup(d *PhysicsConstraintData) float32 {
	switch p {
	case PhysicsInertia:
		return d.Inertia
	case PhysicsStrength:
		return d.Strength
	case PhysicsDamping:
		return d.Damping
	case PhysicsMass:
		return d.MassInverse
	case PhysicsWind:
		return d.Wind
	case PhysicsGravity:
		return d.Gravity
	}
	return d.Mix
}

func (p PhysicsProperty) global(d *PhysicsConstraintData) bool {
	switch p {
	case PhysicsInertia:
		return d.InertiaGlobal
	case PhysicsStrength:
		return d.StrengthGlobal
	case PhysicsDamping:
		return d.DampingGlobal
	case PhysicsMass:
		return d.MassGlobal
	case PhysicsWind:
		return d.WindGlobal
	case PhysicsGravity:
		return d.GravityGlobal
	}
	return d.MixGlobal
}
