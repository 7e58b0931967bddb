package marionette

import "github.com/chewxy/math32"

// TransformConstraintData copies a target bone's transform to other bones.
type TransformConstraintData struct {
	ConstraintBase

	Bones  []*BoneData
	Target *BoneData

	RotateMix, TranslateMix, ScaleMix, ShearMix float32

	OffsetRotation, OffsetX, OffsetY        float32
	OffsetScaleX, OffsetScaleY, OffsetShearY float32

	// Relative adds the target's values instead of replacing; Local works on
	// applied (local) values instead of the world transform.
	Relative bool
	Local    bool
}

// NewTransformConstraintData returns transform data with all mixes at zero.
func NewTransformConstraintData(name string) *TransformConstraintData {
	return &TransformConstraintData{ConstraintBase: ConstraintBase{Name: name}}
}

// TransformConstraint is the per-skeleton state of a TransformConstraintData.
type TransformConstraint struct {
	Data   *TransformConstraintData
	Bones  []*Bone
	Target *Bone

	RotateMix, TranslateMix, ScaleMix, ShearMix float32

	active bool
}

func newTransformConstraint(data *TransformConstraintData, s *Skeleton) *TransformConstraint {
	c := &TransformConstraint{Data: data, Target: s.Bones[data.Target.Index]}
	c.Bones = make([]*Bone, len(data.Bones))
	for i, bd := range data.Bones {
		c.Bones[i] = s.Bones[bd.Index]
	}
	c.SetToSetupPose()
	return c
}

// SetToSetupPose restores the data's mixes.
func (c *TransformConstraint) SetToSetupPose() {
	d := c.Data
	c.RotateMix, c.TranslateMix, c.ScaleMix, c.ShearMix = d.RotateMix, d.TranslateMix, d.ScaleMix, d.ShearMix
}

// Active reports whether the constraint is applied.
func (c *TransformConstraint) Active() bool { return c.active }

// Update applies the constraint to its bones.
func (c *TransformConstraint) Update() {
	if c.RotateMix == 0 && c.TranslateMix == 0 && c.ScaleMix == 0 && c.ShearMix == 0 {
		return
	}
	switch {
	case c.Data.Local && c.Data.Relative:
		c.applyRelativeLocal()
	case c.Data.Local:
		c.applyAbsoluteLocal()
	case c.Data.Relative:
		c.applyRelativeWorld()
	default:
		c.applyAbsoluteWorld()
	}
}

// reflect returns the sign applied to rotation offsets so they follow a
// mirrored target.
func (c *TransformConstraint) reflect() float32 {
	t := c.Target
	if t.A*t.D-t.B*t.C > 0 {
		return DegRad
	}
	return -DegRad
}

func (c *TransformConstraint) applyAbsoluteWorld() {
	d := c.Data
	t := c.Target
	ta, tb, tc, td := t.A, t.B, t.C, t.D
	degRadReflect := c.reflect()
	offsetRotation := d.OffsetRotation * degRadReflect
	offsetShearY := d.OffsetShearY * degRadReflect

	for _, bone := range c.Bones {
		if c.RotateMix != 0 {
			a, b, cc, dd := bone.A, bone.B, bone.C, bone.D
			r := wrapRadians(Atan2(tc, ta)-Atan2(cc, a)+offsetRotation) * c.RotateMix
			cos, sin := Cos(r), Sin(r)
			bone.A = cos*a - sin*cc
			bone.B = cos*b - sin*dd
			bone.C = sin*a + cos*cc
			bone.D = sin*b + cos*dd
		}
		if c.TranslateMix != 0 {
			tx, ty := t.LocalToWorld(d.OffsetX, d.OffsetY)
			bone.WorldX += (tx - bone.WorldX) * c.TranslateMix
			bone.WorldY += (ty - bone.WorldY) * c.TranslateMix
		}
		if c.ScaleMix != 0 {
			s := math32.Sqrt(bone.A*bone.A + bone.C*bone.C)
			if s != 0 {
				s = (s + (math32.Sqrt(ta*ta+tc*tc)-s+d.OffsetScaleX)*c.ScaleMix) / s
			}
			bone.A *= s
			bone.C *= s
			s = math32.Sqrt(bone.B*bone.B + bone.D*bone.D)
			if s != 0 {
				s = (s + (math32.Sqrt(tb*tb+td*td)-s+d.OffsetScaleY)*c.ScaleMix) / s
			}
			bone.B *= s
			bone.D *= s
		}
		if c.ShearMix > 0 {
			b, dd := bone.B, bone.D
			by := Atan2(dd, b)
			r := wrapRadians(Atan2(td, tb) - Atan2(tc, ta) - (by - Atan2(bone.C, bone.A)))
			r = by + (r+offsetShearY)*c.ShearMix
			s := math32.Sqrt(b*b + dd*dd)
			bone.B = Cos(r) * s
			bone.D = Sin(r) * s
		}
		bone.UpdateAppliedTransform()
	}
}

func (c *TransformConstraint) applyRelativeWorld() {
	d := c.Data
	t := c.Target
	ta, tb, tc, td := t.A, t.B, t.C, t.D
	degRadReflect := c.reflect()
	offsetRotation := d.OffsetRotation * degRadReflect
	offsetShearY := d.OffsetShearY * degRadReflect

	for _, bone := range c.Bones {
		if c.RotateMix != 0 {
			a, b, cc, dd := bone.A, bone.B, bone.C, bone.D
			r := wrapRadians(Atan2(tc, ta)+offsetRotation) * c.RotateMix
			cos, sin := Cos(r), Sin(r)
			bone.A = cos*a - sin*cc
			bone.B = cos*b - sin*dd
			bone.C = sin*a + cos*cc
			bone.D = sin*b + cos*dd
		}
		if c.TranslateMix != 0 {
			tx, ty := t.LocalToWorld(d.OffsetX, d.OffsetY)
			bone.WorldX += tx * c.TranslateMix
			bone.WorldY += ty * c.TranslateMix
		}
		if c.ScaleMix != 0 {
			s := (math32.Sqrt(ta*ta+tc*tc)-1+d.OffsetScaleX)*c.ScaleMix + 1
			bone.A *= s
			bone.C *= s
			s = (math32.Sqrt(tb*tb+td*td)-1+d.OffsetScaleY)*c.ScaleMix + 1
			bone.B *= s
			bone.D *= s
		}
		if c.ShearMix > 0 {
			r := wrapRadians(Atan2(td, tb) - Atan2(tc, ta))
			b, dd := bone.B, bone.D
			r = Atan2(dd, b) + (r-HalfPi+offsetShearY)*c.ShearMix
			s := math32.Sqrt(b*b + dd*dd)
			bone.B = Cos(r) * s
			bone.D = Sin(r) * s
		}
		bone.UpdateAppliedTransform()
	}
}

func (c *TransformConstraint) applyAbsoluteLocal() {
	d := c.Data
	t := c.Target
	for _, bone := range c.Bones {
		rotation := bone.ARotation
		if c.RotateMix != 0 {
			rotation += WrapDegrees(t.ARotation-rotation+d.OffsetRotation) * c.RotateMix
		}
		x, y := bone.AX, bone.AY
		if c.TranslateMix != 0 {
			x += (t.AX - x + d.OffsetX) * c.TranslateMix
			y += (t.AY - y + d.OffsetY) * c.TranslateMix
		}
		scaleX, scaleY := bone.AScaleX, bone.AScaleY
		if c.ScaleMix != 0 {
			scaleX += (t.AScaleX - scaleX + d.OffsetScaleX) * c.ScaleMix
			scaleY += (t.AScaleY - scaleY + d.OffsetScaleY) * c.ScaleMix
		}
		shearY := bone.AShearY
		if c.ShearMix != 0 {
			shearY += WrapDegrees(t.AShearY-shearY+d.OffsetShearY) * c.ShearMix
		}
		bone.UpdateWorldTransformWith(x, y, rotation, scaleX, scaleY, bone.AShearX, shearY)
	}
}

func (c *TransformConstraint) applyRelativeLocal() {
	d := c.Data
	t := c.Target
	for _, bone := range c.Bones {
		rotation := bone.ARotation + (t.ARotation+d.OffsetRotation)*c.RotateMix
		x := bone.AX + (t.AX+d.OffsetX)*c.TranslateMix
		y := bone.AY + (t.AY+d.OffsetY)*c.TranslateMix
		scaleX := bone.AScaleX * ((t.AScaleX-1+d.OffsetScaleX)*c.ScaleMix + 1)
		scaleY := bone.AScaleY * ((t.AScaleY-1+d.OffsetScaleY)*c.ScaleMix + 1)
		shearY := bone.AShearY + (t.AShearY+d.OffsetShearY)*c.ShearMix
		bone.UpdateWorldTransformWith(x, y, rotation, scaleX, scaleY, bone.AShearX, shearY)
	}
}
