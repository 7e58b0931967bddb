package marionette

import "github.com/chewxy/math32"

// IkConstraintData rotates one or two bones so the tip of the last bone
// reaches a target bone.
type IkConstraintData struct {
	ConstraintBase

	Bones  []*BoneData
	Target *BoneData

	Mix           float32
	Softness      float32
	BendDirection int
	Compress      bool
	Stretch       bool
	Uniform       bool
}

// NewIkConstraintData returns IK data with full mix and a positive bend.
func NewIkConstraintData(name string) *IkConstraintData {
	return &IkConstraintData{ConstraintBase: ConstraintBase{Name: name}, Mix: 1, BendDirection: 1}
}

// IkConstraint is the per-skeleton state of an IkConstraintData.
type IkConstraint struct {
	Data   *IkConstraintData
	Bones  []*Bone
	Target *Bone

	Mix           float32
	Softness      float32
	BendDirection int
	Compress      bool
	Stretch       bool

	active bool
}

func newIkConstraint(data *IkConstraintData, s *Skeleton) *IkConstraint {
	c := &IkConstraint{Data: data, Target: s.Bones[data.Target.Index]}
	c.Bones = make([]*Bone, len(data.Bones))
	for i, bd := range data.Bones {
		c.Bones[i] = s.Bones[bd.Index]
	}
	c.SetToSetupPose()
	return c
}

// SetToSetupPose restores the data's mix values.
func (c *IkConstraint) SetToSetupPose() {
	d := c.Data
	c.Mix = d.Mix
	c.Softness = d.Softness
	c.BendDirection = d.BendDirection
	c.Compress = d.Compress
	c.Stretch = d.Stretch
}

// Active reports whether the constraint is applied.
func (c *IkConstraint) Active() bool { return c.active }

// Update applies the constraint to its bones.
func (c *IkConstraint) Update() {
	if c.Mix == 0 {
		return
	}
	t := c.Target
	switch len(c.Bones) {
	case 1:
		ApplyIk1(c.Bones[0], t.WorldX, t.WorldY, c.Compress, c.Stretch, c.Data.Uniform, c.Mix)
	case 2:
		ApplyIk2(c.Bones[0], c.Bones[1], t.WorldX, t.WorldY, c.BendDirection, c.Stretch, c.Data.Uniform, c.Softness, c.Mix)
	}
}

func atan2Deg(y, x float32) float32 { return math32.Atan2(y, x) * RadDeg }

// ApplyIk1 rotates bone so it points at the world target. compress and
// stretch scale the bone toward the target distance; uniform scales both
// axes. alpha blends the result with the current applied rotation.
func ApplyIk1(bone *Bone, targetX, targetY float32, compress, stretch, uniform bool, alpha float32) {
	s := bone.skeleton
	pa, pb, pc, pd, pwx, pwy := bone.parentFrame()
	rotationIK := -bone.AShearX - bone.ARotation
	var tx, ty float32

	mode := bone.Data.TransformMode
	if bone.parent < 0 {
		mode = TransformNormal
	}
	switch mode {
	case TransformOnlyTranslation:
		tx = (targetX - bone.WorldX) * signum(s.scaleX())
		ty = (targetY - bone.WorldY) * signum(s.scaleY())
	default:
		if mode == TransformNoRotationOrReflection {
			d := math32.Abs(pa*pd-pb*pc) / math32.Max(0.0001, pa*pa+pc*pc)
			sa := pa / s.scaleX()
			sc := pc / s.scaleY()
			pb = -sc * d * s.scaleX()
			pd = sa * d * s.scaleY()
			rotationIK += atan2Deg(sc, sa)
		}
		x, y := targetX-pwx, targetY-pwy
		d := pa*pd - pb*pc
		if math32.Abs(d) <= 0.0001 {
			tx, ty = 0, 0
		} else {
			tx = (x*pd-y*pb)/d - bone.AX
			ty = (y*pa-x*pc)/d - bone.AY
		}
	}

	rotationIK += atan2Deg(ty, tx)
	if bone.AScaleX < 0 {
		rotationIK += 180
	}
	if rotationIK > 180 {
		rotationIK -= 360
	} else if rotationIK < -180 {
		rotationIK += 360
	}

	sx, sy := bone.AScaleX, bone.AScaleY
	if compress || stretch {
		switch mode {
		case TransformNoScale, TransformNoScaleOrReflection:
			tx = targetX - bone.WorldX
			ty = targetY - bone.WorldY
		}
		if b := bone.Data.Length * sx; b > 0.0001 {
			dd := tx*tx + ty*ty
			if (compress && dd < b*b) || (stretch && dd > b*b) {
				f := (math32.Sqrt(dd)/b-1)*alpha + 1
				sx *= f
				if uniform {
					sy *= f
				}
			}
		}
	}
	bone.UpdateWorldTransformWith(bone.AX, bone.AY, bone.ARotation+rotationIK*alpha, sx, sy, bone.AShearX, bone.AShearY)
}

// ApplyIk2 rotates parent and child so the child's tip reaches the world
// target. bendDir selects which of the two solutions is used. Both bones must
// inherit the full parent transform.
func ApplyIk2(parent, child *Bone, targetX, targetY float32, bendDir int, stretch, uniform bool, softness, alpha float32) {
	if parent.Data.TransformMode != TransformNormal || child.Data.TransformMode != TransformNormal {
		return
	}
	px, py := parent.AX, parent.AY
	psx, psy := parent.AScaleX, parent.AScaleY
	sx, sy := psx, psy
	csx := child.AScaleX
	var os1, os2, s2 float32
	if psx < 0 {
		psx = -psx
		os1 = 180
		s2 = -1
	} else {
		os1 = 0
		s2 = 1
	}
	if psy < 0 {
		psy = -psy
		s2 = -s2
	}
	if csx < 0 {
		csx = -csx
		os2 = 180
	}

	cx := child.AX
	var cy, cwx, cwy float32
	a, b, c, d := parent.A, parent.B, parent.C, parent.D
	u := math32.Abs(psx-psy) <= 0.0001
	if !u || stretch {
		cy = 0
		cwx = a*cx + parent.WorldX
		cwy = c*cx + parent.WorldY
	} else {
		cy = child.AY
		cwx = a*cx + b*cy + parent.WorldX
		cwy = c*cx + d*cy + parent.WorldY
	}

	var ppx, ppy float32
	a, b, c, d, ppx, ppy = parent.parentFrame()
	id := a*d - b*c
	x, y := cwx-ppx, cwy-ppy
	if math32.Abs(id) <= 0.0001 {
		id = 0
	} else {
		id = 1 / id
	}
	dx := (x*d-y*b)*id - px
	dy := (y*a-x*c)*id - py
	l1 := math32.Sqrt(dx*dx + dy*dy)
	l2 := child.Data.Length * csx
	if l1 < 0.0001 {
		ApplyIk1(parent, targetX, targetY, false, stretch, false, alpha)
		child.UpdateWorldTransformWith(cx, cy, 0, child.AScaleX, child.AScaleY, child.AShearX, child.AShearY)
		return
	}

	x, y = targetX-ppx, targetY-ppy
	tx := (x*d-y*b)*id - px
	ty := (y*a-x*c)*id - py
	dd := tx*tx + ty*ty
	if softness != 0 {
		softness *= psx * (csx + 1) * 0.5
		td := math32.Sqrt(dd)
		sd := td - l1 - l2*psx + softness
		if sd > 0 {
			p := math32.Min(1, sd/(softness*2)) - 1
			p = (sd - softness*(1-p*p)) / td
			tx -= p * tx
			ty -= p * ty
			dd = tx*tx + ty*ty
		}
	}

	bend := float32(bendDir)
	var a1, a2 float32
	if u {
		l2 *= psx
		cos := (dd - l1*l1 - l2*l2) / (2 * l1 * l2)
		switch {
		case cos < -1:
			cos = -1
			a2 = Pi * bend
		case cos > 1:
			cos = 1
			a2 = 0
			if stretch {
				f := (math32.Sqrt(dd)/(l1+l2)-1)*alpha + 1
				sx *= f
				if uniform {
					sy *= f
				}
			}
		default:
			a2 = math32.Acos(cos) * bend
		}
		a = l1 + l2*cos
		b = l2 * math32.Sin(a2)
		a1 = math32.Atan2(ty*a-tx*b, tx*a+ty*b)
	} else {
		a1, a2 = solveNonUniform(psx, psy, l1, l2, tx, ty, dd, bend)
	}

	os := math32.Atan2(cy, cx) * s2
	rotation := parent.ARotation
	a1 = (a1-os)*RadDeg + os1 - rotation
	if a1 > 180 {
		a1 -= 360
	} else if a1 < -180 {
		a1 += 360
	}
	parent.UpdateWorldTransformWith(px, py, rotation+a1*alpha, sx, sy, 0, 0)

	rotation = child.ARotation
	a2 = ((a2+os)*RadDeg-child.AShearX)*s2 + os2 - rotation
	if a2 > 180 {
		a2 -= 360
	} else if a2 < -180 {
		a2 += 360
	}
	child.UpdateWorldTransformWith(cx, cy, rotation+a2*alpha, child.AScaleX, child.AScaleY, child.AShearX, child.AShearY)
}

// solveNonUniform handles a parent with unequal x and y scale. The child tip
// moves on an ellipse around the child origin; the target is reached from the
// root of a quadratic when one exists, otherwise the closest or farthest
// point on the ellipse is used depending on which the target is nearer to.
func solveNonUniform(psx, psy, l1, l2, tx, ty, dd, bend float32) (a1, a2 float32) {
	a := psx * l2
	b := psy * l2
	aa, bb := a*a, b*b
	ta := math32.Atan2(ty, tx)
	c := bb*l1*l1 + aa*dd - aa*bb
	c1 := -2 * bb * l1
	c2 := bb - aa
	d := c1*c1 - 4*c2*c
	if d >= 0 {
		q := math32.Sqrt(d)
		if c1 < 0 {
			q = -q
		}
		q = -(c1 + q) * 0.5
		r0, r1 := q/c2, c/q
		r := r1
		if math32.Abs(r0) < math32.Abs(r1) {
			r = r0
		}
		if r*r <= dd {
			y := math32.Sqrt(dd-r*r) * bend
			return ta - math32.Atan2(y, r), math32.Atan2(y/psy, (r-l1)/psx)
		}
	}

	minAngle, minX, minY := Pi, l1-a, float32(0)
	minDist := minX * minX
	maxAngle, maxX, maxY := float32(0), l1+a, float32(0)
	maxDist := maxX * maxX
	c = -a * l1 / (aa - bb)
	if c >= -1 && c <= 1 {
		c = math32.Acos(c)
		x := a*math32.Cos(c) + l1
		y := b * math32.Sin(c)
		d = x*x + y*y
		if d < minDist {
			minAngle, minDist, minX, minY = c, d, x, y
		}
		if d > maxDist {
			maxAngle, maxDist, maxX, maxY = c, d, x, y
		}
	}
	if dd <= (minDist+maxDist)*0.5 {
		return ta - math32.Atan2(minY*bend, minX), minAngle * bend
	}
	return ta - math32.Atan2(maxY*bend, maxX), maxAngle * bend
}
