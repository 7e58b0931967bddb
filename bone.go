package marionette

import "github.com/chewxy/math32"

// BoneData is the setup pose of a bone.
type BoneData struct {
	Index  int
	Name   string
	Parent *BoneData
	Length float32

	X, Y, Rotation, ScaleX, ScaleY, ShearX, ShearY float32

	TransformMode TransformMode

	// SkinRequired bones are only active while the skeleton's skin lists them.
	SkinRequired bool

	// Color is an editor hint; it does not affect the pose.
	Color Color
}

// NewBoneData returns bone data with unit scale. parent may be nil for the
// root bone.
func NewBoneData(index int, name string, parent *BoneData) *BoneData {
	return &BoneData{
		Index:  index,
		Name:   name,
		Parent: parent,
		ScaleX: 1,
		ScaleY: 1,
		Color:  Color{0.61, 0.61, 0.61, 1},
	}
}

// Bone is the per-skeleton pose of a BoneData. Local values are written by
// timelines; applied values (AX...) are what the world transform was last
// computed from, which constraints may change. The world transform is only
// recomputed by Skeleton.UpdateWorldTransform.
type Bone struct {
	Data     *BoneData
	skeleton *Skeleton
	index    int
	parent   int
	children []int

	// Local pose.
	X, Y, Rotation, ScaleX, ScaleY, ShearX, ShearY float32

	// Applied pose.
	AX, AY, ARotation, AScaleX, AScaleY, AShearX, AShearY float32

	// World transform: [A B WorldX; C D WorldY].
	A, B, C, D, WorldX, WorldY float32

	sorted bool
	active bool
}

func newBone(data *BoneData, s *Skeleton, parent int) *Bone {
	b := &Bone{Data: data, skeleton: s, index: data.Index, parent: parent}
	b.SetToSetupPose()
	return b
}

// Skeleton returns the skeleton that owns the bone.
func (b *Bone) Skeleton() *Skeleton { return b.skeleton }

// Parent returns the parent bone, or nil for the root.
func (b *Bone) Parent() *Bone {
	if b.parent < 0 {
		return nil
	}
	return b.skeleton.Bones[b.parent]
}

// Children returns the direct children of the bone.
func (b *Bone) Children() []*Bone {
	out := make([]*Bone, len(b.children))
	for i, c := range b.children {
		out[i] = b.skeleton.Bones[c]
	}
	return out
}

// Active reports whether the bone is updated. Bones that require a skin are
// inactive while the skin does not include them.
func (b *Bone) Active() bool { return b.active }

// SetToSetupPose copies the setup pose into the local pose.
func (b *Bone) SetToSetupPose() {
	d := b.Data
	b.X, b.Y = d.X, d.Y
	b.Rotation = d.Rotation
	b.ScaleX, b.ScaleY = d.ScaleX, d.ScaleY
	b.ShearX, b.ShearY = d.ShearX, d.ShearY
}

// resetApplied copies the local pose into the applied pose.
func (b *Bone) resetApplied() {
	b.AX, b.AY = b.X, b.Y
	b.ARotation = b.Rotation
	b.AScaleX, b.AScaleY = b.ScaleX, b.ScaleY
	b.AShearX, b.AShearY = b.ShearX, b.ShearY
}

// update recomputes the world transform from the applied pose.
func (b *Bone) update() {
	b.UpdateWorldTransformWith(b.AX, b.AY, b.ARotation, b.AScaleX, b.AScaleY, b.AShearX, b.AShearY)
}

// UpdateWorldTransform recomputes the world transform from the local pose.
// Children are not updated.
func (b *Bone) UpdateWorldTransform() {
	b.UpdateWorldTransformWith(b.X, b.Y, b.Rotation, b.ScaleX, b.ScaleY, b.ShearX, b.ShearY)
}

// parentFrame returns the parent's world transform, or the skeleton's
// position and scale for the root bone.
func (b *Bone) parentFrame() (pa, pb, pc, pd, px, py float32) {
	if p := b.Parent(); p != nil {
		return p.A, p.B, p.C, p.D, p.WorldX, p.WorldY
	}
	s := b.skeleton
	return s.scaleX(), 0, 0, s.scaleY(), s.X, s.Y
}

// UpdateWorldTransformWith stores the given values as the applied pose and
// computes the world transform from them and the parent's world transform.
func (b *Bone) UpdateWorldTransformWith(x, y, rotation, scaleX, scaleY, shearX, shearY float32) {
	b.AX, b.AY = x, y
	b.ARotation = rotation
	b.AScaleX, b.AScaleY = scaleX, scaleY
	b.AShearX, b.AShearY = shearX, shearY

	s := b.skeleton
	sx, sy := s.scaleX(), s.scaleY()
	parent := b.Parent()
	if parent == nil {
		rx := rotation + shearX
		ry := rotation + 90 + shearY
		b.A = CosDeg(rx) * scaleX * sx
		b.B = CosDeg(ry) * scaleY * sx
		b.C = SinDeg(rx) * scaleX * sy
		b.D = SinDeg(ry) * scaleY * sy
		b.WorldX = x*sx + s.X
		b.WorldY = y*sy + s.Y
		return
	}

	pa, pb, pc, pd := parent.A, parent.B, parent.C, parent.D
	b.WorldX = pa*x + pb*y + parent.WorldX
	b.WorldY = pc*x + pd*y + parent.WorldY

	switch b.Data.TransformMode {
	case TransformNormal:
		rx := rotation + shearX
		ry := rotation + 90 + shearY
		la := CosDeg(rx) * scaleX
		lb := CosDeg(ry) * scaleY
		lc := SinDeg(rx) * scaleX
		ld := SinDeg(ry) * scaleY
		b.A = pa*la + pb*lc
		b.B = pa*lb + pb*ld
		b.C = pc*la + pd*lc
		b.D = pc*lb + pd*ld
		return

	case TransformOnlyTranslation:
		rx := rotation + shearX
		ry := rotation + 90 + shearY
		b.A = CosDeg(rx) * scaleX
		b.B = CosDeg(ry) * scaleY
		b.C = SinDeg(rx) * scaleX
		b.D = SinDeg(ry) * scaleY

	case TransformNoRotationOrReflection:
		isx, isy := 1/sx, 1/sy
		pa *= isx
		pc *= isy
		var prx float32
		if d := pa*pa + pc*pc; d > 0.0001 {
			d = math32.Abs(pa*pd*isy-pb*isx*pc) / d
			pb = pc * d
			pd = pa * d
			prx = Atan2(pc, pa) * RadDeg
		} else {
			pa, pc = 0, 0
			prx = 90 - Atan2(pd, pb)*RadDeg
		}
		rx := rotation + shearX - prx
		ry := rotation + shearY - prx + 90
		la := CosDeg(rx) * scaleX
		lb := CosDeg(ry) * scaleY
		lc := SinDeg(rx) * scaleX
		ld := SinDeg(ry) * scaleY
		b.A = pa*la - pb*lc
		b.B = pa*lb - pb*ld
		b.C = pc*la + pd*lc
		b.D = pc*lb + pd*ld

	case TransformNoScale, TransformNoScaleOrReflection:
		cos, sin := CosDeg(rotation), SinDeg(rotation)
		za := (pa*cos + pb*sin) / sx
		zc := (pc*cos + pd*sin) / sy
		d := math32.Sqrt(za*za + zc*zc)
		if d > 0.00001 {
			d = 1 / d
		}
		za *= d
		zc *= d
		d = math32.Sqrt(za*za + zc*zc)
		if b.Data.TransformMode == TransformNoScale && (pa*pd-pb*pc < 0) != ((sx < 0) != (sy < 0)) {
			d = -d
		}
		r := HalfPi + Atan2(zc, za)
		zb := Cos(r) * d
		zd := Sin(r) * d
		la := CosDeg(shearX) * scaleX
		lb := CosDeg(90+shearY) * scaleY
		lc := SinDeg(shearX) * scaleX
		ld := SinDeg(90+shearY) * scaleY
		b.A = za*la + zb*lc
		b.B = za*lb + zb*ld
		b.C = zc*la + zd*lc
		b.D = zc*lb + zd*ld
	}
	b.A *= sx
	b.B *= sx
	b.C *= sy
	b.D *= sy
}

// UpdateAppliedTransform derives the applied pose from the world transform.
// Constraints call it after writing world values directly so later bones and
// constraints see a consistent local pose.
func (b *Bone) UpdateAppliedTransform() {
	s := b.skeleton
	pa, pb, pc, pd, px, py := b.parentFrame()
	pid := 1 / (pa*pd - pb*pc)
	ia, ib, ic, id := pd*pid, pb*pid, pc*pid, pa*pid
	dx, dy := b.WorldX-px, b.WorldY-py
	b.AX = dx*ia - dy*ib
	b.AY = dy*id - dx*ic

	var ra, rb, rc, rd float32
	mode := b.Data.TransformMode
	if b.parent < 0 {
		mode = TransformNormal
	}
	if mode == TransformOnlyTranslation {
		ra, rb, rc, rd = b.A, b.B, b.C, b.D
	} else {
		sx, sy := s.scaleX(), s.scaleY()
		switch mode {
		case TransformNoRotationOrReflection:
			d := math32.Abs(pa*pd-pb*pc) / (pa*pa + pc*pc)
			sa := pa / sx
			sc := pc / sy
			pb = -sc * d * sx
			pd = sa * d * sy
			pid = 1 / (pa*pd - pb*pc)
			ia, ib, ic, id = pd*pid, pb*pid, pc*pid, pa*pid
		case TransformNoScale, TransformNoScaleOrReflection:
			cos, sin := CosDeg(b.Rotation), SinDeg(b.Rotation)
			pa = (pa*cos + pb*sin) / sx
			pc = (pc*cos + pd*sin) / sy
			d := math32.Sqrt(pa*pa + pc*pc)
			if d > 0.00001 {
				d = 1 / d
			}
			pa *= d
			pc *= d
			d = math32.Sqrt(pa*pa + pc*pc)
			if mode == TransformNoScale && (pid < 0) != ((sx < 0) != (sy < 0)) {
				d = -d
			}
			r := HalfPi + Atan2(pc, pa)
			pb = Cos(r) * d
			pd = Sin(r) * d
			pid = 1 / (pa*pd - pb*pc)
			ia, ib, ic, id = pd*pid, pb*pid, pc*pid, pa*pid
		}
		ra = ia*b.A - ib*b.C
		rb = ia*b.B - ib*b.D
		rc = id*b.C - ic*b.A
		rd = id*b.D - ic*b.B
	}

	b.AShearX = 0
	b.AScaleX = math32.Sqrt(ra*ra + rc*rc)
	if b.AScaleX > 0.0001 {
		det := ra*rd - rb*rc
		b.AScaleY = det / b.AScaleX
		b.AShearY = -Atan2(ra*rb+rc*rd, det) * RadDeg
		b.ARotation = Atan2(rc, ra) * RadDeg
	} else {
		b.AScaleX = 0
		b.AScaleY = math32.Sqrt(rb*rb + rd*rd)
		b.AShearY = 0
		b.ARotation = 90 - Atan2(rd, rb)*RadDeg
	}
}

// WorldRotationX returns the world rotation of the bone's x axis in degrees.
func (b *Bone) WorldRotationX() float32 { return Atan2(b.C, b.A) * RadDeg }

// WorldRotationY returns the world rotation of the bone's y axis in degrees.
func (b *Bone) WorldRotationY() float32 { return Atan2(b.D, b.B) * RadDeg }

// WorldScaleX returns the magnitude of the world x axis.
func (b *Bone) WorldScaleX() float32 { return math32.Sqrt(b.A*b.A + b.C*b.C) }

// WorldScaleY returns the magnitude of the world y axis.
func (b *Bone) WorldScaleY() float32 { return math32.Sqrt(b.B*b.B + b.D*b.D) }

// WorldToLocal transforms a world point into the bone's local space.
func (b *Bone) WorldToLocal(worldX, worldY float32) (x, y float32) {
	det := b.A*b.D - b.B*b.C
	dx, dy := worldX-b.WorldX, worldY-b.WorldY
	return (dx*b.D - dy*b.B) / det, (dy*b.A - dx*b.C) / det
}

// LocalToWorld transforms a point in the bone's local space to world space.
func (b *Bone) LocalToWorld(localX, localY float32) (x, y float32) {
	return localX*b.A + localY*b.B + b.WorldX, localX*b.C + localY*b.D + b.WorldY
}

// WorldToLocalRotation converts a world rotation in degrees to a local one.
func (b *Bone) WorldToLocalRotation(worldRotation float32) float32 {
	sin, cos := SinDeg(worldRotation), CosDeg(worldRotation)
	return Atan2(b.A*sin-b.C*cos, b.D*cos-b.B*sin)*RadDeg + b.Rotation - b.ShearX
}

// LocalToWorldRotation converts a local rotation in degrees to a world one.
func (b *Bone) LocalToWorldRotation(localRotation float32) float32 {
	localRotation -= b.Rotation - b.ShearX
	sin, cos := SinDeg(localRotation), CosDeg(localRotation)
	return Atan2(cos*b.C+sin*b.D, cos*b.A+sin*b.B) * RadDeg
}

// RotateWorld rotates the world transform by degrees. Call
// UpdateAppliedTransform afterwards if the applied pose must follow.
func (b *Bone) RotateWorld(degrees float32) {
	sin, cos := SinDeg(degrees), CosDeg(degrees)
	ra, rb := b.A, b.B
	b.A = cos*ra - sin*b.C
	b.B = cos*rb - sin*b.D
	b.C = sin*ra + cos*b.C
	b.D = sin*rb + cos*b.D
}
