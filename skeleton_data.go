package marionette

// ConstraintBase holds the fields shared by every constraint definition.
type ConstraintBase struct {
	Name string

	// Order positions the constraint in the update cache relative to the
	// other constraints of the skeleton.
	Order int

	// SkinRequired constraints are only active while the skeleton's skin
	// lists them.
	SkinRequired bool
}

func (b *ConstraintBase) base() *ConstraintBase { return b }

// ConstraintData is implemented by *IkConstraintData,
// *TransformConstraintData, *PathConstraintData, *PhysicsConstraintData and
// *SpringConstraintData.
type ConstraintData interface {
	base() *ConstraintBase
}

// SkeletonData is the immutable definition shared by every Skeleton built
// from it. It is produced by a loader and must not be modified once a
// skeleton has been created from it.
type SkeletonData struct {
	Name string

	// Bones are ordered so parents precede children.
	Bones []*BoneData
	Slots []*SlotData

	Skins       []*Skin
	DefaultSkin *Skin

	Events     []*EventData
	Animations []*Animation

	IkConstraints        []*IkConstraintData
	TransformConstraints []*TransformConstraintData
	PathConstraints      []*PathConstraintData
	PhysicsConstraints   []*PhysicsConstraintData
	SpringConstraints    []*SpringConstraintData

	X, Y, Width, Height float32

	// ReferenceScale converts physics wind and gravity from skeleton units.
	ReferenceScale float32
	Fps            float32
}

// NewSkeletonData returns empty skeleton data with the default physics
// reference scale.
func NewSkeletonData(name string) *SkeletonData {
	return &SkeletonData{Name: name, ReferenceScale: 100, Fps: 30}
}

// FindBone returns the bone named name, or nil.
func (d *SkeletonData) FindBone(name string) *BoneData {
	for _, b := range d.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// FindSlot returns the slot named name, or nil.
func (d *SkeletonData) FindSlot(name string) *SlotData {
	for _, s := range d.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindSkin returns the skin named name, or nil.
func (d *SkeletonData) FindSkin(name string) *Skin {
	for _, s := range d.Skins {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindEvent returns the event named name, or nil.
func (d *SkeletonData) FindEvent(name string) *EventData {
	for _, e := range d.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindAnimation returns the animation named name, or nil.
func (d *SkeletonData) FindAnimation(name string) *Animation {
	for _, a := range d.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindIkConstraint returns the IK constraint named name, or nil.
func (d *SkeletonData) FindIkConstraint(name string) *IkConstraintData {
	for _, c := range d.IkConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindTransformConstraint returns the transform constraint named name, or nil.
func (d *SkeletonData) FindTransformConstraint(name string) *TransformConstraintData {
	for _, c := range d.TransformConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindPathConstraint returns the path constraint named name, or nil.
func (d *SkeletonData) FindPathConstraint(name string) *PathConstraintData {
	for _, c := range d.PathConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindPhysicsConstraint returns the physics constraint named name, or nil.
func (d *SkeletonData) FindPhysicsConstraint(name string) *PhysicsConstraintData {
	for _, c := range d.PhysicsConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// constraints returns every constraint definition in type order.
func (d *SkeletonData) constraints() []ConstraintData {
	out := make([]ConstraintData, 0, len(d.IkConstraints)+len(d.TransformConstraints)+
		len(d.PathConstraints)+len(d.PhysicsConstraints)+len(d.SpringConstraints))
	for _, c := range d.IkConstraints {
		out = append(out, c)
	}
	for _, c := range d.TransformConstraints {
		out = append(out, c)
	}
	for _, c := range d.PathConstraints {
		out = append(out, c)
	}
	for _, c := range d.PhysicsConstraints {
		out = append(out, c)
	}
	for _, c := range d.SpringConstraints {
		out = append(out, c)
	}
	return out
}
