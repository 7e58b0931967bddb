package marionette

// SpringConstraintData describes a spring chain over bones. Only the data
// and its mixing are supported; see SpringConstraint.Update.
type SpringConstraintData struct {
	ConstraintBase

	Bones []*BoneData

	Mix, Friction, Gravity, Wind, Stiffness, Damping float32

	Rope    bool
	Stretch bool
}

// NewSpringConstraintData returns spring data with full mix.
func NewSpringConstraintData(name string) *SpringConstraintData {
	return &SpringConstraintData{ConstraintBase: ConstraintBase{Name: name}, Mix: 1}
}

// SpringConstraint is the per-skeleton state of a SpringConstraintData.
type SpringConstraint struct {
	Data  *SpringConstraintData
	Bones []*Bone

	Mix, Friction, Gravity, Wind, Stiffness, Damping float32

	active bool
	warned bool
}

func newSpringConstraint(data *SpringConstraintData, s *Skeleton) *SpringConstraint {
	c := &SpringConstraint{Data: data}
	c.Bones = make([]*Bone, len(data.Bones))
	for i, bd := range data.Bones {
		c.Bones[i] = s.Bones[bd.Index]
	}
	c.SetToSetupPose()
	return c
}

// SetToSetupPose restores the data's values.
func (c *SpringConstraint) SetToSetupPose() {
	d := c.Data
	c.Mix, c.Friction, c.Gravity = d.Mix, d.Friction, d.Gravity
	c.Wind, c.Stiffness, c.Damping = d.Wind, d.Stiffness, d.Damping
}

// Active reports whether the constraint is scheduled.
func (c *SpringConstraint) Active() bool { return c.active }

// Update does not move any bone. There is no reference behavior for the
// spring solver yet, so the constraint only keeps its scheduling slot and
// timeline-driven values.
//
// TODO: implement the solver once a reference runtime ships spring behavior.
func (c *SpringConstraint) Update() {
	if !c.warned && debugEnabled() {
		c.warned = true
		debugWarn("spring constraint has no solver", "constraint", c.Data.Name)
	}
}
