package marionette

// mixValue blends a constraint value toward the keyed value. Constraint values
// are absolute, unlike bone timelines which key offsets from the setup pose.
func mixValue(current, setup, value, alpha float32, pose MixPose) float32 {
	if pose == PoseSetup {
		return setup + (value-setup)*alpha
	}
	return current + (value-current)*alpha
}

// mixToSetup is the value used before the first key.
func mixToSetup(current, setup, alpha float32, pose MixPose) float32 {
	switch pose {
	case PoseSetup:
		return setup
	case PoseCurrent:
		return current + (setup-current)*alpha
	}
	return current
}

func (t *Timeline) applyIk(s *Skeleton, time, alpha float32, pose MixPose, dir MixDirection) {
	c := s.IkConstraints[t.Index]
	if !c.active {
		return
	}
	d := c.Data
	if time < t.frames[0] {
		c.Mix = mixToSetup(c.Mix, d.Mix, alpha, pose)
		c.Softness = mixToSetup(c.Softness, d.Softness, alpha, pose)
		if pose != PoseCurrentLayered {
			c.BendDirection = d.BendDirection
			c.Compress = d.Compress
			c.Stretch = d.Stretch
		}
		return
	}

	v := t.sample(time)
	c.Mix = mixValue(c.Mix, d.Mix, v[0], alpha, pose)
	c.Softness = mixValue(c.Softness, d.Softness, v[1], alpha, pose)

	k := t.keyIndex(time)
	switch {
	case pose == PoseSetup && dir == MixOut:
		c.BendDirection = d.BendDirection
		c.Compress = d.Compress
		c.Stretch = d.Stretch
	case dir == MixIn:
		c.BendDirection = int(t.frames[k+3])
		c.Compress = t.frames[k+4] != 0
		c.Stretch = t.frames[k+5] != 0
	}
}

func (t *Timeline) applyTransform(s *Skeleton, time, alpha float32, pose MixPose) {
	c := s.TransformConstraints[t.Index]
	if !c.active {
		return
	}
	d := c.Data
	if time < t.frames[0] {
		c.RotateMix = mixToSetup(c.RotateMix, d.RotateMix, alpha, pose)
		c.TranslateMix = mixToSetup(c.TranslateMix, d.TranslateMix, alpha, pose)
		c.ScaleMix = mixToSetup(c.ScaleMix, d.ScaleMix, alpha, pose)
		c.ShearMix = mixToSetup(c.ShearMix, d.ShearMix, alpha, pose)
		return
	}
	v := t.sample(time)
	c.RotateMix = mixValue(c.RotateMix, d.RotateMix, v[0], alpha, pose)
	c.TranslateMix = mixValue(c.TranslateMix, d.TranslateMix, v[1], alpha, pose)
	c.ScaleMix = mixValue(c.ScaleMix, d.ScaleMix, v[2], alpha, pose)
	c.ShearMix = mixValue(c.ShearMix, d.ShearMix, v[3], alpha, pose)
}

func (t *Timeline) applyPathPosition(s *Skeleton, time, alpha float32, pose MixPose) {
	c := s.PathConstraints[t.Index]
	if !c.active {
		return
	}
	if time < t.frames[0] {
		c.Position = mixToSetup(c.Position, c.Data.Position, alpha, pose)
		return
	}
	c.Position = mixValue(c.Position, c.Data.Position, t.sample(time)[0], alpha, pose)
}

func (t *Timeline) applyPathSpacing(s *Skeleton, time, alpha float32, pose MixPose) {
	c := s.PathConstraints[t.Index]
	if !c.active {
		return
	}
	if time < t.frames[0] {
		c.Spacing = mixToSetup(c.Spacing, c.Data.Spacing, alpha, pose)
		return
	}
	c.Spacing = mixValue(c.Spacing, c.Data.Spacing, t.sample(time)[0], alpha, pose)
}

func (t *Timeline) applyPathMix(s *Skeleton, time, alpha float32, pose MixPose) {
	c := s.PathConstraints[t.Index]
	if !c.active {
		return
	}
	d := c.Data
	if time < t.frames[0] {
		c.RotateMix = mixToSetup(c.RotateMix, d.RotateMix, alpha, pose)
		c.TranslateMix = mixToSetup(c.TranslateMix, d.TranslateMix, alpha, pose)
		return
	}
	v := t.sample(time)
	c.RotateMix = mixValue(c.RotateMix, d.RotateMix, v[0], alpha, pose)
	c.TranslateMix = mixValue(c.TranslateMix, d.TranslateMix, v[1], alpha, pose)
}

func (t *Timeline) applyPhysics(s *Skeleton, time, alpha float32, pose MixPose) {
	if t.Index != -1 {
		c := s.PhysicsConstraints[t.Index]
		if c.active {
			t.applyPhysicsValue(c, time, alpha, pose)
		}
		return
	}
	for _, c := range s.PhysicsConstraints {
		if c.active && t.Property.global(c.Data) {
			t.applyPhysicsValue(c, time, alpha, pose)
		}
	}
}

func (t *Timeline) applyPhysicsValue(c *PhysicsConstraint, time, alpha float32, pose MixPose) {
	prop := t.Property
	current, setup := prop.get(c), prop.setup(c.Data)
	if time < t.frames[0] {
		prop.set(c, mixToSetup(current, setup, alpha, pose))
		return
	}
	prop.set(c, mixValue(current, setup, t.sample(time)[0], alpha, pose))
}

// applyPhysicsReset resets physics when a key lies in (lastTime, time],
// handling loop wrap the same way as event timelines.
func (t *Timeline) applyPhysicsReset(s *Skeleton, lastTime, time float32) {
	var target *PhysicsConstraint
	if t.Index != -1 {
		target = s.PhysicsConstraints[t.Index]
		if !target.active {
			return
		}
	}
	frames := t.frames
	if lastTime > time {
		t.applyPhysicsReset(s, lastTime, float32(1<<30))
		lastTime = -1
	} else if lastTime >= frames[len(frames)-1] {
		return
	}
	if time < frames[0] {
		return
	}
	if lastTime < frames[0] || time >= frames[binarySearch(frames, lastTime, 1)] {
		if target != nil {
			target.Reset()
			return
		}
		for _, c := range s.PhysicsConstraints {
			if c.active {
				c.Reset()
			}
		}
	}
}

func (t *Timeline) applySpring(s *Skeleton, time, alpha float32, pose MixPose) {
	c := s.SpringConstraints[t.Index]
	if !c.active {
		return
	}
	d := c.Data
	if time < t.frames[0] {
		c.Mix = mixToSetup(c.Mix, d.Mix, alpha, pose)
		c.Friction = mixToSetup(c.Friction, d.Friction, alpha, pose)
		c.Gravity = mixToSetup(c.Gravity, d.Gravity, alpha, pose)
		c.Wind = mixToSetup(c.Wind, d.Wind, alpha, pose)
		c.Stiffness = mixToSetup(c.Stiffness, d.Stiffness, alpha, pose)
		c.Damping = mixToSetup(c.Damping, d.Damping, alpha, pose)
		return
	}
	v := t.sample(time)
	c.Mix = mixValue(c.Mix, d.Mix, v[0], alpha, pose)
	c.Friction = mixValue(c.Friction, d.Friction, v[1], alpha, pose)
	c.Gravity = mixValue(c.Gravity, d.Gravity, v[2], alpha, pose)
	c.Wind = mixValue(c.Wind, d.Wind, v[3], alpha, pose)
	c.Stiffness = mixValue(c.Stiffness, d.Stiffness, v[4], alpha, pose)
	c.Damping = mixValue(c.Damping, d.Damping, v[5], alpha, pose)
}
