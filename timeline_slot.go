package marionette

import "github.com/chewxy/math32"

func (t *Timeline) applyColor(s *Skeleton, time, alpha float32, pose MixPose) {
	slot := s.Slots[t.Index]
	if !slot.Bone().active {
		return
	}
	c := &slot.Color
	if time < t.frames[0] {
		switch pose {
		case PoseSetup:
			*c = slot.Data.Color
		case PoseCurrent:
			setup := slot.Data.Color
			c.R += (setup.R - c.R) * alpha
			c.G += (setup.G - c.G) * alpha
			c.B += (setup.B - c.B) * alpha
			c.A += (setup.A - c.A) * alpha
		}
		return
	}
	v := t.sample(time)
	if alpha == 1 {
		c.Set(v[0], v[1], v[2], v[3])
		return
	}
	if pose == PoseSetup {
		*c = slot.Data.Color
	}
	c.R += (v[0] - c.R) * alpha
	c.G += (v[1] - c.G) * alpha
	c.B += (v[2] - c.B) * alpha
	c.A += (v[3] - c.A) * alpha
}

func (t *Timeline) applyTwoColor(s *Skeleton, time, alpha float32, pose MixPose) {
	slot := s.Slots[t.Index]
	if !slot.Bone().active {
		return
	}
	light, dark := &slot.Color, &slot.DarkColor
	setupDark := slot.Data.darkOrBlack()
	if time < t.frames[0] {
		switch pose {
		case PoseSetup:
			*light = slot.Data.Color
			dark.R, dark.G, dark.B = setupDark.R, setupDark.G, setupDark.B
		case PoseCurrent:
			setup := slot.Data.Color
			light.R += (setup.R - light.R) * alpha
			light.G += (setup.G - light.G) * alpha
			light.B += (setup.B - light.B) * alpha
			light.A += (setup.A - light.A) * alpha
			dark.R += (setupDark.R - dark.R) * alpha
			dark.G += (setupDark.G - dark.G) * alpha
			dark.B += (setupDark.B - dark.B) * alpha
		}
		return
	}
	v := t.sample(time)
	if alpha == 1 {
		light.Set(v[0], v[1], v[2], v[3])
		dark.R, dark.G, dark.B = v[4], v[5], v[6]
		return
	}
	if pose == PoseSetup {
		*light = slot.Data.Color
		dark.R, dark.G, dark.B = setupDark.R, setupDark.G, setupDark.B
	}
	light.R += (v[0] - light.R) * alpha
	light.G += (v[1] - light.G) * alpha
	light.B += (v[2] - light.B) * alpha
	light.A += (v[3] - light.A) * alpha
	dark.R += (v[4] - dark.R) * alpha
	dark.G += (v[5] - dark.G) * alpha
	dark.B += (v[6] - dark.B) * alpha
}

// applyAttachment snaps the slot to the keyed attachment. Mixing out with the
// setup pose restores the setup attachment.
func (t *Timeline) applyAttachment(s *Skeleton, time float32, pose MixPose, dir MixDirection) {
	slot := s.Slots[t.Index]
	if !slot.Bone().active {
		return
	}
	if dir == MixOut && pose == PoseSetup {
		t.attach(s, slot, slot.Data.AttachmentName)
		return
	}
	if time < t.frames[0] {
		if pose == PoseSetup {
			t.attach(s, slot, slot.Data.AttachmentName)
		}
		return
	}
	t.attach(s, slot, t.attachmentNames[t.keyIndex(time)])
}

func (t *Timeline) attach(s *Skeleton, slot *Slot, name string) {
	if name == "" {
		slot.SetAttachment(nil)
		return
	}
	slot.SetAttachment(s.Attachment(t.Index, name))
}

// applyDeform blends the slot's deform buffer toward the keyed vertices. It
// only runs while the slot shows the target attachment or a linked mesh that
// inherits its deforms.
func (t *Timeline) applyDeform(s *Skeleton, time, alpha float32, pose MixPose) {
	slot := s.Slots[t.Index]
	if !slot.Bone().active {
		return
	}
	a := slot.Attachment()
	if a == nil || !a.IsVertexAttachment() || a.DeformAttachment != t.Attachment {
		return
	}
	target := t.Attachment
	weighted := len(target.Bones) > 0
	setup := target.Vertices
	if len(slot.Deform) == 0 {
		pose = PoseSetup
	}

	frames := t.frames
	vertexCount := len(t.vertices[0])
	if time < frames[0] {
		switch pose {
		case PoseSetup:
			slot.Deform = slot.Deform[:0]
		case PoseCurrent:
			if alpha == 1 {
				slot.Deform = slot.Deform[:0]
				return
			}
			deform := slot.resizeDeform(vertexCount)
			if weighted {
				alpha = 1 - alpha
				for i := range deform {
					deform[i] *= alpha
				}
			} else {
				for i := range deform {
					deform[i] += (setup[i] - deform[i]) * alpha
				}
			}
		}
		return
	}

	deform := slot.resizeDeform(vertexCount)
	var prev, next []float32
	var percent float32
	if time >= frames[len(frames)-1] {
		prev = t.vertices[len(t.vertices)-1]
	} else {
		frame, p := t.bracket(time)
		prev, next = t.vertices[frame-1], t.vertices[frame]
		percent = p
	}

	value := func(i int) float32 {
		if next == nil {
			return prev[i]
		}
		return prev[i] + (next[i]-prev[i])*percent
	}

	switch {
	case alpha == 1:
		for i := range deform {
			deform[i] = value(i)
		}
	case pose == PoseSetup:
		if weighted {
			for i := range deform {
				deform[i] = value(i) * alpha
			}
		} else {
			for i := range deform {
				deform[i] = setup[i] + (value(i)-setup[i])*alpha
			}
		}
	default:
		for i := range deform {
			deform[i] += (value(i) - deform[i]) * alpha
		}
	}
}

func (t *Timeline) applyDrawOrder(s *Skeleton, time float32, pose MixPose, dir MixDirection) {
	if dir == MixOut && pose == PoseSetup {
		copy(s.DrawOrder, s.Slots)
		return
	}
	if time < t.frames[0] {
		if pose == PoseSetup {
			copy(s.DrawOrder, s.Slots)
		}
		return
	}
	order := t.drawOrders[t.keyIndex(time)]
	if order == nil {
		copy(s.DrawOrder, s.Slots)
		return
	}
	for i, setupIndex := range order {
		s.DrawOrder[i] = s.Slots[setupIndex]
	}
}

// applyEvents appends every event keyed in (lastTime, time]. When lastTime is
// after time the animation looped: events up to the end are fired first, then
// the search restarts from before the first key.
func (t *Timeline) applyEvents(lastTime, time float32, events []*Event) []*Event {
	frames := t.frames
	frameCount := len(frames)
	if lastTime > time {
		events = t.applyEvents(lastTime, math32.MaxFloat32, events)
		lastTime = -1
	} else if lastTime >= frames[frameCount-1] {
		return events
	}
	if time < frames[0] {
		return events
	}

	var frame int
	if lastTime >= frames[0] {
		frame = binarySearch(frames, lastTime, 1)
		frameTime := frames[frame]
		for frame > 0 && frames[frame-1] == frameTime {
			frame--
		}
	}
	for ; frame < frameCount && time >= frames[frame]; frame++ {
		events = append(events, t.events[frame])
	}
	return events
}
