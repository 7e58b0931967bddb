package marionette

import "github.com/chewxy/math32"

func (t *Timeline) applyRotate(s *Skeleton, time, alpha float32, pose MixPose) {
	bone := s.Bones[t.Index]
	if !bone.active {
		return
	}
	frames := t.frames
	if time < frames[0] {
		switch pose {
		case PoseSetup:
			bone.Rotation = bone.Data.Rotation
		case PoseCurrent:
			bone.Rotation += WrapDegrees(bone.Data.Rotation-bone.Rotation) * alpha
		}
		return
	}

	var r float32
	if time >= frames[len(frames)-2] {
		r = frames[len(frames)-1]
	} else {
		frame, percent := t.bracket(time)
		prev := frames[frame-1]
		r = prev + WrapDegrees(frames[frame+1]-prev)*percent
	}

	if pose == PoseSetup {
		bone.Rotation = bone.Data.Rotation + WrapDegrees(r)*alpha
		return
	}
	bone.Rotation += WrapDegrees(bone.Data.Rotation+r-bone.Rotation) * alpha
}

func (t *Timeline) applyTranslate(s *Skeleton, time, alpha float32, pose MixPose) {
	bone := s.Bones[t.Index]
	if !bone.active {
		return
	}
	if time < t.frames[0] {
		switch pose {
		case PoseSetup:
			bone.X, bone.Y = bone.Data.X, bone.Data.Y
		case PoseCurrent:
			bone.X += (bone.Data.X - bone.X) * alpha
			bone.Y += (bone.Data.Y - bone.Y) * alpha
		}
		return
	}
	v := t.sample(time)
	if pose == PoseSetup {
		bone.X = bone.Data.X + v[0]*alpha
		bone.Y = bone.Data.Y + v[1]*alpha
		return
	}
	bone.X += (bone.Data.X + v[0] - bone.X) * alpha
	bone.Y += (bone.Data.Y + v[1] - bone.Y) * alpha
}

// applyScale multiplies keyed values by the setup scale. When blending, the
// sign of the base or the keyed value is carried over so mirrored bones do not
// collapse through zero.
func (t *Timeline) applyScale(s *Skeleton, time, alpha float32, pose MixPose, dir MixDirection) {
	bone := s.Bones[t.Index]
	if !bone.active {
		return
	}
	if time < t.frames[0] {
		switch pose {
		case PoseSetup:
			bone.ScaleX, bone.ScaleY = bone.Data.ScaleX, bone.Data.ScaleY
		case PoseCurrent:
			bone.ScaleX += (bone.Data.ScaleX - bone.ScaleX) * alpha
			bone.ScaleY += (bone.Data.ScaleY - bone.ScaleY) * alpha
		}
		return
	}
	v := t.sample(time)
	x := v[0] * bone.Data.ScaleX
	y := v[1] * bone.Data.ScaleY
	if alpha == 1 {
		bone.ScaleX, bone.ScaleY = x, y
		return
	}

	var bx, by float32
	if pose == PoseSetup {
		bx, by = bone.Data.ScaleX, bone.Data.ScaleY
	} else {
		bx, by = bone.ScaleX, bone.ScaleY
	}
	if dir == MixOut {
		x = math32.Abs(x) * signum(bx)
		y = math32.Abs(y) * signum(by)
	} else {
		bx = math32.Abs(bx) * signum(x)
		by = math32.Abs(by) * signum(y)
	}
	bone.ScaleX = bx + (x-bx)*alpha
	bone.ScaleY = by + (y-by)*alpha
}

func (t *Timeline) applyShear(s *Skeleton, time, alpha float32, pose MixPose) {
	bone := s.Bones[t.Index]
	if !bone.active {
		return
	}
	if time < t.frames[0] {
		switch pose {
		case PoseSetup:
			bone.ShearX, bone.ShearY = bone.Data.ShearX, bone.Data.ShearY
		case PoseCurrent:
			bone.ShearX += (bone.Data.ShearX - bone.ShearX) * alpha
			bone.ShearY += (bone.Data.ShearY - bone.ShearY) * alpha
		}
		return
	}
	v := t.sample(time)
	if pose == PoseSetup {
		bone.ShearX = bone.Data.ShearX + v[0]*alpha
		bone.ShearY = bone.Data.ShearY + v[1]*alpha
		return
	}
	bone.ShearX += (bone.Data.ShearX + v[0] - bone.ShearX) * alpha
	bone.ShearY += (bone.Data.ShearY + v[1] - bone.ShearY) * alpha
}

// signum returns -1 for negative values and 1 otherwise.
func signum(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
