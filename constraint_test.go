package marionette

import (
	"testing"

	"github.com/chewxy/math32"
)

// --- IK ---

func newIkArm(t *testing.T, targetX, targetY float32, bones ...int) *Skeleton {
	t.Helper()
	d := newArmData()
	d.Bones[3].X, d.Bones[3].Y = targetX, targetY
	ik := NewIkConstraintData("ik")
	for _, i := range bones {
		ik.Bones = append(ik.Bones, d.Bones[i])
	}
	ik.Target = d.Bones[3]
	d.IkConstraints = []*IkConstraintData{ik}
	return mustSkeleton(t, d)
}

func tip(b *Bone) (float32, float32) {
	return b.LocalToWorld(b.Data.Length, 0)
}

func TestApplyIk1PointsAtTarget(t *testing.T) {
	s := newIkArm(t, 0, 15, 1)
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "rotation", s.FindBone("upper").WorldRotationX(), 90)
	// Without stretch the bone keeps its length.
	x, y := tip(s.FindBone("upper"))
	assertNear(t, "tip x", x, 0)
	assertNear(t, "tip y", y, 10)
}

func TestApplyIk1Stretch(t *testing.T) {
	s := newIkArm(t, 0, 15, 1)
	s.IkConstraints[0].Stretch = true
	s.UpdateWorldTransform(PhysicsNone)
	x, y := tip(s.FindBone("upper"))
	assertNear(t, "tip x", x, 0)
	assertNear(t, "tip y", y, 15)
}

func TestApplyIk1Compress(t *testing.T) {
	s := newIkArm(t, 5, 0, 1)
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "no compress", s.FindBone("upper").WorldScaleX(), 1)

	s.IkConstraints[0].Compress = true
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "compress", s.FindBone("upper").WorldScaleX(), 0.5)
}

func TestApplyIk1Mix(t *testing.T) {
	s := newIkArm(t, 0, 15, 1)
	s.IkConstraints[0].Mix = 0.5
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "rotation", s.FindBone("upper").WorldRotationX(), 45)
}

func TestApplyIk2TargetAtTipIsIdentity(t *testing.T) {
	s := newIkArm(t, 20, 0, 1, 2)
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "upper", s.FindBone("upper").WorldRotationX(), 0)
	assertNear(t, "lower", s.FindBone("lower").WorldRotationX(), 0)
}

func TestApplyIk2BendDirection(t *testing.T) {
	for _, bend := range []int{1, -1} {
		s := newIkArm(t, 10, 10, 1, 2)
		s.IkConstraints[0].BendDirection = bend
		s.UpdateWorldTransform(PhysicsNone)

		x, y := tip(s.FindBone("lower"))
		assertNear(t, "tip x", x, 10)
		assertNear(t, "tip y", y, 10)

		// The elbow sits on the side of the target line chosen by bend.
		elbow := s.FindBone("lower")
		side := 10*elbow.WorldY - 10*elbow.WorldX
		if (side > 0) != (bend < 0) {
			t.Errorf("bend %d: elbow at (%v, %v) on the wrong side", bend, elbow.WorldX, elbow.WorldY)
		}
	}
}

func TestApplyIk2OutOfReachStraightens(t *testing.T) {
	s := newIkArm(t, 0, 50, 1, 2)
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "upper", s.FindBone("upper").WorldRotationX(), 90)
	assertNear(t, "lower", s.FindBone("lower").WorldRotationX(), 90)
	x, y := tip(s.FindBone("lower"))
	assertNear(t, "tip x", x, 0)
	assertNear(t, "tip y", y, 20)
}

func TestApplyIk2Stretch(t *testing.T) {
	s := newIkArm(t, 30, 0, 1, 2)
	s.IkConstraints[0].Stretch = true
	s.UpdateWorldTransform(PhysicsNone)
	x, y := tip(s.FindBone("lower"))
	assertNear(t, "tip x", x, 30)
	assertNear(t, "tip y", y, 0)
}

func TestIkZeroMixLeavesPose(t *testing.T) {
	s := newIkArm(t, 0, 15, 1)
	s.IkConstraints[0].Mix = 0
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "rotation", s.FindBone("upper").WorldRotationX(), 0)
}

// --- Transform ---

func newTransformSkeleton(t *testing.T, configure func(*TransformConstraintData)) *Skeleton {
	t.Helper()
	d := newArmData()
	d.Bones[3].Rotation = 90
	d.Bones[3].ScaleX = 2
	tc := NewTransformConstraintData("copy")
	tc.Bones = []*BoneData{d.Bones[1]}
	tc.Target = d.Bones[3]
	configure(tc)
	d.TransformConstraints = []*TransformConstraintData{tc}
	return mustSkeleton(t, d)
}

func TestTransformConstraintWorld(t *testing.T) {
	s := newTransformSkeleton(t, func(tc *TransformConstraintData) {
		tc.RotateMix, tc.TranslateMix, tc.ScaleMix = 1, 1, 1
	})
	s.UpdateWorldTransform(PhysicsNone)

	upper := s.FindBone("upper")
	assertBoneWorld(t, upper, 20, 0)
	assertNear(t, "rotation", upper.WorldRotationX(), 90)
	assertNear(t, "scale", upper.WorldScaleX(), 2)
	// Children follow the constrained bone.
	assertBoneWorld(t, s.FindBone("lower"), 20, 20)
}

func TestTransformConstraintHalfMix(t *testing.T) {
	s := newTransformSkeleton(t, func(tc *TransformConstraintData) {
		tc.RotateMix, tc.TranslateMix = 0.5, 0.5
	})
	s.UpdateWorldTransform(PhysicsNone)

	upper := s.FindBone("upper")
	assertBoneWorld(t, upper, 10, 0)
	assertNear(t, "rotation", upper.WorldRotationX(), 45)
}

func TestTransformConstraintOffset(t *testing.T) {
	s := newTransformSkeleton(t, func(tc *TransformConstraintData) {
		tc.TranslateMix = 1
		tc.OffsetX = 5
	})
	s.UpdateWorldTransform(PhysicsNone)
	// The offset is in the target's frame, rotated 90 and scaled 2.
	assertBoneWorld(t, s.FindBone("upper"), 20, 10)
}

func TestTransformConstraintLocal(t *testing.T) {
	s := newTransformSkeleton(t, func(tc *TransformConstraintData) {
		tc.Local = true
		tc.RotateMix = 1
	})
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "rotation", s.FindBone("upper").WorldRotationX(), 90)
}

func TestTransformConstraintRelative(t *testing.T) {
	s := newTransformSkeleton(t, func(tc *TransformConstraintData) {
		tc.Relative = true
		tc.RotateMix = 1
	})
	s.FindBone("upper").Rotation = 10
	s.UpdateWorldTransform(PhysicsNone)
	assertNear(t, "rotation", s.FindBone("upper").WorldRotationX(), 100)
}

// --- Path ---

// newPathSkeleton builds root, a follower bone and a path slot on root whose
// path runs straight up from the origin for 10 units.
func newPathSkeleton(t *testing.T, constantSpeed bool, configure func(*PathConstraintData)) *Skeleton {
	t.Helper()
	d := NewSkeletonData("path")
	root := NewBoneData(0, "root", nil)
	follower := NewBoneData(1, "follower", root)
	follower.Length = 2
	d.Bones = []*BoneData{root, follower}
	slot := NewSlotData(0, "path", root)
	slot.AttachmentName = "line"
	d.Slots = []*SlotData{slot}

	path := NewPathAttachment("line")
	path.ConstantSpeed = constantSpeed
	third := float32(10) / 3
	path.SetVertices([]float32{
		0, -third, 0, 0, 0, third,
		0, 2 * third, 0, 10, 0, 10 + third,
	})
	path.Lengths = []float32{10}
	def := NewSkin("default")
	def.SetAttachment(0, "line", path)
	d.DefaultSkin = def

	pc := NewPathConstraintData("follow")
	pc.Bones = []*BoneData{follower}
	pc.Target = slot
	pc.RotateMix, pc.TranslateMix = 1, 1
	configure(pc)
	d.PathConstraints = []*PathConstraintData{pc}
	return mustSkeleton(t, d)
}

func TestPathConstraintFixedPosition(t *testing.T) {
	for _, constant := range []bool{false, true} {
		s := newPathSkeleton(t, constant, func(pc *PathConstraintData) {
			pc.Position = 4
		})
		s.UpdateWorldTransform(PhysicsNone)
		f := s.FindBone("follower")
		assertBoneWorld(t, f, 0, 4)
		assertNear(t, "rotation", f.WorldRotationX(), 90)
	}
}

func TestPathConstraintPercentPosition(t *testing.T) {
	s := newPathSkeleton(t, false, func(pc *PathConstraintData) {
		pc.PositionMode = PositionPercent
		pc.Position = 0.25
	})
	s.UpdateWorldTransform(PhysicsNone)
	assertBoneWorld(t, s.FindBone("follower"), 0, 2.5)
}

func TestPathConstraintPastEndExtends(t *testing.T) {
	s := newPathSkeleton(t, false, func(pc *PathConstraintData) {
		pc.Position = 12
	})
	s.UpdateWorldTransform(PhysicsNone)
	assertBoneWorld(t, s.FindBone("follower"), 0, 12)
}

func TestPathConstraintTranslateOnly(t *testing.T) {
	s := newPathSkeleton(t, false, func(pc *PathConstraintData) {
		pc.Position = 4
		pc.RotateMix = 0
	})
	s.UpdateWorldTransform(PhysicsNone)
	f := s.FindBone("follower")
	assertBoneWorld(t, f, 0, 4)
	assertNear(t, "rotation", f.WorldRotationX(), 0)
}

// --- Spring ---

func TestSpringConstraintLeavesPose(t *testing.T) {
	d := newArmData()
	sp := NewSpringConstraintData("spring")
	sp.Bones = []*BoneData{d.Bones[2]}
	d.SpringConstraints = []*SpringConstraintData{sp}
	s := mustSkeleton(t, d)
	s.FindBone("upper").Rotation = 30
	s.UpdateWorldTransform(PhysicsUpdate)

	lower := s.FindBone("lower")
	assertNear(t, "x", lower.WorldX, 10*math32.Cos(30*DegRad))
	assertNear(t, "y", lower.WorldY, 10*math32.Sin(30*DegRad))
}

// --- Non-uniform IK ---

func TestApplyIk2NonUniformParent(t *testing.T) {
	tests := []struct {
		name string
		x, y float32
		bend int
	}{
		{"bend positive", 10, 10, 1},
		{"bend negative", 10, 10, -1},
		{"straight up", 0, 15, 1},
		{"behind", -5, 12, -1},
		{"low", 15, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newIkArm(t, tt.x, tt.y, 1, 2)
			s.FindBone("upper").ScaleY = 2
			s.IkConstraints[0].BendDirection = tt.bend
			s.UpdateWorldTransform(PhysicsNone)

			x, y := tip(s.FindBone("lower"))
			if math32.Abs(x-tt.x) > 0.01 || math32.Abs(y-tt.y) > 0.01 {
				t.Fatalf("tip = (%v, %v), want (%v, %v)", x, y, tt.x, tt.y)
			}
			elbow := s.FindBone("lower")
			side := tt.x*elbow.WorldY - tt.y*elbow.WorldX
			if (side < 0) != (tt.bend > 0) {
				t.Errorf("elbow at (%v, %v) on the wrong side for bend %d", elbow.WorldX, elbow.WorldY, tt.bend)
			}
		})
	}
}

// --- Path chains ---

// newPathChain builds two chained bones of length 3 following a straight
// path from the origin up to (0, 10).
func newPathChain(t *testing.T, mode RotateMode) *Skeleton {
	t.Helper()
	d := NewSkeletonData("chain")
	root := NewBoneData(0, "root", nil)
	first := NewBoneData(1, "first", root)
	first.Length = 3
	second := NewBoneData(2, "second", first)
	second.X = 3
	second.Length = 3
	d.Bones = []*BoneData{root, first, second}
	slot := NewSlotData(0, "path", root)
	slot.AttachmentName = "line"
	d.Slots = []*SlotData{slot}

	path := NewPathAttachment("line")
	path.ConstantSpeed = false
	third := float32(10) / 3
	path.SetVertices([]float32{
		0, -third, 0, 0, 0, third,
		0, 2 * third, 0, 10, 0, 10 + third,
	})
	path.Lengths = []float32{10}
	def := NewSkin("default")
	def.SetAttachment(0, "line", path)
	d.DefaultSkin = def

	pc := NewPathConstraintData("follow")
	pc.Bones = []*BoneData{first, second}
	pc.Target = slot
	pc.RotateMix, pc.TranslateMix = 1, 1
	pc.Position = 2
	pc.Spacing = 1
	pc.SpacingMode = SpacingLength
	pc.RotateMode = mode
	d.PathConstraints = []*PathConstraintData{pc}
	return mustSkeleton(t, d)
}

func TestPathConstraintRotateModes(t *testing.T) {
	tests := []struct {
		name    string
		mode    RotateMode
		secondY float32
		scale   float32
	}{
		// Spacing 1 leaves a gap of 1 after each bone of length 3.
		{"tangent", RotateTangent, 6, 1},
		// Each bone starts at the tip of the previous one.
		{"chain", RotateChain, 5, 1},
		// Bones stretch to span the gap.
		{"chain scale", RotateChainScale, 6, 4.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newPathChain(t, tt.mode)
			s.UpdateWorldTransform(PhysicsNone)

			first, second := s.FindBone("first"), s.FindBone("second")
			assertBoneWorld(t, first, 0, 2)
			assertBoneWorld(t, second, 0, tt.secondY)
			for _, b := range []*Bone{first, second} {
				assertNear(t, b.Data.Name+" rotation", b.WorldRotationX(), 90)
				assertNear(t, b.Data.Name+" scale", b.WorldScaleX(), tt.scale)
			}
		})
	}
}

// --- Transform reflection ---

func TestTransformConstraintReflectsOffsetRotation(t *testing.T) {
	tests := []struct {
		name           string
		scaleX, scaleY float32
		relative       bool
		want           float32
	}{
		{"upright", 1, 1, false, 30},
		{"flipped y", 1, -1, false, -30},
		{"flipped x", -1, 1, false, 150},
		{"flipped both", -1, -1, false, -150},
		{"relative upright", 1, 1, true, 30},
		{"relative flipped y", 1, -1, true, -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newArmData()
			d.Bones[3].ScaleX, d.Bones[3].ScaleY = tt.scaleX, tt.scaleY
			tc := NewTransformConstraintData("mirror")
			tc.Bones = []*BoneData{d.Bones[1]}
			tc.Target = d.Bones[3]
			tc.RotateMix = 1
			tc.OffsetRotation = 30
			tc.Relative = tt.relative
			d.TransformConstraints = []*TransformConstraintData{tc}
			s := mustSkeleton(t, d)
			s.UpdateWorldTransform(PhysicsNone)

			got := s.FindBone("upper").WorldRotationX()
			if math32.Abs(WrapDegrees(got-tt.want)) > 0.01 {
				t.Errorf("rotation = %v, want %v", got, tt.want)
			}
		})
	}
}
