package marionette

import (
	"fmt"
	"testing"
)

// newBenchSkeleton builds a skeleton of n chains of depth bones each, with
// an IK constraint on the last two bones of every chain.
func newBenchSkeleton(b *testing.B, chains, depth int) (*Skeleton, *Animation) {
	d := NewSkeletonData("bench")
	root := NewBoneData(0, "root", nil)
	d.Bones = append(d.Bones, root)
	var timelines []*Timeline
	for c := range chains {
		parent := root
		for i := range depth {
			bd := NewBoneData(len(d.Bones), fmt.Sprintf("c%d-%d", c, i), parent)
			bd.X, bd.Length = 10, 10
			d.Bones = append(d.Bones, bd)
			parent = bd

			tl := NewTimeline(TimelineRotate, 3, bd.Index)
			tl.SetFrame(0, 0, 0)
			tl.SetFrame(1, 0.5, 45)
			tl.SetFrame(2, 1, 0)
			timelines = append(timelines, tl)
		}
		target := NewBoneData(len(d.Bones), fmt.Sprintf("t%d", c), root)
		target.X, target.Y = float32(depth*5), 15
		d.Bones = append(d.Bones, target)

		ik := NewIkConstraintData(fmt.Sprintf("ik%d", c))
		ik.Order = c
		n := len(d.Bones)
		ik.Bones = []*BoneData{d.Bones[n-3], d.Bones[n-2]}
		ik.Target = target
		d.IkConstraints = append(d.IkConstraints, ik)
	}
	anim, err := NewAnimation("wave", timelines, 1)
	if err != nil {
		b.Fatal(err)
	}
	return mustSkeleton(b, d), anim
}

// --- Skeleton Benchmarks ---

func BenchmarkUpdateWorldTransform(b *testing.B) {
	for _, size := range []struct{ chains, depth int }{{1, 8}, {8, 8}, {32, 16}} {
		b.Run(fmt.Sprintf("%dx%d", size.chains, size.depth), func(b *testing.B) {
			s, _ := newBenchSkeleton(b, size.chains, size.depth)
			b.ReportAllocs()
			for b.Loop() {
				s.UpdateWorldTransform(PhysicsUpdate)
			}
		})
	}
}

func BenchmarkAnimationApply(b *testing.B) {
	s, anim := newBenchSkeleton(b, 8, 8)
	var time float32
	b.ReportAllocs()
	for b.Loop() {
		last := time
		time += 1.0 / 60
		anim.Apply(s, last, time, true, nil, 1, PoseSetup, MixIn)
	}
}

func BenchmarkAnimationStateFrame(b *testing.B) {
	s, anim := newBenchSkeleton(b, 8, 8)
	s.Data.Animations = append(s.Data.Animations, anim)
	sd, err := NewAnimationStateData(s.Data)
	if err != nil {
		b.Fatal(err)
	}
	st, err := NewAnimationState(sd)
	if err != nil {
		b.Fatal(err)
	}
	st.SetAnimation(anim, true)
	b.ReportAllocs()
	for b.Loop() {
		st.Update(1.0 / 60)
		st.Apply(s)
		s.UpdateWorldTransform(PhysicsUpdate)
	}
}

// --- Clipping Benchmarks ---

func BenchmarkClipTriangles(b *testing.B) {
	d := newArmData()
	d.Slots = append(d.Slots, NewSlotData(1, "clip", d.Bones[0]))
	clip := NewClippingAttachment("clip", d.Slots[0])
	clip.SetVertices([]float32{0, 0, 0, 20, 10, 20, 10, 10, 20, 10, 20, 0})
	s := mustSkeleton(b, d)
	s.UpdateWorldTransform(PhysicsNone)

	// A 16x16 grid of quads over 0..32, half of it outside the clip.
	const grid = 16
	var verts, uvs []float32
	var tris []uint16
	for y := range grid + 1 {
		for x := range grid + 1 {
			verts = append(verts, float32(x*2), float32(y*2))
			uvs = append(uvs, float32(x)/grid, float32(y)/grid)
		}
	}
	for y := range grid {
		for x := range grid {
			i := uint16(y*(grid+1) + x)
			tris = append(tris, i, i+1, i+grid+1, i+1, i+grid+2, i+grid+1)
		}
	}

	var c SkeletonClipping
	slot := s.FindSlot("clip")
	b.ReportAllocs()
	for b.Loop() {
		c.ClipStart(slot, clip)
		c.ClipTriangles(verts, tris, uvs)
		c.ClipEnd()
	}
}

func BenchmarkTriangulate(b *testing.B) {
	var tr Triangulator
	poly := make([]float32, 0, 64)
	for i := range 32 {
		r := float32(10)
		if i%2 == 1 {
			r = 4
		}
		a := float32(i) * 360 / 32
		poly = append(poly, r*CosDeg(a), r*SinDeg(a))
	}
	MakeClockwise(poly)
	b.ReportAllocs()
	for b.Loop() {
		tr.Decompose(poly, tr.Triangulate(poly))
	}
}
