package render

import (
	"fmt"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/marionette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

const epsilon = 1e-3

// newQuadSkeleton builds a root bone with one 32x32 region slot per blend
// mode given, all showing the left half of a 64x32 page.
func newQuadSkeleton(t *testing.T, blends ...marionette.BlendMode) *marionette.Skeleton {
	t.Helper()
	d := marionette.NewSkeletonData("quads")
	root := marionette.NewBoneData(0, "root", nil)
	d.Bones = []*marionette.BoneData{root}
	skin := marionette.NewSkin("default")
	for i, blend := range blends {
		slot := marionette.NewSlotData(i, fmt.Sprintf("quad%d", i), root)
		slot.BlendMode = blend
		slot.AttachmentName = "image"
		d.Slots = append(d.Slots, slot)

		region := &marionette.TextureRegion{
			U2: 0.5, V2: 1,
			Width: 32, Height: 32,
			OriginalWidth: 32, OriginalHeight: 32,
		}
		skin.SetAttachment(i, "image", marionette.NewRegionAttachment("image", region))
	}
	d.DefaultSkin = skin
	sk, err := marionette.NewSkeleton(d)
	require.NoError(t, err)
	sk.UpdateWorldTransform(marionette.PhysicsNone)
	return sk
}

func newPages() []*ebiten.Image {
	return []*ebiten.Image{ebiten.NewImage(64, 32)}
}

func TestBuildRegionQuad(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal)
	r := NewRenderer(newPages())

	var geoM ebiten.GeoM
	geoM.Translate(100, 50)
	batches := r.Build(sk, geoM)
	require.Len(t, batches, 1)

	b := batches[0]
	assert.Equal(t, 0, b.Page)
	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0}, b.Indices)
	require.Len(t, b.Vertices, 4)

	// Corners run bottom-left, top-left, top-right, bottom-right.
	want := [][4]float32{
		{84, 34, 0, 32},
		{84, 66, 0, 0},
		{116, 66, 32, 0},
		{116, 34, 32, 32},
	}
	for i, w := range want {
		v := b.Vertices[i]
		assert.InDelta(t, w[0], v.DstX, epsilon, "vertex %d x", i)
		assert.InDelta(t, w[1], v.DstY, epsilon, "vertex %d y", i)
		assert.InDelta(t, w[2], v.SrcX, epsilon, "vertex %d u", i)
		assert.InDelta(t, w[3], v.SrcY, epsilon, "vertex %d v", i)
		assert.Equal(t, float32(1), v.ColorA)
	}
}

func TestBuildBatchesByBlend(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal, marionette.BlendNormal, marionette.BlendAdditive, marionette.BlendNormal)
	r := NewRenderer(newPages())
	batches := r.Build(sk, ebiten.GeoM{})
	require.Len(t, batches, 3)

	assert.Equal(t, marionette.BlendNormal, batches[0].Blend)
	assert.Len(t, batches[0].Vertices, 8)
	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, batches[0].Indices)
	assert.Equal(t, marionette.BlendAdditive, batches[1].Blend)
	assert.Len(t, batches[2].Vertices, 4)

	// Buffers are reused on the next frame.
	again := r.Build(sk, ebiten.GeoM{})
	assert.Len(t, again, 3)
	assert.Len(t, again[0].Vertices, 8)
}

func TestBuildPremultipliesColor(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal)
	sk.Color = marionette.Color{R: 1, G: 1, B: 1, A: 0.5}
	sk.Slots[0].Color = marionette.Color{R: 1, G: 0.5, B: 0, A: 1}

	v := NewRenderer(newPages()).Build(sk, ebiten.GeoM{})[0].Vertices[0]
	assert.InDelta(t, 0.5, v.ColorR, epsilon)
	assert.InDelta(t, 0.25, v.ColorG, epsilon)
	assert.InDelta(t, 0, v.ColorB, epsilon)
	assert.InDelta(t, 0.5, v.ColorA, epsilon)
}

func TestBuildSkipsInvisible(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal, marionette.BlendNormal)
	sk.Slots[0].Color.A = 0
	sk.Slots[1].SetAttachment(nil)
	assert.Empty(t, NewRenderer(newPages()).Build(sk, ebiten.GeoM{}))
}

func TestBuildSkipsMissingPage(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal)
	assert.Empty(t, NewRenderer(nil).Build(sk, ebiten.GeoM{}))
	assert.Empty(t, NewRenderer([]*ebiten.Image{nil}).Build(sk, ebiten.GeoM{}))
}

func TestBuildClips(t *testing.T) {
	d := marionette.NewSkeletonData("clipped")
	root := marionette.NewBoneData(0, "root", nil)
	d.Bones = []*marionette.BoneData{root}
	clipSlot := marionette.NewSlotData(0, "clip", root)
	clipSlot.AttachmentName = "clip"
	quadSlot := marionette.NewSlotData(1, "quad", root)
	quadSlot.AttachmentName = "image"
	d.Slots = []*marionette.SlotData{clipSlot, quadSlot}

	clip := marionette.NewClippingAttachment("clip", quadSlot)
	clip.SetVertices([]float32{0, 0, 10, 0, 10, 10, 0, 10})
	region := &marionette.TextureRegion{U2: 1, V2: 1, Width: 32, Height: 32, OriginalWidth: 32, OriginalHeight: 32}
	skin := marionette.NewSkin("default")
	skin.SetAttachment(0, "clip", clip)
	skin.SetAttachment(1, "image", marionette.NewRegionAttachment("image", region))
	d.DefaultSkin = skin

	sk, err := marionette.NewSkeleton(d)
	require.NoError(t, err)
	sk.UpdateWorldTransform(marionette.PhysicsNone)

	batches := NewRenderer(newPages()).Build(sk, ebiten.GeoM{})
	require.Len(t, batches, 1)
	require.NotEmpty(t, batches[0].Indices)
	for _, v := range batches[0].Vertices {
		assert.True(t, v.DstX >= -epsilon && v.DstX <= 10+epsilon, "x %v outside the clip", v.DstX)
		assert.True(t, v.DstY >= -epsilon && v.DstY <= 10+epsilon, "y %v outside the clip", v.DstY)
	}
}

func TestDrawSmoke(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal, marionette.BlendMultiply, marionette.BlendScreen)
	r := NewRenderer(newPages())
	screen := ebiten.NewImage(128, 128)
	r.Draw(screen, sk, ebiten.GeoM{})
	NewDebugRenderer().Draw(screen, sk, ebiten.GeoM{})
}

func TestEbitenBlend(t *testing.T) {
	assert.Equal(t, ebiten.BlendSourceOver, EbitenBlend(marionette.BlendNormal))
	assert.Equal(t, ebiten.BlendLighter, EbitenBlend(marionette.BlendAdditive))
	assert.Equal(t, ebiten.BlendFactorDestinationColor, EbitenBlend(marionette.BlendMultiply).BlendFactorSourceRGB)
	assert.Equal(t, ebiten.BlendFactorOneMinusSourceColor, EbitenBlend(marionette.BlendScreen).BlendFactorDestinationRGB)
	assert.Equal(t, ebiten.BlendSourceOver, EbitenBlend(marionette.BlendMode(99)))
}

// --- Camera ---

func TestCameraCentersTarget(t *testing.T) {
	c := NewCamera(200, 100)
	c.X, c.Y = 10, 20
	x, y := c.WorldToScreen(10, 20)
	assert.InDelta(t, 100, x, epsilon)
	assert.InDelta(t, 50, y, epsilon)

	c.Zoom = 2
	x, y = c.WorldToScreen(15, 25)
	assert.InDelta(t, 110, x, epsilon)
	assert.InDelta(t, 60, y, epsilon)
}

func TestCameraYUp(t *testing.T) {
	c := NewCamera(200, 100)
	c.YUp = true
	_, y := c.WorldToScreen(0, 10)
	assert.InDelta(t, 40, y, epsilon)
}

func TestCameraScreenToWorldRoundTrip(t *testing.T) {
	c := NewCamera(320, 240)
	c.X, c.Y, c.Zoom, c.Rotation, c.YUp = 30, -12, 1.5, 0.4, true
	sx, sy := c.WorldToScreen(7, 9)
	wx, wy := c.ScreenToWorld(sx, sy)
	assert.InDelta(t, 7, wx, epsilon)
	assert.InDelta(t, 9, wy, epsilon)
}

func TestCameraScrollTo(t *testing.T) {
	c := NewCamera(100, 100)
	c.ScrollTo(100, 50, 1, ease.Linear)
	c.Update(0.5)
	assert.InDelta(t, 50, c.X, epsilon)
	assert.InDelta(t, 25, c.Y, epsilon)
	c.Update(0.6)
	assert.InDelta(t, 100, c.X, epsilon)
	assert.InDelta(t, 50, c.Y, epsilon)
	assert.Nil(t, c.scroll)
}

func TestCameraFollow(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal)
	sk.X, sk.Y = 40, -8
	sk.UpdateWorldTransform(marionette.PhysicsNone)

	c := NewCamera(100, 100)
	c.Follow(sk.Bones[0], 0, 0, 0.5)
	c.Update(1.0 / 60)
	assert.InDelta(t, 20, c.X, epsilon)
	c.Update(1.0 / 60)
	assert.InDelta(t, 30, c.X, epsilon)

	c.Unfollow()
	c.Update(1.0 / 60)
	assert.InDelta(t, 30, c.X, epsilon)
}

func TestCameraVisible(t *testing.T) {
	sk := newQuadSkeleton(t, marionette.BlendNormal)
	c := NewCamera(100, 100)
	assert.True(t, c.Visible(sk))
	c.X = 500
	assert.False(t, c.Visible(sk))

	sk.Slots[0].SetAttachment(nil)
	c.X = 0
	assert.False(t, c.Visible(sk))
}
