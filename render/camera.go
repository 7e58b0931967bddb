package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/marionette"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps skeleton world space to screen space: it centers (X, Y) in a
// viewport of Width by Height pixels.
type Camera struct {
	// X and Y are the world position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1 = no zoom, >1 = zoom in).
	Zoom float64
	// Rotation is the camera rotation in radians.
	Rotation float64
	// Width and Height are the viewport size in pixels.
	Width, Height float64
	// YUp flips the vertical axis so world y grows upward on screen. Leave it
	// false for skeletons posed with marionette.Skeleton.YDown.
	YUp bool

	follow        *marionette.Bone
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	scroll *scrollAnim
}

// NewCamera returns a camera with no zoom looking at the world origin.
func NewCamera(width, height float64) *Camera {
	return &Camera{Zoom: 1, Width: width, Height: height}
}

// Follow makes the camera track a bone's world position. A lerp of 1 snaps
// immediately; lower values trail behind.
func (c *Camera) Follow(bone *marionette.Bone, offsetX, offsetY, lerp float64) {
	c.follow = bone
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current bone.
func (c *Camera) Unfollow() {
	c.follow = nil
}

// ScrollTo animates the camera to a world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Update advances follow and scroll by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.follow != nil {
		targetX := float64(c.follow.WorldX) + c.followOffsetX
		targetY := float64(c.follow.WorldY) + c.followOffsetY
		c.X += (targetX - c.X) * c.followLerp
		c.Y += (targetY - c.Y) * c.followLerp
	}

	if c.scroll != nil {
		if !c.scroll.doneX {
			val, done := c.scroll.tweenX.Update(dt)
			c.X = float64(val)
			c.scroll.doneX = done
		}
		if !c.scroll.doneY {
			val, done := c.scroll.tweenY.Update(dt)
			c.Y = float64(val)
			c.scroll.doneY = done
		}
		if c.scroll.doneX && c.scroll.doneY {
			c.scroll = nil
		}
	}
}

// GeoM returns the world to screen transform:
// Translate(center) * Scale(zoom) * Rotate(-rotation) * FlipY * Translate(-X, -Y).
func (c *Camera) GeoM() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.X, -c.Y)
	if c.YUp {
		m.Scale(1, -1)
	}
	m.Rotate(-c.Rotation)
	m.Scale(c.Zoom, c.Zoom)
	m.Translate(c.Width/2, c.Height/2)
	return m
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	m := c.GeoM()
	return m.Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	m := c.GeoM()
	if !m.IsInvertible() {
		return c.X, c.Y
	}
	m.Invert()
	return m.Apply(sx, sy)
}

// Visible reports whether the skeleton's attachment bounds overlap the
// viewport. A skeleton with no visible attachments is never visible.
func (c *Camera) Visible(sk *marionette.Skeleton) bool {
	x, y, w, h := sk.Bounds()
	if w == 0 && h == 0 {
		return false
	}
	m := c.GeoM()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float32{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}} {
		sx, sy := m.Apply(float64(p[0]), float64(p[1]))
		minX, maxX = math.Min(minX, sx), math.Max(maxX, sx)
		minY, maxY = math.Min(minY, sy), math.Max(maxY, sy)
	}
	return maxX >= 0 && minX <= c.Width && maxY >= 0 && minY <= c.Height
}
