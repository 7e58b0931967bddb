package render

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/marionette"
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily created 1x1 white image used as the
// texture for debug geometry.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// DebugRenderer draws bones, bounding boxes and clipping polygons as flat
// colored lines on top of a skeleton.
type DebugRenderer struct {
	Bones         bool
	BoundingBoxes bool
	Clipping      bool

	BoneColor     marionette.Color
	BoundsColor   marionette.Color
	ClippingColor marionette.Color
	// LineWidth is in screen pixels.
	LineWidth float32

	verts   []ebiten.Vertex
	inds    []uint16
	polygon []float32
}

// NewDebugRenderer returns a debug renderer drawing everything.
func NewDebugRenderer() *DebugRenderer {
	return &DebugRenderer{
		Bones:         true,
		BoundingBoxes: true,
		Clipping:      true,
		BoneColor:     marionette.Color{R: 1, G: 0.3, B: 0.3, A: 1},
		BoundsColor:   marionette.Color{R: 0.3, G: 1, B: 0.3, A: 1},
		ClippingColor: marionette.Color{R: 0.8, G: 0.3, B: 1, A: 1},
		LineWidth:     2,
	}
}

// Draw renders the enabled overlays for the skeleton's current world pose.
func (d *DebugRenderer) Draw(dst *ebiten.Image, sk *marionette.Skeleton, geoM ebiten.GeoM) {
	d.verts, d.inds = d.verts[:0], d.inds[:0]

	if d.BoundingBoxes || d.Clipping {
		for _, slot := range sk.DrawOrder {
			a := slot.Attachment()
			if a == nil || !slot.Bone().Active() {
				continue
			}
			var c marionette.Color
			switch {
			case a.Type == marionette.AttachmentBoundingBox && d.BoundingBoxes:
				c = d.BoundsColor
			case a.Type == marionette.AttachmentClipping && d.Clipping:
				c = d.ClippingColor
			default:
				continue
			}
			n := a.WorldVerticesLength
			if cap(d.polygon) < n {
				d.polygon = make([]float32, n)
			}
			p := d.polygon[:n]
			a.ComputeWorldVertices(slot, 0, n, p, 0, 2)
			for i := 0; i < n; i += 2 {
				j := (i + 2) % n
				d.line(geoM, p[i], p[i+1], p[j], p[j+1], c)
			}
		}
	}

	if d.Bones {
		for _, b := range sk.Bones {
			if !b.Active() {
				continue
			}
			length := b.Data.Length
			if length == 0 {
				length = d.LineWidth * 2
			}
			x2, y2 := b.LocalToWorld(length, 0)
			d.line(geoM, b.WorldX, b.WorldY, x2, y2, d.BoneColor)
		}
	}

	if len(d.inds) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha}
	dst.DrawTriangles(d.verts, d.inds, ensureWhitePixel(), op)
}

// line appends a quad of LineWidth screen pixels from world (x1, y1) to
// (x2, y2).
func (d *DebugRenderer) line(geoM ebiten.GeoM, x1, y1, x2, y2 float32, c marionette.Color) {
	sx1, sy1 := geoM.Apply(float64(x1), float64(y1))
	sx2, sy2 := geoM.Apply(float64(x2), float64(y2))
	dx, dy := float32(sx2-sx1), float32(sy2-sy1)
	l := math32.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*d.LineWidth/2, dx/l*d.LineWidth/2

	if len(d.verts)+4 > maxBatchVertices {
		return
	}
	base := uint16(len(d.verts))
	for _, p := range [4][2]float32{
		{float32(sx1) + nx, float32(sy1) + ny},
		{float32(sx2) + nx, float32(sy2) + ny},
		{float32(sx2) - nx, float32(sy2) - ny},
		{float32(sx1) - nx, float32(sy1) - ny},
	} {
		d.verts = append(d.verts, ebiten.Vertex{
			DstX:   p[0],
			DstY:   p[1],
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: c.R * c.A,
			ColorG: c.G * c.A,
			ColorB: c.B * c.A,
			ColorA: c.A,
		})
	}
	d.inds = append(d.inds, base, base+1, base+2, base+2, base+3, base)
}
