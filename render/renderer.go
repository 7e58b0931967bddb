package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/marionette"
)

// maxBatchVertices is the vertex count a batch may reach before a new one is
// started, so indices fit in uint16.
const maxBatchVertices = math.MaxUint16

var quadTriangles = []uint16{0, 1, 2, 2, 3, 0}

// Batch is one draw call: triangles sharing an atlas page and a blend mode.
// Vertex positions are in destination pixels and SrcX/SrcY in page pixels.
type Batch struct {
	Page     int
	Blend    marionette.BlendMode
	Vertices []ebiten.Vertex
	Indices  []uint16
}

// Renderer converts skeletons into batched triangles. It reuses its buffers
// across frames and must be used from one goroutine at a time.
type Renderer struct {
	pages []*ebiten.Image
	sizes [][2]float32

	clipper    marionette.SkeletonClipping
	worldVerts []float32
	batches    []Batch
	triOp      ebiten.DrawTrianglesOptions
}

// NewRenderer returns a renderer drawing from the given atlas pages, indexed
// by marionette.TextureRegion.Page.
func NewRenderer(pages []*ebiten.Image) *Renderer {
	r := &Renderer{pages: pages, sizes: make([][2]float32, len(pages))}
	for i, p := range pages {
		if p == nil {
			continue
		}
		b := p.Bounds()
		r.sizes[i] = [2]float32{float32(b.Dx()), float32(b.Dy())}
	}
	r.triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	return r
}

// Draw renders the skeleton's current world pose onto dst, transforming
// world positions by geoM.
func (r *Renderer) Draw(dst *ebiten.Image, sk *marionette.Skeleton, geoM ebiten.GeoM) {
	for i := range r.Build(sk, geoM) {
		b := &r.batches[i]
		r.triOp.Blend = EbitenBlend(b.Blend)
		dst.DrawTriangles(b.Vertices, b.Indices, r.pages[b.Page], &r.triOp)
	}
}

// Build returns the batches for the skeleton's current world pose without
// drawing them. The returned slice is valid until the next call.
func (r *Renderer) Build(sk *marionette.Skeleton, geoM ebiten.GeoM) []Batch {
	r.batches = r.batches[:0]

	for _, slot := range sk.DrawOrder {
		r.appendSlot(sk, slot, geoM)
		r.clipper.ClipEndSlot(slot)
	}
	r.clipper.ClipEnd()
	return r.batches
}

func (r *Renderer) appendSlot(sk *marionette.Skeleton, slot *marionette.Slot, geoM ebiten.GeoM) {
	if !slot.Bone().Active() {
		return
	}
	a := slot.Attachment()
	if a == nil {
		return
	}

	var n int
	var triangles []uint16
	switch a.Type {
	case marionette.AttachmentRegion:
		n, triangles = 8, quadTriangles
	case marionette.AttachmentMesh, marionette.AttachmentLinkedMesh:
		n, triangles = a.WorldVerticesLength, a.Triangles
	case marionette.AttachmentClipping:
		r.clipper.ClipStart(slot, a)
		return
	default:
		return
	}
	if a.Region == nil || a.Region.Page < 0 || a.Region.Page >= len(r.pages) || r.pages[a.Region.Page] == nil {
		marionette.Logger().Debug("render: attachment has no page", "slot", slot.Data.Name, "attachment", a.Name)
		return
	}

	c := sk.Color.Mul(slot.Color).Mul(a.Color)
	if c.A == 0 {
		return
	}

	if cap(r.worldVerts) < n {
		r.worldVerts = make([]float32, n)
	}
	verts := r.worldVerts[:n]
	a.ComputeWorldVertices(slot, 0, n, verts, 0, 2)
	uvs := a.UVs()

	if r.clipper.IsClipping() {
		r.clipper.ClipTriangles(verts, triangles, uvs)
		verts, triangles, uvs = r.clipper.ClippedVertices(), r.clipper.ClippedTriangles(), r.clipper.ClippedUVs()
		if len(triangles) == 0 {
			return
		}
	}

	b := r.batchFor(a.Region.Page, slot.Data.BlendMode, len(verts)/2)
	base := uint16(len(b.Vertices))
	size := r.sizes[a.Region.Page]
	cr, cg, cb := c.R*c.A, c.G*c.A, c.B*c.A
	for i := 0; i < len(verts); i += 2 {
		x, y := geoM.Apply(float64(verts[i]), float64(verts[i+1]))
		b.Vertices = append(b.Vertices, ebiten.Vertex{
			DstX:   float32(x),
			DstY:   float32(y),
			SrcX:   uvs[i] * size[0],
			SrcY:   uvs[i+1] * size[1],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: c.A,
		})
	}
	for _, t := range triangles {
		b.Indices = append(b.Indices, base+t)
	}
}

// batchFor returns the batch to append vertexCount vertices to: the last one
// when it shares page and blend mode and has room, otherwise a new one.
func (r *Renderer) batchFor(page int, blend marionette.BlendMode, vertexCount int) *Batch {
	if n := len(r.batches); n > 0 {
		last := &r.batches[n-1]
		if last.Page == page && last.Blend == blend && len(last.Vertices)+vertexCount <= maxBatchVertices {
			return last
		}
	}
	if len(r.batches) < cap(r.batches) {
		r.batches = r.batches[:len(r.batches)+1]
	} else {
		r.batches = append(r.batches, Batch{})
	}
	b := &r.batches[len(r.batches)-1]
	b.Page, b.Blend = page, blend
	b.Vertices, b.Indices = b.Vertices[:0], b.Indices[:0]
	return b
}
