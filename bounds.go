package marionette

import "github.com/chewxy/math32"

// SkeletonBounds collects the world polygons of the bounding box attachments
// visible on a skeleton for hit testing.
type SkeletonBounds struct {
	MinX, MinY, MaxX, MaxY float32

	// BoundingBoxes and Polygons are parallel: Polygons[i] holds the world
	// x, y pairs of BoundingBoxes[i].
	BoundingBoxes []*Attachment
	Polygons      [][]float32

	pool [][]float32
}

// Update recomputes the polygons from the skeleton's current world
// transform. When updateAabb is set the overall bounding box is recomputed
// too; otherwise it is made unbounded so AABB tests always pass.
func (b *SkeletonBounds) Update(s *Skeleton, updateAabb bool) {
	// Keep polygon buffers for reuse.
	b.pool = append(b.pool, b.Polygons...)
	b.BoundingBoxes = b.BoundingBoxes[:0]
	b.Polygons = b.Polygons[:0]

	for _, slot := range s.Slots {
		if !slot.Bone().active {
			continue
		}
		a := slot.attachment
		if a == nil || a.Type != AttachmentBoundingBox {
			continue
		}
		var poly []float32
		if n := len(b.pool); n > 0 {
			poly = b.pool[n-1][:0]
			b.pool = b.pool[:n-1]
		}
		poly = growFloats(poly, a.WorldVerticesLength)
		a.ComputeWorldVertices(slot, 0, a.WorldVerticesLength, poly, 0, 2)
		b.BoundingBoxes = append(b.BoundingBoxes, a)
		b.Polygons = append(b.Polygons, poly)
	}

	if updateAabb {
		b.computeAabb()
		return
	}
	b.MinX, b.MinY, b.MaxX, b.MaxY = -math32.MaxFloat32, -math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32
}

func (b *SkeletonBounds) computeAabb() {
	minX, minY := float32(math32.MaxFloat32), float32(math32.MaxFloat32)
	maxX, maxY := float32(-math32.MaxFloat32), float32(-math32.MaxFloat32)
	for _, p := range b.Polygons {
		for i := 0; i+1 < len(p); i += 2 {
			x, y := p[i], p[i+1]
			minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
			minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
		}
	}
	b.MinX, b.MinY, b.MaxX, b.MaxY = minX, minY, maxX, maxY
}

// Width returns the width of the bounding box.
func (b *SkeletonBounds) Width() float32 { return b.MaxX - b.MinX }

// Height returns the height of the bounding box.
func (b *SkeletonBounds) Height() float32 { return b.MaxY - b.MinY }

// AabbContainsPoint reports whether the bounding box contains x, y.
func (b *SkeletonBounds) AabbContainsPoint(x, y float32) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// AabbIntersectsSegment reports whether the segment may cross the bounding
// box.
func (b *SkeletonBounds) AabbIntersectsSegment(x1, y1, x2, y2 float32) bool {
	minX, minY, maxX, maxY := b.MinX, b.MinY, b.MaxX, b.MaxY
	if (x1 <= minX && x2 <= minX) || (y1 <= minY && y2 <= minY) ||
		(x1 >= maxX && x2 >= maxX) || (y1 >= maxY && y2 >= maxY) {
		return false
	}
	m := (y2 - y1) / (x2 - x1)
	if y := m*(minX-x1) + y1; y > minY && y < maxY {
		return true
	}
	if y := m*(maxX-x1) + y1; y > minY && y < maxY {
		return true
	}
	if x := (minY-y1)/m + x1; x > minX && x < maxX {
		return true
	}
	if x := (maxY-y1)/m + x1; x > minX && x < maxX {
		return true
	}
	return false
}

// AabbIntersectsSkeleton reports whether this bounding box overlaps
// other's.
func (b *SkeletonBounds) AabbIntersectsSkeleton(other *SkeletonBounds) bool {
	return b.MinX < other.MaxX && b.MaxX > other.MinX && b.MinY < other.MaxY && b.MaxY > other.MinY
}

// ContainsPoint returns the first bounding box whose polygon contains x, y,
// or nil.
func (b *SkeletonBounds) ContainsPoint(x, y float32) *Attachment {
	for i, p := range b.Polygons {
		if PolygonContainsPoint(p, x, y) {
			return b.BoundingBoxes[i]
		}
	}
	return nil
}

// IntersectsSegment returns the first bounding box whose polygon the segment
// crosses, or nil.
func (b *SkeletonBounds) IntersectsSegment(x1, y1, x2, y2 float32) *Attachment {
	for i, p := range b.Polygons {
		if PolygonIntersectsSegment(p, x1, y1, x2, y2) {
			return b.BoundingBoxes[i]
		}
	}
	return nil
}

// Polygon returns the world polygon of a bounding box collected by the last
// Update, or nil.
func (b *SkeletonBounds) Polygon(bb *Attachment) []float32 {
	for i, a := range b.BoundingBoxes {
		if a == bb {
			return b.Polygons[i]
		}
	}
	return nil
}

// PolygonContainsPoint tests x, y against a polygon of flat x, y pairs with
// the even-odd rule.
func PolygonContainsPoint(polygon []float32, x, y float32) bool {
	n := len(polygon)
	inside := false
	prev := n - 2
	for i := 0; i+1 < n; i += 2 {
		vy, prevY := polygon[i+1], polygon[prev+1]
		if (vy < y && prevY >= y) || (prevY < y && vy >= y) {
			vx := polygon[i]
			if vx+(y-vy)/(prevY-vy)*(polygon[prev]-vx) < x {
				inside = !inside
			}
		}
		prev = i
	}
	return inside
}

// PolygonIntersectsSegment reports whether the segment crosses any edge of
// the polygon.
func PolygonIntersectsSegment(polygon []float32, x1, y1, x2, y2 float32) bool {
	n := len(polygon)
	if n < 4 {
		return false
	}
	width12, height12 := x1-x2, y1-y2
	det1 := x1*y2 - y1*x2
	x3, y3 := polygon[n-2], polygon[n-1]
	for i := 0; i+1 < n; i += 2 {
		x4, y4 := polygon[i], polygon[i+1]
		det2 := x3*y4 - y3*x4
		width34, height34 := x3-x4, y3-y4
		det3 := width12*height34 - height12*width34
		if det3 != 0 {
			x := (det1*width34 - width12*det2) / det3
			if ((x >= x3 && x <= x4) || (x >= x4 && x <= x3)) && ((x >= x1 && x <= x2) || (x >= x2 && x <= x1)) {
				y := (det1*height34 - height12*det2) / det3
				if ((y >= y3 && y <= y4) || (y >= y4 && y <= y3)) && ((y >= y1 && y <= y2) || (y >= y2 && y <= y1)) {
					return true
				}
			}
		}
		x3, y3 = x4, y4
	}
	return false
}
