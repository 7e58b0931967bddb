package marionette

import "github.com/chewxy/math32"

// SkeletonClipping clips triangles against the polygon of a clipping
// attachment. A clip starts at the clipping attachment's slot and ends at its
// EndSlot, or when ClipEnd is called.
//
// The clip polygon may be concave; it is decomposed into convex pieces once
// per ClipStart. Output buffers are reused, so the slices returned by
// ClippedVertices, ClippedTriangles and ClippedUVs are only valid until the
// next ClipTriangles call.
type SkeletonClipping struct {
	triangulator Triangulator

	clip     *Attachment
	polygon  []float32
	polygons [][]float32

	clipOutput []float32
	scratchA   []float32
	scratchB   []float32

	clippedVertices  []float32
	clippedTriangles []uint16
	clippedUVs       []float32
}

// ClipStart begins clipping with clip, a clipping attachment on slot. It
// returns the number of convex pieces, or 0 if a clip is already active or
// the polygon has fewer than three vertices.
func (c *SkeletonClipping) ClipStart(slot *Slot, clip *Attachment) int {
	if c.clip != nil || clip == nil || clip.WorldVerticesLength < 6 {
		return 0
	}
	c.clip = clip

	n := clip.WorldVerticesLength
	c.polygon = growFloats(c.polygon, n)
	clip.ComputeWorldVertices(slot, 0, n, c.polygon, 0, 2)
	MakeClockwise(c.polygon)
	c.polygons = c.triangulator.Decompose(c.polygon, c.triangulator.Triangulate(c.polygon))
	for i, p := range c.polygons {
		MakeClockwise(p)
		c.polygons[i] = append(p, p[0], p[1])
	}
	return len(c.polygons)
}

// ClipEndSlot ends the active clip if slot is its end slot.
func (c *SkeletonClipping) ClipEndSlot(slot *Slot) {
	if c.clip != nil && c.clip.EndSlot == slot.Data {
		c.ClipEnd()
	}
}

// ClipEnd ends the active clip, if any.
func (c *SkeletonClipping) ClipEnd() {
	if c.clip == nil {
		return
	}
	c.clip = nil
	c.polygons = nil
	c.polygon = c.polygon[:0]
	c.clippedVertices = c.clippedVertices[:0]
	c.clippedTriangles = c.clippedTriangles[:0]
	c.clippedUVs = c.clippedUVs[:0]
}

// IsClipping reports whether a clip is active.
func (c *SkeletonClipping) IsClipping() bool { return c.clip != nil }

// ClippedVertices returns x, y pairs produced by the last ClipTriangles.
func (c *SkeletonClipping) ClippedVertices() []float32 { return c.clippedVertices }

// ClippedTriangles returns indices into ClippedVertices.
func (c *SkeletonClipping) ClippedTriangles() []uint16 { return c.clippedTriangles }

// ClippedUVs returns u, v pairs matching ClippedVertices.
func (c *SkeletonClipping) ClippedUVs() []float32 { return c.clippedUVs }

// ClipTriangles clips the triangles of a mesh (world x, y pairs in vertices,
// matching u, v pairs in uvs) against the active clip. Triangles inside a
// convex piece are kept whole; others are cut and their UVs interpolated.
func (c *SkeletonClipping) ClipTriangles(vertices []float32, triangles []uint16, uvs []float32) {
	c.clippedVertices = c.clippedVertices[:0]
	c.clippedUVs = c.clippedUVs[:0]
	c.clippedTriangles = c.clippedTriangles[:0]

	var index uint16
	for i := 0; i+2 < len(triangles); i += 3 {
		o := int(triangles[i]) << 1
		x1, y1, u1, v1 := vertices[o], vertices[o+1], uvs[o], uvs[o+1]
		o = int(triangles[i+1]) << 1
		x2, y2, u2, v2 := vertices[o], vertices[o+1], uvs[o], uvs[o+1]
		o = int(triangles[i+2]) << 1
		x3, y3, u3, v3 := vertices[o], vertices[o+1], uvs[o], uvs[o+1]

		for _, polygon := range c.polygons {
			if !c.clipTriangle(x1, y1, x2, y2, x3, y3, polygon) {
				c.clippedVertices = append(c.clippedVertices, x1, y1, x2, y2, x3, y3)
				c.clippedUVs = append(c.clippedUVs, u1, v1, u2, v2, u3, v3)
				c.clippedTriangles = append(c.clippedTriangles, index, index+1, index+2)
				index += 3
				break
			}
			out := c.clipOutput
			if len(out) == 0 {
				continue
			}

			// Barycentric weights of each clipped point against the source
			// triangle.
			d0, d1, d2, d4 := y2-y3, x3-x2, x1-x3, y3-y1
			d := 1 / (d0*d2 + d1*(y1-y3))
			for ii := 0; ii < len(out); ii += 2 {
				x, y := out[ii], out[ii+1]
				c0, c1 := x-x3, y-y3
				a := (d0*c0 + d1*c1) * d
				b := (d4*c0 + d2*c1) * d
				cc := 1 - a - b
				c.clippedVertices = append(c.clippedVertices, x, y)
				c.clippedUVs = append(c.clippedUVs, u1*a+u2*b+u3*cc, v1*a+v2*b+v3*cc)
			}

			count := uint16(len(out) >> 1)
			for ii := uint16(1); ii < count-1; ii++ {
				c.clippedTriangles = append(c.clippedTriangles, index, index+ii, index+ii+1)
			}
			index += count
		}
	}
}

// clipTriangle clips the triangle against a closed convex polygon, leaving
// the result in clipOutput. It returns false when the triangle is entirely
// inside, and true with an empty clipOutput when it is entirely outside.
func (c *SkeletonClipping) clipTriangle(x1, y1, x2, y2, x3, y3 float32, area []float32) bool {
	clipped := false
	input := append(c.scratchA[:0], x1, y1, x2, y2, x3, y3, x1, y1)
	output := c.scratchB[:0]
	last := len(area) - 4

	for i := 0; ; i += 2 {
		edgeX, edgeY := area[i], area[i+1]
		edgeX2, edgeY2 := area[i+2], area[i+3]
		deltaX, deltaY := edgeX-edgeX2, edgeY-edgeY2

		for ii := 0; ii+3 < len(input); ii += 2 {
			inX, inY := input[ii], input[ii+1]
			inX2, inY2 := input[ii+2], input[ii+3]
			side2 := deltaX*(inY2-edgeY2)-deltaY*(inX2-edgeX2) > 0
			if deltaX*(inY-edgeY2)-deltaY*(inX-edgeX2) > 0 {
				if side2 {
					output = append(output, inX2, inY2)
					continue
				}
				ix, iy := intersect(inX, inY, inX2, inY2, edgeX, edgeY, edgeX2, edgeY2)
				output = append(output, ix, iy)
			} else if side2 {
				ix, iy := intersect(inX, inY, inX2, inY2, edgeX, edgeY, edgeX2, edgeY2)
				output = append(output, ix, iy, inX2, inY2)
			}
			clipped = true
		}

		if len(output) == 0 {
			c.scratchA, c.scratchB = input, output
			c.clipOutput = c.clipOutput[:0]
			return true
		}
		output = append(output, output[0], output[1])
		if i == last {
			break
		}
		input, output = output, input[:0]
	}

	c.clipOutput = append(c.clipOutput[:0], output[:len(output)-2]...)
	c.scratchA, c.scratchB = input, output
	return clipped
}

// intersect returns where the segment from (x, y) to (x2, y2) crosses the
// clip edge. Parallel lines return the edge start.
func intersect(x, y, x2, y2, edgeX, edgeY, edgeX2, edgeY2 float32) (float32, float32) {
	c0, c2 := y2-y, x2-x
	s := c0*(edgeX2-edgeX) - c2*(edgeY2-edgeY)
	if math32.Abs(s) <= 0.000001 {
		return edgeX, edgeY
	}
	ua := (c2*(edgeY-y) - c0*(edgeX-x)) / s
	return edgeX + (edgeX2-edgeX)*ua, edgeY + (edgeY2-edgeY)*ua
}

// MakeClockwise reverses the vertex order of a polygon given as flat x, y
// pairs if it winds counter-clockwise in a y-up frame.
func MakeClockwise(polygon []float32) {
	n := len(polygon)
	if n < 6 || signedArea(polygon) < 0 {
		return
	}
	for i, last := 0, n-2; i < n>>1; i += 2 {
		other := last - i
		polygon[i], polygon[other] = polygon[other], polygon[i]
		polygon[i+1], polygon[other+1] = polygon[other+1], polygon[i+1]
	}
}
