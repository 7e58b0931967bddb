package marionette

// Triangulator ear-clips simple polygons and merges the resulting triangles
// into convex polygons. Its buffers are reused between calls, so returned
// slices are only valid until the next call.
type Triangulator struct {
	indices   []int
	concave   []bool
	triangles []int

	polygons    [][]float32
	polyIndices [][]int
}

// Triangulate returns triangle indices (three per triangle, into vertex
// pairs) covering the polygon given as flat x, y pairs. A polygon of n
// vertices yields 3*(n-2) indices. Either winding is accepted; vertices is
// not modified.
func (t *Triangulator) Triangulate(vertices []float32) []int {
	n := len(vertices) >> 1

	// Ears are clipped walking the polygon clockwise.
	t.indices = t.indices[:0]
	if signedArea(vertices) < 0 {
		for i := 0; i < n; i++ {
			t.indices = append(t.indices, i)
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			t.indices = append(t.indices, i)
		}
	}
	indices := t.indices

	t.concave = t.concave[:0]
	for i := 0; i < n; i++ {
		t.concave = append(t.concave, isConcave(i, n, vertices, indices))
	}
	concave := t.concave

	triangles := t.triangles[:0]
	for n > 3 {
		prev, i, next := n-1, 0, 1
	search:
		for {
			if !concave[i] {
				p1, p2, p3 := indices[prev]<<1, indices[i]<<1, indices[next]<<1
				p1x, p1y := vertices[p1], vertices[p1+1]
				p2x, p2y := vertices[p2], vertices[p2+1]
				p3x, p3y := vertices[p3], vertices[p3+1]
				ear := true
				for ii := (next + 1) % n; ii != prev; ii = (ii + 1) % n {
					if !concave[ii] {
						continue
					}
					v := indices[ii] << 1
					vx, vy := vertices[v], vertices[v+1]
					if positiveArea(p3x, p3y, p1x, p1y, vx, vy) &&
						positiveArea(p1x, p1y, p2x, p2y, vx, vy) &&
						positiveArea(p2x, p2y, p3x, p3y, vx, vy) {
						ear = false
						break
					}
				}
				if ear {
					break search
				}
			}
			if next == 0 {
				// No clean ear: fall back to the last convex vertex.
				for i > 0 && concave[i] {
					i--
				}
				break search
			}
			prev, i, next = i, next, (next+1)%n
		}

		triangles = append(triangles, indices[(n+i-1)%n], indices[i], indices[(i+1)%n])
		indices = append(indices[:i], indices[i+1:]...)
		concave = append(concave[:i], concave[i+1:]...)
		n--

		pi := (n + i - 1) % n
		ni := i
		if i == n {
			ni = 0
		}
		concave[pi] = isConcave(pi, n, vertices, indices)
		concave[ni] = isConcave(ni, n, vertices, indices)
	}
	if n == 3 {
		triangles = append(triangles, indices[2], indices[0], indices[1])
	}

	t.triangles = triangles
	return triangles
}

// Decompose merges triangles from Triangulate into convex polygons, each
// returned as flat x, y pairs.
func (t *Triangulator) Decompose(vertices []float32, triangles []int) [][]float32 {
	t.polygons = t.polygons[:0]
	t.polyIndices = t.polyIndices[:0]

	// Merge consecutive triangles that fan around the same base vertex.
	cur := -1
	fanBase, lastWinding := -1, 0
	for i := 0; i+2 < len(triangles); i += 3 {
		t1, t2, t3 := triangles[i]<<1, triangles[i+1]<<1, triangles[i+2]<<1
		x1, y1 := vertices[t1], vertices[t1+1]
		x2, y2 := vertices[t2], vertices[t2+1]
		x3, y3 := vertices[t3], vertices[t3+1]

		if cur >= 0 && fanBase == t1 {
			p := t.polygons[cur]
			o := len(p) - 4
			w1 := winding(p[o], p[o+1], p[o+2], p[o+3], x3, y3)
			w2 := winding(x3, y3, p[0], p[1], p[2], p[3])
			if w1 == lastWinding && w2 == lastWinding {
				t.polygons[cur] = append(p, x3, y3)
				t.polyIndices[cur] = append(t.polyIndices[cur], t3)
				continue
			}
		}

		cur = t.nextPolygon()
		t.polygons[cur] = append(t.polygons[cur], x1, y1, x2, y2, x3, y3)
		t.polyIndices[cur] = append(t.polyIndices[cur], t1, t2, t3)
		lastWinding = winding(x1, y1, x2, y2, x3, y3)
		fanBase = t1
	}

	// Stitch lone triangles onto the fans when the result stays convex.
	polygons, polyIndices := t.polygons, t.polyIndices
	for i := range polygons {
		indices := polyIndices[i]
		if len(indices) == 0 {
			continue
		}
		first, last := indices[0], indices[len(indices)-1]
		p := polygons[i]
		o := len(p) - 4
		prevPrevX, prevPrevY := p[o], p[o+1]
		prevX, prevY := p[o+2], p[o+3]
		firstX, firstY := p[0], p[1]
		secondX, secondY := p[2], p[3]
		w := winding(prevPrevX, prevPrevY, prevX, prevY, firstX, firstY)

		for ii := 0; ii < len(polygons); ii++ {
			if ii == i {
				continue
			}
			other := polyIndices[ii]
			if len(other) != 3 || other[0] != first || other[1] != last {
				continue
			}
			op := polygons[ii]
			x3, y3 := op[len(op)-2], op[len(op)-1]
			w1 := winding(prevPrevX, prevPrevY, prevX, prevY, x3, y3)
			w2 := winding(x3, y3, firstX, firstY, secondX, secondY)
			if w1 != w || w2 != w {
				continue
			}
			polygons[ii] = op[:0]
			polyIndices[i] = append(polyIndices[i], other[2])
			polyIndices[ii] = other[:0]
			polygons[i] = append(polygons[i], x3, y3)
			last = other[2]
			prevPrevX, prevPrevY = prevX, prevY
			prevX, prevY = x3, y3
			ii = -1
		}
	}

	// Drop polygons emptied by stitching, keeping their buffers for reuse.
	n := 0
	for i := range polygons {
		if len(polygons[i]) == 0 {
			continue
		}
		polygons[n], polygons[i] = polygons[i], polygons[n]
		polyIndices[n], polyIndices[i] = polyIndices[i], polyIndices[n]
		n++
	}
	t.polygons = polygons[:n]
	t.polyIndices = polyIndices[:n]
	return t.polygons
}

// nextPolygon appends an empty polygon, reusing a previous buffer when one
// is available, and returns its index.
func (t *Triangulator) nextPolygon() int {
	k := len(t.polygons)
	if k < cap(t.polygons) {
		t.polygons = t.polygons[:k+1]
		t.polygons[k] = t.polygons[k][:0]
	} else {
		t.polygons = append(t.polygons, nil)
	}
	if k < cap(t.polyIndices) {
		t.polyIndices = t.polyIndices[:k+1]
		t.polyIndices[k] = t.polyIndices[k][:0]
	} else {
		t.polyIndices = append(t.polyIndices, nil)
	}
	return k
}

func isConcave(index, n int, vertices []float32, indices []int) bool {
	prev := indices[(n+index-1)%n] << 1
	cur := indices[index] << 1
	next := indices[(index+1)%n] << 1
	return !positiveArea(vertices[prev], vertices[prev+1], vertices[cur], vertices[cur+1], vertices[next], vertices[next+1])
}

// signedArea returns twice the shoelace area of polygon, negative for
// clockwise winding with y up.
func signedArea(polygon []float32) float32 {
	n := len(polygon)
	if n < 6 {
		return 0
	}
	area := polygon[n-2]*polygon[1] - polygon[0]*polygon[n-1]
	for i := 0; i < n-3; i += 2 {
		area += polygon[i]*polygon[i+3] - polygon[i+2]*polygon[i+1]
	}
	return area
}

func positiveArea(p1x, p1y, p2x, p2y, p3x, p3y float32) bool {
	return p1x*(p3y-p2y)+p2x*(p1y-p3y)+p3x*(p2y-p1y) >= 0
}

// winding returns 1 when p3 is on the left of p1->p2, else -1.
func winding(p1x, p1y, p2x, p2y, p3x, p3y float32) int {
	px, py := p2x-p1x, p2y-p1y
	if p3x*py-p3y*px+px*p1y-p1x*py >= 0 {
		return 1
	}
	return -1
}
