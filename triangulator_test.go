package marionette

import (
	"slices"
	"testing"

	"github.com/chewxy/math32"
)

// lShape is a clockwise (y-up) L of three unit squares.
var lShape = []float32{0, 0, 0, 2, 1, 2, 1, 1, 2, 1, 2, 0}

// reversed returns polygon with its winding flipped.
func reversed(polygon []float32) []float32 {
	out := make([]float32, 0, len(polygon))
	for i := len(polygon) - 2; i >= 0; i -= 2 {
		out = append(out, polygon[i], polygon[i+1])
	}
	return out
}

func triangleArea(x1, y1, x2, y2, x3, y3 float32) float32 {
	return math32.Abs((x2-x1)*(y3-y1)-(x3-x1)*(y2-y1)) / 2
}

func polygonArea(p []float32) float32 {
	var a float32
	n := len(p)
	for i := 0; i < n; i += 2 {
		j := (i + 2) % n
		a += p[i]*p[j+1] - p[j]*p[i+1]
	}
	return math32.Abs(a) / 2
}

func isConvex(p []float32) bool {
	n := len(p) / 2
	sign := 0
	for i := 0; i < n; i++ {
		a, b, c := i*2, (i+1)%n*2, (i+2)%n*2
		cross := (p[b]-p[a])*(p[c+1]-p[b+1]) - (p[b+1]-p[a+1])*(p[c]-p[b])
		if math32.Abs(cross) < 1e-6 {
			continue
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

func TestTriangulateCount(t *testing.T) {
	tests := []struct {
		name    string
		polygon []float32
	}{
		{"triangle", []float32{0, 0, 0, 1, 1, 0}},
		{"square", []float32{0, 0, 0, 1, 1, 1, 1, 0}},
		{"l shape", lShape},
		{"comb", []float32{0, 0, 0, 3, 1, 3, 1, 1, 2, 1, 2, 3, 3, 3, 3, 0}},
		{"l shape counter-clockwise", reversed(lShape)},
		{"comb counter-clockwise", reversed([]float32{0, 0, 0, 3, 1, 3, 1, 1, 2, 1, 2, 3, 3, 3, 3, 0})},
	}
	var tr Triangulator
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.polygon) / 2
			tris := tr.Triangulate(tt.polygon)
			if len(tris) != 3*(n-2) {
				t.Fatalf("got %d indices, want %d", len(tris), 3*(n-2))
			}
			var area float32
			for i := 0; i < len(tris); i += 3 {
				a, b, c := tris[i]*2, tris[i+1]*2, tris[i+2]*2
				area += triangleArea(tt.polygon[a], tt.polygon[a+1], tt.polygon[b], tt.polygon[b+1], tt.polygon[c], tt.polygon[c+1])
			}
			assertNear(t, "area", area, polygonArea(tt.polygon))
		})
	}
}

func TestDecomposeSquareIsOnePolygon(t *testing.T) {
	square := []float32{0, 0, 0, 1, 1, 1, 1, 0}
	var tr Triangulator
	polys := tr.Decompose(square, tr.Triangulate(square))
	if len(polys) != 1 || len(polys[0]) != 8 {
		t.Fatalf("got %v, want one quad", polys)
	}
}

func TestDecomposeConcave(t *testing.T) {
	var tr Triangulator
	polys := tr.Decompose(lShape, tr.Triangulate(lShape))
	if len(polys) < 2 {
		t.Fatalf("got %d polygons, want at least 2 for a concave shape", len(polys))
	}
	var area float32
	for _, p := range polys {
		if !isConvex(p) {
			t.Errorf("polygon %v is not convex", p)
		}
		area += polygonArea(p)
	}
	assertNear(t, "area", area, 3)
}

func TestTriangulatorReuse(t *testing.T) {
	var tr Triangulator
	tr.Decompose(lShape, tr.Triangulate(lShape))
	square := []float32{0, 0, 0, 1, 1, 1, 1, 0}
	polys := tr.Decompose(square, tr.Triangulate(square))
	if len(polys) != 1 || len(polys[0]) != 8 {
		t.Fatalf("reused triangulator got %v, want one quad", polys)
	}
}

func TestTriangulateLeavesInputAlone(t *testing.T) {
	ccw := reversed(lShape)
	before := append([]float32(nil), ccw...)
	var tr Triangulator
	tr.Triangulate(ccw)
	if !slices.Equal(ccw, before) {
		t.Fatalf("input changed to %v", ccw)
	}
}

func TestDecomposeCounterClockwise(t *testing.T) {
	var tr Triangulator
	ccw := reversed(lShape)
	var area float32
	for _, p := range tr.Decompose(ccw, tr.Triangulate(ccw)) {
		if !isConvex(p) {
			t.Errorf("polygon %v is not convex", p)
		}
		area += polygonArea(p)
	}
	assertNear(t, "area", area, 3)
}
