package marionette

// Curve types stored at the head of each bezier block.
const (
	CurveLinear  = 0
	CurveStepped = 1
	CurveBezier  = 2
)

// bezierSize is the number of floats per frame: the curve type followed by
// nine sampled (x, y) pairs.
const bezierSize = 10*2 - 1

// Curves holds the interpolation curve between each pair of adjacent keys.
// Bezier curves are sampled once by SetCurve so evaluation is a short linear
// scan.
type Curves struct {
	curves []float32
}

func newCurves(frameCount int) Curves {
	n := frameCount - 1
	if n < 0 {
		n = 0
	}
	return Curves{curves: make([]float32, n*bezierSize)}
}

// CurveCount returns the number of key intervals that carry a curve.
func (c *Curves) CurveCount() int { return len(c.curves) / bezierSize }

// SetLinear makes the interval after frame linear. This is the default.
func (c *Curves) SetLinear(frame int) { c.curves[frame*bezierSize] = CurveLinear }

// SetStepped makes the interval after frame hold the frame's value.
func (c *Curves) SetStepped(frame int) { c.curves[frame*bezierSize] = CurveStepped }

// CurveType returns CurveLinear, CurveStepped or CurveBezier.
func (c *Curves) CurveType(frame int) int {
	switch c.curves[frame*bezierSize] {
	case CurveStepped:
		return CurveStepped
	case CurveBezier:
		return CurveBezier
	}
	return CurveLinear
}

// SetCurve samples the cubic bezier (0,0), (cx1,cy1), (cx2,cy2), (1,1) for the
// interval after frame. cx1 and cx2 are expected in [0, 1].
func (c *Curves) SetCurve(frame int, cx1, cy1, cx2, cy2 float32) {
	tmpx := (-cx1*2 + cx2) * 0.03
	tmpy := (-cy1*2 + cy2) * 0.03
	dddfx := ((cx1-cx2)*3 + 1) * 0.006
	dddfy := ((cy1-cy2)*3 + 1) * 0.006
	ddfx := tmpx*2 + dddfx
	ddfy := tmpy*2 + dddfy
	dfx := cx1*0.3 + tmpx + dddfx*0.16666667
	dfy := cy1*0.3 + tmpy + dddfy*0.16666667

	i := frame * bezierSize
	curves := c.curves
	curves[i] = CurveBezier
	i++

	x, y := dfx, dfy
	for n := i + bezierSize - 1; i < n; i += 2 {
		curves[i] = x
		curves[i+1] = y
		dfx += ddfx
		dfy += ddfy
		ddfx += dddfx
		ddfy += dddfy
		x += dfx
		y += dfy
	}
}

// CurvePercent maps the linear progress percent through the interval after
// frame to the curved progress.
func (c *Curves) CurvePercent(frame int, percent float32) float32 {
	percent = Clamp(percent, 0, 1)
	curves := c.curves
	i := frame * bezierSize
	switch curves[i] {
	case CurveLinear:
		return percent
	case CurveStepped:
		return 0
	}
	if percent == 1 {
		return 1
	}
	i++
	var x float32
	for start, n := i, i+bezierSize-1; i < n; i += 2 {
		x = curves[i]
		if x >= percent {
			var prevX, prevY float32
			if i != start {
				prevX = curves[i-2]
				prevY = curves[i-1]
			}
			return prevY + (curves[i+1]-prevY)*(percent-prevX)/(x-prevX)
		}
	}
	y := curves[i-1]
	return y + (1-y)*(percent-x)/(1-x)
}
