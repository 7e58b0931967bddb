package marionette

import "github.com/chewxy/math32"

// PathConstraintData positions and rotates bones along a path attachment.
type PathConstraintData struct {
	ConstraintBase

	Bones  []*BoneData
	Target *SlotData

	PositionMode PositionMode
	SpacingMode  SpacingMode
	RotateMode   RotateMode

	OffsetRotation float32
	Position       float32
	Spacing        float32
	RotateMix      float32
	TranslateMix   float32
}

// NewPathConstraintData returns path data with zero mixes.
func NewPathConstraintData(name string) *PathConstraintData {
	return &PathConstraintData{ConstraintBase: ConstraintBase{Name: name}}
}

const (
	pathNone    = -1
	pathBefore  = -2
	pathAfter   = -3
	pathEpsilon = 0.00001
)

// PathConstraint is the per-skeleton state of a PathConstraintData. Its
// buffers are reused between updates, so one instance must not be updated
// concurrently.
type PathConstraint struct {
	Data   *PathConstraintData
	Bones  []*Bone
	Target *Slot

	Position, Spacing       float32
	RotateMix, TranslateMix float32

	active bool

	spaces    []float32
	positions []float32
	world     []float32
	curves    []float32
	lengths   []float32
	segments  [10]float32
}

func newPathConstraint(data *PathConstraintData, s *Skeleton) *PathConstraint {
	c := &PathConstraint{Data: data, Target: s.Slots[data.Target.Index]}
	c.Bones = make([]*Bone, len(data.Bones))
	for i, bd := range data.Bones {
		c.Bones[i] = s.Bones[bd.Index]
	}
	c.SetToSetupPose()
	return c
}

// SetToSetupPose restores the data's position, spacing and mixes.
func (c *PathConstraint) SetToSetupPose() {
	d := c.Data
	c.Position, c.Spacing = d.Position, d.Spacing
	c.RotateMix, c.TranslateMix = d.RotateMix, d.TranslateMix
}

// Active reports whether the constraint is applied.
func (c *PathConstraint) Active() bool { return c.active }

// growFloats returns buf with length n, reallocating only when capacity is
// short.
func growFloats(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

// Update applies the constraint to its bones.
func (c *PathConstraint) Update() {
	path := c.Target.Attachment()
	if path == nil || path.Type != AttachmentPath {
		return
	}
	rotateMix, translateMix := c.RotateMix, c.TranslateMix
	if rotateMix == 0 && translateMix == 0 {
		return
	}

	d := c.Data
	tangents := d.RotateMode == RotateTangent
	scale := d.RotateMode == RotateChainScale
	boneCount := len(c.Bones)
	spacesCount := boneCount + 1
	if tangents {
		spacesCount = boneCount
	}
	c.spaces = growFloats(c.spaces, spacesCount)
	spaces := c.spaces
	var lengths []float32
	if scale {
		c.lengths = growFloats(c.lengths, boneCount)
		lengths = c.lengths
	}
	spacing := c.Spacing

	spaces[0] = 0
	switch d.SpacingMode {
	case SpacingPercent:
		if scale {
			for i := 0; i < spacesCount-1; i++ {
				bone := c.Bones[i]
				setupLength := bone.Data.Length
				if setupLength < pathEpsilon {
					lengths[i] = 0
					continue
				}
				x, y := setupLength*bone.A, setupLength*bone.C
				lengths[i] = math32.Sqrt(x*x + y*y)
			}
		}
		for i := 1; i < spacesCount; i++ {
			spaces[i] = spacing
		}
	default:
		lengthSpacing := d.SpacingMode == SpacingLength
		for i := 0; i < spacesCount-1; {
			bone := c.Bones[i]
			setupLength := bone.Data.Length
			if setupLength < pathEpsilon {
				if scale {
					lengths[i] = 0
				}
				i++
				spaces[i] = spacing
				continue
			}
			x, y := setupLength*bone.A, setupLength*bone.C
			length := math32.Sqrt(x*x + y*y)
			if scale {
				lengths[i] = length
			}
			i++
			if lengthSpacing {
				spaces[i] = (setupLength + spacing) * length / setupLength
			} else {
				spaces[i] = spacing * length / setupLength
			}
		}
	}

	positions := c.computeWorldPositions(path, spacesCount, tangents)
	boneX, boneY := positions[0], positions[1]
	offsetRotation := d.OffsetRotation
	var tip bool
	if offsetRotation == 0 {
		tip = d.RotateMode == RotateChain
	} else {
		p := c.Target.Bone()
		if p.A*p.D-p.B*p.C > 0 {
			offsetRotation *= DegRad
		} else {
			offsetRotation *= -DegRad
		}
	}

	for i, p := 0, 3; i < boneCount; i, p = i+1, p+3 {
		bone := c.Bones[i]
		bone.WorldX += (boneX - bone.WorldX) * translateMix
		bone.WorldY += (boneY - bone.WorldY) * translateMix
		x, y := positions[p], positions[p+1]
		dx, dy := x-boneX, y-boneY
		if scale {
			if length := lengths[i]; length >= pathEpsilon {
				s := (math32.Sqrt(dx*dx+dy*dy)/length-1)*rotateMix + 1
				bone.A *= s
				bone.C *= s
			}
		}
		boneX, boneY = x, y
		if rotateMix > 0 {
			a, b, cc, dd := bone.A, bone.B, bone.C, bone.D
			var r float32
			switch {
			case tangents:
				r = positions[p-1]
			case spaces[i+1] < pathEpsilon:
				r = positions[p+2]
			default:
				r = Atan2(dy, dx)
			}
			r -= Atan2(cc, a)
			if tip {
				cos, sin := Cos(r), Sin(r)
				length := bone.Data.Length
				boneX += (length*(cos*a-sin*cc) - dx) * rotateMix
				boneY += (length*(sin*a+cos*cc) - dy) * rotateMix
			} else {
				r += offsetRotation
			}
			r = wrapRadians(r) * rotateMix
			cos, sin := Cos(r), Sin(r)
			bone.A = cos*a - sin*cc
			bone.B = cos*b - sin*dd
			bone.C = sin*a + cos*cc
			bone.D = sin*b + cos*dd
		}
		bone.UpdateAppliedTransform()
	}
}

// computeWorldPositions returns x, y and tangent angle for each space along
// the path.
func (c *PathConstraint) computeWorldPositions(path *Attachment, spacesCount int, tangents bool) []float32 {
	target := c.Target
	position := c.Position
	spaces := c.spaces
	c.positions = growFloats(c.positions, spacesCount*3+2)
	out := c.positions
	closed := path.Closed
	verticesLength := path.WorldVerticesLength
	curveCount := verticesLength / 6
	prevCurve := pathNone
	percentPosition := c.Data.PositionMode == PositionPercent
	percentSpacing := c.Data.SpacingMode == SpacingPercent

	if !path.ConstantSpeed {
		lengths := path.Lengths
		if closed {
			curveCount--
		} else {
			curveCount -= 2
		}
		pathLength := lengths[curveCount]
		if percentPosition {
			position *= pathLength
		}
		if percentSpacing {
			for i := 1; i < spacesCount; i++ {
				spaces[i] *= pathLength
			}
		}
		c.world = growFloats(c.world, 8)
		world := c.world
		curve := 0
		for i, o := 0, 0; i < spacesCount; i, o = i+1, o+3 {
			space := spaces[i]
			position += space
			p := position
			if closed {
				p = math32.Mod(p, pathLength)
				if p < 0 {
					p += pathLength
				}
				curve = 0
			} else if p < 0 {
				if prevCurve != pathBefore {
					prevCurve = pathBefore
					path.ComputeWorldVertices(target, 2, 4, world, 0, 2)
				}
				addBeforePosition(p, world, 0, out, o)
				continue
			} else if p > pathLength {
				if prevCurve != pathAfter {
					prevCurve = pathAfter
					path.ComputeWorldVertices(target, verticesLength-6, 4, world, 0, 2)
				}
				addAfterPosition(p-pathLength, world, 0, out, o)
				continue
			}

			for ; ; curve++ {
				length := lengths[curve]
				if p > length {
					continue
				}
				if curve == 0 {
					p = safeDiv(p, length)
				} else {
					prev := lengths[curve-1]
					p = safeDiv(p-prev, length-prev)
				}
				break
			}
			if curve != prevCurve {
				prevCurve = curve
				if closed && curve == curveCount {
					path.ComputeWorldVertices(target, verticesLength-4, 4, world, 0, 2)
					path.ComputeWorldVertices(target, 0, 4, world, 4, 2)
				} else {
					path.ComputeWorldVertices(target, curve*6+2, 8, world, 0, 2)
				}
			}
			addCurvePosition(p, world[0], world[1], world[2], world[3], world[4], world[5], world[6], world[7],
				out, o, tangents || (i > 0 && space < pathEpsilon))
		}
		return out
	}

	var world []float32
	if closed {
		verticesLength += 2
		c.world = growFloats(c.world, verticesLength)
		world = c.world
		path.ComputeWorldVertices(target, 2, verticesLength-4, world, 0, 2)
		path.ComputeWorldVertices(target, 0, 2, world, verticesLength-4, 2)
		world[verticesLength-2] = world[0]
		world[verticesLength-1] = world[1]
	} else {
		curveCount--
		verticesLength -= 4
		c.world = growFloats(c.world, verticesLength)
		world = c.world
		path.ComputeWorldVertices(target, 2, verticesLength, world, 0, 2)
	}

	// Approximate each curve's length with a coarse forward difference.
	c.curves = growFloats(c.curves, curveCount)
	curves := c.curves
	var pathLength float32
	x1, y1 := world[0], world[1]
	var cx1, cy1, cx2, cy2, x2, y2 float32
	for i, w := 0, 2; i < curveCount; i, w = i+1, w+6 {
		cx1, cy1 = world[w], world[w+1]
		cx2, cy2 = world[w+2], world[w+3]
		x2, y2 = world[w+4], world[w+5]
		tmpx := (x1 - cx1*2 + cx2) * 0.1875
		tmpy := (y1 - cy1*2 + cy2) * 0.1875
		dddfx := ((cx1-cx2)*3 - x1 + x2) * 0.09375
		dddfy := ((cy1-cy2)*3 - y1 + y2) * 0.09375
		ddfx := tmpx*2 + dddfx
		ddfy := tmpy*2 + dddfy
		dfx := (cx1-x1)*0.75 + tmpx + dddfx*0.16666667
		dfy := (cy1-y1)*0.75 + tmpy + dddfy*0.16666667
		pathLength += math32.Sqrt(dfx*dfx + dfy*dfy)
		dfx += ddfx
		dfy += ddfy
		ddfx += dddfx
		ddfy += dddfy
		pathLength += math32.Sqrt(dfx*dfx + dfy*dfy)
		dfx += ddfx
		dfy += ddfy
		pathLength += math32.Sqrt(dfx*dfx + dfy*dfy)
		dfx += ddfx + dddfx
		dfy += ddfy + dddfy
		pathLength += math32.Sqrt(dfx*dfx + dfy*dfy)
		curves[i] = pathLength
		x1, y1 = x2, y2
	}
	if percentPosition {
		position *= pathLength
	}
	if percentSpacing {
		for i := 1; i < spacesCount; i++ {
			spaces[i] *= pathLength
		}
	}

	segments := &c.segments
	var curveLength float32
	curve, segment := 0, 0
	for i, o := 0, 0; i < spacesCount; i, o = i+1, o+3 {
		space := spaces[i]
		position += space
		p := position
		if closed {
			p = math32.Mod(p, pathLength)
			if p < 0 {
				p += pathLength
			}
			curve = 0
		} else if p < 0 {
			addBeforePosition(p, world, 0, out, o)
			continue
		} else if p > pathLength {
			addAfterPosition(p-pathLength, world, verticesLength-4, out, o)
			continue
		}

		for ; ; curve++ {
			length := curves[curve]
			if p > length {
				continue
			}
			if curve == 0 {
				p = safeDiv(p, length)
			} else {
				prev := curves[curve-1]
				p = safeDiv(p-prev, length-prev)
			}
			break
		}

		// Arc lengths of ten segments of the containing curve.
		if curve != prevCurve {
			prevCurve = curve
			ii := curve * 6
			x1, y1 = world[ii], world[ii+1]
			cx1, cy1 = world[ii+2], world[ii+3]
			cx2, cy2 = world[ii+4], world[ii+5]
			x2, y2 = world[ii+6], world[ii+7]
			tmpx := (x1 - cx1*2 + cx2) * 0.03
			tmpy := (y1 - cy1*2 + cy2) * 0.03
			dddfx := ((cx1-cx2)*3 - x1 + x2) * 0.006
			dddfy := ((cy1-cy2)*3 - y1 + y2) * 0.006
			ddfx := tmpx*2 + dddfx
			ddfy := tmpy*2 + dddfy
			dfx := (cx1-x1)*0.3 + tmpx + dddfx*0.16666667
			dfy := (cy1-y1)*0.3 + tmpy + dddfy*0.16666667
			curveLength = math32.Sqrt(dfx*dfx + dfy*dfy)
			segments[0] = curveLength
			for ii = 1; ii < 8; ii++ {
				dfx += ddfx
				dfy += ddfy
				ddfx += dddfx
				ddfy += dddfy
				curveLength += math32.Sqrt(dfx*dfx + dfy*dfy)
				segments[ii] = curveLength
			}
			dfx += ddfx
			dfy += ddfy
			curveLength += math32.Sqrt(dfx*dfx + dfy*dfy)
			segments[8] = curveLength
			dfx += ddfx + dddfx
			dfy += ddfy + dddfy
			curveLength += math32.Sqrt(dfx*dfx + dfy*dfy)
			segments[9] = curveLength
			segment = 0
		}

		p *= curveLength
		for ; ; segment++ {
			length := segments[segment]
			if p > length && segment < len(segments)-1 {
				continue
			}
			if segment == 0 {
				p = safeDiv(p, length)
			} else {
				prev := segments[segment-1]
				p = float32(segment) + safeDiv(p-prev, length-prev)
			}
			break
		}
		addCurvePosition(p*0.1, x1, y1, cx1, cy1, cx2, cy2, x2, y2, out, o, tangents || (i > 0 && space < pathEpsilon))
	}
	return out
}

// safeDiv returns n/d, or 0 when the divisor is degenerate.
func safeDiv(n, d float32) float32 {
	if d < pathEpsilon {
		return 0
	}
	return n / d
}

func addBeforePosition(p float32, temp []float32, i int, out []float32, o int) {
	x1, y1 := temp[i], temp[i+1]
	dx, dy := temp[i+2]-x1, temp[i+3]-y1
	r := Atan2(dy, dx)
	out[o] = x1 + p*Cos(r)
	out[o+1] = y1 + p*Sin(r)
	out[o+2] = r
}

func addAfterPosition(p float32, temp []float32, i int, out []float32, o int) {
	x1, y1 := temp[i+2], temp[i+3]
	dx, dy := x1-temp[i], y1-temp[i+1]
	r := Atan2(dy, dx)
	out[o] = x1 + p*Cos(r)
	out[o+1] = y1 + p*Sin(r)
	out[o+2] = r
}

func addCurvePosition(p, x1, y1, cx1, cy1, cx2, cy2, x2, y2 float32, out []float32, o int, tangents bool) {
	if p < pathEpsilon || math32.IsNaN(p) {
		out[o] = x1
		out[o+1] = y1
		out[o+2] = Atan2(cy1-y1, cx1-x1)
		return
	}
	tt := p * p
	ttt := tt * p
	u := 1 - p
	uu := u * u
	uuu := uu * u
	ut := u * p
	ut3 := ut * 3
	uut3 := u * ut3
	utt3 := ut3 * p
	x := x1*uuu + cx1*uut3 + cx2*utt3 + x2*ttt
	y := y1*uuu + cy1*uut3 + cy2*utt3 + y2*ttt
	out[o] = x
	out[o+1] = y
	if tangents {
		if p < 0.001 {
			out[o+2] = Atan2(cy1-y1, cx1-x1)
		} else {
			out[o+2] = Atan2(y-(y1*uu+cy1*ut*2+cy2*tt), x-(x1*uu+cx1*ut*2+cx2*tt))
		}
	}
}
