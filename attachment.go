package marionette

import "fmt"

// AttachmentType identifies the kind of an Attachment.
type AttachmentType uint8

const (
	AttachmentRegion AttachmentType = iota
	AttachmentBoundingBox
	AttachmentMesh
	AttachmentLinkedMesh
	AttachmentPath
	AttachmentPoint
	AttachmentClipping
)

var attachmentTypeNames = [...]string{"region", "boundingbox", "mesh", "linkedmesh", "path", "point", "clipping"}

func (t AttachmentType) String() string {
	if int(t) < len(attachmentTypeNames) {
		return attachmentTypeNames[t]
	}
	return fmt.Sprintf("AttachmentType(%d)", t)
}

// TextureRegion locates an image in an atlas page. U/V are normalized texture
// coordinates with v growing downward. Offsets and original size describe
// whitespace stripped when packing.
type TextureRegion struct {
	Page    int
	U, V    float32
	U2, V2  float32
	Rotate  bool
	OffsetX float32
	OffsetY float32

	Width, Height                 float32
	OriginalWidth, OriginalHeight float32
}

// Region corner order in offsets, UVs and world vertices.
const (
	regionBLX = iota
	regionBLY
	regionULX
	regionULY
	regionURX
	regionURY
	regionBRX
	regionBRY
)

// Attachment is anything a slot can show. Which fields are meaningful depends
// on Type:
//
//   - Region: Region, X, Y, Rotation, ScaleX, ScaleY, Width, Height, Color.
//   - BoundingBox, Clipping, Path, Mesh, LinkedMesh: the vertex fields Bones,
//     Vertices and WorldVerticesLength.
//   - Mesh, LinkedMesh: Region, RegionUVs, Triangles, HullLength, Color.
//   - Path: Closed, ConstantSpeed, Lengths.
//   - Clipping: EndSlot.
//   - Point: X, Y, Rotation.
type Attachment struct {
	Type AttachmentType
	Name string
	Path string

	Region *TextureRegion
	Color  Color

	X, Y, Rotation float32
	ScaleX, ScaleY float32
	Width, Height  float32
	offset         [8]float32
	uvs            []float32
	id             int

	// Bones is nil for unweighted vertices. Otherwise, for each vertex it
	// holds the bone count followed by that many skeleton bone indices, and
	// Vertices holds x, y, weight per bone influence.
	Bones               []int
	Vertices            []float32
	WorldVerticesLength int

	// DeformAttachment is the attachment whose deform timelines apply to this
	// one: itself, or the parent of a linked mesh that inherits deforms.
	DeformAttachment *Attachment

	RegionUVs  []float32
	Triangles  []uint16
	HullLength int
	ParentMesh *Attachment

	Closed        bool
	ConstantSpeed bool
	Lengths       []float32

	EndSlot *SlotData
}

func newAttachment(typ AttachmentType, name string) *Attachment {
	a := &Attachment{
		Type:   typ,
		Name:   name,
		Color:  ColorWhite,
		ScaleX: 1,
		ScaleY: 1,
		id:     int(nextAttachmentID.Add(1)),
	}
	a.DeformAttachment = a
	return a
}

// NewRegionAttachment returns a region attachment showing region, with its
// corner offsets computed. Changing the position, rotation, scale, size or
// region afterwards requires UpdateOffset before the attachment is shared.
func NewRegionAttachment(name string, region *TextureRegion) *Attachment {
	a := newAttachment(AttachmentRegion, name)
	a.Region = region
	a.uvs = make([]float32, 8)
	if region != nil {
		a.Width, a.Height = region.OriginalWidth, region.OriginalHeight
		a.SetUVs(region.U, region.V, region.U2, region.V2, region.Rotate)
	}
	a.UpdateOffset()
	return a
}

// NewMeshAttachment returns a mesh attachment textured by region.
func NewMeshAttachment(name string, region *TextureRegion) *Attachment {
	a := newAttachment(AttachmentMesh, name)
	a.Region = region
	return a
}

// NewBoundingBoxAttachment returns an empty bounding box polygon.
func NewBoundingBoxAttachment(name string) *Attachment {
	return newAttachment(AttachmentBoundingBox, name)
}

// NewClippingAttachment returns a clipping polygon that clips slots in draw
// order until endSlot, or to the end of the draw order when endSlot is nil.
func NewClippingAttachment(name string, endSlot *SlotData) *Attachment {
	a := newAttachment(AttachmentClipping, name)
	a.EndSlot = endSlot
	return a
}

// NewPathAttachment returns an empty path. Vertices hold, per curve, the
// incoming control point, the anchor and the outgoing control point.
func NewPathAttachment(name string) *Attachment {
	a := newAttachment(AttachmentPath, name)
	a.ConstantSpeed = true
	return a
}

// NewPointAttachment returns a point at x, y with rotation in degrees.
func NewPointAttachment(name string, x, y, rotation float32) *Attachment {
	a := newAttachment(AttachmentPoint, name)
	a.X, a.Y, a.Rotation = x, y, rotation
	return a
}

// ID is unique per attachment and used in deform timeline property ids.
func (a *Attachment) ID() int { return a.id }

// IsVertexAttachment reports whether the attachment is defined by vertices
// that can be weighted and deformed.
func (a *Attachment) IsVertexAttachment() bool {
	switch a.Type {
	case AttachmentBoundingBox, AttachmentMesh, AttachmentLinkedMesh, AttachmentPath, AttachmentClipping:
		return true
	}
	return false
}

// IsMesh reports whether the attachment is a mesh or linked mesh.
func (a *Attachment) IsMesh() bool {
	return a.Type == AttachmentMesh || a.Type == AttachmentLinkedMesh
}

// SetVertices sets unweighted local vertices.
func (a *Attachment) SetVertices(vertices []float32) {
	a.Bones = nil
	a.Vertices = vertices
	a.WorldVerticesLength = len(vertices)
}

// SetWeightedVertices sets weighted vertices for vertexCount vertices.
func (a *Attachment) SetWeightedVertices(bones []int, vertices []float32, vertexCount int) {
	a.Bones = bones
	a.Vertices = vertices
	a.WorldVerticesLength = vertexCount * 2
}

// UpdateOffset recomputes the region's corner offsets from its position,
// rotation, scale, size and the region's whitespace. World vertices only read
// the offsets, so attachments of a shared SkeletonData stay read-only while
// skeletons are posed.
func (a *Attachment) UpdateOffset() {
	r := a.Region
	if r == nil {
		return
	}
	regionScaleX := a.Width / r.OriginalWidth * a.ScaleX
	regionScaleY := a.Height / r.OriginalHeight * a.ScaleY
	localX := -a.Width/2*a.ScaleX + r.OffsetX*regionScaleX
	localY := -a.Height/2*a.ScaleY + r.OffsetY*regionScaleY
	localX2 := localX + r.Width*regionScaleX
	localY2 := localY + r.Height*regionScaleY

	cos, sin := CosDeg(a.Rotation), SinDeg(a.Rotation)
	localXCos, localXSin := localX*cos+a.X, localX*sin
	localYCos, localYSin := localY*cos+a.Y, localY*sin
	localX2Cos, localX2Sin := localX2*cos+a.X, localX2*sin
	localY2Cos, localY2Sin := localY2*cos+a.Y, localY2*sin

	o := &a.offset
	o[regionBLX] = localXCos - localYSin
	o[regionBLY] = localYCos + localXSin
	o[regionULX] = localXCos - localY2Sin
	o[regionULY] = localY2Cos + localXSin
	o[regionURX] = localX2Cos - localY2Sin
	o[regionURY] = localY2Cos + localX2Sin
	o[regionBRX] = localX2Cos - localYSin
	o[regionBRY] = localYCos + localX2Sin
}

// SetUVs sets the region's corner texture coordinates. rotate means the image
// is stored rotated 90 degrees in the page.
func (a *Attachment) SetUVs(u, v, u2, v2 float32, rotate bool) {
	if len(a.uvs) != 8 {
		a.uvs = make([]float32, 8)
	}
	uvs := a.uvs
	if rotate {
		uvs[regionBLX], uvs[regionBLY] = u2, v2
		uvs[regionULX], uvs[regionULY] = u, v2
		uvs[regionURX], uvs[regionURY] = u, v
		uvs[regionBRX], uvs[regionBRY] = u2, v
		return
	}
	uvs[regionBLX], uvs[regionBLY] = u, v2
	uvs[regionULX], uvs[regionULY] = u, v
	uvs[regionURX], uvs[regionURY] = u2, v
	uvs[regionBRX], uvs[regionBRY] = u2, v2
}

// UVs returns the texture coordinates of a region or mesh, matching the order
// of its world vertices.
func (a *Attachment) UVs() []float32 { return a.uvs }

// UpdateUVs computes mesh texture coordinates from RegionUVs and the region.
func (a *Attachment) UpdateUVs() {
	n := len(a.RegionUVs)
	if cap(a.uvs) < n {
		a.uvs = make([]float32, n)
	}
	a.uvs = a.uvs[:n]
	var u, v, width, height float32 = 0, 0, 1, 1
	rotate := false
	if r := a.Region; r != nil {
		u, v = r.U, r.V
		width, height = r.U2-r.U, r.V2-r.V
		rotate = r.Rotate
	}
	ruvs := a.RegionUVs
	if rotate {
		for i := 0; i < n; i += 2 {
			a.uvs[i] = u + ruvs[i+1]*width
			a.uvs[i+1] = v + height - ruvs[i]*height
		}
		return
	}
	for i := 0; i < n; i += 2 {
		a.uvs[i] = u + ruvs[i]*width
		a.uvs[i+1] = v + ruvs[i+1]*height
	}
}

// SetParentMesh makes the attachment share the parent's geometry.
func (a *Attachment) SetParentMesh(parent *Attachment) {
	a.ParentMesh = parent
	if parent == nil {
		return
	}
	a.Bones = parent.Bones
	a.Vertices = parent.Vertices
	a.WorldVerticesLength = parent.WorldVerticesLength
	a.RegionUVs = parent.RegionUVs
	a.Triangles = parent.Triangles
	a.HullLength = parent.HullLength
	a.Width, a.Height = parent.Width, parent.Height
}

// NewLinkedMesh returns a linked mesh sharing this mesh's geometry and
// deforms. The copy keeps its own region, so it can show another image.
func (a *Attachment) NewLinkedMesh() *Attachment {
	l := newAttachment(AttachmentLinkedMesh, a.Name)
	l.Region = a.Region
	l.Path = a.Path
	l.Color = a.Color
	l.DeformAttachment = a.DeformAttachment
	parent := a.ParentMesh
	if parent == nil {
		parent = a
	}
	l.SetParentMesh(parent)
	l.UpdateUVs()
	return l
}

// ComputeWorldVertices writes world positions for count floats of local
// vertices, starting at local float start, into out at offset with the given
// stride between vertices. Regions ignore start and count and always write
// their four corners.
func (a *Attachment) ComputeWorldVertices(slot *Slot, start, count int, out []float32, offset, stride int) {
	if a.Type == AttachmentRegion {
		a.computeRegionVertices(slot.Bone(), out, offset, stride)
		return
	}
	count = offset + (count>>1)*stride
	skeleton := slot.skeleton
	deform := slot.Deform
	vertices := a.Vertices
	bones := a.Bones
	if bones == nil {
		if len(deform) > 0 {
			vertices = deform
		}
		b := slot.Bone()
		x, y := b.WorldX, b.WorldY
		ba, bb, bc, bd := b.A, b.B, b.C, b.D
		for v, w := start, offset; w < count; v, w = v+2, w+stride {
			vx, vy := vertices[v], vertices[v+1]
			out[w] = vx*ba + vy*bb + x
			out[w+1] = vx*bc + vy*bd + y
		}
		return
	}

	v, skip := 0, 0
	for i := 0; i < start; i += 2 {
		n := bones[v]
		v += n + 1
		skip += n
	}
	skeletonBones := skeleton.Bones
	if len(deform) == 0 {
		for w, b := offset, skip*3; w < count; w += stride {
			var wx, wy float32
			n := bones[v]
			v++
			n += v
			for ; v < n; v, b = v+1, b+3 {
				bone := skeletonBones[bones[v]]
				vx, vy, weight := vertices[b], vertices[b+1], vertices[b+2]
				wx += (vx*bone.A + vy*bone.B + bone.WorldX) * weight
				wy += (vx*bone.C + vy*bone.D + bone.WorldY) * weight
			}
			out[w] = wx
			out[w+1] = wy
		}
		return
	}
	for w, b, f := offset, skip*3, skip<<1; w < count; w += stride {
		var wx, wy float32
		n := bones[v]
		v++
		n += v
		for ; v < n; v, b, f = v+1, b+3, f+2 {
			bone := skeletonBones[bones[v]]
			vx, vy, weight := vertices[b]+deform[f], vertices[b+1]+deform[f+1], vertices[b+2]
			wx += (vx*bone.A + vy*bone.B + bone.WorldX) * weight
			wy += (vx*bone.C + vy*bone.D + bone.WorldY) * weight
		}
		out[w] = wx
		out[w+1] = wy
	}
}

func (a *Attachment) computeRegionVertices(bone *Bone, out []float32, offset, stride int) {
	o := &a.offset
	x, y := bone.WorldX, bone.WorldY
	ba, bb, bc, bd := bone.A, bone.B, bone.C, bone.D
	for i := 0; i < 8; i += 2 {
		ox, oy := o[i], o[i+1]
		out[offset] = ox*ba + oy*bb + x
		out[offset+1] = ox*bc + oy*bd + y
		offset += stride
	}
}

// ComputeWorldPosition returns the world position of a point attachment.
func (a *Attachment) ComputeWorldPosition(bone *Bone) (x, y float32) {
	return bone.LocalToWorld(a.X, a.Y)
}

// ComputeWorldRotation returns the world rotation of a point attachment in
// degrees.
func (a *Attachment) ComputeWorldRotation(bone *Bone) float32 {
	cos, sin := CosDeg(a.Rotation), SinDeg(a.Rotation)
	x := cos*bone.A + sin*bone.B
	y := cos*bone.C + sin*bone.D
	return Atan2(y, x) * RadDeg
}
