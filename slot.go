package marionette

// SlotData is the setup pose of a slot.
type SlotData struct {
	Index    int
	Name     string
	BoneData *BoneData
	Color    Color

	// DarkColor is the setup dark tint for two color tinting, or nil when the
	// slot does not use it.
	DarkColor *Color

	AttachmentName string
	BlendMode      BlendMode
}

// NewSlotData returns slot data with a white setup color.
func NewSlotData(index int, name string, bone *BoneData) *SlotData {
	return &SlotData{Index: index, Name: name, BoneData: bone, Color: ColorWhite}
}

func (d *SlotData) darkOrBlack() Color {
	if d.DarkColor == nil {
		return Color{0, 0, 0, 1}
	}
	return *d.DarkColor
}

// Slot holds the current color and attachment of a SlotData on one skeleton.
type Slot struct {
	Data     *SlotData
	skeleton *Skeleton
	bone     int

	Color     Color
	DarkColor Color

	attachment *Attachment

	// Deform holds vertex offsets (weighted meshes) or positions (unweighted
	// meshes) written by deform timelines. Empty means the setup vertices.
	Deform []float32
}

func newSlot(data *SlotData, s *Skeleton) *Slot {
	sl := &Slot{Data: data, skeleton: s, bone: data.BoneData.Index}
	sl.SetToSetupPose()
	return sl
}

// Bone returns the bone the slot is attached to.
func (s *Slot) Bone() *Bone { return s.skeleton.Bones[s.bone] }

// Skeleton returns the skeleton that owns the slot.
func (s *Slot) Skeleton() *Skeleton { return s.skeleton }

// Attachment returns the current attachment, or nil.
func (s *Slot) Attachment() *Attachment { return s.attachment }

// SetAttachment swaps the current attachment. The deform is kept only when
// both attachments share the same deform source.
func (s *Slot) SetAttachment(a *Attachment) {
	if s.attachment == a {
		return
	}
	if a == nil || s.attachment == nil || !a.IsVertexAttachment() || !s.attachment.IsVertexAttachment() ||
		a.DeformAttachment != s.attachment.DeformAttachment {
		s.Deform = s.Deform[:0]
	}
	s.attachment = a
}

// SetToSetupPose restores the setup colors and attachment.
func (s *Slot) SetToSetupPose() {
	s.Color = s.Data.Color
	s.DarkColor = s.Data.darkOrBlack()
	if s.Data.AttachmentName == "" {
		s.SetAttachment(nil)
		return
	}
	s.attachment = nil
	s.SetAttachment(s.skeleton.Attachment(s.Data.Index, s.Data.AttachmentName))
}

// resizeDeform sets the deform length to n, zeroing any new entries, and
// returns it.
func (s *Slot) resizeDeform(n int) []float32 {
	old := len(s.Deform)
	if cap(s.Deform) < n {
		grown := make([]float32, n)
		copy(grown, s.Deform)
		s.Deform = grown
		return grown
	}
	s.Deform = s.Deform[:n]
	for i := old; i < n; i++ {
		s.Deform[i] = 0
	}
	return s.Deform
}
