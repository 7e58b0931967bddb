package marionette

// SkinEntry is one attachment stored in a skin.
type SkinEntry struct {
	SlotIndex  int
	Name       string
	Attachment *Attachment
}

type skinKey struct {
	slot int
	name string
}

// Skin maps (slot index, attachment name) to attachments. Bones and
// constraints that require a skin are active only while a skin listing them
// is set.
type Skin struct {
	Name        string
	Bones       []*BoneData
	Constraints []ConstraintData

	entries []SkinEntry
	index   map[skinKey]int
}

// NewSkin returns an empty skin.
func NewSkin(name string) *Skin {
	return &Skin{Name: name, index: make(map[skinKey]int)}
}

// SetAttachment stores a under the slot and name, replacing any previous
// attachment.
func (s *Skin) SetAttachment(slotIndex int, name string, a *Attachment) {
	k := skinKey{slotIndex, name}
	if i, ok := s.index[k]; ok {
		s.entries[i].Attachment = a
		return
	}
	s.index[k] = len(s.entries)
	s.entries = append(s.entries, SkinEntry{SlotIndex: slotIndex, Name: name, Attachment: a})
}

// Attachment returns the attachment stored under the slot and name, or nil.
func (s *Skin) Attachment(slotIndex int, name string) *Attachment {
	if i, ok := s.index[skinKey{slotIndex, name}]; ok {
		return s.entries[i].Attachment
	}
	return nil
}

// RemoveAttachment removes the attachment stored under the slot and name.
func (s *Skin) RemoveAttachment(slotIndex int, name string) {
	k := skinKey{slotIndex, name}
	i, ok := s.index[k]
	if !ok {
		return
	}
	delete(s.index, k)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	for j := i; j < len(s.entries); j++ {
		e := s.entries[j]
		s.index[skinKey{e.SlotIndex, e.Name}] = j
	}
}

// Entries returns every attachment in insertion order. The slice must not be
// modified.
func (s *Skin) Entries() []SkinEntry { return s.entries }

// hasConstraint reports whether the skin lists c.
func (s *Skin) hasConstraint(c ConstraintData) bool {
	for _, sc := range s.Constraints {
		if sc == c {
			return true
		}
	}
	return false
}

// attachAll replaces attachments from old with this skin's attachments of the
// same name, for slots currently showing old's attachment.
func (s *Skin) attachAll(sk *Skeleton, old *Skin) {
	for _, e := range old.entries {
		slot := sk.Slots[e.SlotIndex]
		if slot.attachment != e.Attachment {
			continue
		}
		if a := s.Attachment(e.SlotIndex, e.Name); a != nil {
			slot.SetAttachment(a)
		}
	}
}
