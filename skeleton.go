package marionette

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/chewxy/math32"
)

// --- Update cache ---

type cacheKind uint8

const (
	cacheBone cacheKind = iota
	cacheIk
	cacheTransform
	cachePath
	cachePhysics
	cacheSpring
)

// cacheEntry is one step of UpdateWorldTransform: a bone world transform or a
// constraint update, addressed by index into the skeleton's slices.
type cacheEntry struct {
	kind  cacheKind
	index int
}

// Skeleton is one posed instance of a SkeletonData. A Skeleton is not safe
// for concurrent use; constraints and the update cache reuse their buffers
// between frames.
type Skeleton struct {
	Data *SkeletonData

	Bones []*Bone
	Slots []*Slot

	// DrawOrder is a permutation of Slots, back to front.
	DrawOrder []*Slot

	IkConstraints        []*IkConstraint
	TransformConstraints []*TransformConstraint
	PathConstraints      []*PathConstraint
	PhysicsConstraints   []*PhysicsConstraint
	SpringConstraints    []*SpringConstraint

	// Color tints every slot.
	Color Color

	X, Y           float32
	ScaleX, ScaleY float32
	FlipX, FlipY   bool

	// YDown flips the vertical axis for renderers whose y grows downward.
	YDown bool

	// Time is the skeleton clock used by physics constraints. See Update.
	Time float32

	skin  *Skin
	cache []cacheEntry

	boundsBuf []float32
}

// scaleX returns ScaleX with FlipX applied.
func (s *Skeleton) scaleX() float32 {
	if s.FlipX {
		return -s.ScaleX
	}
	return s.ScaleX
}

// scaleY returns ScaleY with FlipY and YDown applied.
func (s *Skeleton) scaleY() float32 {
	sy := s.ScaleY
	if s.FlipY {
		sy = -sy
	}
	if s.YDown {
		sy = -sy
	}
	return sy
}

// NewSkeleton builds a skeleton in the setup pose. The data is validated
// first: bones must be indexed in order with parents preceding children, and
// every slot and constraint reference must point into data. Any violation
// returns an error wrapping ErrInvalidArgument and no skeleton.
func NewSkeleton(data *SkeletonData) (*Skeleton, error) {
	if err := validateSkeletonData(data); err != nil {
		return nil, fmt.Errorf("new skeleton: %w", err)
	}

	s := &Skeleton{
		Data:   data,
		Color:  ColorWhite,
		ScaleX: 1,
		ScaleY: 1,
	}

	s.Bones = make([]*Bone, len(data.Bones))
	for i, bd := range data.Bones {
		parent := -1
		if bd.Parent != nil {
			parent = bd.Parent.Index
			p := s.Bones[parent]
			p.children = append(p.children, i)
		}
		s.Bones[i] = newBone(bd, s, parent)
	}

	s.Slots = make([]*Slot, len(data.Slots))
	s.DrawOrder = make([]*Slot, len(data.Slots))
	for i, sd := range data.Slots {
		sl := newSlot(sd, s)
		s.Slots[i] = sl
		s.DrawOrder[i] = sl
	}

	s.IkConstraints = make([]*IkConstraint, len(data.IkConstraints))
	for i, d := range data.IkConstraints {
		s.IkConstraints[i] = newIkConstraint(d, s)
	}
	s.TransformConstraints = make([]*TransformConstraint, len(data.TransformConstraints))
	for i, d := range data.TransformConstraints {
		s.TransformConstraints[i] = newTransformConstraint(d, s)
	}
	s.PathConstraints = make([]*PathConstraint, len(data.PathConstraints))
	for i, d := range data.PathConstraints {
		s.PathConstraints[i] = newPathConstraint(d, s)
	}
	s.PhysicsConstraints = make([]*PhysicsConstraint, len(data.PhysicsConstraints))
	for i, d := range data.PhysicsConstraints {
		s.PhysicsConstraints[i] = newPhysicsConstraint(d, s)
	}
	s.SpringConstraints = make([]*SpringConstraint, len(data.SpringConstraints))
	for i, d := range data.SpringConstraints {
		s.SpringConstraints[i] = newSpringConstraint(d, s)
	}

	if debugEnabled() {
		debugCheckBoneDepth(s)
		debugCheckConstraintOrder(data)
	}

	s.UpdateCache()
	Logger().Debug("skeleton created",
		"name", data.Name,
		"bones", len(s.Bones),
		"slots", len(s.Slots),
		"constraints", len(s.IkConstraints)+len(s.TransformConstraints)+len(s.PathConstraints)+
			len(s.PhysicsConstraints)+len(s.SpringConstraints),
	)
	return s, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

func validBone(d *SkeletonData, b *BoneData) bool {
	return b != nil && b.Index >= 0 && b.Index < len(d.Bones) && d.Bones[b.Index] == b
}

func validBones(d *SkeletonData, kind, name string, bones []*BoneData) error {
	for i, b := range bones {
		if !validBone(d, b) {
			return invalid("%s constraint %q: bone %d", kind, name, i)
		}
	}
	return nil
}

func validateSkeletonData(d *SkeletonData) error {
	if d == nil {
		return invalid("nil skeleton data")
	}
	for i, b := range d.Bones {
		if b == nil {
			return invalid("bone %d: nil", i)
		}
		if b.Index != i {
			return invalid("bone %q: index %d at position %d", b.Name, b.Index, i)
		}
		if b.Parent == nil {
			continue
		}
		if !validBone(d, b.Parent) || b.Parent.Index >= i {
			return invalid("bone %q: parent must precede it", b.Name)
		}
	}
	for i, sd := range d.Slots {
		if sd == nil {
			return invalid("slot %d: nil", i)
		}
		if sd.Index != i {
			return invalid("slot %q: index %d at position %d", sd.Name, sd.Index, i)
		}
		if !validBone(d, sd.BoneData) {
			return invalid("slot %q: bone", sd.Name)
		}
	}
	for _, c := range d.IkConstraints {
		if c == nil {
			return invalid("nil ik constraint")
		}
		if !validBone(d, c.Target) {
			return invalid("ik constraint %q: target", c.Name)
		}
		if n := len(c.Bones); n < 1 || n > 2 {
			return invalid("ik constraint %q: %d bones", c.Name, n)
		}
		if err := validBones(d, "ik", c.Name, c.Bones); err != nil {
			return err
		}
	}
	for _, c := range d.TransformConstraints {
		if c == nil {
			return invalid("nil transform constraint")
		}
		if !validBone(d, c.Target) {
			return invalid("transform constraint %q: target", c.Name)
		}
		if err := validBones(d, "transform", c.Name, c.Bones); err != nil {
			return err
		}
	}
	for _, c := range d.PathConstraints {
		if c == nil {
			return invalid("nil path constraint")
		}
		if c.Target == nil || c.Target.Index < 0 || c.Target.Index >= len(d.Slots) || d.Slots[c.Target.Index] != c.Target {
			return invalid("path constraint %q: target slot", c.Name)
		}
		if err := validBones(d, "path", c.Name, c.Bones); err != nil {
			return err
		}
	}
	for _, c := range d.PhysicsConstraints {
		if c == nil {
			return invalid("nil physics constraint")
		}
		if !validBone(d, c.Bone) {
			return invalid("physics constraint %q: bone", c.Name)
		}
		if c.Step <= 0 {
			return invalid("physics constraint %q: step %v", c.Name, c.Step)
		}
	}
	for _, c := range d.SpringConstraints {
		if c == nil {
			return invalid("nil spring constraint")
		}
		if err := validBones(d, "spring", c.Name, c.Bones); err != nil {
			return err
		}
	}
	return nil
}

// UpdateCache rebuilds the order in which bones and constraints are updated.
// It must be called after bones or constraints are added or removed, and is
// called by NewSkeleton and SetSkin.
//
// Constraints run in ascending Order. Every bone a constraint reads is placed
// before it; bones it writes, and their descendants, are placed after it.
func (s *Skeleton) UpdateCache() {
	s.cache = s.cache[:0]

	for _, b := range s.Bones {
		b.sorted = b.Data.SkinRequired
		b.active = !b.sorted
	}
	if s.skin != nil {
		for _, bd := range s.skin.Bones {
			for b := s.Bones[bd.Index]; b != nil; b = b.Parent() {
				b.sorted = false
				b.active = true
			}
		}
	}

	type step struct {
		order int
		kind  cacheKind
		index int
	}
	steps := make([]step, 0, len(s.IkConstraints)+len(s.TransformConstraints)+
		len(s.PathConstraints)+len(s.PhysicsConstraints)+len(s.SpringConstraints))
	for i, c := range s.IkConstraints {
		steps = append(steps, step{c.Data.Order, cacheIk, i})
	}
	for i, c := range s.TransformConstraints {
		steps = append(steps, step{c.Data.Order, cacheTransform, i})
	}
	for i, c := range s.PathConstraints {
		steps = append(steps, step{c.Data.Order, cachePath, i})
	}
	for i, c := range s.PhysicsConstraints {
		steps = append(steps, step{c.Data.Order, cachePhysics, i})
	}
	for i, c := range s.SpringConstraints {
		steps = append(steps, step{c.Data.Order, cacheSpring, i})
	}
	slices.SortStableFunc(steps, func(a, b step) int { return cmp.Compare(a.order, b.order) })

	for _, st := range steps {
		switch st.kind {
		case cacheIk:
			s.sortIk(st.index)
		case cacheTransform:
			s.sortTransform(st.index)
		case cachePath:
			s.sortPath(st.index)
		case cachePhysics:
			s.sortPhysics(st.index)
		case cacheSpring:
			s.sortSpring(st.index)
		}
	}
	for _, b := range s.Bones {
		s.sortBone(b)
	}

	Logger().Debug("update cache rebuilt", "skeleton", s.Data.Name, "entries", len(s.cache))
}

func (s *Skeleton) constraintActive(c ConstraintData) bool {
	if !c.base().SkinRequired {
		return true
	}
	return s.skin != nil && s.skin.hasConstraint(c)
}

func (s *Skeleton) sortIk(i int) {
	c := s.IkConstraints[i]
	c.active = c.Target.active && s.constraintActive(c.Data)
	if !c.active {
		return
	}
	s.sortBone(c.Target)
	parent := c.Bones[0]
	s.sortBone(parent)
	if len(c.Bones) == 1 {
		s.cache = append(s.cache, cacheEntry{cacheIk, i})
		s.sortReset(parent.children)
		return
	}
	child := c.Bones[len(c.Bones)-1]
	s.sortBone(child)
	s.cache = append(s.cache, cacheEntry{cacheIk, i})
	s.sortReset(parent.children)
	child.sorted = true
}

func (s *Skeleton) sortTransform(i int) {
	c := s.TransformConstraints[i]
	c.active = c.Target.active && s.constraintActive(c.Data)
	if !c.active {
		return
	}
	s.sortBone(c.Target)
	if c.Data.Local {
		for _, b := range c.Bones {
			s.sortBone(b.Parent())
			s.sortBone(b)
		}
	} else {
		for _, b := range c.Bones {
			s.sortBone(b)
		}
	}
	s.cache = append(s.cache, cacheEntry{cacheTransform, i})
	s.sortResetAll(c.Bones)
}

func (s *Skeleton) sortPath(i int) {
	c := s.PathConstraints[i]
	slot := c.Target
	slotBone := slot.Bone()
	c.active = slotBone.active && s.constraintActive(c.Data)
	if !c.active {
		return
	}
	slotIndex := slot.Data.Index
	if s.skin != nil {
		s.sortPathSkin(s.skin, slotIndex, slotBone)
	}
	if d := s.Data.DefaultSkin; d != nil && d != s.skin {
		s.sortPathSkin(d, slotIndex, slotBone)
	}
	s.sortPathAttachment(slot.attachment, slotBone)
	for _, b := range c.Bones {
		s.sortBone(b)
	}
	s.cache = append(s.cache, cacheEntry{cachePath, i})
	s.sortResetAll(c.Bones)
}

func (s *Skeleton) sortPathSkin(skin *Skin, slotIndex int, slotBone *Bone) {
	for _, e := range skin.entries {
		if e.SlotIndex == slotIndex {
			s.sortPathAttachment(e.Attachment, slotBone)
		}
	}
}

// sortPathAttachment sorts the bones that deform a path attachment.
func (s *Skeleton) sortPathAttachment(a *Attachment, slotBone *Bone) {
	if a == nil || a.Type != AttachmentPath {
		return
	}
	if a.Bones == nil {
		s.sortBone(slotBone)
		return
	}
	for i := 0; i < len(a.Bones); {
		n := a.Bones[i]
		i++
		n += i
		for ; i < n; i++ {
			s.sortBone(s.Bones[a.Bones[i]])
		}
	}
}

func (s *Skeleton) sortPhysics(i int) {
	c := s.PhysicsConstraints[i]
	c.active = c.Bone.active && s.constraintActive(c.Data)
	if !c.active {
		return
	}
	s.sortBone(c.Bone)
	s.cache = append(s.cache, cacheEntry{cachePhysics, i})
	s.sortReset(c.Bone.children)
	c.Bone.sorted = true
}

func (s *Skeleton) sortSpring(i int) {
	c := s.SpringConstraints[i]
	c.active = s.constraintActive(c.Data)
	for _, b := range c.Bones {
		if !b.active {
			c.active = false
		}
	}
	if !c.active {
		return
	}
	for _, b := range c.Bones {
		s.sortBone(b)
	}
	s.cache = append(s.cache, cacheEntry{cacheSpring, i})
	s.sortResetAll(c.Bones)
}

// sortResetAll unsorts the children of every constrained bone and marks the
// constrained bones themselves as sorted, since the constraint writes them.
func (s *Skeleton) sortResetAll(bones []*Bone) {
	for _, b := range bones {
		s.sortReset(b.children)
	}
	for _, b := range bones {
		b.sorted = true
	}
}

func (s *Skeleton) sortBone(b *Bone) {
	if b == nil || b.sorted {
		return
	}
	s.sortBone(b.Parent())
	b.sorted = true
	s.cache = append(s.cache, cacheEntry{cacheBone, b.index})
}

func (s *Skeleton) sortReset(children []int) {
	for _, ci := range children {
		c := s.Bones[ci]
		if !c.active {
			continue
		}
		if c.sorted {
			s.sortReset(c.children)
		}
		c.sorted = false
	}
}

// --- World transform ---

// UpdateWorldTransform computes the world transform of every active bone and
// applies every active constraint, in cache order. physics selects how
// physics constraints advance.
func (s *Skeleton) UpdateWorldTransform(physics Physics) {
	for _, b := range s.Bones {
		b.resetApplied()
	}
	s.runCache(physics, -1)
}

// UpdateWorldTransformWith computes the world transform as if the root bone
// were a child of parent, which may belong to another skeleton. The
// skeleton's X and Y are ignored; its scale and flips are applied.
func (s *Skeleton) UpdateWorldTransformWith(parent *Bone, physics Physics) {
	for _, b := range s.Bones {
		b.resetApplied()
	}
	if len(s.Bones) == 0 {
		return
	}
	root := s.Bones[0]
	pa, pb, pc, pd := parent.A, parent.B, parent.C, parent.D
	root.WorldX = pa*root.X + pb*root.Y + parent.WorldX
	root.WorldY = pc*root.X + pd*root.Y + parent.WorldY

	rx := root.Rotation + root.ShearX
	ry := root.Rotation + 90 + root.ShearY
	la := CosDeg(rx) * root.ScaleX
	lb := CosDeg(ry) * root.ScaleY
	lc := SinDeg(rx) * root.ScaleX
	ld := SinDeg(ry) * root.ScaleY
	sx, sy := s.scaleX(), s.scaleY()
	root.A = (pa*la + pb*lc) * sx
	root.B = (pa*lb + pb*ld) * sx
	root.C = (pc*la + pd*lc) * sy
	root.D = (pc*lb + pd*ld) * sy

	s.runCache(physics, root.index)
}

func (s *Skeleton) runCache(physics Physics, skipBone int) {
	for _, e := range s.cache {
		switch e.kind {
		case cacheBone:
			if e.index != skipBone {
				s.Bones[e.index].update()
			}
		case cacheIk:
			s.IkConstraints[e.index].Update()
		case cacheTransform:
			s.TransformConstraints[e.index].Update()
		case cachePath:
			s.PathConstraints[e.index].Update()
		case cachePhysics:
			s.PhysicsConstraints[e.index].Update(physics)
		case cacheSpring:
			s.SpringConstraints[e.index].Update()
		}
	}
}

// --- Setup pose ---

// SetToSetupPose restores bones, constraints, slots and draw order to the
// setup pose.
func (s *Skeleton) SetToSetupPose() {
	s.SetBonesToSetupPose()
	s.SetSlotsToSetupPose()
}

// SetBonesToSetupPose restores bones and constraint mixes.
func (s *Skeleton) SetBonesToSetupPose() {
	for _, b := range s.Bones {
		b.SetToSetupPose()
	}
	for _, c := range s.IkConstraints {
		c.SetToSetupPose()
	}
	for _, c := range s.TransformConstraints {
		c.SetToSetupPose()
	}
	for _, c := range s.PathConstraints {
		c.SetToSetupPose()
	}
	for _, c := range s.PhysicsConstraints {
		c.SetToSetupPose()
	}
	for _, c := range s.SpringConstraints {
		c.SetToSetupPose()
	}
}

// SetSlotsToSetupPose restores slot colors, attachments and the draw order.
func (s *Skeleton) SetSlotsToSetupPose() {
	copy(s.DrawOrder, s.Slots)
	for _, sl := range s.Slots {
		sl.SetToSetupPose()
	}
}

// --- Skins and attachments ---

// Skin returns the current skin, or nil.
func (s *Skeleton) Skin() *Skin { return s.skin }

// SetSkin changes the skin and rebuilds the update cache. Slots showing an
// attachment of the old skin switch to the new skin's attachment of the same
// name. Without an old skin, slots showing their setup attachment switch to
// the new skin's attachment of that name. A nil skin keeps the current
// attachments.
func (s *Skeleton) SetSkin(skin *Skin) {
	if skin == s.skin {
		return
	}
	if skin != nil {
		if s.skin != nil {
			skin.attachAll(s, s.skin)
		} else {
			for i, sl := range s.Slots {
				name := sl.Data.AttachmentName
				if name == "" {
					continue
				}
				if a := skin.Attachment(i, name); a != nil {
					sl.SetAttachment(a)
				}
			}
		}
	}
	s.skin = skin
	name := ""
	if skin != nil {
		name = skin.Name
	}
	Logger().Debug("skin set", "skeleton", s.Data.Name, "skin", name)
	s.UpdateCache()
}

// SetSkinByName sets the skin with the given name.
func (s *Skeleton) SetSkinByName(name string) error {
	skin := s.Data.FindSkin(name)
	if skin == nil {
		return fmt.Errorf("set skin %q: %w", name, ErrNotFound)
	}
	s.SetSkin(skin)
	return nil
}

// Attachment looks the attachment up in the current skin, then in the
// default skin. It returns nil when neither has it.
func (s *Skeleton) Attachment(slotIndex int, name string) *Attachment {
	if s.skin != nil {
		if a := s.skin.Attachment(slotIndex, name); a != nil {
			return a
		}
	}
	if d := s.Data.DefaultSkin; d != nil {
		return d.Attachment(slotIndex, name)
	}
	return nil
}

// AttachmentByName is Attachment with the slot given by name.
func (s *Skeleton) AttachmentByName(slotName, name string) *Attachment {
	sd := s.Data.FindSlot(slotName)
	if sd == nil {
		return nil
	}
	return s.Attachment(sd.Index, name)
}

// SetAttachment shows the named attachment on the named slot. An empty
// attachment name clears the slot.
func (s *Skeleton) SetAttachment(slotName, name string) error {
	sl := s.FindSlot(slotName)
	if sl == nil {
		return fmt.Errorf("set attachment: slot %q: %w", slotName, ErrNotFound)
	}
	if name == "" {
		sl.SetAttachment(nil)
		return nil
	}
	a := s.Attachment(sl.Data.Index, name)
	if a == nil {
		return fmt.Errorf("set attachment: slot %q: attachment %q: %w", slotName, name, ErrNotFound)
	}
	sl.SetAttachment(a)
	return nil
}

// --- Lookup ---

// RootBone returns the first bone, or nil for an empty skeleton.
func (s *Skeleton) RootBone() *Bone {
	if len(s.Bones) == 0 {
		return nil
	}
	return s.Bones[0]
}

// FindBone returns the bone named name, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	if bd := s.Data.FindBone(name); bd != nil {
		return s.Bones[bd.Index]
	}
	return nil
}

// FindSlot returns the slot named name, or nil.
func (s *Skeleton) FindSlot(name string) *Slot {
	if sd := s.Data.FindSlot(name); sd != nil {
		return s.Slots[sd.Index]
	}
	return nil
}

// FindIkConstraint returns the IK constraint named name, or nil.
func (s *Skeleton) FindIkConstraint(name string) *IkConstraint {
	for _, c := range s.IkConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

// FindTransformConstraint returns the transform constraint named name, or nil.
func (s *Skeleton) FindTransformConstraint(name string) *TransformConstraint {
	for _, c := range s.TransformConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

// FindPathConstraint returns the path constraint named name, or nil.
func (s *Skeleton) FindPathConstraint(name string) *PathConstraint {
	for _, c := range s.PathConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

// FindPhysicsConstraint returns the physics constraint named name, or nil.
func (s *Skeleton) FindPhysicsConstraint(name string) *PhysicsConstraint {
	for _, c := range s.PhysicsConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

// --- Time and physics ---

// Update advances the skeleton clock by delta seconds.
func (s *Skeleton) Update(delta float32) {
	s.Time += delta
}

// PhysicsTranslate shifts every physics constraint's reference so moving the
// skeleton by x, y does not excite the simulation. Pass the move itself, not
// its negation.
func (s *Skeleton) PhysicsTranslate(x, y float32) {
	for _, c := range s.PhysicsConstraints {
		c.Translate(x, y)
	}
}

// PhysicsRotate rotates every physics constraint's reference around x, y.
func (s *Skeleton) PhysicsRotate(x, y, degrees float32) {
	for _, c := range s.PhysicsConstraints {
		c.Rotate(x, y, degrees)
	}
}

// Bounds returns the axis-aligned box around every region and mesh
// attachment of active bones, from the last world transform. An empty
// skeleton yields a zero box.
func (s *Skeleton) Bounds() (x, y, width, height float32) {
	minX, minY := float32(math32.MaxFloat32), float32(math32.MaxFloat32)
	maxX, maxY := float32(-math32.MaxFloat32), float32(-math32.MaxFloat32)
	found := false
	for _, sl := range s.DrawOrder {
		if !sl.Bone().active {
			continue
		}
		a := sl.attachment
		if a == nil {
			continue
		}
		var n int
		switch a.Type {
		case AttachmentRegion:
			n = 8
		case AttachmentMesh, AttachmentLinkedMesh:
			n = a.WorldVerticesLength
		default:
			continue
		}
		s.boundsBuf = growFloats(s.boundsBuf, n)
		a.ComputeWorldVertices(sl, 0, n, s.boundsBuf, 0, 2)
		for i := 0; i < n; i += 2 {
			vx, vy := s.boundsBuf[i], s.boundsBuf[i+1]
			minX, maxX = math32.Min(minX, vx), math32.Max(maxX, vx)
			minY, maxY = math32.Min(minY, vy), math32.Max(maxY, vy)
			found = true
		}
	}
	if !found {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX - minX, maxY - minY
}
