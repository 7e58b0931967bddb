package marionette

import (
	"fmt"
	"sync/atomic"
)

// TimelineType identifies which property a Timeline keys and how its frame
// tuples are laid out.
type TimelineType uint8

const (
	TimelineRotate                 TimelineType = iota // [time, degrees]
	TimelineTranslate                                  // [time, x, y]
	TimelineScale                                      // [time, x, y]
	TimelineShear                                      // [time, x, y]
	TimelineAttachment                                 // [time] + attachment name
	TimelineColor                                      // [time, r, g, b, a]
	TimelineDeform                                     // [time] + vertex offsets
	TimelineEvent                                      // [time] + event
	TimelineDrawOrder                                  // [time] + slot permutation
	TimelineIkConstraint                               // [time, mix, softness, bend, compress, stretch]
	TimelineTransformConstraint                        // [time, rotate, translate, scale, shear]
	TimelinePathConstraintPosition                     // [time, position]
	TimelinePathConstraintSpacing                      // [time, spacing]
	TimelinePathConstraintMix                          // [time, rotate, translate]
	TimelineTwoColor                                   // [time, r, g, b, a, r2, g2, b2]
	TimelinePhysicsConstraint                          // [time, value]
	TimelinePhysicsConstraintReset                     // [time]
	TimelineSpringConstraint                           // [time, mix, friction, gravity, wind, stiffness, damping]
)

var timelineTypeNames = [...]string{
	"rotate", "translate", "scale", "shear", "attachment", "color", "deform",
	"event", "drawOrder", "ikConstraint", "transformConstraint",
	"pathConstraintPosition", "pathConstraintSpacing", "pathConstraintMix",
	"twoColor", "physicsConstraint", "physicsConstraintReset", "springConstraint",
}

func (t TimelineType) String() string {
	if int(t) < len(timelineTypeNames) {
		return timelineTypeNames[t]
	}
	return fmt.Sprintf("TimelineType(%d)", t)
}

// stride is the number of floats per key: the time plus the keyed values.
func (t TimelineType) stride() int {
	switch t {
	case TimelineRotate, TimelinePathConstraintPosition, TimelinePathConstraintSpacing, TimelinePhysicsConstraint:
		return 2
	case TimelineTranslate, TimelineScale, TimelineShear, TimelinePathConstraintMix:
		return 3
	case TimelineColor, TimelineTransformConstraint:
		return 5
	case TimelineIkConstraint:
		return 6
	case TimelineSpringConstraint:
		return 7
	case TimelineTwoColor:
		return 8
	}
	return 1
}

// curved reports whether the type interpolates between keys.
func (t TimelineType) curved() bool {
	switch t {
	case TimelineAttachment, TimelineEvent, TimelineDrawOrder, TimelinePhysicsConstraintReset:
		return false
	}
	return true
}

// maxValues is the largest number of values in one key tuple.
const maxValues = 7

// PhysicsProperty selects the physics constraint value keyed by a
// TimelinePhysicsConstraint.
type PhysicsProperty uint8

const (
	PhysicsInertia PhysicsProperty = iota
	PhysicsStrength
	PhysicsDamping
	PhysicsMass
	PhysicsWind
	PhysicsGravity
	PhysicsMix
)

var nextAttachmentID atomic.Int32

// Timeline keys one property of a bone, slot or constraint over time. Frames
// are stored flat as repeating [time, value...] tuples so lookups can binary
// search a single slice.
//
// Create timelines with NewTimeline (or the typed constructors), fill every
// key with the Set*Frame methods, then hand them to NewAnimation.
type Timeline struct {
	Type TimelineType

	// Index is the bone, slot or constraint the timeline writes. Physics
	// timelines use -1 to address every physics constraint whose data marks
	// the property as global.
	Index int

	// Property is the value written by TimelinePhysicsConstraint.
	Property PhysicsProperty

	// Attachment is the vertex attachment a TimelineDeform applies to.
	Attachment *Attachment

	Curves

	frames          []float32
	attachmentNames []string
	vertices        [][]float32
	drawOrders      [][]int
	events          []*Event
}

// NewTimeline allocates a timeline of the given type with frameCount keys
// targeting index. It panics if frameCount is not positive.
func NewTimeline(typ TimelineType, frameCount, index int) *Timeline {
	if frameCount <= 0 {
		panic(fmt.Sprintf("marionette: %s timeline frame count must be > 0, got %d", typ, frameCount))
	}
	t := &Timeline{
		Type:   typ,
		Index:  index,
		frames: make([]float32, frameCount*typ.stride()),
	}
	if typ.curved() {
		t.Curves = newCurves(frameCount)
	}
	switch typ {
	case TimelineAttachment:
		t.attachmentNames = make([]string, frameCount)
	case TimelineDeform:
		t.vertices = make([][]float32, frameCount)
	case TimelineDrawOrder:
		t.drawOrders = make([][]int, frameCount)
	case TimelineEvent:
		t.events = make([]*Event, frameCount)
	}
	return t
}

// NewDeformTimeline returns a deform timeline for attachment on slotIndex.
func NewDeformTimeline(frameCount, slotIndex int, attachment *Attachment) *Timeline {
	t := NewTimeline(TimelineDeform, frameCount, slotIndex)
	t.Attachment = attachment
	return t
}

// NewPhysicsTimeline returns a timeline keying prop on the physics constraint
// at constraintIndex, or on every global physics constraint when it is -1.
func NewPhysicsTimeline(frameCount, constraintIndex int, prop PhysicsProperty) *Timeline {
	t := NewTimeline(TimelinePhysicsConstraint, frameCount, constraintIndex)
	t.Property = prop
	return t
}

// FrameCount returns the number of keys.
func (t *Timeline) FrameCount() int { return len(t.frames) / t.Type.stride() }

// Frames returns the flat key tuples. The slice must not be modified.
func (t *Timeline) Frames() []float32 { return t.frames }

// Duration returns the time of the last key.
func (t *Timeline) Duration() float32 { return t.frames[len(t.frames)-t.Type.stride()] }

// PropertyID identifies the property written by the timeline. Timelines with
// equal ids compete for the same value when animations are mixed.
func (t *Timeline) PropertyID() int {
	switch t.Type {
	case TimelineDeform:
		id := 0
		if t.Attachment != nil {
			id = t.Attachment.ID()
		}
		return int(t.Type)<<24 + id + t.Index
	case TimelinePhysicsConstraint:
		return int(t.Type)<<24 | int(t.Property)<<16 | (t.Index + 1)
	case TimelineEvent, TimelineDrawOrder:
		return int(t.Type) << 24
	}
	return int(t.Type)<<24 + t.Index
}

// SetFrame sets the time and values of a key. The number of values must match
// the type: one per value listed in the TimelineType documentation. Bend
// direction, compress and stretch are passed as 1/-1 and 1/0 respectively.
func (t *Timeline) SetFrame(frame int, time float32, values ...float32) {
	stride := t.Type.stride()
	if len(values) != stride-1 {
		panic(fmt.Sprintf("marionette: %s timeline expects %d values per frame, got %d", t.Type, stride-1, len(values)))
	}
	i := frame * stride
	t.frames[i] = time
	copy(t.frames[i+1:i+stride], values)
}

// SetIkFrame sets an IK constraint key.
func (t *Timeline) SetIkFrame(frame int, time, mix, softness float32, bendDirection int, compress, stretch bool) {
	t.SetFrame(frame, time, mix, softness, float32(bendDirection), boolToFloat(compress), boolToFloat(stretch))
}

// SetAttachmentFrame sets an attachment key. An empty name clears the slot.
func (t *Timeline) SetAttachmentFrame(frame int, time float32, name string) {
	t.frames[frame] = time
	t.attachmentNames[frame] = name
}

// SetDeformFrame sets a deform key. Weighted meshes key offsets from the setup
// vertices; unweighted meshes key absolute local positions.
func (t *Timeline) SetDeformFrame(frame int, time float32, vertices []float32) {
	t.frames[frame] = time
	t.vertices[frame] = vertices
}

// SetDrawOrderFrame sets a draw order key. drawOrder maps each draw position
// to a setup slot index; nil restores the setup order.
func (t *Timeline) SetDrawOrderFrame(frame int, time float32, drawOrder []int) {
	t.frames[frame] = time
	t.drawOrders[frame] = drawOrder
}

// SetEventFrame sets an event key at the event's time.
func (t *Timeline) SetEventFrame(frame int, event *Event) {
	t.frames[frame] = event.Time
	t.events[frame] = event
}

// Events returns the keyed events of a TimelineEvent.
func (t *Timeline) Events() []*Event { return t.events }

// Apply writes the timeline's value at time into s. alpha blends between the
// base selected by pose and the keyed value. Fired events are appended to
// events, which is returned.
func (t *Timeline) Apply(s *Skeleton, lastTime, time float32, events []*Event, alpha float32, pose MixPose, dir MixDirection) []*Event {
	if s == nil {
		panic("marionette: Timeline.Apply with nil skeleton")
	}
	if alpha == 0 && pose != PoseSetup && t.Type != TimelineEvent && t.Type != TimelinePhysicsConstraintReset {
		return events
	}
	switch t.Type {
	case TimelineRotate:
		t.applyRotate(s, time, alpha, pose)
	case TimelineTranslate:
		t.applyTranslate(s, time, alpha, pose)
	case TimelineScale:
		t.applyScale(s, time, alpha, pose, dir)
	case TimelineShear:
		t.applyShear(s, time, alpha, pose)
	case TimelineAttachment:
		t.applyAttachment(s, time, pose, dir)
	case TimelineColor:
		t.applyColor(s, time, alpha, pose)
	case TimelineTwoColor:
		t.applyTwoColor(s, time, alpha, pose)
	case TimelineDeform:
		t.applyDeform(s, time, alpha, pose)
	case TimelineEvent:
		return t.applyEvents(lastTime, time, events)
	case TimelineDrawOrder:
		t.applyDrawOrder(s, time, pose, dir)
	case TimelineIkConstraint:
		t.applyIk(s, time, alpha, pose, dir)
	case TimelineTransformConstraint:
		t.applyTransform(s, time, alpha, pose)
	case TimelinePathConstraintPosition:
		t.applyPathPosition(s, time, alpha, pose)
	case TimelinePathConstraintSpacing:
		t.applyPathSpacing(s, time, alpha, pose)
	case TimelinePathConstraintMix:
		t.applyPathMix(s, time, alpha, pose)
	case TimelinePhysicsConstraint:
		t.applyPhysics(s, time, alpha, pose)
	case TimelinePhysicsConstraintReset:
		t.applyPhysicsReset(s, lastTime, time)
	case TimelineSpringConstraint:
		t.applySpring(s, time, alpha, pose)
	}
	return events
}

// binarySearch returns the index of the first key whose time is greater than
// target. Keys are step floats apart. The first and last keys are excluded
// from the search so the result is always in [step, len-step].
func binarySearch(values []float32, target float32, step int) int {
	low := 0
	high := len(values)/step - 2
	if high <= 0 {
		return step
	}
	current := high >> 1
	for {
		if values[(current+1)*step] <= target {
			low = current + 1
		} else {
			high = current
		}
		if low == high {
			return (low + 1) * step
		}
		current = (low + high) >> 1
	}
}

// bracket locates the keys surrounding time and returns the index of the
// later key with the curved progress from the earlier one. time must lie
// between the first and last keys.
func (t *Timeline) bracket(time float32) (frame int, percent float32) {
	stride := t.Type.stride()
	frames := t.frames
	frame = binarySearch(frames, time, stride)
	prevTime := frames[frame-stride]
	frameTime := frames[frame]
	percent = t.CurvePercent(frame/stride-1, 1-(time-frameTime)/(prevTime-frameTime))
	return frame, percent
}

// keyIndex returns the index of the last key at or before time. time must be
// at or after the first key.
func (t *Timeline) keyIndex(time float32) int {
	stride := t.Type.stride()
	frames := t.frames
	if last := len(frames) - stride; time >= frames[last] {
		return last
	}
	return binarySearch(frames, time, stride) - stride
}

// sample returns the keyed values at time, interpolated with the interval's
// curve. time must be at or after the first key.
func (t *Timeline) sample(time float32) (v [maxValues]float32) {
	stride := t.Type.stride()
	frames := t.frames
	n := stride - 1
	if time >= frames[len(frames)-stride] {
		copy(v[:n], frames[len(frames)-n:])
		return v
	}
	frame, percent := t.bracket(time)
	for i := 1; i <= n; i++ {
		prev := frames[frame-stride+i]
		v[i-1] = prev + (frames[frame+i]-prev)*percent
	}
	return v
}

// validate checks the frame layout of a fully keyed timeline.
func (t *Timeline) validate() error {
	stride := t.Type.stride()
	if len(t.frames) == 0 || len(t.frames)%stride != 0 {
		return fmt.Errorf("%s timeline: %d floats is not a multiple of stride %d: %w", t.Type, len(t.frames), stride, ErrInvalidArgument)
	}
	for i := stride; i < len(t.frames); i += stride {
		if t.frames[i] < t.frames[i-stride] {
			return fmt.Errorf("%s timeline: key %d time %g precedes previous key: %w", t.Type, i/stride, t.frames[i], ErrInvalidArgument)
		}
	}
	if t.Type.curved() && len(t.curves) != (t.FrameCount()-1)*bezierSize {
		return fmt.Errorf("%s timeline: curve table sized for %d keys: %w", t.Type, len(t.curves)/bezierSize+1, ErrInvalidArgument)
	}
	n := t.FrameCount()
	switch t.Type {
	case TimelineAttachment:
		if len(t.attachmentNames) != n {
			return fmt.Errorf("attachment timeline: %d names for %d keys: %w", len(t.attachmentNames), n, ErrInvalidArgument)
		}
	case TimelineDeform:
		if t.Attachment == nil || !t.Attachment.IsVertexAttachment() {
			return fmt.Errorf("deform timeline: target is not a vertex attachment: %w", ErrInvalidArgument)
		}
		if len(t.vertices) != n {
			return fmt.Errorf("deform timeline: %d vertex arrays for %d keys: %w", len(t.vertices), n, ErrInvalidArgument)
		}
		for i, v := range t.vertices {
			if len(v) != len(t.vertices[0]) || len(v) == 0 {
				return fmt.Errorf("deform timeline: key %d has %d vertices: %w", i, len(v), ErrInvalidArgument)
			}
		}
	case TimelineDrawOrder:
		if len(t.drawOrders) != n {
			return fmt.Errorf("draw order timeline: %d orders for %d keys: %w", len(t.drawOrders), n, ErrInvalidArgument)
		}
	case TimelineEvent:
		if len(t.events) != n {
			return fmt.Errorf("event timeline: %d events for %d keys: %w", len(t.events), n, ErrInvalidArgument)
		}
		for i, e := range t.events {
			if e == nil {
				return fmt.Errorf("event timeline: key %d has no event: %w", i, ErrInvalidArgument)
			}
		}
	}
	return nil
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
