package marionette

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// --- Mix data ---

type mixKey struct {
	from, to *Animation
}

// AnimationStateData stores crossfade durations between pairs of animations.
type AnimationStateData struct {
	SkeletonData *SkeletonData

	// DefaultMix is used for pairs without an explicit duration.
	DefaultMix float32

	// Ease shapes the crossfade. Nil means ease.Linear.
	Ease ease.TweenFunc

	mixes map[mixKey]float32
}

// NewAnimationStateData returns mix data for animations of sd. It returns an
// error wrapping ErrInvalidArgument when sd is nil.
func NewAnimationStateData(sd *SkeletonData) (*AnimationStateData, error) {
	if sd == nil {
		return nil, fmt.Errorf("new animation state data: nil skeleton data: %w", ErrInvalidArgument)
	}
	return &AnimationStateData{SkeletonData: sd, mixes: make(map[mixKey]float32)}, nil
}

// SetMix sets the crossfade duration, in seconds, from one animation to
// another.
func (d *AnimationStateData) SetMix(from, to *Animation, duration float32) {
	d.mixes[mixKey{from, to}] = duration
}

// SetMixByName is SetMix with animations looked up by name.
func (d *AnimationStateData) SetMixByName(from, to string, duration float32) error {
	a := d.SkeletonData.FindAnimation(from)
	if a == nil {
		return fmt.Errorf("set mix: animation %q: %w", from, ErrNotFound)
	}
	b := d.SkeletonData.FindAnimation(to)
	if b == nil {
		return fmt.Errorf("set mix: animation %q: %w", to, ErrNotFound)
	}
	d.SetMix(a, b, duration)
	return nil
}

// Mix returns the crossfade duration from one animation to another.
func (d *AnimationStateData) Mix(from, to *Animation) float32 {
	if v, ok := d.mixes[mixKey{from, to}]; ok {
		return v
	}
	return d.DefaultMix
}

func (d *AnimationStateData) easing() ease.TweenFunc {
	if d.Ease == nil {
		return ease.Linear
	}
	return d.Ease
}

// --- Track entries ---

// TrackEntry is one queued or playing animation of an AnimationState.
type TrackEntry struct {
	Animation *Animation
	Loop      bool

	// Delay is the current entry's time at which a queued entry starts.
	Delay float32

	// Time advances with AnimationState.Update. LastTime is the time of the
	// last Apply, -1 before the first, so keys at zero fire once.
	Time, LastTime float32
	EndTime        float32
	TimeScale      float32

	// MixDuration is the crossfade from the previous entry, 0 for none.
	MixDuration float32

	OnStart    func(e *TrackEntry)
	OnEnd      func(e *TrackEntry)
	OnComplete func(e *TrackEntry, loopCount int)
	OnEvent    func(e *TrackEntry, ev *Event)

	tween    *gween.Tween
	alpha    float32
	previous *TrackEntry
	next     *TrackEntry
}

// IsComplete reports whether a non-looping entry has played to its end.
func (e *TrackEntry) IsComplete() bool {
	return !e.Loop && e.Time >= e.EndTime
}

// MixAlpha returns the current crossfade weight of the entry, 1 when it is
// not mixing.
func (e *TrackEntry) MixAlpha() float32 { return e.alpha }

// Next returns the entry queued after this one, or nil.
func (e *TrackEntry) Next() *TrackEntry { return e.next }

// AnimationListener receives AnimationState notifications for every entry.
type AnimationListener interface {
	Start(e *TrackEntry)
	End(e *TrackEntry)
	Complete(e *TrackEntry, loopCount int)
	Event(e *TrackEntry, ev *Event)
}

// --- AnimationState ---

// AnimationState plays one animation at a time on a skeleton, queues
// followers and crossfades between them. Call Update with the frame delta,
// then Apply, then Skeleton.UpdateWorldTransform.
type AnimationState struct {
	Data      *AnimationStateData
	TimeScale float32

	current   *TrackEntry
	events    []*Event
	listeners []AnimationListener
}

// NewAnimationState returns an empty state. It returns an error wrapping
// ErrInvalidArgument when data is nil.
func NewAnimationState(data *AnimationStateData) (*AnimationState, error) {
	if data == nil {
		return nil, fmt.Errorf("new animation state: nil data: %w", ErrInvalidArgument)
	}
	return &AnimationState{Data: data, TimeScale: 1}, nil
}

// AddListener registers l for notifications of every entry.
func (s *AnimationState) AddListener(l AnimationListener) {
	s.listeners = append(s.listeners, l)
}

// Current returns the playing entry, or nil.
func (s *AnimationState) Current() *TrackEntry { return s.current }

// IsComplete reports whether nothing is playing or the playing entry is
// complete.
func (s *AnimationState) IsComplete() bool {
	return s.current == nil || s.current.IsComplete()
}

// Update advances the playing entry, and the entry it is mixing from, by
// delta seconds scaled by TimeScale. It fires completion notifications,
// starts a queued entry once its delay is reached and ends a finished
// non-looping entry with nothing queued.
func (s *AnimationState) Update(delta float32) {
	cur := s.current
	if cur == nil {
		return
	}
	delta *= s.TimeScale * cur.TimeScale
	time := cur.Time + delta
	cur.Time = time
	if cur.previous != nil {
		cur.previous.Time += delta
		v, done := cur.tween.Update(delta)
		cur.alpha = v
		if done {
			cur.alpha = 1
		}
	}

	if end := cur.EndTime; end > 0 {
		var completed bool
		if cur.Loop {
			last := math32.Max(cur.LastTime, 0)
			completed = time-last >= end || math32.Mod(last, end) > math32.Mod(time, end)
		} else {
			completed = cur.LastTime < end && time >= end
		}
		if completed {
			s.complete(cur, int(time/end))
		}
	}

	if cur.next != nil {
		if time-delta >= cur.next.Delay {
			s.setCurrent(cur.next)
		}
		return
	}
	if !cur.Loop && cur.LastTime >= cur.EndTime {
		s.ClearAnimation()
	}
}

// Apply poses sk with the playing entry. While crossfading, the previous
// entry is applied first and the current one is mixed over it by the eased
// crossfade weight. Properties the current entry also keys are taken from the
// previous entry at full weight; the rest fade from the previous pose to the
// setup pose over the crossfade. Events keyed since the last Apply are
// dispatched before Apply returns.
func (s *AnimationState) Apply(sk *Skeleton) {
	cur := s.current
	if cur == nil {
		return
	}
	time := cur.Time
	if !cur.Loop && time > cur.EndTime {
		time = cur.EndTime
	}

	s.events = s.events[:0]
	if prev := cur.previous; prev == nil {
		s.events = cur.Animation.Apply(sk, cur.LastTime, time, cur.Loop, s.events, 1, PoseSetup, MixIn)
	} else {
		pt := prev.Time
		if !prev.Loop && pt > prev.EndTime {
			pt = prev.EndTime
		}
		alpha := cur.alpha
		if alpha >= 1 {
			alpha = 1
		}
		s.applyMixingFrom(sk, prev, pt, cur.Animation, 1-alpha)
		if alpha == 1 {
			cur.previous = nil
			cur.tween = nil
		}
		s.events = cur.Animation.Apply(sk, cur.LastTime, time, cur.Loop, s.events, alpha, PoseCurrent, MixIn)
	}

	for _, ev := range s.events {
		if cur.OnEvent != nil {
			cur.OnEvent(cur, ev)
		}
		for _, l := range s.listeners {
			l.Event(cur, ev)
		}
	}
	cur.LastTime = cur.Time
}

// applyMixingFrom poses sk with the entry being faded out. Timelines whose
// property to also keys hold at full weight so to can mix over them; the
// others are weighted by fade, so once the crossfade ends they rest in the
// setup pose.
func (s *AnimationState) applyMixingFrom(sk *Skeleton, from *TrackEntry, time float32, to *Animation, fade float32) {
	a := from.Animation
	if from.Loop && a.Duration != 0 {
		time = loopTime(time, a.Duration)
	}
	for _, t := range a.Timelines {
		if t.Type == TimelineEvent {
			continue
		}
		alpha := fade
		if to.HasTimeline(t.PropertyID()) {
			alpha = 1
		}
		t.Apply(sk, time, time, nil, alpha, PoseSetup, MixOut)
	}
}

func (s *AnimationState) newEntry(a *Animation, loop bool) *TrackEntry {
	if a == nil {
		panic("marionette: AnimationState with nil animation")
	}
	return &TrackEntry{
		Animation: a,
		Loop:      loop,
		LastTime:  -1,
		EndTime:   a.Duration,
		TimeScale: 1,
		alpha:     1,
	}
}

func (s *AnimationState) setCurrent(e *TrackEntry) {
	if cur := s.current; cur != nil {
		prev := cur.previous
		cur.previous, cur.tween = nil, nil
		s.end(cur)

		e.MixDuration = s.Data.Mix(cur.Animation, e.Animation)
		if e.MixDuration > 0 {
			// Interrupting a crossfade that is less than half done keeps
			// fading from the entry that still dominates the pose.
			if prev != nil && cur.alpha < 0.5 {
				e.previous = prev
			} else {
				e.previous = cur
			}
			e.alpha = 0
			e.tween = gween.New(0, 1, e.MixDuration, s.Data.easing())
		}
	}
	s.current = e
	s.start(e)
}

// SetAnimation plays a immediately, crossfading from the current entry, and
// discards any queued entries. It panics if a is nil.
func (s *AnimationState) SetAnimation(a *Animation, loop bool) *TrackEntry {
	if s.current != nil {
		s.current.next = nil
	}
	e := s.newEntry(a, loop)
	s.setCurrent(e)
	return e
}

// SetAnimationByName is SetAnimation with the animation looked up by name.
func (s *AnimationState) SetAnimationByName(name string, loop bool) (*TrackEntry, error) {
	a := s.Data.SkeletonData.FindAnimation(name)
	if a == nil {
		return nil, fmt.Errorf("set animation %q: %w", name, ErrNotFound)
	}
	return s.SetAnimation(a, loop), nil
}

// AddAnimation queues a after the last queued entry. The entry starts once
// its predecessor's time reaches delay. A delay <= 0 is added to the
// predecessor's duration minus the crossfade duration, so 0 starts the
// crossfade as the predecessor ends. With nothing playing, a starts at once.
func (s *AnimationState) AddAnimation(a *Animation, loop bool, delay float32) *TrackEntry {
	e := s.newEntry(a, loop)
	last := s.current
	if last == nil {
		s.setCurrent(e)
		return e
	}
	for last.next != nil {
		last = last.next
	}
	last.next = e
	if delay <= 0 {
		delay += last.EndTime - s.Data.Mix(last.Animation, a)
	}
	e.Delay = delay
	return e
}

// AddAnimationByName is AddAnimation with the animation looked up by name.
func (s *AnimationState) AddAnimationByName(name string, loop bool, delay float32) (*TrackEntry, error) {
	a := s.Data.SkeletonData.FindAnimation(name)
	if a == nil {
		return nil, fmt.Errorf("add animation %q: %w", name, ErrNotFound)
	}
	return s.AddAnimation(a, loop, delay), nil
}

// ClearAnimation ends the playing entry and drops everything queued. The
// skeleton keeps its last pose.
func (s *AnimationState) ClearAnimation() {
	cur := s.current
	if cur == nil {
		return
	}
	s.current = nil
	cur.previous, cur.next, cur.tween = nil, nil, nil
	s.end(cur)
}

func (s *AnimationState) start(e *TrackEntry) {
	Logger().Debug("animation start", "animation", e.Animation.Name, "loop", e.Loop, "mix", e.MixDuration)
	if e.OnStart != nil {
		e.OnStart(e)
	}
	for _, l := range s.listeners {
		l.Start(e)
	}
}

func (s *AnimationState) end(e *TrackEntry) {
	Logger().Debug("animation end", "animation", e.Animation.Name)
	if e.OnEnd != nil {
		e.OnEnd(e)
	}
	for _, l := range s.listeners {
		l.End(e)
	}
}

func (s *AnimationState) complete(e *TrackEntry, loopCount int) {
	Logger().Debug("animation complete", "animation", e.Animation.Name, "loops", loopCount)
	if e.OnComplete != nil {
		e.OnComplete(e, loopCount)
	}
	for _, l := range s.listeners {
		l.Complete(e, loopCount)
	}
}
