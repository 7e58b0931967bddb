package marionette

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Animation is a named set of timelines applied together. Animations are part
// of SkeletonData and are read-only once built.
type Animation struct {
	Name      string
	Timelines []*Timeline
	Duration  float32

	ids map[int]struct{}
}

// NewAnimation validates timelines and returns the animation. A zero duration
// is replaced by the time of the latest key across all timelines. Malformed
// timelines return an error wrapping ErrInvalidArgument.
func NewAnimation(name string, timelines []*Timeline, duration float32) (*Animation, error) {
	if duration < 0 {
		return nil, fmt.Errorf("new animation %q: duration %g: %w", name, duration, ErrInvalidArgument)
	}
	a := &Animation{Name: name, Timelines: timelines, ids: make(map[int]struct{}, len(timelines))}
	var latest float32
	for i, t := range timelines {
		if t == nil {
			return nil, fmt.Errorf("new animation %q: timeline %d is nil: %w", name, i, ErrInvalidArgument)
		}
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("new animation %q: timeline %d: %w", name, i, err)
		}
		latest = math32.Max(latest, t.Duration())
		a.ids[t.PropertyID()] = struct{}{}
	}
	if duration == 0 {
		duration = latest
	}
	a.Duration = duration
	return a, nil
}

// HasTimeline reports whether the animation keys the property id returned by
// Timeline.PropertyID.
func (a *Animation) HasTimeline(id int) bool {
	_, ok := a.ids[id]
	return ok
}

// loopTime wraps time into one iteration of duration. The end of an
// iteration maps to duration rather than zero so the last key is applied
// and events keyed at the end fire before the wrap.
func loopTime(time, duration float32) float32 {
	t := math32.Mod(time, duration)
	if t == 0 && time > 0 {
		return duration
	}
	return t
}

// Apply poses s with the animation at time. lastTime is the time of the
// previous Apply (-1 on the first), used to fire events keyed in
// (lastTime, time]. When loop is set both times wrap around Duration. Events
// are appended to events, which is returned.
//
// When a looping apply spans a whole iteration or more, every event and
// physics reset of one iteration ending at time fires once.
//
// alpha, pose and dir are passed to every timeline. With alpha 0 and a
// non-setup pose only event and physics reset timelines have an effect.
func (a *Animation) Apply(s *Skeleton, lastTime, time float32, loop bool, events []*Event, alpha float32, pose MixPose, dir MixDirection) []*Event {
	if s == nil {
		panic("marionette: Animation.Apply with nil skeleton")
	}
	fullLoop := false
	if loop && a.Duration != 0 {
		fullLoop = lastTime >= 0 && time-lastTime >= a.Duration
		time = loopTime(time, a.Duration)
		if lastTime > 0 {
			lastTime = loopTime(lastTime, a.Duration)
		}
	}
	for _, t := range a.Timelines {
		if fullLoop && (t.Type == TimelineEvent || t.Type == TimelinePhysicsConstraintReset) {
			events = t.Apply(s, time, math32.MaxFloat32, events, alpha, pose, dir)
			events = t.Apply(s, -1, time, events, alpha, pose, dir)
			continue
		}
		events = t.Apply(s, lastTime, time, events, alpha, pose, dir)
	}
	return events
}
