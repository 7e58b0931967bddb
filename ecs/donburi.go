package ecs

import (
	"github.com/phanxgames/marionette"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// AnimationEventKind tells which AnimationState notification an
// AnimationEvent carries.
type AnimationEventKind uint8

const (
	AnimationEventStart AnimationEventKind = iota
	AnimationEventEnd
	AnimationEventComplete
	AnimationEventKeyed
)

// AnimationEvent is one AnimationState notification published into a world.
type AnimationEvent struct {
	Kind   AnimationEventKind
	Entity donburi.Entity
	Entry  *marionette.TrackEntry
	// Event is set for AnimationEventKeyed.
	Event *marionette.Event
	// LoopCount is set for AnimationEventComplete.
	LoopCount int
}

// AnimationEventType is the Donburi event type for animation notifications.
var AnimationEventType = events.NewEventType[AnimationEvent]()

// PuppetData is a posed skeleton and the animation state driving it.
type PuppetData struct {
	Skeleton *marionette.Skeleton
	State    *marionette.AnimationState
}

// Puppet is the component holding PuppetData.
var Puppet = donburi.NewComponentType[PuppetData]()

var puppetQuery = donburi.NewQuery(filter.Contains(Puppet))

type donburiListener struct {
	world  donburi.World
	entity donburi.Entity
}

// NewDonburiListener returns an AnimationListener publishing every
// notification to AnimationEventType, tagged with entity. Events are queued
// until ProcessEvents is called.
func NewDonburiListener(world donburi.World, entity donburi.Entity) marionette.AnimationListener {
	return &donburiListener{world: world, entity: entity}
}

func (l *donburiListener) publish(ev AnimationEvent) {
	ev.Entity = l.entity
	AnimationEventType.Publish(l.world, ev)
}

func (l *donburiListener) Start(e *marionette.TrackEntry) {
	l.publish(AnimationEvent{Kind: AnimationEventStart, Entry: e})
}

func (l *donburiListener) End(e *marionette.TrackEntry) {
	l.publish(AnimationEvent{Kind: AnimationEventEnd, Entry: e})
}

func (l *donburiListener) Complete(e *marionette.TrackEntry, loopCount int) {
	l.publish(AnimationEvent{Kind: AnimationEventComplete, Entry: e, LoopCount: loopCount})
}

func (l *donburiListener) Event(e *marionette.TrackEntry, ev *marionette.Event) {
	l.publish(AnimationEvent{Kind: AnimationEventKeyed, Entry: e, Event: ev})
}

// NewPuppet creates an entity holding skeleton and state, and registers a
// listener on state that publishes its notifications for the new entity.
func NewPuppet(world donburi.World, skeleton *marionette.Skeleton, state *marionette.AnimationState) donburi.Entity {
	e := world.Create(Puppet)
	Puppet.SetValue(world.Entry(e), PuppetData{Skeleton: skeleton, State: state})
	state.AddListener(NewDonburiListener(world, e))
	return e
}

// UpdatePuppets advances every puppet by dt seconds: it updates and applies
// the animation state, steps physics time, and recomputes world transforms.
func UpdatePuppets(world donburi.World, dt float32) {
	puppetQuery.Each(world, func(entry *donburi.Entry) {
		p := Puppet.Get(entry)
		if p.Skeleton == nil {
			return
		}
		if p.State != nil {
			p.State.Update(dt)
			p.State.Apply(p.Skeleton)
		}
		p.Skeleton.Update(dt)
		p.Skeleton.UpdateWorldTransform(marionette.PhysicsUpdate)
	})
}
