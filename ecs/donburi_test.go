package ecs

import (
	"testing"

	"github.com/phanxgames/marionette"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// newPuppetParts returns a one bone skeleton and an idle state for it. The
// skeleton has one animation, "wave": a one second loop rotating the bone to
// 90 degrees with a "step" event at 0.5s.
func newPuppetParts(t *testing.T) (*marionette.Skeleton, *marionette.AnimationState) {
	t.Helper()
	d := marionette.NewSkeletonData("puppet")
	d.Bones = []*marionette.BoneData{marionette.NewBoneData(0, "root", nil)}

	rotate := marionette.NewTimeline(marionette.TimelineRotate, 2, 0)
	rotate.SetFrame(0, 0, 0)
	rotate.SetFrame(1, 1, 90)
	step := marionette.NewTimeline(marionette.TimelineEvent, 1, 0)
	step.SetEventFrame(0, marionette.NewEvent(0.5, marionette.NewEventData("step")))
	wave, err := marionette.NewAnimation("wave", []*marionette.Timeline{rotate, step}, 1)
	if err != nil {
		t.Fatal(err)
	}
	d.Animations = []*marionette.Animation{wave}

	sk, err := marionette.NewSkeleton(d)
	if err != nil {
		t.Fatal(err)
	}
	sd, err := marionette.NewAnimationStateData(d)
	if err != nil {
		t.Fatal(err)
	}
	st, err := marionette.NewAnimationState(sd)
	if err != nil {
		t.Fatal(err)
	}
	return sk, st
}

func TestNewPuppet(t *testing.T) {
	world := donburi.NewWorld()
	sk, st := newPuppetParts(t)
	e := NewPuppet(world, sk, st)

	if !world.Valid(e) {
		t.Fatal("puppet entity is not valid")
	}
	p := Puppet.Get(world.Entry(e))
	if p.Skeleton != sk || p.State != st {
		t.Errorf("component = %+v", p)
	}
}

func TestUpdatePuppetsPoses(t *testing.T) {
	world := donburi.NewWorld()
	sk, st := newPuppetParts(t)
	NewPuppet(world, sk, st)
	if _, err := st.SetAnimationByName("wave", true); err != nil {
		t.Fatal(err)
	}

	UpdatePuppets(world, 0.5)
	if got := sk.Bones[0].Rotation; got < 44.99 || got > 45.01 {
		t.Errorf("rotation = %v, want 45", got)
	}
	if got := sk.Bones[0].WorldRotationX(); got < 44.9 || got > 45.1 {
		t.Errorf("world rotation = %v, want 45", got)
	}
}

func TestUpdatePuppetsPublishesEvents(t *testing.T) {
	world := donburi.NewWorld()
	sk, st := newPuppetParts(t)
	e := NewPuppet(world, sk, st)
	if _, err := st.SetAnimationByName("wave", true); err != nil {
		t.Fatal(err)
	}

	var received []AnimationEvent
	AnimationEventType.Subscribe(world, func(w donburi.World, ev AnimationEvent) {
		received = append(received, ev)
	})

	for range 3 {
		UpdatePuppets(world, 0.4)
	}
	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	AnimationEventType.ProcessEvents(world)

	// 1.2 seconds: start, step at 0.5, one loop completed.
	want := []AnimationEventKind{AnimationEventStart, AnimationEventKeyed, AnimationEventComplete}
	if len(received) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(received), len(want), received)
	}
	for i, ev := range received {
		if ev.Kind != want[i] {
			t.Errorf("event %d kind = %v, want %v", i, ev.Kind, want[i])
		}
		if ev.Entity != e {
			t.Errorf("event %d entity = %v, want %v", i, ev.Entity, e)
		}
		if ev.Entry == nil || ev.Entry.Animation.Name != "wave" {
			t.Errorf("event %d entry = %+v", i, ev.Entry)
		}
	}
	if received[1].Event == nil || received[1].Event.Name() != "step" {
		t.Errorf("keyed event = %+v", received[1].Event)
	}
	if received[2].LoopCount != 1 {
		t.Errorf("loop count = %d, want 1", received[2].LoopCount)
	}
}

func TestDonburiListenerMultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	l := NewDonburiListener(world, 7)

	var count1, count2 int
	AnimationEventType.Subscribe(world, func(w donburi.World, ev AnimationEvent) {
		count1++
	})
	AnimationEventType.Subscribe(world, func(w donburi.World, ev AnimationEvent) {
		count2++
	})

	l.End(&marionette.TrackEntry{})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiListenerImplementsAnimationListener(t *testing.T) {
	var _ marionette.AnimationListener = NewDonburiListener(donburi.NewWorld(), 0)
}
