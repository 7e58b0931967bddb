package marionette

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// captureLogs enables debug mode and routes warnings into a buffer for the
// duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	SetDebug(true)
	t.Cleanup(func() {
		SetDebug(false)
		SetLogger(nil)
	})
	return &buf
}

// ---- Debug mode tests ------------------------------------------------------

func TestDebugDeepBoneChain(t *testing.T) {
	buf := captureLogs(t)

	d := NewSkeletonData("deep")
	var parent *BoneData
	for i := range debugMaxBoneDepth + 2 {
		b := NewBoneData(i, fmt.Sprintf("b%d", i), parent)
		d.Bones = append(d.Bones, b)
		parent = b
	}
	mustSkeleton(t, d)

	out := buf.String()
	if !strings.Contains(out, "bone chain is deep") {
		t.Fatalf("expected depth warning, got %q", out)
	}
	if got := strings.Count(out, "bone chain is deep"); got != 2 {
		t.Errorf("warnings = %d, want 2 (one per bone past the threshold)", got)
	}
}

func TestDebugShallowChainIsQuiet(t *testing.T) {
	buf := captureLogs(t)
	mustSkeleton(t, newArmData())
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestDebugConstraintOrder(t *testing.T) {
	buf := captureLogs(t)

	d := newArmData()
	ik := NewIkConstraintData("ik")
	ik.Bones = []*BoneData{d.Bones[1]}
	ik.Target = d.Bones[3]
	ik.Order = 0
	tc := NewTransformConstraintData("copy")
	tc.Bones = []*BoneData{d.Bones[2]}
	tc.Target = d.Bones[3]
	tc.Order = 0
	pc := NewPhysicsConstraintData("sway")
	pc.Bone = d.Bones[2]
	pc.Order = 3
	d.IkConstraints = []*IkConstraintData{ik}
	d.TransformConstraints = []*TransformConstraintData{tc}
	d.PhysicsConstraints = []*PhysicsConstraintData{pc}
	mustSkeleton(t, d)

	out := buf.String()
	for _, want := range []string{"constraint order is shared", "constraint order has a gap"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestDebugSpringWarnsOnce(t *testing.T) {
	buf := captureLogs(t)

	d := newArmData()
	sp := NewSpringConstraintData("spring")
	sp.Bones = []*BoneData{d.Bones[2]}
	d.SpringConstraints = []*SpringConstraintData{sp}
	s := mustSkeleton(t, d)
	for range 3 {
		s.UpdateWorldTransform(PhysicsUpdate)
	}
	if got := strings.Count(buf.String(), "spring constraint has no solver"); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}
}

func TestDebugOffIsQuiet(t *testing.T) {
	buf := captureLogs(t)
	SetDebug(false)

	d := NewSkeletonData("deep")
	var parent *BoneData
	for i := range debugMaxBoneDepth + 2 {
		b := NewBoneData(i, fmt.Sprintf("b%d", i), parent)
		d.Bones = append(d.Bones, b)
		parent = b
	}
	mustSkeleton(t, d)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello")
	if buf.Len() == 0 {
		t.Fatal("expected output from the configured logger")
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected silence, got %q", buf.String())
	}
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should report every level disabled")
	}
}
