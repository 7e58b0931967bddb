package marionette

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mixTOML = `
default = 0.2

[[mix]]
from = "raise"
to = "hold"
duration = 0.4

[[mix]]
from = "hold"
to = "raise"
duration = 0.1
`

const mixYAML = `
default: 0.2
mix:
  - from: raise
    to: hold
    duration: 0.4
  - from: hold
    to: raise
    duration: 0.1
`

func TestParseMixConfig(t *testing.T) {
	want := &MixConfig{
		Default: 0.2,
		Mixes: []MixEntry{
			{From: "raise", To: "hold", Duration: 0.4},
			{From: "hold", To: "raise", Duration: 0.1},
		},
	}

	got, err := ParseMixConfigTOML([]byte(mixTOML))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseMixConfigYAML([]byte(mixYAML))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseMixConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"negative default", "default = -1"},
		{"negative duration", "[[mix]]\nfrom = \"a\"\nto = \"b\"\nduration = -0.5"},
		{"missing name", "[[mix]]\nfrom = \"a\"\nduration = 0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMixConfigTOML([]byte(tt.toml))
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := ParseMixConfigTOML([]byte("default = ["))
	assert.Error(t, err)
	_, err = ParseMixConfigYAML([]byte("mix: {"))
	assert.Error(t, err)
}

func TestLoadMixConfig(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"mix.toml": mixTOML,
		"mix.yaml": mixYAML,
		"mix.YML":  mixYAML,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		c, err := LoadMixConfig(path)
		require.NoError(t, err, name)
		assert.Len(t, c.Mixes, 2, name)
	}

	path := filepath.Join(dir, "mix.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := LoadMixConfig(path)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = LoadMixConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyMixConfig(t *testing.T) {
	_, st := newStateFixture(t)
	c, err := ParseMixConfigTOML([]byte(mixTOML))
	require.NoError(t, err)
	require.NoError(t, st.Data.ApplyMixConfig(c))

	sd := st.Data.SkeletonData
	raise, hold, tap := sd.FindAnimation("raise"), sd.FindAnimation("hold"), sd.FindAnimation("tap")
	assert.Equal(t, float32(0.4), st.Data.Mix(raise, hold))
	assert.Equal(t, float32(0.1), st.Data.Mix(hold, raise))
	assert.Equal(t, float32(0.2), st.Data.Mix(raise, tap))

	c.Mixes = append(c.Mixes, MixEntry{From: "raise", To: "missing", Duration: 1})
	assert.ErrorIs(t, st.Data.ApplyMixConfig(c), ErrNotFound)
}

func TestWatchMixConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mix.toml")
	require.NoError(t, os.WriteFile(path, []byte("default = 0.1"), 0o644))

	type result struct {
		c   *MixConfig
		err error
	}
	changes := make(chan result, 8)
	require.NoError(t, WatchMixConfig(t.Context(), path, func(c *MixConfig, err error) {
		changes <- result{c, err}
	}))

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(mixTOML), 0o644))

	// A write may be seen as a truncate then a write, so wait for the
	// complete file.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r := <-changes:
			if r.err == nil && len(r.c.Mixes) == 2 {
				assert.Equal(t, float32(0.2), r.c.Default)
				return
			}
		case <-timeout:
			t.Fatal("no reload within 5s")
		}
	}
}

func TestWatchMixConfigMissingDir(t *testing.T) {
	err := WatchMixConfig(t.Context(), filepath.Join(t.TempDir(), "missing", "mix.toml"), func(*MixConfig, error) {})
	assert.Error(t, err)
}
