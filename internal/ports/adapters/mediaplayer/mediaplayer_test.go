package mediaplayer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	p := filepath.Join(t.TempDir(), "fake")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestPlay_ResumesUntilRewind(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	player := writeScript(t, `echo "$@" > "`+argsFile+`"`)
	a := New(player, "")

	lastArgs := func() string {
		b, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		return strings.TrimSpace(string(b))
	}

	require.NoError(t, a.Play(context.Background(), "http://cdn/v.mp4", "/tmp/s.vtt"))
	assert.Equal(t, "--force-window=yes --sub-file=/tmp/s.vtt http://cdn/v.mp4", lastArgs())
	assert.Greater(t, a.Offset(), time.Duration(0))

	require.NoError(t, a.Play(context.Background(), "http://cdn/v.mp4", ""))
	assert.Contains(t, lastArgs(), "--start=")

	a.Rewind()
	assert.Zero(t, a.Offset())
	require.NoError(t, a.Play(context.Background(), "http://cdn/v.mp4", ""))
	assert.NotContains(t, lastArgs(), "--start=")
}

func TestStop_InterruptsPlayback(t *testing.T) {
	player := writeScript(t, "exec sleep 30")
	a := New(player, "")

	done := make(chan error, 1)
	go func() { done <- a.Play(context.Background(), "http://cdn/v.mp4", "") }()

	require.Eventually(t, a.Running, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, a.Stop())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("player did not stop")
	}
	assert.False(t, a.Running())
	assert.Greater(t, a.Offset(), time.Duration(0))

	a.Rewind()
	assert.Zero(t, a.Offset())
	require.NoError(t, a.Stop())
}

func TestPlay_FailureIncludesOutput(t *testing.T) {
	player := writeScript(t, "echo 'cannot open stream' >&2; exit 2")
	err := New(player, "").Play(context.Background(), "http://cdn/missing.mp4", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open stream")
}

func TestPlay_MissingBinary(t *testing.T) {
	err := New(filepath.Join(t.TempDir(), "nope"), "").Play(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start ")
}

func TestProbeDuration(t *testing.T) {
	probe := writeScript(t, "echo 12.5")
	d, err := New("", probe).ProbeDuration(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, 12500*time.Millisecond, d)

	bad := writeScript(t, "echo N/A")
	_, err = New("", bad).ProbeDuration(context.Background(), "clip.mp4")
	require.Error(t, err)
}
