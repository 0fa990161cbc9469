//go:build integration

package itest

import (
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not found in PATH", name)
	}
}

func mustProbeSeconds(t *testing.T, path string) float64 {
	t.Helper()
	b, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("ffprobe %s: %v\n%s", path, err, string(b))
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		t.Fatalf("parse ffprobe output %q: %v", string(b), err)
	}
	return sec
}

// makeClip renders a short black clip with a tone.
func makeClip(t *testing.T, path string, seconds int) {
	t.Helper()
	d := strconv.Itoa(seconds)
	b, err := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi", "-i", "color=c=black:s=320x240:d="+d,
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+d,
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		path,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("ffmpeg fixture: %v\n%s", err, string(b))
	}
}
