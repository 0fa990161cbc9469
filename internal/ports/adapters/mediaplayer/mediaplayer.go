package mediaplayer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Adapter plays remote videos with an external player (mpv by default) and
// probes local files with ffprobe. Stopping remembers the position; the
// next Play resumes from it unless Rewind was called.
type Adapter struct {
	player  string
	ffprobe string

	mu      sync.Mutex
	cmd     *exec.Cmd
	started time.Time
	offset  time.Duration
}

func New(playerPath, ffprobePath string) *Adapter {
	if playerPath == "" {
		playerPath = "mpv"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{player: playerPath, ffprobe: ffprobePath}
}

// Play blocks until the player exits, ctx is done, or Stop is called.
func (a *Adapter) Play(ctx context.Context, videoURL, subtitlePath string) error {
	a.mu.Lock()
	if a.cmd != nil {
		a.mu.Unlock()
		return errors.New("player is already running")
	}
	args := []string{"--force-window=yes"}
	if subtitlePath != "" {
		args = append(args, "--sub-file="+subtitlePath)
	}
	if a.offset > 0 {
		args = append(args, "--start="+fmtSeconds(a.offset))
	}
	args = append(args, videoURL)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, a.player, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Start(); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("start %s: %w", a.player, err)
	}
	a.cmd = cmd
	a.started = time.Now()
	a.mu.Unlock()

	err := cmd.Wait()

	a.mu.Lock()
	stopped := a.cmd != cmd
	if !stopped {
		a.offset += time.Since(a.started)
		a.cmd = nil
	}
	a.mu.Unlock()

	if err != nil && !stopped && ctx.Err() == nil {
		return fmt.Errorf("%s playback: %w\n%s", a.player, err, tail(out.String(), 2000))
	}
	return nil
}

// Stop kills the running player, if any, and records how far it got.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	cmd := a.cmd
	if cmd == nil {
		a.mu.Unlock()
		return nil
	}
	a.offset += time.Since(a.started)
	a.cmd = nil
	a.mu.Unlock()

	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop %s: %w", a.player, err)
	}
	return nil
}

func (a *Adapter) Rewind() {
	a.mu.Lock()
	a.offset = 0
	a.mu.Unlock()
}

func (a *Adapter) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cmd != nil
}

// Offset is where the next Play starts.
func (a *Adapter) Offset() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
