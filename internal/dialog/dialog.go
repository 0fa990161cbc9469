package dialog

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type Kind int

const (
	None Kind = iota
	AddVideo
	DeleteVideo
	Transcribe
	Translate
	Edit
	Burn
	DeleteSubtitle
	Play
)

var kindNames = map[Kind]string{
	None:           "none",
	AddVideo:       "add-video",
	DeleteVideo:    "delete-video",
	Transcribe:     "transcribe",
	Translate:      "translate",
	Edit:           "edit",
	Burn:           "burn",
	DeleteSubtitle: "delete-subtitle",
	Play:           "play",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mutating reports whether closing a dialog of this kind must refresh the
// owning list. Read-only dialogs (play, burn) leave server state alone.
func (k Kind) Mutating() bool {
	switch k {
	case AddVideo, DeleteVideo, Transcribe, Translate, Edit, DeleteSubtitle:
		return true
	default:
		return false
	}
}

// Target identifies the entity a dialog operates on. Zero for dialogs
// that create something new.
type Target struct {
	VideoID    string
	SubtitleID int
}

// Session is the single active dialog of a page. Token changes on every
// Open so completions from an abandoned session can be recognized.
type Session struct {
	Kind   Kind
	Target Target
	Token  uint64
}

func (s Session) Open() bool { return s.Kind != None }

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Media is stopped and rewound before a play dialog closes.
type Media interface {
	Stop() error
	Rewind()
}

type Orchestrator struct {
	refresh Refresher
	media   Media
	log     zerolog.Logger

	mu    sync.Mutex
	cur   Session
	gen   uint64
	phase Phase
	err   error
}

func New(refresh Refresher, media Media, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{refresh: refresh, media: media, log: log}
}

// Open replaces whatever dialog is open; the most recent open wins. The
// replaced session's private state is discarded without a refresh.
func (o *Orchestrator) Open(kind Kind, target Target) Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur.Open() {
		o.log.Debug().Stringer("replaced", o.cur.Kind).Stringer("kind", kind).Msg("dialog replaced")
	}
	o.gen++
	o.cur = Session{Kind: kind, Target: target, Token: o.gen}
	o.phase = PhaseIdle
	o.err = nil
	return o.cur
}

func (o *Orchestrator) Current() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cur
}

func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *Orchestrator) isCurrent(s Session) bool {
	return s.Open() && s.Token == o.cur.Token && o.cur.Open()
}

// Begin marks s as loading. It reports false when s is no longer current.
func (o *Orchestrator) Begin(s Session) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.isCurrent(s) {
		return false
	}
	o.phase = PhaseLoading
	o.err = nil
	return true
}

// Complete applies the outcome of a request issued for s. A stale outcome
// is dropped and Complete reports false; apply runs only for the current
// session and only on success.
func (o *Orchestrator) Complete(s Session, err error, apply func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.isCurrent(s) {
		o.log.Debug().Stringer("kind", s.Kind).Uint64("token", s.Token).Msg("stale completion dropped")
		return false
	}
	if err != nil {
		o.phase = PhaseError
		o.err = err
		return true
	}
	o.phase = PhaseIdle
	o.err = nil
	if apply != nil {
		apply()
	}
	return true
}

// Fail records a local failure (validation) on the current session.
func (o *Orchestrator) Fail(s Session, err error) bool {
	return o.Complete(s, err, nil)
}

// Close closes the active dialog. Mutating kinds always refresh the owning
// list, saved or not; play stops the media first.
func (o *Orchestrator) Close(ctx context.Context) error { return o.close(ctx, nil) }

// CloseSession closes s only while it is still the open dialog.
func (o *Orchestrator) CloseSession(ctx context.Context, s Session) error { return o.close(ctx, &s) }

func (o *Orchestrator) close(ctx context.Context, only *Session) error {
	o.mu.Lock()
	if only != nil && !o.isCurrent(*only) {
		o.mu.Unlock()
		return nil
	}
	closed := o.cur
	o.cur = Session{}
	o.phase = PhaseIdle
	o.err = nil
	o.mu.Unlock()

	if !closed.Open() {
		return nil
	}
	if closed.Kind == Play && o.media != nil {
		if err := o.media.Stop(); err != nil {
			o.log.Warn().Err(err).Msg("stop playback")
		}
		o.media.Rewind()
	}
	if closed.Kind.Mutating() && o.refresh != nil {
		return o.refresh.Refresh(ctx)
	}
	return nil
}
