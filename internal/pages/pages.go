package pages

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/dialog"
	"github.com/forPelevin/wandlung/internal/listing"
	"github.com/forPelevin/wandlung/internal/ports"
	"github.com/forPelevin/wandlung/internal/types"
)

// PageSize is fixed for both lists.
const PageSize = 10

// ErrNoDialog is returned when a submit does not match the open dialog.
var ErrNoDialog = errors.New("no matching dialog is open")

// ErrSuperseded is returned by loads whose dialog was replaced or closed
// while the request was in flight. The result was discarded.
var ErrSuperseded = errors.New("dialog superseded")

// base holds what both pages share: one dialog orchestrator bound to one
// list, and the notifier every outcome is reported through.
type base struct {
	dlg    *dialog.Orchestrator
	notify ports.Notifier
	log    zerolog.Logger
}

func (b *base) Dialog() dialog.Session { return b.dlg.Current() }

func (b *base) DialogPhase() dialog.Phase { return b.dlg.Phase() }

func (b *base) DialogErr() error { return b.dlg.Err() }

func (b *base) session(kind dialog.Kind) (dialog.Session, error) {
	s := b.dlg.Current()
	if s.Kind != kind {
		return dialog.Session{}, ErrNoDialog
	}
	return s, nil
}

// run issues fn for session s and settles the outcome on the dialog. A
// stale outcome is dropped without notification and run returns
// ErrSuperseded.
func (b *base) run(ctx context.Context, s dialog.Session, fn func(ctx context.Context) error, apply func()) (bool, error) {
	if !b.dlg.Begin(s) {
		return false, ErrNoDialog
	}
	err := fn(ctx)
	if !b.dlg.Complete(s, err, apply) {
		return false, ErrSuperseded
	}
	if err != nil {
		b.report(s.Kind.String()+" failed", err)
		return false, err
	}
	return true, nil
}

// submit is run for dialogs that close once their job is accepted. A
// superseded submit returns nil.
func (b *base) submit(ctx context.Context, s dialog.Session, okMsg string, fn func(ctx context.Context) error) error {
	ok, err := b.run(ctx, s, fn, nil)
	if !ok {
		if errors.Is(err, ErrSuperseded) {
			return nil
		}
		return err
	}
	b.notify.Success(okMsg)
	return b.closeSession(ctx, s)
}

func (b *base) closeSession(ctx context.Context, s dialog.Session) error {
	return b.settle(b.dlg.CloseSession(ctx, s))
}

func (b *base) close(ctx context.Context) error {
	return b.settle(b.dlg.Close(ctx))
}

// settle reports a failed post-close refresh. A superseded refresh is not
// a failure.
func (b *base) settle(err error) error {
	if err == nil || errors.Is(err, listing.ErrStale) {
		return nil
	}
	b.notify.Error("refresh failed", err)
	return err
}

func (b *base) report(what string, err error) {
	var fe *types.FieldError
	if errors.As(err, &fe) {
		b.notify.Warning(err.Error())
		return
	}
	b.log.Debug().Err(err).Msg(what)
	b.notify.Error(what, err)
}

// listErr reports a failed list load. The list keeps its own error state.
func (b *base) listErr(what string, err error) error {
	if err == nil || errors.Is(err, listing.ErrStale) {
		return nil
	}
	b.report(what, err)
	return err
}
