package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/dialog"
	"github.com/forPelevin/wandlung/internal/domain/timerange"
	"github.com/forPelevin/wandlung/internal/listing"
	"github.com/forPelevin/wandlung/internal/ports"
	"github.com/forPelevin/wandlung/internal/types"
	"github.com/forPelevin/wandlung/internal/usecase"
)

type SubtitlesOptions struct {
	// OutDir receives burned clips.
	OutDir string
	// CacheDir holds WebVTT tracks written for the player.
	CacheDir string
}

// SubtitlesPage owns the subtitle list and the dialogs that act on it.
// Dialog-private state (picker choices, editor copy, player source) lives
// here and is dropped whenever a different dialog opens.
type SubtitlesPage struct {
	base
	uc    usecase.Usecase
	list  *listing.Controller[types.Subtitle]
	media ports.Media
	opts  SubtitlesOptions

	mu      sync.Mutex
	recent  []types.Video
	editing types.Subtitle
	source  usecase.PlayerSource
	track   string
}

func NewSubtitlesPage(uc usecase.Usecase, media ports.Media, notify ports.Notifier, log zerolog.Logger, opts SubtitlesOptions) *SubtitlesPage {
	log = log.With().Str("page", "subtitles").Logger()
	list := listing.New[types.Subtitle](uc.ListSubtitles, PageSize, log)
	return &SubtitlesPage{
		base:  base{dlg: dialog.New(list, media, log), notify: notify, log: log},
		uc:    uc,
		list:  list,
		media: media,
		opts:  opts,
	}
}

func (p *SubtitlesPage) Mount(ctx context.Context) error {
	return p.listErr("load subtitles", p.list.Load(ctx))
}

func (p *SubtitlesPage) SetPage(ctx context.Context, page int) error {
	return p.listErr("load subtitles", p.list.SetPage(ctx, page))
}

func (p *SubtitlesPage) View() listing.View[types.Subtitle] { return p.list.View() }

// open replaces the dialog first so no completion of the old one can
// write into the cleared state.
func (p *SubtitlesPage) open(kind dialog.Kind, t dialog.Target) dialog.Session {
	s := p.dlg.Open(kind, t)
	p.reset()
	return s
}

func (p *SubtitlesPage) reset() {
	p.mu.Lock()
	p.recent = nil
	p.editing = types.Subtitle{}
	p.source = usecase.PlayerSource{}
	p.track = ""
	p.mu.Unlock()
}

// OpenTranscribe opens the picker and loads the recent videos it offers.
func (p *SubtitlesPage) OpenTranscribe(ctx context.Context) ([]types.Video, error) {
	s := p.open(dialog.Transcribe, dialog.Target{})
	var videos []types.Video
	_, err := p.run(ctx, s, func(ctx context.Context) error {
		var err error
		videos, err = p.uc.RecentVideos(ctx)
		return err
	}, func() {
		p.mu.Lock()
		p.recent = videos
		p.mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	return p.Recent(), nil
}

func (p *SubtitlesPage) Recent() []types.Video {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Video(nil), p.recent...)
}

// SubmitTranscribe picks a video from the loaded choices by id or title.
func (p *SubtitlesPage) SubmitTranscribe(ctx context.Context, query string) error {
	s, err := p.session(dialog.Transcribe)
	if err != nil {
		return err
	}
	recent := p.Recent()
	return p.submit(ctx, s, "transcription requested", func(ctx context.Context) error {
		v, err := usecase.PickVideo(recent, query)
		if err != nil {
			return err
		}
		p.log.Debug().Str("video_id", v.VideoID).Str("duration", timerange.Format(v.DurationSeconds())).Msg("transcribe")
		return p.uc.Transcribe(ctx, v.VideoID)
	})
}

func (p *SubtitlesPage) OpenTranslate(subtitleID int) dialog.Session {
	return p.open(dialog.Translate, dialog.Target{SubtitleID: subtitleID})
}

func (p *SubtitlesPage) SubmitTranslate(ctx context.Context, form usecase.TranslateForm) error {
	s, err := p.session(dialog.Translate)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("translation to %s requested", form.TargetLanguage)
	return p.submit(ctx, s, msg, func(ctx context.Context) error {
		return p.uc.Translate(ctx, s.Target.SubtitleID, form)
	})
}

// OpenEdit always fetches the subtitle by id so the editor starts from the
// server copy, not from a list row.
func (p *SubtitlesPage) OpenEdit(ctx context.Context, subtitleID int) (types.Subtitle, error) {
	s := p.open(dialog.Edit, dialog.Target{SubtitleID: subtitleID})
	var sub types.Subtitle
	ok, err := p.run(ctx, s, func(ctx context.Context) error {
		var err error
		sub, err = p.uc.LoadSubtitle(ctx, subtitleID)
		return err
	}, func() {
		p.mu.Lock()
		p.editing = sub
		p.mu.Unlock()
	})
	if !ok {
		return types.Subtitle{}, err
	}
	return sub, nil
}

// Editing is the copy loaded by OpenEdit.
func (p *SubtitlesPage) Editing() types.Subtitle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing
}

func (p *SubtitlesPage) SubmitEdit(ctx context.Context, content string) error {
	s, err := p.session(dialog.Edit)
	if err != nil {
		return err
	}
	return p.submit(ctx, s, "subtitle saved", func(ctx context.Context) error {
		return p.uc.SaveSubtitle(ctx, s.Target.SubtitleID, content)
	})
}

func (p *SubtitlesPage) OpenBurn(subtitleID int) dialog.Session {
	return p.open(dialog.Burn, dialog.Target{SubtitleID: subtitleID})
}

// SubmitBurn renders the clip and saves it under OutDir. Range text is
// M:SS or MM:SS; empty means unbounded on that side.
func (p *SubtitlesPage) SubmitBurn(ctx context.Context, start, end string) (usecase.BurnResult, error) {
	s, err := p.session(dialog.Burn)
	if err != nil {
		return usecase.BurnResult{}, err
	}
	var res usecase.BurnResult
	ok, err := p.run(ctx, s, func(ctx context.Context) error {
		var err error
		res, err = p.uc.Burn(ctx, s.Target.SubtitleID, usecase.BurnInput{Start: start, End: end, OutDir: p.opts.OutDir})
		return err
	}, nil)
	if !ok {
		return usecase.BurnResult{}, err
	}
	msg := "saved " + res.File.Path
	if res.Duration > 0 {
		msg += " (" + timerange.Format(int(res.Duration.Seconds())) + ")"
	}
	p.notify.Success(msg)
	return res, p.closeSession(ctx, s)
}

func (p *SubtitlesPage) OpenDeleteSubtitle(subtitleID int) dialog.Session {
	return p.open(dialog.DeleteSubtitle, dialog.Target{SubtitleID: subtitleID})
}

func (p *SubtitlesPage) ConfirmDeleteSubtitle(ctx context.Context) error {
	s, err := p.session(dialog.DeleteSubtitle)
	if err != nil {
		return err
	}
	return p.submit(ctx, s, "subtitle deleted", func(ctx context.Context) error {
		return p.uc.DeleteSubtitle(ctx, s.Target.SubtitleID)
	})
}

// OpenPlayer takes the video id from the subtitle's row on the current
// page, then fetches video and subtitle details together. The track is
// written to CacheDir as WebVTT.
func (p *SubtitlesPage) OpenPlayer(ctx context.Context, subtitleID int) (usecase.PlayerSource, error) {
	row, found := p.row(subtitleID)
	if !found {
		err := &types.FieldError{Field: "subtitle", Reason: fmt.Sprintf("%d is not on the current page", subtitleID)}
		p.report("play failed", err)
		return usecase.PlayerSource{}, err
	}
	s := p.open(dialog.Play, dialog.Target{VideoID: row.VideoID, SubtitleID: subtitleID})

	var (
		src   usecase.PlayerSource
		track string
	)
	ok, err := p.run(ctx, s, func(ctx context.Context) error {
		var err error
		if src, err = p.uc.PlayerSource(ctx, row.VideoID, subtitleID); err != nil {
			return err
		}
		track, err = usecase.WriteTrack(p.opts.CacheDir, src.Subtitle)
		return err
	}, func() {
		p.mu.Lock()
		p.source = src
		p.track = track
		p.mu.Unlock()
	})
	if !ok {
		return usecase.PlayerSource{}, err
	}
	return src, nil
}

func (p *SubtitlesPage) row(subtitleID int) (types.Subtitle, bool) {
	for _, s := range p.list.View().Items {
		if s.ID == subtitleID {
			return s, true
		}
	}
	return types.Subtitle{}, false
}

// Play runs the loaded source in the media player. It blocks for as long
// as the player does.
func (p *SubtitlesPage) Play(ctx context.Context) error {
	if _, err := p.session(dialog.Play); err != nil {
		return err
	}
	if p.media == nil {
		return fmt.Errorf("no media player configured")
	}
	p.mu.Lock()
	url, track := p.source.Video.VideoURL, p.track
	p.mu.Unlock()
	if url == "" {
		return ErrNoDialog
	}
	if err := p.media.Play(ctx, url, track); err != nil {
		p.report("playback failed", err)
		return err
	}
	return nil
}

// Close closes the open dialog. Mutating dialogs refresh the list even
// when nothing was submitted; the player is stopped and rewound.
func (p *SubtitlesPage) Close(ctx context.Context) error {
	err := p.close(ctx)
	p.reset()
	return err
}
