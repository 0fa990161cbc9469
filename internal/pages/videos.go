package pages

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/dialog"
	"github.com/forPelevin/wandlung/internal/listing"
	"github.com/forPelevin/wandlung/internal/ports"
	"github.com/forPelevin/wandlung/internal/types"
	"github.com/forPelevin/wandlung/internal/usecase"
)

type VideosPage struct {
	base
	uc   usecase.Usecase
	list *listing.Controller[types.Video]
}

func NewVideosPage(uc usecase.Usecase, notify ports.Notifier, log zerolog.Logger) *VideosPage {
	log = log.With().Str("page", "videos").Logger()
	// /api/videos returns the whole collection; pages are cut locally.
	fetch := func(ctx context.Context, page, pageSize int) (types.Page[types.Video], error) {
		all, err := uc.ListVideos(ctx)
		if err != nil {
			return types.Page[types.Video]{}, err
		}
		return listing.SlicePage(all, page, pageSize), nil
	}
	list := listing.New[types.Video](fetch, PageSize, log)
	return &VideosPage{
		base: base{dlg: dialog.New(list, nil, log), notify: notify, log: log},
		uc:   uc,
		list: list,
	}
}

func (p *VideosPage) Mount(ctx context.Context) error {
	return p.listErr("load videos", p.list.Load(ctx))
}

func (p *VideosPage) SetPage(ctx context.Context, page int) error {
	return p.listErr("load videos", p.list.SetPage(ctx, page))
}

func (p *VideosPage) View() listing.View[types.Video] { return p.list.View() }

func (p *VideosPage) OpenAddVideo() dialog.Session {
	return p.dlg.Open(dialog.AddVideo, dialog.Target{})
}

func (p *VideosPage) SubmitAddVideo(ctx context.Context, url string) error {
	s, err := p.session(dialog.AddVideo)
	if err != nil {
		return err
	}
	return p.submit(ctx, s, "download started", func(ctx context.Context) error {
		return p.uc.DownloadVideo(ctx, url)
	})
}

func (p *VideosPage) OpenDeleteVideo(videoID string) dialog.Session {
	return p.dlg.Open(dialog.DeleteVideo, dialog.Target{VideoID: videoID})
}

func (p *VideosPage) ConfirmDeleteVideo(ctx context.Context) error {
	s, err := p.session(dialog.DeleteVideo)
	if err != nil {
		return err
	}
	return p.submit(ctx, s, "video deleted", func(ctx context.Context) error {
		return p.uc.DeleteVideo(ctx, s.Target.VideoID)
	})
}

// Close closes whatever dialog is open; add and delete refresh the list.
func (p *VideosPage) Close(ctx context.Context) error { return p.close(ctx) }
