package ports

import (
	"context"
	"time"

	"github.com/forPelevin/wandlung/internal/types"
)

// API is the remote processing service. Every method issues exactly one
// HTTP call and never retries.
type API interface {
	ListVideos(ctx context.Context) ([]types.Video, error)
	ListRecentVideos(ctx context.Context) ([]types.Video, error)
	GetVideo(ctx context.Context, videoID string) (types.VideoInfo, error)
	DownloadVideo(ctx context.Context, url string) error
	DeleteVideo(ctx context.Context, videoID string) error
	TranscribeVideo(ctx context.Context, videoID string) error

	ListSubtitles(ctx context.Context, page, pageSize int) (types.Page[types.Subtitle], error)
	GetSubtitle(ctx context.Context, id int) (types.Subtitle, error)
	SubtitleVTT(ctx context.Context, id int) (string, error)
	UpdateSubtitle(ctx context.Context, id int, content string) error
	DeleteSubtitle(ctx context.Context, id int) error
	TranslateSubtitle(ctx context.Context, id int, req types.TranslateRequest) error
	BurnSubtitle(ctx context.Context, id int, rng types.BurnRange) (types.Attachment, error)

	GetSettings(ctx context.Context) (types.Settings, error)
	SaveSettings(ctx context.Context, s types.Settings) (types.Settings, error)
}

// Media is a playback surface that must be silenced when its dialog closes.
type Media interface {
	Play(ctx context.Context, videoURL, subtitlePath string) error
	Stop() error
	Rewind()
}

type Prober interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Notifier shows transient user-visible messages.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string, err error)
}
