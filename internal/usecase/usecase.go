package usecase

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/wandlung/internal/domain/subtitles"
	"github.com/forPelevin/wandlung/internal/domain/timerange"
	"github.com/forPelevin/wandlung/internal/download"
	"github.com/forPelevin/wandlung/internal/ports"
	"github.com/forPelevin/wandlung/internal/types"
)

const maxLanguageLen = 32

type Deps struct {
	API ports.API
	// Prober is optional; without it saved clips are not probed.
	Prober ports.Prober
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

func (u Usecase) ListVideos(ctx context.Context) ([]types.Video, error) {
	return u.d.API.ListVideos(ctx)
}

func (u Usecase) ListSubtitles(ctx context.Context, page, pageSize int) (types.Page[types.Subtitle], error) {
	return u.d.API.ListSubtitles(ctx, page, pageSize)
}

func (u Usecase) DownloadVideo(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return &types.FieldError{Field: "url", Reason: "required"}
	}
	pu, err := url.Parse(rawURL)
	if err != nil || (pu.Scheme != "http" && pu.Scheme != "https") || pu.Host == "" {
		return &types.FieldError{Field: "url", Reason: "must be an http(s) link"}
	}
	return u.d.API.DownloadVideo(ctx, rawURL)
}

func (u Usecase) DeleteVideo(ctx context.Context, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return &types.FieldError{Field: "video_id", Reason: "required"}
	}
	return u.d.API.DeleteVideo(ctx, videoID)
}

func (u Usecase) RecentVideos(ctx context.Context) ([]types.Video, error) {
	return u.d.API.ListRecentVideos(ctx)
}

// PickVideo resolves a picker query: an exact video id first, then the
// closest fuzzy title match.
func PickVideo(videos []types.Video, query string) (types.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.Video{}, &types.FieldError{Field: "video", Reason: "please select a video"}
	}
	for _, v := range videos {
		if v.VideoID == query {
			return v, nil
		}
	}
	titles := make([]string, len(videos))
	for i, v := range videos {
		titles[i] = v.Title
	}
	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	if len(ranks) == 0 {
		return types.Video{}, &types.FieldError{Field: "video", Reason: fmt.Sprintf("no video matches %q", query)}
	}
	sort.Stable(ranks)
	return videos[ranks[0].OriginalIndex], nil
}

func (u Usecase) Transcribe(ctx context.Context, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return &types.FieldError{Field: "video", Reason: "please select a video"}
	}
	return u.d.API.TranscribeVideo(ctx, videoID)
}

type TranslateForm struct {
	TargetLanguage string
	// Temperature is optional text, a decimal in [0,1].
	Temperature string
}

func ParseTranslateForm(f TranslateForm) (types.TranslateRequest, error) {
	lang := strings.TrimSpace(f.TargetLanguage)
	switch {
	case lang == "":
		return types.TranslateRequest{}, &types.FieldError{Field: "target_language", Reason: "required"}
	case utf8.RuneCountInString(lang) > maxLanguageLen:
		return types.TranslateRequest{}, &types.FieldError{Field: "target_language", Reason: fmt.Sprintf("at most %d characters", maxLanguageLen)}
	}
	req := types.TranslateRequest{TargetLanguage: lang}

	if t := strings.TrimSpace(f.Temperature); t != "" {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return types.TranslateRequest{}, &types.FieldError{Field: "temperature", Reason: "must be a number"}
		}
		if v < 0 || v > 1 {
			return types.TranslateRequest{}, &types.FieldError{Field: "temperature", Reason: "must be between 0 and 1"}
		}
		req.Temperature = &v
	}
	return req, nil
}

func (u Usecase) Translate(ctx context.Context, subtitleID int, f TranslateForm) error {
	req, err := ParseTranslateForm(f)
	if err != nil {
		return err
	}
	return u.d.API.TranslateSubtitle(ctx, subtitleID, req)
}

func (u Usecase) LoadSubtitle(ctx context.Context, id int) (types.Subtitle, error) {
	return u.d.API.GetSubtitle(ctx, id)
}

func (u Usecase) SaveSubtitle(ctx context.Context, id int, content string) error {
	return u.d.API.UpdateSubtitle(ctx, id, content)
}

func (u Usecase) DeleteSubtitle(ctx context.Context, id int) error {
	return u.d.API.DeleteSubtitle(ctx, id)
}

func (u Usecase) SubtitleVTT(ctx context.Context, id int) (string, error) {
	return u.d.API.SubtitleVTT(ctx, id)
}

type BurnInput struct {
	Start  string
	End    string
	OutDir string
}

type BurnResult struct {
	File download.Saved
	// Duration is zero when the clip could not be probed.
	Duration time.Duration
}

// Burn validates both bounds before any request goes out, then saves the
// rendered clip into OutDir.
func (u Usecase) Burn(ctx context.Context, subtitleID int, in BurnInput) (BurnResult, error) {
	rng, err := timerange.ParseRange(in.Start, in.End)
	if err != nil {
		return BurnResult{}, err
	}
	if rng.StartSeconds != nil && rng.EndSeconds != nil && *rng.EndSeconds <= *rng.StartSeconds {
		return BurnResult{}, &types.FieldError{Field: "end_seconds", Reason: "must be after start"}
	}

	att, err := u.d.API.BurnSubtitle(ctx, subtitleID, rng)
	if err != nil {
		return BurnResult{}, err
	}
	saved, err := download.Save(in.OutDir, att)
	if err != nil {
		return BurnResult{}, err
	}

	res := BurnResult{File: saved}
	if u.d.Prober != nil {
		if d, err := u.d.Prober.ProbeDuration(ctx, saved.Path); err == nil {
			res.Duration = d
		}
	}
	return res, nil
}

type PlayerSource struct {
	Video    types.VideoInfo
	Subtitle types.Subtitle
}

// PlayerSource fetches the video and subtitle details concurrently. Either
// failure fails the whole call; nothing partial is returned.
func (u Usecase) PlayerSource(ctx context.Context, videoID string, subtitleID int) (PlayerSource, error) {
	var (
		src PlayerSource
		g   errgroup.Group
	)
	g.Go(func() error {
		v, err := u.d.API.GetVideo(ctx, videoID)
		if err != nil {
			return err
		}
		src.Video = v
		return nil
	})
	g.Go(func() error {
		s, err := u.d.API.GetSubtitle(ctx, subtitleID)
		if err != nil {
			return err
		}
		src.Subtitle = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return PlayerSource{}, err
	}
	return src, nil
}

// WriteTrack stores the subtitle as a WebVTT file for the player.
func WriteTrack(dir string, sub types.Subtitle) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, fmt.Sprintf("subtitle-%d.vtt", sub.ID))
	if err := os.WriteFile(p, []byte(subtitles.ToWebVTT(sub.Content)), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func (u Usecase) Settings(ctx context.Context) (types.Settings, error) {
	return u.d.API.GetSettings(ctx)
}

func ValidateSettings(s types.Settings) error {
	if !slices.Contains(types.VideoHeights, s.MaxVideoHeight) {
		return &types.FieldError{Field: "max_video_height", Reason: fmt.Sprintf("must be one of %v", types.VideoHeights)}
	}
	return nil
}

func (u Usecase) SaveSettings(ctx context.Context, s types.Settings) (types.Settings, error) {
	if err := ValidateSettings(s); err != nil {
		return types.Settings{}, err
	}
	return u.d.API.SaveSettings(ctx, s)
}
