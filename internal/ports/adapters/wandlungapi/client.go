package wandlungapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/types"
)

const (
	errorBodyLimit  = 4 << 10
	requestIDHeader = "X-Request-ID"
)

type Adapter struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	mu      sync.RWMutex
	secrets []string
}

// New returns a client without a request timeout: transcription and
// rendering jobs run for as long as the server needs. Cancel ctx instead.
func New(baseURL string, client *http.Client, log zerolog.Logger) *Adapter {
	if client == nil {
		client = &http.Client{}
	}
	return &Adapter{
		baseURL: normalizeBaseURL(baseURL),
		client:  client,
		log:     log.With().Str("component", "api").Logger(),
	}
}

func (a *Adapter) ListVideos(ctx context.Context) ([]types.Video, error) {
	var out []types.Video
	if err := a.doJSON(ctx, "list videos", http.MethodGet, "/api/videos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) ListRecentVideos(ctx context.Context) ([]types.Video, error) {
	var out []types.Video
	if err := a.doJSON(ctx, "list recent videos", http.MethodGet, "/api/videos/recent", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) GetVideo(ctx context.Context, videoID string) (types.VideoInfo, error) {
	var out types.VideoInfo
	err := a.doJSON(ctx, "get video", http.MethodGet, "/api/videos/"+url.PathEscape(videoID), nil, &out)
	return out, err
}

func (a *Adapter) DownloadVideo(ctx context.Context, videoURL string) error {
	body := map[string]string{"url": videoURL}
	return a.doJSON(ctx, "download video", http.MethodPost, "/api/videos/download", body, nil)
}

func (a *Adapter) DeleteVideo(ctx context.Context, videoID string) error {
	return a.doJSON(ctx, "delete video", http.MethodDelete, "/api/videos/"+url.PathEscape(videoID), nil, nil)
}

func (a *Adapter) TranscribeVideo(ctx context.Context, videoID string) error {
	return a.doJSON(ctx, "transcribe video", http.MethodPost, "/api/videos/"+url.PathEscape(videoID)+"/transcribe", nil, nil)
}

func (a *Adapter) ListSubtitles(ctx context.Context, page, pageSize int) (types.Page[types.Subtitle], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var out types.Page[types.Subtitle]
	err := a.doJSON(ctx, "list subtitles", http.MethodGet, "/api/subtitles?"+q.Encode(), nil, &out)
	return out, err
}

func (a *Adapter) GetSubtitle(ctx context.Context, id int) (types.Subtitle, error) {
	var out types.Subtitle
	err := a.doJSON(ctx, "get subtitle", http.MethodGet, subtitlePath(id), nil, &out)
	return out, err
}

func (a *Adapter) SubtitleVTT(ctx context.Context, id int) (string, error) {
	const op = "get subtitle vtt"

	resp, err := a.do(ctx, op, http.MethodGet, subtitlePath(id)+".vtt", nil, "text/vtt")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &types.RequestError{Op: op, Err: err}
	}
	return string(b), nil
}

func (a *Adapter) UpdateSubtitle(ctx context.Context, id int, content string) error {
	const op = "update subtitle"

	var out struct {
		Success bool    `json:"success"`
		Message *string `json:"message"`
	}
	body := map[string]string{"content": content}
	if err := a.doJSON(ctx, op, http.MethodPut, subtitlePath(id), body, &out); err != nil {
		return err
	}
	if !out.Success {
		msg := "server rejected the update"
		if out.Message != nil && strings.TrimSpace(*out.Message) != "" {
			msg = *out.Message
		}
		return &types.RequestError{Op: op, Status: http.StatusOK, Message: msg}
	}
	return nil
}

func (a *Adapter) DeleteSubtitle(ctx context.Context, id int) error {
	return a.doJSON(ctx, "delete subtitle", http.MethodDelete, subtitlePath(id), nil, nil)
}

func (a *Adapter) TranslateSubtitle(ctx context.Context, id int, req types.TranslateRequest) error {
	return a.doJSON(ctx, "translate subtitle", http.MethodPost, subtitlePath(id)+"/translate", req, nil)
}

// BurnSubtitle hands the response body to the caller unread; the caller
// must close it.
func (a *Adapter) BurnSubtitle(ctx context.Context, id int, rng types.BurnRange) (types.Attachment, error) {
	resp, err := a.do(ctx, "burn subtitle", http.MethodPost, subtitlePath(id)+"/burn", rng, "*/*")
	if err != nil {
		return types.Attachment{}, err
	}
	return types.Attachment{Header: resp.Header, Body: resp.Body}, nil
}

func (a *Adapter) GetSettings(ctx context.Context) (types.Settings, error) {
	var out types.Settings
	if err := a.doJSON(ctx, "get settings", http.MethodGet, "/api/settings", nil, &out); err != nil {
		return types.Settings{}, err
	}
	a.rememberSecrets(out)
	return out, nil
}

func (a *Adapter) SaveSettings(ctx context.Context, s types.Settings) (types.Settings, error) {
	a.rememberSecrets(s)
	var out types.Settings
	if err := a.doJSON(ctx, "save settings", http.MethodPost, "/api/settings", s, &out); err != nil {
		return types.Settings{}, err
	}
	a.rememberSecrets(out)
	return out, nil
}

func subtitlePath(id int) string {
	return "/api/subtitles/" + strconv.Itoa(id)
}

func (a *Adapter) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	resp, err := a.do(ctx, op, method, path, in, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &types.RequestError{Op: op, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// do issues one request. On success the caller owns resp.Body; any failure
// comes back as *types.RequestError with the body already closed.
func (a *Adapter) do(ctx context.Context, op, method, path string, in any, accept string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", accept)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Debug().Err(err).Str("request_id", reqID).Str("method", method).Str("path", path).Msg("request failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &types.RequestError{Op: op, Err: err}
	}
	a.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		rb, readErr := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		if readErr != nil {
			return nil, &types.RequestError{Op: op, Status: resp.StatusCode, Err: readErr}
		}
		return nil, &types.RequestError{Op: op, Status: resp.StatusCode, Message: a.errorMessage(rb)}
	}
	return resp, nil
}

// errorMessage prefers the API's {"detail": ...} or {"message": ...} field
// and falls back to the raw body.
func (a *Adapter) errorMessage(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			msg = d
		case nil:
			msg = payload.Message
		default:
			if b, err := json.Marshal(d); err == nil {
				msg = string(b)
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return truncate(a.redact(msg), 400)
}

func (a *Adapter) rememberSecrets(s types.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range []*string{s.OpenAIAPIKey, s.AnthropicAPIKey} {
		if k == nil || len(*k) < 8 {
			continue
		}
		known := false
		for _, have := range a.secrets {
			if have == *k {
				known = true
				break
			}
		}
		if !known {
			a.secrets = append(a.secrets, *k)
		}
	}
}

func (a *Adapter) redact(s string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return redactSecrets(s, a.secrets...)
}
