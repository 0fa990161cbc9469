package wandlungapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/wandlung/internal/types"
)

func newTestAdapter(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client(), zerolog.Nop())
}

func TestListSubtitles_SendsPaginationAndToleratesLinks(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/subtitles", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		_, _ = io.WriteString(w, `{"count":25,"next":"http://x/api/subtitles?page=4","previous":null,
			"items":[{"id":7,"video_id":"abc","language":"English","is_transcribed":true}]}`)
	})

	page, err := a.ListSubtitles(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Count)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "abc", page.Items[0].VideoID)
	require.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)
}

func TestListVideos_FloatDuration(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos", r.URL.Path)
		_, _ = io.WriteString(w, `[{"video_id":"v1","title":"t","duration":212.0,"width":1280,"height":720,"thumbnail_url":"u"}]`)
	})

	videos, err := a.ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, 212, videos[0].DurationSeconds())
}

func TestBurnSubtitle_SendsNullBoundsAndReturnsBody(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/subtitles/5/burn", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"start_seconds":null,"end_seconds":null}`, string(b))
		w.Header().Set("Content-Disposition", `attachment; filename="abc-with-5.mp4"`)
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("binary"))
	})

	att, err := a.BurnSubtitle(context.Background(), 5, types.BurnRange{})
	require.NoError(t, err)
	defer att.Body.Close()
	assert.Equal(t, `attachment; filename="abc-with-5.mp4"`, att.Header.Get("Content-Disposition"))
	b, err := io.ReadAll(att.Body)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(b))
}

func TestBurnSubtitle_SendsBounds(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"start_seconds":10,"end_seconds":null}`, string(b))
	})
	start := 10
	att, err := a.BurnSubtitle(context.Background(), 1, types.BurnRange{StartSeconds: &start})
	require.NoError(t, err)
	att.Body.Close()
}

func TestUpdateSubtitle_InBandFailure(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new text", body["content"])
		_, _ = io.WriteString(w, `{"success":false,"message":"subtitle is locked"}`)
	})

	err := a.UpdateSubtitle(context.Background(), 9, "new text")
	var re *types.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "subtitle is locked", re.Message)
}

func TestUpdateSubtitle_Success(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	require.NoError(t, a.UpdateSubtitle(context.Background(), 9, gofakeit.Sentence(8)))
}

func TestTranslateSubtitle_OmitsUnsetTemperature(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/subtitles/4/translate", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"target_language":"Korean"}`, string(b))
	})
	require.NoError(t, a.TranslateSubtitle(context.Background(), 4, types.TranslateRequest{TargetLanguage: "Korean"}))
}

func TestNon2xxIsRequestError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
	})

	err := a.DeleteVideo(context.Background(), "missing")
	var re *types.RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Equal(t, "Not Found", re.Message)
	assert.Equal(t, "delete video", re.Op)
}

func TestTransportFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := New(url, nil, zerolog.Nop())
	err := a.TranscribeVideo(context.Background(), "v1")
	var re *types.RequestError
	require.True(t, errors.As(err, &re))
	assert.Zero(t, re.Status)
	assert.Error(t, re.Err)
}

func TestErrorBodyRedactsKnownKeys(t *testing.T) {
	key := "sk-ant-" + gofakeit.LetterN(24)
	calls := 0
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, `{"openai_api_key":null,"anthropic_api_key":"`+key+`","max_video_height":720,"use_he_aac_v2":true}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "upstream rejected key "+key)
	})

	s, err := a.GetSettings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.AnthropicAPIKey)
	assert.Nil(t, s.OpenAIAPIKey)

	_, err = a.SaveSettings(context.Background(), s)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), key)
	assert.Contains(t, err.Error(), "[REDACTED]")
	assert.Equal(t, 2, calls)
}

func TestSubtitleVTT(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/subtitles/3.vtt", r.URL.Path)
		_, _ = io.WriteString(w, "WEBVTT\n")
	})
	got, err := a.SubtitleVTT(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n", got)
}

func TestVideoIDIsPathEscaped(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos/a%2Fb", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"video_url":"http://cdn/v.mp4","title":"x"}`)
	})
	info, err := a.GetVideo(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/v.mp4", info.VideoURL)
}
