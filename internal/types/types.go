package types

import (
	"io"
	"math"
	"net/http"
	"time"
)

type Video struct {
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// DurationSeconds is the whole-second duration; the API sends a float.
func (v Video) DurationSeconds() int {
	if v.Duration <= 0 {
		return 0
	}
	return int(math.Floor(v.Duration))
}

type VideoInfo struct {
	VideoID      string  `json:"video_id,omitempty"`
	VideoURL     string  `json:"video_url"`
	Title        string  `json:"title"`
	Duration     float64 `json:"duration,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// Subtitle covers both the list row and the detail payload. List rows carry
// VideoID so the player can be opened without another lookup.
type Subtitle struct {
	ID                int       `json:"id"`
	VideoID           string    `json:"video_id"`
	VideoTitle        string    `json:"video_title,omitempty"`
	VideoThumbnailURL string    `json:"video_thumbnail_url,omitempty"`
	Language          string    `json:"language"`
	IsTranscribed     bool      `json:"is_transcribed"`
	Content           string    `json:"content,omitempty"`
	Created           time.Time `json:"created"`
	Updated           time.Time `json:"updated"`
}

type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Items    []T     `json:"items"`
}

type Settings struct {
	OpenAIAPIKey    *string `json:"openai_api_key"`
	AnthropicAPIKey *string `json:"anthropic_api_key"`
	MaxVideoHeight  int     `json:"max_video_height"`
	UseHEAACV2      bool    `json:"use_he_aac_v2"`
}

// VideoHeights are the download resolutions the server accepts.
var VideoHeights = []int{240, 360, 480, 720, 1080}

type TranslateRequest struct {
	TargetLanguage string   `json:"target_language"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

// BurnRange bounds are sent as JSON null when unset.
type BurnRange struct {
	StartSeconds *int `json:"start_seconds"`
	EndSeconds   *int `json:"end_seconds"`
}

// Attachment is a binary response handed over unread.
type Attachment struct {
	Header http.Header
	Body   io.ReadCloser
}
