package pages

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/ports/adapters/wandlungapi"
	"github.com/forPelevin/wandlung/internal/types"
	"github.com/forPelevin/wandlung/internal/usecase"
)

// fakeServer is an in-memory stand-in for the processing API.
type fakeServer struct {
	mu        sync.Mutex
	videos    []types.Video
	subtitles []types.Subtitle

	subtitlePages []int
	videoLists    int
	requests      []string
	translations  []map[string]any
	edits         map[int]string

	translateStatus int
	// translateHold, when set, parks translate requests until closed.
	translateHold    chan struct{}
	translateArrived chan struct{}
	editReply        string
	// subtitleHold parks single-subtitle fetches the same way.
	subtitleHold    chan struct{}
	subtitleArrived chan struct{}
}

func newFakeServer(nVideos, nSubtitles int) *fakeServer {
	f := &fakeServer{edits: map[int]string{}, translateStatus: http.StatusOK}
	for i := 0; i < nVideos; i++ {
		f.videos = append(f.videos, types.Video{
			VideoID:  fmt.Sprintf("v%02d", i+1),
			Title:    gofakeit.Sentence(4),
			Duration: float64(gofakeit.Number(30, 900)),
		})
	}
	for i := 0; i < nSubtitles; i++ {
		v := fmt.Sprintf("v%02d", i%max(nVideos, 1)+1)
		f.subtitles = append(f.subtitles, types.Subtitle{
			ID:       nSubtitles - i,
			VideoID:  v,
			Language: gofakeit.Language(),
			Content:  "1\n00:00:01,000 --> 00:00:03,000\n" + gofakeit.Sentence(5) + "\n",
		})
	}
	return f
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/videos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.videoLists++
		out := append([]types.Video(nil), f.videos...)
		f.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("GET /api/videos/recent", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		out := append([]types.Video(nil), f.videos...)
		f.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("GET /api/videos/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.VideoInfo{VideoURL: "http://media.local/" + r.PathValue("id") + ".mp4", Title: "video"})
	})
	mux.HandleFunc("POST /api/videos/download", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.videos = append(f.videos, types.Video{VideoID: "new", Title: body["url"]})
		f.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("DELETE /api/videos/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, v := range f.videos {
			if v.VideoID == r.PathValue("id") {
				f.videos = append(f.videos[:i], f.videos[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.Error(w, `{"detail":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/videos/{id}/transcribe", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /api/subtitles", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		f.mu.Lock()
		f.subtitlePages = append(f.subtitlePages, page)
		all := append([]types.Subtitle(nil), f.subtitles...)
		f.mu.Unlock()

		from, to := (page-1)*size, page*size
		from, to = min(max(from, 0), len(all)), min(to, len(all))
		writeJSON(w, map[string]any{"count": len(all), "next": nil, "previous": nil, "items": all[from:to]})
	})
	mux.HandleFunc("GET /api/subtitles/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		hold, arrived := f.subtitleHold, f.subtitleArrived
		f.mu.Unlock()
		if arrived != nil {
			arrived <- struct{}{}
		}
		if hold != nil {
			<-hold
		}
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.subtitles {
			if s.ID == id {
				if c, ok := f.edits[id]; ok {
					s.Content = c
				}
				writeJSON(w, s)
				return
			}
		}
		http.Error(w, `{"detail":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("PUT /api/subtitles/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id, _ := strconv.Atoi(r.PathValue("id"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		reply := f.editReply
		if reply == "" {
			f.edits[id] = body["content"]
		}
		f.mu.Unlock()
		if reply != "" {
			_, _ = io.WriteString(w, reply)
			return
		}
		writeJSON(w, map[string]any{"success": true})
	})
	mux.HandleFunc("DELETE /api/subtitles/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/subtitles/{id}/translate", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.translations = append(f.translations, body)
		hold, arrived, status := f.translateHold, f.translateArrived, f.translateStatus
		f.mu.Unlock()
		if arrived != nil {
			arrived <- struct{}{}
		}
		if hold != nil {
			<-hold
		}
		if status != http.StatusOK {
			http.Error(w, `{"detail":"translator unavailable"}`, status)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/subtitles/{id}/burn", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["start_seconds"] == nil && body["end_seconds"] == nil {
			w.Header().Set("Content-Disposition", `attachment; filename="full-with-`+r.PathValue("id")+`.mp4"`)
		} else {
			w.Header().Set("Content-Disposition", `attachment; filename="clip.mp4"`)
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("\x00\x00\x00\x18ftypmp42fake"))
	})
	return mux
}

func (f *fakeServer) record(r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeServer) pagesRequested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.subtitlePages...)
}

func (f *fakeServer) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeServer) videoListCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.videoLists
}

func (f *fakeServer) editOf(id int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[id]
}

func (f *fakeServer) translationBodies() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.translations...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	warnings []string
	errors   []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.success = append(n.success, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Warning(msg string) {
	n.mu.Lock()
	n.warnings = append(n.warnings, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string, err error) {
	n.mu.Lock()
	n.errors = append(n.errors, fmt.Sprintf("%s: %v", msg, err))
	n.mu.Unlock()
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func newUsecase(t *testing.T, f *fakeServer) usecase.Usecase {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	api := wandlungapi.New(srv.URL, srv.Client(), zerolog.Nop())
	return usecase.New(usecase.Deps{API: api})
}
