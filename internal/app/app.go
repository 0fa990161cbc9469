package app

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/pages"
	"github.com/forPelevin/wandlung/internal/ports"
	"github.com/forPelevin/wandlung/internal/ports/adapters/mediaplayer"
	"github.com/forPelevin/wandlung/internal/ports/adapters/wandlungapi"
	"github.com/forPelevin/wandlung/internal/usecase"
)

// App is the wired client. Requests have no client-side timeout; callers
// bound them with their context.
type App struct {
	Usecase   usecase.Usecase
	Videos    *pages.VideosPage
	Subtitles *pages.SubtitlesPage
	Player    *mediaplayer.Adapter
}

func New(cfg Config, notify ports.Notifier, log zerolog.Logger) *App {
	// adapters
	api := wandlungapi.New(cfg.BaseURL, &http.Client{}, log)
	player := mediaplayer.New(cfg.PlayerPath, cfg.FFprobePath)

	uc := usecase.New(usecase.Deps{
		API:    api,
		Prober: player,
	})

	return &App{
		Usecase: uc,
		Videos:  pages.NewVideosPage(uc, notify, log),
		Subtitles: pages.NewSubtitlesPage(uc, player, notify, log, pages.SubtitlesOptions{
			OutDir:   cfg.OutDir,
			CacheDir: cfg.CacheDir,
		}),
		Player: player,
	}
}
