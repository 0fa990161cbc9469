package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/forPelevin/wandlung/internal/ports/adapters/wandlungapi"
)

type Config struct {
	BaseURL      string   `env:"WANDLUNG_BASE_URL" env-default:"http://localhost:8000" env-description:"processing API base URL"`
	AllowedHosts []string `env:"WANDLUNG_ALLOWED_HOSTS" env-separator:"," env-description:"hosts the base URL may point at"`

	LogLevel  string `env:"WANDLUNG_LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"WANDLUNG_LOG_FORMAT" env-default:"console"`

	// OutDir receives burned clips.
	OutDir string `env:"WANDLUNG_OUT_DIR" env-default:"."`
	// CacheDir holds subtitle tracks written for the player.
	CacheDir string `env:"WANDLUNG_CACHE_DIR" env-default:".cache"`

	PlayerPath  string `env:"WANDLUNG_PLAYER" env-default:"mpv"`
	FFprobePath string `env:"WANDLUNG_FFPROBE" env-default:"ffprobe"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OutDir) == "" {
		return errors.New("WANDLUNG_OUT_DIR is empty")
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		return errors.New("WANDLUNG_CACHE_DIR is empty")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("WANDLUNG_LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return wandlungapi.ValidateBaseURL(c.BaseURL, c.AllowedHosts)
}
