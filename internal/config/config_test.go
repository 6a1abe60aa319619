package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LOG_LEVEL", "LOG_PLAINTEXT", "SERVER_ADDR", "SERVER_STATIC_DIR",
		"MANAGER_MAX_TOTAL", "MANAGER_MAX_ACTIVE", "MANAGER_MAX_FILES", "MANAGER_TASK_TTL",
		"LOADER_ALLOW_MIME", "PROVIDER_BASE_URL", "PROVIDER_TIMEOUT",
		"PATTERN_DEFAULT", "PATTERN_DATE_LAYOUT", "PATTERN_TIME_ZONE", "PATTERN_MATCH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	be.Err(t, err, nil)
	be.Equal(t, cfg.Logger.Level, slog.LevelInfo)
	be.Equal(t, cfg.Server.Addr, ":8080")
	be.Equal(t, cfg.Manager.MaxActive, 3)
	be.Equal(t, cfg.Provider.BaseURL, "https://api.fxtwitter.com")
	be.Equal(t, cfg.Pattern.Default, "{name}_{time}_@{id}")
	be.Equal(t, cfg.Pattern.DateLayout, "1/2/2006")
	be.True(t, cfg.Pattern.TimeZone == time.Local)
	be.Equal(t, len(cfg.Loader.AllowMIMETypes), 5)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_PLAINTEXT", "yes")
	t.Setenv("MANAGER_MAX_FILES", "7")
	t.Setenv("MANAGER_TASK_TTL", "90s")
	t.Setenv("LOADER_ALLOW_MIME", "image/jpeg video/mp4")
	t.Setenv("PROVIDER_BASE_URL", "http://localhost:9000/")
	t.Setenv("PATTERN_TIME_ZONE", "UTC")
	t.Setenv("PATTERN_DEFAULT", "{id}-{time}")

	cfg, err := Load()
	be.Err(t, err, nil)
	be.Equal(t, cfg.Logger.Level, slog.LevelDebug)
	be.True(t, cfg.Logger.Plaintext)
	be.Equal(t, cfg.Manager.MaxFiles, 7)
	be.Equal(t, cfg.Manager.TaskTTL, 90*time.Second)
	be.Equal(t, cfg.Loader.AllowMIMETypes, []string{"image/jpeg", "video/mp4"})
	be.Equal(t, cfg.Provider.BaseURL, "http://localhost:9000")
	be.Equal(t, cfg.Pattern.TimeZone.String(), "UTC")
	be.Equal(t, cfg.Pattern.Default, "{id}-{time}")
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("MANAGER_MAX_TOTAL", "many")
	t.Setenv("LOG_PLAINTEXT", "maybe")
	t.Setenv("PATTERN_TIME_ZONE", "Mars/Olympus")
	t.Setenv("PROVIDER_BASE_URL", "ftp://example.com")

	_, err := Load()
	be.Err(t, err, "MANAGER_MAX_TOTAL")
	be.Err(t, err, "LOG_PLAINTEXT")
	be.Err(t, err, "PATTERN_TIME_ZONE")
	be.Err(t, err, "PROVIDER_BASE_URL")
}
