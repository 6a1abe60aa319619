package config

import (
	"log/slog"
	"time"
)

type Logger struct {
	Level     slog.Level
	Plaintext bool
}

type Server struct {
	Addr      string
	StaticDir string // каталог со статикой фронтенда, пусто - не раздавать
}

type Manager struct {
	MaxTotal  int           // максимальное количество задач
	MaxActive int           // максимальное количество одновременно собираемых архивов
	MaxFiles  int           // максимальное количество медиафайлов на задачу
	TaskTTL   time.Duration // время жизни задачи
}

type Loader struct {
	AllowMIMETypes []string
}

type Provider struct {
	BaseURL string
	Timeout time.Duration
}

type Pattern struct {
	Default      string         // шаблон, если задача создана без шаблона
	DateLayout   string         // короткая дата для {time}, в нотации time.Format
	TimeZone     *time.Location // зона, в которой считается "локальное" время
	MatchTimeout time.Duration  // ограничение на пользовательские регулярные выражения
}

type Config struct {
	Logger   Logger
	Server   Server
	Manager  Manager
	Loader   Loader
	Provider Provider
	Pattern  Pattern
}

func Load() (Config, error) {
	var ge getenv
	cfg := Config{
		Logger: Logger{
			Level:     ge.LogLevel("LOG_LEVEL", false, slog.LevelInfo),
			Plaintext: ge.Bool("LOG_PLAINTEXT", false, false),
		},
		Server: Server{
			Addr:      ge.String("SERVER_ADDR", false, ":8080"),
			StaticDir: ge.String("SERVER_STATIC_DIR", false, ""),
		},
		Manager: Manager{
			MaxTotal:  ge.Int("MANAGER_MAX_TOTAL", false, 1000),
			MaxActive: ge.Int("MANAGER_MAX_ACTIVE", false, 3),
			MaxFiles:  ge.Int("MANAGER_MAX_FILES", false, 100),
			TaskTTL:   ge.Duration("MANAGER_TASK_TTL", false, 1*time.Hour),
		},
		Loader: Loader{
			AllowMIMETypes: ge.Strings("LOADER_ALLOW_MIME", false, []string{
				"image/jpeg",
				"image/png",
				"image/gif",
				"image/webp",
				"video/mp4",
			}),
		},
		Provider: Provider{
			BaseURL: ge.URL("PROVIDER_BASE_URL", false, "https://api.fxtwitter.com"),
			Timeout: ge.Duration("PROVIDER_TIMEOUT", false, 15*time.Second),
		},
		Pattern: Pattern{
			Default:      ge.String("PATTERN_DEFAULT", false, "{name}_{time}_@{id}"),
			DateLayout:   ge.String("PATTERN_DATE_LAYOUT", false, "1/2/2006"),
			TimeZone:     ge.Location("PATTERN_TIME_ZONE", false, time.Local),
			MatchTimeout: ge.Duration("PATTERN_MATCH_TIMEOUT", false, 100*time.Millisecond),
		},
	}
	return cfg, ge.Err()
}
