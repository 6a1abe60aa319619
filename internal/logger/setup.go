package logger

import (
	"io"
	"log/slog"
	"os"

	"mediazip/internal/config"
)

// New создает логгер: JSON по умолчанию, текстовый при cfg.Plaintext.
func New(cfg config.Logger, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Plaintext {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func SetupDefault(cfg config.Logger) {
	slog.SetDefault(New(cfg, os.Stdout))
}
