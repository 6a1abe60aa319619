package logger

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// Context кладет логгер в контекст.
func Context(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// With дополняет логгер из контекста атрибутами, которые увидят все
// нижележащие вызовы (провайдер, загрузчик).
func With(ctx context.Context, args ...any) context.Context {
	return Context(ctx, FromContext(ctx).With(args...))
}

// FromContext возвращает логгер запроса или slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}
