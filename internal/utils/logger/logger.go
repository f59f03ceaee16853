package logger

import (
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slog"

	"vidshare/internal/app/client/config"
)

// New создаёт логгер для окружения env. Вывод идёт в stderr,
// stdout остаётся за результатами команд.
func New(env string) *slog.Logger {
	if env == config.EnvLocal {
		return setupPrettySlog()
	}
	return newLogger(os.Stderr, env, "")
}

// NewWithLevel - как New, но level (debug|info|warn|error) переопределяет уровень окружения
func NewWithLevel(env, level string) *slog.Logger {
	return newLogger(os.Stderr, env, level)
}

func newLogger(w io.Writer, env, level string) *slog.Logger {
	var (
		handlerLevel slog.Level
		pretty       bool
	)

	switch env {
	case config.EnvLocal:
		handlerLevel, pretty = slog.LevelDebug, true
	case config.EnvDev:
		handlerLevel = slog.LevelDebug
	default:
		handlerLevel = slog.LevelInfo
	}

	if parsed, ok := parseLevel(level); ok {
		handlerLevel = parsed
	}

	opts := &slog.HandlerOptions{Level: handlerLevel}
	if pretty {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func setupPrettySlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

// Discard - логгер без вывода, для тестов и --quiet
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
