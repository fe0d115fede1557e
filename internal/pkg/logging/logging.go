package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/httplog/v3"
)

const AppName = "hris-attendance-bot"

// Version is stamped at build time with -ldflags.
var Version = "v1.0.0"

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger: JSON lines carrying app, version and env.
func New(w io.Writer, level, env string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})).With(
		slog.String("app", AppName),
		slog.String("version", Version),
		slog.String("env", env),
	)
}

// NewHTTP builds the request logger with attributes renamed to the ECS schema.
func NewHTTP(w io.Writer, level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", AppName),
		slog.String("version", Version),
		slog.String("env", env),
	)
}
