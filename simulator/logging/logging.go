package logging

import (
	"io"
	"log/slog"
	"os"
)

type Config struct {
	Level string `json:"level"` // trace, debug, info, warn, error
	JSON  bool   `json:"json"`  // true for K8s, false for local dev
}

// ParseLevel maps a configured level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds the handler described by cfg writing to w.
func NewHandler(cfg Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func Setup(cfg Config) {
	slog.SetDefault(slog.New(NewHandler(cfg, os.Stdout)))
}
