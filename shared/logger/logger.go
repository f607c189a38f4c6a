package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging settings.
type Config struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// New creates a zerolog logger writing to w. A nil writer means stdout.
func New(cfg Config, w io.Writer) (*zerolog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	switch cfg.Format {
	case "json", "":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()

	return &logger, nil
}
