package support

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

func NewLogger(cfg Config) (*zerolog.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, out io.Writer) (*zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %s", cfg.LogLevel)
	}

	if cfg.LogFormat == LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &logger, nil
}
