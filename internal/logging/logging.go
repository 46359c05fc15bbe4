// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger writing to w. Unknown levels fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if strings.EqualFold(format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Setup installs the logger as the global zerolog logger and returns it.
// Contexts without a request logger fall back to it.
func Setup(level, format string) zerolog.Logger {
	logger := New(level, format, os.Stdout)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}

// GormWriter adapts zerolog to gorm's logger.Writer interface.
type GormWriter struct {
	Logger zerolog.Logger
}

func (w GormWriter) Printf(format string, args ...interface{}) {
	w.Logger.Warn().Str("component", "gorm").Msgf(format, args...)
}
