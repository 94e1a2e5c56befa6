package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	maxLogSizeMB  = 20
	maxLogBackups = 3
	maxLogAgeDays = 14
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NewOutput returns where log lines go. The terminal's stdout belongs to the
// display, so logs go to stderr, or to a rotating file when path is set.
func NewOutput(path string) io.WriteCloser {
	if path == "" {
		return nopCloser{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
}

// NewZerolog builds a timestamped logger writing to out at the given level.
// An empty level means info.
func NewZerolog(out io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level = strings.TrimSpace(level); level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
