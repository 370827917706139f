package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	*slog.Logger
	closer io.Closer
}

func (s *SlogLogger) Infof(format string, a ...interface{}) {
	s.logf(slog.LevelInfo, format, a...)
}

func (s *SlogLogger) Info(msg string) {
	s.Logger.Info(msg)
}

func (s *SlogLogger) Debugf(format string, a ...interface{}) {
	s.logf(slog.LevelDebug, format, a...)
}

func (s *SlogLogger) Debug(msg string) {
	s.Logger.Debug(msg)
}

func (s *SlogLogger) Errorf(format string, a ...interface{}) {
	s.logf(slog.LevelError, format, a...)
}

func (s *SlogLogger) Error(msg string) {
	s.Logger.Error(msg)
}

func (s *SlogLogger) Warningf(format string, a ...interface{}) {
	s.logf(slog.LevelWarn, format, a...)
}

func (s *SlogLogger) Warning(msg string) {
	s.Logger.Warn(msg)
}

// Close releases the underlying file, if any.
func (s *SlogLogger) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *SlogLogger) logf(level slog.Level, format string, a ...interface{}) {
	ctx := context.Background()
	if !s.Logger.Enabled(ctx, level) {
		return
	}
	s.Logger.Log(ctx, level, fmt.Sprintf(format, a...))
}

// ParseLevel maps the config spelling of a level onto slog. Unknown values
// fall back to info.
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

// NewFileLogger writes text records into a size-rotated file, the plugin's
// debug log.
func NewFileLogger(path string, level string) *SlogLogger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    16, // MB
		MaxBackups: 2,
	}
	if ParseLevel(level) == slog.LevelDebug {
		w.MaxSize = 128
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &SlogLogger{Logger: slog.New(h), closer: w}
}

// NewConsoleLogger is used by the command line tools.
func NewConsoleLogger(level string) *SlogLogger {
	h := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: time.TimeOnly,
	})
	return &SlogLogger{Logger: slog.New(h)}
}
