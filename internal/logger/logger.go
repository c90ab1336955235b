// Package logger provides a thin wrapper around zerolog.Logger used by the
// dotcfg command and HTTP server.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, etc.) are available directly on *Logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New constructs a *Logger writing to os.Stderr, so that command output on
// stdout stays machine readable.
//
// Every entry carries a "role" field and a timestamp. With pretty set the
// output is formatted for humans by zerolog.ConsoleWriter instead of JSON.
func New(role string, level zerolog.Level, pretty bool) *Logger {
	return NewWithWriter(os.Stderr, role, level, pretty)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, role string, level zerolog.Level, pretty bool) *Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{logger}
}

// ParseLevel converts a level name such as "debug" or "warn".
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Nop returns a *Logger that discards all log output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Child returns a new *Logger with an extra component field.
func (l *Logger) Child(component string) *Logger {
	return &Logger{l.With().Str("component", component).Logger()}
}

// WithContext attaches the logger to ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger attached to ctx by WithContext. If none is
// attached, zerolog's default logger is returned, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
