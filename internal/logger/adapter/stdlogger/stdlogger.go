// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// e.g. the writer of gorm's logger.
package stdlogger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to the global zerolog logger.
type Logger struct {
	component string
}

// New returns an adapter logging with the global zerolog logger.
func New() *Logger {
	return &Logger{}
}

// NewComponent returns an adapter adding a component field to every line.
func NewComponent(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	e := log.WithLevel(level)
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	return e
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.event(zerolog.DebugLevel).Msgf(format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.event(zerolog.InfoLevel).Msgf(format, args...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...any) {
	l.event(zerolog.WarnLevel).Msgf(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.event(zerolog.ErrorLevel).Msgf(format, args...)
}

// Printf implements gorm's logger.Writer. The level is taken from the
// "[error]" and "[warn]" markers gorm puts into its formats.
func (l *Logger) Printf(format string, args ...any) {
	level := zerolog.DebugLevel

	switch {
	case strings.Contains(format, "[error]"):
		level = zerolog.ErrorLevel
	case strings.Contains(format, "[warn]"):
		level = zerolog.WarnLevel
	case strings.Contains(format, "[info]"):
		level = zerolog.InfoLevel
	}

	// gorm starts every line with the caller followed by a newline
	msg := strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", " ")

	l.event(level).Msg(msg)
}
