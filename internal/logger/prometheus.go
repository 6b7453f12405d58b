package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	statementsOnce sync.Once              //nolint:gochecknoglobals
	statements     *prometheus.CounterVec //nolint:gochecknoglobals
)

// levelCounter is a zerolog hook counting log statements per service and level.
type levelCounter struct {
	service string
}

// Run implements zerolog.Hook.
func (h levelCounter) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	statements.WithLabelValues(h.service, level.String()).Inc()
}

// newLevelCounter registers deskhub_log_statements_total once and returns a hook feeding it.
func newLevelCounter(service string) zerolog.Hook {
	statementsOnce.Do(func() {
		statements = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskhub_log_statements_total",
				Help: "Number of log statements, by service and level.",
			},
			[]string{"service", "level"},
		)
	})

	return levelCounter{service: service}
}

// Statements returns the log statement counter, nil before the first Init.
func Statements() *prometheus.CounterVec {
	return statements
}
