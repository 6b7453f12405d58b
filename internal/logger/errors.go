package logger

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName is missing.
	ErrAppNameIsEmpty = errors.New("log config: AppName is required")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName is missing.
	ErrServiceNameIsEmpty = errors.New("log config: ServiceName is required")

	// ErrUnknownLevel is returned for a LogLevel zerolog does not know.
	ErrUnknownLevel = errors.New("log config: unknown LogLevel")
)

// dropped reports events zerolog failed to write. It can not log through zerolog itself.
func dropped(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "logger: dropped event: %v\n", err)
}
