// Package logtest captures what the global logger writes to the console during a test.
package logtest

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Capture redirects stdout and stderr while fn runs and returns everything written.
// Writers created inside fn (e.g. by logger.Init) keep pointing to the pipe, so
// loggers must be configured inside fn.
func Capture(t *testing.T, fn func()) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	done := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	defer func() {
		os.Stdout, os.Stderr = stdout, stderr
	}()

	fn()

	_ = w.Close()

	return <-done
}

// Lines splits captured output into non-empty lines.
func Lines(out string) []string {
	var lines []string

	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	return lines
}
