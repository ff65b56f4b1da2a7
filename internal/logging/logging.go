// Package logging builds the process logger shared by the CLI, the run
// driver and the store.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

const DefaultLevel = "info"

func New(w io.Writer, level string) (*log.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "balls",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
