package common

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide structured logger. It writes to stderr with timestamps.
//
// Returns:
//   - *log.Logger: the shared logger
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy-bind",
		})
		logger.SetLevel(log.InfoLevel)
	})
	return logger
}

// SetLogLevel parses and applies a level name ("debug", "info", "warn", "error").
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: an error if the level name is unknown
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger().SetLevel(lvl)
	return nil
}
