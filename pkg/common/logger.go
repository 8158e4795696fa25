package common

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/text"
)

// NewFileLogger logs to the file specified by `path`. If the file is unavailable, writes to the console.
// `level` is one of "debug", "info", "warn", "error", "fatal"; unknown values fall back to "info".
func NewFileLogger(path, level string) log.Interface {
	logger := &log.Logger{
		Handler: cli.New(os.Stderr),
		Level:   parseLevel(level),
	}
	if path == "" {
		return logger
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s. Logging switched to console.\n", err)
		return logger
	}
	logger.Handler = text.New(file)
	return logger
}

// NewConsoleLogger logs to stderr in a human-friendly format.
func NewConsoleLogger(level string) log.Interface {
	return NewFileLogger("", level)
}

// NewDiscardLogger swallows everything. Useful in tests.
func NewDiscardLogger() log.Interface {
	return &log.Logger{
		Handler: discard.New(),
		Level:   log.DebugLevel,
	}
}

func parseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
