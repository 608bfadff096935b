// Package indexlog provides structured logging for the indexer, with one
// component-scoped child logger per pipeline stage (spec.md §9, ambient
// stack).
package indexlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger; Init reconfigures it and all
// component loggers derived from it.
var Logger zerolog.Logger

// Component loggers for each pipeline stage.
var (
	BlockProc zerolog.Logger
	Commit    zerolog.Logger
	Reorg     zerolog.Logger
	Legacy    zerolog.Logger
	Store     zerolog.Logger
)

func init() {
	Logger = NewConsoleLogger(os.Stdout, "info")
	initComponentLoggers()
}

// Init reconfigures the base logger from config: JSON output for production
// deployments, a colored console writer for interactive use.
func Init(level string, jsonOutput bool) {
	if jsonOutput {
		Logger = NewJSONLogger(os.Stdout, level)
	} else {
		Logger = NewConsoleLogger(os.Stdout, level)
	}
	initComponentLoggers()
}

// NewConsoleLogger builds a colored, human-readable logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewJSONLogger builds a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	BlockProc = Logger.With().Str("component", "blockproc").Logger()
	Commit = Logger.With().Str("component", "commit").Logger()
	Reorg = Logger.With().Str("component", "reorg").Logger()
	Legacy = Logger.With().Str("component", "legacybridge").Logger()
	Store = Logger.With().Str("component", "store").Logger()
}

// WithComponent returns an ad hoc child logger for a component without its
// own package-level variable (e.g. a specific OPI processor extension).
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
