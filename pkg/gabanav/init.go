// Package gabanav is a navigation core for SDL applications: a backstack of
// typed destinations, entries whose lifecycles follow what is on screen,
// and a transition driver that animates between them.
//
// The subpackages do the work. Start with router, which ties a
// backstack.Controller, the entry registry in host and a transition.Driver
// together; sdlhost runs a router in a window. This package holds the
// logging setup and the error types shared by all of them.
package gabanav

import (
	"log/slog"
	"os"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
)

// Options configures logging.
type Options struct {
	LogPath          string // Full path for log file including filename (creates parent directories)
	LogLevel         string // Application logger level; info when empty
	InternalLogLevel string // Navigation core level; error when empty, GABANAV_LOG overrides
}

// Init sets up the application and internal loggers. Call it before
// creating routers so they pick up the configured levels.
func Init(options Options) {
	if options.LogPath != "" {
		internal.SetLogPath(options.LogPath)
	}

	if options.LogLevel != "" {
		internal.SetRawLogLevel(options.LogLevel)
	}

	switch {
	case os.Getenv(constants.LogLevelEnvVar) != "":
		internal.SetInternalLogLevel(internal.ParseLevel(os.Getenv(constants.LogLevelEnvVar)))
	case options.InternalLogLevel != "":
		internal.SetInternalLogLevel(internal.ParseLevel(options.InternalLogLevel))
	case constants.IsDevMode():
		internal.SetInternalLogLevel(slog.LevelDebug)
	default:
		internal.SetInternalLogLevel(slog.LevelError)
	}
}

// Close flushes and closes the log file.
func Close() {
	internal.CloseLogger()
}

// SetLogPath sets the full path for the log file, including filename.
// Call before Init() to take effect during initialization.
func SetLogPath(path string) {
	internal.SetLogPath(path)
}

// GetLogger returns the application logger for structured logging.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// GetInternalLogger returns the logger the navigation core writes to.
func GetInternalLogger() *slog.Logger {
	return internal.GetInternalLogger()
}

// SetLogLevel sets the minimum log level for the application logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g., "debug", "info", "error").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}

// SetInternalLogLevel sets the minimum level for the navigation core.
func SetInternalLogLevel(level slog.Level) {
	internal.SetInternalLogLevel(level)
}
