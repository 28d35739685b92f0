// Package constants defines shared constants and configuration defaults
// used throughout the gabanav navigation library.
package constants

import (
	"os"
	"time"
)

// Development is the environment variable value for development mode.
const Development = "DEV"

// Environment variables read by the library.
const (
	EnvironmentEnvVar  = "ENVIRONMENT"    // DEV enables windowed SDL mode and debug logging
	ConfigPathEnvVar   = "GABANAV_CONFIG" // Default TOML configuration path
	LogLevelEnvVar     = "GABANAV_LOG"    // Overrides the internal log level
	WindowWidthEnvVar  = "WINDOW_WIDTH"   // Dev-mode window width
	WindowHeightEnvVar = "WINDOW_HEIGHT"  // Dev-mode window height
	StatePathEnvVar    = "GABANAV_STATE"  // Default saved-state database path
)

// IsDevMode returns true if running in development mode (ENVIRONMENT=DEV).
func IsDevMode() bool {
	return os.Getenv(EnvironmentEnvVar) == Development
}

// Default timing and sizing constants.
const (
	DefaultTransitionDuration = 300 * time.Millisecond // Enter/exit animation length
	DefaultFrameInterval      = 16 * time.Millisecond  // ~60fps pacing without VSync
	DefaultTextureCacheSize   = 4                      // Per-entry render targets kept alive
	DefaultWindowWidth        = 1024
	DefaultWindowHeight       = 768
	DefaultStatePath          = "gabanav-state.db"
)
