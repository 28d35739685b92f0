package gabanav_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
)

func TestInitInternalLevel(t *testing.T) {
	ctx := t.Context()
	internal := gabanav.GetInternalLogger()

	t.Setenv(constants.EnvironmentEnvVar, "")
	t.Setenv(constants.LogLevelEnvVar, "")
	gabanav.Init(gabanav.Options{})
	assert.True(t, internal.Enabled(ctx, slog.LevelError))
	assert.False(t, internal.Enabled(ctx, slog.LevelWarn))

	gabanav.Init(gabanav.Options{InternalLogLevel: "warn"})
	assert.True(t, internal.Enabled(ctx, slog.LevelWarn))
	assert.False(t, internal.Enabled(ctx, slog.LevelInfo))

	t.Setenv(constants.LogLevelEnvVar, "debug")
	gabanav.Init(gabanav.Options{InternalLogLevel: "warn"})
	assert.True(t, internal.Enabled(ctx, slog.LevelDebug))

	t.Setenv(constants.LogLevelEnvVar, "")
	t.Setenv(constants.EnvironmentEnvVar, constants.Development)
	gabanav.Init(gabanav.Options{})
	assert.True(t, internal.Enabled(ctx, slog.LevelDebug))

	gabanav.SetInternalLogLevel(slog.LevelError)
}

func TestInitApplicationLevel(t *testing.T) {
	ctx := t.Context()
	gabanav.Init(gabanav.Options{LogLevel: "error"})
	assert.False(t, gabanav.GetLogger().Enabled(ctx, slog.LevelInfo))

	gabanav.SetRawLogLevel("debug")
	assert.True(t, gabanav.GetLogger().Enabled(ctx, slog.LevelDebug))
	gabanav.SetLogLevel(slog.LevelInfo)
}
