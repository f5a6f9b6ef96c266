package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	applog "expenses/internal/log"
)

func TestLoggerLevelComesFromConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("DATA_BACKEND", "json")
	t.Setenv("EXPENSES_FILE", filepath.Join(t.TempDir(), "expenses.json"))
	t.Setenv("CURRENCY", "UAH")
	t.Setenv("DESCRIPTION_MAX_LEN", "200")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadAndValidateConfig(applog.Discard())
	logger := SetupLogger(cfg.LogLevel)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelDebug))
}

func TestSetupLoggerDefaultsToWarn(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("")
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
}
