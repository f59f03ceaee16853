package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"golang.org/x/exp/slog"

	"vidshare/internal/app/client/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           config.EnvLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           config.EnvDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           config.EnvProd,
			expectedLevel: slog.LevelInfo,
		},
		{
			name:          "unknown environment",
			env:           "staging",
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestNewWithLevel(t *testing.T) {
	ctx := context.Background()

	// Prod с уровнем debug
	logger := NewWithLevel(config.EnvProd, "debug")
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))

	// Local с уровнем error
	logger = NewWithLevel(config.EnvLocal, "ERROR")
	assert.False(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.True(t, logger.Enabled(ctx, slog.LevelError))

	// Неизвестный уровень не меняет уровень окружения
	logger = NewWithLevel(config.EnvProd, "verbose")
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.EnvProd, "")

	logger.Info("Вход выполнен", "user_id", "u1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Вход выполнен", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestDiscard(t *testing.T) {
	assert.NotNil(t, Discard())
}
