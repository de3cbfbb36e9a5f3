package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerHonorsLevel(t *testing.T) {
	cases := []struct {
		level   string
		debugOn bool
		warnOn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"", false, true},
		{"bogus", false, true},
	}

	for _, tc := range cases {
		t.Run("level "+tc.level, func(t *testing.T) {
			logger := NewLogger(&Config{LogLevel: tc.level, LogFormat: "json"})
			require.Equal(t, tc.debugOn, logger.Enabled(context.Background(), slog.LevelDebug))
			require.Equal(t, tc.warnOn, logger.Enabled(context.Background(), slog.LevelWarn))
		})
	}
}

func TestNewLoggerNilConfigDefaultsToInfo(t *testing.T) {
	logger := NewLogger(nil)
	require.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	require.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
