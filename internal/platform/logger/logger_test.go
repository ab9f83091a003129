package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l, err := logger.Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.NewTestLogger()
	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))

	logger.FromContext(ctx).Info("hello")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["trace_id"])
}

func TestFromContextOrDefault(t *testing.T) {
	fallback, _ := logger.NewTestLogger()

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
}

func TestWithLoggerPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() {
		_ = logger.WithLogger(context.Background(), nil)
	})
}
