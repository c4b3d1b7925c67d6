package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/harun/taskpilot/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("console output goes to configured writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Level: "info", Console: true, Out: &buf})
		require.NoError(t, err)
		defer logger.Close()

		logger.Info().Str("stage", "parsing").Msg("hello")

		assert.Contains(t, buf.String(), `"stage":"parsing"`)
		assert.Contains(t, buf.String(), `"message":"hello"`)
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "test.log")

		logger, err := New(Config{Level: "debug", File: logFile})
		require.NoError(t, err)

		logger.Debug().Msg("test message")
		require.NoError(t, logger.Close())

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "test message")
	})

	t.Run("redaction on the writer chain", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Level: "info", Console: true, Out: &buf, Redaction: true})
		require.NoError(t, err)
		assert.NotNil(t, logger.redactor)

		logger.Info().Str("key", "sk-ant-REDACTED").Msg("calling model")

		assert.NotContains(t, buf.String(), "abcdefghijklmnop")
		assert.Contains(t, buf.String(), "[REDACTED]")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger, err := New(Config{Level: "chatty"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetZerolog().GetLevel())
	})

	t.Run("no sinks discards output", func(t *testing.T) {
		logger, err := New(Config{Level: "info"})
		require.NoError(t, err)
		logger.Info().Msg("nowhere")
		assert.NoError(t, logger.Close())
	})
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig().Logging

	t.Run("flag level wins", func(t *testing.T) {
		logger, err := FromConfig(cfg, "debug", &buf)
		require.NoError(t, err)
		defer logger.Close()
		assert.Equal(t, zerolog.DebugLevel, logger.GetZerolog().GetLevel())
	})

	t.Run("config level when flag empty", func(t *testing.T) {
		cfg.Level = "warn"
		logger, err := FromConfig(cfg, "", &buf)
		require.NoError(t, err)
		defer logger.Close()
		assert.Equal(t, zerolog.WarnLevel, logger.GetZerolog().GetLevel())
	})

	t.Run("file sink from config", func(t *testing.T) {
		cfg.File = filepath.Join(t.TempDir(), "logs", "taskpilot.log")
		logger, err := FromConfig(cfg, "info", &buf)
		require.NoError(t, err)
		require.NoError(t, logger.Close())

		_, err = os.Stat(cfg.File)
		assert.NoError(t, err)
	})
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Console: true, Out: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	out := buf.String()
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, `"level":"`+level+`"`)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Console)
	assert.True(t, cfg.Pretty)
	assert.True(t, cfg.Redaction)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 7, cfg.MaxAge)
	assert.True(t, cfg.Compress)
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Console: true, Out: &buf})
	require.NoError(t, err)
	defer logger.Close()

	child := logger.With().Str("component", "test").Logger()
	child.Info().Msg("from child")

	assert.Contains(t, buf.String(), `"component":"test"`)
}
