package spanz

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.CollectorBuffer)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, runtime.NumCPU()*100, cfg.idPoolSize())

	var nilCfg *Config
	assert.Equal(t, runtime.NumCPU()*100, nilCfg.idPoolSize())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SPANZ_ID_POOL_SIZE", "64")
	t.Setenv("SPANZ_ASYNC_WORKERS", "3")
	t.Setenv("SPANZ_ASYNC_QUEUE_SIZE", "30")
	t.Setenv("SPANZ_COLLECTOR_BUFFER", "7")
	t.Setenv("SPANZ_LOGGING_LOG_LEVEL", "debug")
	t.Setenv("SPANZ_LOGGING_LOG_DEV", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.idPoolSize())
	assert.Equal(t, 3, cfg.AsyncWorkers)
	assert.Equal(t, 30, cfg.AsyncQueueSize)
	assert.Equal(t, 7, cfg.CollectorBuffer)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, []string{"stderr"}, cfg.Logging.OutputPaths)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("SPANZ_ASYNC_WORKERS", "many")

	_, err := LoadConfig()
	assert.Error(t, err)

	cfg := LoadConfigOrDefault()
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNewLogger(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "spanz.log")
		logger, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{path}})
		require.NoError(t, err)
		logger.Info("hello")
		require.NoError(t, logger.Sync())
		assert.FileExists(t, path)
	})

	t.Run("development", func(t *testing.T) {
		logger, err := NewLogger(LogConfig{Level: "debug", Development: true})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(-1))
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := NewLogger(LogConfig{Level: "loud"})
		assert.Error(t, err)
		assert.NotNil(t, newLoggerOrNop(LogConfig{Level: "loud"}))
	})
}
