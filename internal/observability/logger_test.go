// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inventa-tools/inventa-cli/internal/config"
)

// setupTestLogger initializes the global logger to write to a buffer.
func setupTestLogger(cfg config.LoggerConfig) *bytes.Buffer {
	buf := new(bytes.Buffer)
	Initialize(cfg, zapcore.AddSync(buf))
	return buf
}

func TestInitializeLogger(t *testing.T) {

	t.Run("should initialize console logger", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
		}

		buf := setupTestLogger(cfg)

		logger := GetLogger()
		logger.Info("This is a test message.")
		Sync()

		output := buf.String()
		assert.Contains(t, output, "INFO", "Output should contain the log level")
		assert.Contains(t, output, "This is a test message.", "Output should contain the message")
		assert.Contains(t, output, "TestService.", "Console names carry a trailing dot")
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		}

		buf := setupTestLogger(cfg)

		logger := GetLogger()
		logger.Warn("This is a JSON message.", zap.String("key", "value"))
		Sync()

		var logEntry map[string]interface{}
		err := json.Unmarshal(buf.Bytes(), &logEntry)
		require.NoError(t, err, "Log output should be valid JSON")

		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
	})

	t.Run("should respect the configured level", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := setupTestLogger(config.LoggerConfig{
			Level:  "warn",
			Format: "json",
		})

		GetLogger().Info("filtered out")
		GetLogger().Warn("kept")
		Sync()

		output := buf.String()
		assert.NotContains(t, output, "filtered out")
		assert.Contains(t, output, "kept")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := setupTestLogger(config.LoggerConfig{
			Level:  "not-a-level",
			Format: "json",
		})

		GetLogger().Debug("too fine")
		GetLogger().Info("visible")
		Sync()

		output := buf.String()
		assert.NotContains(t, output, "too fine")
		assert.Contains(t, output, "visible")
	})

	t.Run("initialization happens exactly once", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := setupTestLogger(config.LoggerConfig{Level: "info", Format: "json"})
		first := GetLogger()

		// A second initialization attempt must not replace the logger.
		Initialize(config.LoggerConfig{Level: "debug", Format: "console"}, zapcore.AddSync(new(bytes.Buffer)))
		assert.Same(t, first, GetLogger())

		first.Info("still routed to the first writer")
		Sync()
		assert.Contains(t, buf.String(), "still routed to the first writer")
	})
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger, "uninitialized access must still return a usable logger")
}
